package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
	"github.com/keks/heartyfs/fs"
)

// Status implements subcommands.Command for the "status" command.
type Status struct{}

// Name implements subcommands.Command.
func (*Status) Name() string {
	return "status"
}

// Synopsis implements subcommands.Command.
func (*Status) Synopsis() string {
	return "print block usage of the image"
}

// Usage implements subcommands.Command.
func (*Status) Usage() string {
	return `status - prints total, used and free blocks.
`
}

// SetFlags implements subcommands.Command.
func (*Status) SetFlags(*flag.FlagSet) {}

// Execute implements subcommands.Command.Execute.
func (*Status) Execute(_ context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	conf := config(args)
	if _, ok := pathArgs(f, 0); !ok {
		return subcommands.ExitUsageError
	}

	return conf.withFS("status", func(fsys *fs.Filesystem) error {
		st := fsys.Stat()
		_, err := fmt.Fprintf(conf.out, "block size: %d\ntotal blocks: %d\nused blocks: %d\nfree blocks: %d\n",
			st.BlockSize, st.TotalBlocks, st.UsedBlocks, st.FreeBlocks)
		return err
	})
}

// Check implements subcommands.Command for the "fsck" command.
type Check struct{}

// Name implements subcommands.Command.
func (*Check) Name() string {
	return "fsck"
}

// Synopsis implements subcommands.Command.
func (*Check) Synopsis() string {
	return "verify the consistency of the image"
}

// Usage implements subcommands.Command.
func (*Check) Usage() string {
	return `fsck - walks the tree and compares it against the bitmap.
`
}

// SetFlags implements subcommands.Command.
func (*Check) SetFlags(*flag.FlagSet) {}

// Execute implements subcommands.Command.Execute.
func (*Check) Execute(_ context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	conf := config(args)
	if _, ok := pathArgs(f, 0); !ok {
		return subcommands.ExitUsageError
	}

	return conf.withFS("fsck", func(fsys *fs.Filesystem) error {
		if err := fsys.Check(); err != nil {
			return err
		}
		_, err := fmt.Fprintln(conf.out, "clean")
		return err
	})
}
