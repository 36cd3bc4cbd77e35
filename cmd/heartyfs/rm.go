package main

import (
	"context"
	"flag"

	"github.com/google/subcommands"
	"github.com/keks/heartyfs/fs"
)

// Rm implements subcommands.Command for the "rm" command.
type Rm struct{}

// Name implements subcommands.Command.
func (*Rm) Name() string {
	return "rm"
}

// Synopsis implements subcommands.Command.
func (*Rm) Synopsis() string {
	return "remove a file"
}

// Usage implements subcommands.Command.
func (*Rm) Usage() string {
	return `rm <path> - removes a file and frees its blocks.
`
}

// SetFlags implements subcommands.Command.
func (*Rm) SetFlags(*flag.FlagSet) {}

// Execute implements subcommands.Command.Execute.
func (*Rm) Execute(_ context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	conf := config(args)
	paths, ok := pathArgs(f, 1)
	if !ok {
		return subcommands.ExitUsageError
	}

	return conf.withFS("rm", func(fsys *fs.Filesystem) error {
		return fsys.Remove(paths[0])
	})
}

// Rmdir implements subcommands.Command for the "rmdir" command.
type Rmdir struct{}

// Name implements subcommands.Command.
func (*Rmdir) Name() string {
	return "rmdir"
}

// Synopsis implements subcommands.Command.
func (*Rmdir) Synopsis() string {
	return "remove an empty directory"
}

// Usage implements subcommands.Command.
func (*Rmdir) Usage() string {
	return `rmdir <path> - removes a directory holding nothing but . and ..
`
}

// SetFlags implements subcommands.Command.
func (*Rmdir) SetFlags(*flag.FlagSet) {}

// Execute implements subcommands.Command.Execute.
func (*Rmdir) Execute(_ context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	conf := config(args)
	paths, ok := pathArgs(f, 1)
	if !ok {
		return subcommands.ExitUsageError
	}

	return conf.withFS("rmdir", func(fsys *fs.Filesystem) error {
		return fsys.Rmdir(paths[0])
	})
}
