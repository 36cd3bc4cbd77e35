package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"
	"github.com/keks/heartyfs/fs"
	"github.com/pkg/errors"
)

// Read implements subcommands.Command for the "read" command.
type Read struct{}

// Name implements subcommands.Command.
func (*Read) Name() string {
	return "read"
}

// Synopsis implements subcommands.Command.
func (*Read) Synopsis() string {
	return "copy a file out of the image"
}

// Usage implements subcommands.Command.
func (*Read) Usage() string {
	return `read <path> [<host file>] - writes the content of path to the host file, or stdout.
`
}

// SetFlags implements subcommands.Command.
func (*Read) SetFlags(*flag.FlagSet) {}

// Execute implements subcommands.Command.Execute.
func (*Read) Execute(_ context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	conf := config(args)
	if f.NArg() < 1 || f.NArg() > 2 {
		f.Usage()
		return subcommands.ExitUsageError
	}

	return conf.withFS("read", func(fsys *fs.Filesystem) error {
		data, err := fsys.ReadFile(f.Arg(0))
		if err != nil {
			return err
		}

		if f.NArg() == 2 {
			return errors.Wrap(os.WriteFile(f.Arg(1), data, 0644), "write host file")
		}

		_, err = conf.out.Write(data)
		return err
	})
}
