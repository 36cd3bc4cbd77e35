package main

import (
	"context"
	"flag"
	"io"
	"os"

	"github.com/google/subcommands"
	"github.com/keks/heartyfs/fs"
)

// Write implements subcommands.Command for the "write" command.
type Write struct {
	create bool
}

// Name implements subcommands.Command.
func (*Write) Name() string {
	return "write"
}

// Synopsis implements subcommands.Command.
func (*Write) Synopsis() string {
	return "copy a host file into the image"
}

// Usage implements subcommands.Command.
func (*Write) Usage() string {
	return `write [flags] <path> <host file> - replaces the content of path with the host file, "-" reads stdin.
`
}

// SetFlags implements subcommands.Command.
func (w *Write) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&w.create, "create", false, "create path if it does not exist.")
}

// Execute implements subcommands.Command.Execute.
func (w *Write) Execute(_ context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	conf := config(args)
	paths, ok := pathArgs(f, 2)
	if !ok {
		return subcommands.ExitUsageError
	}

	var (
		data []byte
		err  error
	)
	if paths[1] == "-" {
		data, err = io.ReadAll(conf.in)
	} else {
		data, err = os.ReadFile(paths[1])
	}
	if err != nil {
		conf.log.WithError(err).Error("reading host file")
		return subcommands.ExitFailure
	}

	return conf.withFS("write", func(fsys *fs.Filesystem) error {
		if w.create {
			res, err := fsys.Resolve(paths[0])
			if err != nil {
				return err
			}
			if !res.Exists() {
				_, err := fsys.WriteNew(paths[0], data)
				return err
			}
		}

		return fsys.WriteFile(paths[0], data)
	})
}
