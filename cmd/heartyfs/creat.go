package main

import (
	"context"
	"flag"

	"github.com/google/subcommands"
	"github.com/keks/heartyfs/fs"
)

// Creat implements subcommands.Command for the "creat" command.
type Creat struct{}

// Name implements subcommands.Command.
func (*Creat) Name() string {
	return "creat"
}

// Synopsis implements subcommands.Command.
func (*Creat) Synopsis() string {
	return "create an empty file"
}

// Usage implements subcommands.Command.
func (*Creat) Usage() string {
	return `creat <path> - creates an empty file, the parent directory must exist.
`
}

// SetFlags implements subcommands.Command.
func (*Creat) SetFlags(*flag.FlagSet) {}

// Execute implements subcommands.Command.Execute.
func (*Creat) Execute(_ context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	conf := config(args)
	paths, ok := pathArgs(f, 1)
	if !ok {
		return subcommands.ExitUsageError
	}

	return conf.withFS("creat", func(fsys *fs.Filesystem) error {
		_, err := fsys.Create(paths[0])
		return err
	})
}

// Mkdir implements subcommands.Command for the "mkdir" command.
type Mkdir struct{}

// Name implements subcommands.Command.
func (*Mkdir) Name() string {
	return "mkdir"
}

// Synopsis implements subcommands.Command.
func (*Mkdir) Synopsis() string {
	return "create an empty directory"
}

// Usage implements subcommands.Command.
func (*Mkdir) Usage() string {
	return `mkdir <path> - creates a directory, the parent directory must exist.
`
}

// SetFlags implements subcommands.Command.
func (*Mkdir) SetFlags(*flag.FlagSet) {}

// Execute implements subcommands.Command.Execute.
func (*Mkdir) Execute(_ context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	conf := config(args)
	paths, ok := pathArgs(f, 1)
	if !ok {
		return subcommands.ExitUsageError
	}

	return conf.withFS("mkdir", func(fsys *fs.Filesystem) error {
		_, err := fsys.Mkdir(paths[0])
		return err
	})
}
