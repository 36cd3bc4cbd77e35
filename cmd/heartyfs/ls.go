package main

import (
	"context"
	"flag"
	"fmt"
	"text/tabwriter"

	"github.com/google/subcommands"
	"github.com/keks/heartyfs/fs"
	"github.com/keks/heartyfs/layout"
)

// Ls implements subcommands.Command for the "ls" command.
type Ls struct{}

// Name implements subcommands.Command.
func (*Ls) Name() string {
	return "ls"
}

// Synopsis implements subcommands.Command.
func (*Ls) Synopsis() string {
	return "list a directory"
}

// Usage implements subcommands.Command.
func (*Ls) Usage() string {
	return `ls [<path>] - lists the entries of a directory, the root by default.
`
}

// SetFlags implements subcommands.Command.
func (*Ls) SetFlags(*flag.FlagSet) {}

// Execute implements subcommands.Command.Execute.
func (*Ls) Execute(_ context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	conf := config(args)
	if f.NArg() > 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}

	path := "/"
	if f.NArg() == 1 {
		path = f.Arg(0)
	}

	return conf.withFS("ls", func(fsys *fs.Filesystem) error {
		ents, err := fsys.ReadDir(path)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(conf.out, 0, 8, 1, ' ', 0)
		for _, e := range ents {
			kind := "d"
			if e.Type == layout.TypeFile {
				kind = "-"
			}
			fmt.Fprintf(w, "%s\t%d\t%d\t%s\n", kind, e.BlockID, e.Size, e.Name)
		}
		return w.Flush()
	})
}
