package main

import (
	"context"
	"flag"

	"github.com/google/subcommands"
	"github.com/keks/heartyfs/device"
	"github.com/keks/heartyfs/fs"
)

// Init implements subcommands.Command for the "init" command.
type Init struct {
	size int64
}

// Name implements subcommands.Command.
func (*Init) Name() string {
	return "init"
}

// Synopsis implements subcommands.Command.
func (*Init) Synopsis() string {
	return "create the image if needed and format it"
}

// Usage implements subcommands.Command.
func (*Init) Usage() string {
	return `init [flags] - formats the image, erasing everything on it.
`
}

// SetFlags implements subcommands.Command.
func (i *Init) SetFlags(f *flag.FlagSet) {
	f.Int64Var(&i.size, "size", 0, "size in bytes of a newly created image, defaults to the configured size.")
}

// Execute implements subcommands.Command.Execute.
func (i *Init) Execute(_ context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	conf := config(args)
	if _, ok := pathArgs(f, 0); !ok {
		return subcommands.ExitUsageError
	}

	size := conf.Size
	if i.size > 0 {
		size = i.size
	}

	if err := device.Create(conf.Image, size); err != nil {
		conf.log.WithError(err).Error("creating image")
		return subcommands.ExitFailure
	}

	dev, err := conf.openDevice()
	if err != nil {
		conf.log.WithError(err).Error("opening image")
		return subcommands.ExitFailure
	}
	defer dev.Close()

	fsys, err := fs.Format(dev, fs.WithLogger(conf.log))
	if err != nil {
		conf.log.WithError(err).Error("formatting image")
		return subcommands.ExitFailure
	}
	defer fsys.Close()

	st := fsys.Stat()
	conf.log.WithField("image", conf.Image).Infof("formatted %d blocks, %d free", st.TotalBlocks, st.FreeBlocks)

	if err := dev.Sync(); err != nil {
		conf.log.WithError(err).Error("flushing image")
		return subcommands.ExitFailure
	}

	return subcommands.ExitSuccess
}
