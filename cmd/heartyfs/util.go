package main

import (
	"flag"

	"github.com/google/subcommands"
	"github.com/keks/heartyfs/device"
	"github.com/keks/heartyfs/fs"
)

func (c *Config) openDevice() (*device.File, error) {
	var opts []device.Option
	if !c.Wait {
		opts = append(opts, device.WithoutWait())
	}

	return device.OpenFile(c.Image, opts...)
}

// withFS opens the image, runs fn and closes the image again.
func (c *Config) withFS(op string, fn func(*fs.Filesystem) error) subcommands.ExitStatus {
	log := c.log.WithField("image", c.Image)

	dev, err := c.openDevice()
	if err != nil {
		log.WithError(err).Error("opening image")
		return subcommands.ExitFailure
	}
	defer func() {
		if err := dev.Close(); err != nil {
			log.WithError(err).Error("closing image")
		}
	}()

	fsys, err := fs.Open(dev, fs.WithLogger(c.log))
	if err != nil {
		log.WithError(err).Error("opening filesystem")
		return subcommands.ExitFailure
	}
	defer fsys.Close()

	if err := fn(fsys); err != nil {
		log.WithError(err).Error(op)
		return subcommands.ExitFailure
	}

	return subcommands.ExitSuccess
}

// config extracts the Config passed to subcommands.Execute.
func config(args []interface{}) *Config {
	return args[0].(*Config)
}

// pathArgs checks that f holds exactly n positional arguments.
func pathArgs(f *flag.FlagSet, n int) ([]string, bool) {
	if f.NArg() != n {
		f.Usage()
		return nil, false
	}

	return f.Args(), true
}
