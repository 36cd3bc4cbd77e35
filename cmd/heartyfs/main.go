// Binary heartyfs manages a heartyfs disk image.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"
	"github.com/sirupsen/logrus"
)

var (
	configPath = flag.String("config", "", "path to a TOML config file.")
	imagePath  = flag.String("image", "", "path to the disk image, overrides the config file.")
	debug      = flag.Bool("debug", false, "enable debug logging.")
	noWait     = flag.Bool("nowait", false, "fail instead of waiting when the image is locked.")
)

func forEachCmd(cb func(cmd subcommands.Command, group string)) {
	cb(subcommands.HelpCommand(), "")
	cb(subcommands.FlagsCommand(), "")

	const fsGroup = "filesystem"
	cb(new(Init), fsGroup)
	cb(new(Status), fsGroup)
	cb(new(Check), fsGroup)

	const fileGroup = "files"
	cb(new(Creat), fileGroup)
	cb(new(Mkdir), fileGroup)
	cb(new(Rm), fileGroup)
	cb(new(Rmdir), fileGroup)
	cb(new(Read), fileGroup)
	cb(new(Write), fileGroup)
	cb(new(Ls), fileGroup)
}

func main() {
	forEachCmd(subcommands.Register)
	flag.Parse()

	conf, err := loadConfig(*configPath)
	if err != nil {
		logrus.WithError(err).Fatal("loading config")
	}
	if *imagePath != "" {
		conf.Image = *imagePath
	}
	if *debug {
		conf.LogLevel = logrus.DebugLevel.String()
	}
	if *noWait {
		conf.Wait = false
	}

	log, err := conf.logger()
	if err != nil {
		logrus.WithError(err).Fatal("configuring log")
	}
	conf.log = log

	os.Exit(int(subcommands.Execute(context.Background(), conf)))
}
