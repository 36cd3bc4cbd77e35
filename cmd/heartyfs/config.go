package main

import (
	"io"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/keks/heartyfs"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Config holds the settings shared by all commands.
type Config struct {
	// Image is the path of the disk image.
	Image string `toml:"image"`

	// Size is the size of images created by init.
	Size int64 `toml:"size"`

	LogLevel string `toml:"log_level"`

	// Wait makes commands block while another process holds the image.
	Wait bool `toml:"wait"`

	log *logrus.Logger
	out io.Writer
	in  io.Reader
}

func defaultConfig() *Config {
	return &Config{
		Image:    "/tmp/heartyfs",
		Size:     heartyfs.DefaultImageSize,
		LogLevel: logrus.InfoLevel.String(),
		Wait:     true,
		out:      os.Stdout,
		in:       os.Stdin,
	}
}

// loadConfig returns the defaults overlaid with the file at path, if any.
func loadConfig(path string) (*Config, error) {
	conf := defaultConfig()
	if path == "" {
		return conf, nil
	}

	md, err := toml.DecodeFile(path, conf)
	if err != nil {
		return nil, errors.Wrapf(err, "decode %q", path)
	}
	if undec := md.Undecoded(); len(undec) > 0 {
		return nil, errors.Errorf("unknown keys in %q: %v", path, undec)
	}

	return conf, nil
}

func (c *Config) logger() (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}

	log := logrus.New()
	log.SetLevel(lvl)
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	return log, nil
}
