package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"chromamatte/batch"
	"chromamatte/config"

	"github.com/alecthomas/kong"
)

var version = "dev"

type cli struct {
	Config    kong.ConfigFlag  `help:"YAML configuration file, keys as flag names with underscores" placeholder:"FILE"`
	LogLevel  string           `help:"Minimum log level" enum:"debug,info,warn,error" default:"${log_level}"`
	LogFormat string           `help:"Log line format" enum:"text,json" default:"${log_format}"`
	Version   kong.VersionFlag `help:"Print version and exit"`

	Matte      batch.CLICmd  `cmd:"" default:"withargs" help:"Make the background of every image in a folder transparent"`
	InitConfig initConfigCmd `cmd:"" help:"Write a configuration file holding the defaults"`
}

type initConfigCmd struct {
	Path  string `arg:"" optional:"" help:"Destination file" default:"${config_file}"`
	Force bool   `help:"Overwrite an existing file"`
}

func (c *initConfigCmd) Run(logger *slog.Logger) error {
	if !c.Force {
		_, err := os.Stat(c.Path)
		if err == nil {
			return fmt.Errorf("config file already exists: %q", c.Path)
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("cannot stat config file %q: %w", c.Path, err)
		}
	}

	if err := config.Save(config.Default(), c.Path); err != nil {
		return err
	}
	logger.Info("wrote config", "file", c.Path)
	return nil
}

func newLogger(w io.Writer, level, format string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func main() {
	var c cli
	kctx := kong.Parse(&c,
		kong.Name("chromamatte"),
		kong.Description("Remove flat and checkerboard backgrounds from images with a four-corner chroma key."),
		kong.UsageOnError(),
		kong.Vars{"version": version},
		config.Vars(),
		kong.Configuration(config.YAML, config.DefaultFile),
	)

	logger := newLogger(os.Stderr, c.LogLevel, c.LogFormat)
	slog.SetDefault(logger)

	kctx.FatalIfErrorf(kctx.Run(logger))
}
