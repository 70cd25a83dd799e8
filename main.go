package main

import (
	"io"
	"log/slog"
	"os"

	"hideimage/compare"
	"hideimage/config"
	"hideimage/hide"
	"hideimage/parallel"
	"hideimage/reveal"
	"hideimage/stego"

	"github.com/alecthomas/kong"
)

type CLI struct {
	Config    kong.ConfigFlag `help:"Load flag defaults from this YAML file"`
	LogLevel  string          `help:"Minimum level of logged messages" enum:"debug,info,warn,error" default:"info" env:"HIDEIMAGE_LOG_LEVEL"`
	LogFormat string          `help:"Log output format" enum:"text,json" default:"text" env:"HIDEIMAGE_LOG_FORMAT"`
	Workers   int             `help:"Number of workers embedding and extracting, 0 uses every CPU" default:"0" env:"HIDEIMAGE_WORKERS"`

	Hide     hide.CLICmd      `cmd:"" help:"Hide a message image inside a carrier image"`
	Reveal   reveal.CLICmd    `cmd:"" help:"Recover a message image hidden in a carrier image"`
	Even     hide.EvenCmd     `cmd:"" help:"Round every color channel of an image down to an even value"`
	Capacity hide.CapacityCmd `cmd:"" help:"Report how many bytes a carrier image can hold"`
	Diff     compare.CLICmd   `cmd:"" help:"List the pixels that differ between two images"`
}

func newLogger(w io.Writer, format, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: lvl}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("hideimage"),
		kong.Description("Hide an image in the low bits of another image, and get it back."),
		kong.UsageOnError(),
		kong.Configuration(config.YAML, "~/.config/hideimage.yaml", ".hideimage.yaml"),
	)

	logger, err := newLogger(os.Stderr, cli.LogFormat, cli.LogLevel)
	kctx.FatalIfErrorf(err)
	slog.SetDefault(logger)
	pool := parallel.Start(cli.Workers)
	slog.Debug("running", "command", kctx.Command(), "workers", pool.Size())

	err = kctx.Run(stego.NewCodec(pool))
	pool.Wait(true)
	kctx.FatalIfErrorf(err)
}
