package compare

import (
	"fmt"
	"log/slog"

	"hideimage/imageio"
	"hideimage/pixel"

	"github.com/alecthomas/kong"
)

type CLICmd struct {
	First  string `arg:"" help:"First image" type:"existingfile"`
	Second string `arg:"" help:"Second image" type:"existingfile"`
	Max    int    `help:"Stop logging after this many mismatches, 0 logs all" default:"20"`
}

func (c *CLICmd) Validate(kctx *kong.Context) error {
	if c.Max < 0 {
		return fmt.Errorf("invalid mismatch limit: %d", c.Max)
	}
	return nil
}

func (c *CLICmd) Run() error {
	first, _, err := imageio.Load(c.First)
	if err != nil {
		return err
	}
	second, _, err := imageio.Load(c.Second)
	if err != nil {
		return err
	}

	mismatches, err := Grids(first, second)
	if err != nil {
		return err
	}

	for i, m := range mismatches {
		if c.Max > 0 && i == c.Max {
			slog.Info("more mismatches not shown", "count", len(mismatches)-i)
			break
		}
		slog.Info("mismatch", "x", m.X, "y", m.Y, "first", pixel.Format(m.A), "second", pixel.Format(m.B))
	}

	slog.Info("stats", "pixels", first.Len(), "mismatches", len(mismatches))
	if len(mismatches) > 0 {
		return fmt.Errorf("images differ in %d pixels", len(mismatches))
	}
	return nil
}
