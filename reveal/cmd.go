package reveal

import (
	"fmt"
	"log/slog"
	"slices"

	"hideimage/frame"
	"hideimage/imageio"
	"hideimage/stego"

	"github.com/alecthomas/kong"
)

type CLICmd struct {
	Encoded string `arg:"" help:"Carrier image holding a hidden message" type:"existingfile"`
	Output  string `short:"o" help:"Destination of the recovered message" required:"" type:"path"`
	Format  string `help:"Format of the recovered message image. Guessed from the output name when empty"`
	Raw     bool   `help:"Write the recovered bytes as they are instead of decoding them as an image" default:"false"`
	Force   bool   `help:"Overwrite an existing destination file" default:"false"`
}

func (c *CLICmd) Validate(kctx *kong.Context) error {
	if c.Raw && c.Format != "" {
		return fmt.Errorf("--format has no effect with --raw")
	}
	if c.Format != "" && !slices.Contains(imageio.Formats, c.Format) {
		return fmt.Errorf("unsupported output format %q, use one of %v", c.Format, imageio.Formats)
	}
	return nil
}

func (c *CLICmd) Run(codec *stego.Codec) error {
	logger := slog.Default().With("file", c.Encoded)

	encoded, _, err := imageio.Load(c.Encoded)
	if err != nil {
		return err
	}

	data := codec.Extract(encoded)
	logger.Info("extracted", "bytes", len(data))
	if len(data) == 0 {
		return fmt.Errorf("no hidden payload in %q", c.Encoded)
	}

	if frame.IsFramed(data) {
		if data, err = frame.Unpack(data, stego.Capacity(encoded.Width, encoded.Height)); err != nil {
			return fmt.Errorf("could not unpack payload: %w", err)
		}
		logger.Info("unpacked frame", "bytes", len(data))
	}

	if c.Raw {
		return imageio.WriteFile(data, c.Output, c.Force)
	}

	msg, format, err := imageio.DecodeBytes(data)
	if err != nil {
		return err
	}

	outFormat := c.Format
	if outFormat == "" {
		outFormat = imageio.FormatFromPath(c.Output)
	}
	if outFormat == "" {
		outFormat = format
	}
	if !slices.Contains(imageio.Formats, outFormat) {
		// decoded formats we can't write, such as webp
		outFormat = "png"
	}
	if err = imageio.Save(msg, c.Output, outFormat, c.Force); err != nil {
		return err
	}

	slog.Info("stats", "output", c.Output, "format", outFormat, "payload_format", format,
		"width", msg.Width, "height", msg.Height)
	return nil
}
