package hide

import (
	"bytes"
	"fmt"
	"log/slog"

	"hideimage/frame"
	"hideimage/imageio"
	"hideimage/pixel"
	"hideimage/stego"

	"github.com/alecthomas/kong"
)

type CLICmd struct {
	Carrier       string `arg:"" help:"Carrier image the message is hidden in" type:"existingfile"`
	Message       string `arg:"" help:"Message image to hide" type:"existingfile"`
	Output        string `short:"o" help:"Destination of the encoded carrier" required:"" type:"path"`
	Format        string `help:"Format of the encoded carrier (png, bmp, tiff; bmp only for opaque carriers). Guessed from the output name when empty"`
	PayloadFormat string `help:"Format the message image is stored as inside the carrier" enum:"png,bmp,tiff,gif,jpeg" default:"png"`
	Evened        string `help:"Also save the evened carrier to this path" type:"path"`
	Fit           bool   `help:"Downscale the message until it fits in the carrier" default:"false"`
	Frame         bool   `help:"Wrap the payload in a frame recording its exact length" default:"false"`
	Compress      bool   `help:"Compress the payload with zstd. Implies --frame" default:"false"`
	Verify        bool   `help:"Extract the payload again after embedding and check it" default:"false"`
	Force         bool   `help:"Overwrite existing destination files" default:"false"`
}

func (c *CLICmd) Validate(kctx *kong.Context) error {
	c.Format = imageio.ResolveFormat(c.Format, c.Output)
	if !imageio.Lossless(c.Format) {
		return fmt.Errorf("output format %q would destroy the payload, use png, bmp or tiff", c.Format)
	}

	if c.Evened != "" {
		if f := imageio.ResolveFormat("", c.Evened); !imageio.Lossless(f) {
			return fmt.Errorf("evened carrier format %q is not lossless", f)
		}
	}

	if c.Compress {
		c.Frame = true
	}
	return nil
}

func (c *CLICmd) Run(codec *stego.Codec) error {
	logger := slog.Default().With("carrier", c.Carrier)

	carrier, _, err := imageio.Load(c.Carrier)
	if err != nil {
		return err
	}
	evened := stego.EvenOut(carrier)

	msg, _, err := imageio.Load(c.Message)
	if err != nil {
		return err
	}

	capacity := stego.Capacity(evened.Width, evened.Height)
	payload, err := c.payload(logger, msg, evened.Len())
	if err != nil {
		return err
	}
	if need := stego.Slots(len(payload)); need > evened.Len() {
		return fmt.Errorf("could not hide %q: %w", c.Message, &stego.CapacityError{Need: need, Have: evened.Len()})
	}

	if c.Evened != "" {
		if err = imageio.Save(evened, c.Evened, imageio.ResolveFormat("", c.Evened), c.Force); err != nil {
			return err
		}
		logger.Info("saved evened carrier", "path", c.Evened)
	}

	if !c.Frame {
		if n := len(payload) - len(bytes.TrimRight(payload, "\x00")); n > 0 {
			logger.Warn("payload ends in zero bytes that extraction will drop, consider --frame", "count", n)
		}
	}

	logger.Info("embedding", "payload", len(payload), "capacity", capacity, "pixels", stego.Slots(len(payload)))
	encoded, err := codec.Embed(evened, payload)
	if err != nil {
		return fmt.Errorf("could not hide %q: %w", c.Message, err)
	}

	if c.Verify {
		want := payload
		if c.Frame {
			// the frame restores trailing zeros on its own
			want = bytes.TrimRight(payload, "\x00")
		}
		if got := codec.Extract(encoded); !bytes.Equal(got, want) {
			return fmt.Errorf("verification failed: extracted %d bytes, expected %d", len(got), len(want))
		}
		logger.Info("payload verified")
	}

	if err = imageio.Save(encoded, c.Output, c.Format, c.Force); err != nil {
		return err
	}

	slog.Info("stats", "output", c.Output, "format", c.Format, "payload", len(payload),
		"capacity", capacity, "used", fmt.Sprintf("%.1f%%", 100*float64(len(payload))/float64(max(capacity, 1))))
	return nil
}

func (c *CLICmd) payload(logger *slog.Logger, msg *pixel.Grid, pixels int) ([]byte, error) {
	serialize := func(g *pixel.Grid) ([]byte, error) {
		data, err := imageio.Serialize(g, c.PayloadFormat)
		if err != nil || !c.Frame {
			return data, err
		}
		return frame.Pack(data, c.Compress)
	}

	if c.Fit {
		return fit(logger, msg, pixels, serialize)
	}
	return serialize(msg)
}

// EvenCmd saves a copy of an image with every color channel rounded down to
// an even value.
type EvenCmd struct {
	Input  string `arg:"" help:"Image to even out" type:"existingfile"`
	Output string `short:"o" help:"Destination of the evened image" required:"" type:"path"`
	Format string `help:"Output format (png, bmp, tiff). Guessed from the output name when empty"`
	Force  bool   `help:"Overwrite an existing destination file" default:"false"`
}

func (c *EvenCmd) Validate(kctx *kong.Context) error {
	c.Format = imageio.ResolveFormat(c.Format, c.Output)
	if !imageio.Lossless(c.Format) {
		return fmt.Errorf("output format %q is not lossless", c.Format)
	}
	return nil
}

func (c *EvenCmd) Run() error {
	g, _, err := imageio.Load(c.Input)
	if err != nil {
		return err
	}

	if err = imageio.Save(stego.EvenOut(g), c.Output, c.Format, c.Force); err != nil {
		return err
	}
	slog.Info("evened", "input", c.Input, "output", c.Output, "width", g.Width, "height", g.Height)
	return nil
}

// CapacityCmd reports how much a carrier can hold.
type CapacityCmd struct {
	Carrier string `arg:"" help:"Carrier image" type:"existingfile"`
}

func (c *CapacityCmd) Run() error {
	g, format, err := imageio.Load(c.Carrier)
	if err != nil {
		return err
	}

	slog.Info("capacity", "carrier", c.Carrier, "format", format, "width", g.Width, "height", g.Height,
		"pixels", g.Len(), "bytes", stego.Capacity(g.Width, g.Height), "even", stego.IsEven(g))
	return nil
}
