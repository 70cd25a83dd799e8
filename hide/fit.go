package hide

import (
	"image"
	"log/slog"
	"math"

	"hideimage/pixel"
	"hideimage/stego"

	"golang.org/x/image/draw"
)

const (
	maxFitAttempts = 16
	// fitMargin undershoots the ideal scale, since compressed size does not
	// shrink exactly with the pixel count.
	fitMargin = 0.9
)

// fit downscales msg until serialize produces a payload that fits in a
// carrier of the given number of pixels.
func fit(logger *slog.Logger, msg *pixel.Grid, pixels int, serialize func(*pixel.Grid) ([]byte, error)) ([]byte, error) {
	g := msg
	for attempt := 0; ; attempt++ {
		payload, err := serialize(g)
		if err != nil {
			return nil, err
		}
		need := stego.Slots(len(payload))
		if need <= pixels {
			if attempt > 0 {
				logger.Info("message downscaled", "width", g.Width, "height", g.Height, "attempts", attempt)
			}
			return payload, nil
		}

		if attempt == maxFitAttempts || (g.Width <= 1 && g.Height <= 1) {
			return nil, &stego.CapacityError{Need: need, Have: pixels}
		}

		factor := math.Sqrt(float64(pixels)/float64(need)) * fitMargin
		g = downscale(g, factor)
		logger.Debug("downscaling message", "width", g.Width, "height", g.Height, "payload", len(payload))
	}
}

func downscale(g *pixel.Grid, factor float64) *pixel.Grid {
	w := max(1, int(math.Round(float64(g.Width)*factor)))
	h := max(1, int(math.Round(float64(g.Height)*factor)))
	if w >= g.Width && h >= g.Height {
		w, h = max(1, g.Width-1), max(1, g.Height-1)
	}

	dest := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dest, dest.Bounds(), g.Image(), g.Bounds(), draw.Src, nil)
	return pixel.FromImage(dest)
}
