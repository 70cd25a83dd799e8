// Package compare finds the pixels that differ between two images.
package compare

import (
	"fmt"
	"image"

	"hideimage/pixel"
)

// Mismatch is a pixel whose ARGB value differs between the two grids.
type Mismatch struct {
	X, Y int
	A, B uint32
}

// DimensionMismatchError is returned when the grids are not the same size.
type DimensionMismatchError struct {
	A, B image.Point
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("mismatch in size: %dx%d vs %dx%d", e.A.X, e.A.Y, e.B.X, e.B.Y)
}

// Grids lists every differing pixel, walking each column top to bottom before
// moving right. Grids of different size are not compared at all.
func Grids(a, b *pixel.Grid) ([]Mismatch, error) {
	if a.Size() != b.Size() {
		return nil, &DimensionMismatchError{A: a.Size(), B: b.Size()}
	}

	var res []Mismatch
	for x := 0; x < a.Width; x++ {
		for y := 0; y < a.Height; y++ {
			if pa, pb := a.At(x, y), b.At(x, y); pa != pb {
				res = append(res, Mismatch{X: x, Y: y, A: pa, B: pb})
			}
		}
	}
	return res, nil
}
