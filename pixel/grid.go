// Package pixel holds the in-memory pixel grid the steganography code works
// on: 8-bit-per-channel ARGB words, one per pixel.
package pixel

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"
)

// Grid is a Width x Height block of ARGB pixels. The pixel at (x, y) is
// Pix[y*Width+x]; alpha sits in the highest byte and blue in the lowest.
type Grid struct {
	Width  int
	Height int
	Pix    []uint32
}

func New(width, height int) *Grid {
	return &Grid{
		Width:  width,
		Height: height,
		Pix:    make([]uint32, width*height),
	}
}

func (g *Grid) At(x, y int) uint32 {
	return g.Pix[y*g.Width+x]
}

func (g *Grid) Set(x, y int, v uint32) {
	g.Pix[y*g.Width+x] = v
}

// Len is the number of pixels in the grid.
func (g *Grid) Len() int {
	return g.Width * g.Height
}

func (g *Grid) Size() image.Point {
	return image.Pt(g.Width, g.Height)
}

func (g *Grid) Clone() *Grid {
	c := &Grid{
		Width:  g.Width,
		Height: g.Height,
		Pix:    make([]uint32, len(g.Pix)),
	}
	copy(c.Pix, g.Pix)
	return c
}

func (g *Grid) Equal(o *Grid) bool {
	if g.Width != o.Width || g.Height != o.Height {
		return false
	}
	for i, v := range g.Pix {
		if o.Pix[i] != v {
			return false
		}
	}
	return true
}

// Opaque reports whether every pixel has full alpha.
func (g *Grid) Opaque() bool {
	for _, v := range g.Pix {
		if v>>24 != 0xff {
			return false
		}
	}
	return true
}

func Pack(a, r, g, b uint8) uint32 {
	return uint32(a)<<24 | uint32(r)<<16 | uint32(g)<<8 | uint32(b)
}

func Unpack(v uint32) (a, r, g, b uint8) {
	return uint8(v >> 24), uint8(v >> 16), uint8(v >> 8), uint8(v)
}

// Format renders a pixel as "alpha red green blue" in decimal.
func Format(v uint32) string {
	a, r, g, b := Unpack(v)
	return fmt.Sprintf("%d %d %d %d", a, r, g, b)
}

// FromImage copies img into a new grid. Channels are taken non-premultiplied,
// so an NRGBA source round-trips bit for bit.
func FromImage(img image.Image) *Grid {
	b := img.Bounds()
	nrgba, ok := img.(*image.NRGBA)
	if !ok || nrgba.Rect.Min != (image.Point{}) {
		nrgba = image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(nrgba, nrgba.Bounds(), img, b.Min, draw.Src)
	}

	g := New(b.Dx(), b.Dy())
	for y := 0; y < g.Height; y++ {
		row := nrgba.Pix[y*nrgba.Stride:]
		for x := 0; x < g.Width; x++ {
			p := row[x*4 : x*4+4]
			g.Pix[y*g.Width+x] = Pack(p[3], p[0], p[1], p[2])
		}
	}
	return g
}

// Image returns the grid as an *image.NRGBA sharing no memory with g.
func (g *Grid) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, g.Width, g.Height))
	for i, v := range g.Pix {
		a, r, gr, b := Unpack(v)
		img.Pix[i*4+0] = r
		img.Pix[i*4+1] = gr
		img.Pix[i*4+2] = b
		img.Pix[i*4+3] = a
	}
	return img
}

func (g *Grid) Bounds() image.Rectangle {
	return image.Rect(0, 0, g.Width, g.Height)
}
