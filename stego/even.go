package stego

import "hideimage/pixel"

// evenMask clears bit 0 of red, green and blue and keeps alpha.
const evenMask uint32 = 0xfffefefe

// EvenPixel rounds the red, green and blue channels of an ARGB word down to
// the closest even value.
func EvenPixel(p uint32) uint32 {
	return p & evenMask
}

// EvenOut returns a copy of g with every color channel made even, freeing the
// low bits for Embed.
func EvenOut(g *pixel.Grid) *pixel.Grid {
	out := pixel.New(g.Width, g.Height)
	for i, p := range g.Pix {
		out.Pix[i] = EvenPixel(p)
	}
	return out
}

// IsEven reports whether every red, green and blue channel of g is even.
func IsEven(g *pixel.Grid) bool {
	for _, p := range g.Pix {
		if p != EvenPixel(p) {
			return false
		}
	}
	return true
}
