package stego

// Channel is one of the three color channels carrying a payload bit.
type Channel int

const (
	Red Channel = iota
	Green
	Blue
)

// BitsPerPixel is the number of payload bits stored in one pixel.
const BitsPerPixel = 3

func (c Channel) String() string {
	switch c {
	case Red:
		return "red"
	case Green:
		return "green"
	case Blue:
		return "blue"
	}
	return "invalid"
}

// Mask selects the low bit of the channel inside an ARGB word.
func (c Channel) Mask() uint32 {
	return 1 << (16 - 8*uint(c))
}

// Position locates a single payload bit inside the carrier.
type Position struct {
	X, Y    int
	Channel Channel
}

// Locate maps the index of a payload bit to the pixel and channel storing it
// in a carrier of the given height.
func Locate(bit, height int) Position {
	x, y := slotXY(bit/BitsPerPixel, height)
	return Position{X: x, Y: y, Channel: Channel(bit % BitsPerPixel)}
}

func slotXY(slot, height int) (int, int) {
	return slot / height, slot % height
}

// Slots is the number of pixels needed to hold n payload bytes.
func Slots(n int) int {
	return (n*8 + BitsPerPixel - 1) / BitsPerPixel
}

// Capacity returns how many payload bytes fit in a width x height carrier.
func Capacity(width, height int) int {
	return width * height * BitsPerPixel / 8
}
