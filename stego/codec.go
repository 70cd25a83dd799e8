package stego

import (
	"hideimage/parallel"
	"hideimage/pixel"
)

const (
	// chunkBytes is the number of payload bytes embedded by one task. Being
	// a multiple of 3, every chunk fills whole pixels and no two tasks write
	// the same one.
	chunkBytes = 3 * 4096
	// chunkSlots is the number of pixels read by one extraction task; it
	// yields exactly chunkBytes bytes.
	chunkSlots = chunkBytes * 8 / BitsPerPixel
)

// Codec embeds and extracts payloads, splitting the work into independent
// byte ranges run on a worker pool. A Codec waits on the whole pool, so calls
// sharing one pool should not overlap.
type Codec struct {
	pool *parallel.Pool
}

// NewCodec returns a Codec running on pool. A nil pool runs everything on the
// calling goroutine.
func NewCodec(pool *parallel.Pool) *Codec {
	if pool == nil {
		pool = parallel.Start(1)
	}
	return &Codec{pool: pool}
}

var sequential = NewCodec(nil)

// Embed writes payload into a copy of carrier, which must have been evened
// with EvenOut. The carrier itself is never modified.
func Embed(carrier *pixel.Grid, payload []byte) (*pixel.Grid, error) {
	return sequential.Embed(carrier, payload)
}

// Extract reads back the payload stored in encoded, with trailing zero bytes
// removed.
func Extract(encoded *pixel.Grid) []byte {
	return sequential.Extract(encoded)
}

func (c *Codec) Embed(carrier *pixel.Grid, payload []byte) (*pixel.Grid, error) {
	need, have := Slots(len(payload)), carrier.Len()
	if need > have {
		return nil, &CapacityError{Need: need, Have: have}
	}

	out := carrier.Clone()
	for start := 0; start < len(payload); start += chunkBytes {
		end := min(start+chunkBytes, len(payload))
		c.pool.Do(func() {
			embedRange(out, payload, start, end)
		})
	}
	c.pool.Wait(false)

	return out, nil
}

func (c *Codec) Extract(encoded *pixel.Grid) []byte {
	slots := encoded.Len()
	buf := make([]byte, (slots*BitsPerPixel+7)/8)
	for start := 0; start < slots; start += chunkSlots {
		end := min(start+chunkSlots, slots)
		c.pool.Do(func() {
			extractRange(encoded, buf, start, end)
		})
	}
	c.pool.Wait(false)

	return trimZeros(buf)
}

// embedRange ORs payload[start:end] into g. start must be a multiple of 3.
func embedRange(g *pixel.Grid, payload []byte, start, end int) {
	slot := start * 8 / BitsPerPixel
	var code uint32
	n := 0
	for _, b := range payload[start:end] {
		for mask := byte(0x80); mask > 0; mask >>= 1 {
			// each bit moves one channel up: after three bits the first
			// one sits on red's low bit and the last on blue's
			code <<= 8
			if b&mask != 0 {
				code |= 1
			}
			if n++; n == BitsPerPixel {
				orSlot(g, slot, code)
				slot++
				code, n = 0, 0
			}
		}
	}

	// only the final chunk can end mid-pixel; pad the code with zero bits
	if n > 0 {
		orSlot(g, slot, code<<(8*uint(BitsPerPixel-n)))
	}
}

func orSlot(g *pixel.Grid, slot int, code uint32) {
	x, y := slotXY(slot, g.Height)
	g.Pix[y*g.Width+x] |= code
}

// extractRange decodes pixels [start, end) into buf. start must be a multiple
// of 8 so the first bit read starts a byte.
func extractRange(g *pixel.Grid, buf []byte, start, end int) {
	i := start * BitsPerPixel / 8
	var by byte
	n := 0
	for slot := start; slot < end; slot++ {
		x, y := slotXY(slot, g.Height)
		p := g.Pix[y*g.Width+x]
		for ch := Red; ch <= Blue; ch++ {
			by <<= 1
			if p&ch.Mask() != 0 {
				by |= 1
			}
			if n++; n == 8 {
				buf[i] = by
				i++
				by, n = 0, 0
			}
		}
	}
}

func trimZeros(buf []byte) []byte {
	end := len(buf)
	for end > 0 && buf[end-1] == 0 {
		end--
	}
	return buf[:end:end]
}
