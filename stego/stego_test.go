package stego

import (
	"math/rand/v2"
	"testing"

	"hideimage/parallel"
	"hideimage/pixel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomGrid(rng *rand.Rand, w, h int) *pixel.Grid {
	g := pixel.New(w, h)
	for i := range g.Pix {
		g.Pix[i] = rng.Uint32()
	}
	return g
}

func randomPayload(rng *rand.Rand, n int) []byte {
	p := make([]byte, n)
	for i := range p {
		p[i] = byte(rng.UintN(256))
	}
	if n > 0 && p[n-1] == 0 {
		p[n-1] = 0x5a
	}
	return p
}

func TestEvenOut(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	g := randomGrid(rng, 13, 7)
	even := EvenOut(g)

	require.Equal(t, g.Size(), even.Size())
	assert.True(t, IsEven(even))
	assert.True(t, even.Equal(EvenOut(even)), "evening must be idempotent")

	for i, p := range g.Pix {
		a, r, gr, b := pixel.Unpack(p)
		ea, er, eg, eb := pixel.Unpack(even.Pix[i])
		assert.Equal(t, a, ea, "alpha changed at %d", i)
		assert.Equal(t, r&^1, er)
		assert.Equal(t, gr&^1, eg)
		assert.Equal(t, b&^1, eb)
	}
}

func TestEvenPixel(t *testing.T) {
	assert.Equal(t, uint32(0xfffefefe), EvenPixel(0xffffffff))
	assert.Equal(t, uint32(0x01000000), EvenPixel(0x01010101))
	assert.Equal(t, uint32(0x80204060), EvenPixel(0x80214161))
}

func TestLocate(t *testing.T) {
	for _, tc := range []struct {
		bit, height int
		want        Position
	}{
		{bit: 0, height: 2, want: Position{X: 0, Y: 0, Channel: Red}},
		{bit: 2, height: 2, want: Position{X: 0, Y: 0, Channel: Blue}},
		{bit: 4, height: 2, want: Position{X: 0, Y: 1, Channel: Green}},
		{bit: 6, height: 2, want: Position{X: 1, Y: 0, Channel: Red}},
		{bit: 29, height: 3, want: Position{X: 3, Y: 0, Channel: Blue}},
	} {
		assert.Equal(t, tc.want, Locate(tc.bit, tc.height), "bit %d", tc.bit)
	}
}

func TestEmbed_BitsFollowLocate(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	carrier := EvenOut(randomGrid(rng, 9, 11))
	payload := randomPayload(rng, 20)

	enc, err := Embed(carrier, payload)
	require.NoError(t, err)

	for bit := 0; bit < len(payload)*8; bit++ {
		want := payload[bit/8]>>(7-bit%8)&1 == 1
		pos := Locate(bit, enc.Height)
		got := enc.At(pos.X, pos.Y)&pos.Channel.Mask() != 0
		require.Equal(t, want, got, "bit %d at %+v", bit, pos)
	}
}

func TestEmbedExtract_TwoByTwo(t *testing.T) {
	carrier := pixel.New(2, 2)
	for i := range carrier.Pix {
		carrier.Pix[i] = 0xff000000
	}

	enc, err := Embed(carrier, []byte{0b10110100})
	require.NoError(t, err)

	// bits 101 101 00(+pad 0), column by column
	assert.Equal(t, uint32(0xff010001), enc.At(0, 0))
	assert.Equal(t, uint32(0xff010001), enc.At(0, 1))
	assert.Equal(t, uint32(0xff000000), enc.At(1, 0))
	assert.Equal(t, uint32(0xff000000), enc.At(1, 1))

	assert.Equal(t, []byte{0b10110100}, Extract(enc))
}

func TestEmbedExtract_FlushRemainder(t *testing.T) {
	// 2 bytes = 16 bits: five full pixels and a final code holding one bit
	carrier := pixel.New(3, 2)
	enc, err := Embed(carrier, []byte{0x00, 0x01})
	require.NoError(t, err)

	last := Locate(15, carrier.Height)
	assert.Equal(t, Red, last.Channel)
	assert.Equal(t, uint32(0x00010000), enc.At(last.X, last.Y))
	assert.Equal(t, []byte{0x00, 0x01}, Extract(enc))
}

func TestEmbedExtract_RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 6))
	for _, tc := range []struct {
		name   string
		w, h   int
		length int
	}{
		{name: "single_pixel_empty", w: 1, h: 1, length: 0},
		{name: "one_byte", w: 3, h: 1, length: 1},
		{name: "two_bytes_remainder", w: 2, h: 3, length: 2},
		{name: "three_bytes_exact", w: 2, h: 4, length: 3},
		{name: "tall", w: 1, h: 100, length: 37},
		{name: "wide", w: 100, h: 1, length: 37},
		{name: "full", w: 16, h: 16, length: Capacity(16, 16)},
	} {
		t.Run(tc.name, func(t *testing.T) {
			carrier := EvenOut(randomGrid(rng, tc.w, tc.h))
			payload := randomPayload(rng, tc.length)

			enc, err := Embed(carrier, payload)
			require.NoError(t, err)
			assert.Equal(t, payload, Extract(enc))
		})
	}
}

func TestEmbed_Capacity(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 8))
	carrier := EvenOut(randomGrid(rng, 2, 4))
	before := carrier.Clone()

	// 3 bytes need exactly 8 pixels
	_, err := Embed(carrier, []byte{0x00, 0xff, 0x81})
	require.NoError(t, err)

	_, err = Embed(carrier, []byte{0x00, 0xff, 0x81, 0x01})
	var capErr *CapacityError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, 11, capErr.Need)
	assert.Equal(t, 8, capErr.Have)
	assert.True(t, before.Equal(carrier), "carrier must be left untouched")
}

func TestEmbed_LeavesCarrier(t *testing.T) {
	carrier := pixel.New(4, 4)
	_, err := Embed(carrier, []byte{0xff, 0xff})
	require.NoError(t, err)
	assert.True(t, carrier.Equal(pixel.New(4, 4)))
}

func TestCapacity(t *testing.T) {
	assert.Equal(t, 1, Capacity(2, 2))
	assert.Equal(t, 3, Capacity(2, 4))
	assert.Equal(t, 0, Capacity(0, 10))
	assert.Equal(t, 3*640*480/8, Capacity(640, 480))
}

func TestExtract_AllZero(t *testing.T) {
	rng := rand.New(rand.NewPCG(9, 10))
	got := Extract(EvenOut(randomGrid(rng, 5, 5)))
	assert.NotNil(t, got)
	assert.Empty(t, got)

	got = Extract(pixel.New(0, 0))
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestExtract_TrimsTrailingZeros(t *testing.T) {
	enc, err := Embed(pixel.New(8, 8), []byte{0x41, 0x00, 0x42, 0x00, 0x00})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x41, 0x00, 0x42}, Extract(enc))
}

func TestCodec_Parallel(t *testing.T) {
	rng := rand.New(rand.NewPCG(11, 12))
	carrier := EvenOut(randomGrid(rng, 300, 220))
	payload := randomPayload(rng, 2*chunkBytes+5)

	pool := parallel.Start(4)
	defer pool.Wait(true)
	codec := NewCodec(pool)

	enc, err := codec.Embed(carrier, payload)
	require.NoError(t, err)

	seq, err := Embed(carrier, payload)
	require.NoError(t, err)
	assert.True(t, seq.Equal(enc), "parallel and sequential embedding differ")

	assert.Equal(t, payload, codec.Extract(enc))
	assert.Equal(t, payload, Extract(enc))
}

func TestSlots(t *testing.T) {
	for n, want := range map[int]int{0: 0, 1: 3, 2: 6, 3: 8, 4: 11, 9: 24} {
		assert.Equal(t, want, Slots(n), "%d bytes", n)
	}
}
