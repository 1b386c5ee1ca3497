package png

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Ordering and multiplicity rules, exercised through full decodes of
// synthetic streams.

func TestChunkOrderingRules(t *testing.T) {
	ihdrRGB := makeChunk("IHDR", ihdrPayload(1, 1, 8, ColorRGB, 0))
	ihdrPal := makeChunk("IHDR", ihdrPayload(1, 1, 8, ColorPalette, 0))
	ihdrGray := makeChunk("IHDR", ihdrPayload(1, 1, 8, ColorGray, 0))
	plte := makeChunk("PLTE", []byte{1, 2, 3})
	iend := makeChunk("IEND", nil)
	text := makeChunk("tEXt", []byte("Comment\x00x"))

	rgbIdat := func(t *testing.T) []byte {
		return makeChunk("IDAT", deflate(t, []byte{0x00, 0xFF, 0x00, 0x00}))
	}
	grayIdat := func(t *testing.T) []byte {
		return makeChunk("IDAT", deflate(t, []byte{0x00, 0x42}))
	}
	palIdat := func(t *testing.T) []byte {
		return makeChunk("IDAT", deflate(t, []byte{0x00, 0x00}))
	}

	items := []struct {
		name   string
		chunks [][]byte
		kind   ErrorKind
		ok     bool
	}{
		{
			"valid with ancillary chunks around",
			[][]byte{ihdrRGB, text, rgbIdat(t), text, iend},
			0, true,
		},
		{
			"suggested palette for rgb is tolerated",
			[][]byte{ihdrRGB, plte, rgbIdat(t), iend},
			0, true,
		},
		{
			"duplicate IHDR",
			[][]byte{ihdrRGB, ihdrRGB, rgbIdat(t), iend},
			OrderingViolation, false,
		},
		{
			"ancillary before IHDR",
			[][]byte{text, ihdrRGB, rgbIdat(t), iend},
			OrderingViolation, false,
		},
		{
			"PLTE after IDAT",
			[][]byte{ihdrRGB, rgbIdat(t), plte, iend},
			OrderingViolation, false,
		},
		{
			"chunk between IDAT runs",
			[][]byte{ihdrRGB, rgbIdat(t), text, rgbIdat(t), iend},
			OrderingViolation, false,
		},
		{
			"IEND before IDAT",
			[][]byte{ihdrRGB, iend},
			OrderingViolation, false,
		},
		{
			"IEND with payload",
			[][]byte{ihdrRGB, rgbIdat(t), makeChunk("IEND", []byte{1})},
			OrderingViolation, false,
		},
		{
			"data after IEND",
			[][]byte{ihdrRGB, rgbIdat(t), iend, text},
			OrderingViolation, false,
		},
		{
			"PLTE for grayscale",
			[][]byte{ihdrGray, plte, grayIdat(t), iend},
			OrderingViolation, false,
		},
		{
			"duplicate PLTE",
			[][]byte{ihdrPal, plte, plte, palIdat(t), iend},
			OrderingViolation, false,
		},
		{
			"palette image without PLTE",
			[][]byte{ihdrPal, palIdat(t), iend},
			OrderingViolation, false,
		},
		{
			"unknown critical chunk",
			[][]byte{ihdrRGB, makeChunk("ABCD", []byte{1, 2}), rgbIdat(t), iend},
			BadChunk, false,
		},
		{
			"palette length not multiple of 3",
			[][]byte{makeChunk("IHDR", ihdrPayload(1, 1, 8, ColorPalette, 0)), makeChunk("PLTE", []byte{1, 2, 3, 4}), palIdat(t), iend},
			BadPalette, false,
		},
		{
			"palette too long",
			[][]byte{ihdrPal, makeChunk("PLTE", make([]byte, 771)), palIdat(t), iend},
			BadPalette, false,
		},
	}

	for _, item := range items {
		t.Run(item.name, func(t *testing.T) {
			_, err := Decode(bytes.NewReader(makePNG(item.chunks...)))
			if item.ok {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.True(t, IsKind(err, item.kind), "got %v", err)
			}
		})
	}
}

func TestTransparencyRules(t *testing.T) {
	iend := makeChunk("IEND", nil)
	plte := makeChunk("PLTE", []byte{1, 2, 3, 4, 5, 6})

	items := []struct {
		name   string
		ihdr   []byte
		chunks func(t *testing.T) [][]byte
		kind   ErrorKind
		ok     bool
	}{
		{
			"gray tRNS right size",
			ihdrPayload(1, 1, 8, ColorGray, 0),
			func(t *testing.T) [][]byte {
				return [][]byte{makeChunk("tRNS", []byte{0x00, 0x42}), makeChunk("IDAT", deflate(t, []byte{0x00, 0x41}))}
			},
			0, true,
		},
		{
			"gray tRNS wrong size",
			ihdrPayload(1, 1, 8, ColorGray, 0),
			func(t *testing.T) [][]byte {
				return [][]byte{makeChunk("tRNS", []byte{0x42}), makeChunk("IDAT", deflate(t, []byte{0x00, 0x41}))}
			},
			BadTransparency, false,
		},
		{
			"rgb tRNS wrong size",
			ihdrPayload(1, 1, 8, ColorRGB, 0),
			func(t *testing.T) [][]byte {
				return [][]byte{makeChunk("tRNS", []byte{0, 1, 0, 2}), makeChunk("IDAT", deflate(t, []byte{0x00, 1, 2, 3}))}
			},
			BadTransparency, false,
		},
		{
			"tRNS forbidden for rgba",
			ihdrPayload(1, 1, 8, ColorRGBA, 0),
			func(t *testing.T) [][]byte {
				return [][]byte{makeChunk("tRNS", []byte{0, 1}), makeChunk("IDAT", deflate(t, []byte{0x00, 1, 2, 3, 4}))}
			},
			BadTransparency, false,
		},
		{
			"tRNS forbidden for gray alpha",
			ihdrPayload(1, 1, 8, ColorGrayAlpha, 0),
			func(t *testing.T) [][]byte {
				return [][]byte{makeChunk("tRNS", []byte{0, 1}), makeChunk("IDAT", deflate(t, []byte{0x00, 1, 2}))}
			},
			BadTransparency, false,
		},
		{
			"palette tRNS before PLTE",
			ihdrPayload(1, 1, 8, ColorPalette, 0),
			func(t *testing.T) [][]byte {
				return [][]byte{makeChunk("tRNS", []byte{0}), plte, makeChunk("IDAT", deflate(t, []byte{0x00, 0x00}))}
			},
			OrderingViolation, false,
		},
		{
			"palette tRNS longer than palette",
			ihdrPayload(1, 1, 8, ColorPalette, 0),
			func(t *testing.T) [][]byte {
				return [][]byte{plte, makeChunk("tRNS", []byte{0, 1, 2}), makeChunk("IDAT", deflate(t, []byte{0x00, 0x00}))}
			},
			BadTransparency, false,
		},
		{
			"tRNS after IDAT",
			ihdrPayload(1, 1, 8, ColorGray, 0),
			func(t *testing.T) [][]byte {
				return [][]byte{makeChunk("IDAT", deflate(t, []byte{0x00, 0x41})), makeChunk("tRNS", []byte{0x00, 0x42})}
			},
			OrderingViolation, false,
		},
		{
			"duplicate tRNS",
			ihdrPayload(1, 1, 8, ColorGray, 0),
			func(t *testing.T) [][]byte {
				return [][]byte{makeChunk("tRNS", []byte{0x00, 0x42}), makeChunk("tRNS", []byte{0x00, 0x42}), makeChunk("IDAT", deflate(t, []byte{0x00, 0x41}))}
			},
			OrderingViolation, false,
		},
	}

	for _, item := range items {
		t.Run(item.name, func(t *testing.T) {
			chunks := [][]byte{makeChunk("IHDR", item.ihdr)}
			chunks = append(chunks, item.chunks(t)...)
			chunks = append(chunks, iend)
			_, err := Decode(bytes.NewReader(makePNG(chunks...)))
			if item.ok {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.True(t, IsKind(err, item.kind), "got %v", err)
			}
		})
	}
}
