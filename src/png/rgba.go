package png

import "encoding/binary"

// The normaliser: converts a defiltered raster of any legal (colour type,
// bit depth) combination into packed 8-bit RGBA or BGRA.

type normaliser struct {
	header       *Header
	palette      []byte
	transparency []byte
	order        ByteOrder
	dst          []byte
}

func (n *normaliser) writePixel(x, y int, r, g, b, a byte) {
	i := (y*int(n.header.Width) + x) * 4
	if n.order == OrderBGRA {
		r, b = b, r
	}
	n.dst[i] = r
	n.dst[i+1] = g
	n.dst[i+2] = b
	n.dst[i+3] = a
}

// convert walks one defiltered raster of passWidth x passHeight pixels and
// writes each pixel to (xStart + x*xDelta, yStart + y*yDelta) in the
// destination. A non-interlaced image is a single pass with origin 0,0 and
// deltas of 1.
func (n *normaliser) convert(raw []byte, passWidth, passHeight int, pass interlacePass) error {
	h := n.header
	rowBytes := h.rowBytes(passWidth)
	if len(raw) < passHeight*rowBytes {
		return decodeErr(BadPixelData, "defiltered data is %d bytes, geometry requires %d", len(raw), passHeight*rowBytes)
	}

	for y := 0; y < passHeight; y++ {
		row := raw[y*rowBytes : (y+1)*rowBytes]
		dy := pass.yStart + y*pass.yDelta
		for x := 0; x < passWidth; x++ {
			r, g, b, a, err := n.samplePixel(row, x)
			if err != nil {
				return err
			}
			n.writePixel(pass.xStart+x*pass.xDelta, dy, r, g, b, a)
		}
	}
	return nil
}

// samplePixel derives the 8-bit RGBA value of pixel x within one
// defiltered scanline.
func (n *normaliser) samplePixel(row []byte, x int) (r, g, b, a byte, err error) {
	h := n.header
	a = 255

	switch h.ColorType {
	case ColorGray:
		switch {
		case h.BitDepth == 16:
			gray := binary.BigEndian.Uint16(row[x*2:])
			r, g, b = byte(gray>>8), byte(gray>>8), byte(gray>>8)
			a = n.grayKeyAlpha(gray)
		case h.BitDepth == 8:
			v := row[x]
			r, g, b = v, v, v
			a = n.grayKeyAlpha(uint16(v))
		default:
			v := subByteSample(row, x, h.BitDepth)
			s := scaleSample(v, h.BitDepth)
			r, g, b = s, s, s
			a = n.grayKeyAlpha(uint16(v))
		}

	case ColorRGB:
		if h.BitDepth == 16 {
			r = row[x*6]
			g = row[x*6+2]
			b = row[x*6+4]
			a = n.rgbKeyAlpha16(row[x*6 : x*6+6])
		} else {
			r = row[x*3]
			g = row[x*3+1]
			b = row[x*3+2]
			a = n.rgbKeyAlpha8(r, g, b)
		}

	case ColorPalette:
		var index int
		if h.BitDepth == 8 {
			index = int(row[x])
		} else {
			index = int(subByteSample(row, x, h.BitDepth))
		}
		if index*3 >= len(n.palette) {
			return 0, 0, 0, 0, decodeErr(BadPixelData, "palette index %d out of range, palette has %d entries", index, len(n.palette)/3)
		}
		r = n.palette[index*3]
		g = n.palette[index*3+1]
		b = n.palette[index*3+2]
		if index < len(n.transparency) {
			a = n.transparency[index]
		}

	case ColorGrayAlpha:
		if h.BitDepth == 16 {
			v := row[x*4]
			r, g, b = v, v, v
			a = row[x*4+2]
		} else {
			v := row[x*2]
			r, g, b = v, v, v
			a = row[x*2+1]
		}

	case ColorRGBA:
		if h.BitDepth == 16 {
			r = row[x*8]
			g = row[x*8+2]
			b = row[x*8+4]
			a = row[x*8+6]
		} else {
			r = row[x*4]
			g = row[x*4+1]
			b = row[x*4+2]
			a = row[x*4+3]
		}
	}

	return r, g, b, a, nil
}

// grayKeyAlpha applies colour-key transparency for grayscale images. The
// comparison is at the sample's own precision against the 16-bit tRNS
// value, never against a rescaled sample.
func (n *normaliser) grayKeyAlpha(sample uint16) byte {
	if len(n.transparency) != 2 {
		return 255
	}
	if binary.BigEndian.Uint16(n.transparency) == sample {
		return 0
	}
	return 255
}

func (n *normaliser) rgbKeyAlpha8(r, g, b byte) byte {
	if len(n.transparency) != 6 {
		return 255
	}
	keyR := binary.BigEndian.Uint16(n.transparency[0:])
	keyG := binary.BigEndian.Uint16(n.transparency[2:])
	keyB := binary.BigEndian.Uint16(n.transparency[4:])
	if keyR == uint16(r) && keyG == uint16(g) && keyB == uint16(b) {
		return 0
	}
	return 255
}

func (n *normaliser) rgbKeyAlpha16(px []byte) byte {
	if len(n.transparency) != 6 {
		return 255
	}
	for i := 0; i < 6; i += 2 {
		if binary.BigEndian.Uint16(px[i:]) != binary.BigEndian.Uint16(n.transparency[i:]) {
			return 255
		}
	}
	return 0
}
