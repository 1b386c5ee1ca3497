// Package png decodes PNG (ISO/IEC 15948) byte streams into flat 8-bit
// RGBA rasters. It owns the whole pipeline: signature check, CRC-verified
// chunk parsing, ordering enforcement, zlib inflation, scanline filter
// reversal, and colour normalisation. It does not encode, and it ignores
// every ancillary chunk except tRNS.
package png

import (
	"image"
	"image/color"
	"io"
	"os"
)

var pngSignature = [8]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

// RgbaImage is the decoded raster: Pix holds Width*Height packed 4-byte
// pixels in the byte order the decode was configured with.
type RgbaImage struct {
	Width  uint32
	Height uint32
	Pix    []byte

	order ByteOrder
}

// Order is the channel layout Pix was written in.
func (img *RgbaImage) Order() ByteOrder {
	return img.order
}

func (img *RgbaImage) ColorModel() color.Model {
	return color.NRGBAModel
}

func (img *RgbaImage) Bounds() image.Rectangle {
	return image.Rect(0, 0, int(img.Width), int(img.Height))
}

func (img *RgbaImage) At(x, y int) color.Color {
	if !image.Pt(x, y).In(img.Bounds()) {
		return color.NRGBA{}
	}
	i := (y*int(img.Width) + x) * 4
	px := color.NRGBA{R: img.Pix[i], G: img.Pix[i+1], B: img.Pix[i+2], A: img.Pix[i+3]}
	if img.order == OrderBGRA {
		px.R, px.B = px.B, px.R
	}
	return px
}

// DecodeFile decodes the PNG file at path.
func DecodeFile(path string, opts ...Option) (*RgbaImage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, wrapErr(IoError, err, "cannot open %s", path)
	}
	defer f.Close()
	return Decode(f, opts...)
}

// Decode reads one PNG stream from r and returns its raster. Any failure
// is fatal and returns a *DecodeError; there are no partial results.
func Decode(r io.Reader, opts ...Option) (*RgbaImage, error) {
	options := resolveOptions(opts)

	var sig [8]byte
	if _, err := io.ReadFull(r, sig[:]); err != nil {
		return nil, wrapErr(BadSignature, err, "short read of signature")
	}
	if sig != pngSignature {
		return nil, decodeErr(BadSignature, "first 8 bytes %x are not a PNG signature", sig)
	}

	doc := document{allowInterlace: options.AllowInterlace}
	cr := newChunkReader(r, options.MaxChunkBytes)
	for !doc.done() {
		offset := cr.offset
		c, err := cr.next()
		if err != nil {
			// Premature EOF mid-stream also lands here: the mandatory
			// IEND never arrived.
			return nil, err
		}
		if err := doc.apply(c, offset); err != nil {
			return nil, err
		}
	}

	// IEND must be the last chunk; trailing bytes are a violation.
	var trailing [1]byte
	if n, _ := r.Read(trailing[:]); n > 0 {
		return nil, decodeErr(OrderingViolation, "data after IEND")
	}

	return finishDecode(&doc, options)
}

// finishDecode runs stage two on a fully accumulated document: inflate,
// unfilter, normalise.
func finishDecode(doc *document, options Options) (*RgbaImage, error) {
	h := &doc.header

	// Both dimensions fit 31 bits individually, but their product can
	// still overflow the size arithmetic below.
	if int64(h.Width)*int64(h.Height) > 1<<33 {
		return nil, decodeErr(BadPixelData, "%dx%d pixels exceeds decoder limits", h.Width, h.Height)
	}

	raw, err := inflateIdat(doc.idat, expectedRawSize(h))
	if err != nil {
		return nil, err
	}

	out := &RgbaImage{
		Width:  h.Width,
		Height: h.Height,
		Pix:    make([]byte, int(h.Width)*int(h.Height)*4),
		order:  options.ByteOrder,
	}
	n := &normaliser{
		header:       h,
		palette:      doc.palette,
		transparency: doc.transparency,
		order:        options.ByteOrder,
		dst:          out.Pix,
	}
	bpp := h.bytesPerPixel()

	if h.Interlace == interlaceNone {
		flat, err := unfilter(raw, h.rowBytes(int(h.Width)), int(h.Height), bpp)
		if err != nil {
			return nil, err
		}
		if err := n.convert(flat, int(h.Width), int(h.Height), interlacePass{0, 0, 1, 1}); err != nil {
			return nil, err
		}
		return out, nil
	}

	// Adam7: the inflated stream is seven consecutive sub-images, each
	// filtered independently.
	rest := raw
	for _, pass := range adam7Passes {
		w, rows := pass.passExtent(h.Width, h.Height)
		if w == 0 || rows == 0 {
			continue
		}
		rowBytes := h.rowBytes(w)
		passLen := rows * (1 + rowBytes)
		flat, err := unfilter(rest[:passLen], rowBytes, rows, bpp)
		if err != nil {
			return nil, err
		}
		if err := n.convert(flat, w, rows, pass); err != nil {
			return nil, err
		}
		rest = rest[passLen:]
	}
	return out, nil
}
