package viewer

import (
	"encoding/binary"
	"io"

	"git.handmade.network/hmn/pngview/src/oops"
	"git.handmade.network/hmn/pngview/src/png"
)

// writeDib serialises the decoded raster as a 32-bpp BMP. The pixel data
// is the decoder's BGRA buffer verbatim; a negative biHeight makes the
// DIB top-down so no row flipping is needed. (x/image/bmp only writes
// 24-bpp bottom-up without alpha, hence the hand-built headers here.)
func writeDib(w io.Writer, img *png.RgbaImage) error {
	if img.Order() != png.OrderBGRA {
		return oops.New(nil, "bitmap output requires a BGRA-decoded image")
	}

	const fileHeaderSize = 14
	const infoHeaderSize = 40
	pixelBytes := len(img.Pix)

	var fileHeader [fileHeaderSize]byte
	fileHeader[0] = 'B'
	fileHeader[1] = 'M'
	binary.LittleEndian.PutUint32(fileHeader[2:], uint32(fileHeaderSize+infoHeaderSize+pixelBytes))
	binary.LittleEndian.PutUint32(fileHeader[10:], fileHeaderSize+infoHeaderSize)

	var infoHeader [infoHeaderSize]byte
	binary.LittleEndian.PutUint32(infoHeader[0:], infoHeaderSize)
	binary.LittleEndian.PutUint32(infoHeader[4:], img.Width)
	binary.LittleEndian.PutUint32(infoHeader[8:], uint32(-int32(img.Height)))
	binary.LittleEndian.PutUint16(infoHeader[12:], 1)  // planes
	binary.LittleEndian.PutUint16(infoHeader[14:], 32) // bits per pixel
	// biCompression BI_RGB (0), remaining fields zero

	if _, err := w.Write(fileHeader[:]); err != nil {
		return oops.New(err, "failed to write bitmap file header")
	}
	if _, err := w.Write(infoHeader[:]); err != nil {
		return oops.New(err, "failed to write bitmap info header")
	}
	if _, err := w.Write(img.Pix); err != nil {
		return oops.New(err, "failed to write bitmap pixels")
	}
	return nil
}
