package png

import "io"

// ChunkInfo describes one chunk encountered while walking a stream.
type ChunkInfo struct {
	Offset   int64
	Name     string
	Length   uint32
	Data     []byte
	CRC      uint32
	Critical bool
}

// WalkChunks verifies the signature and then calls fn for every chunk in
// the stream, IEND included, ancillary and unknown chunks too. Each chunk
// still has to pass the length cap and CRC check. Returning an error from
// fn stops the walk.
//
// This is the inspection surface; it applies none of the ordering rules a
// real decode enforces.
func WalkChunks(r io.Reader, fn func(ChunkInfo) error, opts ...Option) error {
	options := resolveOptions(opts)

	var sig [8]byte
	if _, err := io.ReadFull(r, sig[:]); err != nil {
		return wrapErr(BadSignature, err, "short read of signature")
	}
	if sig != pngSignature {
		return decodeErr(BadSignature, "first 8 bytes %x are not a PNG signature", sig)
	}

	cr := newChunkReader(r, options.MaxChunkBytes)
	for {
		offset := cr.offset
		c, err := cr.next()
		if err != nil {
			return err
		}
		err = fn(ChunkInfo{
			Offset:   offset,
			Name:     c.name(),
			Length:   c.length,
			Data:     c.data,
			CRC:      c.crc,
			Critical: c.critical(),
		})
		if err != nil {
			return err
		}
		if c.typ == chunkIEND {
			return nil
		}
	}
}

// ParseHeader parses a 13-byte IHDR payload, applying all header
// validation. Offered for inspection tooling; Decode does this itself.
func ParseHeader(payload []byte) (Header, error) {
	c := &chunk{
		length: uint32(len(payload)),
		typ:    chunkIHDR,
		tag:    [4]byte{'I', 'H', 'D', 'R'},
		data:   payload,
	}
	return parseHeader(c, -1)
}
