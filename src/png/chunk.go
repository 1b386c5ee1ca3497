package png

import (
	"encoding/binary"
	"io"
)

// The chunk type identifiers the decoder acts on. Everything else is
// either skipped (ancillary) or fatal (unknown critical).
const (
	chunkIHDR = 0x49484452
	chunkPLTE = 0x504C5445
	chunkIDAT = 0x49444154
	chunkIEND = 0x49454E44
	chunktRNS = 0x74524E53
)

type chunk struct {
	length uint32
	typ    uint32
	tag    [4]byte
	data   []byte
	crc    uint32
}

func (c *chunk) name() string {
	return string(c.tag[:])
}

// critical reports whether the chunk is critical: bit 5 of the first tag
// byte is clear for uppercase ASCII, and uppercase means critical.
func (c *chunk) critical() bool {
	return c.tag[0]&0x20 == 0
}

// chunkReader pulls length-prefixed, CRC-checked chunks off a stream,
// tracking the byte offset of the chunk currently being read so errors
// can point at it.
type chunkReader struct {
	r        io.Reader
	offset   int64
	maxBytes uint32
}

func newChunkReader(r io.Reader, maxBytes uint32) *chunkReader {
	return &chunkReader{r: r, maxBytes: maxBytes}
}

func (cr *chunkReader) readFull(p []byte) error {
	n, err := io.ReadFull(cr.r, p)
	cr.offset += int64(n)
	return err
}

// next reads one complete chunk: 4 length bytes, 4 type bytes, the
// payload, and 4 CRC bytes, all big-endian, and verifies the CRC over
// type and payload.
func (cr *chunkReader) next() (*chunk, error) {
	start := cr.offset

	var head [8]byte
	if err := cr.readFull(head[:]); err != nil {
		return nil, wrapErr(IoError, err, "short read of chunk header")
	}

	var c chunk
	c.length = binary.BigEndian.Uint32(head[:4])
	copy(c.tag[:], head[4:])
	c.typ = binary.BigEndian.Uint32(head[4:])

	if c.length > cr.maxBytes || c.length > 1<<31-1 {
		return nil, chunkErr(BadChunk, &c, start, "chunk length %d exceeds limit %d", c.length, cr.maxBytes)
	}

	if c.length > 0 {
		c.data = make([]byte, c.length)
		if err := cr.readFull(c.data); err != nil {
			return nil, &DecodeError{
				Kind:    IoError,
				Chunk:   c.name(),
				Offset:  start,
				Message: "short read of chunk payload",
				Wrapped: err,
			}
		}
	}

	var crcBuf [4]byte
	if err := cr.readFull(crcBuf[:]); err != nil {
		return nil, &DecodeError{
			Kind:    IoError,
			Chunk:   c.name(),
			Offset:  start,
			Message: "short read of chunk crc",
			Wrapped: err,
		}
	}
	c.crc = binary.BigEndian.Uint32(crcBuf[:])

	if computed := crcSum(c.tag[:], c.data); computed != c.crc {
		return nil, chunkErr(BadChunk, &c, start, "crc mismatch: stored %08x, computed %08x", c.crc, computed)
	}

	return &c, nil
}
