package png

// ByteOrder selects the channel layout of the decoded pixel buffer. BGRA
// is the order device-independent bitmaps want; RGBA is the canonical
// order for everything else.
type ByteOrder int

const (
	OrderRGBA ByteOrder = iota
	OrderBGRA
)

// DefaultMaxChunkBytes caps the payload size of a single chunk. The PNG
// spec allows lengths up to 2^31-1; anything near that is hostile input.
const DefaultMaxChunkBytes = 100 << 20

type Options struct {
	// MaxChunkBytes is the largest chunk payload the reader accepts.
	MaxChunkBytes uint32

	// ByteOrder is the channel order of the output buffer.
	ByteOrder ByteOrder

	// AllowInterlace permits Adam7-interlaced images. When false, an
	// interlaced image fails with UnsupportedInterlace.
	AllowInterlace bool
}

type Option func(*Options)

func WithMaxChunkBytes(n uint32) Option {
	return func(o *Options) { o.MaxChunkBytes = n }
}

func WithByteOrder(order ByteOrder) Option {
	return func(o *Options) { o.ByteOrder = order }
}

func WithInterlaceDisabled() Option {
	return func(o *Options) { o.AllowInterlace = false }
}

func resolveOptions(opts []Option) Options {
	resolved := Options{
		MaxChunkBytes:  DefaultMaxChunkBytes,
		ByteOrder:      OrderRGBA,
		AllowInterlace: true,
	}
	for _, opt := range opts {
		opt(&resolved)
	}
	return resolved
}
