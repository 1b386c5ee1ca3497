package config

import "github.com/rs/zerolog"

type Environment string

const (
	Live Environment = "live"
	Dev              = "dev"
)

type PngviewConfig struct {
	Env      Environment
	Addr     string
	LogLevel zerolog.Level

	Decoder DecoderConfig
	Viewer  ViewerConfig
}

type DecoderConfig struct {
	// MaxChunkBytes caps a single chunk payload. Hostile files declare
	// multi-gigabyte chunks; this bounds what one of them can allocate.
	MaxChunkBytes uint32
}

type ViewerConfig struct {
	// WatchIntervalMs is how often the file watcher polls the opened
	// image for changes.
	WatchIntervalMs int

	// ShutdownTimeoutMs is how long background jobs get to wind down
	// before the process exits anyway.
	ShutdownTimeoutMs int
}
