package config

import (
	"os"
	"strconv"

	"github.com/rs/zerolog"
)

// Config holds the process-wide configuration. Defaults suit local use;
// anything interesting can be overridden through the environment.
var Config = PngviewConfig{
	Env:      Dev,
	Addr:     envString("PNGVIEW_ADDR", "localhost:9020"),
	LogLevel: envLogLevel("PNGVIEW_LOG_LEVEL", zerolog.InfoLevel),

	Decoder: DecoderConfig{
		MaxChunkBytes: uint32(envInt("PNGVIEW_MAX_CHUNK_BYTES", 100<<20)),
	},
	Viewer: ViewerConfig{
		WatchIntervalMs:   envInt("PNGVIEW_WATCH_INTERVAL_MS", 500),
		ShutdownTimeoutMs: envInt("PNGVIEW_SHUTDOWN_TIMEOUT_MS", 10_000),
	},
}

func envString(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}

func envInt(name string, def int) int {
	if v := os.Getenv(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envLogLevel(name string, def zerolog.Level) zerolog.Level {
	if v := os.Getenv(name); v != "" {
		if level, err := zerolog.ParseLevel(v); err == nil {
			return level
		}
	}
	return def
}
