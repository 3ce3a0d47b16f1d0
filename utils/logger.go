package utils

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// NewLogger builds the timestamped zerolog logger used across the tools.
// Unknown levels fall back to info.
func NewLogger(level string, w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stdout
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}
