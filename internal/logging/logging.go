// Package logging builds the zerolog loggers used by the CLI and the TUI.
package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

const TimeFormat = "2006-01-02T15:04:05.000"

// Console logs human-readable lines to w (normally stderr).
func Console(w io.Writer, debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	out := zerolog.ConsoleWriter{Out: w, TimeFormat: TimeFormat}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// FilePath is where the TUI writes its log.
func FilePath() string {
	return filepath.Join(os.TempDir(), "apidesk.log")
}

// TUI returns a logger for the terminal UI, which owns the screen. With
// debug off everything is discarded; otherwise it appends JSON lines to
// FilePath. The returned closer releases the file.
func TUI(debug bool) (zerolog.Logger, io.Closer, error) {
	if !debug {
		return zerolog.Nop(), io.NopCloser(nil), nil
	}
	f, err := os.OpenFile(FilePath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return zerolog.Nop(), io.NopCloser(nil), err
	}
	return zerolog.New(f).Level(zerolog.DebugLevel).With().Timestamp().Logger(), f, nil
}
