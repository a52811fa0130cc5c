package logger

import (
	"io"
	"log/slog"
	"os"
)

// Log is the application logger. It is usable before Init runs.
var Log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

// Init installs the JSON handler; debug level outside release mode.
func Init(ginMode string) {
	level := slog.LevelDebug
	if ginMode == "release" {
		level = slog.LevelInfo
	}
	Log = New(os.Stdout, level)
}

func New(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}
