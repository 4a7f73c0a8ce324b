package config

import (
	"io"
	"log/slog"
	"os"

	slogmulti "github.com/samber/slog-multi"
)

// SetupLogger builds the run logger: text to stderr, plus JSON lines to
// logFile when one is set. quiet raises the stderr handler to WARN without
// touching the file handler. The returned cleanup closes the file.
func SetupLogger(logFile string, level slog.Level, quiet bool, stderr io.Writer) (*slog.Logger, func() error) {
	stderrLevel := level
	if quiet && stderrLevel < slog.LevelWarn {
		stderrLevel = slog.LevelWarn
	}
	stderrHandler := slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: stderrLevel})
	if logFile == "" {
		return slog.New(stderrHandler), func() error { return nil }
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		logger := slog.New(stderrHandler)
		logger.Warn("failed to open log file, using stderr only", "error", err, "file", logFile)
		return logger, func() error { return nil }
	}

	fileHandler := slog.NewJSONHandler(file, &slog.HandlerOptions{Level: level})
	return slog.New(slogmulti.Fanout(stderrHandler, fileHandler)), file.Close
}
