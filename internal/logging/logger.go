package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/kingrea/regen/internal/config"
)

// Logger writes structured lines to .regen/logs/regen.log so users can
// inspect a failed generation after the command exits.
type Logger struct {
	*slog.Logger
	file *os.File
}

// New creates (or reuses) the log file for the current project directory.
func New(projectDir string, level slog.Level) (*Logger, error) {
	logDir := filepath.Join(projectDir, config.RegenDir, "logs")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("logging: ensure log dir: %w", err)
	}
	path := filepath.Join(logDir, "regen.log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logging: open log file: %w", err)
	}
	return &Logger{Logger: newSlog(f, level), file: f}, nil
}

// Discard returns a logger that drops every record.
func Discard() *Logger {
	return &Logger{Logger: newSlog(io.Discard, slog.LevelError)}
}

// Close releases the file handle.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}

// Printf writes a single informational line.
func (l *Logger) Printf(format string, args ...any) {
	if l == nil || l.Logger == nil {
		return
	}
	l.Info(strings.TrimRight(fmt.Sprintf(format, args...), "\n"))
}

func newSlog(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
