// Package logger wires structured logging for the scheduling core:
// log/slog handlers over a gopkg.in/natefinch/lumberjack.v2 rotating
// writer when file output is requested.
package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Log is the package-level logger every solver/harness call site writes
// through. It starts as a stdout JSON logger at info level so packages can
// log before Init runs (e.g. in tests).
var Log = slog.New(slog.NewJSONHandler(os.Stdout, nil))

// Config controls where and how log records are written.
type Config struct {
	Level      string // debug, info, warn, error
	Format     string // json, text
	Output     string // stdout, stderr, file
	FilePath   string
	MaxSize    int // MB
	MaxBackups int
	MaxAge     int // days
	Compress   bool
}

// Init sets Log to a stdout JSON logger at the given level.
func Init(level string) {
	InitWithConfig(Config{Level: level, Format: "json", Output: "stdout"})
}

// InitWithConfig replaces Log per cfg. A file Output that cannot be created
// falls back to stdout rather than failing solver startup over a logging
// misconfiguration.
func InitWithConfig(cfg Config) {
	var lvl slog.Level
	switch cfg.Level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	var writer io.Writer = os.Stdout
	switch cfg.Output {
	case "stderr":
		writer = os.Stderr
	case "file":
		if cfg.FilePath == "" {
			cfg.FilePath = "logs/solver.log"
		}
		if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err != nil {
			break
		}
		writer = &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		}
	}

	Log = newHandlerLogger(writer, cfg.Format, lvl)
}

func newHandlerLogger(w io.Writer, format string, lvl slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: lvl, AddSource: lvl == slog.LevelDebug}
	if format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// WithRun returns a logger scoped to one harness run id.
func WithRun(runID string) *slog.Logger {
	return Log.With("run_id", runID)
}

// WithSolver returns a logger scoped to a solver kind ("ilp" or "flow").
func WithSolver(kind string) *slog.Logger {
	return Log.With("solver", kind)
}
