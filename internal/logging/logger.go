// Package logging builds the structured logger used by the resocket commands.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger matches resocket.Logger and *slog.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// New builds a Logger from cfg. The returned closer releases the log file,
// if any, and is never nil.
func New(cfg Config) (Logger, io.Closer, error) {
	var out io.Writer = os.Stderr
	var closer io.Closer = nopCloser{}

	if cfg.File != "" {
		file := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.FileMaxSizeMB,
			MaxBackups: cfg.FileMaxBackups,
			MaxAge:     cfg.FileMaxAgeDays,
		}
		out = file
		closer = file
	}

	return newWithWriter(cfg, out), closer, nil
}

func newWithWriter(cfg Config, out io.Writer) Logger {
	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case FormatConsole:
		w := zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
			NoColor:    cfg.NoColor,
		}
		zl := zerolog.New(w).Level(zerologLevel(cfg.Level)).With().Timestamp().Logger()
		return &zerologAdapter{logger: zl}
	case FormatJSON:
		return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: slogLevel(cfg.Level)}))
	default:
		return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: slogLevel(cfg.Level)}))
	}
}

func slogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug", "trace":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func zerologLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off", "none":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// zerologAdapter exposes a zerolog.Logger through the slog-style key/value API.
type zerologAdapter struct {
	logger zerolog.Logger
}

func (z *zerologAdapter) Debug(msg string, args ...any) {
	z.logger.Debug().Fields(fields(args)).Msg(msg)
}

func (z *zerologAdapter) Info(msg string, args ...any) {
	z.logger.Info().Fields(fields(args)).Msg(msg)
}

func (z *zerologAdapter) Warn(msg string, args ...any) {
	z.logger.Warn().Fields(fields(args)).Msg(msg)
}

func (z *zerologAdapter) Error(msg string, args ...any) {
	z.logger.Error().Fields(fields(args)).Msg(msg)
}

// fields pairs up key/value args. A dangling value is kept under "!BADKEY"
// like slog does.
func fields(args []any) map[string]any {
	if len(args) == 0 {
		return nil
	}
	out := make(map[string]any, (len(args)+1)/2)
	for i := 0; i < len(args); {
		key, ok := args[i].(string)
		if !ok || i+1 == len(args) {
			out["!BADKEY"] = args[i]
			i++
			continue
		}
		out[key] = args[i+1]
		i += 2
	}
	return out
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
