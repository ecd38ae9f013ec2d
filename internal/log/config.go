package log

import (
	"fmt"
	"io"
	"log/slog"

	apperrors "github.com/olusolaa/gateway-sync/internal/errors"
)

type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

func (l Level) slogLevel() (slog.Level, error) {
	switch l {
	case LevelDebug:
		return slog.LevelDebug, nil
	case LevelInfo, "":
		return slog.LevelInfo, nil
	case LevelWarn:
		return slog.LevelWarn, nil
	case LevelError:
		return slog.LevelError, nil
	}
	return 0, apperrors.NewUserFacing(apperrors.CodeConfigValidation,
		fmt.Sprintf("unsupported log level: %s", l), "Use one of: debug, info, warn, error")
}

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

func (f Format) handler(w io.Writer, opts *slog.HandlerOptions) (slog.Handler, error) {
	switch f {
	case FormatJSON:
		return slog.NewJSONHandler(w, opts), nil
	case FormatText, "":
		return slog.NewTextHandler(w, opts), nil
	}
	return nil, apperrors.NewUserFacing(apperrors.CodeConfigValidation,
		fmt.Sprintf("unsupported log format: %s", f), "Use one of: text, json")
}

// Config selects the level and handler of the process logger. Logs always
// go to stderr so stdout stays clean for reports.
type Config struct {
	Level  Level  `mapstructure:"level" yaml:"level"`
	Format Format `mapstructure:"format" yaml:"format"`
}

func DefaultConfig() Config {
	return Config{Level: LevelInfo, Format: FormatText}
}
