package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

type Options struct {
	Level   string
	Format  string
	NoColor bool
}

// InitLogger installs the process-wide slog logger. Text output goes
// through tint; "json" switches to structured JSON for log shippers.
func InitLogger(opts Options) {
	slog.SetDefault(slog.New(NewHandler(os.Stdout, opts)))
}

func NewHandler(w io.Writer, opts Options) slog.Handler {
	level := ParseLevel(opts.Level)

	if strings.EqualFold(opts.Format, "json") {
		return slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:     level,
			AddSource: true,
		})
	}

	return tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		AddSource:  true,
		NoColor:    opts.NoColor,
	})
}

// ParseLevel falls back to info for unknown names.
func ParseLevel(name string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo
	}
	return level
}
