package observability

import (
	"log/slog"
	"os"
	"strings"

	"github.com/couchcryptid/moodmap/internal/config"
)

// NewCLILogger builds a logger from LOG_LEVEL and LOG_FORMAT that writes to
// stderr, leaving stdout to command output. The service logs through the
// shared NewLogger instead. Unknown levels fall back to info.
func NewCLILogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if strings.EqualFold(cfg.LogFormat, "text") {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}
