package cli

import (
	"io"
	"log/slog"

	"github.com/aretw0/dyntext/internal/config"
	"github.com/aretw0/dyntext/internal/logging"
)

// NewLogger builds the application logger from the log section.
// Debug overrides the configured level. Logs go to w (stderr in the CLI) so
// they never mix with the label on stdout.
func NewLogger(w io.Writer, cfg config.LogConfig, debug bool) (*slog.Logger, error) {
	level := slog.LevelDebug
	if !debug {
		parsed, err := logging.ParseLevel(cfg.Level)
		if err != nil {
			return nil, err
		}
		level = parsed
	}
	return logging.NewWithFormat(w, level, cfg.Format), nil
}
