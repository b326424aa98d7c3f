package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/dyntext/internal/config"
	"github.com/aretw0/dyntext/pkg/adapters/file"
	"github.com/aretw0/dyntext/pkg/adapters/memory"
	"github.com/aretw0/dyntext/pkg/adapters/redis"
	"github.com/aretw0/dyntext/pkg/ports"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// OpenSource creates the rotation source selected by cfg. The returned
// closer releases whatever connection the source holds.
func OpenSource(cfg config.RotationConfig, logger *slog.Logger) (ports.RotationSource, io.Closer, error) {
	switch cfg.Source {
	case config.SourceMemory, "":
		return memory.NewSource(cfg.Interval, cfg.Texts...), nopCloser{}, nil

	case config.SourceFile:
		src, err := file.New(cfg.File,
			file.WithDefaultInterval(cfg.Interval),
			file.WithLogger(logger),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open file source: %w", err)
		}
		return src, nopCloser{}, nil

	case config.SourceRedis:
		opts := []redis.Option{
			redis.WithDefaultInterval(cfg.Interval),
			redis.WithLogger(logger),
		}
		if cfg.Redis.Key != "" {
			opts = append(opts, redis.WithKey(cfg.Redis.Key))
		}
		if cfg.Redis.IntervalKey != "" {
			opts = append(opts, redis.WithIntervalKey(cfg.Redis.IntervalKey))
		}
		src := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, opts...)
		return src, src, nil
	}
	return nil, nil, fmt.Errorf("unknown rotation source %q", cfg.Source)
}
