package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/aretw0/dyntext/internal/logging"
	"github.com/aretw0/dyntext/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// Defaults for Source.
const (
	DefaultKey      = "dyntext:texts"
	DefaultInterval = 3 * time.Second
)

// Source implements ports.RotationSource over a Redis list.
// The rotation interval is read from a separate string key holding a
// duration ("2s") or a number of seconds; it falls back to the default when
// missing. Writers publish on a channel so Watch can follow changes.
type Source struct {
	client          *backend.Client
	owned           bool
	key             string
	intervalKey     string
	defaultInterval time.Duration
	logger          *slog.Logger
	closed          atomic.Bool
}

// Option configures a Source.
type Option func(*Source)

// WithKey sets the list key. The interval key follows it unless set.
func WithKey(key string) Option {
	return func(s *Source) {
		s.key = key
	}
}

// WithIntervalKey sets the key holding the rotation interval.
func WithIntervalKey(key string) Option {
	return func(s *Source) {
		s.intervalKey = key
	}
}

// WithDefaultInterval overrides DefaultInterval.
func WithDefaultInterval(d time.Duration) Option {
	return func(s *Source) {
		s.defaultInterval = d
	}
}

// WithLogger configures a logger for the Source.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Source) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a Source with its own client. Close releases it.
func New(address, password string, db int, opts ...Option) *Source {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	s := NewFromClient(rdb, opts...)
	s.owned = true
	return s
}

// NewFromClient creates a Source from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Source {
	s := &Source{
		client:          client,
		key:             DefaultKey,
		defaultInterval: DefaultInterval,
		logger:          logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.intervalKey == "" {
		s.intervalKey = s.key + ":interval"
	}
	return s
}

func (s *Source) channel() string {
	return s.key + ":changed"
}

// Count returns the length of the list.
func (s *Source) Count(ctx context.Context) (int, error) {
	if s.closed.Load() {
		return 0, domain.ErrSourceClosed
	}
	n, err := s.client.LLen(ctx, s.key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count texts: %w", err)
	}
	return int(n), nil
}

// Text returns the list element at index, or domain.None() when out of range.
func (s *Source) Text(ctx context.Context, index int) (domain.Text, error) {
	// LINDEX counts negative indexes from the tail.
	if s.closed.Load() {
		return domain.None(), domain.ErrSourceClosed
	}
	if index < 0 {
		return domain.None(), nil
	}
	val, err := s.client.LIndex(ctx, s.key, int64(index)).Result()
	if errors.Is(err, backend.Nil) {
		return domain.None(), nil
	}
	if err != nil {
		return domain.None(), fmt.Errorf("failed to load text %d: %w", index, err)
	}
	return domain.Some(val), nil
}

// Interval returns the stored interval or the default.
func (s *Source) Interval(ctx context.Context) (time.Duration, error) {
	if s.closed.Load() {
		return 0, domain.ErrSourceClosed
	}
	val, err := s.client.Get(ctx, s.intervalKey).Result()
	if errors.Is(err, backend.Nil) {
		return s.defaultInterval, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to load interval: %w", err)
	}
	return parseInterval(val)
}

func parseInterval(val string) (time.Duration, error) {
	if d, err := time.ParseDuration(val); err == nil {
		return d, nil
	}
	secs, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", domain.ErrInvalidInterval, val)
	}
	return time.Duration(secs * float64(time.Second)), nil
}

// SetTexts atomically replaces the list.
func (s *Source) SetTexts(ctx context.Context, texts ...string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe backend.Pipeliner) error {
		pipe.Del(ctx, s.key)
		if len(texts) > 0 {
			pipe.RPush(ctx, s.key, toArgs(texts)...)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to set texts: %w", err)
	}
	return s.notify(ctx, "set")
}

// Push appends texts to the list.
func (s *Source) Push(ctx context.Context, texts ...string) error {
	if len(texts) == 0 {
		return nil
	}
	if err := s.client.RPush(ctx, s.key, toArgs(texts)...).Err(); err != nil {
		return fmt.Errorf("failed to push texts: %w", err)
	}
	return s.notify(ctx, "push")
}

func (s *Source) notify(ctx context.Context, op string) error {
	if err := s.client.Publish(ctx, s.channel(), op).Err(); err != nil {
		return fmt.Errorf("failed to publish change: %w", err)
	}
	return nil
}

// SetInterval stores the rotation interval.
func (s *Source) SetInterval(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInterval, d)
	}
	if err := s.client.Set(ctx, s.intervalKey, d.String(), 0).Err(); err != nil {
		return fmt.Errorf("failed to set interval: %w", err)
	}
	return nil
}

// Watch signals whenever SetTexts or Push runs, from any process.
// The channel is closed when ctx is done.
func (s *Source) Watch(ctx context.Context) (<-chan struct{}, error) {
	if s.closed.Load() {
		return nil, domain.ErrSourceClosed
	}
	sub := s.client.Subscribe(ctx, s.channel())
	// Wait for the subscription to be confirmed so no publish is missed.
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}

	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		defer sub.Close()

		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				s.logger.Debug("rotation texts changed", "key", s.key, "op", msg.Payload)
				select {
				case out <- struct{}{}:
				default:
				}
			}
		}
	}()
	return out, nil
}

// Close releases the client when the Source created it. Later queries
// return domain.ErrSourceClosed.
func (s *Source) Close() error {
	if s.closed.Swap(true) || !s.owned {
		return nil
	}
	return s.client.Close()
}

func toArgs(texts []string) []any {
	args := make([]any, len(texts))
	for i, t := range texts {
		args[i] = t
	}
	return args
}
