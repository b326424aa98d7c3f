// Package file implements a rotation source backed by a YAML, JSON or TOML document:
//
//	interval: 3s
//	texts:
//	  - Loading
//	  - Still loading
//	  - null   # an absent text
//
// TOML has no null, so every text read from TOML is present. The document is
// re-read on Reload and, when watched, on every change.
package file

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/aretw0/dyntext/internal/config"
	"github.com/aretw0/dyntext/internal/logging"
	"github.com/aretw0/dyntext/pkg/domain"
	"github.com/fsnotify/fsnotify"
)

// DefaultInterval applies when the document sets no interval.
const DefaultInterval = 3 * time.Second

type document struct {
	Interval time.Duration `mapstructure:"interval"`
	Texts    []*string     `mapstructure:"texts"`
}

// Source implements ports.RotationSource and ports.Watchable.
type Source struct {
	path            string
	defaultInterval time.Duration
	pollInterval    time.Duration
	logger          *slog.Logger

	mu       sync.RWMutex
	texts    []domain.Text
	interval time.Duration
}

// Option configures a Source.
type Option func(*Source)

// WithDefaultInterval overrides DefaultInterval.
func WithDefaultInterval(d time.Duration) Option {
	return func(s *Source) {
		if d > 0 {
			s.defaultInterval = d
		}
	}
}

// WithPollInterval sets the stat interval used when fsnotify is unavailable.
func WithPollInterval(d time.Duration) Option {
	return func(s *Source) {
		if d > 0 {
			s.pollInterval = d
		}
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

// New loads path and returns a source over its texts.
func New(path string, opts ...Option) (*Source, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}
	s := &Source{
		path:            abs,
		defaultInterval: DefaultInterval,
		pollInterval:    500 * time.Millisecond,
		logger:          logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the absolute path of the document.
func (s *Source) Path() string {
	return s.path
}

// Reload re-reads the document. On failure the previous texts are kept.
func (s *Source) Reload() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("failed to read rotation texts: %w", err)
	}
	raw, err := config.Unmarshal(s.path, data)
	if err != nil {
		return err
	}

	var doc document
	if err := config.Decode(raw, &doc); err != nil {
		return fmt.Errorf("invalid rotation document %s: %w", filepath.Base(s.path), err)
	}
	if doc.Interval < 0 {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInterval, doc.Interval)
	}
	if doc.Interval == 0 {
		doc.Interval = s.defaultInterval
	}

	texts := make([]domain.Text, len(doc.Texts))
	for i, t := range doc.Texts {
		texts[i] = domain.TextOf(t)
	}

	s.mu.Lock()
	s.texts = texts
	s.interval = doc.Interval
	s.mu.Unlock()

	s.logger.Debug("rotation texts loaded", "path", s.path, "count", len(texts), "interval", doc.Interval)
	return nil
}

// Count returns the number of texts.
func (s *Source) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.texts), nil
}

// Text returns the text at index, or domain.None() when out of range.
func (s *Source) Text(ctx context.Context, index int) (domain.Text, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if index < 0 || index >= len(s.texts) {
		return domain.None(), nil
	}
	return s.texts[index], nil
}

// Interval returns the document interval, or the default.
func (s *Source) Interval(ctx context.Context) (time.Duration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.interval, nil
}

// Watch reloads the document whenever it changes and signals after every
// successful reload. Invalid documents are logged and skipped. The channel is
// closed when ctx is done.
func (s *Source) Watch(ctx context.Context) (<-chan struct{}, error) {
	out := make(chan struct{}, 1)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		s.logger.Warn("fsnotify unavailable, polling", "err", err)
		go s.poll(ctx, out)
		return out, nil
	}
	// Watch the directory: editors replace files rather than write in place.
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", s.path, err)
	}

	go s.watch(ctx, watcher, out)
	return out, nil
}

func (s *Source) watch(ctx context.Context, watcher *fsnotify.Watcher, out chan<- struct{}) {
	defer close(out)
	defer watcher.Close()

	name := filepath.Base(s.path)
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			s.reloadAndSignal(out)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn("watch error", "path", s.path, "err", err)
		}
	}
}

func (s *Source) poll(ctx context.Context, out chan<- struct{}) {
	defer close(out)

	var last time.Time
	if info, err := os.Stat(s.path); err == nil {
		last = info.ModTime()
	}

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			info, err := os.Stat(s.path)
			if err != nil || !info.ModTime().After(last) {
				continue
			}
			last = info.ModTime()
			s.reloadAndSignal(out)
		}
	}
}

func (s *Source) reloadAndSignal(out chan<- struct{}) {
	if err := s.Reload(); err != nil {
		s.logger.Warn("reload failed, keeping previous texts", "path", s.path, "err", err)
		return
	}
	select {
	case out <- struct{}{}:
	default:
	}
}
