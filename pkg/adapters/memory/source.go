package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/aretw0/dyntext/pkg/domain"
)

// DefaultInterval is used when a Source is created with a non-positive interval.
const DefaultInterval = 3 * time.Second

// Source implements ports.RotationSource in memory.
// Safe for concurrent use.
type Source struct {
	mu       sync.RWMutex
	texts    []string
	interval time.Duration
	changed  chan struct{}
}

// NewSource creates an in-memory source holding a copy of texts.
func NewSource(interval time.Duration, texts ...string) *Source {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Source{
		texts:    slices.Clone(texts),
		interval: interval,
		changed:  make(chan struct{}, 1),
	}
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
	return domain.Some(s.texts[index]), nil
}

// Interval returns the rotation interval.
func (s *Source) Interval(ctx context.Context) (time.Duration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.interval, nil
}

// SetTexts replaces the texts. Running rotations pick them up on their next tick.
func (s *Source) SetTexts(texts ...string) {
	s.mu.Lock()
	s.texts = slices.Clone(texts)
	s.mu.Unlock()

	select {
	case s.changed <- struct{}{}:
	default:
	}
}

// Append adds texts at the end.
func (s *Source) Append(texts ...string) {
	s.mu.Lock()
	current := slices.Clone(s.texts)
	s.mu.Unlock()
	s.SetTexts(append(current, texts...)...)
}

// Texts returns a copy of the current texts.
func (s *Source) Texts() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.texts)
}

// Watch signals after every SetTexts. Only one watcher is supported;
// the channel is closed when ctx is done.
func (s *Source) Watch(ctx context.Context) (<-chan struct{}, error) {
	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.changed:
				select {
				case out <- struct{}{}:
				default:
				}
			}
		}
	}()
	return out, nil
}
