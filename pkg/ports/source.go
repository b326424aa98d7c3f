package ports

import (
	"context"
	"time"

	"github.com/aretw0/dyntext/pkg/domain"
)

// RotationSource supplies the texts a rotating label cycles through.
// Count and Text are queried on every rotation; Interval once per start.
type RotationSource interface {
	// Count returns the number of candidate texts.
	Count(ctx context.Context) (int, error)

	// Text returns the candidate at index, or domain.None() when out of range.
	Text(ctx context.Context, index int) (domain.Text, error)

	// Interval returns the time between two rotations.
	Interval(ctx context.Context) (time.Duration, error)
}

// Watchable defines an interface for sources that can notify about backend changes.
type Watchable interface {
	// Watch returns a channel that is signaled after the source reloaded its texts.
	Watch(ctx context.Context) (<-chan struct{}, error)
}
