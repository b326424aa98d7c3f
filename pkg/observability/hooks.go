package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/dyntext/pkg/domain"
)

// Chain combines hook sets. Each event is delivered to every set in order;
// nil callbacks are skipped.
func Chain(sets ...domain.LifecycleHooks) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTextUpdate: func(ctx context.Context, e *domain.TextEvent) {
			for _, s := range sets {
				if s.OnTextUpdate != nil {
					s.OnTextUpdate(ctx, e)
				}
			}
		},
		OnBaseTextRendered: func(ctx context.Context, e *domain.TextEvent) {
			for _, s := range sets {
				if s.OnBaseTextRendered != nil {
					s.OnBaseTextRendered(ctx, e)
				}
			}
		},
		OnRotate: func(ctx context.Context, e *domain.RotationEvent) {
			for _, s := range sets {
				if s.OnRotate != nil {
					s.OnRotate(ctx, e)
				}
			}
		},
		OnRotationStop: func(ctx context.Context, e *domain.RotationEvent) {
			for _, s := range sets {
				if s.OnRotationStop != nil {
					s.OnRotationStop(ctx, e)
				}
			}
		},
	}
}

// LogHooks logs every event. Steps log at debug level, rotations at info.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTextUpdate: func(ctx context.Context, e *domain.TextEvent) {
			logger.DebugContext(ctx, "text_update",
				"policy", e.Policy.String(),
				"op", string(e.Op),
				"reset", e.Reset,
				"proxy", e.ProxyText.String(),
			)
		},
		OnBaseTextRendered: func(ctx context.Context, e *domain.TextEvent) {
			logger.DebugContext(ctx, "base_text_rendered", "base", e.BaseText.String())
		},
		OnRotate: func(ctx context.Context, e *domain.RotationEvent) {
			logger.InfoContext(ctx, "rotate", "index", e.Index, "text", e.Text.String())
		},
		OnRotationStop: func(ctx context.Context, e *domain.RotationEvent) {
			logger.InfoContext(ctx, "rotation_stop", "index", e.Index)
		},
	}
}
