package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/dyntext"
	"github.com/aretw0/dyntext/internal/presentation/tui"
	"github.com/aretw0/dyntext/pkg/domain"
	"github.com/aretw0/dyntext/pkg/ports"
)

// ErrNothingToType is returned by RunType without texts.
var ErrNothingToType = errors.New("nothing to type")

// TypeOptions configures RunType.
type TypeOptions struct {
	Config  domain.TokenConfiguration
	Hold    time.Duration // pause after each text but the last
	Logger  *slog.Logger
	Hooks   domain.LifecycleHooks
	Display []tui.LabelOption
}

// RunType animates texts on w one after another. Each text is fully rendered
// before the next one replaces it.
func RunType(ctx context.Context, w io.Writer, texts []string, opts TypeOptions) error {
	if len(texts) == 0 {
		return ErrNothingToType
	}

	display := tui.NewTerminalLabel(w, opts.Display...)
	defer display.Finish()

	wake := make(chan struct{}, 1)
	label, err := dyntext.New(
		dyntext.WithConfiguration(opts.Config),
		dyntext.WithDisplay(display),
		dyntext.WithDelegate(ports.DelegateFunc(func(base domain.Text) {
			display.DidRenderBaseText(base)
			select {
			case wake <- struct{}{}:
			default:
			}
		})),
		dyntext.WithLifecycleHooks(opts.Hooks),
		dyntext.WithLogger(opts.Logger),
	)
	if err != nil {
		return err
	}
	defer label.Close()

	label.Start()
	for i, text := range texts {
		label.SetText(text)
		if err := awaitRendered(ctx, label, domain.Some(text), wake); err != nil {
			return err
		}
		if i < len(texts)-1 {
			if err := sleep(ctx, opts.Hold); err != nil {
				return err
			}
		}
	}
	return nil
}

// awaitRendered blocks until label shows want in full.
func awaitRendered(ctx context.Context, label *dyntext.Label, want domain.Text, wake <-chan struct{}) error {
	for {
		if state := label.Snapshot(); state.BaseText.Equal(want) && state.Converged() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-wake:
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
