package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/aretw0/dyntext/internal/presentation/tui"
	"github.com/aretw0/dyntext/pkg/domain"
	"github.com/aretw0/dyntext/pkg/ports"
)

// ListOptions configures RunList.
type ListOptions struct {
	Title string
	Width int  // word wrap; 0 uses 80
	Raw   bool // print the markdown without rendering it
}

// RunList prints the texts and interval of source as a markdown table.
func RunList(ctx context.Context, w io.Writer, source ports.RotationSource, opts ListOptions) error {
	count, err := source.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count texts: %w", err)
	}
	texts := make([]domain.Text, 0, count)
	for i := range count {
		text, err := source.Text(ctx, i)
		if err != nil {
			return fmt.Errorf("failed to read text %d: %w", i, err)
		}
		texts = append(texts, text)
	}
	interval, err := source.Interval(ctx)
	if err != nil {
		return fmt.Errorf("failed to read interval: %w", err)
	}

	title := opts.Title
	if title == "" {
		title = "Rotation source"
	}
	md := tui.SourceMarkdown(title, texts, interval)
	if opts.Raw {
		_, err := io.WriteString(w, md)
		return err
	}

	width := opts.Width
	if width <= 0 {
		width = 80
	}
	render, err := tui.NewRenderer(width)
	if err != nil {
		return err
	}
	out, err := render(md)
	if err != nil {
		return fmt.Errorf("failed to render source: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}
