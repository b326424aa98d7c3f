package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/dyntext/pkg/domain"
	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a function that renders markdown using glamour,
// wrapping at width columns (0 keeps glamour's default).
func NewRenderer(width int) (func(string) (string, error), error) {
	opts := []glamour.TermRendererOption{
		glamour.WithAutoStyle(), // Automatically detect light/dark background
	}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	return r.Render, nil
}

// SourceMarkdown describes a rotation source as a markdown document.
func SourceMarkdown(title string, texts []domain.Text, interval fmt.Stringer) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "Rotates every **%s** through %d text(s).\n\n", interval, len(texts))
	if len(texts) == 0 {
		b.WriteString("_The source is empty; rotations will not start._\n")
		return b.String()
	}
	b.WriteString("| # | Text | Characters |\n|---|------|------------|\n")
	for i, t := range texts {
		cell := "_absent_"
		if v, ok := t.Value(); ok {
			cell = "`" + strings.ReplaceAll(v, "|", "\\|") + "`"
			if v == "" {
				cell = "_empty_"
			}
		}
		fmt.Fprintf(&b, "| %d | %s | %d |\n", i, cell, t.RuneLen())
	}
	return b.String()
}
