package tui

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/aretw0/dyntext/pkg/domain"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// TerminalLabel shows a label on a single terminal line.
//
// On a terminal every proxy change redraws the line in place. Elsewhere
// (pipes, files) intermediate frames are dropped and only rendered base
// texts are written, one per line.
type TerminalLabel struct {
	mu          sync.Mutex
	w           io.Writer
	out         *termenv.Output
	interactive bool
	width       int
	color       string
	last        string
	dirty       bool
}

// LabelOption configures a TerminalLabel.
type LabelOption func(*TerminalLabel)

// WithInteractive forces in-place redraws on or off.
func WithInteractive(on bool) LabelOption {
	return func(l *TerminalLabel) {
		l.interactive = on
	}
}

// WithWidth overrides the detected terminal width.
func WithWidth(cols int) LabelOption {
	return func(l *TerminalLabel) {
		l.width = cols
	}
}

// WithColor sets the foreground color ("#rrggbb" or an ANSI index).
func WithColor(color string) LabelOption {
	return func(l *TerminalLabel) {
		l.color = color
	}
}

// NewTerminalLabel writes to w, detecting whether it is a terminal.
func NewTerminalLabel(w io.Writer, opts ...LabelOption) *TerminalLabel {
	l := &TerminalLabel{
		w:     w,
		out:   termenv.NewOutput(w),
		color: "#a78bfa",
	}
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		l.interactive = true
		if cols, _, err := term.GetSize(int(f.Fd())); err == nil {
			l.width = cols
		}
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Interactive reports whether frames are redrawn in place.
func (l *TerminalLabel) Interactive() bool {
	return l.interactive
}

// SetDisplayedText implements ports.Display.
func (l *TerminalLabel) SetDisplayedText(text domain.Text) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.interactive {
		return
	}
	l.redraw(text.String())
}

// DidRenderBaseText implements ports.Delegate. Outside a terminal it writes
// each distinct rendered text on its own line.
func (l *TerminalLabel) DidRenderBaseText(base domain.Text) {
	l.mu.Lock()
	defer l.mu.Unlock()

	s := base.String()
	if l.interactive || s == l.last {
		return
	}
	l.last = s
	fmt.Fprintln(l.w, s)
}

// Finish ends the current line so later output starts below the label.
func (l *TerminalLabel) Finish() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.interactive && l.dirty {
		fmt.Fprintln(l.w)
		l.dirty = false
	}
	l.last = ""
}

// redraw requires l.mu.
func (l *TerminalLabel) redraw(s string) {
	s = truncate(s, l.width-1)
	fmt.Fprint(l.w, "\r")
	l.out.ClearLine()
	fmt.Fprint(l.w, l.out.String(s).Foreground(l.out.Color(l.color)).Bold())
	l.dirty = true
}

// truncate cuts s to at most cols runes; cols <= 0 disables truncation.
func truncate(s string, cols int) string {
	if cols <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= cols {
		return s
	}
	return string(runes[:cols])
}
