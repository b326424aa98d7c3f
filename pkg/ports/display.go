package ports

import "github.com/aretw0/dyntext/pkg/domain"

// Display is the host widget that owns the rendered string.
// The engine mirrors every proxy text change into it.
type Display interface {
	SetDisplayedText(text domain.Text)
}

// DisplayFunc adapts a function to Display.
type DisplayFunc func(domain.Text)

// SetDisplayedText calls f(text).
func (f DisplayFunc) SetDisplayedText(text domain.Text) { f(text) }

// Delegate is notified whenever a step finds the proxy equal to the base.
type Delegate interface {
	DidRenderBaseText(base domain.Text)
}

// DelegateFunc adapts a function to Delegate.
type DelegateFunc func(domain.Text)

// DidRenderBaseText calls f(base).
func (f DelegateFunc) DidRenderBaseText(base domain.Text) { f(base) }
