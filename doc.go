/*
Package dyntext animates text changes on a label token by token.

When the text of a label changes, the displayed ("proxy") text does not snap
to the new ("base") text. A timer moves it there a few characters per tick,
following one of three update policies:

  - ResetThenAdd: keep the displayed text if it is a prefix of the new text,
    otherwise clear it, then type the rest left to right.
  - ResetThenAddReverse: the mirror image, growing from the end of the text.
  - DeleteThenAdd: backspace until the displayed text is a prefix of the new
    text, then type the rest.

A RotatingLabel cycles through the texts of a RotationSource on a second
timer and drives the same animation.

# Architecture

The engine lives in internal/runtime and depends only on the ports in
pkg/ports: a Scheduler for ticks, a Display that mirrors the proxy text and a
Delegate told when the base text is fully rendered. Adapters under
pkg/adapters provide wall-clock and manual schedulers and memory, file and
Redis rotation sources.

# Usage

	label, err := dyntext.New(
		dyntext.WithDisplay(ports.DisplayFunc(func(t domain.Text) {
			fmt.Printf("\r%s", t)
		})),
	)
	if err != nil {
		log.Fatal(err)
	}
	defer label.Close()

	label.SetText("Hello, world")
	label.Start()

Rotating through a fixed set of texts:

	source := memory.NewSource(3*time.Second, "Loading", "Still loading", "Almost there")
	label, err := dyntext.NewRotating(source, dyntext.WithDisplay(display))
	if err != nil {
		log.Fatal(err)
	}
	defer label.Close()

	if err := label.StartRotations(ctx); err != nil {
		log.Fatal(err)
	}
*/
package dyntext
