/*
Package ports defines the driven ports (interfaces) for the dyntext engine.

These interfaces decouple the transition engine from the host UI, the timer
primitive and the rotation data source, so the engine can run headless in
tests and behind any widget.

# Key Interfaces

  - Scheduler: Schedules a repeating callback and returns a cancellable Handle.
  - Display: The host widget that mirrors the proxy text.
  - Delegate: Receives "base text fully rendered" notifications.
  - RotationSource: Supplies candidate texts and the rotation interval.
*/
package ports
