/*
Package domain contains the core models of the dyntext engine.

It defines the values the transition engine works on: the optional Text used
for base and proxy strings, the immutable TokenConfiguration, the state
snapshots exposed to hosts, and the lifecycle events emitted while a label
converges. The package is kept pure and free of timers, I/O or rendering.

# Key Entities

  - Text: An optional string. Absent and empty are different values.
  - TokenConfiguration: Token length range, tick frequency and update policy.
  - TransitionState: Snapshot of a label (base text, proxy text, active flag).
  - RotationState: Snapshot of a rotating label (index, phase, stop flag).
  - LifecycleHooks: Callbacks for text updates, renders and rotations.
*/
package domain
