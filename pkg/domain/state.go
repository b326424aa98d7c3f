package domain

// TransitionState is a snapshot of a label's text state.
type TransitionState struct {
	// BaseText is the target the display converges to.
	BaseText Text `json:"base_text"`

	// ProxyText is the currently displayed text.
	ProxyText Text `json:"proxy_text"`

	// Active reports whether the tick scheduler is running.
	Active bool `json:"active"`
}

// Converged reports whether the proxy already equals the base.
func (s TransitionState) Converged() bool {
	return s.ProxyText.Equal(s.BaseText)
}

// RotationPhase is the state of a rotation controller.
type RotationPhase string

const (
	PhaseIdle        RotationPhase = "idle"         // No rotation timer
	PhaseRotating    RotationPhase = "rotating"     // Rotation timer running
	PhaseStopPending RotationPhase = "stop_pending" // Next rotation tick cleans up
)

// RotationState is a snapshot of a rotation controller.
type RotationState struct {
	// Index is the current position in the source. Only meaningful when HasIndex is set.
	Index int `json:"index"`

	// HasIndex is false until the first rotation.
	HasIndex bool `json:"has_index"`

	// StopRequested is set by StopRotations and cleared by the following tick.
	StopRequested bool `json:"stop_requested"`

	Phase RotationPhase `json:"phase"`
}
