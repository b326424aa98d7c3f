package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventTextUpdate   EventType = "text_update"
	EventTextRendered EventType = "text_rendered"
	EventRotate       EventType = "rotate"
	EventRotationStop EventType = "rotation_stop"
)

// StepOp is the mutation applied by a single step.
type StepOp string

const (
	OpNone    StepOp = "none"
	OpAppend  StepOp = "append"
	OpPrepend StepOp = "prepend"
	OpRemove  StepOp = "remove"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// TextEvent describes one step of a label.
type TextEvent struct {
	EventBase
	Policy      UpdatePolicy `json:"policy"`
	Op          StepOp       `json:"op"`
	Reset       bool         `json:"reset,omitempty"` // The proxy was cleared before the op
	TokenLength int          `json:"token_length,omitempty"`
	BaseText    Text         `json:"base_text"`
	Previous    Text         `json:"previous"`
	ProxyText   Text         `json:"proxy_text"`
}

// RotationEvent describes a rotation tick.
type RotationEvent struct {
	EventBase
	Index int  `json:"index"`
	Text  Text `json:"text"`
}

// LifecycleHooks defines callbacks for engine observability.
// Hooks run on the tick goroutine after the engine released its state lock.
type LifecycleHooks struct {
	OnTextUpdate       func(context.Context, *TextEvent)
	OnBaseTextRendered func(context.Context, *TextEvent)
	OnRotate           func(context.Context, *RotationEvent)
	OnRotationStop     func(context.Context, *RotationEvent)
}
