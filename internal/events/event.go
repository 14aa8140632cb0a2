// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"distancematrix/internal/commute/transport"
	"distancematrix/platform/events"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Commute Domain Events
// =============================================================================

// CommuteComputed is published once per computed commute report. Callers
// that shared an in-flight computation do not publish again.
type CommuteComputed struct {
	BaseEvent
	Query  transport.Query  `json:"query"`
	Result transport.Result `json:"result"`
}

func (e CommuteComputed) EventName() string { return "commute.report.computed" }
