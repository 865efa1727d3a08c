package evaluator

import "time"

// EventType represents different lifecycle phases in expression evaluation
type EventType string

const (
	EventParseStart    EventType = "parse_start"
	EventParseEnd      EventType = "parse_end"
	EventDispatchStart EventType = "dispatch_start"
	EventHandlerMatch  EventType = "handler_match"
	EventNoMatch       EventType = "no_match"
	EventSubstitute    EventType = "substitute"
	EventEvalStart     EventType = "eval_start"
	EventEvalEnd       EventType = "eval_end"
)

// Event represents a lifecycle event in expression evaluation
type Event struct {
	Type      EventType   // Type of event
	PassID    string      // Evaluation pass ID for tracing
	Timestamp time.Time   // When the event occurred
	Data      interface{} // Phase-specific data (e.g., expression text, function name)
}

// Observer interface for event subscribers
// Observers receive events at major evaluation phases
type Observer interface {
	OnEvent(event Event)
}
