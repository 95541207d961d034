package model

import "time"

// Event represents a system event with metadata
type Event struct {
	Type      EventType
	SourceID  string
	Data      interface{}
	Timestamp time.Time
}

// NewEvent creates a new event
func NewEvent(eventType EventType, sourceID string, data interface{}) Event {
	return Event{
		Type:      eventType,
		SourceID:  sourceID,
		Data:      data,
		Timestamp: time.Now(),
	}
}

// EventPublisher is implemented by anything able to broadcast events. The
// pipeline driver publishes stage progress through it without depending on
// the concrete bus.
type EventPublisher interface {
	Publish(event Event)
}
