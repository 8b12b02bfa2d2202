// Package events provides the session event log.
// Every accepted or rejected action leaves an immutable record here, and
// subscribers (UI, drivers) are notified synchronously on append.
package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType defines the category of a game event.
type EventType string

const (
	EventTypeSessionStarted   EventType = "SESSION_STARTED"
	EventTypeSessionPaused    EventType = "SESSION_PAUSED"
	EventTypeSessionReset     EventType = "SESSION_RESET"
	EventTypeLevelAdvanced    EventType = "LEVEL_ADVANCED"
	EventTypeFragmentsSpawned EventType = "FRAGMENTS_SPAWNED"
	EventTypeFragmentMoved    EventType = "FRAGMENT_MOVED"
	EventTypeFragmentRotated  EventType = "FRAGMENT_ROTATED"
	EventTypePatternSolved    EventType = "PATTERN_SOLVED"
	EventTypeActionRejected   EventType = "ACTION_REJECTED"
	EventTypePuzzleSkipped    EventType = "PUZZLE_SKIPPED"
)

// GameEvent represents an immutable record of something that happened in a session.
type GameEvent struct {
	ID        string      `json:"id"`
	Timestamp time.Time   `json:"timestamp"`
	Type      EventType   `json:"type"`
	SessionID string      `json:"session_id"`
	Level     int         `json:"level"`
	Payload   interface{} `json:"payload"` // Event-specific data
}

// Subscriber receives events synchronously, in append order.
type Subscriber func(GameEvent)

// DefaultLimit bounds the log when no limit is given.
const DefaultLimit = 1024

// EventLog is the in-memory append-only log of game events.
// Past its limit the oldest events are dropped.
type EventLog struct {
	mu          sync.RWMutex
	events      []GameEvent
	limit       int
	subscribers []Subscriber
}

// NewEventLog creates a new event log keeping at most limit events.
func NewEventLog(limit int) *EventLog {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &EventLog{
		events: make([]GameEvent, 0),
		limit:  limit,
	}
}

// NewEvent stamps a fresh ID and timestamp on an event.
func NewEvent(eventType EventType, sessionID string, level int, payload interface{}) GameEvent {
	return GameEvent{
		ID:        uuid.NewString(),
		Timestamp: time.Now(),
		Type:      eventType,
		SessionID: sessionID,
		Level:     level,
		Payload:   payload,
	}
}

// Subscribe registers fn for every subsequent event.
func (el *EventLog) Subscribe(fn Subscriber) {
	el.mu.Lock()
	defer el.mu.Unlock()
	el.subscribers = append(el.subscribers, fn)
}

// Append adds events to the log, then notifies subscribers outside the lock
// so they may query the log.
func (el *EventLog) Append(batch ...GameEvent) {
	if len(batch) == 0 {
		return
	}

	el.mu.Lock()
	el.events = append(el.events, batch...)
	if over := len(el.events) - el.limit; over > 0 {
		el.events = append(el.events[:0:0], el.events[over:]...)
	}
	subs := append([]Subscriber(nil), el.subscribers...)
	el.mu.Unlock()

	for _, e := range batch {
		for _, fn := range subs {
			fn(e)
		}
	}
}

// GetByType returns all retained events of a type.
func (el *EventLog) GetByType(eventType EventType) []GameEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()

	var result []GameEvent
	for _, e := range el.events {
		if e.Type == eventType {
			result = append(result, e)
		}
	}
	return result
}

// GetByLevel returns all retained events recorded at a level.
func (el *EventLog) GetByLevel(level int) []GameEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()

	var result []GameEvent
	for _, e := range el.events {
		if e.Level == level {
			result = append(result, e)
		}
	}
	return result
}

// Replay returns a copy of the retained history, oldest first.
func (el *EventLog) Replay() []GameEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()
	return append([]GameEvent(nil), el.events...)
}

// Len returns the number of retained events.
func (el *EventLog) Len() int {
	el.mu.RLock()
	defer el.mu.RUnlock()
	return len(el.events)
}
