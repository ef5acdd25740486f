// Package events is the append-only audit log of the agent's decisions.
// Every response the service returns is recorded here and optionally
// written through to durable storage.
package events

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType defines the category of a decision event.
type EventType string

const (
	EventTypeStartGame   EventType = "START_GAME"
	EventTypeSpeech      EventType = "DECISION_SPEECH"
	EventTypeVote        EventType = "DECISION_VOTE"
	EventTypeNightAction EventType = "DECISION_NIGHT_ACTION"
	EventTypeLastWords   EventType = "DECISION_LAST_WORDS"
)

// Source says which path produced the final response.
type Source string

const (
	SourceEngine   Source = "engine"
	SourceLLM      Source = "llm"
	SourceFallback Source = "fallback" // LLM draft rejected, engine used
)

// DecisionEvent is an immutable record of one response.
type DecisionEvent struct {
	ID        string          `json:"id"`
	Timestamp time.Time       `json:"timestamp"`
	Type      EventType       `json:"type"`
	GameID    string          `json:"game_id"`
	PlayerID  int             `json:"player_id"`
	Role      string          `json:"role"`
	Round     int             `json:"round"`
	Target    int             `json:"target,omitempty"`
	Source    Source          `json:"source"`
	Payload   json.RawMessage `json:"payload,omitempty"` // the response body
}

// NewEvent stamps an event with a fresh ID and the current time.
// payload is marshalled; a value that fails to marshal is dropped.
func NewEvent(typ EventType, gameID string, playerID int, payload any) DecisionEvent {
	e := DecisionEvent{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Type:      typ,
		GameID:    gameID,
		PlayerID:  playerID,
		Source:    SourceEngine,
	}
	if payload != nil {
		if raw, err := json.Marshal(payload); err == nil {
			e.Payload = raw
		}
	}
	return e
}

// EventPersister defines how an event is durably stored.
type EventPersister interface {
	Append(event DecisionEvent) error
}

// EventLog is the in-memory append-only log of decision events.
type EventLog struct {
	mu        sync.RWMutex
	events    []DecisionEvent
	persister EventPersister
	onError   func(DecisionEvent, error)
	pending   sync.WaitGroup
}

// NewEventLog creates a new event log with an optional persister.
func NewEventLog(persister EventPersister) *EventLog {
	return &EventLog{
		events:    make([]DecisionEvent, 0),
		persister: persister,
	}
}

// OnPersistError registers a callback for failed write-throughs.
func (el *EventLog) OnPersistError(fn func(DecisionEvent, error)) {
	el.mu.Lock()
	defer el.mu.Unlock()
	el.onError = fn
}

// Append adds a new event to the log. Persistence happens off the request path.
func (el *EventLog) Append(event DecisionEvent) {
	el.mu.Lock()
	defer el.mu.Unlock()
	el.events = append(el.events, event)

	if el.persister != nil {
		onError := el.onError
		el.pending.Add(1)
		go func(e DecisionEvent) {
			defer el.pending.Done()
			if err := el.persister.Append(e); err != nil && onError != nil {
				onError(e, err)
			}
		}(event)
	}
}

// Flush blocks until every pending write-through has finished.
func (el *EventLog) Flush() {
	el.pending.Wait()
}

// Since returns the events appended after the first offset ones, and the
// offset to pass next time.
func (el *EventLog) Since(offset int) ([]DecisionEvent, int) {
	el.mu.RLock()
	defer el.mu.RUnlock()
	if offset < 0 {
		offset = 0
	}
	if offset >= len(el.events) {
		return nil, len(el.events)
	}
	out := make([]DecisionEvent, len(el.events)-offset)
	copy(out, el.events[offset:])
	return out, len(el.events)
}

// GetByGame returns all events of one game.
func (el *EventLog) GetByGame(gameID string) []DecisionEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()

	var result []DecisionEvent
	for _, e := range el.events {
		if e.GameID == gameID {
			result = append(result, e)
		}
	}
	return result
}

// GetByRound returns all events recorded for one round.
func (el *EventLog) GetByRound(round int) []DecisionEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()

	var result []DecisionEvent
	for _, e := range el.events {
		if e.Round == round {
			result = append(result, e)
		}
	}
	return result
}

// Replay returns a copy of the full history.
func (el *EventLog) Replay() []DecisionEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()
	out := make([]DecisionEvent, len(el.events))
	copy(out, el.events)
	return out
}

// Len returns the number of recorded events.
func (el *EventLog) Len() int {
	el.mu.RLock()
	defer el.mu.RUnlock()
	return len(el.events)
}
