// Package storage persists the decision ledger.
// The events package only knows the EventPersister interface; the
// implementations here are selected by configuration.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/MRamiBalles/werewolf-agent/internal/events"
)

// DecisionRecord mirrors events.DecisionEvent for persistence.
type DecisionRecord struct {
	ID        string          `json:"id" db:"id"`
	GameID    string          `json:"game_id" db:"game_id"`
	Timestamp time.Time       `json:"timestamp" db:"timestamp"`
	EventType string          `json:"event_type" db:"event_type"`
	PlayerID  int             `json:"player_id" db:"player_id"`
	Role      string          `json:"role" db:"role"`
	Round     int             `json:"round" db:"round"`
	Target    int             `json:"target" db:"target"`
	Source    string          `json:"source" db:"source"`
	Payload   json.RawMessage `json:"payload" db:"payload"`
}

// DecisionRepository defines the interface for decision persistence.
type DecisionRepository interface {
	// Append adds a record to the immutable ledger.
	Append(ctx context.Context, rec DecisionRecord) error

	// GetByGameID returns a game's records in time order.
	GetByGameID(ctx context.Context, gameID string) ([]DecisionRecord, error)

	// GetByRound returns one round of a game.
	GetByRound(ctx context.Context, gameID string, round int) ([]DecisionRecord, error)

	// GetByEventType returns a game's records of one type.
	GetByEventType(ctx context.Context, gameID, eventType string) ([]DecisionRecord, error)

	// CountBySource tallies how many responses came from each path.
	CountBySource(ctx context.Context, gameID string) (map[string]int, error)
}

// FromEvent converts a log event to a record.
func FromEvent(e events.DecisionEvent) DecisionRecord {
	payload := e.Payload
	if len(payload) == 0 {
		payload = json.RawMessage("null")
	}
	return DecisionRecord{
		ID:        e.ID,
		GameID:    e.GameID,
		Timestamp: e.Timestamp,
		EventType: string(e.Type),
		PlayerID:  e.PlayerID,
		Role:      e.Role,
		Round:     e.Round,
		Target:    e.Target,
		Source:    string(e.Source),
		Payload:   payload,
	}
}

// EventSink adapts a DecisionRepository to events.EventPersister.
type EventSink struct {
	Repo    DecisionRepository
	Timeout time.Duration
}

// Append writes one event with a bounded context.
func (s EventSink) Append(e events.DecisionEvent) error {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := s.Repo.Append(ctx, FromEvent(e)); err != nil {
		return fmt.Errorf("storage: persist %s: %w", e.ID, err)
	}
	return nil
}

var _ events.EventPersister = EventSink{}
