package events

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
)

type memPersister struct {
	mu     sync.Mutex
	stored []DecisionEvent
	err    error
}

func (m *memPersister) Append(e DecisionEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.stored = append(m.stored, e)
	return nil
}

func TestNewEvent(t *testing.T) {
	e := NewEvent(EventTypeVote, "g1", 3, map[string]int{"target": 5})
	if e.ID == "" || e.Timestamp.IsZero() || e.Source != SourceEngine {
		t.Errorf("event = %+v", e)
	}
	var body map[string]int
	if err := json.Unmarshal(e.Payload, &body); err != nil || body["target"] != 5 {
		t.Errorf("payload = %s (%v)", e.Payload, err)
	}
	if other := NewEvent(EventTypeVote, "g1", 3, nil); other.ID == e.ID || other.Payload != nil {
		t.Errorf("second event = %+v", other)
	}
}

func TestEventLogWriteThrough(t *testing.T) {
	p := &memPersister{}
	log := NewEventLog(p)
	for i := 1; i <= 3; i++ {
		e := NewEvent(EventTypeSpeech, "g1", i, nil)
		e.Round = i
		log.Append(e)
	}
	log.Flush()

	if len(p.stored) != 3 || log.Len() != 3 {
		t.Fatalf("stored %d, logged %d", len(p.stored), log.Len())
	}
	if got := log.GetByRound(2); len(got) != 1 || got[0].PlayerID != 2 {
		t.Errorf("GetByRound(2) = %+v", got)
	}
	if got := log.GetByGame("g2"); len(got) != 0 {
		t.Errorf("GetByGame(g2) = %+v", got)
	}
}

func TestEventLogPersistError(t *testing.T) {
	log := NewEventLog(&memPersister{err: errors.New("disk full")})
	var mu sync.Mutex
	failed := 0
	log.OnPersistError(func(DecisionEvent, error) {
		mu.Lock()
		failed++
		mu.Unlock()
	})
	log.Append(NewEvent(EventTypeVote, "g1", 1, nil))
	log.Flush()
	if failed != 1 {
		t.Errorf("failed = %d", failed)
	}
	if log.Len() != 1 {
		t.Error("in-memory log lost the event")
	}
}

func TestEventLogSince(t *testing.T) {
	log := NewEventLog(nil)
	got, next := log.Since(0)
	if len(got) != 0 || next != 0 {
		t.Fatalf("empty log Since = %v, %d", got, next)
	}
	log.Append(NewEvent(EventTypeStartGame, "g1", 1, nil))
	log.Append(NewEvent(EventTypeVote, "g1", 1, nil))

	got, next = log.Since(0)
	if len(got) != 2 || next != 2 {
		t.Fatalf("Since(0) = %d events, next %d", len(got), next)
	}
	log.Append(NewEvent(EventTypeSpeech, "g1", 1, nil))
	got, next = log.Since(next)
	if len(got) != 1 || got[0].Type != EventTypeSpeech || next != 3 {
		t.Errorf("Since(2) = %+v, next %d", got, next)
	}
	if got, _ := log.Since(10); got != nil {
		t.Errorf("Since past end = %+v", got)
	}
}
