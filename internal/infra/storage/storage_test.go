package storage

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/MRamiBalles/werewolf-agent/internal/events"
)

func newRepo(t *testing.T) *SQLiteDecisionRepository {
	t.Helper()
	db, err := InitSQLite(filepath.Join(t.TempDir(), "ledger", "decisions.db"))
	if err != nil {
		t.Fatalf("InitSQLite: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewSQLiteDecisionRepository(db)
}

func TestSQLiteRoundTrip(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)

	recs := []DecisionRecord{
		{ID: "a", GameID: "g1", Timestamp: base, EventType: "DECISION_VOTE", PlayerID: 1, Role: "villager", Round: 1, Target: 3, Source: "engine", Payload: json.RawMessage(`{"target":3}`)},
		{ID: "b", GameID: "g1", Timestamp: base.Add(time.Second), EventType: "DECISION_SPEECH", PlayerID: 1, Role: "villager", Round: 2, Source: "llm", Payload: json.RawMessage(`{"speech":"x"}`)},
		{ID: "c", GameID: "g2", Timestamp: base, EventType: "DECISION_VOTE", PlayerID: 4, Role: "seer", Round: 1, Source: "fallback", Payload: json.RawMessage(`null`)},
	}
	for _, rec := range recs {
		if err := repo.Append(ctx, rec); err != nil {
			t.Fatalf("Append(%s): %v", rec.ID, err)
		}
	}

	got, err := repo.GetByGameID(ctx, "g1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "b" {
		t.Fatalf("GetByGameID = %+v", got)
	}
	if !got[1].Timestamp.Equal(base.Add(time.Second)) || got[0].Target != 3 || string(got[0].Payload) != `{"target":3}` {
		t.Errorf("record = %+v", got[0])
	}

	round, err := repo.GetByRound(ctx, "g1", 2)
	if err != nil || len(round) != 1 || round[0].ID != "b" {
		t.Errorf("GetByRound = %+v, %v", round, err)
	}
	votes, err := repo.GetByEventType(ctx, "g1", "DECISION_VOTE")
	if err != nil || len(votes) != 1 {
		t.Errorf("GetByEventType = %+v, %v", votes, err)
	}
	counts, err := repo.CountBySource(ctx, "g1")
	if err != nil || counts["engine"] != 1 || counts["llm"] != 1 || counts["fallback"] != 0 {
		t.Errorf("CountBySource = %v, %v", counts, err)
	}

	if err := repo.Append(ctx, recs[0]); err == nil {
		t.Error("duplicate id accepted")
	}
}

func TestEventSinkPersistsLog(t *testing.T) {
	repo := newRepo(t)
	log := events.NewEventLog(EventSink{Repo: repo})

	e := events.NewEvent(events.EventTypeNightAction, "g9", 2, map[string]string{"action": "kill"})
	e.Round = 3
	e.Role = "werewolf"
	log.Append(e)
	log.Append(events.NewEvent(events.EventTypeStartGame, "g9", 2, nil))
	log.Flush()

	got, err := repo.GetByGameID(context.Background(), "g9")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("persisted %d records", len(got))
	}
	var night DecisionRecord
	for _, r := range got {
		if r.ID == e.ID {
			night = r
		}
	}
	if night.Round != 3 || night.Role != "werewolf" || night.Source != "engine" {
		t.Errorf("night record = %+v", night)
	}
}

func TestOpen(t *testing.T) {
	repo, db, err := Open(DriverNone, "")
	if repo != nil || db != nil || err != nil {
		t.Errorf("none = %v %v %v", repo, db, err)
	}
	if _, _, err := Open("mongo", ""); err == nil {
		t.Error("unknown driver accepted")
	}
	if _, _, err := Open(DriverPostgres, ""); err == nil {
		t.Error("postgres without DSN accepted")
	}
	repo, db, err = Open(DriverSQLite, filepath.Join(t.TempDir(), "x.db"))
	if err != nil || repo == nil {
		t.Fatalf("sqlite = %v, %v", repo, err)
	}
	db.Close()
}
