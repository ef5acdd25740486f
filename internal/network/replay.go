package network

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/MRamiBalles/werewolf-agent/internal/events"
	"github.com/MRamiBalles/werewolf-agent/internal/infra/storage"
	"github.com/MRamiBalles/werewolf-agent/internal/platform/logger"
)

// ReplayHandler serves the decision history of a game. With a repository it
// reads the durable ledger, otherwise the in-memory log.
type ReplayHandler struct {
	eventLog *events.EventLog
	repo     storage.DecisionRepository
	logger   *logger.Logger
}

// NewReplayHandler creates a replay handler. repo may be nil.
func NewReplayHandler(el *events.EventLog, repo storage.DecisionRepository, log *logger.Logger) *ReplayHandler {
	return &ReplayHandler{eventLog: el, repo: repo, logger: log}
}

// ReplayResponse is the API response for a replay.
type ReplayResponse struct {
	GameID      string                   `json:"game_id"`
	Source      string                   `json:"source"` // memory or ledger
	TotalEvents int                      `json:"total_events"`
	GeneratedAt string                   `json:"generated_at"`
	Events      []storage.DecisionRecord `json:"events"`
}

// HandleReplay returns the decisions of a game.
// GET /api/player/decisions?game_id=XXX&round=N&type=DECISION_VOTE
func (rh *ReplayHandler) HandleReplay(w http.ResponseWriter, r *http.Request) {
	gameID := r.URL.Query().Get("game_id")
	if gameID == "" {
		rh.jsonError(w, "Missing game_id", http.StatusBadRequest)
		return
	}
	round := 0
	if s := r.URL.Query().Get("round"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			rh.jsonError(w, "Invalid round", http.StatusBadRequest)
			return
		}
		round = v
	}
	eventType := r.URL.Query().Get("type")

	recs, source, err := rh.load(r, gameID, round, eventType)
	if err != nil {
		rh.logger.Error("replay failed: " + err.Error())
		rh.jsonError(w, "Ledger unavailable", http.StatusInternalServerError)
		return
	}
	if recs == nil {
		recs = []storage.DecisionRecord{}
	}

	rh.logger.Event("REPLAY", "OBSERVER", "GameID:"+gameID+" Events:"+strconv.Itoa(len(recs)))
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ReplayResponse{
		GameID:      gameID,
		Source:      source,
		TotalEvents: len(recs),
		GeneratedAt: time.Now().Format(time.RFC3339),
		Events:      recs,
	})
}

func (rh *ReplayHandler) load(r *http.Request, gameID string, round int, eventType string) ([]storage.DecisionRecord, string, error) {
	if rh.repo != nil {
		ctx := r.Context()
		var recs []storage.DecisionRecord
		var err error
		switch {
		case round > 0:
			recs, err = rh.repo.GetByRound(ctx, gameID, round)
		case eventType != "":
			recs, err = rh.repo.GetByEventType(ctx, gameID, eventType)
		default:
			recs, err = rh.repo.GetByGameID(ctx, gameID)
		}
		if err != nil {
			return nil, "", err
		}
		// Apply whichever filter the query did not.
		var out []storage.DecisionRecord
		for _, rec := range recs {
			if eventType != "" && rec.EventType != eventType {
				continue
			}
			out = append(out, rec)
		}
		return out, "ledger", nil
	}

	var out []storage.DecisionRecord
	for _, e := range rh.eventLog.GetByGame(gameID) {
		if round > 0 && e.Round != round {
			continue
		}
		if eventType != "" && string(e.Type) != eventType {
			continue
		}
		out = append(out, storage.FromEvent(e))
	}
	return out, "memory", nil
}

// HandleStats returns per-source counts for a game.
// GET /api/player/decisions/stats?game_id=XXX
func (rh *ReplayHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	gameID := r.URL.Query().Get("game_id")
	if gameID == "" {
		rh.jsonError(w, "Missing game_id", http.StatusBadRequest)
		return
	}

	var counts map[string]int
	if rh.repo != nil {
		var err error
		if counts, err = rh.repo.CountBySource(r.Context(), gameID); err != nil {
			rh.logger.Error("stats failed: " + err.Error())
			rh.jsonError(w, "Ledger unavailable", http.StatusInternalServerError)
			return
		}
	} else {
		counts = make(map[string]int)
		for _, e := range rh.eventLog.GetByGame(gameID) {
			counts[string(e.Source)]++
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"game_id":      gameID,
		"generated_at": time.Now().Format(time.RFC3339),
		"by_source":    counts,
	})
}

// RegisterRoutes sets up the replay routes.
func (rh *ReplayHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/player/decisions", rh.HandleReplay)
	mux.HandleFunc("GET /api/player/decisions/stats", rh.HandleStats)
}

// jsonError sends an error response.
func (rh *ReplayHandler) jsonError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{"error": true, "message": message})
}
