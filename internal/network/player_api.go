package network

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/MRamiBalles/werewolf-agent/internal/domain/game"
	"github.com/MRamiBalles/werewolf-agent/internal/platform/logger"
	"github.com/MRamiBalles/werewolf-agent/internal/service"
)

// maxBodyBytes bounds a request body; full speech histories stay well below it.
const maxBodyBytes = 4 << 20

// PlayerAPI serves the host-facing player endpoints.
type PlayerAPI struct {
	svc    *service.PlayerService
	logger *logger.Logger
}

// NewPlayerAPI creates the player handlers.
func NewPlayerAPI(svc *service.PlayerService, log *logger.Logger) *PlayerAPI {
	return &PlayerAPI{svc: svc, logger: log}
}

// StartGameResponse acknowledges start-game.
type StartGameResponse struct {
	Message    string `json:"message"`
	LLMEnabled bool   `json:"llmEnabled"`
}

// LastWordsResponse is the body of last-words.
type LastWordsResponse struct {
	Content string `json:"content"`
}

// HandleStartGame assigns seat and role.
// POST /api/player/start-game
func (pa *PlayerAPI) HandleStartGame(w http.ResponseWriter, r *http.Request) {
	var req service.StartGameRequest
	if err := decodeBody(w, r, &req); err != nil {
		pa.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	pa.logger.Info(fmt.Sprintf("start-game game=%s player=%d role=%s", req.GameID, req.PlayerID, req.Role))
	if err := pa.svc.StartGame(req); err != nil {
		pa.writeError(w, err)
		return
	}
	pa.jsonSuccess(w, StartGameResponse{Message: "Game started successfully", LLMEnabled: pa.svc.LLMEnabled()})
}

// HandleSpeak returns the day speech.
// POST /api/player/speak
func (pa *PlayerAPI) HandleSpeak(w http.ResponseWriter, r *http.Request) {
	rc, ok := pa.decodeContext(w, r)
	if !ok {
		return
	}
	resp, err := pa.svc.Speak(r.Context(), rc)
	if err != nil {
		pa.writeError(w, err)
		return
	}
	pa.jsonSuccess(w, resp)
}

// HandleVote returns the day vote.
// POST /api/player/vote
func (pa *PlayerAPI) HandleVote(w http.ResponseWriter, r *http.Request) {
	rc, ok := pa.decodeContext(w, r)
	if !ok {
		return
	}
	resp, err := pa.svc.Vote(r.Context(), rc)
	if err != nil {
		pa.writeError(w, err)
		return
	}
	pa.jsonSuccess(w, resp)
}

// HandleUseAbility returns the night action.
// POST /api/player/use-ability
func (pa *PlayerAPI) HandleUseAbility(w http.ResponseWriter, r *http.Request) {
	rc, ok := pa.decodeContext(w, r)
	if !ok {
		return
	}
	resp, err := pa.svc.UseAbility(r.Context(), rc)
	if err != nil {
		pa.writeError(w, err)
		return
	}
	pa.jsonSuccess(w, resp)
}

// HandleLastWords returns the farewell. The body is optional.
// POST /api/player/last-words
func (pa *PlayerAPI) HandleLastWords(w http.ResponseWriter, r *http.Request) {
	var rc *game.RoleContext
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err == nil && len(strings.TrimSpace(string(body))) > 0 {
		var parsed game.RoleContext
		if err := json.Unmarshal(body, &parsed); err == nil && parsed.Validate("") == nil {
			rc = &parsed
		}
	}
	resp := pa.svc.LastWords(rc)
	pa.jsonSuccess(w, LastWordsResponse{Content: resp.Speech})
}

// HandleStatus reports the agent state.
// GET /api/player/status
func (pa *PlayerAPI) HandleStatus(w http.ResponseWriter, r *http.Request) {
	pa.jsonSuccess(w, pa.svc.Status())
}

// RegisterRoutes sets up the player API routes.
func (pa *PlayerAPI) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/player/start-game", pa.HandleStartGame)
	mux.HandleFunc("POST /api/player/speak", pa.HandleSpeak)
	mux.HandleFunc("POST /api/player/vote", pa.HandleVote)
	mux.HandleFunc("POST /api/player/use-ability", pa.HandleUseAbility)
	mux.HandleFunc("POST /api/player/last-words", pa.HandleLastWords)
	mux.HandleFunc("GET /api/player/status", pa.HandleStatus)
}

func (pa *PlayerAPI) decodeContext(w http.ResponseWriter, r *http.Request) (*game.RoleContext, bool) {
	var rc game.RoleContext
	if err := decodeBody(w, r, &rc); err != nil {
		pa.svc.Metrics().RecordError("malformed_context")
		pa.jsonError(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}
	return &rc, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// writeError maps domain errors to status codes.
func (pa *PlayerAPI) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, game.ErrNoNightAction), errors.Is(err, game.ErrMalformedContext):
		status = http.StatusBadRequest
	case errors.Is(err, game.ErrInvalidRole):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		pa.logger.Error("request failed: " + err.Error())
	}
	pa.jsonError(w, err.Error(), status)
}

// jsonError sends an error response.
func (pa *PlayerAPI) jsonError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{"error": true, "message": message})
}

// jsonSuccess sends a success response.
func (pa *PlayerAPI) jsonSuccess(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(data)
}
