// Package service exposes one agent to a game host. It serialises requests,
// fills in suspicion when the host sends none, optionally lets an LLM draft
// speech and votes, and records every response.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/MRamiBalles/werewolf-agent/internal/agent"
	"github.com/MRamiBalles/werewolf-agent/internal/agent/action"
	"github.com/MRamiBalles/werewolf-agent/internal/agent/perception"
	"github.com/MRamiBalles/werewolf-agent/internal/domain/game"
	"github.com/MRamiBalles/werewolf-agent/internal/events"
	"github.com/MRamiBalles/werewolf-agent/internal/infra/ai"
	"github.com/MRamiBalles/werewolf-agent/internal/platform/logger"
	"github.com/MRamiBalles/werewolf-agent/internal/platform/metrics"
	"github.com/MRamiBalles/werewolf-agent/internal/platform/optimization"
)

// StartGameRequest is the body of start-game.
type StartGameRequest struct {
	GameID    string `json:"gameId"`
	PlayerID  int    `json:"playerId"`
	Role      string `json:"role"`
	Teammates []int  `json:"teammates"`
}

// StatusResponse is the body of the status endpoint.
type StatusResponse struct {
	agent.Status
	Personality string         `json:"personality"`
	LLM         string         `json:"llm"`
	Usage       *ai.UsageStats `json:"usage,omitempty"`
	Events      int            `json:"events"`
}

// Options configures a PlayerService. Zero values are usable.
type Options struct {
	Provider    ai.LLMProvider // nil: engine only
	EventLog    *events.EventLog
	Metrics     *metrics.Collector
	Logger      *logger.Logger
	Tuning      *optimization.Config
	MaxAttempts int
	MaxTokens   int
	Temperature float64
	Personality string
	MindOptions []agent.Option
}

// PlayerService owns one Mind.
type PlayerService struct {
	mu   sync.Mutex
	mind *agent.Mind

	provider    ai.LLMProvider
	log         *events.EventLog
	metrics     *metrics.Collector
	logger      *logger.Logger
	tuning      *optimization.Config
	maxAttempts int
	maxTokens   int
	temperature float64
	personality string
}

// NewPlayerService wires a service from opts.
func NewPlayerService(opts Options) *PlayerService {
	s := &PlayerService{
		provider:    opts.Provider,
		log:         opts.EventLog,
		metrics:     opts.Metrics,
		logger:      opts.Logger,
		tuning:      opts.Tuning,
		maxAttempts: opts.MaxAttempts,
		maxTokens:   opts.MaxTokens,
		temperature: opts.Temperature,
		personality: opts.Personality,
	}
	if s.log == nil {
		s.log = events.NewEventLog(nil)
	}
	if s.metrics == nil {
		s.metrics = metrics.NewCollector()
	}
	if s.logger == nil {
		s.logger = logger.NewLogger()
	}
	if s.tuning == nil {
		s.tuning = optimization.DefaultConfig()
	}
	if s.maxAttempts < 1 {
		s.maxAttempts = 1
	}
	if s.maxTokens <= 0 {
		s.maxTokens = 512
	}
	if s.provider != nil && !s.provider.IsAvailable() {
		s.logger.Warn(fmt.Sprintf("LLM provider %s has no API key; using the engine only", s.provider.Name()))
		s.provider = nil
	}

	mindOpts := append([]agent.Option{
		agent.WithLogger(s.logger),
		agent.WithOnBlocked(func(string) { s.metrics.RecordBlocked() }),
	}, opts.MindOptions...)
	s.mind = agent.NewMind(mindOpts...)
	return s
}

// LLMEnabled reports whether drafts come from a backend.
func (s *PlayerService) LLMEnabled() bool { return s.provider != nil }

// EventLog returns the decision log, for observers.
func (s *PlayerService) EventLog() *events.EventLog { return s.log }

// Metrics returns the collector.
func (s *PlayerService) Metrics() *metrics.Collector { return s.metrics }

// StartGame assigns the agent's seat and role.
func (s *PlayerService) StartGame(req StartGameRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := agent.Identity{
		GameID:    req.GameID,
		PlayerID:  req.PlayerID,
		Role:      game.RoleKind(req.Role),
		Teammates: req.Teammates,
	}
	if err := s.mind.StartGame(id); err != nil {
		s.recordError(err)
		return err
	}
	s.record(events.EventTypeStartGame, nil, 0, events.SourceEngine, s.mind.Identity())
	return nil
}

// Status reports the agent and backend state.
func (s *PlayerService) Status() StatusResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	resp := StatusResponse{
		Status:      s.mind.Status(),
		Personality: s.personality,
		LLM:         "none",
		Events:      s.log.Len(),
	}
	if s.provider != nil {
		usage := s.provider.GetUsageStats()
		resp.LLM = s.provider.Name()
		resp.Usage = &usage
	}
	return resp
}

// Speak produces the day speech.
func (s *PlayerService) Speak(ctx context.Context, rc *game.RoleContext) (action.SpeechResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	start := time.Now()

	rc, summary, err := s.prepare(rc)
	if err != nil {
		return action.SpeechResponse{}, err
	}
	resp, err := s.mind.DecideSpeech(rc)
	if err != nil {
		s.recordError(err)
		return action.SpeechResponse{}, err
	}

	source := events.SourceEngine
	if s.provider != nil {
		source = events.SourceFallback
		prompt := s.prompt(rc, summary)
		prompt.DraftSpeech = resp.Speech
		if draft, err := s.draftSpeech(ctx, prompt); err != nil {
			s.logger.Warn("LLM speech rejected: " + err.Error())
			s.metrics.RecordLLMFallback()
		} else {
			resp = draft
			source = events.SourceLLM
		}
	}

	s.metrics.RecordDecision(metrics.KindSpeech, false, time.Since(start))
	s.record(events.EventTypeSpeech, rc, 0, source, resp)
	return resp, nil
}

// Vote produces the day vote.
func (s *PlayerService) Vote(ctx context.Context, rc *game.RoleContext) (action.VoteResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	start := time.Now()

	rc, summary, err := s.prepare(rc)
	if err != nil {
		return action.VoteResponse{}, err
	}
	resp, err := s.mind.DecideVote(rc)
	if err != nil {
		s.recordError(err)
		return action.VoteResponse{}, err
	}

	source := events.SourceEngine
	if s.provider != nil {
		source = events.SourceFallback
		prompt := s.prompt(rc, summary)
		prompt.DraftVote = resp.Target
		prompt.DraftReason = resp.Reason
		if draft, err := s.draftVote(ctx, rc, prompt); err != nil {
			s.logger.Warn("LLM vote rejected: " + err.Error())
			s.metrics.RecordLLMFallback()
		} else {
			if draft.Reason == "" {
				draft.Reason = resp.Reason
			}
			resp = draft
			source = events.SourceLLM
		}
	}

	s.metrics.RecordDecision(metrics.KindVote, resp.Target == 0, time.Since(start))
	s.record(events.EventTypeVote, rc, resp.Target, source, resp)
	return resp, nil
}

// UseAbility produces the night action. It never consults the LLM.
func (s *PlayerService) UseAbility(ctx context.Context, rc *game.RoleContext) (action.NightActionResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	start := time.Now()

	if err := ctx.Err(); err != nil {
		return action.NightActionResponse{}, err
	}
	if st := s.mind.Status(); st.Started && !st.Role.HasNightAction() {
		s.recordError(game.ErrNoNightAction)
		return action.NightActionResponse{}, game.ErrNoNightAction
	}
	rc, _, err := s.prepare(rc)
	if err != nil {
		return action.NightActionResponse{}, err
	}
	resp, err := s.mind.DecideNightAction(rc)
	if err != nil {
		s.recordError(err)
		return action.NightActionResponse{}, err
	}

	target := resp.Target
	if target == 0 {
		target = resp.HealTarget
	}
	if target == 0 {
		target = resp.PoisonTarget
	}
	s.metrics.RecordDecision(metrics.KindNight, resp.Action == action.WireIdle, time.Since(start))
	s.record(events.EventTypeNightAction, rc, target, events.SourceEngine, resp)
	return resp, nil
}

// LastWords produces the farewell. rc may be nil.
func (s *PlayerService) LastWords(rc *game.RoleContext) action.SpeechResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	start := time.Now()

	resp := s.mind.LastWords(rc)
	s.metrics.RecordDecision(metrics.KindLastWords, false, time.Since(start))
	s.record(events.EventTypeLastWords, rc, 0, events.SourceEngine, resp)
	return resp
}

// prepare validates rc through the mind and fills suspicion when the host
// sent none. The caller's context is not modified.
func (s *PlayerService) prepare(rc *game.RoleContext) (*game.RoleContext, string, error) {
	r, err := s.mind.Analyze(rc)
	if err != nil {
		s.recordError(err)
		return nil, "", err
	}
	profiles := perception.Profile(rc, r)
	if len(rc.Suspicion) == 0 {
		cp := *rc
		cp.Suspicion = perception.SuspicionMap(profiles)
		rc = &cp
	}
	if s.provider == nil {
		return rc, "", nil
	}
	return rc, perception.Summarize(rc, r, profiles), nil
}

func (s *PlayerService) prompt(rc *game.RoleContext, summary string) ai.Prompt {
	st := s.mind.Status()
	return ai.Prompt{
		PlayerID:    st.PlayerID,
		Role:        st.Role,
		Round:       rc.Round,
		Alive:       rc.AliveIDs(),
		Teammates:   st.Teammates,
		Summary:     summary,
		Checks:      rc.Checks(),
		Potions:     st.Potions,
		Personality: s.personality,
	}
}

func (s *PlayerService) draftSpeech(ctx context.Context, p ai.Prompt) (action.SpeechResponse, error) {
	content, err := s.complete(ctx, ai.BuildSpeechPrompt(p))
	if err != nil {
		return action.SpeechResponse{}, err
	}
	draft, err := ai.ParseSpeech(content)
	if err != nil {
		return action.SpeechResponse{}, err
	}
	resp := s.mind.Polish(draft.Speech)
	// Only a seer may speak as one. Any marker word makes the speaker a
	// claimant for every reader, even without a seat and a verdict.
	if p.Role != game.RoleSeer && perception.HasInformantMarker(resp.Speech) {
		return action.SpeechResponse{}, errors.New("draft uses informant vocabulary")
	}
	return resp, nil
}

func (s *PlayerService) draftVote(ctx context.Context, rc *game.RoleContext, p ai.Prompt) (action.VoteResponse, error) {
	content, err := s.complete(ctx, ai.BuildVotePrompt(p))
	if err != nil {
		return action.VoteResponse{}, err
	}
	draft, err := ai.ParseVote(content)
	if err != nil {
		return action.VoteResponse{}, err
	}
	resp, ok := s.mind.CheckVote(rc, draft.Target, draft.Reason)
	if !ok {
		return action.VoteResponse{}, fmt.Errorf("draft vote for %d breaks a hard rule", draft.Target)
	}
	return resp, nil
}

// complete calls the backend with bounded retries and linear backoff.
func (s *PlayerService) complete(ctx context.Context, msgs []ai.Message) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.tuning.RequestTimeout)
	defer cancel()

	var lastErr error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		before := s.provider.GetUsageStats().TotalCostUSD
		resp, err := s.provider.Complete(ctx, ai.CompletionRequest{
			Messages:       msgs,
			MaxTokens:      s.maxTokens,
			Temperature:    s.temperature,
			ResponseFormat: "json",
		})
		if err == nil {
			cost := s.provider.GetUsageStats().TotalCostUSD - before
			s.metrics.RecordLLMCall(resp.TotalTokens, cost, resp.Latency)
			return resp.Content, nil
		}
		lastErr = err
		s.logger.Debug(fmt.Sprintf("LLM attempt %d/%d failed: %v", attempt, s.maxAttempts, err))
		if attempt == s.maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(s.tuning.LLMBackoff * time.Duration(attempt)):
		}
	}
	return "", lastErr
}

func (s *PlayerService) record(typ events.EventType, rc *game.RoleContext, target int, source events.Source, payload any) {
	st := s.mind.Status()
	e := events.NewEvent(typ, st.GameID, st.PlayerID, payload)
	e.Role = string(st.Role)
	e.Target = target
	e.Source = source
	if rc != nil {
		e.Round = rc.Round
	}
	s.log.Append(e)
}

func (s *PlayerService) recordError(err error) {
	s.metrics.RecordError(ErrorKind(err))
	s.logger.Warn("request rejected: " + err.Error())
}

// ErrorKind buckets an error for metrics and responses.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, game.ErrNoNightAction):
		return "no_night_action"
	case errors.Is(err, game.ErrMalformedContext):
		return "malformed_context"
	case errors.Is(err, game.ErrInvalidRole):
		return "invalid_role"
	}
	return "internal"
}
