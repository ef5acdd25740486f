// Package agent is the orchestrator of one werewolf player.
// It runs Perception, Cognition and Action for every request and keeps the
// little state a player owns: its seat, its role, its pack and its potions.
//
// A Mind is not safe for concurrent use. The host serialises calls per agent.
package agent

import (
	"fmt"

	"github.com/MRamiBalles/werewolf-agent/internal/agent/action"
	"github.com/MRamiBalles/werewolf-agent/internal/agent/cognition"
	"github.com/MRamiBalles/werewolf-agent/internal/agent/perception"
	"github.com/MRamiBalles/werewolf-agent/internal/domain/game"
	"github.com/MRamiBalles/werewolf-agent/internal/platform/logger"
)

// Identity is fixed at game start.
type Identity struct {
	GameID    string        `json:"gameId"`
	PlayerID  int           `json:"playerId"`
	Role      game.RoleKind `json:"role"`
	Teammates []int         `json:"teammates"`
}

// Status is a snapshot of the agent's own state.
type Status struct {
	Identity
	Started bool             `json:"started"`
	Potions game.PotionUsage `json:"potions"`
}

// Analyzer derives the information regime from a context.
type Analyzer interface {
	Analyze(rc *game.RoleContext) perception.Regime
}

// AnalyzerFunc adapts a function to Analyzer.
type AnalyzerFunc func(rc *game.RoleContext) perception.Regime

func (f AnalyzerFunc) Analyze(rc *game.RoleContext) perception.Regime { return f(rc) }

// Purger is implemented by analyzers that cache regimes across requests.
// StartGame purges them so one game never reads another's results.
type Purger interface {
	Purge()
}

// Mind is one agent's decision loop.
type Mind struct {
	identity Identity
	started  bool
	potions  game.PotionUsage

	analyzer  Analyzer
	sides     cognition.SideSelector
	seed      int64
	settings  action.Settings
	brain     *cognition.Brain
	assembler *action.Assembler
	logger    *logger.Logger
	onBlocked func(rule string)
}

// Option configures a Mind.
type Option func(*Mind)

// WithSeed fixes the random source, for reproducible games and tests.
func WithSeed(seed int64) Option { return func(m *Mind) { m.seed = seed } }

// WithSideSelector replaces the conflict comparator.
func WithSideSelector(s cognition.SideSelector) Option { return func(m *Mind) { m.sides = s } }

// WithAnalyzer replaces perception, e.g. with a cached one.
func WithAnalyzer(a Analyzer) Option { return func(m *Mind) { m.analyzer = a } }

// WithSettings sets tone and speech bounds.
func WithSettings(s action.Settings) Option { return func(m *Mind) { m.settings = s } }

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option { return func(m *Mind) { m.logger = l } }

// WithOnBlocked registers a hook for actions replaced by a hard rule.
func WithOnBlocked(fn func(rule string)) Option { return func(m *Mind) { m.onBlocked = fn } }

// NewMind creates an agent that has not joined a game yet.
func NewMind(opts ...Option) *Mind {
	m := &Mind{
		analyzer: AnalyzerFunc(perception.Analyze),
		sides:    cognition.ConsistencySelector{},
		settings: action.DefaultSettings(),
		logger:   logger.NewLogger(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.brain = cognition.NewBrain(cognition.NewPicker(m.seed), m.sides)
	m.assembler = action.NewAssembler(m.settings)
	m.assembler.OnBlocked = func(rule string, d cognition.Decision) {
		m.logger.Warn(fmt.Sprintf("ACTION: %s %d blocked by %s", d.Kind, d.Target, rule))
		if m.onBlocked != nil {
			m.onBlocked(rule)
		}
	}
	return m
}

// StartGame assigns the seat and role. It resets all per-game state.
func (m *Mind) StartGame(id Identity) error {
	role, err := game.ParseRole(string(id.Role))
	if err != nil {
		return err
	}
	if id.PlayerID < 1 {
		return &game.ContextError{Role: role, Field: "playerId", Msg: "must be positive"}
	}
	id.Role = role
	id.Teammates = append([]int(nil), id.Teammates...)
	if role != game.RoleWerewolf {
		id.Teammates = nil
	}

	m.identity = id
	m.started = true
	m.potions = game.PotionUsage{}
	if p, ok := m.analyzer.(Purger); ok {
		p.Purge()
	}
	m.logger.Event("START_GAME", m.actor(), fmt.Sprintf("game=%s role=%s teammates=%v", id.GameID, role, id.Teammates))
	return nil
}

// Identity returns the identity set at game start.
func (m *Mind) Identity() Identity { return m.identity }

// Status reports the agent's own state.
func (m *Mind) Status() Status {
	return Status{Identity: m.identity, Started: m.started, Potions: m.potions}
}

// Analyze exposes the perceived regime for a context.
func (m *Mind) Analyze(rc *game.RoleContext) (perception.Regime, error) {
	in, err := m.input(rc)
	if err != nil {
		return perception.Regime{}, err
	}
	return in.Regime, nil
}

// DecideSpeech produces the day speech.
func (m *Mind) DecideSpeech(rc *game.RoleContext) (action.SpeechResponse, error) {
	in, err := m.input(rc)
	if err != nil {
		return action.SpeechResponse{}, err
	}
	plan, err := m.brain.Speech(in)
	if err != nil {
		return action.SpeechResponse{}, err
	}
	resp := m.assembler.Speech(plan)
	m.logger.Event("SPEECH", m.actor(), fmt.Sprintf("stance=%s focus=%d", plan.Stance, plan.Focus))
	return resp, nil
}

// DecideVote produces the day vote.
func (m *Mind) DecideVote(rc *game.RoleContext) (action.VoteResponse, error) {
	in, err := m.input(rc)
	if err != nil {
		return action.VoteResponse{}, err
	}
	d, err := m.brain.Vote(in)
	if err != nil {
		return action.VoteResponse{}, err
	}
	resp := m.assembler.Vote(in, d)
	m.logger.Event("VOTE", m.actor(), fmt.Sprintf("target=%d phase=%s", resp.Target, in.Regime.Phase))
	return resp, nil
}

// DecideNightAction produces the night action of the role. Villagers get
// game.ErrNoNightAction. A potion the witch uses is marked spent for good.
func (m *Mind) DecideNightAction(rc *game.RoleContext) (action.NightActionResponse, error) {
	if m.started && !m.identity.Role.HasNightAction() {
		return action.NightActionResponse{}, game.ErrNoNightAction
	}
	in, err := m.input(rc)
	if err != nil {
		return action.NightActionResponse{}, err
	}
	plan, err := m.brain.Night(in)
	if err != nil {
		return action.NightActionResponse{}, err
	}
	resp := m.assembler.Night(in, plan)

	if resp.HealTarget > 0 {
		m.potions.Heal = true
	}
	if resp.PoisonTarget > 0 {
		m.potions.Poison = true
	}
	m.logger.Event("NIGHT_ACTION", m.actor(), fmt.Sprintf("action=%s target=%d heal=%d poison=%d",
		resp.Action, resp.Target, resp.HealTarget, resp.PoisonTarget))
	return resp, nil
}

// LastWords produces the farewell. A nil context yields the default text.
func (m *Mind) LastWords(rc *game.RoleContext) action.SpeechResponse {
	return m.assembler.LastWords(m.identity.Role, rc, m.identity.PlayerID)
}

// Polish applies tone and length bounds to externally drafted speech.
func (m *Mind) Polish(text string) action.SpeechResponse {
	return m.assembler.Text(text)
}

// CheckVote validates an externally proposed vote against the hard rules.
// ok is false when the proposal had to be replaced.
func (m *Mind) CheckVote(rc *game.RoleContext, target int, reason string) (action.VoteResponse, bool) {
	in, err := m.input(rc)
	if err != nil {
		return action.VoteResponse{}, false
	}
	if target == 0 {
		return action.VoteResponse{Reason: reason}, true
	}
	d := cognition.Decision{Kind: cognition.ActionVote, Target: target, Rationale: reason}
	if _, bad := cognition.Violation(in, d); bad {
		return action.VoteResponse{}, false
	}
	// Never let a proposal vote a trusted ally.
	if trust := cognition.ResolveTrust(in, m.sides); contains(trust.Allies, target) {
		return action.VoteResponse{}, false
	}
	return m.assembler.Vote(in, d), true
}

func (m *Mind) input(rc *game.RoleContext) (cognition.Input, error) {
	if !m.started {
		return cognition.Input{}, game.InvalidRoleError("game not started")
	}
	if err := rc.Validate(m.identity.Role); err != nil {
		return cognition.Input{}, err
	}
	potions := m.potions
	if rc.PotionUsed != nil {
		potions.Heal = potions.Heal || rc.PotionUsed.Heal
		potions.Poison = potions.Poison || rc.PotionUsed.Poison
	}
	return cognition.Input{
		Self:      m.identity.PlayerID,
		Role:      m.identity.Role,
		Teammates: m.identity.Teammates,
		Context:   rc,
		Regime:    m.analyzer.Analyze(rc),
		Potions:   potions,
	}, nil
}

func (m *Mind) actor() string {
	return fmt.Sprintf("P%d", m.identity.PlayerID)
}

func contains(ids []int, id int) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}
