// Package action provides the "hands" of the agent.
//
// It turns cognition decisions into the exact shapes the game host
// expects. Every target is checked against the hard rules on the way out,
// so nothing invalid escapes even if a caller hands in a bad decision.
package action

import (
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/MRamiBalles/werewolf-agent/internal/agent/cognition"
	"github.com/MRamiBalles/werewolf-agent/internal/domain/game"
)

// Night action wire values.
const (
	WireKill        = "kill"
	WireInvestigate = "investigate"
	WireUsing       = "using"
	WireIdle        = "idle"
)

// SpeechResponse is the reply to a speak request.
type SpeechResponse struct {
	Speech string `json:"speech"`
}

// VoteResponse is the reply to a vote request. Target 0 abstains.
type VoteResponse struct {
	Target int    `json:"target"`
	Reason string `json:"reason"`
}

// NightActionResponse is the reply to a use-ability request. Its JSON shape
// depends on Role: witches report both potions, other roles one target.
type NightActionResponse struct {
	Role         game.RoleKind
	Action       string
	Target       int
	Reason       string
	HealTarget   int
	HealReason   string
	PoisonTarget int
	PoisonReason string
}

type targetAction struct {
	Action string `json:"action"`
	Target int    `json:"target"`
	Reason string `json:"reason"`
}

type potionAction struct {
	Action       string `json:"action"`
	HealTarget   int    `json:"healTarget"`
	HealReason   string `json:"healReason"`
	PoisonTarget int    `json:"poisonTarget"`
	PoisonReason string `json:"poisonReason"`
}

func (r NightActionResponse) MarshalJSON() ([]byte, error) {
	if r.Role == game.RoleWitch {
		return json.Marshal(potionAction{
			Action:       r.Action,
			HealTarget:   r.HealTarget,
			HealReason:   r.HealReason,
			PoisonTarget: r.PoisonTarget,
			PoisonReason: r.PoisonReason,
		})
	}
	return json.Marshal(targetAction{Action: r.Action, Target: r.Target, Reason: r.Reason})
}

// Settings shape the assembled output.
type Settings struct {
	Aggressiveness float64
	MaxSpeechRunes int
	MinSpeechRunes int
	MaxToneSwaps   int
}

// DefaultSettings mirrors the usual table-talk bounds.
func DefaultSettings() Settings {
	return Settings{Aggressiveness: 0.5, MaxSpeechRunes: 80, MinSpeechRunes: 30, MaxToneSwaps: defaultMaxSwaps}
}

// Assembler builds final responses.
type Assembler struct {
	tone     Tone
	maxRunes int
	minRunes int

	// OnBlocked is called whenever a decision is replaced by a no-op.
	OnBlocked func(rule string, d cognition.Decision)
}

// NewAssembler creates an assembler. Zero bounds fall back to defaults.
func NewAssembler(s Settings) *Assembler {
	def := DefaultSettings()
	if s.MaxSpeechRunes <= 0 {
		s.MaxSpeechRunes = def.MaxSpeechRunes
	}
	if s.MinSpeechRunes < 0 || s.MinSpeechRunes > s.MaxSpeechRunes {
		s.MinSpeechRunes = 0
	}
	tone := NewTone(s.Aggressiveness)
	if s.MaxToneSwaps > 0 {
		tone.MaxSwaps = s.MaxToneSwaps
	}
	return &Assembler{tone: tone, maxRunes: s.MaxSpeechRunes, minRunes: s.MinSpeechRunes}
}

// Speech renders a plan and applies tone and length bounds.
func (a *Assembler) Speech(plan cognition.SpeechPlan) SpeechResponse {
	return a.Text(renderSpeech(plan))
}

// Text applies tone and length bounds to free text, e.g. a backend draft.
func (a *Assembler) Text(raw string) SpeechResponse {
	text := a.tone.Apply(strings.TrimSpace(raw))
	if utf8.RuneCountInString(text) < a.minRunes {
		text += speechFiller
	}
	return SpeechResponse{Speech: truncateRunes(text, a.maxRunes)}
}

// LastWords renders the farewell speech.
func (a *Assembler) LastWords(role game.RoleKind, rc *game.RoleContext, self int) SpeechResponse {
	if rc == nil {
		return SpeechResponse{Speech: DefaultLastWords}
	}
	text := a.tone.Apply(renderLastWords(role, rc, self))
	return SpeechResponse{Speech: truncateRunes(text, a.maxRunes)}
}

// Vote validates and shapes a vote.
func (a *Assembler) Vote(in cognition.Input, d cognition.Decision) VoteResponse {
	d = a.enforce(in, d)
	return VoteResponse{Target: d.Target, Reason: d.Rationale}
}

// Night validates and shapes a night plan.
func (a *Assembler) Night(in cognition.Input, plan cognition.NightPlan) NightActionResponse {
	resp := NightActionResponse{Role: in.Role}
	if in.Role == game.RoleWitch {
		heal := a.enforce(in, plan.Heal)
		poison := a.enforce(in, plan.Poison)
		resp.HealTarget, resp.HealReason = heal.Target, heal.Rationale
		resp.PoisonTarget, resp.PoisonReason = poison.Target, poison.Rationale
		resp.Action = WireIdle
		if !heal.IsNoop() || !poison.IsNoop() {
			resp.Action = WireUsing
		}
		return resp
	}

	main := a.enforce(in, plan.Main)
	resp.Target, resp.Reason = main.Target, main.Rationale
	switch {
	case main.IsNoop():
		resp.Action = WireIdle
	case main.Kind == cognition.ActionInvestigate:
		resp.Action = WireInvestigate
	default:
		resp.Action = WireKill
	}
	return resp
}

// enforce replaces a rule-breaking decision with a no-op.
func (a *Assembler) enforce(in cognition.Input, d cognition.Decision) cognition.Decision {
	if d.IsNoop() {
		return cognition.Decision{Kind: cognition.ActionIdle, Rationale: d.Rationale}
	}
	rule, bad := cognition.Violation(in, d)
	if !bad {
		return d
	}
	if a.OnBlocked != nil {
		a.OnBlocked(rule, d)
	}
	return cognition.Idle("目标无效(" + rule + ")，放弃行动")
}

// truncateRunes cuts to at most n runes, preferring the last sentence end.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)[:n]
	for i := len(runes) - 1; i >= n/2; i-- {
		switch runes[i] {
		case '。', '！', '？', '.', '!', '?':
			return string(runes[:i+1])
		}
	}
	return string(runes)
}
