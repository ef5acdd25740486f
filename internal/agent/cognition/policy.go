// Package cognition is the decision-making core of the agent.
//
// Each role has a Policy selected by its RoleKind. Policies never mutate
// state and never see the network; they turn a perceived Regime plus the
// role's private knowledge into Decisions that respect the hard Rules.
package cognition

import (
	"fmt"

	"github.com/MRamiBalles/werewolf-agent/internal/agent/perception"
	"github.com/MRamiBalles/werewolf-agent/internal/domain/game"
)

// ActionKind is what a Decision does to its target.
type ActionKind string

const (
	ActionKill        ActionKind = "kill"
	ActionInvestigate ActionKind = "investigate"
	ActionHeal        ActionKind = "heal"
	ActionPoison      ActionKind = "poison"
	ActionVote        ActionKind = "vote"
	ActionIdle        ActionKind = "idle" // explicit no-op, Target is always 0
)

// Decision is one planned action with its audit rationale.
type Decision struct {
	Kind      ActionKind `json:"kind"`
	Target    int        `json:"target"` // 0 = none
	Rationale string     `json:"rationale"`
}

// Idle builds a no-op decision.
func Idle(rationale string) Decision {
	return Decision{Kind: ActionIdle, Rationale: rationale}
}

// IsNoop reports whether the decision targets nobody.
func (d Decision) IsNoop() bool {
	return d.Kind == ActionIdle || d.Target == 0
}

// NightPlan holds the night decisions of one role. Werewolves and seers use
// Main; the witch uses Heal and Poison, which are independent.
type NightPlan struct {
	Role   game.RoleKind `json:"role"`
	Main   Decision      `json:"main"`
	Heal   Decision      `json:"heal"`
	Poison Decision      `json:"poison"`
}

// Input is everything a policy may look at.
type Input struct {
	Self      int
	Role      game.RoleKind
	Teammates []int
	Context   *game.RoleContext
	Regime    perception.Regime
	Potions   game.PotionUsage // effective flags, agent memory merged with the host's
}

// Policy is the role-specific part of decision making.
type Policy interface {
	Role() game.RoleKind
	Night(in Input) (NightPlan, error)
	Speech(in Input, vote Decision) SpeechPlan
}

// Brain dispatches to the policy registered for a role.
type Brain struct {
	policies map[game.RoleKind]Policy
	voter    *Voter
}

// NewBrain creates a brain with the four standard role policies.
func NewBrain(picker *Picker, sides SideSelector) *Brain {
	if sides == nil {
		sides = ConsistencySelector{}
	}
	b := &Brain{
		policies: make(map[game.RoleKind]Policy),
		voter:    NewVoter(picker, sides),
	}
	b.Register(VillagerPolicy{sides: sides})
	b.Register(&WerewolfPolicy{picker: picker})
	b.Register(&SeerPolicy{picker: picker})
	b.Register(&WitchPolicy{picker: picker, sides: sides})
	return b
}

// Register installs or replaces the policy for its role.
func (b *Brain) Register(p Policy) {
	b.policies[p.Role()] = p
}

func (b *Brain) policy(role game.RoleKind) (Policy, error) {
	p, ok := b.policies[role]
	if !ok {
		return nil, fmt.Errorf("no policy for %q: %w", role, game.ErrInvalidRole)
	}
	return p, nil
}

// Night plans the night action of the input's role.
func (b *Brain) Night(in Input) (NightPlan, error) {
	p, err := b.policy(in.Role)
	if err != nil {
		return NightPlan{}, err
	}
	return p.Night(in)
}

// Vote plans the day vote. The same rules apply to every role.
func (b *Brain) Vote(in Input) (Decision, error) {
	if _, err := b.policy(in.Role); err != nil {
		return Decision{}, err
	}
	return b.voter.Vote(in), nil
}

// Speech plans what to say, consistent with the vote the agent would cast.
func (b *Brain) Speech(in Input) (SpeechPlan, error) {
	p, err := b.policy(in.Role)
	if err != nil {
		return SpeechPlan{}, err
	}
	return p.Speech(in, b.voter.Vote(in)), nil
}
