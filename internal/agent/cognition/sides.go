package cognition

import (
	"github.com/MRamiBalles/werewolf-agent/internal/agent/perception"
	"github.com/MRamiBalles/werewolf-agent/internal/domain/game"
)

// Knowledge is what the agent knows for certain, independent of speeches.
type Knowledge struct {
	Self  int
	Truth map[int]perception.Alignment
}

// KnowledgeOf collects the private facts available to the input's role.
func KnowledgeOf(in Input) Knowledge {
	k := Knowledge{Self: in.Self, Truth: make(map[int]perception.Alignment)}
	switch in.Role {
	case game.RoleWerewolf:
		// The pack knows each other, so everyone else is on the village side.
		for _, id := range in.Context.AliveIDs() {
			k.Truth[id] = perception.AlignmentAlly
		}
		for _, id := range in.Teammates {
			k.Truth[id] = perception.AlignmentAdversary
		}
		k.Truth[in.Self] = perception.AlignmentAdversary
	case game.RoleSeer:
		for target, good := range in.Context.Checks() {
			if good {
				k.Truth[target] = perception.AlignmentAlly
			} else {
				k.Truth[target] = perception.AlignmentAdversary
			}
		}
		k.Truth[in.Self] = perception.AlignmentAlly
	default:
		k.Truth[in.Self] = perception.AlignmentAlly
	}
	return k
}

// SideSelector decides which of several conflicting informants to believe.
// ok is false when the conflict cannot be resolved.
type SideSelector interface {
	SelectSide(r perception.Regime, k Knowledge) (claimant int, ok bool)
}

// SideSelectorFunc adapts a function to SideSelector.
type SideSelectorFunc func(r perception.Regime, k Knowledge) (int, bool)

func (f SideSelectorFunc) SelectSide(r perception.Regime, k Knowledge) (int, bool) {
	return f(r, k)
}

// ConsistencySelector believes the claimant whose claims contradict neither
// themselves nor what the agent knows. A unique best score is required.
type ConsistencySelector struct{}

func (ConsistencySelector) SelectSide(r perception.Regime, k Knowledge) (int, bool) {
	if len(r.Claimants) == 0 {
		return 0, false
	}
	// An honest agent trusts its own report.
	if r.IsClaimant(k.Self) && k.Truth[k.Self] == perception.AlignmentAlly {
		return k.Self, true
	}

	best, bestScore, tied := 0, 0, false
	for i, c := range r.Claimants {
		s := consistencyScore(r, k, c)
		switch {
		case i == 0 || s > bestScore:
			best, bestScore, tied = c, s, false
		case s == bestScore:
			tied = true
		}
	}
	if tied {
		return 0, false
	}
	return best, true
}

func consistencyScore(r perception.Regime, k Knowledge, claimant int) int {
	score := 0
	said := make(map[int]perception.Alignment)
	for _, c := range r.ClaimsBy(claimant) {
		if prev, ok := said[c.Target]; ok && prev != c.Alignment {
			score -= 10
		}
		said[c.Target] = c.Alignment
		if c.Target == claimant {
			score -= 5
		}
		if truth, ok := k.Truth[c.Target]; ok {
			if truth == c.Alignment {
				score += 2
			} else {
				score -= 10
			}
		}
	}
	switch k.Truth[claimant] {
	case perception.AlignmentAdversary:
		score -= 10
	case perception.AlignmentAlly:
		score++
	}
	return score
}

// Trust is the set of claims the agent chooses to act on.
type Trust struct {
	Claimant    int   // 0 when nobody is trusted
	Allies      []int // the trusted claimant's ally targets
	Adversaries []int // the trusted claimant's adversary targets
}

// Resolved reports whether a claimant is trusted.
func (t Trust) Resolved() bool { return t.Claimant != 0 }

// ResolveTrust picks the claimant to believe: the only one under a single
// informant, the selector's choice under conflict, nobody otherwise.
func ResolveTrust(in Input, sides SideSelector) Trust {
	var claimant int
	switch in.Regime.Phase {
	case perception.PhaseSingle:
		claimant = in.Regime.SelectedInformant
	case perception.PhaseConflict:
		c, ok := sides.SelectSide(in.Regime, KnowledgeOf(in))
		if !ok || !in.Regime.IsClaimant(c) {
			return Trust{}
		}
		claimant = c
	default:
		return Trust{}
	}
	allies, adversaries := in.Regime.TargetsBy(claimant)
	return Trust{Claimant: claimant, Allies: allies, Adversaries: adversaries}
}
