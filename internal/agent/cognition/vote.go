package cognition

import (
	"fmt"

	"github.com/MRamiBalles/werewolf-agent/internal/agent/perception"
	"github.com/MRamiBalles/werewolf-agent/internal/domain/game"
)

// Voter is the day vote policy shared by every role.
type Voter struct {
	picker *Picker
	sides  SideSelector
}

// NewVoter creates a vote policy.
func NewVoter(picker *Picker, sides SideSelector) *Voter {
	if sides == nil {
		sides = ConsistencySelector{}
	}
	return &Voter{picker: picker, sides: sides}
}

// Vote picks the player to eliminate, in priority order:
// never a trusted ally, then own confirmed wolves (seer), then trusted
// suspects, then the caller's suspicion ranking, then uniform.
func (v *Voter) Vote(in Input) Decision {
	pool := without(in.Context.AliveIDs(), []int{in.Self})
	if in.Role == game.RoleWerewolf {
		pool = without(pool, in.Teammates)
	}
	if len(pool) == 0 {
		return Idle("没有可以投票的目标")
	}

	trust := ResolveTrust(in, v.sides)
	candidates := without(pool, trust.Allies)
	if in.Regime.Phase == perception.PhaseSingle {
		candidates = without(candidates, in.Regime.ProtectedTargets)
	}
	if len(candidates) == 0 {
		return Idle("存活玩家都是可信的好人，弃票")
	}
	candidates = orFallback(without(candidates, in.Regime.ProtectedTargets, []int{trust.Claimant}), candidates)

	if in.Role == game.RoleSeer {
		checks := in.Context.Checks()
		if wolves := intersect(candidates, sortedKeysBool(checks, false)); len(wolves) > 0 {
			t := v.picker.Prefer(wolves, in.Context.Suspicion)
			return vote(t, fmt.Sprintf("我查验过%d号是狼人", t))
		}
		candidates = orFallback(without(candidates, sortedKeysBool(checks, true)), candidates)
	}

	if trust.Resolved() {
		if suspects := intersect(candidates, trust.Adversaries); len(suspects) > 0 {
			t := v.picker.Prefer(suspects, in.Context.Suspicion)
			return vote(t, fmt.Sprintf("%d号被%d号预言家查杀", t, trust.Claimant))
		}
	}

	if t, ok := v.picker.Ranked(candidates, in.Context.Suspicion); ok {
		return vote(t, fmt.Sprintf("%d号的可疑度最高", t))
	}
	t := v.picker.Uniform(candidates)
	if in.Regime.Phase == perception.PhaseConflict && !trust.Resolved() {
		return vote(t, fmt.Sprintf("预言家对跳无法分辨真假，先投%d号", t))
	}
	return vote(t, fmt.Sprintf("信息不足，%d号的发言值得怀疑", t))
}

func vote(target int, rationale string) Decision {
	return Decision{Kind: ActionVote, Target: target, Rationale: rationale}
}
