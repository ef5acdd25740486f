package cognition

import (
	"fmt"
	"sort"

	"github.com/MRamiBalles/werewolf-agent/internal/agent/perception"
	"github.com/MRamiBalles/werewolf-agent/internal/domain/game"
)

// SeerPolicy checks one player per night and publishes results by day.
type SeerPolicy struct {
	picker *Picker
}

func (*SeerPolicy) Role() game.RoleKind { return game.RoleSeer }

func (p *SeerPolicy) Night(in Input) (NightPlan, error) {
	plan := NightPlan{Role: game.RoleSeer}
	pool := without(in.Context.AliveIDs(), []int{in.Self})
	if len(pool) == 0 {
		plan.Main = Idle("没有可以查验的目标")
		return plan, nil
	}

	checked := in.Context.Checks()
	checkedIDs := make([]int, 0, len(checked))
	for id := range checked {
		checkedIDs = append(checkedIDs, id)
	}
	fresh := without(pool, checkedIDs)
	candidates := orFallback(fresh, pool)

	// A rival claimant is the most informative check.
	if rivals := intersect(candidates, in.Regime.Claimants); len(rivals) > 0 && len(fresh) > 0 {
		t := p.picker.Prefer(rivals, in.Context.Suspicion)
		plan.Main = investigate(t, fmt.Sprintf("%d号也跳预言家，查验其身份", t))
		return plan, nil
	}
	if t, ok := p.picker.Ranked(candidates, in.Context.Suspicion); ok {
		plan.Main = investigate(t, fmt.Sprintf("%d号可疑度最高，优先查验", t))
		return plan, nil
	}
	t := p.picker.Uniform(candidates)
	if len(fresh) == 0 {
		plan.Main = investigate(t, fmt.Sprintf("所有人都查验过了，复查%d号", t))
		return plan, nil
	}
	plan.Main = investigate(t, fmt.Sprintf("查验未知身份的%d号", t))
	return plan, nil
}

func (p *SeerPolicy) Speech(in Input, vote Decision) SpeechPlan {
	checked := in.Context.Checks()
	var checks []perception.Claim
	wolfAlive := false
	for target, good := range checked {
		a := perception.AlignmentAlly
		if !good {
			a = perception.AlignmentAdversary
			if in.Context.IsAlive(target) {
				wolfAlive = true
			}
		}
		checks = append(checks, perception.Claim{Claimant: in.Self, Target: target, Alignment: a})
	}
	sort.Slice(checks, func(i, j int) bool { return checks[i].Target < checks[j].Target })

	if len(checks) > 0 && (wolfAlive || in.Context.Round >= 2) {
		return SpeechPlan{Stance: StanceReport, Focus: vote.Target, Informant: in.Self, Checks: checks, Rationale: "公布查验结果"}
	}
	return SpeechPlan{Stance: StanceObserve, Focus: vote.Target, Rationale: "暂时隐藏身份"}
}

func investigate(target int, rationale string) Decision {
	return Decision{Kind: ActionInvestigate, Target: target, Rationale: rationale}
}
