package cognition

import (
	"fmt"

	"github.com/MRamiBalles/werewolf-agent/internal/agent/perception"
	"github.com/MRamiBalles/werewolf-agent/internal/domain/game"
)

// WerewolfPolicy picks the night kill and covers for the pack during the day.
type WerewolfPolicy struct {
	picker *Picker
}

func (*WerewolfPolicy) Role() game.RoleKind { return game.RoleWerewolf }

func (p *WerewolfPolicy) Night(in Input) (NightPlan, error) {
	plan := NightPlan{Role: game.RoleWerewolf}
	pool := without(in.Context.AliveIDs(), []int{in.Self}, in.Teammates)
	if len(pool) == 0 {
		plan.Main = Idle("没有可以攻击的目标")
		return plan, nil
	}

	r := in.Regime
	if r.Phase == perception.PhaseSingle {
		pool = without(pool, []int{r.SelectedInformant}, r.ProtectedTargets)
		if len(pool) == 0 {
			plan.Main = Idle("剩下的目标都有预言家背书，今晚不动手")
			return plan, nil
		}
	}

	// Players already marked as wolves are voted out by the village anyway.
	candidates := orFallback(without(pool, r.SuspectTargets), pool)

	if r.Phase == perception.PhaseConflict {
		if high := intersect(candidates, r.Claimants); len(high) > 0 {
			t := p.picker.Uniform(high)
			plan.Main = Decision{Kind: ActionKill, Target: t, Rationale: fmt.Sprintf("%d号起跳预言家，威胁最大", t)}
			return plan, nil
		}
	}

	t := p.picker.Uniform(candidates)
	plan.Main = Decision{Kind: ActionKill, Target: t, Rationale: fmt.Sprintf("选择击杀%d号", t)}
	return plan, nil
}

func (p *WerewolfPolicy) Speech(in Input, vote Decision) SpeechPlan {
	r := in.Regime
	pack := append([]int{in.Self}, in.Teammates...)
	exposed := len(intersect(r.SuspectTargets, pack)) > 0
	if r.Phase == perception.PhaseSingle && exposed && !contains(pack, r.SelectedInformant) {
		return SpeechPlan{
			Stance:    StanceDeflect,
			Focus:     vote.Target,
			Informant: r.SelectedInformant,
			Rationale: "队友被查杀，质疑预言家",
		}
	}
	return SpeechPlan{Stance: StanceObserve, Focus: vote.Target, Rationale: "隐藏身份，把焦点引向好人"}
}
