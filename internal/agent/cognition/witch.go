package cognition

import (
	"fmt"

	"github.com/MRamiBalles/werewolf-agent/internal/domain/game"
)

// Rationale used when the witch saves herself.
const SelfSaveRationale = "我被狼人袭击了，使用解药自救，保全自己"

// WitchPolicy decides the heal and the poison independently.
type WitchPolicy struct {
	picker *Picker
	sides  SideSelector
}

func (*WitchPolicy) Role() game.RoleKind { return game.RoleWitch }

func (p *WitchPolicy) Night(in Input) (NightPlan, error) {
	trust := ResolveTrust(in, p.sides)
	plan := NightPlan{Role: game.RoleWitch}
	plan.Heal = p.heal(in, trust)
	plan.Poison = p.poison(in, trust)
	return plan, nil
}

func (p *WitchPolicy) heal(in Input, trust Trust) Decision {
	victim := in.Context.KilledTonight
	switch {
	case in.Potions.Heal:
		return Idle("解药已经用过了")
	case victim == 0:
		return Idle("今晚没有人被杀")
	case victim == in.Self:
		return Decision{Kind: ActionHeal, Target: victim, Rationale: SelfSaveRationale}
	case trust.Resolved() && contains(trust.Adversaries, victim):
		return Idle(fmt.Sprintf("%d号被预言家查杀，不值得救", victim))
	}
	return Decision{Kind: ActionHeal, Target: victim, Rationale: fmt.Sprintf("救下今晚被杀的%d号", victim)}
}

func (p *WitchPolicy) poison(in Input, trust Trust) Decision {
	if in.Potions.Poison {
		return Idle("毒药已经用过了")
	}
	if !trust.Resolved() {
		return Idle("没有确定的狼人，保留毒药")
	}
	pool := without(in.Context.AliveIDs(), []int{in.Self, in.Context.KilledTonight})
	targets := intersect(pool, trust.Adversaries)
	if len(targets) == 0 {
		return Idle("查杀对象不在场上，保留毒药")
	}
	t := p.picker.Prefer(targets, in.Context.Suspicion)
	return Decision{Kind: ActionPoison, Target: t, Rationale: fmt.Sprintf("%d号被%d号预言家查杀，毒杀", t, trust.Claimant)}
}

func (p *WitchPolicy) Speech(in Input, vote Decision) SpeechPlan {
	plan := planFromTrust(in, p.sides, vote)
	if plan.Stance == StanceObserve && in.Context.Round > 1 {
		plan.Stance = StanceHint
		plan.Rationale = "暗示掌握夜间信息"
	}
	return plan
}
