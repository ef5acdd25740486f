package cognition

import "github.com/MRamiBalles/werewolf-agent/internal/domain/game"

// VillagerPolicy is the plain village member. It only talks and votes.
type VillagerPolicy struct {
	sides SideSelector
}

func (VillagerPolicy) Role() game.RoleKind { return game.RoleVillager }

func (VillagerPolicy) Night(Input) (NightPlan, error) {
	return NightPlan{}, game.ErrNoNightAction
}

func (p VillagerPolicy) Speech(in Input, vote Decision) SpeechPlan {
	return planFromTrust(in, p.sides, vote)
}
