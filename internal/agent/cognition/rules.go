package cognition

import "github.com/MRamiBalles/werewolf-agent/internal/domain/game"

// Rule is an absolute constraint on a decision. Check returns false to block.
type Rule struct {
	Name        string
	Description string
	Check       func(in Input, d Decision) bool
}

// HardRules apply to every decision, whoever produced it.
var HardRules = []Rule{
	{
		Name:        "NO_SELF_TARGET",
		Description: "Never kill, poison, check or vote yourself",
		Check: func(in Input, d Decision) bool {
			return d.Kind == ActionHeal || d.Target != in.Self
		},
	},
	{
		Name:        "LIVING_TARGETS_ONLY",
		Description: "Targets must be alive; a heal may only go to tonight's victim",
		Check: func(in Input, d Decision) bool {
			if d.Kind == ActionHeal {
				return in.Context.KilledTonight > 0 && d.Target == in.Context.KilledTonight
			}
			return in.Context.IsAlive(d.Target)
		},
	},
	{
		Name:        "SINGLE_USE_POTIONS",
		Description: "A used potion can never be used again",
		Check: func(in Input, d Decision) bool {
			switch d.Kind {
			case ActionHeal:
				return !in.Potions.Heal
			case ActionPoison:
				return !in.Potions.Poison
			}
			return true
		},
	},
	{
		Name:        "NO_FRIENDLY_FIRE",
		Description: "Werewolves never kill or vote a teammate",
		Check: func(in Input, d Decision) bool {
			if in.Role != game.RoleWerewolf {
				return true
			}
			return !contains(in.Teammates, d.Target)
		},
	},
	{
		Name:        "ROLE_ABILITY",
		Description: "Only the owning role may use a night ability",
		Check: func(in Input, d Decision) bool {
			switch d.Kind {
			case ActionKill:
				return in.Role == game.RoleWerewolf
			case ActionInvestigate:
				return in.Role == game.RoleSeer
			case ActionHeal, ActionPoison:
				return in.Role == game.RoleWitch
			}
			return true
		},
	},
}

// Violation returns the name of the first rule the decision breaks.
// No-op decisions never violate anything.
func Violation(in Input, d Decision) (string, bool) {
	if d.IsNoop() {
		return "", false
	}
	for _, r := range HardRules {
		if !r.Check(in, d) {
			return r.Name, true
		}
	}
	return "", false
}
