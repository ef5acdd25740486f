package cognition

import "github.com/MRamiBalles/werewolf-agent/internal/agent/perception"

// Stance is the line a speech takes.
type Stance string

const (
	StanceObserve Stance = "observe" // little information, name a suspect softly
	StanceFollow  Stance = "follow"  // back the trusted informant's result
	StanceDoubt   Stance = "doubt"   // informants contradict each other
	StanceReport  Stance = "report"  // the seer publishes its checks
	StanceHint    Stance = "hint"    // the witch implies night knowledge
	StanceDeflect Stance = "deflect" // a werewolf questions the informant
)

// SpeechPlan is what the speech should convey. The action layer renders it.
type SpeechPlan struct {
	Stance    Stance             `json:"stance"`
	Focus     int                `json:"focus"`     // player pushed for elimination, 0 = none
	Informant int                `json:"informant"` // informant backed or questioned
	Claimants []int              `json:"claimants,omitempty"`
	Checks    []perception.Claim `json:"checks,omitempty"` // own results to publish
	Rationale string             `json:"rationale"`
}

func planFromTrust(in Input, sides SideSelector, vote Decision) SpeechPlan {
	trust := ResolveTrust(in, sides)
	focus := vote.Target
	switch {
	case trust.Resolved() && contains(trust.Adversaries, focus):
		return SpeechPlan{Stance: StanceFollow, Focus: focus, Informant: trust.Claimant, Rationale: "跟随可信预言家的查杀"}
	case in.Regime.Phase == perception.PhaseConflict && !trust.Resolved():
		return SpeechPlan{Stance: StanceDoubt, Focus: focus, Claimants: in.Regime.Claimants, Rationale: "预言家对跳，暂不站边"}
	}
	return SpeechPlan{Stance: StanceObserve, Focus: focus, Rationale: vote.Rationale}
}
