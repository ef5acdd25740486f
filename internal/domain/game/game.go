// Package game defines the data model a werewolf player agent reasons over.
// This package is PURE and must NOT import any infrastructure packages (network, events, platform).
package game

import "sort"

// RoleKind identifies the secret role the agent was dealt.
type RoleKind string

const (
	RoleVillager RoleKind = "villager" // plain member, no night action
	RoleWerewolf RoleKind = "werewolf" // eliminator, knows its teammates
	RoleSeer     RoleKind = "seer"     // informant, checks one player per night
	RoleWitch    RoleKind = "witch"    // protector, one heal and one poison per game
)

// ParseRole maps a wire value onto a RoleKind.
func ParseRole(s string) (RoleKind, error) {
	switch RoleKind(s) {
	case RoleVillager, RoleWerewolf, RoleSeer, RoleWitch:
		return RoleKind(s), nil
	case "":
		return "", InvalidRoleError("missing role")
	}
	return "", InvalidRoleError("unknown role " + s)
}

// HasNightAction reports whether the role acts during the night.
func (r RoleKind) HasNightAction() bool {
	return r == RoleWerewolf || r == RoleSeer || r == RoleWitch
}

// Phase is the phase of the game the host is currently in.
type Phase string

const (
	PhasePreparing Phase = "preparing"
	PhaseNight     Phase = "night"
	PhaseDay       Phase = "day"
	PhaseVoting    Phase = "voting"
	PhaseEnded     Phase = "ended"
)

// SpeechKind distinguishes player speech from host announcements.
type SpeechKind string

const (
	SpeechPlayer SpeechKind = "player"
	SpeechSystem SpeechKind = "system"
)

// Player is a seat at the table.
type Player struct {
	ID      int  `json:"id"`
	IsAlive bool `json:"isAlive"`
}

// SpeechRecord is one utterance in the public history.
type SpeechRecord struct {
	PlayerID int        `json:"playerId"`
	Content  string     `json:"content"`
	Round    int        `json:"round,omitempty"`
	Type     SpeechKind `json:"type,omitempty"`
}

// VoteRecord is one ballot cast in a voting phase.
type VoteRecord struct {
	VoterID  int `json:"voterId"`
	TargetID int `json:"targetId"`
	Round    int `json:"round,omitempty"`
}

// Investigation is a seer check result.
type Investigation struct {
	Target int  `json:"target"`
	IsGood bool `json:"isGood"`
}

// PotionUsage tracks the witch's two single-use potions.
type PotionUsage struct {
	Heal   bool `json:"heal"`
	Poison bool `json:"poison"`
}

// RoleContext is the per-request snapshot the host hands the agent.
// Seer requests carry InvestigatedPlayers, witch requests carry KilledTonight and PotionUsed.
type RoleContext struct {
	Round        int                    `json:"round"`
	Phase        Phase                  `json:"currentPhase"`
	AlivePlayers []Player               `json:"alivePlayers"`
	AllSpeeches  map[int][]SpeechRecord `json:"allSpeeches"`
	AllVotes     map[int][]VoteRecord   `json:"allVotes"`

	InvestigatedPlayers map[int]Investigation `json:"investigatedPlayers,omitempty"`
	KilledTonight       int                   `json:"killedTonight,omitempty"` // 0 = nobody
	PotionUsed          *PotionUsage          `json:"potionUsed,omitempty"`

	// Suspicion is an optional caller-supplied ranking, higher = more suspect.
	Suspicion map[int]float64 `json:"suspicion,omitempty"`
}

// AliveIDs returns the ids of living players in ascending order.
func (rc *RoleContext) AliveIDs() []int {
	ids := make([]int, 0, len(rc.AlivePlayers))
	for _, p := range rc.AlivePlayers {
		if p.IsAlive && p.ID > 0 {
			ids = append(ids, p.ID)
		}
	}
	sort.Ints(ids)
	return dedupSorted(ids)
}

// IsAlive reports whether the given player is alive in this snapshot.
func (rc *RoleContext) IsAlive(id int) bool {
	for _, p := range rc.AlivePlayers {
		if p.ID == id && p.IsAlive {
			return true
		}
	}
	return false
}

// Speeches flattens the speech history: rounds ascending, record order within a round.
func (rc *RoleContext) Speeches() []SpeechRecord {
	rounds := sortedKeys(rc.AllSpeeches)
	var out []SpeechRecord
	for _, r := range rounds {
		for _, s := range rc.AllSpeeches[r] {
			if s.Round == 0 {
				s.Round = r
			}
			out = append(out, s)
		}
	}
	return out
}

// Votes flattens the vote history in round order.
func (rc *RoleContext) Votes() []VoteRecord {
	rounds := sortedKeys(rc.AllVotes)
	var out []VoteRecord
	for _, r := range rounds {
		for _, v := range rc.AllVotes[r] {
			if v.Round == 0 {
				v.Round = r
			}
			out = append(out, v)
		}
	}
	return out
}

// Checks returns the seer's investigations keyed by target.
// A later round overrides an earlier check of the same target.
func (rc *RoleContext) Checks() map[int]bool {
	out := make(map[int]bool, len(rc.InvestigatedPlayers))
	for _, r := range sortedKeys(rc.InvestigatedPlayers) {
		inv := rc.InvestigatedPlayers[r]
		if inv.Target > 0 {
			out[inv.Target] = inv.IsGood
		}
	}
	return out
}

// Potions returns the witch's potion flags, zero value when absent.
func (rc *RoleContext) Potions() PotionUsage {
	if rc.PotionUsed == nil {
		return PotionUsage{}
	}
	return *rc.PotionUsed
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

func dedupSorted(ids []int) []int {
	if len(ids) < 2 {
		return ids
	}
	out := ids[:1]
	for _, id := range ids[1:] {
		if id != out[len(out)-1] {
			out = append(out, id)
		}
	}
	return out
}
