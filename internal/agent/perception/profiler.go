package perception

import (
	"fmt"
	"sort"

	"github.com/MRamiBalles/werewolf-agent/internal/domain/game"
)

// Behaviour tags attached to a player profile.
const (
	TagClaimant      = "跳预言家"
	TagProtected     = "金水"
	TagSuspect       = "被查杀"
	TagVotedGood     = "投票给金水"
	TagVotedSuspect  = "投票给查杀"
	TagSilent        = "沉默"
	baseSuspicion    = 0.5
	maxEvidenceLines = 3
)

// PlayerProfile is the suspicion view of one player.
type PlayerProfile struct {
	ID        int      `json:"id"`
	IsAlive   bool     `json:"isAlive"`
	Suspicion float64  `json:"suspicionScore"`
	Tags      []string `json:"behaviorTags"`
	Evidence  []string `json:"keyEvidence"`
}

// Profile scores every known player from the regime and the vote history.
// The result is a heuristic ranking, suitable as RoleContext.Suspicion.
func Profile(rc *game.RoleContext, r Regime) []PlayerProfile {
	byID := make(map[int]*PlayerProfile)
	var order []int
	get := func(id int) *PlayerProfile {
		if p, ok := byID[id]; ok {
			return p
		}
		p := &PlayerProfile{ID: id, IsAlive: rc.IsAlive(id), Suspicion: baseSuspicion}
		byID[id] = p
		order = append(order, id)
		return p
	}
	for _, p := range rc.AlivePlayers {
		get(p.ID)
	}

	for _, c := range r.Claims {
		target := get(c.Target)
		switch c.Alignment {
		case AlignmentAdversary:
			target.Suspicion += 0.3
			target.addTag(TagSuspect)
			target.addEvidence(fmt.Sprintf("被%d号查杀", c.Claimant))
		case AlignmentAlly:
			target.Suspicion -= 0.2
			target.addTag(TagProtected)
			target.addEvidence(fmt.Sprintf("%d号给出金水", c.Claimant))
		}
	}
	if r.Phase == PhaseConflict {
		for _, id := range r.Claimants {
			p := get(id)
			p.Suspicion += 0.1
			p.addTag(TagClaimant)
		}
	} else if r.Phase == PhaseSingle {
		get(r.SelectedInformant).addTag(TagClaimant)
	}

	for _, v := range rc.Votes() {
		voter := get(v.VoterID)
		switch {
		case r.IsProtected(v.TargetID):
			voter.Suspicion += 0.1
			voter.addTag(TagVotedGood)
			voter.addEvidence(fmt.Sprintf("第%d轮投票给金水%d号", v.Round, v.TargetID))
		case r.IsSuspect(v.TargetID):
			voter.Suspicion -= 0.05
			voter.addTag(TagVotedSuspect)
		}
	}

	spoke := make(map[int]bool)
	speeches := rc.Speeches()
	for _, s := range speeches {
		spoke[s.PlayerID] = true
	}
	if len(speeches) > 0 {
		for _, id := range rc.AliveIDs() {
			if !spoke[id] {
				p := get(id)
				p.Suspicion += 0.05
				p.addTag(TagSilent)
			}
		}
	}

	out := make([]PlayerProfile, 0, len(order))
	for _, id := range order {
		p := byID[id]
		p.Suspicion = clamp(p.Suspicion)
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// SuspicionMap flattens profiles of living players into a ranking map.
func SuspicionMap(profiles []PlayerProfile) map[int]float64 {
	m := make(map[int]float64, len(profiles))
	for _, p := range profiles {
		if p.IsAlive {
			m[p.ID] = p.Suspicion
		}
	}
	return m
}

func (p *PlayerProfile) addTag(tag string) {
	for _, t := range p.Tags {
		if t == tag {
			return
		}
	}
	p.Tags = append(p.Tags, tag)
}

func (p *PlayerProfile) addEvidence(line string) {
	if len(p.Evidence) < maxEvidenceLines {
		p.Evidence = append(p.Evidence, line)
	}
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
