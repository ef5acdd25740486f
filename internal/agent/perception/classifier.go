package perception

import (
	"sort"

	"github.com/MRamiBalles/werewolf-agent/internal/domain/game"
)

// InformantPhase is the information regime derived from the claims on the table.
type InformantPhase string

const (
	PhaseNone     InformantPhase = "none"     // nobody claims to check players
	PhaseSingle   InformantPhase = "single"   // exactly one claimant
	PhaseConflict InformantPhase = "conflict" // two or more claimants contradict each other
)

// Regime summarises who claims to be the informant and what they assert.
type Regime struct {
	InformantCount    int            `json:"informantCount"`
	Phase             InformantPhase `json:"phase"`
	Claimants         []int          `json:"claimants"`
	Claims            []Claim        `json:"claims"`
	ProtectedTargets  []int          `json:"protectedTargets"`
	SuspectTargets    []int          `json:"suspectTargets"`
	SelectedInformant int            `json:"selectedInformant,omitempty"` // set only in PhaseSingle
}

// Classify aggregates an extraction into a Regime. It is pure and does not
// depend on claim order. A claimant asserting both alignments for one target
// contributes that target to neither set.
func Classify(ex Extraction) Regime {
	claimants := uniqueSorted(ex.Claimants)
	for _, c := range ex.Claims {
		claimants = insertSorted(claimants, c.Claimant)
	}

	r := Regime{
		InformantCount:   len(claimants),
		Claimants:        claimants,
		Claims:           dedupClaims(ex.Claims),
		ProtectedTargets: []int{},
		SuspectTargets:   []int{},
	}
	switch {
	case len(claimants) == 0:
		r.Phase = PhaseNone
	case len(claimants) == 1:
		r.Phase = PhaseSingle
		r.SelectedInformant = claimants[0]
	default:
		r.Phase = PhaseConflict
	}

	for _, claimant := range claimants {
		allies, adversaries := resolvedTargets(r.Claims, claimant)
		for _, t := range allies {
			r.ProtectedTargets = insertSorted(r.ProtectedTargets, t)
		}
		for _, t := range adversaries {
			r.SuspectTargets = insertSorted(r.SuspectTargets, t)
		}
	}
	return r
}

// Analyze runs extraction and classification over a context's speeches.
func Analyze(rc *game.RoleContext) Regime {
	return Classify(Extract(rc.Speeches()))
}

// ClaimsBy returns the deduplicated claims of one claimant.
func (r Regime) ClaimsBy(claimant int) []Claim {
	var out []Claim
	for _, c := range r.Claims {
		if c.Claimant == claimant {
			out = append(out, c)
		}
	}
	return out
}

// TargetsBy returns the self-consistent ally and adversary targets of one claimant.
func (r Regime) TargetsBy(claimant int) (allies, adversaries []int) {
	return resolvedTargets(r.Claims, claimant)
}

// IsClaimant reports whether the player has claimed to be an informant.
func (r Regime) IsClaimant(id int) bool {
	return containsSorted(r.Claimants, id)
}

// IsProtected reports whether any claimant called the player good.
func (r Regime) IsProtected(id int) bool {
	return containsSorted(r.ProtectedTargets, id)
}

// IsSuspect reports whether any claimant called the player a werewolf.
func (r Regime) IsSuspect(id int) bool {
	return containsSorted(r.SuspectTargets, id)
}

func resolvedTargets(claims []Claim, claimant int) (allies, adversaries []int) {
	said := make(map[int]map[Alignment]bool)
	for _, c := range claims {
		if c.Claimant != claimant {
			continue
		}
		if said[c.Target] == nil {
			said[c.Target] = make(map[Alignment]bool)
		}
		said[c.Target][c.Alignment] = true
	}
	for target, as := range said {
		if as[AlignmentAlly] && as[AlignmentAdversary] {
			continue
		}
		if as[AlignmentAlly] {
			allies = append(allies, target)
		} else {
			adversaries = append(adversaries, target)
		}
	}
	sort.Ints(allies)
	sort.Ints(adversaries)
	return allies, adversaries
}

func dedupClaims(claims []Claim) []Claim {
	out := make([]Claim, 0, len(claims))
	seen := make(map[Claim]bool, len(claims))
	for _, c := range claims {
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Claimant != out[j].Claimant {
			return out[i].Claimant < out[j].Claimant
		}
		if out[i].Target != out[j].Target {
			return out[i].Target < out[j].Target
		}
		return out[i].Alignment < out[j].Alignment
	})
	return out
}

func uniqueSorted(ids []int) []int {
	out := []int{}
	for _, id := range ids {
		out = insertSorted(out, id)
	}
	return out
}

func insertSorted(ids []int, id int) []int {
	i := sort.SearchInts(ids, id)
	if i < len(ids) && ids[i] == id {
		return ids
	}
	ids = append(ids, 0)
	copy(ids[i+1:], ids[i:])
	ids[i] = id
	return ids
}

func containsSorted(ids []int, id int) bool {
	i := sort.SearchInts(ids, id)
	return i < len(ids) && ids[i] == id
}
