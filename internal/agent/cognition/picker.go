package cognition

import (
	"math/rand"
	"sort"
	"time"
)

// Picker makes the random and ranked choices policies need.
// It is not safe for concurrent use; the host serialises calls per agent.
type Picker struct {
	rng *rand.Rand
}

// NewPicker creates a picker. A zero seed uses the clock.
func NewPicker(seed int64) *Picker {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Picker{rng: rand.New(rand.NewSource(seed))}
}

// Uniform returns a random id from ids, or 0 when empty.
func (p *Picker) Uniform(ids []int) int {
	if len(ids) == 0 {
		return 0
	}
	return ids[p.rng.Intn(len(ids))]
}

// Ranked returns the id with the highest score, choosing uniformly among ties.
// ok is false when none of ids has a score, or when every id shares the same
// score and so nothing separates them.
func (p *Picker) Ranked(ids []int, scores map[int]float64) (int, bool) {
	top := topScored(ids, scores)
	if len(top) == 0 || (len(top) > 1 && len(top) == len(ids)) {
		return 0, false
	}
	return p.Uniform(top), true
}

// topScored returns the ids sharing the highest score, order kept.
func topScored(ids []int, scores map[int]float64) []int {
	var top []int
	bestScore := 0.0
	for _, id := range ids {
		s, has := scores[id]
		if !has {
			continue
		}
		switch {
		case len(top) == 0 || s > bestScore:
			top, bestScore = []int{id}, s
		case s == bestScore:
			top = append(top, id)
		}
	}
	return top
}

// Prefer picks by score when scores separate ids, otherwise uniformly.
func (p *Picker) Prefer(ids []int, scores map[int]float64) int {
	if id, ok := p.Ranked(ids, scores); ok {
		return id
	}
	return p.Uniform(ids)
}

// without returns ids minus every id in the exclusion lists, order kept.
func without(ids []int, exclude ...[]int) []int {
	drop := make(map[int]bool)
	for _, ex := range exclude {
		for _, id := range ex {
			drop[id] = true
		}
	}
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if !drop[id] {
			out = append(out, id)
		}
	}
	return out
}

func intersect(ids, set []int) []int {
	keep := make(map[int]bool, len(set))
	for _, id := range set {
		keep[id] = true
	}
	out := make([]int, 0)
	for _, id := range ids {
		if keep[id] {
			out = append(out, id)
		}
	}
	return out
}

func contains(ids []int, id int) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

// orFallback returns preferred when it is non-empty, otherwise fallback.
func orFallback(preferred, fallback []int) []int {
	if len(preferred) > 0 {
		return preferred
	}
	return fallback
}

func sortedKeysBool(m map[int]bool, want bool) []int {
	var out []int
	for id, v := range m {
		if v == want {
			out = append(out, id)
		}
	}
	sort.Ints(out)
	return out
}
