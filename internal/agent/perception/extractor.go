// Package perception turns the public speech history into structured knowledge.
// It reads the table, it does not decide anything.
package perception

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/MRamiBalles/werewolf-agent/internal/domain/game"
)

// Alignment is what a claim asserts about its target.
type Alignment string

const (
	AlignmentAlly      Alignment = "ally"      // checked good, "gold water"
	AlignmentAdversary Alignment = "adversary" // checked werewolf
)

// Claim is one "I checked X, X is good/bad" assertion.
type Claim struct {
	Claimant  int       `json:"claimant"`
	Target    int       `json:"target"`
	Alignment Alignment `json:"alignment"`
}

// Extraction is the raw output of a pass over the speech history.
// Claims may contain duplicates; Claimants is ordered by first appearance.
type Extraction struct {
	Claims    []Claim `json:"claims"`
	Claimants []int   `json:"claimants"`
}

// informantMarkers flag a speech as a self-declared informant report.
var informantMarkers = []string{"预言家", "我是预言", "我预言", "查验", "验人", "金水", "查杀", "我查"}

// A match never spans another player number, so "4号金水，7号查杀" yields 4 ally and 7 adversary.
var (
	allyPattern      = regexp.MustCompile(`(\d+)\D*?(金水|好人|是好)`)
	adversaryPattern = regexp.MustCompile(`(\d+)\D*?(查杀|狼人|是狼)`)
)

// HasInformantMarker reports whether a speech reads as an informant claim.
func HasInformantMarker(content string) bool {
	for _, m := range informantMarkers {
		if strings.Contains(content, m) {
			return true
		}
	}
	return false
}

// Extract scans speeches in order. It is heuristic and never fails:
// speeches without an informant marker contribute nothing.
func Extract(speeches []game.SpeechRecord) Extraction {
	var ex Extraction
	seen := make(map[int]bool)

	for _, s := range speeches {
		if s.Type == game.SpeechSystem || s.PlayerID < 1 {
			continue
		}
		if !HasInformantMarker(s.Content) {
			continue
		}
		if !seen[s.PlayerID] {
			seen[s.PlayerID] = true
			ex.Claimants = append(ex.Claimants, s.PlayerID)
		}
		ex.Claims = append(ex.Claims, matchClaims(s.PlayerID, s.Content, allyPattern, AlignmentAlly)...)
		ex.Claims = append(ex.Claims, matchClaims(s.PlayerID, s.Content, adversaryPattern, AlignmentAdversary)...)
	}
	return ex
}

func matchClaims(claimant int, content string, re *regexp.Regexp, a Alignment) []Claim {
	var out []Claim
	for _, m := range re.FindAllStringSubmatch(content, -1) {
		target, err := strconv.Atoi(m[1])
		if err != nil || target < 1 {
			continue
		}
		out = append(out, Claim{Claimant: claimant, Target: target, Alignment: a})
	}
	return out
}
