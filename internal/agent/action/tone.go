package action

import (
	"strings"
	"unicode/utf8"
)

// Aggressiveness thresholds. Between them the text is left alone.
const (
	AssertiveThreshold = 0.67
	HedgingThreshold   = 0.33
	defaultMaxSwaps    = 3
)

var assertiveSwaps = map[string]string{
	"我觉得":     "我确信",
	"可能":      "一定",
	"也许":      "肯定",
	"怀疑":      "认定",
	"I think": "I'm sure",
	"maybe":   "definitely",
	"might":   "will",
}

var hedgingSwaps = map[string]string{
	"我确信":        "我觉得",
	"确信":         "觉得",
	"一定":         "可能",
	"肯定":         "也许",
	"认定":         "怀疑",
	"I'm sure":   "I think",
	"definitely": "maybe",
}

// guardWords contain a swappable word but mean something else; they are
// copied through untouched.
var guardWords = []string{"不可能", "可能性", "不一定", "一定程度", "不肯定", "不怀疑", "肯定句", "一定要"}

// Tone rewrites hedging into assertive wording or the reverse.
type Tone struct {
	Aggressiveness float64
	MaxSwaps       int
}

// NewTone creates a tone for an aggressiveness in [0,1].
func NewTone(aggressiveness float64) Tone {
	return Tone{Aggressiveness: aggressiveness, MaxSwaps: defaultMaxSwaps}
}

func (t Tone) swaps() map[string]string {
	switch {
	case t.Aggressiveness >= AssertiveThreshold:
		return assertiveSwaps
	case t.Aggressiveness <= HedgingThreshold:
		return hedgingSwaps
	}
	return nil
}

// Apply performs at most MaxSwaps whole-word substitutions.
// Words are found by longest match against the swap table and the guard
// words; Latin words also need a non-letter on both sides.
func (t Tone) Apply(text string) string {
	table := t.swaps()
	if len(table) == 0 || t.MaxSwaps <= 0 {
		return text
	}

	var sb strings.Builder
	swapped := 0
	for i := 0; i < len(text); {
		word, guard := longestWord(text[i:], table)
		switch {
		case word == "":
			_, size := utf8.DecodeRuneInString(text[i:])
			sb.WriteString(text[i : i+size])
			i += size
			continue
		case !guard && swapped < t.MaxSwaps && wordBoundary(text, i, i+len(word)):
			sb.WriteString(table[word])
			swapped++
		default:
			sb.WriteString(word)
		}
		i += len(word)
	}
	return sb.String()
}

func longestWord(s string, table map[string]string) (word string, guard bool) {
	for w := range table {
		if len(w) > len(word) && strings.HasPrefix(s, w) {
			word, guard = w, false
		}
	}
	for _, g := range guardWords {
		if len(g) > len(word) && strings.HasPrefix(s, g) {
			word, guard = g, true
		}
	}
	return word, guard
}

// wordBoundary only constrains Latin words; CJK text has no spaces.
func wordBoundary(text string, start, end int) bool {
	if !isLatinLetter(text[start]) {
		return true
	}
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:start])
		if isLatinRune(r) {
			return false
		}
	}
	if end < len(text) {
		r, _ := utf8.DecodeRuneInString(text[end:])
		if isLatinRune(r) {
			return false
		}
	}
	return true
}

func isLatinLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isLatinRune(r rune) bool {
	return r < utf8.RuneSelf && (isLatinLetter(byte(r)) || (r >= '0' && r <= '9') || r == '\'')
}
