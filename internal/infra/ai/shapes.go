package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrNoJSON is returned when a completion carries no JSON object.
var ErrNoJSON = errors.New("ai: no JSON object in completion")

// SpeechDraft is the expected speech payload.
type SpeechDraft struct {
	Speech string `json:"speech"`
}

// VoteDraft is the expected vote payload.
type VoteDraft struct {
	Target int    `json:"target"`
	Reason string `json:"reason"`
}

// ParseSpeech extracts and validates a speech draft.
func ParseSpeech(content string) (SpeechDraft, error) {
	raw, err := extractObject(content)
	if err != nil {
		return SpeechDraft{}, err
	}
	var d SpeechDraft
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return SpeechDraft{}, fmt.Errorf("ai: bad speech payload: %w", err)
	}
	d.Speech = strings.TrimSpace(d.Speech)
	if d.Speech == "" {
		return SpeechDraft{}, fmt.Errorf("ai: empty speech")
	}
	return d, nil
}

// ParseVote extracts and validates a vote draft. Targets given as strings
// ("3" or "3号") are accepted.
func ParseVote(content string) (VoteDraft, error) {
	raw, err := extractObject(content)
	if err != nil {
		return VoteDraft{}, err
	}
	var loose struct {
		Target json.RawMessage `json:"target"`
		Reason string          `json:"reason"`
	}
	if err := json.Unmarshal([]byte(raw), &loose); err != nil {
		return VoteDraft{}, fmt.Errorf("ai: bad vote payload: %w", err)
	}
	target, err := coerceSeat(loose.Target)
	if err != nil {
		return VoteDraft{}, err
	}
	if target < 0 {
		return VoteDraft{}, fmt.Errorf("ai: negative vote target %d", target)
	}
	return VoteDraft{Target: target, Reason: strings.TrimSpace(loose.Reason)}, nil
}

func coerceSeat(raw json.RawMessage) (int, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, fmt.Errorf("ai: missing vote target")
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		if n != float64(int(n)) {
			return 0, fmt.Errorf("ai: fractional vote target %v", n)
		}
		return int(n), nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, fmt.Errorf("ai: vote target %s is not a seat", raw)
	}
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "号"))
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("ai: vote target %q is not a seat", s)
	}
	return v, nil
}

// extractObject returns the first balanced {...} in s. Models like to wrap
// their JSON in prose or code fences.
func extractObject(s string) (string, error) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", ErrNoJSON
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return s[start : i+1], nil
			}
		}
	}
	return "", ErrNoJSON
}
