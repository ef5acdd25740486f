package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/MRamiBalles/werewolf-agent/internal/agent/action"
)

const voteInput = `{
	"identity": {"gameId":"g1","playerId":1,"role":"villager"},
	"kind": "vote",
	"context": {
		"round": 1,
		"currentPhase": "day",
		"alivePlayers": [{"id":1,"isAlive":true},{"id":2,"isAlive":true},{"id":3,"isAlive":true}],
		"allSpeeches": {"1": [{"playerId":2,"content":"我是预言家，3号查杀"}]},
		"allVotes": {}
	}
}`

func runCmd(t *testing.T, input string) (string, error) {
	t.Helper()
	t.Setenv("STORAGE_DRIVER", "none")
	t.Setenv("AI_PROVIDER", "none")
	t.Setenv("LOG_LEVEL", "error")
	cmd := newDecideCmd()
	cmd.Flags().String("config", "", "")
	cmd.Flags().String("env-file", "testdata-missing.env", "")
	cmd.SetIn(strings.NewReader(input))
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{})
	err := cmd.Execute()
	return out.String(), err
}

func TestDecideVote(t *testing.T) {
	out, err := runCmd(t, voteInput)
	if err != nil {
		t.Fatal(err)
	}
	var resp action.VoteResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("output %q: %v", out, err)
	}
	if resp.Target != 3 {
		t.Errorf("vote = %+v", resp)
	}
}

func TestDecideErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"bad json", `{"kind":`},
		{"missing context", `{"identity":{"playerId":1,"role":"villager"},"kind":"vote"}`},
		{"unknown kind", `{"identity":{"playerId":1,"role":"villager"},"kind":"sing","context":{"round":1}}`},
		{"bad role", `{"identity":{"playerId":1,"role":"hunter"},"kind":"last-words"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := runCmd(t, tt.input); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestDecideLastWordsNeedsNoContext(t *testing.T) {
	out, err := runCmd(t, `{"identity":{"playerId":2,"role":"witch"},"kind":"last-words"}`)
	if err != nil {
		t.Fatal(err)
	}
	var resp action.SpeechResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil || resp.Speech == "" {
		t.Errorf("output %q: %v", out, err)
	}
}
