package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/MRamiBalles/werewolf-agent/internal/agent"
	"github.com/MRamiBalles/werewolf-agent/internal/agent/action"
	"github.com/MRamiBalles/werewolf-agent/internal/agent/perception"
	"github.com/MRamiBalles/werewolf-agent/internal/domain/game"
	"github.com/MRamiBalles/werewolf-agent/internal/events"
	"github.com/MRamiBalles/werewolf-agent/internal/infra/ai"
	"github.com/MRamiBalles/werewolf-agent/internal/platform/logger"
	"github.com/MRamiBalles/werewolf-agent/internal/platform/optimization"
)

// fakeProvider replays canned completions in order.
type fakeProvider struct {
	replies []string
	errs    []error
	calls   int
}

func (f *fakeProvider) Complete(ctx context.Context, req ai.CompletionRequest) (*ai.CompletionResponse, error) {
	i := f.calls
	f.calls++
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	if i >= len(f.replies) {
		return nil, errors.New("no more replies")
	}
	return &ai.CompletionResponse{Content: f.replies[i], TotalTokens: 20, Latency: time.Millisecond}, nil
}

func (f *fakeProvider) GetUsageStats() ai.UsageStats { return ai.UsageStats{TotalRequests: f.calls} }
func (f *fakeProvider) ResetUsage()                  {}
func (f *fakeProvider) Name() string                 { return "fake" }
func (f *fakeProvider) IsAvailable() bool            { return true }

func newService(t *testing.T, p ai.LLMProvider, role game.RoleKind, teammates ...int) *PlayerService {
	t.Helper()
	s := NewPlayerService(Options{
		Provider:    p,
		Logger:      logger.Discard(),
		Tuning:      optimization.LowResourceConfig(),
		MaxAttempts: 2,
		MindOptions: []agent.Option{agent.WithSeed(5)},
	})
	if err := s.StartGame(StartGameRequest{GameID: "g1", PlayerID: 1, Role: string(role), Teammates: teammates}); err != nil {
		t.Fatalf("StartGame: %v", err)
	}
	return s
}

func table(speeches ...game.SpeechRecord) *game.RoleContext {
	return &game.RoleContext{
		Round: 1,
		Phase: game.PhaseDay,
		AlivePlayers: []game.Player{
			{ID: 1, IsAlive: true}, {ID: 2, IsAlive: true}, {ID: 3, IsAlive: true},
			{ID: 4, IsAlive: true}, {ID: 5, IsAlive: true},
		},
		AllSpeeches: map[int][]game.SpeechRecord{1: speeches},
		AllVotes:    map[int][]game.VoteRecord{},
	}
}

func TestEngineOnlyVote(t *testing.T) {
	s := newService(t, nil, game.RoleVillager)
	rc := table(game.SpeechRecord{PlayerID: 2, Content: "我是预言家，3号查杀"})

	resp, err := s.Vote(context.Background(), rc)
	if err != nil {
		t.Fatal(err)
	}
	if resp.Target != 3 {
		t.Errorf("vote = %+v", resp)
	}
	if rc.Suspicion != nil {
		t.Error("caller context was modified")
	}

	got := s.EventLog().Replay()
	if len(got) != 2 || got[1].Type != events.EventTypeVote || got[1].Target != 3 || got[1].Source != events.SourceEngine {
		t.Errorf("events = %+v", got)
	}
}

func TestLLMVoteAcceptedAndRejected(t *testing.T) {
	rc := table(game.SpeechRecord{PlayerID: 2, Content: "我是预言家，3号查杀，4号金水"})

	ok := &fakeProvider{replies: []string{`{"target": 5, "reason": "5号发言划水"}`}}
	s := newService(t, ok, game.RoleVillager)
	resp, err := s.Vote(context.Background(), rc)
	if err != nil {
		t.Fatal(err)
	}
	if resp.Target != 5 || resp.Reason != "5号发言划水" {
		t.Errorf("accepted draft = %+v", resp)
	}

	// A vote for the informant's gold water falls back to the engine.
	bad := &fakeProvider{replies: []string{`{"target": 4, "reason": "x"}`}}
	s = newService(t, bad, game.RoleVillager)
	resp, err = s.Vote(context.Background(), rc)
	if err != nil {
		t.Fatal(err)
	}
	if resp.Target != 3 {
		t.Errorf("fallback vote = %+v", resp)
	}
	last := s.EventLog().Replay()
	if src := last[len(last)-1].Source; src != events.SourceFallback {
		t.Errorf("source = %s", src)
	}
	if n := s.Metrics().Snapshot()["llm"].(map[string]interface{})["fallbacks"].(int64); n != 1 {
		t.Errorf("fallbacks = %d", n)
	}
}

func TestLLMRetry(t *testing.T) {
	p := &fakeProvider{
		errs:    []error{errors.New("timeout")},
		replies: []string{"", `{"speech": "我觉得5号的发言有些问题，大家多注意一下他的投票。"}`},
	}
	s := newService(t, p, game.RoleVillager)
	resp, err := s.Speak(context.Background(), table())
	if err != nil {
		t.Fatal(err)
	}
	if p.calls != 2 || !strings.Contains(resp.Speech, "5号") {
		t.Errorf("calls=%d speech=%q", p.calls, resp.Speech)
	}
}

func TestLLMSpeechCannotClaimInformant(t *testing.T) {
	p := &fakeProvider{replies: []string{`{"speech": "我是预言家，昨晚查验2号是狼人，大家跟我投他。"}`}}
	s := newService(t, p, game.RoleWerewolf, 2)
	resp, err := s.Speak(context.Background(), table())
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(resp.Speech, "预言家") {
		t.Errorf("draft claim leaked: %q", resp.Speech)
	}
}

func TestLLMSpeechCannotUseInformantWords(t *testing.T) {
	draft := "我觉得2号预言家说得有道理，大家可以跟着他的思路投票，先把3号投出去。"
	p := &fakeProvider{replies: []string{`{"speech": "` + draft + `"}`}}
	s := newService(t, p, game.RoleVillager)
	rc := table(game.SpeechRecord{PlayerID: 2, Content: "我是预言家，3号查杀"})

	resp, err := s.Speak(context.Background(), rc)
	if err != nil {
		t.Fatal(err)
	}
	if resp.Speech == draft || perception.HasInformantMarker(resp.Speech) {
		t.Fatalf("draft with informant vocabulary accepted: %q", resp.Speech)
	}

	// The next round must still see a single informant.
	rc.AllSpeeches[2] = []game.SpeechRecord{{PlayerID: 1, Content: resp.Speech}}
	if r := perception.Analyze(rc); r.Phase != perception.PhaseSingle || len(r.Claimants) != 1 {
		t.Errorf("regime after own speech = %+v", r)
	}
}

func TestNoInformationVotesSpread(t *testing.T) {
	seen := make(map[int]int)
	for seed := int64(1); seed <= 30; seed++ {
		s := NewPlayerService(Options{
			Logger:      logger.Discard(),
			Tuning:      optimization.LowResourceConfig(),
			MindOptions: []agent.Option{agent.WithSeed(seed)},
		})
		if err := s.StartGame(StartGameRequest{GameID: "g1", PlayerID: 1, Role: string(game.RoleVillager)}); err != nil {
			t.Fatal(err)
		}
		resp, err := s.Vote(context.Background(), table())
		if err != nil {
			t.Fatal(err)
		}
		if resp.Target == 1 {
			t.Fatalf("seed %d voted for itself", seed)
		}
		seen[resp.Target]++
	}
	if len(seen) < 2 {
		t.Errorf("votes with no information all went to one seat: %v", seen)
	}
}

func TestNightNeverUsesLLM(t *testing.T) {
	p := &fakeProvider{replies: []string{`{"target": 2}`}}
	s := newService(t, p, game.RoleWerewolf, 2)
	rc := table()
	rc.Phase = game.PhaseNight

	resp, err := s.UseAbility(context.Background(), rc)
	if err != nil {
		t.Fatal(err)
	}
	if p.calls != 0 {
		t.Errorf("LLM consulted %d times at night", p.calls)
	}
	if resp.Action != action.WireKill || resp.Target == 1 || resp.Target == 2 {
		t.Errorf("kill = %+v", resp)
	}
}

func TestErrorsAreCounted(t *testing.T) {
	s := newService(t, nil, game.RoleVillager)
	if _, err := s.UseAbility(context.Background(), table()); !errors.Is(err, game.ErrNoNightAction) {
		t.Errorf("villager night = %v", err)
	}
	bad := table()
	bad.Round = 0
	if _, err := s.Vote(context.Background(), bad); !errors.Is(err, game.ErrMalformedContext) {
		t.Errorf("round 0 = %v", err)
	}
	if err := s.StartGame(StartGameRequest{PlayerID: 1, Role: "hunter"}); !errors.Is(err, game.ErrInvalidRole) {
		t.Errorf("bad role = %v", err)
	}

	errs := s.Metrics().Snapshot()["errors"].(map[string]int64)
	if errs["no_night_action"] != 1 || errs["malformed_context"] != 1 || errs["invalid_role"] != 1 {
		t.Errorf("errors = %v", errs)
	}
}

func TestStatusAndLastWords(t *testing.T) {
	s := newService(t, &fakeProvider{}, game.RoleWitch)
	st := s.Status()
	if !st.Started || st.Role != game.RoleWitch || st.LLM != "fake" || st.Usage == nil {
		t.Errorf("status = %+v", st)
	}
	if got := s.LastWords(nil); got.Speech != action.DefaultLastWords {
		t.Errorf("last words = %q", got.Speech)
	}
	if n := s.EventLog().Len(); n != 2 {
		t.Errorf("events = %d", n)
	}
}

func TestErrorKind(t *testing.T) {
	if k := ErrorKind(&game.ContextError{Field: "round"}); k != "malformed_context" {
		t.Errorf("kind = %s", k)
	}
	if k := ErrorKind(errors.New("boom")); k != "internal" {
		t.Errorf("kind = %s", k)
	}
}
