package perception

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/MRamiBalles/werewolf-agent/internal/domain/game"
)

func speech(id int, content string) game.SpeechRecord {
	return game.SpeechRecord{PlayerID: id, Content: content, Type: game.SpeechPlayer}
}

func TestExtractSingleInformant(t *testing.T) {
	ex := Extract([]game.SpeechRecord{
		speech(1, "我是好人，没什么信息"),
		speech(2, "我是预言家，3号是狼人"),
		speech(4, "我觉得2号说得对"),
	})

	if diff := cmp.Diff([]int{2}, ex.Claimants); diff != "" {
		t.Errorf("claimants mismatch (-want +got):\n%s", diff)
	}
	want := []Claim{{Claimant: 2, Target: 3, Alignment: AlignmentAdversary}}
	if diff := cmp.Diff(want, ex.Claims); diff != "" {
		t.Errorf("claims mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractIgnoresSpeechWithoutMarker(t *testing.T) {
	ex := Extract([]game.SpeechRecord{
		speech(1, "5号是狼人吧"),
		speech(2, "3号是好人"),
	})
	if len(ex.Claims) != 0 || len(ex.Claimants) != 0 {
		t.Errorf("expected nothing, got %+v", ex)
	}
}

func TestExtractSkipsSystemRecords(t *testing.T) {
	ex := Extract([]game.SpeechRecord{
		{PlayerID: 0, Content: "预言家请睁眼", Type: game.SpeechSystem},
		{PlayerID: 9, Content: "查验结果: 3号是狼人", Type: game.SpeechSystem},
	})
	if len(ex.Claimants) != 0 {
		t.Errorf("system records must not claim, got %v", ex.Claimants)
	}
}

func TestExtractAllyAndAdversary(t *testing.T) {
	ex := Extract([]game.SpeechRecord{speech(6, "我查验了，4号金水，7号查杀")})
	want := []Claim{
		{Claimant: 6, Target: 4, Alignment: AlignmentAlly},
		{Claimant: 6, Target: 7, Alignment: AlignmentAdversary},
	}
	if diff := cmp.Diff(want, ex.Claims); diff != "" {
		t.Errorf("claims mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractMatchNeverSpansANumber(t *testing.T) {
	ex := Extract([]game.SpeechRecord{speech(2, "我是预言家，第1晚验了3号是狼人")})
	want := []Claim{{Claimant: 2, Target: 3, Alignment: AlignmentAdversary}}
	if diff := cmp.Diff(want, ex.Claims); diff != "" {
		t.Errorf("claims mismatch (-want +got):\n%s", diff)
	}
}

func TestClassifyPhases(t *testing.T) {
	none := Classify(Extraction{})
	if none.Phase != PhaseNone || none.InformantCount != 0 || len(none.ProtectedTargets) != 0 || len(none.SuspectTargets) != 0 {
		t.Errorf("empty extraction: %+v", none)
	}
	if none.SelectedInformant != 0 {
		t.Error("selectedInformant must be unset without claimants")
	}

	single := Classify(Extract([]game.SpeechRecord{speech(2, "我是预言家，5号金水，6号查杀")}))
	if single.Phase != PhaseSingle || single.SelectedInformant != 2 {
		t.Errorf("single: %+v", single)
	}
	if diff := cmp.Diff([]int{5}, single.ProtectedTargets); diff != "" {
		t.Errorf("protected (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{6}, single.SuspectTargets); diff != "" {
		t.Errorf("suspect (-want +got):\n%s", diff)
	}

	conflict := Classify(Extract([]game.SpeechRecord{
		speech(2, "我是预言家，5号是狼人"),
		speech(3, "我才是预言家，5号是好人"),
	}))
	if conflict.Phase != PhaseConflict || conflict.InformantCount != 2 || conflict.SelectedInformant != 0 {
		t.Errorf("conflict: %+v", conflict)
	}
	if !conflict.IsProtected(5) || !conflict.IsSuspect(5) {
		t.Error("cross-claimant disagreement should land in both sets")
	}
}

func TestClassifySelfContradiction(t *testing.T) {
	r := Classify(Extract([]game.SpeechRecord{
		speech(2, "我是预言家，4号是好人"),
		speech(2, "我查验了，4号是狼人，5号金水"),
	}))
	if r.IsProtected(4) || r.IsSuspect(4) {
		t.Errorf("self-contradicted target must be dropped: %+v", r)
	}
	if !r.IsProtected(5) {
		t.Error("consistent claim should survive")
	}
}

func TestClassifyOrderIndependent(t *testing.T) {
	speeches := []game.SpeechRecord{
		speech(2, "我是预言家，3号是狼人"),
		speech(5, "我是预言家，3号金水，4号查杀"),
		speech(2, "我查了1号，1号是好人"),
		speech(2, "我是预言家，3号是狼人"),
	}
	want := Classify(Extract(speeches))

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		shuffled := append([]game.SpeechRecord(nil), speeches...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		if diff := cmp.Diff(want, Classify(Extract(shuffled))); diff != "" {
			t.Fatalf("classification depends on order (-want +got):\n%s", diff)
		}
	}
}

func TestProfileRanksSuspects(t *testing.T) {
	rc := &game.RoleContext{
		Round: 2,
		AlivePlayers: []game.Player{
			{ID: 1, IsAlive: true}, {ID: 2, IsAlive: true}, {ID: 3, IsAlive: true}, {ID: 4, IsAlive: true},
		},
		AllSpeeches: map[int][]game.SpeechRecord{
			1: {speech(2, "我是预言家，3号是狼人，1号金水"), speech(1, "过")},
		},
		AllVotes: map[int][]game.VoteRecord{
			1: {{VoterID: 3, TargetID: 1}},
		},
	}
	r := Analyze(rc)
	ranking := SuspicionMap(Profile(rc, r))

	if ranking[3] <= ranking[4] || ranking[1] >= ranking[4] {
		t.Errorf("unexpected ranking: %v", ranking)
	}
	for id, s := range ranking {
		if s < 0 || s > 1 {
			t.Errorf("score for %d out of range: %f", id, s)
		}
	}
}

func TestSummarizeMentionsRegime(t *testing.T) {
	rc := &game.RoleContext{Round: 1, AlivePlayers: []game.Player{{ID: 1, IsAlive: true}, {ID: 2, IsAlive: true}}}
	rc.AllSpeeches = map[int][]game.SpeechRecord{1: {speech(2, "我是预言家，1号金水")}}
	r := Analyze(rc)
	out := Summarize(rc, r, Profile(rc, r))
	for _, want := range []string{"单预言家 (2号)", "金水: 1号", "玩家 1"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}
