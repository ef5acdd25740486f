package cognition

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/MRamiBalles/werewolf-agent/internal/agent/perception"
	"github.com/MRamiBalles/werewolf-agent/internal/domain/game"
)

func alive(ids ...int) []game.Player {
	out := make([]game.Player, len(ids))
	for i, id := range ids {
		out[i] = game.Player{ID: id, IsAlive: true}
	}
	return out
}

func ctxWith(speeches ...game.SpeechRecord) *game.RoleContext {
	return &game.RoleContext{
		Round:        1,
		Phase:        game.PhaseDay,
		AlivePlayers: alive(1, 2, 3, 4, 5),
		AllSpeeches:  map[int][]game.SpeechRecord{1: speeches},
		AllVotes:     map[int][]game.VoteRecord{},
	}
}

func say(id int, content string) game.SpeechRecord {
	return game.SpeechRecord{PlayerID: id, Content: content, Type: game.SpeechPlayer}
}

func input(self int, role game.RoleKind, rc *game.RoleContext) Input {
	return Input{Self: self, Role: role, Context: rc, Regime: perception.Analyze(rc)}
}

func TestVoteFollowsSingleInformant(t *testing.T) {
	in := input(1, game.RoleVillager, ctxWith(say(2, "我是预言家，3号是狼人")))
	if in.Regime.Phase != perception.PhaseSingle || in.Regime.SelectedInformant != 2 {
		t.Fatalf("unexpected regime: %+v", in.Regime)
	}

	d := NewVoter(NewPicker(1), nil).Vote(in)
	if d.Kind != ActionVote || d.Target != 3 {
		t.Errorf("vote = %+v, want target 3", d)
	}
}

func TestVoteNeverHitsProtectedUnderSingleInformant(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 200; i++ {
		informant := 1 + rng.Intn(6)
		good := 1 + rng.Intn(6)
		rc := ctxWith(say(informant, "我是预言家，验了"+itoa(good)+"号是好人"))
		rc.AlivePlayers = alive(1, 2, 3, 4, 5, 6)
		self := 1 + rng.Intn(6)
		in := input(self, game.RoleVillager, rc)
		if in.Regime.Phase != perception.PhaseSingle {
			t.Fatalf("expected single phase for %q", rc.AllSpeeches[1][0].Content)
		}

		d := NewVoter(NewPicker(int64(i+1)), nil).Vote(in)
		if in.Regime.IsProtected(d.Target) {
			t.Fatalf("voted protected player %d (informant %d, self %d)", d.Target, informant, self)
		}
		if d.Target == self {
			t.Fatalf("voted self")
		}
	}
}

func TestVoteResolvesConflictFromOwnKnowledge(t *testing.T) {
	// Player 2 calls us a wolf; we know we are good, so player 3 is believed.
	rc := ctxWith(
		say(2, "我是预言家，5号是狼人"),
		say(3, "我才是预言家，4号是狼人，5号金水"),
	)
	in := input(5, game.RoleVillager, rc)
	if in.Regime.Phase != perception.PhaseConflict {
		t.Fatalf("phase = %s", in.Regime.Phase)
	}

	d := NewVoter(NewPicker(3), nil).Vote(in)
	if d.Target != 4 {
		t.Errorf("vote = %+v, want 4", d)
	}
}

func TestVoteUnresolvedConflictUsesSuspicion(t *testing.T) {
	rc := ctxWith(
		say(2, "我是预言家，4号是狼人"),
		say(3, "我是预言家，4号是好人"),
	)
	rc.Suspicion = map[int]float64{5: 0.9, 4: 0.1}
	in := input(1, game.RoleVillager, rc)

	d := NewVoter(NewPicker(3), nil).Vote(in)
	if d.Target != 5 {
		t.Errorf("vote = %+v, want highest suspicion 5", d)
	}
}

func TestVotePluggableSideSelector(t *testing.T) {
	rc := ctxWith(
		say(2, "我是预言家，4号是狼人"),
		say(3, "我是预言家，5号是狼人"),
	)
	pickThree := SideSelectorFunc(func(perception.Regime, Knowledge) (int, bool) { return 3, true })
	d := NewVoter(NewPicker(9), pickThree).Vote(input(1, game.RoleVillager, rc))
	if d.Target != 5 {
		t.Errorf("vote = %+v, want 5 from selected side", d)
	}
}

func TestVoteEmptyPool(t *testing.T) {
	rc := ctxWith()
	rc.AlivePlayers = alive(1)
	d := NewVoter(NewPicker(1), nil).Vote(input(1, game.RoleVillager, rc))
	if !d.IsNoop() {
		t.Errorf("expected no-op vote, got %+v", d)
	}
}

func TestSeerVotesOwnWolf(t *testing.T) {
	rc := ctxWith()
	rc.InvestigatedPlayers = map[int]game.Investigation{1: {Target: 4, IsGood: false}}
	d := NewVoter(NewPicker(1), nil).Vote(input(1, game.RoleSeer, rc))
	if d.Target != 4 {
		t.Errorf("seer vote = %+v, want 4", d)
	}
}

func TestWerewolfKill(t *testing.T) {
	for seed := int64(1); seed <= 50; seed++ {
		in := input(1, game.RoleWerewolf, ctxWith())
		in.Teammates = []int{2}
		plan, err := (&WerewolfPolicy{picker: NewPicker(seed)}).Night(in)
		if err != nil {
			t.Fatal(err)
		}
		if plan.Main.Kind != ActionKill {
			t.Fatalf("kind = %s", plan.Main.Kind)
		}
		if tgt := plan.Main.Target; tgt < 3 || tgt > 5 {
			t.Fatalf("seed %d: target %d not in {3,4,5}", seed, tgt)
		}
	}
}

func TestWerewolfAvoidsBackedPlayers(t *testing.T) {
	rc := ctxWith(say(3, "我是预言家，4号金水"))
	for seed := int64(1); seed <= 30; seed++ {
		in := input(1, game.RoleWerewolf, rc)
		in.Teammates = []int{2}
		plan, _ := (&WerewolfPolicy{picker: NewPicker(seed)}).Night(in)
		if plan.Main.Target != 5 {
			t.Fatalf("seed %d: target %d, want 5", seed, plan.Main.Target)
		}
	}
}

func TestWerewolfEmptyPool(t *testing.T) {
	rc := ctxWith()
	rc.AlivePlayers = alive(1, 2)
	in := input(1, game.RoleWerewolf, rc)
	in.Teammates = []int{2}
	plan, err := (&WerewolfPolicy{picker: NewPicker(1)}).Night(in)
	if err != nil {
		t.Fatal(err)
	}
	if plan.Main.Kind != ActionIdle || plan.Main.Target != 0 || plan.Main.Rationale != "没有可以攻击的目标" {
		t.Errorf("plan = %+v", plan.Main)
	}
}

func TestSeerPrefersUnchecked(t *testing.T) {
	rc := ctxWith()
	rc.InvestigatedPlayers = map[int]game.Investigation{
		1: {Target: 2, IsGood: true},
		2: {Target: 3, IsGood: true},
		3: {Target: 4, IsGood: true},
	}
	for seed := int64(1); seed <= 20; seed++ {
		plan, err := (&SeerPolicy{picker: NewPicker(seed)}).Night(input(1, game.RoleSeer, rc))
		if err != nil {
			t.Fatal(err)
		}
		if plan.Main.Kind != ActionInvestigate || plan.Main.Target != 5 {
			t.Fatalf("plan = %+v, want investigate 5", plan.Main)
		}
	}
}

func TestWitchSelfSave(t *testing.T) {
	rc := ctxWith()
	rc.KilledTonight = 4
	rc.PotionUsed = &game.PotionUsage{}
	in := input(4, game.RoleWitch, rc)

	plan, err := (&WitchPolicy{picker: NewPicker(1), sides: ConsistencySelector{}}).Night(in)
	if err != nil {
		t.Fatal(err)
	}
	if plan.Heal.Kind != ActionHeal || plan.Heal.Target != 4 || plan.Heal.Rationale != SelfSaveRationale {
		t.Errorf("heal = %+v", plan.Heal)
	}
	if !plan.Poison.IsNoop() {
		t.Errorf("poison without evidence should idle, got %+v", plan.Poison)
	}
}

func TestWitchUsedPotions(t *testing.T) {
	rc := ctxWith(say(2, "我是预言家，3号是狼人"))
	rc.KilledTonight = 5
	in := input(4, game.RoleWitch, rc)
	in.Potions = game.PotionUsage{Heal: true}

	plan, _ := (&WitchPolicy{picker: NewPicker(1), sides: ConsistencySelector{}}).Night(in)
	if !plan.Heal.IsNoop() {
		t.Errorf("heal after use = %+v", plan.Heal)
	}
	if plan.Poison.Kind != ActionPoison || plan.Poison.Target != 3 {
		t.Errorf("poison = %+v, want 3", plan.Poison)
	}

	in.Potions.Poison = true
	plan, _ = (&WitchPolicy{picker: NewPicker(1), sides: ConsistencySelector{}}).Night(in)
	if !plan.Poison.IsNoop() {
		t.Errorf("poison after use = %+v", plan.Poison)
	}
}

func TestBrainDispatch(t *testing.T) {
	b := NewBrain(NewPicker(1), nil)
	in := input(1, game.RoleVillager, ctxWith())

	if _, err := b.Night(in); !errors.Is(err, game.ErrNoNightAction) {
		t.Errorf("villager night error = %v", err)
	}
	in.Role = "hunter"
	if _, err := b.Vote(in); !errors.Is(err, game.ErrInvalidRole) {
		t.Errorf("unknown role error = %v", err)
	}
}

func TestSpeechPlanStances(t *testing.T) {
	b := NewBrain(NewPicker(1), nil)

	follow, _ := b.Speech(input(1, game.RoleVillager, ctxWith(say(2, "我是预言家，3号是狼人"))))
	if follow.Stance != StanceFollow || follow.Focus != 3 || follow.Informant != 2 {
		t.Errorf("villager plan = %+v", follow)
	}

	wolf := input(3, game.RoleWerewolf, ctxWith(say(2, "我是预言家，3号是狼人")))
	wolf.Teammates = []int{4}
	deflect, _ := b.Speech(wolf)
	if deflect.Stance != StanceDeflect || deflect.Informant != 2 {
		t.Errorf("werewolf plan = %+v", deflect)
	}

	seerCtx := ctxWith()
	seerCtx.InvestigatedPlayers = map[int]game.Investigation{1: {Target: 5, IsGood: false}}
	report, _ := b.Speech(input(1, game.RoleSeer, seerCtx))
	if report.Stance != StanceReport || len(report.Checks) != 1 || report.Focus != 5 {
		t.Errorf("seer plan = %+v", report)
	}
}

func TestHardRules(t *testing.T) {
	rc := ctxWith()
	rc.AlivePlayers = append(alive(1, 2, 3), game.Player{ID: 4, IsAlive: false})
	in := Input{Self: 1, Role: game.RoleWerewolf, Teammates: []int{2}, Context: rc}

	cases := []struct {
		d    Decision
		rule string
	}{
		{Decision{Kind: ActionKill, Target: 1}, "NO_SELF_TARGET"},
		{Decision{Kind: ActionKill, Target: 4}, "LIVING_TARGETS_ONLY"},
		{Decision{Kind: ActionKill, Target: 2}, "NO_FRIENDLY_FIRE"},
		{Decision{Kind: ActionPoison, Target: 3}, "ROLE_ABILITY"},
	}
	for _, tc := range cases {
		name, bad := Violation(in, tc.d)
		if !bad || name != tc.rule {
			t.Errorf("%+v: violation = %q %v, want %s", tc.d, name, bad, tc.rule)
		}
	}
	if _, bad := Violation(in, Decision{Kind: ActionKill, Target: 3}); bad {
		t.Error("valid kill rejected")
	}
	if _, bad := Violation(in, Idle("x")); bad {
		t.Error("no-op rejected")
	}
}

func itoa(n int) string {
	return string(rune('0' + n))
}

func TestRankedTiesAreUniform(t *testing.T) {
	flat := map[int]float64{2: 0.5, 3: 0.5, 4: 0.5, 5: 0.5}
	if _, ok := NewPicker(1).Ranked([]int{2, 3, 4, 5}, flat); ok {
		t.Error("equal scores should not rank")
	}

	tied := map[int]float64{2: 0.5, 3: 0.9, 4: 0.9, 5: 0.1}
	seen := make(map[int]bool)
	for seed := int64(1); seed <= 40; seed++ {
		id, ok := NewPicker(seed).Ranked([]int{2, 3, 4, 5}, tied)
		if !ok || (id != 3 && id != 4) {
			t.Fatalf("Ranked = %d, %v; want 3 or 4", id, ok)
		}
		seen[id] = true
	}
	if len(seen) != 2 {
		t.Errorf("ties always broke the same way: %v", seen)
	}

	if id, ok := NewPicker(1).Ranked([]int{2, 3}, map[int]float64{3: 0.2}); !ok || id != 3 {
		t.Errorf("partial scores = %d, %v", id, ok)
	}
}

func TestVoteEqualSuspicionSpreads(t *testing.T) {
	seen := make(map[int]int)
	for seed := int64(1); seed <= 50; seed++ {
		rc := ctxWith()
		rc.Suspicion = map[int]float64{1: 0.5, 2: 0.5, 3: 0.5, 4: 0.5, 5: 0.5}
		d := NewVoter(NewPicker(seed), nil).Vote(input(1, game.RoleVillager, rc))
		if d.Kind != ActionVote || d.Target == 1 {
			t.Fatalf("vote = %+v", d)
		}
		seen[d.Target]++
	}
	if len(seen) < 2 {
		t.Errorf("equal suspicion always picked one seat: %v", seen)
	}
}

func TestSeerEqualSuspicionSpreads(t *testing.T) {
	seen := make(map[int]bool)
	for seed := int64(1); seed <= 50; seed++ {
		rc := ctxWith()
		rc.InvestigatedPlayers = map[int]game.Investigation{}
		rc.Suspicion = map[int]float64{2: 0.5, 3: 0.5, 4: 0.5, 5: 0.5}
		plan, err := (&SeerPolicy{picker: NewPicker(seed)}).Night(input(1, game.RoleSeer, rc))
		if err != nil {
			t.Fatal(err)
		}
		seen[plan.Main.Target] = true
	}
	if len(seen) < 2 {
		t.Errorf("seer always checked the same seat: %v", seen)
	}
}
