package cpu

import (
	"testing"

	"github.com/atariryuma/lever-master/engine"
)

func newSession(t *testing.T) engine.Session {
	t.Helper()
	rules := engine.DefaultRules()
	rules.StartPlayer = 0
	return engine.NewSession(rules, 1)
}

// exactProfile strips the randomness out of a profile so plans are
// fully determined by the search.
func exactProfile(base Profile) Profile {
	base.MistakeRate = 0
	base.OuterAvoidance = 0
	base.MoveSkipRate = 0
	return base
}

func TestPlanTurnFindsBalancedPlan(t *testing.T) {
	s := newSession(t)
	d := NewDecider(exactProfile(Balanced), DefaultTuning(), 1)
	plan := d.PlanTurn(&s, engine.Blue)

	if plan.HangPos == 0 {
		t.Fatal("actor with stock should hang")
	}
	if plan.ResultDiff != 0 {
		t.Fatalf("a balancing plan exists on the initial board, got diff %d", plan.ResultDiff)
	}

	// Apply the plan and verify the promised balance.
	if err := s.Hang(plan.HangPos); err != nil {
		t.Fatalf("Hang(%d) failed: %v", plan.HangPos, err)
	}
	if plan.Move != nil {
		if err := s.Move(plan.Move.FromPos, plan.Move.Index, plan.Move.ToPos); err != nil {
			t.Fatalf("Move failed: %v", err)
		}
	}
	if !s.Balanced() {
		t.Fatalf("plan did not balance: moment %+v", s.Moment())
	}
}

// PlanTurn runs its whole search on copies; the session it is given
// must come back bit-identical.
func TestPlanTurnDoesNotMutateSession(t *testing.T) {
	s := newSession(t)
	s.Board.PlaceWeight(-5, engine.Yellow.Owner(), s.Rules.MaxStack)
	s.Board.PlaceWeight(2, engine.Red.Owner(), s.Rules.MaxStack)
	s.Board.ClearPlacedFlags()
	before := s.Save()

	for seed := uint64(1); seed <= 10; seed++ {
		d := NewDecider(Aggressive, DefaultTuning(), seed)
		d.PlanTurn(&s, engine.Blue)
		if s != engine.Session(before) {
			t.Fatalf("seed %d: PlanTurn mutated the session", seed)
		}
	}
}

func TestMistakeHangStaysUnderCeiling(t *testing.T) {
	forced := exactProfile(Balanced)
	forced.MistakeRate = 1
	s := newSession(t)

	for seed := uint64(1); seed <= 50; seed++ {
		d := NewDecider(forced, DefaultTuning(), seed)
		plan := d.PlanTurn(&s, engine.Blue)
		if plan.HangPos == 0 {
			t.Fatalf("seed %d: mistake turn with stock should hang", seed)
		}
		if plan.Move != nil {
			t.Fatalf("seed %d: mistake hang should not plan a move", seed)
		}
		sim := s
		if err := sim.Hang(plan.HangPos); err != nil {
			t.Fatalf("seed %d: Hang(%d) failed: %v", seed, plan.HangPos, err)
		}
		diff := sim.Moment().Diff
		if diff < 0 {
			diff = -diff
		}
		if diff >= DefaultTuning().MistakeDiffCeiling {
			t.Fatalf("seed %d: mistake hang at %d left diff %d", seed, plan.HangPos, diff)
		}
	}
}

func TestSabotagePrefersLeaderWeight(t *testing.T) {
	// Yellow leads with 80 points (weights at 6 and 2). Red has no
	// stock and the lever tips right. Two balancing moves exist:
	// yellow's weight 6 -> -2 (sabotage 40) and the neutral 3 -> -5
	// (no sabotage). An aggressive red must take the sabotage line.
	s := newSession(t)
	s.Turn = engine.Red
	s.Players[engine.Red].Stock = 0
	s.Board.PlaceWeight(6, engine.Yellow.Owner(), s.Rules.MaxStack)
	s.Board.PlaceWeight(2, engine.Yellow.Owner(), s.Rules.MaxStack)
	s.Board.ClearPlacedFlags()

	d := NewDecider(exactProfile(Aggressive), DefaultTuning(), 3)
	plan := d.PlanTurn(&s, engine.Red)
	if plan.HangPos != 0 {
		t.Fatalf("stockless actor must not hang, got %d", plan.HangPos)
	}
	if plan.Move == nil {
		t.Fatal("expected a balancing move")
	}
	if plan.Move.FromPos != 6 || plan.Move.ToPos != -2 {
		t.Fatalf("expected sabotage move 6 -> -2, got %d -> %d", plan.Move.FromPos, plan.Move.ToPos)
	}
	if plan.ResultDiff != 0 {
		t.Fatalf("sabotage move should still balance, diff %d", plan.ResultDiff)
	}
}

func TestSabotageAggressionScaling(t *testing.T) {
	s := newSession(t)
	// Yellow leads by 60 points.
	s.Board.PlaceWeight(6, engine.Yellow.Owner(), s.Rules.MaxStack)
	s.Board.ClearPlacedFlags()

	cautious := NewDecider(Cautious, DefaultTuning(), 1)
	if a := cautious.sabotageAggression(&s, engine.Blue); a <= 0 {
		t.Errorf("cautious aggression above threshold: got %v, want > 0", a)
	}

	aggressive := NewDecider(Aggressive, DefaultTuning(), 1)
	if a := aggressive.sabotageAggression(&s, engine.Blue); a < 0.6 {
		t.Errorf("aggressive aggression floor: got %v, want >= 0.6", a)
	}

	// No gap: blue itself leads, so nobody else scores.
	empty := newSession(t)
	if a := cautious.sabotageAggression(&empty, engine.Blue); a != 0 {
		t.Errorf("aggression with no leader gap: got %v, want 0", a)
	}
	if a := aggressive.sabotageAggression(&empty, engine.Blue); a != 0.3 {
		t.Errorf("aggressive baseline below threshold: got %v, want 0.3", a)
	}
}

func TestShouldSkipMoveOnlyWhenBalanced(t *testing.T) {
	skip := exactProfile(Balanced)
	skip.MoveSkipRate = 1
	d := NewDecider(skip, DefaultTuning(), 1)

	s := newSession(t)
	if !d.ShouldSkipMove(&s) {
		t.Error("skip rate 1 on a balanced board should skip")
	}

	s.Board.PlaceWeight(-6, engine.Blue.Owner(), s.Rules.MaxStack)
	if d.ShouldSkipMove(&s) {
		t.Error("an unbalanced board must never skip the corrective move")
	}
}

func TestCandidateOrdering(t *testing.T) {
	mv := &MovePlan{FromPos: 6, ToPos: -2}
	cands := []candidate{
		{hangPos: 1, resultDiff: 20},
		{hangPos: 2, resultDiff: 0, sabotageBonus: 10},
		{hangPos: 3, resultDiff: 0, sabotageBonus: 30, move: mv},
		{hangPos: 4, resultDiff: 0, sabotageBonus: 30, positionBonus: 50, move: mv},
		{hangPos: 5, resultDiff: 0, sabotageBonus: 30, positionBonus: 50},
	}
	sortCandidates(cands)
	wantOrder := []int8{5, 4, 3, 2, 1}
	for i, want := range wantOrder {
		if cands[i].hangPos != want {
			t.Fatalf("position %d: got hangPos %d, want %d", i, cands[i].hangPos, want)
		}
	}
}

func TestStocklessMistakeTurn(t *testing.T) {
	forced := exactProfile(Cautious)
	forced.MistakeRate = 1
	s := newSession(t)
	s.Players[engine.Blue].Stock = 0

	sawPass, sawMove := false, false
	for seed := uint64(1); seed <= 40; seed++ {
		d := NewDecider(forced, DefaultTuning(), seed)
		plan := d.PlanTurn(&s, engine.Blue)
		if plan.HangPos != 0 {
			t.Fatalf("seed %d: stockless mistake turn hung at %d", seed, plan.HangPos)
		}
		if plan.Move == nil {
			sawPass = true
		} else {
			sawMove = true
			if !s.IsValidMove(plan.Move.FromPos, plan.Move.ToPos, plan.Move.Index+1) {
				t.Fatalf("seed %d: planned illegal move %+v", seed, plan.Move)
			}
		}
	}
	if !sawPass || !sawMove {
		t.Errorf("expected both pass and move mistakes across seeds: pass=%v move=%v", sawPass, sawMove)
	}
}
