package engine

import (
	"errors"
	"testing"
)

// judgeAfterPass drives the current actor through hang-at-pos and pass,
// leaving the session in the judge phase.
func judgeAfterPass(t *testing.T, s *Session, pos int8) {
	t.Helper()
	if s.Phase == PhaseHang {
		if err := s.Hang(pos); err != nil {
			t.Fatalf("Hang(%d) failed: %v", pos, err)
		}
	}
	if err := s.Pass(); err != nil {
		t.Fatalf("Pass failed: %v", err)
	}
}

func TestJudgeBalancedAdvancesTurn(t *testing.T) {
	s := newTestSession(t)
	// Hang at -2 and move the neutral from 3 out to 5: left 30+20=50,
	// right 50, still balanced.
	if err := s.Hang(-2); err != nil {
		t.Fatalf("Hang failed: %v", err)
	}
	if err := s.Move(3, 0, 5); err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	r, err := s.ResolveJudge()
	if err != nil {
		t.Fatalf("ResolveJudge failed: %v", err)
	}
	if !r.Balanced {
		t.Fatalf("expected balanced judge, moment %+v", r.Moment)
	}
	if r.Eliminated != -1 || r.Over {
		t.Fatalf("balanced judge should not eliminate or end: %+v", r)
	}
	if s.Turn != Yellow || r.NextTurn != Yellow {
		t.Fatalf("expected yellow next, got %s", s.Turn)
	}
	if s.Phase != PhaseHang {
		t.Fatalf("expected hang phase for next actor, got %s", s.Phase)
	}
	if s.Judging {
		t.Fatal("judging guard not cleared")
	}
}

func TestJudgeEliminatesUnbalancer(t *testing.T) {
	// Board {-3:[neutral], 3:[neutral], -6:[blue]} with blue judging:
	// diff = 90-30 = 60, blue is eliminated.
	s := newTestSession(t)
	if err := s.Hang(-6); err != nil {
		t.Fatalf("Hang failed: %v", err)
	}
	if err := s.Pass(); err != nil {
		t.Fatalf("Pass failed: %v", err)
	}
	r, err := s.ResolveJudge()
	if err != nil {
		t.Fatalf("ResolveJudge failed: %v", err)
	}
	if r.Balanced {
		t.Fatal("expected unbalanced judge")
	}
	if r.Eliminated != int8(Blue) {
		t.Fatalf("expected blue eliminated, got %d", r.Eliminated)
	}
	if !s.Players[Blue].Eliminated {
		t.Fatal("blue not flagged eliminated")
	}
	if r.Over {
		t.Fatal("three players remain, game should continue")
	}
	if s.Turn != Yellow {
		t.Fatalf("expected yellow next, got %s", s.Turn)
	}
}

func TestJudgeGuardRejectsDuplicates(t *testing.T) {
	s := newTestSession(t)
	judgeAfterPass(t, &s, -6)
	if _, err := s.ResolveJudge(); err != nil {
		t.Fatalf("first resolution failed: %v", err)
	}
	if _, err := s.ResolveJudge(); !errors.Is(err, ErrStale) {
		t.Fatalf("duplicate resolution: expected ErrStale, got %v", err)
	}
	// Only one elimination happened.
	if len(s.ActivePlayers()) != 3 {
		t.Fatalf("expected 3 active players, got %d", len(s.ActivePlayers()))
	}
}

func TestJudgeStaleAfterGameOver(t *testing.T) {
	s := newTestSession(t)
	judgeAfterPass(t, &s, -6)
	s.Flags |= FlagGameOver
	if _, err := s.ResolveJudge(); !errors.Is(err, ErrStale) {
		t.Fatalf("expected ErrStale after game over, got %v", err)
	}
	if s.Judging {
		t.Fatal("stale resolution must still clear the guard")
	}
	if s.Players[Blue].Eliminated {
		t.Fatal("stale resolution mutated player state")
	}
}

func TestRotationSkipsEliminated(t *testing.T) {
	s := newTestSession(t)
	s.Players[Yellow].Eliminated = true
	judgeAfterPass(t, &s, -2)
	// Turn was blue; the unbalanced judge eliminates blue and rotation
	// must land on red, never yellow.
	r, err := s.ResolveJudge()
	if err != nil {
		t.Fatalf("ResolveJudge failed: %v", err)
	}
	if r.Over {
		t.Fatalf("two players remain, game should continue: %+v", r)
	}
	if s.Turn != Red {
		t.Fatalf("expected red next, got %s", s.Turn)
	}
}

func TestAdvanceSkipsHangForStocklessActor(t *testing.T) {
	s := newTestSession(t)
	s.Players[Yellow].Stock = 0
	judgeAfterPass(t, &s, -2)
	if err := s.Board.PlaceWeight(2, Blue.Owner(), s.Rules.MaxStack); err != nil {
		t.Fatalf("PlaceWeight failed: %v", err)
	}
	if _, err := s.ResolveJudge(); err != nil {
		t.Fatalf("ResolveJudge failed: %v", err)
	}
	if s.Turn != Yellow {
		t.Fatalf("expected yellow next, got %s", s.Turn)
	}
	if s.Phase != PhaseMove {
		t.Fatalf("stockless actor should skip to move phase, got %s", s.Phase)
	}
}

func TestAdvanceClearsPerTurnState(t *testing.T) {
	s := newTestSession(t)
	if err := s.Hang(-2); err != nil {
		t.Fatalf("Hang failed: %v", err)
	}
	if err := s.Move(3, 0, 5); err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	if _, err := s.ResolveJudge(); err != nil {
		t.Fatalf("ResolveJudge failed: %v", err)
	}
	if s.HungPos != 0 || s.HungOwner != Neutral {
		t.Fatalf("hung record not reset: pos %d owner %v", s.HungPos, s.HungOwner)
	}
	if w, _ := s.Board.WeightAt(-2, 0); w.PlacedThisTurn {
		t.Fatal("placed flag not cleared on turn switch")
	}
}

func TestSurvivorWin(t *testing.T) {
	s := newTestSession(t)
	s.Players[Red].Eliminated = true
	s.Players[Green].Eliminated = true
	judgeAfterPass(t, &s, -6)
	r, err := s.ResolveJudge()
	if err != nil {
		t.Fatalf("ResolveJudge failed: %v", err)
	}
	if !r.Over || r.Outcome != OutcomeSurvivor {
		t.Fatalf("expected survivor outcome, got %+v", r)
	}
	if r.Winner != int8(Yellow) {
		t.Fatalf("expected yellow to win, got %d", r.Winner)
	}
	if !s.IsGameOver() || s.Outcome != OutcomeSurvivor {
		t.Fatal("session not terminal")
	}
}

func TestAllOut(t *testing.T) {
	s := newTestSession(t)
	s.Players[Yellow].Eliminated = true
	s.Players[Red].Eliminated = true
	s.Players[Green].Eliminated = true
	judgeAfterPass(t, &s, -6)
	r, err := s.ResolveJudge()
	if err != nil {
		t.Fatalf("ResolveJudge failed: %v", err)
	}
	if !r.Over || r.Outcome != OutcomeAllOut {
		t.Fatalf("expected all_out outcome, got %+v", r)
	}
	if r.Winner != -1 {
		t.Fatalf("all_out should have no winner, got %d", r.Winner)
	}
}

func TestDrawOnExhaustedStockPointsWinner(t *testing.T) {
	s := newTestSession(t)
	for p := range s.Players {
		s.Players[p].Stock = 0
	}
	// Yellow at -5 (50 pts), blue at 2 (20), green at 3 (30). Moments:
	// left 30+50=80, right 30+20+30=80, balanced with a unique leader.
	s.Board.PlaceWeight(-5, Yellow.Owner(), s.Rules.MaxStack)
	s.Board.PlaceWeight(2, Blue.Owner(), s.Rules.MaxStack)
	s.Board.PlaceWeight(3, Green.Owner(), s.Rules.MaxStack)
	s.Board.ClearPlacedFlags()
	s.Phase = PhaseMove
	if err := s.Pass(); err != nil {
		t.Fatalf("Pass failed: %v", err)
	}
	r, err := s.ResolveJudge()
	if err != nil {
		t.Fatalf("ResolveJudge failed: %v", err)
	}
	if !r.Balanced {
		t.Fatalf("board should be balanced, moment %+v", r.Moment)
	}
	if !r.Over || r.Outcome != OutcomePoints {
		t.Fatalf("expected points outcome, got %+v", r)
	}
	if r.Winner != int8(Yellow) {
		t.Fatalf("expected yellow to win on points, got %d", r.Winner)
	}
}

func TestDrawOnTiedPoints(t *testing.T) {
	s := newTestSession(t)
	for p := range s.Players {
		s.Players[p].Stock = 0
	}
	// Blue and yellow tie at 40, red and green at 0. Left: 30+40=70,
	// right: 30+40=70, balanced.
	s.Board.PlaceWeight(-4, Blue.Owner(), s.Rules.MaxStack)
	s.Board.PlaceWeight(4, Yellow.Owner(), s.Rules.MaxStack)
	s.Board.ClearPlacedFlags()
	s.Phase = PhaseMove
	if err := s.Pass(); err != nil {
		t.Fatalf("Pass failed: %v", err)
	}
	r, err := s.ResolveJudge()
	if err != nil {
		t.Fatalf("ResolveJudge failed: %v", err)
	}
	if !r.Over || r.Outcome != OutcomeDraw {
		t.Fatalf("expected full draw, got %+v", r)
	}
	if r.Winner != -1 {
		t.Fatalf("full draw should have no winner, got %d", r.Winner)
	}
}

func TestDrawOnMaxTurns(t *testing.T) {
	s := newTestSession(t)
	s.TurnCount = s.MaxTurns() - 1
	if err := s.Hang(-2); err != nil {
		t.Fatalf("Hang failed: %v", err)
	}
	if err := s.Move(3, 0, 5); err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	r, err := s.ResolveJudge()
	if err != nil {
		t.Fatalf("ResolveJudge failed: %v", err)
	}
	if !r.Over {
		t.Fatalf("expected game end at max turns, got %+v", r)
	}
	if r.Outcome != OutcomePoints && r.Outcome != OutcomeDraw {
		t.Fatalf("expected a draw resolution outcome, got %s", r.Outcome)
	}
}

func TestResultPayload(t *testing.T) {
	s := newTestSession(t)
	s.Players[Red].Eliminated = true
	s.Players[Green].Eliminated = true
	judgeAfterPass(t, &s, -6)
	if _, err := s.ResolveJudge(); err != nil {
		t.Fatalf("ResolveJudge failed: %v", err)
	}
	res := s.Result()
	if res.Outcome != OutcomeSurvivor || res.Winner != int8(Yellow) {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.Points[Blue] != 60 {
		t.Fatalf("blue final points: got %d, want 60", res.Points[Blue])
	}
}
