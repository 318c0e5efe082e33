package engine

import "testing"

// newTestSession returns a session with a fixed start player so tests
// are deterministic.
func newTestSession(t *testing.T) Session {
	t.Helper()
	rules := DefaultRules()
	rules.StartPlayer = 0
	return NewSession(rules, 1)
}

func TestIsValidMoveBasicRules(t *testing.T) {
	s := newTestSession(t)
	cases := []struct {
		from, to int8
		want     bool
		name     string
	}{
		{-4, -4, false, "same position"},
		{-4, -3, false, "adjacent left side"},
		{2, 3, false, "adjacent right side"},
		{-1, 1, false, "innermost crossing"},
		{1, -1, false, "innermost crossing reversed"},
		{-2, 2, true, "distance 4 crossing is legal"},
		{-4, -2, true, "distance 2 same side"},
		{-1, 2, true, "inner to outer across fulcrum"},
		{0, 3, false, "fulcrum source"},
		{3, 0, false, "fulcrum target"},
		{6, 8, false, "target off the beam"},
	}
	for _, tc := range cases {
		if got := s.IsValidMove(tc.from, tc.to, 1); got != tc.want {
			t.Errorf("%s: IsValidMove(%d, %d, 1) = %v, want %v", tc.name, tc.from, tc.to, got, tc.want)
		}
	}
}

func TestIsValidMoveFreezesHungPosition(t *testing.T) {
	s := newTestSession(t)
	if err := s.Hang(-4); err != nil {
		t.Fatalf("Hang failed: %v", err)
	}
	if s.IsValidMove(-4, -2, 1) {
		t.Error("moving from the hung position should be illegal")
	}
	if !s.IsValidMove(-2, -4, 1) {
		t.Error("moving into the hung position should stay legal")
	}

	// Redo and re-hang elsewhere resets the freeze.
	if err := s.RedoHang(); err != nil {
		t.Fatalf("RedoHang failed: %v", err)
	}
	if err := s.Hang(2); err != nil {
		t.Fatalf("re-hang failed: %v", err)
	}
	if s.IsValidMove(2, 4, 1) {
		t.Error("new hung position should be frozen")
	}
	if !s.IsValidMove(-3, -5, 1) {
		t.Error("old hung position should no longer be frozen")
	}
}

func TestIsValidMoveCapacity(t *testing.T) {
	s := newTestSession(t)
	for s.Board.StackLen(4) < s.Rules.MaxStack {
		if err := s.Board.PlaceWeight(4, Green.Owner(), s.Rules.MaxStack); err != nil {
			t.Fatalf("fill failed: %v", err)
		}
	}
	if s.IsValidMove(-3, 4, 1) {
		t.Error("move into full stack should be illegal")
	}
	for s.Board.StackLen(6) < s.Rules.MaxStack-1 {
		s.Board.PlaceWeight(6, Green.Owner(), s.Rules.MaxStack)
	}
	if !s.IsValidMove(-3, 6, 1) {
		t.Error("move into stack with one free slot should be legal")
	}
	if s.IsValidMove(-3, 6, 2) {
		t.Error("two-weight chain should not fit a single free slot")
	}
}

func TestHasAnyValidMove(t *testing.T) {
	s := newTestSession(t)
	// Initial board: neutral weights at -3 and 3, plenty of targets.
	if !s.HasAnyValidMove() {
		t.Fatal("expected moves on the initial board")
	}

	// Empty board: nothing to move.
	s.Board = Board{}
	if s.HasAnyValidMove() {
		t.Fatal("expected no moves on an empty board")
	}

	// The only occupied position frozen by this turn's hang.
	s.Board.PlaceWeight(2, Blue.Owner(), s.Rules.MaxStack)
	s.HungPos = 2
	if s.HasAnyValidMove() {
		t.Fatal("expected no moves when the only stack is frozen")
	}
}
