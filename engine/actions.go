package engine

import "fmt"

// Hang places one stock weight for the current actor at pos and
// advances the phase to move. Validation happens strictly before any
// mutation: a rejected hang leaves the session untouched.
func (s *Session) Hang(pos int8) error {
	if s.IsGameOver() {
		return fmt.Errorf("%w: game is over", ErrStale)
	}
	if s.Phase != PhaseHang {
		return fmt.Errorf("%w: hang during %s phase", ErrIllegalPhase, s.Phase)
	}
	if s.Players[s.Turn].Stock == 0 {
		return fmt.Errorf("%w: %s has no stock", ErrIllegalPhase, s.Turn)
	}
	if err := s.Board.PlaceWeight(pos, s.Turn.Owner(), s.Rules.MaxStack); err != nil {
		return err
	}
	s.Players[s.Turn].Stock--
	s.HungPos = pos
	s.HungOwner = s.Turn.Owner()
	s.Phase = PhaseMove
	return nil
}

// Move relocates the chain at (fromPos, idx) to toPos and enters the
// judge phase. idx selects the weight in stack order (0 = newest); the
// chain carries indices 0..idx as one rigid unit.
func (s *Session) Move(fromPos int8, idx uint8, toPos int8) error {
	if s.IsGameOver() {
		return fmt.Errorf("%w: game is over", ErrStale)
	}
	if s.Phase != PhaseMove {
		return fmt.Errorf("%w: move during %s phase", ErrIllegalPhase, s.Phase)
	}
	if idx >= s.Board.StackLen(fromPos) {
		return fmt.Errorf("%w: no weight at index %d of position %d", ErrIllegalMove, idx, fromPos)
	}
	movingCount := idx + 1
	if !s.IsValidMove(fromPos, toPos, movingCount) {
		if s.Board.StackLen(toPos)+movingCount > s.Rules.MaxStack {
			return fmt.Errorf("%w: position %d cannot take %d more weights", ErrCapacity, toPos, movingCount)
		}
		return fmt.Errorf("%w: %d -> %d", ErrIllegalMove, fromPos, toPos)
	}
	if err := s.Board.MoveChain(fromPos, idx, toPos, s.Rules.MaxStack); err != nil {
		return err
	}
	s.enterJudge()
	return nil
}

// Pass skips the move and enters the judge phase.
func (s *Session) Pass() error {
	if s.IsGameOver() {
		return fmt.Errorf("%w: game is over", ErrStale)
	}
	if s.Phase != PhaseMove {
		return fmt.Errorf("%w: pass during %s phase", ErrIllegalPhase, s.Phase)
	}
	s.enterJudge()
	return nil
}

// RedoHang undoes the weight hung this turn, returning it to stock and
// the phase to hang. Only valid while the hung weight is still on top
// of its stack, which it always is until the actor moves onto it.
func (s *Session) RedoHang() error {
	if s.IsGameOver() {
		return fmt.Errorf("%w: game is over", ErrStale)
	}
	if s.Phase != PhaseMove {
		return fmt.Errorf("%w: redo during %s phase", ErrIllegalPhase, s.Phase)
	}
	if s.HungPos == 0 {
		return fmt.Errorf("%w: nothing hung this turn", ErrIllegalMove)
	}
	if !s.Board.RemoveTopPlaced(s.HungPos) {
		return fmt.Errorf("%w: hung weight is no longer on top", ErrIllegalMove)
	}
	if p, ok := s.HungOwner.PlayerOf(); ok {
		s.Players[p].Stock++
	}
	s.HungPos = 0
	s.HungOwner = Neutral
	s.Phase = PhaseHang
	return nil
}

// enterJudge switches to the judge phase and arms the judging guard.
// Resolution is deliberately a separate step (ResolveJudge) so the
// caller controls pacing; the guard keeps a double-fired resolution
// from eliminating a player twice.
func (s *Session) enterJudge() {
	s.Phase = PhaseJudge
	s.Judging = true
}
