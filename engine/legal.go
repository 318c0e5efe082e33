package engine

// IsValidMove reports whether relocating a chain of movingCount weights
// from fromPos to toPos is legal this turn:
//
//   - source and target differ, and both exist;
//   - not adjacent (|from-to| == 1): one-step shuffles are forbidden;
//   - not the -1 <-> 1 pair: crossing the fulcrum directly between the
//     innermost positions is forbidden even though its distance is 2;
//   - fromPos is not frozen by this turn's hang (moving INTO the hung
//     position stays legal);
//   - the target stack has room for the chain.
func (s *Session) IsValidMove(fromPos, toPos int8, movingCount uint8) bool {
	if !ValidPosition(fromPos) || !ValidPosition(toPos) {
		return false
	}
	if fromPos == toPos {
		return false
	}
	d := fromPos - toPos
	if d == 1 || d == -1 {
		return false
	}
	if (fromPos == -1 && toPos == 1) || (fromPos == 1 && toPos == -1) {
		return false
	}
	if s.HungPos != 0 && fromPos == s.HungPos {
		return false
	}
	if s.Board.StackLen(toPos)+movingCount > s.Rules.MaxStack {
		return false
	}
	return true
}

// HasAnyValidMove reports whether at least one legal single-weight move
// exists from any occupied, non-frozen position. Used to decide whether
// a stockless actor must be advanced straight to an enforced pass.
func (s *Session) HasAnyValidMove() bool {
	for _, from := range Positions {
		if s.Board.StackLen(from) == 0 {
			continue
		}
		if s.HungPos != 0 && from == s.HungPos {
			continue
		}
		for _, to := range Positions {
			if s.IsValidMove(from, to, 1) {
				return true
			}
		}
	}
	return false
}
