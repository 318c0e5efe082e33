package engine

import "fmt"

// JudgeResult describes one resolved judge phase.
type JudgeResult struct {
	Moment     Moment
	Balanced   bool
	Eliminated int8 // eliminated slot, -1 if none
	Over       bool
	Outcome    Outcome
	Winner     int8
	NextTurn   Player // meaningful only while Over is false
}

// ResolveJudge resolves the pending judge phase: it checks balance,
// eliminates the actor on a tipped lever, applies end-of-game and draw
// conditions, and otherwise rotates the turn. The caller schedules the
// call (typically after a pacing delay); a duplicate or late invocation
// returns ErrStale without touching state.
func (s *Session) ResolveJudge() (JudgeResult, error) {
	if s.IsGameOver() {
		s.Judging = false
		return JudgeResult{}, fmt.Errorf("%w: game is over", ErrStale)
	}
	if !s.Judging || s.Phase != PhaseJudge {
		return JudgeResult{}, fmt.Errorf("%w: no judge pending", ErrStale)
	}
	s.Judging = false
	s.TurnCount++

	r := JudgeResult{
		Moment:     s.Moment(),
		Eliminated: -1,
		Winner:     -1,
	}
	r.Balanced = r.Moment.Diff == 0

	if !r.Balanced {
		s.Players[s.Turn].Eliminated = true
		r.Eliminated = int8(s.Turn)
		switch active := s.ActivePlayers(); len(active) {
		case 1:
			s.endGame(OutcomeSurvivor, int8(active[0]))
		case 0:
			s.endGame(OutcomeAllOut, -1)
		default:
			s.advanceTurn()
		}
	} else if s.stockExhausted() || s.TurnCount >= s.MaxTurns() {
		outcome, winner := s.resolveDraw()
		s.endGame(outcome, winner)
	} else {
		s.advanceTurn()
	}

	r.Over = s.IsGameOver()
	r.Outcome = s.Outcome
	r.Winner = s.Winner
	r.NextTurn = s.Turn
	return r, nil
}

// stockExhausted reports whether every active player is out of stock.
func (s *Session) stockExhausted() bool {
	for p := Player(0); p < NumPlayers; p++ {
		if !s.Players[p].Eliminated && s.Players[p].Stock > 0 {
			return false
		}
	}
	return true
}

// resolveDraw ranks the active players by points. A unique top scorer
// wins on points; a tie at the top is a full draw.
func (s *Session) resolveDraw() (Outcome, int8) {
	points := s.PlayerPoints()
	best, winner, tied := -1, int8(-1), false
	for p := Player(0); p < NumPlayers; p++ {
		if s.Players[p].Eliminated {
			continue
		}
		switch {
		case points[p] > best:
			best, winner, tied = points[p], int8(p), false
		case points[p] == best:
			tied = true
		}
	}
	if tied || winner < 0 {
		return OutcomeDraw, -1
	}
	return OutcomePoints, winner
}

// endGame finalizes the session.
func (s *Session) endGame(outcome Outcome, winner int8) {
	s.Flags |= FlagGameOver
	s.Outcome = outcome
	s.Winner = winner
	s.Judging = false
}

// advanceTurn passes the turn to the next active slot in canonical
// order and resets per-turn state. The probe is bounded so a fully
// eliminated roster cannot loop, though termination checks make that
// state unreachable. An incoming actor with no stock skips straight to
// the move phase.
func (s *Session) advanceTurn() {
	next := s.Turn
	for i := 0; i < NumPlayers; i++ {
		next = (next + 1) % NumPlayers
		if !s.Players[next].Eliminated {
			break
		}
	}
	s.Turn = next
	s.Board.ClearPlacedFlags()
	s.HungPos = 0
	s.HungOwner = Neutral
	if s.Players[next].Stock == 0 {
		s.Phase = PhaseMove
	} else {
		s.Phase = PhaseHang
	}
}

// Result is the terminal payload exposed to observers once a session
// ends.
type Result struct {
	Outcome Outcome         `json:"outcome"`
	Winner  int8            `json:"winner"`
	Moment  Moment          `json:"moment"`
	Points  [NumPlayers]int `json:"points"`
}

// Result returns the terminal payload. Valid only after the game ends;
// before that Outcome is OutcomeNone.
func (s *Session) Result() Result {
	return Result{
		Outcome: s.Outcome,
		Winner:  s.Winner,
		Moment:  s.Moment(),
		Points:  s.PlayerPoints(),
	}
}
