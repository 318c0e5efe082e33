// Package engine implements the lever-master game rules.
//
// The package is a pure state + decision substrate: it renders nothing
// and schedules nothing. A session is a flat value type so simulation
// (CPU lookahead, undo) is a plain struct copy; the service layer owns
// pacing, identity and transport.
package engine

const (
	// FlagGameOver marks a terminal session.
	FlagGameOver uint16 = 1 << 0
)

// PlayerState holds one player slot's stock and elimination flag.
type PlayerState struct {
	Stock      uint8
	Eliminated bool
}

// Session is the complete, self-contained state of one game. It is a
// flat value type (no pointers, no slices) so Save/Restore are plain
// struct copies and independent sessions never share state.
type Session struct {
	Board     Board
	Players   [NumPlayers]PlayerState
	Turn      Player
	Phase     Phase
	TurnCount uint16
	// HungPos is where the current actor hung a weight this turn, or 0
	// (the fulcrum, never a legal position) when no hang happened yet.
	// The position is frozen as a move source for the rest of the turn.
	HungPos   int8
	HungOwner Owner
	// Judging guards the judge phase against duplicate resolution. Set
	// when the phase is entered, cleared on every resolution exit path.
	Judging bool
	Flags   uint16
	Outcome Outcome
	// Winner is the winning slot for OutcomeSurvivor/OutcomePoints, -1
	// otherwise.
	Winner int8
	Rules  Rules
}

// NewSession initializes a session: neutral counterweights at ±3, full
// stock per player, hang phase. When rules.StartPlayer is negative the
// first actor is drawn from seed.
func NewSession(rules Rules, seed uint64) Session {
	rules.normalize()
	s := Session{
		Board:     NewBoard(),
		Rules:     rules,
		HungOwner: Neutral,
		Winner:    -1,
	}
	for i := range s.Players {
		s.Players[i] = PlayerState{Stock: rules.StockPerPlayer}
	}
	if rules.StartPlayer >= 0 {
		s.Turn = Player(rules.StartPlayer)
	} else {
		s.Turn = Player(xorshift64(seed) % NumPlayers)
	}
	return s
}

// xorshift64 is a tiny seed scrambler for the start-player draw.
func xorshift64(x uint64) uint64 {
	if x == 0 {
		x = 1
	}
	x ^= x << 13
	x ^= x >> 7
	x ^= x << 17
	return x
}

// IsGameOver reports whether the session is terminal.
func (s *Session) IsGameOver() bool { return s.Flags&FlagGameOver != 0 }

// ActivePlayers returns the non-eliminated slots in canonical order.
func (s *Session) ActivePlayers() []Player {
	out := make([]Player, 0, NumPlayers)
	for p := Player(0); p < NumPlayers; p++ {
		if !s.Players[p].Eliminated {
			out = append(out, p)
		}
	}
	return out
}

// Moment computes the current lever torque under the session's rules.
func (s *Session) Moment() Moment {
	return s.Board.Moment(s.Rules.WeightValue)
}

// PlayerPoints computes per-slot scores under the session's rules.
func (s *Session) PlayerPoints() [NumPlayers]int {
	return s.Board.PlayerPoints(s.Rules.WeightValue)
}

// Balanced reports whether the lever is currently level.
func (s *Session) Balanced() bool { return s.Moment().Diff == 0 }

// MaxTurns returns the turn count that triggers the draw condition.
func (s *Session) MaxTurns() uint16 {
	return NumPlayers * s.Rules.MaxTurnsPerPlayer
}

// ---------------------------------------------------------------------------
// Snapshot Undo (Save / Restore)
// ---------------------------------------------------------------------------

// Snapshot is a complete value-copy of a Session for undo and
// simulation support. Saving and restoring are plain struct copies.
type Snapshot Session

// Save returns a snapshot of the current session state.
func (s *Session) Save() Snapshot { return Snapshot(*s) }

// Restore replaces the session state with the given snapshot.
func (s *Session) Restore(sn Snapshot) { *s = Session(sn) }
