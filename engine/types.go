package engine

import "errors"

// Player identifies one of the four fixed player slots, in canonical
// turn order. The slot colors match the presentation layer's palette.
type Player uint8

const (
	Blue   Player = 0 // P1
	Yellow Player = 1 // P2
	Red    Player = 2 // P3
	Green  Player = 3 // P4
)

// NumPlayers is the fixed player allocation. A session always allocates
// four slots; mode configuration decides which are human vs CPU.
const NumPlayers = 4

func (p Player) String() string {
	switch p {
	case Blue:
		return "blue"
	case Yellow:
		return "yellow"
	case Red:
		return "red"
	case Green:
		return "green"
	}
	return "unknown"
}

// Owner is a weight owner: a Player, or the Neutral sentinel for the
// two fixed counterweights placed at game start. Neutral is not a fifth
// player: it never acts and its weights never score.
type Owner int8

const Neutral Owner = -1

// Owner returns the player as a weight owner.
func (p Player) Owner() Owner { return Owner(p) }

// PlayerOf returns the owning player and true, or false for Neutral.
func (o Owner) PlayerOf() (Player, bool) {
	if o < 0 || o >= NumPlayers {
		return 0, false
	}
	return Player(o), true
}

func (o Owner) String() string {
	if p, ok := o.PlayerOf(); ok {
		return p.String()
	}
	return "neutral"
}

// Phase is the per-turn phase: hang -> move -> judge, cyclic.
type Phase uint8

const (
	PhaseHang Phase = iota
	PhaseMove
	PhaseJudge
)

func (ph Phase) String() string {
	switch ph {
	case PhaseHang:
		return "hang"
	case PhaseMove:
		return "move"
	case PhaseJudge:
		return "judge"
	}
	return "unknown"
}

// Outcome classifies how a finished session ended.
type Outcome uint8

const (
	OutcomeNone     Outcome = iota // game still running
	OutcomeSurvivor                // exactly one active player remained
	OutcomeAllOut                  // every player eliminated, no winner
	OutcomePoints                  // draw condition, unique top scorer wins
	OutcomeDraw                    // draw condition, top score tied
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSurvivor:
		return "survivor"
	case OutcomeAllOut:
		return "all_out"
	case OutcomePoints:
		return "points"
	case OutcomeDraw:
		return "draw"
	}
	return "none"
}

// Validation errors. All are recoverable: a rejected action leaves the
// session untouched. Callers match with errors.Is.
var (
	// ErrCapacity rejects an action that would push a stack past MaxStack.
	ErrCapacity = errors.New("position at capacity")
	// ErrIllegalMove rejects a hang or move violating placement rules.
	ErrIllegalMove = errors.New("illegal move")
	// ErrIllegalPhase rejects an action attempted outside its phase.
	ErrIllegalPhase = errors.New("action not valid in current phase")
	// ErrStale marks an action or deferred resolution that arrived after
	// the game ended or after its transition was already resolved.
	// Callers should treat it as a silent no-op, not a failure.
	ErrStale = errors.New("stale action")
)
