package engine

import "fmt"

const (
	// MaxStack is the hard stack limit an array slot can hold. Rules may
	// configure a lower effective limit, never a higher one.
	MaxStack = 6
	// MaxDistance is the farthest position from the fulcrum on each side.
	MaxDistance = 6
	// NumSlots is the number of board array slots, including the fulcrum
	// slot at index MaxDistance which is always empty.
	NumSlots = 2*MaxDistance + 1
)

// Positions lists every valid board position in scan order. Position 0
// is the fulcrum and never appears.
var Positions = [12]int8{-6, -5, -4, -3, -2, -1, 1, 2, 3, 4, 5, 6}

// ValidPosition reports whether pos is a weight-bearing position.
func ValidPosition(pos int8) bool {
	return pos >= -MaxDistance && pos <= MaxDistance && pos != 0
}

// Weight is a single hung weight. PlacedThisTurn is transient: set when
// the weight is hung, cleared on turn switch. It gates the redo action.
type Weight struct {
	Owner          Owner
	PlacedThisTurn bool
}

// Stack is an ordered pile of weights at one position. Index 0 is the
// newest weight (conceptually the one farthest from the beam), matching
// placement order. A stack with Len 0 is an empty position.
type Stack struct {
	Weights [MaxStack]Weight
	Len     uint8
}

// Top returns the newest weight. Only meaningful when Len > 0.
func (st *Stack) Top() Weight { return st.Weights[0] }

// Board is the full lever state: a fixed slot per position. It is a
// flat value type, so copying a Board copies everything.
type Board struct {
	Stacks [NumSlots]Stack
}

// NewBoard returns a board with the two neutral counterweights at ±3,
// the only configuration that starts the lever in balance (3x10 = 3x10).
func NewBoard() Board {
	var b Board
	b.stack(-3).Weights[0] = Weight{Owner: Neutral}
	b.stack(-3).Len = 1
	b.stack(3).Weights[0] = Weight{Owner: Neutral}
	b.stack(3).Len = 1
	return b
}

// stack returns the slot for pos. pos must be a valid position.
func (b *Board) stack(pos int8) *Stack {
	return &b.Stacks[pos+MaxDistance]
}

// StackLen returns the number of weights at pos, 0 for invalid positions.
func (b *Board) StackLen(pos int8) uint8 {
	if !ValidPosition(pos) {
		return 0
	}
	return b.stack(pos).Len
}

// WeightAt returns the weight at stack index idx (0 = newest) at pos.
func (b *Board) WeightAt(pos int8, idx uint8) (Weight, bool) {
	if !ValidPosition(pos) || idx >= b.stack(pos).Len {
		return Weight{}, false
	}
	return b.stack(pos).Weights[idx], true
}

// Owners returns the owners at pos, newest first. Returns nil for an
// empty or invalid position.
func (b *Board) Owners(pos int8) []Owner {
	n := b.StackLen(pos)
	if n == 0 {
		return nil
	}
	st := b.stack(pos)
	out := make([]Owner, n)
	for i := uint8(0); i < n; i++ {
		out[i] = st.Weights[i].Owner
	}
	return out
}

// PlaceWeight prepends a new weight for owner at pos and marks it
// placed-this-turn. Fails with ErrCapacity when the stack already holds
// maxStack weights, with ErrIllegalMove for a non-position.
func (b *Board) PlaceWeight(pos int8, owner Owner, maxStack uint8) error {
	if !ValidPosition(pos) {
		return fmt.Errorf("%w: position %d does not exist", ErrIllegalMove, pos)
	}
	st := b.stack(pos)
	if st.Len >= maxStack {
		return fmt.Errorf("%w: position %d holds %d weights", ErrCapacity, pos, st.Len)
	}
	copy(st.Weights[1:st.Len+1], st.Weights[:st.Len])
	st.Weights[0] = Weight{Owner: owner, PlacedThisTurn: true}
	st.Len++
	return nil
}

// RemoveTopPlaced removes the newest weight at pos, but only if it was
// placed this turn. Returns false otherwise, leaving the board as is.
func (b *Board) RemoveTopPlaced(pos int8) bool {
	if !ValidPosition(pos) {
		return false
	}
	st := b.stack(pos)
	if st.Len == 0 || !st.Top().PlacedThisTurn {
		return false
	}
	copy(st.Weights[:st.Len-1], st.Weights[1:st.Len])
	st.Len--
	st.Weights[st.Len] = Weight{}
	return true
}

// MoveChain relocates the weight at stack index idx at fromPos together
// with every weight above it in placement order (indices 0..idx) as one
// rigid chain onto the front of toPos's stack, preserving order. Fails
// with ErrCapacity when the combined stack would exceed maxStack.
// Legality beyond capacity (adjacency, fulcrum crossing, freeze) is the
// session's concern, not the board's.
func (b *Board) MoveChain(fromPos int8, idx uint8, toPos int8, maxStack uint8) error {
	if !ValidPosition(fromPos) || !ValidPosition(toPos) || fromPos == toPos {
		return fmt.Errorf("%w: cannot move from %d to %d", ErrIllegalMove, fromPos, toPos)
	}
	from := b.stack(fromPos)
	if idx >= from.Len {
		return fmt.Errorf("%w: no weight at index %d of position %d", ErrIllegalMove, idx, fromPos)
	}
	moving := idx + 1
	to := b.stack(toPos)
	if to.Len+moving > maxStack {
		return fmt.Errorf("%w: position %d cannot take %d more weights", ErrCapacity, toPos, moving)
	}

	var chain [MaxStack]Weight
	copy(chain[:moving], from.Weights[:moving])

	copy(from.Weights[:from.Len-moving], from.Weights[moving:from.Len])
	for i := from.Len - moving; i < from.Len; i++ {
		from.Weights[i] = Weight{}
	}
	from.Len -= moving

	copy(to.Weights[moving:to.Len+moving], to.Weights[:to.Len])
	copy(to.Weights[:moving], chain[:moving])
	to.Len += moving
	return nil
}

// ClearPlacedFlags clears every placed-this-turn flag. Called on turn
// switch so a previous turn's hang no longer gates redo or freeze.
func (b *Board) ClearPlacedFlags() {
	for i := range b.Stacks {
		st := &b.Stacks[i]
		for j := uint8(0); j < st.Len; j++ {
			st.Weights[j].PlacedThisTurn = false
		}
	}
}

// CountOwned returns the number of weights on the board owned by owner.
func (b *Board) CountOwned(owner Owner) int {
	n := 0
	for i := range b.Stacks {
		st := &b.Stacks[i]
		for j := uint8(0); j < st.Len; j++ {
			if st.Weights[j].Owner == owner {
				n++
			}
		}
	}
	return n
}
