package engine

// Moment is the torque on each side of the fulcrum. Diff is Left-Right,
// so a positive Diff means the lever tips left. All values are integer
// multiples of the weight value; balance is exact equality.
type Moment struct {
	Left  int `json:"left"`
	Right int `json:"right"`
	Diff  int `json:"diff"`
}

// Balanced reports whether the lever is level.
func (m Moment) Balanced() bool { return m.Diff == 0 }

// IsBalanced reports whether two side moments are in balance.
func IsBalanced(left, right int) bool { return left == right }

// Moment computes the lever torque: for every occupied position,
// |position| x stack length x weightValue, accumulated per side.
func (b *Board) Moment(weightValue int) Moment {
	var m Moment
	for _, pos := range Positions {
		count := int(b.StackLen(pos))
		if count == 0 {
			continue
		}
		t := int(abs8(pos)) * count * weightValue
		if pos < 0 {
			m.Left += t
		} else {
			m.Right += t
		}
	}
	m.Diff = m.Left - m.Right
	return m
}

// PlayerPoints computes each player's score: |position| x weightValue
// summed over that player's weights. Neutral weights never score. Every
// slot is present in the result even when the player has no weights.
func (b *Board) PlayerPoints(weightValue int) [NumPlayers]int {
	var points [NumPlayers]int
	for _, pos := range Positions {
		st := b.stack(pos)
		for i := uint8(0); i < st.Len; i++ {
			p, ok := st.Weights[i].Owner.PlayerOf()
			if !ok {
				continue
			}
			points[p] += int(abs8(pos)) * weightValue
		}
	}
	return points
}

// RemainingStock derives owner's unplaced weight count from the board.
func (b *Board) RemainingStock(owner Owner, initialStock int) int {
	return initialStock - b.CountOwned(owner)
}

// CanStackAt reports whether another weight fits at pos. The fulcrum
// (position 0) is never stackable.
func (b *Board) CanStackAt(pos int8, maxStack uint8) bool {
	return ValidPosition(pos) && b.StackLen(pos) < maxStack
}

func abs8(v int8) int8 {
	if v < 0 {
		return -v
	}
	return v
}
