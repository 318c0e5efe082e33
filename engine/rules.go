package engine

// Rules holds configurable game rule settings.
type Rules struct {
	WeightValue       int    // moment contribution per weight per unit distance
	MaxStack          uint8  // effective stack limit, at most MaxStack
	MaxTurnsPerPlayer uint16 // draw trigger: NumPlayers * this, in turns
	StockPerPlayer    uint8  // weights each player starts with
	StartPlayer       int8   // first actor slot; -1 picks one from the seed
}

// DefaultRules returns the standard lever-master rules.
func DefaultRules() Rules {
	return Rules{
		WeightValue:       10,
		MaxStack:          6,
		MaxTurnsPerPlayer: 10,
		StockPerPlayer:    4,
		StartPlayer:       -1,
	}
}

// normalize clamps out-of-range settings to usable values.
func (r *Rules) normalize() {
	if r.WeightValue <= 0 {
		r.WeightValue = 10
	}
	if r.MaxStack == 0 || r.MaxStack > MaxStack {
		r.MaxStack = MaxStack
	}
	if r.MaxTurnsPerPlayer == 0 {
		r.MaxTurnsPerPlayer = 10
	}
	if r.StockPerPlayer == 0 {
		r.StockPerPlayer = 4
	}
	if r.StartPlayer >= NumPlayers {
		r.StartPlayer = -1
	}
}
