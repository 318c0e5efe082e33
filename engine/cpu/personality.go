// Package cpu implements the scripted opponent: a personality-driven
// heuristic search over hang and move actions, with a sabotage model
// aimed at the point leader and a deliberate-mistake model that keeps
// the opponent beatable.
package cpu

import (
	"time"

	"github.com/atariryuma/lever-master/engine"
)

// Profile parameterizes one opponent archetype.
type Profile struct {
	Name string
	// PreferInner biases hang scoring toward positions 1-2.
	PreferInner bool
	// RiskTolerance above 0.6 biases toward outer positions; at 0.8 and
	// up the profile also takes the aggressive sabotage overrides.
	RiskTolerance float64
	// MistakeRate is the per-turn chance of a deliberately weak turn.
	MistakeRate float64
	// OuterAvoidance is the chance an outer hang candidate is penalized.
	OuterAvoidance float64
	// MoveSkipRate is the chance to pass instead of executing a planned
	// move, applied only while the lever is balanced.
	MoveSkipRate float64
	// SabotageThreshold is the point gap to the leader at which sabotage
	// starts to matter.
	SabotageThreshold int
	// DefensivePriority weighs self-balance against sabotage; higher
	// means more defensive.
	DefensivePriority float64
	// ThinkingDelay is presentation pacing only; decisions ignore it.
	ThinkingDelay time.Duration
}

// The three archetypes. Values are tuned for a game that stays close
// but does not feel scripted.
var (
	// Cautious plays inner positions and almost never errs, sabotaging
	// only once the leader is far ahead.
	Cautious = Profile{
		Name:              "cautious",
		PreferInner:       true,
		RiskTolerance:     0.2,
		MistakeRate:       0.01,
		OuterAvoidance:    0.8,
		MoveSkipRate:      0.3,
		SabotageThreshold: 40,
		DefensivePriority: 0.9,
		ThinkingDelay:     time.Second,
	}

	// Balanced switches between offense and defense with the situation.
	Balanced = Profile{
		Name:              "balanced",
		RiskTolerance:     0.5,
		MistakeRate:       0.06,
		OuterAvoidance:    0.4,
		MoveSkipRate:      0.15,
		SabotageThreshold: 25,
		DefensivePriority: 0.6,
		ThinkingDelay:     800 * time.Millisecond,
	}

	// Aggressive chases outer positions and sabotages the leader over
	// the smallest gap.
	Aggressive = Profile{
		Name:              "aggressive",
		RiskTolerance:     0.8,
		MistakeRate:       0.12,
		OuterAvoidance:    0.1,
		MoveSkipRate:      0.02,
		SabotageThreshold: 5,
		DefensivePriority: 0.3,
		ThinkingDelay:     600 * time.Millisecond,
	}
)

// ProfileFor returns the fixed personality assignment for a player
// slot. Blue is conventionally the human seat; its profile only
// applies when the session configures blue as a CPU.
func ProfileFor(p engine.Player) Profile {
	switch p {
	case engine.Yellow:
		return Cautious
	case engine.Red:
		return Aggressive
	case engine.Green:
		return Balanced
	}
	return Balanced
}

// Tuning holds the shared strategy constants, independent of
// personality.
type Tuning struct {
	// SabotageGapDivisor scales how fast aggression grows past the
	// personality's sabotage threshold.
	SabotageGapDivisor int
	// RiskyRiskTolerance gates the outer-position override.
	RiskyRiskTolerance float64
	// RiskyRandomChance is how often the outer-position override fires.
	RiskyRandomChance float64
	// AttackSabotageChance is how often the pure-sabotage override fires.
	AttackSabotageChance float64
	// MistakeDiffCeiling bounds |moment diff| on mistake-turn hangs.
	MistakeDiffCeiling int
}

// DefaultTuning returns the standard strategy constants.
func DefaultTuning() Tuning {
	return Tuning{
		SabotageGapDivisor:   40,
		RiskyRiskTolerance:   0.6,
		RiskyRandomChance:    0.4,
		AttackSabotageChance: 0.5,
		MistakeDiffCeiling:   100,
	}
}

// positionScore is the personality bias for hanging at pos: cautious
// profiles reward inner positions, aggressive profiles reward outer
// ones, balanced profiles reward the mid-range.
func (p Profile) positionScore(pos int8) int {
	abs := int(pos)
	if abs < 0 {
		abs = -abs
	}
	switch {
	case p.PreferInner:
		switch {
		case abs <= 2:
			return 50
		case abs <= 3:
			return 20
		default:
			return -abs * 10
		}
	case p.RiskTolerance > 0.6:
		score := abs * 15
		if abs >= 5 {
			score += 30
		}
		return score
	default:
		if abs >= 2 && abs <= 4 {
			return 30
		}
		return 0
	}
}
