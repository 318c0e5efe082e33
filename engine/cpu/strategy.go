package cpu

import (
	"math/rand/v2"
	"sort"

	"github.com/atariryuma/lever-master/engine"
)

// MovePlan identifies one chain move.
type MovePlan struct {
	FromPos int8
	Index   uint8
	ToPos   int8
}

// Plan is a full turn decision: an optional hang (HangPos 0 means no
// hang) followed by an optional move. ResultDiff is the simulated
// |moment diff| the plan expects after both actions.
type Plan struct {
	HangPos    int8
	Move       *MovePlan
	ResultDiff int
}

// candidate is one scored hang(+move) pair during the search.
type candidate struct {
	hangPos       int8
	move          *MovePlan
	resultDiff    int
	sabotageBonus float64
	positionBonus int
}

// moveOption is one legal chain move with its simulated outcome.
type moveOption struct {
	fromPos       int8
	index         uint8
	toPos         int8
	diff          int // |moment diff| after the move
	sabotageValue int
	leaderWeight  bool
}

// Decider plans turns for one CPU-controlled slot. It holds its own
// RNG so independent sessions stay deterministic under a fixed seed.
type Decider struct {
	profile Profile
	tuning  Tuning
	rng     *rand.Rand
}

// NewDecider builds a decider for the given profile.
func NewDecider(profile Profile, tuning Tuning, seed uint64) *Decider {
	return &Decider{
		profile: profile,
		tuning:  tuning,
		rng:     rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Profile returns the decider's personality.
func (d *Decider) Profile() Profile { return d.profile }

// PlanTurn decides the actor's turn from the current state. The
// session is never mutated: all lookahead runs on value copies.
func (d *Decider) PlanTurn(s *engine.Session, actor engine.Player) Plan {
	if d.rng.Float64() < d.profile.MistakeRate {
		return d.mistakePlan(s, actor)
	}
	return d.bestPlan(s, actor)
}

// ShouldSkipMove reports whether the planned move should be dropped in
// favor of a pass. Skipping is personality-driven but only ever
// happens while the lever is balanced; a corrective move needed to
// survive the judge is never skipped.
func (d *Decider) ShouldSkipMove(s *engine.Session) bool {
	return s.Balanced() && d.rng.Float64() < d.profile.MoveSkipRate
}

// mistakePlan deliberately plays a weak turn. With stock, it hangs at
// a random non-full position whose resulting imbalance stays under the
// mistake ceiling, with no follow-up move. Without stock, it either
// does nothing or picks a uniformly random legal move. When no
// position qualifies it falls back to the full search.
func (d *Decider) mistakePlan(s *engine.Session, actor engine.Player) Plan {
	if s.Players[actor].Stock == 0 {
		if d.rng.Float64() < 0.5 {
			return Plan{}
		}
		sim := *s
		moves := d.allMoves(&sim, actor)
		if len(moves) == 0 {
			return Plan{}
		}
		m := moves[d.rng.IntN(len(moves))]
		return Plan{
			Move:       &MovePlan{FromPos: m.fromPos, Index: m.index, ToPos: m.toPos},
			ResultDiff: m.diff,
		}
	}

	var valid []int8
	for _, pos := range engine.Positions {
		if !s.Board.CanStackAt(pos, s.Rules.MaxStack) {
			continue
		}
		sim := *s
		if sim.Board.PlaceWeight(pos, actor.Owner(), sim.Rules.MaxStack) != nil {
			continue
		}
		diff := sim.Moment().Diff
		if diff < 0 {
			diff = -diff
		}
		if diff < d.tuning.MistakeDiffCeiling {
			valid = append(valid, pos)
		}
	}
	if len(valid) == 0 {
		return d.bestPlan(s, actor)
	}
	return Plan{
		HangPos:    valid[d.rng.IntN(len(valid))],
		ResultDiff: 50,
	}
}

// bestPlan runs the personality search: every non-full hang position
// is simulated, the moves available after it are classified into
// balancing and improving, and each hang(+move) pair is scored by
// resulting imbalance, sabotage bonus and position bias.
func (d *Decider) bestPlan(s *engine.Session, actor engine.Player) Plan {
	aggression := d.sabotageAggression(s, actor)

	if s.Players[actor].Stock == 0 {
		if m, diff := d.bestMoveWithSabotage(s, actor, aggression); m != nil {
			return Plan{Move: m, ResultDiff: diff}
		}
		return Plan{}
	}

	var cands []candidate
	for _, hangPos := range engine.Positions {
		if !s.Board.CanStackAt(hangPos, s.Rules.MaxStack) {
			continue
		}
		sim := *s
		if sim.Board.PlaceWeight(hangPos, actor.Owner(), sim.Rules.MaxStack) != nil {
			continue
		}
		// The fresh hang is frozen for the rest of the turn, so the
		// move search must not offer it as a source.
		sim.HungPos = hangPos

		diffAfterHang := sim.Moment().Diff
		if diffAfterHang < 0 {
			diffAfterHang = -diffAfterHang
		}
		positionBonus := d.profile.positionScore(hangPos)

		if diffAfterHang == 0 {
			cands = append(cands, candidate{
				hangPos:       hangPos,
				positionBonus: positionBonus,
			})
		}

		moves := d.allMoves(&sim, actor)

		// Among moves that balance exactly, prefer the one hurting the
		// leader most.
		var balancing []moveOption
		for _, m := range moves {
			if m.diff == 0 {
				balancing = append(balancing, m)
			}
		}
		if len(balancing) > 0 {
			best := balancing[0]
			for _, m := range balancing[1:] {
				if sabotageWorth(m) > sabotageWorth(best) {
					best = m
				}
			}
			cands = append(cands, candidate{
				hangPos:       hangPos,
				move:          &MovePlan{FromPos: best.fromPos, Index: best.index, ToPos: best.toPos},
				sabotageBonus: float64(sabotageWorth(best)) * aggression,
				positionBonus: positionBonus,
			})
		}

		// Among moves that merely improve, trade off imbalance against
		// sabotage.
		bestScore := 0.0
		var bestImproving *moveOption
		for i, m := range moves {
			if m.diff >= diffAfterHang {
				continue
			}
			score := float64(-m.diff) + float64(sabotageWorth(m))*aggression
			if bestImproving == nil || score > bestScore {
				bestScore = score
				bestImproving = &moves[i]
			}
		}
		if bestImproving != nil {
			m := bestImproving
			cands = append(cands, candidate{
				hangPos:       hangPos,
				move:          &MovePlan{FromPos: m.fromPos, Index: m.index, ToPos: m.toPos},
				resultDiff:    m.diff,
				sabotageBonus: float64(sabotageWorth(*m)) * aggression,
				positionBonus: positionBonus,
			})
		}

		// The plain hang with no move, penalized when the personality
		// shies away from outer positions.
		outerPenalty := 0
		if abs8(hangPos) >= 4 && d.rng.Float64() < d.profile.OuterAvoidance {
			outerPenalty = 50
		}
		cands = append(cands, candidate{
			hangPos:       hangPos,
			resultDiff:    diffAfterHang + outerPenalty,
			positionBonus: positionBonus,
		})
	}

	if len(cands) == 0 {
		return Plan{}
	}

	sortCandidates(cands)

	// Risk takers sometimes gamble on an outer position that is close
	// enough to balance.
	if d.profile.RiskTolerance > d.tuning.RiskyRiskTolerance && d.rng.Float64() < d.tuning.RiskyRandomChance {
		for _, c := range cands {
			if abs8(c.hangPos) >= 4 && c.resultDiff <= 30 {
				return c.plan()
			}
		}
	}

	// Aggressive profiles on high aggression sometimes take a pure
	// sabotage line over the top-ranked candidate.
	if d.profile.RiskTolerance >= 0.8 && aggression > 0.5 && d.rng.Float64() < d.tuning.AttackSabotageChance {
		for _, c := range cands {
			if c.sabotageBonus > 20 && c.resultDiff <= 20 {
				return c.plan()
			}
		}
	}

	return cands[0].plan()
}

func (c candidate) plan() Plan {
	return Plan{HangPos: c.hangPos, Move: c.move, ResultDiff: c.resultDiff}
}

// sortCandidates orders by imbalance ascending, then sabotage bonus
// descending, then position bonus descending. On a full tie the
// no-move candidate wins; the stable sort keeps equal plans
// deterministic.
func sortCandidates(cands []candidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if a.resultDiff != b.resultDiff {
			return a.resultDiff < b.resultDiff
		}
		if a.sabotageBonus != b.sabotageBonus {
			return a.sabotageBonus > b.sabotageBonus
		}
		if a.positionBonus != b.positionBonus {
			return a.positionBonus > b.positionBonus
		}
		return a.move == nil && b.move != nil
	})
}

// bestMoveWithSabotage is the stockless line: with the lever balanced
// it only moves to sabotage the leader, otherwise it looks for a
// balancing move (sabotage-weighted) and falls back to the best
// improvement.
func (d *Decider) bestMoveWithSabotage(s *engine.Session, actor engine.Player, aggression float64) (*MovePlan, int) {
	sim := *s
	current := sim.Moment().Diff
	if current < 0 {
		current = -current
	}

	moves := d.allMoves(&sim, actor)

	if current == 0 {
		var sabotage []moveOption
		for _, m := range moves {
			if m.leaderWeight && m.sabotageValue > 0 && m.diff <= 20 {
				sabotage = append(sabotage, m)
			}
		}
		if len(sabotage) > 0 && d.rng.Float64() < aggression {
			best := sabotage[0]
			for _, m := range sabotage[1:] {
				if m.sabotageValue-m.diff > best.sabotageValue-best.diff {
					best = m
				}
			}
			return &MovePlan{FromPos: best.fromPos, Index: best.index, ToPos: best.toPos}, best.diff
		}
		return nil, 0
	}

	if len(moves) == 0 {
		return nil, 0
	}

	var balancing []moveOption
	for _, m := range moves {
		if m.diff == 0 {
			balancing = append(balancing, m)
		}
	}
	if len(balancing) > 0 {
		best := balancing[0]
		bestScore := leaderScore(best, aggression)
		for _, m := range balancing[1:] {
			if sc := leaderScore(m, aggression); sc > bestScore {
				best, bestScore = m, sc
			}
		}
		return &MovePlan{FromPos: best.fromPos, Index: best.index, ToPos: best.toPos}, best.diff
	}

	var bestImproving *moveOption
	bestScore := 0.0
	for i, m := range moves {
		if m.diff >= current {
			continue
		}
		score := float64(current-m.diff) + float64(sabotageWorth(m))*aggression
		if bestImproving == nil || score > bestScore {
			bestScore = score
			bestImproving = &moves[i]
		}
	}
	if bestImproving != nil {
		return &MovePlan{FromPos: bestImproving.fromPos, Index: bestImproving.index, ToPos: bestImproving.toPos}, bestImproving.diff
	}
	return nil, 0
}

// sabotageWorth is a move's counted sabotage value: only positive and
// only when the moved weight belongs to the leader.
func sabotageWorth(m moveOption) int {
	if m.leaderWeight && m.sabotageValue > 0 {
		return m.sabotageValue
	}
	return 0
}

func leaderScore(m moveOption, aggression float64) float64 {
	if m.leaderWeight {
		return float64(m.sabotageValue) * aggression
	}
	return 0
}

// sabotageAggression derives this turn's appetite for sabotage from
// the point gap to the leader. Below the personality threshold only
// aggressive profiles keep a baseline; above it, aggression blends the
// gap overshoot with the profile's attack weighting.
func (d *Decider) sabotageAggression(s *engine.Session, actor engine.Player) float64 {
	_, leaderPoints, ok := pointLeader(s, actor)
	if !ok {
		return 0
	}
	gap := leaderPoints - s.PlayerPoints()[actor]
	if gap < d.profile.SabotageThreshold {
		if d.profile.RiskTolerance >= 0.8 {
			return 0.3
		}
		return 0
	}
	gapFactor := float64(gap-d.profile.SabotageThreshold) / float64(d.tuning.SabotageGapDivisor)
	if gapFactor > 1 {
		gapFactor = 1
	}
	attackFactor := 1 - d.profile.DefensivePriority
	aggression := attackFactor*0.5 + gapFactor*0.5
	if d.profile.RiskTolerance >= 0.8 && aggression < 0.6 {
		aggression = 0.6
	}
	return aggression
}

// pointLeader finds the highest-scoring active player other than the
// actor. Reports false when the actor is the only one left.
func pointLeader(s *engine.Session, actor engine.Player) (engine.Player, int, bool) {
	points := s.PlayerPoints()
	best, bestPoints, found := engine.Player(0), -1, false
	for p := engine.Player(0); p < engine.NumPlayers; p++ {
		if p == actor || s.Players[p].Eliminated {
			continue
		}
		if points[p] > bestPoints {
			best, bestPoints, found = p, points[p], true
		}
	}
	return best, bestPoints, found
}

// allMoves enumerates every legal chain move on sim's board with its
// simulated imbalance and sabotage value. sim is restored after every
// probe; callers pass a scratch copy anyway.
func (d *Decider) allMoves(sim *engine.Session, actor engine.Player) []moveOption {
	leader, _, hasLeader := pointLeader(sim, actor)

	var moves []moveOption
	for _, fromPos := range engine.Positions {
		stackLen := sim.Board.StackLen(fromPos)
		for idx := uint8(0); idx < stackLen; idx++ {
			w, _ := sim.Board.WeightAt(fromPos, idx)
			for _, toPos := range engine.Positions {
				if !sim.IsValidMove(fromPos, toPos, idx+1) {
					continue
				}
				diff := simulateMove(sim, fromPos, idx, toPos)
				owner, owned := w.Owner.PlayerOf()
				moves = append(moves, moveOption{
					fromPos:       fromPos,
					index:         idx,
					toPos:         toPos,
					diff:          diff,
					sabotageValue: int(abs8(fromPos))*sim.Rules.WeightValue - int(abs8(toPos))*sim.Rules.WeightValue,
					leaderWeight:  hasLeader && owned && owner == leader,
				})
			}
		}
	}
	return moves
}

// simulateMove applies one chain move on a snapshot, measures the
// resulting |moment diff| and restores the state exactly.
func simulateMove(sim *engine.Session, fromPos int8, idx uint8, toPos int8) int {
	snap := sim.Save()
	if sim.Board.MoveChain(fromPos, idx, toPos, sim.Rules.MaxStack) != nil {
		sim.Restore(snap)
		return int(^uint(0) >> 1)
	}
	diff := sim.Moment().Diff
	sim.Restore(snap)
	if diff < 0 {
		return -diff
	}
	return diff
}

func abs8(v int8) int8 {
	if v < 0 {
		return -v
	}
	return v
}
