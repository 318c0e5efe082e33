// Package game orchestrates one lever-master match: it owns the
// authoritative engine session, drives CPU turns and judge resolution
// on pacing timers, validates human commands coming in over the
// transport, and broadcasts the resulting events.
package game

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/atariryuma/lever-master/engine"
	"github.com/atariryuma/lever-master/engine/cpu"
	"github.com/atariryuma/lever-master/internal/models"
)

// Command validation errors surfaced to the transport layer.
var (
	ErrNotStarted  = errors.New("match not started")
	ErrNotYourTurn = errors.New("not your turn")
	ErrNotHuman    = errors.New("seat is not human-controlled")
)

// Pacing holds the presentation delays between automatic steps. The
// zero value disables pacing entirely, running every deferred step
// inline; tests rely on that for determinism.
type Pacing struct {
	Judge   time.Duration // delay before a judge phase resolves
	CPUMove time.Duration // delay between a CPU's hang and its move
	CPUPass time.Duration // delay between a CPU's hang and its pass
}

// DefaultPacing gives human observers time to follow automatic steps.
func DefaultPacing() Pacing {
	return Pacing{
		Judge:   time.Second,
		CPUMove: 400 * time.Millisecond,
		CPUPass: 300 * time.Millisecond,
	}
}

// Match is one running game instance. All state behind Mu; deferred
// callbacks re-check a generation counter so a timer that fires after
// Stop or after the match ended can never mutate a later state.
type Match struct {
	ID         uuid.UUID
	HumanCount int

	Session  engine.Session
	Players  [engine.NumPlayers]*models.Player
	deciders [engine.NumPlayers]*cpu.Decider

	Pacing  Pacing
	Started bool

	Mu           sync.Mutex
	gen          uint64
	pendingTimer *time.Timer

	// BroadcastFn sends an event to every observer of this match.
	BroadcastFn func(ev MatchEvent)
	// OnMatchEnd runs once when the match finishes.
	OnMatchEnd OnMatchEndFunc
}

// NewMatch creates a match where the first humanCount seats in turn
// order are human and the rest are CPU-controlled. humanCount 0 is
// allowed for fully simulated matches.
func NewMatch(humanCount int, seed uint64) *Match {
	if humanCount < 0 {
		humanCount = 0
	}
	if humanCount > engine.NumPlayers {
		humanCount = engine.NumPlayers
	}

	m := &Match{
		ID:         uuid.New(),
		HumanCount: humanCount,
		Session:    engine.NewSession(engine.DefaultRules(), seed),
		Pacing:     DefaultPacing(),
	}
	for p := engine.Player(0); p < engine.NumPlayers; p++ {
		human := int(p) < humanCount
		pl := &models.Player{
			ID:    uuid.New(),
			Seat:  p,
			Human: human,
		}
		if human {
			pl.Name = "Player " + p.String()
		} else {
			profile := cpu.ProfileFor(p)
			pl.Name = "CPU " + p.String()
			m.deciders[p] = cpu.NewDecider(profile, cpu.DefaultTuning(), seed^uint64(p+1)*0x2545f4914f6cdd1d)
		}
		m.Players[p] = pl
	}
	return m
}

// Start begins the match: it announces the initial state and opens the
// first turn.
func (m *Match) Start() {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	if m.Started || m.Session.IsGameOver() {
		log.Printf("Match %s: Start called in invalid state (started=%v over=%v).", m.ID, m.Started, m.Session.IsGameOver())
		return
	}
	m.Started = true
	m.fireEvent(MatchEvent{Type: EventGameStart, State: m.Snapshot()})
	m.beginTurn()
}

// Stop cancels every outstanding deferred step. A stopped match never
// mutates again; a new match must be created to play on.
func (m *Match) Stop() {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	m.invalidatePending()
}

// invalidatePending bumps the generation and drops the armed timer.
// Assumes lock is held.
func (m *Match) invalidatePending() {
	m.gen++
	if m.pendingTimer != nil {
		m.pendingTimer.Stop()
		m.pendingTimer = nil
	}
}

// schedule arms fn to run after d under the match lock, unless the
// match generation moves on first. A non-positive delay runs inline,
// which keeps unpaced matches fully synchronous.
func (m *Match) schedule(d time.Duration, fn func()) {
	if d <= 0 {
		fn()
		return
	}
	gen := m.gen
	m.pendingTimer = time.AfterFunc(d, func() {
		m.Mu.Lock()
		defer m.Mu.Unlock()
		if m.gen != gen {
			return
		}
		fn()
	})
}

func (m *Match) paced() bool { return m.Pacing != Pacing{} }

// beginTurn announces the new actor and kicks off whatever the seat
// needs: a CPU planning pass, or an enforced pass for a stockless
// human with no legal move. Assumes lock is held.
func (m *Match) beginTurn() {
	if m.Session.IsGameOver() {
		return
	}
	actor := m.Session.Turn
	m.fireEvent(MatchEvent{
		Type: EventPlayerTurn,
		Seat: seatOf(actor),
		Payload: map[string]interface{}{
			"phase":     m.Session.Phase.String(),
			"turnCount": int(m.Session.TurnCount),
		},
	})

	if d := m.deciders[actor]; d != nil {
		think := time.Duration(0)
		if m.paced() {
			think = d.Profile().ThinkingDelay
		}
		m.schedule(think, func() { m.cpuTurn(actor) })
		return
	}

	// A human with no stock and no legal move has nothing to do; the
	// turn resolves as an enforced pass.
	if m.Session.Phase == engine.PhaseMove && !m.Session.HasAnyValidMove() {
		if err := m.Session.Pass(); err != nil {
			log.Printf("Match %s: enforced pass failed: %v", m.ID, err)
			return
		}
		m.fireEvent(MatchEvent{Type: EventPlayerPass, Seat: seatOf(actor)})
		m.scheduleJudge()
	}
}

// cpuTurn plans and executes the hang half of a CPU turn, then
// schedules the move half. Assumes lock is held.
func (m *Match) cpuTurn(actor engine.Player) {
	if m.Session.IsGameOver() || m.Session.Turn != actor {
		return
	}
	d := m.deciders[actor]
	plan := d.PlanTurn(&m.Session, actor)

	if m.Session.Phase == engine.PhaseHang {
		if plan.HangPos == 0 {
			log.Printf("Match %s: CPU %s found no hang position.", m.ID, actor)
			return
		}
		if err := m.Session.Hang(plan.HangPos); err != nil {
			log.Printf("Match %s: CPU %s hang at %d rejected: %v", m.ID, actor, plan.HangPos, err)
			return
		}
		m.fireEvent(MatchEvent{
			Type:    EventPlayerHang,
			Seat:    seatOf(actor),
			Payload: map[string]interface{}{"position": int(plan.HangPos)},
			State:   m.Snapshot(),
		})
	}

	delay := time.Duration(0)
	if m.paced() {
		if plan.Move != nil {
			delay = m.Pacing.CPUMove
		} else {
			delay = m.Pacing.CPUPass
		}
	}
	m.schedule(delay, func() { m.cpuMove(actor, plan) })
}

// cpuMove executes the move half of a CPU turn and hands off to the
// judge. The planned move may still be skipped by personality, but
// only while the lever is balanced. Assumes lock is held.
func (m *Match) cpuMove(actor engine.Player, plan cpu.Plan) {
	if m.Session.IsGameOver() || m.Session.Turn != actor {
		return
	}
	d := m.deciders[actor]

	moved := false
	if plan.Move != nil && !d.ShouldSkipMove(&m.Session) {
		mv := plan.Move
		if err := m.Session.Move(mv.FromPos, mv.Index, mv.ToPos); err != nil {
			log.Printf("Match %s: CPU %s move %d->%d rejected: %v", m.ID, actor, mv.FromPos, mv.ToPos, err)
		} else {
			moved = true
			m.fireEvent(MatchEvent{
				Type: EventPlayerMove,
				Seat: seatOf(actor),
				Payload: map[string]interface{}{
					"from":  int(mv.FromPos),
					"index": int(mv.Index),
					"to":    int(mv.ToPos),
				},
				State: m.Snapshot(),
			})
		}
	}
	if !moved {
		if err := m.Session.Pass(); err != nil {
			log.Printf("Match %s: CPU %s pass failed: %v", m.ID, actor, err)
			return
		}
		m.fireEvent(MatchEvent{Type: EventPlayerPass, Seat: seatOf(actor)})
	}
	m.scheduleJudge()
}

// scheduleJudge arms the judge resolution. Assumes lock is held.
func (m *Match) scheduleJudge() {
	delay := time.Duration(0)
	if m.paced() {
		delay = m.Pacing.Judge
	}
	m.schedule(delay, m.resolveJudge)
}

// resolveJudge runs the engine's judge step and broadcasts its
// consequences. A stale resolution is dropped silently. Assumes lock
// is held.
func (m *Match) resolveJudge() {
	actor := m.Session.Turn
	r, err := m.Session.ResolveJudge()
	if err != nil {
		if !errors.Is(err, engine.ErrStale) {
			log.Printf("Match %s: judge resolution failed: %v", m.ID, err)
		}
		return
	}

	m.fireEvent(MatchEvent{
		Type: EventGameJudge,
		Seat: seatOf(actor),
		Payload: map[string]interface{}{
			"moment":   r.Moment,
			"balanced": r.Balanced,
		},
	})

	if r.Eliminated >= 0 {
		m.fireEvent(MatchEvent{
			Type:  EventPlayerEliminated,
			Seat:  seatOf(engine.Player(r.Eliminated)),
			State: m.Snapshot(),
		})
	} else {
		m.fireEvent(MatchEvent{Type: EventGameBalanced, Seat: seatOf(actor)})
	}

	if r.Over {
		m.endMatch()
		return
	}
	m.beginTurn()
}

// endMatch broadcasts the terminal result and runs the end callback.
// Assumes lock is held.
func (m *Match) endMatch() {
	m.invalidatePending()
	result := m.Session.Result()

	m.fireEvent(MatchEvent{
		Type: EventGameEnd,
		Payload: map[string]interface{}{
			"outcome": result.Outcome.String(),
			"winner":  result.Winner,
			"moment":  result.Moment,
			"points":  result.Points,
		},
		State: m.Snapshot(),
	})

	if m.OnMatchEnd != nil {
		var winner *engine.Player
		if result.Winner >= 0 {
			w := engine.Player(result.Winner)
			winner = &w
		}
		cb := m.OnMatchEnd
		id := m.ID
		go cb(id, winner, result)
	}
}

// ---------------------------------------------------------------------------
// Human commands
// ---------------------------------------------------------------------------

// checkActor validates that seat may act right now. Assumes lock is
// held.
func (m *Match) checkActor(seat engine.Player) error {
	if !m.Started {
		return ErrNotStarted
	}
	if m.Session.IsGameOver() {
		return fmt.Errorf("%w: match is over", engine.ErrStale)
	}
	if seat >= engine.NumPlayers || m.Players[seat] == nil || !m.Players[seat].Human {
		return ErrNotHuman
	}
	if m.Session.Turn != seat {
		return ErrNotYourTurn
	}
	return nil
}

// HumanHang applies a hang command from a human seat.
func (m *Match) HumanHang(seat engine.Player, pos int8) error {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	if err := m.checkActor(seat); err != nil {
		return err
	}
	if err := m.Session.Hang(pos); err != nil {
		return err
	}
	m.fireEvent(MatchEvent{
		Type:    EventPlayerHang,
		Seat:    seatOf(seat),
		Payload: map[string]interface{}{"position": int(pos)},
		State:   m.Snapshot(),
	})
	return nil
}

// HumanMove applies a chain move command from a human seat and hands
// the turn to the judge.
func (m *Match) HumanMove(seat engine.Player, fromPos int8, idx uint8, toPos int8) error {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	if err := m.checkActor(seat); err != nil {
		return err
	}
	if err := m.Session.Move(fromPos, idx, toPos); err != nil {
		return err
	}
	m.fireEvent(MatchEvent{
		Type: EventPlayerMove,
		Seat: seatOf(seat),
		Payload: map[string]interface{}{
			"from":  int(fromPos),
			"index": int(idx),
			"to":    int(toPos),
		},
		State: m.Snapshot(),
	})
	m.scheduleJudge()
	return nil
}

// HumanPass applies an explicit pass from a human seat and hands the
// turn to the judge.
func (m *Match) HumanPass(seat engine.Player) error {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	if err := m.checkActor(seat); err != nil {
		return err
	}
	if err := m.Session.Pass(); err != nil {
		return err
	}
	m.fireEvent(MatchEvent{Type: EventPlayerPass, Seat: seatOf(seat)})
	m.scheduleJudge()
	return nil
}

// HumanRedoHang takes back the weight the human hung this turn.
func (m *Match) HumanRedoHang(seat engine.Player) error {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	if err := m.checkActor(seat); err != nil {
		return err
	}
	if err := m.Session.RedoHang(); err != nil {
		return err
	}
	m.fireEvent(MatchEvent{
		Type:  EventPlayerRedoHang,
		Seat:  seatOf(seat),
		State: m.Snapshot(),
	})
	return nil
}

// SnapshotLocked returns a state snapshot under the lock, for callers
// outside the event flow (reconnects, state polls).
func (m *Match) SnapshotLocked() *StateSnapshot {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	return m.Snapshot()
}

// fireEvent broadcasts via the callback. Assumes lock is held.
func (m *Match) fireEvent(ev MatchEvent) {
	if m.BroadcastFn != nil {
		m.BroadcastFn(ev)
		return
	}
	log.Printf("Match %s: BroadcastFn is nil, dropping event %s.", m.ID, ev.Type)
}
