package game

import (
	"github.com/google/uuid"

	"github.com/atariryuma/lever-master/engine"
)

// SnapshotStack is one occupied position for client rendering, owners
// newest-first to match placement order.
type SnapshotStack struct {
	Position int      `json:"position"`
	Owners   []string `json:"owners"`
}

// SnapshotSeat is one seat's public state.
type SnapshotSeat struct {
	Seat       int    `json:"seat"`
	Color      string `json:"color"`
	Name       string `json:"name"`
	Human      bool   `json:"human"`
	Stock      int    `json:"stock"`
	Points     int    `json:"points"`
	Eliminated bool   `json:"eliminated"`
	IsTurn     bool   `json:"isTurn"`
}

// StateSnapshot is the full read-only view of a match that the
// rendering layer consumes. The board holds only occupied positions.
type StateSnapshot struct {
	MatchID   uuid.UUID       `json:"matchId"`
	Started   bool            `json:"started"`
	GameOver  bool            `json:"gameOver"`
	Turn      int             `json:"turn"`
	Phase     string          `json:"phase"`
	TurnCount int             `json:"turnCount"`
	Board     []SnapshotStack `json:"board"`
	Seats     []SnapshotSeat  `json:"seats"`
	Moment    engine.Moment   `json:"moment"`
	Outcome   string          `json:"outcome,omitempty"`
	Winner    *int            `json:"winner,omitempty"`
}

// Snapshot builds the current state view. Assumes the match lock is
// held by the caller.
func (m *Match) Snapshot() *StateSnapshot {
	s := &m.Session
	snap := &StateSnapshot{
		MatchID:   m.ID,
		Started:   m.Started,
		GameOver:  s.IsGameOver(),
		Turn:      int(s.Turn),
		Phase:     s.Phase.String(),
		TurnCount: int(s.TurnCount),
		Moment:    s.Moment(),
	}

	for _, pos := range engine.Positions {
		owners := s.Board.Owners(pos)
		if owners == nil {
			continue
		}
		st := SnapshotStack{Position: int(pos), Owners: make([]string, len(owners))}
		for i, o := range owners {
			st.Owners[i] = o.String()
		}
		snap.Board = append(snap.Board, st)
	}

	points := s.PlayerPoints()
	snap.Seats = make([]SnapshotSeat, engine.NumPlayers)
	for p := engine.Player(0); p < engine.NumPlayers; p++ {
		seat := SnapshotSeat{
			Seat:       int(p),
			Color:      p.String(),
			Stock:      int(s.Players[p].Stock),
			Points:     points[p],
			Eliminated: s.Players[p].Eliminated,
			IsTurn:     s.Turn == p && !s.IsGameOver(),
		}
		if pl := m.Players[p]; pl != nil {
			seat.Name = pl.Name
			seat.Human = pl.Human
		}
		snap.Seats[p] = seat
	}

	if s.IsGameOver() {
		snap.Outcome = s.Outcome.String()
		if s.Winner >= 0 {
			w := int(s.Winner)
			snap.Winner = &w
		}
	}
	return snap
}
