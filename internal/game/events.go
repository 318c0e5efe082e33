package game

import (
	"github.com/google/uuid"

	"github.com/atariryuma/lever-master/engine"
)

// OnMatchEndFunc is the callback executed when a match finishes. It
// receives the match ID, the winning seat (nil on a full draw or
// all-out) and the terminal result payload.
type OnMatchEndFunc func(matchID uuid.UUID, winner *engine.Player, result engine.Result)

// MatchEventType identifies a match event broadcast to observers.
type MatchEventType string

// Event types pushed over the websocket transport.
const (
	EventGameStart        MatchEventType = "game_start"        // Match began; includes full state.
	EventPlayerTurn       MatchEventType = "game_player_turn"  // A new actor's turn started.
	EventPlayerHang       MatchEventType = "player_hang"       // Actor hung a weight.
	EventPlayerRedoHang   MatchEventType = "player_redo_hang"  // Actor took back this turn's hang.
	EventPlayerMove       MatchEventType = "player_move"       // Actor moved a chain.
	EventPlayerPass       MatchEventType = "player_pass"       // Actor passed the move.
	EventGameJudge        MatchEventType = "game_judge"        // Judge resolved; includes moment.
	EventPlayerEliminated MatchEventType = "player_eliminated" // Actor tipped the lever and is out.
	EventGameBalanced     MatchEventType = "game_balanced"     // Judge found the lever level.
	EventGameEnd          MatchEventType = "game_end"          // Match finished; includes result.
)

// EventSeat identifies a player slot within an event payload.
type EventSeat struct {
	Seat  int    `json:"seat"`
	Color string `json:"color"`
}

// MatchEvent is the standard structure for broadcasting match state
// changes and actions.
type MatchEvent struct {
	Type MatchEventType `json:"type"`
	Seat *EventSeat     `json:"seat,omitempty"` // The seat acting or affected.

	Payload map[string]interface{} `json:"payload,omitempty"`

	State *StateSnapshot `json:"state,omitempty"` // Full state for sync-bearing events.
}

func seatOf(p engine.Player) *EventSeat {
	return &EventSeat{Seat: int(p), Color: p.String()}
}
