// Package models holds the service-level player representation shared
// by the match orchestrator and the websocket transport.
package models

import (
	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/atariryuma/lever-master/engine"
)

// Player is one seat at a match. Human seats carry a live websocket
// connection; CPU seats never do.
type Player struct {
	ID        uuid.UUID
	Name      string
	Seat      engine.Player
	Human     bool
	Connected bool
	Conn      *websocket.Conn
}
