// Package server exposes matches over websockets. One connection
// drives one match: the client starts a session with a chosen human
// count and then plays every human seat from that connection (hotseat
// style), while the server runs the CPU seats and the judge.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/atariryuma/lever-master/engine"
	"github.com/atariryuma/lever-master/internal/cache"
	"github.com/atariryuma/lever-master/internal/database"
	"github.com/atariryuma/lever-master/internal/game"
)

// Command is one inbound client message.
type Command struct {
	Action string `json:"action"` // start | hang | move | pass | redo | state
	Mode   int    `json:"mode"`   // start: number of human seats (1-4)
	Seat   int    `json:"seat"`   // acting seat for play commands
	Pos    int    `json:"pos"`    // hang position
	From   int    `json:"from"`   // move source position
	Index  int    `json:"index"`  // move stack index
	To     int    `json:"to"`     // move target position
}

// errorMessage is sent back when a command is rejected.
type errorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Server accepts websocket sessions and owns the live match set.
type Server struct {
	log      *logrus.Logger
	store    *database.Store // nil disables persistence
	registry *cache.Registry // nil disables the live registry

	mu      sync.Mutex
	matches map[uuid.UUID]*game.Match
}

// New builds a server. store and registry may be nil.
func New(log *logrus.Logger, store *database.Store, registry *cache.Registry) *Server {
	return &Server{
		log:      log,
		store:    store,
		registry: registry,
		matches:  make(map[uuid.UUID]*game.Match),
	}
}

// Routes returns the HTTP handler for the server.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/matches/recent", s.handleRecentMatches)
	mux.HandleFunc("/matches/live", s.handleLiveMatches)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

// handleRecentMatches serves the persisted match history.
func (s *Server) handleRecentMatches(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		http.Error(w, "persistence disabled", http.StatusNotImplemented)
		return
	}
	recs, err := s.store.RecentMatches(r.Context(), 20)
	if err != nil {
		s.log.WithError(err).Warn("recent matches query failed")
		http.Error(w, "query failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(recs); err != nil {
		s.log.WithError(err).Warn("recent matches encode failed")
	}
}

// handleLiveMatches serves the IDs of matches currently registered as
// live, across every server node sharing the registry.
func (s *Server) handleLiveMatches(w http.ResponseWriter, r *http.Request) {
	if s.registry == nil {
		http.Error(w, "registry disabled", http.StatusNotImplemented)
		return
	}
	ids, err := s.registry.Active(r.Context())
	if err != nil {
		s.log.WithError(err).Warn("live matches scan failed")
		http.Error(w, "scan failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(ids); err != nil {
		s.log.WithError(err).Warn("live matches encode failed")
	}
}

// handleWS upgrades the connection and runs its command loop.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.log.WithError(err).Warn("websocket accept failed")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "connection closed")

	ctx := r.Context()
	sess := &connSession{server: s, conn: conn, outbound: make(chan []byte, 64)}

	go sess.writeLoop(ctx)
	sess.readLoop(ctx)
	sess.teardown()
	conn.Close(websocket.StatusNormalClosure, "bye")
}

// connSession is the per-connection state.
type connSession struct {
	server   *Server
	conn     *websocket.Conn
	outbound chan []byte

	mu    sync.Mutex
	match *game.Match
}

// send queues a message, dropping it if the client cannot keep up.
func (cs *connSession) send(v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		cs.server.log.WithError(err).Error("marshal outbound message")
		return
	}
	select {
	case cs.outbound <- data:
	default:
		cs.server.log.Warn("outbound buffer full, dropping message")
	}
}

func (cs *connSession) writeLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case data, ok := <-cs.outbound:
			if !ok {
				return
			}
			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err := cs.conn.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				return
			}
		}
	}
}

func (cs *connSession) readLoop(ctx context.Context) {
	for {
		_, data, err := cs.conn.Read(ctx)
		if err != nil {
			return
		}
		var cmd Command
		if err := json.Unmarshal(data, &cmd); err != nil {
			cs.send(errorMessage{Type: "error", Message: "malformed command"})
			continue
		}
		if err := cs.dispatch(ctx, cmd); err != nil {
			cs.send(errorMessage{Type: "error", Message: err.Error()})
		}
	}
}

// dispatch routes one command to the match.
func (cs *connSession) dispatch(ctx context.Context, cmd Command) error {
	if cmd.Action == "start" {
		return cs.startMatch(ctx, cmd.Mode)
	}

	cs.mu.Lock()
	m := cs.match
	cs.mu.Unlock()
	if m == nil {
		return game.ErrNotStarted
	}

	seat := engine.Player(cmd.Seat)
	switch cmd.Action {
	case "hang":
		return m.HumanHang(seat, int8(cmd.Pos))
	case "move":
		return m.HumanMove(seat, int8(cmd.From), uint8(cmd.Index), int8(cmd.To))
	case "pass":
		return m.HumanPass(seat)
	case "redo":
		return m.HumanRedoHang(seat)
	case "state":
		cs.send(m.SnapshotLocked())
		return nil
	default:
		return game.ErrNotStarted
	}
}

// startMatch replaces any running match with a fresh one. Stopping the
// old match first invalidates its timers so they can never touch the
// new session.
func (cs *connSession) startMatch(ctx context.Context, mode int) error {
	if mode < 1 {
		mode = 1
	}
	if mode > engine.NumPlayers {
		mode = engine.NumPlayers
	}

	cs.mu.Lock()
	old := cs.match
	cs.mu.Unlock()
	if old != nil {
		old.Stop()
		cs.server.dropMatch(old.ID)
	}

	m := game.NewMatch(mode, uint64(time.Now().UnixNano()))
	m.BroadcastFn = func(ev game.MatchEvent) { cs.send(ev) }
	m.OnMatchEnd = cs.server.onMatchEnd

	cs.mu.Lock()
	cs.match = m
	cs.mu.Unlock()
	cs.server.addMatch(m)

	if cs.server.registry != nil {
		if err := cs.server.registry.Register(ctx, m.ID, mode); err != nil {
			cs.server.log.WithError(err).Warn("match registry register failed")
		}
		go cs.server.heartbeatLoop(ctx, m.ID)
	}

	cs.server.log.WithFields(logrus.Fields{
		"match": m.ID,
		"mode":  mode,
	}).Info("match started")
	m.Start()
	return nil
}

// teardown stops the connection's match when the client goes away.
func (cs *connSession) teardown() {
	cs.mu.Lock()
	m := cs.match
	cs.match = nil
	cs.mu.Unlock()
	if m == nil {
		return
	}
	m.Stop()
	cs.server.dropMatch(m.ID)
	if cs.server.registry != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := cs.server.registry.Unregister(ctx, m.ID); err != nil {
			cs.server.log.WithError(err).Warn("match registry unregister failed")
		}
	}
}

// heartbeatLoop refreshes the registry TTL while the match stays in
// the live set. It exits when the connection context ends or the match
// is dropped.
func (s *Server) heartbeatLoop(ctx context.Context, matchID uuid.UUID) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.mu.Lock()
			_, live := s.matches[matchID]
			s.mu.Unlock()
			if !live {
				return
			}
			if err := s.registry.Heartbeat(ctx, matchID); err != nil {
				s.log.WithError(err).Warn("match registry heartbeat failed")
			}
		}
	}
}

func (s *Server) addMatch(m *game.Match) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.matches[m.ID] = m
}

func (s *Server) dropMatch(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.matches, id)
}

// onMatchEnd persists the finished match and clears it from the live
// registry. Runs outside the match lock.
func (s *Server) onMatchEnd(matchID uuid.UUID, winner *engine.Player, result engine.Result) {
	s.mu.Lock()
	m := s.matches[matchID]
	s.mu.Unlock()

	logEntry := s.log.WithFields(logrus.Fields{
		"match":   matchID,
		"outcome": result.Outcome.String(),
	})
	if winner != nil {
		logEntry = logEntry.WithField("winner", winner.String())
	}
	logEntry.Info("match ended")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if s.store != nil && m != nil {
		var winnerSeat *int
		if winner != nil {
			w := int(*winner)
			winnerSeat = &w
		}
		snap := m.SnapshotLocked()
		rec := database.MatchRecord{
			ID:         matchID,
			HumanCount: m.HumanCount,
			Outcome:    result.Outcome.String(),
			WinnerSeat: winnerSeat,
			TurnCount:  snap.TurnCount,
			Points:     result.Points[:],
		}
		if err := s.store.SaveMatch(ctx, rec); err != nil {
			s.log.WithError(err).Warn("match persistence failed")
		}
	}

	if s.registry != nil {
		if err := s.registry.Unregister(ctx, matchID); err != nil {
			s.log.WithError(err).Warn("match registry unregister failed")
		}
	}
}
