// Package server implements the TCP chess match server: connection
// acceptance, matchmaking, game sessions with per-color clocks, state
// broadcasts, and reconnection handling.
package server

import (
	"errors"
	"fmt"
	"io"
	"net"
	"sort"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"chessnet/internal/game"
	"chessnet/internal/network"
)

// ErrUnknownGame rejects requests that name a game id with no live
// session.
var ErrUnknownGame = errors.New("unknown game")

// Server owns every live connection and session. One goroutine runs per
// accepted connection and one per active game clock; the registry, lobby,
// and per-session mutexes serialize everything they share.
type Server struct {
	cfg      Config
	clock    clockwork.Clock
	registry *Registry
	lobby    *Lobby

	mu          sync.Mutex
	listener    net.Listener
	games       map[int]*GameSession
	gameCounter int
	closed      bool

	done chan struct{}
}

// NewServer creates a server with the given configuration. Port 0 binds an
// ephemeral port; LoadConfig is the path that applies production defaults.
func NewServer(cfg Config) *Server {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = time.Second
	}
	return &Server{
		cfg:      cfg,
		clock:    clockwork.NewRealClock(),
		registry: NewRegistry(),
		lobby:    NewLobby(),
		games:    make(map[int]*GameSession),
		done:     make(chan struct{}),
	}
}

// Start binds the listening port and accepts connections until Stop is
// called. A bind failure is returned to the caller and is fatal at
// startup. Accepted connections are unbounded; each gets its own
// goroutine.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		return fmt.Errorf("failed to bind %s: %w", s.cfg.Addr(), err)
	}
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	log.Info().Str("addr", listener.Addr().String()).Msg("server listening")

	go s.cleanupLoop()

	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-s.done:
				return nil
			default:
			}
			log.Error().Err(err).Msg("failed to accept connection")
			continue
		}
		go s.handleClient(conn)
	}
}

// Addr returns the bound listener address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Stop closes the listener and every live connection. Safe to call more
// than once.
func (s *Server) Stop() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.done)
	listener := s.listener
	s.mu.Unlock()

	if listener != nil {
		listener.Close()
	}
	for _, cs := range s.registry.Snapshot() {
		cs.Conn.Close()
	}
	log.Info().Msg("server stopped")
}

// handleClient owns one connection from handshake to disconnect.
func (s *Server) handleClient(conn net.Conn) {
	defer s.disconnect(conn)

	dec := network.NewDecoder(conn)
	handshake, err := s.readFrame(dec, "")
	if err != nil {
		log.Warn().Err(err).Str("addr", remoteAddr(conn)).Msg("connection closed before handshake")
		return
	}

	role := RolePlayer
	if handshake.Type == network.RoleSpectator {
		role = RoleSpectator
	}
	cs := s.registry.Register(conn, role)
	log.Info().Str("client_id", cs.ID).Str("addr", cs.Addr).Str("role", string(role)).Msg("client connected")

	if role == RolePlayer {
		s.handlePlayer(cs, dec)
	} else {
		s.handleSpectator(cs, dec)
	}
}

// readFrame returns the next decodable frame. Malformed frames are logged
// and skipped; the connection is never terminated for a decode failure.
func (s *Server) readFrame(dec *network.Decoder, clientID string) (*network.Message, error) {
	for {
		msg, err := dec.Next()
		if err == nil {
			return msg, nil
		}
		if errors.Is(err, network.ErrMalformedMessage) {
			log.Warn().Err(err).Str("client_id", clientID).Msg("discarding malformed frame")
			continue
		}
		return nil, err
	}
}

// handlePlayer enqueues the player for matchmaking and then serves its
// requests until the connection ends.
func (s *Server) handlePlayer(cs *ClientSession, dec *network.Decoder) {
	if pair, matched := s.lobby.Enqueue(cs); matched {
		s.startGame(pair[0], pair[1])
	} else {
		log.Info().Str("client_id", cs.ID).Int("waiting", s.lobby.Len()).Msg("player waiting in lobby")
	}

	for {
		msg, err := s.readFrame(dec, cs.ID)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				log.Warn().Err(err).Str("client_id", cs.ID).Msg("read failed")
			}
			return
		}
		s.dispatch(cs, msg)
	}
}

func (s *Server) dispatch(cs *ClientSession, msg *network.Message) {
	switch msg.Action {
	case network.ActionMove:
		s.handleMove(cs, s.resolveGameID(cs, msg), msg.Move)
	case network.ActionChat:
		s.handleChat(cs, s.resolveGameID(cs, msg), msg.Message)
	case network.ActionReconnect:
		s.handleReconnect(cs, msg.GameID)
	default:
		s.sendError(cs, fmt.Sprintf("unsupported action %q", msg.Action))
	}
}

// resolveGameID prefers the id named in the message, falling back to the
// client's bound game.
func (s *Server) resolveGameID(cs *ClientSession, msg *network.Message) int {
	if msg.GameID != 0 {
		return msg.GameID
	}
	gameID, _, _ := s.registry.Binding(cs)
	return gameID
}

// startGame creates the session, seats both players with distinct colors,
// tells each its assignment, broadcasts the opening state, and starts the
// clock worker. The first-enqueued player takes white.
func (s *Server) startGame(white, black *ClientSession) {
	s.mu.Lock()
	s.gameCounter++
	gs := newGameSession(s.gameCounter, s.cfg.InitialClockSeconds)
	s.games[gs.ID] = gs
	s.mu.Unlock()

	gs.mu.Lock()
	gs.claimSeatLocked(game.White, white)
	gs.claimSeatLocked(game.Black, black)
	s.registry.BindPlayer(white, gs.ID, game.White)
	s.registry.BindPlayer(black, gs.ID, game.Black)
	members := s.registry.GameMembers(gs.ID)
	state := gs.stateLocked()
	gs.sendMu.Lock()
	gs.mu.Unlock()
	s.sendTo(white, network.NewStartMessage(gs.ID, string(game.White)))
	s.sendTo(black, network.NewStartMessage(gs.ID, string(game.Black)))
	s.deliverState(members, state)
	gs.sendMu.Unlock()

	log.Info().Int("game_id", gs.ID).Str("white", white.ID).Str("black", black.ID).Msg("game started")
	go s.runClock(gs)
}

// handleMove delegates legality to the rules engine under the session
// lock. An accepted move is broadcast to every bound connection; a
// rejected one answers the requester only and changes nothing.
func (s *Server) handleMove(cs *ClientSession, gameID int, uci string) {
	gs, ok := s.game(gameID)
	if !ok {
		s.sendError(cs, ErrUnknownGame.Error())
		return
	}

	gs.mu.Lock()
	if err := gs.applyMoveLocked(uci, s.clock.Now()); err != nil {
		gs.mu.Unlock()
		log.Debug().Err(err).Int("game_id", gameID).Str("client_id", cs.ID).Msg("move rejected")
		s.sendError(cs, err.Error())
		return
	}
	members := s.registry.GameMembers(gameID)
	msgs := []*network.Message{network.NewUpdateMessage(gs.stateLocked())}
	if gs.status == StatusOver {
		msgs = append(msgs, network.NewGameOverMessage(gs.reason))
		log.Info().Int("game_id", gameID).Str("reason", gs.reason).Msg("game over")
	}
	s.publish(gs, members, msgs...)
}

func (s *Server) handleChat(cs *ClientSession, gameID int, text string) {
	if _, ok := s.game(gameID); !ok {
		s.sendError(cs, ErrUnknownGame.Error())
		return
	}
	s.broadcastChat(gameID, text, cs)
}

// handleReconnect rebinds the connection to an existing game as a player,
// assigning the seat its predecessor vacated, and resynchronizes it with
// an immediate state broadcast. An unknown game is rejected with no
// partial rebinding.
func (s *Server) handleReconnect(cs *ClientSession, gameID int) {
	gs, ok := s.game(gameID)
	if !ok {
		s.sendError(cs, ErrUnknownGame.Error())
		return
	}

	gs.mu.Lock()
	color, err := gs.vacantSeatLocked()
	if err != nil {
		gs.mu.Unlock()
		s.sendError(cs, err.Error())
		return
	}
	gs.claimSeatLocked(color, cs)
	s.registry.BindPlayer(cs, gameID, color)
	// A waiting player that rebinds must leave the lobby, or it could be
	// paired into a second game.
	s.lobby.Remove(cs)
	members := s.registry.GameMembers(gameID)
	state := gs.stateLocked()
	gs.sendMu.Lock()
	gs.mu.Unlock()
	s.sendTo(cs, network.NewReconnectedMessage(gameID, string(color)))
	s.deliverState(members, state)
	gs.sendMu.Unlock()
	log.Info().Int("game_id", gameID).Str("client_id", cs.ID).Str("color", string(color)).Msg("player reconnected")
}

// handleSpectator offers the game list, waits for a valid selection, then
// relays every update to the spectator until it disconnects. Spectators
// may chat with the session they watch.
func (s *Server) handleSpectator(cs *ClientSession, dec *network.Decoder) {
	s.sendTo(cs, network.NewGameListMessage(s.gameIDs()))

	gs := s.awaitSpectatorChoice(cs, dec)
	if gs == nil {
		return
	}
	s.registry.BindSpectator(cs, gs.ID)
	log.Info().Int("game_id", gs.ID).Str("client_id", cs.ID).Msg("spectator joined")
	s.broadcastState(gs)

	for {
		msg, err := s.readFrame(dec, cs.ID)
		if err != nil {
			return
		}
		if msg.Action == network.ActionChat {
			s.handleChat(cs, gs.ID, msg.Message)
		} else {
			s.sendError(cs, fmt.Sprintf("unsupported action %q", msg.Action))
		}
	}
}

// awaitSpectatorChoice reads selections until one names a live game. An
// unknown id answers with an error and the offer stands.
func (s *Server) awaitSpectatorChoice(cs *ClientSession, dec *network.Decoder) *GameSession {
	for {
		msg, err := s.readFrame(dec, cs.ID)
		if err != nil {
			return nil
		}
		if gs, ok := s.game(msg.GameID); ok {
			return gs
		}
		s.sendError(cs, ErrUnknownGame.Error())
	}
}

// disconnect tears down one connection. Unregistering is idempotent; the
// game session itself is retained so the seat can be reclaimed by a
// reconnect.
func (s *Server) disconnect(conn net.Conn) {
	conn.Close()
	cs := s.registry.Unregister(conn)
	if cs == nil {
		return
	}
	log.Info().Str("client_id", cs.ID).Str("addr", cs.Addr).Msg("client disconnected")

	if s.lobby.Remove(cs) {
		return
	}
	// The binding is read under the registry lock: a concurrent pairing
	// writes these fields through BindPlayer.
	gameID, _, role := s.registry.Binding(cs)
	if role != RolePlayer || gameID == 0 {
		return
	}
	gs, ok := s.game(gameID)
	if !ok {
		return
	}

	gs.mu.Lock()
	gs.vacateSeatLocked(cs)
	players := s.registry.PlayersInGame(gs.ID)
	s.publish(gs, players, network.NewOpponentDisconnectedMessage(gs.ID))
}

func (s *Server) game(id int) (*GameSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	gs, ok := s.games[id]
	return gs, ok
}

func (s *Server) gameIDs() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]int, 0, len(s.games))
	for id := range s.games {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
