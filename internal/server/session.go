package server

import (
	"errors"
	"sync"
	"time"

	"chessnet/internal/game"
	"chessnet/internal/network"
)

// SessionStatus is a game session's lifecycle state. Construction goes
// straight to Active; Over is final.
type SessionStatus string

const (
	StatusActive SessionStatus = "active"
	StatusOver   SessionStatus = "over"
)

// Terminal reasons reported in game_over broadcasts.
const (
	ReasonCheckmate = "checkmate"
	ReasonStalemate = "stalemate"
	ReasonTimeout   = "timeout"
	ReasonGameOver  = "game over"
)

var (
	// ErrSessionOver rejects requests against a finished game.
	ErrSessionOver = errors.New("game is over")
	// ErrNoOpenSeat rejects a reconnect when both colors are still held
	// by live connections.
	ErrNoOpenSeat = errors.New("no open seat")
)

// GameSession owns one match: the board, both countdown clocks, and the
// recorded seat for each color. Seats outlive their connections, so a
// reconnecting player inherits the seat its predecessor vacated. mu
// serializes moves, clock ticks, and seat changes; the broadcasts that
// follow them go through sendMu instead, so network I/O never runs under
// the state lock.
type GameSession struct {
	ID int

	// sendMu serializes this session's outbound fan-outs. Broadcasters
	// acquire it before releasing mu, so messages reach the network in
	// application order while a slow write stalls only later sends, never
	// the board or the clocks.
	sendMu sync.Mutex

	mu        sync.Mutex
	board     *game.Board
	whiteTime float64
	blackTime float64
	status    SessionStatus
	reason    string
	seats     map[game.Color]*ClientSession
	endedAt   time.Time
}

func newGameSession(id int, clockSeconds float64) *GameSession {
	return &GameSession{
		ID:        id,
		board:     game.NewBoard(),
		whiteTime: clockSeconds,
		blackTime: clockSeconds,
		status:    StatusActive,
		seats: map[game.Color]*ClientSession{
			game.White: nil,
			game.Black: nil,
		},
	}
}

// applyMoveLocked delegates the move to the rules engine. The caller holds
// mu. A rejection leaves the board untouched; a terminal position flips
// the session to Over.
func (s *GameSession) applyMoveLocked(uci string, now time.Time) error {
	if s.status == StatusOver {
		return ErrSessionOver
	}
	if err := s.board.ApplyMove(uci); err != nil {
		return err
	}
	if s.board.IsGameOver() {
		s.finishLocked(s.terminalReasonLocked(), now)
	}
	return nil
}

func (s *GameSession) terminalReasonLocked() string {
	switch {
	case s.board.IsCheckmate():
		return ReasonCheckmate
	case s.board.IsStalemate():
		return ReasonStalemate
	default:
		return ReasonGameOver
	}
}

func (s *GameSession) finishLocked(reason string, now time.Time) {
	s.status = StatusOver
	s.reason = reason
	s.endedAt = now
}

// tickLocked subtracts measured elapsed time from whichever color holds
// the move, flooring at zero. It reports whether this tick ended the game
// on time. The caller holds mu.
func (s *GameSession) tickLocked(elapsed time.Duration, now time.Time) (timedOut bool) {
	if s.status == StatusOver {
		return false
	}
	secs := elapsed.Seconds()
	if secs < 0 {
		secs = 0
	}
	switch s.board.Turn() {
	case game.White:
		s.whiteTime -= secs
		if s.whiteTime <= 0 {
			s.whiteTime = 0
			timedOut = true
		}
	case game.Black:
		s.blackTime -= secs
		if s.blackTime <= 0 {
			s.blackTime = 0
			timedOut = true
		}
	}
	if timedOut {
		s.finishLocked(ReasonTimeout, now)
	}
	return timedOut
}

// stateLocked snapshots the public state for broadcast. The caller holds mu.
func (s *GameSession) stateLocked() *network.GameState {
	return &network.GameState{
		FEN:         s.board.FEN(),
		Turn:        string(s.board.Turn()),
		WhiteTime:   s.whiteTime,
		BlackTime:   s.blackTime,
		MoveHistory: s.board.MoveHistory(),
		IsCheckmate: s.board.IsCheckmate(),
		IsStalemate: s.board.IsStalemate(),
		IsGameOver:  s.status == StatusOver,
	}
}

// claimSeatLocked binds cs to the given color's seat.
func (s *GameSession) claimSeatLocked(c game.Color, cs *ClientSession) {
	s.seats[c] = cs
}

// vacantSeatLocked picks the color with no live binding, white first when
// both are free. The seat records themselves decide, never the registry.
func (s *GameSession) vacantSeatLocked() (game.Color, error) {
	if s.seats[game.White] == nil {
		return game.White, nil
	}
	if s.seats[game.Black] == nil {
		return game.Black, nil
	}
	return "", ErrNoOpenSeat
}

// vacateSeatLocked clears any seat held by cs. The seat record is kept so
// a later reconnect inherits it.
func (s *GameSession) vacateSeatLocked(cs *ClientSession) {
	for c, holder := range s.seats {
		if holder == cs {
			s.seats[c] = nil
		}
	}
}

// Status returns the session's lifecycle state.
func (s *GameSession) Status() SessionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// State snapshots the session's public state.
func (s *GameSession) State() *network.GameState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

// Clocks returns the remaining seconds for each color.
func (s *GameSession) Clocks() (white, black float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.whiteTime, s.blackTime
}
