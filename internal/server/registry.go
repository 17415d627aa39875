package server

import (
	"net"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"chessnet/internal/game"
	"chessnet/internal/network"
)

// Role is a connection's declared role.
type Role string

const (
	RolePlayer    Role = network.RolePlayer
	RoleSpectator Role = network.RoleSpectator
)

// ClientSession is the registry's record for one live connection. Role,
// GameID and Color are written only under the owning registry's lock.
type ClientSession struct {
	ID   string
	Conn net.Conn
	Addr string
	enc  *network.Encoder

	Role   Role
	GameID int
	Color  game.Color
}

func (cs *ClientSession) send(msg *network.Message) error {
	return cs.enc.Encode(msg)
}

func (cs *ClientSession) sendRaw(data []byte) error {
	return cs.enc.EncodeRaw(data)
}

// Registry is the authoritative mapping from connection to client session.
// Every operation is a single critical section.
type Registry struct {
	mu      sync.RWMutex
	clients map[net.Conn]*ClientSession
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{clients: make(map[net.Conn]*ClientSession)}
}

// Register records a new connection under the given role. Registering a
// connection that is already present returns the existing session, keeping
// the at-most-once invariant.
func (r *Registry) Register(conn net.Conn, role Role) *ClientSession {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cs, ok := r.clients[conn]; ok {
		return cs
	}
	cs := &ClientSession{
		ID:   uuid.New().String(),
		Conn: conn,
		Addr: remoteAddr(conn),
		enc:  network.NewEncoder(conn),
		Role: role,
	}
	r.clients[conn] = cs
	log.Debug().Str("client_id", cs.ID).Str("addr", cs.Addr).Str("role", string(role)).Msg("client registered")
	return cs
}

// Lookup finds the session for a connection.
func (r *Registry) Lookup(conn net.Conn) (*ClientSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cs, ok := r.clients[conn]
	return cs, ok
}

// BindPlayer attaches a session to a game as a player with the given color.
func (r *Registry) BindPlayer(cs *ClientSession, gameID int, color game.Color) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cs.Role = RolePlayer
	cs.GameID = gameID
	cs.Color = color
}

// BindSpectator attaches a spectating session to its chosen game.
func (r *Registry) BindSpectator(cs *ClientSession, gameID int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cs.GameID = gameID
}

// Binding reads a session's current game attachment.
func (r *Registry) Binding(cs *ClientSession) (gameID int, color game.Color, role Role) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cs.GameID, cs.Color, cs.Role
}

// Unregister removes a connection and returns its session. Unregistering
// an absent connection is a no-op and returns nil.
func (r *Registry) Unregister(conn net.Conn) *ClientSession {
	r.mu.Lock()
	defer r.mu.Unlock()
	cs, ok := r.clients[conn]
	if !ok {
		return nil
	}
	delete(r.clients, conn)
	return cs
}

// Snapshot returns every live session.
func (r *Registry) Snapshot() []*ClientSession {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*ClientSession, 0, len(r.clients))
	for _, cs := range r.clients {
		out = append(out, cs)
	}
	return out
}

// GameMembers returns every session bound to the given game, players and
// spectators alike.
func (r *Registry) GameMembers(gameID int) []*ClientSession {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*ClientSession
	for _, cs := range r.clients {
		if cs.GameID == gameID {
			out = append(out, cs)
		}
	}
	return out
}

// PlayersInGame returns only the player-role sessions bound to a game.
func (r *Registry) PlayersInGame(gameID int) []*ClientSession {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*ClientSession
	for _, cs := range r.clients {
		if cs.GameID == gameID && cs.Role == RolePlayer {
			out = append(out, cs)
		}
	}
	return out
}

func remoteAddr(conn net.Conn) string {
	if addr := conn.RemoteAddr(); addr != nil {
		return addr.String()
	}
	return "unknown"
}
