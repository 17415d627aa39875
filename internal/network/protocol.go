// Package network defines the wire protocol between server and clients:
// newline-delimited JSON messages over a persistent TCP connection.
package network

import "encoding/json"

// Action identifies the kind of a protocol message.
type Action string

const (
	// Client to server actions
	ActionMove      Action = "move"
	ActionChat      Action = "chat"
	ActionReconnect Action = "reconnect"

	// Server to client actions
	ActionGameList             Action = "game_list"
	ActionStart                Action = "start"
	ActionUpdate               Action = "update"
	ActionError                Action = "error"
	ActionOpponentDisconnected Action = "opponent_disconnected"
	ActionReconnected          Action = "reconnected"
	ActionGameOver             Action = "game_over"
)

// Roles declared in the connection handshake.
const (
	RolePlayer    = "player"
	RoleSpectator = "spectator"
)

// GameState is the authoritative public state of one session, carried by
// update broadcasts.
type GameState struct {
	FEN         string   `json:"fen"`
	Turn        string   `json:"turn"`
	WhiteTime   float64  `json:"white_time"`
	BlackTime   float64  `json:"black_time"`
	MoveHistory []string `json:"move_history"`
	IsCheckmate bool     `json:"is_checkmate"`
	IsStalemate bool     `json:"is_stalemate"`
	IsGameOver  bool     `json:"is_game_over"`
}

// Message is the single frame type exchanged on the wire. Which fields are
// populated depends on the action; the handshake frame carries only Type,
// and a spectator's game selection carries only GameID.
type Message struct {
	Type    string     `json:"type,omitempty"`
	Action  Action     `json:"action,omitempty"`
	Move    string     `json:"move,omitempty"`
	GameID  int        `json:"game_id,omitempty"`
	Games   []int      `json:"games,omitempty"`
	Color   string     `json:"color,omitempty"`
	Message string     `json:"message,omitempty"`
	Reason  string     `json:"reason,omitempty"`
	State   *GameState `json:"state,omitempty"`
}

// ToJSON converts a message to JSON bytes.
func (m *Message) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// FromJSON creates a message from JSON bytes.
func FromJSON(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// Helper constructors for protocol messages

// NewHandshakeMessage declares the connection's role.
func NewHandshakeMessage(role string) *Message {
	return &Message{Type: role}
}

// NewMoveMessage requests a move in a game.
func NewMoveMessage(gameID int, uci string) *Message {
	return &Message{Action: ActionMove, GameID: gameID, Move: uci}
}

// NewReconnectMessage asks to rebind to an existing game.
func NewReconnectMessage(gameID int) *Message {
	return &Message{Action: ActionReconnect, GameID: gameID}
}

// NewGameListMessage offers the ids of joinable games to a spectator.
func NewGameListMessage(ids []int) *Message {
	return &Message{Action: ActionGameList, Games: ids}
}

// NewStartMessage tells a newly paired player its session and color.
func NewStartMessage(gameID int, color string) *Message {
	return &Message{Action: ActionStart, GameID: gameID, Color: color}
}

// NewUpdateMessage carries an authoritative state broadcast.
func NewUpdateMessage(state *GameState) *Message {
	return &Message{Action: ActionUpdate, State: state}
}

// NewChatMessage relays text between session participants.
func NewChatMessage(text string) *Message {
	return &Message{Action: ActionChat, Message: text}
}

// NewErrorMessage reports a rejected request to its requester.
func NewErrorMessage(text string) *Message {
	return &Message{Action: ActionError, Message: text}
}

// NewOpponentDisconnectedMessage notifies the remaining player of a drop.
func NewOpponentDisconnectedMessage(gameID int) *Message {
	return &Message{Action: ActionOpponentDisconnected, GameID: gameID}
}

// NewReconnectedMessage confirms a reconnection and the inherited color.
func NewReconnectedMessage(gameID int, color string) *Message {
	return &Message{Action: ActionReconnected, GameID: gameID, Color: color}
}

// NewGameOverMessage announces a terminal state with a readable reason.
func NewGameOverMessage(reason string) *Message {
	return &Message{Action: ActionGameOver, Reason: reason}
}
