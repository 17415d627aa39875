package server

import (
	"github.com/rs/zerolog/log"

	"chessnet/internal/network"
)

// deliver fans one message out to every given session, marshaling it once.
// A failed send is logged and that connection closed so its read loop runs
// the normal disconnect path; one bad connection never blocks the rest,
// and failures never reach the caller.
func (s *Server) deliver(members []*ClientSession, msg *network.Message) {
	data, err := msg.ToJSON()
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal broadcast")
		return
	}
	for _, cs := range members {
		if err := cs.sendRaw(data); err != nil {
			log.Warn().Err(err).Str("client_id", cs.ID).Str("addr", cs.Addr).Msg("send failed, dropping connection")
			cs.Conn.Close()
		}
	}
}

// deliverState sends one update broadcast to every given session.
func (s *Server) deliverState(members []*ClientSession, state *network.GameState) {
	s.deliver(members, network.NewUpdateMessage(state))
}

// sendTo performs a single-target send with the same failure handling as
// deliver.
func (s *Server) sendTo(cs *ClientSession, msg *network.Message) {
	if err := cs.send(msg); err != nil {
		log.Warn().Err(err).Str("client_id", cs.ID).Str("addr", cs.Addr).Msg("send failed, dropping connection")
		cs.Conn.Close()
	}
}

// sendError replies to the requester only.
func (s *Server) sendError(cs *ClientSession, text string) {
	s.sendTo(cs, network.NewErrorMessage(text))
}

// publish delivers msgs to members outside the session's state lock. The
// caller must hold gs.mu and must not touch it afterward: publish takes
// the session's send lock, releases gs.mu, and performs the I/O under the
// send lock alone. The handoff keeps fan-outs in application order.
func (s *Server) publish(gs *GameSession, members []*ClientSession, msgs ...*network.Message) {
	gs.sendMu.Lock()
	gs.mu.Unlock()
	defer gs.sendMu.Unlock()
	for _, msg := range msgs {
		s.deliver(members, msg)
	}
}

// broadcastState fans the session's current state out to every bound
// connection, in order with any concurrent move or tick.
func (s *Server) broadcastState(gs *GameSession) {
	gs.mu.Lock()
	members := s.registry.GameMembers(gs.ID)
	state := gs.stateLocked()
	s.publish(gs, members, network.NewUpdateMessage(state))
}

// broadcastChat relays text to every session participant except the
// sender.
func (s *Server) broadcastChat(gameID int, text string, sender *ClientSession) {
	msg := network.NewChatMessage(text)
	var targets []*ClientSession
	for _, cs := range s.registry.GameMembers(gameID) {
		if cs != sender {
			targets = append(targets, cs)
		}
	}
	s.deliver(targets, msg)
}
