package server

import (
	"github.com/rs/zerolog/log"

	"chessnet/internal/network"
)

// runClock is the timer service for one session: a dedicated goroutine
// ticking at the configured interval, charging measured elapsed wall time
// to whichever color holds the move and broadcasting the updated state.
// Elapsed time comes from the clock, not the nominal interval, so
// scheduling jitter costs the mover real time instead of drifting the
// game clock. The goroutine exits when the session ends or the server
// stops.
func (s *Server) runClock(gs *GameSession) {
	ticker := s.clock.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()

	last := s.clock.Now()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.Chan():
		}
		now := s.clock.Now()
		elapsed := now.Sub(last)
		last = now

		gs.mu.Lock()
		if gs.status == StatusOver {
			gs.mu.Unlock()
			return
		}
		timedOut := gs.tickLocked(elapsed, now)
		members := s.registry.GameMembers(gs.ID)
		msgs := []*network.Message{network.NewUpdateMessage(gs.stateLocked())}
		if timedOut {
			msgs = append(msgs, network.NewGameOverMessage(ReasonTimeout))
		}
		s.publish(gs, members, msgs...)

		if timedOut {
			log.Info().Int("game_id", gs.ID).Msg("game ended on time")
			return
		}
	}
}

// cleanupLoop is the eviction janitor: finished games that nobody is
// attached to anymore are dropped after the retention window, so the game
// table is bounded by live traffic rather than growing forever.
func (s *Server) cleanupLoop() {
	ticker := s.clock.NewTicker(s.cfg.CleanupInterval())
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.Chan():
			s.evictFinishedGames()
		}
	}
}

func (s *Server) evictFinishedGames() {
	now := s.clock.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, gs := range s.games {
		gs.mu.Lock()
		expired := gs.status == StatusOver && now.Sub(gs.endedAt) >= s.cfg.FinishedRetention()
		gs.mu.Unlock()
		if expired && len(s.registry.GameMembers(id)) == 0 {
			delete(s.games, id)
			log.Info().Int("game_id", id).Msg("evicted finished game")
		}
	}
}
