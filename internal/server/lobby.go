package server

import "sync"

// Lobby is the FIFO pool of players awaiting a match. Oldest waiting pairs
// first.
type Lobby struct {
	mu      sync.Mutex
	waiting []*ClientSession
}

// NewLobby creates an empty lobby.
func NewLobby() *Lobby {
	return &Lobby{}
}

// Enqueue appends a waiting player. When that brings the queue to two, the
// two oldest entries are dequeued in the same critical section and
// returned, so two players arriving concurrently can never miss each
// other.
func (l *Lobby) Enqueue(cs *ClientSession) (pair [2]*ClientSession, matched bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.waiting = append(l.waiting, cs)
	if len(l.waiting) < 2 {
		return pair, false
	}
	pair[0], pair[1] = l.waiting[0], l.waiting[1]
	l.waiting = append([]*ClientSession(nil), l.waiting[2:]...)
	return pair, true
}

// Remove drops a waiting player, reporting whether it was present. Used
// when a player disconnects or rebinds to a game before being paired.
func (l *Lobby) Remove(cs *ClientSession) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, waiting := range l.waiting {
		if waiting == cs {
			l.waiting = append(l.waiting[:i], l.waiting[i+1:]...)
			return true
		}
	}
	return false
}

// Len reports how many players are waiting.
func (l *Lobby) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.waiting)
}
