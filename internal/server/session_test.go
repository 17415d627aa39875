package server

import (
	"errors"
	"testing"
	"time"

	"chessnet/internal/game"
)

func TestTickChargesOnlyTheMover(t *testing.T) {
	gs := newGameSession(1, 600)
	now := time.Now()

	gs.mu.Lock()
	defer gs.mu.Unlock()

	if timedOut := gs.tickLocked(time.Second, now); timedOut {
		t.Fatal("tick reported timeout with full clocks")
	}
	if gs.whiteTime != 599 || gs.blackTime != 600 {
		t.Fatalf("clocks = (%v, %v), want (599, 600)", gs.whiteTime, gs.blackTime)
	}

	if err := gs.applyMoveLocked("e2e4", now); err != nil {
		t.Fatalf("applyMoveLocked failed: %v", err)
	}
	gs.tickLocked(2*time.Second, now)
	if gs.whiteTime != 599 || gs.blackTime != 598 {
		t.Fatalf("clocks after black tick = (%v, %v), want (599, 598)", gs.whiteTime, gs.blackTime)
	}
}

func TestTickTimeoutFloorsAtZero(t *testing.T) {
	gs := newGameSession(1, 3)
	now := time.Now()

	gs.mu.Lock()
	defer gs.mu.Unlock()

	if timedOut := gs.tickLocked(10*time.Second, now); !timedOut {
		t.Fatal("tick past zero did not report timeout")
	}
	if gs.whiteTime != 0 {
		t.Fatalf("white clock = %v, want 0", gs.whiteTime)
	}
	if gs.status != StatusOver || gs.reason != ReasonTimeout {
		t.Fatalf("session = (%q, %q), want (over, timeout)", gs.status, gs.reason)
	}
	if !gs.endedAt.Equal(now) {
		t.Fatalf("endedAt = %v, want %v", gs.endedAt, now)
	}

	// A finished session ignores further ticks.
	if timedOut := gs.tickLocked(time.Second, now); timedOut {
		t.Fatal("tick on finished session reported timeout")
	}
}

func TestApplyMoveAfterOver(t *testing.T) {
	gs := newGameSession(1, 600)
	now := time.Now()

	gs.mu.Lock()
	defer gs.mu.Unlock()
	gs.finishLocked(ReasonCheckmate, now)

	err := gs.applyMoveLocked("e2e4", now)
	if !errors.Is(err, ErrSessionOver) {
		t.Fatalf("applyMoveLocked on finished session = %v, want ErrSessionOver", err)
	}
}

func TestCheckmateFinishesSession(t *testing.T) {
	gs := newGameSession(1, 600)
	now := time.Now()

	gs.mu.Lock()
	defer gs.mu.Unlock()
	for _, uci := range []string{"e2e4", "e7e5", "d1h5", "b8c6", "f1c4", "g8f6", "h5f7"} {
		if err := gs.applyMoveLocked(uci, now); err != nil {
			t.Fatalf("applyMoveLocked(%q) failed: %v", uci, err)
		}
	}
	if gs.status != StatusOver || gs.reason != ReasonCheckmate {
		t.Fatalf("session = (%q, %q), want (over, checkmate)", gs.status, gs.reason)
	}
	state := gs.stateLocked()
	if !state.IsCheckmate || !state.IsGameOver || state.IsStalemate {
		t.Fatalf("state flags = %+v", state)
	}
}

func TestRejectedMoveLeavesStateUntouched(t *testing.T) {
	gs := newGameSession(1, 600)

	gs.mu.Lock()
	defer gs.mu.Unlock()
	before := gs.stateLocked()
	if err := gs.applyMoveLocked("e2e5", time.Now()); err == nil {
		t.Fatal("illegal move accepted")
	}
	after := gs.stateLocked()
	if after.FEN != before.FEN || after.Turn != before.Turn || len(after.MoveHistory) != 0 {
		t.Fatalf("state changed after rejected move: %+v", after)
	}
}

func TestVacantSeatWhiteFirst(t *testing.T) {
	gs := newGameSession(1, 600)
	white := &ClientSession{ID: "w"}
	black := &ClientSession{ID: "b"}

	gs.mu.Lock()
	defer gs.mu.Unlock()

	if c, err := gs.vacantSeatLocked(); err != nil || c != game.White {
		t.Fatalf("both seats free: (%q, %v), want (white, nil)", c, err)
	}

	gs.claimSeatLocked(game.White, white)
	if c, err := gs.vacantSeatLocked(); err != nil || c != game.Black {
		t.Fatalf("white taken: (%q, %v), want (black, nil)", c, err)
	}

	gs.claimSeatLocked(game.Black, black)
	if _, err := gs.vacantSeatLocked(); !errors.Is(err, ErrNoOpenSeat) {
		t.Fatalf("both seats taken: %v, want ErrNoOpenSeat", err)
	}

	// Vacating frees only the seats the leaver held.
	gs.vacateSeatLocked(black)
	if c, err := gs.vacantSeatLocked(); err != nil || c != game.Black {
		t.Fatalf("after black left: (%q, %v), want (black, nil)", c, err)
	}
	if gs.seats[game.White] != white {
		t.Fatal("vacating black cleared white's seat")
	}
}
