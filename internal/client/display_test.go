package client

import (
	"strings"
	"testing"
)

func TestRenderBoardStartingPosition(t *testing.T) {
	board := RenderBoard("rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1")

	for _, want := range []string{
		"8 | r  n  b  q  k  b  n  r |",
		"7 | p  p  p  p  p  p  p  p |",
		"4 | .  .  .  .  .  .  .  . |",
		"1 | R  N  B  Q  K  B  N  R |",
		"a  b  c  d  e  f  g  h",
	} {
		if !strings.Contains(board, want) {
			t.Errorf("board missing %q:\n%s", want, board)
		}
	}
}

func TestRenderBoardAfterMove(t *testing.T) {
	// Position after 1. e4: the pawn sits on e4, e2 is empty.
	board := RenderBoard("rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1")

	if !strings.Contains(board, "4 | .  .  .  .  P  .  .  . |") {
		t.Errorf("rank 4 missing advanced pawn:\n%s", board)
	}
	if !strings.Contains(board, "2 | P  P  P  P  .  P  P  P |") {
		t.Errorf("rank 2 still shows e2 pawn:\n%s", board)
	}
}

func TestFormatClock(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{600, "10:00"},
		{59.9, "0:59"},
		{61, "1:01"},
		{0, "0:00"},
	}
	for _, tt := range tests {
		if got := formatClock(tt.seconds); got != tt.want {
			t.Errorf("formatClock(%v) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}
