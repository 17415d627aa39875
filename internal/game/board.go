// Package game wraps the chess rules engine behind the narrow contract the
// server needs: apply a proposed move, query the current position, and
// detect terminal states. The server never inspects legality itself.
package game

import (
	"fmt"

	"github.com/notnil/chess"
)

// Color identifies one side of the board.
type Color string

const (
	White Color = "white"
	Black Color = "black"
)

// Other returns the opposing color.
func (c Color) Other() Color {
	if c == White {
		return Black
	}
	return White
}

// Board owns one game's position and move history. It is not safe for
// concurrent use; the owning session serializes access.
type Board struct {
	game    *chess.Game
	history []string
}

// NewBoard creates a board in the standard starting position.
func NewBoard() *Board {
	return &Board{game: chess.NewGame()}
}

// ApplyMove validates and applies a UCI-encoded move such as "e2e4". The
// returned error is the rejection reason; on error the position is
// unchanged.
func (b *Board) ApplyMove(uci string) error {
	move, err := chess.UCINotation{}.Decode(b.game.Position(), uci)
	if err != nil {
		return fmt.Errorf("illegal move %q", uci)
	}
	if err := b.game.Move(move); err != nil {
		return fmt.Errorf("illegal move %q", uci)
	}
	b.history = append(b.history, uci)
	return nil
}

// Turn reports which color moves next.
func (b *Board) Turn() Color {
	if b.game.Position().Turn() == chess.White {
		return White
	}
	return Black
}

// FEN returns the current position encoding.
func (b *Board) FEN() string {
	return b.game.Position().String()
}

// MoveHistory returns the applied moves in UCI encoding, oldest first.
func (b *Board) MoveHistory() []string {
	out := make([]string, len(b.history))
	copy(out, b.history)
	return out
}

func (b *Board) IsCheckmate() bool {
	return b.game.Method() == chess.Checkmate
}

func (b *Board) IsStalemate() bool {
	return b.game.Method() == chess.Stalemate
}

// IsGameOver reports whether the position is terminal for any reason,
// including draws that are neither checkmate nor stalemate.
func (b *Board) IsGameOver() bool {
	return b.game.Outcome() != chess.NoOutcome
}
