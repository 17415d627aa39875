// Package client handles client-side display and user interface.
package client

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"

	"chessnet/internal/network"
)

type Display struct {
	serverColor  *color.Color
	gameColor    *color.Color
	chatColor    *color.Color
	errorColor   *color.Color
	warningColor *color.Color
	infoColor    *color.Color
	whiteColor   *color.Color
	blackColor   *color.Color
}

// NewDisplay creates a display instance with configured colors.
func NewDisplay() *Display {
	return &Display{
		serverColor:  color.New(color.FgCyan, color.Bold),
		gameColor:    color.New(color.FgYellow, color.Bold),
		chatColor:    color.New(color.FgGreen),
		errorColor:   color.New(color.FgRed, color.Bold),
		warningColor: color.New(color.FgYellow),
		infoColor:    color.New(color.FgWhite),
		whiteColor:   color.New(color.FgHiWhite, color.Bold),
		blackColor:   color.New(color.FgMagenta, color.Bold),
	}
}

// PrintBanner displays the client banner.
func (d *Display) PrintBanner() {
	banner := `
╔═══════════════════════════════════════╗
║           CHESSNET  CLIENT            ║
║        play chess over TCP            ║
╚═══════════════════════════════════════╝
`
	d.gameColor.Println(banner)
}

func (d *Display) timestamp() string {
	return time.Now().Format("15:04:05")
}

// PrintServerStatus displays server connection status.
func (d *Display) PrintServerStatus(message string) {
	d.serverColor.Printf("[%s] [SERVER] %s\n", d.timestamp(), message)
}

// PrintInfo displays a neutral informational line.
func (d *Display) PrintInfo(message string) {
	d.infoColor.Printf("[%s] %s\n", d.timestamp(), message)
}

// PrintWarning displays a warning line.
func (d *Display) PrintWarning(message string) {
	d.warningColor.Printf("[%s] [WARNING] %s\n", d.timestamp(), message)
}

// PrintError displays a server rejection.
func (d *Display) PrintError(message string) {
	d.errorColor.Printf("[%s] [ERROR] %s\n", d.timestamp(), message)
}

// PrintChat displays a relayed chat line.
func (d *Display) PrintChat(message string) {
	d.chatColor.Printf("[%s] [CHAT] %s\n", d.timestamp(), message)
}

// PrintGameList displays the games offered to a spectator.
func (d *Display) PrintGameList(ids []int) {
	if len(ids) == 0 {
		d.infoColor.Printf("[%s] no games in progress yet\n", d.timestamp())
		return
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%d", id)
	}
	d.gameColor.Printf("[%s] [GAMES] in progress: %s\n", d.timestamp(), strings.Join(parts, ", "))
}

// PrintStart announces the player's session assignment.
func (d *Display) PrintStart(gameID int, assigned string) {
	d.gameColor.Printf("[%s] [MATCHED] game %d, you play %s\n", d.timestamp(), gameID, assigned)
}

// PrintReconnected confirms a restored seat.
func (d *Display) PrintReconnected(gameID int, assigned string) {
	d.gameColor.Printf("[%s] [RECONNECTED] game %d, you play %s\n", d.timestamp(), gameID, assigned)
}

// PrintGameOver announces the terminal broadcast.
func (d *Display) PrintGameOver(reason string) {
	d.gameColor.Printf("[%s] [GAME OVER] %s\n", d.timestamp(), reason)
}

// PrintState renders an authoritative state broadcast: board, clocks,
// turn, and recent history.
func (d *Display) PrintState(state *network.GameState) {
	fmt.Print(RenderBoard(state.FEN))
	d.whiteColor.Printf("  white %s", formatClock(state.WhiteTime))
	fmt.Print("   ")
	d.blackColor.Printf("black %s\n", formatClock(state.BlackTime))
	if state.IsGameOver {
		return
	}
	d.infoColor.Printf("  %s to move", state.Turn)
	if n := len(state.MoveHistory); n > 0 {
		d.infoColor.Printf("   last: %s", state.MoveHistory[n-1])
	}
	fmt.Println()
}

// PrintHelp lists the available commands.
func (d *Display) PrintHelp() {
	d.infoColor.Println(`commands:
  move <uci>       play a move, e.g. move e2e4 (bare "e2e4" works too)
  chat <text>      message the other participants
  reconnect <id>   rejoin a game after a drop
  watch <id>       spectate a game (spectator connections)
  help             show this list
  quit             leave`)
}

func formatClock(seconds float64) string {
	total := int(seconds)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// RenderBoard draws the piece placement field of a FEN string as an ASCII
// board, rank 8 on top.
func RenderBoard(fen string) string {
	placement := fen
	if i := strings.IndexByte(fen, ' '); i > 0 {
		placement = fen[:i]
	}
	var b strings.Builder
	b.WriteString("  +------------------------+\n")
	for i, rank := range strings.Split(placement, "/") {
		fmt.Fprintf(&b, "%d |", 8-i)
		for _, r := range rank {
			if r >= '1' && r <= '8' {
				for j := 0; j < int(r-'0'); j++ {
					b.WriteString(" . ")
				}
			} else {
				b.WriteString(" " + string(r) + " ")
			}
		}
		b.WriteString("|\n")
	}
	b.WriteString("  +------------------------+\n")
	b.WriteString("    a  b  c  d  e  f  g  h\n")
	return b.String()
}
