package client

import (
	"bufio"
	"os"
	"strconv"
	"strings"
)

// CommandKind discriminates parsed user commands.
type CommandKind int

const (
	CmdMove CommandKind = iota
	CmdChat
	CmdReconnect
	CmdWatch
	CmdHelp
	CmdQuit
)

// Command is one parsed line of user input.
type Command struct {
	Kind   CommandKind
	Arg    string
	GameID int
}

// InputHandler reads and parses commands from stdin.
type InputHandler struct {
	reader  *bufio.Reader
	display *Display
}

func NewInputHandler(display *Display) *InputHandler {
	return &InputHandler{
		reader:  bufio.NewReader(os.Stdin),
		display: display,
	}
}

// Next blocks for the next well-formed command. Unrecognized lines are
// reported and skipped; the error return is stdin EOF only.
func (h *InputHandler) Next() (*Command, error) {
	for {
		line, err := h.reader.ReadString('\n')
		if err != nil {
			return nil, err
		}
		cmd, ok := ParseCommand(line)
		if !ok {
			h.display.PrintWarning("unrecognized command, try: help")
			continue
		}
		return cmd, nil
	}
}

// ParseCommand interprets one input line. A bare UCI move like "e2e4" is
// accepted without the "move" keyword.
func ParseCommand(line string) (*Command, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, false
	}
	verb, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(verb) {
	case "quit", "exit":
		return &Command{Kind: CmdQuit}, true
	case "help":
		return &Command{Kind: CmdHelp}, true
	case "move":
		if rest == "" {
			return nil, false
		}
		return &Command{Kind: CmdMove, Arg: rest}, true
	case "chat", "say":
		if rest == "" {
			return nil, false
		}
		return &Command{Kind: CmdChat, Arg: rest}, true
	case "reconnect":
		id, err := strconv.Atoi(rest)
		if err != nil {
			return nil, false
		}
		return &Command{Kind: CmdReconnect, GameID: id}, true
	case "watch":
		id, err := strconv.Atoi(rest)
		if err != nil {
			return nil, false
		}
		return &Command{Kind: CmdWatch, GameID: id}, true
	}

	if looksLikeUCI(line) {
		return &Command{Kind: CmdMove, Arg: line}, true
	}
	return nil, false
}

// looksLikeUCI matches coordinate moves such as e2e4 or a7a8q.
func looksLikeUCI(s string) bool {
	if len(s) != 4 && len(s) != 5 {
		return false
	}
	if s[0] < 'a' || s[0] > 'h' || s[2] < 'a' || s[2] > 'h' {
		return false
	}
	if s[1] < '1' || s[1] > '8' || s[3] < '1' || s[3] > '8' {
		return false
	}
	if len(s) == 5 {
		switch s[4] {
		case 'q', 'r', 'b', 'n':
		default:
			return false
		}
	}
	return true
}
