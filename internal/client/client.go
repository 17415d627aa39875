// Package client implements the terminal chess client: connection
// handling, server message processing, and the user command loop. It is a
// pure consumer of the wire protocol.
package client

import (
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/rs/zerolog/log"

	"chessnet/internal/network"
)

// Client represents one connection to the match server.
type Client struct {
	serverAddr string
	role       string

	conn    net.Conn
	enc     *network.Encoder
	dec     *network.Decoder
	display *Display
	input   *InputHandler

	mu     sync.Mutex
	gameID int
	color  string

	readerDone chan struct{}
}

// NewClient creates a client that will declare the given role on connect.
func NewClient(serverAddr, role string) *Client {
	display := NewDisplay()
	return &Client{
		serverAddr: serverAddr,
		role:       role,
		display:    display,
		input:      NewInputHandler(display),
		readerDone: make(chan struct{}),
	}
}

// Start connects, handshakes, and runs until the user quits or the server
// goes away.
func (c *Client) Start() error {
	c.display.PrintBanner()

	conn, err := net.Dial("tcp", c.serverAddr)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	c.conn = conn
	c.enc = network.NewEncoder(conn)
	c.dec = network.NewDecoder(conn)
	c.display.PrintServerStatus("connected to " + c.serverAddr)

	if err := c.enc.Encode(network.NewHandshakeMessage(c.role)); err != nil {
		conn.Close()
		return fmt.Errorf("handshake failed: %w", err)
	}

	go c.messageLoop()

	if c.role == network.RoleSpectator {
		c.display.PrintInfo("pick a game with: watch <game_id>")
	} else {
		c.display.PrintInfo("waiting for an opponent...")
		c.display.PrintHelp()
	}

	err = c.inputLoop()
	conn.Close()
	<-c.readerDone
	return err
}

// Stop closes the connection, unblocking both loops.
func (c *Client) Stop() {
	if c.conn != nil {
		c.conn.Close()
	}
}

// messageLoop renders every server message until the connection ends.
func (c *Client) messageLoop() {
	defer close(c.readerDone)
	for {
		msg, err := c.dec.Next()
		if err != nil {
			if errors.Is(err, network.ErrMalformedMessage) {
				log.Warn().Err(err).Msg("discarding malformed frame from server")
				continue
			}
			c.display.PrintServerStatus("connection closed")
			return
		}
		c.handleMessage(msg)
	}
}

func (c *Client) handleMessage(msg *network.Message) {
	switch msg.Action {
	case network.ActionGameList:
		c.display.PrintGameList(msg.Games)
	case network.ActionStart:
		c.setGame(msg.GameID, msg.Color)
		c.display.PrintStart(msg.GameID, msg.Color)
	case network.ActionUpdate:
		if msg.State != nil {
			c.display.PrintState(msg.State)
		}
	case network.ActionChat:
		c.display.PrintChat(msg.Message)
	case network.ActionError:
		c.display.PrintError(msg.Message)
	case network.ActionOpponentDisconnected:
		c.display.PrintWarning("opponent disconnected; the game is held open for them")
	case network.ActionReconnected:
		c.setGame(msg.GameID, msg.Color)
		c.display.PrintReconnected(msg.GameID, msg.Color)
	case network.ActionGameOver:
		c.display.PrintGameOver(msg.Reason)
	default:
		log.Debug().Str("action", string(msg.Action)).Msg("ignoring unknown server action")
	}
}

// inputLoop reads user commands until quit or stdin EOF.
func (c *Client) inputLoop() error {
	for {
		cmd, err := c.input.Next()
		if err != nil {
			return nil
		}
		switch cmd.Kind {
		case CmdQuit:
			return nil
		case CmdHelp:
			c.display.PrintHelp()
		case CmdMove:
			c.sendMessage(network.NewMoveMessage(c.currentGame(), cmd.Arg))
		case CmdChat:
			c.sendMessage(&network.Message{Action: network.ActionChat, Message: cmd.Arg, GameID: c.currentGame()})
		case CmdReconnect:
			c.sendMessage(network.NewReconnectMessage(cmd.GameID))
		case CmdWatch:
			c.sendMessage(&network.Message{GameID: cmd.GameID})
		}
	}
}

func (c *Client) sendMessage(msg *network.Message) {
	if err := c.enc.Encode(msg); err != nil {
		c.display.PrintError(fmt.Sprintf("send failed: %v", err))
	}
}

func (c *Client) setGame(gameID int, color string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gameID = gameID
	c.color = color
}

func (c *Client) currentGame() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gameID
}
