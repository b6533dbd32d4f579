package main

import (
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Player holds the game state for one connected member of a room. All fields
// are owned by the room's event loop; nothing outside it mutates them.
type Player struct {
	ID            string
	Name          string
	Score         int
	CurrentWord   *Word
	IsReady       bool
	HasGuessed    bool
	SkipCount     int
	LastPartnerID string

	// picked guards wordsToSubmit against double-decrement when a giver
	// revises their submission for this receiver.
	picked bool

	// hintShown makes the skip-threshold hint reveal a one-time event
	// per round.
	hintShown bool

	client *Client
}

func newPlayer(id, name string, c *Client) *Player {
	return &Player{
		ID:     id,
		Name:   name,
		client: c,
	}
}

func (p *Player) snapshot() PlayerSnapshot {
	return PlayerSnapshot{
		ID:          p.ID,
		Name:        p.Name,
		Score:       p.Score,
		CurrentWord: p.CurrentWord,
		IsReady:     p.IsReady,
		HasGuessed:  p.HasGuessed,
		SkipCount:   p.SkipCount,
	}
}

// resetRound clears the per-round fields; score persists across rounds.
func (p *Player) resetRound() {
	p.CurrentWord = nil
	p.IsReady = false
	p.HasGuessed = false
	p.SkipCount = 0
	p.picked = false
	p.hintShown = false
}

// Client is one websocket connection: the ephemeral handle that identifies a
// player for the lifetime of the connection.
type Client struct {
	conn     *websocket.Conn
	send     chan any
	playerID string
	room     *Room
}

func newClient(playerID string, conn *websocket.Conn) *Client {
	return &Client{
		conn:     conn,
		send:     make(chan any, 16),
		playerID: playerID,
	}
}

func (c *Client) readPump(dir *RoomDirectory) {
	defer func() {
		if c.room != nil {
			c.room.leave(c)
		}
		_ = c.conn.Close()
	}()

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}

		switch msg.Type {
		case "createRoom":
			if c.room != nil {
				continue
			}
			room, err := dir.CreateRoom(c, msg.PlayerName)
			if err != nil {
				c.send <- GameErrorMessage{Type: "gameError", Message: err.Error()}
				continue
			}
			c.room = room

		case "joinRoom":
			if c.room != nil {
				continue
			}
			room, err := dir.JoinRoom(msg.RoomID, c, msg.PlayerName)
			if err != nil {
				c.send <- JoinErrorMessage{Type: "joinError", Message: err.Error()}
				continue
			}
			c.room = room

		default:
			if c.room == nil {
				continue
			}
			if msg.RoomID != "" && msg.RoomID != c.room.id {
				log.Debug().
					Str("player_id", c.playerID).
					Str("room_id", msg.RoomID).
					Msg("dropping action addressed to a different room")
				continue
			}
			c.room.enqueue(c, msg)
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}
