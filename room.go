package main

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

type Phase string

const (
	PhaseWaiting Phase = "waiting"
	PhasePicking Phase = "picking"
	PhasePlaying Phase = "playing"
)

type actionEnvelope struct {
	client *Client
	msg    ClientMessage
}

type joinRequest struct {
	client *Client
	name   string
	reply  chan error
}

// Room is one isolated game session. All game state is owned by the room's
// event loop goroutine: inbound actions, joins, disconnects, and timer firings
// are serialized onto the loop's channels, so handlers never race each other.
type Room struct {
	id     string
	hostID string
	cfg    *Config

	scheduler *TurnScheduler
	dir       *RoomDirectory

	phase         Phase
	players       map[string]*Player
	order         []string // join order, for stable snapshots
	clients       map[*Client]bool
	pairs         map[string]string // giver -> receiver
	turnOrder     []string
	wordsToSubmit int
	currentTurn   string // empty when nobody holds the turn
	turnCount     int

	actions     chan actionEnvelope
	joins       chan joinRequest
	unreg       chan *Client
	timeouts    chan int
	roundResets chan struct{}
	done        chan struct{}
	closeOnce   sync.Once

	// lastActive is the only field read outside the event loop (by the
	// directory's idle reaper), so it gets its own lock.
	activeMu   sync.RWMutex
	lastActive time.Time
}

func newRoom(id string, host *Client, hostName string, cfg *Config, scheduler *TurnScheduler, dir *RoomDirectory) *Room {
	r := &Room{
		id:          id,
		hostID:      host.playerID,
		cfg:         cfg,
		scheduler:   scheduler,
		dir:         dir,
		phase:       PhaseWaiting,
		players:     make(map[string]*Player),
		clients:     make(map[*Client]bool),
		pairs:       make(map[string]string),
		actions:     make(chan actionEnvelope, 64),
		joins:       make(chan joinRequest),
		unreg:       make(chan *Client, 16),
		timeouts:    make(chan int, 4),
		roundResets: make(chan struct{}, 1),
		done:        make(chan struct{}),
		lastActive:  time.Now(),
	}

	r.players[host.playerID] = newPlayer(host.playerID, hostName, host)
	r.order = append(r.order, host.playerID)
	r.clients[host] = true

	return r
}

func (r *Room) run() {
	for {
		select {
		case <-r.done:
			r.shutdown()
			return
		case jr := <-r.joins:
			r.handleJoin(jr)
		case c := <-r.unreg:
			r.handleLeave(c)
		case a := <-r.actions:
			r.handleAction(a.client, a.msg)
		case epoch := <-r.timeouts:
			r.handleTurnTimeout(epoch)
		case <-r.roundResets:
			r.handleRoundReset()
		}
	}
}

// enqueue hands an inbound action to the room's event loop. Actions for a
// room that has already been torn down are dropped.
func (r *Room) enqueue(c *Client, msg ClientMessage) {
	select {
	case r.actions <- actionEnvelope{client: c, msg: msg}:
	case <-r.done:
	}
}

// leave reports a disconnected client to the event loop.
func (r *Room) leave(c *Client) {
	select {
	case r.unreg <- c:
	case <-r.done:
	}
}

// requestJoin forwards a join into the event loop and waits for the verdict.
func (r *Room) requestJoin(c *Client, name string) error {
	jr := joinRequest{client: c, name: name, reply: make(chan error, 1)}
	select {
	case r.joins <- jr:
	case <-r.done:
		return ErrRoomNotFound
	}
	select {
	case err := <-jr.reply:
		return err
	case <-r.done:
		return ErrRoomNotFound
	}
}

// deliverTimeout is invoked by the turn scheduler. The epoch is the turn
// counter captured when the timer was armed; the handler discards firings
// whose epoch no longer matches.
func (r *Room) deliverTimeout(epoch int) {
	select {
	case r.timeouts <- epoch:
	case <-r.done:
	}
}

// deliverRoundReset is invoked by the scheduler after the inter-round pause.
func (r *Room) deliverRoundReset() {
	select {
	case r.roundResets <- struct{}{}:
	case <-r.done:
	}
}

// close signals the event loop to shut down. Safe to call more than once and
// from any goroutine; the loop itself closes the client channels.
func (r *Room) close() {
	r.closeOnce.Do(func() {
		close(r.done)
	})
}

func (r *Room) shutdown() {
	for c := range r.clients {
		delete(r.clients, c)
		close(c.send)
	}
	log.Debug().Str("room_id", r.id).Msg("room shut down")
}

func (r *Room) touch() {
	r.activeMu.Lock()
	r.lastActive = time.Now()
	r.activeMu.Unlock()
}

func (r *Room) idleSince() time.Time {
	r.activeMu.RLock()
	defer r.activeMu.RUnlock()
	return r.lastActive
}

func (r *Room) snapshots() []PlayerSnapshot {
	out := make([]PlayerSnapshot, 0, len(r.players))
	for _, id := range r.order {
		if p, ok := r.players[id]; ok {
			out = append(out, p.snapshot())
		}
	}
	return out
}

// broadcast sends to every connected client, dropping clients whose send
// buffer is full.
func (r *Room) broadcast(msg any) {
	for c := range r.clients {
		select {
		case c.send <- msg:
		default:
			r.dropClient(c)
		}
	}
}

// unicast sends to a single player, if their connection is still registered.
func (r *Room) unicast(p *Player, msg any) {
	c := p.client
	if !r.clients[c] {
		return
	}
	select {
	case c.send <- msg:
	default:
		r.dropClient(c)
	}
}

// dropClient removes a client's transport; the player entry itself is removed
// when the closed connection surfaces as a leave event.
func (r *Room) dropClient(c *Client) {
	if r.clients[c] {
		delete(r.clients, c)
		close(c.send)
	}
}

func (r *Room) broadcastPlayers() {
	r.broadcast(UpdatePlayersMessage{Type: "updatePlayers", Players: r.snapshots()})
}

func (r *Room) handleJoin(jr joinRequest) {
	r.touch()

	if r.phase != PhaseWaiting {
		jr.reply <- ErrGameInProgress
		return
	}
	if len(r.players) >= r.cfg.maxPlayers {
		jr.reply <- ErrRoomFull
		return
	}

	p := newPlayer(jr.client.playerID, jr.name, jr.client)
	r.players[p.ID] = p
	r.order = append(r.order, p.ID)
	r.clients[jr.client] = true
	jr.reply <- nil

	log.Info().
		Str("room_id", r.id).
		Str("player_id", p.ID).
		Str("player", p.Name).
		Msg("player joined")

	r.unicast(p, JoinedRoomMessage{
		Type:    "joinedRoom",
		Success: true,
		RoomID:  r.id,
		HostID:  r.hostID,
		Players: r.snapshots(),
	})
	r.broadcastPlayers()
}

func (r *Room) handleAction(c *Client, msg ClientMessage) {
	p, ok := r.players[c.playerID]
	if !ok {
		r.errorTo(c, ErrInvalidActor)
		return
	}

	r.touch()

	switch msg.Type {
	case "startGame":
		r.handleStartGame(p)
	case "submitWord":
		r.handleSubmitWord(p, msg.Word)
	case "submitCustomWord":
		r.handleSubmitCustomWord(p, msg.CustomWord, msg.CustomHint)
	case "setReady":
		r.handleSetReady(p, true)
	case "setUnready":
		r.handleSetReady(p, false)
	case "makeGuess":
		r.handleGuess(p, msg.Guess)
	case "skipTurn":
		r.handleSkip(p)
	case "getHint":
		r.handleHint(p)
	case "startAgain":
		r.handleStartAgain(p)
	default:
		// ignore unknown types
	}
}

func (r *Room) errorTo(c *Client, err error) {
	if !r.clients[c] {
		return
	}
	select {
	case c.send <- GameErrorMessage{Type: "gameError", Message: err.Error()}:
	default:
		r.dropClient(c)
	}
}
