package main

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

const (
	roomCodeLength = 6
	roomCodeChars  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// codeAttempts bounds collision retries during room creation; running
	// out means the code space is effectively saturated.
	codeAttempts = 32
)

// RoomDirectory owns every live Room and its timer slot: rooms are created,
// looked up, and torn down only through it.
type RoomDirectory struct {
	cfg       *Config
	scheduler *TurnScheduler

	mu    sync.Mutex
	rooms map[string]*Room
}

func newRoomDirectory(cfg *Config, clock clockwork.Clock) *RoomDirectory {
	d := &RoomDirectory{
		cfg:       cfg,
		scheduler: newTurnScheduler(clock),
		rooms:     make(map[string]*Room),
	}
	if cfg.sessionTimeout > 0 {
		go d.reaperLoop()
	}
	return d
}

// CreateRoom allocates a fresh room in the waiting phase with the creating
// player as host and sole member, and starts its event loop.
func (d *RoomDirectory) CreateRoom(host *Client, hostName string) (*Room, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	id, err := d.newRoomCode()
	if err != nil {
		return nil, err
	}

	room := newRoom(id, host, hostName, d.cfg, d.scheduler, d)
	d.rooms[id] = room
	go room.run()

	log.Info().
		Str("room_id", id).
		Str("host", hostName).
		Msg("room created")

	host.send <- RoomCreatedMessage{
		Type:    "roomCreated",
		RoomID:  id,
		HostID:  host.playerID,
		Players: room.snapshots(),
	}

	return room, nil
}

// JoinRoom adds a player to an existing room, or reports why it cannot.
func (d *RoomDirectory) JoinRoom(roomID string, c *Client, name string) (*Room, error) {
	d.mu.Lock()
	room, ok := d.rooms[roomID]
	d.mu.Unlock()

	if !ok {
		return nil, ErrRoomNotFound
	}
	if err := room.requestJoin(c, name); err != nil {
		return nil, err
	}
	return room, nil
}

// Remove tears a room down: its timer slot is cancelled and its event loop
// told to shut down. Removing an unknown room is a no-op, which makes late
// timer firings against vanished rooms harmless.
func (d *RoomDirectory) Remove(roomID string) {
	d.mu.Lock()
	room, ok := d.rooms[roomID]
	if ok {
		delete(d.rooms, roomID)
	}
	d.mu.Unlock()

	if !ok {
		return
	}

	d.scheduler.Cancel(roomID)
	room.close()

	log.Info().Str("room_id", roomID).Msg("room removed")
}

// newRoomCode generates a short collision-resistant room code, retrying a
// bounded number of times before signalling capacity exhaustion.
func (d *RoomDirectory) newRoomCode() (string, error) {
	for attempt := 0; attempt < codeAttempts; attempt++ {
		buf := make([]byte, roomCodeLength)
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		out := make([]byte, roomCodeLength)
		for i := range out {
			out[i] = roomCodeChars[int(buf[i])%len(roomCodeChars)]
		}
		id := string(out)

		if _, exists := d.rooms[id]; !exists {
			return id, nil
		}
	}
	return "", ErrRoomCapacity
}

// reaperLoop periodically removes rooms that have been idle longer than the
// configured session timeout.
func (d *RoomDirectory) reaperLoop() {
	ticker := time.NewTicker(d.cfg.sessionTimeout / 2)
	for range ticker.C {
		cutoff := time.Now().Add(-d.cfg.sessionTimeout)

		d.mu.Lock()
		stale := make([]string, 0)
		for id, room := range d.rooms {
			if room.idleSince().Before(cutoff) {
				stale = append(stale, id)
			}
		}
		d.mu.Unlock()

		for _, id := range stale {
			log.Debug().Str("room_id", id).Msg("reaping idle room")
			d.Remove(id)
		}
	}
}
