package main

import "errors"

// Room-level failures reported back to the acting player only; none of these
// end a room.
var (
	ErrRoomNotFound     = errors.New("room not found")
	ErrRoomFull         = errors.New("room is full")
	ErrGameInProgress   = errors.New("game already in progress")
	ErrNotEnoughPlayers = errors.New("at least 2 players are needed to start")
	ErrInvalidActor     = errors.New("action not permitted for this player")

	// ErrRoomCapacity means the code space is saturated and a free room
	// code could not be generated within the attempt bound.
	ErrRoomCapacity = errors.New("unable to allocate a room code")
)
