package main

// Messages coming from clients
type ClientMessage struct {
	Type       string `json:"type"`                 // "createRoom", "joinRoom", "startGame", "submitWord", "submitCustomWord", "setReady", "setUnready", "makeGuess", "skipTurn", "getHint", "startAgain"
	PlayerName string `json:"playerName,omitempty"` // createRoom / joinRoom
	RoomID     string `json:"roomId,omitempty"`     // everything except createRoom
	Word       string `json:"word,omitempty"`       // submitWord
	CustomWord string `json:"customWord,omitempty"` // submitCustomWord
	CustomHint string `json:"customHint,omitempty"` // submitCustomWord
	Guess      string `json:"guess,omitempty"`      // makeGuess
}

// PlayerSnapshot is the per-player view included in room-wide updates.
// Clients are responsible for hiding a player's own word from them.
type PlayerSnapshot struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Score       int    `json:"score"`
	CurrentWord *Word  `json:"currentWord"`
	IsReady     bool   `json:"isReady"`
	HasGuessed  bool   `json:"hasGuessed"`
	SkipCount   int    `json:"skipCount"`
}

// Sent to the creating player once their room exists.
type RoomCreatedMessage struct {
	Type    string           `json:"type"` // "roomCreated"
	RoomID  string           `json:"roomId"`
	HostID  string           `json:"hostId"`
	Players []PlayerSnapshot `json:"players"`
}

// Sent to a joining player on success.
type JoinedRoomMessage struct {
	Type    string           `json:"type"` // "joinedRoom"
	Success bool             `json:"success"`
	RoomID  string           `json:"roomId"`
	HostID  string           `json:"hostId"`
	Players []PlayerSnapshot `json:"players"`
}

// Sent to a single client when a join is rejected.
type JoinErrorMessage struct {
	Type    string `json:"type"` // "joinError"
	Message string `json:"message"`
}

// Full player snapshot, broadcast after every visible state change.
type UpdatePlayersMessage struct {
	Type    string           `json:"type"` // "updatePlayers"
	Players []PlayerSnapshot `json:"players"`
}

// Unicast to each giver when the picking phase starts.
type PickingStartedMessage struct {
	Type        string   `json:"type"` // "pickingStarted"
	PartnerName string   `json:"partnerName"`
	Choices     []string `json:"choices"`
}

// Unicast ack to a giver whose submission was accepted.
type WordSubmittedMessage struct {
	Type string `json:"type"` // "wordSubmitted"
}

// Broadcast when every player's word has been assigned and all are ready.
type AllWordsSubmittedMessage struct {
	Type string `json:"type"` // "allWordsSubmitted"
}

// Broadcast after every guess, correct or not.
type GuessMadeMessage struct {
	Type      string `json:"type"` // "guessMade"
	PlayerID  string `json:"playerId"`
	Guess     string `json:"guess"`
	IsCorrect bool   `json:"isCorrect"`
}

// Broadcast whenever the turn holder changes.
type TurnChangedMessage struct {
	Type        string `json:"type"` // "turnChanged"
	CurrentTurn string `json:"currentTurn"`
	TurnCount   int    `json:"turnCount"`
}

// Broadcast when a player voluntarily skips their turn.
type TurnSkippedMessage struct {
	Type     string `json:"type"` // "turnSkipped"
	PlayerID string `json:"playerId"`
}

// Broadcast when a turn timer expires before any action.
type TurnEndedMessage struct {
	Type     string `json:"type"` // "turnEnded"
	PlayerID string `json:"playerId"`
}

// Broadcast once per round, when the last player guesses correctly.
type RoundFinishedMessage struct {
	Type string `json:"type"` // "roundFinished"
}

// Broadcast after the inter-round pause when the room returns to the lobby.
type BackToLobbyMessage struct {
	Type string `json:"type"` // "backToLobby"
}

// Unicast hint reveal for the requester's own word.
type HintMessage struct {
	Type string `json:"type"` // "hint"
	Hint string `json:"hint"`
}

// Unicast error for rejected actions; never fatal to the room.
type GameErrorMessage struct {
	Type    string `json:"type"` // "gameError"
	Message string `json:"message"`
}

// Broadcast when a room is torn down mid-game.
type GameAbortedMessage struct {
	Type    string `json:"type"` // "gameAborted"
	Message string `json:"message"`
}
