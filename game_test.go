package main

import (
	"fmt"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *Config {
	return &Config{
		bind:          "127.0.0.1",
		port:          8080,
		maxPlayers:    10,
		roundDelay:    5 * time.Second,
		skipThreshold: 12,
		turnTimeout:   45 * time.Second,
		wordChoices:   6,
	}
}

func testClient(id string) *Client {
	return &Client{playerID: id, send: make(chan any, 256)}
}

// testRoom wires a room whose handlers are invoked directly, without running
// the event loop, so tests stay single-threaded and deterministic.
func testRoom(t *testing.T, clock clockwork.Clock, names ...string) (*Room, map[string]*Player) {
	t.Helper()
	require.NotEmpty(t, names)

	cfg := testConfig()
	dir := &RoomDirectory{
		cfg:       cfg,
		scheduler: newTurnScheduler(clock),
		rooms:     make(map[string]*Room),
	}

	host := testClient("p0")
	room := newRoom("TESTAA", host, names[0], cfg, dir.scheduler, dir)
	dir.rooms[room.id] = room

	for i, name := range names[1:] {
		jr := joinRequest{
			client: testClient(fmt.Sprintf("p%d", i+1)),
			name:   name,
			reply:  make(chan error, 1),
		}
		room.handleJoin(jr)
		require.NoError(t, <-jr.reply)
	}

	players := make(map[string]*Player, len(names))
	for _, p := range room.players {
		players[p.Name] = p
	}
	require.Len(t, players, len(names))

	return room, players
}

// enterPlaying drives a room through picking into the playing phase with a
// custom word assigned to every player.
func enterPlaying(t *testing.T, room *Room) {
	t.Helper()

	var starter *Player
	for _, p := range room.players {
		starter = p
		break
	}
	room.handleStartGame(starter)
	require.Equal(t, PhasePicking, room.phase)

	for giver, receiver := range room.pairs {
		room.handleSubmitCustomWord(room.players[giver], "secret-"+receiver, "hint-"+receiver)
	}
	for _, p := range room.players {
		room.handleSetReady(p, true)
	}
	require.Equal(t, PhasePlaying, room.phase)
}

func drainClient(c *Client) []any {
	var out []any
	for {
		select {
		case m := <-c.send:
			out = append(out, m)
		default:
			return out
		}
	}
}

func findMessage[T any](msgs []any) (T, bool) {
	for _, m := range msgs {
		if v, ok := m.(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

func awaitMessage[T any](t *testing.T, c *Client) T {
	t.Helper()
	deadline := time.After(time.Second)
	for {
		select {
		case m := <-c.send:
			if v, ok := m.(T); ok {
				return v
			}
		case <-deadline:
			var zero T
			t.Fatalf("timed out waiting for %T", zero)
		}
	}
}

func TestTwoPlayerRound(t *testing.T) {
	clock := clockwork.NewFakeClock()
	room, players := testRoom(t, clock, "alice", "bob")
	alice, bob := players["alice"], players["bob"]

	room.handleStartGame(alice)
	require.Equal(t, PhasePicking, room.phase)
	require.Equal(t, bob.ID, room.pairs[alice.ID])
	require.Equal(t, alice.ID, room.pairs[bob.ID])
	require.Equal(t, 2, room.wordsToSubmit)

	choices := awaitMessage[PickingStartedMessage](t, alice.client)
	assert.Equal(t, "bob", choices.PartnerName)
	assert.Len(t, choices.Choices, room.cfg.wordChoices)

	room.handleSubmitWord(alice, "Batman")
	require.NotNil(t, bob.CurrentWord)
	assert.Equal(t, "Batman", bob.CurrentWord.Word)

	room.handleSubmitWord(bob, "Robert Lewandowski")
	require.NotNil(t, alice.CurrentWord)
	assert.Equal(t, "Robert Lewandowski", alice.CurrentWord.Word)
	assert.Equal(t, 0, room.wordsToSubmit)

	room.handleSetReady(alice, true)
	require.Equal(t, PhasePicking, room.phase)
	room.handleSetReady(bob, true)
	require.Equal(t, PhasePlaying, room.phase)
	require.Equal(t, 1, room.turnCount)
	require.NotEmpty(t, room.currentTurn)

	first := room.players[room.currentTurn]
	second := alice
	if first == alice {
		second = bob
	}

	room.handleGuess(first, "Gandalf")
	assert.Equal(t, first.ID, room.currentTurn, "incorrect guess should not consume the turn")
	assert.Equal(t, 0, first.Score)
	assert.False(t, first.HasGuessed)

	room.handleGuess(first, "  "+strings.ToUpper(first.CurrentWord.Word)+" ")
	assert.Equal(t, 1, first.Score)
	assert.True(t, first.HasGuessed)
	assert.Equal(t, second.ID, room.currentTurn)

	room.handleGuess(second, strings.ToLower(second.CurrentWord.Word))
	assert.Equal(t, 1, second.Score)
	assert.Empty(t, room.currentTurn)

	msgs := drainClient(first.client)
	_, finished := findMessage[RoundFinishedMessage](msgs)
	assert.True(t, finished, "roundFinished should be broadcast after the last correct guess")

	clock.Advance(room.cfg.roundDelay)
	select {
	case <-room.roundResets:
	case <-time.After(time.Second):
		t.Fatal("round reset was never delivered")
	}
	room.handleRoundReset()

	assert.Equal(t, PhaseWaiting, room.phase)
	assert.Equal(t, 1, first.Score, "scores persist across rounds")
	assert.Nil(t, first.CurrentWord)
	assert.False(t, first.IsReady)
	assert.False(t, first.HasGuessed)

	msgs = drainClient(second.client)
	_, lobby := findMessage[BackToLobbyMessage](msgs)
	assert.True(t, lobby)
}

func TestPairingCycleProperties(t *testing.T) {
	room, players := testRoom(t, clockwork.NewFakeClock(), "a", "b", "c", "d", "e")

	room.handleStartGame(players["a"])

	require.Len(t, room.turnOrder, 5)
	require.Len(t, room.pairs, 5)

	receivers := make(map[string]int)
	for giver, receiver := range room.pairs {
		assert.NotEqual(t, giver, receiver, "nobody should receive their own word")
		receivers[receiver]++
	}
	for id := range room.players {
		assert.Equal(t, 1, receivers[id], "every player should receive exactly once")
		assert.Contains(t, room.turnOrder, id)
	}
}

func TestPairingAvoidsPreviousPartner(t *testing.T) {
	room, players := testRoom(t, clockwork.NewFakeClock(), "a", "b", "c")

	players["a"].LastPartnerID = players["b"].ID
	players["b"].LastPartnerID = players["c"].ID
	players["c"].LastPartnerID = players["a"].ID

	room.handleStartGame(players["a"])

	for giver, receiver := range room.pairs {
		assert.NotEqual(t, room.players[giver].LastPartnerID, receiver,
			"giver %s was re-paired with last round's receiver", giver)
	}
}

func TestResubmissionCountsOnce(t *testing.T) {
	room, players := testRoom(t, clockwork.NewFakeClock(), "a", "b", "c")

	room.handleStartGame(players["a"])
	require.Equal(t, 3, room.wordsToSubmit)

	giver := room.players[room.turnOrder[0]]
	receiver := room.players[room.pairs[giver.ID]]

	room.handleSubmitCustomWord(giver, "first", "")
	assert.Equal(t, 2, room.wordsToSubmit)
	require.NotNil(t, receiver.CurrentWord)
	assert.Equal(t, "Custom word", receiver.CurrentWord.Hint)

	room.handleSubmitCustomWord(giver, "second", "a hint")
	assert.Equal(t, 2, room.wordsToSubmit, "revised submission must not double-count")
	assert.Equal(t, "second", receiver.CurrentWord.Word)
	assert.Equal(t, "a hint", receiver.CurrentWord.Hint)
}

func TestRotationSkipsGuessedPlayers(t *testing.T) {
	room, _ := testRoom(t, clockwork.NewFakeClock(), "a", "b", "c")
	enterPlaying(t, room)

	first := room.players[room.currentTurn]
	idx := indexOf(room.turnOrder, first.ID)
	second := room.players[room.turnOrder[(idx+1)%3]]
	third := room.players[room.turnOrder[(idx+2)%3]]

	room.handleGuess(first, first.CurrentWord.Word)
	require.True(t, first.HasGuessed)
	assert.Equal(t, second.ID, room.currentTurn)

	room.handleSkip(second)
	assert.Equal(t, third.ID, room.currentTurn)

	room.handleSkip(third)
	assert.Equal(t, second.ID, room.currentTurn, "rotation must skip players who already guessed")
}

func TestTurnTimeoutAdvancesTurn(t *testing.T) {
	clock := clockwork.NewFakeClock()
	room, _ := testRoom(t, clock, "a", "b")
	enterPlaying(t, room)

	holder := room.currentTurn
	require.Equal(t, 1, room.turnCount)

	clock.Advance(room.cfg.turnTimeout)

	var epoch int
	select {
	case epoch = <-room.timeouts:
	case <-time.After(time.Second):
		t.Fatal("turn timeout was never delivered")
	}
	require.Equal(t, 1, epoch)

	room.handleTurnTimeout(epoch)
	assert.NotEqual(t, holder, room.currentTurn)
	assert.Equal(t, 2, room.turnCount)

	ended, ok := findMessage[TurnEndedMessage](drainClient(room.players[room.currentTurn].client))
	require.True(t, ok)
	assert.Equal(t, holder, ended.PlayerID)

	// A stale firing from the expired turn must be discarded.
	room.handleTurnTimeout(1)
	assert.Equal(t, 2, room.turnCount)
	_, ok = findMessage[TurnEndedMessage](drainClient(room.players[room.currentTurn].client))
	assert.False(t, ok)
}

func TestTurnHolderDisconnect(t *testing.T) {
	room, _ := testRoom(t, clockwork.NewFakeClock(), "a", "b", "c")
	enterPlaying(t, room)

	holder := room.currentTurn
	order := slices.Clone(room.turnOrder)
	idx := indexOf(order, holder)
	successor := order[(idx+1)%len(order)]

	holderReceiver := room.pairs[holder]
	var holderGiver string
	for g, rcv := range room.pairs {
		if rcv == holder {
			holderGiver = g
		}
	}
	turnsBefore := room.turnCount

	room.handleLeave(room.players[holder].client)

	assert.Equal(t, successor, room.currentTurn, "turn must pass to the departed holder's successor")
	assert.Equal(t, turnsBefore+1, room.turnCount)
	assert.Len(t, room.players, 2)
	assert.NotContains(t, room.turnOrder, holder)

	_, stillGiver := room.pairs[holder]
	assert.False(t, stillGiver)
	assert.Equal(t, holderReceiver, room.pairs[holderGiver], "departed player's giver inherits their receiver")
}

func TestLeaveDuringPickingUnblocksReady(t *testing.T) {
	room, players := testRoom(t, clockwork.NewFakeClock(), "alice", "bob", "carol")

	room.handleStartGame(players["alice"])
	for giver, receiver := range room.pairs {
		room.handleSubmitCustomWord(room.players[giver], "secret-"+receiver, "")
	}
	room.handleSetReady(players["alice"], true)
	room.handleSetReady(players["bob"], true)
	require.Equal(t, PhasePicking, room.phase)

	room.handleLeave(players["carol"].client)

	assert.Equal(t, PhasePlaying, room.phase, "the departed player was the last one blocking the ready gate")
}

func TestAbortBelowTwoPlayers(t *testing.T) {
	room, players := testRoom(t, clockwork.NewFakeClock(), "alice", "bob")
	enterPlaying(t, room)

	drainClient(players["bob"].client)
	room.handleLeave(players["alice"].client)

	_, ok := findMessage[GameAbortedMessage](drainClient(players["bob"].client))
	assert.True(t, ok, "remaining player should be told the game was aborted")

	_, exists := room.dir.rooms[room.id]
	assert.False(t, exists, "an aborted room must be removed from the directory")
}

func TestHintAfterSkipThreshold(t *testing.T) {
	room, _ := testRoom(t, clockwork.NewFakeClock(), "a", "b")
	enterPlaying(t, room)

	holder := room.players[room.currentTurn]
	drainClient(holder.client)

	room.handleHint(holder)
	_, ok := findMessage[HintMessage](drainClient(holder.client))
	assert.False(t, ok, "hint must stay locked below the skip threshold")

	holder.SkipCount = room.cfg.skipThreshold
	room.handleHint(holder)
	hint, ok := findMessage[HintMessage](drainClient(holder.client))
	require.True(t, ok)
	assert.Equal(t, holder.CurrentWord.Hint, hint.Hint)

	room.handleHint(holder)
	_, ok = findMessage[HintMessage](drainClient(holder.client))
	assert.False(t, ok, "hint is revealed at most once per round")
}

func TestJoinGuards(t *testing.T) {
	room, players := testRoom(t, clockwork.NewFakeClock(), "alice", "bob")

	room.cfg.maxPlayers = 2
	jr := joinRequest{client: testClient("late"), name: "carol", reply: make(chan error, 1)}
	room.handleJoin(jr)
	assert.ErrorIs(t, <-jr.reply, ErrRoomFull)

	room.cfg.maxPlayers = 10
	room.handleStartGame(players["alice"])
	jr = joinRequest{client: testClient("later"), name: "dave", reply: make(chan error, 1)}
	room.handleJoin(jr)
	assert.ErrorIs(t, <-jr.reply, ErrGameInProgress)
}

func TestGuessOutOfTurnRejected(t *testing.T) {
	room, _ := testRoom(t, clockwork.NewFakeClock(), "a", "b")
	enterPlaying(t, room)

	var waiting *Player
	for _, p := range room.players {
		if p.ID != room.currentTurn {
			waiting = p
		}
	}
	drainClient(waiting.client)

	room.handleGuess(waiting, waiting.CurrentWord.Word)

	_, ok := findMessage[GameErrorMessage](drainClient(waiting.client))
	assert.True(t, ok)
	assert.False(t, waiting.HasGuessed)
}
