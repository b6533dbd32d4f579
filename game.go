package main

import (
	"math/rand/v2"
	"strings"

	"github.com/rs/zerolog/log"
)

// pairingAttempts bounds the re-shuffles spent looking for a turn order whose
// cyclic pairing repeats no giver/receiver edge from the previous round. When
// the bound is exhausted the last candidate is accepted; a repeat partner is a
// degradation, not an error.
const pairingAttempts = 50

func (r *Room) handleStartGame(p *Player) {
	if r.phase != PhaseWaiting {
		r.errorTo(p.client, ErrGameInProgress)
		return
	}
	if len(r.players) < 2 {
		r.errorTo(p.client, ErrNotEnoughPlayers)
		return
	}
	r.startPicking()
}

func (r *Room) handleStartAgain(p *Player) {
	if r.phase != PhaseWaiting || p.ID != r.hostID {
		r.errorTo(p.client, ErrInvalidActor)
		return
	}
	if len(r.players) < 2 {
		r.errorTo(p.client, ErrNotEnoughPlayers)
		return
	}
	r.startPicking()
	r.broadcastPlayers()
}

// startPicking moves the room into the picking phase: a fresh shuffled turn
// order, a cyclic giver -> receiver pairing over it, and a private word-choice
// message to every giver.
func (r *Room) startPicking() {
	r.phase = PhasePicking

	ids := make([]string, 0, len(r.players))
	for _, id := range r.order {
		ids = append(ids, id)
	}
	shuffle(ids)

	for attempt := 0; attempt < pairingAttempts && !r.validPairing(ids); attempt++ {
		shuffle(ids)
	}

	r.turnOrder = ids
	r.pairs = make(map[string]string, len(ids))
	for i, giver := range ids {
		r.pairs[giver] = ids[(i+1)%len(ids)]
	}

	r.wordsToSubmit = len(ids)
	r.turnCount = 0
	r.currentTurn = ""

	log.Info().
		Str("room_id", r.id).
		Int("players", len(ids)).
		Msg("picking phase started")

	for giver, receiver := range r.pairs {
		r.unicast(r.players[giver], PickingStartedMessage{
			Type:        "pickingStarted",
			PartnerName: r.players[receiver].Name,
			Choices:     sampleWords(r.cfg.wordChoices),
		})
	}
}

// validPairing reports whether the cyclic pairing induced by order re-pairs
// any giver with their previous round's receiver.
func (r *Room) validPairing(order []string) bool {
	for i, giver := range order {
		receiver := order[(i+1)%len(order)]
		if p, ok := r.players[giver]; ok && p.LastPartnerID == receiver {
			return false
		}
	}
	return true
}

func shuffle(ids []string) {
	rand.Shuffle(len(ids), func(i, j int) {
		ids[i], ids[j] = ids[j], ids[i]
	})
}

func (r *Room) handleSubmitWord(p *Player, word string) {
	if r.phase != PhasePicking {
		return
	}
	receiverID, ok := r.pairs[p.ID]
	if !ok {
		return
	}
	chosen, ok := lookupWord(word)
	if !ok {
		log.Debug().
			Str("room_id", r.id).
			Str("player_id", p.ID).
			Str("word", word).
			Msg("submitted word not in catalog")
		return
	}
	r.assignWord(p, receiverID, chosen)
}

func (r *Room) handleSubmitCustomWord(p *Player, customWord, customHint string) {
	if r.phase != PhasePicking {
		return
	}
	receiverID, ok := r.pairs[p.ID]
	if !ok {
		return
	}

	text := strings.TrimSpace(customWord)
	if text == "" {
		return
	}
	hint := strings.TrimSpace(customHint)
	if hint == "" {
		hint = "Custom word"
	}

	r.assignWord(p, receiverID, Word{Word: text, Hint: hint})
}

// assignWord writes the giver's choice onto the receiver. The receiver's
// picked flag guards wordsToSubmit: only the first-ever assignment this round
// decrements it, so a giver revising their choice cannot double-count.
func (r *Room) assignWord(giver *Player, receiverID string, w Word) {
	receiver, ok := r.players[receiverID]
	if !ok {
		return
	}

	if !receiver.picked {
		r.wordsToSubmit--
		receiver.picked = true
	}
	receiver.CurrentWord = &w

	r.unicast(giver, WordSubmittedMessage{Type: "wordSubmitted"})
	r.broadcastPlayers()
}

func (r *Room) handleSetReady(p *Player, ready bool) {
	if r.phase != PhasePicking {
		return
	}
	p.IsReady = ready
	r.broadcastPlayers()

	if ready && r.allReady() {
		r.beginPlaying()
	}
}

// allReady is the picking -> playing transition guard: every player must be
// ready and must have been assigned a word.
func (r *Room) allReady() bool {
	for _, p := range r.players {
		if !p.IsReady || p.CurrentWord == nil {
			return false
		}
	}
	return len(r.players) > 0
}

func (r *Room) beginPlaying() {
	r.phase = PhasePlaying
	r.broadcast(AllWordsSubmittedMessage{Type: "allWordsSubmitted"})
	r.broadcastPlayers()

	// Remember this round's pairing for the next round's anti-repeat check.
	for giver, receiver := range r.pairs {
		if p, ok := r.players[giver]; ok {
			p.LastPartnerID = receiver
		}
	}
	for _, p := range r.players {
		p.picked = false
	}

	log.Info().Str("room_id", r.id).Msg("playing phase started")
	r.nextTurn()
}

// nextTurn advances the turn to the next player in turnOrder who has not yet
// guessed, scanning forward from the current holder and wrapping. Arming the
// turn timer replaces any previously armed timer for this room.
func (r *Room) nextTurn() {
	if r.phase != PhasePlaying {
		return
	}

	active := make([]string, 0, len(r.turnOrder))
	for _, id := range r.turnOrder {
		if r.isActive(id) {
			active = append(active, id)
		}
	}
	if len(active) == 0 {
		// Round completion is owned by the guess path.
		r.scheduler.Cancel(r.id)
		return
	}

	r.turnCount++

	next := ""
	if r.currentTurn != "" {
		if idx := indexOf(r.turnOrder, r.currentTurn); idx >= 0 {
			for i := 1; i <= len(r.turnOrder); i++ {
				candidate := r.turnOrder[(idx+i)%len(r.turnOrder)]
				if r.isActive(candidate) {
					next = candidate
					break
				}
			}
		}
	}
	if next == "" {
		next = active[0]
	}

	r.currentTurn = next
	r.broadcast(TurnChangedMessage{
		Type:        "turnChanged",
		CurrentTurn: r.currentTurn,
		TurnCount:   r.turnCount,
	})

	epoch := r.turnCount
	r.scheduler.Arm(r.id, r.cfg.turnTimeout, func() {
		r.deliverTimeout(epoch)
	})
}

func (r *Room) isActive(id string) bool {
	p, ok := r.players[id]
	return ok && !p.HasGuessed
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

// handleTurnTimeout fires when a turn timer expires. A firing whose epoch no
// longer matches the turn counter raced a legitimate advance and is discarded.
func (r *Room) handleTurnTimeout(epoch int) {
	if r.phase != PhasePlaying || epoch != r.turnCount || r.currentTurn == "" {
		log.Debug().
			Str("room_id", r.id).
			Int("epoch", epoch).
			Int("turn_count", r.turnCount).
			Msg("discarding stale turn timeout")
		return
	}

	r.broadcast(TurnEndedMessage{Type: "turnEnded", PlayerID: r.currentTurn})
	r.nextTurn()
}

func (r *Room) handleGuess(p *Player, guess string) {
	if r.phase != PhasePlaying || p.ID != r.currentTurn {
		r.errorTo(p.client, ErrInvalidActor)
		return
	}
	if p.CurrentWord == nil {
		return
	}

	correct := strings.EqualFold(strings.TrimSpace(guess), strings.TrimSpace(p.CurrentWord.Word))

	r.broadcast(GuessMadeMessage{
		Type:      "guessMade",
		PlayerID:  p.ID,
		Guess:     guess,
		IsCorrect: correct,
	})

	if !correct {
		// An incorrect guess does not consume the turn.
		return
	}

	p.Score++
	p.HasGuessed = true
	r.broadcastPlayers()

	log.Info().
		Str("room_id", r.id).
		Str("player_id", p.ID).
		Str("player", p.Name).
		Msg("correct guess")

	if r.allGuessed() {
		r.finishRound()
	} else {
		r.nextTurn()
	}
}

func (r *Room) allGuessed() bool {
	for _, p := range r.players {
		if !p.HasGuessed {
			return false
		}
	}
	return len(r.players) > 0
}

// finishRound ends the round exactly once, when the last correct guess lands.
// The inter-round pause reuses the room's single timer slot, so arming it
// also invalidates any still-pending turn timer.
func (r *Room) finishRound() {
	r.broadcast(RoundFinishedMessage{Type: "roundFinished"})
	r.currentTurn = ""

	log.Info().Str("room_id", r.id).Msg("round finished")

	r.scheduler.Arm(r.id, r.cfg.roundDelay, r.deliverRoundReset)
}

// handleRoundReset runs after the inter-round pause: per-player round fields
// are cleared (scores persist) and the room either returns to the lobby or,
// when configured, rolls straight into the next picking phase.
func (r *Room) handleRoundReset() {
	if r.phase != PhasePlaying {
		return
	}

	r.phase = PhaseWaiting
	r.wordsToSubmit = 0
	r.turnCount = 0
	r.currentTurn = ""
	for _, p := range r.players {
		p.resetRound()
	}

	if r.cfg.autoRestart && len(r.players) >= 2 {
		r.startPicking()
		r.broadcastPlayers()
		return
	}

	r.broadcastPlayers()
	r.broadcast(BackToLobbyMessage{Type: "backToLobby"})
}

func (r *Room) handleSkip(p *Player) {
	if r.phase != PhasePlaying || p.ID != r.currentTurn {
		r.errorTo(p.client, ErrInvalidActor)
		return
	}

	p.SkipCount++
	r.broadcastPlayers()
	r.broadcast(TurnSkippedMessage{Type: "turnSkipped", PlayerID: p.ID})
	r.nextTurn()
}

// handleHint reveals the requester's own hint, privately and once per round,
// after enough skipped turns.
func (r *Room) handleHint(p *Player) {
	if r.phase != PhasePlaying || p.ID != r.currentTurn {
		r.errorTo(p.client, ErrInvalidActor)
		return
	}
	if p.SkipCount < r.cfg.skipThreshold || p.CurrentWord == nil || p.hintShown {
		return
	}

	p.hintShown = true
	r.unicast(p, HintMessage{Type: "hint", Hint: p.CurrentWord.Hint})
}

func (r *Room) handleLeave(c *Client) {
	r.dropClient(c)

	p, ok := r.players[c.playerID]
	if !ok || p.client != c {
		return
	}

	r.touch()
	wasCurrent := r.currentTurn == p.ID

	delete(r.players, p.ID)
	r.order = remove(r.order, p.ID)
	r.removeFromTurnOrder(p.ID, wasCurrent)
	r.repairPairing(p)

	log.Info().
		Str("room_id", r.id).
		Str("player_id", p.ID).
		Str("player", p.Name).
		Msg("player left")

	if len(r.players) == 0 {
		r.dir.Remove(r.id)
		return
	}

	if len(r.players) < 2 && r.phase != PhaseWaiting {
		r.abort("Not enough players to continue. The game has ended.")
		return
	}

	r.broadcastPlayers()

	switch r.phase {
	case PhasePicking:
		// The departed player may have been the last one blocking the
		// ready gate.
		if r.allReady() {
			r.beginPlaying()
		}
	case PhasePlaying:
		if wasCurrent {
			r.nextTurn()
		}
	}
}

// removeFromTurnOrder drops id from the turn order. If id held the turn, the
// current-turn marker is rewound to its predecessor so that the next rotation
// lands on the departed player's successor in the reduced order.
func (r *Room) removeFromTurnOrder(id string, wasCurrent bool) {
	idx := indexOf(r.turnOrder, id)
	if idx < 0 {
		return
	}
	if wasCurrent {
		if len(r.turnOrder) > 1 {
			r.currentTurn = r.turnOrder[(idx-1+len(r.turnOrder))%len(r.turnOrder)]
		} else {
			r.currentTurn = ""
		}
	}
	r.turnOrder = append(r.turnOrder[:idx], r.turnOrder[idx+1:]...)
}

// repairPairing reconnects the pairing cycle around a departed player: their
// giver inherits their receiver. During picking the giver is re-prompted,
// and an unfilled receiver slot comes off the outstanding-words counter.
func (r *Room) repairPairing(departed *Player) {
	receiverID, wasGiver := r.pairs[departed.ID]
	if wasGiver {
		delete(r.pairs, departed.ID)
	}

	giverID := ""
	for g, rcv := range r.pairs {
		if rcv == departed.ID {
			giverID = g
			break
		}
	}
	if giverID == "" {
		return
	}

	if r.phase == PhasePicking && !departed.picked {
		r.wordsToSubmit--
	}

	if !wasGiver || giverID == receiverID {
		delete(r.pairs, giverID)
		return
	}

	r.pairs[giverID] = receiverID
	if r.phase == PhasePicking {
		if giver, ok := r.players[giverID]; ok {
			r.unicast(giver, PickingStartedMessage{
				Type:        "pickingStarted",
				PartnerName: r.players[receiverID].Name,
				Choices:     sampleWords(r.cfg.wordChoices),
			})
		}
	}
}

func remove(ids []string, id string) []string {
	if idx := indexOf(ids, id); idx >= 0 {
		return append(ids[:idx], ids[idx+1:]...)
	}
	return ids
}

// abort ends a room that can no longer sustain a round. The pairing and
// turn-order invariants cannot be repaired below 2 players, so the whole room
// is torn down rather than limping on.
func (r *Room) abort(reason string) {
	log.Warn().Str("room_id", r.id).Str("reason", reason).Msg("game aborted")
	r.broadcast(GameAbortedMessage{Type: "gameAborted", Message: reason})
	r.dir.Remove(r.id)
}
