// Package engine is the pure round state machine: phase transitions and the
// randomized impostor/word/starter assignment. It never does I/O; the hub owns
// delivery and timing.
package engine

import (
	"errors"
	"math/rand/v2"

	"github.com/wordimpostor/backend/internal/room"
)

var (
	ErrNotHost          = errors.New("only the host can do that")
	ErrNotEnoughPlayers = errors.New("not enough players to start")
	ErrRoundInProgress  = errors.New("a round is already starting")
	ErrNoPlayers        = errors.New("no players to assign")
	ErrNoWords          = errors.New("word pool is empty")
)

const (
	DefaultMinPlayers       = 3
	DefaultCountdownSeconds = 5
)

// Rand is the uniform selection source for all draws. Pluggable so tests can
// inject determinism.
type Rand interface {
	IntN(n int) int
}

// NewRand returns a freshly seeded source. One per hub, reused across rounds;
// PCG stays uniform without reseeding.
func NewRand() Rand {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// StartRound validates a start_game/new_round trigger from the given
// connection and, on success, moves the room into the counting phase and bumps
// the round counter. On failure the room is left untouched.
func StartRound(r *room.Room, connID string, minPlayers int) error {
	if connID != r.HostID {
		return ErrNotHost
	}
	if r.Phase == room.PhaseCounting {
		return ErrRoundInProgress
	}
	if len(r.Players) < minPlayers {
		return ErrNotEnoughPlayers
	}
	r.Phase = room.PhaseCounting
	r.Round++
	return nil
}

// Assignment is the outcome of one reveal: who plays blind, what everyone else
// sees, and who speaks first.
type Assignment struct {
	ImpostorID  string
	Word        string
	StarterID   string
	StarterName string
}

// Reveal draws the impostor, the secret word, and the starter for the room's
// pending round, and moves the room into the revealed phase. The word draw
// excludes the previous round's word whenever the pool has an alternative.
// The starter draw is independent of the impostor draw: the same player may be
// both.
func Reveal(r *room.Room, pool []string, rnd Rand) (Assignment, error) {
	if len(r.Players) == 0 {
		return Assignment{}, ErrNoPlayers
	}
	if len(pool) == 0 {
		return Assignment{}, ErrNoWords
	}

	impostor := r.Players[rnd.IntN(len(r.Players))]
	word := pickWord(pool, r.CurrentWord, rnd)
	starter := r.Players[rnd.IntN(len(r.Players))]

	r.Phase = room.PhaseRevealed
	r.CurrentWord = word

	return Assignment{
		ImpostorID:  impostor.ID,
		Word:        word,
		StarterID:   starter.ID,
		StarterName: starter.Name,
	}, nil
}

// pickWord draws uniformly from pool, skipping exclude when possible. A
// one-word pool falls back to repeating rather than failing the round.
func pickWord(pool []string, exclude string, rnd Rand) string {
	candidates := pool
	if exclude != "" && len(pool) > 1 {
		filtered := make([]string, 0, len(pool))
		for _, w := range pool {
			if w != exclude {
				filtered = append(filtered, w)
			}
		}
		if len(filtered) > 0 {
			candidates = filtered
		}
	}
	return candidates[rnd.IntN(len(candidates))]
}
