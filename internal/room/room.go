package room

import (
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type Phase string

const (
	// PhaseLobby: no round active, players gathering.
	PhaseLobby Phase = "lobby"
	// PhaseCounting: a round was started, the reveal timer is pending.
	PhaseCounting Phase = "counting"
	// PhaseRevealed: roles are out, the round is live.
	PhaseRevealed Phase = "revealed"
)

type Player struct {
	ID   string
	Name string
}

// Room is a single lobby/game session. It is plain data: all mutation happens
// on the hub goroutine, so there is no locking here.
type Room struct {
	ID           string
	Name         string
	passwordHash []byte // nil for open rooms
	HostID       string
	Players      []Player
	Phase        Phase
	Round        int
	CurrentWord  string
}

// New creates a room hosted by the given connection. The host is immediately
// its sole player. Room IDs are opaque and never derived from the name, since
// names may collide.
func New(name, password, hostID, hostName string) (*Room, error) {
	r := &Room{
		ID:      uuid.NewString(),
		Name:    name,
		HostID:  hostID,
		Players: []Player{{ID: hostID, Name: hostName}},
		Phase:   PhaseLobby,
	}
	if password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash room password: %w", err)
		}
		r.passwordHash = hash
	}
	return r, nil
}

// Open reports whether the room can be joined without a password.
func (r *Room) Open() bool { return r.passwordHash == nil }

// CheckPassword reports whether the given password grants entry. Open rooms
// admit unconditionally, whatever the client sent.
func (r *Room) CheckPassword(password string) bool {
	if r.Open() {
		return true
	}
	return bcrypt.CompareHashAndPassword(r.passwordHash, []byte(password)) == nil
}

// HasPlayer reports membership by connection ID.
func (r *Room) HasPlayer(id string) bool {
	for _, p := range r.Players {
		if p.ID == id {
			return true
		}
	}
	return false
}

// AddPlayer appends a player, preserving join order. Adding an ID that is
// already a member is a no-op, so the roster can never hold duplicates.
func (r *Room) AddPlayer(p Player) {
	if r.HasPlayer(p.ID) {
		return
	}
	r.Players = append(r.Players, p)
}

// RemovePlayer removes a player by connection ID and reports whether it was a
// member.
func (r *Room) RemovePlayer(id string) bool {
	for i, p := range r.Players {
		if p.ID == id {
			r.Players = append(r.Players[:i], r.Players[i+1:]...)
			return true
		}
	}
	return false
}
