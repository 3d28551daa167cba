package room

import (
	"sort"

	"github.com/wordimpostor/backend/internal/protocol"
)

// Store is the in-memory collection of live rooms. It has a single owner (the
// hub goroutine) and is never shared, so access is unsynchronized on purpose.
type Store struct {
	rooms map[string]*Room
}

func NewStore() *Store {
	return &Store{rooms: make(map[string]*Room)}
}

func (s *Store) Get(id string) (*Room, bool) {
	r, ok := s.rooms[id]
	return r, ok
}

func (s *Store) Add(r *Room) {
	s.rooms[r.ID] = r
}

func (s *Store) Remove(id string) {
	delete(s.rooms, id)
}

func (s *Store) Len() int { return len(s.rooms) }

// Directory derives the public summary of every room: a full snapshot, not a
// diff. Sorted by name (ID as tiebreaker) so pushes are stable.
func (s *Store) Directory() []protocol.RoomSummary {
	out := make([]protocol.RoomSummary, 0, len(s.rooms))
	for _, r := range s.rooms {
		out = append(out, protocol.RoomSummary{
			ID:          r.ID,
			Name:        r.Name,
			Players:     len(r.Players),
			HasPassword: !r.Open(),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}
