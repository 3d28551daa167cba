package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/wordimpostor/backend/internal/hub"
	"github.com/wordimpostor/backend/internal/protocol"
)

const directoryTimeout = 2 * time.Second

// ListRooms serves the same public directory the socket broadcasts, as a
// plain GET for debugging and ops.
func ListRooms(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reply := make(chan []protocol.RoomSummary, 1)
		h.Inbox() <- hub.GetDirectory{Reply: reply}

		select {
		case rooms := <-reply:
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(rooms)
		case <-time.After(directoryTimeout):
			http.Error(w, "hub unavailable", http.StatusServiceUnavailable)
		}
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
