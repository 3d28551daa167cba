package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wordimpostor/backend/internal/hub"
	"github.com/wordimpostor/backend/internal/protocol"
)

const (
	outboxSize   = 16
	writeTimeout = 3 * time.Second
)

// Handler upgrades the connection, registers it with the hub, and pumps
// messages both ways until either side closes. The hub owns the outbox: when
// it closes the channel the writer stops and the socket is shut.
func Handler(h *hub.Hub, logger *zap.Logger) http.HandlerFunc {
	log := logger.Named("ws").Sugar()

	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			// In dev ONLY, you can loosen origin checks:
			// OriginPatterns: []string{"http://localhost:*", "http://127.0.0.1:*"},
		})
		if err != nil {
			log.Debugw("accept failed", "err", err)
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		connID := uuid.NewString()
		out := make(chan protocol.ServerMessage, outboxSize)

		h.Inbox() <- hub.Connect{ConnID: connID, Outbox: out}
		defer func() { h.Inbox() <- hub.Disconnect{ConnID: connID} }()

		// Writer goroutine: drains the outbox until the hub closes it.
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for msg := range out {
				payload, err := json.Marshal(msg)
				if err != nil {
					log.Errorw("marshal server message", "conn", connID, "err", err)
					continue
				}
				ctx, cancel := context.WithTimeout(writeCtx, writeTimeout)
				_ = conn.Write(ctx, websocket.MessageText, payload)
				cancel()
			}
			conn.Close(websocket.StatusGoingAway, "server closed session")
		}()

		// Reader loop.
		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					return
				}
				// Dropped connection; hub.Disconnect in the defer handles it.
				return
			}

			m, err := protocol.ParseClient(data)
			if err != nil {
				reject, _ := json.Marshal(protocol.ServerMessage{
					Type: protocol.TypeError,
					Code: protocol.CodeBadMessage,
				})
				_ = conn.Write(r.Context(), websocket.MessageText, reject)
				continue
			}

			h.Inbox() <- hub.FromClient{ConnID: connID, Msg: m}
		}
	}
}
