// Package hub runs the single event loop that owns all mutable state: the
// connection registry, the room store, membership rules, and round timing.
// Everything reaches it through typed messages on the inbox, so no two
// operations ever interleave.
package hub

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/wordimpostor/backend/internal/engine"
	"github.com/wordimpostor/backend/internal/protocol"
	"github.com/wordimpostor/backend/internal/room"
)

type Msg interface{ isHubMsg() }

// Connect registers a new connection. Outbox is where this connection wants
// its server messages delivered.
type Connect struct {
	ConnID string
	Outbox chan protocol.ServerMessage
}

// Disconnect is sent by the transport when a connection drops, with or
// without an explicit leave beforehand.
type Disconnect struct{ ConnID string }

// FromClient carries one validated wire message from a connection.
type FromClient struct {
	ConnID string
	Msg    protocol.ClientMessage
}

// GetDirectory answers with the current public rooms snapshot.
type GetDirectory struct{ Reply chan []protocol.RoomSummary }

// View reflects hub-wide counters without data races. Test and ops use only.
type View struct {
	Sessions int
	Rooms    int
}

type GetView struct{ Reply chan View }

// RoomView reflects one room's state without data races. Test use only.
type RoomView struct {
	Exists      bool
	Phase       room.Phase
	Round       int
	HostID      string
	PlayerIDs   []string
	CurrentWord string
}

type GetRoomView struct {
	RoomID string
	Reply  chan RoomView
}

type Shutdown struct{}

// revealFired is posted back into the inbox by the countdown timer. Keyed by
// (room, round) so a stale fire after teardown or a newer round is dropped.
type revealFired struct {
	RoomID string
	Round  int
}

func (Connect) isHubMsg()      {}
func (Disconnect) isHubMsg()   {}
func (FromClient) isHubMsg()   {}
func (GetDirectory) isHubMsg() {}
func (GetView) isHubMsg()      {}
func (GetRoomView) isHubMsg()  {}
func (Shutdown) isHubMsg()     {}
func (revealFired) isHubMsg()  {}

type Config struct {
	Countdown        time.Duration
	MinPlayers       int
	AllowJoinInRound bool
}

type Options struct {
	Words  []string
	Config Config
	Logger *zap.Logger
	Rand   engine.Rand
}

// session is the per-connection registry entry: identity plus at most one
// room membership.
type session struct {
	id     string
	name   string
	roomID string
	outbox chan protocol.ServerMessage
}

type Hub struct {
	inbox    chan Msg
	sessions map[string]*session
	rooms    *room.Store
	pool     []string
	rnd      engine.Rand
	cfg      Config
	log      *zap.SugaredLogger
	ctx      context.Context
	cancel   context.CancelFunc

	// connections whose outbox overflowed mid-broadcast; evicted between
	// inbox messages, never during one.
	dropped []string
}

func New(parent context.Context, opts Options) *Hub {
	cfg := opts.Config
	if cfg.Countdown <= 0 {
		cfg.Countdown = engine.DefaultCountdownSeconds * time.Second
	}
	if cfg.MinPlayers <= 0 {
		cfg.MinPlayers = engine.DefaultMinPlayers
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	rnd := opts.Rand
	if rnd == nil {
		rnd = engine.NewRand()
	}

	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:    make(chan Msg, 64),
		sessions: make(map[string]*session),
		rooms:    room.NewStore(),
		pool:     opts.Words,
		rnd:      rnd,
		cfg:      cfg,
		log:      logger.Named("hub").Sugar(),
		ctx:      ctx,
		cancel:   cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- Msg { return h.inbox }

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			if stop := h.dispatch(m); stop {
				return
			}
			h.reapDropped()
		}
	}
}

func (h *Hub) dispatch(m Msg) bool {
	switch msg := m.(type) {
	case Connect:
		h.sessions[msg.ConnID] = &session{id: msg.ConnID, outbox: msg.Outbox}
		h.log.Debugw("connection registered", "conn", msg.ConnID)

	case Disconnect:
		h.handleDisconnect(msg.ConnID)

	case FromClient:
		h.handleClient(msg.ConnID, msg.Msg)

	case revealFired:
		h.handleReveal(msg.RoomID, msg.Round)

	case GetDirectory:
		msg.Reply <- h.rooms.Directory()

	case GetView:
		msg.Reply <- View{Sessions: len(h.sessions), Rooms: h.rooms.Len()}

	case GetRoomView:
		msg.Reply <- h.roomView(msg.RoomID)

	case Shutdown:
		h.shutdown()
		return true
	}
	return false
}

func (h *Hub) handleClient(connID string, m protocol.ClientMessage) {
	s, ok := h.sessions[connID]
	if !ok {
		return
	}
	switch m.Type {
	case protocol.TypeSetName:
		h.setName(s, m.Name)
	case protocol.TypeCreateRoom:
		h.createRoom(s, m.Name, m.Password)
	case protocol.TypeJoinRoom:
		h.joinRoom(s, m.RoomID, m.Password)
	case protocol.TypeLeaveRoom:
		h.leaveRoom(s)
	case protocol.TypeStartGame, protocol.TypeNewRound:
		h.startRound(s)
	case protocol.TypeEndGame:
		h.endGame(s)
	}
}

func (h *Hub) setName(s *session, name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		h.sendError(s, protocol.CodeEmptyName, "display name must not be blank")
		return
	}
	s.name = name
	// Rebinding while in a room keeps the roster consistent.
	if s.roomID != "" {
		if r, ok := h.rooms.Get(s.roomID); ok {
			for i := range r.Players {
				if r.Players[i].ID == s.id {
					r.Players[i].Name = name
				}
			}
			h.sendRoomState(r)
		}
	}
	h.send(s, protocol.ServerMessage{Type: protocol.TypeNameConfirmed, Name: name})
	h.broadcastDirectory()
	h.log.Infow("name set", "conn", s.id, "name", name)
}

func (h *Hub) createRoom(s *session, name, password string) {
	if s.name == "" {
		h.sendError(s, protocol.CodeUnnamed, "set a display name first")
		return
	}
	name = strings.TrimSpace(name)
	if name == "" {
		h.sendError(s, protocol.CodeEmptyRoomName, "room name must not be blank")
		return
	}
	if s.roomID != "" {
		h.leaveCurrent(s)
	}

	r, err := room.New(name, password, s.id, s.name)
	if err != nil {
		h.log.Errorw("create room", "conn", s.id, "err", err)
		h.sendError(s, protocol.CodeInternal, "could not create room")
		return
	}
	h.rooms.Add(r)
	s.roomID = r.ID
	h.sendRoomState(r)
	h.broadcastDirectory()
	h.log.Infow("room created", "room", r.ID, "name", r.Name, "host", s.id)
}

func (h *Hub) joinRoom(s *session, roomID, password string) {
	if s.name == "" {
		h.sendError(s, protocol.CodeUnnamed, "set a display name first")
		return
	}
	// Re-joining the current room is a no-op, not an error.
	if roomID != "" && s.roomID == roomID {
		return
	}
	r, ok := h.rooms.Get(roomID)
	if !ok {
		h.sendJoinError(s, protocol.JoinNotFound)
		return
	}
	if !r.CheckPassword(password) {
		h.sendJoinError(s, protocol.JoinWrongPassword)
		return
	}
	if r.Phase != room.PhaseLobby && !h.cfg.AllowJoinInRound {
		h.sendJoinError(s, protocol.JoinRoomStarted)
		return
	}
	// One room at a time: joining elsewhere implies leaving first.
	if s.roomID != "" {
		h.leaveCurrent(s)
	}

	r.AddPlayer(room.Player{ID: s.id, Name: s.name})
	s.roomID = r.ID
	h.sendRoomState(r)
	h.broadcastDirectory()
	h.log.Infow("player joined", "room", r.ID, "conn", s.id)
}

func (h *Hub) leaveRoom(s *session) {
	if s.roomID == "" {
		return
	}
	h.leaveCurrent(s)
}

// leaveCurrent removes s from its room. A leaving host takes the room down
// with it; there is no host handoff.
func (h *Hub) leaveCurrent(s *session) {
	r, ok := h.rooms.Get(s.roomID)
	s.roomID = ""
	if !ok {
		return
	}
	if r.HostID == s.id {
		h.closeRoom(r)
		return
	}
	r.RemovePlayer(s.id)
	if len(r.Players) == 0 {
		h.rooms.Remove(r.ID)
	} else {
		h.sendRoomState(r)
	}
	h.broadcastDirectory()
	h.log.Infow("player left", "room", r.ID, "conn", s.id)
}

// closeRoom is the unconditional teardown: notify members, evict them, delete
// the room, refresh the directory. Any pending reveal timer for this room
// finds a missing room and no-ops.
func (h *Hub) closeRoom(r *room.Room) {
	h.sendRoom(r, protocol.ServerMessage{Type: protocol.TypeRoomClosed})
	for _, p := range r.Players {
		if ps, ok := h.sessions[p.ID]; ok && ps.roomID == r.ID {
			ps.roomID = ""
		}
	}
	h.rooms.Remove(r.ID)
	h.broadcastDirectory()
	h.log.Infow("room closed", "room", r.ID, "name", r.Name)
}

func (h *Hub) handleDisconnect(connID string) {
	s, ok := h.sessions[connID]
	if !ok {
		return
	}
	if s.roomID != "" {
		h.leaveCurrent(s)
	}
	delete(h.sessions, connID)
	close(s.outbox)
	h.log.Infow("connection closed", "conn", connID)
}

func (h *Hub) startRound(s *session) {
	if s.roomID == "" {
		// Out-of-order trigger; nothing to act on.
		return
	}
	r, ok := h.rooms.Get(s.roomID)
	if !ok {
		return
	}
	if err := engine.StartRound(r, s.id, h.cfg.MinPlayers); err != nil {
		h.sendError(s, startCode(err), err.Error())
		return
	}
	h.sendRoom(r, protocol.ServerMessage{
		Type:    protocol.TypePreCountdown,
		Seconds: int(h.cfg.Countdown / time.Second),
	})
	h.scheduleReveal(r.ID, r.Round)
	h.log.Infow("round started", "room", r.ID, "round", r.Round)
}

func startCode(err error) string {
	switch {
	case errors.Is(err, engine.ErrNotHost):
		return protocol.CodeNotHost
	case errors.Is(err, engine.ErrNotEnoughPlayers):
		return protocol.CodeNotEnoughPlayers
	case errors.Is(err, engine.ErrRoundInProgress):
		return protocol.CodeRoundInProgress
	}
	return protocol.CodeInternal
}

// scheduleReveal arms the one deferred action in the system. The timer only
// posts a message; all checking and mutation happens back on the loop.
func (h *Hub) scheduleReveal(roomID string, round int) {
	time.AfterFunc(h.cfg.Countdown, func() {
		select {
		case h.inbox <- revealFired{RoomID: roomID, Round: round}:
		case <-h.ctx.Done():
		}
	})
}

func (h *Hub) handleReveal(roomID string, round int) {
	r, ok := h.rooms.Get(roomID)
	if !ok || r.Round != round || r.Phase != room.PhaseCounting {
		h.log.Debugw("stale reveal timer dropped", "room", roomID, "round", round)
		return
	}
	a, err := engine.Reveal(r, h.pool, h.rnd)
	if err != nil {
		h.log.Errorw("reveal failed", "room", roomID, "err", err)
		return
	}
	for _, p := range r.Players {
		ps, ok := h.sessions[p.ID]
		if !ok {
			continue
		}
		if p.ID == a.ImpostorID {
			// The impostor never sees the word.
			h.send(ps, protocol.ServerMessage{Type: protocol.TypeRevealRole, Role: protocol.RoleImpostor})
			continue
		}
		h.send(ps, protocol.ServerMessage{Type: protocol.TypeRevealRole, Role: protocol.RoleCrew, Word: a.Word})
	}
	h.sendRoom(r, protocol.ServerMessage{
		Type:   protocol.TypeStarterSelected,
		Name:   a.StarterName,
		HostID: r.HostID,
	})
	h.log.Infow("round revealed", "room", r.ID, "round", r.Round, "starter", a.StarterName)
}

func (h *Hub) endGame(s *session) {
	if s.roomID == "" {
		return
	}
	r, ok := h.rooms.Get(s.roomID)
	if !ok {
		return
	}
	if r.HostID != s.id {
		h.sendError(s, protocol.CodeNotHost, "only the host can end the game")
		return
	}
	h.closeRoom(r)
}

// send delivers to one session. A full outbox marks the connection for
// eviction once the current operation finishes, so broadcasts never block the
// loop.
func (h *Hub) send(s *session, msg protocol.ServerMessage) {
	select {
	case s.outbox <- msg:
	default:
		h.dropped = append(h.dropped, s.id)
	}
}

func (h *Hub) sendRoom(r *room.Room, msg protocol.ServerMessage) {
	for _, p := range r.Players {
		if ps, ok := h.sessions[p.ID]; ok {
			h.send(ps, msg)
		}
	}
}

func (h *Hub) sendAll(msg protocol.ServerMessage) {
	for _, s := range h.sessions {
		h.send(s, msg)
	}
}

func (h *Hub) sendError(s *session, code, message string) {
	h.send(s, protocol.ServerMessage{Type: protocol.TypeError, Code: code, Message: message})
}

func (h *Hub) sendJoinError(s *session, reason string) {
	h.send(s, protocol.ServerMessage{Type: protocol.TypeJoinError, Reason: reason})
}

func (h *Hub) sendRoomState(r *room.Room) {
	players := make([]protocol.PlayerInfo, len(r.Players))
	for i, p := range r.Players {
		players[i] = protocol.PlayerInfo{ID: p.ID, Name: p.Name}
	}
	h.sendRoom(r, protocol.ServerMessage{
		Type:     protocol.TypeRoomState,
		RoomID:   r.ID,
		RoomName: r.Name,
		Players:  players,
		HostID:   r.HostID,
	})
}

func (h *Hub) broadcastDirectory() {
	h.sendAll(protocol.ServerMessage{Type: protocol.TypeRoomsList, Rooms: h.rooms.Directory()})
}

// reapDropped evicts connections whose outbox overflowed during the last
// dispatch. Eviction follows normal disconnect semantics and may cascade, so
// keep going until the queue is empty.
func (h *Hub) reapDropped() {
	for len(h.dropped) > 0 {
		id := h.dropped[0]
		h.dropped = h.dropped[1:]
		if _, ok := h.sessions[id]; ok {
			h.log.Warnw("dropping slow connection", "conn", id)
			h.handleDisconnect(id)
		}
	}
}

func (h *Hub) roomView(id string) RoomView {
	r, ok := h.rooms.Get(id)
	if !ok {
		return RoomView{}
	}
	ids := make([]string, len(r.Players))
	for i, p := range r.Players {
		ids[i] = p.ID
	}
	return RoomView{
		Exists:      true,
		Phase:       r.Phase,
		Round:       r.Round,
		HostID:      r.HostID,
		PlayerIDs:   ids,
		CurrentWord: r.CurrentWord,
	}
}

func (h *Hub) shutdown() {
	for id, s := range h.sessions {
		close(s.outbox)
		delete(h.sessions, id)
	}
	h.cancel()
}
