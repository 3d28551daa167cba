package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Client -> server message types.
const (
	TypeSetName    = "set_name"
	TypeCreateRoom = "create_room"
	TypeJoinRoom   = "join_room"
	TypeLeaveRoom  = "leave_room"
	TypeStartGame  = "start_game"
	TypeNewRound   = "new_round"
	TypeEndGame    = "end_game"
)

// Server -> client message types.
const (
	TypeNameConfirmed   = "name_confirmed"
	TypeJoinError       = "join_error"
	TypeRoomState       = "room_state"
	TypeRoomsList       = "rooms_list"
	TypePreCountdown    = "pre_countdown"
	TypeRevealRole      = "reveal_role"
	TypeStarterSelected = "starter_selected"
	TypeRoomClosed      = "room_closed"
	TypeError           = "error"
)

// Roles carried by reveal_role. Only crew members receive the word.
const (
	RoleImpostor = "impostor"
	RoleCrew     = "crew"
)

// Reasons carried by join_error.
const (
	JoinNotFound      = "not_found"
	JoinWrongPassword = "wrong_password"
	JoinRoomStarted   = "already_started"
)

// Codes carried by the generic error message.
const (
	CodeBadMessage       = "bad_message"
	CodeUnnamed          = "unnamed"
	CodeEmptyName        = "empty_name"
	CodeEmptyRoomName    = "empty_room_name"
	CodeNotHost          = "not_host"
	CodeNotEnoughPlayers = "not_enough_players"
	CodeRoundInProgress  = "round_in_progress"
	CodeInternal         = "internal"
)

var ErrUnknownType = errors.New("unknown message type")

// ClientMessage is the flat envelope for everything a client may send. The Type
// discriminator decides which of the optional fields are meaningful.
type ClientMessage struct {
	Type     string `json:"type"`
	Name     string `json:"name,omitempty"`
	RoomID   string `json:"roomId,omitempty"`
	Password string `json:"password,omitempty"`
}

// ParseClient validates raw bytes into a ClientMessage. Anything that is not
// well-formed JSON carrying a known type is rejected here, before it can reach
// the hub.
func ParseClient(data []byte) (ClientMessage, error) {
	var m ClientMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return ClientMessage{}, fmt.Errorf("decode client message: %w", err)
	}
	switch m.Type {
	case TypeSetName, TypeCreateRoom, TypeJoinRoom, TypeLeaveRoom,
		TypeStartGame, TypeNewRound, TypeEndGame:
		return m, nil
	default:
		return ClientMessage{}, ErrUnknownType
	}
}

type PlayerInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// RoomSummary is one entry of the public rooms directory. Players is a count,
// not a roster; the full roster only goes to room members via room_state.
type RoomSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Players     int    `json:"players"`
	HasPassword bool   `json:"hasPassword"`
}

// ServerMessage is the flat envelope for everything the server sends. Fields
// are omitempty so each variant only carries its own payload on the wire.
type ServerMessage struct {
	Type string `json:"type"`

	// name_confirmed, starter_selected
	Name string `json:"name,omitempty"`

	// join_error
	Reason string `json:"reason,omitempty"`

	// room_state
	RoomID   string       `json:"roomId,omitempty"`
	RoomName string       `json:"roomName,omitempty"`
	Players  []PlayerInfo `json:"players,omitempty"`
	HostID   string       `json:"hostId,omitempty"`

	// rooms_list
	Rooms []RoomSummary `json:"rooms,omitempty"`

	// pre_countdown
	Seconds int `json:"seconds,omitempty"`

	// reveal_role
	Role string `json:"role,omitempty"`
	Word string `json:"word,omitempty"`

	// error
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}
