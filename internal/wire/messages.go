package wire

import "github.com/wuziqi-io/gomoku-server/internal/board"

// Client->server message bodies. Each type's zero value is a valid empty
// body for tags that carry no fields.

type CreateRoom struct {
	UndoRequestTimeoutSeconds uint64
	UndoDialogueExtraSeconds  uint64
	PlayTimeoutSeconds        uint64
}

type JoinRoom struct {
	Token RoomToken
}

type QuitRoom struct{}
type Ready struct{}
type Unready struct{}

type Play struct {
	X, Y uint8
}

type RequestUndo struct{}
type ApproveUndo struct{}
type RejectUndo struct{}
type QuitGameSession struct{}
type ExitGame struct{}

type ClientError struct {
	Message string
}

type Login struct {
	Name     string
	Password string
}

type CreateAccount struct {
	Name     string
	Password string
}

type UpdateAccount struct {
	Name        string
	OldPassword string
	NewPassword string
}

// SearchOnlinePlayers filters by a name substring when HasName is true, and
// caps the result at Limit (itself capped server-side at 20 per spec.md
// section 6.4).
type SearchOnlinePlayers struct {
	HasName bool
	Name    string
	Limit   uint8
}

type ToPlayer struct {
	Name    string
	Message []byte
}

type ChatMessage struct {
	Message string
}

// Server->client message bodies.

type RoomCreated struct {
	Token RoomToken
}

type PlayerList struct {
	Names []string
}

type JoinRoomSuccess struct {
	Position uint8
	State    RoomState
}

type JoinRoomFailureTokenNotFound struct{}
type JoinRoomFailureRoomFull struct{}

type OpponentJoinRoom struct {
	Name string
}

type OpponentQuitRoom struct{}
type OpponentReady struct{}
type OpponentUnready struct{}

type GameStarted struct {
	Color board.Stone
}

type FieldUpdateMsg struct {
	State FieldState
}

type UndoRequestMsg struct{}
type UndoTimeoutRejected struct{}
type UndoAutoRejected struct{}

type UndoMsg struct {
	State FieldStateNullable
}

type UndoRejectedByOpponent struct{}
type GameEndBlackTimeout struct{}
type GameEndWhiteTimeout struct{}
type GameEndBlackWins struct{}
type GameEndWhiteWins struct{}
type GameEndDraw struct{}
type OpponentQuitGameSession struct{}
type OpponentExitGame struct{}
type OpponentDisconnected struct{}

type RoomScores struct {
	Name1  string
	Score1 uint16
	Name2  string
	Score2 uint16
}

type GameSessionError struct {
	Message string
}

type CreateAccountFailure struct {
	Kind CreateAccountFailureKind
}

type LoginFailure struct {
	Kind LoginFailureKind
}

type UpdateAccountFailure struct {
	Kind UpdateAccountFailureKind
}

type CreateAccountSuccess struct {
	UserID uint64
}

type UpdateAccountSuccess struct {
	UserID uint64
}

// ConnectionSuccess also serves as LoginSuccess (tag 100 is shared, per
// spec.md section 6.1).
type ConnectionSuccess struct {
	UserID uint64
	Name   string
}

type ConnectionInitFailure struct {
	Code ConnectionInitFailureCode
}

type FromPlayer struct {
	Name    string
	Message []byte
}

type ServerChatMessage struct {
	Name    string
	Message string
}
