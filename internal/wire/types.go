package wire

import "github.com/wuziqi-io/gomoku-server/internal/board"

// SessionConfig carries the three timing knobs a room's creator chooses,
// per spec.md section 3. Zero means "no timeout" for the two timeout
// fields.
type SessionConfig struct {
	UndoRequestTimeoutSeconds     uint64
	UndoDialogueExtraSeconds      uint64
	PlayTimeoutSeconds            uint64
}

// Move is one (x, y, color) triple as it travels on the wire.
type Move struct {
	X, Y  uint8
	Color board.Stone
}

// FieldState is emitted to players on every successful play: the move that
// was just applied, plus the resulting grid.
type FieldState struct {
	Latest Move
	Grid   [board.Size][board.Size]board.Stone
}

// FieldStateNullable is emitted on undo: latest is empty when the undo
// rewound the board all the way to the start.
type FieldStateNullable struct {
	HasLatest bool
	Latest    Move
	Grid      [board.Size][board.Size]board.Stone
}

// RoomStateKind describes what a joiner learns about their opponent's seat
// on JoinRoomSuccess (SPEC_FULL.md supplemented feature 1).
type RoomStateKind byte

const (
	RoomEmpty RoomStateKind = iota
	RoomOpponentUnready
	RoomOpponentReady
)

// RoomState pairs the kind with the opponent's name, when there is one.
type RoomState struct {
	Kind RoomStateKind
	Name string
}

// InvalidInputKind enumerates why a credential operation's input was
// rejected before ever reaching the credential store (SPEC_FULL.md
// supplemented feature 3).
type InvalidInputKind byte

const (
	InvalidNameBadChar InvalidInputKind = iota
	InvalidNameTooShort
	InvalidNameTooLong
	InvalidPasswordBadChar
	InvalidPasswordTooShort
	InvalidPasswordTooLong
)

// CreateAccountFailureKind enumerates why CreateAccount failed.
type CreateAccountFailureKind byte

const (
	CreateAccountBadInput CreateAccountFailureKind = iota
	CreateAccountAlreadyExists
	CreateAccountServerError
)

// LoginFailureKind enumerates why Login failed.
type LoginFailureKind byte

const (
	LoginBadInput LoginFailureKind = iota
	LoginAccountDoesNotExist
	LoginPasswordIncorrect
	LoginServerError
)

// UpdateAccountFailureKind enumerates why UpdateAccount failed.
type UpdateAccountFailureKind byte

const (
	UpdateAccountBadInput UpdateAccountFailureKind = iota
	UpdateAccountUserDoesNotExist
	UpdateAccountPasswordIncorrect
	UpdateAccountServerError
)

// ConnectionInitFailureCode enumerates why the connection never got past
// the authentication phase (spec.md section 7, "Connection-init faults").
type ConnectionInitFailureCode byte

const (
	ConnInitIPMaxConnExceed ConnectionInitFailureCode = iota
	ConnInitTLSFailure
	ConnInitDuplicateName
)
