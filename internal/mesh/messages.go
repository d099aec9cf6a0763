package mesh

import (
	"github.com/asynkron/protoactor-go/actor"

	"github.com/wuziqi-io/gomoku-server/internal/board"
	"github.com/wuziqi-io/gomoku-server/internal/wire"
)

// QuitReason classifies why a player left an active session, per spec.md
// section 4.6.
type QuitReason int

const (
	QuitSessionReason QuitReason = iota
	ExitGameReason
	DisconnectedReason
	ErrorReason
)

// GameEndKind enumerates how a session resolved, per spec.md section 4.6.
type GameEndKind int

const (
	GameEndBlackTimeoutKind GameEndKind = iota
	GameEndWhiteTimeoutKind
	GameEndBlackWinsKind
	GameEndWhiteWinsKind
	GameEndDrawKind
)

// UndoResponseKind enumerates the three ways an undo request can be turned
// down (as opposed to approved).
type UndoResponseKind int

const (
	UndoRejectedByOpponentKind UndoResponseKind = iota
	UndoAutoRejectedKind
	UndoTimeoutRejectedKind
)

// --- session -> board ---

type DoMove struct {
	X, Y  int
	Color board.Stone
}

type UndoMove struct{}

type KillBoard struct{}

// --- board -> session ---

type FieldEvent struct {
	State wire.FieldState
}

type BoardResolvedEvent struct {
	Result board.State // BlackWins, WhiteWins, or Draw
}

// BoardErrorEvent reports a board invariant violation (spec.md section 7,
// "Impossible" board state, or an attempted play the session should never
// have forwarded).
type BoardErrorEvent struct {
	Reason string
}

type UndoResolvedEvent struct {
	State wire.FieldStateNullable
}

// --- connection -> player (client actions, spec.md section 4.5) ---

type ClientPlay struct {
	X, Y uint8
}

type ClientRequestUndo struct{}
type ClientApproveUndo struct{}
type ClientRejectUndo struct{}

type ClientQuit struct {
	Reason  QuitReason
	Message string // only meaningful when Reason == ErrorReason
}

// --- player -> session ---

type PlayerPlay struct {
	X, Y int
}

type PlayerRequestUndo struct{}
type PlayerApproveUndo struct{}
type PlayerRejectUndo struct{}
type PlayerAutoRejectUndo struct{}
type PlayerTimeoutRejectUndo struct{}

type PlayerQuit struct {
	Reason  QuitReason
	Message string
}

// PlayerPlayTimeout is sent to the session when a player's turn clock
// expires without a move.
type PlayerPlayTimeout struct{}

// --- session lifecycle ---

// SeatInit is everything the session needs to spawn one seat's player
// actor: identity for scoring/logging, fixed color for the match, and the
// callback that delivers wire messages to that seat's connection.
type SeatInit struct {
	Name       string
	Color      board.Stone
	ClientSend func(any)
}

// GameResultKind is how one seat's occupant fared when a session ended, the
// input to the room's score-pair update (spec.md section 4.8 and
// SPEC_FULL.md's supplemented GameResult->score mapping).
type GameResultKind int

const (
	ResultWin GameResultKind = iota
	ResultLose
	ResultDraw
	ResultQuit
	ResultOpponentQuit
	ResultErrored // game invariant violation; no score change
)

type SeatResult struct {
	Name   string
	Result GameResultKind
}

// SessionEnded is sent once, by the session to the room that spawned it,
// when the match is over for any reason.
type SessionEnded struct {
	SeatA SeatResult
	SeatB SeatResult
}

// --- session -> player ---

type GameStartedEvent struct {
	Color board.Stone
}

type FieldUpdateEvent struct {
	State wire.FieldState
}

type UndoRequestEvent struct{}

type UndoEvent struct {
	State wire.FieldStateNullable
}

type UndoResponseEvent struct {
	Kind UndoResponseKind
}

type GameEndEvent struct {
	Kind GameEndKind
}

type GameErrorEvent struct {
	Reason string
}

type OpponentQuitEvent struct {
	Reason  QuitReason
	Message string
}

// SeatPIDsQuery is answered synchronously by a SessionActor with the PIDs
// of its two PlayerActor children, so a connection layer (or a test) can
// route ClientPlay/ClientRequestUndo/etc directly to the right seat without
// the session re-resolving identity on every message.
type SeatPIDsQuery struct {
	Reply chan SeatPIDs
}

type SeatPIDs struct {
	A, B *actor.PID
}

// --- timer self-messages (player actor's own inbox) ---

type playTimeoutMsg struct{}
type undoApproveTimeoutMsg struct{}
