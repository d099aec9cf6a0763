package room

import (
	"github.com/asynkron/protoactor-go/actor"

	"github.com/wuziqi-io/gomoku-server/internal/wire"
)

// Seat is everything a Room needs to talk to one occupant's connection.
// The connection itself is a plain goroutine/struct (spec.md section 4.7),
// not an actor, so Room reaches it through these two callbacks instead of
// a PID send.
type Seat struct {
	Name string
	// Send delivers a server->client wire message body to this seat's
	// connection.
	Send func(body any)
	// AttachPlayer is called once, with the spawned PlayerActor's PID, the
	// instant a session starts for this seat, and again with nil the
	// instant that session ends — the connection uses this to know
	// whether to route subsequent client messages to the room or straight
	// to its player actor.
	AttachPlayer func(pid *actor.PID)
}

// Join is sent by a connection entering the room phase.
type Join struct {
	Seat Seat
}

// Position identifies a seat already assigned by a prior Join.
type Position int

const (
	PositionFirst Position = iota
	PositionSecond
)

type ReadyMsg struct{ Pos Position }
type UnreadyMsg struct{ Pos Position }

// QuitReasonKind mirrors mesh.QuitReason for the room-phase quit/exit
// distinction (spec.md section 4.8): QuitRoom keeps the seat eligible for
// the lobby to hand the connection straight back to room browsing,
// ExitGame and ClientError do not.
type QuitReasonKind int

const (
	QuitRoomReason QuitReasonKind = iota
	ExitRoomReason
	ClientErrorRoomReason
)

type LeaveMsg struct {
	Pos    Position
	Reason QuitReasonKind
}

type ChatMsg struct {
	Pos     Position
	Message string
}

// StateQuery lets the lobby's idle reaper and tests inspect a room
// synchronously without racing its mailbox.
type StateQuery struct {
	Reply chan State
}

// State is a snapshot of a room's occupancy, answered by StateQuery.
type State struct {
	Token      wire.RoomToken
	FirstName  string
	SecondName string
	Occupied   int
	InSession  bool
	IdleSince  int64 // unix seconds; zero means not idle
}
