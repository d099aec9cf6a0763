package mesh

import (
	"github.com/asynkron/protoactor-go/actor"
	"github.com/lithammer/shortuuid/v4"

	"github.com/wuziqi-io/gomoku-server/internal/board"
	"github.com/wuziqi-io/gomoku-server/internal/logging"
	"github.com/wuziqi-io/gomoku-server/internal/wire"
)

// SessionActor routes between two PlayerActors and one BoardActor, per
// spec.md section 4.6. It is ephemeral: spawned once both of a room's seats
// are ready, and stopped (taking its two children down with it) as soon as
// the match resolves or a player leaves.
type SessionActor struct {
	id      string
	roomPID *actor.PID
	cfg     wire.SessionConfig
	seatA   SeatInit
	seatB   SeatInit

	boardPID   *actor.PID
	playerAPID *actor.PID
	playerBPID *actor.PID
}

// NewSessionActorProps builds Props for a session. seatA/seatB correspond
// to the room's First/Second positions; their Color fields must already
// reflect the match's (random) color assignment.
func NewSessionActorProps(roomPID *actor.PID, cfg wire.SessionConfig, seatA, seatB SeatInit) *actor.Props {
	return actor.PropsFromProducer(func() actor.Actor {
		return &SessionActor{roomPID: roomPID, cfg: cfg, seatA: seatA, seatB: seatB}
	})
}

func (a *SessionActor) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		a.start(ctx)
	case *SeatPIDsQuery:
		msg.Reply <- SeatPIDs{A: a.playerAPID, B: a.playerBPID}

	case *FieldEvent:
		a.broadcast(ctx, &FieldUpdateEvent{State: msg.State})
	case *BoardResolvedEvent:
		a.onBoardResolved(ctx, msg.Result)
	case *BoardErrorEvent:
		a.broadcast(ctx, &GameErrorEvent{Reason: msg.Reason})
		a.endWithResults(ctx, ResultErrored, ResultErrored)
	case *UndoResolvedEvent:
		a.broadcast(ctx, &UndoEvent{State: msg.State})

	case *PlayerPlay:
		a.onPlayerPlay(ctx, msg)
	case *PlayerRequestUndo:
		ctx.Send(a.other(ctx.Sender()), &UndoRequestEvent{})
	case *PlayerApproveUndo:
		ctx.Send(a.boardPID, &UndoMove{})
	case *PlayerRejectUndo:
		ctx.Send(a.other(ctx.Sender()), &UndoResponseEvent{Kind: UndoRejectedByOpponentKind})
	case *PlayerAutoRejectUndo:
		ctx.Send(a.other(ctx.Sender()), &UndoResponseEvent{Kind: UndoAutoRejectedKind})
	case *PlayerTimeoutRejectUndo:
		a.broadcast(ctx, &UndoResponseEvent{Kind: UndoTimeoutRejectedKind})
	case *PlayerPlayTimeout:
		a.onPlayerTimeout(ctx)
	case *PlayerQuit:
		a.onPlayerQuit(ctx, msg)
	}
}

func (a *SessionActor) start(ctx actor.Context) {
	a.id = shortuuid.New()
	logging.For("mesh").Info("session started", "session_id", a.id, "a", a.seatA.Name, "b", a.seatB.Name)

	a.boardPID = ctx.Spawn(NewBoardActorProps(ctx.Self()))
	a.playerAPID = ctx.Spawn(NewPlayerActorProps(ctx.Self(), a.seatA.Color, a.cfg, a.seatA.ClientSend))
	a.playerBPID = ctx.Spawn(NewPlayerActorProps(ctx.Self(), a.seatB.Color, a.cfg, a.seatB.ClientSend))
	ctx.Send(a.playerAPID, &GameStartedEvent{Color: a.seatA.Color})
	ctx.Send(a.playerBPID, &GameStartedEvent{Color: a.seatB.Color})
}

// other returns the player PID that is not sender.
func (a *SessionActor) other(sender *actor.PID) *actor.PID {
	if sender != nil && sender.Id == a.playerAPID.Id {
		return a.playerBPID
	}
	return a.playerAPID
}

func (a *SessionActor) colorOf(sender *actor.PID) board.Stone {
	if sender != nil && sender.Id == a.playerAPID.Id {
		return a.seatA.Color
	}
	return a.seatB.Color
}

func (a *SessionActor) broadcast(ctx actor.Context, msg interface{}) {
	ctx.Send(a.playerAPID, msg)
	ctx.Send(a.playerBPID, msg)
}

func (a *SessionActor) onPlayerPlay(ctx actor.Context, msg *PlayerPlay) {
	ctx.Send(a.boardPID, &DoMove{X: msg.X, Y: msg.Y, Color: a.colorOf(ctx.Sender())})
}

func (a *SessionActor) onBoardResolved(ctx actor.Context, result board.State) {
	switch result {
	case board.BlackWins:
		a.broadcast(ctx, &GameEndEvent{Kind: GameEndBlackWinsKind})
		a.endByColor(ctx, board.Black)
	case board.WhiteWins:
		a.broadcast(ctx, &GameEndEvent{Kind: GameEndWhiteWinsKind})
		a.endByColor(ctx, board.White)
	case board.Draw:
		a.broadcast(ctx, &GameEndEvent{Kind: GameEndDrawKind})
		a.endWithResults(ctx, ResultDraw, ResultDraw)
	}
}

func (a *SessionActor) onPlayerTimeout(ctx actor.Context) {
	timedOutColor := a.colorOf(ctx.Sender())
	if timedOutColor == board.Black {
		a.broadcast(ctx, &GameEndEvent{Kind: GameEndBlackTimeoutKind})
	} else {
		a.broadcast(ctx, &GameEndEvent{Kind: GameEndWhiteTimeoutKind})
	}
	// The player whose clock expired loses; per spec.md section 4.6 the
	// broadcast carries the color, and the loser is that color's seat.
	a.endByLoserColor(ctx, timedOutColor)
}

// endByColor ends the session with winnerColor's seat as the winner.
func (a *SessionActor) endByColor(ctx actor.Context, winnerColor board.Stone) {
	if a.seatA.Color == winnerColor {
		a.endWithResults(ctx, ResultWin, ResultLose)
	} else {
		a.endWithResults(ctx, ResultLose, ResultWin)
	}
}

func (a *SessionActor) endByLoserColor(ctx actor.Context, loserColor board.Stone) {
	if a.seatA.Color == loserColor {
		a.endWithResults(ctx, ResultLose, ResultWin)
	} else {
		a.endWithResults(ctx, ResultWin, ResultLose)
	}
}

func (a *SessionActor) onPlayerQuit(ctx actor.Context, msg *PlayerQuit) {
	opponentPID := a.other(ctx.Sender())
	ctx.Send(opponentPID, &OpponentQuitEvent{Reason: msg.Reason, Message: msg.Message})

	if ctx.Sender() != nil && ctx.Sender().Id == a.playerAPID.Id {
		a.endWithResults(ctx, ResultQuit, ResultOpponentQuit)
	} else {
		a.endWithResults(ctx, ResultOpponentQuit, ResultQuit)
	}
}

func (a *SessionActor) endWithResults(ctx actor.Context, resultA, resultB GameResultKind) {
	logging.For("mesh").Info("session ended", "session_id", a.id, "a_result", resultA, "b_result", resultB)
	ctx.Send(a.roomPID, &SessionEnded{
		SeatA: SeatResult{Name: a.seatA.Name, Result: resultA},
		SeatB: SeatResult{Name: a.seatB.Name, Result: resultB},
	})
	ctx.Stop(ctx.Self())
}
