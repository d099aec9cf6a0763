package mesh

import (
	"github.com/asynkron/protoactor-go/actor"

	"github.com/wuziqi-io/gomoku-server/internal/board"
	"github.com/wuziqi-io/gomoku-server/internal/logging"
	"github.com/wuziqi-io/gomoku-server/internal/wire"
)

// maxHistory bounds the move history deque; a full 15x15 board holds at
// most 225 plays.
const maxHistory = board.Size * board.Size

// BoardActor owns one Board plus its move history and reports every
// mutation back to the session that spawned it, per spec.md section 4.4.
type BoardActor struct {
	sessionPID *actor.PID
	grid       *board.Board
	history    []board.Move
}

// NewBoardActorProps builds Props for a BoardActor that reports to
// sessionPID.
func NewBoardActorProps(sessionPID *actor.PID) *actor.Props {
	return actor.PropsFromProducer(func() actor.Actor {
		return &BoardActor{sessionPID: sessionPID, grid: board.New(), history: make([]board.Move, 0, maxHistory)}
	})
}

func (a *BoardActor) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *DoMove:
		a.handleDo(ctx, msg)
	case *UndoMove:
		a.handleUndo(ctx)
	case *KillBoard:
		ctx.Stop(ctx.Self())
	case *actor.Stopping:
		logging.For("board").Debug("board actor stopping")
	}
}

func (a *BoardActor) handleDo(ctx actor.Context, msg *DoMove) {
	if err := a.grid.Play(msg.X, msg.Y, msg.Color); err != nil {
		ctx.Send(a.sessionPID, &BoardErrorEvent{Reason: err.Error()})
		return
	}
	a.history = append(a.history, board.Move{X: msg.X, Y: msg.Y, Color: msg.Color})

	ctx.Send(a.sessionPID, &FieldEvent{State: wire.FieldState{
		Latest: wire.Move{X: uint8(msg.X), Y: uint8(msg.Y), Color: msg.Color},
		Grid:   a.grid.Grid(),
	}})

	switch a.grid.State() {
	case board.BlackWins, board.WhiteWins, board.Draw:
		ctx.Send(a.sessionPID, &BoardResolvedEvent{Result: a.grid.State()})
	case board.Impossible:
		ctx.Send(a.sessionPID, &BoardErrorEvent{Reason: "impossible_game_state"})
	}
}

func (a *BoardActor) handleUndo(ctx actor.Context) {
	if len(a.history) == 0 {
		return
	}
	last := a.history[len(a.history)-1]
	a.history = a.history[:len(a.history)-1]
	if err := a.grid.Clear(last.X, last.Y); err != nil {
		ctx.Send(a.sessionPID, &BoardErrorEvent{Reason: err.Error()})
		return
	}

	state := wire.FieldStateNullable{Grid: a.grid.Grid()}
	if len(a.history) > 0 {
		newLast := a.history[len(a.history)-1]
		state.HasLatest = true
		state.Latest = wire.Move{X: uint8(newLast.X), Y: uint8(newLast.Y), Color: newLast.Color}
	}
	ctx.Send(a.sessionPID, &UndoResolvedEvent{State: state})
}
