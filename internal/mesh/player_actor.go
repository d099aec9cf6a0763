package mesh

import (
	"time"

	"github.com/asynkron/protoactor-go/actor"

	"github.com/wuziqi-io/gomoku-server/internal/board"
	"github.com/wuziqi-io/gomoku-server/internal/wire"
)

// undoDialogue is the player's local view of an in-flight undo negotiation.
type undoDialogue int

const (
	dialogueNone undoDialogue = iota
	// dialogueRequesting: this player asked to undo their own last move and
	// is waiting on the opponent (or a timeout) to resolve it.
	dialogueRequesting
	// dialogueApproving: the opponent asked to undo; this player's turn
	// clock is paused while they decide.
	dialogueApproving
)

// PlayerActor is one seat's turn-clock and undo dialogue, per spec.md
// section 4.5. ClientSend delivers a server->client wire message body to the
// connection that owns this seat; the connection is a plain struct, not an
// actor (see internal/connection), so this is a direct function call rather
// than a PID send.
type PlayerActor struct {
	color      board.Stone
	sessionPID *actor.PID
	cfg        wire.SessionConfig
	clientSend func(any)

	myTurnArmed bool
	allowUndo   bool
	dialogue    undoDialogue

	turnTimer    *pausableTimer
	approveTimer *pausableTimer
}

// NewPlayerActorProps builds Props for one seat. color is this seat's fixed
// stone color for the session's lifetime.
func NewPlayerActorProps(sessionPID *actor.PID, color board.Stone, cfg wire.SessionConfig, clientSend func(any)) *actor.Props {
	return actor.PropsFromProducer(func() actor.Actor {
		return &PlayerActor{
			color:      color,
			sessionPID: sessionPID,
			cfg:        cfg,
			clientSend: clientSend,
		}
	})
}

func (a *PlayerActor) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		a.turnTimer = newPausableTimer(ctx.ActorSystem(), ctx.Self(), func() interface{} { return &playTimeoutMsg{} })
		a.approveTimer = newPausableTimer(ctx.ActorSystem(), ctx.Self(), func() interface{} { return &undoApproveTimeoutMsg{} })

	case *GameStartedEvent:
		a.color = msg.Color
		if a.color == board.Black {
			a.armTurn(ctx)
		}
		a.clientSend(wire.GameStarted{Color: a.color})

	case *ClientPlay:
		a.handleClientPlay(ctx, msg)
	case *FieldUpdateEvent:
		a.handleFieldUpdate(ctx, msg)
	case *ClientRequestUndo:
		a.handleClientRequestUndo(ctx)
	case *UndoRequestEvent:
		a.handleUndoRequestEvent(ctx)
	case *ClientApproveUndo:
		a.handleClientApproveUndo(ctx)
	case *ClientRejectUndo:
		a.handleClientRejectUndo(ctx)
	case *undoApproveTimeoutMsg:
		a.handleApproveTimeout(ctx)
	case *UndoResponseEvent:
		a.handleUndoResponse(msg)
	case *UndoResolvedEvent:
		a.handleUndoResolved(msg)
	case *UndoEvent: // relayed by session using the board's resolved state
		a.handleUndoResolvedWire(msg.State)
	case *playTimeoutMsg:
		a.handlePlayTimeout(ctx)
	case *GameEndEvent:
		a.handleGameEnd(msg)
	case *GameErrorEvent:
		a.cancelAllTimers()
		a.clientSend(wire.GameSessionError{Message: msg.Reason})
	case *OpponentQuitEvent:
		a.cancelAllTimers()
		a.relayOpponentQuit(msg)
		ctx.Stop(ctx.Self())
	case *ClientQuit:
		a.cancelAllTimers()
		ctx.Send(a.sessionPID, &PlayerQuit{Reason: msg.Reason, Message: msg.Message})
		ctx.Stop(ctx.Self())
	}
}

func (a *PlayerActor) armTurn(ctx actor.Context) {
	a.myTurnArmed = true
	a.turnTimer.Arm(time.Duration(a.cfg.PlayTimeoutSeconds) * time.Second)
}

func (a *PlayerActor) handleClientPlay(ctx actor.Context, msg *ClientPlay) {
	if a.dialogue != dialogueNone || !a.myTurnArmed || !board.InRange(int(msg.X), int(msg.Y)) {
		return
	}
	a.myTurnArmed = false
	a.turnTimer.Cancel()
	ctx.Send(a.sessionPID, &PlayerPlay{X: int(msg.X), Y: int(msg.Y)})
}

func (a *PlayerActor) handleFieldUpdate(ctx actor.Context, msg *FieldUpdateEvent) {
	if msg.State.Latest.Color == a.color {
		a.allowUndo = true
	} else {
		a.allowUndo = false
		a.armTurn(ctx)
	}
	a.clientSend(wire.FieldUpdateMsg{State: msg.State})
}

func (a *PlayerActor) handleClientRequestUndo(ctx actor.Context) {
	if a.dialogue != dialogueNone || !a.allowUndo {
		return
	}
	a.dialogue = dialogueRequesting
	a.allowUndo = false
	ctx.Send(a.sessionPID, &PlayerRequestUndo{})
}

func (a *PlayerActor) handleUndoRequestEvent(ctx actor.Context) {
	if !a.myTurnArmed {
		ctx.Send(a.sessionPID, &PlayerAutoRejectUndo{})
		return
	}
	a.turnTimer.Pause()
	a.dialogue = dialogueApproving
	a.approveTimer.Arm(time.Duration(a.cfg.UndoRequestTimeoutSeconds) * time.Second)
	a.clientSend(wire.UndoRequestMsg{})
}

func (a *PlayerActor) handleClientApproveUndo(ctx actor.Context) {
	if a.dialogue != dialogueApproving {
		return
	}
	a.approveTimer.Cancel()
	// The undo flips whose turn it is; the authoritative re-arm happens in
	// handleUndoResolvedWire once the board confirms the new position, so
	// the paused clock is discarded here rather than resumed.
	a.myTurnArmed = false
	a.turnTimer.Cancel()
	a.dialogue = dialogueNone
	ctx.Send(a.sessionPID, &PlayerApproveUndo{})
}

func (a *PlayerActor) handleClientRejectUndo(ctx actor.Context) {
	if a.dialogue != dialogueApproving {
		return
	}
	a.approveTimer.Cancel()
	a.dialogue = dialogueNone
	a.turnTimer.Resume(time.Duration(a.cfg.UndoDialogueExtraSeconds) * time.Second)
	ctx.Send(a.sessionPID, &PlayerRejectUndo{})
}

func (a *PlayerActor) handleApproveTimeout(ctx actor.Context) {
	if a.dialogue != dialogueApproving {
		return
	}
	a.dialogue = dialogueNone
	a.turnTimer.Resume(time.Duration(a.cfg.UndoDialogueExtraSeconds) * time.Second)
	ctx.Send(a.sessionPID, &PlayerTimeoutRejectUndo{})
}

// handleUndoResponse closes a requester's open dialogue on a non-approval
// outcome (rejected by opponent, auto-rejected, or timed out). The
// approver's own clock resume already happened locally (see
// handleApproveTimeout / handleClientRejectUndo); this handler never touches
// timers, only relays the outcome and clears dialogue state.
func (a *PlayerActor) handleUndoResponse(msg *UndoResponseEvent) {
	a.dialogue = dialogueNone
	switch msg.Kind {
	case UndoRejectedByOpponentKind:
		a.clientSend(wire.UndoRejectedByOpponent{})
	case UndoAutoRejectedKind:
		a.clientSend(wire.UndoAutoRejected{})
	case UndoTimeoutRejectedKind:
		a.clientSend(wire.UndoTimeoutRejected{})
	}
}

// handleUndoResolved is reached if the session forwards the board's raw
// UndoResolvedEvent directly; in this implementation the session instead
// wraps it as UndoEvent before broadcasting, so this path is kept for an
// alternate wiring and handles the event exactly as handleUndoResolvedWire
// does.
func (a *PlayerActor) handleUndoResolved(msg *UndoResolvedEvent) {
	a.handleUndoResolvedWire(msg.State)
}

func (a *PlayerActor) handleUndoResolvedWire(state wire.FieldStateNullable) {
	a.dialogue = dialogueNone
	var active bool
	if !state.HasLatest {
		active = a.color == board.Black
	} else {
		active = state.Latest.Color != a.color
	}
	if active {
		a.myTurnArmed = true
		a.turnTimer.Arm(time.Duration(a.cfg.PlayTimeoutSeconds) * time.Second)
	} else {
		a.myTurnArmed = false
		a.turnTimer.Cancel()
	}
	a.clientSend(wire.UndoMsg{State: state})
}

func (a *PlayerActor) handlePlayTimeout(ctx actor.Context) {
	if !a.myTurnArmed {
		return
	}
	a.myTurnArmed = false
	ctx.Send(a.sessionPID, &PlayerPlayTimeout{})
}

func (a *PlayerActor) handleGameEnd(msg *GameEndEvent) {
	a.cancelAllTimers()
	switch msg.Kind {
	case GameEndBlackTimeoutKind:
		a.clientSend(wire.GameEndBlackTimeout{})
	case GameEndWhiteTimeoutKind:
		a.clientSend(wire.GameEndWhiteTimeout{})
	case GameEndBlackWinsKind:
		a.clientSend(wire.GameEndBlackWins{})
	case GameEndWhiteWinsKind:
		a.clientSend(wire.GameEndWhiteWins{})
	case GameEndDrawKind:
		a.clientSend(wire.GameEndDraw{})
	}
}

func (a *PlayerActor) relayOpponentQuit(msg *OpponentQuitEvent) {
	switch msg.Reason {
	case QuitSessionReason:
		a.clientSend(wire.OpponentQuitGameSession{})
	case ExitGameReason:
		a.clientSend(wire.OpponentExitGame{})
	case DisconnectedReason:
		a.clientSend(wire.OpponentDisconnected{})
	case ErrorReason:
		a.clientSend(wire.GameSessionError{Message: msg.Message})
	}
}

func (a *PlayerActor) cancelAllTimers() {
	if a.turnTimer != nil {
		a.turnTimer.Cancel()
	}
	if a.approveTimer != nil {
		a.approveTimer.Cancel()
	}
}
