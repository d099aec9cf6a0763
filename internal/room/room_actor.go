// Package room implements the two-seat room of spec.md section 4.8: join,
// ready/unready, quit/exit, chat, and spawning (then reaping the result of)
// a match session. Grounded on the teacher's RoomActor
// (internal/actor/room_actor.go), generalized from an N-player chat room to
// a fixed two-seat match room and widened with score tracking and idle
// accounting.
package room

import (
	"math/rand"
	"time"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/lithammer/shortuuid/v4"

	"github.com/wuziqi-io/gomoku-server/internal/board"
	"github.com/wuziqi-io/gomoku-server/internal/logging"
	"github.com/wuziqi-io/gomoku-server/internal/mesh"
	"github.com/wuziqi-io/gomoku-server/internal/metrics"
	"github.com/wuziqi-io/gomoku-server/internal/wire"
)

// RoomActor owns one room's two seats for its entire lifetime; the lobby
// spawns one per allocated token and reaps it (via Stop) once both seats
// have been empty past the idle threshold.
type RoomActor struct {
	id       string
	token    wire.RoomToken
	lobbyPID *actor.PID
	cfg      wire.SessionConfig
	metrics  *metrics.Registry

	seats  [2]*Seat
	ready  [2]bool
	scores [2]uint16

	sessionPID    *actor.PID
	inactiveSince time.Time
}

// NewRoomActorProps builds Props for a freshly allocated, empty room. reg
// may be nil, in which case match counts are not recorded.
func NewRoomActorProps(lobbyPID *actor.PID, token wire.RoomToken, cfg wire.SessionConfig, reg *metrics.Registry) *actor.Props {
	return actor.PropsFromProducer(func() actor.Actor {
		return &RoomActor{token: token, lobbyPID: lobbyPID, cfg: cfg, metrics: reg}
	})
}

func other(pos Position) Position {
	if pos == PositionFirst {
		return PositionSecond
	}
	return PositionFirst
}

func (a *RoomActor) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		a.id = shortuuid.New()
		a.inactiveSince = time.Now()
		logging.For("room").Debug("room started", "room_id", a.id, "token", a.token.String())
	case *Join:
		a.handleJoin(ctx, msg)
	case *ReadyMsg:
		a.handleReady(ctx, msg.Pos)
	case *UnreadyMsg:
		a.handleUnready(msg.Pos)
	case *LeaveMsg:
		a.handleLeave(msg.Pos)
	case *ChatMsg:
		a.handleChat(msg)
	case *mesh.SessionEnded:
		a.handleSessionEnded(ctx, msg)
	case *StateQuery:
		msg.Reply <- a.snapshot()
	case *actor.Stopping:
		logging.For("room").Debug("room stopping", "room_id", a.id, "token", a.token.String())
	}
}

func (a *RoomActor) handleJoin(ctx actor.Context, msg *Join) {
	var pos Position
	switch {
	case a.seats[PositionFirst] == nil:
		pos = PositionFirst
	case a.seats[PositionSecond] == nil:
		pos = PositionSecond
	default:
		msg.Seat.Send(wire.JoinRoomFailureRoomFull{})
		return
	}

	seat := msg.Seat
	a.seats[pos] = &seat
	a.ready[pos] = false
	a.scores = [2]uint16{}
	a.inactiveSince = time.Time{}

	opp := a.seats[other(pos)]
	state := wire.RoomState{Kind: wire.RoomEmpty}
	if opp != nil {
		if a.ready[other(pos)] {
			state = wire.RoomState{Kind: wire.RoomOpponentReady, Name: opp.Name}
		} else {
			state = wire.RoomState{Kind: wire.RoomOpponentUnready, Name: opp.Name}
		}
		opp.Send(wire.OpponentJoinRoom{Name: seat.Name})
	}
	seat.Send(wire.JoinRoomSuccess{Position: uint8(pos), State: state})
}

func (a *RoomActor) handleReady(ctx actor.Context, pos Position) {
	if a.seats[pos] == nil || a.ready[pos] {
		return
	}
	a.ready[pos] = true
	if opp := a.seats[other(pos)]; opp != nil {
		opp.Send(wire.OpponentReady{})
	}
	if a.ready[PositionFirst] && a.ready[PositionSecond] && a.seats[PositionFirst] != nil && a.seats[PositionSecond] != nil {
		a.startSession(ctx)
	}
}

func (a *RoomActor) handleUnready(pos Position) {
	if a.seats[pos] == nil || !a.ready[pos] {
		return
	}
	a.ready[pos] = false
	if opp := a.seats[other(pos)]; opp != nil {
		opp.Send(wire.OpponentUnready{})
	}
}

func (a *RoomActor) handleLeave(pos Position) {
	seat := a.seats[pos]
	if seat == nil {
		return
	}
	a.seats[pos] = nil
	a.ready[pos] = false
	a.scores = [2]uint16{}
	if opp := a.seats[other(pos)]; opp != nil {
		opp.Send(wire.OpponentQuitRoom{})
	}
	if a.seats[PositionFirst] == nil && a.seats[PositionSecond] == nil {
		a.inactiveSince = time.Now()
	}
}

func (a *RoomActor) handleChat(msg *ChatMsg) {
	seat := a.seats[msg.Pos]
	if seat == nil {
		return
	}
	if opp := a.seats[other(msg.Pos)]; opp != nil {
		opp.Send(wire.ServerChatMessage{Name: seat.Name, Message: msg.Message})
	}
}

// startSession assigns colors at random, spawns the match session as a
// child, and attaches both seats to their player actors.
func (a *RoomActor) startSession(ctx actor.Context) {
	first := a.seats[PositionFirst]
	second := a.seats[PositionSecond]

	firstColor, secondColor := board.Black, board.White
	if rand.Intn(2) == 1 {
		firstColor, secondColor = board.White, board.Black
	}

	seatA := mesh.SeatInit{Name: first.Name, Color: firstColor, ClientSend: first.Send}
	seatB := mesh.SeatInit{Name: second.Name, Color: secondColor, ClientSend: second.Send}
	a.sessionPID = ctx.Spawn(mesh.NewSessionActorProps(ctx.Self(), a.cfg, seatA, seatB))
	logging.For("room").Info("session starting", "room_id", a.id, "token", a.token.String(), "a", first.Name, "b", second.Name)
	if a.metrics != nil {
		a.metrics.ActiveSessions.Inc()
	}

	reply := make(chan mesh.SeatPIDs, 1)
	ctx.Send(a.sessionPID, &mesh.SeatPIDsQuery{Reply: reply})
	select {
	case pids := <-reply:
		if first.AttachPlayer != nil {
			first.AttachPlayer(pids.A)
		}
		if second.AttachPlayer != nil {
			second.AttachPlayer(pids.B)
		}
	case <-time.After(2 * time.Second):
		logging.For("room").Error("session never answered seat PID query", "token", a.token.String())
	}
}

func (a *RoomActor) handleSessionEnded(ctx actor.Context, msg *mesh.SessionEnded) {
	a.sessionPID = nil
	a.ready = [2]bool{}

	if pos, ok := scoreWinner(msg.SeatA.Result, msg.SeatB.Result); ok {
		a.scores[pos]++
	}

	if a.metrics != nil {
		a.metrics.ActiveSessions.Dec()
		a.metrics.GamesFinished.WithLabelValues(gameResultLabel(msg.SeatA.Result, msg.SeatB.Result)).Inc()
	}

	first, second := a.seats[PositionFirst], a.seats[PositionSecond]
	if first != nil {
		first.AttachPlayer(nil)
	}
	if second != nil {
		second.AttachPlayer(nil)
	}

	name1, name2 := "", ""
	if first != nil {
		name1 = first.Name
	}
	if second != nil {
		name2 = second.Name
	}
	scores := wire.RoomScores{Name1: name1, Score1: a.scores[PositionFirst], Name2: name2, Score2: a.scores[PositionSecond]}

	if first != nil {
		first.Send(scores)
		state := wire.RoomState{Kind: wire.RoomEmpty}
		if second != nil {
			state = wire.RoomState{Kind: wire.RoomOpponentUnready, Name: second.Name}
		}
		first.Send(wire.JoinRoomSuccess{Position: uint8(PositionFirst), State: state})
	}
	if second != nil {
		second.Send(scores)
		state := wire.RoomState{Kind: wire.RoomEmpty}
		if first != nil {
			state = wire.RoomState{Kind: wire.RoomOpponentUnready, Name: first.Name}
		}
		second.Send(wire.JoinRoomSuccess{Position: uint8(PositionSecond), State: state})
	}
}

// scoreWinner reports which seat, if any, gets credited for a resolved
// session, per SPEC_FULL.md's GameResult->score mapping (supplemented
// feature 5): a Win or a recorded OpponentQuit identifies the winner side
// directly; Draw and Errored leave scores untouched.
func scoreWinner(a, b mesh.GameResultKind) (Position, bool) {
	switch {
	case a == mesh.ResultWin, a == mesh.ResultOpponentQuit:
		return PositionFirst, true
	case b == mesh.ResultWin, b == mesh.ResultOpponentQuit:
		return PositionSecond, true
	default:
		return 0, false
	}
}

// gameResultLabel reduces a finished session's seat-pair result to a single
// Prometheus label value.
func gameResultLabel(a, b mesh.GameResultKind) string {
	switch {
	case a == mesh.ResultErrored || b == mesh.ResultErrored:
		return "errored"
	case a == mesh.ResultDraw || b == mesh.ResultDraw:
		return "draw"
	case a == mesh.ResultQuit || b == mesh.ResultQuit || a == mesh.ResultOpponentQuit || b == mesh.ResultOpponentQuit:
		return "quit"
	default:
		return "win"
	}
}

func (a *RoomActor) snapshot() State {
	s := State{Token: a.token, InSession: a.sessionPID != nil}
	if a.seats[PositionFirst] != nil {
		s.FirstName = a.seats[PositionFirst].Name
		s.Occupied++
	}
	if a.seats[PositionSecond] != nil {
		s.SecondName = a.seats[PositionSecond].Name
		s.Occupied++
	}
	if !a.inactiveSince.IsZero() {
		s.IdleSince = a.inactiveSince.Unix()
	}
	return s
}
