package room

import (
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/asynkron/protoactor-go/actor"

	"github.com/wuziqi-io/gomoku-server/internal/mesh"
	"github.com/wuziqi-io/gomoku-server/internal/wire"
)

type fakeConn struct {
	mu       sync.Mutex
	received []any
	attached *actor.PID
	detached bool
}

func (c *fakeConn) send(m any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.received = append(c.received, m)
}

func (c *fakeConn) attach(pid *actor.PID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if pid == nil {
		c.detached = true
		return
	}
	c.attached = pid
}

func (c *fakeConn) waitFor(t *testing.T, match func(any) bool) any {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		c.mu.Lock()
		for _, m := range c.received {
			if match(m) {
				c.mu.Unlock()
				return m
			}
		}
		c.mu.Unlock()
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for expected message")
	return nil
}

func seatFor(name string, c *fakeConn) Seat {
	return Seat{Name: name, Send: c.send, AttachPlayer: c.attach}
}

func newTestRoom(t *testing.T) (*actor.ActorSystem, *actor.PID) {
	t.Helper()
	system := actor.NewActorSystem()
	cfg := wire.SessionConfig{UndoRequestTimeoutSeconds: 5, UndoDialogueExtraSeconds: 5, PlayTimeoutSeconds: 30}
	token := wire.RandomToken(rand.New(rand.NewSource(1)))
	roomPID := system.Root.Spawn(NewRoomActorProps(nil, token, cfg, nil))
	return system, roomPID
}

func isJoinRoomSuccess(m any) bool { _, ok := m.(wire.JoinRoomSuccess); return ok }
func isOpponentJoinRoom(m any) bool { _, ok := m.(wire.OpponentJoinRoom); return ok }
func isGameStarted(m any) bool { _, ok := m.(wire.GameStarted); return ok }
func isRoomScores(m any) bool { _, ok := m.(wire.RoomScores); return ok }

func TestRoomJoinReadyStartsSession(t *testing.T) {
	system, roomPID := newTestRoom(t)
	defer system.Root.Stop(roomPID)

	alice, bob := &fakeConn{}, &fakeConn{}
	system.Root.Send(roomPID, &Join{Seat: seatFor("alice", alice)})
	alice.waitFor(t, isJoinRoomSuccess)

	system.Root.Send(roomPID, &Join{Seat: seatFor("bob", bob)})
	bob.waitFor(t, isJoinRoomSuccess)
	alice.waitFor(t, isOpponentJoinRoom)

	system.Root.Send(roomPID, &ReadyMsg{Pos: PositionFirst})
	system.Root.Send(roomPID, &ReadyMsg{Pos: PositionSecond})

	alice.waitFor(t, isGameStarted)
	bob.waitFor(t, isGameStarted)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		alice.mu.Lock()
		attached := alice.attached
		alice.mu.Unlock()
		if attached != nil {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	alice.mu.Lock()
	defer alice.mu.Unlock()
	if alice.attached == nil {
		t.Fatal("alice's connection was never attached to a player actor")
	}
}

func TestScoreWinner(t *testing.T) {
	cases := []struct {
		name       string
		a, b       mesh.GameResultKind
		wantPos    Position
		wantScored bool
	}{
		{"a wins", mesh.ResultWin, mesh.ResultLose, PositionFirst, true},
		{"b wins", mesh.ResultLose, mesh.ResultWin, PositionSecond, true},
		{"a wins by opponent quit", mesh.ResultOpponentQuit, mesh.ResultQuit, PositionFirst, true},
		{"b wins by opponent quit", mesh.ResultQuit, mesh.ResultOpponentQuit, PositionSecond, true},
		{"draw", mesh.ResultDraw, mesh.ResultDraw, 0, false},
		{"errored", mesh.ResultErrored, mesh.ResultErrored, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pos, ok := scoreWinner(tc.a, tc.b)
			if ok != tc.wantScored {
				t.Fatalf("scoreWinner(%v, %v) ok = %v, want %v", tc.a, tc.b, ok, tc.wantScored)
			}
			if ok && pos != tc.wantPos {
				t.Fatalf("scoreWinner(%v, %v) pos = %v, want %v", tc.a, tc.b, pos, tc.wantPos)
			}
		})
	}
}

func TestGameResultLabel(t *testing.T) {
	cases := []struct {
		name string
		a, b mesh.GameResultKind
		want string
	}{
		{"win/lose", mesh.ResultWin, mesh.ResultLose, "win"},
		{"lose/win", mesh.ResultLose, mesh.ResultWin, "win"},
		{"draw", mesh.ResultDraw, mesh.ResultDraw, "draw"},
		{"errored takes priority over win", mesh.ResultErrored, mesh.ResultWin, "errored"},
		{"quit", mesh.ResultQuit, mesh.ResultOpponentQuit, "quit"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := gameResultLabel(tc.a, tc.b); got != tc.want {
				t.Fatalf("gameResultLabel(%v, %v) = %q, want %q", tc.a, tc.b, got, tc.want)
			}
		})
	}
}

// TestRoomSessionEndedUpdatesScores drives a SessionEnded event through the
// room actor for the win, lose, draw and errored pairings, and asserts the
// RoomScores the room reports back to the first seat.
func TestRoomSessionEndedUpdatesScores(t *testing.T) {
	cases := []struct {
		name                   string
		a, b                   mesh.GameResultKind
		wantScore1, wantScore2 uint16
	}{
		{"first seat wins", mesh.ResultWin, mesh.ResultLose, 1, 0},
		{"second seat wins", mesh.ResultLose, mesh.ResultWin, 0, 1},
		{"draw leaves scores untouched", mesh.ResultDraw, mesh.ResultDraw, 0, 0},
		{"errored leaves scores untouched", mesh.ResultErrored, mesh.ResultErrored, 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			system, roomPID := newTestRoom(t)
			defer system.Root.Stop(roomPID)

			alice, bob := &fakeConn{}, &fakeConn{}
			system.Root.Send(roomPID, &Join{Seat: seatFor("alice", alice)})
			alice.waitFor(t, isJoinRoomSuccess)
			system.Root.Send(roomPID, &Join{Seat: seatFor("bob", bob)})
			bob.waitFor(t, isJoinRoomSuccess)

			system.Root.Send(roomPID, &mesh.SessionEnded{
				SeatA: mesh.SeatResult{Name: "alice", Result: tc.a},
				SeatB: mesh.SeatResult{Name: "bob", Result: tc.b},
			})

			got := alice.waitFor(t, isRoomScores).(wire.RoomScores)
			if got.Score1 != tc.wantScore1 || got.Score2 != tc.wantScore2 {
				t.Fatalf("scores = %d/%d, want %d/%d", got.Score1, got.Score2, tc.wantScore1, tc.wantScore2)
			}
		})
	}
}

func TestRoomFullRejectsThirdJoin(t *testing.T) {
	system, roomPID := newTestRoom(t)
	defer system.Root.Stop(roomPID)

	alice, bob, carol := &fakeConn{}, &fakeConn{}, &fakeConn{}
	system.Root.Send(roomPID, &Join{Seat: seatFor("alice", alice)})
	alice.waitFor(t, isJoinRoomSuccess)
	system.Root.Send(roomPID, &Join{Seat: seatFor("bob", bob)})
	bob.waitFor(t, isJoinRoomSuccess)

	system.Root.Send(roomPID, &Join{Seat: seatFor("carol", carol)})
	carol.waitFor(t, func(m any) bool { _, ok := m.(wire.JoinRoomFailureRoomFull); return ok })
}
