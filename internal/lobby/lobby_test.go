package lobby

import (
	"sync"
	"testing"
	"time"

	"github.com/asynkron/protoactor-go/actor"

	"github.com/wuziqi-io/gomoku-server/internal/config"
	"github.com/wuziqi-io/gomoku-server/internal/room"
	"github.com/wuziqi-io/gomoku-server/internal/wire"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Limits.PerIPMaxConnections = 2
	cfg.Limits.SearchResultCap = 20
	cfg.Room.IdleReapIntervalSeconds = 1
	cfg.Room.IdleThresholdSeconds = 1
	cfg.SessionDefaults = wire.SessionConfig{UndoRequestTimeoutSeconds: 5, UndoDialogueExtraSeconds: 5, PlayTimeoutSeconds: 30}
	return cfg
}

type noopConn struct {
	mu       sync.Mutex
	received []any
}

func (c *noopConn) send(m any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.received = append(c.received, m)
}

func (c *noopConn) attach(*actor.PID) {}

func TestCreateRoomAllocatesDistinctTokens(t *testing.T) {
	system := actor.NewActorSystem()
	defer system.Shutdown()
	lb := New(system, nil, testConfig(), nil)

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		c := &noopConn{}
		token, pid := lb.CreateRoom(room.Seat{Name: "creator", Send: c.send, AttachPlayer: c.attach}, testConfig().SessionDefaults)
		if pid == nil {
			t.Fatal("expected a non-nil room PID")
		}
		if seen[token.String()] {
			t.Fatalf("token %s allocated twice", token.String())
		}
		seen[token.String()] = true
	}
}

func TestJoinRoomUnknownTokenFails(t *testing.T) {
	system := actor.NewActorSystem()
	defer system.Shutdown()
	lb := New(system, nil, testConfig(), nil)

	var garbage wire.RoomToken
	c := &noopConn{}
	pid, ok := lb.JoinRoom(garbage, room.Seat{Name: "joiner", Send: c.send, AttachPlayer: c.attach})
	if ok || pid != nil {
		t.Fatal("expected JoinRoom on an unregistered token to fail")
	}
}

func TestJoinRoomKnownTokenReturnsRoomPID(t *testing.T) {
	system := actor.NewActorSystem()
	defer system.Shutdown()
	lb := New(system, nil, testConfig(), nil)

	creatorConn := &noopConn{}
	token, roomPID := lb.CreateRoom(room.Seat{Name: "creator", Send: creatorConn.send, AttachPlayer: creatorConn.attach}, testConfig().SessionDefaults)

	joinerConn := &noopConn{}
	pid, ok := lb.JoinRoom(token, room.Seat{Name: "joiner", Send: joinerConn.send, AttachPlayer: joinerConn.attach})
	if !ok || pid == nil {
		t.Fatal("expected JoinRoom on a registered token to succeed")
	}
	if pid.String() != roomPID.String() {
		t.Fatalf("expected JoinRoom to return the room's own PID, got %s vs %s", pid.String(), roomPID.String())
	}
}

func TestRegisterNameRejectsDuplicate(t *testing.T) {
	system := actor.NewActorSystem()
	defer system.Shutdown()
	lb := New(system, nil, testConfig(), nil)

	c1, c2 := &noopConn{}, &noopConn{}
	if !lb.RegisterName("alice", c1.send) {
		t.Fatal("expected first registration to succeed")
	}
	if lb.RegisterName("alice", c2.send) {
		t.Fatal("expected duplicate registration to fail")
	}
	lb.DeregisterName("alice")
	if !lb.RegisterName("alice", c2.send) {
		t.Fatal("expected registration to succeed again after deregistering")
	}
}

func TestSearchPlayersCapsAtConfiguredLimit(t *testing.T) {
	system := actor.NewActorSystem()
	defer system.Shutdown()
	cfg := testConfig()
	cfg.Limits.SearchResultCap = 3
	lb := New(system, nil, cfg, nil)

	for _, name := range []string{"alice", "bob", "carol", "dave", "erin"} {
		c := &noopConn{}
		lb.RegisterName(name, c.send)
	}

	results := lb.SearchPlayers("", false, 20)
	if len(results) != 3 {
		t.Fatalf("expected results capped at 3, got %d", len(results))
	}
}

func TestSendToPlayerDeliversAndReportsMissing(t *testing.T) {
	system := actor.NewActorSystem()
	defer system.Shutdown()
	lb := New(system, nil, testConfig(), nil)

	c := &noopConn{}
	lb.RegisterName("bob", c.send)

	if !lb.SendToPlayer("alice", "bob", []byte("hi")) {
		t.Fatal("expected delivery to a registered name to succeed")
	}
	if lb.SendToPlayer("alice", "nobody", []byte("hi")) {
		t.Fatal("expected delivery to an unregistered name to fail")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.received) != 1 {
		t.Fatalf("expected exactly one delivered message, got %d", len(c.received))
	}
	if fp, ok := c.received[0].(wire.FromPlayer); !ok || fp.Name != "alice" {
		t.Fatalf("expected a FromPlayer from alice, got %#v", c.received[0])
	}
}

func TestReapIdleRoomsRemovesEmptyStaleRooms(t *testing.T) {
	system := actor.NewActorSystem()
	defer system.Shutdown()
	lb := New(system, nil, testConfig(), nil)

	creatorConn := &noopConn{}
	token, _ := lb.CreateRoom(room.Seat{Name: "creator", Send: creatorConn.send, AttachPlayer: creatorConn.attach}, testConfig().SessionDefaults)
	lb.system.Root.Send(mustRoomPID(t, lb, token), &room.LeaveMsg{Pos: room.PositionFirst})

	time.Sleep(50 * time.Millisecond)
	lb.reapIdleRooms(0)

	if _, ok := lb.rooms.get(token.String()); ok {
		t.Fatal("expected the idle room to be reaped")
	}
}

func mustRoomPID(t *testing.T, lb *Lobby, token wire.RoomToken) *actor.PID {
	t.Helper()
	pid, ok := lb.rooms.get(token.String())
	if !ok {
		t.Fatal("expected room to be registered")
	}
	return pid
}
