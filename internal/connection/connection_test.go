package connection

import (
	"net"
	"testing"
	"time"

	"github.com/asynkron/protoactor-go/actor"

	"github.com/wuziqi-io/gomoku-server/internal/config"
	"github.com/wuziqi-io/gomoku-server/internal/credstore"
	"github.com/wuziqi-io/gomoku-server/internal/framing"
	"github.com/wuziqi-io/gomoku-server/internal/lobby"
	"github.com/wuziqi-io/gomoku-server/internal/logging"
	"github.com/wuziqi-io/gomoku-server/internal/wire"
)

func testHarness(t *testing.T) (*Connection, *framing.Conn) {
	t.Helper()
	serverSide, clientSide := net.Pipe()
	t.Cleanup(func() { serverSide.Close(); clientSide.Close() })

	serverConn := framing.New(serverSide, 0, time.Hour)
	serverConn.Start()
	clientConn := framing.New(clientSide, 0, time.Hour)
	clientConn.Start()

	cfg := &config.Config{}
	cfg.Limits.SearchResultCap = 20

	system := actor.NewActorSystem()
	t.Cleanup(system.Shutdown)
	creds := credstore.NewMemStore()
	lb := lobby.New(system, creds, cfg, nil)

	c := &Connection{conn: serverConn, lobby: lb, cfg: cfg, log: logging.For("test"), ip: "127.0.0.1"}
	return c, clientConn
}

func sendFromClient(t *testing.T, clientConn *framing.Conn, msg any) {
	t.Helper()
	payload, err := wire.EncodeClient(msg)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := clientConn.Send(payload); err != nil {
		t.Fatalf("send: %v", err)
	}
}

func nextClientResponse(t *testing.T, clientConn *framing.Conn) any {
	t.Helper()
	select {
	case ev := <-clientConn.Events():
		if ev.Kind != framing.EventResponse {
			t.Fatalf("expected a response event, got kind %v", ev.Kind)
		}
		msg, err := wire.DecodeServer(ev.Payload)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a server response")
		return nil
	}
}

func TestAuthenticateCreateAccountSucceeds(t *testing.T) {
	c, clientConn := testHarness(t)

	done := make(chan bool, 1)
	go func() { done <- c.authenticate() }()

	sendFromClient(t, clientConn, wire.CreateAccount{Name: "alice", Password: "hunter22"})
	resp := nextClientResponse(t, clientConn)
	success, ok := resp.(wire.CreateAccountSuccess)
	if !ok {
		t.Fatalf("expected CreateAccountSuccess, got %#v", resp)
	}
	if success.UserID == 0 {
		t.Fatal("expected a non-zero user id")
	}

	select {
	case ok := <-done:
		if !ok {
			t.Fatal("expected authenticate to report success")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("authenticate never returned")
	}
	if c.name != "alice" {
		t.Fatalf("expected connection name to be alice, got %q", c.name)
	}
}

func TestAuthenticateLoginWrongPasswordThenRetrySucceeds(t *testing.T) {
	c, clientConn := testHarness(t)
	if _, result := c.lobby.Creds.Register("bob", "correctpw"); result != credstore.ResultOK {
		t.Fatalf("setup register: %v", result)
	}

	done := make(chan bool, 1)
	go func() { done <- c.authenticate() }()

	sendFromClient(t, clientConn, wire.Login{Name: "bob", Password: "wrongpw1"})
	resp := nextClientResponse(t, clientConn)
	failure, ok := resp.(wire.LoginFailure)
	if !ok || failure.Kind != wire.LoginPasswordIncorrect {
		t.Fatalf("expected LoginFailure{PasswordIncorrect}, got %#v", resp)
	}

	sendFromClient(t, clientConn, wire.Login{Name: "bob", Password: "correctpw"})
	resp = nextClientResponse(t, clientConn)
	if _, ok := resp.(wire.ConnectionSuccess); !ok {
		t.Fatalf("expected ConnectionSuccess after the correct retry, got %#v", resp)
	}

	select {
	case ok := <-done:
		if !ok {
			t.Fatal("expected authenticate to report success")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("authenticate never returned")
	}
}

func TestAuthenticateDuplicateNameRejected(t *testing.T) {
	c, clientConn := testHarness(t)
	if !c.lobby.RegisterName("carol", func(any) {}) {
		t.Fatal("setup: expected to register carol")
	}
	if _, result := c.lobby.Creds.Register("carol", "hunter22"); result != credstore.ResultOK {
		t.Fatalf("setup register: %v", result)
	}

	done := make(chan bool, 1)
	go func() { done <- c.authenticate() }()

	sendFromClient(t, clientConn, wire.Login{Name: "carol", Password: "hunter22"})
	resp := nextClientResponse(t, clientConn)
	failure, ok := resp.(wire.ConnectionInitFailure)
	if !ok || failure.Code != wire.ConnInitDuplicateName {
		t.Fatalf("expected ConnectionInitFailure{DuplicateName}, got %#v", resp)
	}

	select {
	case ok := <-done:
		if ok {
			t.Fatal("expected authenticate to report failure on a name collision")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("authenticate never returned")
	}
}
