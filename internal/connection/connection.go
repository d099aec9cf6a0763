// Package connection drives one authenticated client's entire lifetime:
// the TLS handshake and per-IP admission decision, the authentication
// loop (spec.md section 4.7), and the phase state machine that routes
// subsequent frames to the lobby, a room, or a live session's player
// actor as the connection moves between them. Grounded on the teacher's
// TCPServer.handleConnection (server/internal/network/network.go),
// widened from a single actor hand-off into the three-phase routing the
// spec's client connection performs.
package connection

import (
	"crypto/tls"
	"log/slog"
	"net"
	"time"

	"github.com/asynkron/protoactor-go/actor"

	"github.com/wuziqi-io/gomoku-server/internal/config"
	"github.com/wuziqi-io/gomoku-server/internal/credstore"
	"github.com/wuziqi-io/gomoku-server/internal/framing"
	"github.com/wuziqi-io/gomoku-server/internal/lobby"
	"github.com/wuziqi-io/gomoku-server/internal/logging"
	"github.com/wuziqi-io/gomoku-server/internal/mesh"
	"github.com/wuziqi-io/gomoku-server/internal/room"
	"github.com/wuziqi-io/gomoku-server/internal/wire"
)

// pingInterval is how often the framing layer sends a liveness Ping.
const pingInterval = 20 * time.Second

// Connection is one client's session from accept to close. It is never an
// actor: it is the one piece of the mesh that talks to actors instead of
// being one (see DESIGN.md's "non-actor connection" open question),
// reaching the room and player actors it is attached to via plain PID
// sends, and being reached in turn via the Send/AttachPlayer closures it
// hands those actors.
type Connection struct {
	conn  *framing.Conn
	lobby *lobby.Lobby
	cfg   *config.Config
	log   *slog.Logger

	ip   string
	name string

	roomPID   *actor.PID
	pos       room.Position
	inRoom    bool
	playerPID *actor.PID
}

// Handle runs a just-accepted connection to completion: TLS handshake,
// admission rejection (if any), authentication, and the dispatch loop.
// It always closes raw before returning.
func Handle(raw net.Conn, ip string, admitted bool, tlsConfig *tls.Config, l *lobby.Lobby, cfg *config.Config) {
	defer raw.Close()
	logger := logging.For("connection")

	tlsConn := tls.Server(raw, tlsConfig)
	if err := tlsConn.Handshake(); err != nil {
		logger.Error("tls handshake failed", "ip", ip, "err", err)
		if admitted {
			l.ReleaseIP(ip)
		}
		return
	}

	fc := framing.New(tlsConn, uint32(cfg.Limits.MaxFramePayload), pingInterval)
	fc.Start()
	defer fc.Close()

	if !admitted {
		sendInitFailure(fc, wire.ConnInitIPMaxConnExceed)
		return
	}
	defer l.ReleaseIP(ip)

	c := &Connection{conn: fc, lobby: l, cfg: cfg, log: logger, ip: ip}
	if !c.authenticate() {
		return
	}
	defer c.cleanup()
	c.dispatchLoop()
}

func sendInitFailure(fc *framing.Conn, code wire.ConnectionInitFailureCode) {
	payload, err := wire.EncodeServer(wire.ConnectionInitFailure{Code: code})
	if err != nil {
		return
	}
	fc.Send(payload)
}

// sendWire encodes and delivers one server->client message. It also
// intercepts JoinRoomSuccess to learn which seat (First/Second) the
// connection now occupies, since nothing else tells it.
func (c *Connection) sendWire(body any) {
	if success, ok := body.(wire.JoinRoomSuccess); ok {
		c.pos = room.Position(success.Position)
	}
	payload, err := wire.EncodeServer(body)
	if err != nil {
		c.log.Error("encode failed", "err", err, "type", body)
		return
	}
	if err := c.conn.Send(payload); err != nil {
		c.log.Debug("send after close", "err", err)
	}
}

func (c *Connection) attachPlayer(pid *actor.PID) {
	c.playerPID = pid
}

// authenticate loops on Login/CreateAccount/UpdateAccount until one
// succeeds, per spec.md section 4.7. Ping is ignored; any framing fault,
// the peer hanging up, or a name collision on an otherwise successful
// authentication ends the connection.
func (c *Connection) authenticate() bool {
	for ev := range c.conn.Events() {
		switch ev.Kind {
		case framing.EventPing:
			continue
		case framing.EventEOF, framing.EventLocalError, framing.EventRemoteError:
			c.log.Debug("connection ended during authentication", "ip", c.ip, "kind", ev.Kind)
			return false
		case framing.EventResponse:
			if c.handleAuthMessage(ev.Payload) {
				return c.name != ""
			}
		}
	}
	return false
}

func (c *Connection) handleAuthMessage(payload []byte) bool {
	msg, err := wire.DecodeClient(payload)
	if err != nil {
		c.log.Debug("decode failed during authentication", "err", err)
		return false
	}
	switch m := msg.(type) {
	case wire.Login:
		return c.handleLogin(m)
	case wire.CreateAccount:
		return c.handleCreateAccount(m)
	case wire.UpdateAccount:
		return c.handleUpdateAccount(m)
	default:
		// Any other message before authentication is out of protocol; the
		// client gets nothing and the loop keeps waiting for one of the
		// three auth messages, per spec.md section 4.7.
		return false
	}
}

func (c *Connection) handleLogin(m wire.Login) bool {
	if ok, _ := wire.ValidateCredentials(m.Name, m.Password); !ok {
		c.sendWire(wire.LoginFailure{Kind: wire.LoginBadInput})
		return false
	}
	userID, result := c.lobby.Creds.Login(m.Name, m.Password)
	switch result {
	case credstore.ResultOK:
		return c.finishAuth(m.Name, wire.ConnectionSuccess{UserID: userID, Name: m.Name})
	case credstore.ResultNotFound:
		c.sendWire(wire.LoginFailure{Kind: wire.LoginAccountDoesNotExist})
	case credstore.ResultPasswordIncorrect:
		c.sendWire(wire.LoginFailure{Kind: wire.LoginPasswordIncorrect})
	default:
		c.sendWire(wire.LoginFailure{Kind: wire.LoginServerError})
	}
	return false
}

func (c *Connection) handleCreateAccount(m wire.CreateAccount) bool {
	if ok, _ := wire.ValidateCredentials(m.Name, m.Password); !ok {
		c.sendWire(wire.CreateAccountFailure{Kind: wire.CreateAccountBadInput})
		return false
	}
	userID, result := c.lobby.Creds.Register(m.Name, m.Password)
	switch result {
	case credstore.ResultOK:
		return c.finishAuth(m.Name, wire.CreateAccountSuccess{UserID: userID})
	case credstore.ResultAlreadyExists:
		c.sendWire(wire.CreateAccountFailure{Kind: wire.CreateAccountAlreadyExists})
	default:
		c.sendWire(wire.CreateAccountFailure{Kind: wire.CreateAccountServerError})
	}
	return false
}

func (c *Connection) handleUpdateAccount(m wire.UpdateAccount) bool {
	if ok, _ := wire.ValidateCredentials(m.Name, m.NewPassword); !ok {
		c.sendWire(wire.UpdateAccountFailure{Kind: wire.UpdateAccountBadInput})
		return false
	}
	userID, result := c.lobby.Creds.Update(m.Name, m.OldPassword, m.NewPassword)
	switch result {
	case credstore.ResultOK:
		return c.finishAuth(m.Name, wire.UpdateAccountSuccess{UserID: userID})
	case credstore.ResultNotFound:
		c.sendWire(wire.UpdateAccountFailure{Kind: wire.UpdateAccountUserDoesNotExist})
	case credstore.ResultPasswordIncorrect:
		c.sendWire(wire.UpdateAccountFailure{Kind: wire.UpdateAccountPasswordIncorrect})
	default:
		c.sendWire(wire.UpdateAccountFailure{Kind: wire.UpdateAccountServerError})
	}
	return false
}

// finishAuth registers the name in the shared directory and sends the
// success response. It reports true in both of its outcomes, since either
// ends the authentication loop: on success c.name is set; on a name
// collision c.name stays empty, the client gets ConnectionInitFailure, and
// authenticate reports failure so the connection closes.
func (c *Connection) finishAuth(name string, success any) bool {
	if !c.lobby.RegisterName(name, func(body any) { c.sendWire(body) }) {
		c.sendWire(wire.ConnectionInitFailure{Code: wire.ConnInitDuplicateName})
		return true
	}
	c.name = name
	c.sendWire(success)
	return true
}

// dispatchLoop is the single consumer of c.conn.Events() for the rest of
// the connection's life, routing each decoded client message by phase.
func (c *Connection) dispatchLoop() {
	for ev := range c.conn.Events() {
		switch ev.Kind {
		case framing.EventPing:
			continue
		case framing.EventEOF:
			c.log.Debug("connection closed", "name", c.name)
			return
		case framing.EventLocalError, framing.EventRemoteError:
			c.log.Debug("connection ended", "name", c.name, "kind", ev.Kind)
			return
		case framing.EventResponse:
			if !c.handleMessage(ev.Payload) {
				return
			}
		}
	}
}

// handleMessage decodes and routes one client message. A false return
// ends the connection.
func (c *Connection) handleMessage(payload []byte) bool {
	msg, err := wire.DecodeClient(payload)
	if err != nil {
		c.log.Debug("decode failed", "err", err, "name", c.name)
		return false
	}

	switch m := msg.(type) {
	case wire.ToPlayer:
		c.lobby.SendToPlayer(c.name, m.Name, m.Message)
		return true
	case wire.SearchOnlinePlayers:
		c.sendWire(wire.PlayerList{Names: c.lobby.SearchPlayers(m.Name, m.HasName, m.Limit)})
		return true
	case wire.CreateRoom:
		c.handleCreateRoom(m)
		return true
	case wire.JoinRoom:
		c.handleJoinRoom(m)
		return true
	case wire.ClientError:
		c.log.Warn("client reported error", "name", c.name, "message", m.Message)
		c.quitWherever(room.ClientErrorRoomReason, mesh.ErrorReason, m.Message)
		return false
	}

	if c.playerPID != nil {
		return c.handleGameMessage(msg)
	}
	if c.inRoom {
		return c.handleRoomMessage(msg)
	}
	// Authenticated but not yet in a room: nothing is valid here beyond
	// what is already handled above, and ExitGame explicitly means
	// terminate (spec.md section 4.9) — so any message reaching this point,
	// ExitGame included, ends the connection rather than being dropped.
	return false
}

func (c *Connection) handleCreateRoom(m wire.CreateRoom) {
	sessionCfg := wire.SessionConfig{
		UndoRequestTimeoutSeconds: m.UndoRequestTimeoutSeconds,
		UndoDialogueExtraSeconds:  m.UndoDialogueExtraSeconds,
		PlayTimeoutSeconds:        m.PlayTimeoutSeconds,
	}
	seat := room.Seat{Name: c.name, Send: c.sendWire, AttachPlayer: c.attachPlayer}
	token, pid := c.lobby.CreateRoom(seat, sessionCfg)
	c.roomPID = pid
	c.inRoom = true
	c.sendWire(wire.RoomCreated{Token: token})
}

func (c *Connection) handleJoinRoom(m wire.JoinRoom) {
	seat := room.Seat{Name: c.name, Send: c.sendWire, AttachPlayer: c.attachPlayer}
	pid, ok := c.lobby.JoinRoom(m.Token, seat)
	if !ok {
		c.sendWire(wire.JoinRoomFailureTokenNotFound{})
		return
	}
	c.roomPID = pid
	c.inRoom = true
}

func (c *Connection) handleRoomMessage(msg any) bool {
	switch m := msg.(type) {
	case wire.Ready:
		c.lobby.Send(c.roomPID, &room.ReadyMsg{Pos: c.pos})
	case wire.Unready:
		c.lobby.Send(c.roomPID, &room.UnreadyMsg{Pos: c.pos})
	case wire.QuitRoom:
		c.lobby.Send(c.roomPID, &room.LeaveMsg{Pos: c.pos, Reason: room.QuitRoomReason})
		c.roomPID = nil
		c.inRoom = false
	case wire.ChatMessage:
		c.lobby.Send(c.roomPID, &room.ChatMsg{Pos: c.pos, Message: m.Message})
	case wire.ExitGame:
		// Unlike QuitRoom, ExitGame never re-adopts the seat (spec.md
		// section 4.8) and ends the connection outright (section 4.9).
		c.lobby.Send(c.roomPID, &room.LeaveMsg{Pos: c.pos, Reason: room.ExitRoomReason})
		c.roomPID = nil
		c.inRoom = false
		return false
	}
	return true
}

func (c *Connection) handleGameMessage(msg any) bool {
	switch m := msg.(type) {
	case wire.Play:
		c.lobby.Send(c.playerPID, &mesh.ClientPlay{X: m.X, Y: m.Y})
	case wire.RequestUndo:
		c.lobby.Send(c.playerPID, &mesh.ClientRequestUndo{})
	case wire.ApproveUndo:
		c.lobby.Send(c.playerPID, &mesh.ClientApproveUndo{})
	case wire.RejectUndo:
		c.lobby.Send(c.playerPID, &mesh.ClientRejectUndo{})
	case wire.QuitGameSession:
		c.lobby.Send(c.playerPID, &mesh.ClientQuit{Reason: mesh.QuitSessionReason})
		c.playerPID = nil
	case wire.ExitGame:
		c.lobby.Send(c.playerPID, &mesh.ClientQuit{Reason: mesh.ExitGameReason})
		c.playerPID = nil
		c.inRoom = false
		c.roomPID = nil
	}
	return true
}

// quitWherever tears down whatever phase the connection is currently in,
// for an explicit client-reported error.
func (c *Connection) quitWherever(roomReason room.QuitReasonKind, meshReason mesh.QuitReason, message string) {
	if c.playerPID != nil {
		c.lobby.Send(c.playerPID, &mesh.ClientQuit{Reason: meshReason, Message: message})
		return
	}
	if c.inRoom && c.roomPID != nil {
		c.lobby.Send(c.roomPID, &room.LeaveMsg{Pos: c.pos, Reason: roomReason})
	}
}

// cleanup runs once the dispatch loop exits for any reason: it deregisters
// the name and notifies whatever the connection was still attached to, so
// an abrupt disconnect surfaces as OpponentDisconnected / the room seeing
// an empty seat rather than hanging forever.
func (c *Connection) cleanup() {
	if c.name != "" {
		c.lobby.DeregisterName(c.name)
	}
	if c.playerPID != nil {
		c.lobby.Send(c.playerPID, &mesh.ClientQuit{Reason: mesh.DisconnectedReason})
		return
	}
	if c.inRoom && c.roomPID != nil {
		c.lobby.Send(c.roomPID, &room.LeaveMsg{Pos: c.pos, Reason: room.ClientErrorRoomReason})
	}
}
