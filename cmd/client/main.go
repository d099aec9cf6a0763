// Command client is a terminal reference client, grounded on the teacher's
// tools/client (a bufio-scanner REPL over a raw net.Dial) and on
// original_source/src/bin/test_client.rs's command grammar and response
// printer, adapted to this repo's framed/TLS wire protocol and
// Login/CreateAccount auth dialect.
package main

import (
	"bufio"
	"crypto/tls"
	"flag"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/wuziqi-io/gomoku-server/internal/framing"
	"github.com/wuziqi-io/gomoku-server/internal/wire"
)

func main() {
	host := flag.String("host", "localhost", "server host")
	port := flag.Int("port", 9000, "server port")
	name := flag.String("name", "", "account name")
	password := flag.String("password", "", "account password")
	register := flag.Bool("register", false, "create the account instead of logging in")
	insecure := flag.Bool("insecure", false, "skip TLS certificate verification (self-signed dev certs)")
	flag.Parse()

	if *name == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "usage: client -name <name> -password <password> [-register] [-host h] [-port p]")
		os.Exit(1)
	}

	addr := net.JoinHostPort(*host, strconv.Itoa(*port))
	raw, err := net.Dial("tcp", addr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect to %s: %v\n", addr, err)
		os.Exit(1)
	}

	tlsConn := tls.Client(raw, &tls.Config{InsecureSkipVerify: *insecure})
	if err := tlsConn.Handshake(); err != nil {
		fmt.Fprintf(os.Stderr, "tls handshake failed: %v\n", err)
		os.Exit(1)
	}

	conn := framing.New(tlsConn, 0, 20*time.Second)
	conn.Start()
	defer conn.Close()

	if *register {
		send(conn, wire.CreateAccount{Name: *name, Password: *password})
	} else {
		send(conn, wire.Login{Name: *name, Password: *password})
	}

	done := make(chan struct{})
	go printResponses(conn, done)
	acceptInput(conn)
	<-done
}

func send(conn *framing.Conn, msg any) {
	payload, err := wire.EncodeClient(msg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "encode failed: %v\n", err)
		return
	}
	if err := conn.Send(payload); err != nil {
		fmt.Fprintf(os.Stderr, "send failed: %v\n", err)
	}
}

func printResponses(conn *framing.Conn, done chan struct{}) {
	defer close(done)
	for ev := range conn.Events() {
		switch ev.Kind {
		case framing.EventPing:
			continue
		case framing.EventLocalError:
			fmt.Printf("connection error: %s\n", ev.Code)
			return
		case framing.EventRemoteError:
			fmt.Printf("server side connection error: %s\n", ev.Code)
			return
		case framing.EventEOF:
			fmt.Println("connection closed")
			return
		case framing.EventResponse:
			msg, err := wire.DecodeServer(ev.Payload)
			if err != nil {
				fmt.Printf("decode error: %v\n", err)
				continue
			}
			fmt.Println(responseString(msg))
		}
	}
}

func acceptInput(conn *framing.Conn) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		msg, ok := parseCommand(line)
		if !ok {
			continue
		}
		send(conn, msg)
		if _, exit := msg.(wire.ExitGame); exit {
			return
		}
	}
}

func parseCommand(line string) (any, bool) {
	lower := strings.ToLower(line)
	switch {
	case strings.HasPrefix(lower, "new room"):
		return wire.CreateRoom{UndoRequestTimeoutSeconds: 30, UndoDialogueExtraSeconds: 15, PlayTimeoutSeconds: 120}, true
	case strings.HasPrefix(lower, "join"):
		fields := strings.SplitN(line, " ", 2)
		if len(fields) < 2 {
			printHelp()
			return nil, false
		}
		token, err := wire.DecodeToken(fields[1])
		if err != nil {
			fmt.Printf("invalid token: %v\n", err)
			return nil, false
		}
		return wire.JoinRoom{Token: token}, true
	case strings.HasPrefix(lower, "quit room"):
		return wire.QuitRoom{}, true
	case strings.HasPrefix(lower, "ready"):
		return wire.Ready{}, true
	case strings.HasPrefix(lower, "unready"):
		return wire.Unready{}, true
	case strings.HasPrefix(lower, "play"):
		fields := strings.Fields(line)
		if len(fields) < 3 {
			printHelp()
			return nil, false
		}
		x, errX := strconv.Atoi(fields[1])
		y, errY := strconv.Atoi(fields[2])
		if errX != nil || errY != nil || x < 0 || x > 255 || y < 0 || y > 255 {
			printHelp()
			return nil, false
		}
		return wire.Play{X: uint8(x), Y: uint8(y)}, true
	case strings.HasPrefix(lower, "request undo"):
		return wire.RequestUndo{}, true
	case strings.HasPrefix(lower, "approve undo"):
		return wire.ApproveUndo{}, true
	case strings.HasPrefix(lower, "reject undo"):
		return wire.RejectUndo{}, true
	case strings.HasPrefix(lower, "quit session"):
		return wire.QuitGameSession{}, true
	case strings.HasPrefix(lower, "chat"):
		fields := strings.SplitN(line, " ", 2)
		if len(fields) < 2 {
			printHelp()
			return nil, false
		}
		return wire.ChatMessage{Message: fields[1]}, true
	case strings.HasPrefix(lower, "to"):
		fields := strings.SplitN(line, " ", 3)
		if len(fields) < 3 {
			printHelp()
			return nil, false
		}
		return wire.ToPlayer{Name: fields[1], Message: []byte(fields[2])}, true
	case strings.HasPrefix(lower, "search"):
		fields := strings.SplitN(line, " ", 2)
		if len(fields) < 2 {
			return wire.SearchOnlinePlayers{Limit: 20}, true
		}
		return wire.SearchOnlinePlayers{HasName: true, Name: fields[1], Limit: 20}, true
	case strings.HasPrefix(lower, "exit"):
		return wire.ExitGame{}, true
	default:
		printHelp()
		return nil, false
	}
}

func printHelp() {
	fmt.Println(`commands:
  new room
  join <token>
  quit room
  ready
  unready
  play <x> <y>
  request undo
  approve undo
  reject undo
  quit session
  chat <msg>
  to <player> <msg>
  search [name]
  exit`)
}

func responseString(msg any) string {
	switch m := msg.(type) {
	case wire.ConnectionSuccess:
		return fmt.Sprintf("connected as %s (id %d)", m.Name, m.UserID)
	case wire.ConnectionInitFailure:
		return fmt.Sprintf("connection init failure: code %d", m.Code)
	case wire.LoginFailure:
		return fmt.Sprintf("login failed: kind %d", m.Kind)
	case wire.CreateAccountFailure:
		return fmt.Sprintf("create account failed: kind %d", m.Kind)
	case wire.CreateAccountSuccess:
		return fmt.Sprintf("account created, id %d", m.UserID)
	case wire.RoomCreated:
		return fmt.Sprintf("room created! token:\n%s", m.Token.String())
	case wire.JoinRoomSuccess:
		return fmt.Sprintf("joined room, seat %d, opponent state %v", m.Position, m.State)
	case wire.JoinRoomFailureTokenNotFound:
		return "room token does not exist"
	case wire.JoinRoomFailureRoomFull:
		return "cannot join room, room is full"
	case wire.OpponentJoinRoom:
		return fmt.Sprintf("opponent (%s) joined room", m.Name)
	case wire.OpponentQuitRoom:
		return "opponent quit room"
	case wire.OpponentReady:
		return "opponent is ready"
	case wire.OpponentUnready:
		return "opponent is not ready"
	case wire.GameStarted:
		if m.Color.String() == "black" {
			return "game started, you play black (first)"
		}
		return "game started, you play white"
	case wire.FieldUpdateMsg:
		return fmt.Sprintf("field updated: latest (%d,%d)", m.State.Latest.X, m.State.Latest.Y)
	case wire.UndoRequestMsg:
		return "received undo request"
	case wire.UndoTimeoutRejected:
		return "undo request rejected by timeout"
	case wire.UndoAutoRejected:
		return "undo request invalid"
	case wire.UndoMsg:
		return "undo permitted"
	case wire.UndoRejectedByOpponent:
		return "undo request rejected"
	case wire.GameEndBlackTimeout:
		return "black player timeout"
	case wire.GameEndWhiteTimeout:
		return "white player timeout"
	case wire.GameEndBlackWins:
		return "black player wins"
	case wire.GameEndWhiteWins:
		return "white player wins"
	case wire.GameEndDraw:
		return "game end: draw"
	case wire.RoomScores:
		return fmt.Sprintf("score update (%s: %d / %s: %d)", m.Name1, m.Score1, m.Name2, m.Score2)
	case wire.OpponentQuitGameSession:
		return "opponent quit game session"
	case wire.OpponentExitGame:
		return "opponent exited game"
	case wire.OpponentDisconnected:
		return "opponent disconnected"
	case wire.GameSessionError:
		return fmt.Sprintf("game session error: %s", m.Message)
	case wire.ServerChatMessage:
		return fmt.Sprintf("chat message from %s:\n>> %s", m.Name, m.Message)
	case wire.FromPlayer:
		return fmt.Sprintf("from %s : %s", m.Name, string(m.Message))
	case wire.PlayerList:
		return fmt.Sprintf("online players: %s", strings.Join(m.Names, ", "))
	default:
		return fmt.Sprintf("unhandled response %T", m)
	}
}
