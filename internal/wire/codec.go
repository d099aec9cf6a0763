package wire

import (
	"encoding/binary"
	"fmt"

	"github.com/wuziqi-io/gomoku-server/internal/board"
)

// ErrShortBody is returned by Decode when a message body ends before all of
// its fixed-width fields could be read.
var ErrShortBody = fmt.Errorf("wire: message body too short")

// ErrUnknownTag is returned by Decode when no message is registered for a
// tag, or when the legacy tag-100 auth placeholder is received (this
// implementation only speaks the newer three-message auth dialect; see
// SPEC_FULL.md's "Wire protocol dialect decision").
var ErrUnknownTag = fmt.Errorf("wire: unknown or unsupported message tag")

type writer struct {
	buf []byte
}

func (w *writer) u8(v uint8)   { w.buf = append(w.buf, v) }
func (w *writer) u16(v uint16) { w.buf = binary.BigEndian.AppendUint16(w.buf, v) }
func (w *writer) u64(v uint64) { w.buf = binary.BigEndian.AppendUint64(w.buf, v) }
func (w *writer) raw(b []byte) { w.buf = append(w.buf, b...) }

// str writes a u16-length-prefixed UTF-8 string.
func (w *writer) str(s string) {
	w.u16(uint16(len(s)))
	w.buf = append(w.buf, s...)
}

// rest writes a string with no length prefix: callers use this only for the
// final field of a message, whose length is implicit from the frame.
func (w *writer) rest(s string) { w.buf = append(w.buf, s...) }

type reader struct {
	data []byte
	pos  int
}

func (r *reader) u8() (uint8, error) {
	if r.pos+1 > len(r.data) {
		return 0, ErrShortBody
	}
	v := r.data[r.pos]
	r.pos++
	return v, nil
}

func (r *reader) u16() (uint16, error) {
	if r.pos+2 > len(r.data) {
		return 0, ErrShortBody
	}
	v := binary.BigEndian.Uint16(r.data[r.pos:])
	r.pos += 2
	return v, nil
}

func (r *reader) u64() (uint64, error) {
	if r.pos+8 > len(r.data) {
		return 0, ErrShortBody
	}
	v := binary.BigEndian.Uint64(r.data[r.pos:])
	r.pos += 8
	return v, nil
}

func (r *reader) raw(n int) ([]byte, error) {
	if r.pos+n > len(r.data) {
		return nil, ErrShortBody
	}
	v := r.data[r.pos : r.pos+n]
	r.pos += n
	return v, nil
}

// str reads a u16-length-prefixed UTF-8 string.
func (r *reader) str() (string, error) {
	n, err := r.u16()
	if err != nil {
		return "", err
	}
	b, err := r.raw(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// rest returns every remaining byte, consuming the cursor to the end.
func (r *reader) rest() []byte {
	b := r.data[r.pos:]
	r.pos = len(r.data)
	return b
}

func (r *reader) finished() bool { return r.pos == len(r.data) }

func writeMove(w *writer, m Move) {
	w.u8(m.X)
	w.u8(m.Y)
	w.u8(colorByte(m.Color))
}

func readMove(r *reader) (Move, error) {
	x, err := r.u8()
	if err != nil {
		return Move{}, err
	}
	y, err := r.u8()
	if err != nil {
		return Move{}, err
	}
	c, err := r.u8()
	if err != nil {
		return Move{}, err
	}
	color, err := byteColor(c)
	if err != nil {
		return Move{}, err
	}
	return Move{X: x, Y: y, Color: color}, nil
}

// colorByte maps a Stone to the wire's 0/1 move-color encoding (spec.md
// section 6.1, FieldUpdate payload).
func colorByte(s board.Stone) uint8 {
	if s == board.White {
		return 1
	}
	return 0
}

func byteColor(b uint8) (board.Stone, error) {
	switch b {
	case 0:
		return board.Black, nil
	case 1:
		return board.White, nil
	default:
		return 0, fmt.Errorf("wire: invalid move color byte %d", b)
	}
}

func writeGrid(w *writer, grid [board.Size][board.Size]board.Stone) {
	packed := CompressBoard(grid)
	w.raw(packed[:])
}

func readGrid(r *reader) ([board.Size][board.Size]board.Stone, error) {
	raw, err := r.raw(CompressedBoardSize)
	if err != nil {
		return [board.Size][board.Size]board.Stone{}, err
	}
	var packed [CompressedBoardSize]byte
	copy(packed[:], raw)
	return DecompressBoard(packed), nil
}

func writeRoomState(w *writer, s RoomState) {
	w.u8(byte(s.Kind))
	if s.Kind != RoomEmpty {
		w.str(s.Name)
	}
}

func readRoomState(r *reader) (RoomState, error) {
	kind, err := r.u8()
	if err != nil {
		return RoomState{}, err
	}
	s := RoomState{Kind: RoomStateKind(kind)}
	if s.Kind != RoomEmpty {
		name, err := r.str()
		if err != nil {
			return RoomState{}, err
		}
		s.Name = name
	}
	return s, nil
}

// EncodeClient serializes a client->server message into its wire form: one
// tag byte followed by the type-specific body.
func EncodeClient(msg any) ([]byte, error) {
	w := &writer{}
	switch m := msg.(type) {
	case CreateRoom:
		w.u8(uint8(TagCreateRoom))
		w.u64(m.UndoRequestTimeoutSeconds)
		w.u64(m.UndoDialogueExtraSeconds)
		w.u64(m.PlayTimeoutSeconds)
	case JoinRoom:
		w.u8(uint8(TagJoinRoom))
		w.rest(m.Token.String())
	case QuitRoom:
		w.u8(uint8(TagQuitRoom))
	case Ready:
		w.u8(uint8(TagReady))
	case Unready:
		w.u8(uint8(TagUnready))
	case Play:
		w.u8(uint8(TagPlay))
		w.u8(m.X)
		w.u8(m.Y)
	case RequestUndo:
		w.u8(uint8(TagRequestUndo))
	case ApproveUndo:
		w.u8(uint8(TagApproveUndo))
	case RejectUndo:
		w.u8(uint8(TagRejectUndo))
	case QuitGameSession:
		w.u8(uint8(TagQuitGameSession))
	case ExitGame:
		w.u8(uint8(TagExitGame))
	case ClientError:
		w.u8(uint8(TagClientError))
		w.rest(m.Message)
	case Login:
		w.u8(uint8(TagLogin))
		w.str(m.Name)
		w.rest(m.Password)
	case CreateAccount:
		w.u8(uint8(TagCreateAccount))
		w.str(m.Name)
		w.rest(m.Password)
	case UpdateAccount:
		w.u8(uint8(TagUpdateAccount))
		w.str(m.Name)
		w.str(m.OldPassword)
		w.rest(m.NewPassword)
	case SearchOnlinePlayers:
		w.u8(uint8(TagSearchOnlinePlayers))
		w.u8(boolByte(m.HasName))
		if m.HasName {
			w.str(m.Name)
		}
		w.u8(m.Limit)
	case ToPlayer:
		w.u8(uint8(TagToPlayer))
		w.u16(uint16(len(m.Name)))
		w.raw([]byte(m.Name))
		w.raw(m.Message)
	case ChatMessage:
		w.u8(uint8(TagChatMessage))
		w.rest(m.Message)
	default:
		return nil, fmt.Errorf("wire: unencodable client message %T", msg)
	}
	return w.buf, nil
}

// DecodeClient parses a wire-form client message back into its typed body.
func DecodeClient(data []byte) (any, error) {
	if len(data) == 0 {
		return nil, ErrShortBody
	}
	tag := ClientTag(data[0])
	r := &reader{data: data[1:]}
	switch tag {
	case TagCreateRoom:
		a, err := r.u64()
		if err != nil {
			return nil, err
		}
		b, err := r.u64()
		if err != nil {
			return nil, err
		}
		c, err := r.u64()
		if err != nil {
			return nil, err
		}
		return CreateRoom{UndoRequestTimeoutSeconds: a, UndoDialogueExtraSeconds: b, PlayTimeoutSeconds: c}, nil
	case TagJoinRoom:
		tok, err := DecodeToken(string(r.rest()))
		if err != nil {
			return nil, err
		}
		return JoinRoom{Token: tok}, nil
	case TagQuitRoom:
		return QuitRoom{}, nil
	case TagReady:
		return Ready{}, nil
	case TagUnready:
		return Unready{}, nil
	case TagPlay:
		x, err := r.u8()
		if err != nil {
			return nil, err
		}
		y, err := r.u8()
		if err != nil {
			return nil, err
		}
		return Play{X: x, Y: y}, nil
	case TagRequestUndo:
		return RequestUndo{}, nil
	case TagApproveUndo:
		return ApproveUndo{}, nil
	case TagRejectUndo:
		return RejectUndo{}, nil
	case TagQuitGameSession:
		return QuitGameSession{}, nil
	case TagExitGame:
		return ExitGame{}, nil
	case TagClientError:
		return ClientError{Message: string(r.rest())}, nil
	case TagLegacyAuth:
		return nil, ErrUnknownTag
	case TagLogin:
		name, err := r.str()
		if err != nil {
			return nil, err
		}
		return Login{Name: name, Password: string(r.rest())}, nil
	case TagCreateAccount:
		name, err := r.str()
		if err != nil {
			return nil, err
		}
		return CreateAccount{Name: name, Password: string(r.rest())}, nil
	case TagUpdateAccount:
		name, err := r.str()
		if err != nil {
			return nil, err
		}
		oldPw, err := r.str()
		if err != nil {
			return nil, err
		}
		return UpdateAccount{Name: name, OldPassword: oldPw, NewPassword: string(r.rest())}, nil
	case TagSearchOnlinePlayers:
		hasName, err := r.u8()
		if err != nil {
			return nil, err
		}
		msg := SearchOnlinePlayers{HasName: hasName != 0}
		if msg.HasName {
			name, err := r.str()
			if err != nil {
				return nil, err
			}
			msg.Name = name
		}
		limit, err := r.u8()
		if err != nil {
			return nil, err
		}
		msg.Limit = limit
		return msg, nil
	case TagToPlayer:
		n, err := r.u16()
		if err != nil {
			return nil, err
		}
		name, err := r.raw(int(n))
		if err != nil {
			return nil, err
		}
		return ToPlayer{Name: string(name), Message: r.rest()}, nil
	case TagChatMessage:
		return ChatMessage{Message: string(r.rest())}, nil
	default:
		return nil, ErrUnknownTag
	}
}

// EncodeServer serializes a server->client message into its wire form.
func EncodeServer(msg any) ([]byte, error) {
	w := &writer{}
	switch m := msg.(type) {
	case RoomCreated:
		w.u8(uint8(TagRoomCreated))
		w.rest(m.Token.String())
	case PlayerList:
		w.u8(uint8(TagPlayerList))
		w.u16(uint16(len(m.Names)))
		for _, n := range m.Names {
			w.str(n)
		}
	case JoinRoomSuccess:
		w.u8(uint8(TagJoinRoomSuccess))
		w.u8(m.Position)
		writeRoomState(w, m.State)
	case JoinRoomFailureTokenNotFound:
		w.u8(uint8(TagJoinRoomFailureTokenNotFound))
	case JoinRoomFailureRoomFull:
		w.u8(uint8(TagJoinRoomFailureRoomFull))
	case OpponentJoinRoom:
		w.u8(uint8(TagOpponentJoinRoom))
		w.rest(m.Name)
	case OpponentQuitRoom:
		w.u8(uint8(TagOpponentQuitRoom))
	case OpponentReady:
		w.u8(uint8(TagOpponentReady))
	case OpponentUnready:
		w.u8(uint8(TagOpponentUnready))
	case GameStarted:
		w.u8(uint8(TagGameStarted))
		w.u8(colorByte(m.Color))
	case FieldUpdateMsg:
		w.u8(uint8(TagFieldUpdate))
		writeMove(w, m.State.Latest)
		writeGrid(w, m.State.Grid)
	case UndoRequestMsg:
		w.u8(uint8(TagUndoRequest))
	case UndoTimeoutRejected:
		w.u8(uint8(TagUndoTimeoutRejected))
	case UndoAutoRejected:
		w.u8(uint8(TagUndoAutoRejected))
	case UndoMsg:
		w.u8(uint8(TagUndo))
		w.u8(boolByte(m.State.HasLatest))
		if m.State.HasLatest {
			writeMove(w, m.State.Latest)
		} else {
			w.raw([]byte{0, 0, 0})
		}
		writeGrid(w, m.State.Grid)
	case UndoRejectedByOpponent:
		w.u8(uint8(TagUndoRejectedByOpponent))
	case GameEndBlackTimeout:
		w.u8(uint8(TagGameEndBlackTimeout))
	case GameEndWhiteTimeout:
		w.u8(uint8(TagGameEndWhiteTimeout))
	case GameEndBlackWins:
		w.u8(uint8(TagGameEndBlackWins))
	case GameEndWhiteWins:
		w.u8(uint8(TagGameEndWhiteWins))
	case GameEndDraw:
		w.u8(uint8(TagGameEndDraw))
	case OpponentQuitGameSession:
		w.u8(uint8(TagOpponentQuitGameSession))
	case OpponentExitGame:
		w.u8(uint8(TagOpponentExitGame))
	case OpponentDisconnected:
		w.u8(uint8(TagOpponentDisconnected))
	case RoomScores:
		w.u8(uint8(TagRoomScores))
		w.str(m.Name1)
		w.u16(m.Score1)
		w.str(m.Name2)
		w.u16(m.Score2)
	case GameSessionError:
		w.u8(uint8(TagGameSessionError))
		w.rest(m.Message)
	case CreateAccountFailure:
		w.u8(uint8(TagCreateAccountFailure))
		w.u8(byte(m.Kind))
	case LoginFailure:
		w.u8(uint8(TagLoginFailure))
		w.u8(byte(m.Kind))
	case UpdateAccountFailure:
		w.u8(uint8(TagUpdateAccountFailure))
		w.u8(byte(m.Kind))
	case CreateAccountSuccess:
		w.u8(uint8(TagCreateAccountSuccess))
		w.u64(m.UserID)
	case UpdateAccountSuccess:
		w.u8(uint8(TagUpdateAccountSuccess))
		w.u64(m.UserID)
	case ConnectionSuccess:
		w.u8(uint8(TagConnectionSuccess))
		w.u64(m.UserID)
		w.rest(m.Name)
	case ConnectionInitFailure:
		w.u8(uint8(TagConnectionInitFailure))
		w.u8(byte(m.Code))
	case FromPlayer:
		w.u8(uint8(TagFromPlayer))
		w.u16(uint16(len(m.Name)))
		w.raw([]byte(m.Name))
		w.raw(m.Message)
	case ServerChatMessage:
		w.u8(uint8(TagServerChatMessage))
		w.u16(uint16(len(m.Name)))
		w.raw([]byte(m.Name))
		w.rest(m.Message)
	default:
		return nil, fmt.Errorf("wire: unencodable server message %T", msg)
	}
	return w.buf, nil
}

// DecodeServer parses a wire-form server message back into its typed body.
func DecodeServer(data []byte) (any, error) {
	if len(data) == 0 {
		return nil, ErrShortBody
	}
	tag := ServerTag(data[0])
	r := &reader{data: data[1:]}
	switch tag {
	case TagRoomCreated:
		tok, err := DecodeToken(string(r.rest()))
		if err != nil {
			return nil, err
		}
		return RoomCreated{Token: tok}, nil
	case TagPlayerList:
		n, err := r.u16()
		if err != nil {
			return nil, err
		}
		names := make([]string, 0, n)
		for i := 0; i < int(n); i++ {
			s, err := r.str()
			if err != nil {
				return nil, err
			}
			names = append(names, s)
		}
		return PlayerList{Names: names}, nil
	case TagJoinRoomSuccess:
		pos, err := r.u8()
		if err != nil {
			return nil, err
		}
		state, err := readRoomState(r)
		if err != nil {
			return nil, err
		}
		return JoinRoomSuccess{Position: pos, State: state}, nil
	case TagJoinRoomFailureTokenNotFound:
		return JoinRoomFailureTokenNotFound{}, nil
	case TagJoinRoomFailureRoomFull:
		return JoinRoomFailureRoomFull{}, nil
	case TagOpponentJoinRoom:
		return OpponentJoinRoom{Name: string(r.rest())}, nil
	case TagOpponentQuitRoom:
		return OpponentQuitRoom{}, nil
	case TagOpponentReady:
		return OpponentReady{}, nil
	case TagOpponentUnready:
		return OpponentUnready{}, nil
	case TagGameStarted:
		c, err := r.u8()
		if err != nil {
			return nil, err
		}
		color, err := byteColor(c)
		if err != nil {
			return nil, err
		}
		return GameStarted{Color: color}, nil
	case TagFieldUpdate:
		mv, err := readMove(r)
		if err != nil {
			return nil, err
		}
		grid, err := readGrid(r)
		if err != nil {
			return nil, err
		}
		return FieldUpdateMsg{State: FieldState{Latest: mv, Grid: grid}}, nil
	case TagUndoRequest:
		return UndoRequestMsg{}, nil
	case TagUndoTimeoutRejected:
		return UndoTimeoutRejected{}, nil
	case TagUndoAutoRejected:
		return UndoAutoRejected{}, nil
	case TagUndo:
		present, err := r.u8()
		if err != nil {
			return nil, err
		}
		var mv Move
		if present != 0 {
			mv, err = readMove(r)
			if err != nil {
				return nil, err
			}
		} else if _, err := r.raw(3); err != nil {
			return nil, err
		}
		grid, err := readGrid(r)
		if err != nil {
			return nil, err
		}
		return UndoMsg{State: FieldStateNullable{HasLatest: present != 0, Latest: mv, Grid: grid}}, nil
	case TagUndoRejectedByOpponent:
		return UndoRejectedByOpponent{}, nil
	case TagGameEndBlackTimeout:
		return GameEndBlackTimeout{}, nil
	case TagGameEndWhiteTimeout:
		return GameEndWhiteTimeout{}, nil
	case TagGameEndBlackWins:
		return GameEndBlackWins{}, nil
	case TagGameEndWhiteWins:
		return GameEndWhiteWins{}, nil
	case TagGameEndDraw:
		return GameEndDraw{}, nil
	case TagOpponentQuitGameSession:
		return OpponentQuitGameSession{}, nil
	case TagOpponentExitGame:
		return OpponentExitGame{}, nil
	case TagOpponentDisconnected:
		return OpponentDisconnected{}, nil
	case TagRoomScores:
		n1, err := r.str()
		if err != nil {
			return nil, err
		}
		s1, err := r.u16()
		if err != nil {
			return nil, err
		}
		n2, err := r.str()
		if err != nil {
			return nil, err
		}
		s2, err := r.u16()
		if err != nil {
			return nil, err
		}
		return RoomScores{Name1: n1, Score1: s1, Name2: n2, Score2: s2}, nil
	case TagGameSessionError:
		return GameSessionError{Message: string(r.rest())}, nil
	case TagCreateAccountFailure:
		k, err := r.u8()
		if err != nil {
			return nil, err
		}
		return CreateAccountFailure{Kind: CreateAccountFailureKind(k)}, nil
	case TagLoginFailure:
		k, err := r.u8()
		if err != nil {
			return nil, err
		}
		return LoginFailure{Kind: LoginFailureKind(k)}, nil
	case TagUpdateAccountFailure:
		k, err := r.u8()
		if err != nil {
			return nil, err
		}
		return UpdateAccountFailure{Kind: UpdateAccountFailureKind(k)}, nil
	case TagCreateAccountSuccess:
		id, err := r.u64()
		if err != nil {
			return nil, err
		}
		return CreateAccountSuccess{UserID: id}, nil
	case TagUpdateAccountSuccess:
		id, err := r.u64()
		if err != nil {
			return nil, err
		}
		return UpdateAccountSuccess{UserID: id}, nil
	case TagConnectionSuccess:
		id, err := r.u64()
		if err != nil {
			return nil, err
		}
		return ConnectionSuccess{UserID: id, Name: string(r.rest())}, nil
	case TagConnectionInitFailure:
		c, err := r.u8()
		if err != nil {
			return nil, err
		}
		return ConnectionInitFailure{Code: ConnectionInitFailureCode(c)}, nil
	case TagFromPlayer:
		n, err := r.u16()
		if err != nil {
			return nil, err
		}
		name, err := r.raw(int(n))
		if err != nil {
			return nil, err
		}
		return FromPlayer{Name: string(name), Message: r.rest()}, nil
	case TagServerChatMessage:
		n, err := r.u16()
		if err != nil {
			return nil, err
		}
		name, err := r.raw(int(n))
		if err != nil {
			return nil, err
		}
		return ServerChatMessage{Name: string(name), Message: string(r.rest())}, nil
	default:
		return nil, ErrUnknownTag
	}
}

func boolByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
