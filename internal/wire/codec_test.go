package wire

import (
	"math/rand"
	"reflect"
	"testing"

	"github.com/wuziqi-io/gomoku-server/internal/board"
)

func sampleGrid() [board.Size][board.Size]board.Stone {
	var grid [board.Size][board.Size]board.Stone
	for y := 0; y < board.Size; y++ {
		for x := 0; x < board.Size; x++ {
			grid[y][x] = board.Empty
		}
	}
	grid[0][0] = board.Black
	grid[14][14] = board.White
	grid[7][7] = board.Black
	return grid
}

func TestClientCodecRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	cases := []any{
		CreateRoom{UndoRequestTimeoutSeconds: 30, UndoDialogueExtraSeconds: 5, PlayTimeoutSeconds: 60},
		JoinRoom{Token: RandomToken(rng)},
		QuitRoom{},
		Ready{},
		Unready{},
		Play{X: 7, Y: 7},
		RequestUndo{},
		ApproveUndo{},
		RejectUndo{},
		QuitGameSession{},
		ExitGame{},
		ClientError{Message: "boom"},
		Login{Name: "alice", Password: "hunter2"},
		CreateAccount{Name: "bob", Password: "s3cret!!"},
		UpdateAccount{Name: "carol", OldPassword: "old-pw", NewPassword: "new-pw"},
		SearchOnlinePlayers{HasName: true, Name: "al", Limit: 20},
		SearchOnlinePlayers{HasName: false, Limit: 5},
		ToPlayer{Name: "dave", Message: []byte("hi there")},
		ChatMessage{Message: "gg"},
	}
	for _, c := range cases {
		encoded, err := EncodeClient(c)
		if err != nil {
			t.Fatalf("encode %#v: %v", c, err)
		}
		decoded, err := DecodeClient(encoded)
		if err != nil {
			t.Fatalf("decode %#v: %v", c, err)
		}
		if !reflect.DeepEqual(c, decoded) {
			t.Fatalf("round trip mismatch: sent %#v, got %#v", c, decoded)
		}
	}
}

func TestClientCodecRejectsLegacyAuth(t *testing.T) {
	if _, err := DecodeClient([]byte{byte(TagLegacyAuth)}); err != ErrUnknownTag {
		t.Fatalf("expected ErrUnknownTag for legacy auth tag, got %v", err)
	}
}

func TestServerCodecRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	grid := sampleGrid()
	cases := []any{
		RoomCreated{Token: RandomToken(rng)},
		PlayerList{Names: []string{"alice", "bob", "carol"}},
		JoinRoomSuccess{Position: 1, State: RoomState{Kind: RoomOpponentReady, Name: "alice"}},
		JoinRoomSuccess{Position: 0, State: RoomState{Kind: RoomEmpty}},
		JoinRoomFailureTokenNotFound{},
		JoinRoomFailureRoomFull{},
		OpponentJoinRoom{Name: "bob"},
		OpponentQuitRoom{},
		OpponentReady{},
		OpponentUnready{},
		GameStarted{Color: board.Black},
		GameStarted{Color: board.White},
		FieldUpdateMsg{State: FieldState{Latest: Move{X: 7, Y: 7, Color: board.Black}, Grid: grid}},
		UndoRequestMsg{},
		UndoTimeoutRejected{},
		UndoAutoRejected{},
		UndoMsg{State: FieldStateNullable{HasLatest: true, Latest: Move{X: 5, Y: 5, Color: board.White}, Grid: grid}},
		UndoMsg{State: FieldStateNullable{HasLatest: false, Grid: grid}},
		UndoRejectedByOpponent{},
		GameEndBlackTimeout{},
		GameEndWhiteTimeout{},
		GameEndBlackWins{},
		GameEndWhiteWins{},
		GameEndDraw{},
		OpponentQuitGameSession{},
		OpponentExitGame{},
		OpponentDisconnected{},
		RoomScores{Name1: "alice", Score1: 3, Name2: "bob", Score2: 1},
		GameSessionError{Message: "impossible_game_state"},
		CreateAccountFailure{Kind: CreateAccountAlreadyExists},
		LoginFailure{Kind: LoginPasswordIncorrect},
		UpdateAccountFailure{Kind: UpdateAccountUserDoesNotExist},
		CreateAccountSuccess{UserID: 42},
		UpdateAccountSuccess{UserID: 43},
		ConnectionSuccess{UserID: 1, Name: "alice"},
		ConnectionInitFailure{Code: ConnInitIPMaxConnExceed},
		FromPlayer{Name: "dave", Message: []byte("psst")},
		ServerChatMessage{Name: "alice", Message: "hello"},
	}
	for _, c := range cases {
		encoded, err := EncodeServer(c)
		if err != nil {
			t.Fatalf("encode %#v: %v", c, err)
		}
		decoded, err := DecodeServer(encoded)
		if err != nil {
			t.Fatalf("decode %#v: %v", c, err)
		}
		if !reflect.DeepEqual(c, decoded) {
			t.Fatalf("round trip mismatch: sent %#v, got %#v", c, decoded)
		}
	}
}

func TestDecodeShortBodyErrors(t *testing.T) {
	if _, err := DecodeClient([]byte{byte(TagPlay)}); err != ErrShortBody {
		t.Fatalf("expected ErrShortBody, got %v", err)
	}
	if _, err := DecodeServer([]byte{byte(TagGameStarted)}); err != ErrShortBody {
		t.Fatalf("expected ErrShortBody, got %v", err)
	}
}
