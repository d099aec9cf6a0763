// Package wire is the binary codec for every client<->server message
// (spec.md section 6.1), plus the packed 15x15 board representation and the
// bijective RoomToken alphabet. Every message is one tag byte followed by a
// type-specific body; all integers are big-endian.
package wire

// ClientTag identifies a client->server message. This implementation picks
// the newer three-message auth dialect (Login/CreateAccount/UpdateAccount)
// over the legacy single tag-100 placeholder; see SPEC_FULL.md's "Wire
// protocol dialect decision". DecodeClient rejects the legacy tag 100 with
// ErrUnknownTag rather than misinterpreting it; no DecodeError frame is
// sent to the peer.
type ClientTag byte

const (
	TagCreateRoom        ClientTag = 0
	TagJoinRoom          ClientTag = 1
	TagQuitRoom          ClientTag = 2
	TagReady             ClientTag = 3
	TagUnready           ClientTag = 4
	TagPlay              ClientTag = 5
	TagRequestUndo       ClientTag = 6
	TagApproveUndo       ClientTag = 7
	TagRejectUndo        ClientTag = 8
	TagQuitGameSession   ClientTag = 9
	TagExitGame          ClientTag = 10
	TagClientError       ClientTag = 12
	TagLegacyAuth        ClientTag = 100 // reserved; DecodeClient always returns ErrUnknownTag
	TagLogin             ClientTag = 101
	TagCreateAccount     ClientTag = 102
	TagUpdateAccount     ClientTag = 103
	TagSearchOnlinePlayers ClientTag = 104
	TagToPlayer          ClientTag = 110
	TagChatMessage       ClientTag = 200
)

// ServerTag identifies a server->client message.
type ServerTag byte

const (
	TagRoomCreated               ServerTag = 0
	TagPlayerList                ServerTag = 1
	TagJoinRoomSuccess           ServerTag = 2
	TagJoinRoomFailureTokenNotFound ServerTag = 3
	TagJoinRoomFailureRoomFull   ServerTag = 4
	TagOpponentJoinRoom          ServerTag = 5
	TagOpponentQuitRoom          ServerTag = 6
	TagOpponentReady             ServerTag = 7
	TagOpponentUnready           ServerTag = 8
	TagGameStarted               ServerTag = 9
	TagFieldUpdate               ServerTag = 10
	TagUndoRequest               ServerTag = 11
	TagUndoTimeoutRejected       ServerTag = 12
	TagUndoAutoRejected          ServerTag = 13
	TagUndo                      ServerTag = 14
	TagUndoRejectedByOpponent    ServerTag = 15
	TagGameEndBlackTimeout       ServerTag = 16
	TagGameEndWhiteTimeout       ServerTag = 17
	TagGameEndBlackWins          ServerTag = 18
	TagGameEndWhiteWins          ServerTag = 19
	TagGameEndDraw               ServerTag = 20
	TagOpponentQuitGameSession   ServerTag = 21
	TagOpponentExitGame          ServerTag = 22
	TagOpponentDisconnected      ServerTag = 23
	TagRoomScores                ServerTag = 24
	TagGameSessionError          ServerTag = 25
	TagCreateAccountFailure      ServerTag = 26
	TagLoginFailure              ServerTag = 27
	TagUpdateAccountFailure      ServerTag = 28
	TagCreateAccountSuccess      ServerTag = 29
	TagUpdateAccountSuccess      ServerTag = 30
	TagConnectionSuccess         ServerTag = 100 // also used for LoginSuccess
	TagConnectionInitFailure     ServerTag = 110
	TagFromPlayer                ServerTag = 120
	TagServerChatMessage         ServerTag = 200
)
