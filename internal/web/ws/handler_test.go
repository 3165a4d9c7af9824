package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/wordbomb/internal/dependencies/mocks"
	"github.com/mcoot/wordbomb/internal/dependencies/random"
	"github.com/mcoot/wordbomb/internal/model"
	"github.com/mcoot/wordbomb/internal/services/dictionary"
	"github.com/mcoot/wordbomb/internal/services/game"
	"github.com/mcoot/wordbomb/internal/services/lobby"
	"github.com/mcoot/wordbomb/internal/storage/memory"
	"github.com/mcoot/wordbomb/internal/testutil"
)

type received struct {
	Type    model.EventType `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type HandlerSuite struct {
	suite.Suite
	hub        *Hub
	controller *lobby.Controller
	server     *httptest.Server
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	logger := testutil.NopLogger()
	store := memory.New()
	dict := dictionary.New(store, logger)
	s.Require().NoError(dict.LoadWords([]string{"arena", "casa", "perro", "mesa"}))

	cfg := game.DefaultConfig()
	cfg.Constraints = []string{"A"}
	clk := mocks.NewMockClock(time.Now())
	engine := game.NewEngine(dict, store, clk, random.New(), cfg, logger)

	s.hub = NewHub(logger)
	s.controller = lobby.NewController(engine, store, clk, random.New(), s.hub, logger)
	s.server = httptest.NewServer(NewHandler(s.controller, s.hub, DefaultConfig(), logger))
}

func (s *HandlerSuite) TearDownTest() {
	s.hub.Close()
	s.server.Close()
}

// dial opens a connection and consumes the CONNECTED greeting
func (s *HandlerSuite) dial() (*websocket.Conn, model.ConnID) {
	url := "ws" + strings.TrimPrefix(s.server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = conn.Close() })

	msg := s.read(conn)
	s.Require().Equal(model.EventConnected, msg.Type)
	var payload model.ConnectedPayload
	s.Require().NoError(json.Unmarshal(msg.Payload, &payload))
	return conn, payload.ConnectionID
}

func (s *HandlerSuite) send(conn *websocket.Conn, t CommandType, payload any) {
	raw, err := json.Marshal(payload)
	s.Require().NoError(err)
	s.Require().NoError(conn.WriteJSON(Command{Type: t, Payload: raw}))
}

func (s *HandlerSuite) read(conn *websocket.Conn) received {
	s.Require().NoError(conn.SetReadDeadline(time.Now().Add(2 * time.Second)))
	var msg received
	s.Require().NoError(conn.ReadJSON(&msg))
	return msg
}

// readUntil skips messages until one of the given type arrives
func (s *HandlerSuite) readUntil(conn *websocket.Conn, t model.EventType, dst any) {
	for i := 0; i < 20; i++ {
		msg := s.read(conn)
		if msg.Type == t {
			if dst != nil {
				s.Require().NoError(json.Unmarshal(msg.Payload, dst))
			}
			return
		}
	}
	s.FailNow("message not received", string(t))
}

// setupRoom creates a room with a host and one guest
func (s *HandlerSuite) setupRoom() (host *websocket.Conn, hostID model.ConnID, guest *websocket.Conn, guestID model.ConnID, code string) {
	host, hostID = s.dial()
	s.send(host, CommandCreateRoom, CreateRoomPayload{Username: "Host"})
	var created model.RoomCodePayload
	s.readUntil(host, model.EventRoomCreated, &created)
	code = string(created.Code)

	guest, guestID = s.dial()
	s.send(guest, CommandJoinRoom, JoinRoomPayload{Code: strings.ToLower(code), Username: "Guest"})
	s.readUntil(guest, model.EventJoinedRoom, nil)

	var update model.RoomUpdatePayload
	s.readUntil(guest, model.EventRoomUpdate, &update)
	s.Require().Len(update.Players, 2)
	s.readUntil(host, model.EventRoomUpdate, &update)
	s.readUntil(host, model.EventRoomUpdate, &update)
	s.Require().Len(update.Players, 2)
	return host, hostID, guest, guestID, code
}

func (s *HandlerSuite) TestConnectAssignsUUID() {
	_, id := s.dial()
	_, err := uuid.Parse(string(id))
	s.NoError(err)
	s.Eventually(func() bool { return s.hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)
}

func (s *HandlerSuite) TestCreateRoom() {
	conn, id := s.dial()
	s.send(conn, CommandCreateRoom, CreateRoomPayload{Username: "Alice"})

	var created model.RoomCodePayload
	s.readUntil(conn, model.EventRoomCreated, &created)
	s.Len(string(created.Code), model.RoomCodeLength)

	var update model.RoomUpdatePayload
	s.readUntil(conn, model.EventRoomUpdate, &update)
	s.Equal(id, update.HostID)
	s.Require().Len(update.Players, 1)
	s.Equal("Alice", update.Players[0].Username)
}

func (s *HandlerSuite) TestGameFlow() {
	host, hostID, guest, guestID, code := s.setupRoom()

	s.send(host, CommandStartGame, RoomPayload{Code: code})
	var turn model.NextTurnPayload
	s.readUntil(guest, model.EventNextTurn, &turn)
	s.Equal(hostID, turn.ActivePlayerID)
	s.Equal("A", turn.Constraint)

	s.send(guest, CommandSubmitWord, WordPayload{Code: code, Word: "arena"})
	var rejected model.WordRejectedPayload
	s.readUntil(guest, model.EventWordRejected, &rejected)
	s.Equal(CodeNotYourTurn, rejected.Reason)

	s.send(host, CommandSubmitWord, WordPayload{Code: code, Word: "xqza"})
	s.readUntil(host, model.EventWordRejected, &rejected)
	s.Equal(CodeNotAWord, rejected.Reason)

	s.send(host, CommandSubmitWord, WordPayload{Code: code, Word: "Arena"})
	var accepted model.WordAcceptedPayload
	s.readUntil(host, model.EventWordAccepted, &accepted)
	s.Equal("ARENA", accepted.Word)

	s.readUntil(guest, model.EventNextTurn, &turn)
	s.Equal(guestID, turn.ActivePlayerID)

	s.send(guest, CommandSubmitWord, WordPayload{Code: code, Word: "arena"})
	s.readUntil(guest, model.EventWordRejected, &rejected)
	s.Equal(CodeAlreadyUsed, rejected.Reason)
}

func (s *HandlerSuite) TestTypingRelay() {
	host, _, guest, _, code := s.setupRoom()
	s.send(host, CommandStartGame, RoomPayload{Code: code})
	s.readUntil(guest, model.EventNextTurn, nil)

	s.send(host, CommandWordInput, WordPayload{Code: code, Word: "are"})

	var typing model.PlayerTypingPayload
	s.readUntil(guest, model.EventPlayerTyping, &typing)
	s.Equal("are", typing.Word)
}

func (s *HandlerSuite) TestKickPlayer() {
	host, _, guest, guestID, code := s.setupRoom()

	s.send(host, CommandKickPlayer, KickPlayerPayload{Code: code, TargetID: string(guestID)})

	var kicked model.KickedPayload
	s.readUntil(guest, model.EventKicked, &kicked)
	s.Equal(lobby.KickedMessage, kicked.Message)

	var update model.RoomUpdatePayload
	s.readUntil(host, model.EventRoomUpdate, &update)
	s.Len(update.Players, 1)

	s.send(host, CommandKickPlayer, KickPlayerPayload{Code: code, TargetID: string(guestID)})
	var errPayload model.ErrorPayload
	s.readUntil(host, model.EventError, &errPayload)
	s.Equal(CodePlayerNotFound, errPayload.Code)
}

func (s *HandlerSuite) TestHostDisconnectPromotesGuest() {
	host, _, guest, guestID, code := s.setupRoom()

	s.Require().NoError(host.Close())

	var newHost model.NewHostPayload
	s.readUntil(guest, model.EventNewHost, &newHost)
	s.Equal(guestID, newHost.HostID)

	room, err := s.controller.GetRoom(context.Background(), model.RoomCode(code))
	s.Require().NoError(err)
	s.Equal(guestID, room.HostID)
}

func (s *HandlerSuite) TestLastDisconnectClosesRoom() {
	conn, _ := s.dial()
	s.send(conn, CommandCreateRoom, CreateRoomPayload{Username: "Solo"})
	s.readUntil(conn, model.EventRoomCreated, nil)
	s.Require().Equal(1, s.controller.ActiveRoomCount())

	s.Require().NoError(conn.Close())

	s.Eventually(func() bool { return s.controller.ActiveRoomCount() == 0 }, time.Second, 10*time.Millisecond)
	s.Eventually(func() bool { return s.hub.ClientCount() == 0 }, time.Second, 10*time.Millisecond)
}

func (s *HandlerSuite) TestErrors() {
	conn, _ := s.dial()
	var errPayload model.ErrorPayload

	s.Require().NoError(conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	s.readUntil(conn, model.EventError, &errPayload)
	s.Equal(CodeBadRequest, errPayload.Code)

	s.Require().NoError(conn.WriteJSON(map[string]string{"type": "DANCE"}))
	s.readUntil(conn, model.EventError, &errPayload)
	s.Equal(CodeUnknownCommand, errPayload.Code)

	s.Require().NoError(conn.WriteJSON(map[string]string{"type": string(CommandJoinRoom)}))
	s.readUntil(conn, model.EventError, &errPayload)
	s.Equal(CodeBadRequest, errPayload.Code)

	s.send(conn, CommandJoinRoom, JoinRoomPayload{Code: "NOPE", Username: "Lost"})
	s.readUntil(conn, model.EventError, &errPayload)
	s.Equal(CodeRoomNotFound, errPayload.Code)

	s.send(conn, CommandCreateRoom, CreateRoomPayload{Username: "  "})
	s.readUntil(conn, model.EventError, &errPayload)
	s.Equal(CodeInvalidUsername, errPayload.Code)
}

func (s *HandlerSuite) TestSettingsOnlyFromHost() {
	host, _, guest, _, code := s.setupRoom()

	s.send(guest, CommandUpdateSettings, UpdateSettingsPayload{Code: code, Settings: lobby.SettingsPatch{"roundTime": 30}})
	var errPayload model.ErrorPayload
	s.readUntil(guest, model.EventError, &errPayload)
	s.Equal(CodeNotHost, errPayload.Code)

	s.send(host, CommandUpdateSettings, UpdateSettingsPayload{Code: code, Settings: lobby.SettingsPatch{"roundTime": 30}})
	var settings model.SettingsPayload
	s.readUntil(guest, model.EventSettingsUpdated, &settings)
	s.Equal(30, settings.Settings.RoundTimeSeconds)
}
