package api_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/wordsession/internal/api"
	"github.com/mcoot/wordsession/internal/api/apierr"
	"github.com/mcoot/wordsession/internal/api/middleware"
	"github.com/mcoot/wordsession/internal/api/response"
	"github.com/mcoot/wordsession/internal/factory"
	"github.com/mcoot/wordsession/internal/metrics"
	"github.com/mcoot/wordsession/internal/model"
	"github.com/mcoot/wordsession/internal/services/game"
	"github.com/mcoot/wordsession/internal/services/tilebag"
	"github.com/mcoot/wordsession/internal/testutil"
)

type APISuite struct {
	suite.Suite
	app     *factory.TestApp
	handler http.Handler
}

func TestAPISuite(t *testing.T) {
	suite.Run(t, new(APISuite))
}

func (s *APISuite) SetupTest() {
	s.app = factory.NewTestApp()
	s.Require().NoError(s.app.LoadTestDictionary())

	reg := prometheus.NewRegistry()
	metrics.NewCollector(reg)
	s.handler = api.NewRouter(api.RouterConfig{
		Logger:         testutil.NopLogger(),
		GameController: s.app.GameController,
		Dictionary:     s.app.DictionaryService,
		HubManager:     s.app.HubManager,
		Gatherer:       reg,
	})
}

func (s *APISuite) request(method, path string, body any, playerID model.PlayerID) *httptest.ResponseRecorder {
	var reqBody bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&reqBody).Encode(body))
	}

	req := httptest.NewRequest(method, path, &reqBody)
	req.Header.Set("Content-Type", "application/json")
	if playerID != "" {
		req.Header.Set(middleware.PlayerIDHeader, string(playerID))
	}

	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](s *APISuite, rr *httptest.ResponseRecorder) T {
	var v T
	s.Require().NoError(json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func (s *APISuite) errorCode(rr *httptest.ResponseRecorder) string {
	return decode[apierr.ErrorResponse](s, rr).Error.Code
}

func (s *APISuite) createGame() string {
	s.app.MockRandom.QueueString("GAME01")
	rr := s.request(http.MethodPost, "/api/v1/games", nil, "")
	s.Require().Equal(http.StatusCreated, rr.Code, rr.Body.String())
	return decode[response.Session](s, rr).ID
}

func (s *APISuite) join(gameID, name string) response.JoinResponse {
	rr := s.request(http.MethodPost, "/api/v1/games/"+gameID+"/players", map[string]string{"player_name": name}, "")
	s.Require().Equal(http.StatusCreated, rr.Code, rr.Body.String())
	return decode[response.JoinResponse](s, rr)
}

// place lays the rack tile at index idx, using the rack as returned by join
func (s *APISuite) place(gameID string, player response.Player, idx, row, col int) *httptest.ResponseRecorder {
	return s.request(http.MethodPost, "/api/v1/games/"+gameID+"/pending",
		map[string]any{"tile_id": player.Rack[idx].ID, "row": row, "col": col}, model.PlayerID(player.ID))
}

// Health and dictionary tests

func (s *APISuite) TestHealthCheck() {
	rr := s.request(http.MethodGet, "/api/v1/health", nil, "")

	s.Equal(http.StatusOK, rr.Code)
	resp := decode[response.HealthResponse](s, rr)
	s.Equal("ok", resp.Status)
	s.Equal(len(testutil.Words), resp.DictionaryWords)
}

func (s *APISuite) TestValidateWord() {
	rr := s.request(http.MethodGet, "/api/v1/validate-word/CAB", nil, "")
	s.Equal(http.StatusOK, rr.Code)
	s.True(decode[response.WordCheckResponse](s, rr).IsValid)

	rr = s.request(http.MethodGet, "/api/validate-word/zzq", nil, "")
	s.Equal(http.StatusOK, rr.Code)
	s.JSONEq(`{"word":"zzq","isValid":false}`, rr.Body.String())
}

func (s *APISuite) TestValidateWordWithoutDictionary() {
	app := factory.NewTestApp()
	handler := api.NewRouter(api.RouterConfig{
		Logger:         testutil.NopLogger(),
		GameController: app.GameController,
		Dictionary:     app.DictionaryService,
		HubManager:     app.HubManager,
	})
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/validate-word/cab", nil))

	s.Equal(http.StatusServiceUnavailable, rr.Code)
}

func (s *APISuite) TestMetricsEndpoint() {
	rr := s.request(http.MethodGet, "/metrics", nil, "")

	s.Equal(http.StatusOK, rr.Code)
	s.Contains(rr.Body.String(), "wordsession_")
}

// Session tests

func (s *APISuite) TestCreateAndGetGame() {
	id := s.createGame()
	s.Equal("GAME01", id)

	rr := s.request(http.MethodGet, "/api/v1/games/game01", nil, "")
	s.Require().Equal(http.StatusOK, rr.Code)
	session := decode[response.Session](s, rr)
	s.Equal(string(model.SessionStatusAwaitingPlayers), session.Status)
	s.Equal(tilebag.TotalTiles, session.TilesInBag)
	s.Empty(session.Board.Cells)
}

func (s *APISuite) TestGetUnknownGame() {
	rr := s.request(http.MethodGet, "/api/v1/games/NOPE00", nil, "")

	s.Equal(http.StatusNotFound, rr.Code)
	s.Equal(apierr.CodeSessionNotFound, s.errorCode(rr))
}

func (s *APISuite) TestJoinRevealsOnlyOwnRack() {
	id := s.createGame()
	alice := s.join(id, "Alice")
	bob := s.join(id, "Bob")

	s.Len(alice.Player.Rack, model.RackSize)
	s.True(alice.Player.IsCurrentTurn)
	s.Equal(string(model.SessionStatusInProgress), bob.Session.Status)

	rr := s.request(http.MethodGet, "/api/v1/games/"+id, nil, model.PlayerID(bob.Player.ID))
	session := decode[response.Session](s, rr)
	s.Require().Len(session.Players, 2)
	s.Empty(session.Players[0].Rack)
	s.Equal(model.RackSize, session.Players[0].RackSize)
	s.Len(session.Players[1].Rack, model.RackSize)
}

func (s *APISuite) TestJoinValidation() {
	id := s.createGame()

	rr := s.request(http.MethodPost, "/api/v1/games/"+id+"/players", map[string]string{"player_name": ""}, "")
	s.Equal(http.StatusBadRequest, rr.Code)
	s.Equal(apierr.CodeInvalidName, s.errorCode(rr))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/games/"+id+"/players", strings.NewReader("{"))
	rr = httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	s.Equal(http.StatusBadRequest, rr.Code)
	s.Equal(apierr.CodeInvalidRequest, s.errorCode(rr))
}

func (s *APISuite) TestJoinNotificationFailure() {
	id := s.createGame()
	s.app.Notifier.Fail(model.ErrNotificationFailure)

	rr := s.request(http.MethodPost, "/api/v1/games/"+id+"/players", map[string]string{"player_name": "Alice"}, "")

	s.Equal(http.StatusBadGateway, rr.Code)
	s.Equal(apierr.CodeNotificationFailure, s.errorCode(rr))
}

// Command tests

func (s *APISuite) TestCommandsRequirePlayerID() {
	id := s.createGame()

	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/pending"},
		{http.MethodDelete, "/pending"},
		{http.MethodPost, "/moves"},
		{http.MethodPost, "/resign"},
	} {
		rr := s.request(tc.method, "/api/v1/games/"+id+tc.path, nil, "")
		s.Equal(http.StatusUnauthorized, rr.Code, tc.method+" "+tc.path)
	}
}

func (s *APISuite) TestPlaySubmitFlow() {
	id := s.createGame()
	alice := s.join(id, "Alice")
	bob := s.join(id, "Bob")

	// Alice holds seven As
	rr := s.place(id, alice.Player, 0, 7, 7)
	s.Require().Equal(http.StatusOK, rr.Code, rr.Body.String())
	s.Require().Equal(http.StatusOK, s.place(id, alice.Player, 1, 7, 8).Code)

	// Placing on an occupied square is rejected
	rr = s.place(id, alice.Player, 2, 7, 7)
	s.Equal(http.StatusConflict, rr.Code)
	s.Equal(apierr.CodeCellOccupied, s.errorCode(rr))

	// Bob cannot submit out of turn
	rr = s.request(http.MethodPost, "/api/v1/games/"+id+"/moves", nil, model.PlayerID(bob.Player.ID))
	s.Equal(http.StatusForbidden, rr.Code)
	s.Equal(apierr.CodeNotYourTurn, s.errorCode(rr))

	rr = s.request(http.MethodPost, "/api/v1/games/"+id+"/moves", nil, model.PlayerID(alice.Player.ID))
	s.Require().Equal(http.StatusCreated, rr.Code, rr.Body.String())
	resp := decode[response.MoveResponse](s, rr)
	s.Equal(4, resp.Move.Score)
	s.Equal([]string{"AA"}, resp.Move.Words)
	s.Equal(bob.Player.ID, resp.Session.CurrentPlayerID)
	s.Len(resp.Session.Board.Cells, 2)
	s.Equal(string(model.BonusCenter), resp.Session.Board.Cells[0].Bonus)
}

func (s *APISuite) TestInvalidWordAndReset() {
	s.Require().NoError(s.app.DictionaryService.LoadWords([]string{"cab"}))
	id := s.createGame()
	alice := s.join(id, "Alice")
	s.Require().Equal(http.StatusOK, s.place(id, alice.Player, 0, 7, 7).Code)
	s.Require().Equal(http.StatusOK, s.place(id, alice.Player, 1, 7, 8).Code)

	rr := s.request(http.MethodPost, "/api/v1/games/"+id+"/moves", nil, model.PlayerID(alice.Player.ID))
	s.Equal(http.StatusUnprocessableEntity, rr.Code)
	s.Contains(decode[apierr.ErrorResponse](s, rr).Error.Message, "AA")

	rr = s.request(http.MethodDelete, "/api/v1/games/"+id+"/pending", nil, model.PlayerID(alice.Player.ID))
	s.Require().Equal(http.StatusOK, rr.Code)
	session := decode[response.Session](s, rr)
	s.Empty(session.Board.Cells)
	s.Len(session.Players[0].Rack, model.RackSize)
}

func (s *APISuite) TestPlaceRejectsBadLetter() {
	id := s.createGame()
	alice := s.join(id, "Alice")

	rr := s.request(http.MethodPost, "/api/v1/games/"+id+"/pending",
		map[string]any{"tile_id": alice.Player.Rack[0].ID, "row": 7, "col": 7, "letter": "QQ"}, model.PlayerID(alice.Player.ID))
	s.Equal(http.StatusBadRequest, rr.Code)
	s.Equal(apierr.CodeInvalidLetter, s.errorCode(rr))

	rr = s.request(http.MethodPost, "/api/v1/games/"+id+"/pending",
		map[string]any{"tile_id": alice.Player.Rack[0].ID, "row": 15, "col": 0}, model.PlayerID(alice.Player.ID))
	s.Equal(http.StatusBadRequest, rr.Code)
	s.Equal(apierr.CodeInvalidPosition, s.errorCode(rr))
}

func (s *APISuite) TestResign() {
	id := s.createGame()
	alice := s.join(id, "Alice")

	rr := s.request(http.MethodPost, "/api/v1/games/"+id+"/resign", nil, model.PlayerID(alice.Player.ID))
	s.Require().Equal(http.StatusOK, rr.Code)
	session := decode[response.Session](s, rr)
	s.Equal(string(model.SessionStatusEnded), session.Status)
	s.Equal("Alice resigned", session.EndReason)

	rr = s.request(http.MethodPost, "/api/v1/games/"+id+"/players", map[string]string{"player_name": "Bob"}, "")
	s.Equal(http.StatusConflict, rr.Code)
	s.Equal(apierr.CodeSessionEnded, s.errorCode(rr))
}

// Event stream tests

// openStream connects to a session's event stream and returns a reader of
// (event, data) pairs
func (s *APISuite) openStream(handler http.Handler, id string) func() (string, string) {
	srv := httptest.NewServer(handler)
	s.T().Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/api/v1/games/" + id + "/events")
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = resp.Body.Close() })
	s.Require().Equal("text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	return func() (string, string) {
		var name, data string
		for {
			line, err := reader.ReadString('\n')
			s.Require().NoError(err)
			switch {
			case line == "\n":
				return name, data
			case strings.HasPrefix(line, "event: "):
				name = strings.TrimSpace(strings.TrimPrefix(line, "event: "))
			case strings.HasPrefix(line, "data: "):
				data += strings.TrimSuffix(strings.TrimPrefix(line, "data: "), "\n")
			}
		}
	}
}

func (s *APISuite) TestEventStream() {
	id := s.createGame()
	readEvent := s.openStream(s.handler, id)

	name, data := readEvent()
	s.Equal("snapshot", name)
	var snapshot model.GameSession
	s.Require().NoError(json.Unmarshal([]byte(data), &snapshot))
	s.Equal(model.SessionID(id), snapshot.ID)

	hub := s.app.HubManager.GetHub(model.SessionID(id))
	s.Require().NotNil(hub)
	s.Equal(1, hub.ClientCount())

	s.join(id, "Alice")

	name, data = readEvent()
	s.Equal(string(model.EventPlayerJoined), name)
	var player model.Player
	s.Require().NoError(json.Unmarshal([]byte(data), &player))
	s.Equal("Alice", player.Name)
	s.Empty(player.Rack, "racks are never broadcast")
}

// joiningController joins one queued player after each session read
type joiningController struct {
	game.ControllerInterface
	mu    sync.Mutex
	names []string
}

func (c *joiningController) GetSession(ctx context.Context, id model.SessionID) (*model.GameSession, error) {
	session, err := c.ControllerInterface.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.names) > 0 {
		name := c.names[0]
		c.names = c.names[1:]
		if _, _, err := c.ControllerInterface.Join(ctx, id, name); err != nil {
			return nil, err
		}
	}
	return session, nil
}

func (s *APISuite) TestEventStreamMissesNoJoinWhileConnecting() {
	id := s.createGame()
	handler := api.NewRouter(api.RouterConfig{
		Logger: testutil.NopLogger(),
		GameController: &joiningController{
			ControllerInterface: s.app.GameController,
			names:               []string{"Alice", "Bob"},
		},
		Dictionary: s.app.DictionaryService,
		HubManager: s.app.HubManager,
	})
	readEvent := s.openStream(handler, id)

	// every join is in the snapshot or follows it on the stream
	name, data := readEvent()
	s.Require().Equal("snapshot", name)
	var snapshot model.GameSession
	s.Require().NoError(json.Unmarshal([]byte(data), &snapshot))
	s.Require().Len(snapshot.Players, 1)
	s.Equal("Alice", snapshot.Players[0].Name)
	s.Empty(snapshot.Players[0].Rack, "spectators see no racks")

	name, data = readEvent()
	s.Equal(string(model.EventPlayerJoined), name)
	var player model.Player
	s.Require().NoError(json.Unmarshal([]byte(data), &player))
	s.Equal("Bob", player.Name)
}

func (s *APISuite) TestEventStreamSnapshotShowsOwnRack() {
	id := s.createGame()
	alice := s.join(id, "Alice")
	s.join(id, "Bob")

	srv := httptest.NewServer(s.handler)
	defer srv.Close()
	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/v1/games/"+id+"/events", nil)
	s.Require().NoError(err)
	req.Header.Set(middleware.PlayerIDHeader, alice.Player.ID)
	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer func() { _ = resp.Body.Close() }()

	reader := bufio.NewReader(resp.Body)
	s.Equal("event: snapshot\n", s.readLine(reader))
	var snapshot model.GameSession
	s.Require().NoError(json.Unmarshal([]byte(strings.TrimPrefix(s.readLine(reader), "data: ")), &snapshot))
	s.Require().Len(snapshot.Players, 2)
	s.Len(snapshot.Players[0].Rack, model.RackSize)
	s.Empty(snapshot.Players[1].Rack)
}

func (s *APISuite) readLine(r *bufio.Reader) string {
	line, err := r.ReadString('\n')
	s.Require().NoError(err)
	return line
}

func (s *APISuite) TestEventStreamUnknownGame() {
	rr := s.request(http.MethodGet, "/api/v1/games/NOPE00/events", nil, "")
	s.Equal(http.StatusNotFound, rr.Code)
}
