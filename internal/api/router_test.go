package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/madkingbot/officialgames/internal/dependencies/mocks"
	"github.com/madkingbot/officialgames/internal/host"
	"github.com/madkingbot/officialgames/internal/testutil"
)

type RouterSuite struct {
	suite.Suite
	router http.Handler
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	gameHost := host.New(host.Config{
		BotID:   1,
		Channel: mocks.NewMockChannel(),
		Clock:   mocks.NewMockClock(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)),
		Random:  mocks.NewMockRandom(),
		Logger:  testutil.NopLogger(),
	})

	s.router = NewRouter(RouterConfig{
		Logger: testutil.NopLogger(),
		Host:   gameHost,
	})
}

func (s *RouterSuite) get(path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *RouterSuite) TestHealthEndpoint() {
	rec := s.get("/api/v1/health")

	s.Equal(http.StatusOK, rec.Code)

	var body map[string]string
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	s.Equal("ok", body["status"])
}

func (s *RouterSuite) TestStatusEndpointWithIdleHost() {
	rec := s.get("/api/v1/status")

	s.Equal(http.StatusOK, rec.Code)

	var status host.Status
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &status))
	s.Empty(status.ActiveGame)
	s.False(status.VoteOpen)
}

func (s *RouterSuite) TestUnknownPathIs404() {
	rec := s.get("/api/v1/nope")
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *RouterSuite) TestStatusRejectsPost() {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/status", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	s.Equal(http.StatusMethodNotAllowed, rec.Code)
}
