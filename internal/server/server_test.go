package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/John-Robertt/fightlink/internal/catalog"
	"github.com/John-Robertt/fightlink/internal/domain"
	"github.com/John-Robertt/fightlink/internal/match"
	"github.com/John-Robertt/fightlink/internal/stats"
)

type stubSource struct {
	fighters []domain.Fighter
	fights   []domain.FighterFight
	err      error
}

func (s stubSource) SearchFighters(_ context.Context, _ string) ([]domain.Fighter, error) {
	return s.fighters, s.err
}

func (s stubSource) FighterFights(_ context.Context, _ string) ([]domain.FighterFight, error) {
	return s.fights, s.err
}

func newTestServer(src FighterSource) *Server {
	idx := catalog.New([]domain.FightRecord{
		{URL: "https://www.paramountplus.com/shows/video/j1/", Fighter1: "Jon Jones", Fighter2: "Ciryl Gane", Event: "UFC 285", Card: "Main Card"},
	})
	return &Server{Stats: src, Matcher: match.New(idx, "")}
}

func get(t *testing.T, h http.Handler, target string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), "body=%s", rec.Body.String())
	return rec, body
}

func TestHealthz(t *testing.T) {
	rec, body := get(t, newTestServer(nil).Handler(), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
	assert.EqualValues(t, 1, body["catalog"])
}

func TestParamountLink_Found(t *testing.T) {
	h := newTestServer(nil).Handler()
	rec, body := get(t, h, "/api/paramount-link?fighter=Jones&opponent=Gane&event="+url.QueryEscape("UFC 285: Jones vs. Gane"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["found"])
	assert.Equal(t, "https://www.paramountplus.com/shows/video/j1/", body["url"])
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
}

func TestParamountLink_Fallback(t *testing.T) {
	h := newTestServer(nil).Handler()
	rec, body := get(t, h, "/api/paramount-link?fighter=Kamaru+Usman&opponent=Leon+Edwards&event="+url.QueryEscape("UFC 278: Usman vs. Edwards 2"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, body["found"])
	assert.Equal(t, "https://www.paramountplus.com/search/?q=UFC+278+Kamaru+Usman+vs+Leon+Edwards", body["url"])
}

func TestParamountLink_MissingParams(t *testing.T) {
	h := newTestServer(nil).Handler()
	for _, target := range []string{
		"/api/paramount-link",
		"/api/paramount-link?fighter=Jones",
		"/api/paramount-link?opponent=Gane",
		"/api/paramount-link?fighter=+&opponent=Gane",
	} {
		rec, body := get(t, h, target)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		assert.NotEmpty(t, body["error"], target)
	}
}

func TestSearch(t *testing.T) {
	src := stubSource{fighters: []domain.Fighter{{Name: "Jon Jones", URL: "http://ufcstats.com/fighter-details/x", Record: "28-1-0"}}}
	h := newTestServer(src).Handler()

	rec, body := get(t, h, "/api/search?name=Jon")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, body["count"])
	fighters := body["fighters"].([]any)
	require.Len(t, fighters, 1)
	assert.Equal(t, "28-1-0", fighters[0].(map[string]any)["record"])

	rec, _ = get(t, h, "/api/search")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearch_EmptyResultIsArray(t *testing.T) {
	h := newTestServer(stubSource{}).Handler()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/search?name=Nobody", nil))
	assert.JSONEq(t, `{"fighters":[],"count":0}`, rec.Body.String())
}

func TestFights(t *testing.T) {
	src := stubSource{fights: []domain.FighterFight{{Event: "UFC 309: Jones vs. Miocic", Date: "Nov. 16, 2024", Opponent: "Stipe Miocic"}}}
	h := newTestServer(src).Handler()

	rec, body := get(t, h, "/api/fights?url="+url.QueryEscape("http://ufcstats.com/fighter-details/x"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, body["count"])

	rec, _ = get(t, h, "/api/fights")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpstreamErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"fetch failure", &stats.Error{Stage: stats.StageFetch, Err: &stats.HTTPStatusError{StatusCode: 500}}, http.StatusBadGateway},
		{"parse failure", &stats.Error{Stage: stats.StageParse, Err: errors.New("bad html")}, http.StatusBadGateway},
		{"invalid url", &stats.Error{Stage: stats.StageValidate, Err: fmt.Errorf("%w：x", stats.ErrInvalidURL)}, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newTestServer(stubSource{err: tc.err}).Handler()
			rec, body := get(t, h, "/api/fights?url=x")
			assert.Equal(t, tc.want, rec.Code)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestStatsDisabled(t *testing.T) {
	h := (&Server{}).Handler()
	rec, _ := get(t, h, "/api/search?name=Jon")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec, body := get(t, h, "/api/paramount-link?fighter=A&opponent=B")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, body["found"])
}

func TestCORS_Preflight(t *testing.T) {
	h := newTestServer(nil).Handler()
	req := httptest.NewRequest(http.MethodOptions, "/api/search?name=x", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "GET")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestServe_GracefulShutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, ln, newTestServer(nil).Handler()) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve 未在 ctx 取消后返回")
	}
}
