package api

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/talgya/planet-ai/internal/engine"
	"github.com/talgya/planet-ai/internal/eventlog"
	"github.com/talgya/planet-ai/internal/persistence"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fixedStatus engine.Status

func (f fixedStatus) Status() engine.Status { return engine.Status(f) }

var started = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newServer(t *testing.T, withJournal bool) *Server {
	t.Helper()
	s := &Server{
		Planet: fixedStatus{
			PlanetID:  3,
			Running:   true,
			AIActive:  true,
			Counters:  engine.Counters{Handled: 1234, Sunrays: 7},
			StartedAt: started,
			UpdatedAt: started.Add(3 * time.Minute),
		},
		RatePerSecond: 100,
		RateBurst:     100,
	}
	if withJournal {
		db, err := persistence.Open(filepath.Join(t.TempDir(), "journal.db"))
		require.NoError(t, err)
		t.Cleanup(func() { db.Close() })
		run, err := db.BeginRun(3, nil)
		require.NoError(t, err)
		for i := 0; i < 3; i++ {
			require.NoError(t, db.Write(eventlog.Event{
				PlanetID: 3,
				Type:     eventlog.InternalPlanetAction,
				Channel:  eventlog.Debug,
				Payload:  eventlog.Payload{"action": "generate_basic_resource", "decision": "true", "resource": "oxygen", "p_sunray": "0.900000"},
				At:       started,
			}))
		}
		s.Journal = db
		s.RunID = run
	}
	return s
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestStatus(t *testing.T) {
	rec := get(t, newServer(t, false).Handler(), "/api/v1/status")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.EqualValues(t, 3, body["planet_id"])
	assert.Equal(t, true, body["ai_active"])
	assert.Equal(t, "1,234", body["messages"])
	assert.Equal(t, "3 minutes", body["uptime"])
}

func TestStatusRejectsPost(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/status", nil)
	rec := httptest.NewRecorder()
	newServer(t, false).Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestEvents(t *testing.T) {
	h := newServer(t, true).Handler()

	rec := get(t, h, "/api/v1/events?limit=2")
	require.Equal(t, http.StatusOK, rec.Code)
	var events []persistence.EventRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &events))
	require.Len(t, events, 2)
	assert.Greater(t, events[0].ID, events[1].ID)
	assert.Equal(t, "generate_basic_resource", events[0].Payload["action"])

	for _, bad := range []string{"0", "-1", "501", "many"} {
		rec := get(t, h, "/api/v1/events?limit="+bad)
		assert.Equal(t, http.StatusBadRequest, rec.Code, bad)
	}
}

func TestJournalDisabled(t *testing.T) {
	h := newServer(t, false).Handler()
	assert.Equal(t, http.StatusServiceUnavailable, get(t, h, "/api/v1/events").Code)
	assert.Equal(t, http.StatusServiceUnavailable, get(t, h, "/api/v1/decisions").Code)
}

func TestDecisions(t *testing.T) {
	s := newServer(t, true)
	rec := get(t, s.Handler(), "/api/v1/decisions")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		RunID     string                      `json:"run_id"`
		Decisions []persistence.DecisionStats `json:"decisions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, s.RunID, body.RunID)
	require.Len(t, body.Decisions, 1)
	assert.Equal(t, 3, body.Decisions[0].Granted)

	rec = get(t, s.Handler(), "/api/v1/decisions?run=other")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Empty(t, body.Decisions)
}

func TestServeShutsDownOnCancel(t *testing.T) {
	s := newServer(t, false)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	resp, err := client.Get("http://" + ln.Addr().String() + "/api/v1/status")
	require.NoError(t, err)
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
