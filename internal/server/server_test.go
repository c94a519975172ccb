package server_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/flex/internal/server"
	"github.com/Tiliavir/flex/internal/storage"
)

// friday is 2024-01-05, the end of the first week of a ledger started on
// Monday 2024-01-01.
var friday = time.Date(2024, 1, 5, 15, 0, 0, 0, time.UTC)

func newServer(t *testing.T, rateLimit int) (*httptest.Server, storage.Store) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := storage.Open("json", t.TempDir(), logger)
	require.NoError(t, err)
	s := server.New(server.Options{
		Store:     store,
		Logger:    logger,
		Now:       func() time.Time { return friday },
		RateLimit: rateLimit,
	})
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts, store
}

func do(t *testing.T, ts *httptest.Server, method, path, body string) (int, map[string]any) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, ts.URL+path, rd)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(data) > 0 && strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(data, &out), string(data))
	}
	return resp.StatusCode, out
}

func TestHealthz(t *testing.T) {
	ts, _ := newServer(t, 0)
	code, body := do(t, ts, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
}

func TestCreateProject(t *testing.T) {
	ts, _ := newServer(t, 0)

	code, body := do(t, ts, http.MethodPost, "/projects", `{"name":"acme","start_date":"2024-01-01"}`)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "acme", body["name"])
	assert.EqualValues(t, -40*60, body["balance_minutes"])

	code, body = do(t, ts, http.MethodPost, "/projects", `{"name":"acme","start_date":"2024-01-01"}`)
	assert.Equal(t, http.StatusConflict, code)
	assert.Contains(t, body["error"], "already exists")

	code, body = do(t, ts, http.MethodGet, "/projects", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, []any{"acme"}, body["projects"])
}

func TestCreateProjectDefaultsToToday(t *testing.T) {
	ts, _ := newServer(t, 0)
	code, body := do(t, ts, http.MethodPost, "/projects", `{"name":"acme"}`)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, map[string]any{"year": 2024.0, "month": 1.0, "day": 5.0}, body["start_date"])
	assert.Equal(t, "-8 hours", body["balance"])
}

func TestCreateProjectBadRequests(t *testing.T) {
	ts, _ := newServer(t, 0)
	for _, body := range []string{
		`{}`,
		`{"name":"../etc"}`,
		`{"name":"acme","start_date":"someday"}`,
		`{"name":"acme","color":"red"}`,
		`not json`,
	} {
		code, resp := do(t, ts, http.MethodPost, "/projects", body)
		assert.Equal(t, http.StatusBadRequest, code, body)
		assert.NotEmpty(t, resp["error"], body)
	}
}

func TestFirstWeekBalance(t *testing.T) {
	ts, _ := newServer(t, 0)
	code, _ := do(t, ts, http.MethodPost, "/projects", `{"name":"acme","start_date":"2024-01-01"}`)
	require.Equal(t, http.StatusCreated, code)

	for _, d := range []string{"2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04"} {
		code, _ := do(t, ts, http.MethodPost, "/projects/acme/entries", `{"date":"`+d+`","duration":"8h"}`)
		require.Equal(t, http.StatusCreated, code)
	}
	code, body := do(t, ts, http.MethodPost, "/projects/acme/entries",
		`{"from":"8:00","to":"14:30","breaks":["30m"],"description":"Friday"}`)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "2024-01-05: 6 hours, 8:00-14:30, Friday | Breaks: 30 minutes", body["text"])
	assert.Equal(t, "-2 hours", body["balance"])

	code, body = do(t, ts, http.MethodGet, "/projects/acme", "")
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 38*60, body["worked_minutes"])
	assert.EqualValues(t, 40*60, body["expected_minutes"])
	assert.EqualValues(t, -120, body["balance_minutes"])
	assert.EqualValues(t, 5, body["entries"])
}

func TestLogEntryValidation(t *testing.T) {
	ts, _ := newServer(t, 0)
	code, _ := do(t, ts, http.MethodPost, "/projects", `{"name":"acme","start_date":"2024-01-01"}`)
	require.Equal(t, http.StatusCreated, code)

	for _, body := range []string{
		`{}`,
		`{"duration":"1h","from":"9:00","to":"10:00"}`,
		`{"from":"9:00"}`,
		`{"to":"10:00"}`,
		`{"duration":"1h","breaks":["15m"]}`,
		`{"duration":"-1h"}`,
		`{"from":"9:75","to":"10:00"}`,
		`{"duration":"1h","date":"2024-13-01"}`,
	} {
		code, resp := do(t, ts, http.MethodPost, "/projects/acme/entries", body)
		assert.Equal(t, http.StatusBadRequest, code, body)
		assert.NotEmpty(t, resp["error"], body)
	}

	code, body := do(t, ts, http.MethodGet, "/projects/acme", "")
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 0, body["entries"])
}

func TestUnknownProject(t *testing.T) {
	ts, _ := newServer(t, 0)
	for _, tc := range []struct{ method, path, body string }{
		{http.MethodGet, "/projects/ghost", ""},
		{http.MethodGet, "/projects/ghost/entries", ""},
		{http.MethodPost, "/projects/ghost/entries", `{"duration":"1h"}`},
		{http.MethodDelete, "/projects/ghost/entries?date=2024-01-01", ""},
	} {
		code, body := do(t, ts, tc.method, tc.path, tc.body)
		assert.Equal(t, http.StatusNotFound, code, tc.path)
		assert.Contains(t, body["error"], "not initialized", tc.path)
	}
}

func TestListAndDeleteEntries(t *testing.T) {
	ts, _ := newServer(t, 0)
	code, _ := do(t, ts, http.MethodPost, "/projects", `{"name":"acme","start_date":"2024-01-01"}`)
	require.Equal(t, http.StatusCreated, code)
	for _, body := range []string{
		`{"date":"2024-01-01","duration":"2h","description":"a"}`,
		`{"date":"2024-01-02","duration":"90","description":"b"}`,
		`{"date":"2024-01-01","duration":"0:30","description":"c"}`,
	} {
		code, _ := do(t, ts, http.MethodPost, "/projects/acme/entries", body)
		require.Equal(t, http.StatusCreated, code, body)
	}

	code, body := do(t, ts, http.MethodGet, "/projects/acme/entries", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []any{
		"2024-01-01: 2 hours, a",
		"2024-01-02: 1 hour and 30 minutes, b",
		"2024-01-01: 30 minutes, c",
	}, body["text"])
	assert.Len(t, body["entries"], 3)

	code, _ = do(t, ts, http.MethodDelete, "/projects/acme/entries", "")
	assert.Equal(t, http.StatusBadRequest, code)

	code, body = do(t, ts, http.MethodDelete, "/projects/acme/entries?date=2024-01-01", "")
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 2, body["removed"])

	code, body = do(t, ts, http.MethodGet, "/projects/acme/entries", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []any{"2024-01-02: 1 hour and 30 minutes, b"}, body["text"])
}

func TestConcurrentLogsAreSerialized(t *testing.T) {
	ts, _ := newServer(t, 0)
	code, _ := do(t, ts, http.MethodPost, "/projects", `{"name":"acme","start_date":"2024-01-01"}`)
	require.Equal(t, http.StatusCreated, code)

	const n = 20
	var wg sync.WaitGroup
	codes := make([]int, n)
	for i := 0; i < n; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := ts.Client().Post(ts.URL+"/projects/acme/entries", "application/json",
				strings.NewReader(`{"date":"2024-01-01","duration":"15m"}`))
			if err != nil {
				return
			}
			codes[i] = resp.StatusCode
			resp.Body.Close()
		}()
	}
	wg.Wait()
	for i, c := range codes {
		assert.Equal(t, http.StatusCreated, c, "request %d", i)
	}

	code, body := do(t, ts, http.MethodGet, "/projects/acme", "")
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, n, body["entries"])
	assert.EqualValues(t, n*15, body["worked_minutes"])
}

func TestRateLimit(t *testing.T) {
	ts, _ := newServer(t, 2)
	for j := 0; j < 2; j++ {
		code, _ := do(t, ts, http.MethodGet, "/healthz", "")
		require.Equal(t, http.StatusOK, code)
	}
	code, _ := do(t, ts, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusTooManyRequests, code)
}

func TestMetrics(t *testing.T) {
	ts, _ := newServer(t, 0)
	code, _ := do(t, ts, http.MethodPost, "/projects", `{"name":"acme","start_date":"2024-01-01"}`)
	require.Equal(t, http.StatusCreated, code)
	code, _ = do(t, ts, http.MethodPost, "/projects/acme/entries", `{"duration":"1h"}`)
	require.Equal(t, http.StatusCreated, code)

	resp, err := ts.Client().Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	text := string(data)
	assert.Contains(t, text, `flex_entries_logged_total{kind="duration"} 1`)
	assert.Contains(t, text, `flex_http_requests_total{code="201",route="/projects/{name}/entries"} 1`)
}
