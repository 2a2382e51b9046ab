package api

import (
	"bytes"
	"context"
	"encoding/json/v2"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/munajatapp/munajat-server/internal/catalog"
	"github.com/munajatapp/munajat-server/internal/config"
	"github.com/munajatapp/munajat-server/internal/http/response"
	"github.com/munajatapp/munajat-server/internal/search"
	"github.com/munajatapp/munajat-server/internal/service"
	"github.com/munajatapp/munajat-server/internal/session"
	"github.com/munajatapp/munajat-server/internal/sse"
	"github.com/munajatapp/munajat-server/internal/syncpoint"
)

const testContent = "اللَّهُمَّ إِنِّي أَسْأَلُكَ\nخدایا از تو درخواست می‌کنم\n◎وَبِقُوَّتِكَ\nو به نیرویت\n◎يَا رَبِّ\nای پروردگار"

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)

	contentRoot := t.TempDir()
	dir := filepath.Join(contentRoot, "dua-kumayl")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "content.txt"), []byte(testContent), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "audio.mp3"), []byte("mp3"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "prayer.json"),
		[]byte(`{"title":"Dua Kumayl","durationMillis":60000}`), 0o644))

	cat, err := catalog.New(contentRoot, logger)
	require.NoError(t, err)

	idx, err := search.NewIndex(search.Options{DataPath: t.TempDir(), Logger: logger})
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })

	events := sse.NewManager(logger)
	ctx, cancel := context.WithCancel(context.Background())
	go events.Start(ctx)
	t.Cleanup(cancel)

	prayerSvc := service.NewPrayerService(cat, idx, events, logger)
	require.NoError(t, prayerSvc.ReindexAll())

	syncStore := syncpoint.NewStore(t.TempDir(), logger)
	syncSvc := service.NewSyncService(syncStore, logger)

	sessions := session.NewManager(session.ManagerOptions{
		Source:     cat,
		SyncPoints: syncStore,
		Events:     events,
		Config: config.SyncConfig{
			TrackerInterval:   5 * time.Millisecond,
			ScrollCooldown:    100 * time.Millisecond,
			SeekCooldown:      50 * time.Millisecond,
			DefaultItemHeight: 120,
		},
		Logger: logger,
	})
	t.Cleanup(func() { sessions.CloseAll(context.Background()) })

	srv := NewServer(prayerSvc, syncSvc, sessions, sse.NewHandler(events, logger), logger)
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, response.Envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.MarshalWrite(&buf, body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	var env response.Envelope
	if res.StatusCode != http.StatusNoContent {
		require.NoError(t, json.UnmarshalRead(res.Body, &env))
	}
	return res, env
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(t)

	res, env := doJSON(t, http.MethodGet, ts.URL+"/health", nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.True(t, env.Success)
}

func TestListAndGetPrayers(t *testing.T) {
	ts := newTestServer(t)

	res, env := doJSON(t, http.MethodGet, ts.URL+"/api/v1/prayers", nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.True(t, env.Success)

	res, _ = doJSON(t, http.MethodGet, ts.URL+"/api/v1/prayers/dua-kumayl", nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)

	res, env = doJSON(t, http.MethodGet, ts.URL+"/api/v1/prayers/nope", nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.False(t, env.Success)
	assert.Equal(t, "NOT_FOUND", env.Code)
}

func TestGetSections(t *testing.T) {
	ts := newTestServer(t)

	res, env := doJSON(t, http.MethodGet, ts.URL+"/api/v1/prayers/dua-kumayl/sections", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)

	sections, ok := env.Data.([]any)
	require.True(t, ok)
	assert.Len(t, sections, 3)
}

func TestSessionLifecycle(t *testing.T) {
	ts := newTestServer(t)

	// Create.
	res, env := doJSON(t, http.MethodPost, ts.URL+"/api/v1/sessions", map[string]string{
		"deviceId": "cli-test",
		"prayerId": "dua-kumayl",
	})
	require.Equal(t, http.StatusCreated, res.StatusCode)
	status, ok := env.Data.(map[string]any)
	require.True(t, ok)
	sessionID, _ := status["sessionId"].(string)
	require.NotEmpty(t, sessionID)
	assert.Equal(t, "record", status["mode"])

	base := ts.URL + "/api/v1/sessions/" + sessionID

	// Seek, then record section 1 at that position.
	res, _ = doJSON(t, http.MethodPost, base+"/playback", map[string]any{
		"action": "seek", "positionMillis": 20_000,
	})
	require.Equal(t, http.StatusOK, res.StatusCode)

	res, env = doJSON(t, http.MethodPost, base+"/record", map[string]any{"sectionIndex": 1})
	require.Equal(t, http.StatusCreated, res.StatusCode)
	point, ok := env.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "dua-kumayl", point["prayerId"])
	assert.Equal(t, float64(20_000), point["startTime"])
	assert.Equal(t, "0:20.0", point["timeDisplay"])

	// Switch to sync mode.
	res, _ = doJSON(t, http.MethodPost, base+"/mode", map[string]string{"mode": "sync"})
	require.Equal(t, http.StatusOK, res.StatusCode)

	// Tap-to-play the recorded section.
	res, env = doJSON(t, http.MethodPost, base+"/play-section", map[string]any{"sectionIndex": 1})
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.True(t, env.Success)

	// A section with no point is informational, not an error.
	res, env = doJSON(t, http.MethodPost, base+"/play-section", map[string]any{"sectionIndex": 2})
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.True(t, env.Success, "missing sync point is reported as information")
	assert.NotEmpty(t, env.Message)

	// Close.
	res, _ = doJSON(t, http.MethodDelete, base+"/", nil)
	assert.Equal(t, http.StatusNoContent, res.StatusCode)

	res, _ = doJSON(t, http.MethodGet, base+"/", nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestRecordDoubleTapThrottled(t *testing.T) {
	ts := newTestServer(t)

	_, env := doJSON(t, http.MethodPost, ts.URL+"/api/v1/sessions", map[string]string{
		"deviceId": "cli-test",
		"prayerId": "dua-kumayl",
	})
	status := env.Data.(map[string]any)
	base := fmt.Sprintf("%s/api/v1/sessions/%s", ts.URL, status["sessionId"])

	res, _ := doJSON(t, http.MethodPost, base+"/record", map[string]any{"sectionIndex": 0})
	require.Equal(t, http.StatusCreated, res.StatusCode)

	// The immediate second tap bounces off the limiter.
	res, env = doJSON(t, http.MethodPost, base+"/record", map[string]any{"sectionIndex": 1})
	assert.Equal(t, http.StatusConflict, res.StatusCode)
	assert.False(t, env.Success)
}

func TestCreateSessionValidation(t *testing.T) {
	ts := newTestServer(t)

	res, env := doJSON(t, http.MethodPost, ts.URL+"/api/v1/sessions", map[string]string{
		"deviceId": "cli-test",
	})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Equal(t, "VALIDATION", env.Code)

	res, env = doJSON(t, http.MethodPost, ts.URL+"/api/v1/sessions", map[string]string{
		"deviceId": "cli-test",
		"prayerId": "no-such-prayer",
	})
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.Equal(t, "NOT_FOUND", env.Code)
}

func TestResolveEndpoint(t *testing.T) {
	ts := newTestServer(t)

	// Author two points directly through a session.
	_, env := doJSON(t, http.MethodPost, ts.URL+"/api/v1/sessions", map[string]string{
		"deviceId": "cli-test",
		"prayerId": "dua-kumayl",
	})
	status := env.Data.(map[string]any)
	base := fmt.Sprintf("%s/api/v1/sessions/%s", ts.URL, status["sessionId"])

	doJSON(t, http.MethodPost, base+"/record", map[string]any{"sectionIndex": 0})
	time.Sleep(600 * time.Millisecond) // let the record limiter refill
	doJSON(t, http.MethodPost, base+"/playback", map[string]any{"action": "seek", "positionMillis": 30_000})
	res, _ := doJSON(t, http.MethodPost, base+"/record", map[string]any{"sectionIndex": 1})
	require.Equal(t, http.StatusCreated, res.StatusCode)

	res, env = doJSON(t, http.MethodGet, ts.URL+"/api/v1/prayers/dua-kumayl/resolve?time=29999", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	result := env.Data.(map[string]any)
	assert.Equal(t, float64(0), result["sectionIndex"])

	res, env = doJSON(t, http.MethodGet, ts.URL+"/api/v1/prayers/dua-kumayl/resolve?time=30000", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	result = env.Data.(map[string]any)
	assert.Equal(t, float64(1), result["sectionIndex"])

	res, _ = doJSON(t, http.MethodGet, ts.URL+"/api/v1/prayers/dua-kumayl/resolve?time=-5", nil)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestSearchEndpoint(t *testing.T) {
	ts := newTestServer(t)

	res, env := doJSON(t, http.MethodGet, ts.URL+"/api/v1/search?q="+"%D9%8A%D8%A7%20%D8%B1%D8%A8", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.True(t, env.Success)

	res, _ = doJSON(t, http.MethodGet, ts.URL+"/api/v1/search?q=", nil)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}
