package transport

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/goliatone/go-kvcache/cache"
	"github.com/goliatone/go-kvcache/pkg/testsupport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	engine *cache.Engine
	store  *testsupport.MemStore
	clock  *testsupport.Clock
	server *httptest.Server
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := testsupport.NewMemStore()
	clock := testsupport.NewClock(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	logger := log.New(io.Discard)

	engine, err := cache.NewWithDefaults(store, cache.WithClock(clock.Now), cache.WithLogger(logger))
	require.NoError(t, err)

	server := httptest.NewServer(NewHTTPRouter(engine, logger))
	t.Cleanup(server.Close)

	return &fixture{engine: engine, store: store, clock: clock, server: server}
}

func (f *fixture) do(t *testing.T, method, path, body string) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, f.server.URL+path, reader)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out map[string]any
	if len(data) > 0 {
		require.NoError(t, json.Unmarshal(data, &out), string(data))
	}
	return resp, out
}

func TestEntryLifecycle(t *testing.T) {
	f := newFixture(t)

	resp, _ := f.do(t, http.MethodPut, "/entries/rate?ttl=1s", `{"pair":"BTC/USD","price":64000.5}`)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, body := f.do(t, http.MethodGet, "/entries/rate", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "rate", body["key"])
	assert.Equal(t, map[string]any{"pair": "BTC/USD", "price": 64000.5}, body["value"])

	resp, body = f.do(t, http.MethodGet, "/keys", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []any{"rate"}, body["keys"])

	f.clock.Advance(2 * time.Second)
	resp, body = f.do(t, http.MethodGet, "/entries/rate", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "not found", body["error"])
}

func TestSetWithoutExpiry(t *testing.T) {
	f := newFixture(t)

	resp, _ := f.do(t, http.MethodPut, "/entries/pinned?ttl=none", `"keep"`)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	raw, ok := f.store.Raw(cache.DefaultPrefix + "pinned")
	require.True(t, ok)
	assert.NotContains(t, raw, "expiresAt")
}

func TestSetRejectsBadInput(t *testing.T) {
	f := newFixture(t)

	resp, body := f.do(t, http.MethodPut, "/entries/k?ttl=soon", `1`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["error"], "invalid ttl")

	resp, _ = f.do(t, http.MethodPut, "/entries/k", `{broken`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	assert.Empty(t, f.engine.Keys())
}

func TestRemoveAndClear(t *testing.T) {
	f := newFixture(t)
	f.engine.Set("a", 1, time.Minute)
	f.engine.Set("b", 2, time.Minute)
	f.store.Put("foreign_key", "x")

	resp, _ := f.do(t, http.MethodDelete, "/entries/a", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, []string{"b"}, f.engine.Keys())

	resp, _ = f.do(t, http.MethodDelete, "/entries", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Empty(t, f.engine.Keys())

	_, ok := f.store.Raw("foreign_key")
	assert.True(t, ok, "clear must stay inside the namespace")
}

func TestCleanupAndStats(t *testing.T) {
	f := newFixture(t)
	f.engine.Set("short", 1, time.Second)
	f.engine.Set("long", 2, time.Hour)
	f.store.Put(cache.DefaultPrefix+"bad", "{")

	f.clock.Advance(time.Minute)

	resp, body := f.do(t, http.MethodGet, "/stats", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(3), body["keys"])
	assert.Equal(t, float64(1), body["expired"])
	assert.Equal(t, float64(1), body["corrupt"])
	assert.Equal(t, float64(f.engine.Size()), body["bytes"])

	resp, body = f.do(t, http.MethodPost, "/cleanup", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(2), body["removed"])
	assert.Equal(t, []string{"long"}, f.engine.Keys())
}

func TestStoreUnavailable(t *testing.T) {
	f := newFixture(t)
	f.store.FailSet(testsupport.ErrInjected)

	resp, body := f.do(t, http.MethodPut, "/entries/k", `1`)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Contains(t, body["error"], "store unavailable")
}
