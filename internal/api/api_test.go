package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stegosight/stegosight/internal/api/middleware"
	"github.com/stegosight/stegosight/internal/domain"
	"github.com/stegosight/stegosight/internal/engine"
	"github.com/stegosight/stegosight/internal/events"
	"github.com/stegosight/stegosight/internal/history"
	"github.com/stegosight/stegosight/internal/service"
	"github.com/stegosight/stegosight/internal/service/auth"
	"github.com/stegosight/stegosight/internal/task"
)

const testPassphrase = "open sesame"

type apiFixture struct {
	server *httptest.Server
	store  *history.MemoryStore
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	pool := task.NewPool(task.PoolConfig{WorkerCount: 2, QueueSize: 8}, logger)
	pool.Start()
	t.Cleanup(pool.Stop)

	store := history.NewMemoryStore()
	emitter := events.NewInMemoryEmitter(logger)
	emitter.RegisterHandler(history.NewRecorder(store, logger))

	eng := engine.NewMockEngine(engine.MockConfig{Steps: 4, StepDelay: time.Millisecond})
	svc := service.NewOperationService(pool, eng, emitter, logger)

	hash, err := auth.HashPassphrase(testPassphrase)
	require.NoError(t, err)

	jwtService, err := auth.NewJWTService("0123456789abcdef0123456789abcdef", time.Hour)
	require.NoError(t, err)

	router := NewRouter(RouterDeps{
		Auth:       NewAuthHandler(hash, auth.NewBcryptVerifier(), jwtService, time.Hour, logger),
		Operations: NewOperationHandler(svc, logger),
		History:    NewHistoryHandler(store, logger),
		AuthMW:     middleware.NewAuthMiddleware(jwtService),
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &apiFixture{server: server, store: store}
}

func (f *apiFixture) request(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, f.server.URL+path, reader)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func (f *apiFixture) login(t *testing.T) string {
	t.Helper()

	resp := f.request(t, http.MethodPost, "/auth/token", "", TokenRequest{Passphrase: testPassphrase})
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var tr TokenResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&tr))
	require.NotEmpty(t, tr.Token)
	return tr.Token
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func tempCarrier(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.png")
	require.NoError(t, os.WriteFile(path, []byte("pixels"), 0o644))
	return path
}

func TestHealthEndpoint(t *testing.T) {
	f := newAPIFixture(t)

	resp := f.request(t, http.MethodGet, "/health", "", nil)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuth_WrongPassphrase(t *testing.T) {
	f := newAPIFixture(t)

	resp := f.request(t, http.MethodPost, "/auth/token", "", TokenRequest{Passphrase: "guess"})
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuth_MissingPassphrase(t *testing.T) {
	f := newAPIFixture(t)

	resp := f.request(t, http.MethodPost, "/auth/token", "", TokenRequest{})
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	f := newAPIFixture(t)

	resp := f.request(t, http.MethodGet, "/operations", "", nil)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = f.request(t, http.MethodGet, "/operations", "not-a-token", nil)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSubmitAndTrackOperation(t *testing.T) {
	f := newAPIFixture(t)
	token := f.login(t)
	target := tempCarrier(t)

	resp := f.request(t, http.MethodPost, "/operations", token, OperationRequest{
		Operation: "analyze",
		Inputs:    []string{target},
	})
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	accepted := decodeBody[OperationAccepted](t, resp)

	var snap service.Snapshot
	require.Eventually(t, func() bool {
		resp := f.request(t, http.MethodGet, "/operations/"+accepted.ID.String(), token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		snap = decodeBody[service.Snapshot](t, resp)
		return snap.Done
	}, 5*time.Second, 5*time.Millisecond)

	assert.Equal(t, task.OutcomeSuccess, snap.Outcome)
	assert.Equal(t, domain.OperationAnalyze, snap.Operation)
	assert.Equal(t, 100, snap.Percent)
}

func TestSubmitUnknownOperation(t *testing.T) {
	f := newAPIFixture(t)
	token := f.login(t)

	resp := f.request(t, http.MethodPost, "/operations", token, OperationRequest{
		Operation: "transmute",
		Inputs:    []string{"x.png"},
	})
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSubmitWithoutInputs(t *testing.T) {
	f := newAPIFixture(t)
	token := f.login(t)

	resp := f.request(t, http.MethodPost, "/operations", token, OperationRequest{
		Operation: "analyze",
	})
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCancelOperation(t *testing.T) {
	f := newAPIFixture(t)
	token := f.login(t)
	target := tempCarrier(t)

	resp := f.request(t, http.MethodPost, "/operations", token, OperationRequest{
		Operation: "neutralize",
		Inputs:    []string{target},
		Params:    json.RawMessage(`{"tier":"standard"}`),
	})
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	accepted := decodeBody[OperationAccepted](t, resp)

	resp = f.request(t, http.MethodDelete, "/operations/"+accepted.ID.String(), token, nil)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestCancelUnknownOperation(t *testing.T) {
	f := newAPIFixture(t)
	token := f.login(t)

	resp := f.request(t, http.MethodDelete, "/operations/00000000-0000-0000-0000-000000000001", token, nil)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetOperationInvalidID(t *testing.T) {
	f := newAPIFixture(t)
	token := f.login(t)

	resp := f.request(t, http.MethodGet, "/operations/not-a-uuid", token, nil)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHistoryListAndExport(t *testing.T) {
	f := newAPIFixture(t)
	token := f.login(t)
	target := tempCarrier(t)

	resp := f.request(t, http.MethodPost, "/operations", token, OperationRequest{
		Operation: "analyze",
		Inputs:    []string{target},
	})
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	_ = decodeBody[OperationAccepted](t, resp)

	var records []domain.HistoryRecord
	require.Eventually(t, func() bool {
		resp := f.request(t, http.MethodGet, "/history", token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		records = decodeBody[[]domain.HistoryRecord](t, resp)
		return len(records) == 1
	}, 5*time.Second, 5*time.Millisecond)

	assert.Equal(t, domain.OperationAnalyze, records[0].Operation)
	assert.Equal(t, "success", records[0].Outcome)

	resp = f.request(t, http.MethodGet, "/history/export", token, nil)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv", resp.Header.Get("Content-Type"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(body)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "timestamp,operation,target,outcome,message,risk_score,duration_ms", lines[0])
	assert.Contains(t, lines[1], fmt.Sprintf("analyze,%s,success", target))
}

func TestHistoryInvalidLimit(t *testing.T) {
	f := newAPIFixture(t)
	token := f.login(t)

	resp := f.request(t, http.MethodGet, "/history?limit=-3", token, nil)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
