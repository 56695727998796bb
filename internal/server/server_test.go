package server

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Veraticus/medicoder/internal/catalog"
	"github.com/Veraticus/medicoder/internal/certs"
	"github.com/Veraticus/medicoder/internal/engine"
	"github.com/Veraticus/medicoder/internal/model"
	"github.com/Veraticus/medicoder/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const completePatientJSON = `{"name": "Jane Doe", "dob": "1990-01-01", "gender": "F", "insurance": "Acme", "policy": "123"}`

type testServer struct {
	server *Server
	http   *httptest.Server
	gen    *engine.MockGenerator
}

func testCatalog() *catalog.Catalog {
	return testutil.Catalog()
}

func newTestServer(t *testing.T, opts ...Option) *testServer {
	t.Helper()
	ts := &testServer{gen: engine.NewMockGenerator()}
	cat := testCatalog()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ts.server = New(func() *engine.Engine {
		return engine.New(engine.Options{Generator: ts.gen, Catalog: cat, Logger: logger})
	}, cat, logger, opts...)
	ts.http = httptest.NewServer(ts.server.Handler())
	t.Cleanup(ts.http.Close)
	return ts
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(context.Background(), method, ts.http.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := ts.http.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func (ts *testServer) create(t *testing.T) replyResponse {
	t.Helper()
	resp := ts.do(t, http.MethodPost, "/api/sessions", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decode[replyResponse](t, resp)
}

func (ts *testServer) send(t *testing.T, id, text string) replyResponse {
	t.Helper()
	resp := ts.do(t, http.MethodPost, "/api/sessions/"+id+"/messages", messageRequest{Text: text})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return decode[replyResponse](t, resp)
}

func TestCreateSession(t *testing.T) {
	ts := newTestServer(t)

	reply := ts.create(t)

	assert.NotEmpty(t, reply.ID)
	assert.Equal(t, model.StageGreeting, reply.Stage)
	require.Len(t, reply.Messages, 1)
	assert.Contains(t, reply.Messages[0], "medical coding assistant")
	assert.Equal(t, 1, ts.server.sessions.len())
}

func TestSessionsAreIndependent(t *testing.T) {
	ts := newTestServer(t)
	first := ts.create(t)
	second := ts.create(t)
	require.NotEqual(t, first.ID, second.ID)

	reply := ts.send(t, first.ID, "1")
	assert.Equal(t, model.StageCollectingPatientInfo, reply.Stage)

	resp := ts.do(t, http.MethodGet, "/api/sessions/"+second.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	state := decode[sessionResponse](t, resp)
	assert.Equal(t, model.StageGreeting, state.State.Stage)
}

func TestPostMessage_GuidedIntake(t *testing.T) {
	ts := newTestServer(t)
	id := ts.create(t).ID

	ts.send(t, id, "1")
	ts.gen.Queue(completePatientJSON)
	reply := ts.send(t, id, "Jane Doe, born 1990-01-01")

	assert.Equal(t, model.StageCollectingClinicalNotes, reply.Stage)
	assert.False(t, reply.Done)

	resp := ts.do(t, http.MethodGet, "/api/sessions/"+id, nil)
	got := decode[sessionResponse](t, resp)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "Jane Doe", got.State.PatientInfo["name"])
	assert.WithinDuration(t, time.Now(), got.CreatedAt, time.Minute)
}

func TestPostMessage_EmptyText(t *testing.T) {
	ts := newTestServer(t)
	id := ts.create(t).ID

	reply := ts.send(t, id, "   ")

	assert.Equal(t, model.StageGreeting, reply.Stage)
	assert.Equal(t, []string{"I didn't catch that. Could you please repeat?"}, reply.Messages)
}

func TestPostMessage_ExitEndsSession(t *testing.T) {
	ts := newTestServer(t)
	id := ts.create(t).ID

	reply := ts.send(t, id, "bye")

	assert.True(t, reply.Done)
	assert.Equal(t, 0, ts.server.sessions.len())

	resp := ts.do(t, http.MethodPost, "/api/sessions/"+id+"/messages", messageRequest{Text: "hello"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPostMessage_BadRequests(t *testing.T) {
	ts := newTestServer(t)
	id := ts.create(t).ID
	url := ts.http.URL + "/api/sessions/" + id + "/messages"

	tests := []struct {
		name        string
		body        string
		contentType string
		want        int
	}{
		{name: "malformed json", body: "{", contentType: "application/json", want: http.StatusBadRequest},
		{name: "wrong content type", body: "hello", contentType: "text/plain", want: http.StatusUnsupportedMediaType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url, strings.NewReader(tt.body))
			require.NoError(t, err)
			req.Header.Set("Content-Type", tt.contentType)

			resp, err := ts.http.Client().Do(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestResetSession(t *testing.T) {
	ts := newTestServer(t)
	id := ts.create(t).ID
	ts.send(t, id, "1")

	resp := ts.do(t, http.MethodPost, "/api/sessions/"+id+"/reset", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	reply := decode[replyResponse](t, resp)

	assert.Equal(t, id, reply.ID)
	assert.Equal(t, model.StageGreeting, reply.Stage)
	require.Len(t, reply.Messages, 1)
}

func TestDeleteSession(t *testing.T) {
	ts := newTestServer(t)
	id := ts.create(t).ID

	resp := ts.do(t, http.MethodDelete, "/api/sessions/"+id, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, 0, ts.server.sessions.len())

	resp = ts.do(t, http.MethodDelete, "/api/sessions/"+id, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// fakeClock is a settable time source shared with handler goroutines.
type fakeClock struct {
	now time.Time
	mu  sync.Mutex
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestIdleSessionsExpire(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	ts := newTestServer(t, WithSessionTTL(10*time.Minute), func(s *Server) {
		s.sessions.now = clock.Now
	})
	idle := ts.create(t).ID
	active := ts.create(t).ID

	clock.Advance(6 * time.Minute)
	ts.send(t, active, "1")
	clock.Advance(6 * time.Minute)

	ts.server.expireSessions()

	assert.Equal(t, 1, ts.server.sessions.len())
	resp := ts.do(t, http.MethodGet, "/api/sessions/"+idle, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp = ts.do(t, http.MethodGet, "/api/sessions/"+active, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSessionTTLDisabled(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	ts := newTestServer(t, WithSessionTTL(0), func(s *Server) {
		s.sessions.now = clock.Now
	})
	ts.create(t)

	clock.Advance(24 * time.Hour)
	ts.server.expireSessions()

	assert.Equal(t, 1, ts.server.sessions.len())
}

func TestUnknownSession(t *testing.T) {
	ts := newTestServer(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/sessions/missing"},
		{http.MethodPost, "/api/sessions/missing/reset"},
	} {
		resp := ts.do(t, tc.method, tc.path, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, tc.path)
		assert.Equal(t, "session not found", decode[errorResponse](t, resp).Error)
	}
}

func TestLookupCode(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name string
		code string
		want codeResponse
	}{
		{
			name: "diagnosis",
			code: "i10",
			want: codeResponse{Code: "I10", Kind: "ICD-10", Description: "Essential (primary) hypertension", Category: "Hypertensive diseases"},
		},
		{
			name: "procedure",
			code: "99213",
			want: codeResponse{Code: "99213", Kind: "CPT-4", Description: testutil.Procedures()[0].Procedure},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.do(t, http.MethodGet, "/api/codes/"+tt.code, nil)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, tt.want, decode[codeResponse](t, resp))
		})
	}

	resp := ts.do(t, http.MethodGet, "/api/codes/Z99", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, decode[errorResponse](t, resp).Error, "not found")
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestNoEngineFactory(t *testing.T) {
	srv := New(nil, nil, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/sessions", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestListenAndServe_StopsOnCancel(t *testing.T) {
	srv := New(nil, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- srv.ListenAndServe(ctx, "127.0.0.1:0", nil) }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServer_SelfSignedTLS(t *testing.T) {
	store := certs.NewStore(t.TempDir())
	tlsConfig, err := store.TLSConfig()
	require.NoError(t, err)

	ts := httptest.NewUnstartedServer(New(nil, testCatalog(), nil).Handler())
	ts.TLS = tlsConfig
	ts.StartTLS()
	t.Cleanup(ts.Close)

	pemBytes, err := os.ReadFile(store.CertFile())
	require.NoError(t, err)
	pool := x509.NewCertPool()
	require.True(t, pool.AppendCertsFromPEM(pemBytes))
	client := &http.Client{Transport: &http.Transport{
		TLSClientConfig: &tls.Config{RootCAs: pool, MinVersion: tls.VersionTLS12},
	}}

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, ts.URL+"/api/codes/I10", nil)
	require.NoError(t, err)
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
