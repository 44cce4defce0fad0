package server

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/inovacc/juli/internal/model"
	"github.com/inovacc/juli/internal/workspace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWorkspaces struct {
	mu      sync.Mutex
	byID    map[string]model.Workspace
	pingErr error
}

func newFakeWorkspaces(list ...model.Workspace) *fakeWorkspaces {
	f := &fakeWorkspaces{byID: make(map[string]model.Workspace)}
	for _, w := range list {
		f.byID[w.ID] = w
	}

	return f
}

func (f *fakeWorkspaces) List() []model.Workspace {
	f.mu.Lock()
	defer f.mu.Unlock()

	return model.Workspaces(f.byID).Sorted()
}

func (f *fakeWorkspaces) Get(id string) (model.Workspace, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	w, ok := f.byID[id]

	return w, ok
}

func (f *fakeWorkspaces) Active() (model.Workspace, bool) {
	for _, w := range f.List() {
		if w.Active {
			return w, true
		}
	}

	return model.Workspace{}, false
}

func (f *fakeWorkspaces) SetActive(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.byID[id]; !ok {
		return fmt.Errorf("%w: %s", workspace.ErrWorkspaceNotFound, id)
	}

	for key, w := range f.byID {
		w.Active = key == id
		f.byID[key] = w
	}

	return nil
}

func (f *fakeWorkspaces) Ping() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.pingErr
}

func setupTestServer(t *testing.T, ws Workspaces) (*Server, *Hub) {
	t.Helper()

	hub, _ := startTestHub(t)

	return New("127.0.0.1:0", hub, ws, nil), hub
}

func TestServer_WorkspaceAPI(t *testing.T) {
	ws := newFakeWorkspaces(
		model.Workspace{ID: "b", Order: 2},
		model.Workspace{ID: "a", Order: 1},
	)
	s, _ := setupTestServer(t, ws)
	h := s.Handler()

	t.Run("list", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/workspaces", nil))

		require.Equal(t, http.StatusOK, w.Code)

		var list []model.Workspace
		require.NoError(t, json.NewDecoder(w.Body).Decode(&list))
		require.Len(t, list, 2)
		assert.Equal(t, "a", list[0].ID)
	})

	t.Run("no active", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/workspaces/active", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("set active", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/api/workspaces/b/active", nil))
		require.Equal(t, http.StatusOK, w.Code)

		active, ok := ws.Active()
		require.True(t, ok)
		assert.Equal(t, "b", active.ID)

		w = httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/workspaces/active", nil))
		require.Equal(t, http.StatusOK, w.Code)

		var got model.Workspace
		require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
		assert.Equal(t, "b", got.ID)
	})

	t.Run("unknown", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/api/workspaces/zzz/active", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)

		var resp APIResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.False(t, resp.Success)

		w = httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/workspaces/zzz", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("health", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"ok"`)
	})

	t.Run("health store down", func(t *testing.T) {
		ws.mu.Lock()
		ws.pingErr = errors.New("database is closed")
		ws.mu.Unlock()

		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func readSSEEvent(t *testing.T, r *bufio.Reader) (string, string) {
	t.Helper()

	var name, data string

	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)

		line = strings.TrimRight(line, "\n")

		switch {
		case strings.HasPrefix(line, "event: "):
			name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		case line == "" && name != "":
			return name, data
		}
	}
}

func TestServer_SSE(t *testing.T) {
	s, hub := setupTestServer(t, newFakeWorkspaces())

	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/events")
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)

	name, _ := readSSEEvent(t, reader)
	require.Equal(t, "connected", name)

	hub.Send("set-workspace", "a", nil)

	name, data := readSSEEvent(t, reader)
	assert.Equal(t, "set-workspace", name)
	assert.JSONEq(t, `["a",null]`, data)
}

func TestServer_WebSocket(t *testing.T) {
	s, hub := setupTestServer(t, newFakeWorkspaces())

	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	defer func() {
		_ = resp.Body.Close()
		_ = conn.Close()
	}()

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	hub.Send("set-workspaces", map[string]any{"a": map[string]any{"id": "a"}})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var event Event
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, "set-workspaces", event.Channel)
	require.Len(t, event.Args, 1)
	assert.Contains(t, event.Args[0], "a")
}
