package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/99designs/gqlgen/client"
	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/todograph/internal/events"
	"github.com/mesh-intelligence/todograph/internal/seed"
	"github.com/mesh-intelligence/todograph/pkg/store"
	"github.com/mesh-intelligence/todograph/pkg/types"
)

func setupServer(t *testing.T, mutate func(*types.Config)) *Server {
	t.Helper()
	config := types.DefaultConfig()
	if mutate != nil {
		mutate(&config)
	}
	s, err := store.Open(config)
	require.NoError(t, err)
	_, err = seed.Apply(s, "")
	require.NoError(t, err)

	srv := New(config, s, log.New(io.Discard, "", 0))
	t.Cleanup(func() {
		srv.Close()
		s.Detach()
	})
	return srv
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHealth(t *testing.T) {
	srv := setupServer(t, nil)

	rec := get(t, srv, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Status  string
		Clients int
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Zero(t, body.Clients)
}

func TestGraphQLPost(t *testing.T) {
	srv := setupServer(t, nil)
	c := client.New(srv, client.Path("/graphql"))

	var res struct {
		Users []struct{ Name string }
	}
	c.MustPost(`{ users { name } }`, &res)

	require.Len(t, res.Users, 3)
	assert.Equal(t, "John Doe", res.Users[0].Name)
}

func TestGraphQLGet(t *testing.T) {
	srv := setupServer(t, nil)

	rec := get(t, srv, "/graphql?query="+url.QueryEscape(`{ todo(id: "2") { title completed } }`))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":{"todo":{"title":"Review code","completed":true}}}`, rec.Body.String())
}

func TestGraphQLBackends(t *testing.T) {
	for _, backend := range []string{types.BackendMemory, types.BackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			srv := setupServer(t, func(c *types.Config) { c.Backend = backend })
			c := client.New(srv, client.Path("/graphql"))

			var res struct {
				DeleteTodo bool
			}
			c.MustPost(`mutation { deleteTodo(id: "1") }`, &res)
			assert.True(t, res.DeleteTodo)

			var project struct {
				Project struct {
					Todos []struct{ ID string }
				}
			}
			c.MustPost(`{ project(id: "1") { todos { id } } }`, &project)
			require.Len(t, project.Project.Todos, 1)
			assert.Equal(t, "2", project.Project.Todos[0].ID)
		})
	}
}

func TestIntrospectionToggle(t *testing.T) {
	tests := []struct {
		name    string
		enabled bool
	}{
		{"enabled", true},
		{"disabled", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := setupServer(t, func(c *types.Config) { c.Introspection = tt.enabled })
			c := client.New(srv, client.Path("/graphql"))

			var res map[string]any
			err := c.Post(`{ __schema { queryType { name } } }`, &res)
			if tt.enabled {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestComplexityLimit(t *testing.T) {
	srv := setupServer(t, func(c *types.Config) { c.ComplexityLimit = 2 })
	c := client.New(srv, client.Path("/graphql"))

	var res map[string]any
	err := c.Post(`{ users { id name email } }`, &res)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "complexity")

	assert.NoError(t, c.Post(`{ users { id } }`, &res))
}

func TestPlayground(t *testing.T) {
	srv := setupServer(t, nil)
	rec := get(t, srv, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "todograph")

	srv = setupServer(t, func(c *types.Config) { c.Playground = false })
	assert.Equal(t, http.StatusNotFound, get(t, srv, "/").Code)
}

func TestCORSPreflight(t *testing.T) {
	srv := setupServer(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/graphql", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetrics(t *testing.T) {
	srv := setupServer(t, nil)
	c := client.New(srv, client.Path("/graphql"))

	var res map[string]any
	c.MustPost(`query Users { users { id } }`, &res)

	rec := get(t, srv, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `todograph_store_entities{entity="user"} 3`)
	assert.Contains(t, body, `todograph_graphql_operations_total{name="Users",operation="query",status="ok"} 1`)
	assert.Contains(t, body, "todograph_graphql_operation_duration_seconds")
}

func TestEventsFeed(t *testing.T) {
	srv := setupServer(t, nil)
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(ts.URL, "http")+"/events", nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	read := func() events.Message {
		_, data, err := conn.Read(ctx)
		require.NoError(t, err)
		var msg events.Message
		require.NoError(t, json.Unmarshal(data, &msg))
		return msg
	}
	require.Equal(t, events.MessageTypeHello, read().Type)
	require.Eventually(t, func() bool { return srv.hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	c := client.New(srv, client.Path("/graphql"))
	var res map[string]any
	c.MustPost(`mutation { toggleTodoStatus(id: "3") { id } }`, &res)

	msg := read()
	assert.Equal(t, events.MessageTypeTodoChanged, msg.Type)
	var data events.ChangeData
	require.NoError(t, json.Unmarshal(msg.Data, &data))
	assert.Equal(t, events.ChangeData{ID: "3", Action: "toggled"}, data)
}

func TestStartAndShutdown(t *testing.T) {
	t.Setenv("PORT", "")
	srv := setupServer(t, func(c *types.Config) { c.Listen = "127.0.0.1:0" })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Start(ctx) }()

	require.Eventually(t, func() bool { return srv.Addr() != "" }, 2*time.Second, 10*time.Millisecond)

	resp, err := http.Get("http://" + srv.Addr() + "/healthz")
	require.NoError(t, err)
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

func TestStartListenError(t *testing.T) {
	t.Setenv("PORT", "")
	srv := setupServer(t, func(c *types.Config) { c.Listen = "256.0.0.1:bad" })
	err := srv.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to listen")
}

func TestListenAddr(t *testing.T) {
	tests := []struct {
		name string
		port string
		addr string
		want string
	}{
		{"no override", "", ":4000", ":4000"},
		{"port only", "8080", ":4000", ":8080"},
		{"keeps host", "8080", "127.0.0.1:4000", "127.0.0.1:8080"},
		{"bad addr", "9000", "nonsense", ":9000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("PORT", tt.port)
			assert.Equal(t, tt.want, ListenAddr(tt.addr))
		})
	}
}

type lineLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *lineLogger) Printf(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

func TestServerLogsRequests(t *testing.T) {
	s, err := store.Open(types.DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() { s.Detach() })

	logger := &lineLogger{}
	srv := New(types.DefaultConfig(), s, logger)
	t.Cleanup(srv.Close)

	rec := get(t, srv, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)

	logger.mu.Lock()
	defer logger.mu.Unlock()
	require.NotEmpty(t, logger.lines)
	assert.Contains(t, logger.lines[len(logger.lines)-1], "GET /healthz 200")
}
