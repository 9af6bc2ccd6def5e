package events

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/todograph/pkg/types"
)

func setupHub(t *testing.T) (*Hub, string) {
	t.Helper()
	hub := NewHub(&Config{Logger: log.New(io.Discard, "", 0)})
	srv := httptest.NewServer(hub)
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
	})
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, ctx context.Context, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "") })

	msg := readMessage(t, ctx, conn)
	require.Equal(t, MessageTypeHello, msg.Type)
	return conn
}

func readMessage(t *testing.T, ctx context.Context, conn *websocket.Conn) Message {
	t.Helper()
	_, data, err := conn.Read(ctx)
	require.NoError(t, err)
	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestHub_PublishReachesClients(t *testing.T) {
	hub, url := setupHub(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	clients := []*websocket.Conn{dial(t, ctx, url), dial(t, ctx, url)}
	require.Eventually(t, func() bool { return hub.ClientCount() == 2 }, time.Second, 10*time.Millisecond)

	hub.Publish(types.EntityTodo, "42", "toggled")

	for _, conn := range clients {
		msg := readMessage(t, ctx, conn)
		assert.Equal(t, MessageTypeTodoChanged, msg.Type)
		assert.False(t, msg.Timestamp.IsZero())

		var data ChangeData
		require.NoError(t, json.Unmarshal(msg.Data, &data))
		assert.Equal(t, ChangeData{ID: "42", Action: "toggled"}, data)
	}
}

func TestHub_MessageTypes(t *testing.T) {
	hub, url := setupHub(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn := dial(t, ctx, url)

	tests := []struct {
		entity string
		want   MessageType
	}{
		{types.EntityUser, MessageTypeUserChanged},
		{types.EntityTodo, MessageTypeTodoChanged},
		{types.EntityProject, MessageTypeProjectChanged},
	}
	for _, tt := range tests {
		hub.Publish(tt.entity, "1", "created")
		assert.Equal(t, tt.want, readMessage(t, ctx, conn).Type, tt.entity)
	}
}

func TestHub_UnknownEntityIsDropped(t *testing.T) {
	hub, url := setupHub(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn := dial(t, ctx, url)

	hub.Publish("widget", "1", "created")
	hub.Publish(types.EntityUser, "1", "deleted")

	msg := readMessage(t, ctx, conn)
	assert.Equal(t, MessageTypeUserChanged, msg.Type, "the unknown entity never reached the client")
}

func TestHub_ClientDisconnect(t *testing.T) {
	hub, url := setupHub(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := dial(t, ctx, url)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	conn.Close(websocket.StatusNormalClosure, "bye")
	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 10*time.Millisecond)
}

func TestHub_PublishNeverBlocks(t *testing.T) {
	hub := NewHub(&Config{Buffer: 1, Logger: log.New(io.Discard, "", 0)})
	defer hub.Close()

	done := make(chan struct{})
	go func() {
		for range 1000 {
			hub.Publish(types.EntityTodo, "1", "updated")
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked")
	}
}

func TestHub_CloseIsIdempotent(t *testing.T) {
	hub := NewHub(nil)
	hub.Close()
	hub.Close()
	hub.Publish(types.EntityUser, "1", "created")
	assert.Zero(t, hub.ClientCount())
}

// lineLogger records formatted log lines.
type lineLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *lineLogger) Printf(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

func (l *lineLogger) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.lines...)
}

func TestHub_LogsThroughLoggerInterface(t *testing.T) {
	logger := &lineLogger{}
	hub := NewHub(&Config{Logger: logger})
	defer hub.Close()

	hub.Publish("widget", "1", "created")
	assert.Equal(t, []string{`events: unknown entity "widget"`}, logger.Lines())
}
