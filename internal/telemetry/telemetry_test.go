package telemetry

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/99designs/gqlgen/client"
	"github.com/99designs/gqlgen/graphql/handler"
	"github.com/99designs/gqlgen/graphql/handler/transport"
	"github.com/domonda/go-types/nullable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/todograph/internal/graph"
	"github.com/mesh-intelligence/todograph/internal/memory"
	"github.com/mesh-intelligence/todograph/internal/seed"
	"github.com/mesh-intelligence/todograph/pkg/types"
)

func setupStore(t *testing.T) types.Store {
	t.Helper()
	s := memory.NewBackend()
	require.NoError(t, s.Attach(types.DefaultConfig()))
	t.Cleanup(func() { s.Detach() })
	_, err := seed.Apply(s, "")
	require.NoError(t, err)
	return s
}

func setupTracer(t *testing.T, s types.Store) (*client.Client, *Tracer, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	tracer := NewTracer(WithLogger(NewLogger(&buf)), WithRegisterer(prometheus.NewRegistry()))

	srv := handler.New(graph.NewExecutableSchema(graph.Config{Resolvers: &graph.Resolver{Store: s}}))
	srv.AddTransport(transport.POST{})
	srv.Use(tracer)
	return client.New(srv), tracer, &buf
}

func TestTracerCountsOperations(t *testing.T) {
	c, tracer, buf := setupTracer(t, setupStore(t))

	var res map[string]any
	c.MustPost(`query Users { users { id } }`, &res)
	c.MustPost(`query Users { users { name } }`, &res)
	c.MustPost(`{ todo(id: "1") { title } }`, &res)
	c.MustPost(`mutation { toggleTodoStatus(id: "1") { completed } }`, &res)

	assert.Equal(t, 2.0, testutil.ToFloat64(tracer.operations.WithLabelValues("query", "Users", statusOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(tracer.operations.WithLabelValues("query", anonymousOperation, statusOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(tracer.operations.WithLabelValues("mutation", anonymousOperation, statusOK)))
	assert.Equal(t, 2, testutil.CollectAndCount(tracer.durations))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "[todograph] query Users took")
	assert.Contains(t, lines[3], "mutation anonymous took")
}

func TestTracerRecordsErrors(t *testing.T) {
	s := setupStore(t)
	c, tracer, buf := setupTracer(t, s)
	require.NoError(t, s.Detach())

	var res map[string]any
	err := c.Post(`query Everything { users { id } }`, &res)
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(tracer.operations.WithLabelValues("query", "Everything", statusError)))
	assert.Contains(t, buf.String(), "(1 errors)")
}

func TestTracerSkipsInvalidDocuments(t *testing.T) {
	c, tracer, buf := setupTracer(t, setupStore(t))

	var res map[string]any
	err := c.Post(`{ users { password } }`, &res)
	require.Error(t, err)

	assert.Equal(t, 0, testutil.CollectAndCount(tracer.operations))
	assert.Empty(t, buf.String())
}

func TestOperationName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"named", "Users", "Users"},
		{"padded", "  Users ", "Users"},
		{"empty", "", anonymousOperation},
		{"blank", "   ", anonymousOperation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, operationName(nullable.TrimmedStringFrom(tt.in)))
		})
	}
}

func TestStoreCollector(t *testing.T) {
	s := setupStore(t)
	collector := NewStoreCollector(s, nil)

	expected := `
# HELP todograph_store_entities Records currently held by the store, by entity.
# TYPE todograph_store_entities gauge
todograph_store_entities{entity="project"} 2
todograph_store_entities{entity="todo"} 3
todograph_store_entities{entity="user"} 3
`
	require.NoError(t, testutil.CollectAndCompare(collector, strings.NewReader(expected)))

	require.NoError(t, s.DeleteTodo("1"))
	assert.Equal(t, 3, testutil.CollectAndCount(collector))
}

func TestStoreCollectorDetached(t *testing.T) {
	s := setupStore(t)
	var buf bytes.Buffer
	collector := NewStoreCollector(s, NewLogger(&buf))
	require.NoError(t, s.Detach())

	assert.Equal(t, 0, testutil.CollectAndCount(collector))
	assert.Contains(t, buf.String(), "sampling store counts")
}

func TestOpenLogWriter(t *testing.T) {
	w := OpenLogWriter("")
	assert.NoError(t, w.Close())

	path := filepath.Join(t.TempDir(), "todograph.log")
	w = OpenLogWriter(path)
	logger := NewLogger(w)
	logger.Printf("hello %s", "file")
	require.NoError(t, w.Close())
	assert.FileExists(t, path)
}
