// Package server exposes a types.Store over HTTP.
//
// Routes:
//
//	/graphql  GraphQL endpoint (GET, POST, OPTIONS)
//	/         GraphQL playground, when enabled
//	/events   WebSocket change feed
//	/metrics  Prometheus exposition
//	/healthz  liveness
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/99designs/gqlgen/graphql/handler"
	"github.com/99designs/gqlgen/graphql/handler/extension"
	"github.com/99designs/gqlgen/graphql/handler/lru"
	"github.com/99designs/gqlgen/graphql/handler/transport"
	"github.com/99designs/gqlgen/graphql/playground"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/mesh-intelligence/todograph/internal/events"
	"github.com/mesh-intelligence/todograph/internal/graph"
	"github.com/mesh-intelligence/todograph/internal/telemetry"
	"github.com/mesh-intelligence/todograph/pkg/types"
)

const (
	queryCacheSize = 1000
	apqCacheSize   = 100

	shutdownTimeout = 5 * time.Second
)

// Server serves the GraphQL API and its supporting endpoints.
type Server struct {
	config types.Config
	store  types.Store
	logger telemetry.Logger

	hub      *events.Hub
	registry *prometheus.Registry
	echo     *echo.Echo

	mu       sync.Mutex
	listener net.Listener
}

// New builds a Server around an attached store. A nil logger writes to
// stderr.
func New(config types.Config, store types.Store, logger telemetry.Logger) *Server {
	if logger == nil {
		logger = telemetry.NewLogger(os.Stderr)
	}

	hubConfig := events.DefaultConfig()
	hubConfig.Logger = logger

	s := &Server{
		config:   config,
		store:    store,
		logger:   logger,
		hub:      events.NewHub(hubConfig),
		registry: prometheus.NewRegistry(),
	}
	s.registry.MustRegister(
		collectors.NewGoCollector(),
		telemetry.NewStoreCollector(store, logger),
	)
	s.echo = s.routes()
	return s
}

// GraphQL returns the gqlgen handler for the store.
func (s *Server) GraphQL() *handler.Server {
	resolver := &graph.Resolver{Store: s.store, Events: s.hub}
	srv := handler.New(graph.NewExecutableSchema(graph.Config{Resolvers: resolver}))

	srv.AddTransport(transport.Options{})
	srv.AddTransport(transport.GET{})
	srv.AddTransport(transport.POST{})

	srv.SetQueryCache(lru.New[*ast.QueryDocument](queryCacheSize))

	if s.config.Introspection {
		srv.Use(extension.Introspection{})
	}
	srv.Use(extension.AutomaticPersistedQuery{
		Cache: lru.New[string](apqCacheSize),
	})
	srv.Use(extension.FixedComplexityLimit(s.config.ComplexityLimit))
	srv.Use(telemetry.NewTracer(
		telemetry.WithLogger(s.logger),
		telemetry.WithRegisterer(s.registry),
	))
	return srv
}

func (s *Server) routes() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			s.logger.Printf("%s %s %d %s", v.Method, v.URI, v.Status, v.Latency)
			return nil
		},
	}))

	e.Match([]string{http.MethodGet, http.MethodPost, http.MethodOptions}, "/graphql", echo.WrapHandler(s.GraphQL()))
	if s.config.Playground {
		e.GET("/", echo.WrapHandler(playground.Handler("todograph", "/graphql")))
	}
	e.GET("/events", echo.WrapHandler(s.hub))
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))
	e.GET("/healthz", s.handleHealth)
	return e
}

// ServeHTTP dispatches to the router.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// Start listens on the configured address and serves until ctx is done,
// then shuts down gracefully. The PORT environment variable, when set,
// overrides the configured port.
func (s *Server) Start(ctx context.Context) error {
	addr := s.config.Listen
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	server := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Printf("Server ready at http://%s/graphql", displayAddr(ln.Addr()))
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		s.hub.Close()
		return err
	case <-ctx.Done():
	}

	s.logger.Printf("Stopping server")
	s.hub.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	return <-errCh
}

// Addr returns the bound address once Start is listening.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}

// Close releases the change feed. Start does this itself on return.
func (s *Server) Close() {
	s.hub.Close()
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"status":  "ok",
		"clients": s.hub.ClientCount(),
	})
}

// ListenAddr applies the PORT environment override to addr, keeping its
// host. Start listens on the configured address as given.
func ListenAddr(addr string) string {
	port := os.Getenv("PORT")
	if port == "" {
		return addr
	}
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = ""
	}
	return net.JoinHostPort(host, port)
}

func displayAddr(addr net.Addr) string {
	tcp, ok := addr.(*net.TCPAddr)
	if ok && tcp.IP.IsUnspecified() {
		return fmt.Sprintf("localhost:%d", tcp.Port)
	}
	return addr.String()
}
