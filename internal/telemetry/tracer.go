package telemetry

import (
	"context"
	"log"
	"time"

	"github.com/99designs/gqlgen/graphql"
	"github.com/domonda/go-types/nullable"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	statusOK    = "ok"
	statusError = "error"

	anonymousOperation = "anonymous"
)

// Tracer logs every executed GraphQL operation and records its outcome as
// Prometheus metrics.
type Tracer struct {
	logger     Logger
	registerer prometheus.Registerer

	operations *prometheus.CounterVec
	durations  *prometheus.HistogramVec
}

var _ interface {
	graphql.HandlerExtension
	graphql.ResponseInterceptor
} = &Tracer{}

func NewTracer(opts ...TracerOption) *Tracer {
	tracer := &Tracer{
		logger:     NewLogger(log.Writer()),
		registerer: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "todograph_graphql_operations_total",
			Help: "GraphQL operations executed, by operation type, name and status.",
		}, []string{"operation", "name", "status"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "todograph_graphql_operation_duration_seconds",
			Help:    "GraphQL operation latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
	}
	for _, opt := range opts {
		opt.set(tracer)
	}
	tracer.registerer.MustRegister(tracer.operations, tracer.durations)
	return tracer
}

func (t *Tracer) ExtensionName() string {
	return "TodographTracer"
}

func (t *Tracer) Validate(schema graphql.ExecutableSchema) error {
	// nothing to validate
	return nil
}

// InterceptResponse times the operation and records its result.
func (t *Tracer) InterceptResponse(ctx context.Context, next graphql.ResponseHandler) *graphql.Response {
	if !graphql.HasOperationContext(ctx) {
		return next(ctx)
	}
	operationCtx := graphql.GetOperationContext(ctx)
	// documents rejected by the parser or validator are not operations
	if operationCtx.Operation == nil {
		return next(ctx)
	}

	resp := next(ctx)

	operationStart := operationCtx.Stats.OperationStart
	if operationStart.IsZero() {
		operationStart = graphql.Now()
	}
	duration := time.Since(operationStart)

	operation := string(operationCtx.Operation.Operation)
	name := operationName(nullable.TrimmedStringFrom(operationCtx.Operation.Name))

	errorsTotal := 0
	if resp != nil {
		errorsTotal = len(resp.Errors)
	}
	status := statusOK
	if errorsTotal > 0 {
		status = statusError
	}

	t.operations.WithLabelValues(operation, name, status).Inc()
	t.durations.WithLabelValues(operation).Observe(duration.Seconds())
	t.logger.Printf("%s %s took %s (%d errors)", operation, name, duration, errorsTotal)

	return resp
}

func operationName(name nullable.TrimmedString) string {
	if name.IsNull() {
		return anonymousOperation
	}
	return name.String()
}
