package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
)

func WithLogger(logger Logger) TracerOption {
	return tracerOptionFn(func(tracer *Tracer) {
		tracer.logger = logger
	})
}

// WithRegisterer registers the tracer's collectors with reg instead of a
// private registry.
func WithRegisterer(reg prometheus.Registerer) TracerOption {
	return tracerOptionFn(func(tracer *Tracer) {
		tracer.registerer = reg
	})
}

type TracerOption interface {
	set(*Tracer)
}

type tracerOptionFn func(*Tracer)

func (fn tracerOptionFn) set(config *Tracer) {
	fn(config)
}
