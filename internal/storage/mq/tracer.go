package mq

import (
	"github.com/twmb/franz-go/plugin/kotel"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("lfs/storage/mq")

// newKafkaTracer returns client hooks that trace produce and fetch calls
// and carry the span context through record headers. It reads the global
// provider and propagator, so clients must be built after telemetry.InitTracer.
func newKafkaTracer() *kotel.Tracer {
	return kotel.NewTracer(
		kotel.TracerProvider(otel.GetTracerProvider()),
		kotel.TracerPropagator(otel.GetTextMapPropagator()),
	)
}
