// Package outbox carries request context through outbox messages.
package outbox

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/tuanvumaihuynh/lfs/pkg/correlationid"
)

// HeaderCreatedAt holds the time the message was written to the outbox.
const HeaderCreatedAt = "X-Outbox-Created-At"

type createdAtKey struct{}

// BuildHeaders creates headers map with trace context, correlation ID and the
// current time injected from context.
func BuildHeaders(ctx context.Context) map[string]string {
	headers := map[string]string{
		HeaderCreatedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}

	propagator := otel.GetTextMapPropagator()
	propagator.Inject(ctx, propagation.MapCarrier(headers))

	if correlationID, ok := correlationid.FromContext(ctx); ok {
		headers[correlationid.Header] = correlationID
	}

	return headers
}

// ExtractContextFromHeaders restores trace context, correlation ID and
// creation time from headers into ctx.
func ExtractContextFromHeaders(ctx context.Context, headers map[string]string) context.Context {
	propagator := otel.GetTextMapPropagator()
	ctx = propagator.Extract(ctx, propagation.MapCarrier(headers))

	if correlationID, ok := headers[correlationid.Header]; ok {
		ctx = correlationid.NewContext(ctx, correlationID)
	}

	if v, ok := headers[HeaderCreatedAt]; ok {
		if createdAt, err := time.Parse(time.RFC3339Nano, v); err == nil {
			ctx = context.WithValue(ctx, createdAtKey{}, createdAt)
		}
	}

	return ctx
}

// CreatedAtFromContext returns when the message being handled was written to
// the outbox.
func CreatedAtFromContext(ctx context.Context) (time.Time, bool) {
	t, ok := ctx.Value(createdAtKey{}).(time.Time)
	return t, ok
}
