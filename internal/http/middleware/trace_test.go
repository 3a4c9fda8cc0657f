package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestTrace(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	r := chi.NewRouter()
	r.Use(Trace(provider.Tracer("test")), CorrelationID())
	r.Get("/carts/{id}", func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "id") == "broken" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	})
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {})

	for _, target := range []string{"/carts/missing", "/carts/broken", "/healthz"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, target, nil))
	}

	spans := recorder.Ended()
	require.Len(t, spans, 2)

	notFound := spans[0]
	assert.Equal(t, "GET /carts/{id}", notFound.Name())
	assert.Equal(t, codes.Unset, notFound.Status().Code)
	attrs := map[attribute.Key]attribute.Value{}
	for _, kv := range notFound.Attributes() {
		attrs[kv.Key] = kv.Value
	}
	assert.Equal(t, "/carts/{id}", attrs["http.route"].AsString())
	assert.EqualValues(t, http.StatusNotFound, attrs["http.response.status_code"].AsInt64())
	assert.NotEmpty(t, attrs["correlation_id"].AsString())
	assert.Equal(t, "/carts/missing", attrs["url.path"].AsString())
	assert.Equal(t, "GET", attrs["http.request.method"].AsString())

	assert.Equal(t, codes.Error, spans[1].Status().Code)
}
