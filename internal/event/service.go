package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/tuanvumaihuynh/lfs/internal/metric"
	"github.com/tuanvumaihuynh/lfs/internal/storage/mq"
	"github.com/tuanvumaihuynh/lfs/pkg/outbox"
)

// Service is the event service.
type Service struct {
	logger     *slog.Logger
	mqConsumer mq.Consumer
	handler    *Handler
	metrics    *metric.Metrics
}

// New creates a new event service.
func New(
	logger *slog.Logger,
	mqConsumer mq.Consumer,
	handler *Handler,
	metrics *metric.Metrics,
) *Service {
	return &Service{
		logger:     logger,
		mqConsumer: mqConsumer,
		handler:    handler,
		metrics:    metrics,
	}
}

type CleanupFunc func()

// handle decodes the payload into T before calling fn and counts the outcome.
func handle[T any](metrics *metric.Metrics, fn func(context.Context, T) error) mq.HandlerFunc {
	return func(ctx context.Context, topic string, payload []byte) error {
		if createdAt, ok := outbox.CreatedAtFromContext(ctx); ok {
			metrics.EventLag.WithLabelValues(topic).Observe(time.Since(createdAt).Seconds())
		}

		var ev T
		if err := json.Unmarshal(payload, &ev); err != nil {
			metrics.EventsHandled.WithLabelValues(topic, "invalid").Inc()
			return fmt.Errorf("unmarshal %s event: %w", topic, err)
		}

		if err := fn(ctx, ev); err != nil {
			metrics.EventsHandled.WithLabelValues(topic, "error").Inc()
			return fmt.Errorf("handle %s event: %w", topic, err)
		}

		metrics.EventsHandled.WithLabelValues(topic, "ok").Inc()
		return nil
	}
}

// Handlers returns the handler of every consumed topic.
func (s *Service) Handlers() map[string]mq.HandlerFunc {
	return map[string]mq.HandlerFunc{
		TopicOrderCreated:      handle(s.metrics, s.handler.HandleOrderCreated),
		TopicOrderStateChanged: handle(s.metrics, s.handler.HandleOrderStateChanged),
		TopicCatalogChanged:    handle(s.metrics, s.handler.HandleCatalogChanged),
	}
}

func (s *Service) Run(ctx context.Context) (CleanupFunc, error) {
	for topic, fn := range s.Handlers() {
		if err := s.mqConsumer.RegisterHandler(topic, fn); err != nil {
			return nil, fmt.Errorf("register %s event handler: %w", topic, err)
		}
	}

	mqCleanup, err := s.mqConsumer.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("run mq consumer: %w", err)
	}

	cleanup := func() {
		mqCleanup()
	}

	return cleanup, nil
}
