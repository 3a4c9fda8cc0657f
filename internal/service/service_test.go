package service

import (
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/tuanvumaihuynh/lfs/internal/metric"
	"github.com/tuanvumaihuynh/lfs/internal/repository"
)

var testNow = time.Date(2026, 5, 4, 10, 30, 0, 0, time.UTC)

func testClock() time.Time { return testNow }

func testLogger() *slog.Logger { return slog.New(slog.DiscardHandler) }

func testMetrics() *metric.Metrics { return metric.New(prometheus.NewRegistry()) }

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, d(want).Equal(got), "want %s, got %s", want, got)
}

// outboxTopic matches an outbox message by topic.
func outboxTopic(topic string) any {
	return mock.MatchedBy(func(p repository.CreateOutboxMsgParams) bool { return p.Topic == topic })
}
