package relay

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/lfs/internal/config"
	"github.com/tuanvumaihuynh/lfs/internal/metric"
	"github.com/tuanvumaihuynh/lfs/internal/repository"
	"github.com/tuanvumaihuynh/lfs/internal/storage/db"
	"github.com/tuanvumaihuynh/lfs/internal/storage/mq"
)

type fakeDB struct{}

func (fakeDB) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (fakeDB) Query(context.Context, string, ...any) (pgx.Rows, error) { return nil, nil }

func (fakeDB) QueryRow(context.Context, string, ...any) pgx.Row { return nil }

func (fakeDB) CopyFrom(context.Context, pgx.Identifier, []string, pgx.CopyFromSource) (int64, error) {
	return 0, nil
}

func (fakeDB) SendBatch(context.Context, *pgx.Batch) pgx.BatchResults { return nil }

func (f fakeDB) WithTx(_ context.Context, fn func(db.DB) error) error { return fn(f) }

type mockOutboxMsgRepository struct{ mock.Mock }

func (m *mockOutboxMsgRepository) WithDB(db.DB) repository.OutboxMsgRepository { return m }

func (m *mockOutboxMsgRepository) CreateOutboxMsg(ctx context.Context, params repository.CreateOutboxMsgParams) error {
	return m.Called(ctx, params).Error(0)
}

func (m *mockOutboxMsgRepository) ListUnprocessedOutboxMsgs(ctx context.Context, params repository.ListUnprocessedOutboxMsgsParams) ([]repository.ListUnprocessedOutboxMsgsResult, error) {
	args := m.Called(ctx, params)
	msgs, _ := args.Get(0).([]repository.ListUnprocessedOutboxMsgsResult)
	return msgs, args.Error(1)
}

func (m *mockOutboxMsgRepository) BulkUpdateOutboxMsgs(ctx context.Context, params repository.BulkUpdateOutboxMsgsParams) error {
	return m.Called(ctx, params).Error(0)
}

// producerFunc adapts a function to mq.Producer.
type producerFunc func(msg mq.ProduceMsg) error

func (f producerFunc) Produce(_ context.Context, msg mq.ProduceMsg) error { return f(msg) }

func newTestService(repo *mockOutboxMsgRepository, producer mq.Producer) (*Service, *metric.Metrics) {
	metrics := metric.New(prometheus.NewRegistry())
	cfg := config.Relay{BatchSize: 10, Interval: 10 * time.Millisecond, MaxAttempts: 3, ShutdownTimeout: time.Second}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(cfg, logger, fakeDB{}, metrics, repo, producer), metrics
}

func TestRelayBatch(t *testing.T) {
	key := "order-1"
	ok := repository.ListUnprocessedOutboxMsgsResult{
		ID:           uuid.New(),
		Topic:        "order.created",
		Headers:      map[string]string{"x-correlation-id": "abc"},
		Payload:      json.RawMessage(`{"number":"LFS-1"}`),
		PartitionKey: &key,
	}
	failing := repository.ListUnprocessedOutboxMsgsResult{
		ID:       uuid.New(),
		Topic:    "catalog.changed",
		Payload:  json.RawMessage(`{}`),
		Attempts: 1,
	}

	t.Run("Should record produced and failed messages", func(t *testing.T) {
		repo := &mockOutboxMsgRepository{}
		repo.On("ListUnprocessedOutboxMsgs", mock.Anything, repository.ListUnprocessedOutboxMsgsParams{BatchSize: 10}).
			Return([]repository.ListUnprocessedOutboxMsgsResult{ok, failing}, nil)

		var updated repository.BulkUpdateOutboxMsgsParams
		repo.On("BulkUpdateOutboxMsgs", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) { updated = args.Get(1).(repository.BulkUpdateOutboxMsgsParams) }).
			Return(nil)

		produced := make(chan mq.ProduceMsg, 2)
		svc, metrics := newTestService(repo, producerFunc(func(msg mq.ProduceMsg) error {
			if msg.Topic == failing.Topic {
				return errors.New("broker unavailable")
			}
			produced <- msg
			return nil
		}))

		n, err := svc.relayBatch(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		msg := <-produced
		assert.Equal(t, ok.Topic, msg.Topic)
		assert.Equal(t, ok.Headers, msg.Headers)
		assert.Equal(t, &key, msg.PartitionKey)

		assert.EqualValues(t, 3, updated.MaxAttempts)
		require.Len(t, updated.Items, 2)
		assert.Equal(t, ok.ID, updated.Items[0].ID)
		assert.Nil(t, updated.Items[0].Error)
		assert.Equal(t, failing.ID, updated.Items[1].ID)
		require.NotNil(t, updated.Items[1].Error)
		assert.Equal(t, "broker unavailable", *updated.Items[1].Error)

		assert.InDelta(t, 1, testutil.ToFloat64(metrics.OutboxRelayed.WithLabelValues(ok.Topic, resultOK)), 0)
		assert.InDelta(t, 1, testutil.ToFloat64(metrics.OutboxRelayed.WithLabelValues(failing.Topic, resultError)), 0)
	})

	t.Run("Should skip the update when nothing is pending", func(t *testing.T) {
		repo := &mockOutboxMsgRepository{}
		repo.On("ListUnprocessedOutboxMsgs", mock.Anything, mock.Anything).Return(nil, nil)

		svc, _ := newTestService(repo, producerFunc(func(mq.ProduceMsg) error {
			t.Error("nothing must be produced")
			return nil
		}))

		n, err := svc.relayBatch(context.Background())
		require.NoError(t, err)
		assert.Zero(t, n)
		repo.AssertNotCalled(t, "BulkUpdateOutboxMsgs", mock.Anything, mock.Anything)
	})

	t.Run("Should return list errors", func(t *testing.T) {
		repo := &mockOutboxMsgRepository{}
		repo.On("ListUnprocessedOutboxMsgs", mock.Anything, mock.Anything).Return(nil, errors.New("connection reset"))

		svc, _ := newTestService(repo, producerFunc(func(mq.ProduceMsg) error { return nil }))

		_, err := svc.relayBatch(context.Background())
		assert.ErrorContains(t, err, "connection reset")
	})
}

func TestRunStopsOnCleanup(t *testing.T) {
	repo := &mockOutboxMsgRepository{}
	listed := make(chan struct{}, 1)
	repo.On("ListUnprocessedOutboxMsgs", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			select {
			case listed <- struct{}{}:
			default:
			}
		}).
		Return(nil, nil)

	svc, _ := newTestService(repo, producerFunc(func(mq.ProduceMsg) error { return nil }))
	cleanup := svc.Run(context.Background())

	select {
	case <-listed:
	case <-time.After(time.Second):
		t.Fatal("relay did not poll")
	}

	done := make(chan struct{})
	go func() {
		cleanup()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("cleanup did not return")
	}
}
