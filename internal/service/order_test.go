package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/lfs/internal/apperr"
	"github.com/tuanvumaihuynh/lfs/internal/event"
	"github.com/tuanvumaihuynh/lfs/internal/model"
	"github.com/tuanvumaihuynh/lfs/internal/repository"
)

func TestOrderDateRange(t *testing.T) {
	day := func(y int, m time.Month, d int) *time.Time {
		v := time.Date(y, m, d, 15, 4, 0, 0, time.UTC)
		return &v
	}

	tests := []struct {
		name     string
		start    *time.Time
		end      *time.Time
		wantFrom time.Time
		wantTo   time.Time
	}{
		{
			name: "no filter",
		},
		{
			name:     "start only runs until tomorrow",
			start:    day(2026, 4, 1),
			wantFrom: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
			wantTo:   time.Date(2026, 5, 5, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "start and end",
			start:    day(2026, 4, 1),
			end:      day(2026, 4, 10),
			wantFrom: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
			wantTo:   time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			name:   "end only",
			end:    day(2026, 4, 10),
			wantTo: time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			from, to := orderDateRange(tt.start, tt.end, testNow)
			assert.True(t, tt.wantFrom.Equal(from), "from %s", from)
			assert.True(t, tt.wantTo.Equal(to), "to %s", to)
		})
	}
}

func TestSummarize(t *testing.T) {
	productID := uuid.New()
	order := model.Order{
		Price: d("42.50"),
		Items: []model.OrderItem{
			{ProductID: &productID, ProductName: "Chair", ProductAmount: 2},
			{ProductID: &productID, ProductName: "Lamp", ProductAmount: 1},
			{ProductName: "Summer discount", ProductAmount: 1, PriceGross: d("-5")},
		},
	}

	summary := summarize(order)

	assertDecimal(t, "42.50", summary.Total)
	assert.Equal(t, 3, summary.ItemAmount)
	assert.Equal(t, []string{"Chair", "Lamp"}, summary.ProductNames)
}

func TestOrderService_ListOrders(t *testing.T) {
	orderRepo := &mockOrderRepository{}
	svc := NewOrderService(fakeDB{}, testLogger(), testClock, testMetrics(), orderRepo, &mockOutboxMsgRepository{})

	state := model.OrderStatePaid
	start := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	orderRepo.On("ListOrders", mock.Anything, mock.MatchedBy(func(p repository.ListOrdersParams) bool {
		return p.Limit == 50 && p.Name == "doe" && *p.State == state &&
			p.From.Equal(start) && p.To.Equal(time.Date(2026, 5, 5, 0, 0, 0, 0, time.UTC))
	})).Return([]model.Order{{Number: "LFS-000001"}}, int64(1), nil)

	page, err := svc.ListOrders(context.Background(), ListOrdersParams{Name: "doe", State: &state, Start: &start})
	require.NoError(t, err)

	assert.Equal(t, int64(1), page.Total)
	require.Len(t, page.Items, 1)
	orderRepo.AssertExpectations(t)
}

func TestOrderService_SetOrderState(t *testing.T) {
	ctx := context.Background()

	t.Run("Should update the state and write the change to the outbox", func(t *testing.T) {
		orderRepo := &mockOrderRepository{}
		outboxRepo := &mockOutboxMsgRepository{}
		metrics := testMetrics()
		svc := NewOrderService(fakeDB{}, testLogger(), testClock, metrics, orderRepo, outboxRepo)

		id := uuid.New()
		orderRepo.On("GetOrder", mock.Anything, id).Return(model.Order{ID: id, State: model.OrderStatePaid}, nil)
		orderRepo.On("UpdateOrderState", mock.Anything, id, model.OrderStateSent, testNow).Return(nil)
		outboxRepo.On("CreateOutboxMsg", mock.Anything, mock.MatchedBy(func(p repository.CreateOutboxMsgParams) bool {
			var ev event.OrderStateChangedEvent
			if err := json.Unmarshal(p.Payload, &ev); err != nil {
				return false
			}
			return p.Topic == event.TopicOrderStateChanged && *p.PartitionKey == id.String() &&
				ev.FromState == int(model.OrderStatePaid) && ev.ToState == int(model.OrderStateSent)
		})).Return(nil)

		order, err := svc.SetOrderState(ctx, id, model.OrderStateSent)
		require.NoError(t, err)

		assert.Equal(t, model.OrderStateSent, order.State)
		assert.True(t, testNow.Equal(order.StateModified))
		assert.Equal(t, 1.0, testutil.ToFloat64(metrics.OrderStateChanges.WithLabelValues("sent")))
		orderRepo.AssertExpectations(t)
		outboxRepo.AssertExpectations(t)
	})

	t.Run("Should allow going back to an earlier state", func(t *testing.T) {
		orderRepo := &mockOrderRepository{}
		outboxRepo := &mockOutboxMsgRepository{}
		svc := NewOrderService(fakeDB{}, testLogger(), testClock, testMetrics(), orderRepo, outboxRepo)

		id := uuid.New()
		orderRepo.On("GetOrder", mock.Anything, id).Return(model.Order{ID: id, State: model.OrderStateClosed}, nil)
		orderRepo.On("UpdateOrderState", mock.Anything, id, model.OrderStateSubmitted, testNow).Return(nil)
		outboxRepo.On("CreateOutboxMsg", mock.Anything, outboxTopic(event.TopicOrderStateChanged)).Return(nil)

		order, err := svc.SetOrderState(ctx, id, model.OrderStateSubmitted)
		require.NoError(t, err)
		assert.Equal(t, model.OrderStateSubmitted, order.State)
	})

	t.Run("Should map a missing order", func(t *testing.T) {
		orderRepo := &mockOrderRepository{}
		svc := NewOrderService(fakeDB{}, testLogger(), testClock, testMetrics(), orderRepo, &mockOutboxMsgRepository{})

		id := uuid.New()
		orderRepo.On("GetOrder", mock.Anything, id).Return(model.Order{}, pgx.ErrNoRows)

		_, err := svc.SetOrderState(ctx, id, model.OrderStatePaid)
		require.ErrorIs(t, err, apperr.OrderNotFoundErr)
	})
}
