package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/lfs/internal/apperr"
	"github.com/tuanvumaihuynh/lfs/internal/event"
	"github.com/tuanvumaihuynh/lfs/internal/metric"
	"github.com/tuanvumaihuynh/lfs/internal/model"
	"github.com/tuanvumaihuynh/lfs/internal/repository"
	"github.com/tuanvumaihuynh/lfs/internal/storage/db"
)

type ListOrdersParams struct {
	Name  string
	State *model.OrderState
	// Start and End are days. The range covers Start up to the beginning of
	// End; without End it runs until the beginning of tomorrow.
	Start  *time.Time
	End    *time.Time
	Limit  int32
	Offset int32
}

type OrderPage struct {
	Items []model.Order `json:"items"`
	Total int64         `json:"total"`
}

type OrderSummary struct {
	Total        decimal.Decimal `json:"total"`
	ItemAmount   int             `json:"item_amount"`
	ProductNames []string        `json:"product_names"`
}

type OrderService interface {
	ListOrders(ctx context.Context, params ListOrdersParams) (OrderPage, error)
	GetOrder(ctx context.Context, id uuid.UUID) (model.Order, error)
	SetOrderState(ctx context.Context, id uuid.UUID, state model.OrderState) (model.Order, error)
	DeleteOrder(ctx context.Context, id uuid.UUID) error
	OrderSummary(ctx context.Context, id uuid.UUID) (OrderSummary, error)
}

type orderService struct {
	db            db.DB
	logger        *slog.Logger
	now           Clock
	metrics       *metric.Metrics
	orderRepo     repository.OrderRepository
	outboxMsgRepo repository.OutboxMsgRepository
}

func NewOrderService(
	db db.DB,
	logger *slog.Logger,
	now Clock,
	metrics *metric.Metrics,
	orderRepo repository.OrderRepository,
	outboxMsgRepo repository.OutboxMsgRepository,
) OrderService {
	return &orderService{
		db:            db,
		logger:        logger.With(slog.String("service", "order")),
		now:           now,
		metrics:       metrics,
		orderRepo:     orderRepo,
		outboxMsgRepo: outboxMsgRepo,
	}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// orderDateRange turns the day filters into a half open time range.
func orderDateRange(start, end *time.Time, now time.Time) (from, to time.Time) {
	if start == nil && end == nil {
		return time.Time{}, time.Time{}
	}

	if start != nil {
		from = startOfDay(*start)
	}
	if end != nil {
		to = startOfDay(*end)
	} else {
		to = startOfDay(now).AddDate(0, 0, 1)
	}

	return from, to
}

func (s *orderService) ListOrders(ctx context.Context, params ListOrdersParams) (OrderPage, error) {
	from, to := orderDateRange(params.Start, params.End, s.now())

	limit := params.Limit
	if limit <= 0 {
		limit = 50
	}

	orders, total, err := s.orderRepo.ListOrders(ctx, repository.ListOrdersParams{
		Name:   params.Name,
		State:  params.State,
		From:   from,
		To:     to,
		Limit:  limit,
		Offset: params.Offset,
	})
	if err != nil {
		return OrderPage{}, fmt.Errorf("order repository list orders: %w", err)
	}

	return OrderPage{Items: orders, Total: total}, nil
}

func (s *orderService) GetOrder(ctx context.Context, id uuid.UUID) (model.Order, error) {
	order, err := s.orderRepo.GetOrder(ctx, id)
	if err != nil {
		return model.Order{}, notFound(fmt.Errorf("order repository get order: %w", err), apperr.OrderNotFoundErr)
	}

	return order, nil
}

// SetOrderState sets any state regardless of the current one.
func (s *orderService) SetOrderState(ctx context.Context, id uuid.UUID, state model.OrderState) (model.Order, error) {
	var order model.Order

	if err := s.db.WithTx(ctx, func(db db.DB) error {
		var err error
		order, err = setOrderState(ctx, db, s.orderRepo, s.outboxMsgRepo, id, state, s.now())
		return err
	}); err != nil {
		return model.Order{}, fmt.Errorf("db with tx: %w", err)
	}

	s.metrics.OrderStateChanges.WithLabelValues(state.String()).Inc()
	return order, nil
}

// setOrderState changes the state within conn and records the change in
// the outbox. It is shared with the payment notification handling.
func setOrderState(
	ctx context.Context,
	conn db.DB,
	orderRepo repository.OrderRepository,
	outboxMsgRepo repository.OutboxMsgRepository,
	id uuid.UUID,
	state model.OrderState,
	now time.Time,
) (model.Order, error) {
	orderRepo = orderRepo.WithDB(conn)

	order, err := orderRepo.GetOrder(ctx, id)
	if err != nil {
		return model.Order{}, notFound(fmt.Errorf("order repository get order: %w", err), apperr.OrderNotFoundErr)
	}

	from := order.State
	if err := orderRepo.UpdateOrderState(ctx, id, state, now); err != nil {
		return model.Order{}, notFound(fmt.Errorf("order repository update order state: %w", err), apperr.OrderNotFoundErr)
	}
	order.State = state
	order.StateModified = now

	key := id.String()
	if err := writeOutboxMsg(ctx, outboxMsgRepo.WithDB(conn), event.TopicOrderStateChanged, &key, event.OrderStateChangedEvent{
		OrderID:   id,
		FromState: int(from),
		ToState:   int(state),
	}); err != nil {
		return model.Order{}, err
	}

	return order, nil
}

func (s *orderService) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	if err := s.orderRepo.DeleteOrder(ctx, id); err != nil {
		return notFound(fmt.Errorf("order repository delete order: %w", err), apperr.OrderNotFoundErr)
	}

	return nil
}

func (s *orderService) OrderSummary(ctx context.Context, id uuid.UUID) (OrderSummary, error) {
	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return OrderSummary{}, err
	}

	return summarize(order), nil
}

// summarize counts only product items; discount lines have no product.
func summarize(order model.Order) OrderSummary {
	summary := OrderSummary{Total: order.Price, ProductNames: []string{}}
	for _, item := range order.Items {
		if item.ProductID == nil {
			continue
		}
		summary.ItemAmount += item.ProductAmount
		summary.ProductNames = append(summary.ProductNames, item.ProductName)
	}

	return summary
}
