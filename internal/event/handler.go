package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tuanvumaihuynh/lfs/internal/config"
	"github.com/tuanvumaihuynh/lfs/internal/mail"
	"github.com/tuanvumaihuynh/lfs/internal/model"
	"github.com/tuanvumaihuynh/lfs/internal/repository"
	"github.com/tuanvumaihuynh/lfs/internal/storage/cache"
	"github.com/tuanvumaihuynh/lfs/internal/storage/db"
)

// Handler reacts to domain events relayed from the outbox.
type Handler struct {
	logger     *slog.Logger
	shopCfg    config.Shop
	payPalCfg  config.PayPal
	cache      cache.Cache
	renderer   *mail.Renderer
	sender     mail.Sender
	orderRepo  repository.OrderRepository
	methodRepo repository.MethodRepository
}

func NewHandler(
	logger *slog.Logger,
	shopCfg config.Shop,
	payPalCfg config.PayPal,
	cache cache.Cache,
	renderer *mail.Renderer,
	sender mail.Sender,
	orderRepo repository.OrderRepository,
	methodRepo repository.MethodRepository,
) *Handler {
	return &Handler{
		logger:     logger.With(slog.String("service", "event")),
		shopCfg:    shopCfg,
		payPalCfg:  payPalCfg,
		cache:      cache,
		renderer:   renderer,
		sender:     sender,
		orderRepo:  orderRepo,
		methodRepo: methodRepo,
	}
}

func (h *Handler) send(ctx context.Context, kind mail.Kind, to []string, order model.Order) error {
	if len(to) == 0 {
		return nil
	}

	msg, err := h.renderer.Render(kind, to, mail.Data{Order: order})
	if err != nil {
		return fmt.Errorf("render %s mail: %w", kind, err)
	}

	if err := h.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("send %s mail: %w", kind, err)
	}

	h.logger.InfoContext(ctx, "mail sent",
		slog.String("kind", string(kind)),
		slog.String("order_id", order.ID.String()))

	return nil
}

// deferReceivedMail reports whether the order received mail waits for the
// payment of a PayPal order.
func (h *Handler) deferReceivedMail(ctx context.Context, order model.Order) (bool, error) {
	if !h.payPalCfg.SendOrderMail || order.PaymentMethodID == nil {
		return false, nil
	}

	method, err := h.methodRepo.GetPaymentMethod(ctx, *order.PaymentMethodID)
	if err != nil {
		if db.IsNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("method repository get payment method: %w", err)
	}

	return method.Kind == model.PaymentMethodKindPayPal, nil
}

func (h *Handler) HandleOrderCreated(ctx context.Context, ev OrderCreatedEvent) error {
	order, err := h.orderRepo.GetOrder(ctx, ev.OrderID)
	if err != nil {
		return fmt.Errorf("order repository get order: %w", err)
	}

	deferred, err := h.deferReceivedMail(ctx, order)
	if err != nil {
		return err
	}
	if !deferred {
		if err := h.send(ctx, mail.KindOrderReceived, []string{order.CustomerEmail}, order); err != nil {
			return err
		}
	}

	return h.send(ctx, mail.KindOrderNotification, h.shopCfg.NotificationEmails, order)
}

func (h *Handler) HandleOrderStateChanged(ctx context.Context, ev OrderStateChangedEvent) error {
	state := model.OrderState(ev.ToState)
	if state != model.OrderStateSent && state != model.OrderStatePaid {
		return nil
	}

	order, err := h.orderRepo.GetOrder(ctx, ev.OrderID)
	if err != nil {
		return fmt.Errorf("order repository get order: %w", err)
	}
	to := []string{order.CustomerEmail}

	if state == model.OrderStateSent {
		return h.send(ctx, mail.KindOrderSent, to, order)
	}

	deferred, err := h.deferReceivedMail(ctx, order)
	if err != nil {
		return err
	}
	if deferred {
		if err := h.send(ctx, mail.KindOrderReceived, to, order); err != nil {
			return err
		}
	}

	return h.send(ctx, mail.KindOrderPaid, to, order)
}

// HandleCatalogChanged drops every cached view that may show the change.
func (h *Handler) HandleCatalogChanged(ctx context.Context, ev CatalogChangedEvent) error {
	for _, prefix := range []string{cache.PrefixCatalog, cache.PrefixTopseller, cache.PrefixPortlet} {
		if err := h.cache.DeletePrefix(ctx, prefix); err != nil {
			return fmt.Errorf("delete cache prefix %s: %w", prefix, err)
		}
	}

	h.logger.DebugContext(ctx, "cache invalidated",
		slog.String("entity", string(ev.Entity)),
		slog.String("action", ev.Action))

	return nil
}
