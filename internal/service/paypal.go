package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/lfs/internal/apperr"
	"github.com/tuanvumaihuynh/lfs/internal/config"
	"github.com/tuanvumaihuynh/lfs/internal/metric"
	"github.com/tuanvumaihuynh/lfs/internal/model"
	"github.com/tuanvumaihuynh/lfs/internal/repository"
	"github.com/tuanvumaihuynh/lfs/internal/storage/db"
)

const (
	ipnVerified        = "VERIFIED"
	ipnStatusCompleted = "Completed"
)

type PayPalService interface {
	// HandleIPN verifies an instant payment notification with PayPal and
	// applies it to its order.
	HandleIPN(ctx context.Context, body []byte) error
}

type payPalService struct {
	db            db.DB
	logger        *slog.Logger
	now           Clock
	cfg           config.PayPal
	client        *http.Client
	metrics       *metric.Metrics
	orderRepo     repository.OrderRepository
	payPalRepo    repository.PayPalRepository
	outboxMsgRepo repository.OutboxMsgRepository
}

func NewPayPalService(
	db db.DB,
	logger *slog.Logger,
	now Clock,
	cfg config.PayPal,
	client *http.Client,
	metrics *metric.Metrics,
	orderRepo repository.OrderRepository,
	payPalRepo repository.PayPalRepository,
	outboxMsgRepo repository.OutboxMsgRepository,
) PayPalService {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	return &payPalService{
		db:            db,
		logger:        logger.With(slog.String("service", "paypal")),
		now:           now,
		cfg:           cfg,
		client:        client,
		metrics:       metrics,
		orderRepo:     orderRepo,
		payPalRepo:    payPalRepo,
		outboxMsgRepo: outboxMsgRepo,
	}
}

// verify posts the notification back prefixed with the validate command
// and returns PayPal's trimmed answer.
func (s *payPalService) verify(ctx context.Context, body []byte) (string, error) {
	payload := append([]byte("cmd=_notify-validate&"), body...)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.URL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create verify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := s.client.Do(req)
	if err != nil {
		return "", apperr.PayPalUnavailableErr.WrapParent(err)
	}
	defer res.Body.Close()

	answer, err := io.ReadAll(io.LimitReader(res.Body, 1024))
	if err != nil {
		return "", apperr.PayPalUnavailableErr.WrapParent(err)
	}
	if res.StatusCode != http.StatusOK {
		return "", apperr.PayPalUnavailableErr.WrapParent(fmt.Errorf("unexpected status %d", res.StatusCode))
	}

	return strings.TrimSpace(string(answer)), nil
}

func (s *payPalService) HandleIPN(ctx context.Context, body []byte) error {
	form, err := url.ParseQuery(string(body))
	if err != nil {
		return apperr.ValidationErr.WrapParent(fmt.Errorf("parse ipn: %w", err))
	}

	answer, err := s.verify(ctx, body)
	if err != nil {
		return err
	}

	id, err := newID()
	if err != nil {
		return err
	}

	txn := model.PayPalTransaction{
		ID:            id,
		TxnID:         form.Get("txn_id"),
		PaymentStatus: form.Get("payment_status"),
		Payload:       make(map[string]string, len(form)),
		CreatedAt:     s.now(),
	}
	for k := range form {
		txn.Payload[k] = form.Get(k)
	}

	// Unverified notifications are kept for inspection but never touch an order.
	if answer != ipnVerified {
		txn.Flagged, txn.FlagInfo = true, "not verified: "+answer
		if err := s.payPalRepo.CreatePayPalTransaction(ctx, txn); err != nil {
			return fmt.Errorf("paypal repository create paypal transaction: %w", err)
		}
		s.logger.WarnContext(ctx, "ipn not verified",
			slog.String("txn_id", txn.TxnID),
			slog.String("answer", answer))
		return apperr.IPNNotVerifiedErr
	}

	orderID, parseErr := uuid.Parse(form.Get("custom"))

	if err := s.db.WithTx(ctx, func(db db.DB) error {
		var order *model.Order
		if parseErr == nil {
			o, getErr := s.orderRepo.WithDB(db).GetOrder(ctx, orderID)
			if getErr == nil {
				order = &o
			} else if !isNotFound(getErr) {
				return fmt.Errorf("order repository get order: %w", getErr)
			}
		}

		if order == nil {
			s.logger.WarnContext(ctx, "ipn for unknown order",
				slog.String("custom", form.Get("custom")),
				slog.String("txn_id", txn.TxnID))
		} else {
			txn.OrderID = &order.ID
			txn.Flagged, txn.FlagInfo = s.flags(form, *order)

			state := ipnOrderState(txn.PaymentStatus, txn.Flagged)
			if _, err := setOrderState(ctx, db, s.orderRepo, s.outboxMsgRepo, order.ID, state, txn.CreatedAt); err != nil {
				return err
			}
			s.metrics.OrderStateChanges.WithLabelValues(state.String()).Inc()
		}

		if err := s.payPalRepo.WithDB(db).CreatePayPalTransaction(ctx, txn); err != nil {
			return fmt.Errorf("paypal repository create paypal transaction: %w", err)
		}

		return nil
	}); err != nil {
		return fmt.Errorf("db with tx: %w", err)
	}

	return nil
}

// flags reports notifications that do not match the order they name.
func (s *payPalService) flags(form url.Values, order model.Order) (bool, string) {
	var info []string

	if s.cfg.ReceiverEmail != "" && !strings.EqualFold(form.Get("receiver_email"), s.cfg.ReceiverEmail) {
		info = append(info, "invalid receiver_email "+form.Get("receiver_email"))
	}

	if gross, err := decimal.NewFromString(form.Get("mc_gross")); err != nil || !gross.Equal(order.Price.Round(2)) {
		info = append(info, "invalid mc_gross "+form.Get("mc_gross"))
	}

	return len(info) > 0, strings.Join(info, "; ")
}

func ipnOrderState(status string, flagged bool) model.OrderState {
	switch {
	case status == ipnStatusCompleted && !flagged:
		return model.OrderStatePaid
	case status == ipnStatusCompleted:
		return model.OrderStatePaymentFlagged
	default:
		return model.OrderStatePaymentFailed
	}
}
