package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tuanvumaihuynh/lfs/internal/model"
	"github.com/tuanvumaihuynh/lfs/internal/storage/db"
)

type PayPalRepository interface {
	WithDB(db db.DB) PayPalRepository
	CreatePayPalTransaction(ctx context.Context, txn model.PayPalTransaction) error
}

type payPalRepository struct {
	db db.DB
}

func NewPayPalRepository(db db.DB) PayPalRepository {
	return &payPalRepository{db: db}
}

func (r payPalRepository) WithDB(db db.DB) PayPalRepository {
	return &payPalRepository{db: db}
}

func (r payPalRepository) CreatePayPalTransaction(ctx context.Context, txn model.PayPalTransaction) error {
	if _, err := r.db.Exec(ctx, `
		INSERT INTO paypal_transactions (id, order_id, txn_id, payment_status, flagged, flag_info, payload, created_at)
		VALUES (@id, @order_id, @txn_id, @payment_status, @flagged, @flag_info, @payload, @created_at)
	`, pgx.NamedArgs{
		"id":             txn.ID,
		"order_id":       txn.OrderID,
		"txn_id":         txn.TxnID,
		"payment_status": txn.PaymentStatus,
		"flagged":        txn.Flagged,
		"flag_info":      txn.FlagInfo,
		"payload":        txn.Payload,
		"created_at":     txn.CreatedAt,
	}); err != nil {
		return fmt.Errorf("create paypal transaction: %w", err)
	}
	return nil
}
