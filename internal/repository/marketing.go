package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tuanvumaihuynh/lfs/internal/model"
	"github.com/tuanvumaihuynh/lfs/internal/storage/db"
)

type ListTopsellersParams struct {
	// CategoryIDs restricts pinned topsellers to products in any of the categories.
	CategoryIDs []uuid.UUID
	ActiveOnly  bool
	Limit       int32
}

type MarketingRepository interface {
	WithDB(db db.DB) MarketingRepository

	ListTopsellers(ctx context.Context, params ListTopsellersParams) ([]model.Topseller, error)
	CreateTopsellers(ctx context.Context, topsellers []model.Topseller) error
	UpdateTopsellerPosition(ctx context.Context, id uuid.UUID, position int) error
	DeleteTopseller(ctx context.Context, id uuid.UUID) error

	// ReplaceProductSales swaps the whole sales table for sales.
	ReplaceProductSales(ctx context.Context, sales []model.ProductSales) error
	// ListTopProductIDsBySales returns the best selling active products
	// within the categories.
	ListTopProductIDsBySales(ctx context.Context, categoryIDs []uuid.UUID, limit int32) ([]uuid.UUID, error)

	CreateRatingMail(ctx context.Context, mail model.OrderRatingMail) error
}

type marketingRepository struct {
	db db.DB
}

func NewMarketingRepository(db db.DB) MarketingRepository {
	return &marketingRepository{db: db}
}

func (r marketingRepository) WithDB(db db.DB) MarketingRepository {
	return &marketingRepository{db: db}
}

func (r marketingRepository) ListTopsellers(ctx context.Context, params ListTopsellersParams) ([]model.Topseller, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 1000
	}

	rows, err := r.db.Query(ctx, `
		SELECT ts.id, ts.product_id, p.name, ts.position
		FROM topsellers ts
		JOIN products p ON p.id = ts.product_id
		WHERE (@active_only::bool = FALSE OR p.active)
			AND (@category_ids::uuid[] IS NULL OR EXISTS (
				SELECT 1 FROM product_categories pc
				WHERE pc.product_id = p.id AND pc.category_id = ANY(@category_ids::uuid[])
			))
		ORDER BY ts.position, ts.id
		LIMIT @limit
	`, pgx.NamedArgs{
		"active_only":  params.ActiveOnly,
		"category_ids": params.CategoryIDs,
		"limit":        limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list topsellers: %w", err)
	}

	topsellers, err := pgx.CollectRows(rows, pgx.RowToStructByPos[model.Topseller])
	if err != nil {
		return nil, fmt.Errorf("collect topsellers: %w", err)
	}
	return topsellers, nil
}

func (r marketingRepository) CreateTopsellers(ctx context.Context, topsellers []model.Topseller) error {
	if len(topsellers) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, ts := range topsellers {
		batch.Queue(`
			INSERT INTO topsellers (id, product_id, position)
			VALUES (@id, @product_id, @position)
			ON CONFLICT (product_id) DO UPDATE SET position = EXCLUDED.position
		`, pgx.NamedArgs{
			"id":         ts.ID,
			"product_id": ts.ProductID,
			"position":   ts.Position,
		})
	}

	if err := r.db.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("create topsellers: %w", err)
	}
	return nil
}

func (r marketingRepository) UpdateTopsellerPosition(ctx context.Context, id uuid.UUID, position int) error {
	tag, err := r.db.Exec(ctx, `UPDATE topsellers SET position = @position WHERE id = @id`, pgx.NamedArgs{
		"id":       id,
		"position": position,
	})
	if err != nil {
		return fmt.Errorf("update topseller position: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update topseller position: %w", pgx.ErrNoRows)
	}
	return nil
}

func (r marketingRepository) DeleteTopseller(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM topsellers WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("delete topseller: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete topseller: %w", pgx.ErrNoRows)
	}
	return nil
}

func (r marketingRepository) ReplaceProductSales(ctx context.Context, sales []model.ProductSales) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM product_sales`); err != nil {
		return fmt.Errorf("clear product sales: %w", err)
	}

	if _, err := r.db.CopyFrom(ctx,
		pgx.Identifier{"product_sales"},
		[]string{"product_id", "sales"},
		pgx.CopyFromSlice(len(sales), func(i int) ([]any, error) {
			return []any{sales[i].ProductID, sales[i].Sales}, nil
		}),
	); err != nil {
		return fmt.Errorf("copy product sales: %w", err)
	}
	return nil
}

func (r marketingRepository) ListTopProductIDsBySales(ctx context.Context, categoryIDs []uuid.UUID, limit int32) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, `
		SELECT ps.product_id
		FROM product_sales ps
		JOIN products p ON p.id = ps.product_id
		WHERE p.active
			AND (@category_ids::uuid[] IS NULL OR EXISTS (
				SELECT 1 FROM product_categories pc
				WHERE pc.product_id = p.id AND pc.category_id = ANY(@category_ids::uuid[])
			))
		ORDER BY ps.sales DESC, ps.product_id
		LIMIT @limit
	`, pgx.NamedArgs{
		"category_ids": categoryIDs,
		"limit":        limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list top product ids: %w", err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, fmt.Errorf("collect top product ids: %w", err)
	}
	return ids, nil
}

func (r marketingRepository) CreateRatingMail(ctx context.Context, mail model.OrderRatingMail) error {
	if _, err := r.db.Exec(ctx, `
		INSERT INTO order_rating_mails (id, order_id, send_date)
		VALUES (@id, @order_id, @send_date)
		ON CONFLICT (order_id) DO NOTHING
	`, pgx.NamedArgs{
		"id":        mail.ID,
		"order_id":  mail.OrderID,
		"send_date": mail.SendDate,
	}); err != nil {
		return fmt.Errorf("create rating mail: %w", err)
	}
	return nil
}
