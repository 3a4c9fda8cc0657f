package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tuanvumaihuynh/lfs/internal/model"
	"github.com/tuanvumaihuynh/lfs/internal/storage/db"
)

type DiscountRepository interface {
	WithDB(db db.DB) DiscountRepository
	ListDiscounts(ctx context.Context, activeOnly bool) ([]model.Discount, error)
	GetDiscount(ctx context.Context, id uuid.UUID) (model.Discount, error)
	CreateDiscount(ctx context.Context, discount model.Discount) error
	UpdateDiscount(ctx context.Context, discount model.Discount) error
	DeleteDiscount(ctx context.Context, id uuid.UUID) error
	SetDiscountProducts(ctx context.Context, discountID uuid.UUID, productIDs []uuid.UUID) error
}

type discountRepository struct {
	db db.DB
}

func NewDiscountRepository(db db.DB) DiscountRepository {
	return &discountRepository{db: db}
}

func (r discountRepository) WithDB(db db.DB) DiscountRepository {
	return &discountRepository{db: db}
}

const discountSelect = `
	SELECT
		d.id, d.name, d.active, d.value, d.type, d.tax_id, COALESCE(t.rate, 0), d.sku, d.sums_up,
		ARRAY(SELECT dp.product_id FROM discount_products dp WHERE dp.discount_id = d.id ORDER BY dp.product_id),
		d.created_at, d.updated_at
	FROM discounts d
	LEFT JOIN taxes t ON t.id = d.tax_id
`

func scanDiscount(row pgx.Row) (model.Discount, error) {
	var d model.Discount
	err := row.Scan(
		&d.ID, &d.Name, &d.Active, &d.Value, &d.Type, &d.TaxID, &d.TaxRate, &d.Sku, &d.SumsUp,
		&d.ProductIDs, &d.CreatedAt, &d.UpdatedAt,
	)
	return d, err
}

func (r discountRepository) attachCriteria(ctx context.Context, discounts []model.Discount) error {
	ids := make([]uuid.UUID, 0, len(discounts))
	for _, d := range discounts {
		ids = append(ids, d.ID)
	}

	criteria, err := listCriteria(ctx, r.db, model.CriterionOwnerDiscount, ids)
	if err != nil {
		return err
	}
	for i := range discounts {
		discounts[i].Criteria = criteria[discounts[i].ID]
	}
	return nil
}

func (r discountRepository) ListDiscounts(ctx context.Context, activeOnly bool) ([]model.Discount, error) {
	rows, err := r.db.Query(ctx, discountSelect+`
		WHERE (@active_only::bool = FALSE OR d.active)
		ORDER BY d.created_at, d.id
	`, pgx.NamedArgs{"active_only": activeOnly})
	if err != nil {
		return nil, fmt.Errorf("list discounts: %w", err)
	}

	discounts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Discount, error) {
		return scanDiscount(row)
	})
	if err != nil {
		return nil, fmt.Errorf("collect discounts: %w", err)
	}

	if err := r.attachCriteria(ctx, discounts); err != nil {
		return nil, err
	}
	return discounts, nil
}

func (r discountRepository) GetDiscount(ctx context.Context, id uuid.UUID) (model.Discount, error) {
	d, err := scanDiscount(r.db.QueryRow(ctx, discountSelect+` WHERE d.id = @id`, pgx.NamedArgs{"id": id}))
	if err != nil {
		return model.Discount{}, fmt.Errorf("get discount: %w", err)
	}

	discounts := []model.Discount{d}
	if err := r.attachCriteria(ctx, discounts); err != nil {
		return model.Discount{}, err
	}
	return discounts[0], nil
}

func discountArgs(d model.Discount) pgx.NamedArgs {
	return pgx.NamedArgs{
		"id":         d.ID,
		"name":       d.Name,
		"active":     d.Active,
		"value":      d.Value,
		"type":       d.Type,
		"tax_id":     d.TaxID,
		"sku":        d.Sku,
		"sums_up":    d.SumsUp,
		"created_at": d.CreatedAt,
		"updated_at": d.UpdatedAt,
	}
}

func (r discountRepository) CreateDiscount(ctx context.Context, discount model.Discount) error {
	if _, err := r.db.Exec(ctx, `
		INSERT INTO discounts (id, name, active, value, type, tax_id, sku, sums_up, created_at, updated_at)
		VALUES (@id, @name, @active, @value, @type, @tax_id, @sku, @sums_up, @created_at, @updated_at)
	`, discountArgs(discount)); err != nil {
		return fmt.Errorf("create discount: %w", err)
	}
	return nil
}

func (r discountRepository) UpdateDiscount(ctx context.Context, discount model.Discount) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE discounts SET
			name = @name, active = @active, value = @value, type = @type, tax_id = @tax_id,
			sku = @sku, sums_up = @sums_up, updated_at = @updated_at
		WHERE id = @id
	`, discountArgs(discount))
	if err != nil {
		return fmt.Errorf("update discount: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update discount: %w", pgx.ErrNoRows)
	}
	return nil
}

func (r discountRepository) DeleteDiscount(ctx context.Context, id uuid.UUID) error {
	if err := deleteOwnerCriteria(ctx, r.db, model.CriterionOwnerDiscount, []uuid.UUID{id}); err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, `DELETE FROM discounts WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("delete discount: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete discount: %w", pgx.ErrNoRows)
	}
	return nil
}

func (r discountRepository) SetDiscountProducts(ctx context.Context, discountID uuid.UUID, productIDs []uuid.UUID) error {
	if _, err := r.db.Exec(ctx, `
		DELETE FROM discount_products WHERE discount_id = @discount_id
	`, pgx.NamedArgs{"discount_id": discountID}); err != nil {
		return fmt.Errorf("clear discount products: %w", err)
	}

	if len(productIDs) == 0 {
		return nil
	}

	if _, err := r.db.Exec(ctx, `
		INSERT INTO discount_products (discount_id, product_id)
		SELECT @discount_id, UNNEST(@product_ids::uuid[])
		ON CONFLICT DO NOTHING
	`, pgx.NamedArgs{
		"discount_id": discountID,
		"product_ids": productIDs,
	}); err != nil {
		return fmt.Errorf("insert discount products: %w", err)
	}
	return nil
}
