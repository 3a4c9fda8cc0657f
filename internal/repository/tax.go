package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tuanvumaihuynh/lfs/internal/model"
	"github.com/tuanvumaihuynh/lfs/internal/storage/db"
)

type TaxRepository interface {
	WithDB(db db.DB) TaxRepository
	ListTaxes(ctx context.Context) ([]model.Tax, error)
	GetTax(ctx context.Context, id uuid.UUID) (model.Tax, error)
	CreateTax(ctx context.Context, tax model.Tax) error
	UpdateTax(ctx context.Context, tax model.Tax) error
	DeleteTax(ctx context.Context, id uuid.UUID) error
}

type taxRepository struct {
	db db.DB
}

func NewTaxRepository(db db.DB) TaxRepository {
	return &taxRepository{db: db}
}

func (r taxRepository) WithDB(db db.DB) TaxRepository {
	return &taxRepository{db: db}
}

func scanTax(row pgx.Row) (model.Tax, error) {
	var t model.Tax
	err := row.Scan(&t.ID, &t.Name, &t.Rate, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

func (r taxRepository) ListTaxes(ctx context.Context) ([]model.Tax, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, rate, created_at, updated_at FROM taxes ORDER BY rate, name`)
	if err != nil {
		return nil, fmt.Errorf("list taxes: %w", err)
	}

	taxes, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Tax, error) {
		return scanTax(row)
	})
	if err != nil {
		return nil, fmt.Errorf("collect taxes: %w", err)
	}

	return taxes, nil
}

func (r taxRepository) GetTax(ctx context.Context, id uuid.UUID) (model.Tax, error) {
	t, err := scanTax(r.db.QueryRow(ctx,
		`SELECT id, name, rate, created_at, updated_at FROM taxes WHERE id = @id`,
		pgx.NamedArgs{"id": id}))
	if err != nil {
		return model.Tax{}, fmt.Errorf("get tax: %w", err)
	}
	return t, nil
}

func (r taxRepository) CreateTax(ctx context.Context, tax model.Tax) error {
	if _, err := r.db.Exec(ctx, `
		INSERT INTO taxes (id, name, rate, created_at, updated_at)
		VALUES (@id, @name, @rate, @created_at, @updated_at)
	`, pgx.NamedArgs{
		"id":         tax.ID,
		"name":       tax.Name,
		"rate":       tax.Rate,
		"created_at": tax.CreatedAt,
		"updated_at": tax.UpdatedAt,
	}); err != nil {
		return fmt.Errorf("create tax: %w", err)
	}
	return nil
}

func (r taxRepository) UpdateTax(ctx context.Context, tax model.Tax) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE taxes SET name = @name, rate = @rate, updated_at = @updated_at WHERE id = @id
	`, pgx.NamedArgs{
		"id":         tax.ID,
		"name":       tax.Name,
		"rate":       tax.Rate,
		"updated_at": tax.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("update tax: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update tax: %w", pgx.ErrNoRows)
	}
	return nil
}

func (r taxRepository) DeleteTax(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM taxes WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("delete tax: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete tax: %w", pgx.ErrNoRows)
	}
	return nil
}
