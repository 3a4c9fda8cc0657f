package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tuanvumaihuynh/lfs/internal/model"
	"github.com/tuanvumaihuynh/lfs/internal/storage/db"
)

type ExportRepository interface {
	WithDB(db db.DB) ExportRepository
	ListExports(ctx context.Context) ([]model.Export, error)
	GetExport(ctx context.Context, id uuid.UUID) (model.Export, error)
	GetExportBySlug(ctx context.Context, slug string) (model.Export, error)
	CreateExport(ctx context.Context, export model.Export) error
	UpdateExport(ctx context.Context, export model.Export) error
	DeleteExport(ctx context.Context, id uuid.UUID) error
	SetExportProducts(ctx context.Context, exportID uuid.UUID, productIDs []uuid.UUID) error
}

type exportRepository struct {
	db db.DB
}

func NewExportRepository(db db.DB) ExportRepository {
	return &exportRepository{db: db}
}

func (r exportRepository) WithDB(db db.DB) ExportRepository {
	return &exportRepository{db: db}
}

const exportSelect = `
	SELECT
		e.id, e.name, e.slug, e.position, e.script, e.variants_option,
		ARRAY(SELECT ep.product_id FROM export_products ep WHERE ep.export_id = e.id ORDER BY ep.product_id),
		e.created_at, e.updated_at
	FROM exports e
`

func (r exportRepository) ListExports(ctx context.Context) ([]model.Export, error) {
	rows, err := r.db.Query(ctx, exportSelect+` ORDER BY e.position, e.name`)
	if err != nil {
		return nil, fmt.Errorf("list exports: %w", err)
	}

	exports, err := pgx.CollectRows(rows, pgx.RowToStructByPos[model.Export])
	if err != nil {
		return nil, fmt.Errorf("collect exports: %w", err)
	}
	return exports, nil
}

func (r exportRepository) getExport(ctx context.Context, where string, args pgx.NamedArgs) (model.Export, error) {
	rows, err := r.db.Query(ctx, exportSelect+where, args)
	if err != nil {
		return model.Export{}, err
	}
	return pgx.CollectExactlyOneRow(rows, pgx.RowToStructByPos[model.Export])
}

func (r exportRepository) GetExport(ctx context.Context, id uuid.UUID) (model.Export, error) {
	e, err := r.getExport(ctx, ` WHERE e.id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return model.Export{}, fmt.Errorf("get export: %w", err)
	}
	return e, nil
}

func (r exportRepository) GetExportBySlug(ctx context.Context, slug string) (model.Export, error) {
	e, err := r.getExport(ctx, ` WHERE e.slug = @slug`, pgx.NamedArgs{"slug": slug})
	if err != nil {
		return model.Export{}, fmt.Errorf("get export by slug: %w", err)
	}
	return e, nil
}

func exportArgs(e model.Export) pgx.NamedArgs {
	return pgx.NamedArgs{
		"id":              e.ID,
		"name":            e.Name,
		"slug":            e.Slug,
		"position":        e.Position,
		"script":          e.Script,
		"variants_option": e.VariantsOption,
		"created_at":      e.CreatedAt,
		"updated_at":      e.UpdatedAt,
	}
}

func (r exportRepository) CreateExport(ctx context.Context, export model.Export) error {
	if _, err := r.db.Exec(ctx, `
		INSERT INTO exports (id, name, slug, position, script, variants_option, created_at, updated_at)
		VALUES (@id, @name, @slug, @position, @script, @variants_option, @created_at, @updated_at)
	`, exportArgs(export)); err != nil {
		return fmt.Errorf("create export: %w", err)
	}
	return nil
}

func (r exportRepository) UpdateExport(ctx context.Context, export model.Export) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE exports SET
			name = @name, slug = @slug, position = @position, script = @script,
			variants_option = @variants_option, updated_at = @updated_at
		WHERE id = @id
	`, exportArgs(export))
	if err != nil {
		return fmt.Errorf("update export: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update export: %w", pgx.ErrNoRows)
	}
	return nil
}

func (r exportRepository) DeleteExport(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM exports WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("delete export: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete export: %w", pgx.ErrNoRows)
	}
	return nil
}

func (r exportRepository) SetExportProducts(ctx context.Context, exportID uuid.UUID, productIDs []uuid.UUID) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM export_products WHERE export_id = @export_id`,
		pgx.NamedArgs{"export_id": exportID}); err != nil {
		return fmt.Errorf("clear export products: %w", err)
	}

	if len(productIDs) == 0 {
		return nil
	}

	if _, err := r.db.Exec(ctx, `
		INSERT INTO export_products (export_id, product_id)
		SELECT @export_id, UNNEST(@product_ids::uuid[])
		ON CONFLICT DO NOTHING
	`, pgx.NamedArgs{
		"export_id":   exportID,
		"product_ids": productIDs,
	}); err != nil {
		return fmt.Errorf("insert export products: %w", err)
	}
	return nil
}
