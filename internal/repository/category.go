package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tuanvumaihuynh/lfs/internal/model"
	"github.com/tuanvumaihuynh/lfs/internal/storage/db"
)

type CategoryRepository interface {
	WithDB(db db.DB) CategoryRepository
	ListCategories(ctx context.Context) ([]model.Category, error)
	GetCategory(ctx context.Context, id uuid.UUID) (model.Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (model.Category, error)
	CreateCategory(ctx context.Context, category model.Category) error
	UpdateCategory(ctx context.Context, category model.Category) error
	DeleteCategory(ctx context.Context, id uuid.UUID) error
}

type categoryRepository struct {
	db db.DB
}

func NewCategoryRepository(db db.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r categoryRepository) WithDB(db db.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

const categorySelect = `
	SELECT
		id, parent_id, name, slug, position, level, exclude_from_navigation, show_all_products,
		short_description, description, meta_title, meta_keywords, meta_description,
		created_at, updated_at
	FROM categories
`

func scanCategory(row pgx.Row) (model.Category, error) {
	var c model.Category
	err := row.Scan(
		&c.ID, &c.ParentID, &c.Name, &c.Slug, &c.Position, &c.Level, &c.ExcludeFromNavigation, &c.ShowAllProducts,
		&c.ShortDescription, &c.Description, &c.MetaTitle, &c.MetaKeywords, &c.MetaDescription,
		&c.CreatedAt, &c.UpdatedAt,
	)
	return c, err
}

func (r categoryRepository) ListCategories(ctx context.Context) ([]model.Category, error) {
	rows, err := r.db.Query(ctx, categorySelect+` ORDER BY level, position, name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	categories, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Category, error) {
		return scanCategory(row)
	})
	if err != nil {
		return nil, fmt.Errorf("collect categories: %w", err)
	}

	return categories, nil
}

func (r categoryRepository) GetCategory(ctx context.Context, id uuid.UUID) (model.Category, error) {
	c, err := scanCategory(r.db.QueryRow(ctx, categorySelect+` WHERE id = @id`, pgx.NamedArgs{"id": id}))
	if err != nil {
		return model.Category{}, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

func (r categoryRepository) GetCategoryBySlug(ctx context.Context, slug string) (model.Category, error) {
	c, err := scanCategory(r.db.QueryRow(ctx, categorySelect+` WHERE slug = @slug`, pgx.NamedArgs{"slug": slug}))
	if err != nil {
		return model.Category{}, fmt.Errorf("get category by slug: %w", err)
	}
	return c, nil
}

func categoryArgs(c model.Category) pgx.NamedArgs {
	return pgx.NamedArgs{
		"id":                      c.ID,
		"parent_id":               c.ParentID,
		"name":                    c.Name,
		"slug":                    c.Slug,
		"position":                c.Position,
		"level":                   c.Level,
		"exclude_from_navigation": c.ExcludeFromNavigation,
		"show_all_products":       c.ShowAllProducts,
		"short_description":       c.ShortDescription,
		"description":             c.Description,
		"meta_title":              c.MetaTitle,
		"meta_keywords":           c.MetaKeywords,
		"meta_description":        c.MetaDescription,
		"created_at":              c.CreatedAt,
		"updated_at":              c.UpdatedAt,
	}
}

func (r categoryRepository) CreateCategory(ctx context.Context, category model.Category) error {
	if _, err := r.db.Exec(ctx, `
		INSERT INTO categories (
			id, parent_id, name, slug, position, level, exclude_from_navigation, show_all_products,
			short_description, description, meta_title, meta_keywords, meta_description,
			created_at, updated_at
		) VALUES (
			@id, @parent_id, @name, @slug, @position, @level, @exclude_from_navigation, @show_all_products,
			@short_description, @description, @meta_title, @meta_keywords, @meta_description,
			@created_at, @updated_at
		)
	`, categoryArgs(category)); err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

func (r categoryRepository) UpdateCategory(ctx context.Context, category model.Category) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE categories SET
			parent_id = @parent_id, name = @name, slug = @slug, position = @position, level = @level,
			exclude_from_navigation = @exclude_from_navigation, show_all_products = @show_all_products,
			short_description = @short_description, description = @description,
			meta_title = @meta_title, meta_keywords = @meta_keywords, meta_description = @meta_description,
			updated_at = @updated_at
		WHERE id = @id
	`, categoryArgs(category))
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update category: %w", pgx.ErrNoRows)
	}
	return nil
}

func (r categoryRepository) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete category: %w", pgx.ErrNoRows)
	}
	return nil
}
