package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/lfs/internal/model"
	"github.com/tuanvumaihuynh/lfs/internal/storage/db"
)

type ProductSort string

const (
	ProductSortName      ProductSort = "name"
	ProductSortNameDesc  ProductSort = "-name"
	ProductSortPrice     ProductSort = "price"
	ProductSortPriceDesc ProductSort = "-price"
	ProductSortNewest    ProductSort = "-created_at"
)

var productOrderBy = map[ProductSort]string{
	ProductSortName:      "p.name ASC, p.id",
	ProductSortNameDesc:  "p.name DESC, p.id",
	ProductSortPrice:     "effective_price ASC, p.id",
	ProductSortPriceDesc: "effective_price DESC, p.id",
	ProductSortNewest:    "p.created_at DESC, p.id",
}

func (s ProductSort) Validate() error {
	if _, ok := productOrderBy[s]; !ok {
		return fmt.Errorf("unknown product sort: %s", s)
	}
	return nil
}

type ListProductsParams struct {
	// CategoryIDs restricts the result to products in any of the categories.
	CategoryIDs     []uuid.UUID
	Query           string
	ActiveOnly      bool
	ExcludeVariants bool
	ForSaleOnly     bool
	Sort            ProductSort
	Limit           int32
	Offset          int32
}

type ProductRepository interface {
	WithDB(db db.DB) ProductRepository
	GetProduct(ctx context.Context, id uuid.UUID) (model.Product, error)
	GetProductBySlug(ctx context.Context, slug string) (model.Product, error)
	ListProducts(ctx context.Context, params ListProductsParams) ([]model.Product, int64, error)
	ListProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error)
	ListVariants(ctx context.Context, parentIDs []uuid.UUID) (map[uuid.UUID][]model.Product, error)
	ListCategoryPrices(ctx context.Context, categoryIDs []uuid.UUID) ([]decimal.Decimal, error)
	CreateProduct(ctx context.Context, product model.Product) error
	UpdateProduct(ctx context.Context, product model.Product) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	SetProductCategories(ctx context.Context, productID uuid.UUID, categoryIDs []uuid.UUID) error
	// DecreaseStock fails with pgx.ErrNoRows when less than amount is left.
	DecreaseStock(ctx context.Context, id uuid.UUID, amount int) error
}

type productRepository struct {
	db db.DB
}

func NewProductRepository(db db.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r productRepository) WithDB(db db.DB) ProductRepository {
	return &productRepository{db: db}
}

const productColumns = `
	p.id, p.parent_id, p.sub_type, p.name, p.slug, p.sku, p.short_description, p.description,
	p.price, p.for_sale, p.for_sale_price, p.tax_id, COALESCE(t.rate, 0) AS tax_rate,
	p.active, p.deliverable, p.manage_stock_amount, p.stock_amount,
	p.weight, p.height, p.length, p.width, p.variant_position,
	p.delivery_time_min, p.delivery_time_max, p.delivery_time_unit,
	ARRAY(SELECT pc.category_id FROM product_categories pc WHERE pc.product_id = p.id) AS category_ids,
	p.created_at, p.updated_at,
	CASE WHEN p.for_sale THEN p.for_sale_price ELSE p.price END AS effective_price
`

const productFrom = `
	FROM products p
	LEFT JOIN taxes t ON t.id = p.tax_id
`

const productSelect = "SELECT " + productColumns + productFrom

const productFilter = `
	WHERE (@active_only::bool = FALSE OR p.active)
		AND (@exclude_variants::bool = FALSE OR p.sub_type <> 'variant')
		AND (@for_sale_only::bool = FALSE OR p.for_sale)
		AND (@category_ids::uuid[] IS NULL OR EXISTS (
			SELECT 1 FROM product_categories pc
			WHERE pc.product_id = p.id AND pc.category_id = ANY(@category_ids::uuid[])
		))
		AND (@query::text = '' OR p.name ILIKE @pattern OR p.sku ILIKE @pattern OR p.short_description ILIKE @pattern)
`

func scanProduct(row pgx.Row, extra ...any) (model.Product, error) {
	var (
		p              model.Product
		dtMin, dtMax   *int
		dtUnit         *string
		effectivePrice decimal.Decimal
	)

	dest := []any{
		&p.ID, &p.ParentID, &p.SubType, &p.Name, &p.Slug, &p.Sku, &p.ShortDescription, &p.Description,
		&p.Price, &p.ForSale, &p.ForSalePrice, &p.TaxID, &p.TaxRate,
		&p.Active, &p.Deliverable, &p.ManageStockAmount, &p.StockAmount,
		&p.Weight, &p.Height, &p.Length, &p.Width, &p.VariantPosition,
		&dtMin, &dtMax, &dtUnit,
		&p.CategoryIDs,
		&p.CreatedAt, &p.UpdatedAt,
		&effectivePrice,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return model.Product{}, err
	}

	p.DeliveryTime = deliveryTime(dtMin, dtMax, dtUnit)
	return p, nil
}

func deliveryTime(dtMin, dtMax *int, unit *string) *model.DeliveryTime {
	if dtMin == nil || dtMax == nil || unit == nil {
		return nil
	}
	return &model.DeliveryTime{Min: *dtMin, Max: *dtMax, Unit: model.DeliveryTimeUnit(*unit)}
}

func deliveryTimeArgs(dt *model.DeliveryTime) (dtMin, dtMax *int, unit *string) {
	if dt == nil {
		return nil, nil, nil
	}
	u := string(dt.Unit)
	return &dt.Min, &dt.Max, &u
}

func (r productRepository) getProduct(ctx context.Context, where string, args pgx.NamedArgs) (model.Product, error) {
	row := r.db.QueryRow(ctx, productSelect+where, args)
	p, err := scanProduct(row)
	if err != nil {
		return model.Product{}, err
	}
	return p, nil
}

func (r productRepository) GetProduct(ctx context.Context, id uuid.UUID) (model.Product, error) {
	p, err := r.getProduct(ctx, "WHERE p.id = @id", pgx.NamedArgs{"id": id})
	if err != nil {
		return model.Product{}, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (r productRepository) GetProductBySlug(ctx context.Context, slug string) (model.Product, error) {
	p, err := r.getProduct(ctx, "WHERE p.slug = @slug", pgx.NamedArgs{"slug": slug})
	if err != nil {
		return model.Product{}, fmt.Errorf("get product by slug: %w", err)
	}
	return p, nil
}

func (r productRepository) ListProducts(ctx context.Context, params ListProductsParams) ([]model.Product, int64, error) {
	orderBy, ok := productOrderBy[params.Sort]
	if !ok {
		orderBy = productOrderBy[ProductSortName]
	}

	rows, err := r.db.Query(ctx, "SELECT "+productColumns+", COUNT(*) OVER () AS total"+productFrom+productFilter+`
		ORDER BY `+orderBy+`
		LIMIT @limit OFFSET @offset
	`, pgx.NamedArgs{
		"active_only":      params.ActiveOnly,
		"exclude_variants": params.ExcludeVariants,
		"for_sale_only":    params.ForSaleOnly,
		"category_ids":     params.CategoryIDs,
		"query":            params.Query,
		"pattern":          "%" + escapeLike(params.Query) + "%",
		"limit":            params.Limit,
		"offset":           params.Offset,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}

	var total int64
	products, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Product, error) {
		return scanProduct(row, &total)
	})
	if err != nil {
		return nil, 0, fmt.Errorf("collect products: %w", err)
	}

	return products, total, nil
}

func (r productRepository) ListProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}

	rows, err := r.db.Query(ctx, productSelect+`
		WHERE p.id = ANY(@ids::uuid[])
		ORDER BY array_position(@ids::uuid[], p.id)
	`, pgx.NamedArgs{"ids": ids})
	if err != nil {
		return nil, fmt.Errorf("list products by ids: %w", err)
	}

	products, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Product, error) {
		return scanProduct(row)
	})
	if err != nil {
		return nil, fmt.Errorf("collect products: %w", err)
	}

	return products, nil
}

func (r productRepository) ListVariants(ctx context.Context, parentIDs []uuid.UUID) (map[uuid.UUID][]model.Product, error) {
	variants := make(map[uuid.UUID][]model.Product)
	if len(parentIDs) == 0 {
		return variants, nil
	}

	rows, err := r.db.Query(ctx, productSelect+`
		WHERE p.parent_id = ANY(@parent_ids::uuid[]) AND p.sub_type = 'variant' AND p.active
		ORDER BY p.variant_position, p.name
	`, pgx.NamedArgs{"parent_ids": parentIDs})
	if err != nil {
		return nil, fmt.Errorf("list variants: %w", err)
	}

	products, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Product, error) {
		return scanProduct(row)
	})
	if err != nil {
		return nil, fmt.Errorf("collect variants: %w", err)
	}

	for _, p := range products {
		variants[*p.ParentID] = append(variants[*p.ParentID], p)
	}
	return variants, nil
}

// ListCategoryPrices returns the effective prices of the active products in
// the categories. Products with variants contribute their active variants
// instead of their own price.
func (r productRepository) ListCategoryPrices(ctx context.Context, categoryIDs []uuid.UUID) ([]decimal.Decimal, error) {
	rows, err := r.db.Query(ctx, `
		WITH scoped AS (
			SELECT p.id, p.sub_type, p.price, p.for_sale, p.for_sale_price
			FROM products p
			WHERE p.active AND p.sub_type <> 'variant'
				AND EXISTS (
					SELECT 1 FROM product_categories pc
					WHERE pc.product_id = p.id AND pc.category_id = ANY(@category_ids::uuid[])
				)
		)
		SELECT CASE WHEN s.for_sale THEN s.for_sale_price ELSE s.price END
		FROM scoped s
		WHERE s.sub_type = 'standard'
		UNION ALL
		SELECT CASE WHEN v.for_sale THEN v.for_sale_price ELSE v.price END
		FROM products v
		JOIN scoped s ON s.id = v.parent_id AND s.sub_type = 'product_with_variants'
		WHERE v.active AND v.sub_type = 'variant'
	`, pgx.NamedArgs{"category_ids": categoryIDs})
	if err != nil {
		return nil, fmt.Errorf("list category prices: %w", err)
	}

	prices, err := pgx.CollectRows(rows, pgx.RowTo[decimal.Decimal])
	if err != nil {
		return nil, fmt.Errorf("collect prices: %w", err)
	}

	return prices, nil
}

func productArgs(p model.Product) pgx.NamedArgs {
	dtMin, dtMax, dtUnit := deliveryTimeArgs(p.DeliveryTime)
	return pgx.NamedArgs{
		"id":                  p.ID,
		"parent_id":           p.ParentID,
		"sub_type":            p.SubType,
		"name":                p.Name,
		"slug":                p.Slug,
		"sku":                 p.Sku,
		"short_description":   p.ShortDescription,
		"description":         p.Description,
		"price":               p.Price,
		"for_sale":            p.ForSale,
		"for_sale_price":      p.ForSalePrice,
		"tax_id":              p.TaxID,
		"active":              p.Active,
		"deliverable":         p.Deliverable,
		"manage_stock_amount": p.ManageStockAmount,
		"stock_amount":        p.StockAmount,
		"weight":              p.Weight,
		"height":              p.Height,
		"length":              p.Length,
		"width":               p.Width,
		"variant_position":    p.VariantPosition,
		"delivery_time_min":   dtMin,
		"delivery_time_max":   dtMax,
		"delivery_time_unit":  dtUnit,
		"created_at":          p.CreatedAt,
		"updated_at":          p.UpdatedAt,
	}
}

func (r productRepository) CreateProduct(ctx context.Context, product model.Product) error {
	if _, err := r.db.Exec(ctx, `
		INSERT INTO products (
			id, parent_id, sub_type, name, slug, sku, short_description, description,
			price, for_sale, for_sale_price, tax_id, active, deliverable, manage_stock_amount, stock_amount,
			weight, height, length, width, variant_position,
			delivery_time_min, delivery_time_max, delivery_time_unit, created_at, updated_at
		) VALUES (
			@id, @parent_id, @sub_type, @name, @slug, @sku, @short_description, @description,
			@price, @for_sale, @for_sale_price, @tax_id, @active, @deliverable, @manage_stock_amount, @stock_amount,
			@weight, @height, @length, @width, @variant_position,
			@delivery_time_min, @delivery_time_max, @delivery_time_unit, @created_at, @updated_at
		)
	`, productArgs(product)); err != nil {
		return fmt.Errorf("create product: %w", err)
	}

	return nil
}

func (r productRepository) UpdateProduct(ctx context.Context, product model.Product) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE products SET
			parent_id = @parent_id, sub_type = @sub_type, name = @name, slug = @slug, sku = @sku,
			short_description = @short_description, description = @description,
			price = @price, for_sale = @for_sale, for_sale_price = @for_sale_price, tax_id = @tax_id,
			active = @active, deliverable = @deliverable,
			manage_stock_amount = @manage_stock_amount, stock_amount = @stock_amount,
			weight = @weight, height = @height, length = @length, width = @width,
			variant_position = @variant_position,
			delivery_time_min = @delivery_time_min, delivery_time_max = @delivery_time_max,
			delivery_time_unit = @delivery_time_unit, updated_at = @updated_at
		WHERE id = @id
	`, productArgs(product))
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update product: %w", pgx.ErrNoRows)
	}

	return nil
}

func (r productRepository) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete product: %w", pgx.ErrNoRows)
	}

	return nil
}

func (r productRepository) SetProductCategories(ctx context.Context, productID uuid.UUID, categoryIDs []uuid.UUID) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM product_categories WHERE product_id = @product_id`,
		pgx.NamedArgs{"product_id": productID}); err != nil {
		return fmt.Errorf("clear product categories: %w", err)
	}

	if len(categoryIDs) == 0 {
		return nil
	}

	if _, err := r.db.Exec(ctx, `
		INSERT INTO product_categories (product_id, category_id)
		SELECT @product_id, UNNEST(@category_ids::uuid[])
		ON CONFLICT DO NOTHING
	`, pgx.NamedArgs{
		"product_id":   productID,
		"category_ids": categoryIDs,
	}); err != nil {
		return fmt.Errorf("insert product categories: %w", err)
	}

	return nil
}

func (r productRepository) DecreaseStock(ctx context.Context, id uuid.UUID, amount int) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE products
		SET stock_amount = stock_amount - @amount, updated_at = NOW()
		WHERE id = @id AND manage_stock_amount AND stock_amount >= @amount
	`, pgx.NamedArgs{"id": id, "amount": amount})
	if err != nil {
		return fmt.Errorf("decrease stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("decrease stock: %w", pgx.ErrNoRows)
	}

	return nil
}
