package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tuanvumaihuynh/lfs/internal/model"
	"github.com/tuanvumaihuynh/lfs/internal/storage/db"
)

type CartRepository interface {
	WithDB(db db.DB) CartRepository
	// GetCart returns the cart with its items and their products.
	GetCart(ctx context.Context, id uuid.UUID) (model.Cart, error)
	CreateCart(ctx context.Context, cart model.Cart) error
	UpdateCart(ctx context.Context, cart model.Cart) error
	DeleteCart(ctx context.Context, id uuid.UUID) error
	// AddCartItem adds amount to the existing item of the product or creates it.
	AddCartItem(ctx context.Context, item model.CartItem) (model.CartItem, error)
	SetCartItemAmount(ctx context.Context, cartID, productID uuid.UUID, amount int) error
	DeleteCartItem(ctx context.Context, cartID, productID uuid.UUID) error
	DeleteStaleCarts(ctx context.Context, before time.Time) (int64, error)
}

type cartRepository struct {
	db db.DB
}

func NewCartRepository(db db.DB) CartRepository {
	return &cartRepository{db: db}
}

func (r cartRepository) WithDB(db db.DB) CartRepository {
	return &cartRepository{db: db}
}

func (r cartRepository) GetCart(ctx context.Context, id uuid.UUID) (model.Cart, error) {
	var c model.Cart
	if err := r.db.QueryRow(ctx, `
		SELECT id, customer_id, session, country, selected_shipping_method_id, selected_payment_method_id,
			created_at, updated_at
		FROM carts
		WHERE id = @id
	`, pgx.NamedArgs{"id": id}).Scan(
		&c.ID, &c.CustomerID, &c.Session, &c.Country, &c.SelectedShippingMethodID, &c.SelectedPaymentMethodID,
		&c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return model.Cart{}, fmt.Errorf("get cart: %w", err)
	}

	rows, err := r.db.Query(ctx, "SELECT "+productColumns+`, ci.id, ci.amount, ci.created_at`+productFrom+`
		JOIN cart_items ci ON ci.product_id = p.id
		WHERE ci.cart_id = @cart_id
		ORDER BY ci.created_at, ci.id
	`, pgx.NamedArgs{"cart_id": id})
	if err != nil {
		return model.Cart{}, fmt.Errorf("list cart items: %w", err)
	}

	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.CartItem, error) {
		item := model.CartItem{CartID: id}
		p, err := scanProduct(row, &item.ID, &item.Amount, &item.CreatedAt)
		if err != nil {
			return model.CartItem{}, err
		}
		item.ProductID = p.ID
		item.Product = p
		return item, nil
	})
	if err != nil {
		return model.Cart{}, fmt.Errorf("collect cart items: %w", err)
	}

	c.Items = items
	return c, nil
}

func cartArgs(c model.Cart) pgx.NamedArgs {
	return pgx.NamedArgs{
		"id":                          c.ID,
		"customer_id":                 c.CustomerID,
		"session":                     c.Session,
		"country":                     c.Country,
		"selected_shipping_method_id": c.SelectedShippingMethodID,
		"selected_payment_method_id":  c.SelectedPaymentMethodID,
		"created_at":                  c.CreatedAt,
		"updated_at":                  c.UpdatedAt,
	}
}

func (r cartRepository) CreateCart(ctx context.Context, cart model.Cart) error {
	if _, err := r.db.Exec(ctx, `
		INSERT INTO carts (
			id, customer_id, session, country, selected_shipping_method_id, selected_payment_method_id,
			created_at, updated_at
		) VALUES (
			@id, @customer_id, @session, @country, @selected_shipping_method_id, @selected_payment_method_id,
			@created_at, @updated_at
		)
	`, cartArgs(cart)); err != nil {
		return fmt.Errorf("create cart: %w", err)
	}
	return nil
}

func (r cartRepository) UpdateCart(ctx context.Context, cart model.Cart) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE carts SET
			customer_id = @customer_id, session = @session, country = @country,
			selected_shipping_method_id = @selected_shipping_method_id,
			selected_payment_method_id = @selected_payment_method_id,
			updated_at = @updated_at
		WHERE id = @id
	`, cartArgs(cart))
	if err != nil {
		return fmt.Errorf("update cart: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update cart: %w", pgx.ErrNoRows)
	}
	return nil
}

func (r cartRepository) DeleteCart(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM carts WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete cart: %w", pgx.ErrNoRows)
	}
	return nil
}

func (r cartRepository) AddCartItem(ctx context.Context, item model.CartItem) (model.CartItem, error) {
	if err := r.db.QueryRow(ctx, `
		INSERT INTO cart_items (id, cart_id, product_id, amount, created_at)
		VALUES (@id, @cart_id, @product_id, @amount, @created_at)
		ON CONFLICT (cart_id, product_id) DO UPDATE SET amount = cart_items.amount + EXCLUDED.amount
		RETURNING id, amount, created_at
	`, pgx.NamedArgs{
		"id":         item.ID,
		"cart_id":    item.CartID,
		"product_id": item.ProductID,
		"amount":     item.Amount,
		"created_at": item.CreatedAt,
	}).Scan(&item.ID, &item.Amount, &item.CreatedAt); err != nil {
		return model.CartItem{}, fmt.Errorf("add cart item: %w", err)
	}
	return item, nil
}

func (r cartRepository) SetCartItemAmount(ctx context.Context, cartID, productID uuid.UUID, amount int) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE cart_items SET amount = @amount WHERE cart_id = @cart_id AND product_id = @product_id
	`, pgx.NamedArgs{
		"cart_id":    cartID,
		"product_id": productID,
		"amount":     amount,
	})
	if err != nil {
		return fmt.Errorf("set cart item amount: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("set cart item amount: %w", pgx.ErrNoRows)
	}
	return nil
}

func (r cartRepository) DeleteCartItem(ctx context.Context, cartID, productID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM cart_items WHERE cart_id = @cart_id AND product_id = @product_id
	`, pgx.NamedArgs{
		"cart_id":    cartID,
		"product_id": productID,
	})
	if err != nil {
		return fmt.Errorf("delete cart item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete cart item: %w", pgx.ErrNoRows)
	}
	return nil
}

func (r cartRepository) DeleteStaleCarts(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM carts WHERE customer_id IS NULL AND updated_at < @before
	`, pgx.NamedArgs{"before": before})
	if err != nil {
		return 0, fmt.Errorf("delete stale carts: %w", err)
	}
	return tag.RowsAffected(), nil
}
