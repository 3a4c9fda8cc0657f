package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tuanvumaihuynh/lfs/internal/marketing"
	"github.com/tuanvumaihuynh/lfs/internal/model"
	"github.com/tuanvumaihuynh/lfs/internal/storage/db"
)

type ListOrdersParams struct {
	// Name matches customer first or last name case-insensitively.
	Name  string
	State *model.OrderState
	// From is inclusive, To is exclusive. Zero values leave the side open.
	From   time.Time
	To     time.Time
	Limit  int32
	Offset int32
}

type OrderRepository interface {
	WithDB(db db.DB) OrderRepository
	NextOrderNumber(ctx context.Context) (int64, error)
	// CreateOrder stores the order and its items.
	CreateOrder(ctx context.Context, order model.Order) error
	GetOrder(ctx context.Context, id uuid.UUID) (model.Order, error)
	ListOrders(ctx context.Context, params ListOrdersParams) ([]model.Order, int64, error)
	ListCustomerOrders(ctx context.Context, customerID uuid.UUID) ([]model.Order, error)
	ListOrderItems(ctx context.Context, orderIDs []uuid.UUID) (map[uuid.UUID][]model.OrderItem, error)
	UpdateOrderState(ctx context.Context, id uuid.UUID, state model.OrderState, modified time.Time) error
	DeleteOrder(ctx context.Context, id uuid.UUID) error
	ListSoldItems(ctx context.Context) ([]marketing.SoldItem, error)
	// ListRatingMailCandidates returns closed orders whose state was last
	// changed before closedBefore and that did not get a rating mail yet.
	ListRatingMailCandidates(ctx context.Context, closedBefore time.Time) ([]model.Order, error)
}

type orderRepository struct {
	db db.DB
}

func NewOrderRepository(db db.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r orderRepository) WithDB(db db.DB) OrderRepository {
	return &orderRepository{db: db}
}

const orderColumns = `
	o.id, o.number, o.customer_id, o.customer_email, o.customer_first_name, o.customer_last_name,
	o.state, o.state_modified, o.price, o.tax,
	o.shipping_method_id, o.shipping_price, o.shipping_tax,
	o.payment_method_id, o.payment_price, o.payment_tax,
	o.voucher_number, o.voucher_price, o.voucher_tax,
	o.invoice_address, o.shipping_address, o.bank_account, o.delivery_time,
	o.message, o.requested_delivery_date, o.pay_link, o.created_at
`

func scanOrder(row pgx.Row, extra ...any) (model.Order, error) {
	var o model.Order
	dest := []any{
		&o.ID, &o.Number, &o.CustomerID, &o.CustomerEmail, &o.CustomerFirstName, &o.CustomerLastName,
		&o.State, &o.StateModified, &o.Price, &o.Tax,
		&o.ShippingMethodID, &o.ShippingPrice, &o.ShippingTax,
		&o.PaymentMethodID, &o.PaymentPrice, &o.PaymentTax,
		&o.VoucherNumber, &o.VoucherPrice, &o.VoucherTax,
		&o.InvoiceAddress, &o.ShippingAddress, &o.BankAccount, &o.DeliveryTime,
		&o.Message, &o.RequestedDeliveryDate, &o.PayLink, &o.CreatedAt,
	}
	err := row.Scan(append(dest, extra...)...)
	return o, err
}

func (r orderRepository) NextOrderNumber(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRow(ctx, `SELECT nextval('order_number_seq')`).Scan(&n); err != nil {
		return 0, fmt.Errorf("next order number: %w", err)
	}
	return n, nil
}

func (r orderRepository) CreateOrder(ctx context.Context, order model.Order) error {
	if _, err := r.db.Exec(ctx, `
		INSERT INTO orders (
			id, number, customer_id, customer_email, customer_first_name, customer_last_name,
			state, state_modified, price, tax,
			shipping_method_id, shipping_price, shipping_tax,
			payment_method_id, payment_price, payment_tax,
			voucher_number, voucher_price, voucher_tax,
			invoice_address, shipping_address, bank_account, delivery_time,
			message, requested_delivery_date, pay_link, created_at
		) VALUES (
			@id, @number, @customer_id, @customer_email, @customer_first_name, @customer_last_name,
			@state, @state_modified, @price, @tax,
			@shipping_method_id, @shipping_price, @shipping_tax,
			@payment_method_id, @payment_price, @payment_tax,
			@voucher_number, @voucher_price, @voucher_tax,
			@invoice_address, @shipping_address, @bank_account, @delivery_time,
			@message, @requested_delivery_date, @pay_link, @created_at
		)
	`, pgx.NamedArgs{
		"id":                      order.ID,
		"number":                  order.Number,
		"customer_id":             order.CustomerID,
		"customer_email":          order.CustomerEmail,
		"customer_first_name":     order.CustomerFirstName,
		"customer_last_name":      order.CustomerLastName,
		"state":                   order.State,
		"state_modified":          order.StateModified,
		"price":                   order.Price,
		"tax":                     order.Tax,
		"shipping_method_id":      order.ShippingMethodID,
		"shipping_price":          order.ShippingPrice,
		"shipping_tax":            order.ShippingTax,
		"payment_method_id":       order.PaymentMethodID,
		"payment_price":           order.PaymentPrice,
		"payment_tax":             order.PaymentTax,
		"voucher_number":          order.VoucherNumber,
		"voucher_price":           order.VoucherPrice,
		"voucher_tax":             order.VoucherTax,
		"invoice_address":         order.InvoiceAddress,
		"shipping_address":        order.ShippingAddress,
		"bank_account":            order.BankAccount,
		"delivery_time":           order.DeliveryTime,
		"message":                 order.Message,
		"requested_delivery_date": order.RequestedDeliveryDate,
		"pay_link":                order.PayLink,
		"created_at":              order.CreatedAt,
	}); err != nil {
		return fmt.Errorf("create order: %w", err)
	}

	if len(order.Items) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, item := range order.Items {
		batch.Queue(`
			INSERT INTO order_items (
				id, order_id, position, product_id, product_sku, product_name, product_amount,
				product_price_net, product_price_gross, product_tax, price_net, price_gross, tax
			) VALUES (
				@id, @order_id, @position, @product_id, @product_sku, @product_name, @product_amount,
				@product_price_net, @product_price_gross, @product_tax, @price_net, @price_gross, @tax
			)
		`, pgx.NamedArgs{
			"id":                  item.ID,
			"order_id":            order.ID,
			"position":            item.Position,
			"product_id":          item.ProductID,
			"product_sku":         item.ProductSku,
			"product_name":        item.ProductName,
			"product_amount":      item.ProductAmount,
			"product_price_net":   item.ProductPriceNet,
			"product_price_gross": item.ProductPriceGross,
			"product_tax":         item.ProductTax,
			"price_net":           item.PriceNet,
			"price_gross":         item.PriceGross,
			"tax":                 item.Tax,
		})
	}

	if err := r.db.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("create order items: %w", err)
	}
	return nil
}

func (r orderRepository) GetOrder(ctx context.Context, id uuid.UUID) (model.Order, error) {
	o, err := scanOrder(r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders o WHERE o.id = @id`,
		pgx.NamedArgs{"id": id}))
	if err != nil {
		return model.Order{}, fmt.Errorf("get order: %w", err)
	}

	items, err := r.ListOrderItems(ctx, []uuid.UUID{id})
	if err != nil {
		return model.Order{}, err
	}
	o.Items = items[id]
	return o, nil
}

func (r orderRepository) ListOrders(ctx context.Context, params ListOrdersParams) ([]model.Order, int64, error) {
	args := pgx.NamedArgs{
		"name":    params.Name,
		"pattern": "%" + escapeLike(params.Name) + "%",
		"state":   params.State,
		"limit":   params.Limit,
		"offset":  params.Offset,
		"from":    nil,
		"to":      nil,
	}
	if !params.From.IsZero() {
		args["from"] = params.From
	}
	if !params.To.IsZero() {
		args["to"] = params.To
	}

	rows, err := r.db.Query(ctx, `SELECT `+orderColumns+`, COUNT(*) OVER ()
		FROM orders o
		WHERE (@name::text = '' OR o.customer_first_name ILIKE @pattern OR o.customer_last_name ILIKE @pattern)
			AND (@state::int IS NULL OR o.state = @state::int)
			AND (@from::timestamptz IS NULL OR o.created_at >= @from::timestamptz)
			AND (@to::timestamptz IS NULL OR o.created_at < @to::timestamptz)
		ORDER BY o.created_at DESC, o.id
		LIMIT @limit OFFSET @offset
	`, args)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}

	var total int64
	orders, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Order, error) {
		return scanOrder(row, &total)
	})
	if err != nil {
		return nil, 0, fmt.Errorf("collect orders: %w", err)
	}
	return orders, total, nil
}

func (r orderRepository) ListCustomerOrders(ctx context.Context, customerID uuid.UUID) ([]model.Order, error) {
	rows, err := r.db.Query(ctx, `SELECT `+orderColumns+`
		FROM orders o
		WHERE o.customer_id = @customer_id
		ORDER BY o.created_at DESC, o.id
	`, pgx.NamedArgs{"customer_id": customerID})
	if err != nil {
		return nil, fmt.Errorf("list customer orders: %w", err)
	}

	orders, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Order, error) {
		return scanOrder(row)
	})
	if err != nil {
		return nil, fmt.Errorf("collect customer orders: %w", err)
	}
	return orders, nil
}

func (r orderRepository) ListOrderItems(ctx context.Context, orderIDs []uuid.UUID) (map[uuid.UUID][]model.OrderItem, error) {
	byOrder := make(map[uuid.UUID][]model.OrderItem)
	if len(orderIDs) == 0 {
		return byOrder, nil
	}

	rows, err := r.db.Query(ctx, `
		SELECT
			id, order_id, position, product_id, product_sku, product_name, product_amount,
			product_price_net, product_price_gross, product_tax, price_net, price_gross, tax
		FROM order_items
		WHERE order_id = ANY(@order_ids::uuid[])
		ORDER BY order_id, position
	`, pgx.NamedArgs{"order_ids": orderIDs})
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}

	items, err := pgx.CollectRows(rows, pgx.RowToStructByPos[model.OrderItem])
	if err != nil {
		return nil, fmt.Errorf("collect order items: %w", err)
	}

	for _, item := range items {
		byOrder[item.OrderID] = append(byOrder[item.OrderID], item)
	}
	return byOrder, nil
}

func (r orderRepository) UpdateOrderState(ctx context.Context, id uuid.UUID, state model.OrderState, modified time.Time) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE orders SET state = @state, state_modified = @state_modified WHERE id = @id
	`, pgx.NamedArgs{
		"id":             id,
		"state":          state,
		"state_modified": modified,
	})
	if err != nil {
		return fmt.Errorf("update order state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update order state: %w", pgx.ErrNoRows)
	}
	return nil
}

func (r orderRepository) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM orders WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete order: %w", pgx.ErrNoRows)
	}
	return nil
}

func (r orderRepository) ListSoldItems(ctx context.Context) ([]marketing.SoldItem, error) {
	rows, err := r.db.Query(ctx, `
		SELECT oi.product_id, p.parent_id, p.sub_type = 'variant', oi.product_amount
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.product_amount > 0
	`)
	if err != nil {
		return nil, fmt.Errorf("list sold items: %w", err)
	}

	items, err := pgx.CollectRows(rows, pgx.RowToStructByPos[marketing.SoldItem])
	if err != nil {
		return nil, fmt.Errorf("collect sold items: %w", err)
	}
	return items, nil
}

func (r orderRepository) ListRatingMailCandidates(ctx context.Context, closedBefore time.Time) ([]model.Order, error) {
	rows, err := r.db.Query(ctx, `SELECT `+orderColumns+`
		FROM orders o
		WHERE o.state = @state AND o.state_modified <= @closed_before
			AND NOT EXISTS (SELECT 1 FROM order_rating_mails m WHERE m.order_id = o.id)
		ORDER BY o.state_modified, o.id
	`, pgx.NamedArgs{
		"state":         model.OrderStateClosed,
		"closed_before": closedBefore,
	})
	if err != nil {
		return nil, fmt.Errorf("list rating mail candidates: %w", err)
	}

	orders, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Order, error) {
		return scanOrder(row)
	})
	if err != nil {
		return nil, fmt.Errorf("collect rating mail candidates: %w", err)
	}
	return orders, nil
}
