package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tuanvumaihuynh/lfs/internal/model"
	"github.com/tuanvumaihuynh/lfs/internal/storage/db"
)

type MethodRepository interface {
	WithDB(db db.DB) MethodRepository

	ListShippingMethods(ctx context.Context) ([]model.ShippingMethod, error)
	GetShippingMethod(ctx context.Context, id uuid.UUID) (model.ShippingMethod, error)
	CreateShippingMethod(ctx context.Context, method model.ShippingMethod) error
	UpdateShippingMethod(ctx context.Context, method model.ShippingMethod) error
	DeleteShippingMethod(ctx context.Context, id uuid.UUID) error

	ListPaymentMethods(ctx context.Context) ([]model.PaymentMethod, error)
	GetPaymentMethod(ctx context.Context, id uuid.UUID) (model.PaymentMethod, error)
	CreatePaymentMethod(ctx context.Context, method model.PaymentMethod) error
	UpdatePaymentMethod(ctx context.Context, method model.PaymentMethod) error
	DeletePaymentMethod(ctx context.Context, id uuid.UUID) error

	GetMethodPrice(ctx context.Context, kind model.MethodKind, id uuid.UUID) (model.MethodPrice, error)
	CreateMethodPrice(ctx context.Context, kind model.MethodKind, price model.MethodPrice) error
	UpdateMethodPrice(ctx context.Context, kind model.MethodKind, price model.MethodPrice) error
	DeleteMethodPrice(ctx context.Context, kind model.MethodKind, id uuid.UUID) error
}

type methodTables struct {
	prices         string
	fk             string
	ownerType      model.CriterionOwnerType
	priceOwnerType model.CriterionOwnerType
}

var methodTablesByKind = map[model.MethodKind]methodTables{
	model.MethodKindShipping: {
		prices:         "shipping_method_prices",
		fk:             "shipping_method_id",
		ownerType:      model.CriterionOwnerShippingMethod,
		priceOwnerType: model.CriterionOwnerShippingMethodPrice,
	},
	model.MethodKindPayment: {
		prices:         "payment_method_prices",
		fk:             "payment_method_id",
		ownerType:      model.CriterionOwnerPaymentMethod,
		priceOwnerType: model.CriterionOwnerPaymentMethodPrice,
	},
}

func tablesFor(kind model.MethodKind) (methodTables, error) {
	t, ok := methodTablesByKind[kind]
	if !ok {
		return methodTables{}, fmt.Errorf("unknown method kind: %s", kind)
	}
	return t, nil
}

type methodRepository struct {
	db db.DB
}

func NewMethodRepository(db db.DB) MethodRepository {
	return &methodRepository{db: db}
}

func (r methodRepository) WithDB(db db.DB) MethodRepository {
	return &methodRepository{db: db}
}

const shippingMethodSelect = `
	SELECT
		m.id, m.name, m.description, m.note, m.priority, m.active, m.tax_id, COALESCE(t.rate, 0),
		m.price, m.delivery_time_min, m.delivery_time_max, m.delivery_time_unit, m.created_at, m.updated_at
	FROM shipping_methods m
	LEFT JOIN taxes t ON t.id = m.tax_id
`

func scanShippingMethod(row pgx.Row) (model.ShippingMethod, error) {
	var (
		m            model.ShippingMethod
		dtMin, dtMax *int
		dtUnit       *string
	)
	if err := row.Scan(
		&m.ID, &m.Name, &m.Description, &m.Note, &m.Priority, &m.Active, &m.TaxID, &m.TaxRate,
		&m.Price, &dtMin, &dtMax, &dtUnit, &m.CreatedAt, &m.UpdatedAt,
	); err != nil {
		return model.ShippingMethod{}, err
	}
	m.DeliveryTime = deliveryTime(dtMin, dtMax, dtUnit)
	return m, nil
}

const paymentMethodSelect = `
	SELECT
		m.id, m.name, m.description, m.note, m.priority, m.active, m.tax_id, COALESCE(t.rate, 0),
		m.price, m.kind, m.created_at, m.updated_at
	FROM payment_methods m
	LEFT JOIN taxes t ON t.id = m.tax_id
`

func scanPaymentMethod(row pgx.Row) (model.PaymentMethod, error) {
	var m model.PaymentMethod
	err := row.Scan(
		&m.ID, &m.Name, &m.Description, &m.Note, &m.Priority, &m.Active, &m.TaxID, &m.TaxRate,
		&m.Price, &m.Kind, &m.CreatedAt, &m.UpdatedAt,
	)
	return m, err
}

// loadPrices returns the additional prices of the methods with their criteria.
func (r methodRepository) loadPrices(ctx context.Context, kind model.MethodKind, methodIDs []uuid.UUID) (map[uuid.UUID][]model.MethodPrice, error) {
	t, err := tablesFor(kind)
	if err != nil {
		return nil, err
	}

	byMethod := make(map[uuid.UUID][]model.MethodPrice)
	if len(methodIDs) == 0 {
		return byMethod, nil
	}

	rows, err := r.db.Query(ctx, fmt.Sprintf(`
		SELECT id, %[1]s, price, priority, active
		FROM %[2]s
		WHERE %[1]s = ANY(@method_ids::uuid[])
		ORDER BY priority, id
	`, t.fk, t.prices), pgx.NamedArgs{"method_ids": methodIDs})
	if err != nil {
		return nil, fmt.Errorf("list method prices: %w", err)
	}

	prices, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.MethodPrice, error) {
		var p model.MethodPrice
		err := row.Scan(&p.ID, &p.MethodID, &p.Price, &p.Priority, &p.Active)
		return p, err
	})
	if err != nil {
		return nil, fmt.Errorf("collect method prices: %w", err)
	}

	priceIDs := make([]uuid.UUID, 0, len(prices))
	for _, p := range prices {
		priceIDs = append(priceIDs, p.ID)
	}
	criteria, err := listCriteria(ctx, r.db, t.priceOwnerType, priceIDs)
	if err != nil {
		return nil, err
	}

	for _, p := range prices {
		p.Criteria = criteria[p.ID]
		byMethod[p.MethodID] = append(byMethod[p.MethodID], p)
	}
	return byMethod, nil
}

func (r methodRepository) completeShippingMethods(ctx context.Context, methods []model.ShippingMethod) error {
	ids := make([]uuid.UUID, 0, len(methods))
	for _, m := range methods {
		ids = append(ids, m.ID)
	}

	prices, err := r.loadPrices(ctx, model.MethodKindShipping, ids)
	if err != nil {
		return err
	}
	criteria, err := listCriteria(ctx, r.db, model.CriterionOwnerShippingMethod, ids)
	if err != nil {
		return err
	}

	for i := range methods {
		methods[i].Prices = prices[methods[i].ID]
		methods[i].Criteria = criteria[methods[i].ID]
	}
	return nil
}

func (r methodRepository) completePaymentMethods(ctx context.Context, methods []model.PaymentMethod) error {
	ids := make([]uuid.UUID, 0, len(methods))
	for _, m := range methods {
		ids = append(ids, m.ID)
	}

	prices, err := r.loadPrices(ctx, model.MethodKindPayment, ids)
	if err != nil {
		return err
	}
	criteria, err := listCriteria(ctx, r.db, model.CriterionOwnerPaymentMethod, ids)
	if err != nil {
		return err
	}

	for i := range methods {
		methods[i].Prices = prices[methods[i].ID]
		methods[i].Criteria = criteria[methods[i].ID]
	}
	return nil
}

func (r methodRepository) ListShippingMethods(ctx context.Context) ([]model.ShippingMethod, error) {
	rows, err := r.db.Query(ctx, shippingMethodSelect+` ORDER BY m.priority, m.name`)
	if err != nil {
		return nil, fmt.Errorf("list shipping methods: %w", err)
	}

	methods, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.ShippingMethod, error) {
		return scanShippingMethod(row)
	})
	if err != nil {
		return nil, fmt.Errorf("collect shipping methods: %w", err)
	}

	if err := r.completeShippingMethods(ctx, methods); err != nil {
		return nil, fmt.Errorf("complete shipping methods: %w", err)
	}
	return methods, nil
}

func (r methodRepository) GetShippingMethod(ctx context.Context, id uuid.UUID) (model.ShippingMethod, error) {
	m, err := scanShippingMethod(r.db.QueryRow(ctx, shippingMethodSelect+` WHERE m.id = @id`, pgx.NamedArgs{"id": id}))
	if err != nil {
		return model.ShippingMethod{}, fmt.Errorf("get shipping method: %w", err)
	}

	methods := []model.ShippingMethod{m}
	if err := r.completeShippingMethods(ctx, methods); err != nil {
		return model.ShippingMethod{}, fmt.Errorf("complete shipping method: %w", err)
	}
	return methods[0], nil
}

func shippingMethodArgs(m model.ShippingMethod) pgx.NamedArgs {
	dtMin, dtMax, dtUnit := deliveryTimeArgs(m.DeliveryTime)
	return pgx.NamedArgs{
		"id":                 m.ID,
		"name":               m.Name,
		"description":        m.Description,
		"note":               m.Note,
		"priority":           m.Priority,
		"active":             m.Active,
		"tax_id":             m.TaxID,
		"price":              m.Price,
		"delivery_time_min":  dtMin,
		"delivery_time_max":  dtMax,
		"delivery_time_unit": dtUnit,
		"created_at":         m.CreatedAt,
		"updated_at":         m.UpdatedAt,
	}
}

func (r methodRepository) CreateShippingMethod(ctx context.Context, method model.ShippingMethod) error {
	if _, err := r.db.Exec(ctx, `
		INSERT INTO shipping_methods (
			id, name, description, note, priority, active, tax_id, price,
			delivery_time_min, delivery_time_max, delivery_time_unit, created_at, updated_at
		) VALUES (
			@id, @name, @description, @note, @priority, @active, @tax_id, @price,
			@delivery_time_min, @delivery_time_max, @delivery_time_unit, @created_at, @updated_at
		)
	`, shippingMethodArgs(method)); err != nil {
		return fmt.Errorf("create shipping method: %w", err)
	}
	return nil
}

func (r methodRepository) UpdateShippingMethod(ctx context.Context, method model.ShippingMethod) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE shipping_methods SET
			name = @name, description = @description, note = @note, priority = @priority, active = @active,
			tax_id = @tax_id, price = @price, delivery_time_min = @delivery_time_min,
			delivery_time_max = @delivery_time_max, delivery_time_unit = @delivery_time_unit,
			updated_at = @updated_at
		WHERE id = @id
	`, shippingMethodArgs(method))
	if err != nil {
		return fmt.Errorf("update shipping method: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update shipping method: %w", pgx.ErrNoRows)
	}
	return nil
}

func (r methodRepository) DeleteShippingMethod(ctx context.Context, id uuid.UUID) error {
	return r.deleteMethod(ctx, model.MethodKindShipping, "shipping_methods", id)
}

func (r methodRepository) ListPaymentMethods(ctx context.Context) ([]model.PaymentMethod, error) {
	rows, err := r.db.Query(ctx, paymentMethodSelect+` ORDER BY m.priority, m.name`)
	if err != nil {
		return nil, fmt.Errorf("list payment methods: %w", err)
	}

	methods, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.PaymentMethod, error) {
		return scanPaymentMethod(row)
	})
	if err != nil {
		return nil, fmt.Errorf("collect payment methods: %w", err)
	}

	if err := r.completePaymentMethods(ctx, methods); err != nil {
		return nil, fmt.Errorf("complete payment methods: %w", err)
	}
	return methods, nil
}

func (r methodRepository) GetPaymentMethod(ctx context.Context, id uuid.UUID) (model.PaymentMethod, error) {
	m, err := scanPaymentMethod(r.db.QueryRow(ctx, paymentMethodSelect+` WHERE m.id = @id`, pgx.NamedArgs{"id": id}))
	if err != nil {
		return model.PaymentMethod{}, fmt.Errorf("get payment method: %w", err)
	}

	methods := []model.PaymentMethod{m}
	if err := r.completePaymentMethods(ctx, methods); err != nil {
		return model.PaymentMethod{}, fmt.Errorf("complete payment method: %w", err)
	}
	return methods[0], nil
}

func paymentMethodArgs(m model.PaymentMethod) pgx.NamedArgs {
	return pgx.NamedArgs{
		"id":          m.ID,
		"name":        m.Name,
		"description": m.Description,
		"note":        m.Note,
		"priority":    m.Priority,
		"active":      m.Active,
		"tax_id":      m.TaxID,
		"price":       m.Price,
		"kind":        m.Kind,
		"created_at":  m.CreatedAt,
		"updated_at":  m.UpdatedAt,
	}
}

func (r methodRepository) CreatePaymentMethod(ctx context.Context, method model.PaymentMethod) error {
	if _, err := r.db.Exec(ctx, `
		INSERT INTO payment_methods (
			id, name, description, note, priority, active, tax_id, price, kind, created_at, updated_at
		) VALUES (
			@id, @name, @description, @note, @priority, @active, @tax_id, @price, @kind, @created_at, @updated_at
		)
	`, paymentMethodArgs(method)); err != nil {
		return fmt.Errorf("create payment method: %w", err)
	}
	return nil
}

func (r methodRepository) UpdatePaymentMethod(ctx context.Context, method model.PaymentMethod) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE payment_methods SET
			name = @name, description = @description, note = @note, priority = @priority, active = @active,
			tax_id = @tax_id, price = @price, kind = @kind, updated_at = @updated_at
		WHERE id = @id
	`, paymentMethodArgs(method))
	if err != nil {
		return fmt.Errorf("update payment method: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update payment method: %w", pgx.ErrNoRows)
	}
	return nil
}

func (r methodRepository) DeletePaymentMethod(ctx context.Context, id uuid.UUID) error {
	return r.deleteMethod(ctx, model.MethodKindPayment, "payment_methods", id)
}

// deleteMethod removes a method together with the criteria of the method
// and of its prices.
func (r methodRepository) deleteMethod(ctx context.Context, kind model.MethodKind, table string, id uuid.UUID) error {
	t, err := tablesFor(kind)
	if err != nil {
		return err
	}

	rows, err := r.db.Query(ctx, fmt.Sprintf(`SELECT id FROM %s WHERE %s = @id`, t.prices, t.fk), pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("list method price ids: %w", err)
	}
	priceIDs, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return fmt.Errorf("collect method price ids: %w", err)
	}

	if err := deleteOwnerCriteria(ctx, r.db, t.priceOwnerType, priceIDs); err != nil {
		return err
	}
	if err := deleteOwnerCriteria(ctx, r.db, t.ownerType, []uuid.UUID{id}); err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = @id`, table), pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("delete %s method: %w", kind, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete %s method: %w", kind, pgx.ErrNoRows)
	}
	return nil
}

func (r methodRepository) GetMethodPrice(ctx context.Context, kind model.MethodKind, id uuid.UUID) (model.MethodPrice, error) {
	t, err := tablesFor(kind)
	if err != nil {
		return model.MethodPrice{}, err
	}

	var p model.MethodPrice
	if err := r.db.QueryRow(ctx, fmt.Sprintf(`
		SELECT id, %s, price, priority, active FROM %s WHERE id = @id
	`, t.fk, t.prices), pgx.NamedArgs{"id": id}).Scan(&p.ID, &p.MethodID, &p.Price, &p.Priority, &p.Active); err != nil {
		return model.MethodPrice{}, fmt.Errorf("get method price: %w", err)
	}

	criteria, err := listCriteria(ctx, r.db, t.priceOwnerType, []uuid.UUID{p.ID})
	if err != nil {
		return model.MethodPrice{}, err
	}
	p.Criteria = criteria[p.ID]
	return p, nil
}

func (r methodRepository) CreateMethodPrice(ctx context.Context, kind model.MethodKind, price model.MethodPrice) error {
	t, err := tablesFor(kind)
	if err != nil {
		return err
	}

	if _, err := r.db.Exec(ctx, fmt.Sprintf(`
		INSERT INTO %s (id, %s, price, priority, active)
		VALUES (@id, @method_id, @price, @priority, @active)
	`, t.prices, t.fk), pgx.NamedArgs{
		"id":        price.ID,
		"method_id": price.MethodID,
		"price":     price.Price,
		"priority":  price.Priority,
		"active":    price.Active,
	}); err != nil {
		return fmt.Errorf("create method price: %w", err)
	}
	return nil
}

func (r methodRepository) UpdateMethodPrice(ctx context.Context, kind model.MethodKind, price model.MethodPrice) error {
	t, err := tablesFor(kind)
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, fmt.Sprintf(`
		UPDATE %s SET price = @price, priority = @priority, active = @active WHERE id = @id
	`, t.prices), pgx.NamedArgs{
		"id":       price.ID,
		"price":    price.Price,
		"priority": price.Priority,
		"active":   price.Active,
	})
	if err != nil {
		return fmt.Errorf("update method price: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update method price: %w", pgx.ErrNoRows)
	}
	return nil
}

func (r methodRepository) DeleteMethodPrice(ctx context.Context, kind model.MethodKind, id uuid.UUID) error {
	t, err := tablesFor(kind)
	if err != nil {
		return err
	}

	if err := deleteOwnerCriteria(ctx, r.db, t.priceOwnerType, []uuid.UUID{id}); err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = @id`, t.prices), pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("delete method price: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete method price: %w", pgx.ErrNoRows)
	}
	return nil
}
