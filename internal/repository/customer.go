package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tuanvumaihuynh/lfs/internal/model"
	"github.com/tuanvumaihuynh/lfs/internal/storage/db"
)

type ListCustomersParams struct {
	// Query matches first name, last name and email case-insensitively.
	Query  string
	Limit  int32
	Offset int32
}

type CustomerRepository interface {
	WithDB(db db.DB) CustomerRepository
	ListCustomers(ctx context.Context, params ListCustomersParams) ([]model.Customer, int64, error)
	GetCustomer(ctx context.Context, id uuid.UUID) (model.Customer, error)
	GetCustomerByEmail(ctx context.Context, email string) (model.Customer, error)
	CreateCustomer(ctx context.Context, customer model.Customer) error
	UpdateCustomer(ctx context.Context, customer model.Customer) error

	GetAdminUserByEmail(ctx context.Context, email string) (model.AdminUser, error)
	CreateAdminUser(ctx context.Context, user model.AdminUser) error
}

type customerRepository struct {
	db db.DB
}

func NewCustomerRepository(db db.DB) CustomerRepository {
	return &customerRepository{db: db}
}

func (r customerRepository) WithDB(db db.DB) CustomerRepository {
	return &customerRepository{db: db}
}

const customerColumns = `
	id, email, first_name, last_name, selected_shipping_method_id, selected_payment_method_id,
	invoice_address, shipping_address, bank_account, created_at, updated_at
`

func scanCustomer(row pgx.Row, extra ...any) (model.Customer, error) {
	var c model.Customer
	dest := []any{
		&c.ID, &c.Email, &c.FirstName, &c.LastName, &c.SelectedShippingMethodID, &c.SelectedPaymentMethodID,
		&c.InvoiceAddress, &c.ShippingAddress, &c.BankAccount, &c.CreatedAt, &c.UpdatedAt,
	}
	err := row.Scan(append(dest, extra...)...)
	return c, err
}

func (r customerRepository) ListCustomers(ctx context.Context, params ListCustomersParams) ([]model.Customer, int64, error) {
	rows, err := r.db.Query(ctx, `SELECT `+customerColumns+`, COUNT(*) OVER ()
		FROM customers
		WHERE @query::text = '' OR first_name ILIKE @pattern OR last_name ILIKE @pattern OR email ILIKE @pattern
		ORDER BY created_at DESC, id
		LIMIT @limit OFFSET @offset
	`, pgx.NamedArgs{
		"query":   params.Query,
		"pattern": "%" + escapeLike(params.Query) + "%",
		"limit":   params.Limit,
		"offset":  params.Offset,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("list customers: %w", err)
	}

	var total int64
	customers, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Customer, error) {
		return scanCustomer(row, &total)
	})
	if err != nil {
		return nil, 0, fmt.Errorf("collect customers: %w", err)
	}
	return customers, total, nil
}

func (r customerRepository) GetCustomer(ctx context.Context, id uuid.UUID) (model.Customer, error) {
	c, err := scanCustomer(r.db.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = @id`,
		pgx.NamedArgs{"id": id}))
	if err != nil {
		return model.Customer{}, fmt.Errorf("get customer: %w", err)
	}
	return c, nil
}

func (r customerRepository) GetCustomerByEmail(ctx context.Context, email string) (model.Customer, error) {
	c, err := scanCustomer(r.db.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE lower(email) = lower(@email)`,
		pgx.NamedArgs{"email": email}))
	if err != nil {
		return model.Customer{}, fmt.Errorf("get customer by email: %w", err)
	}
	return c, nil
}

func customerArgs(c model.Customer) pgx.NamedArgs {
	return pgx.NamedArgs{
		"id":                          c.ID,
		"email":                       c.Email,
		"first_name":                  c.FirstName,
		"last_name":                   c.LastName,
		"selected_shipping_method_id": c.SelectedShippingMethodID,
		"selected_payment_method_id":  c.SelectedPaymentMethodID,
		"invoice_address":             c.InvoiceAddress,
		"shipping_address":            c.ShippingAddress,
		"bank_account":                c.BankAccount,
		"created_at":                  c.CreatedAt,
		"updated_at":                  c.UpdatedAt,
	}
}

func (r customerRepository) CreateCustomer(ctx context.Context, customer model.Customer) error {
	if _, err := r.db.Exec(ctx, `
		INSERT INTO customers (
			id, email, first_name, last_name, selected_shipping_method_id, selected_payment_method_id,
			invoice_address, shipping_address, bank_account, created_at, updated_at
		) VALUES (
			@id, @email, @first_name, @last_name, @selected_shipping_method_id, @selected_payment_method_id,
			@invoice_address, @shipping_address, @bank_account, @created_at, @updated_at
		)
	`, customerArgs(customer)); err != nil {
		return fmt.Errorf("create customer: %w", err)
	}
	return nil
}

func (r customerRepository) UpdateCustomer(ctx context.Context, customer model.Customer) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE customers SET
			email = @email, first_name = @first_name, last_name = @last_name,
			selected_shipping_method_id = @selected_shipping_method_id,
			selected_payment_method_id = @selected_payment_method_id,
			invoice_address = @invoice_address, shipping_address = @shipping_address,
			bank_account = @bank_account, updated_at = @updated_at
		WHERE id = @id
	`, customerArgs(customer))
	if err != nil {
		return fmt.Errorf("update customer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update customer: %w", pgx.ErrNoRows)
	}
	return nil
}

func (r customerRepository) GetAdminUserByEmail(ctx context.Context, email string) (model.AdminUser, error) {
	var u model.AdminUser
	if err := r.db.QueryRow(ctx, `
		SELECT id, email, password_hash, active, created_at FROM admin_users WHERE lower(email) = lower(@email)
	`, pgx.NamedArgs{"email": email}).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Active, &u.CreatedAt); err != nil {
		return model.AdminUser{}, fmt.Errorf("get admin user: %w", err)
	}
	return u, nil
}

func (r customerRepository) CreateAdminUser(ctx context.Context, user model.AdminUser) error {
	if _, err := r.db.Exec(ctx, `
		INSERT INTO admin_users (id, email, password_hash, active, created_at)
		VALUES (@id, @email, @password_hash, @active, @created_at)
	`, pgx.NamedArgs{
		"id":            user.ID,
		"email":         user.Email,
		"password_hash": user.PasswordHash,
		"active":        user.Active,
		"created_at":    user.CreatedAt,
	}); err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}
	return nil
}
