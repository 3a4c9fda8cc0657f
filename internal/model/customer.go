package model

import (
	"time"

	"github.com/google/uuid"
)

type Address struct {
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	Company   string `json:"company,omitempty" validate:"max=100"`
	Line1     string `json:"line1" validate:"required,max=200"`
	Line2     string `json:"line2,omitempty" validate:"max=200"`
	ZipCode   string `json:"zip_code" validate:"required,max=20"`
	City      string `json:"city" validate:"required,max=100"`
	State     string `json:"state,omitempty" validate:"max=100"`
	Country   string `json:"country" validate:"required,iso3166_1_alpha2"`
	Phone     string `json:"phone,omitempty" validate:"max=50"`
	Email     string `json:"email,omitempty" validate:"omitempty,email"`
}

type BankAccount struct {
	AccountNumber          string `json:"account_number" validate:"required,max=50"`
	BankIdentificationCode string `json:"bank_identification_code" validate:"required,max=30"`
	BankName               string `json:"bank_name" validate:"required,max=100"`
	Depositor              string `json:"depositor" validate:"required,max=100"`
}

type Customer struct {
	ID                       uuid.UUID    `json:"id"`
	Email                    string       `json:"email"`
	FirstName                string       `json:"first_name"`
	LastName                 string       `json:"last_name"`
	SelectedShippingMethodID *uuid.UUID   `json:"selected_shipping_method_id,omitempty"`
	SelectedPaymentMethodID  *uuid.UUID   `json:"selected_payment_method_id,omitempty"`
	InvoiceAddress           *Address     `json:"invoice_address,omitempty"`
	ShippingAddress          *Address     `json:"shipping_address,omitempty"`
	BankAccount              *BankAccount `json:"bank_account,omitempty"`
	CreatedAt                time.Time    `json:"created_at"`
	UpdatedAt                time.Time    `json:"updated_at"`
}

// AdminUser is a shop operator allowed to use the manage API.
type AdminUser struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}
