package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MethodPrice is an additional price of a shipping or payment method. The
// first valid one replaces the method's default price.
type MethodPrice struct {
	ID       uuid.UUID       `json:"id"`
	MethodID uuid.UUID       `json:"method_id"`
	Price    decimal.Decimal `json:"price"`
	Priority int             `json:"priority"`
	Active   bool            `json:"active"`
	Criteria []Criterion     `json:"criteria"`
}

type ShippingMethod struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Note         string          `json:"note"`
	Priority     int             `json:"priority"`
	Active       bool            `json:"active"`
	TaxID        *uuid.UUID      `json:"tax_id,omitempty"`
	TaxRate      decimal.Decimal `json:"tax_rate"`
	Price        decimal.Decimal `json:"price"`
	DeliveryTime *DeliveryTime   `json:"delivery_time,omitempty"`
	Prices       []MethodPrice   `json:"prices"`
	Criteria     []Criterion     `json:"criteria"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

type PaymentMethodKind string

const (
	PaymentMethodKindPrepayment     PaymentMethodKind = "prepayment"
	PaymentMethodKindCashOnDelivery PaymentMethodKind = "cash_on_delivery"
	PaymentMethodKindInvoice        PaymentMethodKind = "invoice"
	PaymentMethodKindDirectDebit    PaymentMethodKind = "direct_debit"
	PaymentMethodKindPayPal         PaymentMethodKind = "paypal"
)

func (k PaymentMethodKind) Validate() error {
	switch k {
	case PaymentMethodKindPrepayment, PaymentMethodKindCashOnDelivery, PaymentMethodKindInvoice,
		PaymentMethodKindDirectDebit, PaymentMethodKindPayPal:
		return nil
	default:
		return fmt.Errorf("unknown payment method kind: %s", k)
	}
}

type PaymentMethod struct {
	ID          uuid.UUID         `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Note        string            `json:"note"`
	Priority    int               `json:"priority"`
	Active      bool              `json:"active"`
	TaxID       *uuid.UUID        `json:"tax_id,omitempty"`
	TaxRate     decimal.Decimal   `json:"tax_rate"`
	Price       decimal.Decimal   `json:"price"`
	Kind        PaymentMethodKind `json:"kind"`
	Prices      []MethodPrice     `json:"prices"`
	Criteria    []Criterion       `json:"criteria"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// MethodKind tells shipping and payment methods apart where both are handled alike.
type MethodKind string

const (
	MethodKindShipping MethodKind = "shipping"
	MethodKindPayment  MethodKind = "payment"
)

func (k MethodKind) Validate() error {
	switch k {
	case MethodKindShipping, MethodKindPayment:
		return nil
	default:
		return fmt.Errorf("unknown method kind: %s", k)
	}
}
