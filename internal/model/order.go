package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderState int

const (
	OrderStateSubmitted OrderState = iota
	OrderStatePaid
	OrderStateSent
	OrderStateClosed
	OrderStateCanceled
	OrderStatePaymentFailed
	OrderStatePaymentFlagged
	OrderStatePrepared
)

var orderStateNames = map[OrderState]string{
	OrderStateSubmitted:      "submitted",
	OrderStatePaid:           "paid",
	OrderStateSent:           "sent",
	OrderStateClosed:         "closed",
	OrderStateCanceled:       "canceled",
	OrderStatePaymentFailed:  "payment_failed",
	OrderStatePaymentFlagged: "payment_flagged",
	OrderStatePrepared:       "prepared",
}

func (s OrderState) String() string {
	if name, ok := orderStateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", int(s))
}

func (s OrderState) Validate() error {
	if _, ok := orderStateNames[s]; !ok {
		return fmt.Errorf("unknown order state: %d", int(s))
	}
	return nil
}

// ParseOrderState accepts the state name as returned by String.
func ParseOrderState(name string) (OrderState, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for state, n := range orderStateNames {
		if n == name {
			return state, nil
		}
	}
	return 0, fmt.Errorf("unknown order state: %s", name)
}

type Order struct {
	ID                    uuid.UUID       `json:"id"`
	Number                string          `json:"number"`
	CustomerID            *uuid.UUID      `json:"customer_id,omitempty"`
	CustomerEmail         string          `json:"customer_email"`
	CustomerFirstName     string          `json:"customer_first_name"`
	CustomerLastName      string          `json:"customer_last_name"`
	State                 OrderState      `json:"state"`
	StateModified         time.Time       `json:"state_modified"`
	Price                 decimal.Decimal `json:"price"`
	Tax                   decimal.Decimal `json:"tax"`
	ShippingMethodID      *uuid.UUID      `json:"shipping_method_id,omitempty"`
	ShippingPrice         decimal.Decimal `json:"shipping_price"`
	ShippingTax           decimal.Decimal `json:"shipping_tax"`
	PaymentMethodID       *uuid.UUID      `json:"payment_method_id,omitempty"`
	PaymentPrice          decimal.Decimal `json:"payment_price"`
	PaymentTax            decimal.Decimal `json:"payment_tax"`
	VoucherNumber         string          `json:"voucher_number,omitempty"`
	VoucherPrice          decimal.Decimal `json:"voucher_price"`
	VoucherTax            decimal.Decimal `json:"voucher_tax"`
	InvoiceAddress        Address         `json:"invoice_address"`
	ShippingAddress       Address         `json:"shipping_address"`
	BankAccount           *BankAccount    `json:"bank_account,omitempty"`
	DeliveryTime          *DeliveryTime   `json:"delivery_time,omitempty"`
	Message               string          `json:"message,omitempty"`
	RequestedDeliveryDate *time.Time      `json:"requested_delivery_date,omitempty"`
	PayLink               string          `json:"pay_link,omitempty"`
	Items                 []OrderItem     `json:"items,omitempty"`
	CreatedAt             time.Time       `json:"created_at"`
}

type OrderItem struct {
	ID                uuid.UUID       `json:"id"`
	OrderID           uuid.UUID       `json:"order_id"`
	Position          int             `json:"position"`
	ProductID         *uuid.UUID      `json:"product_id,omitempty"`
	ProductSku        string          `json:"product_sku"`
	ProductName       string          `json:"product_name"`
	ProductAmount     int             `json:"product_amount"`
	ProductPriceNet   decimal.Decimal `json:"product_price_net"`
	ProductPriceGross decimal.Decimal `json:"product_price_gross"`
	ProductTax        decimal.Decimal `json:"product_tax"`
	PriceNet          decimal.Decimal `json:"price_net"`
	PriceGross        decimal.Decimal `json:"price_gross"`
	Tax               decimal.Decimal `json:"tax"`
}

// PayPalTransaction records a received instant payment notification.
type PayPalTransaction struct {
	ID            uuid.UUID         `json:"id"`
	OrderID       *uuid.UUID        `json:"order_id,omitempty"`
	TxnID         string            `json:"txn_id"`
	PaymentStatus string            `json:"payment_status"`
	Flagged       bool              `json:"flagged"`
	FlagInfo      string            `json:"flag_info"`
	Payload       map[string]string `json:"payload"`
	CreatedAt     time.Time         `json:"created_at"`
}
