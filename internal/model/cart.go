package model

import (
	"time"

	"github.com/google/uuid"
)

type Cart struct {
	ID                       uuid.UUID  `json:"id"`
	CustomerID               *uuid.UUID `json:"customer_id,omitempty"`
	Session                  string     `json:"session,omitempty"`
	Country                  string     `json:"country"`
	SelectedShippingMethodID *uuid.UUID `json:"selected_shipping_method_id,omitempty"`
	SelectedPaymentMethodID  *uuid.UUID `json:"selected_payment_method_id,omitempty"`
	Items                    []CartItem `json:"items"`
	CreatedAt                time.Time  `json:"created_at"`
	UpdatedAt                time.Time  `json:"updated_at"`
}

type CartItem struct {
	ID        uuid.UUID `json:"id"`
	CartID    uuid.UUID `json:"cart_id"`
	ProductID uuid.UUID `json:"product_id"`
	Amount    int       `json:"amount"`
	Product   Product   `json:"product"`
	CreatedAt time.Time `json:"created_at"`
}

// ItemAmount returns the number of units in the cart.
func (c Cart) ItemAmount() int {
	n := 0
	for _, item := range c.Items {
		n += item.Amount
	}
	return n
}

// ContainsAny reports whether any cart item refers to one of productIDs.
func (c Cart) ContainsAny(productIDs []uuid.UUID) bool {
	for _, item := range c.Items {
		for _, id := range productIDs {
			if item.ProductID == id {
				return true
			}
		}
	}
	return false
}
