package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ValueType tells whether a reduction value is an amount or a percentage.
type ValueType string

const (
	ValueTypeAbsolute   ValueType = "absolute"
	ValueTypePercentage ValueType = "percentage"
)

func (t ValueType) Validate() error {
	switch t {
	case ValueTypeAbsolute, ValueTypePercentage:
		return nil
	default:
		return fmt.Errorf("unknown value type: %s", t)
	}
}

type Discount struct {
	ID         uuid.UUID       `json:"id"`
	Name       string          `json:"name"`
	Active     bool            `json:"active"`
	Value      decimal.Decimal `json:"value"`
	Type       ValueType       `json:"type"`
	TaxID      *uuid.UUID      `json:"tax_id,omitempty"`
	TaxRate    decimal.Decimal `json:"tax_rate"`
	Sku        string          `json:"sku"`
	SumsUp     bool            `json:"sums_up"`
	ProductIDs []uuid.UUID     `json:"product_ids"`
	Criteria   []Criterion     `json:"criteria"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}
