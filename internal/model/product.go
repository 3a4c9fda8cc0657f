package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ProductSubType string

const (
	ProductSubTypeStandard     ProductSubType = "standard"
	ProductSubTypeWithVariants ProductSubType = "product_with_variants"
	ProductSubTypeVariant      ProductSubType = "variant"
)

func (t ProductSubType) Validate() error {
	switch t {
	case ProductSubTypeStandard, ProductSubTypeWithVariants, ProductSubTypeVariant:
		return nil
	default:
		return fmt.Errorf("unknown product sub type: %s", t)
	}
}

type Product struct {
	ID                uuid.UUID       `json:"id"`
	ParentID          *uuid.UUID      `json:"parent_id,omitempty"`
	SubType           ProductSubType  `json:"sub_type"`
	Name              string          `json:"name"`
	Slug              string          `json:"slug"`
	Sku               string          `json:"sku"`
	ShortDescription  string          `json:"short_description"`
	Description       string          `json:"description"`
	Price             decimal.Decimal `json:"price"`
	ForSale           bool            `json:"for_sale"`
	ForSalePrice      decimal.Decimal `json:"for_sale_price"`
	TaxID             *uuid.UUID      `json:"tax_id,omitempty"`
	TaxRate           decimal.Decimal `json:"tax_rate"`
	Active            bool            `json:"active"`
	Deliverable       bool            `json:"deliverable"`
	ManageStockAmount bool            `json:"manage_stock_amount"`
	StockAmount       int             `json:"stock_amount"`
	Weight            decimal.Decimal `json:"weight"`
	Height            decimal.Decimal `json:"height"`
	Length            decimal.Decimal `json:"length"`
	Width             decimal.Decimal `json:"width"`
	VariantPosition   int             `json:"variant_position"`
	DeliveryTime      *DeliveryTime   `json:"delivery_time,omitempty"`
	CategoryIDs       []uuid.UUID     `json:"category_ids,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

func (p Product) IsVariant() bool {
	return p.SubType == ProductSubTypeVariant
}

func (p Product) HasVariants() bool {
	return p.SubType == ProductSubTypeWithVariants
}

// EffectivePrice returns the gross price a customer pays for one unit.
func (p Product) EffectivePrice() decimal.Decimal {
	if p.ForSale {
		return p.ForSalePrice
	}
	return p.Price
}

// InStock reports whether amount units can be sold.
func (p Product) InStock(amount int) bool {
	if !p.ManageStockAmount {
		return true
	}
	return amount <= p.StockAmount
}

type Tax struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Rate      decimal.Decimal `json:"rate"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
