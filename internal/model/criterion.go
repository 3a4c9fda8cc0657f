package model

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CriterionKind string

const (
	CriterionKindCartPrice              CriterionKind = "cart_price"
	CriterionKindWeight                 CriterionKind = "weight"
	CriterionKindHeight                 CriterionKind = "height"
	CriterionKindLength                 CriterionKind = "length"
	CriterionKindWidth                  CriterionKind = "width"
	CriterionKindCombinedLengthAndGirth CriterionKind = "combined_length_and_girth"
	CriterionKindCountry                CriterionKind = "country"
	CriterionKindShippingMethod         CriterionKind = "shipping_method"
	CriterionKindPaymentMethod          CriterionKind = "payment_method"
)

func (k CriterionKind) Validate() error {
	if _, ok := criterionOperators[k]; !ok {
		return fmt.Errorf("unknown criterion kind: %s", k)
	}
	return nil
}

type Operator int

const (
	OperatorEqual            Operator = 0
	OperatorLessThan         Operator = 1
	OperatorLessThanEqual    Operator = 2
	OperatorGreaterThan      Operator = 3
	OperatorGreaterThanEqual Operator = 4
	OperatorIsSelected       Operator = 10
	OperatorIsNotSelected    Operator = 11
	OperatorIsValid          Operator = 21
	OperatorIsNotValid       Operator = 22
	OperatorContains         Operator = 32
)

var numberOperators = []Operator{
	OperatorEqual,
	OperatorLessThan,
	OperatorLessThanEqual,
	OperatorGreaterThan,
	OperatorGreaterThanEqual,
}

var criterionOperators = map[CriterionKind][]Operator{
	CriterionKindCartPrice:              numberOperators,
	CriterionKindWeight:                 numberOperators,
	CriterionKindHeight:                 numberOperators,
	CriterionKindLength:                 numberOperators,
	CriterionKindWidth:                  numberOperators,
	CriterionKindCombinedLengthAndGirth: numberOperators,
	CriterionKindCountry:                {OperatorIsSelected, OperatorIsNotSelected},
	CriterionKindShippingMethod:         {OperatorIsSelected, OperatorIsNotSelected, OperatorIsValid, OperatorIsNotValid},
	CriterionKindPaymentMethod:          {OperatorIsSelected, OperatorIsNotSelected, OperatorIsValid, OperatorIsNotValid},
}

type CriterionOwnerType string

const (
	CriterionOwnerShippingMethod      CriterionOwnerType = "shipping_method"
	CriterionOwnerShippingMethodPrice CriterionOwnerType = "shipping_method_price"
	CriterionOwnerPaymentMethod       CriterionOwnerType = "payment_method"
	CriterionOwnerPaymentMethodPrice  CriterionOwnerType = "payment_method_price"
	CriterionOwnerDiscount            CriterionOwnerType = "discount"
)

// Criterion is a single condition attached to an owner. Value holds the
// operand of number criteria, Refs the selected country codes or method ids.
type Criterion struct {
	ID        uuid.UUID          `json:"id"`
	OwnerType CriterionOwnerType `json:"owner_type"`
	OwnerID   uuid.UUID          `json:"owner_id"`
	Kind      CriterionKind      `json:"kind"`
	Operator  Operator           `json:"operator"`
	Position  int                `json:"position"`
	Value     decimal.Decimal    `json:"value"`
	Refs      []string           `json:"refs"`
}

func (c Criterion) Validate() error {
	ops, ok := criterionOperators[c.Kind]
	if !ok {
		return fmt.Errorf("unknown criterion kind: %s", c.Kind)
	}
	for _, op := range ops {
		if op == c.Operator {
			return nil
		}
	}
	return fmt.Errorf("operator %d not allowed for criterion kind %s", c.Operator, c.Kind)
}
