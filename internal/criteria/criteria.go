package criteria

import (
	"slices"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/lfs/internal/model"
)

// MethodResolver looks up methods referenced by shipping and payment method
// criteria.
type MethodResolver interface {
	ShippingMethod(id uuid.UUID) (model.ShippingMethod, bool)
	PaymentMethod(id uuid.UUID) (model.PaymentMethod, bool)
}

// Context is the state criteria are checked against. When Product is set,
// measured values are taken from the product instead of the cart.
type Context struct {
	Cart                     *model.Cart
	Product                  *model.Product
	Country                  string
	SelectedShippingMethodID *uuid.UUID
	SelectedPaymentMethodID  *uuid.UUID
	Methods                  MethodResolver

	// visiting guards IS_VALID checks against methods referencing each other.
	visiting map[uuid.UUID]struct{}
}

// IsValid reports whether all criteria hold. Criteria are checked in
// position order; an empty list is always valid.
func IsValid(criteria []model.Criterion, ctx Context) bool {
	sorted := slices.Clone(criteria)
	slices.SortStableFunc(sorted, func(a, b model.Criterion) int {
		return a.Position - b.Position
	})

	for _, c := range sorted {
		if !isCriterionValid(c, ctx) {
			return false
		}
	}
	return true
}

// FirstValid returns the first element whose criteria hold.
func FirstValid[T any](items []T, criteriaOf func(T) []model.Criterion, ctx Context) (T, bool) {
	for _, item := range items {
		if IsValid(criteriaOf(item), ctx) {
			return item, true
		}
	}
	var zero T
	return zero, false
}

func isCriterionValid(c model.Criterion, ctx Context) bool {
	switch c.Kind {
	case model.CriterionKindCartPrice:
		return compare(c.Operator, cartPrice(ctx), c.Value)
	case model.CriterionKindWeight:
		return compare(c.Operator, weight(ctx), c.Value)
	case model.CriterionKindHeight:
		return compare(c.Operator, height(ctx), c.Value)
	case model.CriterionKindLength:
		return compare(c.Operator, length(ctx), c.Value)
	case model.CriterionKindWidth:
		return compare(c.Operator, width(ctx), c.Value)
	case model.CriterionKindCombinedLengthAndGirth:
		return compare(c.Operator, combinedLengthAndGirth(ctx), c.Value)
	case model.CriterionKindCountry:
		return isCountryValid(c, ctx)
	case model.CriterionKindShippingMethod:
		return isShippingMethodValid(c, ctx)
	case model.CriterionKindPaymentMethod:
		return isPaymentMethodValid(c, ctx)
	default:
		return false
	}
}

func compare(op model.Operator, actual, value decimal.Decimal) bool {
	switch op {
	case model.OperatorEqual:
		return actual.Equal(value)
	case model.OperatorLessThan:
		return actual.LessThan(value)
	case model.OperatorLessThanEqual:
		return actual.LessThanOrEqual(value)
	case model.OperatorGreaterThan:
		return actual.GreaterThan(value)
	case model.OperatorGreaterThanEqual:
		return actual.GreaterThanOrEqual(value)
	default:
		return false
	}
}

func isCountryValid(c model.Criterion, ctx Context) bool {
	selected := slices.Contains(c.Refs, ctx.Country)
	switch c.Operator {
	case model.OperatorIsSelected:
		return selected
	case model.OperatorIsNotSelected:
		return !selected
	default:
		return false
	}
}

func isShippingMethodValid(c model.Criterion, ctx Context) bool {
	switch c.Operator {
	case model.OperatorIsSelected, model.OperatorIsNotSelected:
		// A method cannot depend on being selected itself. Its prices can.
		if c.OwnerType == model.CriterionOwnerShippingMethod {
			return false
		}
		selected := ctx.SelectedShippingMethodID != nil && slices.Contains(c.Refs, ctx.SelectedShippingMethodID.String())
		return selected == (c.Operator == model.OperatorIsSelected)
	case model.OperatorIsValid, model.OperatorIsNotValid:
		want := c.Operator == model.OperatorIsValid
		for _, id := range refIDs(c.Refs) {
			if referencedShippingMethodValid(id, ctx) != want {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func isPaymentMethodValid(c model.Criterion, ctx Context) bool {
	switch c.Operator {
	case model.OperatorIsSelected, model.OperatorIsNotSelected:
		if c.OwnerType == model.CriterionOwnerPaymentMethod {
			return false
		}
		selected := ctx.SelectedPaymentMethodID != nil && slices.Contains(c.Refs, ctx.SelectedPaymentMethodID.String())
		return selected == (c.Operator == model.OperatorIsSelected)
	case model.OperatorIsValid, model.OperatorIsNotValid:
		want := c.Operator == model.OperatorIsValid
		for _, id := range refIDs(c.Refs) {
			if referencedPaymentMethodValid(id, ctx) != want {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func referencedShippingMethodValid(id uuid.UUID, ctx Context) bool {
	if ctx.Methods == nil {
		return false
	}
	m, ok := ctx.Methods.ShippingMethod(id)
	if !ok || !m.Active {
		return false
	}
	next, ok := ctx.enter(id)
	if !ok {
		return false
	}
	return IsValid(m.Criteria, next)
}

func referencedPaymentMethodValid(id uuid.UUID, ctx Context) bool {
	if ctx.Methods == nil {
		return false
	}
	m, ok := ctx.Methods.PaymentMethod(id)
	if !ok || !m.Active {
		return false
	}
	next, ok := ctx.enter(id)
	if !ok {
		return false
	}
	return IsValid(m.Criteria, next)
}

// enter marks id as being evaluated. It fails when id is already on the
// evaluation path.
func (ctx Context) enter(id uuid.UUID) (Context, bool) {
	if _, ok := ctx.visiting[id]; ok {
		return ctx, false
	}
	visiting := make(map[uuid.UUID]struct{}, len(ctx.visiting)+1)
	for k := range ctx.visiting {
		visiting[k] = struct{}{}
	}
	visiting[id] = struct{}{}
	ctx.visiting = visiting
	return ctx, true
}

func refIDs(refs []string) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(refs))
	for _, ref := range refs {
		id, err := uuid.Parse(ref)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
