package marketing

import (
	"slices"

	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/lfs/internal/model"
)

// SoldItem is an ordered amount of a product as found in order items.
type SoldItem struct {
	ProductID uuid.UUID
	ParentID  *uuid.UUID
	IsVariant bool
	Amount    int
}

// CalculateSales sums sold amounts per product. Variants count toward their
// parent; variants without a parent are skipped. The result is ordered by
// sales, highest first.
func CalculateSales(items []SoldItem) []model.ProductSales {
	totals := make(map[uuid.UUID]int)
	for _, item := range items {
		id := item.ProductID
		if item.IsVariant {
			if item.ParentID == nil {
				continue
			}
			id = *item.ParentID
		}
		totals[id] += item.Amount
	}

	sales := make([]model.ProductSales, 0, len(totals))
	for id, n := range totals {
		sales = append(sales, model.ProductSales{ProductID: id, Sales: n})
	}
	slices.SortFunc(sales, func(a, b model.ProductSales) int {
		if a.Sales != b.Sales {
			return b.Sales - a.Sales
		}
		return slices.Compare(a.ProductID[:], b.ProductID[:])
	})
	return sales
}
