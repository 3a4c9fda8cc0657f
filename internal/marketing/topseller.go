package marketing

import (
	"slices"

	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/lfs/internal/model"
)

// MergeTopsellers merges the best selling products with explicitly pinned
// topsellers. bySales is ordered by sales, pinned by position and must only
// hold active products. A pinned product is moved to its position, which is
// one based and clamped to the list bounds.
func MergeTopsellers(bySales []uuid.UUID, pinned []model.Topseller, limit int) []uuid.UUID {
	if limit <= 0 {
		return []uuid.UUID{}
	}

	ids := slices.Clone(bySales)
	if len(ids) > limit {
		ids = ids[:limit]
	}

	for _, ts := range pinned {
		if i := slices.Index(ids, ts.ProductID); i >= 0 {
			ids = slices.Delete(ids, i, i+1)
		}

		pos := min(max(ts.Position-1, 0), len(ids))
		ids = slices.Insert(ids, pos, ts.ProductID)
	}

	if len(ids) > limit {
		ids = ids[:limit]
	}
	if ids == nil {
		ids = []uuid.UUID{}
	}
	return ids
}
