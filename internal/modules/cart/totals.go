package cart

import (
	"context"

	"github.com/yungbote/bookhaven-backend/internal/domain/storefront"
)

// ComputeTotal is the exact sum of price times quantity.
func ComputeTotal(items []storefront.LineItem) storefront.Money {
	var total storefront.Money
	for _, it := range items {
		total = total.Add(it.LineTotal())
	}
	return total
}

// TotalCount sums quantities, counting a missing quantity as 1.
func TotalCount(items []storefront.LineItem) int {
	n := 0
	for _, it := range items {
		n += it.EffectiveQuantity()
	}
	return n
}

// Snapshot is the cart as a rendering collaborator consumes it.
type Snapshot struct {
	Items []storefront.LineItem
	Count int
	Total storefront.Money
}

func NewSnapshot(items []storefront.LineItem) Snapshot {
	if items == nil {
		items = []storefront.LineItem{}
	}
	return Snapshot{Items: items, Count: TotalCount(items), Total: ComputeTotal(items)}
}

func (s *Store) Snapshot(ctx context.Context) Snapshot {
	return NewSnapshot(s.GetCart(ctx))
}
