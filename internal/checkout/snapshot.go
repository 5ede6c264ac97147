package checkout

import (
	"context"
	"errors"

	"github.com/Helm1Rahmad1/go-thrift-market/internal/domain"
	"github.com/Helm1Rahmad1/go-thrift-market/internal/store"
)

// snapshot captures the authoritative catalog state for one checkout attempt:
// names and prices read from the store, never from the client or the cart.
type snapshot struct {
	lines []snapshotLine
	total int64
}

type snapshotLine struct {
	product  *domain.Product
	size     domain.Size
	quantity int
}

// buildSnapshot is the validation pass. It reads every product, merges
// duplicate lines, and rejects the whole checkout on the first unsatisfiable
// item. Nothing is mutated here; stock may still change before commit, which
// the conditional reserve catches.
func (o *Orchestrator) buildSnapshot(ctx context.Context, items []ItemInput) (*snapshot, error) {
	merged := mergeLines(items)

	snap := &snapshot{
		lines: make([]snapshotLine, 0, len(merged)),
	}
	for _, it := range merged {
		p, err := o.products.GetProduct(ctx, it.ProductID)
		if errors.Is(err, store.ErrProductNotFound) {
			return nil, domain.OutOfStock(it.ProductID)
		}
		if err != nil {
			return nil, domain.Internal("failed to load product", err)
		}
		if !p.Purchasable(it.Quantity) {
			return nil, domain.OutOfStock(it.ProductID)
		}

		snap.lines = append(snap.lines, snapshotLine{product: p, size: it.Size, quantity: it.Quantity})
		snap.total += p.Price * int64(it.Quantity)
	}
	return snap, nil
}

// mergeLines collapses repeated (product, size) pairs so the reserve loop
// touches each product once per size.
func mergeLines(items []ItemInput) []ItemInput {
	type lineKey struct {
		productID string
		size      domain.Size
	}
	idx := make(map[lineKey]int, len(items))
	out := make([]ItemInput, 0, len(items))
	for _, it := range items {
		k := lineKey{it.ProductID, it.Size}
		if i, ok := idx[k]; ok {
			out[i].Quantity += it.Quantity
			continue
		}
		idx[k] = len(out)
		out = append(out, it)
	}
	return out
}

func (s *snapshot) orderItems() []domain.OrderItem {
	items := make([]domain.OrderItem, 0, len(s.lines))
	for _, l := range s.lines {
		items = append(items, domain.OrderItem{
			ProductID:   l.product.ID,
			ProductName: l.product.Name,
			Size:        l.size,
			Quantity:    l.quantity,
			Price:       l.product.Price,
		})
	}
	return items
}
