package orders

import (
	"context"
	"sync"

	"github.com/angelmondragon/caraccessories-storefront/pkg/types"
	"golang.org/x/sync/errgroup"
)

// hydrate attaches product details to lines that only carry a product id.
// Each product is fetched once; a failed lookup leaves the line as sent.
func (s *Service) hydrate(ctx context.Context, orders []types.Order) []types.Order {
	wanted := make(map[types.ID]struct{})
	for _, o := range orders {
		for _, item := range o.Lines() {
			if item.HasProduct() || item.ProductKey().IsZero() {
				continue
			}
			wanted[item.ProductKey()] = struct{}{}
		}
	}

	var (
		mu       sync.Mutex
		products = make(map[types.ID]*types.Product, len(wanted))
	)
	if len(wanted) > 0 {
		var g errgroup.Group
		g.SetLimit(s.limit)
		for id := range wanted {
			g.Go(func() error {
				p, err := s.remote.Product(ctx, id)
				if err != nil {
					s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
						"product_id": id.String(),
						"error":      err.Error(),
					}), "could not fetch product for order item")
					return nil
				}
				mu.Lock()
				products[id] = p
				mu.Unlock()
				return nil
			})
		}
		_ = g.Wait()
	}

	out := make([]types.Order, len(orders))
	for i, o := range orders {
		src := o.Lines()
		lines := make([]types.OrderItem, len(src))
		for j, item := range src {
			if p, ok := products[item.ProductKey()]; ok && !item.HasProduct() {
				item.Product = p
			}
			lines[j] = item
		}
		out[i] = o.WithLines(lines)
	}
	return out
}
