package catalog

import (
	"context"
	"fmt"
)

// Provider supplies catalog items to the storefront.
type Provider interface {
	List(ctx context.Context, cat Category) ([]Item, error)
	Get(ctx context.Context, cat Category, id int) (Item, error)
}

// Details backs the read-only detail view of a single item.
func Details(ctx context.Context, p Provider, cat Category, id int) (Item, error) {
	it, err := p.Get(ctx, cat, id)
	if err != nil {
		return Item{}, fmt.Errorf("details %s: %w", Key{Category: cat, ID: id}, err)
	}
	return it, nil
}

// SearchAll runs Search over every catalog, optionally narrowed to one category filter.
// The result is keyed by catalog and preserves catalog order.
func SearchAll(ctx context.Context, p Provider, query, filter string) (map[Category][]Item, error) {
	out := make(map[Category][]Item, len(Categories))
	for _, cat := range Categories {
		items, err := p.List(ctx, cat)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", cat, err)
		}
		out[cat] = Search(FilterByCategory(items, filter), query)
	}
	return out, nil
}

// AllItems returns every catalog flattened in display order.
func AllItems(ctx context.Context, p Provider) ([]Item, error) {
	var out []Item
	for _, cat := range Categories {
		items, err := p.List(ctx, cat)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", cat, err)
		}
		out = append(out, items...)
	}
	return out, nil
}
