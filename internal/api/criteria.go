package api

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/nebulamart/storefront/internal/models"
)

// Sort keys accepted by Criteria.Sort.
const (
	SortName      = "name"
	SortNameDesc  = "name_desc"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	// SortNewest is the reverse of the canonical listing order. No recency
	// field is consulted; the backends do not expose one on the listing
	// contract, so this stays a cosmetic ordering.
	SortNewest = "newest"
	// SortOldest keeps the canonical listing order unchanged.
	SortOldest = "oldest"
)

// Criteria is the page-local filter/sort state for product listings.
// Zero values mean "not set".
type Criteria struct {
	Search     string
	CategoryID int
	MinPrice   *float64
	MaxPrice   *float64
	Sort       string
}

// ApplyLocal applies the client-side half of the listing contract: price
// range filtering and sorting. Search and category filtering happen on the
// backend; both backends funnel their results through here so every page
// sees identical ordering semantics.
func ApplyLocal(c Criteria, items []models.Product) []models.Product {
	out := make([]models.Product, 0, len(items))
	for _, p := range items {
		if c.MinPrice != nil && p.Price < *c.MinPrice {
			continue
		}
		if c.MaxPrice != nil && p.Price > *c.MaxPrice {
			continue
		}
		out = append(out, p)
	}
	sortProducts(c.Sort, out)
	return out
}

func sortProducts(key string, items []models.Product) {
	switch key {
	case SortName:
		cl := collate.New(language.English)
		sort.SliceStable(items, func(i, j int) bool {
			return cl.CompareString(items[i].Name, items[j].Name) < 0
		})
	case SortNameDesc:
		cl := collate.New(language.English)
		sort.SliceStable(items, func(i, j int) bool {
			return cl.CompareString(items[j].Name, items[i].Name) < 0
		})
	case SortPriceAsc:
		sort.SliceStable(items, func(i, j int) bool { return items[i].Price < items[j].Price })
	case SortPriceDesc:
		sort.SliceStable(items, func(i, j int) bool { return items[j].Price < items[i].Price })
	case SortNewest:
		for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
			items[i], items[j] = items[j], items[i]
		}
	case SortOldest:
		// canonical order, nothing to do
	}
}
