package api

import (
	"sort"

	"github.com/nebulamart/storefront/internal/models"
)

// lowStockThreshold marks products worth flagging on the admin dashboard.
const lowStockThreshold = 20

// StatsFor derives the admin dashboard aggregates from a product listing.
func StatsFor(items []models.Product) *models.ProductStats {
	stats := &models.ProductStats{TotalProducts: len(items)}
	counts := map[string]int{}
	for _, p := range items {
		stats.TotalValue += p.Price * float64(p.InventoryCount)
		if p.InventoryCount < lowStockThreshold {
			stats.LowStockProducts = append(stats.LowStockProducts, p)
		}
		if p.Category != nil {
			counts[p.Category.Name]++
		}
	}
	for name, n := range counts {
		stats.TopCategories = append(stats.TopCategories, models.CategoryCount{Category: name, Count: n})
	}
	sort.Slice(stats.TopCategories, func(i, j int) bool {
		if stats.TopCategories[i].Count != stats.TopCategories[j].Count {
			return stats.TopCategories[i].Count > stats.TopCategories[j].Count
		}
		return stats.TopCategories[i].Category < stats.TopCategories[j].Category
	})
	return stats
}
