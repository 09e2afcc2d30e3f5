package service

import (
	"strings"

	"github.com/Skotchmaster/inventory/internal/models"
)

const LowStockThreshold = 10

type InventoryView struct {
	Products       []models.Product `json:"products"`
	TotalProducts  int              `json:"total_products"`
	LowStock       int              `json:"low_stock"`
	InventoryValue float64          `json:"inventory_value"`
	StockValue     float64          `json:"stock_value"`
	Query          string           `json:"q"`
}

// BuildView filters products by a case-insensitive substring of name or
// category and computes the dashboard metrics over the filtered rows.
//
// InventoryValue is sum(stock) * mean(price), which is not the value of the
// stock on hand; StockValue carries sum(stock*price).
func BuildView(products []models.Product, query string) InventoryView {
	q := strings.ToLower(query)

	filtered := make([]models.Product, 0, len(products))
	for _, p := range products {
		if q == "" ||
			strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.Category), q) {
			filtered = append(filtered, p)
		}
	}

	view := InventoryView{
		Products:      filtered,
		TotalProducts: len(filtered),
		Query:         q,
	}
	if len(filtered) == 0 {
		return view
	}

	var stockSum int
	var priceSum float64
	for _, p := range filtered {
		if p.Stock < LowStockThreshold {
			view.LowStock++
		}
		stockSum += p.Stock
		priceSum += p.Price
		view.StockValue += float64(p.Stock) * p.Price
	}
	view.InventoryValue = float64(stockSum) * (priceSum / float64(len(filtered)))

	return view
}
