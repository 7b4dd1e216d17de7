package analytics

import (
	"sort"

	"github.com/pauloricms12/data-analysis/internal/dataset"
)

// CategoryCancellations counts canceled line items in one category.
type CategoryCancellations struct {
	Category string `json:"category"`
	Items    int    `json:"items"`
}

// ProductCancellations counts canceled line items for one product, keeping
// the category for display.
type ProductCancellations struct {
	Product  string `json:"product"`
	Category string `json:"category"`
	Items    int    `json:"items"`
}

type CancellationReport struct {
	CanceledItems int                     `json:"canceled_items"`
	ByCategory    []CategoryCancellations `json:"by_category"`
	ByProduct     []ProductCancellations  `json:"by_product"`
	// StatusImpact answers whether stock health correlates with order
	// outcome: per order status, the share of items stocked out or critical.
	StatusImpact []StatusStockImpact `json:"status_impact"`
}

// CancellationAnalysis ranks what is being canceled and cross-references
// stock health against order status. criticalTopN sizes the critical set used
// for the cross-tabulation, mirroring the coverage view.
func CancellationAnalysis(orders []dataset.Order, items []dataset.LineItem, stock []dataset.StockRecord, criticalTopN int) *CancellationReport {
	report := &CancellationReport{}

	byCategory := make(map[string]int)
	type productKey struct{ product, category string }
	byProduct := make(map[productKey]int)
	for _, it := range items {
		if it.LifecycleState != dataset.LifecycleCanceled {
			continue
		}
		report.CanceledItems++
		byCategory[it.MaterialCategory]++
		byProduct[productKey{it.MaterialName, it.MaterialCategory}]++
	}

	for category, count := range byCategory {
		report.ByCategory = append(report.ByCategory, CategoryCancellations{Category: category, Items: count})
	}
	sort.Slice(report.ByCategory, func(i, j int) bool {
		if report.ByCategory[i].Items != report.ByCategory[j].Items {
			return report.ByCategory[i].Items > report.ByCategory[j].Items
		}
		return report.ByCategory[i].Category < report.ByCategory[j].Category
	})

	for key, count := range byProduct {
		report.ByProduct = append(report.ByProduct, ProductCancellations{Product: key.product, Category: key.category, Items: count})
	}
	sort.Slice(report.ByProduct, func(i, j int) bool {
		if report.ByProduct[i].Items != report.ByProduct[j].Items {
			return report.ByProduct[i].Items > report.ByProduct[j].Items
		}
		return report.ByProduct[i].Product < report.ByProduct[j].Product
	})

	coverage := StockCoverage(orders, items, stock, CoverageOptions{TopN: criticalTopN})
	report.StatusImpact = StockImpactByStatus(orders, items, stock, coverage.Critical)

	return report
}
