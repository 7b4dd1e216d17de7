// Package analytics implements the computation core behind the dashboard
// views. Every function is a pure pass over the loaded tables: no side
// effects, deterministic output, tables are never mutated.
package analytics

import (
	"errors"

	"github.com/pauloricms12/data-analysis/internal/dataset"
)

// ErrNoData signals that a filter left nothing to aggregate. Callers report
// it to the user instead of computing on an empty set.
var ErrNoData = errors.New("no data for the selected filter")

// EnrichedOrder is an order with its financials resolved: the sum of its line
// item prices, the freight-inclusive total, and the discount implied by the
// difference between that total and the invoiced value.
type EnrichedOrder struct {
	dataset.Order
	ItemPriceSum     float64 `json:"item_price_sum"`
	ItemsPlusFreight float64 `json:"items_plus_freight"`
	DiscountPct      float64 `json:"discount_pct"`
}

// EnrichOrders joins line items onto orders and derives the discount
// percentage. Orders whose items-plus-freight total is not positive are
// dropped: a discount is undefined for them, and keeping them would poison
// every downstream discount and revenue figure. Items referencing an unknown
// order contribute nothing.
//
// Every view that needs a discount goes through here; the formula must not be
// re-derived elsewhere.
func EnrichOrders(orders []dataset.Order, items []dataset.LineItem) []EnrichedOrder {
	itemSums := make(map[string]float64)
	for _, it := range items {
		itemSums[it.OrderID] += it.Price
	}

	enriched := make([]EnrichedOrder, 0, len(orders))
	for _, o := range orders {
		total := itemSums[o.ID] + o.FreightCharged
		if total <= 0 {
			continue
		}
		enriched = append(enriched, EnrichedOrder{
			Order:            o,
			ItemPriceSum:     itemSums[o.ID],
			ItemsPlusFreight: total,
			DiscountPct:      (1 - o.InvoiceValue/total) * 100,
		})
	}
	return enriched
}
