package analytics

import (
	"sort"

	"github.com/pauloricms12/data-analysis/internal/dataset"
)

type DelayOptions struct {
	// State restricts the analysis to one state; empty means all states.
	State string
	// TopN bounds the offending-product rankings; <= 0 keeps all.
	TopN int
	// CriticalUnits is the stock level at or below which (but above zero) a
	// material counts as critical in the delayed-order cross-reference.
	CriticalUnits float64
}

// GroupDelayStats aggregates delivery performance under one key (a state or
// a carrier). AvgDeliveryDays averages creation-to-delivery whole days over
// every valid order in the group, delayed or not.
type GroupDelayStats struct {
	Key             string  `json:"key"`
	TotalOrders     int     `json:"total_orders"`
	DelayedOrders   int     `json:"delayed_orders"`
	DelayRatePct    float64 `json:"delay_rate_pct"`
	AvgDeliveryDays float64 `json:"avg_delivery_days"`
}

// StateCarrierDelay is the two-level breakdown shown when no state filter is
// active.
type StateCarrierDelay struct {
	State         string  `json:"state"`
	Carrier       string  `json:"carrier"`
	TotalOrders   int     `json:"total_orders"`
	DelayedOrders int     `json:"delayed_orders"`
	DelayRatePct  float64 `json:"delay_rate_pct"`
}

// ProductOccurrence counts how often a product shows up among delayed-order
// line items within one stock bucket.
type ProductOccurrence struct {
	MaterialName string `json:"material_name"`
	Occurrences  int    `json:"occurrences"`
}

type DelayReport struct {
	ValidOrders    int                 `json:"valid_orders"`
	DelayedOrders  int                 `json:"delayed_orders"`
	ByState        []GroupDelayStats   `json:"by_state"`
	ByCarrier      []GroupDelayStats   `json:"by_carrier"`
	ByStateCarrier []StateCarrierDelay `json:"by_state_carrier,omitempty"`

	// Stock cross-reference over the delayed orders' line items.
	DelayedItems       int                 `json:"delayed_items"`
	ZeroStockItems     int                 `json:"zero_stock_items"`
	CriticalStockItems int                 `json:"critical_stock_items"`
	ZeroStockPct       float64             `json:"zero_stock_pct"`
	CriticalStockPct   float64             `json:"critical_stock_pct"`
	TopZeroStock       []ProductOccurrence `json:"top_zero_stock"`
	TopCriticalStock   []ProductOccurrence `json:"top_critical_stock"`
}

// DelayAnalysis measures delivery performance and cross-references delayed
// orders with current stock. Orders missing the promised or actual delivery
// timestamp are excluded entirely: they count neither as on-time nor as late.
// Every rate guards the zero-denominator case by reporting 0.
func DelayAnalysis(orders []dataset.Order, items []dataset.LineItem, stock []dataset.StockRecord, opts DelayOptions) *DelayReport {
	var valid []dataset.Order
	for _, o := range orders {
		if o.PromisedDeliveryAt == nil || o.DeliveredAt == nil {
			continue
		}
		if opts.State != "" && o.State != opts.State {
			continue
		}
		valid = append(valid, o)
	}

	report := &DelayReport{ValidOrders: len(valid)}

	type groupAgg struct {
		total, delayed int
		deliveryDays   int
	}
	byState := make(map[string]*groupAgg)
	byCarrier := make(map[string]*groupAgg)
	byStateCarrier := make(map[[2]string]*groupAgg)
	delayedIDs := make(map[string]struct{})

	accumulate := func(m map[string]*groupAgg, key string, delayed bool, days int) {
		agg := m[key]
		if agg == nil {
			agg = &groupAgg{}
			m[key] = agg
		}
		agg.total++
		agg.deliveryDays += days
		if delayed {
			agg.delayed++
		}
	}

	for _, o := range valid {
		delayed := o.DeliveredAt.After(*o.PromisedDeliveryAt)
		days := daysBetween(o.CreatedAt, *o.DeliveredAt)
		if delayed {
			report.DelayedOrders++
			delayedIDs[o.ID] = struct{}{}
		}
		accumulate(byState, o.State, delayed, days)
		accumulate(byCarrier, o.Carrier, delayed, days)
		if opts.State == "" {
			key := [2]string{o.State, o.Carrier}
			agg := byStateCarrier[key]
			if agg == nil {
				agg = &groupAgg{}
				byStateCarrier[key] = agg
			}
			agg.total++
			if delayed {
				agg.delayed++
			}
		}
	}

	rank := func(m map[string]*groupAgg) []GroupDelayStats {
		out := make([]GroupDelayStats, 0, len(m))
		for key, agg := range m {
			stats := GroupDelayStats{Key: key, TotalOrders: agg.total, DelayedOrders: agg.delayed}
			if agg.total > 0 {
				stats.DelayRatePct = float64(agg.delayed) / float64(agg.total) * 100
				stats.AvgDeliveryDays = float64(agg.deliveryDays) / float64(agg.total)
			}
			out = append(out, stats)
		}
		sort.Slice(out, func(i, j int) bool {
			if out[i].DelayRatePct != out[j].DelayRatePct {
				return out[i].DelayRatePct > out[j].DelayRatePct
			}
			return out[i].Key < out[j].Key
		})
		return out
	}
	report.ByState = rank(byState)
	report.ByCarrier = rank(byCarrier)

	for key, agg := range byStateCarrier {
		row := StateCarrierDelay{State: key[0], Carrier: key[1], TotalOrders: agg.total, DelayedOrders: agg.delayed}
		if agg.total > 0 {
			row.DelayRatePct = float64(agg.delayed) / float64(agg.total) * 100
		}
		report.ByStateCarrier = append(report.ByStateCarrier, row)
	}
	sort.Slice(report.ByStateCarrier, func(i, j int) bool {
		if report.ByStateCarrier[i].State != report.ByStateCarrier[j].State {
			return report.ByStateCarrier[i].State < report.ByStateCarrier[j].State
		}
		return report.ByStateCarrier[i].Carrier < report.ByStateCarrier[j].Carrier
	})

	crossReferenceStock(report, items, stock, delayedIDs, opts)
	return report
}

// crossReferenceStock classifies the delayed orders' line items by current
// stock state. A material absent from the supply table counts as zero stock.
func crossReferenceStock(report *DelayReport, items []dataset.LineItem, stock []dataset.StockRecord, delayedIDs map[string]struct{}, opts DelayOptions) {
	totalStock := make(map[string]float64)
	for _, s := range stock {
		totalStock[s.MaterialID] += s.Quantity
	}

	zeroCounts := make(map[string]int)
	criticalCounts := make(map[string]int)
	for _, it := range items {
		if _, ok := delayedIDs[it.OrderID]; !ok {
			continue
		}
		report.DelayedItems++
		qty := totalStock[it.MaterialID]
		switch {
		case qty == 0:
			report.ZeroStockItems++
			zeroCounts[it.MaterialName]++
		case qty <= opts.CriticalUnits:
			report.CriticalStockItems++
			criticalCounts[it.MaterialName]++
		}
	}
	if report.DelayedItems > 0 {
		report.ZeroStockPct = float64(report.ZeroStockItems) / float64(report.DelayedItems) * 100
		report.CriticalStockPct = float64(report.CriticalStockItems) / float64(report.DelayedItems) * 100
	}
	report.TopZeroStock = topOccurrences(zeroCounts, opts.TopN)
	report.TopCriticalStock = topOccurrences(criticalCounts, opts.TopN)
}

func topOccurrences(counts map[string]int, n int) []ProductOccurrence {
	out := make([]ProductOccurrence, 0, len(counts))
	for name, count := range counts {
		out = append(out, ProductOccurrence{MaterialName: name, Occurrences: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Occurrences != out[j].Occurrences {
			return out[i].Occurrences > out[j].Occurrences
		}
		return out[i].MaterialName < out[j].MaterialName
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
