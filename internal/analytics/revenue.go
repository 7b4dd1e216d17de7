package analytics

import (
	"sort"
	"time"

	"github.com/pauloricms12/data-analysis/internal/dataset"
)

type RevenueMode string

const (
	// RevenueGross values each item at its listed price.
	RevenueGross RevenueMode = "gross"
	// RevenueNet discounts each item by its parent order's discount rate.
	RevenueNet RevenueMode = "net"
)

type RevenueGroupBy string

const (
	GroupByCategory RevenueGroupBy = "category"
	GroupByProduct  RevenueGroupBy = "product"
)

type RevenueOptions struct {
	Mode    RevenueMode
	GroupBy RevenueGroupBy
	// TopN truncates the ranked groups for display; <= 0 keeps all.
	TopN int
	// Date restricts orders to a single calendar day before enrichment.
	Date *time.Time
	// KeepOutOfRangeDiscounts retains orders whose derived discount falls
	// outside [0, 100]. The default mirrors the dashboard, which treats such
	// orders as data glitches and drops them from revenue figures.
	KeepOutOfRangeDiscounts bool
}

// RevenueGroup is revenue aggregated under one grouping key, with the average
// order value ("ticket") of the group.
type RevenueGroup struct {
	Key       string  `json:"key"`
	Revenue   float64 `json:"revenue"`
	Orders    int     `json:"orders"`
	AvgTicket float64 `json:"avg_ticket"`
}

type RevenueReport struct {
	Mode         RevenueMode    `json:"mode"`
	GroupBy      RevenueGroupBy `json:"group_by"`
	TotalInvoice float64        `json:"total_invoice"`
	TotalRevenue float64        `json:"total_revenue"`
	GroupCount   int            `json:"group_count"`
	Groups       []RevenueGroup `json:"groups"`
}

// RevenueBreakdown aggregates line-item revenue by category or product.
// Items whose parent order did not survive enrichment carry no resolvable
// discount and are excluded in both modes. Returns ErrNoData when the date
// filter leaves no enriched orders, so callers never aggregate an empty set.
func RevenueBreakdown(orders []dataset.Order, items []dataset.LineItem, opts RevenueOptions) (*RevenueReport, error) {
	if opts.Mode == "" {
		opts.Mode = RevenueGross
	}
	if opts.GroupBy == "" {
		opts.GroupBy = GroupByCategory
	}

	scoped := orders
	if opts.Date != nil {
		day := calendarDay(*opts.Date)
		scoped = nil
		for _, o := range orders {
			if calendarDay(o.CreatedAt).Equal(day) {
				scoped = append(scoped, o)
			}
		}
	}

	discountByOrder := make(map[string]float64)
	for _, e := range EnrichOrders(scoped, items) {
		if !opts.KeepOutOfRangeDiscounts && (e.DiscountPct < 0 || e.DiscountPct > 100) {
			continue
		}
		discountByOrder[e.ID] = e.DiscountPct
	}
	if len(discountByOrder) == 0 {
		return nil, ErrNoData
	}

	report := &RevenueReport{Mode: opts.Mode, GroupBy: opts.GroupBy}
	for _, o := range scoped {
		report.TotalInvoice += o.InvoiceValue
	}

	type groupAgg struct {
		revenue float64
		orders  map[string]struct{}
	}
	groups := make(map[string]*groupAgg)
	for _, it := range items {
		discount, ok := discountByOrder[it.OrderID]
		if !ok {
			continue
		}
		revenue := it.Price
		if opts.Mode == RevenueNet {
			revenue = it.Price * (1 - discount/100)
		}

		key := it.MaterialCategory
		if opts.GroupBy == GroupByProduct {
			key = it.MaterialName
		}
		agg := groups[key]
		if agg == nil {
			agg = &groupAgg{orders: make(map[string]struct{})}
			groups[key] = agg
		}
		agg.revenue += revenue
		agg.orders[it.OrderID] = struct{}{}
	}

	ranked := make([]RevenueGroup, 0, len(groups))
	for key, agg := range groups {
		g := RevenueGroup{Key: key, Revenue: agg.revenue, Orders: len(agg.orders)}
		if g.Orders > 0 {
			g.AvgTicket = g.Revenue / float64(g.Orders)
		}
		report.TotalRevenue += g.Revenue
		ranked = append(ranked, g)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Revenue != ranked[j].Revenue {
			return ranked[i].Revenue > ranked[j].Revenue
		}
		return ranked[i].Key < ranked[j].Key
	})
	report.GroupCount = len(ranked)
	if opts.TopN > 0 && len(ranked) > opts.TopN {
		ranked = ranked[:opts.TopN]
	}
	report.Groups = ranked
	return report, nil
}
