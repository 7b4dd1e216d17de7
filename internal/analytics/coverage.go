package analytics

import (
	"encoding/json"
	"math"
	"sort"

	"github.com/pauloricms12/data-analysis/internal/dataset"
)

// CoverageRow is the stock-health picture of one material: total stock across
// centres, historical sales, and how many days the stock lasts at the average
// daily sale rate. DaysOfCoverage is +Inf for materials that never sold.
type CoverageRow struct {
	MaterialID     string
	MaterialName   string
	TotalStock     float64
	TotalSold      int
	AvgDailySales  float64
	DaysOfCoverage float64
}

// MarshalJSON emits infinite coverage as null; +Inf is not representable in
// JSON and "no sales, any stock lasts forever" reads naturally as null.
func (r CoverageRow) MarshalJSON() ([]byte, error) {
	out := struct {
		MaterialID     string   `json:"material_id"`
		MaterialName   string   `json:"material_name"`
		TotalStock     float64  `json:"total_stock"`
		TotalSold      int      `json:"total_sold"`
		AvgDailySales  float64  `json:"avg_daily_sales"`
		DaysOfCoverage *float64 `json:"days_of_coverage"`
	}{
		MaterialID:    r.MaterialID,
		MaterialName:  r.MaterialName,
		TotalStock:    r.TotalStock,
		TotalSold:     r.TotalSold,
		AvgDailySales: r.AvgDailySales,
	}
	if !math.IsInf(r.DaysOfCoverage, 1) {
		out.DaysOfCoverage = &r.DaysOfCoverage
	}
	return json.Marshal(out)
}

type CoverageOptions struct {
	// TopN bounds the critical set; <= 0 keeps every finite-coverage material.
	TopN int
}

type CoverageReport struct {
	// DaySpanDays is the observed span of the orders table, endpoints
	// included. The average daily sale rate is always derived from this
	// full span, even when a view is filtered to a day or region.
	DaySpanDays int `json:"day_span_days"`
	// Rows covers every material present in the supply table, sorted by
	// coverage ascending with never-sold materials last.
	Rows []CoverageRow `json:"rows"`
	// Critical is the TopN materials with the smallest finite coverage;
	// zero-coverage materials rank first and infinite ones never qualify.
	Critical []CoverageRow `json:"critical"`
	// ZeroStockWithSales flags stockouts: no stock anywhere, yet selling.
	ZeroStockWithSales []CoverageRow `json:"zero_stock_with_sales"`
	// Distribution breaks the critical materials' stock down by inventory
	// centre, unaggregated, to expose centre-level imbalance.
	Distribution []dataset.StockRecord `json:"distribution"`
}

// StockCoverage computes days-of-coverage per material and classifies the
// critical and stocked-out sets.
func StockCoverage(orders []dataset.Order, items []dataset.LineItem, stock []dataset.StockRecord, opts CoverageOptions) *CoverageReport {
	report := &CoverageReport{DaySpanDays: orderDaySpan(orders)}

	totalStock := make(map[string]float64)
	names := make(map[string]string)
	for _, s := range stock {
		totalStock[s.MaterialID] += s.Quantity
		if s.MaterialName != "" {
			names[s.MaterialID] = s.MaterialName
		}
	}

	sold := make(map[string]int)
	for _, it := range items {
		sold[it.MaterialID]++
	}

	rows := make([]CoverageRow, 0, len(totalStock))
	for id, qty := range totalStock {
		row := CoverageRow{
			MaterialID:   id,
			MaterialName: names[id],
			TotalStock:   qty,
			TotalSold:    sold[id],
		}
		if report.DaySpanDays > 0 {
			row.AvgDailySales = float64(row.TotalSold) / float64(report.DaySpanDays)
		}
		if row.AvgDailySales > 0 {
			row.DaysOfCoverage = row.TotalStock / row.AvgDailySales
		} else {
			row.DaysOfCoverage = math.Inf(1)
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].DaysOfCoverage != rows[j].DaysOfCoverage {
			return rows[i].DaysOfCoverage < rows[j].DaysOfCoverage
		}
		return rows[i].MaterialID < rows[j].MaterialID
	})
	report.Rows = rows

	for _, row := range rows {
		if math.IsInf(row.DaysOfCoverage, 1) {
			break // sorted: everything after is infinite too
		}
		if opts.TopN > 0 && len(report.Critical) >= opts.TopN {
			break
		}
		report.Critical = append(report.Critical, row)
	}

	for _, row := range rows {
		if row.TotalStock == 0 && row.AvgDailySales > 0 {
			report.ZeroStockWithSales = append(report.ZeroStockWithSales, row)
		}
	}

	criticalIDs := make(map[string]struct{}, len(report.Critical))
	for _, row := range report.Critical {
		criticalIDs[row.MaterialID] = struct{}{}
	}
	for _, s := range stock {
		if _, ok := criticalIDs[s.MaterialID]; ok {
			report.Distribution = append(report.Distribution, s)
		}
	}

	return report
}

// StatusStockImpact reports, for one order status, the share of line items
// whose material was stocked out or critical at analysis time.
type StatusStockImpact struct {
	Status       string  `json:"status"`
	Items        int     `json:"items"`
	ZeroStockPct float64 `json:"zero_stock_pct"`
	CriticalPct  float64 `json:"critical_pct"`
}

// StockImpactByStatus cross-references stock health with order outcome.
// Materials absent from the supply table count as zero stock here (a missing
// stock row means nothing on hand), unlike the stockout alert set which only
// considers materials the supply table knows about. Items whose order id
// resolves to no order are skipped.
func StockImpactByStatus(orders []dataset.Order, items []dataset.LineItem, stock []dataset.StockRecord, critical []CoverageRow) []StatusStockImpact {
	totalStock := make(map[string]float64)
	for _, s := range stock {
		totalStock[s.MaterialID] += s.Quantity
	}
	criticalIDs := make(map[string]struct{}, len(critical))
	for _, row := range critical {
		criticalIDs[row.MaterialID] = struct{}{}
	}
	statusByOrder := make(map[string]string, len(orders))
	for _, o := range orders {
		statusByOrder[o.ID] = o.Status
	}

	type agg struct{ items, zero, critical int }
	byStatus := make(map[string]*agg)
	for _, it := range items {
		status, ok := statusByOrder[it.OrderID]
		if !ok {
			continue
		}
		a := byStatus[status]
		if a == nil {
			a = &agg{}
			byStatus[status] = a
		}
		a.items++
		if totalStock[it.MaterialID] == 0 {
			a.zero++
		}
		if _, isCritical := criticalIDs[it.MaterialID]; isCritical {
			a.critical++
		}
	}

	impacts := make([]StatusStockImpact, 0, len(byStatus))
	for status, a := range byStatus {
		impact := StatusStockImpact{Status: status, Items: a.items}
		if a.items > 0 {
			impact.ZeroStockPct = float64(a.zero) / float64(a.items) * 100
			impact.CriticalPct = float64(a.critical) / float64(a.items) * 100
		}
		impacts = append(impacts, impact)
	}
	sort.Slice(impacts, func(i, j int) bool { return impacts[i].Status < impacts[j].Status })
	return impacts
}

// orderDaySpan is the observed day span of the orders table, both endpoints
// included.
func orderDaySpan(orders []dataset.Order) int {
	if len(orders) == 0 {
		return 0
	}
	minAt, maxAt := orders[0].CreatedAt, orders[0].CreatedAt
	for _, o := range orders[1:] {
		if o.CreatedAt.Before(minAt) {
			minAt = o.CreatedAt
		}
		if o.CreatedAt.After(maxAt) {
			maxAt = o.CreatedAt
		}
	}
	return daysBetween(minAt, maxAt) + 1
}
