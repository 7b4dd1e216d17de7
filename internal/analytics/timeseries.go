package analytics

import (
	"sort"
	"time"

	"github.com/pauloricms12/data-analysis/internal/dataset"
)

// outlierQuantile is the daily-volume quantile above which a day is treated
// as an outlier when the caller asks for outlier exclusion.
const outlierQuantile = 0.98

// VolumePoint is one calendar day of order volume. Days without orders
// produce no point.
type VolumePoint struct {
	Day    time.Time `json:"day"`
	Orders int       `json:"orders"`
}

// VolumeSeries is the daily order-volume view.
type VolumeSeries struct {
	Points      []VolumePoint `json:"points"`
	TotalOrders int           `json:"total_orders"`
	MeanPerDay  float64       `json:"mean_per_day"`
}

// OrdersPerDay resamples orders to calendar days, counting distinct order ids
// per day.
func OrdersPerDay(orders []dataset.Order) *VolumeSeries {
	byDay := make(map[time.Time]map[string]struct{})
	for _, o := range orders {
		day := calendarDay(o.CreatedAt)
		if byDay[day] == nil {
			byDay[day] = make(map[string]struct{})
		}
		byDay[day][o.ID] = struct{}{}
	}

	series := &VolumeSeries{Points: make([]VolumePoint, 0, len(byDay))}
	for day, ids := range byDay {
		series.Points = append(series.Points, VolumePoint{Day: day, Orders: len(ids)})
		series.TotalOrders += len(ids)
	}
	sort.Slice(series.Points, func(i, j int) bool {
		return series.Points[i].Day.Before(series.Points[j].Day)
	})
	if len(series.Points) > 0 {
		series.MeanPerDay = float64(series.TotalOrders) / float64(len(series.Points))
	}
	return series
}

// DiscountPoint carries the two aligned daily series: distinct order volume
// and mean discount.
type DiscountPoint struct {
	Day            time.Time `json:"day"`
	Orders         int       `json:"orders"`
	AvgDiscountPct float64   `json:"avg_discount_pct"`
}

// Correlation is a Pearson coefficient that may be undefined (fewer than two
// points or zero variance); undefined is reported, never a crash or a NaN.
type Correlation struct {
	Value   float64 `json:"value"`
	Defined bool    `json:"defined"`
}

type DiscountOptions struct {
	// ExcludeOutliers drops days whose volume exceeds the 98th percentile
	// from both series before any downstream statistic.
	ExcludeOutliers bool
}

// DiscountReport is the discount-vs-volume view.
type DiscountReport struct {
	Points           []DiscountPoint `json:"points"`
	MeanDiscountPct  float64         `json:"mean_discount_pct"`
	Correlation      Correlation     `json:"correlation"`
	OutliersExcluded bool            `json:"outliers_excluded"`
	RemovedDays      int             `json:"removed_days"`
	VolumeThreshold  float64         `json:"volume_threshold"`
}

// DiscountCorrelation builds the daily discount and volume series from
// enriched orders and correlates them. The outlier filter removes the same
// day-set from both series, so the correlation is computed over aligned
// points only.
func DiscountCorrelation(enriched []EnrichedOrder, opts DiscountOptions) *DiscountReport {
	type dayAgg struct {
		ids         map[string]struct{}
		discountSum float64
		discountN   int
	}
	byDay := make(map[time.Time]*dayAgg)
	for _, e := range enriched {
		day := calendarDay(e.CreatedAt)
		agg := byDay[day]
		if agg == nil {
			agg = &dayAgg{ids: make(map[string]struct{})}
			byDay[day] = agg
		}
		agg.ids[e.ID] = struct{}{}
		agg.discountSum += e.DiscountPct
		agg.discountN++
	}

	points := make([]DiscountPoint, 0, len(byDay))
	for day, agg := range byDay {
		points = append(points, DiscountPoint{
			Day:            day,
			Orders:         len(agg.ids),
			AvgDiscountPct: agg.discountSum / float64(agg.discountN),
		})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Day.Before(points[j].Day) })

	report := &DiscountReport{OutliersExcluded: opts.ExcludeOutliers}
	if opts.ExcludeOutliers && len(points) > 0 {
		volumes := make([]float64, len(points))
		for i, p := range points {
			volumes[i] = float64(p.Orders)
		}
		threshold := quantile(volumes, outlierQuantile)
		kept := points[:0]
		for _, p := range points {
			if float64(p.Orders) <= threshold {
				kept = append(kept, p)
			}
		}
		report.RemovedDays = len(points) - len(kept)
		report.VolumeThreshold = threshold
		points = kept
	}
	report.Points = points

	discounts := make([]float64, len(points))
	volumes := make([]float64, len(points))
	for i, p := range points {
		discounts[i] = p.AvgDiscountPct
		volumes[i] = float64(p.Orders)
	}
	report.MeanDiscountPct = mean(discounts)
	report.Correlation.Value, report.Correlation.Defined = pearson(discounts, volumes)
	return report
}

// calendarDay truncates a timestamp to its calendar day in UTC.
func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
