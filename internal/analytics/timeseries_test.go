package analytics

import (
	"fmt"
	"math"
	"testing"

	"github.com/pauloricms12/data-analysis/internal/dataset"
)

func TestOrdersPerDayGroupsByCalendarDay(t *testing.T) {
	orders := []dataset.Order{
		{ID: "1", CreatedAt: ts(1, 8)},
		{ID: "2", CreatedAt: ts(1, 23)},
		{ID: "3", CreatedAt: ts(3, 0)},
	}
	series := OrdersPerDay(orders)

	if len(series.Points) != 2 {
		t.Fatalf("expected 2 points (no zero-fill for Feb 2), got %d", len(series.Points))
	}
	if series.Points[0].Orders != 2 || series.Points[1].Orders != 1 {
		t.Fatalf("unexpected volumes: %+v", series.Points)
	}
	if series.TotalOrders != 3 {
		t.Fatalf("expected total 3, got %d", series.TotalOrders)
	}
	if math.Abs(series.MeanPerDay-1.5) > 1e-9 {
		t.Fatalf("expected mean 1.5, got %v", series.MeanPerDay)
	}
}

func TestOrdersPerDayCountsDistinctIDs(t *testing.T) {
	orders := []dataset.Order{
		{ID: "1", CreatedAt: ts(1, 8)},
		{ID: "1", CreatedAt: ts(1, 9)},
	}
	series := OrdersPerDay(orders)
	if series.TotalOrders != 1 {
		t.Fatalf("duplicate id counted twice: %d", series.TotalOrders)
	}
}

func TestDiscountCorrelationSelfIsOne(t *testing.T) {
	// Make discount track volume exactly: n orders on day n, each with the
	// same discount n. Pearson of a series against itself must be 1.
	var enriched []EnrichedOrder
	for day := 1; day <= 5; day++ {
		for k := 0; k < day; k++ {
			enriched = append(enriched, EnrichedOrder{
				Order: dataset.Order{
					ID:        fmt.Sprintf("o-%d-%d", day, k),
					CreatedAt: ts(day, 10),
				},
				DiscountPct: float64(day),
			})
		}
	}
	report := DiscountCorrelation(enriched, DiscountOptions{})
	if !report.Correlation.Defined {
		t.Fatal("expected correlation to be defined")
	}
	if math.Abs(report.Correlation.Value-1.0) > 1e-9 {
		t.Fatalf("expected correlation 1.0, got %v", report.Correlation.Value)
	}
}

func TestPearsonSymmetric(t *testing.T) {
	x := []float64{1, 2, 4, 8, 16}
	y := []float64{3, 1, 4, 1, 5}
	ab, ok1 := pearson(x, y)
	ba, ok2 := pearson(y, x)
	if !ok1 || !ok2 {
		t.Fatal("expected both correlations to be defined")
	}
	if math.Abs(ab-ba) > 1e-12 {
		t.Fatalf("corr not symmetric: %v vs %v", ab, ba)
	}
}

func TestDiscountCorrelationUndefined(t *testing.T) {
	// Single point: undefined, must report rather than crash.
	one := []EnrichedOrder{{Order: dataset.Order{ID: "1", CreatedAt: ts(1, 0)}, DiscountPct: 5}}
	report := DiscountCorrelation(one, DiscountOptions{})
	if report.Correlation.Defined {
		t.Fatal("correlation over one point must be undefined")
	}

	// Constant volume: zero variance, also undefined.
	flat := []EnrichedOrder{
		{Order: dataset.Order{ID: "1", CreatedAt: ts(1, 0)}, DiscountPct: 5},
		{Order: dataset.Order{ID: "2", CreatedAt: ts(2, 0)}, DiscountPct: 9},
	}
	report = DiscountCorrelation(flat, DiscountOptions{})
	if report.Correlation.Defined {
		t.Fatal("correlation with zero volume variance must be undefined")
	}
}

func TestDiscountCorrelationOutlierFilterIsSymmetric(t *testing.T) {
	// 10 quiet days of 1 order, one spike day with 50 orders.
	var enriched []EnrichedOrder
	for day := 1; day <= 10; day++ {
		enriched = append(enriched, EnrichedOrder{
			Order:       dataset.Order{ID: fmt.Sprintf("q-%d", day), CreatedAt: ts(day, 12)},
			DiscountPct: 10,
		})
	}
	for k := 0; k < 50; k++ {
		enriched = append(enriched, EnrichedOrder{
			Order:       dataset.Order{ID: fmt.Sprintf("s-%d", k), CreatedAt: ts(11, 12)},
			DiscountPct: 50,
		})
	}

	unfiltered := DiscountCorrelation(enriched, DiscountOptions{})
	if len(unfiltered.Points) != 11 {
		t.Fatalf("expected 11 days unfiltered, got %d", len(unfiltered.Points))
	}

	filtered := DiscountCorrelation(enriched, DiscountOptions{ExcludeOutliers: true})
	if filtered.RemovedDays != 1 {
		t.Fatalf("expected 1 removed day, got %d", filtered.RemovedDays)
	}
	if len(filtered.Points) != 10 {
		t.Fatalf("expected 10 days after filtering, got %d", len(filtered.Points))
	}
	// Both series must lose the same day: with the spike gone the mean
	// discount collapses to the quiet days' value.
	if math.Abs(filtered.MeanDiscountPct-10) > 1e-9 {
		t.Fatalf("discount series kept the removed day: mean %v", filtered.MeanDiscountPct)
	}
}

func TestQuantileLinearInterpolation(t *testing.T) {
	values := []float64{1, 2, 3, 4}
	if got := quantile(values, 0.5); math.Abs(got-2.5) > 1e-9 {
		t.Fatalf("expected median 2.5, got %v", got)
	}
	if got := quantile(values, 1); got != 4 {
		t.Fatalf("expected max 4, got %v", got)
	}
	if got := quantile(nil, 0.5); got != 0 {
		t.Fatalf("expected 0 for empty input, got %v", got)
	}
}
