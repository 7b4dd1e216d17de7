package analytics

import (
	"errors"
	"math"
	"testing"

	"github.com/pauloricms12/data-analysis/internal/dataset"
)

func revenueFixture() ([]dataset.Order, []dataset.LineItem) {
	orders := []dataset.Order{
		// 10% discount: items 180 + freight 20 = 200, invoiced 180.
		{ID: "1", CreatedAt: ts(1, 10), InvoiceValue: 180, FreightCharged: 20},
		// No discount: items 50 + freight 0 = 50, invoiced 50.
		{ID: "2", CreatedAt: ts(2, 10), InvoiceValue: 50, FreightCharged: 0},
	}
	items := []dataset.LineItem{
		{OrderID: "1", MaterialID: "m1", MaterialName: "Case A", MaterialCategory: "cases", Price: 100},
		{OrderID: "1", MaterialID: "m2", MaterialName: "Strap B", MaterialCategory: "straps", Price: 80},
		{OrderID: "2", MaterialID: "m1", MaterialName: "Case A", MaterialCategory: "cases", Price: 50},
	}
	return orders, items
}

func TestRevenueGrossByCategory(t *testing.T) {
	orders, items := revenueFixture()
	report, err := RevenueBreakdown(orders, items, RevenueOptions{Mode: RevenueGross, GroupBy: GroupByCategory})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.GroupCount != 2 {
		t.Fatalf("expected 2 groups, got %d", report.GroupCount)
	}
	if report.Groups[0].Key != "cases" || report.Groups[0].Revenue != 150 {
		t.Fatalf("expected cases=150 first, got %+v", report.Groups[0])
	}
	if report.Groups[1].Key != "straps" || report.Groups[1].Revenue != 80 {
		t.Fatalf("expected straps=80 second, got %+v", report.Groups[1])
	}
	// cases: 150 revenue over 2 distinct orders.
	if math.Abs(report.Groups[0].AvgTicket-75) > 1e-9 {
		t.Fatalf("expected cases ticket 75, got %v", report.Groups[0].AvgTicket)
	}
	if report.TotalInvoice != 230 {
		t.Fatalf("expected total invoice 230, got %v", report.TotalInvoice)
	}
}

func TestRevenueNetAppliesParentDiscount(t *testing.T) {
	orders, items := revenueFixture()
	report, err := RevenueBreakdown(orders, items, RevenueOptions{Mode: RevenueNet, GroupBy: GroupByProduct})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Order 1 carries a 10% discount, order 2 none.
	// Case A: 100*0.9 + 50 = 140, Strap B: 80*0.9 = 72.
	if report.Groups[0].Key != "Case A" || math.Abs(report.Groups[0].Revenue-140) > 1e-9 {
		t.Fatalf("expected Case A net 140, got %+v", report.Groups[0])
	}
	if report.Groups[1].Key != "Strap B" || math.Abs(report.Groups[1].Revenue-72) > 1e-9 {
		t.Fatalf("expected Strap B net 72, got %+v", report.Groups[1])
	}

	gross, err := RevenueBreakdown(orders, items, RevenueOptions{Mode: RevenueGross, GroupBy: GroupByProduct})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range report.Groups {
		if report.Groups[i].Revenue > gross.Groups[i].Revenue+1e-9 {
			t.Fatalf("net revenue exceeds gross for %s", report.Groups[i].Key)
		}
	}
}

func TestRevenueTopNTruncates(t *testing.T) {
	orders, items := revenueFixture()
	report, err := RevenueBreakdown(orders, items, RevenueOptions{GroupBy: GroupByProduct, TopN: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Groups) != 1 {
		t.Fatalf("expected 1 displayed group, got %d", len(report.Groups))
	}
	if report.GroupCount != 2 {
		t.Fatalf("truncation must not change the group count: %d", report.GroupCount)
	}
	// Total revenue still spans all groups, not just the displayed head.
	if math.Abs(report.TotalRevenue-230) > 1e-9 {
		t.Fatalf("expected total revenue 230, got %v", report.TotalRevenue)
	}
}

func TestRevenueDateFilter(t *testing.T) {
	orders, items := revenueFixture()
	day := ts(2, 0)
	report, err := RevenueBreakdown(orders, items, RevenueOptions{GroupBy: GroupByCategory, Date: &day})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.GroupCount != 1 || report.Groups[0].Key != "cases" {
		t.Fatalf("expected only cases on Feb 2, got %+v", report.Groups)
	}
	if report.Groups[0].Revenue != 50 {
		t.Fatalf("expected 50 revenue on Feb 2, got %v", report.Groups[0].Revenue)
	}
}

func TestRevenueNoDataForEmptyDay(t *testing.T) {
	orders, items := revenueFixture()
	day := ts(20, 0)
	_, err := RevenueBreakdown(orders, items, RevenueOptions{Date: &day})
	if !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

func TestRevenueDropsOutOfRangeDiscounts(t *testing.T) {
	orders := []dataset.Order{
		// Invoice above items+freight: negative discount, dropped by default.
		{ID: "1", CreatedAt: ts(1, 10), InvoiceValue: 300, FreightCharged: 0},
	}
	items := []dataset.LineItem{
		{OrderID: "1", MaterialID: "m1", MaterialName: "Case A", MaterialCategory: "cases", Price: 100},
	}

	if _, err := RevenueBreakdown(orders, items, RevenueOptions{}); !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData once the out-of-range order is dropped, got %v", err)
	}

	report, err := RevenueBreakdown(orders, items, RevenueOptions{Mode: RevenueNet, KeepOutOfRangeDiscounts: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Negative discount must flow through unclamped: net exceeds gross.
	if report.Groups[0].Revenue <= 100 {
		t.Fatalf("expected net above gross for a negative discount, got %v", report.Groups[0].Revenue)
	}
}
