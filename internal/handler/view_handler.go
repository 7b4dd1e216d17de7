package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pauloricms12/data-analysis/internal/analytics"
	"github.com/pauloricms12/data-analysis/internal/config"
	"github.com/pauloricms12/data-analysis/internal/dataset"
)

// ViewHandler serves the dashboard views. Each request is one synchronous
// recomputation over the read-only loaded tables; widget state arrives as
// query parameters.
type ViewHandler struct {
	ds       *dataset.Dataset
	defaults config.AnalysisConfig
}

func NewViewHandler(ds *dataset.Dataset, defaults config.AnalysisConfig) *ViewHandler {
	return &ViewHandler{ds: ds, defaults: defaults}
}

// OrdersPerDay renders the daily order-volume view.
func (h *ViewHandler) OrdersPerDay(c *gin.Context) {
	series := analytics.OrdersPerDay(h.ds.Orders)
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": series})
}

// Discounts renders the discount-vs-volume correlation view.
// Query params: exclude_outliers=true drops days above the 98th volume
// percentile from both series.
func (h *ViewHandler) Discounts(c *gin.Context) {
	enriched := analytics.EnrichOrders(h.ds.Orders, h.ds.Items)
	report := analytics.DiscountCorrelation(enriched, analytics.DiscountOptions{
		ExcludeOutliers: c.Query("exclude_outliers") == "true",
	})
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": report})
}

// Revenue renders the revenue breakdown view.
// Query params: mode=gross|net, group_by=category|product, top_n, date
// (YYYY-MM-DD, restricts orders to one calendar day).
func (h *ViewHandler) Revenue(c *gin.Context) {
	opts := analytics.RevenueOptions{
		Mode:    analytics.RevenueMode(c.DefaultQuery("mode", string(analytics.RevenueGross))),
		GroupBy: analytics.RevenueGroupBy(c.DefaultQuery("group_by", string(analytics.GroupByCategory))),
		TopN:    h.intQuery(c, "top_n", h.defaults.DefaultTopN),
	}
	if opts.Mode != analytics.RevenueGross && opts.Mode != analytics.RevenueNet {
		c.JSON(http.StatusBadRequest, gin.H{"code": 10001, "message": "mode must be gross or net"})
		return
	}
	if opts.GroupBy != analytics.GroupByCategory && opts.GroupBy != analytics.GroupByProduct {
		c.JSON(http.StatusBadRequest, gin.H{"code": 10001, "message": "group_by must be category or product"})
		return
	}
	if raw := c.Query("date"); raw != "" {
		day, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": 10001, "message": "date must be YYYY-MM-DD"})
			return
		}
		opts.Date = &day
	}

	report, err := analytics.RevenueBreakdown(h.ds.Orders, h.ds.Items, opts)
	if err != nil {
		if errors.Is(err, analytics.ErrNoData) {
			c.JSON(http.StatusNotFound, gin.H{"code": 10404, "message": "no revenue data for the selected day"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"code": 50001, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": report})
}

// Cancellations renders the cancellation-causes view.
// Query params: top_n sizes the critical set used in the cross-tabulation.
func (h *ViewHandler) Cancellations(c *gin.Context) {
	topN := h.intQuery(c, "top_n", h.defaults.DefaultTopN)
	report := analytics.CancellationAnalysis(h.ds.Orders, h.ds.Items, h.ds.Stock, topN)
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": report})
}

// StockCoverage renders the inventory criticality view.
// Query params: top_n bounds the critical set and the centre distribution.
func (h *ViewHandler) StockCoverage(c *gin.Context) {
	report := analytics.StockCoverage(h.ds.Orders, h.ds.Items, h.ds.Stock, analytics.CoverageOptions{
		TopN: h.intQuery(c, "top_n", h.defaults.DefaultTopN),
	})
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": report})
}

// Delays renders the delivery-delay view.
// Query params: state filters to one state, top_n bounds product rankings,
// critical_units sets the critical-stock threshold.
func (h *ViewHandler) Delays(c *gin.Context) {
	opts := analytics.DelayOptions{
		State:         c.Query("state"),
		TopN:          h.intQuery(c, "top_n", h.defaults.DefaultTopN),
		CriticalUnits: h.defaults.DefaultCriticalUnits,
	}
	if raw := c.Query("critical_units"); raw != "" {
		units, err := strconv.ParseFloat(raw, 64)
		if err != nil || units < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"code": 10001, "message": "critical_units must be a non-negative number"})
			return
		}
		opts.CriticalUnits = units
	}
	report := analytics.DelayAnalysis(h.ds.Orders, h.ds.Items, h.ds.Stock, opts)
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": report})
}

func (h *ViewHandler) intQuery(c *gin.Context, name string, fallback int) int {
	v, err := strconv.Atoi(c.DefaultQuery(name, strconv.Itoa(fallback)))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
