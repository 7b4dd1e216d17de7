package dataset

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/pauloricms12/data-analysis/internal/config"
)

// Column names are a compatibility contract with the spreadsheets exported by
// the commercial team; do not rename them here.
const (
	colOrderID      = "id"
	colCreatedAt    = "created_at"
	colStatus       = "Status do Pedido"
	colState        = "Estado"
	colCarrier      = "Transportadora"
	colPromised     = "Prazo a transportadora entregar no cliente"
	colDelivered    = "Entregue para o cliente em:"
	colFreight      = "Frete Cobrado do Cliente (R$)"
	colInvoice      = "Valor de NF (R$)"
	colItemOrderID  = "order_id"
	colMaterialID   = "material_id"
	colMaterialName = "material_name"
	colCategory     = "material_category"
	colPrice        = "price"
	colAasmState    = "aasm_state"
	colCentreID     = "inventory_centre_id"
	colQuantity     = "quantity"
)

// LoadStats reports what the loader kept and what it had to drop.
type LoadStats struct {
	Orders        int
	DroppedOrders int
	Items         int
	StockRecords  int
}

// Load reads the two source workbooks into an in-memory Dataset. It is called
// once at startup; the result is cached for the process lifetime.
//
// Orders with an unparsable created_at are dropped (counted in stats): every
// view groups on that timestamp. Missing or unparsable delivery timestamps are
// kept as nil, the delay analyzer excludes them row by row.
func Load(cfg config.DataConfig) (*Dataset, *LoadStats, error) {
	stats := &LoadStats{}

	orders, dropped, err := loadOrders(cfg.OrdersFile, cfg.OrdersSheet)
	if err != nil {
		return nil, nil, fmt.Errorf("load orders: %w", err)
	}
	stats.Orders = len(orders)
	stats.DroppedOrders = dropped

	items, stock, err := loadItemsAndSupply(cfg.ItemsFile, cfg.ItemsSheet, cfg.SupplySheet)
	if err != nil {
		return nil, nil, fmt.Errorf("load items/supply: %w", err)
	}
	stats.Items = len(items)
	stats.StockRecords = len(stock)

	return &Dataset{Orders: orders, Items: items, Stock: stock}, stats, nil
}

func loadOrders(path, sheet string) ([]Order, int, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, 0, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, 0, fmt.Errorf("sheet %q is empty", sheet)
	}

	idx, err := headerIndex(rows[0], sheet,
		colOrderID, colCreatedAt, colStatus, colState, colCarrier,
		colPromised, colDelivered, colFreight, colInvoice)
	if err != nil {
		return nil, 0, err
	}

	var orders []Order
	dropped := 0
	for _, row := range rows[1:] {
		id := cell(row, idx[colOrderID])
		if id == "" {
			continue
		}
		created := parseTime(cell(row, idx[colCreatedAt]))
		if created == nil {
			dropped++
			continue
		}
		orders = append(orders, Order{
			ID:                 id,
			CreatedAt:          *created,
			Status:             cell(row, idx[colStatus]),
			State:              cell(row, idx[colState]),
			Carrier:            cell(row, idx[colCarrier]),
			PromisedDeliveryAt: parseTime(cell(row, idx[colPromised])),
			DeliveredAt:        parseTime(cell(row, idx[colDelivered])),
			FreightCharged:     parseMoney(cell(row, idx[colFreight])),
			InvoiceValue:       parseMoney(cell(row, idx[colInvoice])),
		})
	}
	return orders, dropped, nil
}

func loadItemsAndSupply(path, itemsSheet, supplySheet string) ([]LineItem, []StockRecord, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	itemRows, err := f.GetRows(itemsSheet)
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet %q: %w", itemsSheet, err)
	}
	if len(itemRows) == 0 {
		return nil, nil, fmt.Errorf("sheet %q is empty", itemsSheet)
	}
	itemIdx, err := headerIndex(itemRows[0], itemsSheet,
		colItemOrderID, colMaterialID, colMaterialName, colCategory, colPrice, colAasmState)
	if err != nil {
		return nil, nil, err
	}

	var items []LineItem
	for _, row := range itemRows[1:] {
		orderID := cell(row, itemIdx[colItemOrderID])
		materialID := cell(row, itemIdx[colMaterialID])
		if orderID == "" && materialID == "" {
			continue
		}
		items = append(items, LineItem{
			OrderID:          orderID,
			MaterialID:       materialID,
			MaterialName:     cell(row, itemIdx[colMaterialName]),
			MaterialCategory: cell(row, itemIdx[colCategory]),
			Price:            parseMoney(cell(row, itemIdx[colPrice])),
			LifecycleState:   cell(row, itemIdx[colAasmState]),
		})
	}

	supplyRows, err := f.GetRows(supplySheet)
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet %q: %w", supplySheet, err)
	}
	if len(supplyRows) == 0 {
		return nil, nil, fmt.Errorf("sheet %q is empty", supplySheet)
	}
	supplyIdx, err := headerIndex(supplyRows[0], supplySheet,
		colMaterialID, colMaterialName, colCentreID, colQuantity)
	if err != nil {
		return nil, nil, err
	}

	var stock []StockRecord
	for _, row := range supplyRows[1:] {
		materialID := cell(row, supplyIdx[colMaterialID])
		if materialID == "" {
			continue
		}
		stock = append(stock, StockRecord{
			MaterialID:        materialID,
			MaterialName:      cell(row, supplyIdx[colMaterialName]),
			InventoryCentreID: cell(row, supplyIdx[colCentreID]),
			Quantity:          parseMoney(cell(row, supplyIdx[colQuantity])),
		})
	}

	return items, stock, nil
}

// headerIndex maps required column names to their positions, failing fast
// with the offending column named when the schema does not match.
func headerIndex(header []string, sheet string, required ...string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.TrimSpace(name)] = i
	}
	for _, name := range required {
		if _, ok := idx[name]; !ok {
			return nil, fmt.Errorf("sheet %q: missing required column %q", sheet, name)
		}
	}
	return idx, nil
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// timeLayouts covers the formats seen in exports so far. Cells that match
// none of them coerce to nil.
var timeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02/01/2006",
	"01-02-06 15:04",
	"1/2/06 15:04",
}

func parseTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// parseMoney accepts plain numbers plus the "R$ 1.234,56" style that shows up
// when a sheet was touched by hand. Unparsable cells coerce to 0.
func parseMoney(s string) float64 {
	if s == "" {
		return 0
	}
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "R$"))
	if strings.Contains(s, ",") {
		if strings.Contains(s, ".") {
			s = strings.ReplaceAll(s, ".", "")
		}
		s = strings.ReplaceAll(s, ",", ".")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
