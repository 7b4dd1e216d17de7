package dataset

import "time"

// LifecycleCanceled is the aasm_state the commerce backend assigns to
// canceled line items.
const LifecycleCanceled = "canceled"

// Order is one row of the orders workbook. PromisedDeliveryAt and DeliveredAt
// stay nil when the source cell is empty or unparsable; such orders are
// excluded from delay statistics but still count everywhere else.
type Order struct {
	ID                 string     `json:"id"`
	CreatedAt          time.Time  `json:"created_at"`
	Status             string     `json:"status"`
	State              string     `json:"state"`
	Carrier            string     `json:"carrier"`
	PromisedDeliveryAt *time.Time `json:"promised_delivery_at,omitempty"`
	DeliveredAt        *time.Time `json:"delivered_at,omitempty"`
	FreightCharged     float64    `json:"freight_charged"`
	InvoiceValue       float64    `json:"invoice_value"`
}

// LineItem is one row of the Itens sheet. Many items per order.
type LineItem struct {
	OrderID          string  `json:"order_id"`
	MaterialID       string  `json:"material_id"`
	MaterialName     string  `json:"material_name"`
	MaterialCategory string  `json:"material_category"`
	Price            float64 `json:"price"`
	LifecycleState   string  `json:"lifecycle_state"`
}

// StockRecord is one row of the Supply sheet: stock of one material at one
// inventory centre. Total stock per material is the sum across centres.
type StockRecord struct {
	MaterialID        string  `json:"material_id"`
	MaterialName      string  `json:"material_name"`
	InventoryCentreID string  `json:"inventory_centre_id"`
	Quantity          float64 `json:"quantity"`
}

// Dataset holds the three loaded tables. It is built once at startup and
// treated as immutable afterwards; every aggregator receives it read-only.
type Dataset struct {
	Orders []Order
	Items  []LineItem
	Stock  []StockRecord
}
