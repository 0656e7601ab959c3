package models

import "time"

type Sale struct {
	ID          string    `json:"id"`
	Datetime    time.Time `json:"datetime"`
	Total       float64   `json:"total"`
	PaymentType string    `json:"payment_type,omitempty"`
}

// SaleItem snapshots the product price at sale time; it is never
// updated after the sale commits.
type SaleItem struct {
	ID        string  `json:"id"`
	SaleID    string  `json:"sale_id"`
	ProductID string  `json:"product_id"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Subtotal  float64 `json:"subtotal"`
}

type BasketLine struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type CreateSaleRequest struct {
	Items       []BasketLine `json:"items"`
	PaymentType string       `json:"payment_type"`
}

// SaleItemDetail is one line of a sale joined with the product name,
// for the sale-detail view.
type SaleItemDetail struct {
	ID          string  `json:"id"`
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Subtotal    float64 `json:"subtotal"`
}

// SaleDetailRow is one item row across all sales, joined with the
// parent sale's metadata.
type SaleDetailRow struct {
	Datetime    time.Time `json:"datetime"`
	ProductName string    `json:"product_name"`
	Quantity    int       `json:"quantity"`
	UnitPrice   float64   `json:"unit_price"`
	Subtotal    float64   `json:"subtotal"`
	SaleTotal   float64   `json:"sale_total"`
	PaymentType string    `json:"payment_type"`
}

// ExportRow feeds the CSV export: one row per sale item, or a single
// placeholder row (HasItem false) for a sale without items.
type ExportRow struct {
	Datetime    time.Time
	Total       float64
	PaymentType string
	ProductID   string
	ProductName string
	ProductSKU  string
	Quantity    int
	UnitPrice   float64
	Subtotal    float64
	HasItem     bool
}
