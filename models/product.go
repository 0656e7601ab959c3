package models

import "time"

type Product struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	SKU       string    `json:"sku,omitempty"`
	Price     float64   `json:"price"`
	Stock     int       `json:"stock"`
	CreatedAt time.Time `json:"created_at"`
}

type AddProductRequest struct {
	Name  string  `json:"name"`
	SKU   string  `json:"sku"`
	Price float64 `json:"price"`
	Stock int     `json:"stock"`
}

// UpdateProductRequest is a partial update; nil fields keep their current value.
type UpdateProductRequest struct {
	Name  *string  `json:"name,omitempty"`
	SKU   *string  `json:"sku,omitempty"`
	Price *float64 `json:"price,omitempty"`
	Stock *int     `json:"stock,omitempty"`
}

type AdjustStockRequest struct {
	Delta int `json:"delta"`
}
