package models

import "time"

// Cost is a tracked expense, optionally linked to a catalog product.
// ProductName is a snapshot, not a live reference.
type Cost struct {
	ID          string    `json:"id"`
	Date        time.Time `json:"date"`
	ProductID   string    `json:"product_id,omitempty"`
	ProductName string    `json:"product_name"`
	Cost        float64   `json:"cost"`
	Note        string    `json:"note,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type AddCostRequest struct {
	Date        string  `json:"date"`
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Cost        float64 `json:"cost"`
	Note        string  `json:"note"`
}
