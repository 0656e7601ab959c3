package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ventas/models"

	"github.com/jackc/pgx/v4"
	"go.uber.org/zap"
)

// CreateSale commits a basket atomically: one sale row, one item row per
// basket line, and a stock decrement per line, all in a single transaction.
// Every line re-reads price and stock under a row lock, so a stale basket
// can never oversell and a tampered client price is never trusted.
func (s *Postgres) CreateSale(ctx context.Context, basket []models.BasketLine, paymentType string) (string, error) {
	if len(basket) == 0 {
		return "", ErrEmptyBasket
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return "", unavailable(err)
	}
	// Rollback is a no-op once the transaction committed.
	defer tx.Rollback(ctx)

	saleID := NewID("S")
	now := time.Now().UTC()
	_, err = tx.Exec(ctx,
		`INSERT INTO sales (id, datetime, total, payment_type) VALUES ($1, $2, 0, NULLIF($3, ''))`,
		saleID, now, paymentType)
	if err != nil {
		return "", unavailable(err)
	}

	var total float64
	for _, line := range basket {
		if line.Quantity <= 0 {
			return "", fmt.Errorf("quantity %d for product %s: %w",
				line.Quantity, line.ProductID, ErrInvalidQuantity)
		}

		var name string
		var price float64
		var stock int
		err = tx.QueryRow(ctx,
			`SELECT name, price, stock FROM products WHERE id = $1 FOR UPDATE`,
			line.ProductID,
		).Scan(&name, &price, &stock)
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("product %s: %w", line.ProductID, ErrProductNotFound)
		}
		if err != nil {
			return "", unavailable(err)
		}
		if stock < line.Quantity {
			return "", fmt.Errorf("insufficient stock for %s (have %d, want %d): %w",
				name, stock, line.Quantity, ErrInsufficientStock)
		}

		subtotal := price * float64(line.Quantity)
		_, err = tx.Exec(ctx,
			`INSERT INTO sale_items (id, sale_id, product_id, quantity, unit_price, subtotal)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			NewID("SI"), saleID, line.ProductID, line.Quantity, price, subtotal)
		if err != nil {
			return "", unavailable(err)
		}

		tag, err := tx.Exec(ctx,
			`UPDATE products SET stock = stock - $1 WHERE id = $2 AND stock >= $1`,
			line.Quantity, line.ProductID)
		if err != nil {
			return "", unavailable(err)
		}
		if tag.RowsAffected() == 0 {
			return "", fmt.Errorf("insufficient stock for %s: %w", name, ErrInsufficientStock)
		}

		total += subtotal
	}

	_, err = tx.Exec(ctx, `UPDATE sales SET total = $1 WHERE id = $2`, total, saleID)
	if err != nil {
		return "", unavailable(err)
	}

	if err := tx.Commit(ctx); err != nil {
		// The commit outcome is unknown here; retrying could decrement
		// stock twice, so surface the failure and let the caller verify
		// through the query layer.
		return "", fmt.Errorf("commit of sale %s: %w: %v", saleID, ErrStoreUnavailable, err)
	}

	s.log.Info("sale committed",
		zap.String("sale_id", saleID),
		zap.Int("lines", len(basket)),
		zap.Float64("total", total))
	notifyProducts(ctx, s, &s.watch)
	return saleID, nil
}
