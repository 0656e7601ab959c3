package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ventas/models"

	"go.uber.org/zap"
)

// CreateSale is the embedded-backend sale transaction. Same contract as the
// Postgres engine: every line re-reads price and stock inside the
// transaction, and either the whole basket commits or nothing does. The
// single-connection handle means no other writer can slip in between the
// stock check and the decrement.
func (s *Local) CreateSale(ctx context.Context, basket []models.BasketLine, paymentType string) (string, error) {
	if len(basket) == 0 {
		return "", ErrEmptyBasket
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", unavailable(err)
	}
	defer tx.Rollback()

	saleID := NewID("S")
	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO sales (id, datetime, total, payment_type) VALUES (?, ?, 0, ?)`,
		saleID, encodeTime(now), paymentType)
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
		err = tx.QueryRowContext(ctx,
			`SELECT name, price, stock FROM products WHERE id = ?`, line.ProductID,
		).Scan(&name, &price, &stock)
		if errors.Is(err, sql.ErrNoRows) {
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
		_, err = tx.ExecContext(ctx,
			`INSERT INTO sale_items (id, sale_id, product_id, quantity, unit_price, subtotal)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			NewID("SI"), saleID, line.ProductID, line.Quantity, price, subtotal)
		if err != nil {
			return "", unavailable(err)
		}

		res, err := tx.ExecContext(ctx,
			`UPDATE products SET stock = stock - ? WHERE id = ? AND stock >= ?`,
			line.Quantity, line.ProductID, line.Quantity)
		if err != nil {
			return "", unavailable(err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return "", fmt.Errorf("insufficient stock for %s: %w", name, ErrInsufficientStock)
		}

		total += subtotal
	}

	_, err = tx.ExecContext(ctx, `UPDATE sales SET total = ? WHERE id = ?`, total, saleID)
	if err != nil {
		return "", unavailable(err)
	}

	if err := tx.Commit(); err != nil {
		// Outcome unknown; never retry a commit (risk of double decrement).
		return "", fmt.Errorf("commit of sale %s: %w: %v", saleID, ErrStoreUnavailable, err)
	}

	s.log.Info("sale committed",
		zap.String("sale_id", saleID),
		zap.Int("lines", len(basket)),
		zap.Float64("total", total))
	notifyProducts(ctx, s, &s.watch)
	return saleID, nil
}
