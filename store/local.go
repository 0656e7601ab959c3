package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ventas/models"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// Local is the embedded fallback backend over a SQLite file. It keeps the
// same observable contract as the Postgres backend; a single connection
// serializes writers, so transactions never interleave.
type Local struct {
	db    *sql.DB
	log   *zap.Logger
	watch productWatch
}

func OpenLocal(path string, log *zap.Logger) (*Local, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, unavailable(err)
	}
	db.SetMaxOpenConns(1)

	s := &Local{db: db, log: log}
	if err := s.init(); err != nil {
		db.Close()
		return nil, unavailable(err)
	}
	return s, nil
}

func (s *Local) Close() {
	s.db.Close()
}

func (s *Local) init() error {
	ddl := []string{`
		CREATE TABLE IF NOT EXISTS products (
			id TEXT PRIMARY KEY NOT NULL,
			name TEXT NOT NULL,
			sku TEXT NOT NULL DEFAULT '',
			price REAL NOT NULL,
			stock INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL
		)`, `
		CREATE TABLE IF NOT EXISTS customers (
			id TEXT PRIMARY KEY NOT NULL,
			name TEXT NOT NULL,
			phone TEXT NOT NULL DEFAULT '',
			email TEXT NOT NULL DEFAULT '',
			interest TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		)`, `
		CREATE TABLE IF NOT EXISTS sales (
			id TEXT PRIMARY KEY NOT NULL,
			datetime TEXT NOT NULL,
			total REAL NOT NULL DEFAULT 0,
			payment_type TEXT NOT NULL DEFAULT ''
		)`, `
		CREATE TABLE IF NOT EXISTS sale_items (
			id TEXT PRIMARY KEY NOT NULL,
			sale_id TEXT NOT NULL,
			product_id TEXT NOT NULL,
			quantity INTEGER NOT NULL,
			unit_price REAL NOT NULL,
			subtotal REAL NOT NULL
		)`, `
		CREATE TABLE IF NOT EXISTS costs (
			id TEXT PRIMARY KEY NOT NULL,
			date TEXT NOT NULL,
			product_id TEXT NOT NULL DEFAULT '',
			product_name TEXT NOT NULL DEFAULT '',
			cost REAL NOT NULL,
			note TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		)`,
	}
	for _, stmt := range ddl {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Timestamps are stored as UTC text with a fixed-width fraction so that
// ORDER BY on the column stays chronological (RFC3339Nano trims trailing
// zeros, which breaks lexicographic ordering).
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func encodeTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func decodeTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		// tolerate rows written by other tooling
		if t, err2 := time.Parse(time.RFC3339Nano, s); err2 == nil {
			return t, nil
		}
		return time.Time{}, fmt.Errorf("bad timestamp %q: %v", s, err)
	}
	return t, nil
}

func (s *Local) ListProducts(ctx context.Context) ([]models.Product, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, sku, price, stock, created_at FROM products ORDER BY name ASC`)
	if err != nil {
		return nil, unavailable(err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var p models.Product
		var created string
		if err := rows.Scan(&p.ID, &p.Name, &p.SKU, &p.Price, &p.Stock, &created); err != nil {
			return nil, unavailable(err)
		}
		if p.CreatedAt, err = decodeTime(created); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (s *Local) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	var p models.Product
	var created string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, sku, price, stock, created_at FROM products WHERE id = ?`, id,
	).Scan(&p.ID, &p.Name, &p.SKU, &p.Price, &p.Stock, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("product %s: %w", id, ErrProductNotFound)
	}
	if err != nil {
		return nil, unavailable(err)
	}
	if p.CreatedAt, err = decodeTime(created); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Local) AddProduct(ctx context.Context, req models.AddProductRequest) (*models.Product, error) {
	if err := validateAddProduct(req); err != nil {
		return nil, err
	}
	p := models.Product{
		ID:        NewID("P"),
		Name:      req.Name,
		SKU:       req.SKU,
		Price:     req.Price,
		Stock:     req.Stock,
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO products (id, name, sku, price, stock, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.SKU, p.Price, p.Stock, encodeTime(p.CreatedAt))
	if err != nil {
		return nil, unavailable(err)
	}
	s.log.Info("product added", zap.String("product_id", p.ID), zap.String("name", p.Name))
	notifyProducts(ctx, s, &s.watch)
	return &p, nil
}

func (s *Local) UpdateProduct(ctx context.Context, id string, req models.UpdateProductRequest) (*models.Product, error) {
	current, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	merged := applyProductUpdate(*current, req)
	if err := validateAddProduct(models.AddProductRequest{
		Name: merged.Name, SKU: merged.SKU, Price: merged.Price, Stock: merged.Stock,
	}); err != nil {
		return nil, err
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE products SET name = ?, sku = ?, price = ?, stock = ? WHERE id = ?`,
		merged.Name, merged.SKU, merged.Price, merged.Stock, id)
	if err != nil {
		return nil, unavailable(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("product %s: %w", id, ErrProductNotFound)
	}
	notifyProducts(ctx, s, &s.watch)
	return &merged, nil
}

func (s *Local) AdjustStock(ctx context.Context, id string, delta int) (*models.Product, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE products SET stock = stock + ? WHERE id = ? AND stock + ? >= 0`,
		delta, id, delta)
	if err != nil {
		return nil, unavailable(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		existing, gerr := s.GetProduct(ctx, id)
		if gerr != nil {
			return nil, gerr
		}
		return nil, fmt.Errorf("insufficient stock for %s (have %d, delta %d): %w",
			existing.Name, existing.Stock, delta, ErrInsufficientStock)
	}
	p, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	s.log.Info("stock adjusted",
		zap.String("product_id", id), zap.Int("delta", delta), zap.Int("stock", p.Stock))
	notifyProducts(ctx, s, &s.watch)
	return p, nil
}

func (s *Local) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, phone, email, interest, created_at FROM customers ORDER BY created_at DESC`)
	if err != nil {
		return nil, unavailable(err)
	}
	defer rows.Close()

	var customers []models.Customer
	for rows.Next() {
		var c models.Customer
		var created string
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.Interest, &created); err != nil {
			return nil, unavailable(err)
		}
		if c.CreatedAt, err = decodeTime(created); err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func (s *Local) AddCustomer(ctx context.Context, req models.AddCustomerRequest) (*models.Customer, error) {
	if err := validateAddCustomer(req); err != nil {
		return nil, err
	}
	c := models.Customer{
		ID:        NewID("C"),
		Name:      req.Name,
		Phone:     req.Phone,
		Email:     req.Email,
		Interest:  req.Interest,
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO customers (id, name, phone, email, interest, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Phone, c.Email, c.Interest, encodeTime(c.CreatedAt))
	if err != nil {
		return nil, unavailable(err)
	}
	return &c, nil
}

func (s *Local) ListSales(ctx context.Context) ([]models.Sale, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, datetime, total, payment_type FROM sales ORDER BY datetime DESC`)
	if err != nil {
		return nil, unavailable(err)
	}
	defer rows.Close()

	var sales []models.Sale
	for rows.Next() {
		var sale models.Sale
		var dt string
		if err := rows.Scan(&sale.ID, &dt, &sale.Total, &sale.PaymentType); err != nil {
			return nil, unavailable(err)
		}
		if sale.Datetime, err = decodeTime(dt); err != nil {
			return nil, err
		}
		sales = append(sales, sale)
	}
	return sales, rows.Err()
}

func (s *Local) SaleItems(ctx context.Context, saleID string) ([]models.SaleItemDetail, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM sales WHERE id = ?`, saleID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("sale %s: %w", saleID, ErrSaleNotFound)
	}
	if err != nil {
		return nil, unavailable(err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT si.id, si.product_id, p.name, si.quantity, si.unit_price, si.subtotal
		 FROM sale_items si
		 JOIN products p ON p.id = si.product_id
		 WHERE si.sale_id = ?
		 ORDER BY si.id ASC`, saleID)
	if err != nil {
		return nil, unavailable(err)
	}
	defer rows.Close()

	var items []models.SaleItemDetail
	for rows.Next() {
		var it models.SaleItemDetail
		if err := rows.Scan(&it.ID, &it.ProductID, &it.ProductName, &it.Quantity, &it.UnitPrice, &it.Subtotal); err != nil {
			return nil, unavailable(err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (s *Local) SalesDetailed(ctx context.Context) ([]models.SaleDetailRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT sa.datetime, p.name, si.quantity, si.unit_price, si.subtotal, sa.total, sa.payment_type
		 FROM sale_items si
		 JOIN sales sa ON sa.id = si.sale_id
		 JOIN products p ON p.id = si.product_id
		 ORDER BY sa.datetime DESC, si.id ASC`)
	if err != nil {
		return nil, unavailable(err)
	}
	defer rows.Close()

	var detail []models.SaleDetailRow
	for rows.Next() {
		var r models.SaleDetailRow
		var dt string
		if err := rows.Scan(&dt, &r.ProductName, &r.Quantity, &r.UnitPrice,
			&r.Subtotal, &r.SaleTotal, &r.PaymentType); err != nil {
			return nil, unavailable(err)
		}
		if r.Datetime, err = decodeTime(dt); err != nil {
			return nil, err
		}
		detail = append(detail, r)
	}
	return detail, rows.Err()
}

func (s *Local) ExportRows(ctx context.Context) ([]models.ExportRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT sa.datetime, sa.total, sa.payment_type,
		        COALESCE(si.product_id, ''), COALESCE(p.name, ''), COALESCE(p.sku, ''),
		        COALESCE(si.quantity, 0), COALESCE(si.unit_price, 0), COALESCE(si.subtotal, 0),
		        si.id IS NOT NULL
		 FROM sales sa
		 LEFT JOIN sale_items si ON si.sale_id = sa.id
		 LEFT JOIN products p ON p.id = si.product_id
		 ORDER BY sa.datetime ASC, si.id ASC`)
	if err != nil {
		return nil, unavailable(err)
	}
	defer rows.Close()

	var export []models.ExportRow
	for rows.Next() {
		var r models.ExportRow
		var dt string
		if err := rows.Scan(&dt, &r.Total, &r.PaymentType, &r.ProductID,
			&r.ProductName, &r.ProductSKU, &r.Quantity, &r.UnitPrice, &r.Subtotal, &r.HasItem); err != nil {
			return nil, unavailable(err)
		}
		if r.Datetime, err = decodeTime(dt); err != nil {
			return nil, err
		}
		export = append(export, r)
	}
	return export, rows.Err()
}

func (s *Local) AddCost(ctx context.Context, cost models.Cost) (*models.Cost, error) {
	if err := validateCost(cost); err != nil {
		return nil, err
	}
	if cost.ProductID != "" {
		p, err := s.GetProduct(ctx, cost.ProductID)
		if err != nil {
			return nil, err
		}
		if cost.ProductName == "" {
			cost.ProductName = p.Name
		}
	}
	cost.ID = NewID("CO")
	if cost.Date.IsZero() {
		cost.Date = time.Now().UTC()
	}
	cost.CreatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO costs (id, date, product_id, product_name, cost, note, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		cost.ID, encodeTime(cost.Date), cost.ProductID, cost.ProductName, cost.Cost, cost.Note,
		encodeTime(cost.CreatedAt))
	if err != nil {
		return nil, unavailable(err)
	}
	return &cost, nil
}

func (s *Local) ListCosts(ctx context.Context) ([]models.Cost, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, date, product_id, product_name, cost, note, created_at
		 FROM costs ORDER BY date DESC`)
	if err != nil {
		return nil, unavailable(err)
	}
	defer rows.Close()

	var costs []models.Cost
	for rows.Next() {
		var c models.Cost
		var date, created string
		if err := rows.Scan(&c.ID, &date, &c.ProductID, &c.ProductName, &c.Cost, &c.Note, &created); err != nil {
			return nil, unavailable(err)
		}
		if c.Date, err = decodeTime(date); err != nil {
			return nil, err
		}
		if c.CreatedAt, err = decodeTime(created); err != nil {
			return nil, err
		}
		costs = append(costs, c)
	}
	return costs, rows.Err()
}

func (s *Local) WatchProducts(fn func([]models.Product)) func() {
	cancel := s.watch.subscribe(fn)
	if products, err := s.ListProducts(context.Background()); err == nil {
		fn(products)
	}
	return cancel
}
