package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ventas/models"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"go.uber.org/zap"
)

// Postgres is the remote-store backend over a pgx connection pool.
type Postgres struct {
	pool  *pgxpool.Pool
	log   *zap.Logger
	watch productWatch
}

func NewPostgres(ctx context.Context, pool *pgxpool.Pool, log *zap.Logger) (*Postgres, error) {
	s := &Postgres{pool: pool, log: log}
	if err := s.migrate(ctx); err != nil {
		return nil, unavailable(err)
	}
	return s, nil
}

func (s *Postgres) Close() {
	s.pool.Close()
}

func (s *Postgres) migrate(ctx context.Context) error {
	ddl := []string{`
		CREATE TABLE IF NOT EXISTS products (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			sku TEXT,
			price DOUBLE PRECISION NOT NULL,
			stock INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`, `
		CREATE TABLE IF NOT EXISTS customers (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			phone TEXT,
			email TEXT,
			interest TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`, `
		CREATE TABLE IF NOT EXISTS sales (
			id TEXT PRIMARY KEY,
			datetime TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			total DOUBLE PRECISION NOT NULL DEFAULT 0,
			payment_type TEXT
		)`, `
		CREATE TABLE IF NOT EXISTS sale_items (
			id TEXT PRIMARY KEY,
			sale_id TEXT NOT NULL,
			product_id TEXT NOT NULL,
			quantity INTEGER NOT NULL,
			unit_price DOUBLE PRECISION NOT NULL,
			subtotal DOUBLE PRECISION NOT NULL
		)`, `
		CREATE TABLE IF NOT EXISTS costs (
			id TEXT PRIMARY KEY,
			date TIMESTAMPTZ NOT NULL,
			product_id TEXT,
			product_name TEXT,
			cost DOUBLE PRECISION NOT NULL,
			note TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	}
	for _, stmt := range ddl {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

const pgProductCols = `id, name, COALESCE(sku, ''), price, stock, created_at`

func (s *Postgres) ListProducts(ctx context.Context) ([]models.Product, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+pgProductCols+` FROM products ORDER BY name ASC`)
	if err != nil {
		return nil, unavailable(err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.SKU, &p.Price, &p.Stock, &p.CreatedAt); err != nil {
			return nil, unavailable(err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (s *Postgres) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	var p models.Product
	err := s.pool.QueryRow(ctx,
		`SELECT `+pgProductCols+` FROM products WHERE id = $1`, id,
	).Scan(&p.ID, &p.Name, &p.SKU, &p.Price, &p.Stock, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("product %s: %w", id, ErrProductNotFound)
	}
	if err != nil {
		return nil, unavailable(err)
	}
	return &p, nil
}

func (s *Postgres) AddProduct(ctx context.Context, req models.AddProductRequest) (*models.Product, error) {
	if err := validateAddProduct(req); err != nil {
		return nil, err
	}
	p := models.Product{
		ID:    NewID("P"),
		Name:  req.Name,
		SKU:   req.SKU,
		Price: req.Price,
		Stock: req.Stock,
	}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO products (id, name, sku, price, stock)
		 VALUES ($1, $2, NULLIF($3, ''), $4, $5)
		 RETURNING created_at`,
		p.ID, p.Name, p.SKU, p.Price, p.Stock,
	).Scan(&p.CreatedAt)
	if err != nil {
		return nil, unavailable(err)
	}
	s.log.Info("product added", zap.String("product_id", p.ID), zap.String("name", p.Name))
	notifyProducts(ctx, s, &s.watch)
	return &p, nil
}

func (s *Postgres) UpdateProduct(ctx context.Context, id string, req models.UpdateProductRequest) (*models.Product, error) {
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

	tag, err := s.pool.Exec(ctx,
		`UPDATE products SET name = $1, sku = NULLIF($2, ''), price = $3, stock = $4 WHERE id = $5`,
		merged.Name, merged.SKU, merged.Price, merged.Stock, id,
	)
	if err != nil {
		return nil, unavailable(err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("product %s: %w", id, ErrProductNotFound)
	}
	notifyProducts(ctx, s, &s.watch)
	return &merged, nil
}

func (s *Postgres) AdjustStock(ctx context.Context, id string, delta int) (*models.Product, error) {
	var p models.Product
	err := s.pool.QueryRow(ctx,
		`UPDATE products SET stock = stock + $1
		 WHERE id = $2 AND stock + $1 >= 0
		 RETURNING `+pgProductCols,
		delta, id,
	).Scan(&p.ID, &p.Name, &p.SKU, &p.Price, &p.Stock, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		// Either the product is missing or the delta would drive stock
		// below zero; a plain read tells the two apart.
		existing, gerr := s.GetProduct(ctx, id)
		if gerr != nil {
			return nil, gerr
		}
		return nil, fmt.Errorf("insufficient stock for %s (have %d, delta %d): %w",
			existing.Name, existing.Stock, delta, ErrInsufficientStock)
	}
	if err != nil {
		return nil, unavailable(err)
	}
	s.log.Info("stock adjusted",
		zap.String("product_id", id), zap.Int("delta", delta), zap.Int("stock", p.Stock))
	notifyProducts(ctx, s, &s.watch)
	return &p, nil
}

func (s *Postgres) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, COALESCE(phone, ''), COALESCE(email, ''), COALESCE(interest, ''), created_at
		 FROM customers ORDER BY created_at DESC`)
	if err != nil {
		return nil, unavailable(err)
	}
	defer rows.Close()

	var customers []models.Customer
	for rows.Next() {
		var c models.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.Interest, &c.CreatedAt); err != nil {
			return nil, unavailable(err)
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func (s *Postgres) AddCustomer(ctx context.Context, req models.AddCustomerRequest) (*models.Customer, error) {
	if err := validateAddCustomer(req); err != nil {
		return nil, err
	}
	c := models.Customer{
		ID:       NewID("C"),
		Name:     req.Name,
		Phone:    req.Phone,
		Email:    req.Email,
		Interest: req.Interest,
	}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO customers (id, name, phone, email, interest)
		 VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''))
		 RETURNING created_at`,
		c.ID, c.Name, c.Phone, c.Email, c.Interest,
	).Scan(&c.CreatedAt)
	if err != nil {
		return nil, unavailable(err)
	}
	return &c, nil
}

func (s *Postgres) ListSales(ctx context.Context) ([]models.Sale, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, datetime, total, COALESCE(payment_type, '')
		 FROM sales ORDER BY datetime DESC`)
	if err != nil {
		return nil, unavailable(err)
	}
	defer rows.Close()

	var sales []models.Sale
	for rows.Next() {
		var sale models.Sale
		if err := rows.Scan(&sale.ID, &sale.Datetime, &sale.Total, &sale.PaymentType); err != nil {
			return nil, unavailable(err)
		}
		sales = append(sales, sale)
	}
	return sales, rows.Err()
}

func (s *Postgres) SaleItems(ctx context.Context, saleID string) ([]models.SaleItemDetail, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM sales WHERE id = $1)`, saleID).Scan(&exists)
	if err != nil {
		return nil, unavailable(err)
	}
	if !exists {
		return nil, fmt.Errorf("sale %s: %w", saleID, ErrSaleNotFound)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT si.id, si.product_id, p.name, si.quantity, si.unit_price, si.subtotal
		 FROM sale_items si
		 JOIN products p ON p.id = si.product_id
		 WHERE si.sale_id = $1
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

func (s *Postgres) SalesDetailed(ctx context.Context) ([]models.SaleDetailRow, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT sa.datetime, p.name, si.quantity, si.unit_price, si.subtotal,
		        sa.total, COALESCE(sa.payment_type, '')
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
		if err := rows.Scan(&r.Datetime, &r.ProductName, &r.Quantity, &r.UnitPrice,
			&r.Subtotal, &r.SaleTotal, &r.PaymentType); err != nil {
			return nil, unavailable(err)
		}
		detail = append(detail, r)
	}
	return detail, rows.Err()
}

func (s *Postgres) ExportRows(ctx context.Context) ([]models.ExportRow, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT sa.datetime, sa.total, COALESCE(sa.payment_type, ''),
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
		if err := rows.Scan(&r.Datetime, &r.Total, &r.PaymentType, &r.ProductID,
			&r.ProductName, &r.ProductSKU, &r.Quantity, &r.UnitPrice, &r.Subtotal, &r.HasItem); err != nil {
			return nil, unavailable(err)
		}
		export = append(export, r)
	}
	return export, rows.Err()
}

func (s *Postgres) AddCost(ctx context.Context, cost models.Cost) (*models.Cost, error) {
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
	err := s.pool.QueryRow(ctx,
		`INSERT INTO costs (id, date, product_id, product_name, cost, note)
		 VALUES ($1, $2, NULLIF($3, ''), $4, $5, NULLIF($6, ''))
		 RETURNING created_at`,
		cost.ID, cost.Date, cost.ProductID, cost.ProductName, cost.Cost, cost.Note,
	).Scan(&cost.CreatedAt)
	if err != nil {
		return nil, unavailable(err)
	}
	return &cost, nil
}

func (s *Postgres) ListCosts(ctx context.Context) ([]models.Cost, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, date, COALESCE(product_id, ''), COALESCE(product_name, ''),
		        cost, COALESCE(note, ''), created_at
		 FROM costs ORDER BY date DESC`)
	if err != nil {
		return nil, unavailable(err)
	}
	defer rows.Close()

	var costs []models.Cost
	for rows.Next() {
		var c models.Cost
		if err := rows.Scan(&c.ID, &c.Date, &c.ProductID, &c.ProductName, &c.Cost, &c.Note, &c.CreatedAt); err != nil {
			return nil, unavailable(err)
		}
		costs = append(costs, c)
	}
	return costs, rows.Err()
}

func (s *Postgres) WatchProducts(fn func([]models.Product)) func() {
	cancel := s.watch.subscribe(fn)
	if products, err := s.ListProducts(context.Background()); err == nil {
		fn(products)
	}
	return cancel
}

// applyProductUpdate merges a partial update onto the current record.
func applyProductUpdate(p models.Product, req models.UpdateProductRequest) models.Product {
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.SKU != nil {
		p.SKU = *req.SKU
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.Stock != nil {
		p.Stock = *req.Stock
	}
	return p
}
