package store

import (
	"context"
	"testing"

	"ventas/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddAndGetProduct(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := seedProduct(t, s, "Galletas", 2500, 8)
	assert.NotEmpty(t, p.ID)
	assert.False(t, p.CreatedAt.IsZero())

	got, err := s.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Galletas", got.Name)
	assert.Equal(t, "SKU-Galletas", got.SKU)
	assert.Equal(t, 2500.0, got.Price)
	assert.Equal(t, 8, got.Stock)

	_, err = s.GetProduct(ctx, "P-nope")
	require.ErrorIs(t, err, ErrProductNotFound)
}

func TestAddProductValidation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.AddProduct(ctx, models.AddProductRequest{Name: "  ", Price: 10})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = s.AddProduct(ctx, models.AddProductRequest{Name: "Mal", Price: -1})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = s.AddProduct(ctx, models.AddProductRequest{Name: "Mal", Price: 1, Stock: -2})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestListProductsOrderedByName(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedProduct(t, s, "Zanahoria", 100, 1)
	seedProduct(t, s, "Ajo", 200, 1)

	products, err := s.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Ajo", products[0].Name)
	assert.Equal(t, "Zanahoria", products[1].Name)
}

func TestUpdateProductPartial(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p := seedProduct(t, s, "Jabon", 1200, 4)

	newName := "Jabon artesanal"
	newStock := 9
	updated, err := s.UpdateProduct(ctx, p.ID, models.UpdateProductRequest{
		Name:  &newName,
		Stock: &newStock,
	})
	require.NoError(t, err)
	assert.Equal(t, "Jabon artesanal", updated.Name)
	assert.Equal(t, 9, updated.Stock)
	// untouched fields survive
	assert.Equal(t, 1200.0, updated.Price)
	assert.Equal(t, "SKU-Jabon", updated.SKU)

	badPrice := -5.0
	_, err = s.UpdateProduct(ctx, p.ID, models.UpdateProductRequest{Price: &badPrice})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = s.UpdateProduct(ctx, "P-nope", models.UpdateProductRequest{Name: &newName})
	require.ErrorIs(t, err, ErrProductNotFound)
}

func TestAdjustStock(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p := seedProduct(t, s, "Velas", 700, 5)

	// restock
	up, err := s.AdjustStock(ctx, p.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, 12, up.Stock)

	// shrinkage within bounds
	down, err := s.AdjustStock(ctx, p.ID, -12)
	require.NoError(t, err)
	assert.Equal(t, 0, down.Stock)

	// below zero is refused and nothing changes
	_, err = s.AdjustStock(ctx, p.ID, -1)
	require.ErrorIs(t, err, ErrInsufficientStock)
	after, err := s.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, after.Stock)

	_, err = s.AdjustStock(ctx, "P-nope", 1)
	require.ErrorIs(t, err, ErrProductNotFound)
}

func TestAdjustStockBelowZeroKeepsStock(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p := seedProduct(t, s, "Miel", 9000, 5)

	_, err := s.AdjustStock(ctx, p.ID, -10)
	require.ErrorIs(t, err, ErrInsufficientStock)

	after, err := s.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, after.Stock)
}

func TestWatchProducts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedProduct(t, s, "Inicial", 100, 1)

	var snapshots [][]models.Product
	cancel := s.WatchProducts(func(products []models.Product) {
		snapshots = append(snapshots, products)
	})

	// initial snapshot arrives synchronously
	require.Len(t, snapshots, 1)
	assert.Len(t, snapshots[0], 1)

	p := seedProduct(t, s, "Nuevo", 200, 3)
	require.Len(t, snapshots, 2)
	assert.Len(t, snapshots[1], 2)

	_, err := s.AdjustStock(ctx, p.ID, 2)
	require.NoError(t, err)
	require.Len(t, snapshots, 3)

	cancel()
	seedProduct(t, s, "Despues", 300, 1)
	assert.Len(t, snapshots, 3)
}

func TestCustomers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	c, err := s.AddCustomer(ctx, models.AddCustomerRequest{
		Name:     "Maria",
		Phone:    "+57 300 123 4567",
		Email:    "maria@example.com",
		Interest: "velas aromaticas",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, c.ID)

	_, err = s.AddCustomer(ctx, models.AddCustomerRequest{Name: ""})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = s.AddCustomer(ctx, models.AddCustomerRequest{Name: "Pedro", Email: "not-an-email"})
	require.ErrorIs(t, err, ErrInvalidInput)

	customers, err := s.ListCustomers(ctx)
	require.NoError(t, err)
	require.Len(t, customers, 1)
	assert.Equal(t, "Maria", customers[0].Name)
	assert.Equal(t, "velas aromaticas", customers[0].Interest)
}

func TestCosts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p := seedProduct(t, s, "Harina", 3500, 10)

	// product-linked cost picks up the catalog name
	c, err := s.AddCost(ctx, models.Cost{ProductID: p.ID, Cost: 1200, Note: "reposicion"})
	require.NoError(t, err)
	assert.Equal(t, "Harina", c.ProductName)
	assert.False(t, c.Date.IsZero())

	// free-text cost with no catalog reference
	_, err = s.AddCost(ctx, models.Cost{ProductName: "bolsas", Cost: 300})
	require.NoError(t, err)

	_, err = s.AddCost(ctx, models.Cost{ProductName: "x", Cost: -1})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = s.AddCost(ctx, models.Cost{Cost: 10})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = s.AddCost(ctx, models.Cost{ProductID: "P-nope", Cost: 10})
	require.ErrorIs(t, err, ErrProductNotFound)

	costs, err := s.ListCosts(ctx)
	require.NoError(t, err)
	assert.Len(t, costs, 2)
}
