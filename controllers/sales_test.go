package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"ventas/controllers"
	"ventas/models"
	"ventas/routes"
	"ventas/store"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestApp(t *testing.T) (*fiber.App, store.Store) {
	t.Helper()
	s, err := store.OpenLocal(filepath.Join(t.TempDir(), "ventas.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(s.Close)

	app := fiber.New()
	routes.RegisterRoutes(app, controllers.New(s, zap.NewNop()))
	return app, s
}

func postJSON(t *testing.T, app *fiber.App, path string, body any) (int, map[string]any) {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp.StatusCode, decoded
}

func TestCreateSaleEndpoint(t *testing.T) {
	app, s := newTestApp(t)
	ctx := context.Background()

	p, err := s.AddProduct(ctx, models.AddProductRequest{Name: "Coca-Cola", Price: 1000, Stock: 5})
	require.NoError(t, err)

	status, body := postJSON(t, app, "/sales", models.CreateSaleRequest{
		Items:       []models.BasketLine{{ProductID: p.ID, Quantity: 2}},
		PaymentType: "Efectivo",
	})
	require.Equal(t, fiber.StatusCreated, status)
	saleID, _ := body["sale_id"].(string)
	assert.True(t, strings.HasPrefix(saleID, "S-"))

	after, err := s.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, after.Stock)
}

func TestCreateSaleEndpointInsufficientStock(t *testing.T) {
	app, s := newTestApp(t)
	ctx := context.Background()

	p, err := s.AddProduct(ctx, models.AddProductRequest{Name: "Pan", Price: 500, Stock: 1})
	require.NoError(t, err)

	status, body := postJSON(t, app, "/sales", models.CreateSaleRequest{
		Items: []models.BasketLine{{ProductID: p.ID, Quantity: 2}},
	})
	require.Equal(t, fiber.StatusBadRequest, status)
	msg, _ := body["error"].(string)
	assert.Contains(t, msg, "insufficient stock for Pan")

	after, err := s.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, after.Stock)

	sales, err := s.ListSales(ctx)
	require.NoError(t, err)
	assert.Empty(t, sales)
}

func TestCreateSaleEndpointEmptyBasket(t *testing.T) {
	app, _ := newTestApp(t)

	status, body := postJSON(t, app, "/sales", models.CreateSaleRequest{})
	require.Equal(t, fiber.StatusBadRequest, status)
	msg, _ := body["error"].(string)
	assert.Contains(t, msg, "no items")
}

func TestAdjustStockEndpoint(t *testing.T) {
	app, s := newTestApp(t)
	ctx := context.Background()

	p, err := s.AddProduct(ctx, models.AddProductRequest{Name: "Velas", Price: 700, Stock: 5})
	require.NoError(t, err)

	status, _ := postJSON(t, app, "/products/"+p.ID+"/adjust-stock", models.AdjustStockRequest{Delta: -10})
	require.Equal(t, fiber.StatusBadRequest, status)

	after, err := s.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, after.Stock)
}

func TestExportEndpoint(t *testing.T) {
	app, s := newTestApp(t)
	ctx := context.Background()

	p, err := s.AddProduct(ctx, models.AddProductRequest{Name: "Agua", SKU: "AG-1", Price: 1500, Stock: 10})
	require.NoError(t, err)
	_, err = s.CreateSale(ctx, []models.BasketLine{{ProductID: p.ID, Quantity: 2}}, "Nequi")
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/export/sales.csv", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/csv")

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(raw), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t,
		"datetime,total,payment_type,product_id,product_name,product_sku,quantity,unit_price,subtotal",
		lines[0])
	assert.Contains(t, lines[1], "Nequi,"+p.ID+",Agua,AG-1,2,1500,3000")
}

func TestGetProductEndpointNotFound(t *testing.T) {
	app, _ := newTestApp(t)

	req := httptest.NewRequest("GET", "/products/P-nope", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
