package store

import (
	"context"
	"strings"

	"ventas/models"

	"github.com/google/uuid"
)

// Store is the catalog, sale-transaction and query surface shared by the
// Postgres and embedded backends. Handlers only ever talk to this interface.
type Store interface {
	// catalog
	ListProducts(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	AddProduct(ctx context.Context, req models.AddProductRequest) (*models.Product, error)
	UpdateProduct(ctx context.Context, id string, req models.UpdateProductRequest) (*models.Product, error)
	AdjustStock(ctx context.Context, id string, delta int) (*models.Product, error)

	// customers
	ListCustomers(ctx context.Context) ([]models.Customer, error)
	AddCustomer(ctx context.Context, req models.AddCustomerRequest) (*models.Customer, error)

	// sales
	CreateSale(ctx context.Context, basket []models.BasketLine, paymentType string) (string, error)
	ListSales(ctx context.Context) ([]models.Sale, error)
	SaleItems(ctx context.Context, saleID string) ([]models.SaleItemDetail, error)
	SalesDetailed(ctx context.Context) ([]models.SaleDetailRow, error)
	ExportRows(ctx context.Context) ([]models.ExportRow, error)

	// costs
	AddCost(ctx context.Context, cost models.Cost) (*models.Cost, error)
	ListCosts(ctx context.Context) ([]models.Cost, error)

	// WatchProducts calls fn with the full product list immediately and
	// again after every product mutation. The returned func unsubscribes.
	// The sale engine never reads from this view.
	WatchProducts(fn func([]models.Product)) func()

	Close()
}

// NewID builds a prefixed opaque identifier, e.g. "S-4f1c...".
func NewID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

func validateAddProduct(req models.AddProductRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return invalid("product name is required")
	}
	if req.Price < 0 {
		return invalid("price must not be negative")
	}
	if req.Stock < 0 {
		return invalid("stock must not be negative")
	}
	return nil
}

func validateAddCustomer(req models.AddCustomerRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return invalid("customer name is required")
	}
	if req.Email != "" && !strings.Contains(req.Email, "@") {
		return invalid("email looks malformed")
	}
	if req.Phone != "" && strings.Trim(req.Phone, "0123456789+ -()") != "" {
		return invalid("phone looks malformed")
	}
	return nil
}

func validateCost(c models.Cost) error {
	if c.Cost < 0 {
		return invalid("cost must not be negative")
	}
	if c.ProductID == "" && strings.TrimSpace(c.ProductName) == "" {
		return invalid("cost needs a product reference or a product name")
	}
	return nil
}
