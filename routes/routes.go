package routes

import (
	"ventas/controllers"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(app *fiber.App, h *controllers.Handler) {

	app.Get("/health", h.Health)

	//catalog
	app.Get("/products", h.GetProducts)
	app.Post("/products", h.AddProduct)
	app.Get("/products/:product_id", h.GetProduct)
	app.Put("/products/:product_id", h.UpdateProduct)
	app.Post("/products/:product_id/adjust-stock", h.AdjustStock)

	//customers
	app.Get("/customers", h.GetCustomers)
	app.Post("/customers", h.CreateCustomer)

	//pos
	app.Post("/sales", h.CreateSale)
	app.Get("/sales", h.GetSales)
	app.Get("/sales/detailed", h.GetSalesDetailed)
	app.Get("/sales/:sale_id/items", h.GetSaleItems)

	//costs
	app.Get("/costs", h.GetCosts)
	app.Post("/costs", h.AddCost)

	//export
	app.Get("/export/sales.csv", h.ExportSalesCSV)

}
