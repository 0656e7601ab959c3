package controllers

import (
	"ventas/models"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) CreateSale(c *fiber.Ctx) error {
	var req models.CreateSaleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
	}

	saleID, err := h.store.CreateSale(c.Context(), req.Items, req.PaymentType)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Sale created and stock updated",
		"sale_id": saleID,
	})
}

func (h *Handler) GetSales(c *fiber.Ctx) error {
	sales, err := h.store.ListSales(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(sales)
}

func (h *Handler) GetSalesDetailed(c *fiber.Ctx) error {
	rows, err := h.store.SalesDetailed(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(rows)
}

func (h *Handler) GetSaleItems(c *fiber.Ctx) error {
	items, err := h.store.SaleItems(c.Context(), c.Params("sale_id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"items": items})
}
