package controllers

import (
	"ventas/models"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) GetProducts(c *fiber.Ctx) error {
	products, err := h.store.ListProducts(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"products": products})
}

func (h *Handler) GetProduct(c *fiber.Ctx) error {
	product, err := h.store.GetProduct(c.Context(), c.Params("product_id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(product)
}

func (h *Handler) AddProduct(c *fiber.Ctx) error {
	var req models.AddProductRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
	}

	product, err := h.store.AddProduct(c.Context(), req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Product added successfully",
		"product": product,
	})
}

func (h *Handler) UpdateProduct(c *fiber.Ctx) error {
	var req models.UpdateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
	}

	product, err := h.store.UpdateProduct(c.Context(), c.Params("product_id"), req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Product updated",
		"product": product,
	})
}

// AdjustStock applies a signed correction (restock or shrinkage) outside
// the sale path; the store enforces the same stock >= 0 rule.
func (h *Handler) AdjustStock(c *fiber.Ctx) error {
	var req models.AdjustStockRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
	}

	product, err := h.store.AdjustStock(c.Context(), c.Params("product_id"), req.Delta)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Stock adjusted",
		"product": product,
	})
}
