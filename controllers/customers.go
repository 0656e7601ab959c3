package controllers

import (
	"ventas/models"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) GetCustomers(c *fiber.Ctx) error {
	customers, err := h.store.ListCustomers(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(customers)
}

func (h *Handler) CreateCustomer(c *fiber.Ctx) error {
	var req models.AddCustomerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
	}

	customer, err := h.store.AddCustomer(c.Context(), req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":  "customer created",
		"customer": customer,
	})
}
