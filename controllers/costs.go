package controllers

import (
	"time"

	"ventas/models"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) GetCosts(c *fiber.Ctx) error {
	costs, err := h.store.ListCosts(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(costs)
}

func (h *Handler) AddCost(c *fiber.Ctx) error {
	var req models.AddCostRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
	}

	var date time.Time
	if req.Date != "" {
		var err error
		date, err = parseDate(req.Date)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid date, use YYYY-MM-DD"})
		}
	}

	cost, err := h.store.AddCost(c.Context(), models.Cost{
		Date:        date,
		ProductID:   req.ProductID,
		ProductName: req.ProductName,
		Cost:        req.Cost,
		Note:        req.Note,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "cost recorded",
		"cost":    cost,
	})
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
