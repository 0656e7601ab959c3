package controllers

import (
	"errors"

	"ventas/store"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type Handler struct {
	store store.Store
	log   *zap.Logger
}

func New(st store.Store, log *zap.Logger) *Handler {
	return &Handler{store: st, log: log}
}

func (h *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "healthy"})
}

// fail maps store errors onto HTTP statuses. The message is the wrapped
// error text, specific enough for the client to show directly.
func (h *Handler) fail(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrEmptyBasket),
		errors.Is(err, store.ErrInvalidQuantity),
		errors.Is(err, store.ErrInsufficientStock),
		errors.Is(err, store.ErrInvalidInput):
		status = fiber.StatusBadRequest
	case errors.Is(err, store.ErrProductNotFound),
		errors.Is(err, store.ErrCustomerNotFound),
		errors.Is(err, store.ErrSaleNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, store.ErrStoreUnavailable):
		status = fiber.StatusServiceUnavailable
	}
	if status >= 500 {
		h.log.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
