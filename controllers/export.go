package controllers

import (
	"fmt"
	"time"

	"ventas/utils"

	"github.com/gofiber/fiber/v2"
)

// ExportSalesCSV streams every sale as CSV, one row per item. Downstream
// reads the columns positionally.
func (h *Handler) ExportSalesCSV(c *fiber.Ctx) error {
	rows, err := h.store.ExportRows(c.Context())
	if err != nil {
		return h.fail(c, err)
	}

	csvBytes, err := utils.SalesCSV(rows)
	if err != nil {
		return h.fail(c, err)
	}

	filename := fmt.Sprintf("ventas_%s.csv", time.Now().UTC().Format("2006-01-02"))
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(csvBytes)
}
