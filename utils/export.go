package utils

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"time"

	"ventas/models"
)

// SalesCSVHeader is a positional contract with downstream spreadsheets;
// never reorder or rename these columns.
var SalesCSVHeader = []string{
	"datetime",
	"total",
	"payment_type",
	"product_id",
	"product_name",
	"product_sku",
	"quantity",
	"unit_price",
	"subtotal",
}

// SalesCSV renders export rows as CSV. A sale without items still gets one
// row, with the item columns left blank.
func SalesCSV(rows []models.ExportRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(SalesCSVHeader); err != nil {
		return nil, err
	}
	for _, r := range rows {
		record := []string{
			r.Datetime.UTC().Format(time.RFC3339),
			money(r.Total),
			r.PaymentType,
			"", "", "", "", "", "",
		}
		if r.HasItem {
			record[3] = r.ProductID
			record[4] = r.ProductName
			record[5] = r.ProductSKU
			record[6] = strconv.Itoa(r.Quantity)
			record[7] = money(r.UnitPrice)
			record[8] = money(r.Subtotal)
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
