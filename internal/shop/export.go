package shop

import (
	"encoding/csv"
	"io"

	"github.com/shopspring/decimal"
)

var cartCSVHeader = []string{"productId", "name", "price", "qty", "total"}

// WriteCartCSV renders cart lines as CSV with a line total column.
func WriteCartCSV(w io.Writer, lines []CartLine) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(cartCSVHeader); err != nil {
		return err
	}
	for _, line := range lines {
		total := line.Price.Mul(decimal.NewFromInt(int64(line.Qty)))
		record := []string{
			line.ProductID,
			line.Name,
			line.Price.String(),
			decimal.NewFromInt(int64(line.Qty)).String(),
			total.String(),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
