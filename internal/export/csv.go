package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/tuanvumaihuynh/lfs/internal/model"
)

// Line is one exported product with its shop context.
type Line struct {
	Product  model.Product
	URL      string
	Category string
}

var genericCSVHeader = []string{"id", "sku", "name", "url", "price", "tax", "category", "stock"}

// Write renders lines with the given export script.
func Write(w io.Writer, script model.ExportScript, lines []Line) error {
	switch script {
	case model.ExportScriptGenericCSV:
		return writeGenericCSV(w, lines)
	default:
		return fmt.Errorf("unknown export script: %s", script)
	}
}

func writeGenericCSV(w io.Writer, lines []Line) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(genericCSVHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, l := range lines {
		p := l.Product
		record := []string{
			p.ID.String(),
			p.Sku,
			p.Name,
			l.URL,
			p.EffectivePrice().StringFixed(2),
			p.TaxRate.StringFixed(2),
			l.Category,
			strconv.Itoa(p.StockAmount),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write product %s: %w", p.ID, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
