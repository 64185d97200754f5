package report

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/andresuchdata/kitchen-planner/internal/domain"
)

// CSVHeader is the column layout of plan CSV output, one line per ingredient.
var CSVHeader = []string{
	"date",
	"day_type",
	"quantity_sold",
	"ingredient",
	"daily_usage_g",
	"min_stock_g",
	"max_stock_g",
	"current_stock_g",
	"need_delivery",
	"waste_g",
	"waste_ratio",
	"waste_status",
}

// CSVWriter writes plans as CSV rows. The header is written before the first plan.
type CSVWriter struct {
	w             *csv.Writer
	headerWritten bool
}

func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{w: csv.NewWriter(w)}
}

func (cw *CSVWriter) WritePlan(resp *domain.PlanResponse) error {
	if !cw.headerWritten {
		if err := cw.w.Write(CSVHeader); err != nil {
			return err
		}
		cw.headerWritten = true
	}

	for _, r := range resp.Usage {
		record := []string{
			resp.Date,
			resp.DayType.String(),
			strconv.Itoa(resp.QuantitySold),
			r.Ingredient,
			formatFloat(r.DailyUsage),
			formatFloat(r.MinStock),
			formatFloat(r.MaxStock),
			formatFloat(r.CurrentStock),
			strconv.FormatBool(r.NeedDelivery),
			formatFloat(r.Waste),
			formatFloat(resp.WasteKPI.WasteRatio),
			resp.WasteKPI.Status,
		}
		if err := cw.w.Write(record); err != nil {
			return err
		}
	}
	return nil
}

// Flush writes any buffered rows and reports the first write error.
func (cw *CSVWriter) Flush() error {
	cw.w.Flush()
	return cw.w.Error()
}
