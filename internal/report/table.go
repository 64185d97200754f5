package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/andresuchdata/kitchen-planner/internal/domain"
	"github.com/andresuchdata/kitchen-planner/internal/planner"
)

func newTabWriter(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
}

// WriteBOM prints the bill of materials as a table.
func WriteBOM(w io.Writer, bom []planner.BOMEntry) error {
	tw := newTabWriter(w)
	fmt.Fprintln(tw, "INGREDIENT\tUSAGE PER ITEM (g)\t")
	for _, e := range bom {
		fmt.Fprintf(tw, "%s\t%s\t\n", e.Ingredient, FormatGrams(e.UsagePerItem, 1))
	}
	return tw.Flush()
}

// WritePlan prints the usage table, the delivery view and the waste KPI block.
func WritePlan(w io.Writer, resp *domain.PlanResponse) error {
	fmt.Fprintf(w, "Date: %s  Day type: %s  Sold: %d  Safety factor: %s\n\n",
		resp.Date, resp.DayType, resp.QuantitySold, formatFloat(resp.SafetyFactor))

	if err := writeUsage(w, resp.Usage); err != nil {
		return err
	}
	fmt.Fprintln(w)

	if err := writeDelivery(w, resp.DeliveryStatus); err != nil {
		return err
	}
	fmt.Fprintln(w)

	return writeKPI(w, resp.WasteKPI)
}

// WriteDelivery prints only the delivery view.
func WriteDelivery(w io.Writer, rows []planner.DeliveryStatus) error {
	return writeDelivery(w, rows)
}

func writeUsage(w io.Writer, rows []planner.UsageResult) error {
	tw := newTabWriter(w)
	fmt.Fprintln(tw, "INGREDIENT\tDAILY USAGE (g)\tMIN STOCK (g)\tMAX STOCK (g)\t")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n",
			r.Ingredient,
			FormatGrams(r.DailyUsage, 1),
			FormatGrams(r.MinStock, 1),
			FormatGrams(r.MaxStock, 1),
		)
	}
	return tw.Flush()
}

func writeDelivery(w io.Writer, rows []planner.DeliveryStatus) error {
	tw := newTabWriter(w)
	fmt.Fprintln(tw, "INGREDIENT\tCURRENT (g)\tMIN (g)\tMAX (g)\tNEED DELIVERY\t")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t\n",
			r.Ingredient,
			FormatGrams(r.CurrentStock, 1),
			FormatGrams(r.MinStock, 1),
			FormatGrams(r.MaxStock, 1),
			yesNo(r.NeedDelivery),
		)
	}
	return tw.Flush()
}

func writeKPI(w io.Writer, kpi domain.WasteKPIView) error {
	_, err := fmt.Fprintf(w, "Total usage: %s g\nTotal waste: %s g\nWaste: %s (%s)\n%s\n",
		FormatGrams(kpi.TotalUsage, 0),
		FormatGrams(kpi.TotalWaste, 0),
		kpi.WastePercent,
		kpi.Status,
		kpi.Message,
	)
	return err
}
