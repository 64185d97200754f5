package batch

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/andresuchdata/kitchen-planner/internal/domain"
	"github.com/andresuchdata/kitchen-planner/internal/planner"
	"github.com/andresuchdata/kitchen-planner/internal/report"
)

const (
	colDate         = "date"
	colQuantitySold = "quantity_sold"
	colDayType      = "day_type"
	stockPrefix     = "stock_"
	wastePrefix     = "waste_"
)

// Scenario is one day of replay input.
type Scenario struct {
	Line   int
	Sales  planner.SalesRecord
	States map[string]planner.IngredientState
}

// LineError ties a failure to the input line that caused it.
type LineError struct {
	Line int
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

type ingredientColumns struct {
	stock int
	waste int
}

// Reader decodes scenario lines against a fixed BOM.
type Reader struct {
	csv      *csv.Reader
	bom      []planner.BOMEntry
	defaults *planner.IngredientState
	now      func() time.Time

	date, qty, dayType int
	columns            map[string]ingredientColumns
	line               int
}

// NewReader reads and checks the header. When defaults is non-nil, missing stock or
// waste columns and blank cells take its values; otherwise they are errors.
// Ingredient columns match the BOM name exactly, falling back to a case-insensitive
// match when only one ingredient fits. Lines without a date are planned for today.
func NewReader(r io.Reader, bom []planner.BOMEntry, defaults *planner.IngredientState) (*Reader, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, &LineError{Line: 1, Err: fmt.Errorf("read header: %w", err)}
	}

	rd := &Reader{
		csv:      cr,
		bom:      bom,
		defaults: defaults,
		now:      time.Now,
		date:     -1,
		qty:      -1,
		dayType:  -1,
		columns:  make(map[string]ingredientColumns, len(bom)),
		line:     1,
	}
	if err := rd.mapHeader(header); err != nil {
		return nil, &LineError{Line: 1, Err: err}
	}
	return rd, nil
}

func (rd *Reader) mapHeader(header []string) error {
	exact := make(map[string]bool, len(rd.bom))
	byLower := make(map[string][]string, len(rd.bom))
	for _, e := range rd.bom {
		exact[e.Ingredient] = true
		lower := strings.ToLower(e.Ingredient)
		byLower[lower] = append(byLower[lower], e.Ingredient)
		rd.columns[e.Ingredient] = ingredientColumns{stock: -1, waste: -1}
	}

	for i, raw := range header {
		name := strings.TrimSpace(strings.TrimPrefix(raw, "\ufeff"))
		lower := strings.ToLower(name)
		switch {
		case lower == colDate:
			rd.date = i
		case lower == colQuantitySold:
			rd.qty = i
		case lower == colDayType:
			rd.dayType = i
		case hasPrefixFold(name, stockPrefix), hasPrefixFold(name, wastePrefix):
			// Only the first prefix is stripped, so "stock_waste_oil" names "waste_oil".
			isStock := hasPrefixFold(name, stockPrefix)
			suffix := name[len(stockPrefix):]
			if !isStock {
				suffix = name[len(wastePrefix):]
			}

			ingredient := suffix
			if !exact[suffix] {
				candidates := byLower[strings.ToLower(suffix)]
				switch len(candidates) {
				case 0:
					return &planner.InvalidInputError{Field: "header", Value: raw, Reason: "ingredient is not in the bill of materials"}
				case 1:
					ingredient = candidates[0]
				default:
					return &planner.InvalidInputError{Field: "header", Value: raw, Reason: "matches several ingredients; use the exact name"}
				}
			}

			cols := rd.columns[ingredient]
			if isStock {
				cols.stock = i
			} else {
				cols.waste = i
			}
			rd.columns[ingredient] = cols
		}
	}

	if rd.qty < 0 {
		return &planner.InvalidInputError{Field: "header", Value: colQuantitySold, Reason: "column is required"}
	}
	if rd.defaults == nil {
		for _, e := range rd.bom {
			cols := rd.columns[e.Ingredient]
			if cols.stock < 0 {
				return &planner.InvalidInputError{Field: "header", Value: stockPrefix + e.Ingredient, Reason: "column is required"}
			}
			if cols.waste < 0 {
				return &planner.InvalidInputError{Field: "header", Value: wastePrefix + e.Ingredient, Reason: "column is required"}
			}
		}
	}
	return nil
}

// Next returns the next scenario, or io.EOF when the input is exhausted.
func (rd *Reader) Next() (*Scenario, error) {
	for {
		record, err := rd.csv.Read()
		if err == io.EOF {
			return nil, io.EOF
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				rd.line = parseErr.Line
			}
			return nil, &LineError{Line: rd.line, Err: err}
		}
		rd.line, _ = rd.csv.FieldPos(0)
		if blankRecord(record) {
			continue
		}

		sc, err := rd.decode(record)
		if err != nil {
			return nil, &LineError{Line: rd.line, Err: err}
		}
		sc.Line = rd.line
		return sc, nil
	}
}

func (rd *Reader) decode(record []string) (*Scenario, error) {
	sc := &Scenario{States: make(map[string]planner.IngredientState, len(rd.bom))}

	rawQty := cell(record, rd.qty)
	qty, err := strconv.Atoi(rawQty)
	if err != nil {
		return nil, &planner.InvalidInputError{Field: colQuantitySold, Value: rawQty, Reason: "must be an integer"}
	}
	sc.Sales.QuantitySold = qty

	if raw := cell(record, rd.dayType); raw != "" {
		dt, err := planner.ParseDayType(raw)
		if err != nil {
			return nil, err
		}
		sc.Sales.DayType = dt
	}

	if raw := cell(record, rd.date); raw != "" {
		d, err := time.Parse(domain.DateLayout, raw)
		if err != nil {
			return nil, &planner.InvalidInputError{Field: colDate, Value: raw, Reason: "must be YYYY-MM-DD"}
		}
		sc.Sales.Date = d
	} else {
		now := rd.now()
		sc.Sales.Date = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	}

	for _, e := range rd.bom {
		cols := rd.columns[e.Ingredient]
		stock, err := rd.grams(record, cols.stock, stockPrefix+e.Ingredient, rd.defaultStock)
		if err != nil {
			return nil, err
		}
		waste, err := rd.grams(record, cols.waste, wastePrefix+e.Ingredient, rd.defaultWaste)
		if err != nil {
			return nil, err
		}
		sc.States[e.Ingredient] = planner.IngredientState{CurrentStock: stock, Waste: waste}
	}

	return sc, nil
}

func (rd *Reader) grams(record []string, idx int, field string, fallback func() (float64, bool)) (float64, error) {
	raw := cell(record, idx)
	if raw == "" {
		if v, ok := fallback(); ok {
			return v, nil
		}
		return 0, &planner.InvalidInputError{Field: field, Value: nil, Reason: "is required"}
	}
	v, err := report.ParseGrams(raw)
	if err != nil {
		return 0, &planner.InvalidInputError{Field: field, Value: raw, Reason: "must be a number with commas only between thousands"}
	}
	return v, nil
}

func (rd *Reader) defaultStock() (float64, bool) {
	if rd.defaults == nil {
		return 0, false
	}
	return rd.defaults.CurrentStock, true
}

func (rd *Reader) defaultWaste() (float64, bool) {
	if rd.defaults == nil {
		return 0, false
	}
	return rd.defaults.Waste, true
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

func cell(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

func blankRecord(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
