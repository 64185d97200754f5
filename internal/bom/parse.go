package bom

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/andresuchdata/kitchen-planner/internal/planner"
	"github.com/andresuchdata/kitchen-planner/internal/report"
	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

var columnNameSanitizer = strings.NewReplacer(" ", "", "_", "", ".", "", "-", "", "(", "", ")", "")

func normalizeColumnName(name string) string {
	name = strings.TrimSpace(strings.ToLower(name))
	return columnNameSanitizer.Replace(name)
}

// Parse reads a BOM table from r, choosing the format from name's extension.
func Parse(name string, r io.Reader) ([]planner.BOMEntry, error) {
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".csv":
		return ParseCSV(r)
	case ".xlsx":
		return ParseXLSX(r)
	default:
		return nil, fmt.Errorf("unsupported BOM file extension %q for %s", ext, name)
	}
}

// ParseCSV reads a BOM with an ingredient column and a per-item usage column in grams.
func ParseCSV(r io.Reader) ([]planner.BOMEntry, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "read BOM csv")
	}
	return fromRecords(records)
}

// ParseXLSX reads the BOM from the first sheet of a workbook.
func ParseXLSX(r io.Reader) ([]planner.BOMEntry, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "open BOM workbook")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("BOM workbook has no sheets")
	}

	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.Wrapf(err, "read rows from sheet %s", sheets[0])
	}
	return fromRecords(records)
}

func fromRecords(records [][]string) ([]planner.BOMEntry, error) {
	if len(records) == 0 {
		return nil, &planner.ConfigurationError{Reason: "BOM table is empty"}
	}
	header := records[0]

	colIndex := func(names ...string) int {
		targets := make(map[string]struct{}, len(names))
		for _, name := range names {
			targets[normalizeColumnName(name)] = struct{}{}
		}
		for i, h := range header {
			if _, ok := targets[normalizeColumnName(h)]; ok {
				return i
			}
		}
		return -1
	}

	idxIngredient := colIndex("ingredient", "ingredient name")
	idxUsage := colIndex("usage_per_item_g", "usage_per_item", "usage per item (g)", "grams per item")
	if idxIngredient < 0 || idxUsage < 0 {
		return nil, fmt.Errorf("BOM header %v must contain ingredient and usage_per_item_g columns", header)
	}

	entries := make([]planner.BOMEntry, 0, len(records)-1)
	for line, record := range records[1:] {
		get := func(idx int) string {
			if idx >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[idx])
		}

		name := get(idxIngredient)
		if name == "" {
			continue
		}

		raw := get(idxUsage)
		usage, err := report.ParseGrams(raw)
		if err != nil {
			return nil, &planner.InvalidInputError{
				Field:  fmt.Sprintf("bom line %d usage_per_item_g", line+2),
				Value:  raw,
				Reason: "not a number",
			}
		}

		entries = append(entries, planner.BOMEntry{Ingredient: name, UsagePerItem: usage})
	}

	if err := planner.ValidateBOM(entries); err != nil {
		return nil, err
	}
	return entries, nil
}
