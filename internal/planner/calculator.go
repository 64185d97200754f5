package planner

import "fmt"

// ValidateBOM checks that the bill of materials is usable: non-empty, unique
// non-empty ingredient names and non-negative per-item usage.
func ValidateBOM(bom []BOMEntry) error {
	if len(bom) == 0 {
		return &ConfigurationError{Reason: "bill of materials has no ingredients"}
	}

	seen := make(map[string]struct{}, len(bom))
	for i, e := range bom {
		if e.Ingredient == "" {
			return invalid(fmt.Sprintf("bom[%d].ingredient", i), e.Ingredient, "must not be empty")
		}
		if _, dup := seen[e.Ingredient]; dup {
			return invalid(fmt.Sprintf("bom[%d].ingredient", i), e.Ingredient, "duplicate ingredient name")
		}
		seen[e.Ingredient] = struct{}{}

		if err := nonNegative(fmt.Sprintf("bom[%s].usage_per_item_g", e.Ingredient), e.UsagePerItem); err != nil {
			return err
		}
	}
	return nil
}

// ComputeUsage derives daily usage and the min/max stock bounds for every BOM entry.
// Rows come back in BOM order.
func ComputeUsage(bom []BOMEntry, sales SalesRecord, cfg Configuration) ([]UsageRow, error) {
	if err := ValidateBOM(bom); err != nil {
		return nil, err
	}
	if sales.QuantitySold < 0 {
		return nil, invalid("quantity_sold", sales.QuantitySold, "must be >= 0")
	}
	if _, ok := dayTypeLabels[sales.DayType]; !ok {
		return nil, invalid("day_type", int(sales.DayType), "unknown day type")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	factor := cfg.SafetyFactor(sales.DayType)
	qty := float64(sales.QuantitySold)

	rows := make([]UsageRow, len(bom))
	for i, e := range bom {
		daily := e.UsagePerItem * qty * factor
		rows[i] = UsageRow{
			Ingredient: e.Ingredient,
			DailyUsage: daily,
			MinStock:   daily * cfg.MinStockDays,
			MaxStock:   daily * cfg.MaxStockDays,
		}
	}
	return rows, nil
}

// ApplyInventoryState joins usage rows with each ingredient's stock and waste and
// flags ingredients at or below their minimum stock. Every ingredient in rows must have
// a state, and states may not name ingredients that are not in rows.
func ApplyInventoryState(rows []UsageRow, states map[string]IngredientState) ([]UsageResult, error) {
	known := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		known[r.Ingredient] = struct{}{}
	}
	for name := range states {
		if _, ok := known[name]; !ok {
			return nil, invalid("ingredient_states", name, "ingredient is not in the bill of materials")
		}
	}

	results := make([]UsageResult, len(rows))
	for i, r := range rows {
		st, ok := states[r.Ingredient]
		if !ok {
			return nil, invalid("ingredient_states", r.Ingredient, "missing stock and waste for ingredient")
		}
		if err := nonNegative(fmt.Sprintf("ingredient_states[%s].current_stock_g", r.Ingredient), st.CurrentStock); err != nil {
			return nil, err
		}
		if err := nonNegative(fmt.Sprintf("ingredient_states[%s].waste_g", r.Ingredient), st.Waste); err != nil {
			return nil, err
		}

		results[i] = UsageResult{
			UsageRow:     r,
			CurrentStock: st.CurrentStock,
			NeedDelivery: st.CurrentStock <= r.MinStock,
			Waste:        st.Waste,
		}
	}
	return results, nil
}

// ComputeWasteKPI totals usage and waste and classifies the waste ratio against the
// limit. A zero total usage yields a ratio of 0. Sums are accumulated in row order;
// differences from other summation orders are floating-point rounding only.
func ComputeWasteKPI(results []UsageResult, wasteLimitRatio float64) (WasteKPI, error) {
	if err := validateWasteLimit(wasteLimitRatio); err != nil {
		return WasteKPI{}, err
	}

	var kpi WasteKPI
	for _, r := range results {
		kpi.TotalUsage += r.DailyUsage
		kpi.TotalWaste += r.Waste
	}

	if kpi.TotalUsage > 0 {
		kpi.WasteRatio = kpi.TotalWaste / kpi.TotalUsage
	}
	kpi.OverLimit = kpi.WasteRatio > wasteLimitRatio

	return kpi, nil
}

// Evaluate runs the full planning pipeline: usage, inventory join, waste KPI.
func Evaluate(bom []BOMEntry, sales SalesRecord, states map[string]IngredientState, cfg Configuration) (Plan, error) {
	rows, err := ComputeUsage(bom, sales, cfg)
	if err != nil {
		return Plan{}, err
	}

	results, err := ApplyInventoryState(rows, states)
	if err != nil {
		return Plan{}, err
	}

	kpi, err := ComputeWasteKPI(results, cfg.WasteLimitRatio)
	if err != nil {
		return Plan{}, err
	}

	return Plan{
		Sales:        sales,
		SafetyFactor: cfg.SafetyFactor(sales.DayType),
		Config:       cfg,
		Results:      results,
		KPI:          kpi,
	}, nil
}
