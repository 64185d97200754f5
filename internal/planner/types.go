package planner

import (
	"fmt"
	"strings"
	"time"
)

// DayType selects which safety factor applies to a day's sales.
type DayType int

const (
	DayTypeNormal DayType = iota
	DayTypeWeekend
)

var dayTypeLabels = map[DayType]string{
	DayTypeNormal:  "Normal",
	DayTypeWeekend: "Weekend",
}

func (d DayType) String() string {
	if label, ok := dayTypeLabels[d]; ok {
		return label
	}
	return fmt.Sprintf("DayType(%d)", int(d))
}

// ParseDayType returns the day type for a label (case-insensitive).
func ParseDayType(label string) (DayType, error) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "normal":
		return DayTypeNormal, nil
	case "weekend":
		return DayTypeWeekend, nil
	}
	return DayTypeNormal, &InvalidInputError{Field: "day_type", Value: label, Reason: "must be Normal or Weekend"}
}

func (d DayType) MarshalText() ([]byte, error) {
	if _, ok := dayTypeLabels[d]; !ok {
		return nil, fmt.Errorf("unknown day type %d", int(d))
	}
	return []byte(d.String()), nil
}

func (d *DayType) UnmarshalText(text []byte) error {
	parsed, err := ParseDayType(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// BOMEntry is one ingredient's consumption profile for the menu item.
type BOMEntry struct {
	Ingredient   string  `json:"ingredient"`
	UsagePerItem float64 `json:"usage_per_item_g"` // grams consumed per unit sold
}

// SalesRecord is a single day's sales observation.
type SalesRecord struct {
	Date         time.Time
	QuantitySold int
	DayType      DayType
}

// IngredientState holds the runtime inputs for one ingredient, in grams.
type IngredientState struct {
	CurrentStock float64
	Waste        float64
}

// UsageRow is the partial result produced by ComputeUsage.
type UsageRow struct {
	Ingredient string  `json:"ingredient"`
	DailyUsage float64 `json:"daily_usage_g"`
	MinStock   float64 `json:"min_stock_g"`
	MaxStock   float64 `json:"max_stock_g"`
}

// UsageResult is a usage row joined with the ingredient's inventory state.
type UsageResult struct {
	UsageRow
	CurrentStock float64 `json:"current_stock_g"`
	NeedDelivery bool    `json:"need_delivery"`
	Waste        float64 `json:"waste_g"`
}

// DeliveryStatus is the subset of a UsageResult shown in the delivery view.
type DeliveryStatus struct {
	Ingredient   string  `json:"ingredient"`
	CurrentStock float64 `json:"current_stock_g"`
	MinStock     float64 `json:"min_stock_g"`
	MaxStock     float64 `json:"max_stock_g"`
	NeedDelivery bool    `json:"need_delivery"`
}

// WasteKPI aggregates usage and waste across all ingredients.
type WasteKPI struct {
	TotalUsage float64 `json:"total_usage_g"`
	TotalWaste float64 `json:"total_waste_g"`
	WasteRatio float64 `json:"waste_ratio"`
	OverLimit  bool    `json:"over_limit"`
}

// Plan is the output of a full evaluation.
type Plan struct {
	Sales        SalesRecord
	SafetyFactor float64
	Config       Configuration
	Results      []UsageResult
	KPI          WasteKPI
}

// DeliveryStatus projects the plan's results onto the delivery view, in BOM order.
func (p Plan) DeliveryStatus() []DeliveryStatus {
	out := make([]DeliveryStatus, len(p.Results))
	for i, r := range p.Results {
		out[i] = DeliveryStatus{
			Ingredient:   r.Ingredient,
			CurrentStock: r.CurrentStock,
			MinStock:     r.MinStock,
			MaxStock:     r.MaxStock,
			NeedDelivery: r.NeedDelivery,
		}
	}
	return out
}

// DeliveriesNeeded returns how many ingredients are at or below their minimum.
func (p Plan) DeliveriesNeeded() int {
	n := 0
	for _, r := range p.Results {
		if r.NeedDelivery {
			n++
		}
	}
	return n
}

// DefaultBOM returns the pizza bill of materials the kitchen starts from.
func DefaultBOM() []BOMEntry {
	return []BOMEntry{
		{Ingredient: "Dough", UsagePerItem: 250},
		{Ingredient: "Cheese", UsagePerItem: 120},
		{Ingredient: "Sauce", UsagePerItem: 80},
	}
}
