package domain

import (
	"github.com/andresuchdata/kitchen-planner/internal/planner"
)

// DateLayout is the wire format for sales dates.
const DateLayout = "2006-01-02"

// PlanRequest is one evaluation's worth of operator input.
type PlanRequest struct {
	Date         string                     `json:"date"`
	QuantitySold *int                       `json:"quantity_sold"`
	DayType      string                     `json:"day_type"`
	Config       *ConfigOverrides           `json:"config,omitempty"`
	Inventory    map[string]IngredientInput `json:"inventory"`
}

// ConfigOverrides replaces individual session parameters for a single evaluation.
type ConfigOverrides struct {
	SafetyFactorNormal  *float64 `json:"safety_factor_normal,omitempty"`
	SafetyFactorWeekend *float64 `json:"safety_factor_weekend,omitempty"`
	MinStockDays        *float64 `json:"min_stock_days,omitempty"`
	MaxStockDays        *float64 `json:"max_stock_days,omitempty"`
	WasteLimitPercent   *float64 `json:"waste_limit_percent,omitempty"`
}

// IngredientInput carries the counted stock and logged waste for one ingredient.
// A nil field means the operator did not enter a value.
type IngredientInput struct {
	CurrentStock *float64 `json:"current_stock_g"`
	Waste        *float64 `json:"waste_g"`
}

// PlanResponse is the rendered result of an evaluation.
type PlanResponse struct {
	Date           string                   `json:"date"`
	DayType        planner.DayType          `json:"day_type"`
	QuantitySold   int                      `json:"quantity_sold"`
	SafetyFactor   float64                  `json:"safety_factor"`
	Config         planner.Configuration    `json:"config"`
	Usage          []planner.UsageResult    `json:"usage"`
	DeliveryStatus []planner.DeliveryStatus `json:"delivery_status"`
	WasteKPI       WasteKPIView             `json:"waste_kpi"`
	FilledDefaults []string                 `json:"filled_defaults,omitempty"`
}

// WasteKPIView adds display labels to the planner's KPI. The labels only render
// OverLimit; they never re-apply the threshold.
type WasteKPIView struct {
	planner.WasteKPI
	WastePercent string `json:"waste_percent"`
	Status       string `json:"status"`
	Message      string `json:"message"`
}

// NewWasteKPIView labels a KPI for display.
func NewWasteKPIView(kpi planner.WasteKPI) WasteKPIView {
	return WasteKPIView{
		WasteKPI:     kpi,
		WastePercent: FormatPercent(kpi.WasteRatio),
		Status:       WasteStatusLabel(kpi.OverLimit),
		Message:      WasteBanner(kpi.OverLimit),
	}
}

// NewPlanResponse renders a plan for transport.
func NewPlanResponse(plan planner.Plan) *PlanResponse {
	return &PlanResponse{
		Date:           plan.Sales.Date.Format(DateLayout),
		DayType:        plan.Sales.DayType,
		QuantitySold:   plan.Sales.QuantitySold,
		SafetyFactor:   plan.SafetyFactor,
		Config:         plan.Config,
		Usage:          plan.Results,
		DeliveryStatus: plan.DeliveryStatus(),
		WasteKPI:       NewWasteKPIView(plan.KPI),
	}
}

// BOMResponse lists the menu's bill of materials.
type BOMResponse struct {
	Source  string             `json:"source"`
	Entries []planner.BOMEntry `json:"entries"`
}

// ConfigResponse describes the session defaults applied when a request has no overrides.
type ConfigResponse struct {
	Config               planner.Configuration `json:"config"`
	WasteLimitPercent    float64               `json:"waste_limit_percent"`
	FillMissingInventory bool                  `json:"fill_missing_inventory"`
	DefaultStockGrams    float64               `json:"default_stock_g"`
	DefaultWasteGrams    float64               `json:"default_waste_g"`
}
