package service

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/andresuchdata/kitchen-planner/internal/cache"
	"github.com/andresuchdata/kitchen-planner/internal/domain"
	"github.com/andresuchdata/kitchen-planner/internal/planner"
)

type fakePlanCache struct {
	store  map[string]*domain.PlanResponse
	gets   int
	sets   int
	getErr error
}

func newFakePlanCache() *fakePlanCache {
	return &fakePlanCache{store: map[string]*domain.PlanResponse{}}
}

func (f *fakePlanCache) Get(ctx context.Context, key string) (*domain.PlanResponse, bool, error) {
	f.gets++
	if f.getErr != nil {
		return nil, false, f.getErr
	}
	resp, ok := f.store[key]
	return resp, ok, nil
}

func (f *fakePlanCache) Set(ctx context.Context, key string, plan *domain.PlanResponse) error {
	f.sets++
	f.store[key] = plan
	return nil
}

func (f *fakePlanCache) InvalidateAll(ctx context.Context) error {
	f.store = map[string]*domain.PlanResponse{}
	return nil
}

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func fullInventory(stock, waste float64) map[string]domain.IngredientInput {
	return map[string]domain.IngredientInput{
		"Dough":  {CurrentStock: floatPtr(stock), Waste: floatPtr(waste)},
		"Cheese": {CurrentStock: floatPtr(stock), Waste: floatPtr(waste)},
		"Sauce":  {CurrentStock: floatPtr(stock), Waste: floatPtr(waste)},
	}
}

func newTestService(t *testing.T, defaults InventoryDefaults, c cache.PlanCache) *PlannerService {
	t.Helper()
	svc, err := NewPlannerService("static", planner.DefaultBOM(), planner.DefaultConfiguration(), defaults, c)
	if err != nil {
		t.Fatalf("NewPlannerService: %v", err)
	}
	svc.now = func() time.Time { return time.Date(2026, 10, 17, 15, 4, 5, 0, time.Local) }
	return svc
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func TestNewPlannerService_RejectsBadSetup(t *testing.T) {
	if _, err := NewPlannerService("static", nil, planner.DefaultConfiguration(), InventoryDefaults{}, nil); err == nil {
		t.Error("expected error for empty BOM")
	}

	cfg := planner.DefaultConfiguration()
	cfg.MinStockDays = -1
	if _, err := NewPlannerService("static", planner.DefaultBOM(), cfg, InventoryDefaults{}, nil); err == nil {
		t.Error("expected error for invalid base configuration")
	}
}

func TestPlan_DefaultScenario(t *testing.T) {
	svc := newTestService(t, InventoryDefaults{}, newFakePlanCache())

	resp, err := svc.Plan(context.Background(), domain.PlanRequest{
		QuantitySold: intPtr(40),
		Inventory:    fullInventory(5000, 0),
	})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}

	if resp.Date != "2026-10-17" {
		t.Errorf("expected today's date, got %s", resp.Date)
	}
	if resp.DayType != planner.DayTypeNormal {
		t.Errorf("expected Normal day, got %v", resp.DayType)
	}

	want := map[string]float64{"Dough": 11000, "Cheese": 5280, "Sauce": 3520}
	wantDelivery := map[string]bool{"Dough": true, "Cheese": true, "Sauce": false}
	for _, row := range resp.Usage {
		if !approx(row.DailyUsage, want[row.Ingredient]) {
			t.Errorf("%s: daily usage %v, want %v", row.Ingredient, row.DailyUsage, want[row.Ingredient])
		}
		if row.NeedDelivery != wantDelivery[row.Ingredient] {
			t.Errorf("%s: need delivery %v, want %v", row.Ingredient, row.NeedDelivery, wantDelivery[row.Ingredient])
		}
	}
	if !approx(resp.WasteKPI.TotalUsage, 19800) || resp.WasteKPI.OverLimit {
		t.Errorf("unexpected KPI %+v", resp.WasteKPI)
	}
	if resp.WasteKPI.Status != "OK" {
		t.Errorf("expected OK status, got %s", resp.WasteKPI.Status)
	}
}

func TestPlan_WeekendAndOverrides(t *testing.T) {
	svc := newTestService(t, InventoryDefaults{}, newFakePlanCache())

	resp, err := svc.Plan(context.Background(), domain.PlanRequest{
		Date:         "2026-10-18",
		QuantitySold: intPtr(10),
		DayType:      "weekend",
		Config:       &domain.ConfigOverrides{SafetyFactorWeekend: floatPtr(2), WasteLimitPercent: floatPtr(10)},
		Inventory:    fullInventory(100000, 0),
	})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}

	if resp.SafetyFactor != 2 {
		t.Errorf("expected override factor 2, got %v", resp.SafetyFactor)
	}
	if !approx(resp.Config.WasteLimitRatio, 0.1) {
		t.Errorf("expected waste limit 0.1, got %v", resp.Config.WasteLimitRatio)
	}
	if !approx(resp.Usage[0].DailyUsage, 5000) {
		t.Errorf("expected Dough usage 5000, got %v", resp.Usage[0].DailyUsage)
	}
	if resp.Usage[0].NeedDelivery {
		t.Error("expected no delivery with ample stock")
	}
}

func TestPlan_InvalidRequests(t *testing.T) {
	svc := newTestService(t, InventoryDefaults{}, newFakePlanCache())

	tests := []struct {
		name  string
		req   domain.PlanRequest
		field string
	}{
		{
			name:  "missing quantity",
			req:   domain.PlanRequest{Inventory: fullInventory(1, 0)},
			field: "quantity_sold",
		},
		{
			name:  "negative quantity",
			req:   domain.PlanRequest{QuantitySold: intPtr(-1), Inventory: fullInventory(1, 0)},
			field: "quantity_sold",
		},
		{
			name:  "bad day type",
			req:   domain.PlanRequest{QuantitySold: intPtr(1), DayType: "holiday", Inventory: fullInventory(1, 0)},
			field: "day_type",
		},
		{
			name:  "bad date",
			req:   domain.PlanRequest{QuantitySold: intPtr(1), Date: "17/10/2026", Inventory: fullInventory(1, 0)},
			field: "date",
		},
		{
			name: "missing stock value",
			req: domain.PlanRequest{QuantitySold: intPtr(1), Inventory: map[string]domain.IngredientInput{
				"Dough": {Waste: floatPtr(0)},
			}},
			field: "inventory[Dough].current_stock_g",
		},
		{
			name: "missing ingredient",
			req: domain.PlanRequest{QuantitySold: intPtr(1), Inventory: map[string]domain.IngredientInput{
				"Dough": {CurrentStock: floatPtr(1), Waste: floatPtr(0)},
			}},
			field: "ingredient_states",
		},
		{
			name:  "bad waste percent",
			req:   domain.PlanRequest{QuantitySold: intPtr(1), Config: &domain.ConfigOverrides{WasteLimitPercent: floatPtr(150)}, Inventory: fullInventory(1, 0)},
			field: "waste_limit_percent",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Plan(context.Background(), tt.req)
			var inv *planner.InvalidInputError
			if !errors.As(err, &inv) {
				t.Fatalf("expected InvalidInputError, got %v", err)
			}
			if inv.Field != tt.field {
				t.Errorf("expected field %s, got %s", tt.field, inv.Field)
			}
		})
	}
}

func TestPlan_OverrideMaxBelowMin(t *testing.T) {
	svc := newTestService(t, InventoryDefaults{}, newFakePlanCache())
	_, err := svc.Plan(context.Background(), domain.PlanRequest{
		QuantitySold: intPtr(1),
		Config:       &domain.ConfigOverrides{MaxStockDays: floatPtr(0.5)},
		Inventory:    fullInventory(1, 0),
	})
	if err == nil {
		t.Fatal("expected error when max stock days < min stock days")
	}
}

func TestPlan_FillMissingInventory(t *testing.T) {
	svc := newTestService(t, InventoryDefaults{FillMissing: true, Stock: 5000, Waste: 0}, newFakePlanCache())

	resp, err := svc.Plan(context.Background(), domain.PlanRequest{
		QuantitySold: intPtr(40),
		Inventory: map[string]domain.IngredientInput{
			"Dough": {CurrentStock: floatPtr(20000), Waste: floatPtr(100)},
			"Sauce": {Waste: floatPtr(50)},
		},
	})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}

	if len(resp.FilledDefaults) != 2 || resp.FilledDefaults[0] != "Cheese" || resp.FilledDefaults[1] != "Sauce" {
		t.Errorf("unexpected filled defaults %v", resp.FilledDefaults)
	}
	byName := map[string]planner.UsageResult{}
	for _, r := range resp.Usage {
		byName[r.Ingredient] = r
	}
	if byName["Cheese"].CurrentStock != 5000 || byName["Sauce"].CurrentStock != 5000 || byName["Sauce"].Waste != 50 {
		t.Errorf("defaults not applied: %+v", byName)
	}
	if byName["Dough"].NeedDelivery {
		t.Error("Dough has 20000g against 11000g minimum, expected no delivery")
	}
}

func TestPlan_UsesCache(t *testing.T) {
	c := newFakePlanCache()
	svc := newTestService(t, InventoryDefaults{}, c)
	req := domain.PlanRequest{Date: "2026-10-17", QuantitySold: intPtr(40), Inventory: fullInventory(5000, 10)}

	first, err := svc.Plan(context.Background(), req)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	second, err := svc.Plan(context.Background(), req)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}

	if c.sets != 1 {
		t.Errorf("expected exactly one cache write, got %d", c.sets)
	}
	if c.gets != 2 || len(c.store) != 1 {
		t.Errorf("expected two lookups against one stored plan, got gets=%d stored=%d", c.gets, len(c.store))
	}
	if first.WasteKPI.TotalWaste != second.WasteKPI.TotalWaste {
		t.Error("cached plan differs from evaluated plan")
	}
}

func TestPlan_CacheErrorFallsThrough(t *testing.T) {
	c := newFakePlanCache()
	c.getErr = errors.New("redis down")
	svc := newTestService(t, InventoryDefaults{}, c)

	if _, err := svc.Plan(context.Background(), domain.PlanRequest{QuantitySold: intPtr(1), Inventory: fullInventory(1, 0)}); err != nil {
		t.Fatalf("expected evaluation despite cache error, got %v", err)
	}
}

func TestDefaultsAndBOM(t *testing.T) {
	svc := newTestService(t, InventoryDefaults{FillMissing: true, Stock: 5000}, nil)

	d := svc.Defaults()
	if !approx(d.WasteLimitPercent, 5) || !d.FillMissingInventory || d.DefaultStockGrams != 5000 {
		t.Errorf("unexpected defaults %+v", d)
	}

	b := svc.BOM()
	b.Entries[0].UsagePerItem = 999
	if svc.BOM().Entries[0].UsagePerItem != 250 {
		t.Error("BOM() must return a copy")
	}
}
