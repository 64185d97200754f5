package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/andresuchdata/kitchen-planner/internal/cache"
	"github.com/andresuchdata/kitchen-planner/internal/config"
	"github.com/andresuchdata/kitchen-planner/internal/domain"
	"github.com/andresuchdata/kitchen-planner/internal/planner"
	"github.com/rs/zerolog/log"
)

// InventoryDefaults controls whether missing stock or waste inputs are filled in
// before evaluation, and with which values.
type InventoryDefaults struct {
	FillMissing bool
	Stock       float64
	Waste       float64
}

func InventoryDefaultsFromConfig(p config.PlanningConfig) InventoryDefaults {
	return InventoryDefaults{
		FillMissing: p.FillMissingInventory,
		Stock:       p.DefaultStockGrams,
		Waste:       p.DefaultWasteGrams,
	}
}

type PlannerService struct {
	bom       []planner.BOMEntry
	bomSource string
	base      planner.Configuration
	defaults  InventoryDefaults
	cache     cache.PlanCache
	now       func() time.Time
}

// NewPlannerService validates the BOM and base configuration once for the session.
func NewPlannerService(bomSource string, bom []planner.BOMEntry, base planner.Configuration, defaults InventoryDefaults, cacheImpl cache.PlanCache) (*PlannerService, error) {
	if err := planner.ValidateBOM(bom); err != nil {
		return nil, err
	}
	if err := base.Validate(); err != nil {
		return nil, err
	}
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopPlanCache()
	}

	return &PlannerService{
		bom:       append([]planner.BOMEntry(nil), bom...),
		bomSource: bomSource,
		base:      base,
		defaults:  defaults,
		cache:     cacheImpl,
		now:       time.Now,
	}, nil
}

func (s *PlannerService) BOM() domain.BOMResponse {
	return domain.BOMResponse{
		Source:  s.bomSource,
		Entries: append([]planner.BOMEntry(nil), s.bom...),
	}
}

func (s *PlannerService) Defaults() domain.ConfigResponse {
	return domain.ConfigResponse{
		Config:               s.base,
		WasteLimitPercent:    s.base.WasteLimitRatio * 100,
		FillMissingInventory: s.defaults.FillMissing,
		DefaultStockGrams:    s.defaults.Stock,
		DefaultWasteGrams:    s.defaults.Waste,
	}
}

// Plan evaluates one request against the session BOM.
func (s *PlannerService) Plan(ctx context.Context, req domain.PlanRequest) (*domain.PlanResponse, error) {
	sales, err := s.salesRecord(req)
	if err != nil {
		return nil, err
	}

	cfg, err := ApplyOverrides(s.base, req.Config)
	if err != nil {
		return nil, err
	}

	states, filled, err := s.ingredientStates(req.Inventory)
	if err != nil {
		return nil, err
	}

	key := cache.PlanKey(s.bom, cfg, sales, states)
	if cached, ok, err := s.cache.Get(ctx, key); err == nil && ok {
		// Explicit and filled-in values hash the same; report this request's fills.
		hit := *cached
		hit.FilledDefaults = filled
		return &hit, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("planner: cache get failed")
	}

	plan, err := planner.Evaluate(s.bom, sales, states, cfg)
	if err != nil {
		return nil, err
	}

	resp := domain.NewPlanResponse(plan)
	resp.FilledDefaults = filled

	log.Debug().
		Str("date", resp.Date).
		Str("day_type", sales.DayType.String()).
		Int("quantity_sold", sales.QuantitySold).
		Int("deliveries", plan.DeliveriesNeeded()).
		Bool("waste_over_limit", plan.KPI.OverLimit).
		Msg("planner: evaluated")

	if err := s.cache.Set(ctx, key, resp); err != nil {
		log.Warn().Err(err).Msg("planner: cache set failed")
	}

	return resp, nil
}

func (s *PlannerService) salesRecord(req domain.PlanRequest) (planner.SalesRecord, error) {
	var sales planner.SalesRecord

	if req.QuantitySold == nil {
		return sales, &planner.InvalidInputError{Field: "quantity_sold", Value: nil, Reason: "is required"}
	}
	sales.QuantitySold = *req.QuantitySold

	if strings.TrimSpace(req.DayType) != "" {
		dt, err := planner.ParseDayType(req.DayType)
		if err != nil {
			return sales, err
		}
		sales.DayType = dt
	}

	if date := strings.TrimSpace(req.Date); date != "" {
		parsed, err := time.Parse(domain.DateLayout, date)
		if err != nil {
			return sales, &planner.InvalidInputError{Field: "date", Value: req.Date, Reason: "must be YYYY-MM-DD"}
		}
		sales.Date = parsed
	} else {
		now := s.now()
		sales.Date = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	}

	return sales, nil
}

// ingredientStates converts the request inventory. With FillMissing off, a nil stock
// or waste value is an error and absent ingredients are left for the planner to reject.
func (s *PlannerService) ingredientStates(inventory map[string]domain.IngredientInput) (map[string]planner.IngredientState, []string, error) {
	states := make(map[string]planner.IngredientState, len(inventory))
	var filled []string

	for name, in := range inventory {
		if in.CurrentStock == nil || in.Waste == nil {
			if !s.defaults.FillMissing {
				field := "inventory[" + name + "].current_stock_g"
				if in.CurrentStock != nil {
					field = "inventory[" + name + "].waste_g"
				}
				return nil, nil, &planner.InvalidInputError{Field: field, Value: nil, Reason: "is required"}
			}
			filled = append(filled, name)
		}

		st := planner.IngredientState{CurrentStock: s.defaults.Stock, Waste: s.defaults.Waste}
		if in.CurrentStock != nil {
			st.CurrentStock = *in.CurrentStock
		}
		if in.Waste != nil {
			st.Waste = *in.Waste
		}
		states[name] = st
	}

	if s.defaults.FillMissing {
		for _, e := range s.bom {
			if _, ok := states[e.Ingredient]; !ok {
				filled = append(filled, e.Ingredient)
			}
		}
		states = planner.FillMissingStates(s.bom, states, s.defaults.Stock, s.defaults.Waste)
	}

	sort.Strings(filled)
	return states, filled, nil
}

// ApplyOverrides returns base with every non-nil override applied, validated.
func ApplyOverrides(base planner.Configuration, o *domain.ConfigOverrides) (planner.Configuration, error) {
	cfg := base
	if o != nil {
		if o.SafetyFactorNormal != nil {
			cfg.SafetyFactorNormal = *o.SafetyFactorNormal
		}
		if o.SafetyFactorWeekend != nil {
			cfg.SafetyFactorWeekend = *o.SafetyFactorWeekend
		}
		if o.MinStockDays != nil {
			cfg.MinStockDays = *o.MinStockDays
		}
		if o.MaxStockDays != nil {
			cfg.MaxStockDays = *o.MaxStockDays
		}
		if o.WasteLimitPercent != nil {
			ratio, err := planner.WasteLimitFromPercent(*o.WasteLimitPercent)
			if err != nil {
				return planner.Configuration{}, err
			}
			cfg.WasteLimitRatio = ratio
		}
	}

	if err := cfg.Validate(); err != nil {
		return planner.Configuration{}, err
	}
	return cfg, nil
}
