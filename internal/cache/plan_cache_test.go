package cache

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/andresuchdata/kitchen-planner/internal/config"
	"github.com/andresuchdata/kitchen-planner/internal/domain"
	"github.com/andresuchdata/kitchen-planner/internal/planner"
)

func baseKeyInputs() ([]planner.BOMEntry, planner.Configuration, planner.SalesRecord, map[string]planner.IngredientState) {
	sales := planner.SalesRecord{
		Date:         time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC),
		QuantitySold: 40,
		DayType:      planner.DayTypeNormal,
	}
	states := map[string]planner.IngredientState{
		"Dough":  {CurrentStock: 5000},
		"Cheese": {CurrentStock: 5000},
		"Sauce":  {CurrentStock: 5000, Waste: 12},
	}
	return planner.DefaultBOM(), planner.DefaultConfiguration(), sales, states
}

func TestPlanKey_StableAcrossMapOrder(t *testing.T) {
	bom, cfg, sales, states := baseKeyInputs()
	first := PlanKey(bom, cfg, sales, states)

	for i := 0; i < 20; i++ {
		copied := make(map[string]planner.IngredientState, len(states))
		for k, v := range states {
			copied[k] = v
		}
		if got := PlanKey(bom, cfg, sales, copied); got != first {
			t.Fatalf("key changed between runs: %s vs %s", first, got)
		}
	}
	if !strings.HasPrefix(first, "plan:") {
		t.Errorf("unexpected key prefix: %s", first)
	}
}

func TestPlanKey_SensitiveToEveryInput(t *testing.T) {
	bom, cfg, sales, states := baseKeyInputs()
	base := PlanKey(bom, cfg, sales, states)

	mutations := map[string]func() string{
		"bom usage": func() string {
			b := planner.DefaultBOM()
			b[0].UsagePerItem = 251
			return PlanKey(b, cfg, sales, states)
		},
		"bom order": func() string {
			b := planner.DefaultBOM()
			b[0], b[1] = b[1], b[0]
			return PlanKey(b, cfg, sales, states)
		},
		"config": func() string {
			c := cfg
			c.MaxStockDays = 4
			return PlanKey(bom, c, sales, states)
		},
		"day type": func() string {
			s := sales
			s.DayType = planner.DayTypeWeekend
			return PlanKey(bom, cfg, s, states)
		},
		"quantity": func() string {
			s := sales
			s.QuantitySold = 41
			return PlanKey(bom, cfg, s, states)
		},
		"date": func() string {
			s := sales
			s.Date = s.Date.AddDate(0, 0, 1)
			return PlanKey(bom, cfg, s, states)
		},
		"waste": func() string {
			st := map[string]planner.IngredientState{
				"Dough":  {CurrentStock: 5000},
				"Cheese": {CurrentStock: 5000},
				"Sauce":  {CurrentStock: 5000, Waste: 13},
			}
			return PlanKey(bom, cfg, sales, st)
		},
	}

	for name, mutate := range mutations {
		if mutate() == base {
			t.Errorf("%s: key did not change", name)
		}
	}
}

func TestNoopPlanCache(t *testing.T) {
	c, err := NewPlanCache(config.CacheConfig{Enabled: false})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx := context.Background()
	if err := c.Set(ctx, "plan:x", &domain.PlanResponse{QuantitySold: 1}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, ok, err := c.Get(ctx, "plan:x"); ok || err != nil {
		t.Errorf("noop cache returned ok=%v err=%v", ok, err)
	}
}

func TestBuildRedisOptions(t *testing.T) {
	opts, err := buildRedisOptions(config.CacheConfig{RedisHost: "cache", RedisPort: "6380", RedisDB: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Addr != "cache:6380" || opts.DB != 2 {
		t.Errorf("unexpected options %+v", opts)
	}

	opts, err = buildRedisOptions(config.CacheConfig{RedisURL: "redis://:secret@redis.local:6379/3"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Addr != "redis.local:6379" || opts.DB != 3 || opts.Password != "secret" {
		t.Errorf("unexpected options from url %+v", opts)
	}

	if _, err := buildRedisOptions(config.CacheConfig{RedisURL: "http://nope"}); err == nil {
		t.Error("expected error for non-redis url")
	}
}

func TestTTLFromConfig(t *testing.T) {
	if got := ttlFromConfig(config.CacheConfig{}); got != time.Minute {
		t.Errorf("expected default ttl, got %v", got)
	}
	if got := ttlFromConfig(config.CacheConfig{PlanTTLSeconds: 5}); got != 5*time.Second {
		t.Errorf("expected 5s, got %v", got)
	}
}
