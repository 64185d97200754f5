package config

import (
	"errors"
	"testing"

	"github.com/andresuchdata/kitchen-planner/internal/planner"
	"github.com/spf13/viper"
)

func TestFromViper_Defaults(t *testing.T) {
	cfg := FromViper(viper.New())

	if cfg.Server.Port != "8080" {
		t.Errorf("expected port 8080, got %s", cfg.Server.Port)
	}
	if cfg.BOM.Source != "static" {
		t.Errorf("expected static BOM source, got %q", cfg.BOM.Source)
	}
	if cfg.Planning.FillMissingInventory {
		t.Error("missing inventory must not be filled by default")
	}
	if cfg.Planning.DefaultStockGrams != 5000 {
		t.Errorf("expected default stock 5000, got %v", cfg.Planning.DefaultStockGrams)
	}

	pc, err := cfg.Planning.Configuration()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pc != planner.DefaultConfiguration() {
		t.Errorf("expected default planner configuration, got %+v", pc)
	}
}

func TestFromViper_EnvOverrides(t *testing.T) {
	t.Setenv("PLANNER_SAFETY_FACTOR_WEEKEND", "1.5")
	t.Setenv("PLANNER_WASTE_LIMIT_PERCENT", "8")
	t.Setenv("BOM_SOURCE", " Postgres ")
	t.Setenv("CACHE_ENABLED", "true")

	cfg := FromViper(viper.New())

	if cfg.BOM.Source != "postgres" {
		t.Errorf("expected normalized source postgres, got %q", cfg.BOM.Source)
	}
	if !cfg.Cache.Enabled {
		t.Error("expected cache enabled")
	}

	pc, err := cfg.Planning.Configuration()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pc.SafetyFactorWeekend != 1.5 || pc.WasteLimitRatio != 0.08 {
		t.Errorf("overrides not applied: %+v", pc)
	}
}

func TestPlanningConfiguration_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		p     PlanningConfig
		field string
	}{
		{"max below min", PlanningConfig{SafetyFactorNormal: 1, SafetyFactorWeekend: 1, MinStockDays: 4, MaxStockDays: 2, WasteLimitPercent: 5}, "max_stock_days"},
		{"percent above 100", PlanningConfig{SafetyFactorNormal: 1, SafetyFactorWeekend: 1, MinStockDays: 1, MaxStockDays: 2, WasteLimitPercent: 120}, "waste_limit_percent"},
		{"negative factor", PlanningConfig{SafetyFactorNormal: -1, SafetyFactorWeekend: 1, MinStockDays: 1, MaxStockDays: 2, WasteLimitPercent: 5}, "safety_factor_normal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.p.Configuration()
			var inErr *planner.InvalidInputError
			if !errors.As(err, &inErr) {
				t.Fatalf("expected InvalidInputError, got %v", err)
			}
			if inErr.Field != tt.field {
				t.Errorf("expected field %s, got %s", tt.field, inErr.Field)
			}
		})
	}
}
