package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/andresuchdata/kitchen-planner/internal/bom"
	"github.com/andresuchdata/kitchen-planner/internal/config"
	"github.com/andresuchdata/kitchen-planner/internal/domain"
	"github.com/andresuchdata/kitchen-planner/internal/planner"
	"github.com/andresuchdata/kitchen-planner/pkg/logger"
	"github.com/urfave/cli/v2"
)

func main() {
	cfg := config.Load()
	logger.Configure(cfg.Log.Level, cfg.Log.Format)

	app := &cli.App{
		Name:  "planner",
		Usage: "Kitchen ingredient planning: usage, reorder thresholds and waste KPI",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "bom-file",
				Usage:   "Load the bill of materials from a CSV or XLSX file instead of BOM_SOURCE",
				EnvVars: []string{"PLANNER_BOM_FILE"},
			},
		},
		Commands: []*cli.Command{
			planCommand(cfg),
			batchCommand(cfg),
			bomCommand(cfg),
			seedBOMCommand(),
			cacheCommand(cfg),
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Log.Error().Err(err).Msg("planner failed")
		os.Exit(1)
	}
}

// configOverrideFlags are shared by commands that evaluate plans.
func configOverrideFlags() []cli.Flag {
	return []cli.Flag{
		&cli.Float64Flag{Name: "safety-normal", Usage: "Safety factor for normal days"},
		&cli.Float64Flag{Name: "safety-weekend", Usage: "Safety factor for weekend days"},
		&cli.Float64Flag{Name: "min-days", Usage: "Days of usage held as minimum stock"},
		&cli.Float64Flag{Name: "max-days", Usage: "Days of usage held as maximum stock"},
		&cli.Float64Flag{Name: "waste-limit-percent", Usage: "Acceptable waste as a percentage of usage"},
		&cli.BoolFlag{Name: "fill-defaults", Usage: "Use default stock and waste for ingredients without input"},
	}
}

func overridesFromFlags(c *cli.Context) *domain.ConfigOverrides {
	o := &domain.ConfigOverrides{}
	set := false
	pick := func(name string) *float64 {
		if !c.IsSet(name) {
			return nil
		}
		set = true
		v := c.Float64(name)
		return &v
	}

	o.SafetyFactorNormal = pick("safety-normal")
	o.SafetyFactorWeekend = pick("safety-weekend")
	o.MinStockDays = pick("min-days")
	o.MaxStockDays = pick("max-days")
	o.WasteLimitPercent = pick("waste-limit-percent")

	if !set {
		return nil
	}
	return o
}

// loadBOM honours --bom-file, falling back to the configured source.
func loadBOM(c *cli.Context, cfg *config.Config) (string, []planner.BOMEntry, error) {
	var source bom.Source
	closeSource := func() error { return nil }

	if path := c.String("bom-file"); path != "" {
		source = bom.FileSource{Path: path}
	} else {
		var err error
		source, closeSource, err = bom.NewSourceFromConfig(c.Context, cfg)
		if err != nil {
			return "", nil, err
		}
	}
	defer closeSource()

	entries, err := source.Load(c.Context)
	if err != nil {
		return "", nil, fmt.Errorf("load bill of materials from %s: %w", source.Name(), err)
	}
	return source.Name(), entries, nil
}

// parseIngredientValues parses repeated Name=grams flag values.
func parseIngredientValues(flag string, values []string) (map[string]float64, error) {
	out := make(map[string]float64, len(values))
	for _, raw := range values {
		name, value, ok := strings.Cut(raw, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, &planner.InvalidInputError{Field: flag, Value: raw, Reason: "must be Name=grams"}
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, &planner.InvalidInputError{Field: flag, Value: raw, Reason: "grams must be a number"}
		}
		out[name] = v
	}
	return out, nil
}

func withContext(c *cli.Context) context.Context {
	if c.Context != nil {
		return c.Context
	}
	return context.Background()
}
