package main

import (
	"encoding/json"
	"os"

	"github.com/andresuchdata/kitchen-planner/internal/cache"
	"github.com/andresuchdata/kitchen-planner/internal/config"
	"github.com/andresuchdata/kitchen-planner/internal/domain"
	"github.com/andresuchdata/kitchen-planner/internal/report"
	"github.com/andresuchdata/kitchen-planner/internal/service"
	"github.com/urfave/cli/v2"
)

func planCommand(cfg *config.Config) *cli.Command {
	flags := []cli.Flag{
		&cli.StringFlag{Name: "date", Usage: "Sales date (YYYY-MM-DD), defaults to today"},
		&cli.IntFlag{Name: "sold", Usage: "Menu items sold", Required: true},
		&cli.StringFlag{Name: "day-type", Usage: "Normal or Weekend", Value: "Normal"},
		&cli.StringSliceFlag{Name: "stock", Usage: "Current stock as Name=grams (repeatable)"},
		&cli.StringSliceFlag{Name: "waste", Usage: "Logged waste as Name=grams (repeatable)"},
		&cli.BoolFlag{Name: "json", Usage: "Print the plan as JSON"},
		&cli.BoolFlag{Name: "delivery-only", Usage: "Print only the delivery status table"},
	}

	return &cli.Command{
		Name:  "plan",
		Usage: "Evaluate one day: usage, min/max stock, delivery flags and waste KPI",
		Flags: append(flags, configOverrideFlags()...),
		Action: func(c *cli.Context) error {
			return runPlan(c, cfg)
		},
	}
}

func runPlan(c *cli.Context, cfg *config.Config) error {
	sourceName, entries, err := loadBOM(c, cfg)
	if err != nil {
		return err
	}

	base, err := cfg.Planning.Configuration()
	if err != nil {
		return err
	}

	defaults := service.InventoryDefaultsFromConfig(cfg.Planning)
	if c.Bool("fill-defaults") {
		defaults.FillMissing = true
	}

	svc, err := service.NewPlannerService(sourceName, entries, base, defaults, cache.NewNoopPlanCache())
	if err != nil {
		return err
	}

	req, err := planRequestFromFlags(c)
	if err != nil {
		return err
	}

	resp, err := svc.Plan(withContext(c), req)
	if err != nil {
		return err
	}

	switch {
	case c.Bool("json"):
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	case c.Bool("delivery-only"):
		return report.WriteDelivery(os.Stdout, resp.DeliveryStatus)
	default:
		return report.WritePlan(os.Stdout, resp)
	}
}

func planRequestFromFlags(c *cli.Context) (domain.PlanRequest, error) {
	sold := c.Int("sold")
	req := domain.PlanRequest{
		Date:         c.String("date"),
		QuantitySold: &sold,
		DayType:      c.String("day-type"),
		Config:       overridesFromFlags(c),
	}

	stock, err := parseIngredientValues("stock", c.StringSlice("stock"))
	if err != nil {
		return req, err
	}
	waste, err := parseIngredientValues("waste", c.StringSlice("waste"))
	if err != nil {
		return req, err
	}

	req.Inventory = make(map[string]domain.IngredientInput, len(stock))
	for name, v := range stock {
		v := v
		req.Inventory[name] = domain.IngredientInput{CurrentStock: &v}
	}
	for name, v := range waste {
		v := v
		in := req.Inventory[name]
		in.Waste = &v
		req.Inventory[name] = in
	}
	return req, nil
}
