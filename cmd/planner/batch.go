package main

import (
	"fmt"
	"io"
	"os"

	"github.com/andresuchdata/kitchen-planner/internal/batch"
	"github.com/andresuchdata/kitchen-planner/internal/config"
	"github.com/andresuchdata/kitchen-planner/internal/domain"
	"github.com/andresuchdata/kitchen-planner/internal/planner"
	"github.com/andresuchdata/kitchen-planner/internal/service"
	"github.com/urfave/cli/v2"
)

func batchCommand(cfg *config.Config) *cli.Command {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:     "input",
			Aliases:  []string{"i"},
			Usage:    "CSV of daily inputs: date, quantity_sold, day_type, stock_<Ingredient>, waste_<Ingredient>",
			Required: true,
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Report CSV path (stdout when empty)",
		},
	}

	return &cli.Command{
		Name:  "batch",
		Usage: "Replay a CSV of daily inputs through the planner",
		Flags: append(flags, configOverrideFlags()...),
		Action: func(c *cli.Context) error {
			return runBatch(c, cfg)
		},
	}
}

func runBatch(c *cli.Context, cfg *config.Config) error {
	_, entries, err := loadBOM(c, cfg)
	if err != nil {
		return err
	}

	base, err := cfg.Planning.Configuration()
	if err != nil {
		return err
	}
	effective, err := service.ApplyOverrides(base, overridesFromFlags(c))
	if err != nil {
		return err
	}

	runner := &batch.Runner{BOM: entries, Config: effective}
	if c.Bool("fill-defaults") || cfg.Planning.FillMissingInventory {
		runner.Defaults = &planner.IngredientState{
			CurrentStock: cfg.Planning.DefaultStockGrams,
			Waste:        cfg.Planning.DefaultWasteGrams,
		}
	}

	in, err := os.Open(c.String("input"))
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer in.Close()

	var out io.Writer = os.Stdout
	if path := c.String("output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		out = f
	}

	summary, err := runner.Run(withContext(c), in, out)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "days=%d deliveries=%d over_limit_days=%d max_waste=%s range=%s..%s\n",
		summary.Days,
		summary.Deliveries,
		summary.OverLimitDays,
		domain.FormatPercent(summary.MaxWasteRatio),
		summary.FirstDate,
		summary.LastDate,
	)
	return nil
}
