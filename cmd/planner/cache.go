package main

import (
	"fmt"

	"github.com/andresuchdata/kitchen-planner/internal/cache"
	"github.com/andresuchdata/kitchen-planner/internal/config"
	"github.com/andresuchdata/kitchen-planner/pkg/logger"
	"github.com/urfave/cli/v2"
)

func cacheCommand(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Manage the plan result cache",
		Subcommands: []*cli.Command{
			{
				Name:  "clear",
				Usage: "Delete every cached plan",
				Action: func(c *cli.Context) error {
					if !cfg.Cache.Enabled {
						return fmt.Errorf("plan cache is disabled (CACHE_ENABLED=false)")
					}
					planCache, err := cache.NewPlanCache(cfg.Cache)
					if err != nil {
						return err
					}
					if err := planCache.InvalidateAll(withContext(c)); err != nil {
						return err
					}
					logger.Log.Info().Msg("plan cache cleared")
					return nil
				},
			},
		},
	}
}
