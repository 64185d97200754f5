package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/andresuchdata/kitchen-planner/internal/bom"
	"github.com/andresuchdata/kitchen-planner/internal/planner"
	"github.com/andresuchdata/kitchen-planner/internal/repository"
	"github.com/andresuchdata/kitchen-planner/internal/repository/postgres"
	"github.com/andresuchdata/kitchen-planner/pkg/logger"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/urfave/cli/v2"
)

type dbKey struct{}

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func seedBOMCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed-bom",
		Usage: "Replace the menu_bom table with a BOM file (or the built-in pizza BOM)",
		Flags: []cli.Flag{
			newDBURLFlag(),
			&cli.StringFlag{Name: "file", Usage: "CSV or XLSX BOM file; the built-in BOM when empty"},
		},
		Before: initDB,
		After:  closeDB,
		Action: seedBOM,
	}
}

func initDB(c *cli.Context) error {
	db, err := sql.Open("pgx", c.String("db-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.PingContext(withContext(c)); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	c.Context = context.WithValue(withContext(c), dbKey{}, postgres.Wrap(sqlx.NewDb(db, "pgx"), 1))
	return nil
}

func closeDB(c *cli.Context) error {
	if db, ok := c.Context.Value(dbKey{}).(*postgres.DB); ok && db != nil {
		return db.Close()
	}
	return nil
}

func seedBOM(c *cli.Context) error {
	db, ok := c.Context.Value(dbKey{}).(*postgres.DB)
	if !ok {
		return fmt.Errorf("database not initialized")
	}

	entries := planner.DefaultBOM()
	if path := c.String("file"); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open %s: %w", path, err)
		}
		defer f.Close()

		entries, err = bom.Parse(path, f)
		if err != nil {
			return err
		}
	}

	if err := repository.NewBOMRepository(db).Replace(withContext(c), entries); err != nil {
		return err
	}

	logger.Log.Info().Int("ingredients", len(entries)).Msg("seeded menu_bom")
	return nil
}
