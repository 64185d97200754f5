package repository

import (
	"context"
	"fmt"

	"github.com/andresuchdata/kitchen-planner/internal/planner"
	"github.com/andresuchdata/kitchen-planner/internal/repository/postgres"
	"github.com/jmoiron/sqlx"
)

// Schema for the menu BOM. position keeps the caller-visible ingredient order.
const BOMSchema = `
CREATE TABLE IF NOT EXISTS menu_bom (
    position         INTEGER          NOT NULL,
    ingredient       TEXT             NOT NULL UNIQUE,
    usage_per_item_g DOUBLE PRECISION NOT NULL CHECK (usage_per_item_g >= 0)
)`

type BOMRepository interface {
	List(ctx context.Context) ([]planner.BOMEntry, error)
	Replace(ctx context.Context, entries []planner.BOMEntry) error
}

type bomRow struct {
	Position     int     `db:"position"`
	Ingredient   string  `db:"ingredient"`
	UsagePerItem float64 `db:"usage_per_item_g"`
}

type bomRepository struct {
	db *postgres.DB
}

func NewBOMRepository(db *postgres.DB) BOMRepository {
	return &bomRepository{db: db}
}

func (r *bomRepository) List(ctx context.Context) ([]planner.BOMEntry, error) {
	query := `
		SELECT position, ingredient, usage_per_item_g
		FROM menu_bom
		ORDER BY position ASC
	`

	var rows []bomRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("error listing menu bom: %w", err)
	}

	entries := make([]planner.BOMEntry, len(rows))
	for i, row := range rows {
		entries[i] = planner.BOMEntry{Ingredient: row.Ingredient, UsagePerItem: row.UsagePerItem}
	}
	return entries, nil
}

// Replace swaps the whole BOM in one transaction after validating it.
func (r *bomRepository) Replace(ctx context.Context, entries []planner.BOMEntry) error {
	if err := planner.ValidateBOM(entries); err != nil {
		return err
	}

	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, BOMSchema); err != nil {
			return fmt.Errorf("error ensuring menu_bom table: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM menu_bom`); err != nil {
			return fmt.Errorf("error clearing menu bom: %w", err)
		}

		rows := make([]bomRow, len(entries))
		for i, e := range entries {
			rows[i] = bomRow{Position: i + 1, Ingredient: e.Ingredient, UsagePerItem: e.UsagePerItem}
		}

		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO menu_bom (position, ingredient, usage_per_item_g)
			VALUES (:position, :ingredient, :usage_per_item_g)
		`, rows)
		if err != nil {
			return fmt.Errorf("error inserting menu bom: %w", err)
		}
		return nil
	})
}
