package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/andresuchdata/kitchen-planner/internal/bom"
	"github.com/andresuchdata/kitchen-planner/internal/config"
	"github.com/andresuchdata/kitchen-planner/internal/report"
	"github.com/andresuchdata/kitchen-planner/pkg/logger"
	"github.com/urfave/cli/v2"
)

func bomCommand(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "bom",
		Usage: "Inspect and share the menu bill of materials",
		Subcommands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Print the bill of materials from the configured source",
				Action: func(c *cli.Context) error {
					name, entries, err := loadBOM(c, cfg)
					if err != nil {
						return err
					}
					fmt.Fprintf(os.Stdout, "Source: %s\n\n", name)
					return report.WriteBOM(os.Stdout, entries)
				},
			},
			{
				Name:  "publish",
				Usage: "Validate a local BOM file and upload it to object storage",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "file", Usage: "Local CSV or XLSX file", Required: true},
					&cli.StringFlag{Name: "key", Usage: "Object key (defaults to BOM_OBJECT_KEY)"},
				},
				Action: func(c *cli.Context) error {
					return publishBOM(c, cfg)
				},
			},
			{
				Name:  "remote",
				Usage: "List BOM files in object storage",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "prefix", Usage: "Key prefix", Value: "bom/"},
				},
				Action: func(c *cli.Context) error {
					store, err := bom.NewObjectStorage(cfg.Storage)
					if err != nil {
						return err
					}
					objects, err := store.ListObjects(withContext(c), c.String("prefix"))
					if err != nil {
						return err
					}
					for _, obj := range objects {
						fmt.Fprintf(os.Stdout, "%s\t%d\n", obj.Key, obj.Size)
					}
					return nil
				},
			},
		},
	}
}

func publishBOM(c *cli.Context, cfg *config.Config) error {
	path := c.String("file")
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	// Refuse to publish anything the planner would not accept.
	entries, err := bom.Parse(path, bytes.NewReader(data))
	if err != nil {
		return err
	}

	key := c.String("key")
	if key == "" {
		key = cfg.BOM.ObjectKey
	}
	if filepath.Ext(key) != filepath.Ext(path) {
		return fmt.Errorf("object key %q must keep the %s extension of %s", key, filepath.Ext(path), path)
	}

	store, err := bom.NewObjectStorage(cfg.Storage)
	if err != nil {
		return err
	}
	if err := store.UploadObject(withContext(c), key, data); err != nil {
		return err
	}

	logger.Log.Info().Str("key", key).Int("ingredients", len(entries)).Msg("published bill of materials")
	return nil
}
