package bom

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/andresuchdata/kitchen-planner/internal/config"
	"github.com/andresuchdata/kitchen-planner/internal/planner"
	"github.com/andresuchdata/kitchen-planner/internal/storage"
	"github.com/xuri/excelize/v2"
)

func TestParseCSV(t *testing.T) {
	input := "Ingredient,Usage_per_Item_g\nDough,250\nCheese, 120\n,\nSauce,\"1,080.5\"\n"

	entries, err := ParseCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []planner.BOMEntry{
		{Ingredient: "Dough", UsagePerItem: 250},
		{Ingredient: "Cheese", UsagePerItem: 120},
		{Ingredient: "Sauce", UsagePerItem: 1080.5},
	}
	if len(entries) != len(want) {
		t.Fatalf("expected %d entries, got %d: %+v", len(want), len(entries), entries)
	}
	for i := range want {
		if entries[i] != want[i] {
			t.Errorf("entry %d: expected %+v, got %+v", i, want[i], entries[i])
		}
	}
}

func TestParseCSV_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		check func(error) bool
	}{
		{"missing usage column", "ingredient,grams\nDough,1\n", func(err error) bool { return err != nil }},
		{"not a number", "ingredient,usage_per_item_g\nDough,lots\n", func(err error) bool {
			var inErr *planner.InvalidInputError
			return errors.As(err, &inErr)
		}},
		{"decimal comma", "ingredient,usage_per_item_g\nDough,\"1,5\"\n", func(err error) bool {
			var inErr *planner.InvalidInputError
			return errors.As(err, &inErr) && inErr.Value == "1,5"
		}},
		{"duplicate", "ingredient,usage_per_item_g\nDough,1\nDough,2\n", func(err error) bool {
			var inErr *planner.InvalidInputError
			return errors.As(err, &inErr)
		}},
		{"header only", "ingredient,usage_per_item_g\n", func(err error) bool {
			var cfgErr *planner.ConfigurationError
			return errors.As(err, &cfgErr)
		}},
		{"empty file", "", func(err error) bool {
			var cfgErr *planner.ConfigurationError
			return errors.As(err, &cfgErr)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCSV(strings.NewReader(tt.input))
			if !tt.check(err) {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestParseXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		{"Ingredient", "Usage per item (g)"},
		{"Dough", 250},
		{"Cheese", 120},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatal(err)
	}

	entries, err := Parse("menu.XLSX", &buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 || entries[0].Ingredient != "Dough" || entries[1].UsagePerItem != 120 {
		t.Errorf("unexpected entries: %+v", entries)
	}
}

func TestParse_UnsupportedExtension(t *testing.T) {
	if _, err := Parse("bom.json", strings.NewReader("{}")); err == nil {
		t.Fatal("expected error for json")
	}
}

func TestStaticSource(t *testing.T) {
	entries, err := StaticSource{}.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 3 || entries[0].Ingredient != "Dough" {
		t.Errorf("expected default pizza BOM, got %+v", entries)
	}

	_, err = StaticSource{Entries: []planner.BOMEntry{}}.Load(context.Background())
	var cfgErr *planner.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Errorf("expected ConfigurationError for empty BOM, got %v", err)
	}
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bom.csv")
	if err := os.WriteFile(path, []byte("ingredient,usage_per_item_g\nDough,250\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	entries, err := FileSource{Path: path}.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 1 || entries[0].UsagePerItem != 250 {
		t.Errorf("unexpected entries: %+v", entries)
	}

	if _, err := (FileSource{Path: filepath.Join(t.TempDir(), "nope.csv")}).Load(context.Background()); err == nil {
		t.Error("expected error for missing file")
	}
}

type fakeStorage struct {
	objects map[string][]byte
}

func (f *fakeStorage) ListObjects(ctx context.Context, prefix string) ([]storage.ObjectInfo, error) {
	return nil, nil
}

func (f *fakeStorage) GetObject(ctx context.Context, key string) ([]byte, error) {
	data, ok := f.objects[key]
	if !ok {
		return nil, errors.New("no such key")
	}
	return data, nil
}

func (f *fakeStorage) UploadObject(ctx context.Context, key string, data []byte) error {
	f.objects[key] = data
	return nil
}

func TestObjectSource(t *testing.T) {
	store := &fakeStorage{objects: map[string][]byte{
		"bom/menu.csv": []byte("ingredient,usage_per_item_g\nDough,250\nBasil,3\n"),
	}}

	entries, err := ObjectSource{Storage: store, Key: "bom/menu.csv"}.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 || entries[1].Ingredient != "Basil" {
		t.Errorf("unexpected entries: %+v", entries)
	}

	if _, err := (ObjectSource{Storage: store, Key: "missing.csv"}).Load(context.Background()); err == nil {
		t.Error("expected error for missing object")
	}
}

type fakeDrive struct {
	folder, name string
	content      string
}

func (f fakeDrive) OpenFile(ctx context.Context, folderPath, name string) (io.ReadCloser, error) {
	if folderPath != f.folder || name != f.name {
		return nil, errors.New("not found")
	}
	return io.NopCloser(strings.NewReader(f.content)), nil
}

func TestDriveSource(t *testing.T) {
	d := fakeDrive{folder: "Ops/BOM", name: "bom.csv", content: "ingredient,usage_per_item_g\nCheese,120\n"}

	entries, err := DriveSource{Drive: d, FolderPath: "Ops/BOM", FileName: "bom.csv"}.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 1 || entries[0].Ingredient != "Cheese" {
		t.Errorf("unexpected entries: %+v", entries)
	}
}

type fakeLister []planner.BOMEntry

func (f fakeLister) List(ctx context.Context) ([]planner.BOMEntry, error) { return f, nil }

func TestRepositorySource_ValidatesRows(t *testing.T) {
	_, err := RepositorySource{Repo: fakeLister{}}.Load(context.Background())
	var cfgErr *planner.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Errorf("expected ConfigurationError for empty table, got %v", err)
	}
}

func TestNewSourceFromConfig(t *testing.T) {
	cfg := &config.Config{}

	src, closeFn, err := NewSourceFromConfig(context.Background(), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer closeFn()
	if src.Name() != "static" {
		t.Errorf("expected static source, got %s", src.Name())
	}

	cfg.BOM = config.BOMConfig{Source: "file", File: "menu.csv"}
	src, _, err = NewSourceFromConfig(context.Background(), cfg)
	if err != nil || src.Name() != "file:menu.csv" {
		t.Errorf("expected file source, got %v %v", src, err)
	}

	cfg.BOM = config.BOMConfig{Source: "s3"}
	if _, _, err := NewSourceFromConfig(context.Background(), cfg); err == nil {
		t.Error("expected error for s3 without endpoint")
	}

	cfg.BOM = config.BOMConfig{Source: "ftp"}
	if _, _, err := NewSourceFromConfig(context.Background(), cfg); err == nil {
		t.Error("expected error for unknown source")
	}
}
