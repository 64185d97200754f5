package bom

import (
	"bytes"
	"context"
	"io"
	"os"

	"github.com/andresuchdata/kitchen-planner/internal/planner"
	"github.com/andresuchdata/kitchen-planner/internal/storage"
	"github.com/pkg/errors"
)

// Source loads the menu's bill of materials. The BOM is read once per session.
type Source interface {
	Name() string
	Load(ctx context.Context) ([]planner.BOMEntry, error)
}

// StaticSource serves a fixed BOM, by default the pizza BOM.
type StaticSource struct {
	Entries []planner.BOMEntry
}

func (s StaticSource) Name() string { return "static" }

func (s StaticSource) Load(ctx context.Context) ([]planner.BOMEntry, error) {
	entries := s.Entries
	if entries == nil {
		entries = planner.DefaultBOM()
	}
	if err := planner.ValidateBOM(entries); err != nil {
		return nil, err
	}
	return append([]planner.BOMEntry(nil), entries...), nil
}

// FileSource reads a local CSV or XLSX file.
type FileSource struct {
	Path string
}

func (s FileSource) Name() string { return "file:" + s.Path }

func (s FileSource) Load(ctx context.Context) ([]planner.BOMEntry, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, errors.Wrapf(err, "open BOM file %s", s.Path)
	}
	defer f.Close()

	return Parse(s.Path, f)
}

// ObjectSource reads the BOM file from S3-compatible object storage.
type ObjectSource struct {
	Storage storage.ObjectStorage
	Key     string
}

func (s ObjectSource) Name() string { return "s3:" + s.Key }

func (s ObjectSource) Load(ctx context.Context) ([]planner.BOMEntry, error) {
	data, err := s.Storage.GetObject(ctx, s.Key)
	if err != nil {
		return nil, errors.Wrapf(err, "fetch BOM object %s", s.Key)
	}
	return Parse(s.Key, bytes.NewReader(data))
}

// DriveFiles opens a named file inside a Google Drive folder path.
type DriveFiles interface {
	OpenFile(ctx context.Context, folderPath, name string) (io.ReadCloser, error)
}

// DriveSource reads the BOM spreadsheet kept in Google Drive.
type DriveSource struct {
	Drive      DriveFiles
	FolderPath string
	FileName   string
}

func (s DriveSource) Name() string { return "drive:" + s.FolderPath + "/" + s.FileName }

func (s DriveSource) Load(ctx context.Context) ([]planner.BOMEntry, error) {
	rc, err := s.Drive.OpenFile(ctx, s.FolderPath, s.FileName)
	if err != nil {
		return nil, errors.Wrapf(err, "open BOM %s in drive folder %q", s.FileName, s.FolderPath)
	}
	defer rc.Close()

	// excelize needs the whole workbook, so buffer before parsing
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, errors.Wrap(err, "download BOM from drive")
	}
	return Parse(s.FileName, bytes.NewReader(data))
}

// Lister lists BOM rows from a store such as the menu_bom table.
type Lister interface {
	List(ctx context.Context) ([]planner.BOMEntry, error)
}

// RepositorySource reads the BOM from the database.
type RepositorySource struct {
	Repo Lister
}

func (s RepositorySource) Name() string { return "postgres" }

func (s RepositorySource) Load(ctx context.Context) ([]planner.BOMEntry, error) {
	entries, err := s.Repo.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list BOM rows")
	}
	if err := planner.ValidateBOM(entries); err != nil {
		return nil, err
	}
	return entries, nil
}
