package ops

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/hpungsan/yada/internal/errors"
	"github.com/hpungsan/yada/internal/food"
)

// ExportFoodsInput contains parameters for the ExportFoods operation.
type ExportFoodsInput struct {
	Path string // optional, default: <exports>/foods-<timestamp>.jsonl
}

// ExportFoodsOutput contains the result of the ExportFoods operation.
type ExportFoodsOutput struct {
	Path  string `json:"path"`
	Count int    `json:"count"`
}

// ExportFoods writes the catalog as JSONL definitions, in insertion order,
// so that the file can be imported into an empty catalog.
func (s *Session) ExportFoods(ctx context.Context, input ExportFoodsInput) (*ExportFoodsOutput, error) {
	exportPath := ResolveExportPath(input.Path, s.exportsDir)
	if exportPath == "" {
		name := "foods-" + s.now().Format("2006-01-02T150405") + ".jsonl"
		exportPath = filepath.Join(s.exportsDir, name)
	}
	if err := ValidatePath(exportPath, PathCheckWrite, s.exportsDir); err != nil {
		return nil, err
	}

	// Write to temp file first, then atomic rename to preserve existing file on failure
	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to generate temp file name: %w", err))
	}
	tempPath := exportPath + "." + hex.EncodeToString(randBytes) + ".tmp"
	file, err := openFileNoFollow(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create export file: %w", err))
	}

	success := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	enc := json.NewEncoder(file)
	count := 0
	for f := range s.catalog.All() {
		if err := ctx.Err(); err != nil {
			return nil, errors.NewInternal(err)
		}
		def := food.Definition{
			ID:         f.ID,
			Name:       f.Name,
			Keywords:   f.Keywords,
			Components: f.Components,
		}
		if !f.IsComposite() {
			def.Calories = f.CaloriesPerServing
		}
		if err := enc.Encode(def); err != nil {
			return nil, errors.NewInternal(err)
		}
		count++
	}

	if err := file.Sync(); err != nil {
		return nil, errors.NewInternal(err)
	}
	// Close before atomic replace (required on Windows; fine elsewhere).
	if err := file.Close(); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to close export file: %w", err))
	}
	file = nil

	if info, err := os.Lstat(exportPath); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return nil, errors.NewInternal(fmt.Errorf("export path is a symlink"))
	}

	// On Windows, os.Rename fails if the destination exists; the existing
	// file is kept.
	if err := os.Rename(tempPath, exportPath); err != nil {
		if runtime.GOOS == "windows" {
			if _, statErr := os.Stat(exportPath); statErr == nil {
				return nil, errors.NewInvalidRequest("export destination already exists; choose a new path")
			}
		}
		return nil, errors.NewInternal(fmt.Errorf("failed to finalize export: %w", err))
	}

	success = true
	return &ExportFoodsOutput{Path: exportPath, Count: count}, nil
}
