package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/fahroediin/PDF-Analyzer/internal/common"
)

// walkDirectory visits every allowed file under root and hands it to emit
// together with its document type. Per-file failures are recorded, not
// returned; only a failure to walk root itself is an error.
func walkDirectory(ctx context.Context, root, fallback string, skipHidden bool, emit func(path, docType string) error) ([]Result, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, errors.New("root_path is required")
	}

	var results []Result
	var stats DirStats

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		stats.Scanned++
		if walkErr != nil {
			if path == root {
				if errors.Is(walkErr, fs.ErrNotExist) {
					return fmt.Errorf("%w: %w", common.ErrNotFound, walkErr)
				}
				return walkErr
			}
			results = append(results, Result{Path: path, Err: walkErr.Error()})
			stats.Failed++
			return nil
		}
		if skipHidden && path != root && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !AllowedExt(filepath.Ext(path)) {
			return nil
		}
		stats.Matched++

		dt := DocTypeFromPath(root, path, fallback)
		if err := emit(path, dt); err != nil {
			results = append(results, Result{Path: path, DocType: dt, Err: err.Error()})
			stats.Failed++
			return nil
		}
		results = append(results, Result{Path: path, DocType: dt, Enqueued: true})
		stats.Enqueued++
		return nil
	})
	if err != nil {
		return results, stats, fmt.Errorf("walk: %w", err)
	}
	return results, stats, nil
}
