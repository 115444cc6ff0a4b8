package ingest

import (
	"path/filepath"
	"strings"

	"github.com/fahroediin/PDF-Analyzer/constants"
)

// AllowedExt checks if a file extension is in the allowed set.
func AllowedExt(ext string) bool {
	_, ok := constants.AllowedExtensions[constants.NormalizeExt(ext)]
	return ok
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".")
}

// DocTypeFromPath names the document type by the nearest enclosing
// directory below root whose name is a known type, e.g. <root>/ktp/a.png.
// It returns fallback when no directory qualifies.
func DocTypeFromPath(root, path, fallback string) string {
	rel, err := filepath.Rel(root, filepath.Dir(path))
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return fallback
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	for i := len(parts) - 1; i >= 0; i-- {
		if dt, ok := constants.ParseDocType(parts[i]); ok {
			return string(dt)
		}
	}
	return fallback
}
