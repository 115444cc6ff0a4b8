package ingest

import (
	"context"

	"github.com/fahroediin/PDF-Analyzer/internal/core/async"
)

// Result is the per-file ingest outcome.
type Result struct {
	Path     string `json:"path"`
	DocType  string `json:"doc_type"`
	Enqueued bool   `json:"enqueued"`
	Err      string `json:"error,omitempty"`
}

// DirStats summarizes a directory ingest.
type DirStats struct {
	Scanned  uint32 `json:"scanned"`
	Matched  uint32 `json:"matched"`
	Enqueued uint32 `json:"enqueued"`
	Failed   uint32 `json:"failed"`
}

// Enqueuer is the part of the processor queue ingest needs.
type Enqueuer interface {
	Enqueue(ctx context.Context, job async.Job) error
}
