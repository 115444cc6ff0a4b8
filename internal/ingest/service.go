package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fahroediin/PDF-Analyzer/constants"
	"github.com/fahroediin/PDF-Analyzer/internal/common"
	"github.com/fahroediin/PDF-Analyzer/internal/core/async"
)

// Service handles ingestion business logic.
type Service struct {
	queue  Enqueuer
	logger *slog.Logger
}

// NewService creates a new ingest service.
func NewService(q Enqueuer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{queue: q, logger: logger}
}

// FileIngestRequest represents file ingestion parameters.
type FileIngestRequest struct {
	Path    string
	DocType string
}

// IngestFile validates one file and queues it for extraction.
func (s *Service) IngestFile(ctx context.Context, req FileIngestRequest) (Result, error) {
	path := strings.TrimSpace(req.Path)
	v := common.NewValidator().
		Field("path", path, common.Required, common.AllowedExtension).
		Field("doc_type", req.DocType, common.KnownDocType)
	if err := v.Err(); err != nil {
		s.logger.Error("invalid ingest request", "path", path, "error", err)
		return Result{}, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return Result{}, fmt.Errorf("abs path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", common.ErrNotFound, err)
	}
	if info.IsDir() {
		return Result{}, common.NewAppError("VALIDATION_ERROR", "path is a directory", common.ErrInvalidInput)
	}

	dt := string(constants.SelectDocType(req.DocType))
	if err := s.enqueue(ctx, abs, dt); err != nil {
		return Result{Path: abs, DocType: dt, Err: err.Error()}, err
	}
	s.logger.Info("file ingest queued", "path", abs, "doc_type", dt)
	return Result{Path: abs, DocType: dt, Enqueued: true}, nil
}

// DirectoryIngestRequest represents directory ingestion parameters.
type DirectoryIngestRequest struct {
	RootPath string
	// DocType applies to files not below a directory named after a type.
	DocType    string
	SkipHidden bool
}

// DirectoryIngestResult represents directory ingestion results.
type DirectoryIngestResult struct {
	Statistics DirStats `json:"statistics"`
	Results    []Result `json:"results"`
}

// IngestDirectory queues every allowed file under RootPath.
func (s *Service) IngestDirectory(ctx context.Context, req DirectoryIngestRequest) (*DirectoryIngestResult, error) {
	root := strings.TrimSpace(req.RootPath)
	if err := common.NewValidator().
		Field("root_path", root, common.Required).
		Field("doc_type", req.DocType, common.KnownDocType).
		Err(); err != nil {
		return nil, err
	}
	fallback := string(constants.SelectDocType(req.DocType))

	s.logger.Info("starting directory ingest", "root", root, "doc_type", fallback, "skip_hidden", req.SkipHidden)
	results, stats, err := walkDirectory(ctx, root, fallback, req.SkipHidden, func(path, dt string) error {
		return s.enqueue(ctx, path, dt)
	})
	if err != nil {
		return nil, fmt.Errorf("ingest directory: %w", err)
	}

	s.logger.Info("directory ingest completed",
		"root", root,
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"enqueued", stats.Enqueued,
		"failed", stats.Failed,
	)
	return &DirectoryIngestResult{Statistics: stats, Results: results}, nil
}

// Watch queues files as they appear under the roots until ctx is done.
func (s *Service) Watch(ctx context.Context, cfg WatchConfig, fallback string) error {
	if cfg.Logger == nil {
		cfg.Logger = s.logger
	}
	events, errs, err := StartWatcher(ctx, cfg)
	if err != nil {
		return err
	}
	fallback = string(constants.SelectDocType(fallback))
	s.logger.Info("watching for documents", "roots", cfg.Roots, "debounce", cfg.Debounce)

	for {
		select {
		case path, ok := <-events:
			if !ok {
				return ctx.Err()
			}
			dt := fallback
			for _, root := range cfg.Roots {
				if rel, err := filepath.Rel(root, path); err == nil && !strings.HasPrefix(rel, "..") {
					dt = DocTypeFromPath(root, path, fallback)
					break
				}
			}
			if err := s.enqueue(ctx, path, dt); err != nil {
				s.logger.Error("enqueue failed for file", "path", path, "error", err)
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			s.logger.Warn("watcher reported error", "error", err)
		}
	}
}

func (s *Service) enqueue(ctx context.Context, path, docType string) error {
	err := s.queue.Enqueue(ctx, async.Job{
		Path:         path,
		DocType:      docType,
		DocumentName: filepath.Base(path),
		SubmittedAt:  time.Now(),
		TraceID:      common.RequestIDFromContext(ctx),
	})
	if err != nil {
		return fmt.Errorf("enqueue: %w", err)
	}
	return nil
}
