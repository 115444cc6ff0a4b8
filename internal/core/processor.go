package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/fahroediin/PDF-Analyzer/constants"
	"github.com/fahroediin/PDF-Analyzer/internal/common"
	"github.com/fahroediin/PDF-Analyzer/internal/core/lines"
	"github.com/fahroediin/PDF-Analyzer/internal/core/pipeline"
	"github.com/fahroediin/PDF-Analyzer/internal/repository"
)

// Processor runs the extraction pipeline and records every attempt as an
// extract_job. With a nil job repository it only runs the pipeline.
type Processor struct {
	logger *slog.Logger
	pipe   *pipeline.Pipeline
	jobs   repository.ExtractJobRepository
}

func NewProcessor(logger *slog.Logger, pipe *pipeline.Pipeline, jobs repository.ExtractJobRepository) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{logger: logger, pipe: pipe, jobs: jobs}
}

// ProcessFile extracts one document. The returned job ID is uuid.Nil when
// jobs are not persisted or the job row could not be created.
func (p *Processor) ProcessFile(ctx context.Context, req pipeline.Request) (uuid.UUID, *pipeline.Result, error) {
	if constants.MapExtToFormat(filepath.Ext(req.Path)) == "" {
		return uuid.Nil, nil, fmt.Errorf("%w: %s", common.ErrUnsupportedFormat, filepath.Ext(req.Path))
	}
	name := req.DocumentName
	if name == "" {
		name = filepath.Base(req.Path)
	}

	jobID := uuid.Nil
	if p.jobs != nil {
		job, err := p.jobs.Start(ctx, name, string(constants.SelectDocType(req.DocType)), req.Path)
		if err != nil {
			return uuid.Nil, nil, fmt.Errorf("start job: %w", err)
		}
		jobID = job.ID
		ctx = common.WithJobID(ctx, jobID.String())
	}

	res, err := p.pipe.Process(ctx, req)
	if err != nil {
		p.logger.Error("processor.extract.failed", "job_id", jobID, "path", req.Path, "err", err)
		if p.jobs != nil {
			if ferr := p.jobs.FinishFailure(context.WithoutCancel(ctx), jobID, err.Error()); ferr != nil {
				err = errors.Join(err, ferr)
			}
		}
		return jobID, nil, err
	}

	if p.jobs != nil {
		out := repository.Outcome{
			SourceKind: res.SourceKind,
			Pages:      res.Pages,
			Lines:      res.ExtractedLines,
			Parsed:     res.ParsedData,
		}
		if err := p.jobs.FinishSuccess(context.WithoutCancel(ctx), jobID, out); err != nil {
			return jobID, res, fmt.Errorf("finish job: %w", err)
		}
	}
	p.logger.Debug("processor extract success", "job_id", jobID, "document", res.DocumentName)
	return jobID, res, nil
}

// ProcessRecognized assembles a result from recognizer output supplied by
// the caller, skipping document reading and recognition.
func (p *Processor) ProcessRecognized(ctx context.Context, name, selector string, a, b any) (*pipeline.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res := p.pipe.FromRecognized(name, selector, toPageLines(a), toPageLines(b))
	p.logger.Info("recognized lines assembled",
		"document", res.DocumentName,
		"doc_type", res.DocumentType,
		"logical_lines", len(res.ExtractedLines),
	)
	return res, nil
}

// GetJob returns a stored job.
func (p *Processor) GetJob(ctx context.Context, id uuid.UUID) (*repository.Job, error) {
	if p.jobs == nil {
		return nil, fmt.Errorf("job %s: %w", id, common.ErrNotFound)
	}
	return p.jobs.Get(ctx, id)
}

// ListJobs returns stored jobs, newest first.
func (p *Processor) ListJobs(ctx context.Context, f repository.ListFilter) ([]*repository.Job, error) {
	if p.jobs == nil {
		return nil, nil
	}
	return p.jobs.List(ctx, f)
}

func toPageLines(v any) lines.PageLines {
	if pl, ok := v.(lines.PageLines); ok {
		return pl
	}
	return lines.PageLinesFromAny(v)
}
