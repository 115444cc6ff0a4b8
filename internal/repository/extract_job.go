package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/fahroediin/PDF-Analyzer/constants"
	"github.com/fahroediin/PDF-Analyzer/internal/common"
)

const (
	tableExtractJob = "extract_job"

	colID             = "id"
	colDocumentName   = "document_name"
	colDocumentType   = "document_type"
	colSourcePath     = "source_path"
	colSourceKind     = "source_kind"
	colStatus         = "status"
	colErrorMessage   = "error_message"
	colPages          = "pages"
	colExtractedLines = "extracted_lines"
	colParsedJSON     = "parsed_json"
	colStartedAt      = "started_at"
	colFinishedAt     = "finished_at"
)

var jobColumns = []string{
	colID,
	colDocumentName,
	colDocumentType,
	colSourcePath,
	colSourceKind,
	colStatus,
	colErrorMessage,
	colPages,
	colExtractedLines,
	colParsedJSON,
	colStartedAt,
	colFinishedAt,
}

// Job is one row of extract_job: a single processing attempt of a document.
type Job struct {
	ID             uuid.UUID       `json:"id"`
	DocumentName   string          `json:"document_name"`
	DocumentType   string          `json:"document_type"`
	SourcePath     string          `json:"source_path,omitempty"`
	SourceKind     string          `json:"type,omitempty"`
	Status         string          `json:"status"`
	ErrorMessage   string          `json:"error_message,omitempty"`
	Pages          int             `json:"pages"`
	ExtractedLines []string        `json:"extractedLines"`
	ParsedData     json.RawMessage `json:"parsedData,omitempty"`
	StartedAt      time.Time       `json:"started_at"`
	FinishedAt     *time.Time      `json:"finished_at,omitempty"`
}

// Outcome is what a successful run stores on its job.
type Outcome struct {
	SourceKind string
	Pages      int
	Lines      []string
	Parsed     any
}

// ListFilter narrows List. Zero values match everything.
type ListFilter struct {
	DocType string
	Status  string
	Limit   int
}

const defaultListLimit = 50

type ExtractJobRepository interface {
	Start(ctx context.Context, name, docType, sourcePath string) (*Job, error)
	FinishSuccess(ctx context.Context, id uuid.UUID, out Outcome) error
	FinishFailure(ctx context.Context, id uuid.UUID, message string) error
	Get(ctx context.Context, id uuid.UUID) (*Job, error)
	List(ctx context.Context, f ListFilter) ([]*Job, error)
}

type extractJobRepo struct {
	db  *DB
	log *slog.Logger
	now func() time.Time
}

func NewExtractJobRepository(db *DB, log *slog.Logger) ExtractJobRepository {
	if log == nil {
		log = slog.Default()
	}
	return &extractJobRepo{db: db, log: log, now: func() time.Time { return time.Now().UTC() }}
}

func (r *extractJobRepo) Start(ctx context.Context, name, docType, sourcePath string) (*Job, error) {
	job := &Job{
		ID:           uuid.New(),
		DocumentName: name,
		DocumentType: docType,
		SourcePath:   sourcePath,
		Status:       string(constants.JobStatusRunning),
		StartedAt:    r.now(),
	}
	query, args := r.db.Builder().Insert(tableExtractJob).
		Columns(colID, colDocumentName, colDocumentType, colSourcePath, colStatus, colStartedAt).
		Values(job.ID.String(), job.DocumentName, job.DocumentType, job.SourcePath, job.Status, job.StartedAt).
		Query()
	if _, err := r.db.SQL.ExecContext(ctx, query, args...); err != nil {
		r.log.Error("extract_job start failed", "document", name, "err", err)
		return nil, fmt.Errorf("%w: insert extract_job: %w", common.ErrDatabase, err)
	}
	r.log.Info("extract_job started", "job_id", job.ID, "document", name, "doc_type", docType)
	return job, nil
}

func (r *extractJobRepo) FinishSuccess(ctx context.Context, id uuid.UUID, out Outcome) error {
	linesJSON, err := json.Marshal(nonNil(out.Lines))
	if err != nil {
		return fmt.Errorf("encode lines: %w", err)
	}
	parsed, err := json.Marshal(out.Parsed)
	if err != nil {
		return fmt.Errorf("encode parsed data: %w", err)
	}
	query, args := r.db.Builder().Update(tableExtractJob).
		Set(colStatus, string(constants.JobStatusParsed)).
		Set(colSourceKind, out.SourceKind).
		Set(colPages, out.Pages).
		Set(colExtractedLines, string(linesJSON)).
		Set(colParsedJSON, string(parsed)).
		Set(colFinishedAt, r.now()).
		Where(entsql.EQ(colID, id.String())).
		Query()
	if err := r.exec(ctx, id, query, args); err != nil {
		r.log.Error("extract_job finish(OK) failed", "job_id", id, "err", err)
		return err
	}
	r.log.Info("extract_job finished (PARSED)", "job_id", id, "lines", len(out.Lines))
	return nil
}

func (r *extractJobRepo) FinishFailure(ctx context.Context, id uuid.UUID, message string) error {
	query, args := r.db.Builder().Update(tableExtractJob).
		Set(colStatus, string(constants.JobStatusFailed)).
		Set(colErrorMessage, message).
		Set(colFinishedAt, r.now()).
		Where(entsql.EQ(colID, id.String())).
		Query()
	if err := r.exec(ctx, id, query, args); err != nil {
		r.log.Error("extract_job finish(FAILED) failed", "job_id", id, "err", err)
		return err
	}
	r.log.Warn("extract_job finished (FAILED)", "job_id", id, "error", message)
	return nil
}

func (r *extractJobRepo) exec(ctx context.Context, id uuid.UUID, query string, args []any) error {
	res, err := r.db.SQL.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: update extract_job: %w", common.ErrDatabase, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: update extract_job: %w", common.ErrDatabase, err)
	}
	if n == 0 {
		return fmt.Errorf("extract_job %s: %w", id, common.ErrNotFound)
	}
	return nil
}

func (r *extractJobRepo) Get(ctx context.Context, id uuid.UUID) (*Job, error) {
	b := r.db.Builder()
	query, args := b.Select(jobColumns...).
		From(b.Table(tableExtractJob)).
		Where(entsql.EQ(colID, id.String())).
		Query()
	row := r.db.SQL.QueryRowContext(ctx, query, args...)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("extract_job %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get extract_job: %w", common.ErrDatabase, err)
	}
	return job, nil
}

// List returns jobs newest first.
func (r *extractJobRepo) List(ctx context.Context, f ListFilter) ([]*Job, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	b := r.db.Builder()
	sel := b.Select(jobColumns...).From(b.Table(tableExtractJob))
	if f.DocType != "" {
		sel.Where(entsql.EQ(colDocumentType, f.DocType))
	}
	if f.Status != "" {
		sel.Where(entsql.EQ(colStatus, f.Status))
	}
	query, args := sel.OrderBy(entsql.Desc(colStartedAt)).Limit(limit).Query()

	rows, err := r.db.SQL.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: list extract_job: %w", common.ErrDatabase, err)
	}
	defer rows.Close()

	var jobs []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan extract_job: %w", common.ErrDatabase, err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list extract_job: %w", common.ErrDatabase, err)
	}
	return jobs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanJob(s scanner) (*Job, error) {
	var (
		job      Job
		id       string
		linesRaw sql.NullString
		parsed   sql.NullString
		finished sql.NullTime
	)
	err := s.Scan(
		&id,
		&job.DocumentName,
		&job.DocumentType,
		&job.SourcePath,
		&job.SourceKind,
		&job.Status,
		&job.ErrorMessage,
		&job.Pages,
		&linesRaw,
		&parsed,
		&job.StartedAt,
		&finished,
	)
	if err != nil {
		return nil, err
	}
	if job.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("bad job id %q: %w", id, err)
	}
	job.ExtractedLines = []string{}
	if linesRaw.Valid && linesRaw.String != "" {
		if err := json.Unmarshal([]byte(linesRaw.String), &job.ExtractedLines); err != nil {
			return nil, fmt.Errorf("decode lines: %w", err)
		}
	}
	if parsed.Valid && parsed.String != "" {
		job.ParsedData = json.RawMessage(parsed.String)
	}
	if finished.Valid {
		t := finished.Time
		job.FinishedAt = &t
	}
	return &job, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
