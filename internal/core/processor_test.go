package core

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/fahroediin/PDF-Analyzer/constants"
	"github.com/fahroediin/PDF-Analyzer/internal/common"
	"github.com/fahroediin/PDF-Analyzer/internal/core/lines"
	"github.com/fahroediin/PDF-Analyzer/internal/core/pipeline"
	"github.com/fahroediin/PDF-Analyzer/internal/repository"
)

type textDoc struct{ text lines.PageLines }

func (d textDoc) Pages() int { return len(d.text) }
func (d textDoc) IsScanned() bool { return false }
func (d textDoc) Lines(context.Context) (lines.PageLines, error) {
	return d.text, nil
}
func (d textDoc) RenderAll(context.Context) ([]pipeline.Page, error) { return nil, nil }
func (d textDoc) Close() error { return nil }

type stubOpener struct {
	doc pipeline.Document
	err error
}

func (o stubOpener) Open(context.Context, string) (pipeline.Document, error) {
	return o.doc, o.err
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newJobs(t *testing.T) repository.ExtractJobRepository {
	t.Helper()
	ctx := context.Background()
	db, err := repository.Open(ctx, repository.Config{DSN: filepath.Join(t.TempDir(), "jobs.db")}, quietLogger())
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(db.Close)
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return repository.NewExtractJobRepository(db, quietLogger())
}

func TestProcessFileRecordsSuccess(t *testing.T) {
	doc := textDoc{text: lines.PageLines{0: {"NPWP : 01.234.567.8-901.000", "Nama : PT ABC"}}}
	jobs := newJobs(t)
	p := NewProcessor(quietLogger(), pipeline.New(stubOpener{doc: doc}, nil, nil, quietLogger()), jobs)

	id, res, err := p.ProcessFile(context.Background(), pipeline.Request{Path: "/in/npwp/scan.pdf", DocType: "npwp"})
	if err != nil {
		t.Fatalf("ProcessFile: %v", err)
	}
	if id == uuid.Nil {
		t.Fatal("expected a job id")
	}
	if got, _ := res.ParsedData.Get("nama"); got != "PT ABC" {
		t.Errorf("nama = %q", got)
	}

	job, err := p.GetJob(context.Background(), id)
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if job.Status != string(constants.JobStatusParsed) || job.DocumentType != "NPWP" || job.DocumentName != "scan.pdf" {
		t.Errorf("job = %+v", job)
	}
	if job.SourceKind != constants.SourceDigital || len(job.ExtractedLines) != 2 {
		t.Errorf("job kind/lines = %q/%v", job.SourceKind, job.ExtractedLines)
	}
}

func TestProcessFileRecordsFailure(t *testing.T) {
	jobs := newJobs(t)
	opener := stubOpener{err: common.ErrUnreadableDocument}
	p := NewProcessor(quietLogger(), pipeline.New(opener, nil, nil, quietLogger()), jobs)

	id, _, err := p.ProcessFile(context.Background(), pipeline.Request{Path: "broken.pdf"})
	if !errors.Is(err, common.ErrUnreadableDocument) {
		t.Fatalf("err = %v", err)
	}
	job, err := p.GetJob(context.Background(), id)
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if job.Status != string(constants.JobStatusFailed) || job.ErrorMessage == "" {
		t.Errorf("job = %+v", job)
	}

	listed, err := p.ListJobs(context.Background(), repository.ListFilter{Status: string(constants.JobStatusFailed)})
	if err != nil || len(listed) != 1 {
		t.Errorf("ListJobs = %d, %v", len(listed), err)
	}
}

func TestProcessFileRejectsUnsupportedExtension(t *testing.T) {
	p := NewProcessor(quietLogger(), pipeline.New(stubOpener{}, nil, nil, quietLogger()), nil)
	if _, _, err := p.ProcessFile(context.Background(), pipeline.Request{Path: "notes.docx"}); !errors.Is(err, common.ErrUnsupportedFormat) {
		t.Errorf("err = %v", err)
	}
}

func TestProcessorWithoutJobs(t *testing.T) {
	doc := textDoc{text: lines.PageLines{0: {"Email: a@b.co"}}}
	p := NewProcessor(quietLogger(), pipeline.New(stubOpener{doc: doc}, nil, nil, quietLogger()), nil)

	id, res, err := p.ProcessFile(context.Background(), pipeline.Request{Path: "nib.pdf"})
	if err != nil || id != uuid.Nil || res == nil {
		t.Fatalf("ProcessFile = %v, %v, %v", id, res, err)
	}
	if _, err := p.GetJob(context.Background(), uuid.New()); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("GetJob err = %v", err)
	}
}

func TestProcessRecognizedDecodesRawResults(t *testing.T) {
	p := NewProcessor(quietLogger(), pipeline.New(nil, nil, nil, quietLogger()), nil)
	a := []any{[]any{"NIK", "3201234567890001", map[string]any{"text": "Nama"}, "BUDI"}}
	b := map[string]any{"0": []any{map[string]any{"text": "Agama"}, "ISLAM"}}

	res, err := p.ProcessRecognized(context.Background(), "ktp.jpg", "KTP", a, b)
	if err != nil {
		t.Fatalf("ProcessRecognized: %v", err)
	}
	for k, want := range map[string]string{"nik": "3201234567890001", "nama": "BUDI", "agama": "ISLAM"} {
		if got, _ := res.ParsedData.Get(k); got != want {
			t.Errorf("%s = %q, want %q", k, got, want)
		}
	}
}
