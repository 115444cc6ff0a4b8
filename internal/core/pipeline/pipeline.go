package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/fahroediin/PDF-Analyzer/constants"
	"github.com/fahroediin/PDF-Analyzer/internal/common"
	"github.com/fahroediin/PDF-Analyzer/internal/core/fields"
	"github.com/fahroediin/PDF-Analyzer/internal/core/lines"
)

// Request names one source file and how to read it.
type Request struct {
	Path         string
	DocumentName string
	// DocType is the raw selector; empty selects constants.DefaultSelector.
	DocType string
}

// Result is the response envelope of one processed document.
type Result struct {
	DocumentName   string         `json:"document_name"`
	DocumentType   string         `json:"document_type"`
	SourceKind     string         `json:"type"`
	ExtractedLines []string       `json:"extractedLines"`
	ParsedData     *fields.Record `json:"parsedData"`

	Pages       int `json:"-"`
	MergedLines int `json:"-"`
}

// Pipeline coordinates reading, recognition and the text core.
type Pipeline struct {
	logger    *slog.Logger
	opener    Opener
	primary   Recognizer // engine A, sanitized per page
	secondary Recognizer // engine B, consumed as-is
	sanitize  lines.SanitizeOptions
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithSanitizeOptions overrides the line filter applied to engine A output.
func WithSanitizeOptions(o lines.SanitizeOptions) Option {
	return func(p *Pipeline) { p.sanitize = o }
}

func New(opener Opener, primary, secondary Recognizer, logger *slog.Logger, opts ...Option) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Pipeline{
		logger:    logger,
		opener:    opener,
		primary:   primary,
		secondary: secondary,
		sanitize:  lines.SanitizeOptions{MinLength: lines.MinLineLength},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process reads req.Path and returns the extracted envelope. It fails only when
// the document cannot be read or a recognizer cannot run.
func (p *Pipeline) Process(ctx context.Context, req Request) (*Result, error) {
	dt := constants.SelectDocType(req.DocType)
	name := req.DocumentName
	if name == "" {
		name = filepath.Base(req.Path)
	}
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = "unknown"
	}
	logger := p.logger
	if id := common.JobIDFromContext(ctx); id != "" {
		logger = logger.With("job_id", id)
	}

	doc, err := p.opener.Open(ctx, req.Path)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	defer func() {
		if cerr := doc.Close(); cerr != nil {
			logger.Warn("document close failed", "document", name, "error", cerr)
		}
	}()

	var a, b lines.PageLines
	kind := constants.SourceDigital
	if doc.IsScanned() {
		kind = constants.SourceScanned
		pages, err := doc.RenderAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("render pages: %w", err)
		}
		if len(pages) == 0 {
			return nil, errors.New("render pages: no page images produced")
		}
		a, b, err = p.Recognize(ctx, pages)
		if err != nil {
			return nil, err
		}
	} else {
		text, err := doc.Lines(ctx)
		if err != nil {
			return nil, fmt.Errorf("read text: %w", err)
		}
		// Both slots see the embedded text; dedup folds them together.
		a, b = text, text
	}

	res := Assemble(a, b, dt)
	res.DocumentName = name
	res.DocumentType = selectorLabel(req.DocType)
	res.SourceKind = kind
	res.Pages = doc.Pages()

	if err := fields.Validate(res.ParsedData); err != nil {
		logger.Warn("record schema mismatch", "doc_type", dt, "error", err)
	}
	logger.Info("document processed",
		"document", name,
		"doc_type", dt,
		"type", kind,
		"pages", res.Pages,
		"merged_lines", res.MergedLines,
		"logical_lines", len(res.ExtractedLines),
		"fields_found", res.ParsedData.Found(),
	)
	return res, nil
}

// Recognize runs both recognizers over pages concurrently and waits for both.
// Engine A output is split into lines and sanitized per page.
func (p *Pipeline) Recognize(ctx context.Context, pages []Page) (a, b lines.PageLines, err error) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		a, err = p.recognizeAll(gctx, p.primary, pages, true)
		return err
	})
	g.Go(func() error {
		var err error
		b, err = p.recognizeAll(gctx, p.secondary, pages, false)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return a, b, nil
}

func (p *Pipeline) recognizeAll(ctx context.Context, r Recognizer, pages []Page, sanitize bool) (lines.PageLines, error) {
	out := make(lines.PageLines, len(pages))
	if r == nil {
		return out, nil
	}
	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		frags, err := r.Recognize(ctx, page)
		if err != nil {
			if errors.Is(err, common.ErrRecognizer) || ctx.Err() != nil {
				return nil, fmt.Errorf("%s: %w", r.Name(), err)
			}
			p.logger.Warn("page recognition failed", "recognizer", r.Name(), "page", page.Index, "error", err)
			continue
		}
		if sanitize {
			frags = lines.SanitizeWith(splitLines(frags), p.sanitize)
		}
		out[page.Index] = frags
		p.logger.Debug("page recognized", "recognizer", r.Name(), "page", page.Index, "lines", len(frags))
	}
	return out, nil
}

// FromRecognized assembles a result from recognizer output produced
// elsewhere. Engine A pages are sanitized exactly as in Recognize.
func (p *Pipeline) FromRecognized(name, selector string, a, b lines.PageLines) *Result {
	clean := make(lines.PageLines, len(a))
	for page, frags := range a {
		clean[page] = lines.SanitizeWith(splitLines(frags), p.sanitize)
	}
	dt := constants.SelectDocType(selector)
	res := Assemble(clean, b, dt)
	if name == "" {
		name = "unknown"
	}
	res.DocumentName = name
	res.DocumentType = selectorLabel(selector)
	res.SourceKind = constants.SourceScanned
	res.Pages = max(maxPage(a), maxPage(b))
	return res
}

func maxPage(pl lines.PageLines) int {
	n := 0
	for page := range pl {
		n = max(n, page+1)
	}
	return n
}

// selectorLabel echoes the caller's selector upper-cased, or the default.
func selectorLabel(selector string) string {
	if s := strings.ToUpper(strings.TrimSpace(selector)); s != "" {
		return s
	}
	return string(constants.DefaultSelector)
}

// splitLines breaks multi-line fragments (whole page text) into lines.
func splitLines(frags []string) []string {
	out := make([]string, 0, len(frags))
	for _, f := range frags {
		out = append(out, strings.Split(f, "\n")...)
	}
	return out
}

// Assemble runs the pure text core: dedup across both sources, reconstruct
// logical lines, extract fields. It never fails.
func Assemble(a, b lines.PageLines, dt constants.DocType) *Result {
	merged := lines.Merge(a, b)
	logical := lines.Reconstruct(merged, dt)
	if logical == nil {
		logical = []string{}
	}
	rec := fields.Extract(dt, fields.Input{Merged: merged, Logical: logical})
	return &Result{
		DocumentType:   string(dt),
		ExtractedLines: logical,
		ParsedData:     rec,
		MergedLines:    len(merged),
	}
}
