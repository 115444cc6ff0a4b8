package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/fahroediin/PDF-Analyzer/constants"
	"github.com/fahroediin/PDF-Analyzer/internal/common"
	"github.com/fahroediin/PDF-Analyzer/internal/core/lines"
	"github.com/fahroediin/PDF-Analyzer/internal/core/pipeline"
)

// Reader opens PDFs and images for the pipeline.
type Reader struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewReader(cfg Config, runner Runner, logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	if runner == nil {
		runner = ExecRunner{Logger: logger}
	}
	return &Reader{cfg: cfg.withDefaults(), runner: runner, logger: logger}
}

// Open validates path and returns a document handle. PDFs are checked with
// pdfcpu; images count as a single scanned page.
func (r *Reader) Open(ctx context.Context, path string) (pipeline.Document, error) {
	ext := constants.NormalizeExt(filepath.Ext(path))
	switch constants.MapExtToFormat(ext) {
	case constants.PDF:
		return r.openPDF(ctx, path)
	case constants.IMAGE:
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("stat image: %w: %w", common.ErrUnreadableDocument, err)
		}
		return &imageDocument{reader: r, path: path}, nil
	default:
		return nil, fmt.Errorf("%w: %q", common.ErrUnsupportedFormat, ext)
	}
}

func (r *Reader) openPDF(ctx context.Context, path string) (pipeline.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w: %w", common.ErrUnreadableDocument, err)
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	pages, err := api.PageCount(f, conf)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w: %w", common.ErrUnreadableDocument, err)
	}
	if pages == 0 {
		return nil, fmt.Errorf("read pdf: %w: no pages", common.ErrUnreadableDocument)
	}

	text, err := readPDFLines(path)
	if err != nil {
		// Treat as scanned; rendering still works for most such files.
		r.logger.Warn("pdf text layer unreadable", "path", path, "error", err)
		text = lines.PageLines{}
	}
	r.logger.Debug("pdf opened", "path", path, "pages", pages, "text_lines", text.Lines())
	return &pdfDocument{reader: r, path: path, pages: pages, text: text}, nil
}

// renderDir is a per-document temp directory removed on Close.
type renderDir struct {
	dir string
}

func (d *renderDir) make(parent string) (string, error) {
	if d.dir != "" {
		return d.dir, nil
	}
	dir, err := os.MkdirTemp(parent, "pdfa-render-*")
	if err != nil {
		return "", fmt.Errorf("create render dir: %w", err)
	}
	d.dir = dir
	return dir, nil
}

func (d *renderDir) remove() error {
	if d.dir == "" {
		return nil
	}
	err := os.RemoveAll(d.dir)
	d.dir = ""
	return err
}

type pdfDocument struct {
	reader *Reader
	path   string
	pages  int
	text   lines.PageLines
	tmp    renderDir
}

func (d *pdfDocument) Pages() int { return d.pages }

// IsScanned is true when no page carries a text layer.
func (d *pdfDocument) IsScanned() bool { return d.text.Lines() == 0 }

func (d *pdfDocument) Lines(context.Context) (lines.PageLines, error) { return d.text, nil }

func (d *pdfDocument) RenderAll(ctx context.Context) ([]pipeline.Page, error) {
	dir, err := d.tmp.make(d.reader.cfg.WorkDir)
	if err != nil {
		return nil, err
	}
	prefix := filepath.Join(dir, "page")
	// pdftoppm -png -scale-to-x 2480 -scale-to-y -1 <in.pdf> <tmp/page>
	_, errb, err := d.reader.runner.Run(ctx, d.reader.cfg.Pdftoppm,
		"-png",
		"-scale-to-x", fmt.Sprint(d.reader.cfg.RenderWidth),
		"-scale-to-y", "-1",
		d.path, prefix,
	)
	if err != nil {
		return nil, fmt.Errorf("pdftoppm: %w (%s)", err, truncate(string(errb), 512))
	}

	// pdftoppm zero-pads page numbers, so lexical order is page order.
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	out := make([]pipeline.Page, len(matches))
	for i, m := range matches {
		out[i] = pipeline.Page{Index: i, Path: m}
	}
	d.reader.logger.Debug("pdf rendered", "path", d.path, "images", len(out))
	return out, nil
}

func (d *pdfDocument) Close() error { return d.tmp.remove() }

type imageDocument struct {
	reader *Reader
	path   string
	tmp    renderDir
}

func (d *imageDocument) Pages() int { return 1 }

func (d *imageDocument) IsScanned() bool { return true }

func (d *imageDocument) Lines(context.Context) (lines.PageLines, error) {
	return lines.PageLines{}, nil
}

// RenderAll upscales small images to the render width; larger ones are used
// as they are.
func (d *imageDocument) RenderAll(ctx context.Context) ([]pipeline.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dir, err := d.tmp.make(d.reader.cfg.WorkDir)
	if err != nil {
		return nil, err
	}
	out, err := ScaleImageFile(d.path, filepath.Join(dir, "page-1.png"), d.reader.cfg.RenderWidth)
	if err != nil {
		return nil, fmt.Errorf("prepare image: %w: %w", common.ErrUnreadableDocument, err)
	}
	return []pipeline.Page{{Index: 0, Path: out}}, nil
}

func (d *imageDocument) Close() error { return d.tmp.remove() }
