package ocr

import (
	"context"
	"errors"
	"log/slog"

	"github.com/fahroediin/PDF-Analyzer/internal/common"
	"github.com/fahroediin/PDF-Analyzer/internal/core/pipeline"
)

// disabledRecognizer yields no lines for every page.
type disabledRecognizer struct{}

func (disabledRecognizer) Name() string { return "disabled" }

func (disabledRecognizer) Recognize(context.Context, pipeline.Page) ([]string, error) {
	return nil, nil
}

func (disabledRecognizer) Close() error { return nil }

// NewRecognizers builds engine A and engine B from cfg. With
// DisableTesseract set, or when Tesseract cannot start, engine A returns
// empty pages.
func NewRecognizers(cfg Config, runner Runner, logger *slog.Logger) (primary, secondary pipeline.Recognizer, err error) {
	if logger == nil {
		logger = slog.Default()
	}
	secondary = NewCommandRecognizer(cfg, runner, logger)
	if cfg.DisableTesseract {
		logger.Info("tesseract engine disabled")
		return disabledRecognizer{}, secondary, nil
	}
	tess, err := NewTesseractRecognizer(cfg, logger)
	if errors.Is(err, common.ErrRecognizer) {
		logger.Warn("tesseract engine unavailable, running command engine only", "error", err)
		return disabledRecognizer{}, secondary, nil
	}
	if err != nil {
		return nil, nil, err
	}
	return tess, secondary, nil
}

// CloseAll closes every recognizer and joins the errors.
func CloseAll(rs ...pipeline.Recognizer) error {
	var errs []error
	for _, r := range rs {
		if r == nil {
			continue
		}
		if err := r.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
