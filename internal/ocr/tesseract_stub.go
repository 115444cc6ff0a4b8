//go:build !ocr

package ocr

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fahroediin/PDF-Analyzer/internal/common"
	"github.com/fahroediin/PDF-Analyzer/internal/core/pipeline"
)

// ErrTesseractNotBuilt is returned when the binary was built without the
// "ocr" tag. Rebuild with -tags ocr, or disable engine A.
var ErrTesseractNotBuilt = fmt.Errorf("tesseract support not compiled in; rebuild with -tags ocr: %w", common.ErrRecognizer)

// TesseractRecognizer is a stub; see ErrTesseractNotBuilt.
type TesseractRecognizer struct{}

func NewTesseractRecognizer(Config, *slog.Logger) (*TesseractRecognizer, error) {
	return nil, ErrTesseractNotBuilt
}

func (*TesseractRecognizer) Name() string { return "tesseract" }

func (*TesseractRecognizer) Recognize(context.Context, pipeline.Page) ([]string, error) {
	return nil, ErrTesseractNotBuilt
}

func (*TesseractRecognizer) Close() error { return nil }
