//go:build ocr

package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/otiai10/gosseract/v2"

	"github.com/fahroediin/PDF-Analyzer/internal/common"
	"github.com/fahroediin/PDF-Analyzer/internal/core/pipeline"
)

// TesseractRecognizer is engine A, Tesseract linked in through gosseract.
// One client is shared and guarded by a mutex.
type TesseractRecognizer struct {
	mu     sync.Mutex
	client *gosseract.Client
	lang   string
	logger *slog.Logger
}

func NewTesseractRecognizer(cfg Config, logger *slog.Logger) (*TesseractRecognizer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cfg = cfg.withDefaults()
	client := gosseract.NewClient()
	if cfg.TessdataDir != "" {
		if err := client.SetTessdataPrefix(cfg.TessdataDir); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("tessdata dir: %w: %w", common.ErrRecognizer, err)
		}
	}
	if err := client.SetLanguage(cfg.TesseractLang); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("tesseract language: %w: %w", common.ErrRecognizer, err)
	}
	return &TesseractRecognizer{client: client, lang: cfg.TesseractLang, logger: logger}, nil
}

func (t *TesseractRecognizer) Name() string { return "tesseract:" + t.lang }

// Recognize returns the page text as one fragment; the pipeline splits it.
func (t *TesseractRecognizer) Recognize(ctx context.Context, page pipeline.Page) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.client.SetImage(page.Path); err != nil {
		return nil, fmt.Errorf("set image: %w", err)
	}
	text, err := t.client.Text()
	if err != nil {
		return nil, fmt.Errorf("tesseract: %w", err)
	}
	return []string{Normalize(text)}, nil
}

func (t *TesseractRecognizer) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.client != nil {
		return t.client.Close()
	}
	return nil
}
