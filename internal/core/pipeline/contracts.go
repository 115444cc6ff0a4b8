package pipeline

import (
	"context"

	"github.com/fahroediin/PDF-Analyzer/internal/core/lines"
)

// Page is one rasterized page handed to the recognizers.
type Page struct {
	Index int
	Path  string
}

// Recognizer turns a page image into text fragments in reading order.
// An error wrapping common.ErrRecognizer means the engine cannot run at all;
// any other error is scoped to the page.
type Recognizer interface {
	Name() string
	Recognize(ctx context.Context, page Page) ([]string, error)
	Close() error
}

// Document is an opened source file.
type Document interface {
	Pages() int
	IsScanned() bool
	// Lines returns the embedded text of a digital document per page.
	Lines(ctx context.Context) (lines.PageLines, error)
	// RenderAll rasterizes every page for recognition.
	RenderAll(ctx context.Context) ([]Page, error)
	Close() error
}

// Opener opens a source file. Unreadable input wraps common.ErrUnreadableDocument.
type Opener interface {
	Open(ctx context.Context, path string) (Document, error)
}
