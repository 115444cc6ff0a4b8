package ocr

import (
	"time"

	"github.com/fahroediin/PDF-Analyzer/internal/common"
)

type Config struct {
	Pdftoppm string // binary name or absolute path; if empty -> "pdftoppm"

	// Engine A, in-process Tesseract.
	TesseractLang    string // default "ind+eng"
	TessdataDir      string
	DisableTesseract bool

	// Engine B, external command. Args may contain {image} and {lang}.
	Command     string // default "tesseract"
	CommandArgs []string

	RenderWidth   int  // page raster width in px, default 2480
	RetryAttempts uint // per page for engine B, default 2
	RetryDelay    time.Duration

	WorkDir string // parent of temp render dirs; "" -> os.TempDir()
}

// ConfigFrom maps the application config onto Config.
func ConfigFrom(c common.OCRConfig) Config {
	return Config{
		Pdftoppm:         c.Pdftoppm,
		TesseractLang:    c.TesseractLang,
		TessdataDir:      c.TessdataDir,
		DisableTesseract: c.DisableTesseract,
		Command:          c.Command,
		CommandArgs:      c.CommandArgs,
		RenderWidth:      c.RenderWidth,
		RetryAttempts:    c.RetryAttempts,
		WorkDir:          c.WorkDir,
	}
}

func (c Config) withDefaults() Config {
	if c.Pdftoppm == "" {
		c.Pdftoppm = "pdftoppm"
	}
	if c.TesseractLang == "" {
		c.TesseractLang = "ind+eng"
	}
	if c.Command == "" {
		c.Command = "tesseract"
	}
	if len(c.CommandArgs) == 0 && c.Command == "tesseract" {
		c.CommandArgs = []string{"{image}", "stdout", "-l", "{lang}", "--psm", "6"}
	}
	if c.RenderWidth <= 0 {
		c.RenderWidth = 2480
	}
	if c.RetryAttempts == 0 {
		c.RetryAttempts = 2
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = 500 * time.Millisecond
	}
	return c
}
