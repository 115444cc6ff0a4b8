package ocr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/avast/retry-go/v4"

	"github.com/fahroediin/PDF-Analyzer/internal/common"
	"github.com/fahroediin/PDF-Analyzer/internal/core/lines"
	"github.com/fahroediin/PDF-Analyzer/internal/core/pipeline"
)

// CommandRecognizer is engine B: an external program that reads one page
// image and prints its text. Plain output is split into lines; a JSON list of
// strings or {"text": ...} objects is decoded fragment by fragment.
type CommandRecognizer struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewCommandRecognizer(cfg Config, runner Runner, logger *slog.Logger) *CommandRecognizer {
	if logger == nil {
		logger = slog.Default()
	}
	if runner == nil {
		runner = ExecRunner{Logger: logger}
	}
	return &CommandRecognizer{cfg: cfg.withDefaults(), runner: runner, logger: logger}
}

func (c *CommandRecognizer) Name() string { return "command:" + c.cfg.Command }

func (c *CommandRecognizer) Recognize(ctx context.Context, page pipeline.Page) ([]string, error) {
	args := c.args(page.Path)
	var out []byte
	err := retry.Do(
		func() error {
			stdout, errb, err := c.runner.Run(ctx, c.cfg.Command, args...)
			if err != nil {
				return fmt.Errorf("%w (%s)", err, truncate(strings.TrimSpace(string(errb)), 512))
			}
			out = stdout
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(c.cfg.RetryAttempts),
		retry.Delay(c.cfg.RetryDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return !errors.Is(err, common.ErrRecognizer)
		}),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Warn("recognizer retry", "recognizer", c.Name(), "page", page.Index, "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		return nil, err
	}
	return ParseFragments(out), nil
}

func (c *CommandRecognizer) Close() error { return nil }

func (c *CommandRecognizer) args(image string) []string {
	out := make([]string, 0, len(c.cfg.CommandArgs)+1)
	placed := false
	for _, a := range c.cfg.CommandArgs {
		if strings.Contains(a, "{image}") {
			placed = true
		}
		a = strings.ReplaceAll(a, "{image}", image)
		a = strings.ReplaceAll(a, "{lang}", c.cfg.TesseractLang)
		out = append(out, a)
	}
	if !placed {
		out = append(out, image)
	}
	return out
}

// ParseFragments decodes recognizer output: a JSON list when the output
// starts with '[', plain text lines otherwise.
func ParseFragments(out []byte) []string {
	s := strings.TrimSpace(string(out))
	if strings.HasPrefix(s, "[") {
		var v any
		if err := json.Unmarshal([]byte(s), &v); err == nil {
			return lines.FragmentsFromAny(v)
		}
	}
	return SplitLines(s)
}
