package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/fahroediin/PDF-Analyzer/internal/core/async"
	"github.com/fahroediin/PDF-Analyzer/internal/ingest"
)

var (
	ingestType       string
	ingestSkipHidden bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <dir>",
	Short: "Extract every document under a directory and record the jobs",
	Long: `Walk a directory and run every pdf, jpg, jpeg and png file through the
extractor using ingest.workers workers. A file below a directory named after a
document type (ktp/, npwp/, akta_kelahiran/, ...) uses that type; other files
use --type.

Examples:
  pdfanalyzer ingest ./inbox
  pdfanalyzer ingest --type siup ./scans`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, true)
		if err != nil {
			return err
		}
		defer a.Close()

		queue := async.NewProcessorQueue(a.processor, logger,
			async.WithWorkers(cfg.Ingest.Workers),
			async.WithQueueSize(cfg.Ingest.QueueSize),
			async.WithProcessTimeout(cfg.Ingest.ProcessTimeout),
		)
		start := time.Now()
		res, err := ingest.NewService(queue, logger).IngestDirectory(ctx, ingest.DirectoryIngestRequest{
			RootPath:   args[0],
			DocType:    ingestType,
			SkipHidden: ingestSkipHidden,
		})
		// Drain before reporting so every queued file has a job row.
		queue.Shutdown(context.WithoutCancel(ctx))
		if err != nil {
			return err
		}

		for _, r := range res.Results {
			if r.Err != "" {
				printf(cmd, "FAILED  %s  %s\n", r.Path, r.Err)
			}
		}
		printf(cmd, "scanned=%d matched=%d enqueued=%d failed=%d in %s\n",
			res.Statistics.Scanned, res.Statistics.Matched, res.Statistics.Enqueued, res.Statistics.Failed,
			time.Since(start).Round(time.Millisecond))
		return nil
	},
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestType, "type", "t", "", "document type for files outside a type directory (default NIB)")
	ingestCmd.Flags().BoolVar(&ingestSkipHidden, "skip-hidden", true, "skip dot files and dot directories")
	rootCmd.AddCommand(ingestCmd)
}
