package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fahroediin/PDF-Analyzer/constants"
	"github.com/fahroediin/PDF-Analyzer/internal/common"
)

var (
	cfgFile string
	dsn     string

	cfg    *common.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "pdfanalyzer",
	Short: "Extract structured fields from Indonesian business and civil documents",
	Long: `pdfanalyzer reads PDF and image documents (NIB, SIUP, NPWP, KTP, KK,
birth certificates and electricity bills), recognizes their text with two OCR
engines, rebuilds logical lines and extracts a fixed set of fields per type.

Configuration comes from pdfanalyzer.yaml (./ or ~/.pdfanalyzer/) and PDFA_*
environment variables, e.g. PDFA_DATABASE_DSN or PDFA_SERVER_HTTP_ADDR.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := common.LoadConfig(cfgFile)
		if err != nil {
			return err
		}
		if dsn != "" {
			c.Database.DSN = dsn
		}
		cfg = c
		logger = newLogger(os.Stderr, c.Log)
		slog.SetDefault(logger)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./pdfanalyzer.yaml or ~/.pdfanalyzer/pdfanalyzer.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&dsn, "dsn", "", "database DSN, overrides database.dsn (sqlite path or postgres:// URL)",
	)
}

// newLogger builds the process logger. Output goes to stderr so commands can
// print results on stdout.
func newLogger(w io.Writer, lc common.LogConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(lc.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(lc.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func printf(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}

// canonical maps a non-empty type flag to its stored document type.
func canonical(selector string) string {
	if strings.TrimSpace(selector) == "" {
		return ""
	}
	dt, _ := constants.ParseDocType(selector)
	return string(dt)
}
