package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fahroediin/PDF-Analyzer/internal/common"
	"github.com/fahroediin/PDF-Analyzer/internal/export"
)

var (
	exportOut  string
	exportType string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write parsed extract jobs to an XLSX workbook",
	Long: `Write every successfully parsed extract job to an XLSX workbook with
one sheet per document type and one column per extracted field.

Examples:
  pdfanalyzer export -o extractions.xlsx
  pdfanalyzer export --type npwp -o npwp.xlsx`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := common.NewValidator().
			Field("out", exportOut, common.Required).
			Field("type", exportType, common.KnownDocType).
			Err(); err != nil {
			return err
		}

		db, jobs, err := openDB(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		xlsx, err := export.NewService(jobs, logger).ExportXLSX(ctx, canonical(exportType))
		if err != nil {
			return err
		}
		if err := os.WriteFile(exportOut, xlsx, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", exportOut, err)
		}
		printf(cmd, "wrote %s (%d bytes)\n", exportOut, len(xlsx))
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "extractions.xlsx", "output file")
	exportCmd.Flags().StringVarP(&exportType, "type", "t", "", "only export this document type")
	rootCmd.AddCommand(exportCmd)
}
