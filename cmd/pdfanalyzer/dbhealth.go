package main

import (
	"github.com/spf13/cobra"

	repo "github.com/fahroediin/PDF-Analyzer/internal/repository"
)

var dbhealthLimit int

var dbhealthCmd = &cobra.Command{
	Use:   "dbhealth",
	Short: "Check database connectivity and list recent extract jobs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		db, jobs, err := openDB(ctx)
		if err != nil {
			printf(cmd, "DB health: FAIL (%v)\n", err)
			return err
		}
		defer db.Close()
		printf(cmd, "DB health: OK (%s)\n", db.Dialect)

		recent, err := jobs.List(ctx, repo.ListFilter{Limit: dbhealthLimit})
		if err != nil {
			return err
		}
		printf(cmd, "recent jobs: %d\n", len(recent))
		for _, j := range recent {
			printf(cmd, "- %s %-16s %-7s %s\n", j.ID, j.DocumentType, j.Status, j.DocumentName)
		}
		return nil
	},
}

func init() {
	dbhealthCmd.Flags().IntVar(&dbhealthLimit, "limit", 10, "number of recent jobs to list")
	rootCmd.AddCommand(dbhealthCmd)
}
