package export

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/fahroediin/PDF-Analyzer/constants"
	"github.com/fahroediin/PDF-Analyzer/internal/core/fields"
	"github.com/fahroediin/PDF-Analyzer/internal/repository"
)

// maxRows caps how many jobs one export reads.
const maxRows = 10000

// Service turns stored extraction jobs into XLSX workbooks.
type Service struct {
	jobs   repository.ExtractJobRepository
	logger *slog.Logger
}

func NewService(jobs repository.ExtractJobRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{jobs: jobs, logger: logger}
}

// ExportXLSX returns a workbook with one sheet per document type holding
// every successfully parsed job. An empty docType exports all types.
func (s *Service) ExportXLSX(ctx context.Context, docType string) ([]byte, error) {
	start := time.Now()

	jobs, err := s.jobs.List(ctx, repository.ListFilter{
		DocType: docType,
		Status:  string(constants.JobStatusParsed),
		Limit:   maxRows,
	})
	if err != nil {
		return nil, fmt.Errorf("query jobs: %w", err)
	}

	byType := map[string][]*repository.Job{}
	for _, j := range jobs {
		byType[j.DocumentType] = append(byType[j.DocumentType], j)
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const firstSheet = "Sheet1"
	created := 0
	for _, dt := range constants.DocTypes() {
		rows := byType[string(dt)]
		if len(rows) == 0 && docType != string(dt) {
			continue
		}
		sheet := string(dt)
		if created == 0 {
			if err := f.SetSheetName(firstSheet, sheet); err != nil {
				return nil, err
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
		created++
		if err := writeSheet(f, sheet, fields.For(dt).Fields(), rows); err != nil {
			return nil, fmt.Errorf("sheet %s: %w", sheet, err)
		}
	}
	if created == 0 {
		// keep the workbook valid with a header-only summary sheet
		if err := f.SetSheetName(firstSheet, "Jobs"); err != nil {
			return nil, err
		}
		if err := writeSheet(f, "Jobs", nil, nil); err != nil {
			return nil, err
		}
	}
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"doc_type", docType,
		"rows", len(jobs),
		"sheets", max(created, 1),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

var fixedHeaders = []string{"Job ID", "Document", "Type", "Processed At"}

func writeSheet(f *excelize.File, sheet string, keys []string, jobs []*repository.Job) error {
	headers := append(append([]string(nil), fixedHeaders...), keys...)
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return err
	}

	for i, j := range jobs {
		var parsed map[string]any
		if len(j.ParsedData) > 0 {
			if err := json.Unmarshal(j.ParsedData, &parsed); err != nil {
				return fmt.Errorf("job %s: decode parsed data: %w", j.ID, err)
			}
		}
		processed := j.StartedAt
		if j.FinishedAt != nil {
			processed = *j.FinishedAt
		}
		row := []any{j.ID.String(), j.DocumentName, j.SourceKind, processed.UTC().Format(time.RFC3339)}
		for _, k := range keys {
			row = append(row, cellValue(parsed[k]))
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}

	_ = f.SetColWidth(sheet, "A", "A", 38) // job id
	_ = f.SetColWidth(sheet, "B", "B", 28) // document
	if len(keys) > 0 {
		last, _ := excelize.ColumnNumberToName(len(headers))
		_ = f.SetColWidth(sheet, "E", last, 24)
	}
	return nil
}

// cellValue renders one parsed field. Member lists become "NAME (NIK); ...".
func cellValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []any:
		parts := make([]string, 0, len(x))
		for _, item := range x {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			name, _ := m["name"].(string)
			nik, _ := m["nationalId"].(string)
			parts = append(parts, fmt.Sprintf("%s (%s)", name, nik))
		}
		return strings.Join(parts, "; ")
	default:
		return fmt.Sprint(x)
	}
}
