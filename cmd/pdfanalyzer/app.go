package main

import (
	"context"
	"time"

	"github.com/fahroediin/PDF-Analyzer/internal/core"
	"github.com/fahroediin/PDF-Analyzer/internal/core/pipeline"
	"github.com/fahroediin/PDF-Analyzer/internal/ocr"
	repo "github.com/fahroediin/PDF-Analyzer/internal/repository"
	"github.com/fahroediin/PDF-Analyzer/internal/server"
)

// app holds the collaborators shared by the commands.
type app struct {
	db        *repo.DB
	jobs      repo.ExtractJobRepository
	processor *core.Processor
	primary   pipeline.Recognizer
	secondary pipeline.Recognizer
}

// openDB connects, migrates and pings the configured database.
func openDB(ctx context.Context) (*repo.DB, repo.ExtractJobRepository, error) {
	db, err := server.ConnectDB(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		return nil, nil, err
	}
	if err := server.PingDB(ctx, db, logger, 5*time.Second); err != nil {
		db.Close()
		return nil, nil, err
	}
	return db, repo.NewExtractJobRepository(db, logger), nil
}

// newApp wires reader, recognizers, pipeline and processor. Without a
// database the processor runs but records no jobs.
func newApp(ctx context.Context, withDB bool) (*app, error) {
	a := &app{}
	if withDB {
		db, jobs, err := openDB(ctx)
		if err != nil {
			return nil, err
		}
		a.db, a.jobs = db, jobs
	}

	ocrCfg := ocr.ConfigFrom(cfg.OCR)
	runner := ocr.ExecRunner{Logger: logger}
	primary, secondary, err := ocr.NewRecognizers(ocrCfg, runner, logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.primary, a.secondary = primary, secondary

	reader := ocr.NewReader(ocrCfg, runner, logger)
	pipe := pipeline.New(reader, primary, secondary, logger)
	a.processor = core.NewProcessor(logger, pipe, a.jobs)
	return a, nil
}

func (a *app) Close() {
	if err := ocr.CloseAll(a.primary, a.secondary); err != nil {
		logger.Warn("closing recognizers", "error", err)
	}
	if a.db != nil {
		a.db.Close()
	}
}
