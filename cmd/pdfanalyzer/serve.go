package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/fahroediin/PDF-Analyzer/internal/core/async"
	"github.com/fahroediin/PDF-Analyzer/internal/export"
	"github.com/fahroediin/PDF-Analyzer/internal/ingest"
	"github.com/fahroediin/PDF-Analyzer/internal/server"
)

const shutdownGrace = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP and gRPC servers",
	Long: `Start the document extraction servers.

HTTP (server.http_addr, default :8000):
  POST /upload          multipart "file" plus optional "type" (default NIB)
  POST /extract-lines   JSON recognizer output from another system
  GET  /jobs, /jobs/{id}
  GET  /export.xlsx     optional ?type=
  POST /ingest          queue a server-side directory

gRPC (server.grpc_addr, default :9090): pdfanalyzer.v1.DocumentService plus
the standard health and reflection services.

Directories listed in ingest.roots are watched and new files are processed
in the background.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := cfg.Validate(); err != nil {
			return err
		}

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
		ingester := ingest.NewService(queue, logger)
		exporter := export.NewService(a.jobs, logger)

		errCh := make(chan error, 2)

		var httpSrv *http.Server
		if cfg.Server.HTTPAddr != "" {
			h := server.NewHTTPServer(a.processor, exporter, ingester, cfg.Server, cfg.OCR.WorkDir, logger)
			httpSrv = &http.Server{
				Addr:              cfg.Server.HTTPAddr,
				Handler:           h.Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}
			go func() {
				logger.Info("http listening", "addr", cfg.Server.HTTPAddr)
				if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
			}()
		}

		svc := server.NewDocumentService(a.processor, exporter, ingester, logger)
		grpcServer, healthServer := server.NewGRPCServer(svc, logger)
		if cfg.Server.GRPCAddr != "" {
			lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
			if err != nil {
				logger.Error("failed to listen on address", "addr", cfg.Server.GRPCAddr, "error", err)
				return err
			}
			go func() {
				logger.Info("grpc listening", "addr", cfg.Server.GRPCAddr)
				if err := grpcServer.Serve(lis); err != nil {
					errCh <- err
				}
			}()
		}

		if len(cfg.Ingest.Roots) > 0 {
			go func() {
				err := ingester.Watch(ctx, ingest.WatchConfig{
					Roots:       cfg.Ingest.Roots,
					InitialScan: true,
					Debounce:    cfg.Ingest.Debounce,
				}, "")
				if err != nil && !errors.Is(err, context.Canceled) {
					logger.Error("watcher stopped", "error", err)
				}
			}()
		}

		var runErr error
		select {
		case <-ctx.Done():
			logger.Info("shutting down")
		case runErr = <-errCh:
			logger.Error("server failed", "error", runErr)
		}

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownGrace)
		defer cancel()

		healthServer.Shutdown()
		grpcServer.GracefulStop()
		if httpSrv != nil {
			if err := httpSrv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("http shutdown", "error", err)
			}
		}
		queue.Shutdown(shutdownCtx)
		logger.Info("stopped")
		return runErr
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
