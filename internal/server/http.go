package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/fahroediin/PDF-Analyzer/constants"
	"github.com/fahroediin/PDF-Analyzer/internal/common"
	"github.com/fahroediin/PDF-Analyzer/internal/core/pipeline"
	"github.com/fahroediin/PDF-Analyzer/internal/export"
	"github.com/fahroediin/PDF-Analyzer/internal/ingest"
	"github.com/fahroediin/PDF-Analyzer/internal/repository"
)

// Extractor is what the transports need from core.Processor.
type Extractor interface {
	ProcessFile(ctx context.Context, req pipeline.Request) (uuid.UUID, *pipeline.Result, error)
	ProcessRecognized(ctx context.Context, name, selector string, a, b any) (*pipeline.Result, error)
	GetJob(ctx context.Context, id uuid.UUID) (*repository.Job, error)
	ListJobs(ctx context.Context, f repository.ListFilter) ([]*repository.Job, error)
}

const defaultMaxUpload = 20 << 20

// HTTPServer serves the upload endpoint and the job, export and ingest APIs.
type HTTPServer struct {
	extractor Extractor
	exporter  *export.Service
	ingester  *ingest.Service
	cfg       common.ServerConfig
	workDir   string
	logger    *slog.Logger
}

func NewHTTPServer(ex Extractor, exp *export.Service, ing *ingest.Service, cfg common.ServerConfig, workDir string, logger *slog.Logger) *HTTPServer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = defaultMaxUpload
	}
	return &HTTPServer{extractor: ex, exporter: exp, ingester: ing, cfg: cfg, workDir: workDir, logger: logger}
}

// Handler returns the routed handler wrapped with request id and access logging.
func (s *HTTPServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /upload", s.handleUpload)
	mux.HandleFunc("POST /extract-lines", s.handleExtractLines)
	mux.HandleFunc("GET /jobs", s.handleListJobs)
	mux.HandleFunc("GET /jobs/{id}", s.handleGetJob)
	mux.HandleFunc("GET /export.xlsx", s.handleExport)
	mux.HandleFunc("POST /ingest", s.handleIngest)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	// Unknown paths and wrong methods on known paths both end here.
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
	return s.withRequestLog(mux)
}

func (s *HTTPServer) withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rid := r.Header.Get("X-Request-ID")
		if rid == "" {
			rid = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", rid)
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r.WithContext(common.WithRequestID(r.Context(), rid)))
		s.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"request_id", rid,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (s *HTTPServer) handleUpload(w http.ResponseWriter, r *http.Request) {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "multipart/form-data" {
		writeError(w, http.StatusBadRequest, "Only multipart/form-data supported")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("File exceeds %d bytes", s.cfg.MaxUploadBytes))
			return
		}
		writeError(w, http.StatusBadRequest, "Malformed multipart body")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, hdr, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "File is required")
		return
	}
	defer file.Close()

	docType := r.FormValue("type")
	if err := common.NewValidator().Field("file", hdr.Filename, common.AllowedExtension).Err(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	tmp, err := s.saveUpload(file, filepath.Ext(hdr.Filename))
	if err != nil {
		s.logger.Error("failed to store upload", "file", hdr.Filename, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to store upload")
		return
	}
	defer func() {
		if err := os.Remove(tmp); err != nil {
			s.logger.Warn("failed to remove upload", "path", tmp, "error", err)
		}
	}()

	ctx, cancel := common.WithTimeout(r.Context(), s.cfg.RequestTimeout)
	defer cancel()
	jobID, res, err := s.extractor.ProcessFile(ctx, pipeline.Request{
		Path:         tmp,
		DocumentName: hdr.Filename,
		DocType:      docType,
	})
	if jobID != uuid.Nil {
		w.Header().Set("X-Job-ID", jobID.String())
	}
	if err != nil {
		s.logger.Error("upload processing failed", "file", hdr.Filename, "type", docType, "error", err)
		writeError(w, common.HTTPStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *HTTPServer) saveUpload(src io.Reader, ext string) (string, error) {
	dir := s.workDir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	f, err := os.CreateTemp(dir, "upload-*"+ext)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, src); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

// ExtractLinesRequest carries recognizer output produced by another system.
type ExtractLinesRequest struct {
	DocumentName string `json:"document_name"`
	Type         string `json:"type"`
	EngineA      any    `json:"engine_a"`
	EngineB      any    `json:"engine_b"`
}

func (s *HTTPServer) handleExtractLines(w http.ResponseWriter, r *http.Request) {
	var req ExtractLinesRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	res, err := s.extractor.ProcessRecognized(r.Context(), req.DocumentName, req.Type, req.EngineA, req.EngineB)
	if err != nil {
		writeError(w, common.HTTPStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *HTTPServer) handleListJobs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := repository.ListFilter{DocType: canonicalType(q.Get("type")), Status: q.Get("status")}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		f.Limit = n
	}
	jobs, err := s.extractor.ListJobs(r.Context(), f)
	if err != nil {
		writeError(w, common.HTTPStatus(err), err.Error())
		return
	}
	if jobs == nil {
		jobs = []*repository.Job{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"jobs": jobs})
}

func (s *HTTPServer) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "id must be a UUID")
		return
	}
	job, err := s.extractor.GetJob(r.Context(), id)
	if err != nil {
		writeError(w, common.HTTPStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *HTTPServer) handleExport(w http.ResponseWriter, r *http.Request) {
	if s.exporter == nil {
		writeError(w, http.StatusNotFound, "export is not enabled")
		return
	}
	docType := r.URL.Query().Get("type")
	if err := common.NewValidator().Field("type", docType, common.KnownDocType).Err(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	xlsx, err := s.exporter.ExportXLSX(r.Context(), canonicalType(docType))
	if err != nil {
		s.logger.Error("export.xlsx.failed", "type", docType, "err", err)
		writeError(w, common.HTTPStatus(err), err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="extractions.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(xlsx)
}

// IngestRequest queues a server-side directory for extraction.
type IngestRequest struct {
	RootPath   string `json:"root_path"`
	Type       string `json:"type"`
	SkipHidden *bool  `json:"skip_hidden"`
}

func (s *HTTPServer) handleIngest(w http.ResponseWriter, r *http.Request) {
	if s.ingester == nil {
		writeError(w, http.StatusNotFound, "ingest is not enabled")
		return
	}
	var req IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	skipHidden := true
	if req.SkipHidden != nil {
		skipHidden = *req.SkipHidden
	}
	res, err := s.ingester.IngestDirectory(r.Context(), ingest.DirectoryIngestRequest{
		RootPath:   req.RootPath,
		DocType:    req.Type,
		SkipHidden: skipHidden,
	})
	if err != nil {
		writeError(w, common.HTTPStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, res)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// canonicalType maps a non-empty selector to its stored document type.
func canonicalType(selector string) string {
	if selector == "" {
		return ""
	}
	dt, _ := constants.ParseDocType(selector)
	return string(dt)
}
