package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/fahroediin/PDF-Analyzer/internal/common"
	"github.com/fahroediin/PDF-Analyzer/internal/core/pipeline"
	"github.com/fahroediin/PDF-Analyzer/internal/export"
	"github.com/fahroediin/PDF-Analyzer/internal/ingest"
	"github.com/fahroediin/PDF-Analyzer/internal/repository"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "pdfanalyzer.v1.DocumentService"

// DocumentServiceServer is the gRPC surface. Requests and responses are
// google.protobuf.Struct values shaped like the HTTP JSON bodies.
type DocumentServiceServer interface {
	Extract(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ExtractLines(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetJob(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListJobs(context.Context, *structpb.Struct) (*structpb.Struct, error)
	IngestDirectory(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ExportXLSX(context.Context, *structpb.Struct) (*wrapperspb.BytesValue, error)
}

// DocumentService implements DocumentServiceServer on top of the processor.
type DocumentService struct {
	extractor Extractor
	exporter  *export.Service
	ingester  *ingest.Service
	logger    *slog.Logger
}

func NewDocumentService(ex Extractor, exp *export.Service, ing *ingest.Service, logger *slog.Logger) *DocumentService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DocumentService{extractor: ex, exporter: exp, ingester: ing, logger: logger}
}

func (s *DocumentService) Extract(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	path := strings.TrimSpace(stringField(req, "path"))
	if err := common.NewValidator().
		Field("path", path, common.Required, common.AllowedExtension).
		Err(); err != nil {
		return nil, common.GRPCError(err)
	}
	jobID, res, err := s.extractor.ProcessFile(ctx, pipeline.Request{
		Path:         path,
		DocumentName: stringField(req, "document_name"),
		DocType:      stringField(req, "type"),
	})
	if err != nil {
		s.logger.Error("grpc extract failed", "path", path, "job_id", jobID, "err", err)
		return nil, common.GRPCError(err)
	}
	out, err := toStruct(res)
	if err != nil {
		return nil, common.InternalError(err.Error())
	}
	if jobID != uuid.Nil {
		out.Fields["job_id"] = structpb.NewStringValue(jobID.String())
	}
	return out, nil
}

func (s *DocumentService) ExtractLines(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	m := req.AsMap()
	res, err := s.extractor.ProcessRecognized(ctx,
		stringField(req, "document_name"),
		stringField(req, "type"),
		m["engine_a"],
		m["engine_b"],
	)
	if err != nil {
		return nil, common.GRPCError(err)
	}
	out, err := toStruct(res)
	if err != nil {
		return nil, common.InternalError(err.Error())
	}
	return out, nil
}

func (s *DocumentService) GetJob(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := uuid.Parse(strings.TrimSpace(stringField(req, "id")))
	if err != nil {
		return nil, common.InvalidArgumentError("id must be a UUID")
	}
	job, err := s.extractor.GetJob(ctx, id)
	if err != nil {
		return nil, common.GRPCError(err)
	}
	out, err := toStruct(job)
	if err != nil {
		return nil, common.InternalError(err.Error())
	}
	return out, nil
}

func (s *DocumentService) ListJobs(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f := repository.ListFilter{
		DocType: canonicalType(stringField(req, "type")),
		Status:  stringField(req, "status"),
	}
	if v, ok := req.GetFields()["limit"]; ok {
		f.Limit = int(v.GetNumberValue())
	}
	jobs, err := s.extractor.ListJobs(ctx, f)
	if err != nil {
		return nil, common.GRPCError(err)
	}
	if jobs == nil {
		jobs = []*repository.Job{}
	}
	out, err := toStruct(map[string]any{"jobs": jobs})
	if err != nil {
		return nil, common.InternalError(err.Error())
	}
	return out, nil
}

func (s *DocumentService) IngestDirectory(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if s.ingester == nil {
		return nil, common.NotFoundError("ingest is not enabled")
	}
	skipHidden := true
	if v, ok := req.GetFields()["skip_hidden"]; ok {
		skipHidden = v.GetBoolValue()
	}
	res, err := s.ingester.IngestDirectory(ctx, ingest.DirectoryIngestRequest{
		RootPath:   stringField(req, "root_path"),
		DocType:    stringField(req, "type"),
		SkipHidden: skipHidden,
	})
	if err != nil {
		return nil, common.GRPCError(err)
	}
	out, err := toStruct(res)
	if err != nil {
		return nil, common.InternalError(err.Error())
	}
	return out, nil
}

func (s *DocumentService) ExportXLSX(ctx context.Context, req *structpb.Struct) (*wrapperspb.BytesValue, error) {
	if s.exporter == nil {
		return nil, common.NotFoundError("export is not enabled")
	}
	docType := stringField(req, "type")
	if err := common.NewValidator().Field("type", docType, common.KnownDocType).Err(); err != nil {
		return nil, common.GRPCError(err)
	}
	xlsx, err := s.exporter.ExportXLSX(ctx, canonicalType(docType))
	if err != nil {
		s.logger.Error("export.xlsx.failed", "type", docType, "err", err)
		return nil, common.GRPCError(err)
	}
	return wrapperspb.Bytes(xlsx), nil
}

func stringField(s *structpb.Struct, key string) string {
	return s.GetFields()[key].GetStringValue()
}

// toStruct round-trips v through its JSON form so the gRPC payload matches
// the HTTP body field for field.
func toStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode response: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("encode response: %w", err)
	}
	return structpb.NewStruct(m)
}

type structCall func(DocumentServiceServer, context.Context, *structpb.Struct) (any, error)

func structHandler(method string, call structCall) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			impl := srv.(DocumentServiceServer)
			if interceptor == nil {
				return call(impl, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + method}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(impl, ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

func structResult(out *structpb.Struct, err error) (any, error) {
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DocumentServiceDesc describes DocumentService for grpc.Server.RegisterService.
var DocumentServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DocumentServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		structHandler("Extract", func(s DocumentServiceServer, ctx context.Context, in *structpb.Struct) (any, error) {
			return structResult(s.Extract(ctx, in))
		}),
		structHandler("ExtractLines", func(s DocumentServiceServer, ctx context.Context, in *structpb.Struct) (any, error) {
			return structResult(s.ExtractLines(ctx, in))
		}),
		structHandler("GetJob", func(s DocumentServiceServer, ctx context.Context, in *structpb.Struct) (any, error) {
			return structResult(s.GetJob(ctx, in))
		}),
		structHandler("ListJobs", func(s DocumentServiceServer, ctx context.Context, in *structpb.Struct) (any, error) {
			return structResult(s.ListJobs(ctx, in))
		}),
		structHandler("IngestDirectory", func(s DocumentServiceServer, ctx context.Context, in *structpb.Struct) (any, error) {
			return structResult(s.IngestDirectory(ctx, in))
		}),
		structHandler("ExportXLSX", func(s DocumentServiceServer, ctx context.Context, in *structpb.Struct) (any, error) {
			out, err := s.ExportXLSX(ctx, in)
			if err != nil {
				return nil, err
			}
			return out, nil
		}),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "pdfanalyzer/v1/document.proto",
}

// RegisterDocumentServiceServer registers srv on s.
func RegisterDocumentServiceServer(s grpc.ServiceRegistrar, srv DocumentServiceServer) {
	s.RegisterService(&DocumentServiceDesc, srv)
}

// NewGRPCServer builds a server exposing DocumentService, the standard
// health service and reflection. The returned health server starts SERVING.
func NewGRPCServer(svc DocumentServiceServer, logger *slog.Logger) (*grpc.Server, *health.Server) {
	if logger == nil {
		logger = slog.Default()
	}
	gs := grpc.NewServer(grpc.ChainUnaryInterceptor(loggingInterceptor(logger)))
	hs := health.NewServer()
	healthpb.RegisterHealthServer(gs, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	reflection.Register(gs)
	RegisterDocumentServiceServer(gs, svc)
	return gs, hs
}

func loggingInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		rid := uuid.NewString()
		resp, err := handler(common.WithRequestID(ctx, rid), req)
		attrs := []any{"method", info.FullMethod, "request_id", rid, "elapsed_ms", time.Since(start).Milliseconds()}
		if err != nil {
			logger.Warn("grpc request failed", append(attrs, "error", err)...)
			return nil, err
		}
		logger.Info("grpc request", attrs...)
		return resp, nil
	}
}

// DocumentClient is a thin client for DocumentService.
type DocumentClient struct {
	cc grpc.ClientConnInterface
}

func NewDocumentClient(cc grpc.ClientConnInterface) *DocumentClient {
	return &DocumentClient{cc: cc}
}

func (c *DocumentClient) call(ctx context.Context, method string, in map[string]any) (*structpb.Struct, error) {
	req, err := structpb.NewStruct(in)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *DocumentClient) Extract(ctx context.Context, path, docType string) (*structpb.Struct, error) {
	return c.call(ctx, "Extract", map[string]any{"path": path, "type": docType})
}

func (c *DocumentClient) ExtractLines(ctx context.Context, in map[string]any) (*structpb.Struct, error) {
	return c.call(ctx, "ExtractLines", in)
}

func (c *DocumentClient) GetJob(ctx context.Context, id string) (*structpb.Struct, error) {
	return c.call(ctx, "GetJob", map[string]any{"id": id})
}

func (c *DocumentClient) ListJobs(ctx context.Context, in map[string]any) (*structpb.Struct, error) {
	return c.call(ctx, "ListJobs", in)
}

func (c *DocumentClient) ExportXLSX(ctx context.Context, docType string) ([]byte, error) {
	req, err := structpb.NewStruct(map[string]any{"type": docType})
	if err != nil {
		return nil, err
	}
	out := new(wrapperspb.BytesValue)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/ExportXLSX", req, out); err != nil {
		return nil, err
	}
	return out.GetValue(), nil
}
