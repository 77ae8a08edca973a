package searchd

import (
	"context"
	"errors"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/readex-eu/readex-ptf-sub000/internal/search"
	"github.com/readex-eu/readex-ptf-sub000/pkg/logger"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "ptf.search.v1.SearchService"

// SearchServiceServer is the server API of the search service. Requests and
// responses are google.protobuf.Struct messages.
type SearchServiceServer interface {
	CreateSession(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CreateScenarios(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ReportResults(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SearchFinished(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetOptimum(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CloseSession(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(srv SearchServiceServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(method string, call unaryCall) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(SearchServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: "/" + ServiceName + "/" + method,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(SearchServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// SearchServiceDesc describes the service for grpc.Server.RegisterService.
var SearchServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SearchServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateSession", Handler: unaryHandler("CreateSession", SearchServiceServer.CreateSession)},
		{MethodName: "CreateScenarios", Handler: unaryHandler("CreateScenarios", SearchServiceServer.CreateScenarios)},
		{MethodName: "ReportResults", Handler: unaryHandler("ReportResults", SearchServiceServer.ReportResults)},
		{MethodName: "SearchFinished", Handler: unaryHandler("SearchFinished", SearchServiceServer.SearchFinished)},
		{MethodName: "GetOptimum", Handler: unaryHandler("GetOptimum", SearchServiceServer.GetOptimum)},
		{MethodName: "CloseSession", Handler: unaryHandler("CloseSession", SearchServiceServer.CloseSession)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "ptf/search/v1/search.proto",
}

// RegisterSearchServiceServer registers srv on s.
func RegisterSearchServiceServer(s grpc.ServiceRegistrar, srv SearchServiceServer) {
	s.RegisterService(&SearchServiceDesc, srv)
}

// Service implements SearchServiceServer on a SessionStore.
type Service struct {
	store *SessionStore
}

// NewService creates a service backed by store.
func NewService(store *SessionStore) *Service {
	return &Service{store: store}
}

func (s *Service) CreateSession(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	configYAML := stringField(req, "config_yaml")
	if configYAML == "" {
		return nil, status.Error(codes.InvalidArgument, "config_yaml is required")
	}
	sess, err := s.store.Create(stringField(req, "strategy"), configYAML)
	if err != nil {
		return nil, toStatus(err)
	}
	logger.Info("session created", "session_id", sess.ID, "strategy", sess.Strategy)
	return structpb.NewStruct(map[string]any{"session_id": sess.ID, "strategy": sess.Strategy})
}

func (s *Service) CreateScenarios(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	sess, err := s.session(req)
	if err != nil {
		return nil, err
	}
	scenarios, err := sess.CreateScenarios()
	if err != nil {
		return nil, toStatus(err)
	}
	list := make([]any, len(scenarios))
	for i, sc := range scenarios {
		list[i] = viewOf(sc).toMap()
	}
	logger.Debug("scenarios handed out", "session_id", sess.ID, "count", len(scenarios))
	return structpb.NewStruct(map[string]any{"scenarios": list})
}

func (s *Service) ReportResults(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	sess, err := s.session(req)
	if err != nil {
		return nil, err
	}
	id, err := intField(req, "scenario_id")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	props, err := propertiesFromStruct(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if err := sess.ReportResults(id, props); err != nil {
		return nil, toStatus(err)
	}
	return &structpb.Struct{}, nil
}

func (s *Service) SearchFinished(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	sess, err := s.session(req)
	if err != nil {
		return nil, err
	}
	done, err := sess.SearchFinished()
	if err != nil {
		return nil, toStatus(err)
	}
	if done {
		logger.Info("search finished", "session_id", sess.ID, "strategy", sess.Strategy)
	}
	return structpb.NewStruct(map[string]any{"finished": done})
}

func (s *Service) GetOptimum(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	sess, err := s.session(req)
	if err != nil {
		return nil, err
	}
	report, err := sess.Report()
	if err != nil {
		return nil, toStatus(err)
	}
	out, err := reportToStruct(report)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

func (s *Service) CloseSession(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id := stringField(req, "session_id")
	if id == "" {
		return nil, status.Error(codes.InvalidArgument, "session_id is required")
	}
	if err := s.store.Close(id); err != nil {
		return nil, toStatus(err)
	}
	logger.Info("session closed", "session_id", id)
	return &structpb.Struct{}, nil
}

func (s *Service) session(req *structpb.Struct) (*Session, error) {
	id := stringField(req, "session_id")
	if id == "" {
		return nil, status.Error(codes.InvalidArgument, "session_id is required")
	}
	sess, err := s.store.Get(id)
	if err != nil {
		return nil, toStatus(err)
	}
	return sess, nil
}

// toStatus maps engine and store errors onto gRPC codes.
func toStatus(err error) error {
	var cfgErr *search.ConfigError
	var unknown *search.UnknownStrategyError
	var unknownObj *search.UnknownObjectiveError
	switch {
	case errors.Is(err, ErrSessionNotFound), errors.Is(err, ErrScenarioNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, ErrInvalidConfig), errors.As(err, &cfgErr), errors.As(err, &unknown), errors.As(err, &unknownObj):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, search.ErrNotEvaluated),
		errors.Is(err, search.ErrMeasurementGap),
		errors.Is(err, search.ErrNotInitialized),
		errors.Is(err, ErrSessionClosed):
		return status.Error(codes.FailedPrecondition, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
