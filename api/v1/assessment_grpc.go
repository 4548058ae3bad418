package v1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	Assessment_ServiceName                        = "maturity.v1.Assessment"
	Assessment_SubmitAssessment_FullMethodName    = "/maturity.v1.Assessment/SubmitAssessment"
	Assessment_GetAssessment_FullMethodName       = "/maturity.v1.Assessment/GetAssessment"
	Assessment_GetBenchmark_FullMethodName        = "/maturity.v1.Assessment/GetBenchmark"
	Assessment_GetRecommendations_FullMethodName  = "/maturity.v1.Assessment/GetRecommendations"
	Assessment_GetNarrative_FullMethodName        = "/maturity.v1.Assessment/GetNarrative"
	Assessment_InvalidateNarrative_FullMethodName = "/maturity.v1.Assessment/InvalidateNarrative"
	Assessment_ListCategories_FullMethodName      = "/maturity.v1.Assessment/ListCategories"
)

// AssessmentClient is the client API for the Assessment service. Calls
// always request the json content-subtype.
type AssessmentClient interface {
	SubmitAssessment(ctx context.Context, in *SubmitAssessmentRequest, opts ...grpc.CallOption) (*AssessmentResponse, error)
	GetAssessment(ctx context.Context, in *ResultRequest, opts ...grpc.CallOption) (*AssessmentResponse, error)
	GetBenchmark(ctx context.Context, in *ResultRequest, opts ...grpc.CallOption) (*BenchmarkResponse, error)
	GetRecommendations(ctx context.Context, in *ResultRequest, opts ...grpc.CallOption) (*RecommendationsResponse, error)
	GetNarrative(ctx context.Context, in *ResultRequest, opts ...grpc.CallOption) (*NarrativeResponse, error)
	InvalidateNarrative(ctx context.Context, in *ResultRequest, opts ...grpc.CallOption) (*InvalidateNarrativeResponse, error)
	ListCategories(ctx context.Context, in *ListCategoriesRequest, opts ...grpc.CallOption) (*ListCategoriesResponse, error)
}

type assessmentClient struct {
	cc grpc.ClientConnInterface
}

func NewAssessmentClient(cc grpc.ClientConnInterface) AssessmentClient {
	return &assessmentClient{cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *assessmentClient) SubmitAssessment(ctx context.Context, in *SubmitAssessmentRequest, opts ...grpc.CallOption) (*AssessmentResponse, error) {
	return invoke[AssessmentResponse](ctx, c.cc, Assessment_SubmitAssessment_FullMethodName, in, opts)
}

func (c *assessmentClient) GetAssessment(ctx context.Context, in *ResultRequest, opts ...grpc.CallOption) (*AssessmentResponse, error) {
	return invoke[AssessmentResponse](ctx, c.cc, Assessment_GetAssessment_FullMethodName, in, opts)
}

func (c *assessmentClient) GetBenchmark(ctx context.Context, in *ResultRequest, opts ...grpc.CallOption) (*BenchmarkResponse, error) {
	return invoke[BenchmarkResponse](ctx, c.cc, Assessment_GetBenchmark_FullMethodName, in, opts)
}

func (c *assessmentClient) GetRecommendations(ctx context.Context, in *ResultRequest, opts ...grpc.CallOption) (*RecommendationsResponse, error) {
	return invoke[RecommendationsResponse](ctx, c.cc, Assessment_GetRecommendations_FullMethodName, in, opts)
}

func (c *assessmentClient) GetNarrative(ctx context.Context, in *ResultRequest, opts ...grpc.CallOption) (*NarrativeResponse, error) {
	return invoke[NarrativeResponse](ctx, c.cc, Assessment_GetNarrative_FullMethodName, in, opts)
}

func (c *assessmentClient) InvalidateNarrative(ctx context.Context, in *ResultRequest, opts ...grpc.CallOption) (*InvalidateNarrativeResponse, error) {
	return invoke[InvalidateNarrativeResponse](ctx, c.cc, Assessment_InvalidateNarrative_FullMethodName, in, opts)
}

func (c *assessmentClient) ListCategories(ctx context.Context, in *ListCategoriesRequest, opts ...grpc.CallOption) (*ListCategoriesResponse, error) {
	return invoke[ListCategoriesResponse](ctx, c.cc, Assessment_ListCategories_FullMethodName, in, opts)
}

// AssessmentServer is the server API for the Assessment service.
// Implementations must embed UnimplementedAssessmentServer.
type AssessmentServer interface {
	SubmitAssessment(context.Context, *SubmitAssessmentRequest) (*AssessmentResponse, error)
	GetAssessment(context.Context, *ResultRequest) (*AssessmentResponse, error)
	GetBenchmark(context.Context, *ResultRequest) (*BenchmarkResponse, error)
	GetRecommendations(context.Context, *ResultRequest) (*RecommendationsResponse, error)
	GetNarrative(context.Context, *ResultRequest) (*NarrativeResponse, error)
	InvalidateNarrative(context.Context, *ResultRequest) (*InvalidateNarrativeResponse, error)
	ListCategories(context.Context, *ListCategoriesRequest) (*ListCategoriesResponse, error)
	mustEmbedUnimplementedAssessmentServer()
}

type UnimplementedAssessmentServer struct{}

func (UnimplementedAssessmentServer) SubmitAssessment(context.Context, *SubmitAssessmentRequest) (*AssessmentResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method SubmitAssessment not implemented")
}
func (UnimplementedAssessmentServer) GetAssessment(context.Context, *ResultRequest) (*AssessmentResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetAssessment not implemented")
}
func (UnimplementedAssessmentServer) GetBenchmark(context.Context, *ResultRequest) (*BenchmarkResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetBenchmark not implemented")
}
func (UnimplementedAssessmentServer) GetRecommendations(context.Context, *ResultRequest) (*RecommendationsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetRecommendations not implemented")
}
func (UnimplementedAssessmentServer) GetNarrative(context.Context, *ResultRequest) (*NarrativeResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetNarrative not implemented")
}
func (UnimplementedAssessmentServer) InvalidateNarrative(context.Context, *ResultRequest) (*InvalidateNarrativeResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method InvalidateNarrative not implemented")
}
func (UnimplementedAssessmentServer) ListCategories(context.Context, *ListCategoriesRequest) (*ListCategoriesResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListCategories not implemented")
}
func (UnimplementedAssessmentServer) mustEmbedUnimplementedAssessmentServer() {}

func RegisterAssessmentServer(s grpc.ServiceRegistrar, srv AssessmentServer) {
	s.RegisterService(&Assessment_ServiceDesc, srv)
}

// unaryHandler adapts one typed server method to the grpc.MethodDesc shape.
func unaryHandler[Req any, Resp any](fullMethod string, call func(AssessmentServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(AssessmentServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(AssessmentServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var Assessment_ServiceDesc = grpc.ServiceDesc{
	ServiceName: Assessment_ServiceName,
	HandlerType: (*AssessmentServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "SubmitAssessment",
			Handler:    unaryHandler(Assessment_SubmitAssessment_FullMethodName, AssessmentServer.SubmitAssessment),
		},
		{
			MethodName: "GetAssessment",
			Handler:    unaryHandler(Assessment_GetAssessment_FullMethodName, AssessmentServer.GetAssessment),
		},
		{
			MethodName: "GetBenchmark",
			Handler:    unaryHandler(Assessment_GetBenchmark_FullMethodName, AssessmentServer.GetBenchmark),
		},
		{
			MethodName: "GetRecommendations",
			Handler:    unaryHandler(Assessment_GetRecommendations_FullMethodName, AssessmentServer.GetRecommendations),
		},
		{
			MethodName: "GetNarrative",
			Handler:    unaryHandler(Assessment_GetNarrative_FullMethodName, AssessmentServer.GetNarrative),
		},
		{
			MethodName: "InvalidateNarrative",
			Handler:    unaryHandler(Assessment_InvalidateNarrative_FullMethodName, AssessmentServer.InvalidateNarrative),
		},
		{
			MethodName: "ListCategories",
			Handler:    unaryHandler(Assessment_ListCategories_FullMethodName, AssessmentServer.ListCategories),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "",
}
