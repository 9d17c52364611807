package grpc

// proto.go defines the gRPC server interface for grc/risk/v1/risk.proto.
// Messages are plain Go structs carried by the JSON codec in json_codec.go.

import (
	"context"

	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "grc.risk.v1.VendorRiskService"

// Full method names, used by the role policy and by clients.
const (
	MethodCalculateSurveyScore = "/" + ServiceName + "/CalculateSurveyScore"
	MethodGetScoreBreakdown    = "/" + ServiceName + "/GetScoreBreakdown"
	MethodRecommendRiskRating  = "/" + ServiceName + "/RecommendRiskRating"
	MethodRollupVendorScore    = "/" + ServiceName + "/RollupVendorScore"
	MethodGetVendorRisk        = "/" + ServiceName + "/GetVendorRisk"
	MethodReviewAnswer         = "/" + ServiceName + "/ReviewAnswer"
	MethodGetRiskThresholds    = "/" + ServiceName + "/GetRiskThresholds"
	MethodUpdateRiskThresholds = "/" + ServiceName + "/UpdateRiskThresholds"
)

// VendorRiskServiceServer is the server API for VendorRiskService.
type VendorRiskServiceServer interface {
	CalculateSurveyScore(context.Context, *CalculateSurveyScoreRequest) (*CalculateSurveyScoreResponse, error)
	GetScoreBreakdown(context.Context, *GetScoreBreakdownRequest) (*GetScoreBreakdownResponse, error)
	RecommendRiskRating(context.Context, *RecommendRiskRatingRequest) (*RecommendRiskRatingResponse, error)
	RollupVendorScore(context.Context, *RollupVendorScoreRequest) (*RollupVendorScoreResponse, error)
	GetVendorRisk(context.Context, *GetVendorRiskRequest) (*GetVendorRiskResponse, error)
	ReviewAnswer(context.Context, *ReviewAnswerRequest) (*ReviewAnswerResponse, error)
	GetRiskThresholds(context.Context, *GetRiskThresholdsRequest) (*RiskThresholdsResponse, error)
	UpdateRiskThresholds(context.Context, *UpdateRiskThresholdsRequest) (*RiskThresholdsResponse, error)
	mustEmbedUnimplementedVendorRiskServiceServer()
}

// UnimplementedVendorRiskServiceServer provides forward-compatible default implementations.
type UnimplementedVendorRiskServiceServer struct{}

func (UnimplementedVendorRiskServiceServer) CalculateSurveyScore(context.Context, *CalculateSurveyScoreRequest) (*CalculateSurveyScoreResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method CalculateSurveyScore not implemented")
}
func (UnimplementedVendorRiskServiceServer) GetScoreBreakdown(context.Context, *GetScoreBreakdownRequest) (*GetScoreBreakdownResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetScoreBreakdown not implemented")
}
func (UnimplementedVendorRiskServiceServer) RecommendRiskRating(context.Context, *RecommendRiskRatingRequest) (*RecommendRiskRatingResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method RecommendRiskRating not implemented")
}
func (UnimplementedVendorRiskServiceServer) RollupVendorScore(context.Context, *RollupVendorScoreRequest) (*RollupVendorScoreResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method RollupVendorScore not implemented")
}
func (UnimplementedVendorRiskServiceServer) GetVendorRisk(context.Context, *GetVendorRiskRequest) (*GetVendorRiskResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetVendorRisk not implemented")
}
func (UnimplementedVendorRiskServiceServer) ReviewAnswer(context.Context, *ReviewAnswerRequest) (*ReviewAnswerResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ReviewAnswer not implemented")
}
func (UnimplementedVendorRiskServiceServer) GetRiskThresholds(context.Context, *GetRiskThresholdsRequest) (*RiskThresholdsResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetRiskThresholds not implemented")
}
func (UnimplementedVendorRiskServiceServer) UpdateRiskThresholds(context.Context, *UpdateRiskThresholdsRequest) (*RiskThresholdsResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method UpdateRiskThresholds not implemented")
}
func (UnimplementedVendorRiskServiceServer) mustEmbedUnimplementedVendorRiskServiceServer() {}

// RegisterVendorRiskServiceServer registers the VendorRiskServiceServer with the gRPC server.
func RegisterVendorRiskServiceServer(s grpclib.ServiceRegistrar, srv VendorRiskServiceServer) {
	s.RegisterService(&vendorRiskServiceDesc, srv)
}

var vendorRiskServiceDesc = grpclib.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*VendorRiskServiceServer)(nil),
	Methods: []grpclib.MethodDesc{
		unaryMethod("CalculateSurveyScore", MethodCalculateSurveyScore, VendorRiskServiceServer.CalculateSurveyScore),
		unaryMethod("GetScoreBreakdown", MethodGetScoreBreakdown, VendorRiskServiceServer.GetScoreBreakdown),
		unaryMethod("RecommendRiskRating", MethodRecommendRiskRating, VendorRiskServiceServer.RecommendRiskRating),
		unaryMethod("RollupVendorScore", MethodRollupVendorScore, VendorRiskServiceServer.RollupVendorScore),
		unaryMethod("GetVendorRisk", MethodGetVendorRisk, VendorRiskServiceServer.GetVendorRisk),
		unaryMethod("ReviewAnswer", MethodReviewAnswer, VendorRiskServiceServer.ReviewAnswer),
		unaryMethod("GetRiskThresholds", MethodGetRiskThresholds, VendorRiskServiceServer.GetRiskThresholds),
		unaryMethod("UpdateRiskThresholds", MethodUpdateRiskThresholds, VendorRiskServiceServer.UpdateRiskThresholds),
	},
	Streams:  []grpclib.StreamDesc{},
	Metadata: "grc/risk/v1/risk.proto",
}

// unaryMethod builds a MethodDesc that decodes Req, runs the interceptor
// chain and dispatches to call.
func unaryMethod[Req, Resp any](
	name, fullMethod string,
	call func(VendorRiskServiceServer, context.Context, *Req) (*Resp, error),
) grpclib.MethodDesc {
	return grpclib.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpclib.UnaryServerInterceptor) (any, error) {
			req := new(Req)
			if err := dec(req); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(VendorRiskServiceServer), ctx, req)
			}
			info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(VendorRiskServiceServer), ctx, req.(*Req))
			}
			return interceptor(ctx, req, info, handler)
		},
	}
}
