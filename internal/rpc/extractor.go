// Package rpc defines the task extraction service shared by the client and
// the server. Messages are protobuf well-known types: the note content travels
// as a StringValue and the extracted tasks as a ListValue of strings.
package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	ServiceName   = "notes.v1.TaskExtractor"
	ExtractMethod = "/notes.v1.TaskExtractor/Extract"
)

type (
	ExtractRequest  = wrapperspb.StringValue
	ExtractResponse = structpb.ListValue
)

func NewExtractRequest(noteContent string) *ExtractRequest {
	return wrapperspb.String(noteContent)
}

func NewExtractResponse(tasks []string) *ExtractResponse {
	values := make([]*structpb.Value, 0, len(tasks))
	for _, t := range tasks {
		values = append(values, structpb.NewStringValue(t))
	}
	return &structpb.ListValue{Values: values}
}

// Tasks returns the string entries of resp. Non-string values are skipped.
func Tasks(resp *ExtractResponse) []string {
	out := make([]string, 0, len(resp.GetValues()))
	for _, v := range resp.GetValues() {
		if s, ok := v.GetKind().(*structpb.Value_StringValue); ok {
			out = append(out, s.StringValue)
		}
	}
	return out
}

type ExtractorServer interface {
	Extract(ctx context.Context, req *ExtractRequest) (*ExtractResponse, error)
}

type ExtractorClient interface {
	Extract(ctx context.Context, in *ExtractRequest, opts ...grpc.CallOption) (*ExtractResponse, error)
}

type extractorClient struct {
	cc grpc.ClientConnInterface
}

func NewExtractorClient(cc grpc.ClientConnInterface) ExtractorClient {
	return &extractorClient{cc: cc}
}

func (c *extractorClient) Extract(ctx context.Context, in *ExtractRequest, opts ...grpc.CallOption) (*ExtractResponse, error) {
	out := new(ExtractResponse)
	if err := c.cc.Invoke(ctx, ExtractMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func extractHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ExtractRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ExtractorServer).Extract(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ExtractMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ExtractorServer).Extract(ctx, req.(*ExtractRequest))
	}
	return interceptor(ctx, in, info, handler)
}

var ExtractorServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ExtractorServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Extract", Handler: extractHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "notes/v1/extractor",
}

func RegisterExtractorServer(s grpc.ServiceRegistrar, srv ExtractorServer) {
	s.RegisterService(&ExtractorServiceDesc, srv)
}
