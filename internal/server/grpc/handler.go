package grpc

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/Kaktotak00p/notes/internal/rpc"
	"github.com/Kaktotak00p/notes/internal/server/extract"
	"github.com/openai/openai-go"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func (s *GRPCServer) Extract(ctx context.Context, req *rpc.ExtractRequest) (*rpc.ExtractResponse, error) {
	userID, ok := userIDFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "no user id")
	}

	if strings.TrimSpace(req.GetValue()) == "" {
		return rpc.NewExtractResponse(nil), nil
	}

	tasks, err := s.extractor.Extract(ctx, req.GetValue())
	if err != nil {
		s.logger.Error(ctx, "extraction failed", "user_id", userID, "error", err)
		return nil, extractStatus(err)
	}

	s.logger.Info(ctx, "tasks extracted", "user_id", userID, "count", len(tasks))
	return rpc.NewExtractResponse(tasks), nil
}

func extractStatus(err error) error {
	var apiErr *openai.Error
	var ue *url.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "extraction timed out")
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "canceled")
	case errors.Is(err, extract.ErrBadCompletion):
		return status.Error(codes.Internal, "model returned an unusable answer")
	case errors.As(err, &apiErr) && (apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= 500):
		return status.Error(codes.Unavailable, "model backend unavailable")
	case errors.As(err, &ue):
		return status.Error(codes.Unavailable, "model backend unreachable")
	default:
		return status.Error(codes.Internal, "internal error")
	}
}
