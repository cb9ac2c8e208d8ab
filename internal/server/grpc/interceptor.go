package grpc

import (
	"context"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/dmitrijs2005/signin/internal/common"
	"github.com/dmitrijs2005/signin/internal/server/admin"
	"github.com/dmitrijs2005/signin/internal/server/models"
)

type ctxKey string

const viewerKey ctxKey = "viewer"

// ViewerFrom returns the account attached by the access token interceptor.
func ViewerFrom(ctx context.Context) *models.Account {
	a, _ := ctx.Value(viewerKey).(*models.Account)
	return a
}

// requiresConsole reports whether method is a console call. SignIn and
// the health service are open.
func requiresConsole(method string) bool {
	return strings.HasPrefix(method, "/"+ServiceName+"/") && method != SignInMethod
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {

	if !requiresConsole(info.FullMethod) {
		return handler(ctx, req)
	}

	var accessToken string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		values := md.Get(common.AccessTokenHeaderName)
		if len(values) > 0 {
			accessToken = values[0]
		}
	}
	if len(accessToken) == 0 {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	account, err := s.sessions.Resolve(ctx, accessToken)
	if err != nil {
		s.logger.Debug(ctx, "access token rejected", "method", info.FullMethod, "error", err)
		return nil, status.Error(codes.Unauthenticated, "invalid token")
	}

	if err := admin.Authorize(account); err != nil {
		return nil, status.Error(codes.PermissionDenied, "console access required")
	}

	return handler(context.WithValue(ctx, viewerKey, account), req)
}

// actor names the caller for audit log lines.
func actor(ctx context.Context) string {
	if a := ViewerFrom(ctx); a != nil {
		return a.Email
	}
	return ""
}
