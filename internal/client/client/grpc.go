package client

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/taskboard/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

var authorizationKey = strings.ToLower(common.AuthorizationHeaderName)

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(authorizationKey)
	if token != "" {
		md.Set(authorizationKey, common.BearerScheme+" "+token)
	}

	return metadata.NewOutgoingContext(ctx, md)
}

// UnaryClientInterceptor applies the pipeline's credential protocol to gRPC
// calls: the bearer token travels in the "authorization" metadata and an
// Unauthenticated status triggers the shared refresh and a single retry.
func (p *Pipeline) UnaryClientInterceptor() grpc.UnaryClientInterceptor {
	return func(
		ctx context.Context,
		method string,
		req, reply any,
		cc *grpc.ClientConn,
		invoker grpc.UnaryInvoker,
		opts ...grpc.CallOption,
	) error {

		tokens, err := p.store.Read(ctx)
		if err != nil {
			return err
		}
		access := tokens.Access

		err = invoker(withAccessToken(ctx, access), method, req, reply, cc, opts...)
		if status.Code(err) != codes.Unauthenticated {
			return err
		}

		p.log.Debug(ctx, "unauthenticated, refreshing credentials", "method", method)

		fresh, rerr := p.refresh(ctx, access)
		if rerr != nil {
			return err
		}

		return invoker(withAccessToken(ctx, fresh.Access), method, req, reply, cc, opts...)
	}
}
