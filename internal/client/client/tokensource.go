package client

import (
	"context"

	"github.com/dmitrijs2005/taskboard/internal/client/tokenstore"
	"github.com/dmitrijs2005/taskboard/internal/common"
	"golang.org/x/oauth2"
)

// storeTokenSource reads the current pair on every call and never caches,
// so clients built on it follow refreshes made by the pipeline.
type storeTokenSource struct {
	ctx   context.Context
	store tokenstore.Store
}

// TokenSource exposes the stored access credential to oauth2-aware clients
// (oauth2.NewClient, SDKs accepting a TokenSource). It does not refresh on
// its own; expiry is handled by Do and UnaryClientInterceptor.
func (p *Pipeline) TokenSource(ctx context.Context) oauth2.TokenSource {
	return &storeTokenSource{ctx: ctx, store: p.store}
}

func (s *storeTokenSource) Token() (*oauth2.Token, error) {
	tokens, err := s.store.Read(s.ctx)
	if err != nil {
		return nil, err
	}
	if tokens.Access == "" {
		return nil, ErrNoCredential
	}
	return &oauth2.Token{
		AccessToken:  tokens.Access,
		TokenType:    common.BearerScheme,
		RefreshToken: tokens.Refresh,
	}, nil
}
