package client

import (
	"context"
	"fmt"
	"net/http"
	"slices"

	"github.com/dmitrijs2005/taskboard/internal/client/tokenstore"
	"github.com/dmitrijs2005/taskboard/internal/common"
)

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type refreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Refresh runs one refresh round now, whatever the state of the access token.
// On failure the session is lost exactly as if a call had been rejected.
func (p *Pipeline) Refresh(ctx context.Context) (tokenstore.Tokens, error) {
	tokens, err := p.store.Read(ctx)
	if err != nil {
		return tokenstore.Tokens{}, fmt.Errorf("read credentials: %w", err)
	}
	return p.round(ctx, tokens.Refresh)
}

// refresh obtains a credential pair to retry a call that was rejected while
// carrying sent. If another call has already replaced sent, the stored pair
// is reused without contacting the server.
func (p *Pipeline) refresh(ctx context.Context, sent string) (tokenstore.Tokens, error) {

	tokens, err := p.store.Read(ctx)
	if err != nil {
		p.log.Error(ctx, "read credentials for refresh", "error", err)
		return tokenstore.Tokens{}, fmt.Errorf("read credentials: %w", err)
	}

	if sent != "" && tokens.Access != "" && tokens.Access != sent {
		return tokens, nil
	}

	return p.round(ctx, tokens.Refresh)
}

// round coalesces concurrent refreshes of the same refresh token into one
// request. Session loss handling runs inside the flight, once per round.
func (p *Pipeline) round(ctx context.Context, refreshToken string) (tokenstore.Tokens, error) {

	v, err, _ := p.flights.Do("refresh:"+refreshToken, func() (any, error) {
		// The round outlives any single caller's cancellation.
		ctx := context.WithoutCancel(ctx)

		current, err := p.store.Read(ctx)
		if err == nil && current.Access != "" && current.Refresh != refreshToken {
			return current, nil
		}

		tokens, err := p.exchangeRefresh(ctx, refreshToken)
		if err != nil {
			if p.superseded(ctx, refreshToken) {
				p.log.Debug(ctx, "stale refresh rejected, newer pair kept", "error", err)
				return nil, err
			}
			p.sessionLost(ctx, err)
			return nil, err
		}
		return tokens, nil
	})
	if err != nil {
		return tokenstore.Tokens{}, err
	}

	return v.(tokenstore.Tokens), nil
}

// superseded reports whether a pair other than the one refreshed with was
// saved while the round was in flight.
func (p *Pipeline) superseded(ctx context.Context, refreshToken string) bool {
	current, err := p.store.Read(ctx)
	if err != nil {
		return false
	}
	return current.Refresh != "" && current.Refresh != refreshToken
}

func (p *Pipeline) exchangeRefresh(ctx context.Context, refreshToken string) (tokenstore.Tokens, error) {

	if refreshToken == "" {
		return tokenstore.Tokens{}, common.ErrNoRefreshToken
	}

	x, err := newExchange(Call{
		Method:    http.MethodPost,
		Path:      common.PathRefresh,
		Body:      refreshRequest{RefreshToken: refreshToken},
		Anonymous: true,
	}, p.newID())
	if err != nil {
		return tokenstore.Tokens{}, err
	}

	resp, err := p.dispatch(ctx, x, "")
	if err != nil {
		return tokenstore.Tokens{}, err
	}
	if err := checkStatus(resp); err != nil {
		return tokenstore.Tokens{}, fmt.Errorf("refresh rejected: %w", err)
	}

	var out refreshResponse
	if err := resp.Decode(&out); err != nil {
		return tokenstore.Tokens{}, err
	}
	if out.AccessToken == "" {
		return tokenstore.Tokens{}, fmt.Errorf("refresh response: %w", common.ErrInvalidToken)
	}

	// The server may keep the refresh token unrotated.
	next := out.RefreshToken
	if next == "" {
		next = refreshToken
	}

	if err := p.store.Save(ctx, out.AccessToken, next); err != nil {
		return tokenstore.Tokens{}, err
	}

	p.log.Debug(ctx, "credentials refreshed", "request_id", x.requestID, "rotated", out.RefreshToken != "")

	return tokenstore.Tokens{Access: out.AccessToken, Refresh: next}, nil
}

// sessionLost clears the store and notifies every hook.
func (p *Pipeline) sessionLost(ctx context.Context, cause error) {

	p.log.Warn(ctx, "session lost", "error", fmt.Errorf("%w: %w", ErrSessionExpired, cause))

	if err := p.store.Clear(ctx); err != nil {
		p.log.Error(ctx, "clear credentials", "error", err)
	}

	p.mu.RLock()
	hooks := slices.Clone(p.lost)
	p.mu.RUnlock()

	for _, fn := range hooks {
		p.runHook(ctx, fn)
	}
}

func (p *Pipeline) runHook(ctx context.Context, fn SessionLostFunc) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error(ctx, "session lost hook panicked", "panic", r)
		}
	}()

	if err := fn(ctx); err != nil {
		p.log.Error(ctx, "session lost hook failed", "error", err)
	}
}
