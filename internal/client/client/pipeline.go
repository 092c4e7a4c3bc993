package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/taskboard/internal/client/tokenstore"
	"github.com/dmitrijs2005/taskboard/internal/common"
	"github.com/dmitrijs2005/taskboard/internal/logging"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// DefaultTimeout bounds a single dispatch.
const DefaultTimeout = 10 * time.Second

// SessionLostFunc is notified once per unrecoverable refresh round, after the
// credential store has been cleared. It runs inside the round and must not
// wait on calls sent through the same pipeline.
type SessionLostFunc func(ctx context.Context) error

// Pipeline sends calls to the remote service on behalf of the signed-in user.
type Pipeline struct {
	baseURL string
	http    *http.Client
	store   tokenstore.Store
	timeout time.Duration
	log     logging.Logger
	newID   func() string

	flights singleflight.Group

	mu   sync.RWMutex
	lost []SessionLostFunc
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Pipeline) { p.http = c }
}

// WithTimeout overrides DefaultTimeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(p *Pipeline) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithLogger sets the pipeline logger.
func WithLogger(l logging.Logger) Option {
	return func(p *Pipeline) { p.log = l }
}

// WithRequestID replaces the X-Request-ID generator.
func WithRequestID(fn func() string) Option {
	return func(p *Pipeline) { p.newID = fn }
}

// NewPipeline returns a pipeline sending calls to baseURL.
func NewPipeline(baseURL string, store tokenstore.Store, opts ...Option) *Pipeline {
	p := &Pipeline{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    http.DefaultClient,
		store:   store,
		timeout: DefaultTimeout,
		log:     logging.Nop(),
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Store returns the credential store the pipeline reads and refreshes.
func (p *Pipeline) Store() tokenstore.Store {
	return p.store
}

// OnSessionLost registers fn to run when the session cannot be recovered.
func (p *Pipeline) OnSessionLost(fn SessionLostFunc) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lost = append(p.lost, fn)
}

// Do sends call and returns the response.
//
// Non-2xx responses are returned together with a *StatusError. Calls that
// never got a response fail with a *TransportError. A 401 on an
// authenticated call triggers one refresh and one retry; if that fails the
// caller still receives the original 401.
func (p *Pipeline) Do(ctx context.Context, call *Call) (*Response, error) {

	x, err := newExchange(*call, p.newID())
	if err != nil {
		return nil, err
	}
	log := p.log.With("request_id", x.requestID, "op", x.op())

	access := ""
	if !call.Anonymous {
		tokens, err := p.store.Read(ctx)
		if err != nil {
			return nil, fmt.Errorf("read credentials: %w", err)
		}
		access = tokens.Access
	}

	for {
		resp, err := p.dispatch(ctx, x, access)
		if err != nil {
			log.Debug(ctx, "dispatch failed", "error", err)
			return nil, err
		}

		if resp.StatusCode != http.StatusUnauthorized || x.call.Anonymous || x.retried {
			return resp, checkStatus(resp)
		}

		x.retried = true
		log.Debug(ctx, "unauthorized, refreshing credentials")

		tokens, err := p.refresh(ctx, access)
		if err != nil {
			return resp, checkStatus(resp)
		}
		access = tokens.Access
	}
}

// dispatch performs one HTTP exchange. access may be empty.
func (p *Pipeline) dispatch(ctx context.Context, x *exchange, access string) (*Response, error) {

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	var body io.Reader
	if x.body != nil {
		body = bytes.NewReader(x.body)
	}

	req, err := http.NewRequestWithContext(ctx, x.call.Method, p.baseURL+x.call.Path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if x.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(common.RequestIDHeaderName, x.requestID)
	if access != "" && !x.call.Anonymous {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerScheme+" "+access)
	}

	resp, err := p.http.Do(req)
	if err != nil {
		return nil, &TransportError{Op: x.op(), Err: err}
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: x.op(), Err: err}
	}

	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: b}, nil
}
