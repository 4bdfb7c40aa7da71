package panel

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/panel-dashboard/internal/observability"
)

// CredentialsFunc supplies the current credentials. It is called on every
// request so rotated values take effect without a restart.
type CredentialsFunc func() Credentials

// Client is the single entry point for panel calls.
type Client struct {
	credentials CredentialsFunc
	negotiator  *Negotiator
	logger      *zap.Logger
}

type clientOptions struct {
	doer    Doer
	timeout time.Duration
	logger  *zap.Logger
	metrics *observability.Metrics
}

// Option configures a Client.
type Option func(*clientOptions)

// WithHTTPClient replaces the transport, mostly for tests.
func WithHTTPClient(doer Doer) Option {
	return func(o *clientOptions) { o.doer = doer }
}

// WithTimeout bounds each attempt.
func WithTimeout(d time.Duration) Option {
	return func(o *clientOptions) { o.timeout = d }
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *clientOptions) { o.logger = logger }
}

func WithMetrics(metrics *observability.Metrics) Option {
	return func(o *clientOptions) { o.metrics = metrics }
}

// NewClient returns a client reading credentials through creds.
func NewClient(creds CredentialsFunc, opts ...Option) *Client {
	o := clientOptions{doer: &http.Client{}, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Client{
		credentials: creds,
		negotiator:  NewNegotiator(o.doer, o.timeout, o.logger, o.metrics),
		logger:      o.logger,
	}
}

// Call performs one panel operation.
func (c *Client) Call(ctx context.Context, operation string, params map[string]any) Result {
	var creds Credentials
	if c.credentials != nil {
		creds = c.credentials()
	}
	if !creds.Configured() {
		c.logger.Warn("panel not configured", zap.String("operation", operation))
		return failure(CodeNotConfigured, msgNotConfigured)
	}
	return c.negotiator.Negotiate(ctx, creds, operation, params)
}
