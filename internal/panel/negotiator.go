package panel

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/panel-dashboard/internal/observability"
)

const (
	apiPath         = "/cloudAPI/"
	maxResponseBody = 4 << 20
	defaultTimeout  = 15 * time.Second
)

// Doer sends HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Negotiator runs one operation through the applicable auth strategies.
type Negotiator struct {
	http    Doer
	timeout time.Duration
	logger  *zap.Logger
	metrics *observability.Metrics
}

// NewNegotiator builds a negotiator. A zero timeout uses the default.
func NewNegotiator(doer Doer, timeout time.Duration, logger *zap.Logger, metrics *observability.Metrics) *Negotiator {
	if doer == nil {
		doer = &http.Client{}
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Negotiator{http: doer, timeout: timeout, logger: logger, metrics: metrics}
}

// Negotiate tries each strategy in order until Decide says to stop.
func (n *Negotiator) Negotiate(ctx context.Context, creds Credentials, operation string, params map[string]any) Result {
	strategies := Strategies(creds)
	if len(strategies) == 0 {
		n.logger.Warn("panel call without credentials", zap.String("operation", operation))
		return failure(CodeNoAuthMethod, msgNoAuthMethod)
	}

	for _, strategy := range strategies {
		if err := ctx.Err(); err != nil {
			return failure(CodeTransport, "request cancelled: "+err.Error())
		}

		result := n.attempt(ctx, creds, strategy, operation, params)
		if Decide(result) == Return {
			return result
		}
		n.logger.Info("panel strategy failed, trying next",
			zap.String("operation", operation),
			zap.String("strategy", strategy.Name),
			zap.String("code", string(result.Code)),
			zap.String("error", result.ErrorMessage),
		)
	}

	n.logger.Warn("all panel auth strategies failed", zap.String("operation", operation))
	return failure(CodeAllAuthFailed, msgAllAuthFailed)
}

func (n *Negotiator) attempt(ctx context.Context, creds Credentials, strategy Strategy, operation string, params map[string]any) (result Result) {
	start := time.Now()
	status := 0
	defer func() {
		elapsed := time.Since(start)
		n.metrics.RecordPanelAttempt(operation, strategy.Name, string(result.Code), elapsed)
		n.logger.Debug("panel attempt",
			zap.String("operation", operation),
			zap.String("strategy", strategy.Name),
			zap.Int("http_status", status),
			zap.String("code", string(result.Code)),
			zap.Duration("duration", elapsed),
		)
	}()

	payload, err := json.Marshal(requestBody(operation, creds.Username, strategy, params))
	if err != nil {
		return failure(CodeUnknown, "encode request: "+err.Error())
	}

	attemptCtx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, creds.BaseURL+apiPath, bytes.NewReader(payload))
	if err != nil {
		return failure(CodeTransport, err.Error())
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if strategy.Authorization != "" {
		req.Header.Set("Authorization", strategy.Authorization)
	}

	resp, err := n.http.Do(req)
	if err != nil {
		return n.transportFailure(ctx, err)
	}
	defer resp.Body.Close()
	status = resp.StatusCode

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return n.transportFailure(ctx, err)
	}
	return Normalize(resp.StatusCode, body)
}

func (n *Negotiator) transportFailure(parent context.Context, err error) Result {
	if parent.Err() == nil && isTimeout(err) {
		return failure(CodeTimeout, fmt.Sprintf("panel request timed out after %s", n.timeout))
	}
	return failure(CodeTransport, err.Error())
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
