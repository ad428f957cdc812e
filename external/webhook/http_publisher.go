package webhook

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/riskibarqy/poule-scoring/internal/domain/scoringevent"
	"github.com/riskibarqy/poule-scoring/internal/platform/logging"
)

const (
	headerEventType = "X-Poule-Event"
	headerRunID     = "X-Poule-Run-Id"

	eventStandingsUpdated = "pool.standings.updated"
	eventPassCompleted    = "scoring.completed"

	defaultTimeout = 5 * time.Second
	defaultBackoff = 200 * time.Millisecond
)

var errWebhookTransient = crerr.New("webhook transient failure")

type HTTPPublisherConfig struct {
	URL     string
	Token   string
	Retries int
	// Timeout bounds one publish including every retry and backoff.
	Timeout time.Duration
	// AttemptTimeout bounds one request. Defaults to an even share of Timeout.
	AttemptTimeout time.Duration
	// Backoff is the wait before the first retry; later retries wait longer.
	Backoff time.Duration
}

// HTTPPublisher POSTs scoring events as JSON to a single endpoint. Transient
// failures (network, 408, 429, 5xx) are retried up to Retries times with a
// linear backoff, all within Timeout.
type HTTPPublisher struct {
	client         *http.Client
	url            string
	token          string
	retries        int
	timeout        time.Duration
	attemptTimeout time.Duration
	backoff        time.Duration
	logger         *logging.Logger
}

func NewHTTPPublisher(cfg HTTPPublisherConfig, logger *logging.Logger) (*HTTPPublisher, error) {
	target, err := validateHTTPURL(cfg.URL)
	if err != nil {
		return nil, crerr.Wrap(err, "invalid WEBHOOK_URL")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	retries := max(cfg.Retries, 0)
	attemptTimeout := cfg.AttemptTimeout
	if attemptTimeout <= 0 || attemptTimeout > timeout {
		attemptTimeout = timeout / time.Duration(retries+1)
	}
	backoff := cfg.Backoff
	if backoff <= 0 {
		backoff = defaultBackoff
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &HTTPPublisher{
		client:         &http.Client{},
		url:            target,
		token:          strings.TrimSpace(cfg.Token),
		retries:        retries,
		timeout:        timeout,
		attemptTimeout: attemptTimeout,
		backoff:        backoff,
		logger:         logger.Named("webhook"),
	}, nil
}

func (p *HTTPPublisher) PublishStandings(ctx context.Context, event scoringevent.StandingsUpdated) error {
	return p.post(ctx, eventStandingsUpdated, event.RunID, event)
}

func (p *HTTPPublisher) PublishPassCompleted(ctx context.Context, event scoringevent.PassCompleted) error {
	return p.post(ctx, eventPassCompleted, event.RunID, event)
}

func (p *HTTPPublisher) post(ctx context.Context, eventType, runID string, payload any) error {
	body, err := sonic.Marshal(payload)
	if err != nil {
		return crerr.Wrapf(err, "marshal %s event", eventType)
	}

	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.SetAttributes(
			attribute.String("webhook.url", p.url),
			attribute.String("webhook.event_type", eventType),
			attribute.String("webhook.run_id", runID),
		)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	var lastErr error
	for attempt := 0; attempt <= p.retries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		lastErr = p.send(ctx, eventType, runID, body)
		if lastErr == nil {
			p.logger.DebugContext(ctx, "webhook delivered", "event_type", eventType, "run_id", runID, "attempt", attempt+1)
			return nil
		}
		if !isTransient(lastErr) {
			return lastErr
		}
		p.logger.WarnContext(ctx, "webhook attempt failed", "event_type", eventType, "run_id", runID, "attempt", attempt+1, "error", lastErr)

		if attempt == p.retries {
			break
		}
		timer := time.NewTimer(time.Duration(attempt+1) * p.backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return crerr.Wrapf(lastErr, "webhook budget exhausted: %v", ctx.Err())
		case <-timer.C:
		}
	}
	return lastErr
}

func (p *HTTPPublisher) send(ctx context.Context, eventType, runID string, body []byte) error {
	ctx, cancel := context.WithTimeout(ctx, p.attemptTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return crerr.Wrap(err, "create webhook request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(headerEventType, eventType)
	req.Header.Set(headerRunID, runID)
	if p.token != "" {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: post %s to %s: %v", errWebhookTransient, eventType, p.url, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode/100 == 2 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if isRetryableStatus(resp.StatusCode) {
		return fmt.Errorf("%w: post %s status=%d body=%s", errWebhookTransient, eventType, resp.StatusCode, truncateForLog(strings.TrimSpace(string(raw)), 512))
	}
	return fmt.Errorf("post %s status=%d body=%s", eventType, resp.StatusCode, truncateForLog(strings.TrimSpace(string(raw)), 512))
}

func validateHTTPURL(raw string) (string, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return "", crerr.New("value is empty")
	}

	parsed, err := url.Parse(candidate)
	if err != nil {
		return "", crerr.Wrapf(err, "parse %q", candidate)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", crerr.Newf("%q uses unsupported scheme=%q; expected http or https", candidate, parsed.Scheme)
	}
	if strings.TrimSpace(parsed.Host) == "" {
		return "", crerr.Newf("%q has empty host", candidate)
	}

	return candidate, nil
}

func truncateForLog(value string, limit int) string {
	if limit <= 0 || len(value) <= limit {
		return value
	}
	return value[:limit] + "...(truncated)"
}

func isTransient(err error) bool {
	return stderrors.Is(err, errWebhookTransient)
}

func isRetryableStatus(statusCode int) bool {
	return statusCode == http.StatusRequestTimeout ||
		statusCode == http.StatusTooManyRequests ||
		statusCode >= http.StatusInternalServerError
}
