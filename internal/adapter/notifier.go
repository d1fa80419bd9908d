package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/medlogiq/protocol-engine/pkg/errors"
	"github.com/medlogiq/protocol-engine/pkg/logger"
	"github.com/medlogiq/protocol-engine/pkg/metrics"
)

// Notifier POSTs arbitrary JSON payloads to configured URLs. Idempotency is
// the caller's responsibility; the notifier only bounds the outbound rate
// and the per-call deadline.
type Notifier struct {
	http    *http.Client
	limiter *rate.Limiter
	log     *logger.Logger
	metrics *metrics.Metrics
}

type NotifierOption func(*Notifier)

func WithNotifierHTTPClient(c *http.Client) NotifierOption {
	return func(n *Notifier) { n.http = c }
}

// WithRateLimit caps outbound notifications per second.
func WithRateLimit(perSecond float64, burst int) NotifierOption {
	return func(n *Notifier) { n.limiter = rate.NewLimiter(rate.Limit(perSecond), burst) }
}

func WithNotifierMetrics(m *metrics.Metrics) NotifierOption {
	return func(n *Notifier) { n.metrics = m }
}

func NewNotifier(log *logger.Logger, opts ...NotifierOption) *Notifier {
	n := &Notifier{
		http:    &http.Client{Timeout: 10 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(20), 40),
		log:     log,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Send posts the payload as JSON with the given headers.
func (n *Notifier) Send(ctx context.Context, url string, payload any, headers map[string]string) (*Response, error) {
	started := time.Now()
	resp, err := n.send(ctx, url, payload, headers)
	if n.metrics != nil {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		n.metrics.AdapterCalls.WithLabelValues("notifier", outcome).Inc()
		n.metrics.AdapterLatency.WithLabelValues("notifier").Observe(time.Since(started).Seconds())
	}
	return resp, err
}

func (n *Notifier) send(ctx context.Context, url string, payload any, headers map[string]string) (*Response, error) {
	if err := n.limiter.Wait(ctx); err != nil {
		return nil, errors.Adapter("notification rate wait aborted", err)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Adapter("failed to marshal notification payload", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Adapter("failed to build notification request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for name, value := range headers {
		req.Header.Set(name, value)
	}

	raw, err := n.http.Do(req)
	if err != nil {
		return nil, errors.Adapter("notification request failed", err)
	}
	defer raw.Body.Close()

	data, err := io.ReadAll(raw.Body)
	if err != nil {
		return nil, errors.Adapter("failed to read notification response", err)
	}

	resp := &Response{StatusCode: raw.StatusCode, Headers: raw.Header, Body: data}
	if raw.StatusCode < 200 || raw.StatusCode > 299 {
		return nil, errors.AdapterHTTP(
			fmt.Sprintf("notification to %s rejected", url),
			raw.StatusCode,
			raw.Header.Get(correlationHeader),
		)
	}
	return resp, nil
}
