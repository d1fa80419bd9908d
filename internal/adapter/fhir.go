// Package adapter holds the thin synchronous facades over the host's FHIR
// gateway and webhook sink, plus the payload builders rules use to request
// side effects.
package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/medlogiq/protocol-engine/pkg/circuitbreaker"
	"github.com/medlogiq/protocol-engine/pkg/errors"
	"github.com/medlogiq/protocol-engine/pkg/logger"
	"github.com/medlogiq/protocol-engine/pkg/metrics"
)

const (
	correlationHeader = "X-Correlation-Id"
	fhirMIME          = "application/fhir+json"
)

// Response is the uniform result of an adapter HTTP call.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// OK reports whether the host accepted the call.
func (r *Response) OK() bool {
	return r.StatusCode == http.StatusOK || r.StatusCode == http.StatusCreated
}

// JSON decodes the response body.
func (r *Response) JSON(v any) error {
	return json.Unmarshal(r.Body, v)
}

// Client is the FHIR read/search/create/update surface rules and the
// dispatcher depend on.
type Client interface {
	Read(ctx context.Context, resourceType, id string) (*Response, error)
	Search(ctx context.Context, resourceType string, query url.Values) (*Response, error)
	Create(ctx context.Context, resourceType string, payload any) (*Response, error)
	Update(ctx context.Context, resourceType, id string, payload any) (*Response, error)
}

// FHIRClient talks to the host gateway with bearer auth, a bounded deadline
// per call, capped exponential-backoff retries, and a circuit breaker.
type FHIRClient struct {
	baseURL string
	http    *http.Client
	tokens  *TokenSource
	breaker *circuitbreaker.CircuitBreaker
	retries uint64
	log     *logger.Logger
	metrics *metrics.Metrics
}

type FHIRClientOption func(*FHIRClient)

func WithHTTPClient(c *http.Client) FHIRClientOption {
	return func(f *FHIRClient) { f.http = c }
}

func WithRetries(n int) FHIRClientOption {
	return func(f *FHIRClient) {
		if n >= 0 {
			f.retries = uint64(n)
		}
	}
}

func WithTimeout(d time.Duration) FHIRClientOption {
	return func(f *FHIRClient) { f.http.Timeout = d }
}

// WithMetrics records per-call counters and latency.
func WithMetrics(m *metrics.Metrics) FHIRClientOption {
	return func(f *FHIRClient) { f.metrics = m }
}

func NewFHIRClient(baseURL string, tokens *TokenSource, log *logger.Logger, opts ...FHIRClientOption) *FHIRClient {
	c := &FHIRClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
		tokens:  tokens,
		breaker: circuitbreaker.New(circuitbreaker.Settings{Name: "fhir"}),
		retries: 3,
		log:     log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *FHIRClient) Read(ctx context.Context, resourceType, id string) (*Response, error) {
	return c.do(ctx, http.MethodGet, fmt.Sprintf("/%s/%s", resourceType, id), nil, nil)
}

func (c *FHIRClient) Search(ctx context.Context, resourceType string, query url.Values) (*Response, error) {
	return c.do(ctx, http.MethodGet, "/"+resourceType, query, nil)
}

func (c *FHIRClient) Create(ctx context.Context, resourceType string, payload any) (*Response, error) {
	return c.do(ctx, http.MethodPost, "/"+resourceType, nil, payload)
}

func (c *FHIRClient) Update(ctx context.Context, resourceType, id string, payload any) (*Response, error) {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/%s/%s", resourceType, id), nil, payload)
}

func (c *FHIRClient) do(ctx context.Context, method, path string, query url.Values, payload any) (*Response, error) {
	var body []byte
	if payload != nil {
		var err error
		if body, err = json.Marshal(payload); err != nil {
			return nil, errors.Adapter("failed to marshal request payload", err)
		}
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var resp *Response
	attempt := func() error {
		return c.breaker.Execute(func() error {
			var err error
			resp, err = c.once(ctx, method, endpoint, body)
			return err
		})
	}
	started := time.Now()
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.retries), ctx)
	err := backoff.Retry(attempt, policy)
	if c.metrics != nil {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		c.metrics.AdapterCalls.WithLabelValues("fhir", outcome).Inc()
		c.metrics.AdapterLatency.WithLabelValues("fhir").Observe(time.Since(started).Seconds())
	}
	if err != nil {
		c.log.Error(err, "fhir call failed", "method", method, "path", path)
		return nil, err
	}
	return resp, nil
}

func (c *FHIRClient) once(ctx context.Context, method, endpoint string, body []byte) (*Response, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, backoff.Permanent(errors.Adapter("failed to build request", err))
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", fhirMIME)
	if body != nil {
		req.Header.Set("Content-Type", fhirMIME)
	}

	raw, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Adapter("request failed", err)
	}
	defer raw.Body.Close()

	data, err := io.ReadAll(raw.Body)
	if err != nil {
		return nil, errors.Adapter("failed to read response body", err)
	}

	resp := &Response{StatusCode: raw.StatusCode, Headers: raw.Header, Body: data}
	if !resp.OK() {
		httpErr := errors.AdapterHTTP(
			fmt.Sprintf("%s %s failed", method, endpoint),
			raw.StatusCode,
			raw.Header.Get(correlationHeader),
		)
		if raw.StatusCode == http.StatusUnauthorized {
			// Expired or revoked token; the next attempt refetches.
			c.tokens.Invalidate()
			return nil, httpErr
		}
		if !httpErr.Retryable {
			return nil, backoff.Permanent(httpErr)
		}
		return nil, httpErr
	}
	return resp, nil
}
