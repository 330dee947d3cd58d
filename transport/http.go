package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fncall/logger"

	"github.com/google/uuid"
)

// StatusError is returned when the remote answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// Retryable reports whether the status is worth another attempt.
func (e *StatusError) Retryable() bool {
	return e.StatusCode >= http.StatusInternalServerError || e.StatusCode == http.StatusTooManyRequests
}

type Conf struct {
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxRetries int           `mapstructure:"max_retries"`
	Backoff    time.Duration `mapstructure:"backoff"`
}

func DefaultConf() Conf {
	return Conf{
		Timeout:    time.Second * 60,
		MaxRetries: 2,
		Backoff:    time.Second,
	}
}

// HTTPClient implements Interface on net/http with exponential backoff on
// network errors, 5xx and 429 responses.
type HTTPClient struct {
	client *http.Client
	conf   Conf
	log    *logger.Logger
}

func NewHTTPClient(conf Conf) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{Timeout: conf.Timeout},
		conf:   conf,
		log:    logger.NewLogger("Transport", uuid.NewString()),
	}
}

// NewHTTPClientWith uses an existing *http.Client, e.g. httptest.Server.Client().
func NewHTTPClientWith(client *http.Client, conf Conf) *HTTPClient {
	c := NewHTTPClient(conf)
	c.client = client
	return c
}

func (c *HTTPClient) Do(ctx context.Context, req Request, out any) error {
	var payload []byte
	if req.Body != nil {
		var err error
		if payload, err = json.Marshal(req.Body); err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	backoff := c.conf.Backoff
	var lastErr error
	for attempt := 0; attempt <= c.conf.MaxRetries; attempt++ {
		if attempt > 0 {
			c.log.Warn("retrying request", "url", req.URL, "attempt", attempt, "backoff", backoff, "error", lastErr)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		body, err := c.once(ctx, req, payload)
		if err != nil {
			lastErr = err
			if se, ok := err.(*StatusError); ok && !se.Retryable() {
				return err
			}
			if ctx.Err() != nil {
				return err
			}
			continue
		}
		if out == nil || len(body) == 0 {
			return nil
		}
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("failed to decode response from %s: %w", req.URL, err)
		}
		return nil
	}
	return fmt.Errorf("request to %s failed after %d retries: %w", req.URL, c.conf.MaxRetries, lastErr)
}

func (c *HTTPClient) once(ctx context.Context, req Request, payload []byte) ([]byte, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	hreq, err := http.NewRequestWithContext(ctx, method, req.URL, reader)
	if err != nil {
		return nil, err
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			hreq.Header.Add(k, v)
		}
	}
	if payload != nil {
		hreq.Header.Set("Content-Type", "application/json")
	}
	hreq.Header.Set("Accept", "application/json")

	c.log.Debug("request", "method", method, "url", req.URL)
	resp, err := c.client.Do(hreq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	c.log.Debug("response", "url", req.URL, "status", resp.StatusCode, "bytes", len(data))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(data)}
	}
	return data, nil
}
