// Package client calls a running fncall server over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fncall/logger"
	"github.com/fncall/types"

	"github.com/google/uuid"
)

// CallError is a non-200 answer. Messages holds the partial conversation the
// server returned with it, if any.
type CallError struct {
	StatusCode int
	Message    string
	Messages   []types.Message
}

func (e *CallError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

type Client struct {
	serverURL  string
	httpClient *http.Client
	log        *logger.Logger
}

func New(serverURL string) *Client {
	return NewWithHTTPClient(serverURL, &http.Client{Timeout: time.Minute * 5})
}

func NewWithHTTPClient(serverURL string, hc *http.Client) *Client {
	return &Client{
		serverURL:  strings.TrimRight(serverURL, "/"),
		httpClient: hc,
		log:        logger.NewLogger("Client", uuid.NewString()),
	}
}

// Call posts req to /function/call and returns the resulting conversation.
func (c *Client) Call(ctx context.Context, req types.CallRequest) ([]types.Message, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.serverURL+"/function/call", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out types.CallResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode response (%s): %w", resp.Status, err)
	}
	if resp.StatusCode != http.StatusOK {
		c.log.Warn("call failed", "status", resp.StatusCode, "error", out.Error)
		return out.Messages, &CallError{StatusCode: resp.StatusCode, Message: out.Error, Messages: out.Messages}
	}
	return out.Messages, nil
}

// Health reports whether the server answers GET /healthz.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.serverURL+"/healthz", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %s", resp.Status)
	}
	if strings.TrimSpace(string(data)) != "ok" {
		return fmt.Errorf("unexpected health response %q", data)
	}
	return nil
}
