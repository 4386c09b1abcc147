// Package graphql is a small GraphQL-over-HTTP client for the catalog API.
package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Error codes set by the server in extensions.code.
const (
	CodeBadUserInput    = "BAD_USER_INPUT"
	CodeUnauthenticated = "UNAUTHENTICATED"
	CodeInternal        = "INTERNAL_SERVER_ERROR"
)

// Error is one entry of a response's errors array.
type Error struct {
	Message    string                 `json:"message"`
	Path       []interface{}          `json:"path,omitempty"`
	Extensions map[string]interface{} `json:"extensions,omitempty"`
}

// Code returns extensions.code, or "" when the server sent none.
func (e Error) Code() string {
	code, _ := e.Extensions["code"].(string)
	return code
}

// ResponseError wraps every error returned alongside (possibly partial) data.
type ResponseError struct {
	Errors []Error
}

func (e *ResponseError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, ge := range e.Errors {
		if code := ge.Code(); code != "" {
			msgs[i] = fmt.Sprintf("%s (%s)", ge.Message, code)
		} else {
			msgs[i] = ge.Message
		}
	}
	return "graphql: " + strings.Join(msgs, "; ")
}

// HasCode reports whether err carries a GraphQL error with the given code.
func HasCode(err error, code string) bool {
	var re *ResponseError
	if !errors.As(err, &re) {
		return false
	}
	for _, ge := range re.Errors {
		if ge.Code() == code {
			return true
		}
	}
	return false
}

type request struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

type response struct {
	Data   json.RawMessage `json:"data"`
	Errors []Error         `json:"errors"`
}

// Client posts operations to one endpoint. The bearer token may be swapped
// at any time; Do reads it per request.
type Client struct {
	endpoint   string
	httpClient *http.Client

	mu    sync.RWMutex
	token string
}

// NewClient uses a 30s timeout client when httpClient is nil.
func NewClient(endpoint string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{endpoint: endpoint, httpClient: httpClient}
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Do executes query and decodes data into out. GraphQL errors are returned
// as *ResponseError; data is still decoded when present.
func (c *Client) Do(ctx context.Context, query string, variables map[string]interface{}, out interface{}) error {
	body, err := json.Marshal(request{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	log.Debug().
		Str("endpoint", c.endpoint).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("graphql request")

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var decoded response
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	if out != nil && len(decoded.Data) > 0 && string(decoded.Data) != "null" {
		if err := json.Unmarshal(decoded.Data, out); err != nil {
			return fmt.Errorf("decode data: %w", err)
		}
	}

	if len(decoded.Errors) > 0 {
		return &ResponseError{Errors: decoded.Errors}
	}
	return nil
}
