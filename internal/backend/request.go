package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/talentmatch/internal/logger"
)

const (
	contentType   = "application/json"
	maxLoggedBody = 200
)

// Options describes a single backend call.
type Options struct {
	// Method defaults to GET.
	Method  string
	Body    any
	Headers map[string]string
	// Token is sent as a bearer token when not empty.
	Token  string
	Params map[string]string
}

// Fetch issues exactly one request to endpoint and normalizes the result.
// HTTP failures are reported through Response.Error. The returned error is set
// only when no HTTP response was received and wraps ErrNetwork in that case.
func (c *Client) Fetch(ctx context.Context, endpoint string, opts Options) (*Response, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if opts.Body != nil {
		data, err := json.Marshal(opts.Body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.APIURL+WithParams(endpoint, opts.Params), body)
	if err != nil {
		return nil, err
	}

	c.setHeaders(req, opts)

	resp, err := c.request(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %w", ErrNetwork, err)
	}

	result := &Response{Status: resp.StatusCode}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &result.Data); err != nil {
			c.logger.Debug("response is not json",
				zap.String("url", req.URL.String()),
				zap.String("body", logger.TruncateForLog(string(raw), maxLoggedBody)),
				zap.Error(err),
			)
			result.Data = nil
		} else {
			result.parsed = true
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		result.Error = errorMessage(result.Data, resp.StatusCode)
		c.logger.Debug("backend reported failure",
			zap.String("url", req.URL.String()),
			zap.Int("status", resp.StatusCode),
			zap.String("error", result.Error),
		)
	}

	return result, nil
}

// Get issues a GET request.
func (c *Client) Get(ctx context.Context, endpoint string, opts Options) (*Response, error) {
	opts.Method = http.MethodGet
	return c.Fetch(ctx, endpoint, opts)
}

// Post issues a POST request with body.
func (c *Client) Post(ctx context.Context, endpoint string, body any, opts Options) (*Response, error) {
	opts.Method = http.MethodPost
	opts.Body = body
	return c.Fetch(ctx, endpoint, opts)
}

// Put issues a PUT request with body.
func (c *Client) Put(ctx context.Context, endpoint string, body any, opts Options) (*Response, error) {
	opts.Method = http.MethodPut
	opts.Body = body
	return c.Fetch(ctx, endpoint, opts)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, endpoint string, opts Options) (*Response, error) {
	opts.Method = http.MethodDelete
	return c.Fetch(ctx, endpoint, opts)
}

// WithParams appends params to endpoint as an encoded query string.
func WithParams(endpoint string, params map[string]string) string {
	if len(params) == 0 {
		return endpoint
	}

	q := url.Values{}
	for key, value := range params {
		q.Set(key, value)
	}

	sep := "?"
	if strings.Contains(endpoint, "?") {
		sep = "&"
	}

	return endpoint + sep + q.Encode()
}

func (c *Client) request(req *http.Request) (*http.Response, error) {
	c.logger.Debug("make request", zap.String("method", req.Method), zap.String("url", req.URL.String()))
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}

	return resp, nil
}

func (c *Client) setHeaders(req *http.Request, opts Options) {
	req.Header.Set("Content-Type", contentType)
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	for key, value := range opts.Headers {
		req.Header.Set(key, value)
	}

	if opts.Token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", opts.Token))
	}
}
