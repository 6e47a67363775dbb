// Package figma provides a minimal client for the Figma REST API.
package figma

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultBaseURL is the public Figma REST API endpoint.
const DefaultBaseURL = "https://api.figma.com"

// ErrMissingToken is returned when a call is attempted without a configured
// access token. No network request is made in that case.
var ErrMissingToken = errors.New("figma access token missing")

// APIError represents a non-2xx response from the Figma API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("figma api status %d: %s", e.StatusCode, e.Body)
}

// Client is a minimal HTTP client for the Figma REST API.
type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

// New returns a new client. An empty baseURL selects the public API; if
// httpClient is nil, a default with 15s timeout is used.
func New(baseURL, token string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{BaseURL: strings.TrimRight(baseURL, "/"), Token: token, HTTP: httpClient}
}

// File fetches the document graph for a file and returns the response body
// unmodified.
func (c *Client) File(ctx context.Context, fileKey string) (json.RawMessage, error) {
	body, err := c.get(ctx, "/v1/files/"+url.PathEscape(fileKey), nil)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}

// imagesResponse is the wire shape of the image export endpoint. Err is set
// by the API on render failures; nodes it could not render map to null.
type imagesResponse struct {
	Err    string            `json:"err"`
	Images map[string]string `json:"images"`
}

// ImageURLs requests an image export for a node and returns the node-id to
// URL mapping reported by the API. Nodes the API could not render come back
// as empty URLs.
func (c *Client) ImageURLs(ctx context.Context, fileKey, nodeID, format string, scale float64) (map[string]string, error) {
	q := url.Values{}
	q.Set("ids", nodeID)
	q.Set("format", format)
	q.Set("scale", strconv.FormatFloat(scale, 'f', -1, 64))
	body, err := c.get(ctx, "/v1/images/"+url.PathEscape(fileKey), q)
	if err != nil {
		return nil, err
	}
	var res imagesResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("decode images response: %w", err)
	}
	return res.Images, nil
}

// get performs one authenticated round trip. There are no retries; callers
// own error interpretation.
func (c *Client) get(ctx context.Context, path string, q url.Values) ([]byte, error) {
	if c.Token == "" {
		return nil, ErrMissingToken
	}
	reqURL := c.BaseURL + path
	if len(q) > 0 {
		reqURL += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Figma-Token", c.Token)
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return body, nil
}
