package drama

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0 Safari/537.36"
	acceptLanguage   = "id-ID,id;q=0.9,en-US;q=0.8,en;q=0.7"

	// Responses are short JSON documents; anything larger is garbage.
	maxResponseBytes = 10 * 1024 * 1024
)

// Client issues raw GET requests against the upstream drama API. It does not
// retry and does not cache; those concerns live in the fetch layer above it.
type Client struct {
	baseURL      string
	token        string
	requireToken bool
	httpc        *http.Client
}

// NewClient constructs an upstream client. baseURL has any trailing slash
// stripped. When requireToken is set, calls fail fast with a precondition
// error if token is empty instead of attempting an unauthenticated request.
func NewClient(baseURL, token string, requireToken bool, httpc *http.Client) *Client {
	if httpc == nil {
		httpc = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		token:        token,
		requireToken: requireToken,
		httpc:        httpc,
	}
}

// FetchJSON performs a GET against baseURL+endpoint and decodes the body as
// arbitrary JSON. Parameters with empty values are omitted from the query
// string, not serialized as empty strings. A non-2xx status or a transport
// failure comes back as *UpstreamError.
func (c *Client) FetchJSON(ctx context.Context, endpoint string, params map[string]string, timeout time.Duration) (any, error) {
	if c.requireToken && c.token == "" {
		return nil, &PreconditionError{Reason: "upstream token not configured"}
	}

	u := c.baseURL + endpoint
	q := url.Values{}
	for k, v := range params {
		if v == "" {
			continue
		}
		q.Set(k, v)
	}
	if len(q) > 0 {
		u = u + "?" + q.Encode()
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Accept-Language", acceptLanguage)
	req.Header.Set("User-Agent", defaultUserAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, &UpstreamError{Kind: "network", Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		log.Printf("[drama] upstream %s failed: %s %s", endpoint, resp.Status, strings.TrimSpace(string(body)))
		return nil, &UpstreamError{Kind: "http_status", Status: resp.StatusCode, Endpoint: endpoint}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &UpstreamError{Kind: "network", Endpoint: endpoint, Err: err}
	}

	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return raw, nil
}
