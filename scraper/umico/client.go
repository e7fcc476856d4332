package umico

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const maxBodyBytes = 4 * 1024 * 1024

// Doer executes HTTP requests. *http.Client satisfies it; tests swap in
// a stub.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is a thin wrapper around the marketplace catalog API.
type Client struct {
	doer    Doer
	baseURL string
}

// NewClient creates a catalog API client on top of the given Doer.
func NewClient(doer Doer, baseURL string) *Client {
	return &Client{
		doer:    doer,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// ProductsResponse mirrors the catalog API body: one page of products plus
// paging metadata.
type ProductsResponse struct {
	Products []Product `json:"products"`
	Meta     struct {
		Total int `json:"total"`
	} `json:"meta"`
}

// ProductsPage fetches a single page of the category listing, sorted the
// way the storefront sorts it.
func (c *Client) ProductsPage(ctx context.Context, categoryID int64, page, perPage int, sort string) (*ProductsResponse, error) {
	q := url.Values{}
	q.Set("category_id", strconv.FormatInt(categoryID, 10))
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(perPage))
	q.Set("sort", sort)

	req, err := c.newReq(ctx, http.MethodGet, "/api/v1/products?"+q.Encode())
	if err != nil {
		return nil, err
	}

	resp, err := c.doer.Do(req)
	if err != nil {
		return nil, err
	}

	b, err := readLimited(resp, maxBodyBytes)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, parseAPIError(resp.StatusCode, b)
	}

	var body ProductsResponse
	if err := json.Unmarshal(b, &body); err != nil {
		return nil, fmt.Errorf("products page %d: bad json body=%s", page, string(b[:min(len(b), 1024)]))
	}
	return &body, nil
}

func (c *Client) newReq(ctx context.Context, method, path string) (*http.Request, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("baseURL is empty")
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	applyBrowserHeaders(req)
	return req, nil
}

// applyBrowserHeaders makes the request look like the storefront SPA.
// The catalog API rejects anonymous clients without the Origin/Referer
// pair, and returns localized category names per Accept-Language.
func applyBrowserHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Accept-Language", "az")
	req.Header.Set("Content-Language", "az")
	req.Header.Set("Origin", "https://birmarket.az")
	req.Header.Set("Referer", "https://birmarket.az/")
	req.Header.Set("User-Agent",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 "+
			"(KHTML, like Gecko) Chrome/145.0.0.0 Safari/537.36")

	// The upstream expects these keys verbatim; Header.Set would
	// canonicalize the underscores away.
	req.Header["http_accept_language"] = []string{"az"}
	req.Header["http_content_language"] = []string{"az"}
}

func readLimited(resp *http.Response, limit int64) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(io.LimitReader(resp.Body, limit))
}

// APIError is a non-200 answer from the catalog API.
type APIError struct {
	Status  int
	Code    any
	Message string
	Body    string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = strings.TrimSpace(e.Body)
	}
	return fmt.Sprintf("api error: status=%d code=%v message=%s", e.Status, e.Code, msg)
}

func parseAPIError(status int, body []byte) *APIError {
	out := &APIError{Status: status, Body: string(body)}

	var m map[string]any
	if json.Unmarshal(body, &m) == nil {
		if v, ok := m["code"]; ok {
			out.Code = v
		}
		if v, ok := m["message"].(string); ok {
			out.Message = v
		}
	}
	return out
}
