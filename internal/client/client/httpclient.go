package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophgate/internal/common"
)

const (
	entriesPath = "/scanner/entries"
	batchPath   = "/scanner/checkin/batch"
	healthPath  = "/health"

	// maxErrorBody caps how much of an error response is read for its detail.
	maxErrorBody = 64 << 10
)

// HTTPClient implements Client over HTTP/JSON.
type HTTPClient struct {
	baseURL string
	http    *http.Client
}

// NewHTTPClient returns a client for the API rooted at baseURL
// (e.g. "http://127.0.0.1:8000/api"). timeout bounds every request.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) FetchEntries(ctx context.Context, token string, filter EntryFilter) (*EntriesResponse, error) {
	q := url.Values{}
	if filter.GateNumber != "" {
		q.Set("gate_number", filter.GateNumber)
	}
	if filter.Date != "" {
		q.Set("date", filter.Date)
	}

	u := c.baseURL + entriesPath
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	var resp EntriesResponse
	if err := c.do(ctx, http.MethodGet, u, token, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) UploadCheckIns(ctx context.Context, token string, checkIns []CheckIn) (*BatchResponse, error) {
	var resp BatchResponse
	if err := c.do(ctx, http.MethodPost, c.baseURL+batchPath, token, BatchRequest{CheckIns: checkIns}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Ping checks that the server is reachable. Any HTTP response counts.
func (c *HTTPClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+healthPath, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	_ = resp.Body.Close()
	return nil
}

func (c *HTTPClient) do(ctx context.Context, method, u, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, Detail: errorDetail(resp.Body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	return nil
}

// errorDetail extracts the human-readable message of an error body. The
// server may use any of "detail", "message" or "error"; FastAPI style
// validation errors put a list under "detail".
func errorDetail(r io.Reader) string {
	raw, _ := io.ReadAll(io.LimitReader(r, maxErrorBody))

	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		return strings.TrimSpace(string(raw))
	}
	for _, key := range []string{"detail", "message", "error"} {
		switch v := body[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case nil:
		default:
			b, _ := json.Marshal(v)
			return string(b)
		}
	}
	return strings.TrimSpace(string(raw))
}
