package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/jonwraymond/websearch/resilience"
)

// DefaultEndpoint is the Custom Search JSON API.
const DefaultEndpoint = "https://www.googleapis.com/customsearch/v1"

const maxBodySize = 1 << 20

// apiResponse models the relevant portion of the Custom Search response.
type apiResponse struct {
	Items []struct {
		Title       string `json:"title"`
		Snippet     string `json:"snippet"`
		HTMLSnippet string `json:"htmlSnippet"`
	} `json:"items"`
}

type client struct {
	endpoint string
	http     *http.Client
}

// NewHTTPClient returns the client used when none is supplied: a pooled
// transport bounded by timeout.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   timeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   timeout,
			ResponseHeaderTimeout: timeout,
			MaxIdleConns:          16,
			MaxIdleConnsPerHost:   8,
			IdleConnTimeout:       90 * time.Second,
			ForceAttemptHTTP2:     true,
		},
	}
}

// search issues one GET and returns at most num normalized results.
func (c *client) search(ctx context.Context, query string, num int, key, cx string) ([]Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	q := req.URL.Query()
	q.Set("q", query)
	q.Set("num", strconv.Itoa(num))
	q.Set("key", key)
	q.Set("cx", cx)
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, redactURL(err, c.endpoint)
	}
	defer resp.Body.Close()

	body := io.LimitReader(resp.Body, maxBodySize)
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, body)
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	var parsed apiResponse
	if err := json.NewDecoder(body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	results := make([]Result, 0, min(len(parsed.Items), num))
	for _, item := range parsed.Items {
		if len(results) >= num {
			break
		}
		desc := item.Snippet
		if desc == "" {
			desc = item.HTMLSnippet
		}
		results = append(results, Result{
			Title:       item.Title,
			Description: CleanDescription(desc),
		})
	}
	return results, nil
}

// redactURL replaces the request URL in transport errors, which would
// otherwise carry the API key into logs and envelopes.
func redactURL(err error, endpoint string) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		urlErr.URL = endpoint
	}
	return err
}

func isTimeout(err error) bool {
	if errors.Is(err, resilience.ErrTimeout) {
		return true
	}
	// A bare context deadline is the caller's own, not the configured one.
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout() && error(netErr) != context.DeadlineExceeded
}

// countsAgainstCircuit is true for failures that say the API is unhealthy:
// 5xx responses, timeouts and transport errors. 4xx responses are caller
// problems (quota, bad key) and leave the circuit alone.
func countsAgainstCircuit(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Temporary()
	}
	return true
}
