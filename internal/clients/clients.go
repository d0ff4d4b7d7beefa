// Package clients provides HTTP clients for the upstream catalog API
package clients

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"go-swapi/internal/domain"
)

// maxErrorBody bounds how much of a failed response is kept in the error message
const maxErrorBody = 512

// HTTPError reports a non-success upstream status
type HTTPError struct {
	StatusCode int
	URL        string
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d from %s: %s", e.StatusCode, e.URL, e.Message)
}

// Options configures the shared transport
type Options struct {
	Timeout            time.Duration
	RateLimit          float64
	Burst              int
	InsecureSkipVerify bool
	UserAgent          string
}

// HTTPClient is a wrapper around http.Client with common configuration
type HTTPClient struct {
	client    *http.Client
	limiter   *rate.Limiter
	userAgent string
}

// NewHTTPClient creates a new HTTP client. A zero RateLimit disables throttling.
func NewHTTPClient(opts Options) *HTTPClient {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "go-swapi/1.0"
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if opts.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in for self-signed upstream mirrors
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RateLimit > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	return &HTTPClient{
		client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
		limiter:   limiter,
		userAgent: opts.UserAgent,
	}
}

// Get performs a GET request and returns the response body
func (c *HTTPClient) Get(ctx context.Context, rawURL string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := strings.TrimSpace(string(body))
		if len(msg) > maxErrorBody {
			msg = msg[:maxErrorBody]
		}
		return nil, &HTTPError{StatusCode: resp.StatusCode, URL: rawURL, Message: msg}
	}

	return body, nil
}

// ResourceClient fetches pages of one upstream collection
type ResourceClient[T any] struct {
	http     *HTTPClient
	baseURL  string
	resource string
}

// NewResourceClient creates a client for {baseURL}/{resource}/
func NewResourceClient[T any](hc *HTTPClient, baseURL, resource string) *ResourceClient[T] {
	return &ResourceClient[T]{
		http:     hc,
		baseURL:  strings.TrimRight(baseURL, "/"),
		resource: strings.Trim(resource, "/"),
	}
}

// Resource returns the upstream collection name
func (c *ResourceClient[T]) Resource() string {
	return c.resource
}

// PageURL returns the URL of a 1-based upstream page
func (c *ResourceClient[T]) PageURL(page int) string {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	return c.baseURL + "/" + c.resource + "/?" + q.Encode()
}

// FetchPage fetches one page of the collection
func (c *ResourceClient[T]) FetchPage(ctx context.Context, page int) (domain.UpstreamPage[T], error) {
	var out domain.UpstreamPage[T]

	body, err := c.http.Get(ctx, c.PageURL(page))
	if err != nil {
		return out, err
	}

	if err := json.Unmarshal(body, &out); err != nil {
		return out, fmt.Errorf("decode %s page %d: %w", c.resource, page, err)
	}
	return out, nil
}

// SwapiClient groups the collections the service reads
type SwapiClient struct {
	People  *ResourceClient[domain.Person]
	Planets *ResourceClient[domain.Planet]
}

// NewSwapiClient creates clients for every supported category sharing one transport
func NewSwapiClient(baseURL string, opts Options) *SwapiClient {
	h := NewHTTPClient(opts)
	return &SwapiClient{
		People:  NewResourceClient[domain.Person](h, baseURL, domain.CategoryPerson.Resource()),
		Planets: NewResourceClient[domain.Planet](h, baseURL, domain.CategoryPlanet.Resource()),
	}
}
