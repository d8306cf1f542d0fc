// Package endpoint executes SPARQL SELECT queries over HTTP and decodes the
// application/sparql-results+json response.
//
// Every failure is terminal for the current request: nothing is retried.
// The optional rate limiter only paces outbound requests.
package endpoint

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/roach88/sparqlconn/internal/connerr"
)

// ProbeQuery is sent by Probe to check that an endpoint answers in JSON.
const ProbeQuery = "SELECT * {?x ?y ?z} LIMIT 1"

// Wire protocol headers.
const (
	ContentTypeForm       = "application/x-www-form-urlencoded"
	ContentTypeSPARQLJSON = "application/sparql-results+json"
	maxErrorBodyBytes     = 1024
)

// User-facing messages.
const (
	msgExecuteFailed = "Failed to execute the query. Please, check the endpoint URL and the query."
	msgParseFailed   = "Failed to parse the query results. Please, check that the SPARQL endpoint supports 'application/sparql-results+json'."
	msgFormatFailed  = "Failed to handle SPARQL endpoint result format. Please, check that SPARQL endpoint supports JSON as result format."
	msgProbeFailed   = "Failed to communicate with the endpoint. Please, check SPARQL endpoint url."
)

// Options configures a Client.
type Options struct {
	// HTTPClient performs requests. Defaults to a new http.Client.
	HTTPClient *http.Client

	// Timeout bounds each request. Zero leaves the request governed only by
	// the caller's context.
	Timeout time.Duration

	// RequestsPerSecond paces outbound requests. Zero disables pacing.
	RequestsPerSecond float64

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Client sends queries to SPARQL endpoints.
type Client struct {
	http    *http.Client
	timeout time.Duration
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewClient creates a Client from opts.
func NewClient(opts Options) *Client {
	c := &Client{
		http:    opts.HTTPClient,
		timeout: opts.Timeout,
		logger:  opts.Logger,
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if opts.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}
	return c
}

// Query POSTs query to endpointURL and decodes the results.
//
// Errors:
//   - ENDPOINT_UNREACHABLE: transport failure, cancellation or HTTP status >= 400
//   - MALFORMED_RESPONSE: the body is not JSON
//   - UNSUPPORTED_RESULT_FORMAT: the JSON lacks head or results
func (c *Client) Query(ctx context.Context, endpointURL, query string) (*Results, error) {
	body, err := c.post(ctx, endpointURL, query)
	if err != nil {
		c.logger.Error("query execution failed", "endpoint", endpointURL, "error", err)
		return nil, connerr.Wrap(connerr.CodeEndpointUnreachable, msgExecuteFailed, true, err)
	}

	res, err := Decode(body)
	if err != nil {
		return nil, c.classifyDecode(endpointURL, err, msgParseFailed)
	}

	c.logger.Debug("query executed",
		"endpoint", endpointURL,
		"vars", len(res.Head.Vars),
		"bindings", len(res.Results.Bindings))
	return res, nil
}

// Probe checks that endpointURL is reachable and answers in the SPARQL JSON
// results format by sending ProbeQuery.
func (c *Client) Probe(ctx context.Context, endpointURL string) error {
	body, err := c.post(ctx, endpointURL, ProbeQuery)
	if err != nil {
		c.logger.Error("endpoint probe failed", "endpoint", endpointURL, "error", err)
		return connerr.Wrap(connerr.CodeEndpointUnreachable, msgProbeFailed, true, err)
	}
	if _, err := Decode(body); err != nil {
		return c.classifyDecode(endpointURL, err, msgProbeFailed)
	}
	return nil
}

func (c *Client) classifyDecode(endpointURL string, err error, notJSONMessage string) error {
	var nj notJSONError
	if errors.As(err, &nj) {
		c.logger.Error("response is not JSON", "endpoint", endpointURL, "error", err)
		return connerr.Wrap(connerr.CodeMalformedResponse, notJSONMessage, true, err)
	}
	c.logger.Error("unsupported result format", "endpoint", endpointURL, "error", err)
	return connerr.Wrap(connerr.CodeUnsupportedResultFormat, msgFormatFailed, true, err)
}

func (c *Client) post(ctx context.Context, endpointURL, query string) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	form := url.Values{"query": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpointURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", ContentTypeForm)
	req.Header.Set("Accept", ContentTypeSPARQLJSON)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return data, nil
}
