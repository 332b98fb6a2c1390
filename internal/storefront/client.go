package storefront

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/classiccarrry/classic-carrry-admin/internal/metrics"
)

// DefaultBaseURL is used when no API URL is configured.
const DefaultBaseURL = "http://localhost:5000/api"

// TokenSource supplies the bearer credential for outgoing requests.
type TokenSource interface {
	Token() string
}

// Options configures a Client.
type Options struct {
	BaseURL      string
	Insecure     bool // skip TLS verification
	ProbeTimeout time.Duration
	Tokens       TokenSource
	Metrics      *metrics.Metrics
	Logger       *zap.Logger

	// HTTPClient overrides the transport; tests pass httptest's client.
	HTTPClient *http.Client
}

// Client issues one authenticated request per logical operation against the
// storefront REST API. It never retries and never caches.
type Client struct {
	rest    *resty.Client
	probe   *resty.Client
	baseURL string
	origin  string
	timeout time.Duration
	tokens  TokenSource
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewClient creates a Client from Options.
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.ProbeTimeout <= 0 {
		opts.ProbeTimeout = 5 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")

	hc := opts.HTTPClient
	if hc == nil {
		transport := &http.Transport{Proxy: http.ProxyFromEnvironment}
		if opts.Insecure {
			transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
		}
		hc = &http.Client{Transport: transport}
	}

	c := &Client{
		baseURL: baseURL,
		origin:  Origin(baseURL),
		timeout: opts.ProbeTimeout,
		tokens:  opts.Tokens,
		metrics: opts.Metrics,
		logger:  opts.Logger,
	}
	c.rest = resty.NewWithClient(hc).
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json").
		SetRetryCount(0).
		SetLogger(opts.Logger.Sugar()).
		OnBeforeRequest(c.authenticate)
	c.probe = resty.NewWithClient(hc).
		SetRetryCount(0).
		SetLogger(opts.Logger.Sugar())
	return c
}

// Origin strips the trailing /api segment from a base URL. The health probe
// targets the origin, not the API root.
func Origin(baseURL string) string {
	return strings.TrimSuffix(strings.TrimRight(baseURL, "/"), "/api")
}

// BaseURL returns the API base URL.
func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) authenticate(_ *resty.Client, req *resty.Request) error {
	if c.tokens == nil {
		return nil
	}
	if token := c.tokens.Token(); token != "" {
		req.SetAuthToken(token)
	}
	return nil
}

// Request is one logical API call.
type Request struct {
	Method string
	Path   string
	Body   interface{}
	Query  url.Values
}

// Response is a normalized success envelope.
type Response struct {
	Status int
	// Data is the raw "data" field of the envelope.
	Data json.RawMessage
	// Extra holds ancillary top-level fields such as "stats" or "pagination".
	Extra map[string]json.RawMessage
}

// Decode unmarshals Data into dest. A missing or null data field leaves dest untouched.
func (r *Response) Decode(dest interface{}) error {
	if len(r.Data) == 0 || string(r.Data) == "null" {
		return nil
	}
	return json.Unmarshal(r.Data, dest)
}

// envelope keys that are not ancillary.
var envelopeKeys = map[string]bool{"success": true, "data": true, "message": true}

// Do performs req and normalizes the result.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	r := c.rest.R().SetContext(ctx)
	if req.Body != nil {
		r.SetHeader("Content-Type", "application/json").SetBody(req.Body)
	}
	if len(req.Query) > 0 {
		r.SetQueryParamsFromValues(req.Query)
	}
	return c.execute(r, req.Method, req.Path)
}

func (c *Client) execute(r *resty.Request, method, path string) (*Response, error) {
	start := time.Now()
	resp, err := r.Execute(method, path)
	if err != nil {
		c.metrics.ObserveRequest(method, 0, time.Since(start))
		c.logger.Debug("storefront request failed",
			zap.String("method", method), zap.String("path", path), zap.Error(err))
		return nil, &NetworkError{Method: method, Path: path, Err: err}
	}
	c.metrics.ObserveRequest(method, resp.StatusCode(), time.Since(start))
	c.logger.Debug("storefront request",
		zap.String("method", method), zap.String("path", path),
		zap.Int("status", resp.StatusCode()), zap.Duration("took", resp.Time()))
	return parseEnvelope(resp.StatusCode(), resp.Body())
}

func parseEnvelope(status int, body []byte) (*Response, error) {
	var env map[string]json.RawMessage
	if len(body) > 0 {
		// A non-JSON body is tolerated; it simply carries no message or data.
		_ = json.Unmarshal(body, &env)
	}

	if status < 200 || status >= 300 {
		apiErr := &APIError{Status: status, Message: DefaultErrorMessage}
		var msg string
		if raw, ok := env["message"]; ok && json.Unmarshal(raw, &msg) == nil && msg != "" {
			apiErr.Message = msg
			apiErr.FromServer = true
		}
		return nil, apiErr
	}

	out := &Response{Status: status, Data: env["data"]}
	for k, v := range env {
		if envelopeKeys[k] {
			continue
		}
		if out.Extra == nil {
			out.Extra = make(map[string]json.RawMessage)
		}
		out.Extra[k] = v
	}
	return out, nil
}
