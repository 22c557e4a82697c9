package client

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// Version is reported in the User-Agent header and by the CLI.
	Version = "0.2.0"

	// DefaultShortURLBaseURL is the default short-link service URL.
	DefaultShortURLBaseURL = "https://linkove.icu/api"

	// DefaultPasteBaseURL is the default paste service URL.
	DefaultPasteBaseURL = "https://paste.icakad.com"

	// DefaultShortURLTimeout is the default timeout of the short-link client.
	DefaultShortURLTimeout = 15 * time.Second

	// DefaultPasteTimeout is the default timeout of the paste client.
	DefaultPasteTimeout = 10 * time.Second
)

var errEmptyBaseURL = errors.New("base URL cannot be empty")

// Endpoint describes one hosted service. It is fixed when a client is built.
type Endpoint struct {
	// BaseURL never ends with a slash.
	BaseURL        string
	Token          string
	Timeout        time.Duration
	DefaultHeaders map[string]string
}

// Request is a single call made through the executor.
type Request struct {
	Method string
	// Path is joined to the base URL. An empty path targets the base URL
	// itself and an absolute http(s) URL is used unchanged.
	Path   string
	Header map[string]string
	Query  map[string]string
	// Body is sent as is; callers encode JSON themselves.
	Body []byte
}

// Response is the raw outcome of one round trip. Status codes >= 400 are
// reported here rather than as errors.
type Response struct {
	Method string
	URL    string
	Status int
	Header http.Header
	Body   []byte
}

// ContentType returns the declared Content-Type header.
func (r *Response) ContentType() string {
	return r.Header.Get("Content-Type")
}

// Option configures a client.
type Option func(*settings)

type settings struct {
	endpoint   Endpoint
	httpClient *http.Client
	logger     zerolog.Logger
}

// WithBaseURL sets a custom base URL for the service.
func WithBaseURL(baseURL string) Option {
	return func(s *settings) {
		s.endpoint.BaseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithToken sets the bearer token sent in the Authorization header.
func WithToken(token string) Option {
	return func(s *settings) {
		s.endpoint.Token = token
	}
}

// WithTimeout sets the per request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(s *settings) {
		s.endpoint.Timeout = timeout
	}
}

// WithHeader adds a header sent with every request.
func WithHeader(key, value string) Option {
	return func(s *settings) {
		s.endpoint.DefaultHeaders[http.CanonicalHeaderKey(key)] = value
	}
}

// WithHTTPClient sets a custom HTTP client, e.g. one with a test transport.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(s *settings) {
		s.httpClient = httpClient
	}
}

// WithLogger enables debug logging of every round trip.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

func defaultSettings(baseURL string, timeout time.Duration) *settings {
	return &settings{
		endpoint: Endpoint{
			BaseURL: baseURL,
			Timeout: timeout,
			DefaultHeaders: map[string]string{
				"Accept":     "application/json",
				"User-Agent": "icakad-go/" + Version,
			},
		},
		logger: zerolog.Nop(),
	}
}

// executor performs requests against one Endpoint. It is safe for
// sequential reuse; concurrent use needs one client per goroutine.
type executor struct {
	endpoint Endpoint
	http     *resty.Client
	log      zerolog.Logger
}

func newExecutor(s *settings) (*executor, error) {
	if s.endpoint.BaseURL == "" {
		return nil, errEmptyBaseURL
	}

	var rc *resty.Client
	if s.httpClient != nil {
		// resty sets the timeout on the client it wraps; keep the caller's untouched.
		hc := *s.httpClient
		rc = resty.NewWithClient(&hc)
	} else {
		rc = resty.New()
	}
	if s.endpoint.Timeout > 0 {
		rc.SetTimeout(s.endpoint.Timeout)
	}

	return &executor{
		endpoint: s.endpoint,
		http:     rc,
		log:      s.logger,
	}, nil
}

// URL builds the absolute URL for path.
func (e *executor) URL(path string) string {
	if path == "" {
		return e.endpoint.BaseURL
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return e.endpoint.BaseURL + path
}

// headers merges the default headers with extra. Extra wins; the bearer
// token is only added when no Authorization header is present.
func (e *executor) headers(extra map[string]string) map[string]string {
	merged := make(map[string]string, len(e.endpoint.DefaultHeaders)+len(extra)+2)
	for k, v := range e.endpoint.DefaultHeaders {
		merged[http.CanonicalHeaderKey(k)] = v
	}
	for k, v := range extra {
		merged[http.CanonicalHeaderKey(k)] = v
	}
	if e.endpoint.Token != "" {
		if _, ok := merged["Authorization"]; !ok {
			merged["Authorization"] = "Bearer " + e.endpoint.Token
		}
	}
	if _, ok := merged["X-Request-Id"]; !ok {
		merged["X-Request-Id"] = uuid.NewString()
	}
	return merged
}

// Execute performs one round trip. The error is non-nil only when no
// response was obtained.
func (e *executor) Execute(ctx context.Context, req Request) (*Response, error) {
	method := strings.ToUpper(req.Method)
	target := e.URL(req.Path)
	headers := e.headers(req.Header)

	r := e.http.R().
		SetContext(ctx).
		SetHeaders(headers)
	if len(req.Query) > 0 {
		r.SetQueryParams(req.Query)
	}
	if req.Body != nil {
		r.SetBody(req.Body)
	}

	resp, err := r.Execute(method, target)
	if err != nil {
		e.log.Debug().
			Err(err).
			Str("method", method).
			Str("url", target).
			Str("request_id", headers["X-Request-Id"]).
			Msg("http request failed")
		return nil, err
	}

	e.log.Debug().
		Str("method", method).
		Str("url", target).
		Int("status", resp.StatusCode()).
		Dur("duration", resp.Time()).
		Str("request_id", headers["X-Request-Id"]).
		Msg("http request")

	return &Response{
		Method: method,
		URL:    target,
		Status: resp.StatusCode(),
		Header: resp.Header(),
		Body:   resp.Body(),
	}, nil
}

// call executes req and normalizes the response. The returned *APIError is
// nil on success.
func (e *executor) call(ctx context.Context, req Request) (*Body, *APIError) {
	resp, err := e.Execute(ctx, req)
	if err != nil {
		apiErr := transportError(e.URL(req.Path), err)
		return nil, &apiErr
	}

	switch res := Normalize(resp).(type) {
	case Success:
		return res.Value, nil
	case Failure:
		apiErr := failureError(res)
		return nil, &apiErr
	default:
		apiErr := APIError{Kind: KindUnknown, Message: "unexpected normalization result"}
		return nil, &apiErr
	}
}
