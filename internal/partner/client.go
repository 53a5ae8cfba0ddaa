// Package partner is the client for the custodial wallet and banking partner.
//
// Every request is HMAC signed, carries the API key, and waits on the
// client's own token bucket before it is sent. Non-2xx responses become
// *Error values carrying the partner's HTTP status and error code. The client
// never retries; callers decide.
package partner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

const (
	HeaderAPIKey         = "X-Api-Key"
	HeaderIdempotencyKey = "Idempotency-Key"

	maxErrorBody = 4 << 10
)

// Config holds the partner connection settings.
type Config struct {
	BaseURL   string
	APIKey    string
	APISecret string
	// RPS is the sustained outbound request rate; Burst the bucket depth.
	RPS     float64
	Burst   int
	Timeout time.Duration
}

// Client is safe for concurrent use. Its token bucket is per instance, so a
// process that wants one global budget shares one Client.
type Client struct {
	baseURL string
	apiKey  string
	secret  []byte

	httpClient *http.Client
	limiter    *rate.Limiter
	now        func() time.Time
	logger     *slog.Logger
	metrics    *Metrics
	tracer     trace.Tracer
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func WithMetrics(m *Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithClock overrides the signing timestamp source.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// New validates cfg and builds a client. Missing credentials fail here so no
// unsigned request can ever be attempted.
func New(cfg Config, opts ...Option) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" || strings.TrimSpace(cfg.APISecret) == "" {
		return nil, ErrMissingCredentials
	}
	if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
		return nil, errors.New("partner: base URL is invalid")
	}
	if cfg.RPS <= 0 {
		cfg.RPS = 5
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		secret:     []byte(cfg.APISecret),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RPS), cfg.Burst),
		now:        time.Now,
		tracer:     otel.Tracer("propex/partner"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// call is one outbound request. route is the path template used for metrics
// and span names; path is the concrete path (with query).
type call struct {
	method         string
	route          string
	path           string
	body           any
	idempotencyKey string
}

func (c *Client) do(ctx context.Context, in call, out any) (err error) {
	ctx, span := c.tracer.Start(ctx, "partner "+in.method+" "+in.route,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", in.method),
			attribute.String("http.route", in.route),
		),
	)
	start := time.Now()
	status := 0
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.SetAttributes(attribute.Int("http.status_code", status))
		span.End()
		c.observe(in.route, status, err, time.Since(start))
	}()

	if err := c.limiter.Wait(ctx); err != nil {
		return &Error{Code: CodeRateLimitWait, Message: "waiting for request budget", Err: err}
	}

	var payload []byte
	if in.body != nil {
		if payload, err = json.Marshal(in.body); err != nil {
			return &Error{Code: CodeTransport, Message: "encode request", Err: err}
		}
	}

	req, err := http.NewRequestWithContext(ctx, in.method, c.baseURL+in.path, bytes.NewReader(payload))
	if err != nil {
		return &Error{Code: CodeTransport, Message: "build request", Err: err}
	}
	ts := strconv.FormatInt(c.now().UnixMilli(), 10)
	req.Header.Set("Authorization", AuthorizationHeader(c.secret, ts, in.method, req.URL.RequestURI(), payload))
	req.Header.Set(HeaderAPIKey, c.apiKey)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if in.idempotencyKey != "" {
		req.Header.Set(HeaderIdempotencyKey, in.idempotencyKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Error{Code: CodeTransport, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()
	status = resp.StatusCode

	if status < 200 || status > 299 {
		return decodeError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{StatusCode: status, Code: CodeDecode, Message: "decode response", Err: err}
	}
	return nil
}

func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	perr := &Error{StatusCode: resp.StatusCode}

	var body errorBody
	if json.Unmarshal(raw, &body) == nil {
		perr.Code, perr.Message = body.Code, body.Message
		if body.Error != nil {
			perr.Code, perr.Message = body.Error.Code, body.Error.Message
		}
	}
	if perr.Code == "" {
		perr.Code = "http_" + strconv.Itoa(resp.StatusCode)
	}
	if perr.Message == "" {
		perr.Message = strings.TrimSpace(string(raw))
		if perr.Message == "" {
			perr.Message = http.StatusText(resp.StatusCode)
		}
	}
	return perr
}

func (c *Client) observe(route string, status int, err error, elapsed time.Duration) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
		if pe, ok := AsError(err); ok {
			outcome = pe.Code
		}
	}
	if c.metrics != nil {
		c.metrics.Requests.WithLabelValues(route, strconv.Itoa(status), outcome).Inc()
		c.metrics.Duration.WithLabelValues(route).Observe(elapsed.Seconds())
	}
	if c.logger != nil {
		level := slog.LevelDebug
		if err != nil {
			level = slog.LevelWarn
		}
		c.logger.Log(context.Background(), level, "partner request",
			"route", route,
			"status", status,
			"outcome", outcome,
			"duration_ms", elapsed.Milliseconds(),
		)
	}
}
