package httpclient

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	appLogger "github.com/fastygo/storefront/pkg/logger"
)

// TokenSource returns the bearer token to attach, or "" for none.
type TokenSource func() string

// Options tune the underlying fasthttp client.
type Options struct {
	Timeout   time.Duration
	RateLimit float64
	RateBurst int
	UserAgent string
	// Dial overrides connection setup; tests use it with in-memory listeners.
	Dial fasthttp.DialFunc
}

// Response is a fully read reply.
type Response struct {
	Status int
	Body   []byte
}

// Decode unmarshals the JSON body into out.
func (r *Response) Decode(out interface{}) error {
	return json.Unmarshal(r.Body, out)
}

// Message extracts a human-readable message from the body, if it carries one.
func (r *Response) Message() string {
	return ErrorMessage(r.Body)
}

// Client is the generic request client shared by the identity and catalog gateways.
type Client struct {
	http    *fasthttp.Client
	tokens  TokenSource
	limiter *rate.Limiter
	timeout time.Duration
	logger  *zap.Logger
}

// New builds a client. A nil TokenSource never attaches Authorization.
func New(tokens TokenSource, opts Options, logger *zap.Logger) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if tokens == nil {
		tokens = func() string { return "" }
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	return &Client{
		http: &fasthttp.Client{
			Name:                     opts.UserAgent,
			Dial:                     opts.Dial,
			ReadTimeout:              opts.Timeout,
			WriteTimeout:             opts.Timeout,
			NoDefaultUserAgentHeader: opts.UserAgent == "",
		},
		tokens:  tokens,
		limiter: limiter,
		timeout: opts.Timeout,
		logger:  logger,
	}
}

// Do sends method to url with payload encoded as JSON (nil sends no body).
// Any HTTP status is returned as a Response; only transport failures are errors.
func (c *Client) Do(ctx context.Context, method, url string, payload interface{}) (*Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	reqID := appLogger.RequestID(ctx)
	if reqID == "" {
		reqID = uuid.NewString()
	}
	log := c.logger.With(zap.String("request_id", reqID), zap.String("method", method), zap.String("url", url))

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(method)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	if token := c.tokens(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if payload != nil {
		body, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		req.Header.SetContentType("application/json")
		req.SetBodyRaw(body)
	}

	started := time.Now()
	if err := c.http.DoDeadline(req, resp, c.deadline(ctx)); err != nil {
		log.Warn("request failed", zap.Error(err))
		return nil, err
	}

	out := &Response{
		Status: resp.StatusCode(),
		Body:   append([]byte(nil), resp.Body()...),
	}
	log.Debug("request completed", zap.Int("status", out.Status), zap.Duration("elapsed", time.Since(started)))
	return out, nil
}

func (c *Client) deadline(ctx context.Context) time.Time {
	deadline := time.Now().Add(c.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		return ctxDeadline
	}
	return deadline
}

// ErrorMessage returns body["message"] for JSON objects, the string for JSON
// strings, the trimmed text for plain-text bodies, and "" otherwise.
func ErrorMessage(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return ""
	}

	switch trimmed[0] {
	case '{':
		var obj struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(body, &obj); err == nil {
			return obj.Message
		}
		return ""
	case '"':
		var s string
		if err := json.Unmarshal(body, &s); err == nil {
			return s
		}
		return ""
	case '[':
		return ""
	default:
		return trimmed
	}
}
