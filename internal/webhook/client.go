package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/alnah/go-productsheet/internal/envelope"
)

// DefaultTimeout bounds one webhook call.
const DefaultTimeout = 30 * time.Second

// maxResponseSize caps how much of a response body is read.
const maxResponseSize = 5 << 20

// Sentinel errors. Their messages are shown to the operator as is.
var (
	ErrTimeout         = errors.New("Timeout : le serveur ne répond pas")
	ErrConnection      = errors.New("Erreur de connexion au serveur. Vérifiez votre connexion internet.")
	ErrHTTPStatus      = errors.New("réponse HTTP en erreur")
	ErrInvalidResponse = errors.New("réponse du serveur illisible")
	ErrInvalidURL      = errors.New("invalid webhook URL")
	ErrNoBadgeEndpoint = errors.New("badge endpoint not configured")
)

// StatusError is a non-2xx webhook response. Message is the server's JSON
// "error" field, or "Erreur HTTP <code>".
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string { return e.Message }

// Is makes errors.Is(err, ErrHTTPStatus) match any StatusError.
func (e *StatusError) Is(target error) bool { return target == ErrHTTPStatus }

// Client calls the generation webhook.
type Client struct {
	http          *http.Client
	generateURL   string
	badgesURL     string
	badgeImageURL string
	timeout       time.Duration
	log           *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.http = c
		}
	}
}

// WithTimeout sets the per-call timeout.
// Panics if d <= 0.
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("webhook: timeout must be positive")
	}
	return func(cl *Client) {
		cl.timeout = d
	}
}

// WithLogger sets the client's logger.
func WithLogger(l *zap.Logger) Option {
	return func(cl *Client) {
		if l != nil {
			cl.log = l
		}
	}
}

// WithBadgesURL sets the badge listing endpoint.
func WithBadgesURL(u string) Option {
	return func(cl *Client) {
		cl.badgesURL = u
	}
}

// WithBadgeImageURL sets the badge image endpoint.
func WithBadgeImageURL(u string) Option {
	return func(cl *Client) {
		cl.badgeImageURL = u
	}
}

// NewClient creates a Client posting to generateURL. When no badge
// endpoints are given they derive from generateURL ("/badges" and
// "/badge" suffixes).
func NewClient(generateURL string, opts ...Option) (*Client, error) {
	if err := validateURL(generateURL); err != nil {
		return nil, err
	}
	base := strings.TrimRight(generateURL, "/")
	c := &Client{
		http:          &http.Client{},
		generateURL:   generateURL,
		badgesURL:     base + "/badges",
		badgeImageURL: base + "/badge",
		timeout:       DefaultTimeout,
		log:           zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	for _, u := range []string{c.badgesURL, c.badgeImageURL} {
		if u == "" {
			continue
		}
		if err := validateURL(u); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidURL, raw)
	}
	return nil
}

type generateRequest struct {
	ProductName string `json:"productName"`
	Badge       string `json:"badge,omitempty"`
}

// Generate posts the product name (and optional badge) and returns the raw
// JSON response body.
func (c *Client) Generate(ctx context.Context, productName, badge string) ([]byte, error) {
	payload, err := json.Marshal(generateRequest{ProductName: productName, Badge: badge})
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.generateURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.transportError(ctx, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, c.transportError(ctx, err)
	}

	c.log.Debug("webhook responded",
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(body)),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(resp.StatusCode, body)
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidResponse, snippet(body))
	}
	return body, nil
}

// transportError classifies a failed round trip. A deadline is a timeout;
// a caller cancellation is returned as is; anything else is a connection
// failure.
func (c *Client) transportError(ctx context.Context, err error) error {
	var netErr net.Error
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded),
		errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr) && netErr.Timeout():
		c.log.Warn("webhook timeout", zap.Duration("timeout", c.timeout))
		return ErrTimeout
	case errors.Is(err, context.Canceled):
		return err
	default:
		c.log.Warn("webhook unreachable", zap.Error(err))
		return ErrConnection
	}
}

func statusError(code int, body []byte) error {
	msg := ""
	if gjson.ValidBytes(body) {
		msg = strings.TrimSpace(gjson.GetBytes(body, "error").String())
	}
	if msg == "" {
		msg = fmt.Sprintf("Erreur HTTP %d", code)
	}
	return &StatusError{StatusCode: code, Message: msg}
}

func snippet(b []byte) string {
	const n = 120
	if len(b) > n {
		return string(b[:n]) + "…"
	}
	return string(b)
}

// ListBadges fetches the selectable badges. It is best-effort: any failure
// is logged and yields an empty slice.
func (c *Client) ListBadges(ctx context.Context) []envelope.BadgeOption {
	opts, err := c.FetchBadges(ctx)
	if err != nil {
		c.log.Warn("badge list unavailable", zap.Error(err))
		return []envelope.BadgeOption{}
	}
	return opts
}

// FetchBadges is ListBadges with the failure reported.
func (c *Client) FetchBadges(ctx context.Context) ([]envelope.BadgeOption, error) {
	if c.badgesURL == "" {
		return nil, ErrNoBadgeEndpoint
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.badgesURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.transportError(ctx, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, c.transportError(ctx, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(resp.StatusCode, body)
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidResponse, snippet(body))
	}
	return envelope.UnwrapBadgeList(body), nil
}

// BadgeImageURL returns the image URL of a badge. cb is a cache-busting
// token; pass "" to get a fresh one.
func (c *Client) BadgeImageURL(name, cb string) string {
	if cb == "" {
		cb = NewCacheBuster()
	}
	sep := "?"
	if strings.Contains(c.badgeImageURL, "?") {
		sep = "&"
	}
	return c.badgeImageURL + sep + "name=" + queryEscape(name) + "&cb=" + queryEscape(cb)
}

// queryEscape escapes a query value with %20 for spaces.
func queryEscape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// NewCacheBuster returns a unique token for badge image URLs.
func NewCacheBuster() string {
	return uuid.NewString()
}
