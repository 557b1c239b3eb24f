package inline

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
)

// Sentinel errors for image inlining.
var (
	ErrLocalImage    = errors.New("local image references cannot be inlined")
	ErrFetch         = errors.New("image fetch failed")
	ErrImageTooLarge = errors.New("image exceeds size limit")
	ErrNotAnImage    = errors.New("content is not an image")
)

// Defaults.
const (
	DefaultMaxBytes = 10 << 20
	DefaultTimeout  = 15 * time.Second
	svgDataPrefix   = "data:image/svg+xml;charset=utf-8,"
)

// Inliner turns image references into data URIs.
type Inliner struct {
	client    *http.Client
	anonymous *http.Client
	log       *zap.Logger
	maxBytes  int64
}

// Option configures an Inliner.
type Option func(*Inliner)

// WithHTTPClient sets the client used for the primary fetch. Its cookie
// jar, if any, is never used for the fallback refetch.
func WithHTTPClient(c *http.Client) Option {
	return func(i *Inliner) {
		if c != nil {
			i.client = c
		}
	}
}

// WithLogger sets the logger for non-fatal inlining failures.
func WithLogger(l *zap.Logger) Option {
	return func(i *Inliner) {
		if l != nil {
			i.log = l
		}
	}
}

// WithMaxBytes limits the size of a fetched image.
// Panics if n <= 0.
func WithMaxBytes(n int64) Option {
	if n <= 0 {
		panic("inline: max bytes must be positive")
	}
	return func(i *Inliner) {
		i.maxBytes = n
	}
}

// New creates an Inliner.
func New(opts ...Option) *Inliner {
	i := &Inliner{
		client:   &http.Client{Timeout: DefaultTimeout},
		log:      zap.NewNop(),
		maxBytes: DefaultMaxBytes,
	}
	for _, opt := range opts {
		opt(i)
	}
	// Same transport, no jar: the refetch must not carry credentials.
	i.anonymous = &http.Client{
		Transport: i.client.Transport,
		Timeout:   i.client.Timeout,
	}
	return i
}

// Inline returns a data URI for ref.
//
//   - data: URIs are returned unchanged.
//   - http(s) images with a declared type are embedded as is; SVG is kept
//     as percent-encoded markup, anything else is base64 encoded.
//   - file: URLs and bare paths yield "" and ErrLocalImage.
//
// If the primary fetch fails or declares no type, the image is refetched
// anonymously, sniffed and re-encoded to PNG. If that fails too, ref is
// returned unchanged without error.
func (i *Inliner) Inline(ctx context.Context, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", nil
	}
	if hasScheme(ref, "data:") {
		return ref, nil
	}
	if !hasScheme(ref, "http://") && !hasScheme(ref, "https://") {
		return "", fmt.Errorf("%w: %s", ErrLocalImage, ref)
	}

	body, contentType, err := i.fetch(ctx, i.client, ref)
	if err == nil && contentType != "" {
		return encode(body, contentType), nil
	}
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		i.log.Debug("primary image fetch failed", zap.String("ref", ref), zap.Error(err))
	}

	uri, ferr := i.fallback(ctx, ref)
	if ferr != nil {
		i.log.Warn("image fallback failed, keeping reference",
			zap.String("ref", ref), zap.Error(ferr))
		return ref, nil
	}
	return uri, nil
}

// Fetch GETs an http(s) image with the primary client and returns its body
// and declared media type ("" when absent or generic).
func (i *Inliner) Fetch(ctx context.Context, ref string) ([]byte, string, error) {
	if !hasScheme(ref, "http://") && !hasScheme(ref, "https://") {
		return nil, "", fmt.Errorf("%w: %s", ErrLocalImage, ref)
	}
	return i.fetch(ctx, i.client, ref)
}

// fallback refetches ref without credentials and re-encodes it to PNG.
func (i *Inliner) fallback(ctx context.Context, ref string) (string, error) {
	body, _, err := i.fetch(ctx, i.anonymous, ref)
	if err != nil {
		return "", err
	}
	png, err := ToPNG(body)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}

// fetch GETs ref and returns the body and its declared media type. An
// absent or generic binary type is reported as "".
func (i *Inliner) fetch(ctx context.Context, client *http.Client, ref string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrFetch, err)
	}
	req.Header.Set("Accept", "image/*")

	resp, err := client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", fmt.Errorf("%w: HTTP %d", ErrFetch, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, i.maxBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrFetch, err)
	}
	if int64(len(body)) > i.maxBytes {
		return nil, "", fmt.Errorf("%w: more than %d bytes", ErrImageTooLarge, i.maxBytes)
	}

	return body, declaredType(resp.Header.Get("Content-Type")), nil
}

func declaredType(header string) string {
	mediaType, _, err := mime.ParseMediaType(header)
	if err != nil || mediaType == "application/octet-stream" {
		return ""
	}
	return mediaType
}

func encode(body []byte, mediaType string) string {
	if mediaType == "image/svg+xml" {
		return svgDataPrefix + url.PathEscape(string(body))
	}
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(body)
}

// Sniff returns the detected media type of data.
func Sniff(data []byte) string {
	return mimetype.Detect(data).String()
}

func hasScheme(ref, scheme string) bool {
	return len(ref) >= len(scheme) && strings.EqualFold(ref[:len(scheme)], scheme)
}
