package asset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/gridlayout/pkg/cache"
	"github.com/matzehuels/gridlayout/pkg/grid"
	"github.com/matzehuels/gridlayout/pkg/httputil"
)

// ErrNoPreview is returned when the asset service has no displayable
// content for a reference. It covers every non-success response and every
// transport failure.
var ErrNoPreview = errors.New("no preview available")

// DefaultCacheTTL is how long resolved previews stay in the byte cache.
const DefaultCacheTTL = 24 * time.Hour

// Resolver turns a content-reference id into a preview.
type Resolver interface {
	Resolve(ctx context.Context, refID string) (grid.Preview, error)
}

// ResolverFunc adapts a function to [Resolver].
type ResolverFunc func(ctx context.Context, refID string) (grid.Preview, error)

// Resolve calls f.
func (f ResolverFunc) Resolve(ctx context.Context, refID string) (grid.Preview, error) {
	return f(ctx, refID)
}

// Client resolves previews from an asset service at
// GET {base}/assets/{id}, which answers {"url": ..., "content_type": ...}.
type Client struct {
	base   string
	http   *httputil.Client
	cache  cache.Cache
	keyer  cache.Keyer
	ttl    time.Duration
	logger *log.Logger
}

// ClientOption configures a [Client].
type ClientOption func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.http = httputil.NewClient(hc, nil) }
}

// WithCache caches successful lookups in bc for ttl. A zero ttl selects
// [DefaultCacheTTL].
func WithCache(bc cache.Cache, keyer cache.Keyer, ttl time.Duration) ClientOption {
	return func(c *Client) {
		c.cache = bc
		if keyer != nil {
			c.keyer = keyer
		}
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithLogger sets the logger used for lookup failures.
func WithLogger(l *log.Logger) ClientOption { return func(c *Client) { c.logger = l } }

// NewClient creates a client for the asset service at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		base:   strings.TrimRight(baseURL, "/"),
		http:   httputil.NewClient(nil, nil),
		cache:  cache.NewNullCache(),
		keyer:  cache.NewDefaultKeyer(),
		ttl:    DefaultCacheTTL,
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Resolve looks up refID. Failures are logged at debug level and returned
// as [ErrNoPreview]; the caller shows the item without content.
func (c *Client) Resolve(ctx context.Context, refID string) (grid.Preview, error) {
	if refID == "" {
		return grid.Preview{}, fmt.Errorf("%w: empty reference", ErrNoPreview)
	}

	key := c.keyer.AssetKey(c.base, refID)
	var p grid.Preview
	if ok, _ := cache.GetJSON(ctx, c.cache, cache.KeyTypeAsset, key, &p); ok {
		return p, nil
	}

	if err := c.http.GetJSON(ctx, c.base+"/assets/"+url.PathEscape(refID), &p); err != nil {
		c.logger.Debug("asset lookup failed", "ref", refID, "err", err)
		return grid.Preview{}, fmt.Errorf("%w: %s: %v", ErrNoPreview, refID, err)
	}
	if p.URL == "" {
		return grid.Preview{}, fmt.Errorf("%w: %s: empty url", ErrNoPreview, refID)
	}

	if err := cache.SetJSON(ctx, c.cache, cache.KeyTypeAsset, key, p, c.ttl); err != nil {
		c.logger.Debug("asset cache write failed", "ref", refID, "err", err)
	}
	return p, nil
}

// Ensure Client implements Resolver.
var _ Resolver = (*Client)(nil)
