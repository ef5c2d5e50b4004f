package lobbysdk

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/aussiebroadwan/lobby/pkg/credstore"
	"github.com/aussiebroadwan/lobby/pkg/slogx"
)

// DefaultTimeout bounds every outbound call unless the caller supplies a
// different HTTPClient.
const DefaultTimeout = 10 * time.Second

// UnauthorizedHook runs synchronously when the service answers 401, before
// Send returns to its caller.
type UnauthorizedHook func(ctx context.Context)

// Client is the request pipeline for the lobby service. Every call reads the
// current token from Store, attaches it, and normalises the response into an
// Envelope or one of the typed errors in this package.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	// Limiter throttles outbound calls when set. Nil means no limit.
	Limiter *rate.Limiter

	store  credstore.Store
	logger *slog.Logger

	hooksMu sync.RWMutex
	hooks   []UnauthorizedHook

	volatileToken atomic.Pointer[func() string]
}

// NewClient creates a client for the service at baseURL. Tokens are read
// from store on every call; the client itself never writes to it.
func NewClient(baseURL string, store credstore.Store, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout:   DefaultTimeout,
			Transport: slogx.NewTransport(nil, logger),
		},
		store:  store,
		logger: logger,
	}
}

// SetRateLimit caps the client at rps requests per second. Zero or negative
// disables the limit.
func (c *Client) SetRateLimit(rps float64) {
	if rps <= 0 {
		c.Limiter = nil
		return
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	c.Limiter = rate.NewLimiter(rate.Limit(rps), burst)
}

// Store returns the credential store the client reads tokens from.
func (c *Client) Store() credstore.Store { return c.store }

// OnUnauthorized registers a hook for transport 401 responses. Hooks run in
// registration order.
func (c *Client) OnUnauthorized(hook UnauthorizedHook) {
	c.hooksMu.Lock()
	defer c.hooksMu.Unlock()
	c.hooks = append(c.hooks, hook)
}

func (c *Client) runUnauthorizedHooks(ctx context.Context) {
	c.hooksMu.RLock()
	hooks := make([]UnauthorizedHook, len(c.hooks))
	copy(hooks, c.hooks)
	c.hooksMu.RUnlock()

	for _, hook := range hooks {
		hook(ctx)
	}
}
