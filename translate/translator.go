// Package translate provides the remote translation client with a bounded
// in-memory cache and graceful degradation: when the backend is unreachable
// the original text is returned unchanged so reading can continue in the
// source language.
package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/JustinDev-afk/languagebridge/speech"
)

// request and response bodies of the translation backend.
type translateRequest struct {
	Text string `json:"text"`
	From string `json:"from"`
	To   string `json:"to"`
}

type translateResponse struct {
	Translation string         `json:"translation"`
	Usage       map[string]any `json:"usage,omitempty"`
}

// Options configure the translation client.
type Options struct {
	Endpoint          string
	Key               string
	CacheSize         int
	RequestsPerSecond float64
	HTTPClient        *http.Client
}

// Client talks to the remote translation endpoint. It caches results,
// throttles after quota errors, and degrades to the source text on failure
// instead of propagating errors to the caller. It implements
// speech.Translator.
type Client struct {
	endpoint string
	key      string
	httpc    *http.Client
	cache    *Cache
	limiter  *rate.Limiter
	rps      rate.Limit

	mu      sync.Mutex
	onFault speech.FaultHandler

	logger *log.Logger
}

// NewClient creates a translation client.
func NewClient(opts Options) *Client {
	if opts.CacheSize == 0 {
		opts.CacheSize = 100
	}
	if opts.RequestsPerSecond == 0 {
		opts.RequestsPerSecond = 10
	}
	httpc := opts.HTTPClient
	if httpc == nil {
		httpc = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		endpoint: opts.Endpoint,
		key:      opts.Key,
		httpc:    httpc,
		cache:    NewCache(opts.CacheSize),
		limiter:  rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1+int(opts.RequestsPerSecond)),
		rps:      rate.Limit(opts.RequestsPerSecond),
		logger:   log.Default().With("component", "translate"),
	}
}

// OnFault registers the notification side-channel for quota and credential
// faults. Degradation itself is silent; only classified service faults are
// reported here.
func (c *Client) OnFault(fn speech.FaultHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onFault = fn
}

// Cache exposes the underlying cache, mainly for stats.
func (c *Client) Cache() *Cache {
	return c.cache
}

// Translate converts text from one language to another. On remote failure it
// logs, raises a fault on the side-channel when the failure is classified,
// and returns the original text with a nil error. A non-nil error is
// returned only when the call was aborted before producing a result (context
// cancellation).
func (c *Client) Translate(ctx context.Context, text, from, to string) (string, error) {
	if strings.TrimSpace(text) == "" || from == to {
		return text, nil
	}

	key := Key(from, to, text)
	if cached, ok := c.cache.Get(key); ok {
		return cached, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	translated, err := c.post(ctx, text, from, to)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		kind := speech.KindOf(err)
		switch kind {
		case speech.FaultQuotaExceeded:
			// Back off hard for the cool-down window after a quota hit.
			c.limiter.SetLimit(rate.Every(5 * time.Second))
			time.AfterFunc(time.Minute, func() {
				c.limiter.SetLimit(c.rps)
			})
			c.fault(kind, err)
		case speech.FaultInvalidCredential, speech.FaultSessionExpired:
			c.fault(kind, err)
		default:
			c.fault(speech.FaultTranslationFailed, err)
		}
		c.logger.Warn("translation degraded to source text",
			"from", from, "to", to, "err", err)
		return text, nil
	}

	c.cache.Put(key, translated)
	return translated, nil
}

// post performs the actual HTTP exchange with the backend.
func (c *Client) post(ctx context.Context, text, from, to string) (string, error) {
	body, err := json.Marshal(translateRequest{Text: text, From: from, To: to})
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.key != "" {
		req.Header.Set("Authorization", "Bearer "+c.key)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("translation request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return "", speech.NewServiceError(speech.FaultInvalidCredential, "translate", speech.ErrInvalidCredential)
	case http.StatusForbidden:
		return "", speech.NewServiceError(speech.FaultSessionExpired, "translate", speech.ErrSessionExpired)
	case http.StatusTooManyRequests:
		return "", speech.NewServiceError(speech.FaultQuotaExceeded, "translate", speech.ErrQuotaExceeded)
	default:
		return "", fmt.Errorf("translation backend returned %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}
	var out translateResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	if out.Translation == "" {
		return "", fmt.Errorf("empty translation in response")
	}
	return out.Translation, nil
}

func (c *Client) fault(kind speech.FaultKind, err error) {
	c.mu.Lock()
	fn := c.onFault
	c.mu.Unlock()
	if fn != nil {
		fn(speech.Fault{Kind: kind, Component: "translate", Err: err})
	}
}
