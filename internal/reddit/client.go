package reddit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/oauth2"

	"github.com/ppiankov/answermirror/internal/model"
	"github.com/ppiankov/answermirror/internal/ratelimit"
)

// maxResponseBytes caps API response bodies
const maxResponseBytes = 8 << 20

// StatusError is returned for non-2xx API responses
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status: %d %s", e.StatusCode, e.Body)
}

// Client talks to the Reddit OAuth API as a script application
type Client struct {
	cfg       model.RedditConfig
	api       *http.Client
	transport *oauth2.Transport
	tokens    *passwordSource
	logger    *slog.Logger
}

// New creates a client. No request is made until the first call.
func New(cfg model.RedditConfig, logger *slog.Logger) (*Client, error) {
	if cfg.ClientID == "" || cfg.Username == "" {
		return nil, errors.New("reddit client_id and username are required")
	}
	if cfg.UserAgent == "" {
		return nil, errors.New("reddit user_agent is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	limiter := ratelimit.NewLimiter(cfg.RequestsPerSecond, cfg.Burst)
	transport := &apiTransport{
		base:      &http.Transport{Proxy: newProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy)},
		userAgent: cfg.UserAgent,
		limiter:   limiter,
	}
	base := &http.Client{Timeout: cfg.Timeout, Transport: transport}

	oauthCfg := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL:  cfg.TokenURL,
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}

	tokens := &passwordSource{
		cfg:      oauthCfg,
		client:   base,
		username: cfg.Username,
		password: cfg.Password,
	}

	authed := &oauth2.Transport{
		Source: oauth2.ReuseTokenSource(nil, tokens),
		Base:   transport,
	}

	return &Client{
		cfg:       cfg,
		api:       &http.Client{Timeout: cfg.Timeout, Transport: authed},
		transport: authed,
		tokens:    tokens,
		logger:    logger,
	}, nil
}

// RefreshAuth fetches a fresh access token
func (c *Client) RefreshAuth(ctx context.Context) error {
	tok, err := c.tokens.fetch(ctx)
	if err != nil {
		return fmt.Errorf("refresh auth: %w", err)
	}
	c.transport.Source = oauth2.ReuseTokenSource(tok, c.tokens)
	c.logger.Debug("access token refreshed", "expires", tok.Expiry)
	return nil
}

// passwordSource obtains tokens with the resource owner password grant.
// Script apps get no refresh token, so expiry triggers a new grant.
type passwordSource struct {
	cfg      *oauth2.Config
	client   *http.Client
	username string
	password string

	mu sync.Mutex
}

func (s *passwordSource) Token() (*oauth2.Token, error) {
	return s.fetch(context.Background())
}

func (s *passwordSource) fetch(ctx context.Context) (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.client)
	tok, err := s.cfg.PasswordCredentialsToken(ctx, s.username, s.password)
	if err != nil {
		return nil, fmt.Errorf("password grant: %w", err)
	}
	return tok, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	u := strings.TrimRight(c.cfg.BaseURL, "/") + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	return c.do(req)
}

func (c *Client) post(ctx context.Context, path string, form url.Values) ([]byte, error) {
	u := strings.TrimRight(c.cfg.BaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.api.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet := string(body)
		if len(snippet) > 200 {
			snippet = snippet[:200]
		}
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, &StatusError{StatusCode: resp.StatusCode, Body: snippet})
	}
	return body, nil
}

// permalink turns a site-relative permalink into an absolute URL
func (c *Client) permalink(path string) string {
	if path == "" || strings.HasPrefix(path, "http") {
		return path
	}
	return strings.TrimRight(c.cfg.WebURL, "/") + path
}
