package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/ghaggin/randomtables/internal/config"
	"github.com/ghaggin/randomtables/internal/model"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/net/publicsuffix"
)

const maxErrorBody = 4 << 10

var errMissingUsername = errors.New("identity has no username")

// Client talks to the account service. Credentials ride on the session cookie
// held in the client's jar; the client only reads that cookie.
type Client struct {
	base       *url.URL
	http       *http.Client
	cookieName string
	log        *zap.Logger
}

type Params struct {
	fx.In

	Config *config.Config
	Log    *zap.Logger
}

func New(p Params) (*Client, error) {
	base, err := url.Parse(strings.TrimSuffix(p.Config.Backend.URL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}

	return &Client{
		base: base,
		http: &http.Client{
			Jar:     jar,
			Timeout: p.Config.Backend.Timeout,
		},
		cookieName: p.Config.Session.CookieName,
		log:        p.Log,
	}, nil
}

// HasSessionCookie reports whether the jar currently holds the session cookie
// for the backend.
func (c *Client) HasSessionCookie() bool {
	for _, ck := range c.http.Jar.Cookies(c.base) {
		if ck.Name == c.cookieName && ck.Value != "" {
			return true
		}
	}
	return false
}

func (c *Client) CreateAccount(ctx context.Context, creds model.Credentials) error {
	return c.do(ctx, "create account", http.MethodPost, "/signup", creds, nil)
}

func (c *Client) Login(ctx context.Context, creds model.Credentials) (*model.Identity, error) {
	return c.identity(ctx, "login", http.MethodPost, "/login", creds)
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, "logout", http.MethodPost, "/logout", nil, nil)
}

func (c *Client) Whois(ctx context.Context) (*model.Identity, error) {
	return c.identity(ctx, "whois", http.MethodGet, "/whois", nil)
}

func (c *Client) ChangePassword(ctx context.Context, password string) error {
	body := struct {
		Password string `json:"password"`
	}{password}
	return c.do(ctx, "change password", http.MethodPut, "/change-password", body, nil)
}

func (c *Client) ChangeUsername(ctx context.Context, username string) (*model.Identity, error) {
	body := struct {
		Username string `json:"username"`
	}{username}
	return c.identity(ctx, "change username", http.MethodPut, "/change-username", body)
}

func (c *Client) GetAccount(ctx context.Context, id string) (*model.Account, error) {
	var acct model.Account
	path := "/account/id/" + url.PathEscape(id) + "/"
	if err := c.do(ctx, "fetch account", http.MethodGet, path, nil, &acct); err != nil {
		return nil, err
	}
	return &acct, nil
}

// identity performs a call whose answer is the logged in user.
func (c *Client) identity(ctx context.Context, op, method, path string, body any) (*model.Identity, error) {
	var id model.Identity
	if err := c.do(ctx, op, method, path, body, &id); err != nil {
		return nil, err
	}
	if id.Username == "" {
		return nil, fmt.Errorf("%s: decode response: %w", op, errMissingUsername)
	}
	return &id, nil
}

// do performs one round trip. out may be nil when the body is not needed.
func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: marshal request: %w", op, err)
		}
		bodyReader = bytes.NewReader(data)
	}

	target := c.base.JoinPath(path)
	req, err := http.NewRequestWithContext(ctx, method, target.String(), bodyReader)
	if err != nil {
		return fmt.Errorf("%s: create request: %w", op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	c.log.Debug("backend request", zap.String("op", op), zap.String("method", method), zap.String("url", target.String()))

	resp, err := c.http.Do(req)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	c.log.Debug("backend response", zap.String("op", op), zap.Int("status", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		text := strings.TrimSpace(string(msg))
		if text == "" {
			text = http.StatusText(resp.StatusCode)
		}
		return &AuthError{Op: op, Status: resp.StatusCode, Message: text}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}
