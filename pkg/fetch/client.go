// Package fetch holds the four request helpers used to talk to the
// WGDashboard REST API. They share one header policy and one failure policy:
// any failed request sends the user back to the sign-in page.
package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/wgdashboard/wgdash/pkg/log"
	"github.com/wgdashboard/wgdash/pkg/router"
	"github.com/wgdashboard/wgdash/pkg/telemetry"
)

const (
	HeaderAPIKey = "wg-dashboard-apikey"
	SignInPath   = "/signin"

	NotificationTitle   = "WGDashboard"
	SessionEndedMessage = "Sign in session ended, please sign in again"
	NotificationWarning = "warning"

	maxErrorBody = 4 << 10
)

// Selection is an active cross-server selection.
type Selection struct {
	Host   string
	APIKey string
}

// Selector reports the active cross-server selection, nil when there is none.
type Selector interface {
	ActiveCrossServer(ctx context.Context) (*Selection, error)
}

// Notifier receives user facing notifications.
type Notifier interface {
	NewMessage(ctx context.Context, title, content, messageType string)
}

// Navigator moves the application to another route.
type Navigator interface {
	Push(ctx context.Context, path string) (*router.Location, error)
}

type options struct {
	httpClient *http.Client
	selector   Selector
	notifier   Notifier
	navigator  Navigator
	recorder   *telemetry.Recorder
	timeout    time.Duration
}

type Option func(o *options)

// WithHTTPClient replaces the default client. Its Jar carries the session
// cookies of same-origin requests.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

func WithSelector(s Selector) Option {
	return func(o *options) { o.selector = s }
}

func WithNotifier(n Notifier) Option {
	return func(o *options) { o.notifier = n }
}

func WithNavigator(n Navigator) Option {
	return func(o *options) { o.navigator = n }
}

func WithRecorder(r *telemetry.Recorder) Option {
	return func(o *options) { o.recorder = r }
}

// WithTimeout bounds each request. Zero means no bound beyond the context.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// Client performs requests against the dashboard at origin, or against the
// active cross server when there is one.
type Client struct {
	origin *url.URL
	options
}

// New creates a client for origin, an absolute URL that may carry the base
// path the dashboard is served under.
func New(origin string, opts ...Option) (*Client, error) {
	u, err := url.Parse(origin)
	if err != nil {
		return nil, fmt.Errorf("invalid origin %q: %w", origin, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid origin %q: scheme and host are required", origin)
	}

	c := &Client{origin: u}
	for _, opt := range opts {
		opt(&c.options)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}
	if c.recorder == nil {
		c.recorder = telemetry.NewRecorder(nil, nil)
	}
	return c, nil
}

// Get reads path with params as the query string and decodes the JSON body
// into out.
func (c *Client) Get(ctx context.Context, path string, params url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, params, nil, false, out)
}

// Post sends body as JSON and decodes the JSON answer into out.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, true, out)
}

// Put sends body as JSON and decodes the JSON answer into out.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, nil, body, true, out)
}

// Delete removes path and decodes the JSON answer into out.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, false, out)
}

// URL returns where a request for path goes given the selection.
func (c *Client) URL(path string, selection *Selection) string {
	if selection != nil {
		return selection.Host + path
	}
	joined := c.origin.Host + c.origin.EscapedPath() + path
	for strings.Contains(joined, "//") {
		joined = strings.ReplaceAll(joined, "//", "/")
	}
	return c.origin.Scheme + "://" + joined
}

// Headers returns the headers sent with every request given the selection.
func Headers(selection *Selection) http.Header {
	h := http.Header{}
	h.Set("content-type", "application/json")
	if selection != nil {
		h.Set(HeaderAPIKey, selection.APIKey)
	}
	return h
}

func (c *Client) selection(ctx context.Context) (*Selection, error) {
	if c.selector == nil {
		return nil, nil
	}
	return c.selector.ActiveCrossServer(ctx)
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, body any, hasBody bool, out any) error {
	selection, err := c.selection(ctx)
	if err != nil {
		return fmt.Errorf("reading cross server selection: %w", err)
	}

	target := "origin"
	if selection != nil {
		target = "cross-server"
	}
	ctx, span := c.recorder.StartRequest(ctx, method, path, target)

	status, err := c.roundTrip(ctx, method, path, params, body, hasBody, selection, out)
	span.End(status, err)
	if err != nil {
		c.fail(ctx, err)
		return err
	}
	return nil
}

func (c *Client) roundTrip(ctx context.Context, method, path string, params url.Values, body any, hasBody bool, selection *Selection, out any) (int, error) {
	endpoint := c.URL(path, selection)
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	var reader io.Reader
	if hasBody {
		buf, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return 0, err
	}
	req.Header = Headers(selection)

	log.Debugf("- %s %s", method, endpoint)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return resp.StatusCode, &StatusError{
			Method:     method,
			URL:        endpoint,
			StatusCode: resp.StatusCode,
			Body:       string(snippet),
		}
	}

	if out == nil {
		out = &json.RawMessage{}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("decoding response of %s %s: %w", method, endpoint, err)
	}
	return resp.StatusCode, nil
}

// fail applies the failure policy: warn once on 401, then go to sign-in.
func (c *Client) fail(ctx context.Context, err error) {
	if errors.Is(err, ErrUnauthorized) && c.notifier != nil {
		c.notifier.NewMessage(ctx, NotificationTitle, SessionEndedMessage, NotificationWarning)
	}
	if c.navigator == nil {
		return
	}
	// The caller's context may be the one that just expired.
	if _, navErr := c.navigator.Push(context.WithoutCancel(ctx), SignInPath); navErr != nil {
		log.Debugf("- redirect to %s after failed request: %v", SignInPath, navErr)
	}
}
