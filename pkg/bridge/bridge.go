// Package bridge is the HTTP client one service uses to reach its sibling.
//
// Every call is bounded by Config.Timeout and guarded by a circuit breaker.
// Failures come back as one of two kinds: *StatusError when the sibling
// answered with a non-200 status, and ErrUnavailable when it could not be
// reached at all (transport error, timeout, open breaker). Notify is the only
// call that never reports a failure to its caller.
package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/Astemirdum/library-sync/pkg/circuitbreaker"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type Config struct {
	Timeout time.Duration `yaml:"timeout" envconfig:"SYNC_TIMEOUT" default:"5s"`
}

var ErrUnavailable = errors.New("upstream unavailable")

type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: upstream responded %d", e.Method, e.Path, e.Code)
}

// IsStatus reports whether err is a *StatusError carrying code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == code
}

type Client struct {
	baseURL string
	client  *http.Client
	cb      circuitbreaker.Breaker
	log     *zap.Logger
}

func NewClient(host, port string, cfg Config, log *zap.Logger) *Client {
	return NewClientURL("http://"+net.JoinHostPort(host, port), cfg, log)
}

func NewClientURL(baseURL string, cfg Config, log *zap.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: cfg.Timeout},
		cb: circuitbreaker.New(circuitbreaker.Config{
			Window:    100,
			Cooldown:  time.Second,
			Threshold: 0.2,
			Recovery:  2,
		}),
		log: log.Named("bridge"),
	}
}

// Do sends in as JSON (when non-nil) and decodes a 200 response into out (when non-nil).
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	data, err := c.Raw(ctx, method, path, query, in)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.Wrapf(err, "%s %s: decode response", method, path)
	}
	return nil
}

// Raw is Do without decoding: the 200 body is returned as is.
func (c *Client) Raw(ctx context.Context, method, path string, query url.Values, in any) ([]byte, error) {
	body := io.Reader(http.NoBody)
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(b)
	}
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, err
	}
	if in != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		req.Header.Set(echo.HeaderXRequestID, id)
	}

	var (
		data []byte
		code int
	)
	err = c.cb.Call(func() error {
		resp, err := c.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if data, err = io.ReadAll(resp.Body); err != nil {
			return err
		}
		code = resp.StatusCode
		// only server-side failures count against the breaker
		if code >= http.StatusInternalServerError {
			return &StatusError{Method: method, Path: path, Code: code, Body: data}
		}
		return nil
	})
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) {
			return nil, se
		}
		c.log.Warn("sibling unreachable", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return nil, errors.Wrapf(ErrUnavailable, "%s %s: %v", method, path, err)
	}
	if code != http.StatusOK {
		return nil, &StatusError{Method: method, Path: path, Code: code, Body: data}
	}
	return data, nil
}

// Notify delivers payload with a POST and forgets about it. A failed delivery
// is logged and never returned: callers treat the notification as done.
func (c *Client) Notify(ctx context.Context, path string, payload any) {
	if _, err := c.Raw(ctx, http.MethodPost, path, nil, payload); err != nil {
		c.log.Warn("notify failed", zap.String("path", path), zap.Error(err))
		return
	}
	c.log.Debug("notified", zap.String("path", path))
}

type requestIDKey struct{}

// WithRequestID makes outbound calls made with ctx carry id in X-Request-ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey{}, id)
}
