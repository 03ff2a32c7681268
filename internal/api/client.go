// Package api is the client for the remote todo collection resource:
//
//	GET    {base}        list
//	POST   {base}        create  {title, completed}
//	PATCH  {base}/{id}   toggle  {completed}
//	DELETE {base}/{id}   delete
//
// Every request is bearer-authenticated through an oauth2.TokenSource.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"github.com/idilsaglam/authtodo/internal/model"
)

const (
	// DefaultTimeout bounds one request when no timeout is configured.
	DefaultTimeout = 10 * time.Second

	// RequestIDHeader carries a per-request uuid for log correlation.
	RequestIDHeader = "X-Request-ID"

	// maxBody caps how much of a response we read.
	maxBody = 4 << 20
)

// Client calls the todo API.
type Client struct {
	base    string
	http    *http.Client
	timeout time.Duration
	log     logrus.FieldLogger
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying transport (tests, proxies). Its
// Transport is wrapped with the bearer token source.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout bounds each call.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the request logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *Client) { c.log = l }
}

// New returns a client for the collection at baseURL. ts is consulted on
// every request, so token rotation is picked up without rebuilding.
func New(baseURL string, ts oauth2.TokenSource, opts ...Option) *Client {
	c := &Client{
		base:    strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		timeout: DefaultTimeout,
		log:     logrus.StandardLogger(),
	}
	for _, o := range opts {
		o(c)
	}
	base := c.http.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	hc := *c.http
	hc.Transport = &oauth2.Transport{Source: ts, Base: base}
	c.http = &hc
	return c
}

// BaseURL returns the collection URL.
func (c *Client) BaseURL() string { return c.base }

// List fetches the whole collection.
func (c *Client) List(ctx context.Context) ([]model.Item, error) {
	body, err := c.do(ctx, "list", http.MethodGet, c.base, nil)
	if err != nil {
		return nil, err
	}
	var items []model.Item
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, &Error{Op: "list", Kind: KindDecode, Err: err}
	}
	if items == nil {
		items = []model.Item{}
	}
	return items, nil
}

// Create adds an item with the given title, not completed.
func (c *Client) Create(ctx context.Context, title string) error {
	payload := struct {
		Title     string `json:"title"`
		Completed bool   `json:"completed"`
	}{Title: title}
	_, err := c.do(ctx, "create", http.MethodPost, c.base, payload)
	return err
}

// SetCompleted sets the completed flag of item id.
func (c *Client) SetCompleted(ctx context.Context, id model.ItemID, completed bool) error {
	payload := struct {
		Completed bool `json:"completed"`
	}{Completed: completed}
	_, err := c.do(ctx, "toggle", http.MethodPatch, c.itemURL(id), payload)
	return err
}

// Delete removes item id.
func (c *Client) Delete(ctx context.Context, id model.ItemID) error {
	_, err := c.do(ctx, "delete", http.MethodDelete, c.itemURL(id), nil)
	return err
}

func (c *Client) itemURL(id model.ItemID) string {
	return c.base + "/" + url.PathEscape(id.String())
}

func (c *Client) do(ctx context.Context, op, method, target string, payload any) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var rd io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, &Error{Op: op, Kind: KindTransport, Err: fmt.Errorf("marshal: %w", err)}
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, rd)
	if err != nil {
		return nil, &Error{Op: op, Kind: KindTransport, Err: err}
	}
	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, reqID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	log := c.log.WithFields(logrus.Fields{
		"request_id": reqID,
		"op":         op,
		"method":     method,
	})

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		log.WithError(err).Warn("request failed")
		return nil, &Error{Op: op, Kind: transportKind(err), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	log = log.WithFields(logrus.Fields{
		"status":   resp.StatusCode,
		"duration": time.Since(start).String(),
	})
	if err != nil {
		log.WithError(err).Warn("read body failed")
		return nil, &Error{Op: op, Kind: KindTransport, StatusCode: 0, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		kind := KindStatus
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			kind = KindUnauthenticated
		}
		log.Warn("unexpected status")
		return nil, &Error{Op: op, Kind: kind, StatusCode: resp.StatusCode}
	}
	log.Debug("request ok")
	return body, nil
}
