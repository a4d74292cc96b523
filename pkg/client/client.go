// Package client talks to a running notifier over its HTTP api.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/selectdb/notifier/pkg/service"
	"github.com/selectdb/notifier/pkg/storage"
	"github.com/selectdb/notifier/pkg/subscriber"
	"github.com/selectdb/notifier/pkg/xerror"
)

const (
	DefaultTimeout = 30 * time.Second
)

// StatusError is returned when the server answers with a non 2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.StatusCode, e.Body)
}

type Client struct {
	addr       string
	httpClient *http.Client
}

// New returns a client for addr, host:port or a full http url.
func New(addr string, timeout time.Duration) *Client {
	addr = strings.TrimRight(addr, "/")
	if !strings.HasPrefix(addr, "http://") && !strings.HasPrefix(addr, "https://") {
		addr = "http://" + addr
	}

	return &Client{
		addr:       addr,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) Addr() string {
	return c.addr
}

func (c *Client) do(ctx context.Context, method string, path string, body interface{}, result interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return xerror.Wrapf(err, xerror.Normal, "marshal %s request failed", path)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.addr+path, reader)
	if err != nil {
		return xerror.Wrapf(err, xerror.Normal, "new %s request failed", path)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return xerror.Wrapf(err, xerror.Normal, "%s %s failed", method, path)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return xerror.Wrapf(err, xerror.Normal, "read %s response failed", path)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	if result == nil {
		return nil
	}
	if err := json.Unmarshal(data, result); err != nil {
		return xerror.Wrapf(err, xerror.Normal, "unmarshal %s response failed", path)
	}
	return nil
}

func (c *Client) Version(ctx context.Context) (string, error) {
	var result struct {
		Version string `json:"version"`
	}
	if err := c.do(ctx, http.MethodGet, "/version", nil, &result); err != nil {
		return "", err
	}
	return result.Version, nil
}

// Notify broadcasts message. Delivery failures are part of the result, the
// error is only set when the request itself failed.
func (c *Client) Notify(ctx context.Context, message string) (*service.NotifyResult, error) {
	var result service.NotifyResult
	if err := c.do(ctx, http.MethodPost, "/notify", service.NotifyRequest{Message: message}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) Subscribe(ctx context.Context, name string, webhookURL string) error {
	return c.do(ctx, http.MethodPost, "/subscribe", service.SubscribeRequest{Name: name, URL: webhookURL}, nil)
}

func (c *Client) Unsubscribe(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodPost, "/unsubscribe", service.CommonRequest{Name: name}, nil)
}

type Subscribers struct {
	Total    int                   `json:"total"`
	Webhooks []service.WebhookInfo `json:"webhooks"`
}

func (c *Client) ListSubscribers(ctx context.Context) (*Subscribers, error) {
	var result Subscribers
	if err := c.do(ctx, http.MethodGet, "/list_subscribers", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// History returns the newest limit entries kept in memory, or with since > 0
// every retained entry after since.
func (c *Client) History(ctx context.Context, limit int, since uint64) ([]subscriber.Entry, error) {
	query := url.Values{}
	if since > 0 {
		query.Set("since", strconv.FormatUint(since, 10))
	} else if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	var result struct {
		Messages []subscriber.Entry `json:"messages"`
	}
	if err := c.do(ctx, http.MethodGet, withQuery("/history", query), nil, &result); err != nil {
		return nil, err
	}
	return result.Messages, nil
}

// Messages returns the newest limit messages from the journal.
func (c *Client) Messages(ctx context.Context, limit int) ([]storage.Message, error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	var result struct {
		Messages []storage.Message `json:"messages"`
	}
	if err := c.do(ctx, http.MethodGet, withQuery("/messages", query), nil, &result); err != nil {
		return nil, err
	}
	return result.Messages, nil
}

func withQuery(path string, query url.Values) string {
	if len(query) == 0 {
		return path
	}
	return path + "?" + query.Encode()
}
