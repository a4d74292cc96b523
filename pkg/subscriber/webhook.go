package subscriber

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/modern-go/gls"
	"github.com/selectdb/notifier/pkg/utils"
	"github.com/selectdb/notifier/pkg/xerror"
	"github.com/selectdb/notifier/pkg/xmetrics"
)

const (
	userAgent             = "notifier-webhook/1.0"
	DefaultWebhookTimeout = 10 * time.Second
)

type WebhookPayload struct {
	Name      string      `json:"name"`
	Message   string      `json:"message"`
	Broadcast interface{} `json:"broadcast,omitempty"`
}

// WebhookSubscriber forwards every message to a remote endpoint as a json POST.
type WebhookSubscriber struct {
	name    string
	url     string
	timeout time.Duration
	client  *http.Client
	window  *concurrencyWindow
}

func NewWebhookSubscriber(name string, url string, timeout time.Duration) *WebhookSubscriber {
	if timeout <= 0 {
		timeout = DefaultWebhookTimeout
	}

	return &WebhookSubscriber{
		name:    name,
		url:     url,
		timeout: timeout,
		client:  &http.Client{Timeout: timeout},
		window:  webhookWindows.GetWindow(url),
	}
}

func (w *WebhookSubscriber) Name() string {
	return w.name
}

func (w *WebhookSubscriber) URL() string {
	return w.url
}

func (w *WebhookSubscriber) OnNotify(message string) error {
	body, err := json.Marshal(WebhookPayload{
		Name:      w.name,
		Message:   message,
		Broadcast: gls.Get(utils.BroadcastField),
	})
	if err != nil {
		return xerror.Wrapf(err, xerror.Webhook, "marshal webhook %s payload failed", w.name)
	}

	// queueing in the host window does not count against the request timeout
	w.window.Acquire()
	defer w.window.Release()

	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return xerror.Wrapf(err, xerror.Webhook, "build webhook %s request failed", w.name)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return xerror.Wrapf(err, xerror.Webhook, "post webhook %s failed", w.name)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return xerror.Errorf(xerror.Webhook, "webhook %s returned %d: %s", w.name, resp.StatusCode, strings.TrimSpace(string(data)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)

	xmetrics.SubscriberHandled("webhook")
	return nil
}
