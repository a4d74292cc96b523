package subscriber

import (
	"flag"
	"net/url"
	"sync"
)

var (
	FlagMaxWebhookConcurrencyPerHost int64
)

func init() {
	flag.Int64Var(&FlagMaxWebhookConcurrencyPerHost, "max_webhook_concurrency_per_host", 16,
		"The max concurrency of the webhook requests per remote host")
}

// webhookWindows is shared by every webhook subscriber, concurrent broadcasts
// from different callers may target the same host.
var webhookWindows = newConcurrencyManager()

type concurrencyWindow struct {
	mu   *sync.Mutex
	cond *sync.Cond

	host      string
	inflights int64
}

func newConcurrencyWindow(host string) *concurrencyWindow {
	mu := &sync.Mutex{}
	return &concurrencyWindow{
		mu:        mu,
		cond:      sync.NewCond(mu),
		host:      host,
		inflights: 0,
	}
}

func (cw *concurrencyWindow) Acquire() {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	for cw.inflights+1 > max(FlagMaxWebhookConcurrencyPerHost, 1) {
		cw.cond.Wait()
	}
	cw.inflights += 1
}

func (cw *concurrencyWindow) Release() {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	if cw.inflights == 0 {
		return
	}

	cw.inflights -= 1
	cw.cond.Signal()
}

type concurrencyManager struct {
	windows sync.Map
}

func newConcurrencyManager() *concurrencyManager {
	return &concurrencyManager{}
}

// GetWindow returns the window of the host of rawURL, or of rawURL itself if
// it does not parse.
func (cm *concurrencyManager) GetWindow(rawURL string) *concurrencyWindow {
	host := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		host = u.Host
	}

	value, ok := cm.windows.Load(host)
	if !ok {
		window := newConcurrencyWindow(host)
		value, _ = cm.windows.LoadOrStore(host, window)
	}
	return value.(*concurrencyWindow)
}
