package subscriber

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/selectdb/notifier/pkg/notify"
	"github.com/selectdb/notifier/pkg/test_util"
	"github.com/selectdb/notifier/pkg/xerror"

	log "github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap/zapcore"
)

func init() {
	log.SetOutput(io.Discard)
}

var (
	_ notify.Subscriber = (*LogSubscriber)(nil)
	_ notify.Subscriber = (*HistorySubscriber)(nil)
	_ notify.Subscriber = (*JournalSubscriber)(nil)
	_ notify.Subscriber = (*AuditSubscriber)(nil)
	_ notify.Subscriber = (*WebhookSubscriber)(nil)
)

func TestLogSubscriber(t *testing.T) {
	hook := logtest.NewGlobal()
	defer hook.Reset()

	s := NewLogSubscriber("console", log.InfoLevel)
	require.NoError(t, s.OnNotify("hello"))

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "hello", entry.Message)
	assert.Equal(t, log.InfoLevel, entry.Level)
	assert.Equal(t, "console", entry.Data["subscriber"])
}

func TestHistorySubscriber(t *testing.T) {
	h := NewHistorySubscriber(3)
	h.now = func() time.Time { return time.UnixMilli(1000) }

	for i := 1; i <= 5; i++ {
		require.NoError(t, h.OnNotify(fmt.Sprintf("m%d", i)))
	}

	assert.Equal(t, 3, h.Len())
	assert.Equal(t, []Entry{
		{Seq: 4, Message: "m4", Timestamp: 1000},
		{Seq: 5, Message: "m5", Timestamp: 1000},
	}, h.Recent(2))

	recent := h.Recent(10)
	require.Len(t, recent, 3)
	assert.Equal(t, uint64(3), recent[0].Seq)
	assert.Equal(t, "m5", recent[2].Message)
	assert.Empty(t, h.Recent(0))

	since := h.Since(3)
	require.Len(t, since, 2)
	assert.Equal(t, uint64(4), since[0].Seq)
	assert.Len(t, h.Since(0), 3)
	assert.Empty(t, h.Since(5))
}

func TestHistorySubscriberSinceMaxSeq(t *testing.T) {
	h := NewHistorySubscriber(4)
	require.NoError(t, h.OnNotify("a"))
	require.NoError(t, h.OnNotify("b"))

	assert.Empty(t, h.Since(math.MaxUint64))
	assert.Len(t, h.Since(math.MaxUint64-1), 0)
	assert.Len(t, h.Since(1), 1)
}

func TestHistorySubscriberZeroCapacity(t *testing.T) {
	h := NewHistorySubscriber(0)
	require.NoError(t, h.OnNotify("dropped"))
	assert.Equal(t, 0, h.Len())
	assert.Empty(t, h.Recent(5))
}

func TestJournalSubscriber(t *testing.T) {
	ctrl := gomock.NewController(t)
	db := test_util.NewMockDB(ctrl)

	j := NewJournalSubscriber(db)
	j.now = func() time.Time { return time.UnixMilli(42) }

	db.EXPECT().AddMessage(gomock.Any(), "persist me", int64(42)).Return(nil)
	require.NoError(t, j.OnNotify("persist me"))

	errClosed := errors.New("database is closed")
	db.EXPECT().AddMessage(gomock.Any(), "lost", int64(42)).Return(errClosed)
	err := j.OnNotify("lost")
	require.Error(t, err)
	assert.ErrorIs(t, err, errClosed)
	xerr := xerror.As(err)
	require.NotNil(t, xerr)
	assert.Equal(t, xerror.DB, xerr.Category())
}

func TestAuditSubscriber(t *testing.T) {
	var buf bytes.Buffer
	a := newAuditSubscriber(zapcore.AddSync(&buf), nil)

	require.NoError(t, a.OnNotify("first"))
	require.NoError(t, a.OnNotify("second"))
	require.NoError(t, a.Close())

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(lines[1], &line))
	assert.Equal(t, "notify", line["msg"])
	assert.Equal(t, "second", line["message"])
	assert.Equal(t, float64(2), line["audit_seq"])
	assert.Equal(t, float64(len("second")), line["bytes"])
	assert.Contains(t, line, "ts")
}

func TestWebhookSubscriber(t *testing.T) {
	var got WebhookPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	w := NewWebhookSubscriber("ops", server.URL, time.Second)
	assert.Equal(t, "ops", w.Name())
	assert.Equal(t, server.URL, w.URL())

	require.NoError(t, w.OnNotify("deploy done"))
	assert.Equal(t, "ops", got.Name)
	assert.Equal(t, "deploy done", got.Message)
}

func TestWebhookSubscriberThroughRegistry(t *testing.T) {
	var got WebhookPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
	}))
	defer server.Close()

	registry := notify.NewRegistry()
	registry.Register(NewWebhookSubscriber("ops", server.URL, time.Second))
	require.NoError(t, registry.NotifyAll("via registry"))

	assert.Equal(t, "via registry", got.Message)
	assert.Equal(t, float64(1), got.Broadcast)
}

func TestWebhookSubscriberErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "topic gone", http.StatusGone)
	}))
	defer server.Close()

	w := NewWebhookSubscriber("ops", server.URL, 0)
	assert.Equal(t, DefaultWebhookTimeout, w.timeout)

	err := w.OnNotify("m")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "410")
	assert.Contains(t, err.Error(), "topic gone")

	xerr := xerror.As(err)
	require.NotNil(t, xerr)
	assert.Equal(t, xerror.Webhook, xerr.Category())
}

func TestWebhookSubscriberUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	err := NewWebhookSubscriber("gone", url, time.Second).OnNotify("m")
	require.Error(t, err)
	assert.Equal(t, xerror.Webhook, xerror.As(err).Category())
}

func TestWebhookConcurrencyPerHost(t *testing.T) {
	saved := FlagMaxWebhookConcurrencyPerHost
	FlagMaxWebhookConcurrencyPerHost = 2
	defer func() { FlagMaxWebhookConcurrencyPerHost = saved }()

	var mu sync.Mutex
	inflight, peak := 0, 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		inflight++
		if inflight > peak {
			peak = inflight
		}
		mu.Unlock()

		time.Sleep(20 * time.Millisecond)

		mu.Lock()
		inflight--
		mu.Unlock()
	}))
	defer server.Close()

	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		w := NewWebhookSubscriber(fmt.Sprintf("hook%d", i), server.URL+"/hook", time.Second)
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, w.OnNotify("m"))
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, peak, 2)
	assert.GreaterOrEqual(t, peak, 1)
}

func TestConcurrencyManagerKeysByHost(t *testing.T) {
	cm := newConcurrencyManager()

	a := cm.GetWindow("http://10.0.0.1:8080/a")
	b := cm.GetWindow("http://10.0.0.1:8080/b?x=1")
	c := cm.GetWindow("http://10.0.0.2:8080/a")
	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
	assert.Equal(t, "10.0.0.1:8080", a.host)

	// release without acquire is a no-op
	a.Release()
	assert.Equal(t, int64(0), a.inflights)
}

func TestWebhookWindowWaitIsNotPartOfTimeout(t *testing.T) {
	saved := FlagMaxWebhookConcurrencyPerHost
	FlagMaxWebhookConcurrencyPerHost = 1
	defer func() { FlagMaxWebhookConcurrencyPerHost = saved }()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer server.Close()

	// each request fits in the timeout, the second only after waiting for the first
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		i := i
		w := NewWebhookSubscriber(fmt.Sprintf("slow%d", i), server.URL, 500*time.Millisecond)
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = w.OnNotify("m")
		}()
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
}
