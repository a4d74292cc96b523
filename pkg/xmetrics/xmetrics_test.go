package xmetrics

import (
	"strings"
	"testing"
	"time"

	"github.com/hashicorp/go-metrics"
	"github.com/selectdb/notifier/pkg/xerror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newInmemGlobal(t *testing.T) *metrics.InmemSink {
	sink := metrics.NewInmemSink(time.Hour, time.Hour)
	conf := metrics.DefaultConfig("notifier")
	conf.EnableHostname = false
	conf.EnableRuntimeMetrics = false
	_, err := metrics.NewGlobal(conf, sink)
	require.NoError(t, err)
	return sink
}

func TestTags(t *testing.T) {
	assert.Equal(t, []string{"registry", "broadcastNum"}, RegistryMetrics().BroadcastNum().Tag())
	assert.Equal(t, []string{"subscriber", "history", "handledNum"}, SubscriberMetrics("history").HandledNum().Tag())

	xerr := xerror.PanicWithoutStack(xerror.Subscriber, "boom")
	assert.Equal(t, []string{"error", "subscriber", "panic"}, ErrorMetrics(xerr).Tag())

	xerr = xerror.NewWithoutStack(xerror.DB, "closed")
	assert.Equal(t, []string{"error", "db", "recoverable"}, ErrorMetrics(xerr).Tag())
}

func TestCounters(t *testing.T) {
	sink := newInmemGlobal(t)

	Broadcast(3, time.Now())
	Broadcast(2, time.Now())
	Delivered(5)
	AddError(xerror.NewWithoutStack(xerror.Webhook, "refused"))
	SetSubscribers(4)

	data := sink.Data()
	require.NotEmpty(t, data)
	interval := data[len(data)-1]

	counter := func(suffix string) int {
		for name, v := range interval.Counters {
			if strings.HasSuffix(name, suffix) {
				return int(v.Sum)
			}
		}
		return -1
	}

	assert.Equal(t, 2, counter("registry.broadcastNum"))
	assert.Equal(t, 5, counter("registry.deliveredNum"))
	assert.Equal(t, 1, counter("error.webhook.recoverable"))

	found := false
	for name, g := range interval.Gauges {
		if strings.HasSuffix(name, "registry.subscriberNum") {
			found = true
			assert.Equal(t, float32(4), g.Value)
		}
	}
	assert.True(t, found)
}
