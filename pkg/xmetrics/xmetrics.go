package xmetrics

import (
	"time"

	"github.com/hashicorp/go-metrics"
	"github.com/hashicorp/go-metrics/prometheus"
	"github.com/selectdb/notifier/pkg/xerror"
)

func InitGlobal(serviceName string) error {
	sink, err := prometheus.NewPrometheusSink()
	if err != nil {
		return xerror.Wrap(err, xerror.Normal, "init prometheus sink failed")
	}

	if _, err := metrics.NewGlobal(metrics.DefaultConfig(serviceName), sink); err != nil {
		return xerror.Wrap(err, xerror.Normal, "new global metrics failed")
	}

	return nil
}

func AddError(err *xerror.XError) {
	metrics.IncrCounter(ErrorMetrics(err).Tag(), 1)
}

func SetSubscribers(num int) {
	metrics.SetGauge(RegistryMetrics().SubscriberNum().Tag(), float32(num))
}

func Broadcast(fanout int, start time.Time) {
	metrics.IncrCounter(RegistryMetrics().BroadcastNum().Tag(), 1)
	metrics.AddSample(RegistryMetrics().BroadcastFanout().Tag(), float32(fanout))
	metrics.MeasureSince(RegistryMetrics().BroadcastLatency().Tag(), start)
}

func Delivered(num int) {
	metrics.IncrCounter(RegistryMetrics().DeliveredNum().Tag(), float32(num))
}

func SubscriberHandled(kind string) {
	metrics.IncrCounter(SubscriberMetrics(kind).HandledNum().Tag(), 1)
}
