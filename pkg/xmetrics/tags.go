package xmetrics

import "github.com/selectdb/notifier/pkg/xerror"

type IMetricsTag interface {
	Tag() []string
}

type metricsTag struct {
	tags []string
}

// registry metrics
type registryMetrics struct {
	metricsTag
}

func RegistryMetrics() *registryMetrics {
	return &registryMetrics{
		metricsTag: metricsTag{[]string{"registry"}},
	}
}

func (r *registryMetrics) Tag() []string {
	return r.tags
}

func (r *registryMetrics) SubscriberNum() IMetricsTag {
	r.tags = append(r.tags, "subscriberNum")
	return r
}

func (r *registryMetrics) BroadcastNum() IMetricsTag {
	r.tags = append(r.tags, "broadcastNum")
	return r
}

func (r *registryMetrics) BroadcastFanout() IMetricsTag {
	r.tags = append(r.tags, "broadcastFanout")
	return r
}

func (r *registryMetrics) BroadcastLatency() IMetricsTag {
	r.tags = append(r.tags, "broadcastLatency")
	return r
}

func (r *registryMetrics) DeliveredNum() IMetricsTag {
	r.tags = append(r.tags, "deliveredNum")
	return r
}

// subscriber metrics, one series per built-in subscriber kind
type subscriberMetrics struct {
	metricsTag
	kind string
}

func SubscriberMetrics(kind string) *subscriberMetrics {
	return &subscriberMetrics{
		metricsTag: metricsTag{[]string{"subscriber"}},
		kind:       kind,
	}
}

func (s *subscriberMetrics) Tag() []string {
	return s.tags
}

func (s *subscriberMetrics) HandledNum() IMetricsTag {
	s.tags = append(s.tags, s.kind, "handledNum")
	return s
}

// error metrics
type errorMetrics struct {
	metricsTag
}

func ErrorMetrics(err *xerror.XError) IMetricsTag {
	errMetrics := &errorMetrics{
		metricsTag: metricsTag{[]string{"error", err.Category().Name()}},
	}

	switch {
	case err.IsRecoverable():
		errMetrics.tags = append(errMetrics.tags, "recoverable")
	case err.IsPanic():
		errMetrics.tags = append(errMetrics.tags, "panic")
	default:
		errMetrics.tags = append(errMetrics.tags, "unknown")
	}

	return errMetrics
}

func (e *errorMetrics) Tag() []string {
	return e.tags
}
