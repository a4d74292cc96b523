package utils

import (
	"github.com/modern-go/gls"
	"github.com/sirupsen/logrus"
)

// BroadcastField is the gls key set while a broadcast is dispatching.
const BroadcastField = "broadcast"

type Hook struct {
	Field  string
	levels []logrus.Level
}

func (hook *Hook) Levels() []logrus.Level {
	return hook.levels
}

func (hook *Hook) Fire(entry *logrus.Entry) error {
	if value := gls.Get(hook.Field); value != nil {
		entry.Data[hook.Field] = value
	}
	return nil
}

func NewBroadcastHook(levels ...logrus.Level) *Hook {
	hook := Hook{
		Field:  BroadcastField,
		levels: levels,
	}
	if len(hook.levels) == 0 {
		hook.levels = logrus.AllLevels
	}

	return &hook
}

// WithGlsValue runs f with key bound to value in the goroutine local storage
// of the calling goroutine. An existing gls map is kept and restored.
func WithGlsValue(key, value interface{}, f func()) {
	goid := gls.GoID()
	if !gls.IsGlsEnabled(goid) {
		gls.ResetGls(goid, map[interface{}]interface{}{key: value})
		defer gls.DeleteGls(goid)
		f()
		return
	}

	prev := gls.Get(key)
	gls.Set(key, value)
	defer gls.Set(key, prev)
	f()
}
