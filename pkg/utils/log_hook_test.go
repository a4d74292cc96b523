package utils

import (
	"bytes"
	"testing"

	"github.com/modern-go/gls"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func newTestLogger(buf *bytes.Buffer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(buf)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	logger.AddHook(NewBroadcastHook())
	return logger
}

func TestBroadcastHookAddsField(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf)

	WithGlsValue(BroadcastField, uint64(42), func() {
		logger.Info("inside")
	})
	logger.Info("outside")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	assert.Len(t, lines, 2)
	assert.Contains(t, string(lines[0]), "broadcast=42")
	assert.NotContains(t, string(lines[1]), "broadcast=")
}

func TestWithGlsValueRestoresOuterValue(t *testing.T) {
	goid := gls.GoID()
	gls.ResetGls(goid, map[interface{}]interface{}{"job": "outer"})
	defer gls.DeleteGls(goid)

	WithGlsValue(BroadcastField, 7, func() {
		assert.Equal(t, 7, gls.Get(BroadcastField))
		assert.Equal(t, "outer", gls.Get("job"))
	})

	assert.Nil(t, gls.Get(BroadcastField))
	assert.Equal(t, "outer", gls.Get("job"))
	assert.True(t, gls.IsGlsEnabled(goid))
}

func TestHookLevels(t *testing.T) {
	assert.Equal(t, logrus.AllLevels, NewBroadcastHook().Levels())
	assert.Equal(t, []logrus.Level{logrus.ErrorLevel}, NewBroadcastHook(logrus.ErrorLevel).Levels())
}
