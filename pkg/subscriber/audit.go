package subscriber

import (
	"io"
	"sync/atomic"

	"github.com/modern-go/gls"
	"github.com/selectdb/notifier/pkg/utils"
	"github.com/selectdb/notifier/pkg/xmetrics"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// AuditSubscriber appends one json line per delivered message to a rotated
// audit file.
type AuditSubscriber struct {
	logger *zap.Logger
	closer io.Closer
	count  atomic.Uint64
}

func NewAuditSubscriber(path string) *AuditSubscriber {
	writer := utils.NewRotateWriter(path)
	return newAuditSubscriber(zapcore.AddSync(writer), writer)
}

func newAuditSubscriber(ws zapcore.WriteSyncer, closer io.Closer) *AuditSubscriber {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "ts"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), ws, zapcore.InfoLevel)
	return &AuditSubscriber{
		logger: zap.New(core),
		closer: closer,
	}
}

func (a *AuditSubscriber) OnNotify(message string) error {
	n := a.count.Add(1)
	a.logger.Info("notify",
		zap.Uint64("audit_seq", n),
		zap.Any(utils.BroadcastField, gls.Get(utils.BroadcastField)),
		zap.String("message", message),
		zap.Int("bytes", len(message)),
	)

	xmetrics.SubscriberHandled("audit")
	return nil
}

func (a *AuditSubscriber) Close() error {
	_ = a.logger.Sync()
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}
