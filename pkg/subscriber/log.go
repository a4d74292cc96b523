package subscriber

import (
	"github.com/selectdb/notifier/pkg/xmetrics"

	log "github.com/sirupsen/logrus"
)

// LogSubscriber writes every message to the service log.
type LogSubscriber struct {
	name  string
	level log.Level
}

func NewLogSubscriber(name string, level log.Level) *LogSubscriber {
	return &LogSubscriber{
		name:  name,
		level: level,
	}
}

func (s *LogSubscriber) OnNotify(message string) error {
	log.WithField("subscriber", s.name).Log(s.level, message)
	xmetrics.SubscriberHandled("log")
	return nil
}
