package main

import (
	"runtime"
	"time"

	"github.com/selectdb/notifier/pkg/notify"
	"github.com/selectdb/notifier/pkg/service"
	"github.com/selectdb/notifier/pkg/subscriber"

	log "github.com/sirupsen/logrus"
)

const (
	MONITOR_DURATION = time.Second * 60
)

type Monitor struct {
	registry    *notify.Registry
	history     *subscriber.HistorySubscriber
	httpService *service.HttpService
	stop        chan struct{}
}

func NewMonitor(registry *notify.Registry, history *subscriber.HistorySubscriber, httpService *service.HttpService) *Monitor {
	return &Monitor{
		registry:    registry,
		history:     history,
		httpService: httpService,
		stop:        make(chan struct{}),
	}
}

func (m *Monitor) dump() {
	log.Infof("[GOROUTINE] Total = %v", runtime.NumGoroutine())

	mb := func(b uint64) uint64 {
		return b / 1024 / 1024
	}

	// see: https://golang.org/pkg/runtime/#MemStats
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	liveObjects := stats.Mallocs - stats.Frees
	log.Infof("[MEMORY STATS] Alloc = %v MiB, TotalAlloc = %v MiB, Sys = %v MiB, NumGC = %v, LiveObjects = %v",
		mb(stats.Alloc), mb(stats.TotalAlloc), mb(stats.Sys), stats.NumGC, liveObjects)

	numPersisted := 0
	webhooks := m.httpService.ListWebhooks()
	for _, hook := range webhooks {
		if hook.Persisted {
			numPersisted += 1
		}
	}
	log.Infof("[REGISTRY STATS] Subscribers = %v, Webhooks = %v, PersistedWebhooks = %v, History = %v",
		m.registry.Len(), len(webhooks), numPersisted, m.history.Len())
}

func (m *Monitor) Start() {
	ticker := time.NewTicker(MONITOR_DURATION)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			log.Info("monitor stopped")
			return
		case <-ticker.C:
			m.dump()
		}
	}
}

func (m *Monitor) Stop() {
	log.Info("monitor stopping")
	close(m.stop)
}
