package main

import (
	"context"
	"flag"
	"os"
	"sync"
	"syscall"
	"time"

	"github.com/selectdb/notifier/pkg/config"
	"github.com/selectdb/notifier/pkg/notify"
	"github.com/selectdb/notifier/pkg/service"
	"github.com/selectdb/notifier/pkg/storage"
	"github.com/selectdb/notifier/pkg/subscriber"
	"github.com/selectdb/notifier/pkg/utils"
	"github.com/selectdb/notifier/pkg/xerror"
	"github.com/selectdb/notifier/pkg/xmetrics"

	log "github.com/sirupsen/logrus"
)

const (
	shutdownTimeout = 10 * time.Second
)

var (
	cfg         = config.Default()
	showVersion bool
)

func init() {
	flag.BoolVar(&showVersion, "version", false, "The program's version")
	config.BindFlags(flag.CommandLine, &cfg)
	flag.Parse()

	utils.InitLog()
}

func loadConfig() error {
	if cfg.ConfigFile != "" {
		file, err := config.Load(cfg.ConfigFile)
		if err != nil {
			return err
		}
		cfg.Merge(file, config.ExplicitFlags(flag.CommandLine))
	}
	return cfg.Validate()
}

func newDB() (storage.DB, error) {
	switch cfg.DBType {
	case "sqlite3":
		return storage.NewSQLiteDB(cfg.DBDir)
	case "mysql":
		return storage.NewMysqlDB(cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword)
	case "postgresql":
		return storage.NewPostgresqlDB(cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword)
	default:
		return nil, xerror.Errorf(xerror.Config, "unknown db type: %s", cfg.DBType)
	}
}

func main() {
	if showVersion {
		printVersion()
	}

	log.Infof("notifier start, version: %s", getVersion())

	// Step 1: load config
	if err := loadConfig(); err != nil {
		log.Fatalf("load config error: %+v", err)
	}

	// Step 2: init metrics, before any subscriber is registered
	if err := xmetrics.InitGlobal("notifier"); err != nil {
		log.Fatalf("init metrics error: %+v", err)
	}

	// Step 3: open meta db
	db, err := newDB()
	if err != nil {
		log.Fatalf("new meta db error: %+v", err)
	}

	// Step 4: create registry && builtin subscribers
	policy, _ := notify.ParseFailurePolicy(cfg.FailurePolicy)
	registry := notify.NewRegistry(notify.WithFailurePolicy(policy))
	history := subscriber.NewHistorySubscriber(cfg.HistorySize)
	registry.Register(subscriber.NewLogSubscriber("log", log.DebugLevel))
	registry.Register(history)
	registry.Register(subscriber.NewJournalSubscriber(db))

	var audit *subscriber.AuditSubscriber
	if cfg.AuditFilename != "" {
		audit = subscriber.NewAuditSubscriber(cfg.AuditFilename)
		registry.Register(audit)
	}

	// Step 5: create http service && restore webhooks
	httpService := service.NewHttpServer(cfg.Host, cfg.Port, db, registry, history, cfg.WebhookTimeoutSec)
	if err := httpService.Restore(); err != nil {
		log.Fatalf("restore webhooks error: %+v", err)
	}
	for name, url := range cfg.Webhooks {
		if err := httpService.AddStaticWebhook(name, url); err != nil {
			log.Fatalf("add webhook %s error: %+v", name, err)
		}
	}
	log.Infof("registry ready, policy: %s, subscribers: %d", policy, registry.Len())

	// Step 6: http service start
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()

		if err := httpService.Start(); err != nil {
			log.Fatalf("http service start error: %+v", err)
		}
	}()

	// Step 7: start monitor
	monitor := NewMonitor(registry, history, httpService)
	wg.Add(1)
	go func() {
		defer wg.Done()
		monitor.Start()
	}()

	// Step 8: wait for signal, SIGHUP is ignored
	signalMux := NewSignalMux(func(sig os.Signal) bool {
		if sig == syscall.SIGHUP {
			log.Info("ignore SIGHUP")
			return false
		}

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpService.Stop(ctx); err != nil {
			log.Warnf("stop http service failed: %+v", err)
		}
		monitor.Stop()
		return true
	})
	signalMux.Serve()

	// Step 9: wait for all task done
	wg.Wait()

	if audit != nil {
		if err := audit.Close(); err != nil {
			log.Warnf("close audit log failed: %+v", err)
		}
	}
	if err := db.Close(); err != nil {
		log.Warnf("close meta db failed: %+v", err)
	}
	log.Info("notifier exit")
}
