package service

import (
	"errors"
	"time"

	"github.com/selectdb/notifier/pkg/notify"
	"github.com/selectdb/notifier/pkg/storage"
	"github.com/selectdb/notifier/pkg/subscriber"
	"github.com/selectdb/notifier/pkg/xerror"

	log "github.com/sirupsen/logrus"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type webhook struct {
	id        notify.SubscriptionID
	url       string
	persisted bool
}

type WebhookInfo struct {
	Name      string `json:"name"`
	URL       string `json:"url"`
	Persisted bool   `json:"persisted"`
}

// addWebhook runs save, if any, before the subscriber is registered
func (s *HttpService) addWebhook(name string, url string, persisted bool, save func() error) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, ok := s.webhooks[name]; ok {
		return storage.ErrWebhookExists
	}

	if save != nil {
		if err := save(); err != nil {
			return err
		}
	}

	timeout := time.Duration(s.webhookTimeoutSec) * time.Second
	id := s.registry.Register(subscriber.NewWebhookSubscriber(name, url, timeout))
	s.webhooks[name] = webhook{id: id, url: url, persisted: persisted}
	log.Infof("add webhook %s -> %s, subscription %d", name, url, id)
	return nil
}

// AddWebhook registers a webhook subscriber and persists it in the meta db.
func (s *HttpService) AddWebhook(name string, url string) error {
	return s.addWebhook(name, url, true, func() error {
		return s.db.AddWebhook(name, url)
	})
}

// AddStaticWebhook registers a webhook subscriber for this process only.
func (s *HttpService) AddStaticWebhook(name string, url string) error {
	return s.addWebhook(name, url, false, nil)
}

func (s *HttpService) RemoveWebhook(name string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	hook, ok := s.webhooks[name]
	if !ok {
		return storage.ErrWebhookNotExists
	}

	if hook.persisted {
		if err := s.db.RemoveWebhook(name); err != nil && !errors.Is(err, storage.ErrWebhookNotExists) {
			return err
		}
	}

	s.registry.Unregister(hook.id)
	delete(s.webhooks, name)
	log.Infof("remove webhook %s, subscription %d", name, hook.id)
	return nil
}

// ListWebhooks returns the registered webhooks sorted by name.
func (s *HttpService) ListWebhooks() []WebhookInfo {
	s.lock.Lock()
	defer s.lock.Unlock()

	names := maps.Keys(s.webhooks)
	slices.Sort(names)

	result := make([]WebhookInfo, 0, len(names))
	for _, name := range names {
		hook := s.webhooks[name]
		result = append(result, WebhookInfo{Name: name, URL: hook.url, Persisted: hook.persisted})
	}
	return result
}

// Restore registers every webhook persisted in the meta db, in name order.
func (s *HttpService) Restore() error {
	webhooks, err := s.db.ListWebhooks()
	if err != nil {
		return xerror.Wrap(err, xerror.DB, "restore webhooks failed")
	}

	names := maps.Keys(webhooks)
	slices.Sort(names)
	for _, name := range names {
		if err := s.addWebhook(name, webhooks[name], true, nil); err != nil {
			return err
		}
	}

	log.Infof("restore %d webhooks", len(names))
	return nil
}
