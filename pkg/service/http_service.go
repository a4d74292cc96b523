package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/selectdb/notifier/pkg/notify"
	"github.com/selectdb/notifier/pkg/storage"
	"github.com/selectdb/notifier/pkg/subscriber"
	"github.com/selectdb/notifier/pkg/version"
	"github.com/selectdb/notifier/pkg/xerror"

	log "github.com/sirupsen/logrus"
)

const (
	defaultListLimit = 20
	maxListLimit     = 1000
)

func writeJson(w http.ResponseWriter, data interface{}) {
	if data, err := json.Marshal(data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	} else {
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	}
}

type HttpService struct {
	port     int
	server   *http.Server
	mux      *http.ServeMux
	hostInfo string

	db                storage.DB
	registry          *notify.Registry
	history           *subscriber.HistorySubscriber
	webhookTimeoutSec int

	lock     sync.Mutex
	webhooks map[string]webhook
}

func NewHttpServer(host string, port int, db storage.DB, registry *notify.Registry, history *subscriber.HistorySubscriber, webhookTimeoutSec int) *HttpService {
	s := &HttpService{
		port:     port,
		mux:      http.NewServeMux(),
		hostInfo: fmt.Sprintf("%s:%d", host, port),

		db:                db,
		registry:          registry,
		history:           history,
		webhookTimeoutSec: webhookTimeoutSec,

		webhooks: make(map[string]webhook),
	}
	s.RegisterHandlers()
	s.server = &http.Server{Addr: net.JoinHostPort(host, strconv.Itoa(port)), Handler: s.mux}
	return s
}

func (s *HttpService) Handler() http.Handler {
	return s.mux
}

type NotifyRequest struct {
	Message string `json:"message"`
}

type DeliveryFailure struct {
	ID    uint64 `json:"id"`
	Index int    `json:"index"`
	Error string `json:"error"`
}

type NotifyResult struct {
	Success     bool              `json:"success"`
	Subscribers int               `json:"subscribers"`
	Policy      string            `json:"policy"`
	Failures    []DeliveryFailure `json:"failures"`
}

type SubscribeRequest struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type CommonRequest struct {
	Name string `json:"name"`
}

type successResult struct {
	Success bool `json:"success"`
}

// version Handler
func (s *HttpService) versionHandler(w http.ResponseWriter, r *http.Request) {
	log.Infof("get version")

	type versionResult struct {
		Version string `json:"version"`
	}
	writeJson(w, versionResult{Version: version.GetVersion()})
}

// notifyHandler broadcasts the message to all subscribers, failures are
// reported in the body and do not fail the request
func (s *HttpService) notifyHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var request NotifyRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if request.Message == "" {
		http.Error(w, "message is empty", http.StatusBadRequest)
		return
	}

	subscribers := s.registry.Len()
	log.Infof("notify %d subscribers, message length %d", subscribers, len(request.Message))

	result := NotifyResult{
		Success:     true,
		Subscribers: subscribers,
		Policy:      s.registry.Policy().String(),
		Failures:    []DeliveryFailure{},
	}
	if err := s.registry.NotifyAll(request.Message); err != nil {
		result.Success = false
		for _, derr := range notify.DeliveryErrors(err) {
			result.Failures = append(result.Failures, DeliveryFailure{
				ID:    uint64(derr.ID),
				Index: derr.Index,
				Error: derr.Err.Error(),
			})
		}
	}

	writeJson(w, result)
}

func (s *HttpService) subscribeHandler(w http.ResponseWriter, r *http.Request) {
	log.Infof("subscribe webhook")

	var request SubscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if request.Name == "" || request.URL == "" {
		http.Error(w, "name or url is empty", http.StatusBadRequest)
		return
	}

	if err := s.AddWebhook(request.Name, request.URL); err != nil {
		writeError(w, err)
		return
	}
	writeJson(w, successResult{Success: true})
}

func (s *HttpService) unsubscribeHandler(w http.ResponseWriter, r *http.Request) {
	log.Infof("unsubscribe webhook")

	var request CommonRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if request.Name == "" {
		http.Error(w, "name is empty", http.StatusBadRequest)
		return
	}

	if err := s.RemoveWebhook(request.Name); err != nil {
		writeError(w, err)
		return
	}
	writeJson(w, successResult{Success: true})
}

func (s *HttpService) listSubscribersHandler(w http.ResponseWriter, r *http.Request) {
	log.Infof("list subscribers")

	type result struct {
		Total    int           `json:"total"`
		Webhooks []WebhookInfo `json:"webhooks"`
	}
	writeJson(w, result{Total: s.registry.Len(), Webhooks: s.ListWebhooks()})
}

// historyHandler serves ?limit=N newest messages, or ?since=SEQ
func (s *HttpService) historyHandler(w http.ResponseWriter, r *http.Request) {
	type result struct {
		Messages []subscriber.Entry `json:"messages"`
	}

	if since := r.URL.Query().Get("since"); since != "" {
		seq, err := strconv.ParseUint(since, 10, 64)
		if err != nil {
			http.Error(w, "invalid since: "+since, http.StatusBadRequest)
			return
		}
		writeJson(w, result{Messages: s.history.Since(seq)})
		return
	}

	limit, err := parseLimit(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJson(w, result{Messages: s.history.Recent(limit)})
}

func (s *HttpService) messagesHandler(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	messages, err := s.db.ListMessages(limit)
	if err != nil {
		log.Errorf("list messages failed: %+v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	type result struct {
		Messages []storage.Message `json:"messages"`
	}
	writeJson(w, result{Messages: messages})
}

func parseLimit(r *http.Request) (int, error) {
	value := r.URL.Query().Get("limit")
	if value == "" {
		return defaultListLimit, nil
	}

	limit, err := strconv.Atoi(value)
	if err != nil || limit <= 0 {
		return 0, xerror.Errorf(xerror.Normal, "invalid limit: %s", value)
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return limit, nil
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrWebhookExists):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, storage.ErrWebhookNotExists):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		log.Errorf("request failed: %+v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *HttpService) RegisterHandlers() {
	s.mux.HandleFunc("/version", s.versionHandler)
	s.mux.HandleFunc("/notify", s.notifyHandler)
	s.mux.HandleFunc("/subscribe", s.subscribeHandler)
	s.mux.HandleFunc("/unsubscribe", s.unsubscribeHandler)
	s.mux.HandleFunc("/list_subscribers", s.listSubscribersHandler)
	s.mux.HandleFunc("/history", s.historyHandler)
	s.mux.HandleFunc("/messages", s.messagesHandler)
	s.mux.Handle("/metrics", promhttp.Handler())
}

func (s *HttpService) Start() error {
	addr := s.server.Addr
	log.Infof("Server %s listening on %s", s.hostInfo, addr)

	err := s.server.ListenAndServe()
	if err == nil {
		return nil
	} else if err == http.ErrServerClosed {
		log.Info("http server closed")
		return nil
	} else {
		return xerror.Wrapf(err, xerror.Normal, "http server start on %s failed", addr)
	}
}

// Stop stops the HTTP server gracefully.
func (s *HttpService) Stop(ctx context.Context) error {
	if err := s.server.Shutdown(ctx); err != nil {
		return xerror.Wrapf(err, xerror.Normal, "http server close failed")
	}
	return nil
}
