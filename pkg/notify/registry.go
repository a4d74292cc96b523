// Package notify keeps an ordered list of subscribers and broadcasts
// messages to all of them synchronously, in registration order.
package notify

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/selectdb/notifier/pkg/utils"
	"github.com/selectdb/notifier/pkg/xerror"
	"github.com/selectdb/notifier/pkg/xmetrics"

	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"
	"golang.org/x/exp/slices"
)

type SubscriptionID uint64

type registration struct {
	id         SubscriptionID
	subscriber Subscriber
}

type Option func(*Registry)

func WithFailurePolicy(policy FailurePolicy) Option {
	return func(r *Registry) {
		r.policy = policy
	}
}

// registry is thread safety, dispatch happens outside the lock on the
// caller's goroutine
type Registry struct {
	lock          sync.RWMutex
	registrations []registration
	lastID        SubscriptionID
	policy        FailurePolicy

	broadcastSeq atomic.Uint64
}

func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		policy: ContinueOnError,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Registry) Policy() FailurePolicy {
	return r.policy
}

// Register appends subscriber to the end of the broadcast order. The same
// subscriber may be registered more than once.
func (r *Registry) Register(subscriber Subscriber) SubscriptionID {
	if subscriber == nil {
		panic(xerror.Panic(xerror.Subscriber, "register nil subscriber"))
	}

	r.lock.Lock()
	defer r.lock.Unlock()

	r.lastID++
	id := r.lastID
	r.registrations = append(r.registrations, registration{id: id, subscriber: subscriber})
	xmetrics.SetSubscribers(len(r.registrations))
	log.Debugf("register subscription %d, total %d", id, len(r.registrations))

	return id
}

// Unregister removes the registration with the given id, keeping the order of
// the rest. It returns false if id is unknown.
func (r *Registry) Unregister(id SubscriptionID) bool {
	r.lock.Lock()
	defer r.lock.Unlock()

	idx := slices.IndexFunc(r.registrations, func(reg registration) bool { return reg.id == id })
	if idx < 0 {
		return false
	}

	r.registrations = slices.Delete(r.registrations, idx, idx+1)
	xmetrics.SetSubscribers(len(r.registrations))
	log.Debugf("unregister subscription %d, total %d", id, len(r.registrations))
	return true
}

func (r *Registry) Len() int {
	r.lock.RLock()
	defer r.lock.RUnlock()

	return len(r.registrations)
}

// Subscriptions returns the registered ids in broadcast order.
func (r *Registry) Subscriptions() []SubscriptionID {
	r.lock.RLock()
	defer r.lock.RUnlock()

	ids := make([]SubscriptionID, 0, len(r.registrations))
	for _, reg := range r.registrations {
		ids = append(ids, reg.id)
	}
	return ids
}

func (r *Registry) snapshot() []registration {
	r.lock.RLock()
	defer r.lock.RUnlock()

	return slices.Clone(r.registrations)
}

// NotifyAll delivers message to every subscriber registered at call time,
// once each, in registration order. It blocks until the last delivery
// returns. Failures are reported as *DeliveryError, combined with multierr
// under ContinueOnError and returned alone under AbortOnError.
func (r *Registry) NotifyAll(message string) error {
	snapshot := r.snapshot()
	if len(snapshot) == 0 {
		return nil
	}

	seq := r.broadcastSeq.Add(1)
	start := time.Now()

	var err error
	delivered := 0
	utils.WithGlsValue(utils.BroadcastField, seq, func() {
		for i, reg := range snapshot {
			derr := deliver(i, reg, message)
			if derr == nil {
				delivered++
				continue
			}

			recordFailure(derr)
			err = multierr.Append(err, derr)
			if r.policy == AbortOnError {
				log.Warnf("abort broadcast %d after %d of %d deliveries", seq, i+1, len(snapshot))
				return
			}
		}
	})

	xmetrics.Broadcast(len(snapshot), start)
	xmetrics.Delivered(delivered)
	log.Tracef("broadcast %d delivered %d of %d", seq, delivered, len(snapshot))

	return err
}

func deliver(index int, reg registration, message string) (derr *DeliveryError) {
	defer func() {
		if p := recover(); p != nil {
			derr = newDeliveryError(reg.id, index, message,
				xerror.Panicf(xerror.Subscriber, "subscription %d panic: %v", reg.id, p))
		}
	}()

	if err := reg.subscriber.OnNotify(message); err != nil {
		return newDeliveryError(reg.id, index, message, err)
	}
	return nil
}

func recordFailure(derr *DeliveryError) {
	xerr := xerror.As(derr.Err)
	if xerr == nil {
		xerr = xerror.NewWithoutStack(xerror.Subscriber, derr.Err.Error())
	}
	xmetrics.AddError(xerr)

	log.Warnf("%s", derr)
}
