package notify

// Subscriber reacts to a broadcast message. A non-nil error marks the
// delivery as failed; what happens next depends on the registry's
// FailurePolicy.
type Subscriber interface {
	OnNotify(message string) error
}

// SubscriberFunc adapts a plain function to a Subscriber.
type SubscriberFunc func(message string) error

func (f SubscriberFunc) OnNotify(message string) error {
	return f(message)
}

type Subject interface {
	Register(Subscriber) SubscriptionID
	Unregister(SubscriptionID) bool
	NotifyAll(message string) error
}

var _ Subject = (*Registry)(nil)
