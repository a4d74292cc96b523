package notify

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
)

// DeliveryError records one subscriber failure within a broadcast.
type DeliveryError struct {
	ID      SubscriptionID
	Index   int // position in the broadcast snapshot
	Message string
	Err     error
}

func newDeliveryError(id SubscriptionID, index int, message string, err error) *DeliveryError {
	return &DeliveryError{
		ID:      id,
		Index:   index,
		Message: message,
		Err:     err,
	}
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("deliver to subscription %d at position %d failed: %v", e.ID, e.Index, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// DeliveryErrors splits the error returned by NotifyAll into its
// per-subscriber failures, in delivery order.
func DeliveryErrors(err error) []*DeliveryError {
	var result []*DeliveryError
	for _, e := range multierr.Errors(err) {
		var derr *DeliveryError
		if errors.As(e, &derr) {
			result = append(result, derr)
		}
	}
	return result
}
