package notify

import (
	"strings"

	"github.com/selectdb/notifier/pkg/xerror"
)

type FailurePolicy int

const (
	// ContinueOnError delivers to every subscriber and returns all failures combined.
	ContinueOnError FailurePolicy = iota
	// AbortOnError stops the broadcast at the first failing subscriber.
	AbortOnError
)

func (p FailurePolicy) String() string {
	switch p {
	case ContinueOnError:
		return "continue"
	case AbortOnError:
		return "abort"
	default:
		return "unknown"
	}
}

func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "continue":
		return ContinueOnError, nil
	case "abort":
		return AbortOnError, nil
	default:
		return ContinueOnError, xerror.Errorf(xerror.Config, "unknown failure policy: %s", s)
	}
}
