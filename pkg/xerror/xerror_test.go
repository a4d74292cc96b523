package xerror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// UnitTest for xCategory
func TestXCategory(t *testing.T) {
	assert.Equal(t, Normal.Name(), "normal")
	assert.Equal(t, Subscriber.Name(), "subscriber")
	assert.Equal(t, DB.Name(), "db")
	assert.Equal(t, Webhook.Name(), "webhook")
	assert.Equal(t, Config.Name(), "config")
}

func TestXError_Error(t *testing.T) {
	errMsg := "test error"
	err := Errorf(Normal, errMsg)
	assert.NotNil(t, err)

	var xerr *XError
	assert.True(t, errors.As(err, &xerr))
	assert.Equal(t, xerr.Error(), fmt.Sprintf("[%s] %s", Normal.Name(), errMsg))

	err = Wrap(err, DB, "wrapped error")
	assert.NotNil(t, err)

	assert.True(t, errors.As(err, &xerr))
	assert.Equal(t, xerr.Error(), fmt.Sprintf("[%s] %s", Normal.Name(), errMsg))
	assert.Contains(t, err.Error(), "wrapped error")
}

// UnitTest for XError
func TestErrorf(t *testing.T) {
	errMsg := "test error"
	err := Errorf(Normal, errMsg)
	assert.NotNil(t, err)

	var xerr *XError
	assert.True(t, errors.As(err, &xerr))
	assert.True(t, xerr.IsRecoverable())
	assert.Equal(t, xerr.Category(), Normal)
	assert.Equal(t, xerr.err.Error(), errMsg)
	assert.Equal(t, "Recoverable", xerr.Type())
}

func TestWrap(t *testing.T) {
	errMsg := "db open error"
	err := errors.New(errMsg)
	wrappedErr := Wrap(err, DB, "wrapped error")
	assert.NotNil(t, wrappedErr)

	var xerr *XError
	assert.True(t, errors.As(wrappedErr, &xerr))
	assert.True(t, xerr.IsRecoverable())
	assert.Equal(t, xerr.Category(), DB)
	assert.Equal(t, xerr.err.Error(), errMsg)
	assert.True(t, errors.Is(wrappedErr, err))
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, DB, "nothing"))
	assert.Nil(t, Wrapf(nil, DB, "nothing %d", 1))
	assert.Nil(t, WithStack(nil))
}

func TestWrapf(t *testing.T) {
	errMsg := "webhook test error"
	err := errors.New(errMsg)
	wrappedErr := Wrapf(err, Webhook, "wrapped error: %s", "foo")
	assert.NotNil(t, wrappedErr)

	var xerr *XError
	assert.True(t, errors.As(wrappedErr, &xerr))
	assert.True(t, xerr.IsRecoverable())
	assert.Equal(t, xerr.Category(), Webhook)
	assert.Equal(t, xerr.err.Error(), errMsg)
	assert.Contains(t, wrappedErr.Error(), "wrapped error: foo")
}

func TestIs(t *testing.T) {
	errSubscriberGone := NewWithoutStack(Subscriber, "subscriber gone")
	wrappedErr := XWrapf(errSubscriberGone, "subscription id: %d", 33415)
	assert.NotNil(t, wrappedErr)

	assert.True(t, errors.Is(wrappedErr, errSubscriberGone))

	var xerr *XError
	assert.True(t, errors.As(wrappedErr, &xerr))
	assert.True(t, xerr.IsRecoverable())
	assert.Equal(t, xerr.Category(), Subscriber)
}

func TestPanic(t *testing.T) {
	errMsg := "test panic"
	err := Panic(Normal, errMsg)
	assert.NotNil(t, err)

	var xerr *XError
	assert.True(t, errors.As(err, &xerr))
	assert.True(t, xerr.IsPanic())
	assert.Equal(t, xerr.Category(), Normal)
	assert.Equal(t, xerr.err.Error(), errMsg)
}

func TestPanicf(t *testing.T) {
	err := Panicf(Subscriber, "test panicf %d", 7)
	assert.NotNil(t, err)

	xerr := As(err)
	assert.NotNil(t, xerr)
	assert.True(t, xerr.IsPanic())
	assert.Equal(t, xerr.Category(), Subscriber)
	assert.Equal(t, xerr.err.Error(), "test panicf 7")
	assert.Equal(t, "Panic", xerr.Type())
}

func TestAsNotXError(t *testing.T) {
	assert.Nil(t, As(errors.New("plain")))
	assert.Nil(t, As(nil))
}
