package subscriber

import (
	"time"

	"github.com/google/uuid"
	"github.com/selectdb/notifier/pkg/storage"
	"github.com/selectdb/notifier/pkg/xerror"
	"github.com/selectdb/notifier/pkg/xmetrics"
)

// JournalSubscriber persists every message into the meta db.
type JournalSubscriber struct {
	db  storage.DB
	now func() time.Time
}

func NewJournalSubscriber(db storage.DB) *JournalSubscriber {
	return &JournalSubscriber{
		db:  db,
		now: time.Now,
	}
}

func (j *JournalSubscriber) OnNotify(message string) error {
	id := uuid.NewString()
	if err := j.db.AddMessage(id, message, j.now().UnixMilli()); err != nil {
		return xerror.Wrapf(err, xerror.DB, "journal message %s failed", id)
	}

	xmetrics.SubscriberHandled("journal")
	return nil
}
