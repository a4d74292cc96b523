package subscriber

import (
	"math"
	"sync"
	"time"

	"github.com/selectdb/notifier/pkg/xmetrics"
	"github.com/tidwall/btree"
)

const (
	degree = 32
)

type Entry struct {
	Seq       uint64 `json:"seq"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}

// HistorySubscriber keeps the most recent messages in memory, oldest evicted
// first once capacity is reached.
type HistorySubscriber struct {
	lock     sync.RWMutex
	capacity int
	lastSeq  uint64
	entries  *btree.Map[uint64, Entry] // seq -> entry
	now      func() time.Time
}

func NewHistorySubscriber(capacity int) *HistorySubscriber {
	return &HistorySubscriber{
		capacity: capacity,
		entries:  btree.NewMap[uint64, Entry](degree),
		now:      time.Now,
	}
}

func (h *HistorySubscriber) OnNotify(message string) error {
	h.lock.Lock()
	defer h.lock.Unlock()

	h.lastSeq++
	if h.capacity <= 0 {
		return nil
	}

	h.entries.Set(h.lastSeq, Entry{
		Seq:       h.lastSeq,
		Message:   message,
		Timestamp: h.now().UnixMilli(),
	})
	for h.entries.Len() > h.capacity {
		oldest, _, _ := h.entries.Min()
		h.entries.Delete(oldest)
	}

	xmetrics.SubscriberHandled("history")
	return nil
}

func (h *HistorySubscriber) Len() int {
	h.lock.RLock()
	defer h.lock.RUnlock()

	return h.entries.Len()
}

// Recent returns at most limit of the newest entries, oldest first.
func (h *HistorySubscriber) Recent(limit int) []Entry {
	h.lock.RLock()
	defer h.lock.RUnlock()

	if limit <= 0 {
		return []Entry{}
	}

	result := make([]Entry, 0, limit)
	h.entries.Reverse(func(_ uint64, entry Entry) bool {
		result = append(result, entry)
		return len(result) < limit
	})
	for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
		result[i], result[j] = result[j], result[i]
	}
	return result
}

// Since returns the retained entries with a seq greater than seq.
func (h *HistorySubscriber) Since(seq uint64) []Entry {
	h.lock.RLock()
	defer h.lock.RUnlock()

	result := make([]Entry, 0)
	if seq == math.MaxUint64 {
		return result
	}
	h.entries.Ascend(seq+1, func(_ uint64, entry Entry) bool {
		result = append(result, entry)
		return true
	})
	return result
}
