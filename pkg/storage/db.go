package storage

import "errors"

var (
	ErrWebhookExists    = errors.New("webhook exists")
	ErrWebhookNotExists = errors.New("webhook not exists")
)

const (
	remoteDBName string = "notifier"
)

type Message struct {
	ID        string `json:"id"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}

type DB interface {
	// Append a delivered message to the journal
	AddMessage(id string, message string, timestamp int64) error
	// The latest limit messages, oldest first
	ListMessages(limit int) ([]Message, error)

	// Add webhook subscriber
	AddWebhook(name string, url string) error
	// Remove webhook subscriber
	RemoveWebhook(name string) error
	// name -> url of all webhook subscribers
	ListWebhooks() (map[string]string, error)

	Close() error
}

func reverseMessages(messages []Message) []Message {
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages
}
