package storage

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
	"github.com/selectdb/notifier/pkg/xerror"
)

type SQLiteDB struct {
	db *sql.DB
}

func NewSQLiteDB(dbPath string) (DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, xerror.Wrapf(err, xerror.DB, "sqlite: open %s failed", dbPath)
	}

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS messages (seq INTEGER PRIMARY KEY AUTOINCREMENT, id TEXT, message TEXT, timestamp INTEGER)"); err != nil {
		db.Close()
		return nil, xerror.Wrap(err, xerror.DB, "sqlite: create table messages failed")
	}

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS webhooks (name TEXT PRIMARY KEY, url TEXT)"); err != nil {
		db.Close()
		return nil, xerror.Wrap(err, xerror.DB, "sqlite: create table webhooks failed")
	}

	return &SQLiteDB{db: db}, nil
}

func (s *SQLiteDB) AddMessage(id string, message string, timestamp int64) error {
	if _, err := s.db.Exec("INSERT INTO messages (id, message, timestamp) VALUES (?, ?, ?)", id, message, timestamp); err != nil {
		return xerror.Wrapf(err, xerror.DB, "sqlite: insert message %s failed", id)
	}
	return nil
}

func (s *SQLiteDB) ListMessages(limit int) ([]Message, error) {
	rows, err := s.db.Query("SELECT id, message, timestamp FROM messages ORDER BY seq DESC LIMIT ?", limit)
	if err != nil {
		return nil, xerror.Wrap(err, xerror.DB, "sqlite: query messages failed")
	}
	defer rows.Close()

	messages := make([]Message, 0, limit)
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.Message, &m.Timestamp); err != nil {
			return nil, xerror.Wrap(err, xerror.DB, "sqlite: scan message failed")
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, xerror.Wrap(err, xerror.DB, "sqlite: iterate messages failed")
	}

	return reverseMessages(messages), nil
}

func (s *SQLiteDB) AddWebhook(name string, url string) error {
	// check webhook name exists, if exists, return error
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM webhooks WHERE name = ?", name).Scan(&count); err != nil {
		return xerror.Wrapf(err, xerror.DB, "sqlite: query webhook %s failed", name)
	}
	if count > 0 {
		return ErrWebhookExists
	}

	if _, err := s.db.Exec("INSERT INTO webhooks (name, url) VALUES (?, ?)", name, url); err != nil {
		return xerror.Wrapf(err, xerror.DB, "sqlite: insert webhook %s failed", name)
	}
	return nil
}

func (s *SQLiteDB) RemoveWebhook(name string) error {
	result, err := s.db.Exec("DELETE FROM webhooks WHERE name = ?", name)
	if err != nil {
		return xerror.Wrapf(err, xerror.DB, "sqlite: delete webhook %s failed", name)
	}

	if affected, err := result.RowsAffected(); err != nil {
		return xerror.Wrapf(err, xerror.DB, "sqlite: delete webhook %s failed", name)
	} else if affected == 0 {
		return ErrWebhookNotExists
	}
	return nil
}

func (s *SQLiteDB) ListWebhooks() (map[string]string, error) {
	rows, err := s.db.Query("SELECT name, url FROM webhooks")
	if err != nil {
		return nil, xerror.Wrap(err, xerror.DB, "sqlite: query webhooks failed")
	}
	defer rows.Close()

	result := make(map[string]string)
	for rows.Next() {
		var name, url string
		if err := rows.Scan(&name, &url); err != nil {
			return nil, xerror.Wrap(err, xerror.DB, "sqlite: scan webhook failed")
		}
		result[name] = url
	}
	if err := rows.Err(); err != nil {
		return nil, xerror.Wrap(err, xerror.DB, "sqlite: iterate webhooks failed")
	}
	return result, nil
}

func (s *SQLiteDB) Close() error {
	return s.db.Close()
}
