package storage

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/selectdb/notifier/pkg/xerror"
)

type PostgresqlDB struct {
	db *sql.DB
}

func NewPostgresqlDB(host string, port int, user string, password string) (DB, error) {
	url := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable", user, password, host, port, "postgres")
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, xerror.Wrapf(err, xerror.DB, "postgresql: open %s:%d failed", host, port)
	}

	if _, err := db.Exec(fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", remoteDBName)); err != nil {
		db.Close()
		return nil, xerror.Wrapf(err, xerror.DB, "postgresql: create schema %s failed", remoteDBName)
	}

	if _, err = db.Exec(fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s.messages (seq BIGSERIAL PRIMARY KEY, id VARCHAR(64), message TEXT, timestamp BIGINT)", remoteDBName)); err != nil {
		db.Close()
		return nil, xerror.Wrap(err, xerror.DB, "postgresql: create table messages failed")
	}

	if _, err = db.Exec(fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s.webhooks (name VARCHAR(512) PRIMARY KEY, url TEXT)", remoteDBName)); err != nil {
		db.Close()
		return nil, xerror.Wrap(err, xerror.DB, "postgresql: create table webhooks failed")
	}

	return &PostgresqlDB{db: db}, nil
}

func (s *PostgresqlDB) AddMessage(id string, message string, timestamp int64) error {
	insertSql := fmt.Sprintf("INSERT INTO %s.messages (id, message, timestamp) VALUES ($1, $2, $3)", remoteDBName)
	if _, err := s.db.Exec(insertSql, id, message, timestamp); err != nil {
		return xerror.Wrapf(err, xerror.DB, "postgresql: insert message %s failed", id)
	}
	return nil
}

func (s *PostgresqlDB) ListMessages(limit int) ([]Message, error) {
	querySql := fmt.Sprintf("SELECT id, message, timestamp FROM %s.messages ORDER BY seq DESC LIMIT $1", remoteDBName)
	rows, err := s.db.Query(querySql, limit)
	if err != nil {
		return nil, xerror.Wrap(err, xerror.DB, "postgresql: query messages failed")
	}
	defer rows.Close()

	messages := make([]Message, 0, limit)
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.Message, &m.Timestamp); err != nil {
			return nil, xerror.Wrap(err, xerror.DB, "postgresql: scan message failed")
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, xerror.Wrap(err, xerror.DB, "postgresql: iterate messages failed")
	}

	return reverseMessages(messages), nil
}

func (s *PostgresqlDB) AddWebhook(name string, url string) error {
	// check webhook name exists, if exists, return error
	var count int
	countSql := fmt.Sprintf("SELECT COUNT(*) FROM %s.webhooks WHERE name = $1", remoteDBName)
	if err := s.db.QueryRow(countSql, name).Scan(&count); err != nil {
		return xerror.Wrapf(err, xerror.DB, "postgresql: query webhook %s failed", name)
	}
	if count > 0 {
		return ErrWebhookExists
	}

	insertSql := fmt.Sprintf("INSERT INTO %s.webhooks (name, url) VALUES ($1, $2)", remoteDBName)
	if _, err := s.db.Exec(insertSql, name, url); err != nil {
		return xerror.Wrapf(err, xerror.DB, "postgresql: insert webhook %s failed", name)
	}
	return nil
}

func (s *PostgresqlDB) RemoveWebhook(name string) error {
	result, err := s.db.Exec(fmt.Sprintf("DELETE FROM %s.webhooks WHERE name = $1", remoteDBName), name)
	if err != nil {
		return xerror.Wrapf(err, xerror.DB, "postgresql: delete webhook %s failed", name)
	}

	if affected, err := result.RowsAffected(); err != nil {
		return xerror.Wrapf(err, xerror.DB, "postgresql: delete webhook %s failed", name)
	} else if affected == 0 {
		return ErrWebhookNotExists
	}
	return nil
}

func (s *PostgresqlDB) ListWebhooks() (map[string]string, error) {
	rows, err := s.db.Query(fmt.Sprintf("SELECT name, url FROM %s.webhooks", remoteDBName))
	if err != nil {
		return nil, xerror.Wrap(err, xerror.DB, "postgresql: query webhooks failed")
	}
	defer rows.Close()

	result := make(map[string]string)
	for rows.Next() {
		var name, url string
		if err := rows.Scan(&name, &url); err != nil {
			return nil, xerror.Wrap(err, xerror.DB, "postgresql: scan webhook failed")
		}
		result[name] = url
	}
	if err := rows.Err(); err != nil {
		return nil, xerror.Wrap(err, xerror.DB, "postgresql: iterate webhooks failed")
	}
	return result, nil
}

func (s *PostgresqlDB) Close() error {
	return s.db.Close()
}
