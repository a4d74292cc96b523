package storage

import (
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"github.com/selectdb/notifier/pkg/xerror"
)

type MysqlDB struct {
	db *sql.DB
}

func NewMysqlDB(host string, port int, user string, password string) (DB, error) {
	dbForDDL, err := sql.Open("mysql", fmt.Sprintf("%s:%s@tcp(%s:%d)/", user, password, host, port))
	if err != nil {
		return nil, xerror.Wrapf(err, xerror.DB, "mysql: open %s@tcp(%s:%d) failed", user, host, port)
	}

	if _, err := dbForDDL.Exec(fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", remoteDBName)); err != nil {
		dbForDDL.Close()
		return nil, xerror.Wrapf(err, xerror.DB, "mysql: create database %s failed", remoteDBName)
	}
	dbForDDL.Close()

	db, err := sql.Open("mysql", fmt.Sprintf("%s:%s@tcp(%s:%d)/%s", user, password, host, port, remoteDBName))
	if err != nil {
		return nil, xerror.Wrapf(err, xerror.DB, "mysql: open in db %s@tcp(%s:%d)/%s failed", user, host, port, remoteDBName)
	}

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS messages (`seq` BIGINT AUTO_INCREMENT PRIMARY KEY, `id` VARCHAR(64), `message` TEXT, `timestamp` BIGINT)"); err != nil {
		db.Close()
		return nil, xerror.Wrap(err, xerror.DB, "mysql: create table messages failed")
	}

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS webhooks (`name` VARCHAR(512) PRIMARY KEY, `url` TEXT)"); err != nil {
		db.Close()
		return nil, xerror.Wrap(err, xerror.DB, "mysql: create table webhooks failed")
	}

	return &MysqlDB{db: db}, nil
}

func (s *MysqlDB) AddMessage(id string, message string, timestamp int64) error {
	if _, err := s.db.Exec("INSERT INTO messages (id, message, timestamp) VALUES (?, ?, ?)", id, message, timestamp); err != nil {
		return xerror.Wrapf(err, xerror.DB, "mysql: insert message %s failed", id)
	}
	return nil
}

func (s *MysqlDB) ListMessages(limit int) ([]Message, error) {
	rows, err := s.db.Query("SELECT id, message, timestamp FROM messages ORDER BY seq DESC LIMIT ?", limit)
	if err != nil {
		return nil, xerror.Wrap(err, xerror.DB, "mysql: query messages failed")
	}
	defer rows.Close()

	messages := make([]Message, 0, limit)
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.Message, &m.Timestamp); err != nil {
			return nil, xerror.Wrap(err, xerror.DB, "mysql: scan message failed")
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, xerror.Wrap(err, xerror.DB, "mysql: iterate messages failed")
	}

	return reverseMessages(messages), nil
}

func (s *MysqlDB) AddWebhook(name string, url string) error {
	// check webhook name exists, if exists, return error
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM webhooks WHERE name = ?", name).Scan(&count); err != nil {
		return xerror.Wrapf(err, xerror.DB, "mysql: query webhook %s failed", name)
	}
	if count > 0 {
		return ErrWebhookExists
	}

	if _, err := s.db.Exec("INSERT INTO webhooks (name, url) VALUES (?, ?)", name, url); err != nil {
		return xerror.Wrapf(err, xerror.DB, "mysql: insert webhook %s failed", name)
	}
	return nil
}

func (s *MysqlDB) RemoveWebhook(name string) error {
	result, err := s.db.Exec("DELETE FROM webhooks WHERE name = ?", name)
	if err != nil {
		return xerror.Wrapf(err, xerror.DB, "mysql: delete webhook %s failed", name)
	}

	if affected, err := result.RowsAffected(); err != nil {
		return xerror.Wrapf(err, xerror.DB, "mysql: delete webhook %s failed", name)
	} else if affected == 0 {
		return ErrWebhookNotExists
	}
	return nil
}

func (s *MysqlDB) ListWebhooks() (map[string]string, error) {
	rows, err := s.db.Query("SELECT name, url FROM webhooks")
	if err != nil {
		return nil, xerror.Wrap(err, xerror.DB, "mysql: query webhooks failed")
	}
	defer rows.Close()

	result := make(map[string]string)
	for rows.Next() {
		var name, url string
		if err := rows.Scan(&name, &url); err != nil {
			return nil, xerror.Wrap(err, xerror.DB, "mysql: scan webhook failed")
		}
		result[name] = url
	}
	if err := rows.Err(); err != nil {
		return nil, xerror.Wrap(err, xerror.DB, "mysql: iterate webhooks failed")
	}
	return result, nil
}

func (s *MysqlDB) Close() error {
	return s.db.Close()
}
