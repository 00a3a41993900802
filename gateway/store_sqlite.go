package gateway

import (
	"database/sql"
	"slices"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/zhmesh/zhmesh/mesh/frame"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS records (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	sender BLOB NOT NULL,
	received INTEGER NOT NULL,
	payload BLOB NOT NULL
)`

// SqliteStore keeps records in a sqlite database.
type SqliteStore struct {
	db *sql.DB
}

func NewSqliteStore(path string) (*SqliteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err = db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, err
	}
	return &SqliteStore{db: db}, nil
}

func (s *SqliteStore) String() string {
	return "sqlite-store"
}

func (s *SqliteStore) Put(rec Record) error {
	payload := rec.Payload
	if payload == nil {
		payload = []byte{}
	}
	_, err := s.db.Exec("INSERT INTO records (sender, received, payload) VALUES (?, ?, ?)",
		rec.Sender[:], rec.Received.UnixNano(), payload)
	return err
}

func (s *SqliteStore) List(limit int) ([]Record, error) {
	if limit <= 0 {
		limit = -1 // no limit
	}
	rows, err := s.db.Query("SELECT sender, received, payload FROM records ORDER BY id DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var sender, payload []byte
		var received int64
		if err := rows.Scan(&sender, &received, &payload); err != nil {
			return nil, err
		}
		if len(sender) != frame.AddressSize {
			continue
		}
		rec := Record{Received: time.Unix(0, received), Payload: payload}
		copy(rec.Sender[:], sender)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	slices.Reverse(records)
	return records, nil
}

func (s *SqliteStore) Close() error {
	return s.db.Close()
}
