package datastore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/akam1o/tna-routegen/pkg/errors"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS link_config (
	id         INTEGER PRIMARY KEY CHECK (id = 1),
	record     TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS artifacts (
	name       TEXT PRIMARY KEY,
	content    TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS audit_log (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp  TIMESTAMP NOT NULL,
	session_id TEXT,
	action     TEXT NOT NULL,
	result     TEXT NOT NULL,
	error_code TEXT,
	details    TEXT
);

CREATE INDEX IF NOT EXISTS idx_audit_log_timestamp ON audit_log(timestamp);
`

// sqliteDatastore implements the Datastore interface using SQLite.
type sqliteDatastore struct {
	db        *sql.DB
	dbPath    string
	closeOnce sync.Once
}

// NewSQLiteDatastore creates a new SQLite-backed datastore.
// SQLitePath ":memory:" gives a private in-memory database.
func NewSQLiteDatastore(cfg *Config) (Datastore, error) {
	if cfg.Backend != BackendSQLite {
		return nil, fmt.Errorf("invalid backend type: %s (expected %s)", cfg.Backend, BackendSQLite)
	}

	dbPath := cfg.SQLitePath
	if dbPath == "" {
		dbPath = DefaultSQLitePath
	}

	inMemory := dbPath == ":memory:"
	if !inMemory {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// _txlock=immediate makes write transactions take the RESERVED lock upfront
	db, err := sql.Open("sqlite3", dbPath+"?_txlock=immediate")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if inMemory {
		// Every connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(4)
		db.SetMaxIdleConns(2)
		db.SetConnMaxIdleTime(1 * time.Minute)
	}

	pragmas := []string{
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	if !inMemory {
		pragmas = append(pragmas, "PRAGMA journal_mode=WAL")
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &sqliteDatastore{db: db, dbPath: dbPath}, nil
}

// Close closes the datastore connection.
// This method is idempotent and safe to call multiple times.
func (ds *sqliteDatastore) Close() error {
	var closeErr error
	ds.closeOnce.Do(func() {
		if ds.db != nil {
			closeErr = ds.db.Close()
		}
	})
	return closeErr
}

func (ds *sqliteDatastore) GetLinkConfig(ctx context.Context) (*LinkRecord, error) {
	var raw string
	err := ds.db.QueryRowContext(ctx, `SELECT record FROM link_config WHERE id = 1`).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("gNB link configuration")
	}
	if err != nil {
		return nil, errors.StoreError("get link configuration", err)
	}

	var rec LinkRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, errors.StoreError("decode link configuration", err)
	}
	return &rec, nil
}

func (ds *sqliteDatastore) PutLinkConfig(ctx context.Context, rec *LinkRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return errors.StoreError("marshal link configuration", err)
	}

	return ds.withTx(ctx, false, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO link_config (id, record, updated_at) VALUES (1, ?, ?)
			ON CONFLICT(id) DO UPDATE SET record = excluded.record, updated_at = excluded.updated_at
		`, string(raw), time.Now())
		if err != nil {
			return errors.StoreError("put link configuration", err)
		}
		return nil
	})
}

func (ds *sqliteDatastore) DeleteLinkConfig(ctx context.Context) error {
	return ds.withTx(ctx, false, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM link_config WHERE id = 1`)
		if err != nil {
			return errors.StoreError("delete link configuration", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return errors.StoreError("delete link configuration", err)
		}
		if n == 0 {
			return errors.NotFound("gNB link configuration")
		}
		return nil
	})
}

func (ds *sqliteDatastore) PutArtifact(ctx context.Context, name string, content string) (*WriteResult, error) {
	if err := validateArtifactName(name); err != nil {
		return nil, err
	}

	result := &WriteResult{}
	err := ds.withTx(ctx, false, func(tx *sql.Tx) error {
		var prev string
		err := tx.QueryRowContext(ctx, `SELECT content FROM artifacts WHERE name = ?`, name).Scan(&prev)
		switch {
		case err == nil:
			result.Replaced = true
			result.PreviousContent = prev
		case err != sql.ErrNoRows:
			return errors.StoreError("read artifact "+name, err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO artifacts (name, content, updated_at) VALUES (?, ?, ?)
			ON CONFLICT(name) DO UPDATE SET content = excluded.content, updated_at = excluded.updated_at
		`, name, content, time.Now())
		if err != nil {
			return errors.StoreError("write artifact "+name, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (ds *sqliteDatastore) GetArtifact(ctx context.Context, name string) (*Artifact, error) {
	a := &Artifact{Name: name}
	err := ds.db.QueryRowContext(ctx,
		`SELECT content, updated_at FROM artifacts WHERE name = ?`, name,
	).Scan(&a.Content, &a.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("Artifact " + name)
	}
	if err != nil {
		return nil, errors.StoreError("read artifact "+name, err)
	}
	return a, nil
}

func (ds *sqliteDatastore) ListArtifacts(ctx context.Context, pattern string) ([]string, error) {
	rows, err := ds.db.QueryContext(ctx, `SELECT name FROM artifacts`)
	if err != nil {
		return nil, errors.StoreError("list artifacts", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, errors.StoreError("list artifacts", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.StoreError("list artifacts", err)
	}
	return filterNames(names, pattern)
}

// LogAuditEvent records an audit event to the audit log.
func (ds *sqliteDatastore) LogAuditEvent(ctx context.Context, event *AuditEvent) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	return ds.withTx(ctx, false, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO audit_log (timestamp, session_id, action, result, error_code, details)
			VALUES (?, ?, ?, ?, ?, ?)
		`,
			event.Timestamp,
			event.SessionID,
			event.Action,
			event.Result,
			event.ErrorCode,
			event.Details,
		)
		if err != nil {
			return errors.StoreError("log audit event", err)
		}
		if id, err := res.LastInsertId(); err == nil {
			event.ID = id
		}
		return nil
	})
}

// ListAuditEvents returns the newest events first.
func (ds *sqliteDatastore) ListAuditEvents(ctx context.Context, limit int) ([]*AuditEvent, error) {
	query := `SELECT id, timestamp, session_id, action, result, error_code, details
		FROM audit_log ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := ds.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.StoreError("list audit events", err)
	}
	defer rows.Close()

	var events []*AuditEvent
	for rows.Next() {
		var (
			ev                                 AuditEvent
			sessionID, errorCode, detailsValue sql.NullString
		)
		if err := rows.Scan(&ev.ID, &ev.Timestamp, &sessionID, &ev.Action, &ev.Result, &errorCode, &detailsValue); err != nil {
			return nil, errors.StoreError("list audit events", err)
		}
		ev.SessionID = sessionID.String
		ev.ErrorCode = errorCode.String
		ev.Details = detailsValue.String
		events = append(events, &ev)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.StoreError("list audit events", err)
	}
	return events, nil
}

// withTx executes a function within a transaction, handling commit/rollback automatically.
func (ds *sqliteDatastore) withTx(ctx context.Context, readOnly bool, fn func(*sql.Tx) error) error {
	tx, err := ds.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: readOnly})
	if err != nil {
		return errors.StoreError("begin transaction", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return errors.StoreError("commit transaction", err)
	}
	return nil
}
