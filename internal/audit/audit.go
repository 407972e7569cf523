// Package audit persists an audit trail for every money-moving operation the
// BFF forwards to the betting backend (bet creation, preview, cancellation).
// Entries record what was attempted, whether it succeeded, and how long each
// stage took — with the user's token stored only as a truncated hash.
package audit

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Operations recorded in the audit trail.
const (
	OpCreateBet  = "create_bet"
	OpCancelBet  = "cancel_bet"
	OpPreviewBet = "preview_bet"
)

// Entry statuses.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Entry is one audited transaction attempt.
type Entry struct {
	TransactionID string    `json:"transaction_id"`
	Operation     string    `json:"operation"`
	Status        string    `json:"status"`
	EventID       int       `json:"event_id,omitempty"`
	SelectedTeam  string    `json:"selected_team,omitempty"`
	Amount        float64   `json:"amount,omitempty"`
	BetID         int       `json:"bet_id,omitempty"`
	ErrorMessage  string    `json:"error_message,omitempty"`
	TokenHash     string    `json:"token_hash,omitempty"`
	ValidationMS  float64   `json:"validation_ms"`
	BackendMS     float64   `json:"backend_ms"`
	CreatedAt     time.Time `json:"created_at"`
}

// Writer persists audit entries.
type Writer interface {
	Write(ctx context.Context, entry Entry) error
	Close() error
}

// NoopWriter ignores all audit writes.
type NoopWriter struct{}

func (NoopWriter) Write(_ context.Context, _ Entry) error { return nil }
func (NoopWriter) Close() error                           { return nil }

// NewTransactionID returns a fresh identifier tying together the audit
// entries of one money-moving attempt.
func NewTransactionID(operation string) string {
	return operation + "_" + uuid.NewString()
}

// HashToken reduces a bearer token to a short fingerprint so activity can be
// correlated per user without ever storing the credential.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])[:16]
}

// SQLWriter persists entries to SQLite or Postgres.
type SQLWriter struct {
	db      *sql.DB
	dialect string
}

// NewSQLWriter opens the audit store for the named driver, "sqlite" or
// "postgres".
func NewSQLWriter(driver, dsn string) (*SQLWriter, error) {
	switch driver {
	case "sqlite":
		return NewSQLiteWriter(dsn)
	case "postgres":
		return NewPostgresWriter(dsn)
	default:
		return nil, fmt.Errorf("unsupported audit driver %q", driver)
	}
}

// NewSQLiteWriter opens (creating if needed) a SQLite audit database.
func NewSQLiteWriter(dsn string) (*SQLWriter, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		dsn = "bff-audit.db"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite audit writer: %w", err)
	}
	w := &SQLWriter{db: db, dialect: "sqlite"}
	if err := w.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return w, nil
}

// NewPostgresWriter connects to a Postgres audit database.
func NewPostgresWriter(dsn string) (*SQLWriter, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("postgres dsn is required")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres audit writer: %w", err)
	}
	w := &SQLWriter{db: db, dialect: "postgres"}
	if err := w.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return w, nil
}

func (w *SQLWriter) init() error {
	if err := w.db.Ping(); err != nil {
		return fmt.Errorf("ping %s audit writer: %w", w.dialect, err)
	}

	ddl := `
CREATE TABLE IF NOT EXISTS audit_log (
	id INTEGER PRIMARY KEY,
	transaction_id TEXT NOT NULL,
	operation TEXT NOT NULL,
	status TEXT NOT NULL,
	event_id INTEGER,
	selected_team TEXT,
	amount REAL,
	bet_id INTEGER,
	error_message TEXT,
	token_hash TEXT,
	validation_ms REAL,
	backend_ms REAL,
	total_ms REAL,
	created_at TIMESTAMP NOT NULL
);`

	if w.dialect == "postgres" {
		ddl = `
CREATE TABLE IF NOT EXISTS audit_log (
	id BIGSERIAL PRIMARY KEY,
	transaction_id TEXT NOT NULL,
	operation TEXT NOT NULL,
	status TEXT NOT NULL,
	event_id INTEGER,
	selected_team TEXT,
	amount DOUBLE PRECISION,
	bet_id INTEGER,
	error_message TEXT,
	token_hash TEXT,
	validation_ms DOUBLE PRECISION,
	backend_ms DOUBLE PRECISION,
	total_ms DOUBLE PRECISION,
	created_at TIMESTAMPTZ NOT NULL
);`
	}

	if _, err := w.db.Exec(ddl); err != nil {
		return fmt.Errorf("initialize audit schema: %w", err)
	}
	return nil
}

// Write persists one entry. Callers must never fail the user request when
// Write errors; log it and move on.
func (w *SQLWriter) Write(ctx context.Context, entry Entry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO audit_log(transaction_id, operation, status, event_id, selected_team, amount, bet_id, error_message, token_hash, validation_ms, backend_ms, total_ms, created_at)
	VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if w.dialect == "postgres" {
		query = `INSERT INTO audit_log(transaction_id, operation, status, event_id, selected_team, amount, bet_id, error_message, token_hash, validation_ms, backend_ms, total_ms, created_at)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	}

	_, err := w.db.ExecContext(ctx, query,
		entry.TransactionID,
		entry.Operation,
		entry.Status,
		entry.EventID,
		entry.SelectedTeam,
		entry.Amount,
		entry.BetID,
		entry.ErrorMessage,
		entry.TokenHash,
		entry.ValidationMS,
		entry.BackendMS,
		entry.ValidationMS+entry.BackendMS,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("write audit entry: %w", err)
	}
	return nil
}

// Recent returns the newest entries, most recent first.
func (w *SQLWriter) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT transaction_id, operation, status, event_id, selected_team, amount, bet_id, error_message, token_hash, validation_ms, backend_ms, created_at
	FROM audit_log ORDER BY id DESC LIMIT ?`
	if w.dialect == "postgres" {
		query = strings.Replace(query, "LIMIT ?", "LIMIT $1", 1)
	}

	rows, err := w.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(
			&e.TransactionID, &e.Operation, &e.Status, &e.EventID,
			&e.SelectedTeam, &e.Amount, &e.BetID, &e.ErrorMessage,
			&e.TokenHash, &e.ValidationMS, &e.BackendMS, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close releases the underlying database handle.
func (w *SQLWriter) Close() error {
	if w == nil || w.db == nil {
		return nil
	}
	return w.db.Close()
}
