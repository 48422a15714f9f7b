package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
)

var ErrNotFound = errors.New("not found")

// Store is the repository over the libsql database.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Open connects to Turso/libsql, checks the connection and creates the schema.
func Open(ctx context.Context, dbURL, authToken string) (*sql.DB, error) {
	dsn := dbURL
	if authToken != "" {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + "authToken=" + authToken
	}

	conn, err := sql.Open("libsql", dsn)
	if err != nil {
		return nil, fmt.Errorf("open libsql: %w", err)
	}
	if err = conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping libsql: %w", err)
	}
	if err = CreateTables(ctx, conn); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		telegram_id INTEGER UNIQUE,
		name TEXT NOT NULL,
		phone TEXT,
		role TEXT NOT NULL DEFAULT 'agent',
		income_percent REAL NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS periods (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		period_name TEXT NOT NULL,
		period_date TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'closed',
		is_current INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS half_prices (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		period_id INTEGER NOT NULL,
		lotto_type TEXT,
		number TEXT NOT NULL,
		UNIQUE(period_id, number),
		FOREIGN KEY(period_id) REFERENCES periods(id)
	)`,
	`CREATE TABLE IF NOT EXISTS bills (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		ref TEXT NOT NULL UNIQUE,
		agent_id INTEGER,
		buyer_name TEXT NOT NULL,
		period_id INTEGER NOT NULL,
		total_amount REAL NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY(agent_id) REFERENCES users(id),
		FOREIGN KEY(period_id) REFERENCES periods(id)
	)`,
	`CREATE TABLE IF NOT EXISTS tickets (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		bill_id INTEGER NOT NULL,
		number TEXT NOT NULL,
		lotto_type TEXT NOT NULL,
		price REAL NOT NULL,
		price_toad REAL NOT NULL DEFAULT 0,
		is_reverse INTEGER NOT NULL DEFAULT 0,
		is_half_price INTEGER NOT NULL DEFAULT 0,
		FOREIGN KEY(bill_id) REFERENCES bills(id)
	)`,
	`CREATE TABLE IF NOT EXISTS results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		period_id INTEGER NOT NULL UNIQUE,
		result_2up TEXT NOT NULL,
		result_2down TEXT NOT NULL,
		result_3up TEXT NOT NULL,
		result_3toad TEXT NOT NULL,
		result_date TEXT NOT NULL,
		FOREIGN KEY(period_id) REFERENCES periods(id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tickets_bill_id ON tickets(bill_id)`,
	`CREATE INDEX IF NOT EXISTS idx_bills_period_id ON bills(period_id)`,
}

// nullID writes the zero ID as NULL. Bills entered by the office admin have
// no agent row.
func nullID(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: id != 0}
}

// CreateTables applies the schema; every statement is idempotent.
func CreateTables(ctx context.Context, conn *sql.DB) error {
	for _, stmt := range schema {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create tables: %w", err)
		}
	}
	return nil
}

var timeLayouts = []string{time.RFC3339Nano, "2006-01-02 15:04:05", "2006-01-02"}

func parseTime(s string) time.Time {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

const dateLayout = "2006-01-02"

// rollback is deferred right after Begin; it is a no-op once committed.
func rollback(tx *sql.Tx) {
	_ = tx.Rollback()
}
