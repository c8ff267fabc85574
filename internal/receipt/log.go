// Package receipt keeps confirmed orders in a local outbox and relays them to Kafka.
package receipt

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

type Receipt struct {
	ID        string
	OrderID   string
	Payload   json.RawMessage
	CreatedAt time.Time
}

// Log is the SQLite receipt outbox. It can share a database with storage.SQLiteStore.
type Log struct {
	db  *sql.DB
	now func() time.Time
}

func NewLog(db *sql.DB) *Log {
	return &Log{db: db, now: time.Now}
}

func (l *Log) RunMigrations() error {
	driver, err := sqlite.WithInstance(l.db, &sqlite.Config{MigrationsTable: "receipt_schema_migrations"})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("could not open migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}
	return nil
}

// Append stores a confirmed order as an unpublished receipt.
func (l *Log) Append(ctx context.Context, order domain.Order) error {
	payload, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("failed to marshal receipt: %w", err)
	}
	_, err = l.db.ExecContext(ctx,
		`INSERT INTO receipts (id, order_id, payload, created_at) VALUES (?, ?, ?, ?)`,
		uuid.NewString(), order.ID, payload, l.now().UTC())
	if err != nil {
		return fmt.Errorf("failed to insert receipt: %w", err)
	}
	return nil
}

// Unpublished returns up to limit receipts not yet relayed, oldest first.
func (l *Log) Unpublished(ctx context.Context, limit int) ([]Receipt, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, order_id, payload, created_at FROM receipts
		 WHERE published_at IS NULL
		 ORDER BY created_at, id
		 LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query receipts: %w", err)
	}
	defer rows.Close()

	var out []Receipt
	for rows.Next() {
		var r Receipt
		var payload []byte
		if err := rows.Scan(&r.ID, &r.OrderID, &payload, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan receipt: %w", err)
		}
		r.Payload = payload
		out = append(out, r)
	}
	return out, rows.Err()
}

func (l *Log) MarkPublished(ctx context.Context, id string) error {
	res, err := l.db.ExecContext(ctx,
		`UPDATE receipts SET published_at = ? WHERE id = ? AND published_at IS NULL`, l.now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to mark receipt %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("receipt %s not pending", id)
	}
	return nil
}
