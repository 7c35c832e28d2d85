// Package sqlite is the SQLite-backed sagalog.Repository. WAL mode keeps
// the single writer from blocking status reads, and the pure-Go driver
// avoids a CGO toolchain in the container build.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/OlegStrokan/free-ebay-sub000/internal/checkout/sagalog"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS checkout_saga_log (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    saga_id     TEXT NOT NULL,
    cart_id     TEXT NOT NULL DEFAULT '',
    status      TEXT NOT NULL,
    step        TEXT NOT NULL DEFAULT '',
    detail      TEXT NOT NULL DEFAULT '',
    trace_id    TEXT NOT NULL DEFAULT '',
    span_id     TEXT NOT NULL DEFAULT '',
    created_at  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_checkout_saga_log_saga_id
    ON checkout_saga_log(saga_id, created_at);

CREATE INDEX IF NOT EXISTS idx_checkout_saga_log_trace_id
    ON checkout_saga_log(trace_id);
`

// Repository persists checkout saga log rows in a local SQLite file.
type Repository struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies the schema.
func Open(path string) (*Repository, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sagalog: open %q: %w", path, err)
	}

	// SQLite performs best with a single writer connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sagalog: apply schema: %w", err)
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Close() error { return r.db.Close() }

// Save appends a log row. Safe for concurrent use.
func (r *Repository) Save(ctx context.Context, e *sagalog.Entry) error {
	const q = `
		INSERT INTO checkout_saga_log
			(saga_id, cart_id, status, step, detail, trace_id, span_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, q,
		e.SagaID,
		e.CartID,
		string(e.Status),
		e.Step,
		e.Detail,
		e.TraceID,
		e.SpanID,
		e.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("sagalog: save %q: %w", e.SagaID, err)
	}
	return nil
}

// Latest returns the most recent entry for a saga id. Useful for a status
// endpoint and for recovery inspection after a crash.
func (r *Repository) Latest(ctx context.Context, sagaID string) (*sagalog.Entry, error) {
	const q = `
		SELECT saga_id, cart_id, status, step, detail, trace_id, span_id, created_at
		FROM   checkout_saga_log
		WHERE  saga_id = ?
		ORDER  BY created_at DESC, id DESC
		LIMIT  1`

	var e sagalog.Entry
	var createdAt string
	err := r.db.QueryRowContext(ctx, q, sagaID).Scan(
		&e.SagaID, &e.CartID, &e.Status, &e.Step, &e.Detail,
		&e.TraceID, &e.SpanID, &createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("sagalog: saga %q not found", sagaID)
	}
	if err != nil {
		return nil, fmt.Errorf("sagalog: latest for %q: %w", sagaID, err)
	}

	e.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("sagalog: parse time %q: %w", createdAt, err)
	}
	return &e, nil
}
