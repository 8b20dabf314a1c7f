// Package sqlite backs the audit trail with an embedded SQLite database
// (modernc.org/sqlite, no cgo).
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	domain "github.com/brunob329-droid/ifrs18/internal/domain/classification"
)

// Ledger stores submissions in a single table. Structured parts of the
// record (company, answers, verdict, reconciliation) are kept as JSON text
// columns. Appends run under an in-process mutex in addition to the insert
// transaction: SQLite rejects concurrent write-upgrading transactions that
// read the same max(id) snapshot, and this service is single-process anyway.
type Ledger struct {
	mu sync.Mutex
	db *sql.DB
}

// Open opens (or creates) the database at path and runs the migration.
func Open(ctx context.Context, path string) (*Ledger, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}

	const migration = `
CREATE TABLE IF NOT EXISTS submissions (
	id                 INTEGER PRIMARY KEY,
	submitted_at       TEXT NOT NULL,
	metric_name        TEXT NOT NULL,
	company            TEXT NOT NULL,
	answers            TEXT NOT NULL,
	verdict            TEXT NOT NULL,
	reconciliation     TEXT,
	notes              TEXT NOT NULL DEFAULT '',
	verification_token TEXT NOT NULL
);
`
	if _, err := db.ExecContext(ctx, migration); err != nil {
		db.Close()
		return nil, eris.Wrap(err, "sqlite: migrate")
	}
	return &Ledger{db: db}, nil
}

func (l *Ledger) Close() error { return l.db.Close() }

// DB exposes the underlying handle for health checks.
func (l *Ledger) DB() *sql.DB { return l.db }

// Append assigns max(id)+1 and inserts the record inside one transaction.
func (l *Ledger) Append(ctx context.Context, rec *domain.Record) (*domain.Record, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: begin")
	}
	defer tx.Rollback()

	var nextID int64
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(id), 0) + 1 FROM submissions`).Scan(&nextID); err != nil {
		return nil, eris.Wrap(err, "sqlite: next id")
	}

	stored := *rec
	stored.ID = nextID

	company, answers, verdict, reconciliation, err := marshalParts(&stored)
	if err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `
INSERT INTO submissions
(id, submitted_at, metric_name, company, answers, verdict, reconciliation, notes, verification_token)
VALUES (?,?,?,?,?,?,?,?,?)`,
		stored.ID, stored.Timestamp.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		stored.MetricName, company, answers, verdict, reconciliation,
		stored.Notes, stored.VerificationToken,
	); err != nil {
		return nil, eris.Wrap(err, "sqlite: insert submission")
	}

	if err := tx.Commit(); err != nil {
		return nil, eris.Wrap(err, "sqlite: commit")
	}
	return &stored, nil
}

// ListAll returns every record ordered by id, oldest first.
func (l *Ledger) ListAll(ctx context.Context) ([]*domain.Record, error) {
	rows, err := l.db.QueryContext(ctx, `
SELECT id, submitted_at, metric_name, company, answers, verdict, reconciliation, notes, verification_token
FROM submissions ORDER BY id ASC`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query submissions")
	}
	defer rows.Close()

	var out []*domain.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate submissions")
}

func marshalParts(rec *domain.Record) (company, answers, verdict []byte, reconciliation any, err error) {
	if company, err = json.Marshal(rec.Company); err != nil {
		return nil, nil, nil, nil, eris.Wrap(err, "marshal company")
	}
	if answers, err = json.Marshal(rec.Answers); err != nil {
		return nil, nil, nil, nil, eris.Wrap(err, "marshal answers")
	}
	if verdict, err = json.Marshal(rec.Verdict); err != nil {
		return nil, nil, nil, nil, eris.Wrap(err, "marshal verdict")
	}
	reconciliation = nil
	if rec.Reconciliation != nil {
		data, merr := json.Marshal(rec.Reconciliation)
		if merr != nil {
			return nil, nil, nil, nil, eris.Wrap(merr, "marshal reconciliation")
		}
		reconciliation = string(data)
	}
	return company, answers, verdict, reconciliation, nil
}
