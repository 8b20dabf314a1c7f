// Package postgres backs the audit trail with a PostgreSQL table.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	_ "github.com/lib/pq"
	"github.com/rotisserie/eris"

	domain "github.com/brunob329-droid/ifrs18/internal/domain/classification"
)

type Ledger struct {
	db *sql.DB
}

func NewLedger(db *sql.DB) *Ledger {
	return &Ledger{db: db}
}

func Connect(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: open")
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx2, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx2); err != nil {
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return db, nil
}

// Migrate creates the submissions table when absent.
func (l *Ledger) Migrate(ctx context.Context) error {
	const q = `
CREATE TABLE IF NOT EXISTS submissions (
	id                 BIGINT PRIMARY KEY,
	submitted_at       TIMESTAMPTZ NOT NULL,
	metric_name        TEXT NOT NULL,
	company            JSONB NOT NULL,
	answers            JSONB NOT NULL,
	verdict            JSONB NOT NULL,
	reconciliation     JSONB,
	notes              TEXT NOT NULL,
	verification_token TEXT NOT NULL
);`
	_, err := l.db.ExecContext(ctx, q)
	return eris.Wrap(err, "postgres: migrate")
}

// Append assigns max(id)+1 and inserts the record. The table lock keeps
// concurrent appends from picking the same id.
func (l *Ledger) Append(ctx context.Context, rec *domain.Record) (*domain.Record, error) {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: begin")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`LOCK TABLE submissions IN SHARE ROW EXCLUSIVE MODE`); err != nil {
		return nil, eris.Wrap(err, "postgres: lock submissions")
	}

	var nextID int64
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(id), 0) + 1 FROM submissions`).Scan(&nextID); err != nil {
		return nil, eris.Wrap(err, "postgres: next id")
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
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		stored.ID, stored.Timestamp.UTC(), stored.MetricName,
		company, answers, verdict, reconciliation,
		stored.Notes, stored.VerificationToken,
	); err != nil {
		return nil, eris.Wrap(err, "postgres: insert submission")
	}

	if err := tx.Commit(); err != nil {
		return nil, eris.Wrap(err, "postgres: commit")
	}
	return &stored, nil
}

// ListAll returns every record ordered by id, oldest first.
func (l *Ledger) ListAll(ctx context.Context) ([]*domain.Record, error) {
	rows, err := l.db.QueryContext(ctx, `
SELECT id, submitted_at, metric_name, company, answers, verdict, reconciliation, notes, verification_token
FROM submissions ORDER BY id ASC`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query submissions")
	}
	defer rows.Close()

	var out []*domain.Record
	for rows.Next() {
		var (
			rec            domain.Record
			submittedAt    time.Time
			company        []byte
			answers        []byte
			verdict        []byte
			reconciliation sql.NullString
		)
		if err := rows.Scan(
			&rec.ID, &submittedAt, &rec.MetricName,
			&company, &answers, &verdict, &reconciliation,
			&rec.Notes, &rec.VerificationToken,
		); err != nil {
			return nil, eris.Wrap(err, "postgres: scan submission")
		}
		rec.Timestamp = submittedAt.UTC()
		if err := unmarshalParts(&rec, company, answers, verdict, reconciliation); err != nil {
			return nil, err
		}
		out = append(out, &rec)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate submissions")
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
	if rec.Reconciliation != nil {
		data, merr := json.Marshal(rec.Reconciliation)
		if merr != nil {
			return nil, nil, nil, nil, eris.Wrap(merr, "marshal reconciliation")
		}
		reconciliation = string(data)
	}
	return company, answers, verdict, reconciliation, nil
}

func unmarshalParts(rec *domain.Record, company, answers, verdict []byte, reconciliation sql.NullString) error {
	if err := json.Unmarshal(company, &rec.Company); err != nil {
		return eris.Wrap(err, "unmarshal company")
	}
	if err := json.Unmarshal(answers, &rec.Answers); err != nil {
		return eris.Wrap(err, "unmarshal answers")
	}
	if err := json.Unmarshal(verdict, &rec.Verdict); err != nil {
		return eris.Wrap(err, "unmarshal verdict")
	}
	if reconciliation.Valid {
		rec.Reconciliation = &domain.Figures{}
		if err := json.Unmarshal([]byte(reconciliation.String), rec.Reconciliation); err != nil {
			return eris.Wrap(err, "unmarshal reconciliation")
		}
	}
	return nil
}
