package sqlite

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"

	domain "github.com/brunob329-droid/ifrs18/internal/domain/classification"
)

func scanRecord(rows *sql.Rows) (*domain.Record, error) {
	var (
		rec            domain.Record
		submittedAt    string
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
		return nil, eris.Wrap(err, "sqlite: scan submission")
	}

	ts, err := time.Parse(time.RFC3339, submittedAt)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: parse timestamp %q", submittedAt)
	}
	rec.Timestamp = ts.UTC()

	if err := json.Unmarshal(company, &rec.Company); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal company")
	}
	if err := json.Unmarshal(answers, &rec.Answers); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal answers")
	}
	if err := json.Unmarshal(verdict, &rec.Verdict); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal verdict")
	}
	if reconciliation.Valid {
		rec.Reconciliation = &domain.Figures{}
		if err := json.Unmarshal([]byte(reconciliation.String), rec.Reconciliation); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal reconciliation")
		}
	}
	return &rec, nil
}
