package classification

import "context"

// Ledger is the persistence port for the audit trail. Implementations must
// serialize Append calls: ids are assigned max(existing)+1 at append time and
// each Append is linearizable with respect to concurrent Append and ListAll.
//
// A missing or unreadable store reads as an empty ledger (first-run
// bootstrap); a failed write means the record was not committed.
type Ledger interface {
	// Append assigns the next sequential id, persists the record, and
	// returns the stored copy.
	Append(ctx context.Context, rec *Record) (*Record, error)
	// ListAll returns every record in insertion order, oldest first.
	ListAll(ctx context.Context) ([]*Record, error)
}

// ArchiveStore uploads audit-trail snapshot exports to object storage.
type ArchiveStore interface {
	Upload(ctx context.Context, key, contentType string, data []byte) (string, error)
}
