// Package jsonfile persists the audit trail as a single JSON document,
// rewritten wholesale on every append. Suited to the prototype-scale ledger;
// the SQL backends exist for anything bigger.
package jsonfile

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	domain "github.com/brunob329-droid/ifrs18/internal/domain/classification"
)

// Ledger is an append-only JSON-file store. All mutations are serialized by
// an in-process mutex, and writes go through a temp file + rename so a crash
// mid-write never leaves a truncated ledger behind.
type Ledger struct {
	mu   sync.Mutex
	path string
}

func New(path string) *Ledger {
	return &Ledger{path: path}
}

// load reads the full collection. A missing or corrupt file reads as an
// empty ledger so first-run bootstrap succeeds silently.
func (l *Ledger) load() []*domain.Record {
	raw, err := os.ReadFile(l.path)
	if err != nil {
		if !os.IsNotExist(err) {
			zap.L().Warn("audit file unreadable, starting from empty ledger",
				zap.String("path", l.path), zap.Error(err))
		}
		return nil
	}
	var recs []*domain.Record
	if err := json.Unmarshal(raw, &recs); err != nil {
		zap.L().Warn("audit file corrupt, starting from empty ledger",
			zap.String("path", l.path), zap.Error(err))
		return nil
	}
	return recs
}

// write replaces the ledger file atomically.
func (l *Ledger) write(recs []*domain.Record) error {
	data, err := json.MarshalIndent(recs, "", "  ")
	if err != nil {
		return eris.Wrap(err, "marshal ledger")
	}

	dir := filepath.Dir(l.path)
	tmp, err := os.CreateTemp(dir, ".submissions-*.json")
	if err != nil {
		return eris.Wrap(err, "create temp ledger file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return eris.Wrap(err, "write temp ledger file")
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return eris.Wrap(err, "sync temp ledger file")
	}
	if err := tmp.Close(); err != nil {
		return eris.Wrap(err, "close temp ledger file")
	}
	if err := os.Rename(tmp.Name(), l.path); err != nil {
		return eris.Wrap(err, "replace ledger file")
	}
	return nil
}

// Append assigns the next sequential id and persists the record. On write
// failure the record is not committed and the error is returned.
func (l *Ledger) Append(ctx context.Context, rec *domain.Record) (*domain.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	recs := l.load()
	var maxID int64
	for _, r := range recs {
		if r.ID > maxID {
			maxID = r.ID
		}
	}

	stored := *rec
	stored.ID = maxID + 1
	recs = append(recs, &stored)

	if err := l.write(recs); err != nil {
		return nil, err
	}
	return &stored, nil
}

// ListAll returns every record in insertion order, oldest first.
func (l *Ledger) ListAll(ctx context.Context) ([]*domain.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	return l.load(), nil
}
