package jsonfile

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	domain "github.com/brunob329-droid/ifrs18/internal/domain/classification"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func testRecord(metric string) *domain.Record {
	answers, verdict := domain.Evaluate(metric, domain.Answers{
		IsAggregateSubtotal:         true,
		UsedInExternalCommunication: true,
	})
	return &domain.Record{
		Timestamp:         time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		MetricName:        metric,
		Company:           domain.CompanyMetadata{CompanyName: "Cia Exemplo", Auditor: "Não informado"},
		Answers:           answers,
		Verdict:           verdict,
		VerificationToken: domain.NewVerificationToken(),
	}
}

func TestAppend_AssignsSequentialIDs(t *testing.T) {
	l := New(filepath.Join(t.TempDir(), "submissions.json"))
	ctx := context.Background()

	for i := int64(1); i <= 4; i++ {
		rec, err := l.Append(ctx, testRecord("Margem Ajustada X"))
		require.NoError(t, err)
		assert.Equal(t, i, rec.ID)
	}

	recs, err := l.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 4)
	for i, rec := range recs {
		assert.Equal(t, int64(i+1), rec.ID)
	}
}

func TestAppend_ConcurrentAppendsStaySequential(t *testing.T) {
	l := New(filepath.Join(t.TempDir(), "submissions.json"))
	ctx := context.Background()

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.Append(ctx, testRecord("Margem Ajustada X"))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	recs, err := l.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, recs, n)
	for i, rec := range recs {
		assert.Equal(t, int64(i+1), rec.ID, "ids must be 1..N with no gaps or duplicates")
	}
}

func TestListAll_IsIdempotent(t *testing.T) {
	l := New(filepath.Join(t.TempDir(), "submissions.json"))
	ctx := context.Background()

	_, err := l.Append(ctx, testRecord("Margem Ajustada X"))
	require.NoError(t, err)
	_, err = l.Append(ctx, testRecord("Outra Métrica"))
	require.NoError(t, err)

	first, err := l.ListAll(ctx)
	require.NoError(t, err)
	second, err := l.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestListAll_MissingFileBootstrapsEmpty(t *testing.T) {
	l := New(filepath.Join(t.TempDir(), "submissions.json"))
	recs, err := l.ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestListAll_CorruptFileBootstrapsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "submissions.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	l := New(path)
	recs, err := l.ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, recs)

	// A fresh append restarts the sequence at 1.
	rec, err := l.Append(context.Background(), testRecord("Margem Ajustada X"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), rec.ID)
}

func TestAppend_WriteFailureCommitsNothing(t *testing.T) {
	// Parent directory does not exist, so the temp-file write fails.
	path := filepath.Join(t.TempDir(), "missing", "submissions.json")
	l := New(path)
	ctx := context.Background()

	_, err := l.Append(ctx, testRecord("Margem Ajustada X"))
	require.Error(t, err)

	recs, err := l.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, recs, "failed append must not be visible")
}

func TestAppend_RoundTripsReconciliation(t *testing.T) {
	l := New(filepath.Join(t.TempDir(), "submissions.json"))
	ctx := context.Background()

	rec := testRecord("Margem Ajustada X")
	fig, err := domain.ComputeReconciliation("500", 0)
	require.NoError(t, err)
	rec.Reconciliation = fig

	_, err = l.Append(ctx, rec)
	require.NoError(t, err)

	recs, err := l.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.NotNil(t, recs[0].Reconciliation)
	assert.Equal(t, 170.0, recs[0].Reconciliation.TaxEffect)
	assert.Equal(t, rec.VerificationToken, recs[0].VerificationToken)
}
