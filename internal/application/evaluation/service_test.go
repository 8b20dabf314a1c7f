package evaluation

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	domain "github.com/brunob329-droid/ifrs18/internal/domain/classification"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

// memLedger is an in-memory Ledger for service tests.
type memLedger struct {
	recs []*domain.Record
}

func (m *memLedger) Append(_ context.Context, rec *domain.Record) (*domain.Record, error) {
	stored := *rec
	stored.ID = int64(len(m.recs) + 1)
	m.recs = append(m.recs, &stored)
	return &stored, nil
}

func (m *memLedger) ListAll(_ context.Context) ([]*domain.Record, error) {
	return m.recs, nil
}

// failLedger simulates a storage write failure after the verdict is computed.
type failLedger struct{}

func (failLedger) Append(context.Context, *domain.Record) (*domain.Record, error) {
	return nil, eris.New("disk full")
}

func (failLedger) ListAll(context.Context) ([]*domain.Record, error) {
	return nil, nil
}

func newService(ledger domain.Ledger) *Service {
	return &Service{
		Ledger: ledger,
		Clock:  fixedClock{t: time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)},
		Policy: Policy{RequireCompanyName: true},
	}
}

func TestSubmit_QualifyingWithReconciliation(t *testing.T) {
	svc := newService(&memLedger{})

	rec, err := svc.Submit(context.Background(), RawSubmission{
		MetricName:            "Margem Ajustada X",
		CompanyName:           "Cia Exemplo",
		Q1IsSubtotal:          true,
		Q2UsedExternally:      true,
		GrossAdjustmentAmount: "500",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1), rec.ID)
	assert.True(t, rec.Verdict.IsQualifyingMeasure)
	assert.Equal(t, domain.ReasonQualifying, rec.Verdict.Reason)
	require.NotNil(t, rec.Reconciliation)
	assert.Equal(t, 500.0, rec.Reconciliation.GrossAdjustment)
	assert.Equal(t, 170.0, rec.Reconciliation.TaxEffect)
	assert.Equal(t, 0.0, rec.Reconciliation.NonControllingInterestEffect)
	assert.Equal(t, "2026-03-15T10:30:00Z", rec.Timestamp.Format(time.RFC3339))
	assert.Len(t, rec.VerificationToken, 32)
	assert.Equal(t, "Não informado", rec.Company.Auditor)
}

func TestSubmit_ExclusionVocabularyBlocksQualification(t *testing.T) {
	svc := newService(&memLedger{})

	rec, err := svc.Submit(context.Background(), RawSubmission{
		MetricName:       "Lucro Líquido Ajustado",
		CompanyName:      "Cia Exemplo",
		Q1IsSubtotal:     true,
		Q2UsedExternally: true,
	})
	require.NoError(t, err)

	assert.False(t, rec.Verdict.IsQualifyingMeasure)
	assert.Equal(t, domain.ReasonExcludedSubtotal, rec.Verdict.Reason)
	assert.True(t, rec.Answers.IsStandardExcludedSubtotal, "override must be persisted")
	assert.Nil(t, rec.Reconciliation)
}

func TestSubmit_UnparsableAmountDowngradesToNilReconciliation(t *testing.T) {
	svc := newService(&memLedger{})

	rec, err := svc.Submit(context.Background(), RawSubmission{
		MetricName:            "Margem Ajustada X",
		CompanyName:           "Cia Exemplo",
		Q1IsSubtotal:          true,
		Q2UsedExternally:      true,
		GrossAdjustmentAmount: "abc",
	})
	require.NoError(t, err, "evaluation proceeds despite the bad amount")
	assert.True(t, rec.Verdict.IsQualifyingMeasure)
	assert.Nil(t, rec.Reconciliation)
}

func TestSubmit_NoReconciliationForNonQualifying(t *testing.T) {
	svc := newService(&memLedger{})

	rec, err := svc.Submit(context.Background(), RawSubmission{
		MetricName:            "Margem Ajustada X",
		CompanyName:           "Cia Exemplo",
		Q1IsSubtotal:          false,
		GrossAdjustmentAmount: "500",
	})
	require.NoError(t, err)
	assert.False(t, rec.Verdict.IsQualifyingMeasure)
	assert.Nil(t, rec.Reconciliation, "amount ignored when not qualifying")
}

func TestSubmit_ValidationErrors(t *testing.T) {
	svc := newService(&memLedger{})

	_, err := svc.Submit(context.Background(), RawSubmission{CompanyName: "Cia"})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "metricName", verr.Field)

	_, err = svc.Submit(context.Background(), RawSubmission{MetricName: "X"})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "companyName", verr.Field)

	// Relaxed policy accepts a missing company name.
	relaxed := newService(&memLedger{})
	relaxed.Policy.RequireCompanyName = false
	rec, err := relaxed.Submit(context.Background(), RawSubmission{MetricName: "X"})
	require.NoError(t, err)
	assert.Equal(t, "X", rec.MetricName)
}

func TestSubmit_ValidationPrecedesSideEffects(t *testing.T) {
	ledger := &memLedger{}
	svc := newService(ledger)

	_, err := svc.Submit(context.Background(), RawSubmission{})
	require.Error(t, err)
	assert.Empty(t, ledger.recs, "no partial record on validation failure")
}

func TestSubmit_WriteFailureFailsTheOperation(t *testing.T) {
	svc := newService(failLedger{})

	rec, err := svc.Submit(context.Background(), RawSubmission{
		MetricName:       "Margem Ajustada X",
		CompanyName:      "Cia Exemplo",
		Q1IsSubtotal:     true,
		Q2UsedExternally: true,
	})
	assert.Nil(t, rec, "record must not be returned when not committed")
	var perr *domain.PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "append", perr.Op)
}

func TestSubmit_SequentialIDs(t *testing.T) {
	ledger := &memLedger{}
	svc := newService(ledger)

	for i := 1; i <= 5; i++ {
		rec, err := svc.Submit(context.Background(), RawSubmission{
			MetricName:  "Margem Ajustada X",
			CompanyName: "Cia Exemplo",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(i), rec.ID)
	}
}

func TestExportSnapshot_Unconfigured(t *testing.T) {
	svc := newService(&memLedger{})
	_, err := svc.ExportSnapshot(context.Background())
	assert.ErrorIs(t, err, ErrArchiveNotConfigured)
}

type memArchive struct {
	key  string
	data []byte
}

func (a *memArchive) Upload(_ context.Context, key, _ string, data []byte) (string, error) {
	a.key, a.data = key, data
	return "http://archive/" + key, nil
}

func TestExportSnapshot_UploadsLedger(t *testing.T) {
	ledger := &memLedger{}
	svc := newService(ledger)
	archive := &memArchive{}
	svc.Archive = archive

	_, err := svc.Submit(context.Background(), RawSubmission{
		MetricName: "Margem Ajustada X", CompanyName: "Cia Exemplo",
	})
	require.NoError(t, err)

	url, err := svc.ExportSnapshot(context.Background())
	require.NoError(t, err)
	assert.Contains(t, url, archive.key)
	assert.Contains(t, string(archive.data), "Margem Ajustada X")
}
