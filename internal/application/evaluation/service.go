package evaluation

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/brunob329-droid/ifrs18/internal/application"
	domain "github.com/brunob329-droid/ifrs18/internal/domain/classification"
)

// Policy holds the configurable validation rules for submissions.
type Policy struct {
	// RequireCompanyName rejects submissions without a company name. The
	// original prototype always required it; relaxed deployments can turn
	// it off.
	RequireCompanyName bool
}

// Service implements the evaluation use-cases: classify a metric, build the
// audit record, and commit it to the ledger. Stateless between calls except
// via the ledger.
type Service struct {
	Ledger  domain.Ledger
	Archive domain.ArchiveStore
	Clock   application.Clock
	Policy  Policy
}

// Submit validates the raw submission, runs the decision tree, computes the
// reconciliation figures for qualifying measures, and appends the resulting
// record to the ledger. The returned record carries the ledger-assigned id.
//
// A persistence failure fails the whole operation: no record is committed
// and none is returned.
func (s *Service) Submit(ctx context.Context, raw RawSubmission) (*domain.Record, error) {
	metricName := strings.TrimSpace(raw.MetricName)
	if metricName == "" {
		return nil, &domain.ValidationError{Field: "metricName", Reason: "is required"}
	}
	companyName := strings.TrimSpace(raw.CompanyName)
	if s.Policy.RequireCompanyName && companyName == "" {
		return nil, &domain.ValidationError{Field: "companyName", Reason: "is required"}
	}

	answers, verdict := domain.Evaluate(metricName, domain.Answers{
		IsAggregateSubtotal:              bool(raw.Q1IsSubtotal),
		UsedInExternalCommunication:      bool(raw.Q2UsedExternally),
		IsStandardExcludedSubtotal:       bool(raw.Q3IsExcluded),
		ManagementViewPresumptionRefuted: bool(raw.Q4PresumptionRefuted),
	})

	var figures *domain.Figures
	if verdict.IsQualifyingMeasure {
		figures = s.reconcile(raw)
	}

	auditor := strings.TrimSpace(raw.Auditor)
	if auditor == "" {
		auditor = "Não informado"
	}

	rec := &domain.Record{
		Timestamp:  s.Clock.Now().UTC(),
		MetricName: metricName,
		Company: domain.CompanyMetadata{
			CompanyName:  companyName,
			CVMCode:      strings.TrimSpace(raw.CVMCode),
			ReportPeriod: strings.TrimSpace(raw.ReportPeriod),
			Sector:       strings.TrimSpace(raw.Sector),
			Auditor:      auditor,
		},
		Answers:           answers,
		Verdict:           verdict,
		Reconciliation:    figures,
		Notes:             raw.Notes,
		VerificationToken: domain.NewVerificationToken(),
	}

	stored, err := s.Ledger.Append(ctx, rec)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "append", Err: err}
	}
	return stored, nil
}

// reconcile computes the figures for a qualifying measure, downgrading to no
// reconciliation on unparsable input rather than failing the evaluation.
func (s *Service) reconcile(raw RawSubmission) *domain.Figures {
	nci := 0.0
	if v := strings.TrimSpace(raw.NonControllingInterestEffect); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			zap.L().Warn("discarding unparsable non-controlling-interest effect",
				zap.String("value", v))
		} else {
			nci = parsed
		}
	}

	figures, err := domain.ComputeReconciliation(raw.GrossAdjustmentAmount, nci)
	if err != nil {
		zap.L().Warn("reconciliation downgraded to null",
			zap.String("gross_adjustment", raw.GrossAdjustmentAmount),
			zap.Error(err))
		return nil
	}
	return figures
}

// History returns the full audit trail in insertion order.
func (s *Service) History(ctx context.Context) ([]*domain.Record, error) {
	recs, err := s.Ledger.ListAll(ctx)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "list", Err: err}
	}
	return recs, nil
}

// ErrArchiveNotConfigured is returned by ExportSnapshot when no archive
// store was wired at startup.
var ErrArchiveNotConfigured = eris.New("archive store not configured")

// ExportSnapshot marshals the full ledger and uploads it to the archive
// store, returning the object URL.
func (s *Service) ExportSnapshot(ctx context.Context) (string, error) {
	if s.Archive == nil {
		return "", ErrArchiveNotConfigured
	}

	recs, err := s.History(ctx)
	if err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(recs, "", "  ")
	if err != nil {
		return "", eris.Wrap(err, "marshal snapshot")
	}

	key := fmt.Sprintf("snapshots/submissions-%s.json", s.Clock.Now().UTC().Format("20060102T150405Z"))
	url, err := s.Archive.Upload(ctx, key, "application/json", data)
	if err != nil {
		return "", eris.Wrap(err, "upload snapshot")
	}
	zap.L().Info("audit trail snapshot archived",
		zap.String("key", key), zap.Int("records", len(recs)))
	return url, nil
}
