package classification

import (
	"math"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// TaxRate is the combined IRPJ+CSLL statutory rate assumed for the tax-effect
// estimate (§123).
const TaxRate = 0.34

// ErrInvalidAmount reports a reconciliation amount that cannot be parsed as a
// finite decimal. Callers downgrade to a nil reconciliation and proceed; the
// evaluation itself does not fail.
var ErrInvalidAmount = eris.New("invalid reconciliation amount")

// Figures holds the reconciliation disclosure amounts for a qualifying
// measure.
type Figures struct {
	GrossAdjustment              float64 `json:"gross_adjustment"`
	TaxEffect                    float64 `json:"tax_effect"`
	NonControllingInterestEffect float64 `json:"non_controlling_interest_effect"`
}

// round2 rounds to 2 decimal places, half away from zero (math.Round).
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ComputeReconciliation derives the tax-effect figures from the raw gross
// adjustment string. Rules:
//
//   - gross absent (empty) or exactly zero, and no NCI override: nil figures.
//   - gross unparsable or non-finite: ErrInvalidAmount.
//   - a non-zero NCI override alone still produces figures with gross 0.
//
// nci is the already-parsed non-controlling-interest override (0 when the
// caller supplied none).
func ComputeReconciliation(gross string, nci float64) (*Figures, error) {
	gross = strings.TrimSpace(gross)
	if gross == "" {
		if nci == 0 {
			return nil, nil
		}
		return &Figures{NonControllingInterestEffect: nci}, nil
	}

	v, err := strconv.ParseFloat(gross, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, eris.Wrapf(ErrInvalidAmount, "parse %q", gross)
	}
	if v == 0 && nci == 0 {
		return nil, nil
	}

	return &Figures{
		GrossAdjustment:              v,
		TaxEffect:                    round2(v * TaxRate),
		NonControllingInterestEffect: nci,
	}, nil
}
