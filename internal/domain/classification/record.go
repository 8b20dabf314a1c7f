package classification

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// CompanyMetadata identifies the reporting entity on the audit trail.
type CompanyMetadata struct {
	CompanyName  string `json:"company_name"`
	CVMCode      string `json:"cvm_code,omitempty"`
	ReportPeriod string `json:"report_period,omitempty"`
	Sector       string `json:"sector,omitempty"`
	Auditor      string `json:"auditor"`
}

// Record is one entry of the append-only audit trail. Created exactly once
// per evaluation; never updated or deleted. ID is assigned by the ledger at
// append time.
type Record struct {
	ID                int64           `json:"id"`
	Timestamp         time.Time       `json:"timestamp"`
	MetricName        string          `json:"metric_name"`
	Company           CompanyMetadata `json:"company"`
	Answers           Answers         `json:"answers"`
	Verdict           Verdict         `json:"verdict"`
	Reconciliation    *Figures        `json:"reconciliation"`
	Notes             string          `json:"notes"`
	VerificationToken string          `json:"verification_token"`
}

// NewVerificationToken returns an opaque uppercase token printed on the
// record for visual cross-checking. It is a display token derived from a
// random UUID, not a cryptographic commitment.
func NewVerificationToken() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
}
