package middleware

import (
	"fmt"
	"regexp"
	"strings"
)

// Validation helpers for the optional company metadata fields. These never
// reject a submission; handlers log the mismatch and keep the value as-is,
// since the audit trail preserves caller input verbatim.

var (
	cvmCodePattern      = regexp.MustCompile(`^[0-9]{1,6}$`)
	reportPeriodPattern = regexp.MustCompile(`^[0-9]{4}([-/](T[1-4]|[0-9]{2}))?$`)
)

// ValidateCVMCode checks the CVM registration code shape (up to 6 digits).
func ValidateCVMCode(code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil
	}
	if !cvmCodePattern.MatchString(code) {
		return fmt.Errorf("cvm code %q is not a 1-6 digit registration number", code)
	}
	return nil
}

// ValidateReportPeriod checks common period shapes: "2025", "2025-T1",
// "2025/T3", "2025-06".
func ValidateReportPeriod(period string) error {
	period = strings.TrimSpace(period)
	if period == "" {
		return nil
	}
	if !reportPeriodPattern.MatchString(period) {
		return fmt.Errorf("report period %q does not look like a year, quarter, or year-month", period)
	}
	return nil
}
