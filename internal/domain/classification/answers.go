package classification

import "strings"

// Answers holds the four IFRS 18 screening questions for a metric.
// Immutable once a submission is recorded.
type Answers struct {
	IsAggregateSubtotal              bool `json:"is_aggregate_subtotal"`
	UsedInExternalCommunication      bool `json:"used_in_external_communication"`
	IsStandardExcludedSubtotal       bool `json:"is_standard_excluded_subtotal"`
	ManagementViewPresumptionRefuted bool `json:"management_view_presumption_refuted"`
}

// excludedVocabulary lists subtotals that IFRS 18 §118(b)/B21-B27 already
// mandates, in English and Portuguese. Matching is case-insensitive substring
// containment against the metric name, not whole-word matching, so a name
// like "EBITDA" also trips the "ebit" entry.
var excludedVocabulary = []string{
	"gross profit",
	"operating profit",
	"ebit",
	"net income",
	"lucro bruto",
	"lucro operacional",
	"lucro líquido",
	"resultado líquido",
	"receita líquida",
}

// MatchesExcludedSubtotal reports whether the metric name contains any entry
// of the mandatory-subtotal vocabulary.
func MatchesExcludedSubtotal(metricName string) bool {
	name := strings.ToLower(metricName)
	for _, term := range excludedVocabulary {
		if strings.Contains(name, term) {
			return true
		}
	}
	return false
}

// normalize forces IsStandardExcludedSubtotal when the metric name matches
// the exclusion vocabulary, overriding whatever the caller supplied. Runs
// before the decision tree, and the forced value is what gets persisted.
func (a Answers) normalize(metricName string) Answers {
	if MatchesExcludedSubtotal(metricName) {
		a.IsStandardExcludedSubtotal = true
	}
	return a
}
