package classification

// NormativeStatus labels the terminal branch of the decision tree with the
// status wording used in the printable note.
type NormativeStatus string

const (
	StatusOutOfScope         NormativeStatus = "Fora do Escopo"
	StatusInternalUseOnly    NormativeStatus = "Uso Interno Apenas"
	StatusMandatorySubtotal  NormativeStatus = "Subtotal IFRS Mandatório"
	StatusPresumptionRefuted NormativeStatus = "Presunção Refutada"
	StatusQualifying         NormativeStatus = "MDPM Identificada"
)

// Canonical reason strings, one per terminal branch. These are part of the
// audit-record contract: Verdict.Reason is always exactly one of these.
const (
	ReasonNotAggregateSubtotal = "not an aggregate subtotal of revenues/expenses."
	ReasonNotUsedExternally    = "not used in external/public communications."
	ReasonExcludedSubtotal     = "excluded subtotal per standard's mandatory-subtotal list."
	ReasonPresumptionRefuted   = "presumption that the measure conveys management's view was refuted."
	ReasonQualifying           = "passed all filters; requires reconciliation and disclosure."
)

// Verdict is the outcome of the decision tree. Derived once per submission,
// never mutated. ReasonPT carries the Portuguese rationale with the IFRS 18
// paragraph citations shown to the auditor.
type Verdict struct {
	IsQualifyingMeasure bool            `json:"is_qualifying_measure"`
	Reason              string          `json:"reason"`
	ReasonPT            string          `json:"reason_pt"`
	NormativeStatus     NormativeStatus `json:"normative_status"`
}

// Evaluate runs the four-question IFRS 18 decision tree. The metric name is
// checked against the mandatory-subtotal vocabulary first, which may force
// Q3 regardless of the caller's answer; the returned Answers reflect that
// override and are what must be persisted.
//
// Branch order is first-match-wins and encodes the standard's precedence
// (§117 scope, §118 external use, §118(b) exclusions, §§119-120 presumption).
func Evaluate(metricName string, answers Answers) (Answers, Verdict) {
	answers = answers.normalize(metricName)

	switch {
	case !answers.IsAggregateSubtotal:
		return answers, Verdict{
			IsQualifyingMeasure: false,
			Reason:              ReasonNotAggregateSubtotal,
			ReasonPT:            "A métrica não atende ao §117: não é um subtotal de receitas/despesas.",
			NormativeStatus:     StatusOutOfScope,
		}
	case !answers.UsedInExternalCommunication:
		return answers, Verdict{
			IsQualifyingMeasure: false,
			Reason:              ReasonNotUsedExternally,
			ReasonPT:            "A métrica não atende ao §118: não é utilizada em comunicações públicas.",
			NormativeStatus:     StatusInternalUseOnly,
		}
	case answers.IsStandardExcludedSubtotal:
		return answers, Verdict{
			IsQualifyingMeasure: false,
			Reason:              ReasonExcludedSubtotal,
			ReasonPT:            "Métrica excluída conforme §118(b) e B21-B27 (Ex: Lucro Bruto ou EBIT).",
			NormativeStatus:     StatusMandatorySubtotal,
		}
	case answers.ManagementViewPresumptionRefuted:
		return answers, Verdict{
			IsQualifyingMeasure: false,
			Reason:              ReasonPresumptionRefuted,
			ReasonPT:            "A presunção de visão da administração foi refutada conforme §§119-120.",
			NormativeStatus:     StatusPresumptionRefuted,
		}
	default:
		return answers, Verdict{
			IsQualifyingMeasure: true,
			Reason:              ReasonQualifying,
			ReasonPT:            "Classificada como MDPM. Exige reconciliação e divulgação de efeitos fiscais (§122-123).",
			NormativeStatus:     StatusQualifying,
		}
	}
}
