package evaluation

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// FlexBool is a bool that unmarshals any JSON value with JS-style truthiness,
// matching the behavior of the original form clients: false, 0, "", and null
// decode to false; every other value (including the string "false") decodes
// to true. Absent fields stay at the zero value, false.
type FlexBool bool

func (b *FlexBool) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*b = false
		return nil
	}
	switch data[0] {
	case 't':
		*b = true
	case 'f':
		*b = false
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*b = s != ""
	case '{', '[':
		*b = true
	default:
		n, err := strconv.ParseFloat(string(data), 64)
		if err != nil {
			return err
		}
		*b = n != 0
	}
	return nil
}

// RawSubmission is the evaluation request as received on the wire. Field
// names follow the original form payload.
type RawSubmission struct {
	MetricName           string   `json:"metricName"`
	CompanyName          string   `json:"companyName"`
	CVMCode              string   `json:"cvmCode"`
	ReportPeriod         string   `json:"reportPeriod"`
	Sector               string   `json:"sector"`
	Auditor              string   `json:"auditor"`
	Q1IsSubtotal         FlexBool `json:"q1_isSubtotal"`
	Q2UsedExternally     FlexBool `json:"q2_usedExternally"`
	Q3IsExcluded         FlexBool `json:"q3_isExcluded"`
	Q4PresumptionRefuted FlexBool `json:"q4_presumptionRefutable"`
	// GrossAdjustmentAmount is a decimal-as-string; empty means absent.
	GrossAdjustmentAmount string `json:"grossAdjustmentAmount"`
	// NonControllingInterestEffect optionally overrides the minority-interest
	// figure, also decimal-as-string.
	NonControllingInterestEffect string `json:"nonControllingInterestEffect"`
	Notes                        string `json:"notes"`
}
