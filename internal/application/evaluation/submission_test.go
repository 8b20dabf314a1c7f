package evaluation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexBool_Truthiness(t *testing.T) {
	cases := []struct {
		raw  string
		want bool
	}{
		{`true`, true},
		{`false`, false},
		{`null`, false},
		{`0`, false},
		{`1`, true},
		{`-2.5`, true},
		{`""`, false},
		{`"yes"`, true},
		{`"false"`, true}, // non-empty string, JS truthiness
		{`"0"`, true},
		{`[]`, true},
		{`{}`, true},
	}

	for _, tc := range cases {
		var b FlexBool
		err := json.Unmarshal([]byte(tc.raw), &b)
		require.NoError(t, err, "raw=%s", tc.raw)
		assert.Equal(t, tc.want, bool(b), "raw=%s", tc.raw)
	}
}

func TestFlexBool_AbsentFieldDefaultsFalse(t *testing.T) {
	var raw RawSubmission
	require.NoError(t, json.Unmarshal([]byte(`{"metricName":"X"}`), &raw))
	assert.False(t, bool(raw.Q1IsSubtotal))
	assert.False(t, bool(raw.Q2UsedExternally))
	assert.False(t, bool(raw.Q3IsExcluded))
	assert.False(t, bool(raw.Q4PresumptionRefuted))
}

func TestRawSubmission_WireNames(t *testing.T) {
	payload := `{
		"metricName": "Margem Ajustada X",
		"companyName": "Cia Exemplo",
		"cvmCode": "12345",
		"q1_isSubtotal": true,
		"q2_usedExternally": 1,
		"q3_isExcluded": "",
		"q4_presumptionRefutable": false,
		"grossAdjustmentAmount": "500",
		"notes": "linha 1\nlinha 2"
	}`
	var raw RawSubmission
	require.NoError(t, json.Unmarshal([]byte(payload), &raw))
	assert.Equal(t, "Margem Ajustada X", raw.MetricName)
	assert.True(t, bool(raw.Q1IsSubtotal))
	assert.True(t, bool(raw.Q2UsedExternally))
	assert.False(t, bool(raw.Q3IsExcluded))
	assert.False(t, bool(raw.Q4PresumptionRefuted))
	assert.Equal(t, "500", raw.GrossAdjustmentAmount)
	assert.Equal(t, "linha 1\nlinha 2", raw.Notes)
}
