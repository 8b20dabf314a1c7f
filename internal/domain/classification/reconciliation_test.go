package classification

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rotisserie/eris"
)

func TestComputeReconciliation(t *testing.T) {
	t.Run("basic tax effect", func(t *testing.T) {
		fig, err := ComputeReconciliation("1000", 0)
		require.NoError(t, err)
		require.NotNil(t, fig)
		assert.Equal(t, 1000.0, fig.GrossAdjustment)
		assert.Equal(t, 340.0, fig.TaxEffect)
		assert.Equal(t, 0.0, fig.NonControllingInterestEffect)
	})

	t.Run("five hundred", func(t *testing.T) {
		fig, err := ComputeReconciliation("500", 0)
		require.NoError(t, err)
		require.NotNil(t, fig)
		assert.Equal(t, 170.0, fig.TaxEffect)
	})

	t.Run("absent amount", func(t *testing.T) {
		fig, err := ComputeReconciliation("", 0)
		require.NoError(t, err)
		assert.Nil(t, fig)
	})

	t.Run("zero amount without override", func(t *testing.T) {
		fig, err := ComputeReconciliation("0", 0)
		require.NoError(t, err)
		assert.Nil(t, fig)
	})

	t.Run("unparsable amount", func(t *testing.T) {
		fig, err := ComputeReconciliation("abc", 0)
		assert.Nil(t, fig)
		require.Error(t, err)
		assert.True(t, eris.Is(err, ErrInvalidAmount))
	})

	t.Run("non-finite amount", func(t *testing.T) {
		_, err := ComputeReconciliation("Inf", 0)
		require.Error(t, err)
		assert.True(t, eris.Is(err, ErrInvalidAmount))
	})

	t.Run("nci override alone still produces figures", func(t *testing.T) {
		fig, err := ComputeReconciliation("", 12.5)
		require.NoError(t, err)
		require.NotNil(t, fig)
		assert.Equal(t, 0.0, fig.GrossAdjustment)
		assert.Equal(t, 0.0, fig.TaxEffect)
		assert.Equal(t, 12.5, fig.NonControllingInterestEffect)
	})

	t.Run("zero gross with nci override", func(t *testing.T) {
		fig, err := ComputeReconciliation("0", 7.0)
		require.NoError(t, err)
		require.NotNil(t, fig)
		assert.Equal(t, 0.0, fig.GrossAdjustment)
		assert.Equal(t, 7.0, fig.NonControllingInterestEffect)
	})

	t.Run("negative adjustment", func(t *testing.T) {
		fig, err := ComputeReconciliation("-200", 0)
		require.NoError(t, err)
		require.NotNil(t, fig)
		assert.Equal(t, -68.0, fig.TaxEffect)
	})
}

// round2 rounds half away from zero; verified here because the disclosure
// amounts depend on it.
func TestRound2(t *testing.T) {
	assert.Equal(t, 1.23, round2(1.234))
	assert.Equal(t, 1.24, round2(1.236))
	assert.Equal(t, -1.24, round2(-1.236))
	assert.Equal(t, 0.35, round2(0.345000001))
	assert.Equal(t, 170.0, round2(500*TaxRate))
}
