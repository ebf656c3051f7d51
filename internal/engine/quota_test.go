package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestQuotaEnforcer_WithinLimit tests normal operation within quota.
func TestQuotaEnforcer_WithinLimit(t *testing.T) {
	q := NewQuotaEnforcer(10)

	for i := 0; i < 10; i++ {
		err := q.Check(0)
		assert.NoError(t, err, "step %d should be allowed", i+1)
	}

	assert.Equal(t, 10, q.Current())
	assert.Equal(t, 10, q.MaxSteps())
}

// TestQuotaEnforcer_ExceedsLimit tests quota exceeded error.
func TestQuotaEnforcer_ExceedsLimit(t *testing.T) {
	q := NewQuotaEnforcer(5)

	for i := 0; i < 5; i++ {
		require.NoError(t, q.Check(40))
	}

	err := q.Check(40)
	require.Error(t, err)

	var stepsErr *StepsExceededError
	require.ErrorAs(t, err, &stepsErr)
	assert.Equal(t, int64(40), stepsErr.Frame)
	assert.Equal(t, 6, stepsErr.Steps)
	assert.Equal(t, 5, stepsErr.Limit)
}

// TestQuotaEnforcer_Reset tests resetting the counter.
func TestQuotaEnforcer_Reset(t *testing.T) {
	q := NewQuotaEnforcer(5)
	for i := 0; i < 5; i++ {
		_ = q.Check(0)
	}
	assert.Equal(t, 5, q.Current())

	q.Reset()
	assert.Equal(t, 0, q.Current())
	assert.NoError(t, q.Check(0))
}

// TestQuotaEnforcer_Unlimited tests that a non-positive limit disables the quota.
func TestQuotaEnforcer_Unlimited(t *testing.T) {
	q := NewQuotaEnforcer(0)
	for i := 0; i < 10000; i++ {
		require.NoError(t, q.Check(0))
	}
}

// TestQuota_SingleStep tests quota of 1.
func TestQuota_SingleStep(t *testing.T) {
	q := NewQuotaEnforcer(1)

	require.NoError(t, q.Check(0))

	err := q.Check(0)
	require.Error(t, err)
	assert.True(t, IsStepsExceededError(err))
	assert.True(t, IsQuotaError(err))
}

// TestStepsExceededError_Error tests error message formatting.
func TestStepsExceededError_Error(t *testing.T) {
	err := &StepsExceededError{Frame: 70, Steps: 1001, Limit: 1000}

	msg := err.Error()
	assert.Contains(t, msg, "frame 70")
	assert.Contains(t, msg, "1001")
	assert.Contains(t, msg, "1000")
}

// TestIsStepsExceededError tests error type checking.
func TestIsStepsExceededError(t *testing.T) {
	assert.True(t, IsStepsExceededError(&StepsExceededError{Steps: 10, Limit: 5}))
	assert.False(t, IsStepsExceededError(nil))
	assert.False(t, IsStepsExceededError(assert.AnError))
}

// TestQuota_DefaultMaxSteps tests the default constant value.
func TestQuota_DefaultMaxSteps(t *testing.T) {
	assert.Equal(t, 100_000, DefaultMaxSteps)
	assert.Equal(t, DefaultMaxSteps, NewScheduler().quota.MaxSteps())
	assert.Equal(t, 5, NewScheduler(WithMaxSteps(5)).quota.MaxSteps())
}
