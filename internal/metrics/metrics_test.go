package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounterValue(t *testing.T) {
	before, err := CounterValue(MatchesScraped, "testsource")
	require.NoError(t, err)

	MatchesScraped.WithLabelValues("testsource").Add(3)

	after, err := CounterValue(MatchesScraped, "testsource")
	require.NoError(t, err)
	assert.InDelta(t, before+3, after, 0.0001)
}

func TestCounterValue_DistinctLabels(t *testing.T) {
	ProviderErrors.WithLabelValues("p1", "timeout").Inc()

	v1, err := CounterValue(ProviderErrors, "p1", "timeout")
	require.NoError(t, err)
	v2, err := CounterValue(ProviderErrors, "p1", "other_reason")
	require.NoError(t, err)

	assert.GreaterOrEqual(t, v1, 1.0)
	assert.Equal(t, 0.0, v2)
}
