package obs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRateCounterTotalsWithoutWindows(t *testing.T) {
	rc := NewRateCounter(nil)
	for i := 0; i < 5; i++ {
		within := rc.Inc()
		require.True(t, within)
	}
	require.EqualValues(t, 5, rc.Total())
}

func TestRateCounterFlagsOverWindowLimit(t *testing.T) {
	rc := NewRateCounter(map[time.Duration]int{time.Minute: 2})
	require.True(t, rc.Inc())
	require.True(t, rc.Inc())
	require.False(t, rc.Inc())
	require.EqualValues(t, 3, rc.Total())
}

func TestNewRegistryPopulatesAllFourCounters(t *testing.T) {
	reg := NewRegistry()
	require.NotNil(t, reg.ReestablishmentsWithoutContext)
	require.NotNil(t, reg.ReestabWithContext)
	require.NotNil(t, reg.HandoverRequested)
	require.NotNil(t, reg.HandoverSucceeded)
	reg.HandoverRequested.Inc()
	require.EqualValues(t, 1, reg.HandoverRequested.Total())
}
