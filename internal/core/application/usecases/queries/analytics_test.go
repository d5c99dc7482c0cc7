package queries_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dispatch/internal/core/application/usecases/queries"
)

func TestRatio(t *testing.T) {
	assert.Equal(t, 0.5, queries.Ratio(1, 2))
	assert.Equal(t, 0.0, queries.Ratio(5, 0), "division by zero reads as zero")
	assert.Equal(t, 0.0, queries.Ratio(0, 0))
}

func TestFuelSavings(t *testing.T) {
	savedKm, savedLiters, savedCost := queries.FuelSavings(100)

	assert.InDelta(t, 25.0, savedKm, 1e-9, "baseline adds a quarter on top of the optimized distance")
	assert.InDelta(t, 3.0, savedLiters, 1e-9)
	assert.InDelta(t, 6.15, savedCost, 1e-9)
}

func TestLeastSquaresSlope(t *testing.T) {
	t.Run("perfect line", func(t *testing.T) {
		slope := queries.LeastSquaresSlope([]float64{10, 12, 14, 16, 18, 20, 22})
		assert.InDelta(t, 2.0, slope, 1e-9)
	})

	t.Run("flat series", func(t *testing.T) {
		slope := queries.LeastSquaresSlope([]float64{80, 80, 80, 80, 80, 80, 80})
		assert.InDelta(t, 0.0, slope, 1e-9)
	})

	t.Run("short series has no direction", func(t *testing.T) {
		assert.Equal(t, 0.0, queries.LeastSquaresSlope(nil))
		assert.Equal(t, 0.0, queries.LeastSquaresSlope([]float64{42}))
	})
}

func TestTrendOfDeadBand(t *testing.T) {
	assert.Equal(t, queries.TrendStable, queries.TrendOf(0))
	assert.Equal(t, queries.TrendStable, queries.TrendOf(0.09))
	assert.Equal(t, queries.TrendStable, queries.TrendOf(-0.09))
	assert.Equal(t, queries.TrendStable, queries.TrendOf(0.1))
	assert.Equal(t, queries.TrendImproving, queries.TrendOf(0.11))
	assert.Equal(t, queries.TrendDeclining, queries.TrendOf(-0.11))
}

func TestComputeDriverScore(t *testing.T) {
	t.Run("perfect driver maxes every component", func(t *testing.T) {
		score := queries.ComputeDriverScore(queries.DriverScoreInput{
			OnTimeRate:     1.0,
			AverageDelay:   0,
			KmPerStop:      4.0,
			FleetKmPerStop: 5.0,
			StopsCompleted: 40,
			FleetMaxStops:  40,
		})
		assert.Equal(t, 100, score)
	})

	t.Run("weights blend the components", func(t *testing.T) {
		// on-time 80, delay 50, fuel 100 capped, volume 50.
		score := queries.ComputeDriverScore(queries.DriverScoreInput{
			OnTimeRate:     0.8,
			AverageDelay:   30 * time.Minute,
			KmPerStop:      2.0,
			FleetKmPerStop: 5.0,
			StopsCompleted: 20,
			FleetMaxStops:  40,
		})
		assert.Equal(t, 74, score)
	})

	t.Run("delay beyond an hour bottoms out instead of going negative", func(t *testing.T) {
		score := queries.ComputeDriverScore(queries.DriverScoreInput{
			OnTimeRate:     0,
			AverageDelay:   3 * time.Hour,
			KmPerStop:      10.0,
			FleetKmPerStop: 5.0,
			StopsCompleted: 1,
			FleetMaxStops:  40,
		})
		assert.GreaterOrEqual(t, score, 0)
	})

	t.Run("missing fleet references zero the normalized components", func(t *testing.T) {
		score := queries.ComputeDriverScore(queries.DriverScoreInput{
			OnTimeRate:     1.0,
			AverageDelay:   0,
			KmPerStop:      5.0,
			FleetKmPerStop: 0,
			StopsCompleted: 10,
			FleetMaxStops:  0,
		})
		// Only on-time and delay score: 0.30*100 + 0.20*100.
		assert.Equal(t, 50, score)
	})
}

func TestParsePeriod(t *testing.T) {
	for _, s := range []string{"day", "week", "month", "quarter"} {
		p, err := queries.ParsePeriod(s)
		require.NoError(t, err)
		assert.Equal(t, queries.Period(s), p)
	}

	p, err := queries.ParsePeriod("")
	require.NoError(t, err)
	assert.Equal(t, queries.PeriodWeek, p, "empty period defaults to a week")

	_, err = queries.ParsePeriod("fortnight")
	require.Error(t, err)
}

func TestPeriodBounds(t *testing.T) {
	end := time.Date(2025, 6, 8, 15, 30, 0, 0, time.UTC)

	from, to := queries.PeriodDay.Bounds(end)
	assert.Equal(t, time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC), to)

	from, to = queries.PeriodWeek.Bounds(end)
	assert.Equal(t, time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC), to)

	from, _ = queries.PeriodMonth.Bounds(end)
	assert.Equal(t, time.Date(2025, 5, 9, 0, 0, 0, 0, time.UTC), from)

	from, _ = queries.PeriodQuarter.Bounds(end)
	assert.Equal(t, time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC), from)
}
