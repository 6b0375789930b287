package rating

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uniform(v float64) Breakdown {
	return Breakdown{
		WorkQuality:        v,
		DeadlineCompliance: v,
		Communication:      v,
		ProblemResolution:  v,
		ValueForMoney:      v,
		Professionalism:    v,
	}
}

func TestOverall(t *testing.T) {
	tests := []struct {
		name      string
		breakdown Breakdown
		want      float64
		wantErr   bool
	}{
		{
			name:      "All fives",
			breakdown: uniform(5),
			want:      5.00,
		},
		{
			name: "Mixed scores round half up",
			breakdown: Breakdown{
				WorkQuality:        1,
				DeadlineCompliance: 2,
				Communication:      3,
				ProblemResolution:  4,
				ValueForMoney:      5,
				Professionalism:    4,
			},
			want: 3.17, // 19/6 = 3.1666...
		},
		{
			name:      "All ones",
			breakdown: uniform(1),
			want:      1.00,
		},
		{
			name:      "Zero score rejected",
			breakdown: Breakdown{WorkQuality: 0, DeadlineCompliance: 3, Communication: 3, ProblemResolution: 3, ValueForMoney: 3, Professionalism: 3},
			wantErr:   true,
		},
		{
			name:      "Score above five rejected",
			breakdown: Breakdown{WorkQuality: 6, DeadlineCompliance: 3, Communication: 3, ProblemResolution: 3, ValueForMoney: 3, Professionalism: 3},
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Overall(tt.breakdown)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidRating)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 0.001)
		})
	}
}

func TestOverallIsInRange(t *testing.T) {
	for lo := 1.0; lo <= 5.0; lo++ {
		got, err := Overall(uniform(lo))
		require.NoError(t, err)
		assert.GreaterOrEqual(t, got, 1.0)
		assert.LessOrEqual(t, got, 5.0)
	}
}

func TestIncrementalMean(t *testing.T) {
	// Folding [4,5,3] one at a time reproduces the direct mean at each step.
	m := IncrementalMean(0, 0, 4)
	assert.InDelta(t, 4.00, m, 0.001)

	m = IncrementalMean(m, 1, 5)
	assert.InDelta(t, 4.50, m, 0.001)

	m = IncrementalMean(m, 2, 3)
	assert.InDelta(t, 4.00, m, 0.001)
}

func TestIncrementalMeanFirstSample(t *testing.T) {
	assert.InDelta(t, 3.00, IncrementalMean(0, 0, 3), 0.001)
	assert.InDelta(t, 4.57, IncrementalMean(0, 0, 4.567), 0.001)
}

func TestIncrementalMeanTracksDirectMean(t *testing.T) {
	values := []float64{5, 3, 4, 2, 5, 1, 4, 4, 3, 5}

	var mean float64
	var sum float64
	for i, v := range values {
		mean = IncrementalMean(mean, i, v)
		sum += v
		// Each step rounds, so allow the cumulative rounding drift.
		assert.InDelta(t, sum/float64(i+1), mean, 0.05)
	}
}

func TestUpdateBreakdown(t *testing.T) {
	company := uniform(4) // current means with 1 review
	incoming := uniform(2)

	updated := UpdateBreakdown(company, 1, incoming)
	for _, v := range updated.Values() {
		assert.InDelta(t, 3.00, v, 0.001)
	}
}

func TestUpdateBreakdownFromZero(t *testing.T) {
	updated := UpdateBreakdown(Breakdown{}, 0, uniform(4))
	for _, v := range updated.Values() {
		assert.InDelta(t, 4.00, v, 0.001)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		avg  float64
		want Status
	}{
		{5.0, StatusRecommended},
		{4.0, StatusRecommended},
		{3.99, StatusNeutral},
		{2.5, StatusNeutral},
		{2.49, StatusHasProblems},
		{1.5, StatusHasProblems},
		{1.49, StatusAvoid},
		{1.0, StatusAvoid},
		// Fresh company before any review: average 0 falls in the lowest
		// band, no special case.
		{0.0, StatusAvoid},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.avg), "avg=%v", tt.avg)
	}
}

func TestRound2(t *testing.T) {
	assert.InDelta(t, 3.17, Round2(3.16666), 0.0001)
	assert.InDelta(t, 3.13, Round2(3.125), 0.0001) // half up
	assert.InDelta(t, 4.0, Round2(4.0), 0.0001)
	assert.InDelta(t, 4.5, Round2(4.499999), 0.0001)
}
