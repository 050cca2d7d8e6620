package inequality_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tsinghua-fib-lab/agentsociety-household/utils/inequality"
)

func TestGiniEdgeCases(t *testing.T) {
	assert.Equal(t, 0.0, inequality.Gini(nil))
	assert.Equal(t, 0.0, inequality.Gini([]float64{5}))
	assert.Equal(t, 0.0, inequality.Gini([]float64{0, 0, 0}))
	assert.InDelta(t, 0.0, inequality.Gini([]float64{3, 3, 3, 3}), 1e-12)
	// 一人独占：(N-1)/N
	assert.InDelta(t, 0.75, inequality.Gini([]float64{0, 0, 10, 0}), 1e-12)
}

func TestGiniScaleInvariant(t *testing.T) {
	x := []float64{1, 4, 2, 9, 7, 3}
	scaled := make([]float64, len(x))
	for i, v := range x {
		scaled[i] = v * 13.5
	}
	g := inequality.Gini(x)
	assert.Greater(t, g, 0.0)
	assert.Less(t, g, 1.0)
	assert.InDelta(t, g, inequality.Gini(scaled), 1e-12)
}

func TestGiniDoesNotReorderInput(t *testing.T) {
	x := []float64{3, 1, 2}
	inequality.Gini(x)
	assert.Equal(t, []float64{3, 1, 2}, x)
}

func TestTheil(t *testing.T) {
	assert.Equal(t, 0.0, inequality.Theil(nil))
	assert.Equal(t, 0.0, inequality.Theil([]float64{0, 0}))
	assert.InDelta(t, 0.0, inequality.Theil([]float64{2, 2, 2}), 1e-12)
	// 一人独占：ln(N)
	assert.InDelta(t, math.Log(4), inequality.Theil([]float64{0, 0, 0, 8}), 1e-6)
}

func TestPercentile(t *testing.T) {
	x := []float64{40, 10, 30, 20}
	assert.Equal(t, 0.0, inequality.Percentile(nil, 0.5))
	assert.Equal(t, 10.0, inequality.Percentile(x, 0))
	assert.Equal(t, 40.0, inequality.Percentile(x, 1))
	assert.Equal(t, 40.0, inequality.Percentile(x, 1.7))
	assert.Equal(t, 10.0, inequality.Percentile(x, -1))
	// pos = 0.5·3 = 1.5 → 20 + 0.5·10
	assert.InDelta(t, 25.0, inequality.Percentile(x, 0.5), 1e-12)

	prev := math.Inf(-1)
	for p := 0.0; p <= 1.0; p += 0.05 {
		v := inequality.Percentile(x, p)
		assert.GreaterOrEqual(t, v, prev)
		prev = v
	}
}

func TestShares(t *testing.T) {
	x := make([]float64, 10)
	for i := range x {
		x[i] = float64(i + 1) // 1..10, sum 55
	}
	assert.InDelta(t, 10.0/55, inequality.TopShare(x, 0.1), 1e-12)
	assert.InDelta(t, 10.0/55, inequality.BottomShare(x, 0.4), 1e-12)
	assert.InDelta(t, 1.0, inequality.Palma(x), 1e-12)
	assert.Equal(t, 0.0, inequality.TopShare([]float64{0, 0}, 0.1))
}

func TestPalmaSentinel(t *testing.T) {
	x := []float64{0, 0, 0, 0, 0, 0, 0, 0, 0, 5}
	assert.Equal(t, inequality.PalmaSentinel, inequality.Palma(x))
}

func TestSummarize(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	s := inequality.Summarize(x)
	assert.Equal(t, 10, s.N)
	assert.Equal(t, 55.0, s.Total)
	assert.Equal(t, 5.5, s.Mean)
	assert.InDelta(t, 5.5, s.Median, 1e-12)
	assert.InDelta(t, inequality.Gini(x), s.Gini, 1e-12)
	assert.InDelta(t, inequality.Theil(x), s.Theil, 1e-12)
	assert.InDelta(t, 15.0/55, s.Bottom50Share, 1e-12)
	assert.Equal(t, 0.0, s.Top1Share)
}
