package container_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tsinghua-fib-lab/agentsociety-household/utils/container"
)

type item struct {
	container.IncrementalItemBase
	name string
}

func names(a *container.IncrementalArray[*item]) []string {
	res := make([]string, 0, a.Len())
	for _, x := range a.Data() {
		res = append(res, x.name)
	}
	return res
}

func TestIncrementalArrayGrow(t *testing.T) {
	a := container.NewIncrementalArray(&item{name: "a"}, &item{name: "b"})
	a.Resize(4, func(i int) *item {
		return &item{name: string(rune('c' + i))}
	})
	assert.Equal(t, 2, a.Len())
	assert.Equal(t, 2, a.Pending())
	a.Prepare()
	assert.Equal(t, []string{"a", "b", "c", "d"}, names(a))
	for i, x := range a.Data() {
		assert.Equal(t, i, x.Index())
	}
}

func TestIncrementalArrayShrinkKeepsOrder(t *testing.T) {
	a := container.NewIncrementalArray(
		&item{name: "a"}, &item{name: "b"}, &item{name: "c"}, &item{name: "d"}, &item{name: "e"},
	)
	a.Resize(2, nil)
	a.Prepare()
	assert.Equal(t, []string{"a", "b"}, names(a))
	assert.Equal(t, 0, a.Pending())
}

func TestIncrementalArrayReplace(t *testing.T) {
	b := &item{name: "b"}
	a := container.NewIncrementalArray(&item{name: "a"}, b, &item{name: "c"})
	a.Remove(b)
	a.Add(&item{name: "x"})
	a.Prepare()
	assert.Equal(t, []string{"a", "x", "c"}, names(a))
}

func TestRingLag(t *testing.T) {
	r := container.NewRing[float64](3)
	_, ok := r.Lag(1)
	assert.False(t, ok)
	for _, v := range []float64{1, 2, 3, 4} {
		r.Push(v)
	}
	assert.Equal(t, 3, r.Len())
	v, ok := r.Lag(1)
	assert.True(t, ok)
	assert.Equal(t, 4.0, v)
	v, _ = r.Lag(3)
	assert.Equal(t, 2.0, v)
	_, ok = r.Lag(4)
	assert.False(t, ok)

	v, _ = r.Lag(2)
	assert.Equal(t, 3.0, v)
}

func TestRingWindows(t *testing.T) {
	id := func(v float64) float64 { return v }
	r := container.NewRing[float64](6)
	assert.Equal(t, 0.0, container.LagAverage(r, id, 4, 1))

	r.Push(10)
	assert.Equal(t, 10.0, container.LagAverage(r, id, 4, 1))
	for _, v := range []float64{20, 30, 40, 50} {
		r.Push(v)
	}
	// lags 1..4 = 50, 40, 30, 20
	assert.InDelta(t, 35.0, container.LagAverage(r, id, 4, 1), 1e-12)
	sum, n := container.LagSum(r, id, 2, 2)
	assert.Equal(t, 70.0, sum)
	assert.Equal(t, 2, n)
	// (x[1] - x[5]) / x[5] = (50 - 10) / 10
	assert.InDelta(t, 4.0, container.LagGrowth(r, id, 4, 1), 1e-12)
	assert.Equal(t, 0.0, container.LagGrowth(r, id, 5, 1))
}
