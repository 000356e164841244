package pareto

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

type sample struct {
	n int
	q float64
}

func quality(s sample) (float64, bool) { return s.q, !math.IsNaN(s.q) }

func qualities(ss []sample) []float64 {
	out := make([]float64, len(ss))
	for i, s := range ss {
		out[i] = s.q
	}
	return out
}

func samples(qs ...float64) []sample {
	out := make([]sample, len(qs))
	for i, q := range qs {
		out[i] = sample{n: i, q: q}
	}
	return out
}

func TestBestSoFar_Example(t *testing.T) {
	got := BestSoFar(samples(10, 8, 8, 5, 6, 3), quality, Minimize)
	assert.Equal(t, []float64{10, 8, 5, 3}, qualities(got))
	assert.Equal(t, []int{0, 1, 3, 5}, []int{got[0].n, got[1].n, got[2].n, got[3].n})
}

func TestBestSoFar_Empty(t *testing.T) {
	got := BestSoFar([]sample{}, quality, Minimize)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestBestSoFar_AllEqual(t *testing.T) {
	got := BestSoFar(samples(4, 4, 4), quality, Minimize)
	assert.Equal(t, []int{0}, []int{got[0].n})
	assert.Len(t, got, 1)
}

func TestBestSoFar_StrictlyImproving(t *testing.T) {
	in := samples(9, 12, 7, 7, 8, 1, 2, 0, 0, 5)
	got := BestSoFar(in, quality, Minimize)

	assert.Equal(t, in[0], got[0])
	for i := 1; i < len(got); i++ {
		assert.Less(t, got[i].q, got[i-1].q)
	}
}

func TestBestSoFar_Maximize(t *testing.T) {
	got := BestSoFar(samples(1, 3, 2, 3, 4), quality, Maximize)
	assert.Equal(t, []float64{1, 3, 4}, qualities(got))
}

func TestBestSoFar_MissingValues(t *testing.T) {
	nan := math.NaN()

	got := BestSoFar(samples(5, nan, 4, nan, 3), quality, Minimize)
	assert.Equal(t, []float64{5, 4, 3}, qualities(got))

	// A missing seed is kept but nothing improves on it.
	got = BestSoFar(samples(nan, 4, 3), quality, Minimize)
	assert.Len(t, got, 1)
	assert.Equal(t, 0, got[0].n)
}
