package core

import (
	"math"
	"sort"
)

// Distribution1D is a discrete distribution built from a list of
// non-negative weights. Sampling uses the normalized CDF table.
type Distribution1D struct {
	cdf []float64
	sum float64
}

// NewDistribution1D creates an empty distribution
func NewDistribution1D() *Distribution1D {
	return &Distribution1D{cdf: []float64{0}}
}

// Clear resets the distribution to empty
func (d *Distribution1D) Clear() {
	d.cdf = d.cdf[:1]
	d.cdf[0] = 0
	d.sum = 0
}

// Add appends one weight
func (d *Distribution1D) Add(w float64) {
	d.cdf = append(d.cdf, d.cdf[len(d.cdf)-1]+w)
	d.sum += w
}

// Normalize scales the CDF so it ends at one. A zero-sum distribution
// stays all-zero and samples index 0 with pdf 0.
func (d *Distribution1D) Normalize() {
	if d.sum == 0 {
		return
	}
	for i := range d.cdf {
		d.cdf[i] /= d.sum
	}
	d.cdf[len(d.cdf)-1] = 1
}

// Sample returns an index distributed by the normalized weights
func (d *Distribution1D) Sample(u float64) int {
	n := len(d.cdf) - 1
	// first bucket whose upper CDF bound exceeds u
	i := sort.Search(n, func(i int) bool { return d.cdf[i+1] > u })
	return Clamp2Int(i, 0, n-1)
}

// PDF returns the probability of index i
func (d *Distribution1D) PDF(i int) float64 {
	if i < 0 || i >= len(d.cdf)-1 {
		return 0
	}
	return d.cdf[i+1] - d.cdf[i]
}

// Size returns the number of weights added
func (d *Distribution1D) Size() int {
	return len(d.cdf) - 1
}

// Clamp2Int limits an int to [lo, hi]
func Clamp2Int(x, lo, hi int) int {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// TwoTailedGeometricDist is a discrete distribution over [min, max]
// whose pmf decays geometrically on both sides of a center index:
// p(i) proportional to base^(-|i-center|)
type TwoTailedGeometricDist struct {
	base float64
	dist Distribution1D
	min  int
}

// NewTwoTailedGeometricDist creates the distribution with the given
// decay base. Configure must be called before use.
func NewTwoTailedGeometricDist(base float64) *TwoTailedGeometricDist {
	return &TwoTailedGeometricDist{base: base, dist: Distribution1D{cdf: []float64{0}}}
}

// Configure sets the center and the inclusive support [min, max]
func (t *TwoTailedGeometricDist) Configure(center, min, max int) {
	t.min = min
	t.dist.Clear()
	for i := min; i <= max; i++ {
		t.dist.Add(math.Pow(t.base, -math.Abs(float64(i-center))))
	}
	t.dist.Normalize()
}

// Sample draws an index in [min, max]
func (t *TwoTailedGeometricDist) Sample(u float64) int {
	return t.min + t.dist.Sample(u)
}

// PDF returns the probability of index i
func (t *TwoTailedGeometricDist) PDF(i int) float64 {
	return t.dist.PDF(i - t.min)
}
