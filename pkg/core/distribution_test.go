package core

import (
	"math"
	"math/rand"
	"testing"
)

func TestDistribution1DSampleAndPDF(t *testing.T) {
	d := NewDistribution1D()
	weights := []float64{1, 3, 0, 2}
	for _, w := range weights {
		d.Add(w)
	}
	d.Normalize()

	if d.Size() != len(weights) {
		t.Fatalf("size = %d, want %d", d.Size(), len(weights))
	}
	sum := 0.0
	for i := range weights {
		p := d.PDF(i)
		if math.Abs(p-weights[i]/6) > 1e-12 {
			t.Errorf("pdf(%d) = %v, want %v", i, p, weights[i]/6)
		}
		sum += p
	}
	if math.Abs(sum-1) > 1e-12 {
		t.Errorf("pdf sum = %v, want 1", sum)
	}

	// empirical frequencies against the pdf
	rng := rand.New(rand.NewSource(7))
	counts := make([]int, len(weights))
	const nSamples = 100000
	for i := 0; i < nSamples; i++ {
		counts[d.Sample(rng.Float64())]++
	}
	if counts[2] != 0 {
		t.Errorf("zero-weight bucket was sampled %d times", counts[2])
	}
	for i := range weights {
		got := float64(counts[i]) / nSamples
		if math.Abs(got-d.PDF(i)) > 0.01 {
			t.Errorf("bucket %d frequency %v, want %v", i, got, d.PDF(i))
		}
	}
}

func TestDistribution1DZeroSum(t *testing.T) {
	d := NewDistribution1D()
	d.Add(0)
	d.Add(0)
	d.Normalize()
	if d.PDF(0) != 0 || d.PDF(1) != 0 {
		t.Error("zero-sum distribution should keep zero pdfs")
	}
}

func TestTwoTailedGeometricDist(t *testing.T) {
	d := NewTwoTailedGeometricDist(2)
	d.Configure(1, 1, 6)

	sum := 0.0
	for i := 1; i <= 6; i++ {
		sum += d.PDF(i)
	}
	if math.Abs(sum-1) > 1e-12 {
		t.Errorf("pmf sum = %v, want 1", sum)
	}
	if d.PDF(0) != 0 || d.PDF(7) != 0 {
		t.Error("pmf outside the support should be zero")
	}
	// geometric decay away from the center
	if math.Abs(d.PDF(1)/d.PDF(2)-2) > 1e-9 {
		t.Errorf("decay ratio = %v, want 2", d.PDF(1)/d.PDF(2))
	}
	if math.Abs(d.PDF(2)/d.PDF(3)-2) > 1e-9 {
		t.Errorf("decay ratio = %v, want 2", d.PDF(2)/d.PDF(3))
	}

	rng := rand.New(rand.NewSource(8))
	for i := 0; i < 1000; i++ {
		k := d.Sample(rng.Float64())
		if k < 1 || k > 6 {
			t.Fatalf("sample %d outside support [1, 6]", k)
		}
	}
}
