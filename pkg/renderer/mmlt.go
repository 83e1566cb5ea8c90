package renderer

import (
	"math"
	"math/rand"
	"sync"

	"github.com/df07/go-manifold-mlt/pkg/core"
	"github.com/df07/go-manifold-mlt/pkg/mlt"
	"github.com/df07/go-manifold-mlt/pkg/path"
	"github.com/df07/go-manifold-mlt/pkg/scene"
)

// MMLTConfig configures the multiplexed primary sample space renderer
type MMLTConfig struct {
	Width, Height  int
	NumMutations   int
	NumSeedSamples int
	MaxNumVertices int
	LargeStepProb  float64
	Seed           int64
	Workers        int
}

// mmltChain is one Markov chain over states of a fixed vertex count
type mmltChain struct {
	curr  mlt.State
	cache mlt.CachedPath
	live  bool
}

// RenderMMLT runs multiplexed MLT: one chain per path length, with the
// per-length normalizations estimated by a bidirectional seed pass
func RenderMMLT(sc *scene.Scene, cfg MMLTConfig) *Film {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.LargeStepProb <= 0 {
		cfg.LargeStepProb = 0.5
	}

	seedRng := rand.New(rand.NewSource(cfg.Seed))
	b := estimatePerLengthNormalization(sc, seedRng, cfg.MaxNumVertices, cfg.NumSeedSamples)
	pathLengthDist := core.NewDistribution1D()
	total := 0.0
	for k, bk := range b {
		logf("mmlt: b[%d] = %g (n = %d)", k, bk, k+2)
		pathLengthDist.Add(bk)
		total += bk
	}
	pathLengthDist.Normalize()
	if total == 0 {
		return NewFilm(cfg.Width, cfg.Height)
	}

	films := make([]*Film, cfg.Workers)
	processed := make([]int64, cfg.Workers)
	var wg sync.WaitGroup
	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(cfg.Seed + 1 + int64(worker)))
			film := NewFilm(cfg.Width, cfg.Height)
			films[worker] = film

			chains := make([]mmltChain, len(b))
			for k := range chains {
				if b[k] == 0 {
					continue
				}
				if st, cp, ok := initChainState(sc, rng, k+2); ok {
					chains[k] = mmltChain{curr: st, cache: cp, live: true}
				}
			}

			mutations := cfg.NumMutations / cfg.Workers
			for i := 0; i < mutations; i++ {
				k := pathLengthDist.Sample(rng.Float64())
				pk := pathLengthDist.PDF(k)
				if pk < core.Eps || !chains[k].live {
					continue
				}
				mutateChain(sc, rng, &chains[k], cfg.LargeStepProb)
				splatChain(film, &chains[k], b[k]/pk)
				processed[worker]++
			}
		}(w)
	}
	wg.Wait()

	film := NewFilm(cfg.Width, cfg.Height)
	var totalProcessed int64
	for w, f := range films {
		film.Accumulate(f)
		totalProcessed += processed[w]
	}
	if totalProcessed == 0 {
		return film
	}
	film.Rescale(float64(cfg.Width*cfg.Height) / float64(totalProcessed))
	return film
}

// estimatePerLengthNormalization estimates the total scalar
// contribution of each path length via bidirectional sampling.
// Index k holds the estimate for paths of k+2 vertices.
func estimatePerLengthNormalization(sc *scene.Scene, rng *rand.Rand, maxNumVertices, numSamples int) []float64 {
	b := make([]float64, maxNumVertices-1)
	for i := 0; i < numSamples; i++ {
		subpathL := path.SampleSubpath(sc, rng, scene.LE, maxNumVertices)
		subpathE := path.SampleSubpath(sc, rng, scene.EL, maxNumVertices)
		nL := len(subpathL.Vertices)
		nE := len(subpathE.Vertices)
		for n := 2; n <= nL+nE && n <= maxNumVertices; n++ {
			for s := max(0, n-nE); s <= min(nL, n); s++ {
				p, ok := path.Connect(sc, &subpathL, &subpathE, s, n-s)
				if !ok {
					continue
				}
				cstar := p.EvaluateUnweightContribution(sc, s)
				if cstar.IsBlack() {
					continue
				}
				w := p.EvaluateMISWeight(sc, s)
				b[n-2] += path.ScalarContrib(cstar.Multiply(w))
			}
		}
	}
	for k := range b {
		b[k] /= float64(numSamples)
	}
	return b
}

// initChainState rejection-samples an initial state with nonzero
// contribution
func initChainState(sc *scene.Scene, rng *rand.Rand, numVertices int) (mlt.State, mlt.CachedPath, bool) {
	for i := 0; i < seedRetries; i++ {
		st := mlt.NewState(rng, numVertices)
		if cp, ok := mlt.InvCDF(st, sc); ok {
			return st, cp, true
		}
	}
	return mlt.State{}, mlt.CachedPath{}, false
}

// mutateChain advances one chain by an independent large step or a
// correlated small step
func mutateChain(sc *scene.Scene, rng *rand.Rand, c *mmltChain, largeStepProb float64) {
	var prop mlt.State
	if rng.Float64() < largeStepProb {
		prop = c.curr.LargeStep(rng)
	} else {
		prop = c.curr.SmallStep(rng)
	}
	cp, ok := mlt.InvCDF(prop, sc)
	if !ok {
		return
	}

	currC := c.cache.ScalarContrib()
	propC := cp.ScalarContrib()
	a := 1.0
	if currC > 0 {
		a = math.Min(1, propC/currC)
	}
	if rng.Float64() < a {
		c.curr = prop
		c.cache = cp
	}
}

// splatChain records the chain's current path scaled by its length's
// normalization over its scalar contribution
func splatChain(film *Film, c *mmltChain, scale float64) {
	contrib := c.cache.Contribution()
	i := c.cache.ScalarContrib()
	if i <= 0 {
		return
	}
	rp, ok := c.cache.P.RasterPosition()
	if !ok {
		return
	}
	film.Splat(rp, contrib.Multiply(scale/i))
}
