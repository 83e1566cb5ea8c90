package renderer

import (
	"math"
	"math/rand"
	"sync"

	"github.com/df07/go-manifold-mlt/pkg/core"
	"github.com/df07/go-manifold-mlt/pkg/mutation"
	"github.com/df07/go-manifold-mlt/pkg/path"
	"github.com/df07/go-manifold-mlt/pkg/scene"
)

// MLTConfig configures the fixed-length path-space MLT renderer
type MLTConfig struct {
	Width, Height  int
	NumVertices    int
	NumMutations   int
	NumSeedSamples int
	Seed           int64
	Workers        int
	// Weights selects the strategy mixture, indexed by
	// mutation.Strategy; nil uses DefaultStrategyWeights
	Weights []float64
}

// DefaultStrategyWeights enables every strategy except the identity
func DefaultStrategyWeights() []float64 {
	w := make([]float64, mutation.NumStrategies)
	for i := range w {
		w[i] = 1
	}
	w[mutation.Identity] = 0
	return w
}

const seedRetries = 10000000

// samplePTPath traces an eye path of exactly numVertices vertices
// whose far end reaches a light
func samplePTPath(sc *scene.Scene, rng *rand.Rand, numVertices int) (path.Path, bool) {
	sp := path.SampleSubpath(sc, rng, scene.EL, numVertices)
	if len(sp.Vertices) != numVertices {
		return path.Path{}, false
	}
	var empty path.Subpath
	p, ok := path.Connect(sc, &empty, &sp, 0, numVertices)
	if !ok {
		return path.Path{}, false
	}
	if p.EvaluateF(0).IsBlack() {
		return path.Path{}, false
	}
	return p, true
}

// estimateNormalization averages the path-traced estimate of the
// total luminance carried by paths of the target length
func estimateNormalization(sc *scene.Scene, rng *rand.Rand, numVertices, numSamples int) float64 {
	sum := 0.0
	for i := 0; i < numSamples; i++ {
		p, ok := samplePTPath(sc, rng, numVertices)
		if !ok {
			continue
		}
		pdf := p.EvaluatePathPDF(sc, 0)
		if pdf == 0 {
			continue
		}
		sum += path.ScalarContrib(p.EvaluateF(0)) / pdf
	}
	return sum / float64(numSamples)
}

// strategySelectionDist builds the per-state strategy distribution:
// configured weight for mutatable strategies, zero otherwise
func strategySelectionDist(weights []float64, p *path.Path) *core.Distribution1D {
	d := core.NewDistribution1D()
	for s := mutation.Strategy(0); s < mutation.NumStrategies; s++ {
		w := 0.0
		if weights[s] > 0 && mutation.CheckMutatable(s, p) {
			w = weights[s]
		}
		d.Add(w)
	}
	d.Normalize()
	return d
}

// RenderMLT runs fixed-length Metropolis light transport over the
// path-space mutation strategies
func RenderMLT(sc *scene.Scene, cfg MLTConfig) *Film {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	weights := cfg.Weights
	if weights == nil {
		weights = DefaultStrategyWeights()
	}

	seedRng := rand.New(rand.NewSource(cfg.Seed))
	b := estimateNormalization(sc, seedRng, cfg.NumVertices, cfg.NumSeedSamples)
	logf("mlt: normalization b = %g", b)
	if b == 0 {
		return NewFilm(cfg.Width, cfg.Height)
	}

	films := make([]*Film, cfg.Workers)
	var wg sync.WaitGroup
	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(cfg.Seed + 1 + int64(worker)))
			film := NewFilm(cfg.Width, cfg.Height)
			films[worker] = film

			var curr path.Path
			found := false
			for i := 0; i < seedRetries; i++ {
				if p, ok := samplePTPath(sc, rng, cfg.NumVertices); ok {
					curr = p
					found = true
					break
				}
			}
			if !found {
				return
			}

			mutations := cfg.NumMutations / cfg.Workers
			for i := 0; i < mutations; i++ {
				mutateOnce(sc, rng, weights, &curr)
				splatCurrent(film, &curr, b)
			}
		}(w)
	}
	wg.Wait()

	film := NewFilm(cfg.Width, cfg.Height)
	for _, f := range films {
		film.Accumulate(f)
	}
	film.Rescale(float64(cfg.Width*cfg.Height) / float64(cfg.NumMutations))
	return film
}

// mutateOnce advances the chain by one accept/reject step
func mutateOnce(sc *scene.Scene, rng *rand.Rand, weights []float64, curr *path.Path) {
	distX := strategySelectionDist(weights, curr)
	strat := mutation.Strategy(distX.Sample(rng.Float64()))
	if distX.PDF(int(strat)) == 0 {
		return
	}
	prop, ok := mutation.Mutate(strat, sc, rng, curr)
	if !ok {
		return
	}

	qxy := mutation.Q(strat, sc, curr, &prop.Path, prop.Subspace) * distX.PDF(int(strat))
	distY := strategySelectionDist(weights, &prop.Path)
	qyx := mutation.Q(strat, sc, &prop.Path, curr, prop.Subspace.Reverse()) * distY.PDF(int(strat))

	a := 0.0
	if qxy > 0 && qyx > 0 && !math.IsNaN(qxy) && !math.IsNaN(qyx) {
		a = math.Min(1, qyx/qxy)
	}
	if rng.Float64() < a {
		*curr = prop.Path
	}
}

// splatCurrent records the current state, scaled so the film
// integrates to the normalization
func splatCurrent(film *Film, curr *path.Path, b float64) {
	f := curr.EvaluateF(0)
	if f.IsBlack() {
		return
	}
	i := path.ScalarContrib(f)
	if i <= 0 {
		return
	}
	rp, ok := curr.RasterPosition()
	if !ok {
		return
	}
	film.Splat(rp, f.Multiply(b/i))
}
