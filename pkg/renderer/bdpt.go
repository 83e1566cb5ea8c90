package renderer

import (
	"math/rand"
	"sync"

	"github.com/df07/go-manifold-mlt/pkg/path"
	"github.com/df07/go-manifold-mlt/pkg/scene"
)

// BDPTConfig configures the bidirectional reference renderer
type BDPTConfig struct {
	Width, Height  int
	NumSamples     int
	MaxNumVertices int
	Seed           int64
	Workers        int
}

// RenderBDPT runs a splat-only bidirectional path tracer: every
// sample traces one light and one eye subpath and splats every
// MIS-weighted connection. Used as the unbiased baseline and by the
// normalization tests.
func RenderBDPT(sc *scene.Scene, cfg BDPTConfig) *Film {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	films := make([]*Film, cfg.Workers)
	var wg sync.WaitGroup
	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(cfg.Seed + int64(worker)))
			film := NewFilm(cfg.Width, cfg.Height)
			films[worker] = film
			samples := cfg.NumSamples / cfg.Workers
			if worker < cfg.NumSamples%cfg.Workers {
				samples++
			}
			for i := 0; i < samples; i++ {
				sampleBDPT(sc, rng, cfg.MaxNumVertices, film)
			}
		}(w)
	}
	wg.Wait()

	film := NewFilm(cfg.Width, cfg.Height)
	for _, f := range films {
		film.Accumulate(f)
	}
	film.Rescale(float64(cfg.Width*cfg.Height) / float64(cfg.NumSamples))
	return film
}

// sampleBDPT splats the weighted contributions of all connections of
// one subpath pair
func sampleBDPT(sc *scene.Scene, rng *rand.Rand, maxNumVertices int, film *Film) {
	subpathL := path.SampleSubpath(sc, rng, scene.LE, maxNumVertices)
	subpathE := path.SampleSubpath(sc, rng, scene.EL, maxNumVertices)
	nL := len(subpathL.Vertices)
	nE := len(subpathE.Vertices)

	for n := 2; n <= nL+nE && n <= maxNumVertices; n++ {
		for s := max(0, n-nE); s <= min(nL, n); s++ {
			t := n - s
			p, ok := path.Connect(sc, &subpathL, &subpathE, s, t)
			if !ok {
				continue
			}
			cstar := p.EvaluateUnweightContribution(sc, s)
			if cstar.IsBlack() {
				continue
			}
			w := p.EvaluateMISWeight(sc, s)
			rp, ok := p.RasterPosition()
			if !ok {
				continue
			}
			film.Splat(rp, cstar.Multiply(w))
		}
	}
}
