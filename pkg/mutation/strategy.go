package mutation

import (
	"math/rand"
	"regexp"

	"github.com/df07/go-manifold-mlt/pkg/path"
	"github.com/df07/go-manifold-mlt/pkg/scene"
)

// Strategy enumerates the path mutation strategies
type Strategy int

const (
	Bidir Strategy = iota
	Lens
	Caustic
	Multichain
	ManifoldLens
	Identity
	NumStrategies
)

func (s Strategy) String() string {
	switch s {
	case Bidir:
		return "bidir"
	case Lens:
		return "lens"
	case Caustic:
		return "caustic"
	case Multichain:
		return "multichain"
	case ManifoldLens:
		return "manifoldlens"
	case Identity:
		return "identity"
	}
	return "unknown"
}

// Subspace identifies the reversible move class of a bidirectional
// mutation: the deleted range start and length. The range is the same
// seen from either side, so Reverse is the identity.
type Subspace struct {
	Kd int
	DL int
}

// Reverse returns the subspace of the reverse move
func (s Subspace) Reverse() Subspace { return s }

// Result is a proposed path with the subspace it was drawn from
type Result struct {
	Path     path.Path
	Subspace Subspace
}

// manifoldLensPattern matches light, a specular chain, one connectable
// vertex, optional specular tail, eye
var manifoldLensPattern = regexp.MustCompile(`^LS+[DG]S*E$`)

// CheckMutatable reports whether the strategy can act on the path
func CheckMutatable(s Strategy, p *path.Path) bool {
	n := p.Length()
	if n < 2 {
		return false
	}
	switch s {
	case Bidir, Multichain, Identity:
		return true
	case Lens:
		iL := n - 2
		for iL >= 0 && p.Vertices[iL].IsSpecular() {
			iL--
		}
		if iL > 0 && p.Vertices[iL-1].IsSpecular() {
			return false
		}
		return iL >= 0
	case Caustic:
		return n > 2 && !p.Vertices[n-2].IsSpecular()
	case ManifoldLens:
		return manifoldLensPattern.MatchString(p.TypeString())
	}
	return false
}

// Mutate draws a proposal from the strategy's transition kernel.
// Returns false when the kernel has no valid proposal from this state.
func Mutate(s Strategy, sc *scene.Scene, rng *rand.Rand, p *path.Path) (Result, bool) {
	switch s {
	case Bidir:
		return mutateBidir(sc, rng, p)
	case Lens:
		return mutateLens(sc, rng, p)
	case Caustic:
		return mutateCaustic(sc, rng, p)
	case Multichain:
		return mutateMultichain(sc, rng, p)
	case ManifoldLens:
		return mutateManifoldLens(sc, rng, p)
	case Identity:
		return Result{Path: p.Clone()}, true
	}
	return Result{}, false
}

// Q evaluates the strategy's transition density factor for the move
// from x to y, up to terms that cancel in the acceptance ratio
func Q(s Strategy, sc *scene.Scene, x, y *path.Path, subspace Subspace) float64 {
	switch s {
	case Bidir:
		return qBidir(sc, y, subspace)
	case Lens:
		return qLens(sc, y)
	case Caustic:
		return qCaustic(sc, y)
	case Multichain:
		return qMultichain(sc, y)
	case ManifoldLens:
		return qManifoldLens(sc, y)
	case Identity:
		return 1
	}
	return 0
}
