package path

import (
	"math"
	"math/rand"
	"testing"

	"github.com/df07/go-manifold-mlt/pkg/scene"
)

// traceCompletePath rejection-samples a complete path of exactly n
// vertices with a random connection split
func traceCompletePath(t *testing.T, sc *scene.Scene, rng *rand.Rand, n int) (Path, int) {
	t.Helper()
	for i := 0; i < 100000; i++ {
		subpathL := SampleSubpath(sc, rng, scene.LE, n)
		subpathE := SampleSubpath(sc, rng, scene.EL, n)
		s := rng.Intn(n + 1)
		if s > len(subpathL.Vertices) || n-s > len(subpathE.Vertices) {
			continue
		}
		p, ok := Connect(sc, &subpathL, &subpathE, s, n-s)
		if !ok {
			continue
		}
		if p.EvaluateUnweightContribution(sc, s).IsBlack() {
			continue
		}
		return p, s
	}
	t.Fatalf("no complete path of length %d found", n)
	return Path{}, 0
}

func TestPathSignature(t *testing.T) {
	sc := scene.NewCornellBoxScene(1)
	rng := rand.New(rand.NewSource(41))
	for _, n := range []int{2, 3, 4} {
		p, _ := traceCompletePath(t, sc, rng, n)
		ts := p.TypeString()
		if len(ts) != n {
			t.Fatalf("signature %q has wrong length, want %d", ts, n)
		}
		if ts[0] != 'L' || ts[n-1] != 'E' {
			t.Errorf("signature %q should run from L to E", ts)
		}
	}
}

func TestMISWeightsPartitionUnity(t *testing.T) {
	sc := scene.NewCornellBoxScene(1)
	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 20; trial++ {
		n := 3 + trial%2
		p, _ := traceCompletePath(t, sc, rng, n)
		sum := 0.0
		any := false
		for s := 0; s <= n; s++ {
			if p.EvaluatePathPDF(sc, s) == 0 {
				continue
			}
			any = true
			sum += p.EvaluateMISWeight(sc, s)
		}
		if !any {
			t.Fatalf("path %q has no constructible strategy", p.TypeString())
		}
		if math.Abs(sum-1) > 1e-9 {
			t.Errorf("path %q: MIS weights sum to %v, want 1", p.TypeString(), sum)
		}
	}
}

func TestUnweightContributionMatchesMeasurement(t *testing.T) {
	sc := scene.NewCornellBoxScene(1)
	rng := rand.New(rand.NewSource(43))
	for trial := 0; trial < 20; trial++ {
		n := 3 + trial%2
		p, _ := traceCompletePath(t, sc, rng, n)
		for s := 0; s <= n; s++ {
			pdf := p.EvaluatePathPDF(sc, s)
			if pdf == 0 {
				continue
			}
			f := p.EvaluateF(s)
			cstar := p.EvaluateUnweightContribution(sc, s)
			got := cstar.Multiply(pdf)
			if got.Subtract(f).Length() > 1e-9*(1+f.Length()) {
				t.Errorf("path %q s=%d: Cstar*pdf = %v, measurement = %v", p.TypeString(), s, got, f)
			}
		}
	}
}

func TestMeasurementSplitInvariance(t *testing.T) {
	sc := scene.NewCornellBoxScene(1)
	rng := rand.New(rand.NewSource(44))
	checked := 0
	for trial := 0; trial < 60 && checked < 10; trial++ {
		n := 3 + trial%2
		p, s0 := traceCompletePath(t, sc, rng, n)
		// refraction breaks split invariance through the radiance scaling
		specular := false
		for _, v := range p.Vertices {
			if v.IsSpecular() {
				specular = true
			}
		}
		if specular {
			continue
		}
		f0 := p.EvaluateF(s0)
		for s := 0; s <= n; s++ {
			f := p.EvaluateF(s)
			if f.Subtract(f0).Length() > 1e-9*(1+f0.Length()) {
				t.Errorf("path %q: F(%d) = %v differs from F(%d) = %v", p.TypeString(), s, f, s0, f0)
			}
		}
		checked++
	}
	if checked == 0 {
		t.Fatal("no specular-free path found")
	}
}

func TestConnectEndpointRules(t *testing.T) {
	sc := scene.NewCornellBoxScene(1)
	rng := rand.New(rand.NewSource(45))

	// s = 0 demands the eye walk ended on a light
	found := false
	for i := 0; i < 10000 && !found; i++ {
		sp := SampleSubpath(sc, rng, scene.EL, 3)
		if len(sp.Vertices) < 3 {
			continue
		}
		var empty Subpath
		p, ok := Connect(sc, &empty, &sp, 0, 3)
		onLight := sp.Vertices[2].Primitive.Type()&scene.Light != 0
		if ok != onLight {
			t.Fatalf("s=0 connect ok=%v but back vertex on light=%v", ok, onLight)
		}
		if ok {
			if p.Vertices[0].Type != scene.Light {
				t.Errorf("s=0 path should retag the far vertex as Light, got %v", p.Vertices[0].Type)
			}
			found = true
		}
	}
	if !found {
		t.Error("no eye walk reached the light")
	}

	// both sides empty is never a path
	var empty Subpath
	if _, ok := Connect(sc, &empty, &empty, 0, 0); ok {
		t.Error("empty connection should fail")
	}
}

func TestRasterPosition(t *testing.T) {
	sc := scene.NewCornellBoxScene(1)
	rng := rand.New(rand.NewSource(46))
	p, _ := traceCompletePath(t, sc, rng, 3)
	rp, ok := p.RasterPosition()
	if !ok {
		t.Fatal("complete path should project onto the raster")
	}
	if !rp.InUnitSquare() {
		t.Errorf("raster position %v outside the unit square", rp)
	}
}

func TestSubpathStartsAtEndpoint(t *testing.T) {
	sc := scene.NewCornellBoxScene(1)
	rng := rand.New(rand.NewSource(47))

	spL := SampleSubpath(sc, rng, scene.LE, 4)
	if len(spL.Vertices) == 0 || spL.Vertices[0].Type != scene.Light {
		t.Error("light walk should start with a Light vertex")
	}
	spE := SampleSubpath(sc, rng, scene.EL, 4)
	if len(spE.Vertices) == 0 || spE.Vertices[0].Type != scene.Eye {
		t.Error("eye walk should start with an Eye vertex")
	}
	// interior vertices carry their BSDF type, not the emitter flags
	for _, v := range spE.Vertices[1:] {
		if v.Type&scene.Emitter != 0 {
			t.Errorf("traced vertex carries emitter type %v", v.Type)
		}
	}
}
