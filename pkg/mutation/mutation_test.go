package mutation

import (
	"math"
	"math/rand"
	"testing"

	"github.com/df07/go-manifold-mlt/pkg/path"
	"github.com/df07/go-manifold-mlt/pkg/scene"
)

// typedPath builds a path skeleton from a signature like "LSDE"
func typedPath(signature string) path.Path {
	var p path.Path
	for _, c := range signature {
		var t scene.InteractionType
		switch c {
		case 'L':
			t = scene.Light
		case 'E':
			t = scene.Eye
		case 'D':
			t = scene.Diffuse
		case 'G':
			t = scene.Glossy
		case 'S':
			t = scene.Specular
		}
		p.Vertices = append(p.Vertices, path.Vertex{Type: t})
	}
	return p
}

func TestCheckMutatable(t *testing.T) {
	cases := []struct {
		signature string
		strategy  Strategy
		want      bool
	}{
		{"LE", Bidir, true},
		{"LDDE", Bidir, true},
		{"L", Bidir, false},

		{"LE", Lens, true},
		{"LDDE", Lens, true},
		{"LDSE", Lens, true},
		{"LSDE", Lens, false}, // specular behind the anchor
		{"LDSSE", Lens, true},

		{"LE", Caustic, false},
		{"LDDE", Caustic, true},
		{"LSDE", Caustic, true},
		{"LDSE", Caustic, false}, // specular next to the eye

		{"LDDE", Multichain, true},

		{"LSDE", ManifoldLens, true},
		{"LSSGSE", ManifoldLens, true},
		{"LSSDSSE", ManifoldLens, true},
		{"LDDE", ManifoldLens, false},
		{"LSGDE", ManifoldLens, false},
		{"LSE", ManifoldLens, false},

		{"LDDE", Identity, true},
	}
	for _, c := range cases {
		p := typedPath(c.signature)
		if got := CheckMutatable(c.strategy, &p); got != c.want {
			t.Errorf("CheckMutatable(%v, %q) = %v, want %v", c.strategy, c.signature, got, c.want)
		}
	}
}

func TestPerturbStaysNearAndInRange(t *testing.T) {
	rng := rand.New(rand.NewSource(51))
	for i := 0; i < 10000; i++ {
		u := rng.Float64()
		v := Perturb(rng, u, PerturbS1, PerturbS2)
		if v < 0 || v >= 1+1e-12 {
			t.Fatalf("perturbed value %v left the unit interval", v)
		}
		// offsets are exponentially distributed between the two scales,
		// measured modulo the wrap
		d := math.Abs(v - u)
		d = math.Min(d, 1-d)
		if d > PerturbS2+1e-12 {
			t.Errorf("offset %v larger than s2 = %v", d, PerturbS2)
		}
		if d < PerturbS1*0.99 {
			t.Errorf("offset %v smaller than s1 = %v", d, PerturbS1)
		}
	}
}

func TestSubspaceReverse(t *testing.T) {
	s := Subspace{Kd: 2, DL: 1}
	if s.Reverse() != s {
		t.Error("the deleted range reads the same from both sides")
	}
}

func TestStrategyString(t *testing.T) {
	names := map[Strategy]string{
		Bidir: "bidir", Lens: "lens", Caustic: "caustic",
		Multichain: "multichain", ManifoldLens: "manifoldlens", Identity: "identity",
	}
	for s, want := range names {
		if s.String() != want {
			t.Errorf("Strategy(%d).String() = %q, want %q", s, s.String(), want)
		}
	}
}

// traceSeedPath rejection-samples a complete eye-traced path of
// exactly n vertices
func traceSeedPath(t *testing.T, sc *scene.Scene, rng *rand.Rand, n int) path.Path {
	t.Helper()
	for i := 0; i < 100000; i++ {
		sp := path.SampleSubpath(sc, rng, scene.EL, n)
		if len(sp.Vertices) != n {
			continue
		}
		var empty path.Subpath
		p, ok := path.Connect(sc, &empty, &sp, 0, n)
		if !ok || p.EvaluateF(0).IsBlack() {
			continue
		}
		return p
	}
	t.Fatalf("no seed path of length %d found", n)
	return path.Path{}
}

func TestBidirMutationPreservesStructure(t *testing.T) {
	sc := scene.NewCornellBoxScene(1)
	rng := rand.New(rand.NewSource(52))
	curr := traceSeedPath(t, sc, rng, 4)

	accepted := 0
	for i := 0; i < 200; i++ {
		prop, ok := Mutate(Bidir, sc, rng, &curr)
		if !ok {
			continue
		}
		accepted++
		if prop.Path.Length() != curr.Length() {
			t.Fatalf("proposal length %d, want %d", prop.Path.Length(), curr.Length())
		}
		ts := prop.Path.TypeString()
		if ts[0] != 'L' || ts[len(ts)-1] != 'E' {
			t.Fatalf("proposal signature %q should run from L to E", ts)
		}
		if prop.Subspace.Kd < 1 || prop.Subspace.Kd > curr.Length() {
			t.Fatalf("deleted range length %d out of bounds", prop.Subspace.Kd)
		}
		qxy := Q(Bidir, sc, &curr, &prop.Path, prop.Subspace)
		if qxy <= 0 || math.IsNaN(qxy) {
			t.Fatalf("forward kernel density %v for a valid proposal", qxy)
		}
		// both directions of the move must carry positive density, or
		// the acceptance ratio is undefined
		qyx := Q(Bidir, sc, &prop.Path, &curr, prop.Subspace.Reverse())
		if qyx <= 0 || math.IsNaN(qyx) {
			t.Fatalf("reverse kernel density %v for a valid proposal", qyx)
		}
	}
	if accepted == 0 {
		t.Fatal("no bidir proposal succeeded")
	}
}

func TestIdentityMutation(t *testing.T) {
	sc := scene.NewCornellBoxScene(1)
	rng := rand.New(rand.NewSource(53))
	curr := traceSeedPath(t, sc, rng, 3)
	prop, ok := Mutate(Identity, sc, rng, &curr)
	if !ok {
		t.Fatal("identity mutation always succeeds")
	}
	if prop.Path.Length() != curr.Length() {
		t.Fatal("identity should preserve the path")
	}
	for i := range curr.Vertices {
		if prop.Path.Vertices[i].Geom.P != curr.Vertices[i].Geom.P {
			t.Fatal("identity moved a vertex")
		}
	}
	if q := Q(Identity, sc, &curr, &prop.Path, prop.Subspace); q != 1 {
		t.Errorf("identity kernel density = %v, want 1", q)
	}
}

func TestLensMutationKeepsLightSide(t *testing.T) {
	sc := scene.NewCornellBoxScene(1)
	rng := rand.New(rand.NewSource(54))
	curr := traceSeedPath(t, sc, rng, 4)
	if !CheckMutatable(Lens, &curr) {
		t.Skip("seed path not lens mutatable")
	}

	n := curr.Length()
	// anchor: deepest non-specular vertex seen from the eye
	iL := n - 2
	for iL >= 0 && curr.Vertices[iL].IsSpecular() {
		iL--
	}

	tried := 0
	for i := 0; i < 500 && tried < 20; i++ {
		prop, ok := Mutate(Lens, sc, rng, &curr)
		if !ok {
			continue
		}
		tried++
		if prop.Path.Length() != n {
			t.Fatalf("proposal length %d, want %d", prop.Path.Length(), n)
		}
		for j := 0; j < iL; j++ {
			if prop.Path.Vertices[j].Geom.P != curr.Vertices[j].Geom.P {
				t.Fatalf("lens mutation moved light-side vertex %d", j)
			}
		}
		if q := Q(Lens, sc, &curr, &prop.Path, prop.Subspace); q <= 0 || math.IsNaN(q) {
			t.Fatalf("lens kernel density %v for a valid proposal", q)
		}
	}
	if tried == 0 {
		t.Fatal("no lens proposal succeeded")
	}
}
