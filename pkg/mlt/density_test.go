package mlt

import (
	"math"
	"math/rand"
	"testing"

	"github.com/df07/go-manifold-mlt/pkg/scene"
)

// sampleValidState rejection-samples a state whose decoded path has a
// nonzero contribution
func sampleValidState(t *testing.T, sc *scene.Scene, rng *rand.Rand, numVertices int) (State, CachedPath) {
	t.Helper()
	for i := 0; i < 200000; i++ {
		st := NewState(rng, numVertices)
		if cp, ok := InvCDF(st, sc); ok {
			return st, cp
		}
	}
	t.Fatalf("no valid state of %d vertices found", numVertices)
	return State{}, CachedPath{}
}

func TestInvCDFDecodesConsistentPaths(t *testing.T) {
	sc := scene.NewCornellBoxScene(1)
	rng := rand.New(rand.NewSource(61))
	for _, n := range []int{2, 3, 4} {
		st, cp := sampleValidState(t, sc, rng, n)
		if cp.P.Length() != n {
			t.Fatalf("decoded path has %d vertices, want %d", cp.P.Length(), n)
		}
		if cp.S+cp.T != n {
			t.Errorf("strategy split %d+%d does not cover the path", cp.S, cp.T)
		}
		if cp.Cstar.IsBlack() {
			t.Error("valid state decoded to a black contribution")
		}
		if cp.W < 0 || cp.W > 1 {
			t.Errorf("MIS weight %v outside [0, 1]", cp.W)
		}
		if st.NumVertices != n {
			t.Errorf("state vertex count drifted to %d", st.NumVertices)
		}
	}
}

func TestCDFInvCDFRoundTrip(t *testing.T) {
	sc := scene.NewCornellBoxScene(1)
	rng := rand.New(rand.NewSource(62))
	for _, n := range []int{3, 4} {
		for trial := 0; trial < 5; trial++ {
			_, cp := sampleValidState(t, sc, rng, n)

			st := CDF(&cp.P, cp.S, sc, rng)
			cp2, ok := InvCDF(st, sc)
			if !ok {
				t.Fatalf("re-encoded state of path %q failed to decode", cp.P.TypeString())
			}
			if cp2.S != cp.S || cp2.T != cp.T {
				t.Fatalf("strategy changed in the round trip: (%d,%d) -> (%d,%d)", cp.S, cp.T, cp2.S, cp2.T)
			}
			if cp2.P.Length() != cp.P.Length() {
				t.Fatalf("length changed in the round trip: %d -> %d", cp.P.Length(), cp2.P.Length())
			}
			for i := range cp.P.Vertices {
				d := cp2.P.Vertices[i].Geom.P.Subtract(cp.P.Vertices[i].Geom.P).Length()
				if d > 1e-4 {
					t.Errorf("path %q vertex %d moved by %v in the round trip", cp.P.TypeString(), i, d)
				}
			}
			c1 := cp.ScalarContrib()
			c2 := cp2.ScalarContrib()
			if math.Abs(c1-c2) > 1e-3*(1+c1) {
				t.Errorf("contribution changed in the round trip: %v -> %v", c1, c2)
			}
		}
	}
}

func TestStateSteps(t *testing.T) {
	rng := rand.New(rand.NewSource(63))
	st := NewState(rng, 4)
	if len(st.UsL) != 12 || len(st.UsE) != 12 {
		t.Fatalf("state has %d+%d coordinates, want 12+12", len(st.UsL), len(st.UsE))
	}

	small := st.SmallStep(rng)
	if small.NumVertices != st.NumVertices {
		t.Error("small step changed the vertex count")
	}
	for i := range st.UsL {
		dl := math.Abs(small.UsL[i] - st.UsL[i])
		dl = math.Min(dl, 1-dl)
		if dl == 0 || dl > 1.0/16+1e-12 {
			t.Errorf("small step moved coordinate %d by %v", i, dl)
		}
	}

	tech := st.ChangeTechnique(rng)
	if tech.UT == st.UT {
		t.Error("technique change should move the selector")
	}
	for i := range st.UsL {
		if tech.UsL[i] != st.UsL[i] || tech.UsE[i] != st.UsE[i] {
			t.Fatal("technique change touched a subpath coordinate")
		}
	}

	large := st.LargeStep(rng)
	if large.NumVertices != st.NumVertices {
		t.Error("large step changed the vertex count")
	}
	// mutated copies never alias the original
	small.UsL[0] = -1
	tech.UsE[0] = -1
	if st.UsL[0] == -1 || st.UsE[0] == -1 {
		t.Error("steps share backing arrays with the original state")
	}
}
