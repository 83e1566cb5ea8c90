package renderer

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/df07/go-manifold-mlt/pkg/core"
)

func TestFilmSplat(t *testing.T) {
	f := NewFilm(4, 4)
	// raster (0,0) is the lower left, pixel row 0 the top
	f.Splat(core.NewVec2(0.1, 0.1), core.NewVec3(1, 2, 3))
	if got := f.At(0, 3); got != core.NewVec3(1, 2, 3) {
		t.Errorf("lower-left splat landed at the wrong pixel: %v", got)
	}
	f.Splat(core.NewVec2(0.9, 0.9), core.NewVec3(1, 0, 0))
	if got := f.At(3, 0); got.X != 1 {
		t.Errorf("upper-right splat landed at the wrong pixel: %v", got)
	}
	// splats accumulate
	f.Splat(core.NewVec2(0.1, 0.1), core.NewVec3(1, 0, 0))
	if got := f.At(0, 3); got.X != 2 {
		t.Errorf("splats should add, got %v", got)
	}
}

func TestFilmAccumulateRescaleClear(t *testing.T) {
	a := NewFilm(2, 2)
	b := NewFilm(2, 2)
	a.Splat(core.NewVec2(0.25, 0.25), core.NewVec3(1, 1, 1))
	b.Splat(core.NewVec2(0.25, 0.25), core.NewVec3(2, 2, 2))
	a.Accumulate(b)
	if got := a.At(0, 1); got.X != 3 {
		t.Errorf("accumulated pixel = %v, want 3", got)
	}
	a.Rescale(0.5)
	if got := a.At(0, 1); got.X != 1.5 {
		t.Errorf("rescaled pixel = %v, want 1.5", got)
	}
	if lum := a.Luminance(); math.Abs(lum-1.5/4) > 1e-12 {
		t.Errorf("mean luminance = %v, want %v", lum, 1.5/4)
	}
	a.Clear()
	if a.Luminance() != 0 {
		t.Error("cleared film should be black")
	}
}

func TestFilmSave(t *testing.T) {
	f := NewFilm(8, 8)
	f.Splat(core.NewVec2(0.5, 0.5), core.NewVec3(4, 2, 1))
	dir := t.TempDir()
	for _, name := range []string{"out.png", "out.tiff"} {
		p := filepath.Join(dir, name)
		if err := f.Save(p); err != nil {
			t.Fatalf("save %s: %v", name, err)
		}
		info, err := os.Stat(p)
		if err != nil || info.Size() == 0 {
			t.Errorf("saved image %s is missing or empty", name)
		}
	}
	if err := f.Save(filepath.Join(dir, "missing", "out.png")); err == nil {
		t.Error("saving into a missing directory should fail")
	}
}
