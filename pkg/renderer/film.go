package renderer

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"

	"github.com/df07/go-manifold-mlt/pkg/core"
	colorful "github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/tiff"
)

// Film accumulates splatted radiance. Raster coordinates live in the
// unit square with (0,0) at the lower left; pixel row 0 is the top of
// the image.
type Film struct {
	Width, Height int
	pixels        []core.Vec3
}

// NewFilm creates a zeroed film
func NewFilm(width, height int) *Film {
	return &Film{
		Width:  width,
		Height: height,
		pixels: make([]core.Vec3, width*height),
	}
}

// Clear zeroes every pixel
func (f *Film) Clear() {
	for i := range f.pixels {
		f.pixels[i] = core.Vec3{}
	}
}

// Splat adds a contribution at a raster position
func (f *Film) Splat(rp core.Vec2, v core.Vec3) {
	x := core.Clamp2Int(int(rp.X*float64(f.Width)), 0, f.Width-1)
	y := core.Clamp2Int(int((1-rp.Y)*float64(f.Height)), 0, f.Height-1)
	i := y*f.Width + x
	f.pixels[i] = f.pixels[i].Add(v)
}

// At returns the pixel at image coordinates
func (f *Film) At(x, y int) core.Vec3 {
	return f.pixels[y*f.Width+x]
}

// Accumulate adds another film of the same size
func (f *Film) Accumulate(other *Film) {
	for i := range f.pixels {
		f.pixels[i] = f.pixels[i].Add(other.pixels[i])
	}
}

// Rescale multiplies every pixel by s
func (f *Film) Rescale(s float64) {
	for i := range f.pixels {
		f.pixels[i] = f.pixels[i].Multiply(s)
	}
}

// Luminance returns the mean pixel luminance
func (f *Film) Luminance() float64 {
	sum := 0.0
	for _, p := range f.pixels {
		sum += p.Luminance()
	}
	return sum / float64(len(f.pixels))
}

// Save writes the film to disk. The extension picks the encoder:
// 8-bit sRGB PNG or 16-bit sRGB TIFF.
func (f *Film) Save(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("film: create %s: %w", path, err)
	}
	defer file.Close()

	switch filepath.Ext(path) {
	case ".tiff", ".tif":
		img := image.NewRGBA64(image.Rect(0, 0, f.Width, f.Height))
		for y := 0; y < f.Height; y++ {
			for x := 0; x < f.Width; x++ {
				c := f.srgb(x, y)
				img.SetRGBA64(x, y, color.RGBA64{
					R: uint16(c.R * 65535),
					G: uint16(c.G * 65535),
					B: uint16(c.B * 65535),
					A: 65535,
				})
			}
		}
		if err := tiff.Encode(file, img, &tiff.Options{Compression: tiff.Deflate}); err != nil {
			return fmt.Errorf("film: encode tiff: %w", err)
		}
	default:
		img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
		for y := 0; y < f.Height; y++ {
			for x := 0; x < f.Width; x++ {
				r, g, b := f.srgb(x, y).RGB255()
				img.SetRGBA(x, y, color.RGBA{R: r, G: g, B: b, A: 255})
			}
		}
		if err := png.Encode(file, img); err != nil {
			return fmt.Errorf("film: encode png: %w", err)
		}
	}
	return nil
}

// srgb converts a linear pixel to a clamped sRGB color
func (f *Film) srgb(x, y int) colorful.Color {
	p := f.At(x, y)
	return colorful.LinearRgb(p.X, p.Y, p.Z).Clamped()
}
