package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/df07/go-manifold-mlt/pkg/renderer"
	"github.com/df07/go-manifold-mlt/pkg/scene"
)

func main() {
	sceneName := flag.String("scene", "box", "Scene: 'box' or 'caustic'")
	algorithm := flag.String("algorithm", "mmlt", "Renderer: 'mlt', 'mmlt' or 'bdpt'")
	width := flag.Int("width", 400, "Image width")
	height := flag.Int("height", 400, "Image height")
	mutations := flag.Int("mutations", 4000000, "Number of mutations (mlt, mmlt)")
	samples := flag.Int("samples", 100000, "Number of samples (bdpt) or seed samples (mlt, mmlt)")
	numVertices := flag.Int("vertices", 5, "Exact path length for mlt, maximum for mmlt and bdpt")
	seed := flag.Int64("seed", 42, "Random seed")
	workers := flag.Int("workers", runtime.NumCPU(), "Number of worker goroutines")
	output := flag.String("output", "render.png", "Output image (.png or .tiff)")
	verbose := flag.Bool("verbose", false, "Print progress information")
	help := flag.Bool("help", false, "Show help information")
	flag.Parse()

	if *help {
		fmt.Println("Manifold MLT renderer")
		fmt.Println("Usage: manifold-mlt [options]")
		fmt.Println()
		fmt.Println("Options:")
		flag.PrintDefaults()
		return
	}

	renderer.Verbose = *verbose

	sc, ok := scene.ByName(*sceneName, float64(*width)/float64(*height))
	if !ok {
		fmt.Printf("Unknown scene: %s\n", *sceneName)
		os.Exit(1)
	}

	fmt.Printf("Rendering %s with %s (%dx%d)...\n", *sceneName, *algorithm, *width, *height)
	startTime := time.Now()

	var film *renderer.Film
	switch *algorithm {
	case "mlt":
		film = renderer.RenderMLT(sc, renderer.MLTConfig{
			Width:          *width,
			Height:         *height,
			NumVertices:    *numVertices,
			NumMutations:   *mutations,
			NumSeedSamples: *samples,
			Seed:           *seed,
			Workers:        *workers,
		})
	case "mmlt":
		film = renderer.RenderMMLT(sc, renderer.MMLTConfig{
			Width:          *width,
			Height:         *height,
			NumMutations:   *mutations,
			NumSeedSamples: *samples,
			MaxNumVertices: *numVertices,
			Seed:           *seed,
			Workers:        *workers,
		})
	case "bdpt":
		film = renderer.RenderBDPT(sc, renderer.BDPTConfig{
			Width:          *width,
			Height:         *height,
			NumSamples:     *samples,
			MaxNumVertices: *numVertices,
			Seed:           *seed,
			Workers:        *workers,
		})
	default:
		fmt.Printf("Unknown algorithm: %s\n", *algorithm)
		os.Exit(1)
	}

	fmt.Printf("Render completed in %v\n", time.Since(startTime))

	if err := film.Save(*output); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Image saved to: %s\n", *output)
}
