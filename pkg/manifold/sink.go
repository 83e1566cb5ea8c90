package manifold

import (
	"fmt"
	"io"

	"github.com/df07/go-manifold-mlt/pkg/path"
)

// TraceSink observes the walk iteration by iteration. Implementations
// must be cheap; the walk calls the sink on every Newton step.
type TraceSink interface {
	Iteration(iter int, p *path.Subpath, beta float64)
}

// NopSink discards all trace events
type NopSink struct{}

func (NopSink) Iteration(iter int, p *path.Subpath, beta float64) {}

// WriterSink logs each iteration's chain positions, for debugging
// non-converging walks
type WriterSink struct {
	W io.Writer
}

func (s WriterSink) Iteration(iter int, p *path.Subpath, beta float64) {
	fmt.Fprintf(s.W, "iter %d beta %.4g:", iter, beta)
	for _, v := range p.Vertices {
		fmt.Fprintf(s.W, " (%.5f %.5f %.5f)", v.Geom.P.X, v.Geom.P.Y, v.Geom.P.Z)
	}
	fmt.Fprintln(s.W)
}
