package path

import (
	"github.com/df07/go-manifold-mlt/pkg/scene"
)

// Vertex is one surface interaction along a transport path. Endpoint
// vertices carry the Light or Eye type, interior vertices the type of
// their BSDF.
type Vertex struct {
	Type      scene.InteractionType
	Geom      scene.SurfaceGeometry
	Primitive *scene.Primitive
}

// IsSpecular reports whether the vertex scatters through a delta BSDF
func (v Vertex) IsSpecular() bool {
	return v.Type&scene.Specular != 0
}

// IsEndpointType reports whether the vertex type is Light or Eye
func (v Vertex) IsEndpointType() bool {
	return v.Type&scene.Emitter != 0
}

// Letter is the vertex type code used in path signatures
func (v Vertex) Letter() byte {
	return v.Type.Letter()
}
