package scene

import (
	"github.com/df07/go-manifold-mlt/pkg/core"
)

// NewCornellBoxScene builds the default box scene: colored walls, an
// area light under the ceiling, a glass sphere and a glossy sphere
func NewCornellBoxScene(aspect float64) *Scene {
	white := core.NewVec3(0.8, 0.8, 0.8)
	red := core.NewVec3(0.8, 0.2, 0.2)
	green := core.NewVec3(0.2, 0.8, 0.2)

	lightQuad := NewQuad(core.NewVec3(-0.25, 1.99, -0.25), core.NewVec3(0.5, 0, 0), core.NewVec3(0, 0, 0.5))

	primitives := []*Primitive{
		{
			Name:  "floor",
			Shape: NewQuad(core.NewVec3(-1, 0, -1), core.NewVec3(0, 0, 2), core.NewVec3(2, 0, 0)),
			Bsdf:  &DiffuseBSDF{R: white},
		},
		{
			Name:  "ceiling",
			Shape: NewQuad(core.NewVec3(-1, 2, -1), core.NewVec3(2, 0, 0), core.NewVec3(0, 0, 2)),
			Bsdf:  &DiffuseBSDF{R: white},
		},
		{
			Name:  "back",
			Shape: NewQuad(core.NewVec3(-1, 0, -1), core.NewVec3(2, 0, 0), core.NewVec3(0, 2, 0)),
			Bsdf:  &DiffuseBSDF{R: white},
		},
		{
			Name:  "left",
			Shape: NewQuad(core.NewVec3(-1, 0, -1), core.NewVec3(0, 2, 0), core.NewVec3(0, 0, 2)),
			Bsdf:  &DiffuseBSDF{R: red},
		},
		{
			Name:  "right",
			Shape: NewQuad(core.NewVec3(1, 0, -1), core.NewVec3(0, 0, 2), core.NewVec3(0, 2, 0)),
			Bsdf:  &DiffuseBSDF{R: green},
		},
		{
			Name:  "light",
			Shape: lightQuad,
			Light: &AreaLight{Le: core.NewVec3(10, 10, 10), Quad: lightQuad},
		},
		{
			Name:  "glass-sphere",
			Shape: NewSphere(core.NewVec3(-0.45, 0.4, 0.2), 0.4),
			Bsdf:  &FresnelBSDF{R: core.NewVec3(1, 1, 1), Eta1: 1.0, Eta2: 1.5},
		},
		{
			Name:  "glossy-sphere",
			Shape: NewSphere(core.NewVec3(0.45, 0.35, -0.3), 0.35),
			Bsdf:  &GlossyBSDF{R: core.NewVec3(0.9, 0.7, 0.4), Roughness: 0.15},
		},
		{
			Name:   "camera",
			Sensor: NewPinholeSensor(core.NewVec3(0, 1, 3.6), core.NewVec3(0, 1, 0), core.NewVec3(0, 1, 0), 40, aspect),
		},
	}
	return NewScene(primitives)
}

// NewCausticScene builds a glass sphere over a diffuse floor lit from
// above, the standard setup for specular chain exploration
func NewCausticScene(aspect float64) *Scene {
	lightQuad := NewQuad(core.NewVec3(-0.3, 3, -0.3), core.NewVec3(0.6, 0, 0), core.NewVec3(0, 0, 0.6))

	primitives := []*Primitive{
		{
			Name:  "floor",
			Shape: NewQuad(core.NewVec3(-4, 0, -4), core.NewVec3(0, 0, 8), core.NewVec3(8, 0, 0)),
			Bsdf:  &DiffuseBSDF{R: core.NewVec3(0.7, 0.7, 0.7)},
		},
		{
			Name:  "light",
			Shape: lightQuad,
			Light: &AreaLight{Le: core.NewVec3(40, 40, 40), Quad: lightQuad},
		},
		{
			Name:  "glass-sphere",
			Shape: NewSphere(core.NewVec3(0, 0.7, 0), 0.7),
			Bsdf:  &FresnelBSDF{R: core.NewVec3(1, 1, 1), Eta1: 1.0, Eta2: 1.5},
		},
		{
			Name:   "camera",
			Sensor: NewPinholeSensor(core.NewVec3(0, 1.8, 3.2), core.NewVec3(0, 0.5, 0), core.NewVec3(0, 1, 0), 45, aspect),
		},
	}
	return NewScene(primitives)
}

// ByName looks up a built-in scene constructor
func ByName(name string, aspect float64) (*Scene, bool) {
	switch name {
	case "box":
		return NewCornellBoxScene(aspect), true
	case "caustic":
		return NewCausticScene(aspect), true
	}
	return nil, false
}
