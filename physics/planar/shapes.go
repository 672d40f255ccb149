package planar

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/jakecoffman/cp"

	"github.com/milk9111/armsim/shape"
)

// rimSegments is the number of samples per cylinder cap used to build its
// projected outline.
const rimSegments = 16

// armFilter keeps the arm's own shapes from colliding with each other.
var armFilter = cp.NewShapeFilter(1, cp.ALL_CATEGORIES, cp.ALL_CATEGORIES)

// rebuildShapes replaces the Chipmunk shapes of b with projections of its
// geometry through the current base orientation.
func (w *World) rebuildShapes(b *body) {
	for _, s := range b.shapes {
		w.space.RemoveShape(s)
	}
	b.shapes = b.shapes[:0]

	for _, gid := range b.geoms {
		g, ok := w.geoms[gid]
		if !ok {
			continue
		}
		s := project(b.body, g.dims, b.base)
		if s == nil {
			continue
		}
		s.SetCollisionType(collisionTypeArm)
		s.SetFilter(armFilter)
		s.SetFriction(0.8)
		w.space.AddShape(s)
		b.shapes = append(b.shapes, s)
	}
}

// project builds the silhouette of d in the x-z plane after rotating it by
// base. Chipmunk's (x, y) are world (x, z).
func project(cb *cp.Body, d shape.Dims, base mgl64.Mat3) *cp.Shape {
	frame := base.Mul3(d.Alignment())
	flat := func(v mgl64.Vec3) cp.Vector {
		p := frame.Mul3x1(v)
		return cp.Vector{X: p.X(), Y: p.Z()}
	}

	switch d.Kind {
	case shape.KindSphere:
		return cp.NewCircle(cb, d.Radius, cp.Vector{})
	case shape.KindCapsule:
		a := flat(mgl64.Vec3{0, 0, -d.Length / 2})
		b := flat(mgl64.Vec3{0, 0, d.Length / 2})
		if a.Distance(b) < 1e-9 {
			return cp.NewCircle(cb, d.Radius, cp.Vector{})
		}
		return cp.NewSegment(cb, a, b, d.Radius)
	case shape.KindCylinder:
		verts := make([]cp.Vector, 0, 2*rimSegments)
		for i := 0; i < rimSegments; i++ {
			t := 2 * math.Pi * float64(i) / rimSegments
			x, y := d.Radius*math.Cos(t), d.Radius*math.Sin(t)
			verts = append(verts,
				flat(mgl64.Vec3{x, y, -d.Length / 2}),
				flat(mgl64.Vec3{x, y, d.Length / 2}),
			)
		}
		return cp.NewPolyShape(cb, len(verts), verts, cp.NewTransformIdentity(), 0)
	case shape.KindBox:
		hx, hy, hz := d.Extents[0]/2, d.Extents[1]/2, d.Extents[2]/2
		verts := make([]cp.Vector, 0, 8)
		for _, sx := range []float64{-1, 1} {
			for _, sy := range []float64{-1, 1} {
				for _, sz := range []float64{-1, 1} {
					verts = append(verts, flat(mgl64.Vec3{sx * hx, sy * hy, sz * hz}))
				}
			}
		}
		return cp.NewPolyShape(cb, len(verts), verts, cp.NewTransformIdentity(), 0)
	default:
		return nil
	}
}
