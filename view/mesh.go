package view

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// triangle is a flat-shaded face in a primitive's local frame. Vertices wind
// counter-clockwise seen from outside, so N points away from the solid.
type triangle struct {
	V [3]mgl64.Vec3
	N mgl64.Vec3
}

func face(a, b, c mgl64.Vec3) triangle {
	n := b.Sub(a).Cross(c.Sub(a))
	if l := n.Len(); l > 0 {
		n = n.Mul(1 / l)
	}
	return triangle{V: [3]mgl64.Vec3{a, b, c}, N: n}
}

func quad(a, b, c, d mgl64.Vec3) []triangle {
	return []triangle{face(a, b, c), face(a, c, d)}
}

// boxMesh returns the twelve faces of a box centered on the origin.
func boxMesh(sides mgl64.Vec3) []triangle {
	h := sides.Mul(0.5)
	p := func(sx, sy, sz float64) mgl64.Vec3 {
		return mgl64.Vec3{sx * h.X(), sy * h.Y(), sz * h.Z()}
	}
	var out []triangle
	out = append(out, quad(p(1, -1, -1), p(1, 1, -1), p(1, 1, 1), p(1, -1, 1))...)
	out = append(out, quad(p(-1, 1, -1), p(-1, -1, -1), p(-1, -1, 1), p(-1, 1, 1))...)
	out = append(out, quad(p(1, 1, -1), p(-1, 1, -1), p(-1, 1, 1), p(1, 1, 1))...)
	out = append(out, quad(p(-1, -1, -1), p(1, -1, -1), p(1, -1, 1), p(-1, -1, 1))...)
	out = append(out, quad(p(-1, -1, 1), p(1, -1, 1), p(1, 1, 1), p(-1, 1, 1))...)
	out = append(out, quad(p(-1, 1, -1), p(1, 1, -1), p(1, -1, -1), p(-1, -1, -1))...)
	return out
}

// cylinderMesh returns a capped cylinder along z centered on the origin.
func cylinderMesh(length, radius float64, slices int) []triangle {
	hz := length / 2
	top := mgl64.Vec3{0, 0, hz}
	bottom := mgl64.Vec3{0, 0, -hz}
	out := make([]triangle, 0, 4*slices)
	for i := 0; i < slices; i++ {
		a0 := 2 * math.Pi * float64(i) / float64(slices)
		a1 := 2 * math.Pi * float64(i+1) / float64(slices)
		r0 := mgl64.Vec3{radius * math.Cos(a0), radius * math.Sin(a0), 0}
		r1 := mgl64.Vec3{radius * math.Cos(a1), radius * math.Sin(a1), 0}
		b0, b1 := r0.Add(bottom), r1.Add(bottom)
		t0, t1 := r0.Add(top), r1.Add(top)
		out = append(out, quad(b0, b1, t1, t0)...)
		out = append(out, face(top, t0, t1), face(bottom, b1, b0))
	}
	return out
}

// sphereMesh returns a latitude-longitude sphere. The z range can be cut to
// build the hemispherical caps of a capsule: faces are kept only where
// lat is within [lat0, lat1] radians, and the whole patch is shifted by dz.
func sphereMesh(radius float64, stacks, slices int, lat0, lat1, dz float64) []triangle {
	point := func(lat, lon float64) mgl64.Vec3 {
		c := math.Cos(lat)
		return mgl64.Vec3{radius * c * math.Cos(lon), radius * c * math.Sin(lon), radius*math.Sin(lat) + dz}
	}
	var out []triangle
	for i := 0; i < stacks; i++ {
		la := -math.Pi/2 + math.Pi*float64(i)/float64(stacks)
		lb := -math.Pi/2 + math.Pi*float64(i+1)/float64(stacks)
		if lb <= lat0+1e-12 || la >= lat1-1e-12 {
			continue
		}
		for j := 0; j < slices; j++ {
			oa := 2 * math.Pi * float64(j) / float64(slices)
			ob := 2 * math.Pi * float64(j+1) / float64(slices)
			p00, p01 := point(la, oa), point(la, ob)
			p10, p11 := point(lb, oa), point(lb, ob)
			switch {
			case i == 0:
				out = append(out, face(p00, p11, p10))
			case i == stacks-1:
				out = append(out, face(p00, p01, p11))
			default:
				out = append(out, quad(p00, p01, p11, p10)...)
			}
		}
	}
	return out
}

// capsuleMesh is an open cylinder of the given length with a hemisphere at
// each end.
func capsuleMesh(length, radius float64, stacks, slices int) []triangle {
	hz := length / 2
	out := make([]triangle, 0, 2*slices+stacks*slices)
	for i := 0; i < slices; i++ {
		a0 := 2 * math.Pi * float64(i) / float64(slices)
		a1 := 2 * math.Pi * float64(i+1) / float64(slices)
		r0 := mgl64.Vec3{radius * math.Cos(a0), radius * math.Sin(a0), 0}
		r1 := mgl64.Vec3{radius * math.Cos(a1), radius * math.Sin(a1), 0}
		out = append(out, quad(r0.Sub(mgl64.Vec3{0, 0, hz}), r1.Sub(mgl64.Vec3{0, 0, hz}), r1.Add(mgl64.Vec3{0, 0, hz}), r0.Add(mgl64.Vec3{0, 0, hz}))...)
	}
	out = append(out, sphereMesh(radius, stacks, slices, 0, math.Pi/2, hz)...)
	out = append(out, sphereMesh(radius, stacks, slices, -math.Pi/2, 0, -hz)...)
	return out
}

// sphereDetail maps a sphere quality level to stack and slice counts.
func sphereDetail(quality int) (stacks, slices int) {
	if quality < 1 {
		quality = 1
	}
	stacks = 4 * (quality + 1)
	return stacks, 2 * stacks
}
