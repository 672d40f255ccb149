package shape

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Mass is a body mass tensor in the body frame.
type Mass struct {
	Total   float64
	Center  mgl64.Vec3
	Inertia mgl64.Mat3
	// Dims are the dimensions the tensor was computed from.
	Dims Dims
}

// MassOf computes the mass tensor of s for uniform density and total mass
// s's mass. The result is a fresh value on every call.
func MassOf(s Shape) (Mass, error) {
	if err := Check(s); err != nil {
		return Mass{}, err
	}

	d := s.Dims()
	var diag mgl64.Vec3
	switch v := s.(type) {
	case Cylinder:
		long := v.M * v.R * v.R / 2
		perp := v.M * (v.R*v.R/4 + v.L*v.L/12)
		diag = axial(v.LongAxis, long, perp)
	case Capsule:
		long, perp := capsuleInertia(v.M, v.R, v.L)
		diag = axial(v.LongAxis, long, perp)
	case Box:
		k := v.M / 12
		diag = mgl64.Vec3{
			k * (v.Ly*v.Ly + v.Lz*v.Lz),
			k * (v.Lx*v.Lx + v.Lz*v.Lz),
			k * (v.Lx*v.Lx + v.Ly*v.Ly),
		}
	case Sphere:
		i := 0.4 * v.M * v.R * v.R
		diag = mgl64.Vec3{i, i, i}
	case Unknown:
		return Mass{}, v.Validate()
	default:
		return Mass{}, &ShapeError{Tag: fmt.Sprintf("%T", s), Err: ErrUnknownShape}
	}

	return Mass{Total: d.Mass, Inertia: mgl64.Diag3(diag), Dims: d}, nil
}

// capsuleInertia returns the long and perpendicular moments of a capsule of
// total mass m, built from a cylinder of length l and two hemispherical caps.
func capsuleInertia(m, r, l float64) (long, perp float64) {
	m1 := math.Pi * r * r * l
	m2 := 4.0 / 3.0 * math.Pi * r * r * r
	scale := m / (m1 + m2)

	long = (0.5*m1 + 0.4*m2) * r * r
	perp = m1*(0.25*r*r+l*l/12) + m2*(0.4*r*r+0.375*r*l+0.25*l*l)
	return long * scale, perp * scale
}

func axial(axis Axis, long, perp float64) mgl64.Vec3 {
	diag := mgl64.Vec3{perp, perp, perp}
	diag[axis-1] = long
	return diag
}

// Alignment returns the rotation taking local +z onto the long axis. Engines
// and renderers that model primitives along z compose it onto the body
// rotation.
func Alignment(axis Axis) mgl64.Mat3 {
	switch axis {
	case AxisX:
		return mgl64.Rotate3DY(math.Pi / 2)
	case AxisY:
		return mgl64.Rotate3DX(-math.Pi / 2)
	default:
		return mgl64.Ident3()
	}
}

// Alignment returns the long-axis alignment, identity for shapes without one.
func (d Dims) Alignment() mgl64.Mat3 {
	switch d.Kind {
	case KindCylinder, KindCapsule:
		return Alignment(d.LongAxis)
	default:
		return mgl64.Ident3()
	}
}

// HalfExtents returns the half sizes of the shape's bounding box in its own
// frame, with the long axis already applied.
func (d Dims) HalfExtents() mgl64.Vec3 {
	switch d.Kind {
	case KindBox:
		return mgl64.Vec3{d.Extents[0] / 2, d.Extents[1] / 2, d.Extents[2] / 2}
	case KindSphere:
		return mgl64.Vec3{d.Radius, d.Radius, d.Radius}
	case KindCylinder, KindCapsule:
		half := mgl64.Vec3{d.Radius, d.Radius, d.Radius}
		if d.LongAxis.Valid() {
			half[d.LongAxis-1] = d.Length / 2
			if d.Kind == KindCapsule {
				half[d.LongAxis-1] += d.Radius
			}
		}
		return half
	default:
		return mgl64.Vec3{}
	}
}
