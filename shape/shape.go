// Package shape describes the rigid-body primitives of the arm: a closed set
// of shape cases, each carrying the dimensions from which both the mass tensor
// and the collision geometry are derived.
package shape

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	ErrUnknownShape = errors.New("shape: unknown shape")
	ErrInvalidDims  = errors.New("shape: invalid dimensions")
)

// ShapeError reports which shape tag failed and why.
type ShapeError struct {
	Tag string
	Err error
}

func (e *ShapeError) Error() string {
	if e.Tag == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%v %q", e.Err, e.Tag)
}

func (e *ShapeError) Unwrap() error {
	return e.Err
}

type Kind int

const (
	KindUnknown Kind = iota
	KindCylinder
	KindBox
	KindCapsule
	KindSphere
)

func (k Kind) String() string {
	switch k {
	case KindCylinder:
		return "cylinder"
	case KindBox:
		return "box"
	case KindCapsule:
		return "capsule"
	case KindSphere:
		return "sphere"
	default:
		return "unknown"
	}
}

// Axis selects a local body axis: 1 = x, 2 = y, 3 = z.
type Axis int

const (
	AxisX Axis = 1
	AxisY Axis = 2
	AxisZ Axis = 3
)

func (a Axis) Valid() bool {
	return a >= AxisX && a <= AxisZ
}

// Shape is one of Cylinder, Box, Capsule, Sphere or Unknown.
type Shape interface {
	Kind() Kind
	Dims() Dims
	Validate() error

	sealed()
}

// Dims is the single dimensional record of a shape. Length and LongAxis are
// set for cylinders and capsules, Extents for boxes, Radius for everything
// but boxes.
type Dims struct {
	Kind     Kind
	Mass     float64
	Radius   float64
	Length   float64
	Extents  [3]float64
	LongAxis Axis
}

type Cylinder struct {
	M        float64
	L        float64
	R        float64
	LongAxis Axis
}

type Capsule struct {
	M        float64
	L        float64
	R        float64
	LongAxis Axis
}

type Box struct {
	M  float64
	Lx float64
	Ly float64
	Lz float64
}

type Sphere struct {
	M float64
	R float64
}

// Unknown holds a tag that names no shape. It never validates.
type Unknown struct {
	Tag string
}

func (Cylinder) Kind() Kind { return KindCylinder }
func (Capsule) Kind() Kind  { return KindCapsule }
func (Box) Kind() Kind      { return KindBox }
func (Sphere) Kind() Kind   { return KindSphere }
func (Unknown) Kind() Kind  { return KindUnknown }

func (Cylinder) sealed() {}
func (Capsule) sealed()  {}
func (Box) sealed()      {}
func (Sphere) sealed()   {}
func (Unknown) sealed()  {}

func (c Cylinder) Dims() Dims {
	return Dims{Kind: KindCylinder, Mass: c.M, Radius: c.R, Length: c.L, LongAxis: c.LongAxis}
}

func (c Capsule) Dims() Dims {
	return Dims{Kind: KindCapsule, Mass: c.M, Radius: c.R, Length: c.L, LongAxis: c.LongAxis}
}

func (b Box) Dims() Dims {
	return Dims{Kind: KindBox, Mass: b.M, Extents: [3]float64{b.Lx, b.Ly, b.Lz}}
}

func (s Sphere) Dims() Dims {
	return Dims{Kind: KindSphere, Mass: s.M, Radius: s.R}
}

func (Unknown) Dims() Dims {
	return Dims{}
}

func (c Cylinder) Validate() error {
	return validate("cylinder", c.LongAxis, c.M, c.L, c.R)
}

func (c Capsule) Validate() error {
	return validate("capsule", c.LongAxis, c.M, c.L, c.R)
}

func (b Box) Validate() error {
	return validate("box", AxisZ, b.M, b.Lx, b.Ly, b.Lz)
}

func (s Sphere) Validate() error {
	return validate("sphere", AxisZ, s.M, s.R)
}

func (u Unknown) Validate() error {
	return &ShapeError{Tag: u.Tag, Err: ErrUnknownShape}
}

func validate(tag string, axis Axis, values ...float64) error {
	if !axis.Valid() {
		return &ShapeError{Tag: tag, Err: fmt.Errorf("%w: long axis %d", ErrInvalidDims, axis)}
	}
	for _, v := range values {
		if !(v > 0) || math.IsInf(v, 0) {
			return &ShapeError{Tag: tag, Err: fmt.Errorf("%w: %v", ErrInvalidDims, v)}
		}
	}
	return nil
}

// Check validates s, treating a nil shape as unknown.
func Check(s Shape) error {
	if s == nil {
		return &ShapeError{Err: ErrUnknownShape}
	}
	return s.Validate()
}

// Params carries the raw fields for Parse. Fields a shape does not use are
// ignored.
type Params struct {
	Mass     float64
	Length   float64
	Radius   float64
	LongAxis Axis
	Extents  [3]float64
}

// Parse maps a shape tag to its case. An unrecognized tag returns Unknown
// together with an ErrUnknownShape error. Dimensions are not validated here.
func Parse(tag string, p Params) (Shape, error) {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case "cylinder":
		return Cylinder{M: p.Mass, L: p.Length, R: p.Radius, LongAxis: p.LongAxis}, nil
	case "capsule", "capped_cylinder":
		return Capsule{M: p.Mass, L: p.Length, R: p.Radius, LongAxis: p.LongAxis}, nil
	case "box":
		return Box{M: p.Mass, Lx: p.Extents[0], Ly: p.Extents[1], Lz: p.Extents[2]}, nil
	case "sphere":
		return Sphere{M: p.Mass, R: p.Radius}, nil
	default:
		u := Unknown{Tag: tag}
		return u, u.Validate()
	}
}
