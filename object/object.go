// Package object holds the engine-independent description of one rigid body
// and the factories that build bodies and joints from it.
package object

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/milk9111/armsim/common"
	"github.com/milk9111/armsim/physics"
	"github.com/milk9111/armsim/shape"
)

var ErrUnbuiltBody = errors.New("object: body not built")

// Color is a display color with channels in [0, 1].
type Color struct {
	R, G, B float64
}

// Gray returns the color with all channels at v.
func Gray(v float64) Color {
	return Color{R: v, G: v, B: v}
}

// JointSpec is the world-frame anchor and axis of the hinge that attaches
// an object to its parent. Fixed joints ignore it.
type JointSpec struct {
	Anchor mgl64.Vec3
	Axis   mgl64.Vec3
}

// Object is the full static description of one rigid body.
type Object struct {
	Name   string
	Shape  shape.Shape
	Center mgl64.Vec3
	// Axis and Angle give the initial rotation. A zero axis means identity.
	Axis  mgl64.Vec3
	Angle float64
	Color Color
	Joint JointSpec
}

// Rotation returns the initial rotation matrix.
func (o Object) Rotation() mgl64.Mat3 {
	return common.AxisAngle(o.Axis, o.Angle)
}

func (o Object) String() string {
	kind := "unknown"
	if o.Shape != nil {
		kind = o.Shape.Kind().String()
	}
	if o.Name == "" {
		return kind
	}
	return fmt.Sprintf("%s(%s)", o.Name, kind)
}

// Body is a constructed object: one engine body and one geometry bound 1:1.
type Body struct {
	Object
	ID   physics.BodyID
	Geom physics.GeomID
}

// Built reports whether b holds an engine body.
func (b *Body) Built() bool {
	return b != nil && b.ID != physics.World
}

// Joint relates A to B, or to the world when B is nil.
type Joint struct {
	ID     physics.JointID
	Kind   physics.JointKind
	A      *Body
	B      *Body
	Anchor mgl64.Vec3
	Axis   mgl64.Vec3
}

func (j *Joint) String() string {
	if j == nil {
		return "<nil>"
	}
	parent := "world"
	if j.B != nil {
		parent = j.B.Object.String()
	}
	return fmt.Sprintf("%s %s->%s", j.Kind, j.A.Object.String(), parent)
}
