// Package render turns built bodies into draw calls on a Renderer.
package render

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/milk9111/armsim/object"
	"github.com/milk9111/armsim/physics"
	"github.com/milk9111/armsim/shape"
)

var ErrNilBody = errors.New("render: nil body")

// Neutral is the color restored after every draw.
var Neutral = object.Color{}

// Renderer draws primitives whose long axis is their local z axis.
type Renderer interface {
	SetViewpoint(xyz, hpr mgl64.Vec3)
	SetColor(r, g, b float64)
	DrawCylinder(pos mgl64.Vec3, rot mgl64.Mat3, length, radius float64)
	DrawBox(pos mgl64.Vec3, rot mgl64.Mat3, sides mgl64.Vec3)
	DrawCapsule(pos mgl64.Vec3, rot mgl64.Mat3, length, radius float64)
	DrawSphere(pos mgl64.Vec3, rot mgl64.Mat3, radius float64)
}

// Draw issues one primitive for b at its live pose, in b's color. The color
// is reset to Neutral afterwards. A body whose shape fails validation is not
// drawn and r is not touched.
func Draw(r Renderer, eng physics.Engine, b *object.Body) error {
	if b == nil {
		return ErrNilBody
	}
	if err := shape.Check(b.Shape); err != nil {
		return fmt.Errorf("render: draw %s: %w", b.Object, err)
	}
	pos, err := eng.Position(b.ID)
	if err != nil {
		return fmt.Errorf("render: draw %s: %w", b.Object, err)
	}
	rot, err := eng.Rotation(b.ID)
	if err != nil {
		return fmt.Errorf("render: draw %s: %w", b.Object, err)
	}

	d := b.Shape.Dims()
	r.SetColor(b.Color.R, b.Color.G, b.Color.B)
	switch s := b.Shape.(type) {
	case shape.Cylinder:
		r.DrawCylinder(pos, rot.Mul3(d.Alignment()), s.L, s.R)
	case shape.Capsule:
		r.DrawCapsule(pos, rot.Mul3(d.Alignment()), s.L, s.R)
	case shape.Box:
		r.DrawBox(pos, rot, mgl64.Vec3{s.Lx, s.Ly, s.Lz})
	case shape.Sphere:
		r.DrawSphere(pos, rot, s.R)
	}
	r.SetColor(Neutral.R, Neutral.G, Neutral.B)
	return nil
}
