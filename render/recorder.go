package render

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/milk9111/armsim/object"
)

// Call is one recorded primitive.
type Call struct {
	Op     string       `yaml:"op"`
	Pos    mgl64.Vec3   `yaml:"pos,flow"`
	Rot    mgl64.Mat3   `yaml:"rot,flow"`
	Length float64      `yaml:"length,omitempty"`
	Radius float64      `yaml:"radius,omitempty"`
	Sides  mgl64.Vec3   `yaml:"sides,flow,omitempty"`
	Color  object.Color `yaml:"color,flow"`
}

// Recorder is a Renderer that keeps every primitive it is asked to draw.
type Recorder struct {
	Calls     []Call
	Color     object.Color
	ColorSets int
	XYZ, HPR  mgl64.Vec3
}

func (r *Recorder) SetViewpoint(xyz, hpr mgl64.Vec3) {
	r.XYZ, r.HPR = xyz, hpr
}

func (r *Recorder) SetColor(red, green, blue float64) {
	r.Color = object.Color{R: red, G: green, B: blue}
	r.ColorSets++
}

func (r *Recorder) DrawCylinder(pos mgl64.Vec3, rot mgl64.Mat3, length, radius float64) {
	r.record(Call{Op: "cylinder", Pos: pos, Rot: rot, Length: length, Radius: radius})
}

func (r *Recorder) DrawBox(pos mgl64.Vec3, rot mgl64.Mat3, sides mgl64.Vec3) {
	r.record(Call{Op: "box", Pos: pos, Rot: rot, Sides: sides})
}

func (r *Recorder) DrawCapsule(pos mgl64.Vec3, rot mgl64.Mat3, length, radius float64) {
	r.record(Call{Op: "capsule", Pos: pos, Rot: rot, Length: length, Radius: radius})
}

func (r *Recorder) DrawSphere(pos mgl64.Vec3, rot mgl64.Mat3, radius float64) {
	r.record(Call{Op: "sphere", Pos: pos, Rot: rot, Radius: radius})
}

func (r *Recorder) record(c Call) {
	c.Color = r.Color
	r.Calls = append(r.Calls, c)
}

// Reset drops recorded calls but keeps the current color and viewpoint.
func (r *Recorder) Reset() {
	r.Calls = r.Calls[:0]
	r.ColorSets = 0
}
