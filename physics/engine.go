// Package physics defines the engine port the assembly layer builds through.
// Implementations live in physics/rigid (3D) and physics/planar (cp).
package physics

import (
	"errors"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/milk9111/armsim/shape"
)

var (
	ErrNoBody          = errors.New("physics: no such body")
	ErrNoGeom          = errors.New("physics: no such geometry")
	ErrNoJoint         = errors.New("physics: no such joint")
	ErrGeomBound       = errors.New("physics: geometry already bound")
	ErrCapacity        = errors.New("physics: capacity exhausted")
	ErrInvalidAxis     = errors.New("physics: invalid joint axis")
	ErrInvalidMass     = errors.New("physics: invalid mass")
	ErrUnsupported     = errors.New("physics: unsupported by engine")
	ErrClosed          = errors.New("physics: engine closed")
	ErrInvalidTimestep = errors.New("physics: invalid timestep")
)

type BodyID uint32
type GeomID uint32
type JointID uint32

// World is the static world frame. Joints attached to World lock against
// an immovable frame.
const World BodyID = 0

type JointKind int

const (
	JointFixed JointKind = iota + 1
	JointHinge
)

func (k JointKind) String() string {
	switch k {
	case JointFixed:
		return "fixed"
	case JointHinge:
		return "hinge"
	default:
		return "unknown"
	}
}

// Engine is a rigid-body simulation world. All positions, rotations, anchors
// and axes are in the world frame.
type Engine interface {
	CreateBody() (BodyID, error)
	DestroyBody(b BodyID) error
	SetPosition(b BodyID, p mgl64.Vec3) error
	SetRotation(b BodyID, r mgl64.Mat3) error
	SetMass(b BodyID, m shape.Mass) error
	Position(b BodyID) (mgl64.Vec3, error)
	Rotation(b BodyID) (mgl64.Mat3, error)
	AddForce(b BodyID, f mgl64.Vec3) error
	AddTorque(b BodyID, t mgl64.Vec3) error

	// CreateGeom allocates collision geometry sized from s.Dims().
	CreateGeom(s shape.Shape) (GeomID, error)
	// SetGeomBody binds g to b so that g tracks b's pose.
	SetGeomBody(g GeomID, b BodyID) error
	DestroyGeom(g GeomID) error

	// CreateFixedJoint locks the current relative pose of a and b. b may be World.
	CreateFixedJoint(a, b BodyID) (JointID, error)
	// CreateHingeJoint leaves one rotational freedom about axis through anchor.
	// b may be World.
	CreateHingeJoint(a, b BodyID, anchor, axis mgl64.Vec3) (JointID, error)
	// HingeAngle returns the rotation of b relative to a about the hinge axis
	// since the joint was created.
	HingeAngle(j JointID) (float64, error)

	Step(dt float64) error
	Close() error
}

// GeomInfo is the engine-side record of a collision geometry.
type GeomInfo struct {
	Body BodyID
	Dims shape.Dims
}

// Inspector is implemented by engines that expose the records they built
// bodies and geometries from.
type Inspector interface {
	Geom(g GeomID) (GeomInfo, error)
	Mass(b BodyID) (shape.Mass, error)
}

// Kinematics is implemented by engines that expose body velocities in the
// world frame.
type Kinematics interface {
	Velocity(b BodyID) (lin, ang mgl64.Vec3, err error)
}

// Stats counts live engine resources.
type Stats struct {
	Bodies int
	Geoms  int
	Joints int
}

// StatsReporter is implemented by engines that count their resources.
type StatsReporter interface {
	Stats() Stats
}
