package object

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/milk9111/armsim/physics"
	"github.com/milk9111/armsim/shape"
)

// CreateBody builds o in eng. The shape is validated and its mass tensor
// computed before the engine is touched, so a bad shape leaves no trace. If a
// later engine call fails the partial body is destroyed.
func CreateBody(eng physics.Engine, o Object) (*Body, error) {
	if eng == nil {
		return nil, fmt.Errorf("object: create %s: nil engine", o)
	}
	if err := shape.Check(o.Shape); err != nil {
		return nil, fmt.Errorf("object: create %s: %w", o, err)
	}
	mass, err := shape.MassOf(o.Shape)
	if err != nil {
		return nil, fmt.Errorf("object: create %s: %w", o, err)
	}
	rot := o.Rotation()

	id, err := eng.CreateBody()
	if err != nil {
		return nil, fmt.Errorf("object: create %s: %w", o, err)
	}

	geom, err := buildBody(eng, id, o, mass, rot)
	if err != nil {
		if derr := eng.DestroyBody(id); derr != nil {
			err = errors.Join(err, derr)
		}
		return nil, fmt.Errorf("object: create %s: %w", o, err)
	}

	return &Body{Object: o, ID: id, Geom: geom}, nil
}

func buildBody(eng physics.Engine, id physics.BodyID, o Object, mass shape.Mass, rot mgl64.Mat3) (physics.GeomID, error) {
	if err := eng.SetPosition(id, o.Center); err != nil {
		return 0, err
	}
	if err := eng.SetMass(id, mass); err != nil {
		return 0, err
	}
	geom, err := eng.CreateGeom(o.Shape)
	if err != nil {
		return 0, err
	}
	if err := eng.SetGeomBody(geom, id); err != nil {
		return 0, errors.Join(err, eng.DestroyGeom(geom))
	}
	if err := eng.SetRotation(id, rot); err != nil {
		return 0, err
	}
	return geom, nil
}

// CreateFixedJoint locks a to the world at its current pose.
func CreateFixedJoint(eng physics.Engine, a *Body) (*Joint, error) {
	return CreateFixedJointBetween(eng, a, nil)
}

// CreateFixedJointBetween locks a to b at their current relative pose. A nil
// b is the world.
func CreateFixedJointBetween(eng physics.Engine, a, b *Body) (*Joint, error) {
	if err := requireBuilt(a, b); err != nil {
		return nil, fmt.Errorf("object: fixed joint: %w", err)
	}
	id, err := eng.CreateFixedJoint(a.ID, parentID(b))
	if err != nil {
		return nil, fmt.Errorf("object: fixed joint %s: %w", a.Object, err)
	}
	return &Joint{ID: id, Kind: physics.JointFixed, A: a, B: b}, nil
}

// CreateHingeJoint attaches a to b with one rotational freedom about axis
// through the world point anchor. A nil b is the world.
func CreateHingeJoint(eng physics.Engine, a, b *Body, anchor, axis mgl64.Vec3) (*Joint, error) {
	if err := requireBuilt(a, b); err != nil {
		return nil, fmt.Errorf("object: hinge joint: %w", err)
	}
	id, err := eng.CreateHingeJoint(a.ID, parentID(b), anchor, axis)
	if err != nil {
		return nil, fmt.Errorf("object: hinge joint %s: %w", a.Object, err)
	}
	return &Joint{ID: id, Kind: physics.JointHinge, A: a, B: b, Anchor: anchor, Axis: axis}, nil
}

func requireBuilt(a, b *Body) error {
	if !a.Built() {
		return ErrUnbuiltBody
	}
	if b != nil && !b.Built() {
		return ErrUnbuiltBody
	}
	return nil
}

func parentID(b *Body) physics.BodyID {
	if b == nil {
		return physics.World
	}
	return b.ID
}
