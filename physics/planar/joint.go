package planar

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/jakecoffman/cp"

	"github.com/milk9111/armsim/common"
	"github.com/milk9111/armsim/physics"
)

// CreateFixedJoint pins b to a at a's center and locks their relative angle.
func (w *World) CreateFixedJoint(a, b physics.BodyID) (physics.JointID, error) {
	ca, cb, err := w.pair(a, b)
	if err != nil {
		return 0, fmt.Errorf("planar: fixed joint: %w", err)
	}
	rel := cb.Angle() - ca.Angle()
	j := &joint{
		kind: physics.JointFixed,
		a:    a,
		b:    b,
		constraints: []*cp.Constraint{
			cp.NewPivotJoint(ca, cb, ca.Position()),
			cp.NewRotaryLimitJoint(ca, cb, rel, rel),
		},
	}
	return w.addJoint(j), nil
}

// CreateHingeJoint pins a and b at anchor. The axis must lie along world y,
// the only rotation the plane admits.
func (w *World) CreateHingeJoint(a, b physics.BodyID, anchor, axis mgl64.Vec3) (physics.JointID, error) {
	ca, cb, err := w.pair(a, b)
	if err != nil {
		return 0, fmt.Errorf("planar: hinge joint: %w", err)
	}
	n := axis.Len()
	if n < common.Epsilon || !common.Finite(axis) {
		return 0, fmt.Errorf("planar: hinge joint axis %v: %w", axis, physics.ErrInvalidAxis)
	}
	ny := axis.Y() / n
	if math.Abs(ny) < 1-1e-9 {
		return 0, fmt.Errorf("planar: hinge joint axis %v out of plane: %w", axis, physics.ErrUnsupported)
	}
	j := &joint{
		kind:   physics.JointHinge,
		a:      a,
		b:      b,
		sign:   math.Copysign(1, ny),
		angle0: cb.Angle() - ca.Angle(),
		constraints: []*cp.Constraint{
			cp.NewPivotJoint(ca, cb, cp.Vector{X: anchor.X(), Y: anchor.Z()}),
		},
	}
	return w.addJoint(j), nil
}

// HingeAngle converts the planar relative angle into a rotation about the
// hinge axis. Chipmunk angles turn about -y.
func (w *World) HingeAngle(id physics.JointID) (float64, error) {
	if w.space == nil {
		return 0, physics.ErrClosed
	}
	j, ok := w.joints[id]
	if !ok || j.kind != physics.JointHinge {
		return 0, fmt.Errorf("planar: hinge %d: %w", id, physics.ErrNoJoint)
	}
	ca, err := w.cpBody(j.a)
	if err != nil {
		return 0, err
	}
	cb, err := w.cpBody(j.b)
	if err != nil {
		return 0, err
	}
	rel := cb.Angle() - ca.Angle() - j.angle0
	return -j.sign * rel, nil
}

func (w *World) pair(a, b physics.BodyID) (*cp.Body, *cp.Body, error) {
	if a == physics.World {
		return nil, nil, fmt.Errorf("first body must be dynamic: %w", physics.ErrNoBody)
	}
	if a == b {
		return nil, nil, fmt.Errorf("body %d joined to itself: %w", a, physics.ErrNoBody)
	}
	ca, err := w.cpBody(a)
	if err != nil {
		return nil, nil, err
	}
	cb, err := w.cpBody(b)
	if err != nil {
		return nil, nil, err
	}
	return ca, cb, nil
}

func (w *World) addJoint(j *joint) physics.JointID {
	bias := math.Pow(1-w.erp, 1/w.step)
	for _, c := range j.constraints {
		c.SetErrorBias(bias)
		w.space.AddConstraint(c)
	}
	w.nextJoint++
	w.joints[w.nextJoint] = j
	return w.nextJoint
}

func (w *World) removeJoint(id physics.JointID) {
	j, ok := w.joints[id]
	if !ok {
		return
	}
	for _, c := range j.constraints {
		w.space.RemoveConstraint(c)
	}
	delete(w.joints, id)
}
