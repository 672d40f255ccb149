package rigid

import (
	"fmt"
	"math"
	"slices"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/milk9111/armsim/common"
	"github.com/milk9111/armsim/physics"
)

type joint struct {
	kind physics.JointKind
	a, b physics.BodyID

	// Anchor in each frame. For the world frame this is a world point.
	localA, localB mgl64.Vec3
	// relRot is b's orientation seen from a at attach time (fixed joints).
	relRot mgl64.Quat
	// Hinge axis and a perpendicular reference direction in each frame.
	axisA, axisB mgl64.Vec3
	refA, refB   mgl64.Vec3
}

// CreateFixedJoint locks b's pose relative to a. The anchor is a's center.
func (w *World) CreateFixedJoint(a, b physics.BodyID) (physics.JointID, error) {
	ba, bb, err := w.pair(a, b)
	if err != nil {
		return 0, fmt.Errorf("rigid: fixed joint: %w", err)
	}
	anchor := position(ba)
	j := &joint{
		kind:   physics.JointFixed,
		a:      a,
		b:      b,
		localA: toLocal(ba, anchor),
		localB: toLocal(bb, anchor),
		relRot: orientation(ba).Conjugate().Mul(orientation(bb)).Normalize(),
	}
	return w.addJoint(j), nil
}

func (w *World) CreateHingeJoint(a, b physics.BodyID, anchor, axis mgl64.Vec3) (physics.JointID, error) {
	ba, bb, err := w.pair(a, b)
	if err != nil {
		return 0, fmt.Errorf("rigid: hinge joint: %w", err)
	}
	n := axis.Len()
	if n < common.Epsilon || !common.Finite(axis) {
		return 0, fmt.Errorf("rigid: hinge joint axis %v: %w", axis, physics.ErrInvalidAxis)
	}
	axis = axis.Mul(1 / n)
	ref := perpendicular(axis)
	qa, qb := orientation(ba).Conjugate(), orientation(bb).Conjugate()
	j := &joint{
		kind:   physics.JointHinge,
		a:      a,
		b:      b,
		localA: toLocal(ba, anchor),
		localB: toLocal(bb, anchor),
		axisA:  qa.Rotate(axis),
		axisB:  qb.Rotate(axis),
		refA:   qa.Rotate(ref),
		refB:   qb.Rotate(ref),
	}
	return w.addJoint(j), nil
}

// HingeAngle is the signed rotation of b relative to a about the hinge axis.
func (w *World) HingeAngle(id physics.JointID) (float64, error) {
	if w.closed {
		return 0, physics.ErrClosed
	}
	j, ok := w.joints[id]
	if !ok || j.kind != physics.JointHinge {
		return 0, fmt.Errorf("rigid: hinge %d: %w", id, physics.ErrNoJoint)
	}
	ba, bb := w.bodies[j.a], w.bodies[j.b]
	axis := orientation(ba).Rotate(j.axisA)
	ra := orientation(ba).Rotate(j.refA)
	rb := orientation(bb).Rotate(j.refB)
	return math.Atan2(ra.Cross(rb).Dot(axis), ra.Dot(rb)), nil
}

// Joints returns the number of live joints.
func (w *World) Joints() int {
	return len(w.joints)
}

func (w *World) pair(a, b physics.BodyID) (*body, *body, error) {
	if a == physics.World {
		return nil, nil, fmt.Errorf("first body must be dynamic: %w", physics.ErrNoBody)
	}
	ba, err := w.frame(a)
	if err != nil {
		return nil, nil, err
	}
	bb, err := w.frame(b)
	if err != nil {
		return nil, nil, err
	}
	if a == b {
		return nil, nil, fmt.Errorf("body %d joined to itself: %w", a, physics.ErrNoBody)
	}
	return ba, bb, nil
}

func (w *World) addJoint(j *joint) physics.JointID {
	w.nextJoint++
	w.joints[w.nextJoint] = j
	w.jointOrder = append(w.jointOrder, w.nextJoint)
	return w.nextJoint
}

func (w *World) removeJoint(id physics.JointID) {
	delete(w.joints, id)
	w.jointOrder = slices.DeleteFunc(w.jointOrder, func(v physics.JointID) bool { return v == id })
}

// solve projects one joint back onto its constraint manifold.
func (w *World) solve(j *joint, dt float64) {
	ba, bb := w.bodies[j.a], w.bodies[j.b]
	pa := toWorld(ba, j.localA)
	pb := toWorld(bb, j.localB)
	w.correctPosition(ba, bb, pa.Sub(position(ba)), pb.Sub(position(bb)), pa.Sub(pb), dt)

	switch j.kind {
	case physics.JointFixed:
		dq := orientation(ba).Mul(j.relRot).Mul(orientation(bb).Conjugate())
		if dq.W < 0 {
			dq = dq.Scale(-1)
		}
		w.correctRotation(ba, bb, dq.V.Mul(2), dt)
	case physics.JointHinge:
		ua := orientation(ba).Rotate(j.axisA)
		ub := orientation(bb).Rotate(j.axisB)
		w.correctRotation(ba, bb, ub.Cross(ua), dt)
	}
}

// correctPosition moves the anchor points ra on a and rb on b together, where
// d is the world offset of a's anchor from b's.
func (w *World) correctPosition(a, b *body, ra, rb, d mgl64.Vec3, dt float64) {
	c := d.Len()
	if c < common.Epsilon {
		return
	}
	n := d.Mul(1 / c)
	wa := positionalWeight(a, ra, n)
	wb := positionalWeight(b, rb, n)
	sum := wa + wb + w.compliance(dt)
	if sum <= 0 {
		return
	}
	p := n.Mul(w.erp * c / sum)
	if a != nil {
		a.pos = a.pos.Sub(p.Mul(a.invMass))
		rotate(a, worldInvInertia(a).Mul3x1(ra.Cross(p)).Mul(-1))
	}
	if b != nil {
		b.pos = b.pos.Add(p.Mul(b.invMass))
		rotate(b, worldInvInertia(b).Mul3x1(rb.Cross(p)))
	}
}

// correctRotation removes the rotation e by which a leads b.
func (w *World) correctRotation(a, b *body, e mgl64.Vec3, dt float64) {
	theta := e.Len()
	if theta < common.Epsilon {
		return
	}
	n := e.Mul(1 / theta)
	wa := angularWeight(a, n)
	wb := angularWeight(b, n)
	sum := wa + wb + w.compliance(dt)
	if sum <= 0 {
		return
	}
	p := n.Mul(w.erp * theta / sum)
	if a != nil {
		rotate(a, worldInvInertia(a).Mul3x1(p).Mul(-1))
	}
	if b != nil {
		rotate(b, worldInvInertia(b).Mul3x1(p))
	}
}

func (w *World) compliance(dt float64) float64 {
	if w.cfm == 0 || dt == 0 {
		return 0
	}
	return w.cfm / (dt * dt)
}

func positionalWeight(b *body, r, n mgl64.Vec3) float64 {
	if b == nil {
		return 0
	}
	rn := r.Cross(n)
	return b.invMass + rn.Dot(worldInvInertia(b).Mul3x1(rn))
}

func angularWeight(b *body, n mgl64.Vec3) float64 {
	if b == nil {
		return 0
	}
	return n.Dot(worldInvInertia(b).Mul3x1(n))
}

func worldInvInertia(b *body) mgl64.Mat3 {
	r := b.rot.Mat4().Mat3()
	return r.Mul3(b.invInertia).Mul3(r.Transpose())
}

// rotate applies a small world-frame rotation vector to b's orientation.
func rotate(b *body, omega mgl64.Vec3) {
	dq := mgl64.Quat{W: 0, V: omega}.Mul(b.rot).Scale(0.5)
	b.rot = b.rot.Add(dq).Normalize()
}

func position(b *body) mgl64.Vec3 {
	if b == nil {
		return mgl64.Vec3{}
	}
	return b.pos
}

func orientation(b *body) mgl64.Quat {
	if b == nil {
		return mgl64.QuatIdent()
	}
	return b.rot
}

func toLocal(b *body, p mgl64.Vec3) mgl64.Vec3 {
	if b == nil {
		return p
	}
	return b.rot.Conjugate().Rotate(p.Sub(b.pos))
}

func toWorld(b *body, p mgl64.Vec3) mgl64.Vec3 {
	if b == nil {
		return p
	}
	return b.pos.Add(b.rot.Rotate(p))
}

func perpendicular(n mgl64.Vec3) mgl64.Vec3 {
	ref := mgl64.Vec3{1, 0, 0}
	if math.Abs(n.X()) > 0.9 {
		ref = mgl64.Vec3{0, 1, 0}
	}
	return n.Cross(ref).Normalize()
}
