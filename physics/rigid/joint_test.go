package rigid

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/milk9111/armsim/common"
	"github.com/milk9111/armsim/physics"
	"github.com/milk9111/armsim/shape"
)

func TestFixedJointHoldsUnderForce(t *testing.T) {
	cases := []struct {
		name  string
		force mgl64.Vec3
		rot   mgl64.Mat3
	}{
		{"push_x", mgl64.Vec3{50, 0, 0}, mgl64.Ident3()},
		{"lift", mgl64.Vec3{0, 0, 200}, common.AxisAngle(mgl64.Vec3{1, 0, 0}, math.Pi/2)},
		{"gravity_only", mgl64.Vec3{}, mgl64.Ident3()},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := NewWorld()
			start := mgl64.Vec3{0, 0, 0.35}
			id := newBody(t, w, shape.Cylinder{M: 0.7, L: 0.2, R: 0.04, LongAxis: shape.AxisZ}, start, c.rot)
			if _, err := w.CreateFixedJoint(id, physics.World); err != nil {
				t.Fatalf("CreateFixedJoint: %v", err)
			}
			for i := 0; i < 200; i++ {
				if err := w.AddForce(id, c.force); err != nil {
					t.Fatalf("AddForce: %v", err)
				}
				if err := w.AddTorque(id, mgl64.Vec3{0.1, 0, 0}); err != nil {
					t.Fatalf("AddTorque: %v", err)
				}
				if err := w.Step(common.TimeStep); err != nil {
					t.Fatalf("Step: %v", err)
				}
			}
			pos, _ := w.Position(id)
			if !near(pos, start, 1e-9) {
				t.Fatalf("expected position %v, got %v", start, pos)
			}
			rot, _ := w.Rotation(id)
			if !nearMat(rot, c.rot, 1e-6) {
				t.Fatalf("expected rotation %v, got %v", c.rot, rot)
			}
		})
	}
}

func TestFixedJointBetweenBodies(t *testing.T) {
	w := NewWorld()
	a := newBody(t, w, shape.Sphere{M: 1, R: 0.1}, mgl64.Vec3{0, 0, 1}, mgl64.Ident3())
	b := newBody(t, w, shape.Sphere{M: 1, R: 0.1}, mgl64.Vec3{0, 0, 1.5}, mgl64.Ident3())
	if _, err := w.CreateFixedJoint(b, a); err != nil {
		t.Fatalf("CreateFixedJoint: %v", err)
	}
	if _, err := w.CreateFixedJoint(a, physics.World); err != nil {
		t.Fatalf("CreateFixedJoint world: %v", err)
	}
	for i := 0; i < 500; i++ {
		if err := w.Step(common.TimeStep); err != nil {
			t.Fatalf("Step: %v", err)
		}
	}
	pa, _ := w.Position(a)
	pb, _ := w.Position(b)
	if d := pb.Sub(pa).Len(); math.Abs(d-0.5) > 1e-4 {
		t.Fatalf("expected separation 0.5, got %v", d)
	}
	if math.Abs(pb.Z()-1.5) > 1e-3 {
		t.Fatalf("expected chain held near z=1.5, got %v", pb.Z())
	}
}

func TestHingePreservesAnchorDistance(t *testing.T) {
	w := NewWorld(WithGravity(mgl64.Vec3{}), WithIterations(40))
	s := shape.Cylinder{M: 0.5, L: 0.1, R: 0.04, LongAxis: shape.AxisZ}
	a := newBody(t, w, s, mgl64.Vec3{0, 0, 0.2}, mgl64.Ident3())
	b := newBody(t, w, s, mgl64.Vec3{0, 0, 0.35}, mgl64.Ident3())
	anchor := mgl64.Vec3{0, 0, 0.25}
	axis := mgl64.Vec3{0, 1, 0}
	if _, err := w.CreateHingeJoint(a, b, anchor, axis); err != nil {
		t.Fatalf("CreateHingeJoint: %v", err)
	}

	startB, _ := w.Position(b)
	want := startB.Sub(anchor).Len()
	localAnchor := anchor.Sub(mgl64.Vec3{0, 0, 0.2})

	pa, _ := w.Position(a)
	if err := w.SetPosition(a, pa.Add(mgl64.Vec3{0.01, 0, 0.005})); err != nil {
		t.Fatalf("SetPosition: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := w.Step(common.TimeStep); err != nil {
			t.Fatalf("Step: %v", err)
		}

		pa, _ := w.Position(a)
		ra, _ := w.Rotation(a)
		pb, _ := w.Position(b)
		rb, _ := w.Rotation(b)
		anchorA := pa.Add(ra.Mul3x1(localAnchor))
		if got := pb.Sub(anchorA).Len(); math.Abs(got-want) > 1e-4 {
			t.Fatalf("step %d: expected anchor distance %v, got %v", i, want, got)
		}
		if dot := ra.Mul3x1(axis).Dot(rb.Mul3x1(axis)); dot < 1-1e-6 {
			t.Fatalf("step %d: hinge axes diverged, dot %v", i, dot)
		}
	}
}

func TestHingeAllowsRotationAboutAxisOnly(t *testing.T) {
	w := NewWorld(WithGravity(mgl64.Vec3{}))
	center := mgl64.Vec3{0, 0, 0.5}
	id := newBody(t, w, shape.Box{M: 1, Lx: 0.2, Ly: 0.2, Lz: 0.2}, center, mgl64.Ident3())
	j, err := w.CreateHingeJoint(id, physics.World, center, mgl64.Vec3{0, 0, 2})
	if err != nil {
		t.Fatalf("CreateHingeJoint: %v", err)
	}
	for i := 0; i < 100; i++ {
		if err := w.AddTorque(id, mgl64.Vec3{0.5, 0.5, 0.02}); err != nil {
			t.Fatalf("AddTorque: %v", err)
		}
		if err := w.Step(common.TimeStep); err != nil {
			t.Fatalf("Step: %v", err)
		}
	}

	rot, _ := w.Rotation(id)
	if z := rot.Mul3x1(mgl64.Vec3{0, 0, 1}); !near(z, mgl64.Vec3{0, 0, 1}, 1e-6) {
		t.Fatalf("hinge axis tilted to %v", z)
	}
	theta := math.Atan2(rot.At(1, 0), rot.At(0, 0))
	if theta <= 0 {
		t.Fatalf("expected positive rotation about z, got %v", theta)
	}
	angle, err := w.HingeAngle(j)
	if err != nil {
		t.Fatalf("HingeAngle: %v", err)
	}
	if math.Abs(angle+theta) > 1e-6 {
		t.Fatalf("expected hinge angle %v, got %v", -theta, angle)
	}
	pos, _ := w.Position(id)
	if !near(pos, center, 1e-9) {
		t.Fatalf("hinge center drifted to %v", pos)
	}
}

func TestHingeRejectsZeroAxis(t *testing.T) {
	w := NewWorld()
	id := newBody(t, w, shape.Sphere{M: 1, R: 0.1}, mgl64.Vec3{}, mgl64.Ident3())
	if _, err := w.CreateHingeJoint(id, physics.World, mgl64.Vec3{}, mgl64.Vec3{}); err == nil {
		t.Fatalf("expected error for zero axis")
	}
	if w.Joints() != 0 {
		t.Fatalf("expected no joints, got %d", w.Joints())
	}
}
