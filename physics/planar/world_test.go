package planar

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/milk9111/armsim/common"
	"github.com/milk9111/armsim/physics"
	"github.com/milk9111/armsim/shape"
)

func build(t *testing.T, w *World, s shape.Shape, pos mgl64.Vec3, rot mgl64.Mat3) physics.BodyID {
	t.Helper()
	id, err := w.CreateBody()
	if err != nil {
		t.Fatalf("CreateBody: %v", err)
	}
	m, err := shape.MassOf(s)
	if err != nil {
		t.Fatalf("MassOf: %v", err)
	}
	if err := w.SetPosition(id, pos); err != nil {
		t.Fatalf("SetPosition: %v", err)
	}
	if err := w.SetMass(id, m); err != nil {
		t.Fatalf("SetMass: %v", err)
	}
	g, err := w.CreateGeom(s)
	if err != nil {
		t.Fatalf("CreateGeom: %v", err)
	}
	if err := w.SetGeomBody(g, id); err != nil {
		t.Fatalf("SetGeomBody: %v", err)
	}
	if err := w.SetRotation(id, rot); err != nil {
		t.Fatalf("SetRotation: %v", err)
	}
	return id
}

func TestPlanarPose(t *testing.T) {
	w := NewWorld()
	defer w.Close()

	rot := common.AxisAngle(mgl64.Vec3{1, 0, 0}, math.Pi/2)
	pos := mgl64.Vec3{0.1, 0.2, 0.45}
	id := build(t, w, shape.Cylinder{M: 0.4, L: 0.1, R: 0.05, LongAxis: shape.AxisZ}, pos, rot)

	gotPos, err := w.Position(id)
	if err != nil {
		t.Fatalf("Position: %v", err)
	}
	if !near(gotPos, pos, 1e-12) {
		t.Fatalf("expected %v, got %v", pos, gotPos)
	}
	gotRot, err := w.Rotation(id)
	if err != nil {
		t.Fatalf("Rotation: %v", err)
	}
	if !nearMat(gotRot, rot, 1e-12) {
		t.Fatalf("expected %v, got %v", rot, gotRot)
	}
}

func TestPlanarMomentIsOutOfPlaneInertia(t *testing.T) {
	w := NewWorld()
	defer w.Close()

	s := shape.Cylinder{M: 0.4, L: 0.1, R: 0.05, LongAxis: shape.AxisZ}
	m, _ := shape.MassOf(s)
	rot := common.AxisAngle(mgl64.Vec3{1, 0, 0}, math.Pi/2)
	id := build(t, w, s, mgl64.Vec3{}, rot)

	// A quarter turn about x lays the long axis along y.
	want := m.Inertia.At(2, 2)
	if got := w.bodies[id].body.Moment(); math.Abs(got-want) > 1e-12 {
		t.Fatalf("expected moment %v, got %v", want, got)
	}
	if got := w.bodies[id].body.Mass(); got != m.Total {
		t.Fatalf("expected mass %v, got %v", m.Total, got)
	}
}

func TestPlanarGeomMatchesMass(t *testing.T) {
	w := NewWorld()
	defer w.Close()

	for _, s := range []shape.Shape{
		shape.Cylinder{M: 0.5, L: 0.2, R: 0.04, LongAxis: shape.AxisZ},
		shape.Capsule{M: 0.5, L: 0.2, R: 0.04, LongAxis: shape.AxisX},
		shape.Box{M: 1, Lx: 0.1, Ly: 0.1, Lz: 0.3},
		shape.Sphere{M: 1, R: 0.1},
	} {
		t.Run(s.Kind().String(), func(t *testing.T) {
			id := build(t, w, s, mgl64.Vec3{}, mgl64.Ident3())
			m, _ := w.Mass(id)
			b := w.bodies[id]
			info, err := w.Geom(b.geoms[0])
			if err != nil {
				t.Fatalf("Geom: %v", err)
			}
			if info.Dims != m.Dims {
				t.Fatalf("geom dims %+v differ from mass dims %+v", info.Dims, m.Dims)
			}
			shapes, _ := w.Shapes(id)
			if len(shapes) != 1 {
				t.Fatalf("expected one cp shape, got %d", len(shapes))
			}
		})
	}
}

func TestPlanarFixedJointHolds(t *testing.T) {
	w := NewWorld()
	defer w.Close()

	start := mgl64.Vec3{0, 0, 0.5}
	id := build(t, w, shape.Cylinder{M: 0.7, L: 0.2, R: 0.04, LongAxis: shape.AxisZ}, start, mgl64.Ident3())
	if _, err := w.CreateFixedJoint(id, physics.World); err != nil {
		t.Fatalf("CreateFixedJoint: %v", err)
	}
	for i := 0; i < 300; i++ {
		if err := w.AddForce(id, mgl64.Vec3{5, 0, 5}); err != nil {
			t.Fatalf("AddForce: %v", err)
		}
		if err := w.Step(common.TimeStep); err != nil {
			t.Fatalf("Step: %v", err)
		}
	}
	pos, _ := w.Position(id)
	if !near(pos, start, 1e-3) {
		t.Fatalf("expected %v, got %v", start, pos)
	}
	rot, _ := w.Rotation(id)
	if !nearMat(rot, mgl64.Ident3(), 1e-3) {
		t.Fatalf("fixed body rotated to %v", rot)
	}
}

func TestPlanarHinge(t *testing.T) {
	w := NewWorld()
	defer w.Close()

	s := shape.Cylinder{M: 0.5, L: 0.2, R: 0.04, LongAxis: shape.AxisZ}
	anchor := mgl64.Vec3{0, 0, 0.5}
	id := build(t, w, s, mgl64.Vec3{0.1, 0, 0.5}, common.AxisAngle(mgl64.Vec3{0, 1, 0}, math.Pi/2))
	j, err := w.CreateHingeJoint(id, physics.World, anchor, mgl64.Vec3{0, 1, 0})
	if err != nil {
		t.Fatalf("CreateHingeJoint: %v", err)
	}
	for i := 0; i < 150; i++ {
		if err := w.Step(common.TimeStep); err != nil {
			t.Fatalf("Step: %v", err)
		}
	}
	pos, _ := w.Position(id)
	if d := pos.Sub(anchor).Len(); math.Abs(d-0.1) > 1e-3 {
		t.Fatalf("expected anchor distance 0.1, got %v", d)
	}
	if pos.Z() >= 0.5 {
		t.Fatalf("expected the pendulum to swing down, z=%v", pos.Z())
	}
	angle, err := w.HingeAngle(j)
	if err != nil {
		t.Fatalf("HingeAngle: %v", err)
	}
	if angle == 0 {
		t.Fatalf("expected a nonzero hinge angle")
	}
}

func TestPlanarVelocity(t *testing.T) {
	w := NewWorld()
	defer w.Close()

	id := build(t, w, shape.Sphere{M: 1, R: 0.1}, mgl64.Vec3{0, 0, 1}, mgl64.Ident3())
	if err := w.AddTorque(id, mgl64.Vec3{0, 0.01, 0}); err != nil {
		t.Fatalf("AddTorque: %v", err)
	}
	for i := 0; i < 100; i++ {
		if err := w.Step(common.TimeStep); err != nil {
			t.Fatalf("Step: %v", err)
		}
	}
	lin, ang, err := w.Velocity(id)
	if err != nil {
		t.Fatalf("Velocity: %v", err)
	}
	if !near(lin, mgl64.Vec3{0, 0, common.Gravity * 0.1}, 1e-3) {
		t.Fatalf("expected free fall velocity, got %v", lin)
	}
	if ang.X() != 0 || ang.Z() != 0 || ang.Y() <= 0 {
		t.Fatalf("expected spin about +y, got %v", ang)
	}
}

func TestPlanarRejects(t *testing.T) {
	w := NewWorld()
	defer w.Close()

	id := build(t, w, shape.Sphere{M: 1, R: 0.1}, mgl64.Vec3{}, mgl64.Ident3())
	if _, err := w.CreateHingeJoint(id, physics.World, mgl64.Vec3{}, mgl64.Vec3{0, 0, 1}); !errors.Is(err, physics.ErrUnsupported) {
		t.Fatalf("expected unsupported axis, got %v", err)
	}
	if _, err := w.CreateGeom(shape.Unknown{Tag: "torus"}); !errors.Is(err, shape.ErrUnknownShape) {
		t.Fatalf("expected unknown shape, got %v", err)
	}
	if got := w.Stats(); got.Joints != 0 || got.Geoms != 1 {
		t.Fatalf("unexpected stats %+v", got)
	}
}

// near compares componentwise with an absolute tolerance. Relative checks
// fail on float noise next to exact zeros.
func near(a, b mgl64.Vec3, tol float64) bool {
	for i := range a {
		if math.Abs(a[i]-b[i]) > tol {
			return false
		}
	}
	return true
}

func nearMat(a, b mgl64.Mat3, tol float64) bool {
	for i := range a {
		if math.Abs(a[i]-b[i]) > tol {
			return false
		}
	}
	return true
}
