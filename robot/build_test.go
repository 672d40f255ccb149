package robot

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/milk9111/armsim/common"
	"github.com/milk9111/armsim/ecs"
	"github.com/milk9111/armsim/ecs/component"
	"github.com/milk9111/armsim/physics"
	"github.com/milk9111/armsim/physics/planar"
	"github.com/milk9111/armsim/physics/rigid"
	"github.com/milk9111/armsim/prefabs"
	"github.com/milk9111/armsim/shape"
)

func build(t *testing.T, eng physics.Engine, cfg Config) (*Robot, *ecs.World) {
	t.Helper()
	w := ecs.NewWorld()
	r, err := Build(w, eng, cfg, WithLogger(common.DiscardLogger()))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return r, w
}

func TestDefaultAssembly(t *testing.T) {
	eng := rigid.NewWorld()
	defer eng.Close()

	r, w := build(t, eng, Default())
	bodies := r.Bodies()
	if len(bodies) != 14 {
		t.Fatalf("expected 14 bodies, got %d", len(bodies))
	}
	if got := eng.Stats(); got.Bodies != 14 || got.Geoms != 14 || got.Joints != 14 {
		t.Fatalf("unexpected engine stats %+v", got)
	}
	if n := ecs.Count(w, component.BodyComponent.Kind()); n != 14 {
		t.Fatalf("expected 14 body entities, got %d", n)
	}
	if n := ecs.Count(w, component.JointComponent.Kind()); n != 14 {
		t.Fatalf("expected 14 joint entities, got %d", n)
	}
	for _, b := range bodies {
		m, err := eng.Mass(b.ID)
		if err != nil {
			t.Fatalf("Mass: %v", err)
		}
		if m.Total <= 0 || m.Dims.Radius <= 0 {
			t.Fatalf("%s: expected positive mass and radius, got %+v", b.Object, m)
		}
	}
	if len(r.Errors) != 0 || r.Base != nil {
		t.Fatalf("unexpected errors %v or base %v", r.Errors, r.Base)
	}
	if cap(r.Cameras) != CameraSlots || cap(r.EndEffector) != EndEffectorSlots || len(r.Cameras) != 0 {
		t.Fatalf("unexpected reserved slots")
	}
	for i, seg := range r.Segments {
		if seg.LinkJoint == nil || seg.LinkJoint.B != nil || seg.MotorJoint == nil || seg.MotorJoint.B != nil {
			t.Fatalf("segment %d: expected both bodies fixed to the world", i)
		}
	}
}

func TestDefaultHoldsStill(t *testing.T) {
	eng := rigid.NewWorld()
	defer eng.Close()

	r, _ := build(t, eng, Default())
	for i := 0; i < 200; i++ {
		if err := eng.Step(common.TimeStep); err != nil {
			t.Fatalf("Step: %v", err)
		}
	}
	for _, b := range r.Bodies() {
		pos, _ := eng.Position(b.ID)
		if !near(pos, b.Center, 1e-6) {
			t.Fatalf("%s drifted from %v to %v", b.Object, b.Center, pos)
		}
	}
}

func TestMotorRotation(t *testing.T) {
	eng := rigid.NewWorld()
	defer eng.Close()

	r, _ := build(t, eng, Default())
	for i, seg := range r.Segments {
		rot, _ := eng.Rotation(seg.Motor.ID)
		long := rot.Mul3x1(mgl64.Vec3{0, 0, 1})
		want := mgl64.Vec3{0, 0, 1}
		if i%2 == 1 {
			want = mgl64.Vec3{0, -1, 0}
		}
		if !near(long, want, 1e-9) {
			t.Fatalf("motor %d: expected long axis %v, got %v", i, want, long)
		}
	}
}

func TestBaseAddsOneBody(t *testing.T) {
	eng := rigid.NewWorld()
	defer eng.Close()

	cfg := Default()
	base := DefaultBase()
	cfg.Base = &base
	r, w := build(t, eng, cfg)
	if n := len(r.Bodies()); n != 15 {
		t.Fatalf("expected 15 bodies, got %d", n)
	}
	if r.Bodies()[0] != r.Base {
		t.Fatalf("expected the base first")
	}
	var bases int
	ecs.ForEach(w, component.PartComponent.Kind(), func(_ ecs.Entity, p *component.Part) {
		if p.Role == component.RoleBase {
			bases++
		}
	})
	if bases != 1 {
		t.Fatalf("expected one base entity, got %d", bases)
	}
}

func TestUnknownShapeSkipsOnlyThatObject(t *testing.T) {
	eng := rigid.NewWorld()
	defer eng.Close()

	cfg := Default()
	cfg.Segments[2].Link.Shape = shape.Unknown{Tag: "torus"}
	cfg.Segments[4].Motor.Shape = shape.Sphere{M: 1, R: -1}
	r, _ := build(t, eng, cfg)

	if len(r.Errors) != 2 {
		t.Fatalf("expected 2 reported errors, got %v", r.Errors)
	}
	if !errors.Is(r.Errors[0], shape.ErrUnknownShape) || !errors.Is(r.Errors[1], shape.ErrInvalidDims) {
		t.Fatalf("unexpected errors %v", r.Errors)
	}
	if n := len(r.Bodies()); n != 12 {
		t.Fatalf("expected 12 bodies, got %d", n)
	}
	if r.Segments[2].Link != nil || r.Segments[2].LinkJoint != nil || r.Segments[2].Motor == nil {
		t.Fatalf("segment 2 should keep only its motor: %+v", r.Segments[2])
	}
	if s := eng.Stats(); s.Bodies != 12 || s.Joints != 12 {
		t.Fatalf("unexpected engine stats %+v", s)
	}
}

func TestHingeTopology(t *testing.T) {
	eng := rigid.NewWorld()
	defer eng.Close()

	cfg := Default()
	cfg.Topology = TopologyHinge
	r, _ := build(t, eng, cfg)

	if n := len(r.Joints); n != 14 {
		t.Fatalf("expected 14 joints, got %d", n)
	}
	for i, seg := range r.Segments {
		if seg.LinkJoint.Kind != physics.JointHinge || seg.LinkJoint.B != seg.Motor {
			t.Fatalf("segment %d: expected link hinged to its motor, got %v", i, seg.LinkJoint)
		}
		if seg.LinkJoint.Axis != cfg.Segments[i].Link.Joint.Axis {
			t.Fatalf("segment %d: unexpected hinge axis %v", i, seg.LinkJoint.Axis)
		}
		if i == 0 && seg.MotorJoint.B != nil {
			t.Fatalf("expected motor0 fixed to the world")
		}
		if i > 0 && seg.MotorJoint.B != r.Segments[i-1].Link {
			t.Fatalf("segment %d: expected motor fixed to the previous link", i)
		}
	}

	for i := 0; i < 100; i++ {
		if err := eng.Step(common.TimeStep); err != nil {
			t.Fatalf("Step: %v", err)
		}
	}
	for _, seg := range r.Segments {
		pos, _ := eng.Position(seg.Link.ID)
		if !common.Finite(pos) {
			t.Fatalf("%s diverged: %v", seg.Link.Object, pos)
		}
	}
}

func TestHingeFallsBackOnPlanarEngine(t *testing.T) {
	eng := planar.NewWorld()
	defer eng.Close()

	cfg := Default()
	cfg.Topology = TopologyHinge
	r, _ := build(t, eng, cfg)
	for i, seg := range r.Segments {
		want := physics.JointFixed
		if i%2 == 1 {
			want = physics.JointHinge
		}
		if seg.LinkJoint.Kind != want {
			t.Fatalf("segment %d: expected %s, got %s", i, want, seg.LinkJoint.Kind)
		}
	}
}

func TestCapacityIsFatal(t *testing.T) {
	eng := rigid.NewWorld(rigid.WithMaxBodies(5))
	defer eng.Close()

	_, err := Build(ecs.NewWorld(), eng, Default(), WithLogger(common.DiscardLogger()))
	if !errors.Is(err, physics.ErrCapacity) {
		t.Fatalf("expected ErrCapacity, got %v", err)
	}
}

func TestFromSpecMatchesDefault(t *testing.T) {
	spec, err := prefabs.LoadRobotSpec(prefabs.DefaultRobot)
	if err != nil {
		t.Fatalf("LoadRobotSpec: %v", err)
	}
	got, err := FromSpec(spec)
	if err != nil {
		t.Fatalf("FromSpec: %v", err)
	}
	want := Default()
	if got.Name != want.Name || got.Topology != want.Topology || got.Base != nil {
		t.Fatalf("unexpected header %+v", got)
	}
	if len(got.Segments) != len(want.Segments) {
		t.Fatalf("expected %d segments, got %d", len(want.Segments), len(got.Segments))
	}
	for i := range want.Segments {
		if got.Segments[i] != want.Segments[i] {
			t.Fatalf("segment %d:\n got %+v\nwant %+v", i, got.Segments[i], want.Segments[i])
		}
	}
}

func TestFromSpecResolvesShapes(t *testing.T) {
	spec := prefabs.RobotSpec{
		Topology: "HINGE",
		Base:     &prefabs.BaseSpec{Enabled: true},
		Segments: []prefabs.SegmentSpec{{
			Link:  prefabs.ObjectSpec{Shape: prefabs.ShapeSpec{Type: "capped_cylinder", Mass: 1, Length: 1, Radius: 0.1}},
			Motor: prefabs.ObjectSpec{Shape: prefabs.ShapeSpec{Type: "torus"}},
		}},
	}
	cfg, err := FromSpec(spec)
	if err != nil {
		t.Fatalf("FromSpec: %v", err)
	}
	if cfg.Topology != TopologyHinge || cfg.Base == nil || cfg.Base.Name != "base" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	link := cfg.Segments[0].Link
	if c, ok := link.Shape.(shape.Capsule); !ok || c.LongAxis != shape.AxisZ || link.Name != "link0" {
		t.Fatalf("unexpected link %+v", link)
	}
	if u, ok := cfg.Segments[0].Motor.Shape.(shape.Unknown); !ok || u.Tag != "torus" {
		t.Fatalf("expected the unknown tag carried through, got %+v", cfg.Segments[0].Motor.Shape)
	}

	if _, err := FromSpec(prefabs.RobotSpec{Topology: "spiral"}); !errors.Is(err, ErrTopology) {
		t.Fatalf("expected ErrTopology, got %v", err)
	}
}

func TestDefaultTable(t *testing.T) {
	cfg := Default()
	if len(cfg.Segments) != LinkCount {
		t.Fatalf("expected %d segments", LinkCount)
	}
	last := cfg.Segments[LinkCount-1]
	if last.Link.Center.Z() != 0.975 || last.Motor.Center.Z() != 0.90 {
		t.Fatalf("unexpected last segment %+v", last)
	}
	if math.Abs(cfg.Segments[1].Motor.Angle-math.Pi/2) > 1e-15 {
		t.Fatalf("expected odd motors turned a quarter")
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
