package system

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/milk9111/armsim/common"
	"github.com/milk9111/armsim/ecs"
	"github.com/milk9111/armsim/ecs/component"
	"github.com/milk9111/armsim/object"
	"github.com/milk9111/armsim/physics"
	"github.com/milk9111/armsim/physics/rigid"
	"github.com/milk9111/armsim/render"
	"github.com/milk9111/armsim/robot"
	"github.com/milk9111/armsim/shape"
)

func TestPhysicsSystemSteps(t *testing.T) {
	eng := rigid.NewWorld()
	defer eng.Close()

	w := ecs.NewWorld()
	ps := NewPhysicsSystem(eng, common.TimeStep, 3)
	var calls int
	ps.SetControl(func(*ecs.World, physics.Engine) { calls++ })

	ps.Update(w)
	ps.Update(w)
	if ps.Ticks() != 6 || calls != 6 {
		t.Fatalf("expected 6 ticks and control calls, got %d and %d", ps.Ticks(), calls)
	}
	if got := eng.Elapsed(); got < 0.006-1e-12 || got > 0.006+1e-12 {
		t.Fatalf("expected 0.006s elapsed, got %v", got)
	}

	ps.SetPaused(true)
	ps.Update(w)
	if ps.Ticks() != 6 {
		t.Fatalf("paused system stepped")
	}
}

func TestPhysicsSystemHaltsOnError(t *testing.T) {
	eng := rigid.NewWorld()
	ps := NewPhysicsSystem(eng, common.TimeStep, 1)
	_ = eng.Close()

	ps.Update(ecs.NewWorld())
	if !errors.Is(ps.Err(), physics.ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", ps.Err())
	}
	if ps.Ticks() != 0 {
		t.Fatalf("expected no ticks")
	}
}

func TestRenderSystemDrawsEveryBody(t *testing.T) {
	eng := rigid.NewWorld()
	defer eng.Close()

	w := ecs.NewWorld()
	if _, err := robot.Build(w, eng, robot.Default(), robot.WithLogger(common.DiscardLogger())); err != nil {
		t.Fatalf("Build: %v", err)
	}

	rs := NewRenderSystem(eng)
	rec := &render.Recorder{}
	if n := rs.Draw(w, rec); n != 14 {
		t.Fatalf("expected 14 draws, got %d", n)
	}
	if rec.Color != render.Neutral {
		t.Fatalf("expected neutral color after the pass, got %+v", rec.Color)
	}
	if rec.Calls[0].Color != (object.Gray(0.2)) || rec.Calls[1].Color != (object.Color{R: 0.2}) {
		t.Fatalf("expected link0 then motor0 first, got %+v %+v", rec.Calls[0].Color, rec.Calls[1].Color)
	}
}

func TestRenderSystemSkipsBrokenBody(t *testing.T) {
	eng := rigid.NewWorld()
	defer eng.Close()

	w := ecs.NewWorld()
	good, err := object.CreateBody(eng, object.Object{Shape: shape.Sphere{M: 1, R: 0.1}, Center: mgl64.Vec3{0, 0, 1}})
	if err != nil {
		t.Fatalf("CreateBody: %v", err)
	}
	broken := &object.Body{Object: object.Object{Shape: shape.Unknown{Tag: "torus"}}, ID: good.ID}
	for _, b := range []*object.Body{broken, good} {
		e := ecs.CreateEntity(w)
		if err := ecs.Add(w, e, component.BodyComponent.Kind(), &component.Body{Body: b}); err != nil {
			t.Fatal(err)
		}
	}

	rs := NewRenderSystem(eng)
	rs.log = common.DiscardLogger()
	rec := &render.Recorder{}
	if n := rs.Draw(w, rec); n != 1 || len(rec.Calls) != 1 {
		t.Fatalf("expected one draw, got %d (%d calls)", n, len(rec.Calls))
	}
}
