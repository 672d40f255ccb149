package prefabs

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

func TestLoadDefaultRobot(t *testing.T) {
	spec, err := LoadRobotSpec(DefaultRobot)
	if err != nil {
		t.Fatalf("LoadRobotSpec: %v", err)
	}
	if len(spec.Segments) != 7 {
		t.Fatalf("expected 7 segments, got %d", len(spec.Segments))
	}
	if spec.Topology != "fixed" {
		t.Fatalf("expected fixed topology, got %q", spec.Topology)
	}
	if spec.Base == nil || spec.Base.Enabled {
		t.Fatalf("expected a disabled base, got %+v", spec.Base)
	}
	if spec.Base.Color != (Color{}) {
		t.Fatalf("expected a black base, got %+v", spec.Base.Color)
	}

	odd := spec.Segments[1].Motor.Rotation
	if math.Abs(float64(odd.Angle)-math.Pi/2) > 1e-12 {
		t.Fatalf("expected a quarter turn, got %v", float64(odd.Angle))
	}
	if odd.Axis.Vec() != (mgl64.Vec3{1, 0, 0}) {
		t.Fatalf("expected x axis, got %v", odd.Axis.Vec())
	}
	if spec.Segments[0].Motor.Rotation.Angle != 0 {
		t.Fatalf("expected even motors unrotated")
	}

	last := spec.Segments[6]
	if last.Link.Center.Vec() != (mgl64.Vec3{0, 0, 0.975}) {
		t.Fatalf("unexpected last link center %v", last.Link.Center.Vec())
	}
	if last.Motor.Color != (Color{R: 0.8}) {
		t.Fatalf("unexpected last motor color %+v", last.Motor.Color)
	}

	world := spec.World.Settings()
	if world.Step != 0.001 || world.ERP != 1 || world.CFM != 0 || world.Gravity != (mgl64.Vec3{0, 0, -9.8}) {
		t.Fatalf("unexpected world settings %+v", world)
	}
	view := spec.View.Settings()
	if view.Width != 640 || view.Height != 480 || view.SphereQuality != 3 || view.HPR != (mgl64.Vec3{-145, 0, 0}) {
		t.Fatalf("unexpected view settings %+v", view)
	}
}

func TestSettingsDefaults(t *testing.T) {
	world := WorldSpec{}.Settings()
	if world.Step != 0.001 || world.Iterations != 20 || world.ERP != 1 {
		t.Fatalf("unexpected world defaults %+v", world)
	}
	zero := Expr(0)
	if got := (WorldSpec{ERP: &zero}).Settings().ERP; got != 0 {
		t.Fatalf("expected an explicit erp of 0, got %v", got)
	}
	view := ViewSpec{}.Settings()
	if view.XYZ != (mgl64.Vec3{0.6, 0.6, 0.6}) || view.Textures != "textures" {
		t.Fatalf("unexpected view defaults %+v", view)
	}
}

func TestDecodeTOML(t *testing.T) {
	src := []byte(`
name = "stub"
topology = "hinge"

[world]
step = 0.002

[[segments]]
[segments.link]
name = "link0"
center = [0, 0, 0.075]
color = "#ff0000"
[segments.link.shape]
type = "capsule"
mass = 0.5
length = 0.15
radius = 0.04
long_axis = 3
[segments.link.rotation]
axis = [0, 1, 0]
angle = "math.pi / 4"
[segments.motor]
name = "motor0"
color = "gray"
[segments.motor.shape]
type = "sphere"
mass = 0.4
radius = 0.05
`)
	spec, err := DecodeSpec[RobotSpec]("stub.toml", src)
	if err != nil {
		t.Fatalf("DecodeSpec: %v", err)
	}
	if spec.Topology != "hinge" || len(spec.Segments) != 1 {
		t.Fatalf("unexpected spec %+v", spec)
	}
	link := spec.Segments[0].Link
	if link.Shape.Type != "capsule" || link.Shape.Mass != 0.5 {
		t.Fatalf("unexpected link shape %+v", link.Shape)
	}
	if math.Abs(float64(link.Rotation.Angle)-math.Pi/4) > 1e-12 {
		t.Fatalf("expected pi/4, got %v", float64(link.Rotation.Angle))
	}
	if link.Color != (Color{R: 1}) {
		t.Fatalf("expected red, got %+v", link.Color)
	}
	if got := spec.World.Settings().Step; got != 0.002 {
		t.Fatalf("expected step 0.002, got %v", got)
	}
}

func TestDecodeRejects(t *testing.T) {
	tests := []struct {
		name string
		file string
		src  string
	}{
		{"unknown field", "a.yaml", "name: a\nwheels: 4\n"},
		{"short vector", "a.yaml", "segments:\n  - link: {center: [0, 1]}\n"},
		{"bad color", "a.yaml", "segments:\n  - link: {color: notacolor}\n"},
		{"channel range", "a.yaml", "segments:\n  - link: {color: [2, 0, 0]}\n"},
		{"bad expr", "a.yaml", "segments:\n  - link: {rotation: {angle: \"math.pi +\"}}\n"},
		{"format", "a.json", "{}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeSpec[RobotSpec](tt.file, []byte(tt.src)); err == nil {
				t.Fatalf("expected an error")
			}
		})
	}
}

func TestEval(t *testing.T) {
	tests := []struct {
		src  string
		want float64
	}{
		{"1", 1},
		{"0.25 * 4", 1},
		{"math.pi / 2", math.Pi / 2},
		{"-math.pi", -math.Pi},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got, err := Eval(tt.src)
			if err != nil {
				t.Fatalf("Eval: %v", err)
			}
			if math.Abs(got-tt.want) > 1e-12 {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}

	for _, src := range []string{"", "\"text\"", "1 / 0.0", "undefined_name"} {
		if _, err := Eval(src); !errors.Is(err, ErrExpr) {
			t.Errorf("Eval(%q): expected ErrExpr, got %v", src, err)
		}
	}
}

func TestLoadExternalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "small.yaml")
	if err := os.WriteFile(path, []byte("name: small\nsegments: []\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	spec, err := LoadRobotSpec(path)
	if err != nil {
		t.Fatalf("LoadRobotSpec: %v", err)
	}
	if spec.Name != "small" || len(spec.Segments) != 0 {
		t.Fatalf("unexpected spec %+v", spec)
	}
	if _, ok := ModTime(path); !ok {
		t.Fatalf("expected a modification time for %s", path)
	}
}

func TestWatcher(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	path := filepath.Join(dir, "arm.yaml")
	if err := os.WriteFile(path, []byte("name: arm\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	select {
	case got := <-w.Events:
		if got != path {
			t.Fatalf("expected %s, got %s", path, got)
		}
	case err := <-w.Errors:
		t.Fatalf("watcher error: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatalf("no event for %s", path)
	}

	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	for range w.Events {
	}
}
