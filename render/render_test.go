package render

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/milk9111/armsim/object"
	"github.com/milk9111/armsim/physics/rigid"
	"github.com/milk9111/armsim/shape"
)

func TestDrawResetsColor(t *testing.T) {
	w := rigid.NewWorld()
	defer w.Close()

	tests := []struct {
		name  string
		shape shape.Shape
		op    string
	}{
		{"cylinder", shape.Cylinder{M: 0.5, L: 0.15, R: 0.04, LongAxis: shape.AxisZ}, "cylinder"},
		{"capsule", shape.Capsule{M: 0.5, L: 0.15, R: 0.04, LongAxis: shape.AxisY}, "capsule"},
		{"box", shape.Box{M: 1, Lx: 0.1, Ly: 0.2, Lz: 0.3}, "box"},
		{"sphere", shape.Sphere{M: 1, R: 0.1}, "sphere"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			color := object.Color{R: 0.3, G: 0.2, B: 0.1}
			b, err := object.CreateBody(w, object.Object{Shape: tt.shape, Center: mgl64.Vec3{0, 0, 0.5}, Color: color})
			if err != nil {
				t.Fatalf("CreateBody: %v", err)
			}
			rec := &Recorder{}
			if err := Draw(rec, w, b); err != nil {
				t.Fatalf("Draw: %v", err)
			}
			if len(rec.Calls) != 1 {
				t.Fatalf("expected one primitive, got %d", len(rec.Calls))
			}
			c := rec.Calls[0]
			if c.Op != tt.op || c.Color != color {
				t.Fatalf("unexpected call %+v", c)
			}
			if rec.Color != Neutral || rec.ColorSets != 2 {
				t.Fatalf("expected the color reset to neutral, got %+v after %d sets", rec.Color, rec.ColorSets)
			}
			if !near(c.Pos, b.Center, 1e-12) {
				t.Fatalf("expected pos %v, got %v", b.Center, c.Pos)
			}
		})
	}
}

func TestDrawAlignsLongAxis(t *testing.T) {
	w := rigid.NewWorld()
	defer w.Close()

	b, err := object.CreateBody(w, object.Object{
		Shape: shape.Cylinder{M: 0.4, L: 0.1, R: 0.05, LongAxis: shape.AxisX},
	})
	if err != nil {
		t.Fatalf("CreateBody: %v", err)
	}
	rec := &Recorder{}
	if err := Draw(rec, w, b); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	long := rec.Calls[0].Rot.Mul3x1(mgl64.Vec3{0, 0, 1})
	if math.Abs(math.Abs(long.X())-1) > 1e-9 {
		t.Fatalf("expected the drawn long axis along x, got %v", long)
	}
}

func TestDrawUnknownShape(t *testing.T) {
	w := rigid.NewWorld()
	defer w.Close()

	rec := &Recorder{}
	b := &object.Body{Object: object.Object{Shape: shape.Unknown{Tag: "torus"}}, ID: 1}
	if err := Draw(rec, w, b); !errors.Is(err, shape.ErrUnknownShape) {
		t.Fatalf("expected ErrUnknownShape, got %v", err)
	}
	if len(rec.Calls) != 0 || rec.ColorSets != 0 {
		t.Fatalf("expected no renderer calls, got %+v", rec)
	}
	if err := Draw(rec, w, nil); !errors.Is(err, ErrNilBody) {
		t.Fatalf("expected ErrNilBody, got %v", err)
	}
}

func TestDrawReadsLivePose(t *testing.T) {
	w := rigid.NewWorld()
	defer w.Close()

	b, err := object.CreateBody(w, object.Object{Shape: shape.Sphere{M: 1, R: 0.1}, Center: mgl64.Vec3{0, 0, 1}})
	if err != nil {
		t.Fatalf("CreateBody: %v", err)
	}
	for i := 0; i < 10; i++ {
		if err := w.Step(0.001); err != nil {
			t.Fatalf("Step: %v", err)
		}
	}
	rec := &Recorder{}
	if err := Draw(rec, w, b); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if got := rec.Calls[0].Pos.Z(); got >= 1 {
		t.Fatalf("expected the drawn body to have fallen, z=%v", got)
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
