// Package robot assembles the arm from per-segment object records.
package robot

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/milk9111/armsim/object"
	"github.com/milk9111/armsim/prefabs"
	"github.com/milk9111/armsim/shape"
)

const (
	LinkCount        = 7
	CameraSlots      = 4
	EndEffectorSlots = 10
)

var ErrTopology = errors.New("robot: unknown topology")

// Topology selects how segments are joined.
type Topology string

const (
	// TopologyFixed locks every body to the world.
	TopologyFixed Topology = "fixed"
	// TopologyHinge chains the segments: each motor is fixed to the previous
	// link and each link turns on a hinge in its motor.
	TopologyHinge Topology = "hinge"
)

func ParseTopology(s string) (Topology, error) {
	switch t := Topology(strings.ToLower(strings.TrimSpace(s))); t {
	case "", TopologyFixed:
		return TopologyFixed, nil
	case TopologyHinge:
		return TopologyHinge, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrTopology, s)
	}
}

// Segment is one link and the motor it sits on.
type Segment struct {
	Link  object.Object
	Motor object.Object
}

type Config struct {
	Name     string
	Topology Topology
	// Base is built before the segments when non-nil.
	Base     *object.Object
	Segments []Segment
}

var (
	linkMass    = [LinkCount]float64{0.5, 0.5, 0.7, 0.7, 0.7, 0.5, 0.5}
	linkLength  = [LinkCount]float64{0.15, 0.1, 0.2, 0.1, 0.2, 0.15, 0.15}
	linkCenterZ = [LinkCount]float64{0.075, 0.20, 0.35, 0.50, 0.65, 0.825, 0.975}
	jointZ      = [LinkCount]float64{0.0, 0.15, 0.25, 0.45, 0.55, 0.75, 0.90}
	shade       = [LinkCount]float64{0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8}
)

const (
	linkRadius  = 0.04
	motorMass   = 0.4
	motorLength = 0.1
	motorRadius = 0.05
)

// Default returns the seven-segment arm standing on the z axis. Links
// alternate between yaw (z) and pitch (y) joint axes, and the motors of the
// pitch joints are turned a quarter turn about x.
func Default() Config {
	cfg := Config{
		Name:     "arm",
		Topology: TopologyFixed,
		Segments: make([]Segment, LinkCount),
	}
	for i := range cfg.Segments {
		axis := mgl64.Vec3{0, 0, 1}
		if i%2 == 1 {
			axis = mgl64.Vec3{0, 1, 0}
		}
		link := object.Object{
			Name:   fmt.Sprintf("link%d", i),
			Shape:  shape.Cylinder{M: linkMass[i], L: linkLength[i], R: linkRadius, LongAxis: shape.AxisZ},
			Center: mgl64.Vec3{0, 0, linkCenterZ[i]},
			Color:  object.Gray(shade[i]),
			Joint:  object.JointSpec{Anchor: mgl64.Vec3{0, 0, jointZ[i]}, Axis: axis},
		}
		motor := object.Object{
			Name:   fmt.Sprintf("motor%d", i),
			Shape:  shape.Cylinder{M: motorMass, L: motorLength, R: motorRadius, LongAxis: shape.AxisZ},
			Center: mgl64.Vec3{0, 0, jointZ[i]},
			Color:  object.Color{R: shade[i]},
		}
		if i%2 == 1 {
			motor.Axis = mgl64.Vec3{1, 0, 0}
			motor.Angle = math.Pi / 2
		}
		cfg.Segments[i] = Segment{Link: link, Motor: motor}
	}
	return cfg
}

// DefaultBase is the optional pedestal. Default leaves it out.
func DefaultBase() object.Object {
	return object.Object{
		Name:   "base",
		Shape:  shape.Cylinder{M: 1.0, L: 0.2, R: 0.4, LongAxis: shape.AxisZ},
		Center: mgl64.Vec3{0, 0, 0.5},
	}
}

// FromSpec converts a decoded spec. Shape tags are resolved here, but an
// unknown tag or bad dimensions are not an error yet: the object carries the
// shape through and Build reports it.
func FromSpec(spec prefabs.RobotSpec) (Config, error) {
	topology, err := ParseTopology(spec.Topology)
	if err != nil {
		return Config{}, err
	}
	cfg := Config{
		Name:     spec.Name,
		Topology: topology,
		Segments: make([]Segment, 0, len(spec.Segments)),
	}
	if cfg.Name == "" {
		cfg.Name = "arm"
	}
	if spec.Base != nil && spec.Base.Enabled {
		base := objectFromSpec(spec.Base.ObjectSpec)
		if base.Name == "" {
			base.Name = "base"
		}
		cfg.Base = &base
	}
	for i, s := range spec.Segments {
		seg := Segment{Link: objectFromSpec(s.Link), Motor: objectFromSpec(s.Motor)}
		if seg.Link.Name == "" {
			seg.Link.Name = fmt.Sprintf("link%d", i)
		}
		if seg.Motor.Name == "" {
			seg.Motor.Name = fmt.Sprintf("motor%d", i)
		}
		cfg.Segments = append(cfg.Segments, seg)
	}
	return cfg, nil
}

func objectFromSpec(s prefabs.ObjectSpec) object.Object {
	axis := shape.Axis(s.Shape.LongAxis)
	if axis == 0 {
		axis = shape.AxisZ
	}
	sh, _ := shape.Parse(s.Shape.Type, shape.Params{
		Mass:     float64(s.Shape.Mass),
		Length:   float64(s.Shape.Length),
		Radius:   float64(s.Shape.Radius),
		LongAxis: axis,
		Extents:  s.Shape.Extents.Vec(),
	})
	return object.Object{
		Name:   s.Name,
		Shape:  sh,
		Center: s.Center.Vec(),
		Axis:   s.Rotation.Axis.Vec(),
		Angle:  float64(s.Rotation.Angle),
		Color:  object.Color{R: s.Color.R, G: s.Color.G, B: s.Color.B},
		Joint:  object.JointSpec{Anchor: s.Joint.Anchor.Vec(), Axis: s.Joint.Axis.Vec()},
	}
}
