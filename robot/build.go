package robot

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/milk9111/armsim/common"
	"github.com/milk9111/armsim/ecs"
	"github.com/milk9111/armsim/ecs/component"
	"github.com/milk9111/armsim/object"
	"github.com/milk9111/armsim/physics"
	"github.com/milk9111/armsim/shape"
)

// BuiltSegment holds the bodies and joints of one segment. A body whose
// shape was rejected is nil, as is any joint that needed it.
type BuiltSegment struct {
	Link       *object.Body
	Motor      *object.Body
	LinkJoint  *object.Joint
	MotorJoint *object.Joint
}

// Robot is an assembled arm.
type Robot struct {
	ID       uuid.UUID
	Name     string
	Topology Topology
	Base     *object.Body
	Segments []BuiltSegment
	// Cameras and EndEffector are reserved slots and stay empty.
	Cameras     []*object.Body
	EndEffector []*object.Body
	Joints      []*object.Joint
	// Errors collects the per-object shape failures that did not stop the
	// build.
	Errors []error
}

// Bodies returns every built body: the base first, then link and motor of
// each segment in order.
func (r *Robot) Bodies() []*object.Body {
	out := make([]*object.Body, 0, 2*len(r.Segments)+1)
	if r.Base != nil {
		out = append(out, r.Base)
	}
	for _, s := range r.Segments {
		if s.Link != nil {
			out = append(out, s.Link)
		}
		if s.Motor != nil {
			out = append(out, s.Motor)
		}
	}
	return out
}

type Option func(*builder)

func WithLogger(l *log.Logger) Option {
	return func(b *builder) {
		if l != nil {
			b.log = l
		}
	}
}

type builder struct {
	w     *ecs.World
	eng   physics.Engine
	log   *log.Logger
	robot *Robot
}

// Build creates every body and joint of cfg in eng and registers them as
// entities in w. Shape errors are collected in Robot.Errors and the build
// goes on. Any other error aborts the build and is returned.
func Build(w *ecs.World, eng physics.Engine, cfg Config, opts ...Option) (*Robot, error) {
	if w == nil || eng == nil {
		return nil, errors.New("robot: build needs a world and an engine")
	}
	topology, err := ParseTopology(string(cfg.Topology))
	if err != nil {
		return nil, err
	}

	b := &builder{
		w:   w,
		eng: eng,
		log: common.Logger(),
		robot: &Robot{
			ID:          uuid.New(),
			Name:        cfg.Name,
			Topology:    topology,
			Segments:    make([]BuiltSegment, 0, len(cfg.Segments)),
			Cameras:     make([]*object.Body, 0, CameraSlots),
			EndEffector: make([]*object.Body, 0, EndEffectorSlots),
		},
	}
	for _, opt := range opts {
		opt(b)
	}
	b.log = b.log.With("robot", b.robot.ID.String())

	if cfg.Base != nil {
		base, err := b.body(*cfg.Base, -1, component.RoleBase)
		if err != nil {
			return nil, err
		}
		if base != nil {
			if _, err := b.fixed(base, nil, -1); err != nil {
				return nil, err
			}
		}
		b.robot.Base = base
	}

	parent := b.robot.Base
	for i, seg := range cfg.Segments {
		built, err := b.buildSegment(i, seg, parent)
		if err != nil {
			return nil, err
		}
		b.robot.Segments = append(b.robot.Segments, built)
		parent = built.Link
	}

	b.log.Info("robot built",
		"name", cfg.Name,
		"topology", topology,
		"bodies", len(b.robot.Bodies()),
		"joints", len(b.robot.Joints),
		"errors", len(b.robot.Errors),
	)
	return b.robot, nil
}

// buildSegment builds the link and then the motor of segment i and joins
// them according to the topology. parent is the body the motor hangs from in
// hinge mode: the previous link, the base, or nil for the world.
func (b *builder) buildSegment(i int, seg Segment, parent *object.Body) (BuiltSegment, error) {
	var out BuiltSegment
	var err error

	if out.Link, err = b.body(seg.Link, i, component.RoleLink); err != nil {
		return out, err
	}
	if out.Motor, err = b.body(seg.Motor, i, component.RoleMotor); err != nil {
		return out, err
	}

	if b.robot.Topology == TopologyFixed {
		if out.Link != nil {
			if out.LinkJoint, err = b.fixed(out.Link, nil, i); err != nil {
				return out, err
			}
		}
		if out.Motor != nil {
			if out.MotorJoint, err = b.fixed(out.Motor, nil, i); err != nil {
				return out, err
			}
		}
		return out, nil
	}

	if out.Motor != nil {
		if i > 0 && parent == nil {
			b.log.Warn("motor left free, parent link missing", "segment", i, "name", seg.Motor.Name)
		} else if out.MotorJoint, err = b.fixed(out.Motor, parent, i); err != nil {
			return out, err
		}
	}
	if out.Link != nil {
		if out.Motor == nil {
			b.log.Warn("link left free, motor missing", "segment", i, "name", seg.Link.Name)
		} else if out.LinkJoint, err = b.hinge(out.Link, out.Motor, i); err != nil {
			return out, err
		}
	}
	return out, nil
}

// body builds o. A shape failure is reported and yields a nil body with a nil
// error.
func (b *builder) body(o object.Object, segment int, role component.Role) (*object.Body, error) {
	body, err := object.CreateBody(b.eng, o)
	if err != nil {
		if errors.Is(err, shape.ErrUnknownShape) || errors.Is(err, shape.ErrInvalidDims) {
			b.log.Error("object skipped", "name", o.Name, "segment", segment, "err", err)
			b.robot.Errors = append(b.robot.Errors, err)
			return nil, nil
		}
		return nil, fmt.Errorf("robot: %s: %w", o, err)
	}

	e := ecs.CreateEntity(b.w)
	if err := ecs.Add(b.w, e, component.BodyComponent.Kind(), &component.Body{Body: body}); err != nil {
		return nil, err
	}
	if err := ecs.Add(b.w, e, component.PartComponent.Kind(), &component.Part{Segment: segment, Role: role}); err != nil {
		return nil, err
	}
	b.log.Debug("body built", "name", o.Name, "shape", o.Shape.Kind(), "segment", segment, "entity", e)
	return body, nil
}

func (b *builder) fixed(a, parent *object.Body, segment int) (*object.Joint, error) {
	var (
		j   *object.Joint
		err error
	)
	if parent == nil {
		j, err = object.CreateFixedJoint(b.eng, a)
	} else {
		j, err = object.CreateFixedJointBetween(b.eng, a, parent)
	}
	if err != nil {
		return nil, fmt.Errorf("robot: %w", err)
	}
	return j, b.joint(j, segment)
}

// hinge joins link to motor about the link's joint axis. An engine that
// cannot represent the axis gets a fixed joint instead.
func (b *builder) hinge(link, motor *object.Body, segment int) (*object.Joint, error) {
	j, err := object.CreateHingeJoint(b.eng, link, motor, link.Joint.Anchor, link.Joint.Axis)
	if errors.Is(err, physics.ErrUnsupported) {
		b.log.Warn("hinge unsupported by engine, fixing instead", "name", link.Name, "axis", link.Joint.Axis)
		return b.fixed(link, motor, segment)
	}
	if err != nil {
		return nil, fmt.Errorf("robot: %w", err)
	}
	return j, b.joint(j, segment)
}

func (b *builder) joint(j *object.Joint, segment int) error {
	b.robot.Joints = append(b.robot.Joints, j)
	e := ecs.CreateEntity(b.w)
	if err := ecs.Add(b.w, e, component.JointComponent.Kind(), &component.Joint{Joint: j}); err != nil {
		return err
	}
	return ecs.Add(b.w, e, component.PartComponent.Kind(), &component.Part{Segment: segment, Role: component.RoleJoint})
}
