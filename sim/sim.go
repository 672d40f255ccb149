// Package sim assembles a running arm: the spec file, the physics engine,
// the ECS world holding the robot, and the systems that step and draw it.
package sim

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jakecoffman/cp"

	"github.com/milk9111/armsim/common"
	"github.com/milk9111/armsim/ecs"
	"github.com/milk9111/armsim/ecs/system"
	"github.com/milk9111/armsim/physics"
	"github.com/milk9111/armsim/physics/planar"
	"github.com/milk9111/armsim/physics/rigid"
	"github.com/milk9111/armsim/prefabs"
	"github.com/milk9111/armsim/robot"
)

var ErrEngine = errors.New("sim: unknown engine")

type EngineKind string

const (
	EngineRigid  EngineKind = "rigid"
	EnginePlanar EngineKind = "planar"
)

// NewEngine creates an empty engine configured from s. An empty kind is
// rigid.
func NewEngine(kind EngineKind, s prefabs.WorldSettings) (physics.Engine, error) {
	switch kind {
	case EngineRigid, "":
		return rigid.NewWorld(
			rigid.WithGravity(s.Gravity),
			rigid.WithIterations(s.Iterations),
			rigid.WithERP(s.ERP),
			rigid.WithCFM(s.CFM),
		), nil
	case EnginePlanar:
		return planar.NewWorld(
			planar.WithGravity(s.Gravity),
			planar.WithIterations(s.Iterations),
			planar.WithERP(s.ERP),
			planar.WithStep(s.Step),
		), nil
	default:
		return nil, fmt.Errorf("%w %q", ErrEngine, kind)
	}
}

type Options struct {
	// Spec is the robot file, resolved through prefabs.Load. Empty means
	// the embedded default.
	Spec   string
	Engine EngineKind
	// Topology overrides the spec's topology when set.
	Topology string
	// Steps is the number of engine steps per Update.
	Steps  int
	Logger *log.Logger
}

// Session is one built arm and everything that drives it.
type Session struct {
	Options   Options
	Spec      prefabs.RobotSpec
	World     prefabs.WorldSettings
	View      prefabs.ViewSettings
	Engine    physics.Engine
	ECS       *ecs.World
	Robot     *robot.Robot
	Physics   *system.PhysicsSystem
	Render    *system.RenderSystem
	scheduler *ecs.Scheduler
	modTime   time.Time
}

// Open loads the spec and builds the arm into a fresh engine. The engine is
// closed again if the build fails.
func Open(opts Options) (*Session, error) {
	if opts.Spec == "" {
		opts.Spec = prefabs.DefaultRobot
	}
	if opts.Logger == nil {
		opts.Logger = common.Logger()
	}
	modTime, _ := prefabs.ModTime(opts.Spec)
	spec, err := prefabs.LoadRobotSpec(opts.Spec)
	if err != nil {
		return nil, fmt.Errorf("sim: open: %w", err)
	}
	if opts.Topology != "" {
		spec.Topology = opts.Topology
	}
	cfg, err := robot.FromSpec(spec)
	if err != nil {
		return nil, fmt.Errorf("sim: open %s: %w", opts.Spec, err)
	}

	s := &Session{
		Options: opts,
		Spec:    spec,
		World:   spec.World.Settings(),
		View:    spec.View.Settings(),
		ECS:     ecs.NewWorld(),
		modTime: modTime,
	}
	s.Engine, err = NewEngine(opts.Engine, s.World)
	if err != nil {
		return nil, fmt.Errorf("sim: open: %w", err)
	}
	s.Robot, err = robot.Build(s.ECS, s.Engine, cfg, robot.WithLogger(opts.Logger))
	if err != nil {
		return nil, errors.Join(fmt.Errorf("sim: open %s: %w", opts.Spec, err), s.Engine.Close())
	}

	s.Physics = system.NewPhysicsSystem(s.Engine, s.World.Step, opts.Steps)
	s.Render = system.NewRenderSystem(s.Engine)
	s.scheduler = ecs.NewScheduler(s.Physics)
	return s, nil
}

// Stale reports whether the spec file on disk is newer than the one this
// session was built from. An embedded spec is stale once a disk copy
// appears.
func (s *Session) Stale() bool {
	if s == nil {
		return false
	}
	mt, ok := prefabs.ModTime(s.Options.Spec)
	return ok && mt.After(s.modTime)
}

// Update runs the scheduled systems once.
func (s *Session) Update() {
	if s == nil {
		return
	}
	s.scheduler.Update(s.ECS)
}

// Space returns the Chipmunk space when the session runs the planar engine.
func (s *Session) Space() (*cp.Space, bool) {
	if s == nil {
		return nil, false
	}
	pw, ok := s.Engine.(*planar.World)
	if !ok {
		return nil, false
	}
	space := pw.Space()
	return space, space != nil
}

func (s *Session) Close() error {
	if s == nil || s.Engine == nil {
		return nil
	}
	ecs.Clear(s.ECS)
	err := s.Engine.Close()
	s.Engine = nil
	return err
}
