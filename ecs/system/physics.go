package system

import (
	"github.com/charmbracelet/log"

	"github.com/milk9111/armsim/common"
	"github.com/milk9111/armsim/ecs"
	"github.com/milk9111/armsim/physics"
)

// ControlFunc runs before every physics step. It may apply forces through
// the engine.
type ControlFunc func(w *ecs.World, eng physics.Engine)

// PhysicsSystem advances the engine a fixed number of timesteps per update.
type PhysicsSystem struct {
	eng     physics.Engine
	dt      float64
	steps   int
	control ControlFunc
	paused  bool
	ticks   uint64
	err     error
	log     *log.Logger
}

func NewPhysicsSystem(eng physics.Engine, dt float64, steps int) *PhysicsSystem {
	if dt <= 0 {
		dt = common.TimeStep
	}
	if steps < 1 {
		steps = 1
	}
	return &PhysicsSystem{
		eng:     eng,
		dt:      dt,
		steps:   steps,
		control: func(*ecs.World, physics.Engine) {},
		log:     common.Logger(),
	}
}

// SetControl replaces the per-step control hook. A nil hook does nothing.
func (ps *PhysicsSystem) SetControl(fn ControlFunc) {
	if fn == nil {
		fn = func(*ecs.World, physics.Engine) {}
	}
	ps.control = fn
}

func (ps *PhysicsSystem) SetPaused(p bool) { ps.paused = p }
func (ps *PhysicsSystem) Paused() bool     { return ps.paused }

// Ticks returns the number of engine steps taken.
func (ps *PhysicsSystem) Ticks() uint64 { return ps.ticks }

// Err returns the step error that halted the system, if any.
func (ps *PhysicsSystem) Err() error { return ps.err }

func (ps *PhysicsSystem) Update(w *ecs.World) {
	if ps == nil || ps.eng == nil || ps.paused || ps.err != nil {
		return
	}
	for i := 0; i < ps.steps; i++ {
		ps.control(w, ps.eng)
		if err := ps.eng.Step(ps.dt); err != nil {
			ps.err = err
			ps.log.Error("physics halted", "tick", ps.ticks, "err", err)
			return
		}
		ps.ticks++
	}
}
