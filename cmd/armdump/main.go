// Command armdump builds the arm without a window, steps it, and prints the
// resulting body poses and draw calls as YAML.
package main

import (
	"flag"
	"io"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"

	"github.com/milk9111/armsim/common"
	"github.com/milk9111/armsim/physics"
	"github.com/milk9111/armsim/prefabs"
	"github.com/milk9111/armsim/render"
	"github.com/milk9111/armsim/sim"
)

type pose struct {
	Name     string     `yaml:"name"`
	Shape    string     `yaml:"shape"`
	Position mgl64.Vec3 `yaml:"position,flow"`
	Rotation mgl64.Mat3 `yaml:"rotation,flow"`
	// Velocity and Spin are set when the engine reports velocities.
	Velocity *mgl64.Vec3 `yaml:"velocity,flow,omitempty"`
	Spin     *mgl64.Vec3 `yaml:"spin,flow,omitempty"`
}

type dump struct {
	ID       string        `yaml:"id"`
	Name     string        `yaml:"name"`
	Engine   string        `yaml:"engine"`
	Topology string        `yaml:"topology"`
	Ticks    uint64        `yaml:"ticks"`
	Time     float64       `yaml:"time"`
	Errors   []string      `yaml:"errors,omitempty"`
	Bodies   []pose        `yaml:"bodies"`
	Calls    []render.Call `yaml:"calls,omitempty"`
}

func main() {
	robotSpec := flag.String("robot", prefabs.DefaultRobot, "robot spec (YAML or TOML), under prefabs/ or a path")
	engine := flag.String("engine", string(sim.EngineRigid), "physics engine: rigid or planar")
	topology := flag.String("topology", "", "override the spec topology: fixed or hinge")
	steps := flag.Int("steps", 0, "physics steps to take before dumping")
	calls := flag.Bool("calls", false, "include the renderer calls")
	out := flag.String("o", "", "output file (default stdout)")
	level := flag.String("log", "warn", "log level: debug, info, warn or error")
	flag.Parse()

	logger := common.Logger()

	if err := common.SetLogLevel(*level); err != nil {
		logger.Fatal("bad log level", "err", err)
	}

	s, err := sim.Open(sim.Options{
		Spec:     *robotSpec,
		Engine:   sim.EngineKind(*engine),
		Topology: *topology,
		Steps:    max(*steps, 1),
	})
	if err != nil {
		logger.Fatal("build failed", "err", err)
	}
	defer s.Close()

	if *steps > 0 {
		s.Update()
		if err := s.Physics.Err(); err != nil {
			logger.Fatal("physics halted", "err", err)
		}
	}

	d, err := collect(s, *engine, *calls)
	if err != nil {
		logger.Fatal("collect failed", "err", err)
	}

	var w io.Writer = os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			logger.Fatal("create output", "err", err)
		}
		defer f.Close()
		w = f
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		logger.Fatal("encode failed", "err", err)
	}
	if err := enc.Close(); err != nil {
		logger.Fatal("encode failed", "err", err)
	}
}

func collect(s *sim.Session, engine string, withCalls bool) (dump, error) {
	d := dump{
		ID:       s.Robot.ID.String(),
		Name:     s.Robot.Name,
		Engine:   engine,
		Topology: string(s.Robot.Topology),
		Ticks:    s.Physics.Ticks(),
		Time:     float64(s.Physics.Ticks()) * s.World.Step,
	}
	for _, err := range s.Robot.Errors {
		d.Errors = append(d.Errors, err.Error())
	}
	for _, b := range s.Robot.Bodies() {
		pos, err := s.Engine.Position(b.ID)
		if err != nil {
			return dump{}, err
		}
		rot, err := s.Engine.Rotation(b.ID)
		if err != nil {
			return dump{}, err
		}
		p := pose{Name: b.Name, Shape: b.Shape.Kind().String(), Position: pos, Rotation: rot}
		if k, ok := s.Engine.(physics.Kinematics); ok {
			lin, ang, err := k.Velocity(b.ID)
			if err != nil {
				return dump{}, err
			}
			p.Velocity, p.Spin = &lin, &ang
		}
		d.Bodies = append(d.Bodies, p)
	}
	if withCalls {
		rec := &render.Recorder{}
		rec.SetViewpoint(s.View.XYZ, s.View.HPR)
		s.Render.Draw(s.ECS, rec)
		d.Calls = rec.Calls
	}
	return d, nil
}
