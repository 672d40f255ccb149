package main

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/ebitenui/ebitenui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/milk9111/armsim/assets"
	"github.com/milk9111/armsim/common"
	"github.com/milk9111/armsim/prefabs"
	"github.com/milk9111/armsim/robot"
	"github.com/milk9111/armsim/sim"
	"github.com/milk9111/armsim/view"
)

const (
	// cameraSpeed is in meters per second.
	cameraSpeed = 0.5
	// cameraTurnRate is in degrees per second.
	cameraTurnRate = 60
)

type GameOptions struct {
	Session  sim.Options
	Debug    bool
	Watch    bool
	Textures string
}

type Game struct {
	frames    int
	paused    bool
	groundOff bool

	opts     GameOptions
	input    Input
	log      *log.Logger
	session  *sim.Session
	view     prefabs.ViewSettings
	renderer *view.Renderer
	watcher  *prefabs.Watcher
	ui       *ebitenui.UI
}

func NewGame(opts GameOptions) (*Game, error) {
	g := &Game{opts: opts, log: common.Logger()}
	s, err := sim.Open(opts.Session)
	if err != nil {
		return nil, err
	}
	g.session = s
	g.view = s.View
	g.renderer = view.New(s.View)
	g.loadTextures()

	if opts.Watch {
		w, err := prefabs.NewWatcher("prefabs")
		if err != nil {
			g.log.Warn("spec watch disabled", "err", err)
		} else {
			g.watcher = w
		}
	}

	g.ui = NewPauseUI(g)
	return g, nil
}

func (g *Game) loadTextures() {
	dir := g.view.Textures
	if g.opts.Textures != "" {
		dir = g.opts.Textures
	}
	if err := g.renderer.LoadTextures(dir); err != nil {
		g.log.Warn("textures not loaded", "dir", dir, "err", err)
	}
	if g.renderer.HasTexture() {
		return
	}
	img, err := assets.LoadImage(assets.GroundTexture)
	if err != nil {
		g.log.Warn("embedded ground texture", "err", err)
		return
	}
	g.renderer.SetTexture(img)
}

// rebuild replaces the running arm with a fresh build from the spec file.
// A failed build keeps the current arm.
func (g *Game) rebuild() {
	s, err := sim.Open(g.opts.Session)
	if err != nil {
		g.log.Error("rebuild failed", "spec", g.opts.Session.Spec, "err", err)
		return
	}
	if err := g.session.Close(); err != nil {
		g.log.Warn("closing previous engine", "err", err)
	}
	g.session = s
	g.session.Physics.SetPaused(g.paused)
	g.view = s.View
	g.renderer.SetViewpoint(s.View.XYZ, s.View.HPR)
	g.log.Info("arm rebuilt", "robot", s.Robot.ID, "topology", s.Robot.Topology)
}

func (g *Game) toggleTopology() {
	next := robot.TopologyHinge
	if g.session.Robot.Topology == robot.TopologyHinge {
		next = robot.TopologyFixed
	}
	g.opts.Session.Topology = string(next)
	g.rebuild()
}

func (g *Game) steerCamera() {
	if g.input.ResetViewPressed {
		g.renderer.SetViewpoint(g.view.XYZ, g.view.HPR)
		return
	}
	in := g.input
	if in.Forward == 0 && in.Right == 0 && in.Up == 0 && in.Heading == 0 && in.Pitch == 0 {
		return
	}
	dt := 1 / float64(ebiten.TPS())
	c := g.renderer.Camera().
		Move(in.Forward*cameraSpeed*dt, in.Right*cameraSpeed*dt, in.Up*cameraSpeed*dt).
		Turn(in.Heading*cameraTurnRate*dt, in.Pitch*cameraTurnRate*dt)
	g.renderer.SetViewpoint(c.XYZ, c.HPR)
}

func (g *Game) setPaused(p bool) {
	g.paused = p
	g.session.Physics.SetPaused(p)
}

func (g *Game) Update() error {
	g.frames++

	if g.watcher != nil {
		changed := false
	drain:
		for {
			select {
			case path, ok := <-g.watcher.Events:
				if !ok {
					g.watcher = nil
					break drain
				}
				g.log.Debug("spec changed", "path", path)
				changed = true
			case err, ok := <-g.watcher.Errors:
				if ok {
					g.log.Warn("spec watch", "err", err)
				}
			default:
				break drain
			}
		}
		if changed && g.session.Stale() {
			g.rebuild()
		}
	}

	g.input.Update()
	if g.input.PausePressed {
		g.setPaused(!g.paused)
	}
	if g.input.RebuildPressed {
		g.rebuild()
	}
	if g.input.TopologyPressed {
		g.toggleTopology()
	}
	if g.input.GroundPressed {
		g.groundOff = !g.groundOff
		g.renderer.SetGround(!g.groundOff)
	}
	g.steerCamera()

	if g.paused {
		g.ui.Update()
	}
	g.session.Update()
	return g.session.Physics.Err()
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.renderer.Begin()
	g.session.Render.Draw(g.session.ECS, g.renderer)
	g.renderer.Flush(screen)

	if g.opts.Debug {
		if space, ok := g.session.Space(); ok {
			b := screen.Bounds()
			DrawPlanarDebug(space, screen, DebugView{
				OriginX: float64(b.Dx()) / 2,
				OriginY: float64(b.Dy()) * 0.9,
				Scale:   float64(b.Dy()) * 0.6,
			})
		}
	}

	ebitenutil.DebugPrint(screen, fmt.Sprintf("Frames: %d    FPS: %.2f    t: %.3fs    %s/%s    tris: %d",
		g.frames, ebiten.ActualFPS(),
		float64(g.session.Physics.Ticks())*g.session.World.Step,
		g.opts.Session.Engine, g.session.Robot.Topology, g.renderer.Triangles()))

	if g.paused {
		g.ui.Draw(screen)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.renderer.Resize(outsideWidth, outsideHeight)
	return outsideWidth, outsideHeight
}

func (g *Game) Close() error {
	if g.watcher != nil {
		g.watcher.Close()
	}
	return g.session.Close()
}
