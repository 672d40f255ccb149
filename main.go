package main

import (
	"flag"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/milk9111/armsim/common"
	"github.com/milk9111/armsim/prefabs"
	"github.com/milk9111/armsim/sim"
)

func main() {
	robotSpec := flag.String("robot", prefabs.DefaultRobot, "robot spec (YAML or TOML), under prefabs/ or a path")
	engine := flag.String("engine", string(sim.EngineRigid), "physics engine: rigid or planar")
	topology := flag.String("topology", "", "override the spec topology: fixed or hinge")
	steps := flag.Int("steps", 16, "physics steps per frame")
	debug := flag.Bool("debug", false, "draw the planar engine's shapes and constraints")
	watch := flag.Bool("watch", false, "rebuild the arm when a spec under prefabs/ changes")
	level := flag.String("log", "", "log level: debug, info, warn or error")
	textures := flag.String("textures", "", "texture directory (overrides the spec)")
	flag.Parse()

	logger := common.Logger()

	if *level != "" {
		if err := common.SetLogLevel(*level); err != nil {
			logger.Fatal("bad log level", "err", err)
		}
	}

	game, err := NewGame(GameOptions{
		Session: sim.Options{
			Spec:     *robotSpec,
			Engine:   sim.EngineKind(*engine),
			Topology: *topology,
			Steps:    *steps,
		},
		Debug:    *debug,
		Watch:    *watch,
		Textures: *textures,
	})
	if err != nil {
		logger.Fatal("build failed", "err", err)
	}
	defer game.Close()

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(game.view.Width, game.view.Height)
	ebiten.SetWindowTitle("armsim")

	if err := ebiten.RunGame(game); err != nil {
		logger.Fatal("viewer stopped", "err", err)
	}
}
