package system

import (
	"github.com/charmbracelet/log"

	"github.com/milk9111/armsim/common"
	"github.com/milk9111/armsim/ecs"
	"github.com/milk9111/armsim/ecs/component"
	"github.com/milk9111/armsim/physics"
	"github.com/milk9111/armsim/render"
)

// RenderSystem draws every body entity through a render.Renderer.
type RenderSystem struct {
	eng    physics.Engine
	failed map[ecs.Entity]bool
	log    *log.Logger
}

func NewRenderSystem(eng physics.Engine) *RenderSystem {
	return &RenderSystem{
		eng:    eng,
		failed: make(map[ecs.Entity]bool),
		log:    common.Logger(),
	}
}

// Draw issues one primitive per body in entity order and returns how many
// were drawn. A body that fails to draw is logged once and skipped.
func (r *RenderSystem) Draw(w *ecs.World, rd render.Renderer) int {
	if r == nil || w == nil || rd == nil {
		return 0
	}
	drawn := 0
	for _, e := range ecs.Query(w, component.BodyComponent.Kind()) {
		b, _ := ecs.Get(w, e, component.BodyComponent.Kind())
		if err := render.Draw(rd, r.eng, b.Body); err != nil {
			if !r.failed[e] {
				r.failed[e] = true
				r.log.Warn("draw failed", "entity", e, "err", err)
			}
			continue
		}
		drawn++
	}
	return drawn
}
