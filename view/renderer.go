// Package view draws the arm with ebiten. Primitives are tessellated on the
// CPU, flat shaded, depth sorted and submitted as colored triangles.
package view

import (
	"errors"
	"image/color"
	"io/fs"
	"math"
	"path/filepath"
	"slices"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/milk9111/armsim/common"
	"github.com/milk9111/armsim/prefabs"
)

const (
	cylinderSlices = 24
	groundTiles    = 24
	groundTile     = 0.25
	ambient        = 0.35
	// maxBatch keeps vertex indices within uint16.
	maxBatch = 65535 / 3
)

var (
	sky         = color.RGBA{R: 128, G: 153, B: 217, A: 255}
	groundLight = mgl64.Vec3{0.50, 0.55, 0.45}
	groundDark  = mgl64.Vec3{0.40, 0.45, 0.35}
)

// shaded is a triangle already in screen space.
type shaded struct {
	X, Y  [3]float32
	U, V  [3]float32
	Color mgl64.Vec3
	Depth float64
}

// Renderer implements render.Renderer. Draw calls between Begin and Flush
// are collected and submitted together so they can be depth sorted.
type Renderer struct {
	cam     Camera
	proj    projector
	light   mgl64.Vec3
	color   mgl64.Vec3
	stacks  int
	slices  int
	ground  bool
	tris    []shaded
	floor   []shaded
	white   *ebiten.Image
	texture *ebiten.Image
	verts   []ebiten.Vertex
	indices []uint16
}

func New(settings prefabs.ViewSettings) *Renderer {
	r := &Renderer{
		cam:    Camera{XYZ: settings.XYZ, HPR: settings.HPR, Width: settings.Width, Height: settings.Height},
		light:  mgl64.Vec3{1, 0.4, 1}.Normalize(),
		ground: true,
	}
	r.stacks, r.slices = sphereDetail(settings.SphereQuality)
	r.proj = r.cam.projector()
	return r
}

// LoadTextures loads ground.png from dir if present. A missing file leaves
// the generated checker in place.
func (r *Renderer) LoadTextures(dir string) error {
	img, _, err := ebitenutil.NewImageFromFile(filepath.Join(dir, "ground.png"))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	r.texture = img
	return nil
}

// SetTexture replaces the ground texture. Nil restores the checker.
func (r *Renderer) SetTexture(img *ebiten.Image) { r.texture = img }

// HasTexture reports whether the ground is textured.
func (r *Renderer) HasTexture() bool { return r.texture != nil }

func (r *Renderer) Camera() Camera { return r.cam }

// SetGround toggles the ground plane.
func (r *Renderer) SetGround(on bool) { r.ground = on }

func (r *Renderer) SetViewpoint(xyz, hpr mgl64.Vec3) {
	r.cam.XYZ, r.cam.HPR = xyz, hpr
	r.proj = r.cam.projector()
}

// Resize adapts the projection to a new screen size.
func (r *Renderer) Resize(width, height int) {
	if width == r.cam.Width && height == r.cam.Height {
		return
	}
	r.cam.Width, r.cam.Height = width, height
	r.proj = r.cam.projector()
}

func (r *Renderer) SetColor(red, green, blue float64) {
	r.color = mgl64.Vec3{red, green, blue}
}

func (r *Renderer) DrawCylinder(pos mgl64.Vec3, rot mgl64.Mat3, length, radius float64) {
	r.add(pos, rot, cylinderMesh(length, radius, cylinderSlices))
}

func (r *Renderer) DrawBox(pos mgl64.Vec3, rot mgl64.Mat3, sides mgl64.Vec3) {
	r.add(pos, rot, boxMesh(sides))
}

func (r *Renderer) DrawCapsule(pos mgl64.Vec3, rot mgl64.Mat3, length, radius float64) {
	r.add(pos, rot, capsuleMesh(length, radius, r.stacks, r.slices))
}

func (r *Renderer) DrawSphere(pos mgl64.Vec3, rot mgl64.Mat3, radius float64) {
	r.add(pos, rot, sphereMesh(radius, r.stacks, r.slices, -math.Pi, math.Pi, 0))
}

// Begin starts a frame and lays down the ground plane.
func (r *Renderer) Begin() {
	r.tris = r.tris[:0]
	r.floor = r.floor[:0]
	if !r.ground {
		return
	}
	half := float64(groundTiles) * groundTile / 2
	for i := 0; i < groundTiles; i++ {
		for j := 0; j < groundTiles; j++ {
			x0, y0 := -half+float64(i)*groundTile, -half+float64(j)*groundTile
			x1, y1 := x0+groundTile, y0+groundTile
			c := groundLight
			if (i+j)%2 == 1 {
				c = groundDark
			}
			a, b := mgl64.Vec3{x0, y0, 0}, mgl64.Vec3{x1, y0, 0}
			cc, d := mgl64.Vec3{x1, y1, 0}, mgl64.Vec3{x0, y1, 0}
			r.floor = r.appendFlat(r.floor, [3]mgl64.Vec3{a, b, cc}, [3][2]float32{{0, 1}, {1, 1}, {1, 0}}, c)
			r.floor = r.appendFlat(r.floor, [3]mgl64.Vec3{a, cc, d}, [3][2]float32{{0, 1}, {1, 0}, {0, 0}}, c)
		}
	}
}

// Triangles returns the number of object triangles collected this frame.
func (r *Renderer) Triangles() int { return len(r.tris) }

// add transforms a local mesh into the world, culls faces turned away from
// the eye, shades the rest with the current color and queues them.
func (r *Renderer) add(pos mgl64.Vec3, rot mgl64.Mat3, mesh []triangle) {
	for _, t := range mesh {
		var world [3]mgl64.Vec3
		for i, v := range t.V {
			world[i] = pos.Add(rot.Mul3x1(v))
		}
		n := rot.Mul3x1(t.N)
		if n.Dot(r.cam.XYZ.Sub(world[0])) <= 0 {
			continue
		}
		shade := ambient + (1-ambient)*max(0, n.Dot(r.light))
		s, ok := r.screen(world)
		if !ok {
			continue
		}
		s.Color = r.color.Mul(shade)
		r.tris = append(r.tris, s)
	}
}

func (r *Renderer) appendFlat(dst []shaded, world [3]mgl64.Vec3, uv [3][2]float32, c mgl64.Vec3) []shaded {
	s, ok := r.screen(world)
	if !ok {
		return dst
	}
	for i := range uv {
		s.U[i], s.V[i] = uv[i][0], uv[i][1]
	}
	s.Color = c
	return append(dst, s)
}

func (r *Renderer) screen(world [3]mgl64.Vec3) (shaded, bool) {
	var s shaded
	for i, v := range world {
		x, y, d, ok := r.proj.project(v)
		if !ok {
			return s, false
		}
		s.X[i], s.Y[i] = float32(x), float32(y)
		s.Depth += d / 3
	}
	return s, true
}

// sortFarFirst orders triangles for the painter's algorithm.
func sortFarFirst(tris []shaded) {
	slices.SortStableFunc(tris, func(a, b shaded) int {
		switch {
		case a.Depth > b.Depth:
			return -1
		case a.Depth < b.Depth:
			return 1
		}
		return 0
	})
}

// Flush draws the collected frame on screen.
func (r *Renderer) Flush(screen *ebiten.Image) {
	if r.white == nil {
		r.white = ebiten.NewImage(3, 3)
		r.white.Fill(color.White)
	}
	screen.Fill(sky)

	sortFarFirst(r.floor)
	if r.texture != nil {
		b := r.texture.Bounds()
		r.submit(screen, r.floor, r.texture, float32(b.Dx()), float32(b.Dy()), true)
	} else {
		r.submit(screen, r.floor, r.white, 0, 0, false)
	}

	sortFarFirst(r.tris)
	r.submit(screen, r.tris, r.white, 0, 0, false)
}

func (r *Renderer) submit(screen *ebiten.Image, tris []shaded, src *ebiten.Image, w, h float32, textured bool) {
	for start := 0; start < len(tris); start += maxBatch {
		end := min(start+maxBatch, len(tris))
		r.verts = r.verts[:0]
		r.indices = r.indices[:0]
		for _, t := range tris[start:end] {
			for i := 0; i < 3; i++ {
				sx, sy := float32(1), float32(1)
				cr, cg, cb := float32(common.Clamp01(t.Color.X())), float32(common.Clamp01(t.Color.Y())), float32(common.Clamp01(t.Color.Z()))
				if textured {
					sx, sy = t.U[i]*w, t.V[i]*h
					cr, cg, cb = 1, 1, 1
				}
				r.indices = append(r.indices, uint16(len(r.verts)))
				r.verts = append(r.verts, ebiten.Vertex{
					DstX: t.X[i], DstY: t.Y[i],
					SrcX: sx, SrcY: sy,
					ColorR: cr, ColorG: cg, ColorB: cb, ColorA: 1,
				})
			}
		}
		screen.DrawTriangles(r.verts, r.indices, src, &ebiten.DrawTrianglesOptions{})
	}
}
