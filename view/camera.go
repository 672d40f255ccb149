package view

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/milk9111/armsim/common"
)

const (
	nearPlane = 0.01
	farPlane  = 100
)

// Camera is a viewpoint given as a position and heading, pitch and roll in
// degrees. Heading 0 looks along +x; positive pitch looks up. The horizontal
// field of view is 90 degrees.
type Camera struct {
	XYZ    mgl64.Vec3
	HPR    mgl64.Vec3
	Width  int
	Height int
}

func (c Camera) Forward() mgl64.Vec3 {
	h := mgl64.DegToRad(c.HPR.X())
	p := mgl64.DegToRad(c.HPR.Y())
	return mgl64.Vec3{math.Cos(h) * math.Cos(p), math.Sin(h) * math.Cos(p), math.Sin(p)}
}

func (c Camera) up(forward mgl64.Vec3) mgl64.Vec3 {
	up := mgl64.Vec3{0, 0, 1}
	if math.Abs(forward.Dot(up)) > 1-1e-9 {
		up = mgl64.Vec3{1, 0, 0}
	}
	if roll := c.HPR.Z(); roll != 0 {
		up = common.AxisAngle(forward, mgl64.DegToRad(roll)).Mul3x1(up)
	}
	return up
}

func (c Camera) aspect() float64 {
	if c.Width <= 0 || c.Height <= 0 {
		return 1
	}
	return float64(c.Width) / float64(c.Height)
}

// View returns the world to eye transform.
func (c Camera) View() mgl64.Mat4 {
	f := c.Forward()
	return mgl64.LookAtV(c.XYZ, c.XYZ.Add(f), c.up(f))
}

// Projection returns the eye to clip transform.
func (c Camera) Projection() mgl64.Mat4 {
	fovY := 2 * math.Atan(1/c.aspect())
	return mgl64.Perspective(fovY, c.aspect(), nearPlane, farPlane)
}

// projector caches the combined transform for one frame.
type projector struct {
	view, clip mgl64.Mat4
	w, h       float64
}

func (c Camera) projector() projector {
	v := c.View()
	return projector{view: v, clip: c.Projection().Mul4(v), w: float64(c.Width), h: float64(c.Height)}
}

// project maps a world point to pixels. depth is the distance in front of
// the eye; ok is false for points behind the near plane.
func (p projector) project(pt mgl64.Vec3) (x, y, depth float64, ok bool) {
	eye := p.view.Mul4x1(pt.Vec4(1))
	depth = -eye.Z()
	if depth < nearPlane {
		return 0, 0, depth, false
	}
	clip := p.clip.Mul4x1(pt.Vec4(1))
	ndc := clip.Vec3().Mul(1 / clip.W())
	x = (ndc.X() + 1) / 2 * p.w
	y = (1 - ndc.Y()) / 2 * p.h
	return x, y, depth, true
}

// Move translates the camera along its heading, to its right and up. Pitch
// does not tilt the motion.
func (c Camera) Move(forward, right, up float64) Camera {
	h := mgl64.DegToRad(c.HPR.X())
	ahead := mgl64.Vec3{math.Cos(h), math.Sin(h), 0}
	side := mgl64.Vec3{math.Sin(h), -math.Cos(h), 0}
	c.XYZ = c.XYZ.Add(ahead.Mul(forward)).Add(side.Mul(right)).Add(mgl64.Vec3{0, 0, up})
	return c
}

// Turn changes heading and pitch in degrees. Heading wraps to (-180, 180]
// and pitch is clamped short of straight up or down.
func (c Camera) Turn(heading, pitch float64) Camera {
	h := math.Mod(c.HPR.X()+heading, 360)
	switch {
	case h > 180:
		h -= 360
	case h <= -180:
		h += 360
	}
	p := math.Max(-89, math.Min(89, c.HPR.Y()+pitch))
	c.HPR = mgl64.Vec3{h, p, c.HPR.Z()}
	return c
}
