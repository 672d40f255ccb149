// Package planar runs the arm on a Chipmunk space. Bodies live in the x-z
// plane (Chipmunk's x and y) and may only rotate about the world y axis; the
// out-of-plane orientation given at build time is carried along unchanged.
package planar

import (
	"fmt"
	"math"
	"slices"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/jakecoffman/cp"

	"github.com/milk9111/armsim/common"
	"github.com/milk9111/armsim/physics"
	"github.com/milk9111/armsim/shape"
)

const collisionTypeArm cp.CollisionType = 1

type Option func(*World)

// WithGravity sets gravity. Only the x and z components act.
func WithGravity(g mgl64.Vec3) Option {
	return func(w *World) { w.gravity = g }
}

func WithIterations(n int) Option {
	return func(w *World) {
		if n > 0 {
			w.iterations = n
		}
	}
}

// WithERP sets the per-step joint error correction, in (0, 1].
func WithERP(erp float64) Option {
	return func(w *World) {
		if erp > 0 && erp <= 1 {
			w.erp = erp
		}
	}
}

// WithStep is the timestep used to convert ERP into Chipmunk's per-second
// error bias.
func WithStep(dt float64) Option {
	return func(w *World) {
		if dt > 0 {
			w.step = dt
		}
	}
}

func WithMaxBodies(n int) Option {
	return func(w *World) { w.maxBodies = n }
}

type body struct {
	body   *cp.Body
	y      float64
	base   mgl64.Mat3
	mass   shape.Mass
	geoms  []physics.GeomID
	shapes []*cp.Shape
}

type geom struct {
	body physics.BodyID
	dims shape.Dims
}

type joint struct {
	kind        physics.JointKind
	a, b        physics.BodyID
	constraints []*cp.Constraint
	sign        float64
	angle0      float64
}

// World owns the Chipmunk space. It implements physics.Engine.
type World struct {
	space      *cp.Space
	gravity    mgl64.Vec3
	iterations int
	erp        float64
	step       float64
	maxBodies  int

	bodies map[physics.BodyID]*body
	geoms  map[physics.GeomID]*geom
	joints map[physics.JointID]*joint

	nextBody  physics.BodyID
	nextGeom  physics.GeomID
	nextJoint physics.JointID
}

var _ physics.Engine = (*World)(nil)
var _ physics.Inspector = (*World)(nil)
var _ physics.StatsReporter = (*World)(nil)
var _ physics.Kinematics = (*World)(nil)

func NewWorld(opts ...Option) *World {
	w := &World{
		gravity:    common.GravityVec(),
		iterations: 20,
		erp:        1,
		step:       common.TimeStep,
		bodies:     make(map[physics.BodyID]*body),
		geoms:      make(map[physics.GeomID]*geom),
		joints:     make(map[physics.JointID]*joint),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}

	space := cp.NewSpace()
	setIterations(&space.Iterations, w.iterations)
	space.SetGravity(cp.Vector{X: w.gravity.X(), Y: w.gravity.Z()})
	w.space = space
	return w
}

func setIterations[T ~int | ~uint](dst *T, n int) {
	*dst = T(n)
}

// Space returns the underlying Chipmunk space.
func (w *World) Space() *cp.Space {
	if w == nil {
		return nil
	}
	return w.space
}

func (w *World) CreateBody() (physics.BodyID, error) {
	if w.space == nil {
		return 0, physics.ErrClosed
	}
	if w.maxBodies > 0 && len(w.bodies) >= w.maxBodies {
		return 0, fmt.Errorf("planar: create body: %w (max %d)", physics.ErrCapacity, w.maxBodies)
	}
	cb := cp.NewBody(1, 1)
	w.space.AddBody(cb)

	w.nextBody++
	w.bodies[w.nextBody] = &body{
		body: cb,
		base: mgl64.Ident3(),
		mass: shape.Mass{Total: 1, Inertia: mgl64.Ident3()},
	}
	return w.nextBody, nil
}

func (w *World) DestroyBody(id physics.BodyID) error {
	b, err := w.body(id)
	if err != nil {
		return err
	}
	for jid, j := range w.joints {
		if j.a == id || j.b == id {
			w.removeJoint(jid)
		}
	}
	for _, s := range b.shapes {
		w.space.RemoveShape(s)
	}
	for _, g := range b.geoms {
		delete(w.geoms, g)
	}
	w.space.RemoveBody(b.body)
	delete(w.bodies, id)
	return nil
}

func (w *World) SetPosition(id physics.BodyID, p mgl64.Vec3) error {
	b, err := w.body(id)
	if err != nil {
		return err
	}
	b.body.SetPosition(cp.Vector{X: p.X(), Y: p.Z()})
	b.y = p.Y()
	return nil
}

// SetRotation stores r as the body's base orientation and resets its planar
// angle. Geometry and moment are rebuilt against the new base.
func (w *World) SetRotation(id physics.BodyID, r mgl64.Mat3) error {
	b, err := w.body(id)
	if err != nil {
		return err
	}
	b.base = r
	b.body.SetAngle(0)
	w.applyMass(b)
	w.rebuildShapes(b)
	return nil
}

func (w *World) SetMass(id physics.BodyID, m shape.Mass) error {
	b, err := w.body(id)
	if err != nil {
		return err
	}
	if !(m.Total > 0) || math.IsInf(m.Total, 0) || m.Inertia.Det() <= 0 {
		return fmt.Errorf("planar: set mass on body %d: %w", id, physics.ErrInvalidMass)
	}
	b.mass = m
	w.applyMass(b)
	return nil
}

func (w *World) applyMass(b *body) {
	inertia := b.base.Mul3(b.mass.Inertia).Mul3(b.base.Transpose())
	b.body.SetMass(b.mass.Total)
	b.body.SetMoment(inertia.At(1, 1))
}

func (w *World) Position(id physics.BodyID) (mgl64.Vec3, error) {
	b, err := w.body(id)
	if err != nil {
		return mgl64.Vec3{}, err
	}
	p := b.body.Position()
	return mgl64.Vec3{p.X, b.y, p.Y}, nil
}

// Rotation composes the planar angle (about -y in world terms, since
// Chipmunk turns x toward z) onto the base orientation.
func (w *World) Rotation(id physics.BodyID) (mgl64.Mat3, error) {
	b, err := w.body(id)
	if err != nil {
		return mgl64.Mat3{}, err
	}
	return mgl64.Rotate3DY(-b.body.Angle()).Mul3(b.base), nil
}

// Velocity lifts the planar velocities into the world frame. The angular
// velocity lies along y.
func (w *World) Velocity(id physics.BodyID) (lin, ang mgl64.Vec3, err error) {
	b, err := w.body(id)
	if err != nil {
		return mgl64.Vec3{}, mgl64.Vec3{}, err
	}
	v := b.body.Velocity()
	return mgl64.Vec3{v.X, 0, v.Y}, mgl64.Vec3{0, -b.body.AngularVelocity(), 0}, nil
}

// AddForce applies the in-plane part of f at the center of mass.
func (w *World) AddForce(id physics.BodyID, f mgl64.Vec3) error {
	b, err := w.body(id)
	if err != nil {
		return err
	}
	b.body.ApplyForceAtLocalPoint(cp.Vector{X: f.X(), Y: f.Z()}, cp.Vector{})
	return nil
}

// AddTorque applies the y component of t.
func (w *World) AddTorque(id physics.BodyID, t mgl64.Vec3) error {
	b, err := w.body(id)
	if err != nil {
		return err
	}
	b.body.SetTorque(b.body.Torque() - t.Y())
	return nil
}

func (w *World) CreateGeom(s shape.Shape) (physics.GeomID, error) {
	if w.space == nil {
		return 0, physics.ErrClosed
	}
	if err := shape.Check(s); err != nil {
		return 0, fmt.Errorf("planar: create geom: %w", err)
	}
	w.nextGeom++
	w.geoms[w.nextGeom] = &geom{body: physics.World, dims: s.Dims()}
	return w.nextGeom, nil
}

// SetGeomBody binds g to a dynamic body. Static geometry is not supported.
func (w *World) SetGeomBody(gid physics.GeomID, id physics.BodyID) error {
	if w.space == nil {
		return physics.ErrClosed
	}
	g, ok := w.geoms[gid]
	if !ok {
		return fmt.Errorf("planar: geom %d: %w", gid, physics.ErrNoGeom)
	}
	if id == physics.World {
		return fmt.Errorf("planar: static geom %d: %w", gid, physics.ErrUnsupported)
	}
	b, err := w.body(id)
	if err != nil {
		return err
	}
	if old, ok := w.bodies[g.body]; ok && g.body != id {
		old.geoms = slices.DeleteFunc(old.geoms, func(v physics.GeomID) bool { return v == gid })
		w.rebuildShapes(old)
	}
	g.body = id
	if !slices.Contains(b.geoms, gid) {
		b.geoms = append(b.geoms, gid)
	}
	w.rebuildShapes(b)
	return nil
}

func (w *World) DestroyGeom(gid physics.GeomID) error {
	if w.space == nil {
		return physics.ErrClosed
	}
	g, ok := w.geoms[gid]
	if !ok {
		return fmt.Errorf("planar: geom %d: %w", gid, physics.ErrNoGeom)
	}
	if b, ok := w.bodies[g.body]; ok {
		b.geoms = slices.DeleteFunc(b.geoms, func(v physics.GeomID) bool { return v == gid })
		w.rebuildShapes(b)
	}
	delete(w.geoms, gid)
	return nil
}

func (w *World) Geom(gid physics.GeomID) (physics.GeomInfo, error) {
	g, ok := w.geoms[gid]
	if !ok {
		return physics.GeomInfo{}, fmt.Errorf("planar: geom %d: %w", gid, physics.ErrNoGeom)
	}
	return physics.GeomInfo{Body: g.body, Dims: g.dims}, nil
}

func (w *World) Mass(id physics.BodyID) (shape.Mass, error) {
	b, err := w.body(id)
	if err != nil {
		return shape.Mass{}, err
	}
	return b.mass, nil
}

// Shapes returns the Chipmunk shapes currently bound to a body.
func (w *World) Shapes(id physics.BodyID) ([]*cp.Shape, error) {
	b, err := w.body(id)
	if err != nil {
		return nil, err
	}
	return slices.Clone(b.shapes), nil
}

func (w *World) Stats() physics.Stats {
	return physics.Stats{Bodies: len(w.bodies), Geoms: len(w.geoms), Joints: len(w.joints)}
}

func (w *World) Step(dt float64) error {
	if w.space == nil {
		return physics.ErrClosed
	}
	if !(dt > 0) || math.IsInf(dt, 0) {
		return fmt.Errorf("planar: step %v: %w", dt, physics.ErrInvalidTimestep)
	}
	w.space.Step(dt)
	return nil
}

// Close drops the space and everything in it.
func (w *World) Close() error {
	if w == nil || w.space == nil {
		return nil
	}
	for id := range w.bodies {
		_ = w.DestroyBody(id)
	}
	clear(w.geoms)
	w.space = nil
	return nil
}

func (w *World) body(id physics.BodyID) (*body, error) {
	if w.space == nil {
		return nil, physics.ErrClosed
	}
	b, ok := w.bodies[id]
	if !ok {
		return nil, fmt.Errorf("planar: body %d: %w", id, physics.ErrNoBody)
	}
	return b, nil
}

// cpBody maps a body id to its Chipmunk body, with World as the static body.
func (w *World) cpBody(id physics.BodyID) (*cp.Body, error) {
	if id == physics.World {
		if w.space == nil {
			return nil, physics.ErrClosed
		}
		return w.space.StaticBody, nil
	}
	b, err := w.body(id)
	if err != nil {
		return nil, err
	}
	return b.body, nil
}
