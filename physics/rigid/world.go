// Package rigid is a 3D rigid-body world with fixed and hinge joints solved
// by position projection. It implements physics.Engine.
package rigid

import (
	"fmt"
	"slices"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/milk9111/armsim/common"
	"github.com/milk9111/armsim/physics"
	"github.com/milk9111/armsim/shape"
)

const (
	defaultIterations = 20
	defaultERP        = 1.0
)

type Option func(*World)

func WithGravity(g mgl64.Vec3) Option {
	return func(w *World) { w.gravity = g }
}

// WithIterations sets the constraint projection passes per step.
func WithIterations(n int) Option {
	return func(w *World) {
		if n > 0 {
			w.iterations = n
		}
	}
}

// WithERP sets the fraction of joint error corrected per pass, in (0, 1].
func WithERP(erp float64) Option {
	return func(w *World) {
		if erp > 0 && erp <= 1 {
			w.erp = erp
		}
	}
}

// WithCFM sets joint compliance. Zero makes joints hard.
func WithCFM(cfm float64) Option {
	return func(w *World) {
		if cfm >= 0 {
			w.cfm = cfm
		}
	}
}

// WithMaxBodies caps the number of live bodies. Zero means no cap.
func WithMaxBodies(n int) Option {
	return func(w *World) { w.maxBodies = n }
}

type body struct {
	pos     mgl64.Vec3
	rot     mgl64.Quat
	prevPos mgl64.Vec3
	prevRot mgl64.Quat
	vel     mgl64.Vec3
	angVel  mgl64.Vec3
	force   mgl64.Vec3
	torque  mgl64.Vec3

	mass       shape.Mass
	invMass    float64
	invInertia mgl64.Mat3 // body frame
	geoms      []physics.GeomID
}

type geom struct {
	body physics.BodyID
	dims shape.Dims
}

// World is a physics.Engine. It is not safe for concurrent use.
type World struct {
	gravity    mgl64.Vec3
	iterations int
	erp        float64
	cfm        float64
	maxBodies  int

	bodies     map[physics.BodyID]*body
	bodyOrder  []physics.BodyID
	geoms      map[physics.GeomID]*geom
	joints     map[physics.JointID]*joint
	jointOrder []physics.JointID

	nextBody  physics.BodyID
	nextGeom  physics.GeomID
	nextJoint physics.JointID

	elapsed float64
	closed  bool
}

var _ physics.Engine = (*World)(nil)
var _ physics.Inspector = (*World)(nil)
var _ physics.StatsReporter = (*World)(nil)
var _ physics.Kinematics = (*World)(nil)

func NewWorld(opts ...Option) *World {
	w := &World{
		gravity:    common.GravityVec(),
		iterations: defaultIterations,
		erp:        defaultERP,
		bodies:     make(map[physics.BodyID]*body),
		geoms:      make(map[physics.GeomID]*geom),
		joints:     make(map[physics.JointID]*joint),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}
	return w
}

// CreateBody adds a body at the origin with unit mass and identity inertia.
func (w *World) CreateBody() (physics.BodyID, error) {
	if w.closed {
		return 0, physics.ErrClosed
	}
	if w.maxBodies > 0 && len(w.bodies) >= w.maxBodies {
		return 0, fmt.Errorf("rigid: create body: %w (max %d)", physics.ErrCapacity, w.maxBodies)
	}
	w.nextBody++
	id := w.nextBody
	w.bodies[id] = &body{
		rot:        mgl64.QuatIdent(),
		prevRot:    mgl64.QuatIdent(),
		mass:       shape.Mass{Total: 1, Inertia: mgl64.Ident3()},
		invMass:    1,
		invInertia: mgl64.Ident3(),
	}
	w.bodyOrder = append(w.bodyOrder, id)
	return id, nil
}

// DestroyBody removes b together with its geometries and any joint using it.
func (w *World) DestroyBody(id physics.BodyID) error {
	b, err := w.body(id)
	if err != nil {
		return err
	}
	for _, g := range b.geoms {
		delete(w.geoms, g)
	}
	for _, jid := range slices.Clone(w.jointOrder) {
		if j := w.joints[jid]; j.a == id || j.b == id {
			w.removeJoint(jid)
		}
	}
	delete(w.bodies, id)
	w.bodyOrder = slices.DeleteFunc(w.bodyOrder, func(v physics.BodyID) bool { return v == id })
	return nil
}

func (w *World) SetPosition(id physics.BodyID, p mgl64.Vec3) error {
	b, err := w.body(id)
	if err != nil {
		return err
	}
	b.pos, b.prevPos = p, p
	return nil
}

func (w *World) SetRotation(id physics.BodyID, r mgl64.Mat3) error {
	b, err := w.body(id)
	if err != nil {
		return err
	}
	q := common.MatToQuat(r)
	b.rot, b.prevRot = q, q
	return nil
}

// SetMass binds m to the body. The center of mass must be the body origin.
func (w *World) SetMass(id physics.BodyID, m shape.Mass) error {
	b, err := w.body(id)
	if err != nil {
		return err
	}
	if !(m.Total > 0) || m.Center != (mgl64.Vec3{}) || m.Inertia.Det() <= 0 {
		return fmt.Errorf("rigid: set mass on body %d: %w", id, physics.ErrInvalidMass)
	}
	b.mass = m
	b.invMass = 1 / m.Total
	b.invInertia = m.Inertia.Inv()
	return nil
}

func (w *World) Position(id physics.BodyID) (mgl64.Vec3, error) {
	b, err := w.body(id)
	if err != nil {
		return mgl64.Vec3{}, err
	}
	return b.pos, nil
}

func (w *World) Rotation(id physics.BodyID) (mgl64.Mat3, error) {
	b, err := w.body(id)
	if err != nil {
		return mgl64.Mat3{}, err
	}
	return b.rot.Mat4().Mat3(), nil
}

// AddForce accumulates a force through the center of mass until the next step.
func (w *World) AddForce(id physics.BodyID, f mgl64.Vec3) error {
	b, err := w.body(id)
	if err != nil {
		return err
	}
	b.force = b.force.Add(f)
	return nil
}

func (w *World) AddTorque(id physics.BodyID, t mgl64.Vec3) error {
	b, err := w.body(id)
	if err != nil {
		return err
	}
	b.torque = b.torque.Add(t)
	return nil
}

// Velocity returns the linear and angular velocity of a body.
func (w *World) Velocity(id physics.BodyID) (lin, ang mgl64.Vec3, err error) {
	b, err := w.body(id)
	if err != nil {
		return mgl64.Vec3{}, mgl64.Vec3{}, err
	}
	return b.vel, b.angVel, nil
}

func (w *World) CreateGeom(s shape.Shape) (physics.GeomID, error) {
	if w.closed {
		return 0, physics.ErrClosed
	}
	if err := shape.Check(s); err != nil {
		return 0, fmt.Errorf("rigid: create geom: %w", err)
	}
	w.nextGeom++
	w.geoms[w.nextGeom] = &geom{body: physics.World, dims: s.Dims()}
	return w.nextGeom, nil
}

// SetGeomBody binds g to b. Binding to physics.World makes g static.
func (w *World) SetGeomBody(gid physics.GeomID, id physics.BodyID) error {
	if w.closed {
		return physics.ErrClosed
	}
	g, ok := w.geoms[gid]
	if !ok {
		return fmt.Errorf("rigid: geom %d: %w", gid, physics.ErrNoGeom)
	}
	var target *body
	if id != physics.World {
		b, err := w.body(id)
		if err != nil {
			return err
		}
		target = b
	}
	if old, ok := w.bodies[g.body]; ok {
		old.geoms = slices.DeleteFunc(old.geoms, func(v physics.GeomID) bool { return v == gid })
	}
	g.body = id
	if target != nil {
		target.geoms = append(target.geoms, gid)
	}
	return nil
}

func (w *World) DestroyGeom(gid physics.GeomID) error {
	if w.closed {
		return physics.ErrClosed
	}
	g, ok := w.geoms[gid]
	if !ok {
		return fmt.Errorf("rigid: geom %d: %w", gid, physics.ErrNoGeom)
	}
	if b, ok := w.bodies[g.body]; ok {
		b.geoms = slices.DeleteFunc(b.geoms, func(v physics.GeomID) bool { return v == gid })
	}
	delete(w.geoms, gid)
	return nil
}

func (w *World) Geom(gid physics.GeomID) (physics.GeomInfo, error) {
	g, ok := w.geoms[gid]
	if !ok {
		return physics.GeomInfo{}, fmt.Errorf("rigid: geom %d: %w", gid, physics.ErrNoGeom)
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

func (w *World) Stats() physics.Stats {
	return physics.Stats{Bodies: len(w.bodies), Geoms: len(w.geoms), Joints: len(w.joints)}
}

// Elapsed returns the simulated time in seconds.
func (w *World) Elapsed() float64 {
	return w.elapsed
}

// Close releases every body, geometry and joint. Later calls fail with
// physics.ErrClosed.
func (w *World) Close() error {
	if w == nil || w.closed {
		return nil
	}
	clear(w.bodies)
	clear(w.geoms)
	clear(w.joints)
	w.bodyOrder = nil
	w.jointOrder = nil
	w.closed = true
	return nil
}

func (w *World) body(id physics.BodyID) (*body, error) {
	if w.closed {
		return nil, physics.ErrClosed
	}
	b, ok := w.bodies[id]
	if !ok {
		return nil, fmt.Errorf("rigid: body %d: %w", id, physics.ErrNoBody)
	}
	return b, nil
}

// frame returns the body for id, or nil for the static world frame.
func (w *World) frame(id physics.BodyID) (*body, error) {
	if id == physics.World {
		if w.closed {
			return nil, physics.ErrClosed
		}
		return nil, nil
	}
	return w.body(id)
}
