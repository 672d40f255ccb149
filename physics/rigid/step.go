package rigid

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/milk9111/armsim/physics"
)

// Step advances the world by dt seconds: integrate forces, project joints,
// then derive velocities from the corrected poses.
func (w *World) Step(dt float64) error {
	if w.closed {
		return physics.ErrClosed
	}
	if !(dt > 0) || math.IsInf(dt, 0) {
		return fmt.Errorf("rigid: step %v: %w", dt, physics.ErrInvalidTimestep)
	}

	for _, id := range w.bodyOrder {
		integrate(w.bodies[id], w.gravity, dt)
	}

	for i := 0; i < w.iterations; i++ {
		for _, id := range w.jointOrder {
			w.solve(w.joints[id], dt)
		}
	}

	for _, id := range w.bodyOrder {
		settle(w.bodies[id], dt)
	}
	w.elapsed += dt
	return nil
}

func integrate(b *body, gravity mgl64.Vec3, dt float64) {
	b.prevPos = b.pos
	b.prevRot = b.rot

	b.vel = b.vel.Add(gravity.Add(b.force.Mul(b.invMass)).Mul(dt))
	b.pos = b.pos.Add(b.vel.Mul(dt))

	r := b.rot.Mat4().Mat3()
	inertia := r.Mul3(b.mass.Inertia).Mul3(r.Transpose())
	gyro := b.angVel.Cross(inertia.Mul3x1(b.angVel))
	b.angVel = b.angVel.Add(worldInvInertia(b).Mul3x1(b.torque.Sub(gyro)).Mul(dt))
	rotate(b, b.angVel.Mul(dt))

	b.force = mgl64.Vec3{}
	b.torque = mgl64.Vec3{}
}

func settle(b *body, dt float64) {
	b.vel = b.pos.Sub(b.prevPos).Mul(1 / dt)
	dq := b.rot.Mul(b.prevRot.Conjugate())
	if dq.W < 0 {
		dq = dq.Scale(-1)
	}
	b.angVel = dq.V.Mul(2 / dt)
}
