package common

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	// Gravity is the world acceleration along -z in m/s².
	Gravity = -9.8
	// TimeStep is the fixed physics step per tick in seconds.
	TimeStep = 0.001

	// Epsilon bounds float comparisons on unit quantities.
	Epsilon = 1e-9
)

// GravityVec is the default gravity vector.
func GravityVec() mgl64.Vec3 {
	return mgl64.Vec3{0, 0, Gravity}
}

func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// AxisAngle returns the rotation of angle radians about axis. The axis need
// not be normalized. A zero axis yields the identity and angle is ignored.
func AxisAngle(axis mgl64.Vec3, angle float64) mgl64.Mat3 {
	return AxisAngleQuat(axis, angle).Mat4().Mat3()
}

// AxisAngleQuat is AxisAngle as a unit quaternion.
func AxisAngleQuat(axis mgl64.Vec3, angle float64) mgl64.Quat {
	n := axis.Len()
	if n < Epsilon || math.IsNaN(n) {
		return mgl64.QuatIdent()
	}
	return mgl64.QuatRotate(angle, axis.Mul(1/n))
}

// MatToQuat converts an orthonormal rotation matrix to a unit quaternion.
func MatToQuat(m mgl64.Mat3) mgl64.Quat {
	return mgl64.Mat4ToQuat(m.Mat4()).Normalize()
}

// Finite reports whether every component of v is a finite number.
func Finite(v mgl64.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}
