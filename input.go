package main

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

const stickDeadZone = 0.2

// Input holds one frame of viewer input.
type Input struct {
	// Forward, Right and Up are camera motion in [-1, 1].
	Forward, Right, Up float64
	// Heading and Pitch are camera turn rates in [-1, 1].
	Heading, Pitch float64

	PausePressed    bool
	RebuildPressed  bool
	GroundPressed   bool
	TopologyPressed bool
	// ResetViewPressed restores the spec viewpoint.
	ResetViewPressed bool
}

func axis(neg, pos ebiten.Key) float64 {
	var v float64
	if ebiten.IsKeyPressed(neg) {
		v--
	}
	if ebiten.IsKeyPressed(pos) {
		v++
	}
	return v
}

func stick(gid ebiten.GamepadID, a ebiten.StandardGamepadAxis) float64 {
	v := ebiten.StandardGamepadAxisValue(gid, a)
	if v > -stickDeadZone && v < stickDeadZone {
		return 0
	}
	return v
}

// Update polls the keyboard and the first gamepad.
func (i *Input) Update() {
	i.Forward = axis(ebiten.KeyS, ebiten.KeyW)
	i.Right = axis(ebiten.KeyA, ebiten.KeyD)
	i.Up = axis(ebiten.KeyQ, ebiten.KeyE)
	i.Heading = axis(ebiten.KeyRight, ebiten.KeyLeft)
	i.Pitch = axis(ebiten.KeyDown, ebiten.KeyUp)

	i.PausePressed = inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyP)
	i.RebuildPressed = inpututil.IsKeyJustPressed(ebiten.KeyR)
	i.GroundPressed = inpututil.IsKeyJustPressed(ebiten.KeyG)
	i.TopologyPressed = inpututil.IsKeyJustPressed(ebiten.KeyT)
	i.ResetViewPressed = inpututil.IsKeyJustPressed(ebiten.KeyHome)

	ids := ebiten.GamepadIDs()
	if len(ids) == 0 {
		return
	}
	gid := ids[0]
	if !ebiten.IsStandardGamepadLayoutAvailable(gid) {
		return
	}

	if v := stick(gid, ebiten.StandardGamepadAxisLeftStickVertical); v != 0 {
		i.Forward = -v
	}
	if v := stick(gid, ebiten.StandardGamepadAxisLeftStickHorizontal); v != 0 {
		i.Right = v
	}
	if v := stick(gid, ebiten.StandardGamepadAxisRightStickHorizontal); v != 0 {
		i.Heading = -v
	}
	if v := stick(gid, ebiten.StandardGamepadAxisRightStickVertical); v != 0 {
		i.Pitch = -v
	}
	if ebiten.IsStandardGamepadButtonPressed(gid, ebiten.StandardGamepadButtonFrontTopRight) {
		i.Up = 1
	}
	if ebiten.IsStandardGamepadButtonPressed(gid, ebiten.StandardGamepadButtonFrontTopLeft) {
		i.Up = -1
	}

	i.PausePressed = i.PausePressed || inpututil.IsStandardGamepadButtonJustPressed(gid, ebiten.StandardGamepadButtonCenterRight)
	i.RebuildPressed = i.RebuildPressed || inpututil.IsStandardGamepadButtonJustPressed(gid, ebiten.StandardGamepadButtonRightLeft)
	i.TopologyPressed = i.TopologyPressed || inpututil.IsStandardGamepadButtonJustPressed(gid, ebiten.StandardGamepadButtonRightTop)
	i.ResetViewPressed = i.ResetViewPressed || inpututil.IsStandardGamepadButtonJustPressed(gid, ebiten.StandardGamepadButtonCenterLeft)
}
