package main

import (
	"github.com/charmbracelet/harmonica"
	"github.com/taigrr/scanline/pkg/render"
)

// Axis tracks one camera velocity that a harmonica spring pulls back to
// rest, so a key press gives a push that eases out.
type Axis struct {
	Velocity float64
	spring   harmonica.Spring
	accel    float64 // internal spring velocity (for animating Velocity toward 0)
}

// NewAxis creates an axis with a critically damped spring.
func NewAxis(fps int) Axis {
	return Axis{
		// Frequency 6.0 = quick settle, damping 1.0 = critically damped (no overshoot)
		spring: harmonica.NewSpring(harmonica.FPS(fps), 6.0, 1.0),
	}
}

// Step returns the velocity to apply this frame and decays it toward 0.
func (a *Axis) Step() float64 {
	v := a.Velocity
	a.Velocity, a.accel = a.spring.Update(a.Velocity, a.accel, 0)
	return v
}

// Motion holds the six camera axes.
type Motion struct {
	Forward, Right, Up Axis // Translation, world units per frame
	Yaw, Pitch, Roll   Axis // Rotation, degrees per frame
	fps                int
}

// NewMotion creates a motion state at rest.
func NewMotion(fps int) *Motion {
	m := &Motion{fps: fps}
	m.Stop()
	return m
}

// Stop brings every axis to rest.
func (m *Motion) Stop() {
	m.Forward, m.Right, m.Up = NewAxis(m.fps), NewAxis(m.fps), NewAxis(m.fps)
	m.Yaw, m.Pitch, m.Roll = NewAxis(m.fps), NewAxis(m.fps), NewAxis(m.fps)
}

// Apply advances the camera one frame.
func (m *Motion) Apply(cam *render.Camera) {
	if v := m.Forward.Step(); v != 0 {
		cam.TranslateForward(v)
	}
	if v := m.Right.Step(); v != 0 {
		cam.TranslateRight(v)
	}
	if v := m.Up.Step(); v != 0 {
		cam.TranslateUp(v)
	}

	turned := false
	if v := m.Yaw.Step(); v != 0 {
		cam.RotateUp(v)
		turned = true
	}
	if v := m.Pitch.Step(); v != 0 {
		cam.RotateRight(v)
		turned = true
	}
	if v := m.Roll.Step(); v != 0 {
		cam.RotateForward(v)
		turned = true
	}
	if turned {
		cam.Orthonormalize()
	}
}
