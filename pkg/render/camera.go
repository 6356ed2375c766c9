package render

import (
	"errors"
	"math"

	"github.com/taigrr/scanline/pkg/math3d"
)

// Camera configuration errors.
var (
	ErrInvalidFOV    = errors.New("render: field of view must be in (0, 180) degrees")
	ErrInvalidAspect = errors.New("render: aspect ratio must be positive")
	ErrInvalidClip   = errors.New("render: clip planes must satisfy 0 < near < far")
	ErrInvalidBasis  = errors.New("render: forward and up must be non-zero and not parallel")
)

// Camera defaults.
const (
	DefaultFOV    = 45.0 // degrees
	DefaultNear   = 0.01
	DefaultFar    = 100.0
	DefaultAspect = 1.0
)

// Camera is a perspective camera described by an orthonormal frame.
//
// Camera space has X along Right, Y along Up and Z along Forward, so
// points in front of the camera have positive depth. Rotations are
// applied as exact rotation matrices; repeated rotations may slowly lose
// orthonormality, which Orthonormalize restores.
type Camera struct {
	forward  math3d.Vec4
	right    math3d.Vec4
	up       math3d.Vec4
	position math3d.Vec4

	// Projection parameters
	fov    float64 // Vertical field of view in degrees
	aspect float64 // Width / Height
	near   float64
	far    float64

	// Cached matrices (computed on demand)
	viewMatrix math3d.Mat4
	projMatrix math3d.Mat4
	viewDirty  bool
	projDirty  bool
}

// NewCamera creates a camera at (0, 0, 10) looking down -Z with a 45°
// field of view.
func NewCamera() *Camera {
	return &Camera{
		forward:   math3d.Direction(0, 0, -1),
		right:     math3d.Direction(1, 0, 0),
		up:        math3d.Direction(0, 1, 0),
		position:  math3d.Point(0, 0, 10),
		fov:       DefaultFOV,
		aspect:    DefaultAspect,
		near:      DefaultNear,
		far:       DefaultFar,
		viewDirty: true,
		projDirty: true,
	}
}

// Forward returns the unit viewing direction.
func (c *Camera) Forward() math3d.Vec4 { return c.forward }

// Right returns the unit right direction.
func (c *Camera) Right() math3d.Vec4 { return c.right }

// Up returns the unit up direction.
func (c *Camera) Up() math3d.Vec4 { return c.up }

// Position returns the eye position.
func (c *Camera) Position() math3d.Vec4 { return c.position }

// FOV returns the vertical field of view in degrees.
func (c *Camera) FOV() float64 { return c.fov }

// AspectRatio returns width / height.
func (c *Camera) AspectRatio() float64 { return c.aspect }

// ClipPlanes returns the near and far plane distances.
func (c *Camera) ClipPlanes() (near, far float64) { return c.near, c.far }

// SetPosition moves the eye to pos.
func (c *Camera) SetPosition(pos math3d.Vec3) {
	c.position = math3d.V4FromV3(pos, 1)
	c.viewDirty = true
}

// SetFOV sets the vertical field of view in degrees.
func (c *Camera) SetFOV(degrees float64) error {
	if !(degrees > 0 && degrees < 180) {
		return ErrInvalidFOV
	}
	c.fov = degrees
	c.projDirty = true
	return nil
}

// SetAspectRatio sets width / height.
func (c *Camera) SetAspectRatio(aspect float64) error {
	if !(aspect > 0) || math.IsInf(aspect, 1) {
		return ErrInvalidAspect
	}
	c.aspect = aspect
	c.projDirty = true
	return nil
}

// SetClipPlanes sets the near and far plane distances.
func (c *Camera) SetClipPlanes(near, far float64) error {
	if !(near > 0 && near < far) || math.IsInf(far, 1) {
		return ErrInvalidClip
	}
	c.near = near
	c.far = far
	c.projDirty = true
	return nil
}

// SetPerspective sets every projection parameter at once. Nothing changes
// unless all of them are valid.
func (c *Camera) SetPerspective(fovDegrees, aspect, near, far float64) error {
	next := *c
	if err := next.SetFOV(fovDegrees); err != nil {
		return err
	}
	if err := next.SetAspectRatio(aspect); err != nil {
		return err
	}
	if err := next.SetClipPlanes(near, far); err != nil {
		return err
	}
	*c = next
	return nil
}

// SetOrientation rebuilds the frame from a viewing direction and an
// approximate up vector.
func (c *Camera) SetOrientation(forward, up math3d.Vec3) error {
	f := forward.Normalize()
	r := f.Cross(up).Normalize()
	if f.Len() == 0 || r.Len() == 0 {
		return ErrInvalidBasis
	}
	c.forward = math3d.V4FromV3(f, 0)
	c.right = math3d.V4FromV3(r, 0)
	c.up = math3d.V4FromV3(r.Cross(f), 0)
	c.viewDirty = true
	return nil
}

// LookAt turns the camera towards target, keeping world +Y as up when
// possible. Looking straight along +Y or -Y falls back to the current up
// or forward axis.
func (c *Camera) LookAt(target math3d.Vec3) error {
	dir := target.Sub(c.position.Vec3())
	var err error
	for _, up := range []math3d.Vec3{math3d.V3(0, 1, 0), c.up.Vec3(), c.forward.Vec3()} {
		if err = c.SetOrientation(dir, up); err == nil {
			return nil
		}
	}
	return err
}

// Orthonormalize removes accumulated rounding error from the frame.
func (c *Camera) Orthonormalize() {
	_ = c.SetOrientation(c.forward.Vec3(), c.up.Vec3())
}

// ViewMatrix returns the world to camera transform.
func (c *Camera) ViewMatrix() math3d.Mat4 {
	if c.viewDirty {
		c.computeViewMatrix()
		c.viewDirty = false
	}
	return c.viewMatrix
}

// ProjectionMatrix returns the camera to clip space transform.
func (c *Camera) ProjectionMatrix() math3d.Mat4 {
	if c.projDirty {
		c.projMatrix = math3d.Perspective(c.fov*math.Pi/180, c.aspect, c.near, c.far)
		c.projDirty = false
	}
	return c.projMatrix
}

func (c *Camera) computeViewMatrix() {
	// View = Orientation * Translation(-position)
	rot := math3d.FromRows(c.right, c.up, c.forward, math3d.V4(0, 0, 0, 1))
	trans := math3d.Translate(c.position.Vec3().Negate())
	c.viewMatrix = rot.Mul(trans)
}

// TranslateForward moves the eye along Forward.
func (c *Camera) TranslateForward(amount float64) {
	c.translate(c.forward, amount)
}

// TranslateRight moves the eye along Right.
func (c *Camera) TranslateRight(amount float64) {
	c.translate(c.right, amount)
}

// TranslateUp moves the eye along Up.
func (c *Camera) TranslateUp(amount float64) {
	c.translate(c.up, amount)
}

func (c *Camera) translate(axis math3d.Vec4, amount float64) {
	c.position = c.position.Add(axis.Scale(amount))
	c.viewDirty = true
}

// RotateForward rolls Right and Up about Forward by degrees.
func (c *Camera) RotateForward(degrees float64) {
	m := rotation(c.forward, degrees)
	c.right = m.MulVec4(c.right)
	c.up = m.MulVec4(c.up)
	c.viewDirty = true
}

// RotateRight pitches Forward and Up about Right by degrees.
func (c *Camera) RotateRight(degrees float64) {
	m := rotation(c.right, degrees)
	c.forward = m.MulVec4(c.forward)
	c.up = m.MulVec4(c.up)
	c.viewDirty = true
}

// RotateUp yaws Forward and Right about Up by degrees.
func (c *Camera) RotateUp(degrees float64) {
	m := rotation(c.up, degrees)
	c.forward = m.MulVec4(c.forward)
	c.right = m.MulVec4(c.right)
	c.viewDirty = true
}

func rotation(axis math3d.Vec4, degrees float64) math3d.Mat4 {
	return math3d.Rotate(axis.Vec3(), degrees*math.Pi/180)
}
