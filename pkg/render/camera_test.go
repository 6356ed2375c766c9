package render

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/taigrr/scanline/pkg/math3d"
)

func TestNewCameraDefaults(t *testing.T) {
	cam := NewCamera()

	if diff := cmp.Diff(math3d.Point(0, 0, 10), cam.Position()); diff != "" {
		t.Errorf("position (-want +got):\n%s", diff)
	}
	if cam.Forward() != math3d.Direction(0, 0, -1) || cam.Right() != math3d.Direction(1, 0, 0) || cam.Up() != math3d.Direction(0, 1, 0) {
		t.Errorf("axes = %v %v %v", cam.Forward(), cam.Right(), cam.Up())
	}
	near, far := cam.ClipPlanes()
	if cam.FOV() != 45 || cam.AspectRatio() != 1 || near != 0.01 || far != 100 {
		t.Errorf("projection = fov %v aspect %v near %v far %v", cam.FOV(), cam.AspectRatio(), near, far)
	}
}

func TestViewMatrix(t *testing.T) {
	cam := NewCamera()
	view := cam.ViewMatrix()

	tests := []struct {
		name  string
		world math3d.Vec4
		want  math3d.Vec4
	}{
		{"origin is ahead", math3d.Point(0, 0, 0), math3d.Point(0, 0, 10)},
		{"eye is origin", math3d.Point(0, 0, 10), math3d.Point(0, 0, 0)},
		{"right stays right", math3d.Point(2, 3, 10), math3d.Point(2, 3, 0)},
		{"directions ignore position", math3d.Direction(0, 0, -1), math3d.Direction(0, 0, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, view.MulVec4(tt.world), approx); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}

func TestProjectionMatrix(t *testing.T) {
	cam := NewCamera()
	if err := cam.SetPerspective(90, 2, 1, 11); err != nil {
		t.Fatal(err)
	}
	proj := cam.ProjectionMatrix()

	want := math3d.FromRows(
		math3d.V4(0.5, 0, 0, 0),
		math3d.V4(0, 1, 0, 0),
		math3d.V4(0, 0, 1.1, -1.1),
		math3d.V4(0, 0, 1, 0),
	)
	if diff := cmp.Diff(want, proj, approx); diff != "" {
		t.Errorf("projection (-want +got):\n%s", diff)
	}
}

func TestCameraSetters(t *testing.T) {
	tests := []struct {
		name    string
		apply   func(*Camera) error
		wantErr error
	}{
		{"fov ok", func(c *Camera) error { return c.SetFOV(90) }, nil},
		{"fov zero", func(c *Camera) error { return c.SetFOV(0) }, ErrInvalidFOV},
		{"fov 180", func(c *Camera) error { return c.SetFOV(180) }, ErrInvalidFOV},
		{"fov NaN", func(c *Camera) error { return c.SetFOV(math.NaN()) }, ErrInvalidFOV},
		{"aspect ok", func(c *Camera) error { return c.SetAspectRatio(16.0 / 9) }, nil},
		{"aspect zero", func(c *Camera) error { return c.SetAspectRatio(0) }, ErrInvalidAspect},
		{"aspect negative", func(c *Camera) error { return c.SetAspectRatio(-1) }, ErrInvalidAspect},
		{"clip ok", func(c *Camera) error { return c.SetClipPlanes(0.1, 50) }, nil},
		{"near zero", func(c *Camera) error { return c.SetClipPlanes(0, 50) }, ErrInvalidClip},
		{"near equals far", func(c *Camera) error { return c.SetClipPlanes(5, 5) }, ErrInvalidClip},
		{"near beyond far", func(c *Camera) error { return c.SetClipPlanes(10, 5) }, ErrInvalidClip},
		{"perspective bad clip", func(c *Camera) error { return c.SetPerspective(60, 1, 2, 1) }, ErrInvalidClip},
		{"parallel basis", func(c *Camera) error { return c.SetOrientation(math3d.V3(0, 1, 0), math3d.V3(0, 2, 0)) }, ErrInvalidBasis},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam := NewCamera()
			before := *cam
			err := tt.apply(cam)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if err != nil && *cam != before {
				t.Error("camera changed despite the error")
			}
		})
	}
}

func TestCameraTranslate(t *testing.T) {
	cam := NewCamera()
	cam.TranslateForward(4)
	cam.TranslateRight(2)
	cam.TranslateUp(-1)
	if diff := cmp.Diff(math3d.Point(2, -1, 6), cam.Position(), approx); diff != "" {
		t.Errorf("position (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(math3d.Point(-2, 1, 6), cam.ViewMatrix().MulVec4(math3d.Point(0, 0, 0)), approx); diff != "" {
		t.Errorf("view of origin (-want +got):\n%s", diff)
	}
}

func TestCameraRotate(t *testing.T) {
	tests := []struct {
		name               string
		rotate             func(*Camera)
		forward, right, up math3d.Vec4
	}{
		{
			name:    "yaw left about up",
			rotate:  func(c *Camera) { c.RotateUp(90) },
			forward: math3d.Direction(-1, 0, 0),
			right:   math3d.Direction(0, 0, -1),
			up:      math3d.Direction(0, 1, 0),
		},
		{
			name:    "pitch up about right",
			rotate:  func(c *Camera) { c.RotateRight(90) },
			forward: math3d.Direction(0, 1, 0),
			right:   math3d.Direction(1, 0, 0),
			up:      math3d.Direction(0, 0, 1),
		},
		{
			name:    "roll about forward",
			rotate:  func(c *Camera) { c.RotateForward(90) },
			forward: math3d.Direction(0, 0, -1),
			right:   math3d.Direction(0, -1, 0),
			up:      math3d.Direction(1, 0, 0),
		},
		{
			name:    "half turn",
			rotate:  func(c *Camera) { c.RotateUp(180) },
			forward: math3d.Direction(0, 0, 1),
			right:   math3d.Direction(-1, 0, 0),
			up:      math3d.Direction(0, 1, 0),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam := NewCamera()
			tt.rotate(cam)
			got := []math3d.Vec4{cam.Forward(), cam.Right(), cam.Up()}
			want := []math3d.Vec4{tt.forward, tt.right, tt.up}
			if diff := cmp.Diff(want, got, approx); diff != "" {
				t.Errorf("axes (-want +got):\n%s", diff)
			}
			if cam.Position() != math3d.Point(0, 0, 10) {
				t.Errorf("rotation moved the eye to %v", cam.Position())
			}
		})
	}
}

func TestCameraLookAt(t *testing.T) {
	cam := NewCamera()
	cam.SetPosition(math3d.V3(10, 0, 0))
	if err := cam.LookAt(math3d.V3(0, 0, 0)); err != nil {
		t.Fatal(err)
	}
	got := []math3d.Vec4{cam.Forward(), cam.Right(), cam.Up()}
	want := []math3d.Vec4{math3d.Direction(-1, 0, 0), math3d.Direction(0, 0, -1), math3d.Direction(0, 1, 0)}
	if diff := cmp.Diff(want, got, approx); diff != "" {
		t.Errorf("axes (-want +got):\n%s", diff)
	}

	// Straight down falls back to another hint for up.
	cam.SetPosition(math3d.V3(0, 10, 0))
	if err := cam.LookAt(math3d.V3(0, 0, 0)); err != nil {
		t.Fatalf("LookAt straight down: %v", err)
	}
	if diff := cmp.Diff(math3d.Direction(0, -1, 0), cam.Forward(), approx); diff != "" {
		t.Errorf("forward (-want +got):\n%s", diff)
	}
}

func TestCameraOrthonormalize(t *testing.T) {
	cam := NewCamera()
	for range 1000 {
		cam.RotateUp(7)
		cam.RotateRight(3)
		cam.RotateForward(11)
	}
	cam.Orthonormalize()

	f, r, u := cam.Forward(), cam.Right(), cam.Up()
	for _, v := range []float64{f.Len() - 1, r.Len() - 1, u.Len() - 1, f.Dot(r), f.Dot(u), r.Dot(u)} {
		if math.Abs(v) > 1e-12 {
			t.Fatalf("frame not orthonormal: f=%v r=%v u=%v", f, r, u)
		}
	}
}

func TestWorldToScreen(t *testing.T) {
	const w, h = 200, 100
	cam := NewCamera()
	view, proj := cam.ViewMatrix(), cam.ProjectionMatrix()

	center := WorldToScreen(math3d.Point(0, 0, 0), view, proj, w, h)
	// depth at distance 10 with near 0.01, far 100
	wantDepth := 100 / 99.99 * (1 - 0.01/10)
	if diff := cmp.Diff(math3d.V4(100, 50, wantDepth, 1), center, approx); diff != "" {
		t.Errorf("origin (-want +got):\n%s", diff)
	}

	// Top edge of a 45° frustum at distance 10.
	top := WorldToScreen(math3d.Point(0, 10*math.Tan(math.Pi/8), 0), view, proj, w, h)
	if math.Abs(top.Y) > 1e-9 {
		t.Errorf("top edge y = %v, want 0", top.Y)
	}

	right := WorldToScreen(math3d.Point(1, 0, 0), view, proj, w, h)
	if right.X <= center.X {
		t.Errorf("+X should project right of center, got %v", right.X)
	}

	nearPlane := WorldToScreen(math3d.Point(0, 0, 9.99), view, proj, w, h)
	if math.Abs(nearPlane.Z) > 1e-9 {
		t.Errorf("near plane depth = %v, want 0", nearPlane.Z)
	}
}

func TestProjectVertexRejectsBehind(t *testing.T) {
	cam := NewCamera()
	viewProj := cam.ProjectionMatrix().Mul(cam.ViewMatrix())

	if _, ok := projectVertex(math3d.Point(0, 0, 10), viewProj, 10, 10); ok {
		t.Error("the eye itself should be rejected")
	}
	if _, ok := projectVertex(math3d.Point(0, 0, 11), viewProj, 10, 10); ok {
		t.Error("a point behind the eye should be rejected")
	}
	sv, ok := projectVertex(math3d.Point(0, 0, 5), viewProj, 10, 10)
	if !ok || math.Abs(sv.W-5) > 1e-9 {
		t.Errorf("projectVertex = %+v, %v; want W = 5", sv, ok)
	}
}
