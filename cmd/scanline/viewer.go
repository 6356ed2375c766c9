package main

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"os"
	"os/signal"
	"syscall"
	"time"

	uv "github.com/charmbracelet/ultraviolet"
	"github.com/taigrr/scanline/pkg/config"
	"github.com/taigrr/scanline/pkg/loader"
	"github.com/taigrr/scanline/pkg/render"
	"github.com/taigrr/scanline/pkg/texture"
)

// Impulse sizes per key press.
const (
	moveImpulse = 0.15 // world units per frame
	turnImpulse = 1.5  // degrees per frame
)

// Viewer is the interactive terminal front end. Input events are queued
// and applied between frames so rendering never races them.
type Viewer struct {
	loaded *loader.Loaded
	raster *render.Rasterizer
	motion *Motion
	hud    *HUD

	edges bool
	quit  bool
}

// NewViewer creates a viewer for a loaded scene.
func NewViewer(loaded *loader.Loaded, cfg config.Config, name string) (*Viewer, error) {
	r, err := render.NewRasterizer(cfg.RenderOptions())
	if err != nil {
		return nil, err
	}
	return &Viewer{
		loaded: loaded,
		raster: r,
		motion: NewMotion(cfg.FPS),
		hud:    NewHUD(name),
	}, nil
}

// Resize matches the framebuffer to a terminal of cols x rows cells. Each
// cell shows two pixel rows.
func (v *Viewer) Resize(cols, rows int) error {
	cols, rows = max(cols, 1), max(rows, 1)
	if err := v.raster.Resize(cols, rows*2); err != nil {
		return err
	}
	return v.loaded.Camera.SetAspectRatio(float64(cols) / float64(rows*2))
}

// HandleKey applies one key press.
func (v *Viewer) HandleKey(ev uv.KeyPressEvent) {
	m := v.motion
	switch {
	case ev.MatchString("escape", "ctrl+c"):
		v.quit = true
	case ev.MatchString("w"):
		m.Forward.Velocity += moveImpulse
	case ev.MatchString("s"):
		m.Forward.Velocity -= moveImpulse
	case ev.MatchString("d"):
		m.Right.Velocity += moveImpulse
	case ev.MatchString("a"):
		m.Right.Velocity -= moveImpulse
	case ev.MatchString("r"):
		m.Up.Velocity += moveImpulse
	case ev.MatchString("f"):
		m.Up.Velocity -= moveImpulse
	case ev.MatchString("left"):
		m.Yaw.Velocity += turnImpulse
	case ev.MatchString("right"):
		m.Yaw.Velocity -= turnImpulse
	case ev.MatchString("up"):
		m.Pitch.Velocity += turnImpulse
	case ev.MatchString("down"):
		m.Pitch.Velocity -= turnImpulse
	case ev.MatchString("q"):
		m.Roll.Velocity -= turnImpulse
	case ev.MatchString("e"):
		m.Roll.Velocity += turnImpulse
	case ev.MatchString("x"):
		v.edges = !v.edges
	case ev.MatchString("t"):
		if v.raster.Options().Filter == texture.FilterNearest {
			v.raster.SetFilter(texture.FilterBilinear)
		} else {
			v.raster.SetFilter(texture.FilterNearest)
		}
	case ev.MatchString("c"):
		v.loaded.Scene.Clear()
		m.Stop()
	case ev.MatchString("?", "shift+/"):
		v.hud.Visible = !v.hud.Visible
	}
}

// Frame advances the camera and renders one image.
func (v *Viewer) Frame() (*render.Framebuffer, error) {
	v.motion.Apply(v.loaded.Camera)

	// Malformed triangles are logged and skipped; the frame is still whole.
	fb, err := v.raster.RenderScene(v.loaded.Scene, v.loaded.Camera)
	if errors.Is(err, render.ErrNilCamera) {
		return nil, err
	}
	if v.edges {
		render.NewWireframe(v.loaded.Camera, fb).DrawScene(v.loaded.Scene, render.ColorWire)
	}
	return fb, nil
}

func runViewer(loaded *loader.Loaded, cfg config.Config, name string) error {
	viewer, err := NewViewer(loaded, cfg, name)
	if err != nil {
		return err
	}

	// Create terminal
	term := uv.DefaultTerminal()

	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}
	if err := viewer.Resize(width, height); err != nil {
		return err
	}

	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}

	term.EnterAltScreen()
	term.HideCursor()
	_ = term.Resize(width, height)

	cleanup := func() {
		term.ExitAltScreen()
		term.ShowCursor()
		_ = term.Shutdown(context.Background())
	}
	defer cleanup()

	// Context for clean shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	targetDuration := time.Second / time.Duration(cfg.FPS)
	ticker := time.NewTicker(targetDuration)
	defer ticker.Stop()

	events := term.Events()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			switch ev := ev.(type) {
			case uv.WindowSizeEvent:
				width, height = ev.Width, ev.Height
				term.Erase()
				_ = term.Resize(width, height)
				if err := viewer.Resize(width, height); err != nil {
					return err
				}
			case uv.KeyPressEvent:
				viewer.HandleKey(ev)
				if viewer.quit {
					return nil
				}
			}
		case <-ticker.C:
			fb, err := viewer.Frame()
			if err != nil {
				return fmt.Errorf("render: %w", err)
			}
			viewer.hud.Update(viewer.raster.Stats(), viewer.raster.Options().Filter, viewer.edges)

			term.Draw(uv.DrawableFunc(func(scr uv.Screen, area uv.Rectangle) {
				fb.Draw(scr, area)
				viewer.hud.Draw(scr, area)
			}))
			if err := term.Display(); err != nil {
				return fmt.Errorf("display: %w", err)
			}
		}
	}
}

// HUD renders an overlay with scene info and render stats.
type HUD struct {
	Visible bool

	name      string
	stats     render.Stats
	filter    texture.FilterMode
	edges     bool
	fps       float64
	fpsFrames int
	fpsTime   time.Time
}

// NewHUD creates a visible HUD.
func NewHUD(name string) *HUD {
	return &HUD{
		Visible: true,
		name:    name,
		fpsTime: time.Now(),
	}
}

// Update records the last frame (call once per frame).
func (h *HUD) Update(stats render.Stats, filter texture.FilterMode, edges bool) {
	h.stats = stats
	h.filter = filter
	h.edges = edges

	h.fpsFrames++
	elapsed := time.Since(h.fpsTime)
	if elapsed >= time.Second {
		h.fps = float64(h.fpsFrames) / elapsed.Seconds()
		h.fpsFrames = 0
		h.fpsTime = time.Now()
	}
}

// Lines returns the top and bottom overlay text.
func (h *HUD) Lines() (top, bottom string) {
	filter := "nearest"
	if h.filter == texture.FilterBilinear {
		filter = "bilinear"
	}
	check := func(on bool) string {
		if on {
			return "[x]"
		}
		return "[ ]"
	}

	top = fmt.Sprintf(" %.0f FPS  %s  %d tris  %d drawn  %d culled ",
		h.fps, h.name, h.stats.Triangles, h.stats.Drawn, h.stats.Culled)
	bottom = fmt.Sprintf(" filter: %s  %s edges  WASD/RF move  arrows turn  Q/E roll ",
		filter, check(h.edges))
	return top, bottom
}

var hudStyle = uv.Style{
	Fg:    color.RGBA{255, 255, 255, 255},
	Bg:    color.RGBA{0, 0, 0, 255},
	Attrs: uv.AttrBold,
}

// Draw paints the overlay onto the first and last rows of area.
func (h *HUD) Draw(scr uv.Screen, area uv.Rectangle) {
	if !h.Visible || area.Dy() < 2 {
		return
	}
	top, bottom := h.Lines()
	drawText(scr, area.Min.X, area.Min.Y, area.Max.X, top)
	drawText(scr, area.Min.X, area.Max.Y-1, area.Max.X, bottom)
}

// drawText writes single-width text starting at (x, y), stopping at maxX.
func drawText(scr uv.Screen, x, y, maxX int, s string) {
	for _, r := range s {
		if x >= maxX {
			return
		}
		scr.SetCell(x, y, &uv.Cell{Content: string(r), Width: 1, Style: hudStyle})
		x++
	}
}
