// scanline - CPU scanline rasterizer
// Render JSON scenes and glTF models to an image file, or fly through them
// in your terminal.
//
// Controls:
//
//	W/S         - Move forward/back
//	A/D         - Move left/right
//	R/F         - Move up/down
//	Arrows      - Turn (left/right about up, up/down about right)
//	Q/E         - Roll left/right
//	X           - Toggle edge overlay
//	T           - Toggle nearest/bilinear texture filter
//	C           - Clear the scene
//	?           - Toggle HUD overlay
//	Esc         - Quit
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/taigrr/scanline/pkg/config"
	"github.com/taigrr/scanline/pkg/export"
	"github.com/taigrr/scanline/pkg/loader"
	"github.com/taigrr/scanline/pkg/render"
	"github.com/taigrr/scanline/pkg/scene"
	"github.com/taigrr/scanline/pkg/texture"
)

var (
	configPath = flag.String("config", "", "Path to JSON config file")
	outputPath = flag.String("o", "", "Render one frame to this file (.png, .webp, .bmp) and exit")
	width      = flag.Int("width", 0, "Output width in pixels (default 512)")
	height     = flag.Int("height", 0, "Output height in pixels (default 512)")
	fov        = flag.Float64("fov", 0, "Vertical field of view in degrees (default 45)")
	filterMode = flag.String("filter", "", "Texture filter: nearest or bilinear")
	wrapMode   = flag.String("wrap", "", "Texture addressing: clamp or repeat")
	targetFPS  = flag.Int("fps", 0, "Viewer target FPS (default 30)")
	verbose    = flag.Bool("v", false, "Debug logging")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "scanline - CPU scanline rasterizer\n\n")
		fmt.Fprintf(os.Stderr, "Usage: scanline [options] [scene.json|model.glb]\n\n")
		fmt.Fprintf(os.Stderr, "Without a file a demo scene is shown.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nControls:\n")
		fmt.Fprintf(os.Stderr, "  W/S/A/D/R/F - Move forward/back, left/right, up/down\n")
		fmt.Fprintf(os.Stderr, "  Arrows      - Turn\n")
		fmt.Fprintf(os.Stderr, "  Q/E         - Roll left/right\n")
		fmt.Fprintf(os.Stderr, "  X           - Toggle edge overlay\n")
		fmt.Fprintf(os.Stderr, "  T           - Toggle texture filter\n")
		fmt.Fprintf(os.Stderr, "  C           - Clear scene\n")
		fmt.Fprintf(os.Stderr, "  ?           - Toggle HUD overlay\n")
		fmt.Fprintf(os.Stderr, "  Esc         - Quit\n")
	}
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	render.SetLogger(logger)

	if err := run(flag.Arg(0)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(path string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	loaded, name, err := loadScene(path, cfg)
	if err != nil {
		return err
	}

	wrap, _ := cfg.WrapMode()
	applyWrap(loaded.Scene, wrap)

	if cfg.Output != "" {
		return renderToFile(loaded, cfg)
	}

	// The interactive viewer logs to the alternate screen otherwise
	if !*verbose {
		render.SetLogger(slog.New(slog.DiscardHandler))
	}
	return runViewer(loaded, cfg, name)
}

func loadConfig() (config.Config, error) {
	var cfg config.Config
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			return cfg, err
		}
	}
	cfg.Resolve(config.Flags{
		Width:  *width,
		Height: *height,
		FOV:    *fov,
		Filter: *filterMode,
		Wrap:   *wrapMode,
		Output: *outputPath,
		FPS:    *targetFPS,
	})
	return cfg, cfg.Validate()
}

// loadScene reads path, or builds the demo scene when path is empty.
// Scene files keep their own projection settings; the config supplies
// them for models and the demo. The aspect ratio always follows the
// output size.
func loadScene(path string, cfg config.Config) (*loader.Loaded, string, error) {
	if path == "" {
		loaded, err := demoScene()
		if err != nil {
			return nil, "", fmt.Errorf("build demo scene: %w", err)
		}
		return loaded, "demo", cfg.ApplyCamera(loaded.Camera)
	}

	loaded, err := loader.LoadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("load scene: %w", err)
	}
	name := filepath.Base(path)
	slog.Info("loaded", "file", name,
		"polygons", loaded.Scene.Len(), "triangles", loaded.Scene.TriangleCount())

	if filepath.Ext(path) == ".json" {
		err = loaded.Camera.SetAspectRatio(float64(cfg.Width) / float64(cfg.Height))
	} else {
		err = cfg.ApplyCamera(loaded.Camera)
	}
	return loaded, name, err
}

func applyWrap(s *scene.Scene, mode texture.WrapMode) {
	for _, p := range s.Polygons() {
		if p.Texture != nil {
			p.Texture.WrapU = mode
			p.Texture.WrapV = mode
		}
	}
}

func renderToFile(loaded *loader.Loaded, cfg config.Config) error {
	r, err := render.NewRasterizer(cfg.RenderOptions())
	if err != nil {
		return err
	}

	fb, err := r.RenderScene(loaded.Scene, loaded.Camera)
	if errors.Is(err, scene.ErrIndexOutOfRange) {
		slog.Warn("rendered with malformed triangles skipped", "error", err)
	} else if err != nil {
		return fmt.Errorf("render: %w", err)
	}

	if err := export.Save(cfg.Output, fb.ToImage()); err != nil {
		return fmt.Errorf("save: %w", err)
	}

	stats := r.Stats()
	slog.Info("wrote frame", "path", cfg.Output,
		"size", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height),
		"drawn", stats.Drawn, "culled", stats.Culled, "fragments", stats.Fragments)
	return nil
}
