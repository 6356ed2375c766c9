// Package config loads renderer settings from a JSON file and CLI flags.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/taigrr/scanline/pkg/render"
	"github.com/taigrr/scanline/pkg/texture"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("config: invalid setting")

// Default settings.
const (
	DefaultFilter = "nearest"
	DefaultWrap   = "clamp"
	DefaultFPS    = 30
)

// Config holds output and camera settings.
type Config struct {
	// Output
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Output string `json:"output"`

	// Camera
	FOV  float64 `json:"fov"`
	Near float64 `json:"near"`
	Far  float64 `json:"far"`

	// Sampling
	Filter string `json:"filter"`
	Wrap   string `json:"wrap"`

	// Discard fragments in front of near or beyond far
	ClipDepth bool `json:"clip_depth"`

	// Viewer
	FPS int `json:"fps"`
}

// Load reads a JSON config file and returns Config.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	Width  int
	Height int
	FOV    float64
	Filter string
	Wrap   string
	Output string
	FPS    int
}

// Resolve applies CLI overrides, then fills empty fields with defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	if flags.Width > 0 {
		c.Width = flags.Width
	}
	if flags.Height > 0 {
		c.Height = flags.Height
	}
	if flags.FOV > 0 {
		c.FOV = flags.FOV
	}
	if flags.Filter != "" {
		c.Filter = flags.Filter
	}
	if flags.Wrap != "" {
		c.Wrap = flags.Wrap
	}
	if flags.Output != "" {
		c.Output = flags.Output
	}
	if flags.FPS > 0 {
		c.FPS = flags.FPS
	}

	if c.Width <= 0 {
		c.Width = render.DefaultWidth
	}
	if c.Height <= 0 {
		c.Height = render.DefaultHeight
	}
	if c.FOV == 0 {
		c.FOV = render.DefaultFOV
	}
	if c.Near == 0 {
		c.Near = render.DefaultNear
	}
	if c.Far == 0 {
		c.Far = render.DefaultFar
	}
	if c.Filter == "" {
		c.Filter = DefaultFilter
	}
	if c.Wrap == "" {
		c.Wrap = DefaultWrap
	}
	if c.FPS <= 0 {
		c.FPS = DefaultFPS
	}
}

// Validate checks a resolved config.
func (c Config) Validate() error {
	var errs []error
	if c.Width <= 0 || c.Height <= 0 {
		errs = append(errs, fmt.Errorf("%w: size %dx%d", ErrInvalid, c.Width, c.Height))
	}
	if !(c.FOV > 0 && c.FOV < 180) {
		errs = append(errs, fmt.Errorf("%w: fov %v", ErrInvalid, c.FOV))
	}
	if !(c.Near > 0 && c.Near < c.Far) {
		errs = append(errs, fmt.Errorf("%w: clip planes %v..%v", ErrInvalid, c.Near, c.Far))
	}
	if _, err := c.FilterMode(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.WrapMode(); err != nil {
		errs = append(errs, err)
	}
	if c.FPS <= 0 {
		errs = append(errs, fmt.Errorf("%w: fps %d", ErrInvalid, c.FPS))
	}
	return errors.Join(errs...)
}

// FilterMode parses Filter.
func (c Config) FilterMode() (texture.FilterMode, error) {
	switch strings.ToLower(c.Filter) {
	case "nearest", "":
		return texture.FilterNearest, nil
	case "bilinear":
		return texture.FilterBilinear, nil
	}
	return 0, fmt.Errorf("%w: filter %q", ErrInvalid, c.Filter)
}

// WrapMode parses Wrap.
func (c Config) WrapMode() (texture.WrapMode, error) {
	switch strings.ToLower(c.Wrap) {
	case "clamp", "":
		return texture.WrapClamp, nil
	case "repeat":
		return texture.WrapRepeat, nil
	}
	return 0, fmt.Errorf("%w: wrap %q", ErrInvalid, c.Wrap)
}

// RenderOptions converts the config to rasterizer options. Call Validate
// first; an unknown filter falls back to nearest.
func (c Config) RenderOptions() render.Options {
	filter, _ := c.FilterMode()
	return render.Options{
		Width:     c.Width,
		Height:    c.Height,
		Filter:    filter,
		ClipDepth: c.ClipDepth,
	}
}

// ApplyCamera sets the projection parameters on cam. The aspect ratio
// follows the output size.
func (c Config) ApplyCamera(cam *render.Camera) error {
	return cam.SetPerspective(c.FOV, float64(c.Width)/float64(c.Height), c.Near, c.Far)
}
