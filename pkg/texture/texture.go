// Package texture holds decoded texture images and samples them with
// clamped or repeating addressing.
package texture

import (
	"errors"
	"image/color"
	"math"
)

// ErrEmptyTexture is returned when a texture would have no texels.
var ErrEmptyTexture = errors.New("texture: empty image")

// WrapMode determines how texture coordinates outside [0,1] are handled.
type WrapMode int

const (
	WrapClamp  WrapMode = iota // Clamp to the nearest edge texel
	WrapRepeat                 // Tile the texture
)

// FilterMode determines how texture sampling is performed.
type FilterMode int

const (
	FilterNearest  FilterMode = iota // Nearest texel
	FilterBilinear                   // Bilinear interpolation of four texels
)

// Texture is a read-only grid of texels. Row 0 is the top of the source
// image; V = 0 addresses the bottom row.
type Texture struct {
	Width  int
	Height int
	Pixels []color.RGBA // Row-major texel data
	WrapU  WrapMode
	WrapV  WrapMode
}

// New creates a black texture with the given dimensions and clamped
// addressing.
func New(width, height int) (*Texture, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrEmptyTexture
	}
	return &Texture{
		Width:  width,
		Height: height,
		Pixels: make([]color.RGBA, width*height),
	}, nil
}

// SetPixel sets a texel. Out of range coordinates are ignored.
func (t *Texture) SetPixel(x, y int, c color.RGBA) {
	if x < 0 || x >= t.Width || y < 0 || y >= t.Height {
		return
	}
	t.Pixels[y*t.Width+x] = c
}

// Pixel returns the texel at (x, y), or transparent black out of range.
func (t *Texture) Pixel(x, y int) color.RGBA {
	if x < 0 || x >= t.Width || y < 0 || y >= t.Height {
		return color.RGBA{}
	}
	return t.Pixels[y*t.Width+x]
}

// Sample returns the texel addressed by (u, v) using the given filter.
func (t *Texture) Sample(u, v float64, filter FilterMode) color.RGBA {
	u = wrapCoord(u, t.WrapU)
	v = wrapCoord(v, t.WrapV)

	// Image rows run top to bottom, V runs bottom to top.
	v = 1.0 - v

	if filter == FilterBilinear {
		return t.sampleBilinear(u, v)
	}
	return t.sampleNearest(u, v)
}

func wrapCoord(coord float64, mode WrapMode) float64 {
	if math.IsNaN(coord) {
		return 0
	}
	switch mode {
	case WrapRepeat:
		coord -= math.Floor(coord)
	default:
		coord = math.Max(0, math.Min(1, coord))
	}
	return coord
}

func (t *Texture) sampleNearest(u, v float64) color.RGBA {
	x := min(int(u*float64(t.Width)), t.Width-1)
	y := min(int(v*float64(t.Height)), t.Height-1)
	return t.Pixel(x, y)
}

func (t *Texture) sampleBilinear(u, v float64) color.RGBA {
	fx := u*float64(t.Width) - 0.5
	fy := v*float64(t.Height) - 0.5

	x0 := int(math.Floor(fx))
	y0 := int(math.Floor(fy))
	tx := fx - float64(x0)
	ty := fy - float64(y0)

	x1 := wrapTexel(x0+1, t.Width, t.WrapU)
	y1 := wrapTexel(y0+1, t.Height, t.WrapV)
	x0 = wrapTexel(x0, t.Width, t.WrapU)
	y0 = wrapTexel(y0, t.Height, t.WrapV)

	top := lerpColor(t.Pixel(x0, y0), t.Pixel(x1, y0), tx)
	bot := lerpColor(t.Pixel(x0, y1), t.Pixel(x1, y1), tx)
	return lerpColor(top, bot, ty)
}

func wrapTexel(x, size int, mode WrapMode) int {
	switch mode {
	case WrapRepeat:
		x %= size
		if x < 0 {
			x += size
		}
	default:
		x = max(0, min(x, size-1))
	}
	return x
}

func lerpColor(a, b color.RGBA, t float64) color.RGBA {
	lerp := func(x, y uint8) uint8 {
		return uint8(float64(x) + (float64(y)-float64(x))*t + 0.5)
	}
	return color.RGBA{R: lerp(a.R, b.R), G: lerp(a.G, b.G), B: lerp(a.B, b.B), A: lerp(a.A, b.A)}
}
