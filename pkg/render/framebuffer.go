package render

import (
	"image"
	"image/color"
	"math"
)

// Framebuffer is the color target of a render: one RGBA value per pixel,
// row-major with the origin at the top left.
type Framebuffer struct {
	Width  int
	Height int
	Pixels []color.RGBA
}

// NewFramebuffer creates a framebuffer with the given dimensions.
func NewFramebuffer(width, height int) *Framebuffer {
	return &Framebuffer{
		Width:  width,
		Height: height,
		Pixels: make([]color.RGBA, width*height),
	}
}

// Clear fills the framebuffer with a solid color.
func (fb *Framebuffer) Clear(c color.RGBA) {
	for i := range fb.Pixels {
		fb.Pixels[i] = c
	}
}

// SetPixel writes one pixel; out of range coordinates are ignored.
func (fb *Framebuffer) SetPixel(x, y int, c color.RGBA) {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return
	}
	fb.Pixels[y*fb.Width+x] = c
}

// GetPixel returns the color at (x, y), or transparent black out of range.
func (fb *Framebuffer) GetPixel(x, y int) color.RGBA {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return color.RGBA{}
	}
	return fb.Pixels[y*fb.Width+x]
}

// DrawLine draws a line from (x0, y0) to (x1, y1) using Bresenham's algorithm.
func (fb *Framebuffer) DrawLine(x0, y0, x1, y1 int, c color.RGBA) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy

	for {
		fb.SetPixel(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Clone returns a deep copy.
func (fb *Framebuffer) Clone() *Framebuffer {
	out := NewFramebuffer(fb.Width, fb.Height)
	copy(out.Pixels, fb.Pixels)
	return out
}

// ToImage copies the framebuffer into an image.RGBA. Rendered pixels are
// opaque, so the premultiplied layout matches them byte for byte.
func (fb *Framebuffer) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	for i, c := range fb.Pixels {
		img.Pix[4*i+0] = c.R
		img.Pix[4*i+1] = c.G
		img.Pix[4*i+2] = c.B
		img.Pix[4*i+3] = c.A
	}
	return img
}

// DepthBuffer stores the nearest normalized depth written to each pixel.
type DepthBuffer struct {
	Width  int
	Height int
	Depth  []float64
}

// NewDepthBuffer creates a cleared depth buffer.
func NewDepthBuffer(width, height int) *DepthBuffer {
	db := &DepthBuffer{
		Width:  width,
		Height: height,
		Depth:  make([]float64, width*height),
	}
	db.Clear()
	return db
}

// Clear resets every entry to +Inf.
func (db *DepthBuffer) Clear() {
	// Copy-doubling fill
	n := len(db.Depth)
	if n == 0 {
		return
	}
	db.Depth[0] = math.Inf(1)
	for i := 1; i < n; i *= 2 {
		copy(db.Depth[i:], db.Depth[:i])
	}
}

// At returns the depth at (x, y), or +Inf out of bounds.
func (db *DepthBuffer) At(x, y int) float64 {
	if x < 0 || x >= db.Width || y < 0 || y >= db.Height {
		return math.Inf(1)
	}
	return db.Depth[y*db.Width+x]
}
