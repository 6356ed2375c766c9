package render

import (
	"image/color"

	uv "github.com/charmbracelet/ultraviolet"
)

// Draw paints the framebuffer onto a terminal screen using half-block
// cells, so each cell shows two pixel rows: the foreground of ▀ is the top
// pixel and the background is the bottom one. Pixel (0, 0) lands on the
// top-left cell of area; the framebuffer should be 2x the area's height.
func (fb *Framebuffer) Draw(scr uv.Screen, area uv.Rectangle) {
	for row := area.Min.Y; row < area.Max.Y; row++ {
		topY := (row - area.Min.Y) * 2
		if topY >= fb.Height {
			break
		}

		for col := area.Min.X; col < area.Max.X; col++ {
			x := col - area.Min.X
			if x >= fb.Width {
				break
			}

			scr.SetCell(col, row, &uv.Cell{
				Content: "▀",
				Width:   1,
				Style: uv.Style{
					Fg: cellColor(fb.GetPixel(x, topY)),
					Bg: cellColor(fb.GetPixel(x, topY+1)),
				},
			})
		}
	}
}

// cellColor maps fully transparent pixels to the terminal default.
func cellColor(c color.RGBA) color.Color {
	if c.A == 0 {
		return nil
	}
	return c
}
