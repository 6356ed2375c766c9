package texture

import "image/color"

// NewSolid creates a single-color texture.
func NewSolid(width, height int, c color.RGBA) (*Texture, error) {
	tex, err := New(width, height)
	if err != nil {
		return nil, err
	}
	for i := range tex.Pixels {
		tex.Pixels[i] = c
	}
	return tex, nil
}

// NewChecker creates a checkerboard with squares of checkSize texels.
func NewChecker(width, height, checkSize int, c1, c2 color.RGBA) (*Texture, error) {
	tex, err := New(width, height)
	if err != nil {
		return nil, err
	}
	checkSize = max(checkSize, 1)
	for y := range height {
		for x := range width {
			if (x/checkSize+y/checkSize)%2 == 0 {
				tex.SetPixel(x, y, c1)
			} else {
				tex.SetPixel(x, y, c2)
			}
		}
	}
	return tex, nil
}

// NewGradient creates a horizontal gradient from left to right.
func NewGradient(width, height int, left, right color.RGBA) (*Texture, error) {
	tex, err := New(width, height)
	if err != nil {
		return nil, err
	}
	for y := range height {
		for x := range width {
			t := 0.0
			if width > 1 {
				t = float64(x) / float64(width-1)
			}
			tex.SetPixel(x, y, lerpColor(left, right, t))
		}
	}
	return tex, nil
}
