package texture

import (
	"bufio"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"sync"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
)

// format pairs a magic prefix with its decoder. '?' in magic matches any
// byte.
type format struct {
	name   string
	magic  string
	decode func(io.Reader) (image.Image, error)
}

// formats are sniffed in order. TGA has no magic number and is tried last.
var formats = []format{
	{"png", "\x89PNG\r\n\x1a\n", png.Decode},
	{"jpeg", "\xff\xd8", jpeg.Decode},
	{"bmp", "BM", bmp.Decode},
	{"webp", "RIFF????WEBP", nativewebp.Decode},
}

func (f format) match(b []byte) bool {
	if len(b) < len(f.magic) {
		return false
	}
	for i := range len(f.magic) {
		if f.magic[i] != '?' && f.magic[i] != b[i] {
			return false
		}
	}
	return true
}

// Load reads and decodes a texture file. PNG, JPEG, TGA, BMP and WebP
// are supported.
func Load(path string) (*Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("texture: open %s: %w", path, err)
	}
	defer f.Close()

	tex, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("texture: %s: %w", path, err)
	}
	return tex, nil
}

// Decode decodes a PNG, JPEG, BMP, WebP or TGA stream into a texture.
// Streams that match no magic number are read as TGA; when that fails too
// the error wraps image.ErrFormat.
func Decode(r io.Reader) (*Texture, error) {
	br := bufio.NewReader(r)
	head, _ := br.Peek(12)

	for _, f := range formats {
		if !f.match(head) {
			continue
		}
		img, err := f.decode(br)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", f.name, err)
		}
		return FromImage(img)
	}

	img, err := tga.Decode(br)
	if err != nil {
		return nil, fmt.Errorf("decode: %w (tga: %v)", image.ErrFormat, err)
	}
	return FromImage(img)
}

// FromImage copies an image into a texture. Texels hold straight
// (non-premultiplied) alpha.
func FromImage(img image.Image) (*Texture, error) {
	bounds := img.Bounds()
	tex, err := New(bounds.Dx(), bounds.Dy())
	if err != nil {
		return nil, err
	}

	for y := range tex.Height {
		for x := range tex.Width {
			c := color.NRGBAModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
			tex.Pixels[y*tex.Width+x] = color.RGBA{R: c.R, G: c.G, B: c.B, A: c.A}
		}
	}
	return tex, nil
}

// Cache decodes each texture file once and hands out the shared result.
// It is safe for concurrent use.
type Cache struct {
	mu    sync.RWMutex
	items map[string]*Texture
}

// NewCache creates an empty texture cache.
func NewCache() *Cache {
	return &Cache{items: make(map[string]*Texture)}
}

// Get returns the texture for path, loading it on first use.
func (c *Cache) Get(path string) (*Texture, error) {
	c.mu.RLock()
	tex, ok := c.items[path]
	c.mu.RUnlock()
	if ok {
		return tex, nil
	}

	tex, err := Load(path)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.items[path]; ok {
		return existing, nil
	}
	c.items[path] = tex
	return tex, nil
}

// Len returns the number of cached textures.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
