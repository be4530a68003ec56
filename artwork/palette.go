package artwork

import (
	"fmt"
	"image"
	"io"
	"os"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

// Palette is the color pair derived from a track's artwork: the dominant
// artwork color and a readable text color to lay over it.
type Palette struct {
	Dominant string `json:"dominant"`
	OnColor  string `json:"onColor"`
}

// DefaultPalette is the theme-neutral fallback used whenever extraction fails.
func DefaultPalette() Palette {
	return Palette{Dominant: "#FFFFFF", OnColor: "#333333"}
}

// ExtractFromFile extracts the palette from an image file on disk.
func ExtractFromFile(path string) (Palette, error) {
	f, err := os.Open(path)
	if err != nil {
		return DefaultPalette(), fmt.Errorf("failed to open artwork %s: %w", path, err)
	}
	defer f.Close()
	return Extract(f)
}

// Extract decodes the image and picks the dominant color by coarse RGB
// quantization: pixels are sampled on a grid, bucketed at 4 bits per channel,
// and the largest bucket's average becomes the dominant color.
func Extract(r io.Reader) (Palette, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return DefaultPalette(), fmt.Errorf("failed to decode artwork: %w", err)
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width == 0 || height == 0 {
		return DefaultPalette(), fmt.Errorf("artwork has empty bounds")
	}

	// Sample at most ~64x64 positions regardless of image size.
	stepX := width / 64
	if stepX < 1 {
		stepX = 1
	}
	stepY := height / 64
	if stepY < 1 {
		stepY = 1
	}

	type bucket struct {
		count   int
		r, g, b uint64
	}
	buckets := make(map[uint32]*bucket)

	for y := bounds.Min.Y; y < bounds.Max.Y; y += stepY {
		for x := bounds.Min.X; x < bounds.Max.X; x += stepX {
			r16, g16, b16, a16 := img.At(x, y).RGBA()
			if a16 < 0x4000 {
				continue // mostly transparent
			}
			r8 := uint8(r16 >> 8)
			g8 := uint8(g16 >> 8)
			b8 := uint8(b16 >> 8)

			key := uint32(r8>>4)<<8 | uint32(g8>>4)<<4 | uint32(b8>>4)
			bk := buckets[key]
			if bk == nil {
				bk = &bucket{}
				buckets[key] = bk
			}
			bk.count++
			bk.r += uint64(r8)
			bk.g += uint64(g8)
			bk.b += uint64(b8)
		}
	}

	var best *bucket
	for _, bk := range buckets {
		if best == nil || bk.count > best.count {
			best = bk
		}
	}
	if best == nil {
		return DefaultPalette(), fmt.Errorf("artwork has no opaque pixels")
	}

	r8 := uint8(best.r / uint64(best.count))
	g8 := uint8(best.g / uint64(best.count))
	b8 := uint8(best.b / uint64(best.count))

	return Palette{
		Dominant: fmt.Sprintf("#%02X%02X%02X", r8, g8, b8),
		OnColor:  onColorFor(r8, g8, b8),
	}, nil
}

// onColorFor picks black or white text depending on the luminance of the
// dominant color.
func onColorFor(r, g, b uint8) string {
	luminance := (0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)) / 255.0
	if luminance > 0.5 {
		return "#000000"
	}
	return "#FFFFFF"
}
