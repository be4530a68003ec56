package artwork

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
)

func encodePNG(t *testing.T, img image.Image) *bytes.Reader {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return bytes.NewReader(buf.Bytes())
}

func solidImage(c color.Color, w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestExtractSolidColor(t *testing.T) {
	tests := []struct {
		name         string
		color        color.RGBA
		wantDominant string
		wantOnColor  string
	}{
		{"dark red gets white text", color.RGBA{0x80, 0x00, 0x00, 0xFF}, "#800000", "#FFFFFF"},
		{"near white gets black text", color.RGBA{0xF0, 0xF0, 0xF0, 0xFF}, "#F0F0F0", "#000000"},
		{"black gets white text", color.RGBA{0x00, 0x00, 0x00, 0xFF}, "#000000", "#FFFFFF"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Extract(encodePNG(t, solidImage(tt.color, 32, 32)))
			if err != nil {
				t.Fatalf("Extract() error: %v", err)
			}
			if p.Dominant != tt.wantDominant {
				t.Errorf("Dominant = %s, want %s", p.Dominant, tt.wantDominant)
			}
			if p.OnColor != tt.wantOnColor {
				t.Errorf("OnColor = %s, want %s", p.OnColor, tt.wantOnColor)
			}
		})
	}
}

func TestExtractPicksLargestRegion(t *testing.T) {
	// Three quarters blue, one quarter yellow: blue must win.
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	blue := color.RGBA{0x20, 0x20, 0xC0, 0xFF}
	yellow := color.RGBA{0xE0, 0xE0, 0x20, 0xFF}
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			if x < 32 && y < 32 {
				img.Set(x, y, yellow)
			} else {
				img.Set(x, y, blue)
			}
		}
	}

	p, err := Extract(encodePNG(t, img))
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	if p.Dominant != "#2020C0" {
		t.Errorf("Dominant = %s, want #2020C0", p.Dominant)
	}
	if p.OnColor != "#FFFFFF" {
		t.Errorf("OnColor = %s, want white on dark blue", p.OnColor)
	}
}

func TestExtractRejectsGarbage(t *testing.T) {
	p, err := Extract(strings.NewReader("not an image at all"))
	if err == nil {
		t.Fatal("Extract() error = nil, want decode failure")
	}
	if p != DefaultPalette() {
		t.Errorf("failure palette = %+v, want defaults", p)
	}
}

func TestExtractFullyTransparentImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 16, 16)) // zero value: transparent
	if _, err := Extract(encodePNG(t, img)); err == nil {
		t.Fatal("Extract() error = nil, want no-opaque-pixels failure")
	}
}

func TestExtractFromFileMissing(t *testing.T) {
	p, err := ExtractFromFile("/nonexistent/cover.png")
	if err == nil {
		t.Fatal("ExtractFromFile() error = nil, want open failure")
	}
	if p != DefaultPalette() {
		t.Errorf("failure palette = %+v, want defaults", p)
	}
}

func TestDefaultPalette(t *testing.T) {
	p := DefaultPalette()
	if p.Dominant != "#FFFFFF" || p.OnColor != "#333333" {
		t.Errorf("DefaultPalette() = %+v", p)
	}
}
