package export

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
)

func encodePNG(t *testing.T, width, height int, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode fixture: %v", err)
	}
	return buf.Bytes()
}

func TestFit(t *testing.T) {
	o := NewOptimizer(Optimization{MaxWidth: 100, MaxHeight: 200})

	cases := []struct {
		name         string
		w, h         int
		wantW, wantH int
	}{
		{"within bounds", 80, 150, 80, 150},
		{"exact bounds", 100, 200, 100, 200},
		{"width bound", 200, 100, 100, 50},
		{"height bound", 50, 400, 25, 200},
		{"both bound", 400, 800, 100, 200},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, h := o.fit(tc.w, tc.h)
			if w != tc.wantW || h != tc.wantH {
				t.Errorf("Expected %dx%d, got %dx%d", tc.wantW, tc.wantH, w, h)
			}
		})
	}
}

func TestFitUnbounded(t *testing.T) {
	o := NewOptimizer(Optimization{})
	w, h := o.fit(5000, 5000)
	if w != 5000 || h != 5000 {
		t.Errorf("Expected unchanged dimensions, got %dx%d", w, h)
	}
}

func TestProcessResizesAndGrayscales(t *testing.T) {
	o := NewOptimizer(Optimization{MaxWidth: 50, MaxHeight: 50, Grayscale: true, JPEGQuality: 85})

	out, err := o.Process(bytes.NewReader(encodePNG(t, 100, 80, color.RGBA{R: 200, G: 40, B: 40, A: 255})))
	if err != nil {
		t.Fatalf("Failed to process image: %v", err)
	}

	img, format, err := image.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("Failed to decode output: %v", err)
	}
	if format != "jpeg" {
		t.Errorf("Expected jpeg output, got %s", format)
	}
	if img.Bounds().Dx() != 50 || img.Bounds().Dy() != 40 {
		t.Errorf("Expected 50x40, got %dx%d", img.Bounds().Dx(), img.Bounds().Dy())
	}

	// A grayscale JPEG decodes with equal channels.
	r, g, b, _ := img.At(25, 20).RGBA()
	if r != g || g != b {
		t.Errorf("Expected grayscale pixel, got r=%d g=%d b=%d", r, g, b)
	}
}

func TestProcessKeepsPNGWhenNotGrayscale(t *testing.T) {
	o := NewOptimizer(Optimization{MaxWidth: 100, MaxHeight: 100})

	out, err := o.Process(bytes.NewReader(encodePNG(t, 40, 40, color.RGBA{R: 10, G: 200, B: 10, A: 255})))
	if err != nil {
		t.Fatalf("Failed to process image: %v", err)
	}

	_, format, err := image.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("Failed to decode output: %v", err)
	}
	if format != "png" {
		t.Errorf("Expected png output, got %s", format)
	}
}

func TestProcessRejectsGarbage(t *testing.T) {
	o := NewOptimizer(EReaderOptimization())

	_, err := o.Process(strings.NewReader("not an image"))
	if err == nil {
		t.Fatal("Expected decode error")
	}
	if !strings.Contains(err.Error(), "failed to decode image") {
		t.Errorf("Unexpected error: %v", err)
	}
}
