package export

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"

	"golang.org/x/image/draw"
)

// Optimization controls how page images are processed before packaging.
type Optimization struct {
	MaxWidth    int
	MaxHeight   int
	Grayscale   bool
	JPEGQuality int
}

// EReaderOptimization suits grayscale e-ink devices.
func EReaderOptimization() Optimization {
	return Optimization{
		MaxWidth:    1236,
		MaxHeight:   1648,
		Grayscale:   true,
		JPEGQuality: 85,
	}
}

// Optimizer resizes and re-encodes page images.
type Optimizer struct {
	settings Optimization
}

func NewOptimizer(settings Optimization) *Optimizer {
	return &Optimizer{settings: settings}
}

// Process decodes an image, scales it to fit the configured bounds keeping
// aspect ratio, optionally converts to grayscale, and re-encodes.
func (o *Optimizer) Process(input io.Reader) ([]byte, error) {
	img, format, err := image.Decode(input)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	width, height := o.fit(bounds.Dx(), bounds.Dy())

	processed := img
	if width != bounds.Dx() || height != bounds.Dy() {
		processed = o.resize(img, width, height)
	}

	if o.settings.Grayscale && format != "gray" {
		processed = toGray(processed)
	}

	var buf bytes.Buffer
	if format == "png" && !o.settings.Grayscale {
		err = png.Encode(&buf, processed)
	} else {
		quality := o.settings.JPEGQuality
		if quality <= 0 {
			quality = 85
		}
		err = jpeg.Encode(&buf, processed, &jpeg.Options{Quality: quality})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}

func (o *Optimizer) fit(width, height int) (int, int) {
	maxW, maxH := o.settings.MaxWidth, o.settings.MaxHeight
	if maxW <= 0 && maxH <= 0 {
		return width, height
	}

	scale := 1.0
	if maxW > 0 && width > maxW {
		scale = float64(maxW) / float64(width)
	}
	if maxH > 0 && float64(height)*scale > float64(maxH) {
		scale = float64(maxH) / float64(height)
	}
	if scale >= 1 {
		return width, height
	}
	return int(float64(width) * scale), int(float64(height) * scale)
}

func (o *Optimizer) resize(img image.Image, width, height int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)
	return dst
}

func toGray(img image.Image) image.Image {
	bounds := img.Bounds()
	gray := image.NewGray(bounds)
	draw.Draw(gray, bounds, img, bounds.Min, draw.Src)
	return gray
}
