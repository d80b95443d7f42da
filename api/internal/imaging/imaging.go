// Package imaging prepares uploaded drawings for multimodal providers: formats
// they accept pass through, others are re-encoded to PNG, and oversized images
// are scaled down.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// MaxSide is the longest edge sent to a provider.
const MaxSide = 4096

// MaxDecodePixels caps the declared area of an image before it is decoded.
const MaxDecodePixels = 50_000_000

var ErrUnsupportedImage = errors.New("unsupported image format")

// passthrough maps decoder format names to media types providers accept as-is.
var passthrough = map[string]string{
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
}

type Image struct {
	Data   []byte
	MIME   string
	Ext    string
	Width  int
	Height int
}

// Normalize validates data as an image and returns provider-ready bytes.
func Normalize(data []byte) (Image, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Image{}, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	if err := checkArea(cfg); err != nil {
		return Image{}, err
	}

	mime, ok := passthrough[format]
	if ok && cfg.Width <= MaxSide && cfg.Height <= MaxSide {
		return Image{Data: data, MIME: mime, Ext: ext(format), Width: cfg.Width, Height: cfg.Height}, nil
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Image{}, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	src = fit(src, MaxSide)

	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		return Image{}, fmt.Errorf("encode png: %w", err)
	}
	b := src.Bounds()
	return Image{Data: buf.Bytes(), MIME: "image/png", Ext: "png", Width: b.Dx(), Height: b.Dy()}, nil
}

func checkArea(cfg image.Config) error {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return fmt.Errorf("%w: empty image", ErrUnsupportedImage)
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxDecodePixels {
		return fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrUnsupportedImage, cfg.Width, cfg.Height, MaxDecodePixels)
	}
	return nil
}

// fit scales img down so neither side exceeds limit, keeping the aspect ratio.
func fit(img image.Image, limit int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= limit && h <= limit {
		return img
	}
	if w >= h {
		h = max(1, h*limit/w)
		w = limit
	} else {
		w = max(1, w*limit/h)
		h = limit
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

func ext(format string) string {
	if format == "jpeg" {
		return "jpg"
	}
	return format
}
