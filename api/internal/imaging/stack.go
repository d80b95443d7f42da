package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"golang.org/x/image/draw"
)

// MaxPixels bounds the area of a stacked page.
const MaxPixels = 18_000_000

var ErrNoImages = errors.New("no images")

// Stack places pages top to bottom on a white canvas, centred horizontally,
// and returns the result as PNG. A single page is returned unchanged.
func Stack(pages [][]byte) ([]byte, error) {
	switch len(pages) {
	case 0:
		return nil, ErrNoImages
	case 1:
		return pages[0], nil
	}

	decoded := make([]image.Image, 0, len(pages))
	maxW, sumH := 0, 0
	canvas := image.Config{}
	for i, b := range pages {
		cfg, _, err := image.DecodeConfig(bytes.NewReader(b))
		if err != nil {
			return nil, fmt.Errorf("%w: page %d: %v", ErrUnsupportedImage, i+1, err)
		}
		if err := checkArea(cfg); err != nil {
			return nil, fmt.Errorf("page %d: %w", i+1, err)
		}
		canvas.Width = max(canvas.Width, cfg.Width)
		canvas.Height += cfg.Height
		if err := checkArea(canvas); err != nil {
			return nil, fmt.Errorf("album: %w", err)
		}
	}
	for i, b := range pages {
		img, _, err := image.Decode(bytes.NewReader(b))
		if err != nil {
			return nil, fmt.Errorf("%w: page %d: %v", ErrUnsupportedImage, i+1, err)
		}
		decoded = append(decoded, img)
		r := img.Bounds()
		maxW = max(maxW, r.Dx())
		sumH += r.Dy()
	}
	if maxW == 0 || sumH == 0 {
		return nil, ErrNoImages
	}

	dst := image.NewRGBA(image.Rect(0, 0, maxW, sumH))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	y := 0
	for _, img := range decoded {
		r := img.Bounds()
		x := (maxW - r.Dx()) / 2
		draw.Draw(dst, image.Rect(x, y, x+r.Dx(), y+r.Dy()), img, r.Min, draw.Over)
		y += r.Dy()
	}

	var out image.Image = dst
	if maxW*sumH > MaxPixels {
		out = scaleArea(dst, MaxPixels)
	}
	out = fit(out, MaxSide)

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// scaleArea scales img so that its area is at most limit pixels.
func scaleArea(img image.Image, limit int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	for w*h > limit {
		w = w * 9 / 10
		h = h * 9 / 10
	}
	w, h = max(1, w), max(1, h)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
