package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"testing"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestStack(t *testing.T) {
	a := encodePNG(t, solid(10, 4))
	b := encodePNG(t, solid(6, 3))

	out, err := Stack([][]byte{a, b})
	if err != nil {
		t.Fatalf("Stack: %v", err)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(out))
	if err != nil {
		t.Fatal(err)
	}
	if format != "png" || cfg.Width != 10 || cfg.Height != 7 {
		t.Errorf("got %s %dx%d, want png 10x7", format, cfg.Width, cfg.Height)
	}
}

func TestStack_SinglePageUnchanged(t *testing.T) {
	a := encodePNG(t, solid(3, 3))
	out, err := Stack([][]byte{a})
	if err != nil || !bytes.Equal(out, a) {
		t.Errorf("single page changed: %v", err)
	}
}

func TestStack_Errors(t *testing.T) {
	if _, err := Stack(nil); !errors.Is(err, ErrNoImages) {
		t.Errorf("nil: %v", err)
	}
	a := encodePNG(t, solid(3, 3))
	if _, err := Stack([][]byte{a, []byte("nope")}); !errors.Is(err, ErrUnsupportedImage) {
		t.Errorf("bad page: %v", err)
	}
}

func TestScaleArea(t *testing.T) {
	got := scaleArea(solid(100, 50), 1000).Bounds()
	if got.Dx()*got.Dy() > 1000 {
		t.Errorf("area %d exceeds limit", got.Dx()*got.Dy())
	}
	if got.Dx() < got.Dy() {
		t.Errorf("aspect not kept: %v", got)
	}
}

func TestStack_RejectsOversizedCanvas(t *testing.T) {
	wide := zeroPNG(t, 10000, 1)
	tall := zeroPNG(t, 1, 6000)
	_, err := Stack([][]byte{wide, tall})
	if !errors.Is(err, ErrUnsupportedImage) {
		t.Fatalf("got %v, want ErrUnsupportedImage", err)
	}
}
