package imaging

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"golang.org/x/image/bmp"
)

func solid(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.White)
		}
	}
	return img
}

func TestNormalize_PNGPassesThrough(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, solid(10, 5)); err != nil {
		t.Fatal(err)
	}
	got, err := Normalize(buf.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if got.MIME != "image/png" || got.Ext != "png" {
		t.Errorf("MIME/Ext = %s/%s", got.MIME, got.Ext)
	}
	if !bytes.Equal(got.Data, buf.Bytes()) {
		t.Error("png within limits should not be re-encoded")
	}
	if got.Width != 10 || got.Height != 5 {
		t.Errorf("size = %dx%d", got.Width, got.Height)
	}
}

func TestNormalize_BMPBecomesPNG(t *testing.T) {
	var buf bytes.Buffer
	if err := bmp.Encode(&buf, solid(4, 4)); err != nil {
		t.Fatal(err)
	}
	got, err := Normalize(buf.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if got.MIME != "image/png" {
		t.Errorf("MIME = %s, want image/png", got.MIME)
	}
	if _, format, err := image.Decode(bytes.NewReader(got.Data)); err != nil || format != "png" {
		t.Errorf("output is %q, %v", format, err)
	}
}

func TestNormalize_Rejects(t *testing.T) {
	_, err := Normalize([]byte("definitely not an image"))
	if !errors.Is(err, ErrUnsupportedImage) {
		t.Errorf("got %v, want ErrUnsupportedImage", err)
	}
}

func TestFit(t *testing.T) {
	img := fit(solid(200, 100), 50)
	if b := img.Bounds(); b.Dx() != 50 || b.Dy() != 25 {
		t.Errorf("fit = %dx%d, want 50x25", b.Dx(), b.Dy())
	}
	img = fit(solid(10, 40), 20)
	if b := img.Bounds(); b.Dx() != 5 || b.Dy() != 20 {
		t.Errorf("fit = %dx%d, want 5x20", b.Dx(), b.Dy())
	}
}

// zeroPNG builds an all-black 8-bit grayscale PNG row by row, so huge
// dimensions cost only the compressed size.
func zeroPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var idat bytes.Buffer
	zw := zlib.NewWriter(&idat)
	row := make([]byte, w+1)
	for y := 0; y < h; y++ {
		if _, err := zw.Write(row); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}

	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:], uint32(w))
	binary.BigEndian.PutUint32(ihdr[4:], uint32(h))
	ihdr[8] = 8 // bit depth; colour type, compression, filter and interlace stay 0

	var out bytes.Buffer
	out.WriteString("\x89PNG\r\n\x1a\n")
	writeChunk(&out, "IHDR", ihdr)
	writeChunk(&out, "IDAT", idat.Bytes())
	writeChunk(&out, "IEND", nil)
	return out.Bytes()
}

func writeChunk(b *bytes.Buffer, typ string, data []byte) {
	var n [4]byte
	binary.BigEndian.PutUint32(n[:], uint32(len(data)))
	b.Write(n[:])
	crc := crc32.NewIEEE()
	crc.Write([]byte(typ))
	crc.Write(data)
	b.WriteString(typ)
	b.Write(data)
	binary.BigEndian.PutUint32(n[:], crc.Sum32())
	b.Write(n[:])
}

func TestZeroPNG_Decodes(t *testing.T) {
	img, err := png.Decode(bytes.NewReader(zeroPNG(t, 7, 3)))
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 7 || b.Dy() != 3 {
		t.Errorf("bounds = %v", b)
	}
}

func TestNormalize_RejectsDecompressionBomb(t *testing.T) {
	data := zeroPNG(t, 16000, 16000)
	if len(data) > 4<<20 {
		t.Fatalf("fixture is %d bytes, want a small file", len(data))
	}
	_, err := Normalize(data)
	if !errors.Is(err, ErrUnsupportedImage) {
		t.Fatalf("got %v, want ErrUnsupportedImage", err)
	}
	if !strings.Contains(err.Error(), "exceeds") {
		t.Errorf("rejected for the wrong reason: %v", err)
	}
}
