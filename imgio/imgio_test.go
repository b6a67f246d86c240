package imgio

import (
	"bytes"
	"image"
	"image/color"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/hexaflex/atlas/atlas"
)

func testImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{byte(x), byte(y), byte(x + y), byte(x*y) | 3})
		}
	}
	return img
}

func TestCrop(t *testing.T) {
	src := testImage(16, 16)

	dst, err := Crop(src, atlas.Rect{X: 4, Y: 6, W: 5, H: 3})
	if err != nil {
		t.Fatal(err)
	}

	if b := dst.Bounds(); b != image.Rect(0, 0, 5, 3) {
		t.Fatalf("bounds mismatch: %v", b)
	}

	for y := 0; y < 3; y++ {
		for x := 0; x < 5; x++ {
			if have, want := dst.NRGBAAt(x, y), src.NRGBAAt(x+4, y+6); have != want {
				t.Fatalf("pixel %d,%d:\nwant: %v\nhave: %v", x, y, want, have)
			}
		}
	}
}

func TestCropOutOfBounds(t *testing.T) {
	src := testImage(10, 10)

	dst, err := Crop(src, atlas.Rect{X: 8, Y: -2, W: 4, H: 4})
	if err != nil {
		t.Fatal(err)
	}

	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			sx, sy := x+8, y-2
			want := color.NRGBA{}
			if sx < 10 && sy >= 0 {
				want = src.NRGBAAt(sx, sy)
			}

			if have := dst.NRGBAAt(x, y); have != want {
				t.Fatalf("pixel %d,%d:\nwant: %v\nhave: %v", x, y, want, have)
			}
		}
	}

	if _, err := Crop(src, atlas.Rect{W: 0, H: 4}); err == nil {
		t.Fatalf("expected error for empty crop")
	}
}

func TestCropPaletted(t *testing.T) {
	pal := color.Palette{color.Transparent, color.NRGBA{255, 0, 0, 255}}
	src := image.NewPaletted(image.Rect(0, 0, 4, 4), pal)
	src.SetColorIndex(1, 1, 1)

	dst, err := Crop(src, atlas.Rect{X: 1, Y: 1, W: 2, H: 2})
	if err != nil {
		t.Fatal(err)
	}

	if have, want := dst.NRGBAAt(0, 0), (color.NRGBA{255, 0, 0, 255}); have != want {
		t.Fatalf("want %v, have %v", want, have)
	}

	if have := dst.NRGBAAt(1, 1); have.A != 0 {
		t.Fatalf("want transparent pixel, have %v", have)
	}
}

func TestPNGRoundTrip(t *testing.T) {
	src := testImage(7, 5)

	var buf bytes.Buffer
	if err := EncodePNG(&buf, src); err != nil {
		t.Fatal(err)
	}

	img, format, err := Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}

	if format != "png" {
		t.Fatalf("want format png, have %q", format)
	}

	have, ok := img.(*image.NRGBA)
	if !ok {
		t.Fatalf("want *image.NRGBA, have %T", img)
	}

	if !reflect.DeepEqual(have.Pix, src.Pix) {
		t.Fatalf("pixel data mismatch")
	}
}

func TestWriteLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "out.png")
	src := testImage(9, 4)

	var buf bytes.Buffer
	if err := EncodePNG(&buf, src); err != nil {
		t.Fatal(err)
	}

	if err := WriteFile(path, buf.Bytes()); err != nil {
		t.Fatal(err)
	}

	w, h, err := DecodeSize(path)
	if err != nil {
		t.Fatal(err)
	}

	if w != 9 || h != 4 {
		t.Fatalf("size: want 9x4, have %dx%d", w, h)
	}

	img, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if img.Bounds() != src.Bounds() {
		t.Fatalf("bounds mismatch: %v", img.Bounds())
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestDecodeGarbage(t *testing.T) {
	if _, _, err := Decode(bytes.NewReader([]byte("definitely not an image"))); err == nil {
		t.Fatalf("expected decode error")
	}
}
