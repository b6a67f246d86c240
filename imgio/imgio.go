// Package imgio reads and writes the raster images consumed and produced
// by the atlas tools.
package imgio

import (
	"bufio"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"golang.org/x/image/draw"

	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/hexaflex/atlas/atlas"
)

// Decode reads an image in any of the registered formats.
// It returns the image along with the name of its format.
func Decode(r io.Reader) (image.Image, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", errors.Wrapf(err, "imgio: decode")
	}
	return img, format, nil
}

// Load reads an image from the given file.
func Load(path string) (image.Image, error) {
	fd, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	defer fd.Close()

	img, _, err := Decode(bufio.NewReader(fd))
	if err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}

	return img, nil
}

// DecodeSize returns the pixel dimensions of the given image file without
// decoding all of its pixel data.
func DecodeSize(path string) (int, int, error) {
	fd, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}

	defer fd.Close()

	cfg, _, err := image.DecodeConfig(bufio.NewReader(fd))
	if err != nil {
		return 0, 0, errors.Wrapf(err, "imgio: %s", path)
	}

	return cfg.Width, cfg.Height, nil
}

// Crop copies the given rectangle of img into a new image whose bounds
// start at the origin. Parts of the rectangle outside of img's bounds
// remain transparent.
func Crop(img image.Image, r atlas.Rect) (*image.NRGBA, error) {
	if r.W <= 0 || r.H <= 0 {
		return nil, errors.Errorf("imgio: invalid crop size %dx%d", r.W, r.H)
	}

	dst := image.NewNRGBA(image.Rect(0, 0, r.W, r.H))
	area := image.Rect(r.X, r.Y, r.X+r.W, r.Y+r.H)
	ib := img.Bounds()

	// area is relative to img's bounds.
	area = area.Add(ib.Min)
	clip := area.Intersect(ib)
	if clip.Empty() {
		return dst, nil
	}

	at := clip.Min.Sub(area.Min)

	src, ok := img.(*image.NRGBA)
	if !ok {
		draw.Draw(dst, clip.Sub(clip.Min).Add(at), img, clip.Min, draw.Src)
		return dst, nil
	}

	stride := clip.Dx() * 4
	for y := 0; y < clip.Dy(); y++ {
		si := src.PixOffset(clip.Min.X, clip.Min.Y+y)
		di := dst.PixOffset(at.X, at.Y+y)
		copy(dst.Pix[di:di+stride], src.Pix[si:si+stride])
	}

	return dst, nil
}

// EncodePNG writes img as a PNG image, using the best available compression.
func EncodePNG(w io.Writer, img image.Image) error {
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(w, img); err != nil {
		return errors.Wrapf(err, "imgio: encode")
	}
	return nil
}

// WriteFile writes data to the given file. Missing parent directories
// are created.
func WriteFile(path string, data []byte) error {
	fd, err := Create(path)
	if err != nil {
		return err
	}

	if _, err = fd.Write(data); err != nil {
		fd.Close()
		return errors.Wrapf(err, "%s", path)
	}

	return fd.Close()
}

// Create creates the given file along with any missing parent directories.
func Create(path string) (*os.File, error) {
	dir, _ := filepath.Split(path)
	if dir != "" {
		if err := os.MkdirAll(dir, 0744); err != nil {
			return nil, err
		}
	}

	return os.Create(path)
}
