// Package optimize repacks atlas image and descriptor pairs on disk.
package optimize

import (
	"bytes"
	"fmt"
	"image"
	"log"
	"os"

	"github.com/pkg/errors"

	"github.com/hexaflex/atlas/atlas"
	"github.com/hexaflex/atlas/imgio"
	"github.com/hexaflex/atlas/pack"
)

// Job defines the files for a single atlas to be optimized.
type Job struct {
	Image         string       // Source atlas image.
	Descriptor    string       // Source atlas descriptor.
	OutImage      string       // Destination image file.
	OutDescriptor string       // Destination descriptor file.
	Options       pack.Options // Packer configuration. ImageName is taken from OutImage.
}

// Result describes the outcome of a single optimized atlas.
type Result struct {
	Name      string // Source image path.
	OldWidth  int
	OldHeight int
	NewWidth  int
	NewHeight int
	Sprites   int
	Warnings  []pack.DuplicateNameWarning
}

// OldArea returns the pixel count of the source image.
func (r *Result) OldArea() int {
	return r.OldWidth * r.OldHeight
}

// NewArea returns the pixel count of the packed image.
func (r *Result) NewArea() int {
	return r.NewWidth * r.NewHeight
}

// Reduction returns the reduction in pixel count as a percentage.
func (r *Result) Reduction() float64 {
	return reduction(r.OldArea(), r.NewArea())
}

func (r *Result) String() string {
	return fmt.Sprintf("%s: %d sprites, %dx%d (%d pixels) -> %dx%d (%d pixels), reduction %.1f%%",
		r.Name, r.Sprites, r.OldWidth, r.OldHeight, r.OldArea(),
		r.NewWidth, r.NewHeight, r.NewArea(), r.Reduction())
}

func reduction(before, after int) float64 {
	if before == 0 {
		return 0
	}
	return 100 * (1 - float64(after)/float64(before))
}

// Run loads the job's atlas, repacks it and writes the results.
//
// Both outputs are encoded in memory before anything is written, so a
// failing job leaves no files behind unless writing itself fails.
func Run(job *Job) (*Result, error) {
	log.Println("optimizing", job.Image)

	img, err := imgio.Load(job.Image)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(job.Descriptor)
	if err != nil {
		return nil, err
	}

	desc, err := atlas.Decode(data)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", job.Descriptor)
	}

	sprites, err := Extract(img, desc)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", job.Descriptor)
	}

	opt := job.Options
	opt.ImageName = job.OutImage

	packed, err := pack.Repack(sprites, opt)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", job.Image)
	}

	for _, w := range packed.Warnings {
		log.Printf("warning: %s: %s", job.Image, w)
	}

	var pngData bytes.Buffer
	if err = imgio.EncodePNG(&pngData, packed.Canvas); err != nil {
		return nil, errors.Wrapf(err, "%s", job.OutImage)
	}

	jsonData, err := packed.Descriptor.Encode()
	if err != nil {
		return nil, err
	}

	if err = imgio.WriteFile(job.OutImage, pngData.Bytes()); err != nil {
		return nil, err
	}

	if err = imgio.WriteFile(job.OutDescriptor, jsonData); err != nil {
		return nil, err
	}

	ob := img.Bounds()
	cb := packed.Canvas.Bounds()
	r := &Result{
		Name:      job.Image,
		OldWidth:  ob.Dx(),
		OldHeight: ob.Dy(),
		NewWidth:  cb.Dx(),
		NewHeight: cb.Dy(),
		Sprites:   len(sprites),
		Warnings:  packed.Warnings,
	}

	log.Println(r)
	return r, nil
}

// Extract crops every frame of desc out of img, in descriptor order.
func Extract(img image.Image, desc *atlas.Descriptor) ([]pack.Sprite, error) {
	entries := desc.Frames.Entries()
	sprites := make([]pack.Sprite, 0, len(entries))

	for _, e := range entries {
		r := e.Frame.Frame
		if r.W <= 0 || r.H <= 0 {
			// Let the packer report the offending sprite.
			sprites = append(sprites, pack.Sprite{Name: e.Name, W: r.W, H: r.H})
			continue
		}

		crop, err := imgio.Crop(img, r)
		if err != nil {
			return nil, errors.Wrapf(err, "frame %q", e.Name)
		}

		sprites = append(sprites, pack.NewSprite(e.Name, crop))
	}

	return sprites, nil
}
