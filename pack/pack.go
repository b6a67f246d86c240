// Package pack implements a shelf packer which repacks the sprites of an
// atlas into a smaller image.
//
// Sprites are sorted by height, tallest first, and placed left to right in
// rows of a fixed maximum width. A new row starts below the tallest sprite
// of the previous one. This is a single pass heuristic; it makes no attempt
// at finding an optimal layout.
package pack

import (
	"image"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"

	"github.com/hexaflex/atlas/atlas"
)

// Default packing properties.
const (
	DefaultPadding     = 2   // Transparent pixels around each sprite.
	DefaultMaxRowWidth = 512 // Row width at which a new row is started.
)

// Options defines packer configuration.
type Options struct {
	Padding     int    // Transparent margin between sprites and around the canvas edge.
	MaxRowWidth int    // Maximum row width, including padding.
	RoundPow2   bool   // Round canvas dimensions up to the next power of two?
	Workers     int    // Number of concurrent compositing workers. Values < 2 draw sequentially.
	ImageName   string // Image file name recorded in the output descriptor. Directories are stripped.
}

// DefaultOptions returns the default packer configuration.
func DefaultOptions() Options {
	return Options{
		Padding:     DefaultPadding,
		MaxRowWidth: DefaultMaxRowWidth,
	}
}

func (o *Options) validate() error {
	if o.Padding < 0 {
		return errors.Errorf("pack: invalid padding %d", o.Padding)
	}
	if o.MaxRowWidth <= 0 {
		return errors.Errorf("pack: invalid maximum row width %d", o.MaxRowWidth)
	}
	return nil
}

// Sprite defines a single image to be packed.
type Sprite struct {
	Name  string
	W, H  int
	Image image.Image // Pixel data of exactly W x H pixels. Not modified by the packer.
}

// NewSprite creates a sprite whose size is taken from img.
func NewSprite(name string, img image.Image) Sprite {
	b := img.Bounds()
	return Sprite{
		Name:  name,
		W:     b.Dx(),
		H:     b.Dy(),
		Image: img,
	}
}

// Placed defines a sprite along with its position in the packed canvas.
type Placed struct {
	Sprite
	X, Y  int // Top-left corner in the canvas.
	Index int // Index of the sprite in the packer input.
}

// Rect returns the area covered by the sprite in the canvas.
func (p *Placed) Rect() image.Rectangle {
	return image.Rect(p.X, p.Y, p.X+p.W, p.Y+p.H)
}

// Result holds the output of Repack.
type Result struct {
	Canvas     *image.NRGBA      // Packed image.
	Descriptor *atlas.Descriptor // Descriptor for Canvas.
	Placed     []Placed          // Sprites in placement order.
	Warnings   []DuplicateNameWarning
}

// Layout computes sprite positions and the canvas size needed to hold them.
//
// The returned list is in placement order: sorted by height, tallest first.
// Sprites of equal height keep their input order. No pixel data is read.
func Layout(sprites []Sprite, opt Options) ([]Placed, int, int, error) {
	if err := validate(sprites, opt, false); err != nil {
		return nil, 0, 0, err
	}

	placed := make([]Placed, len(sprites))
	for i := range sprites {
		placed[i] = Placed{Sprite: sprites[i], Index: i}
	}

	sort.SliceStable(placed, func(i, j int) bool {
		return placed[i].H > placed[j].H
	})

	pad := opt.Padding
	x, y := pad, pad
	rowHeight := 0
	rowUsed := false

	for i := range placed {
		p := &placed[i]

		// An empty row always takes the sprite, even if it is too wide.
		if rowUsed && x+p.W+pad > opt.MaxRowWidth {
			x = pad
			y += rowHeight + pad
			rowHeight = 0
		}

		p.X, p.Y = x, y
		x += p.W + pad
		rowUsed = true

		if p.H > rowHeight {
			rowHeight = p.H
		}
	}

	w, h := canvasSize(placed, pad, opt.RoundPow2)
	return placed, w, h, nil
}

// Repack lays out the given sprites and draws them into a new canvas.
//
// It fails with EmptyInputError if there are no sprites and with
// InvalidDimensionError if any sprite has an invalid size or missing pixel
// data. Duplicate names do not fail; they are reported in Result.Warnings.
func Repack(sprites []Sprite, opt Options) (*Result, error) {
	if err := validate(sprites, opt, true); err != nil {
		return nil, err
	}

	placed, w, h, err := Layout(sprites, opt)
	if err != nil {
		return nil, err
	}

	canvas, err := compose(placed, w, h, opt.Workers)
	if err != nil {
		return nil, err
	}

	desc, warnings := describe(placed, w, h, opt.ImageName)
	return &Result{
		Canvas:     canvas,
		Descriptor: desc,
		Placed:     placed,
		Warnings:   warnings,
	}, nil
}

// validate checks the options, then the sprite list, then each sprite in
// input order. Pixel data is only checked if pixels is set.
func validate(sprites []Sprite, opt Options, pixels bool) error {
	if err := opt.validate(); err != nil {
		return err
	}

	if len(sprites) == 0 {
		return &EmptyInputError{}
	}

	for i := range sprites {
		s := &sprites[i]
		if s.W <= 0 || s.H <= 0 {
			return newDimensionError(s, "width and height must be positive")
		}
		if !pixels {
			continue
		}
		if s.Image == nil {
			return newDimensionError(s, "no pixel data")
		}
		if b := s.Image.Bounds(); b.Dx() != s.W || b.Dy() != s.H {
			return newDimensionError(s, "pixel data is %dx%d", b.Dx(), b.Dy())
		}
	}

	return nil
}

// describe builds the descriptor for the given layout. Frames are written
// in placement order; a later sprite replaces an earlier one of the same name.
func describe(placed []Placed, w, h int, imageName string) (*atlas.Descriptor, []DuplicateNameWarning) {
	if imageName != "" {
		imageName = filepath.Base(imageName)
	}

	d := atlas.New(imageName, w, h)
	owner := make(map[string]int, len(placed))

	var warnings []DuplicateNameWarning
	for i := range placed {
		p := &placed[i]

		if d.Frames.Set(p.Name, atlas.NewFrame(p.X, p.Y, p.W, p.H)) {
			warnings = append(warnings, DuplicateNameWarning{
				Name:    p.Name,
				Dropped: owner[p.Name],
				Kept:    p.Index,
			})
		}

		owner[p.Name] = p.Index
	}

	return d, warnings
}
