package atlas

import (
	"strconv"

	"github.com/pkg/errors"
)

// Grid creates a descriptor for a sprite sheet made up of square tiles of
// the given size.
//
// Frames are named "<prefix>_<index>" and numbered in row-major order,
// starting at zero. Any sheet area which does not fit a complete tile is
// ignored. The descriptor refers to the image "<prefix>.png"; callers can
// change Meta.Image as needed.
func Grid(width, height, tileSize int, prefix string) (*Descriptor, error) {
	if tileSize <= 0 {
		return nil, errors.Errorf("atlas: invalid tile size %d", tileSize)
	}

	if width < 0 || height < 0 {
		return nil, errors.Errorf("atlas: invalid sheet size %dx%d", width, height)
	}

	d := New(prefix+".png", width, height)
	cols := width / tileSize
	rows := height / tileSize

	var index int
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			name := prefix + "_" + strconv.Itoa(index)
			d.Frames.Set(name, NewFrame(col*tileSize, row*tileSize, tileSize, tileSize))
			index++
		}
	}

	return d, nil
}
