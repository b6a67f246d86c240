// Package atlas defines the sprite atlas descriptor, an encoder and
// decoder for its JSON document format, as well as a generator for
// descriptors of regular sprite grids.
package atlas

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// DefaultScale is the only scale factor written to descriptors.
const DefaultScale = "1"

// Rect defines a rectangle in pixel space.
type Rect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// Size defines pixel dimensions.
type Size struct {
	W int `json:"w"`
	H int `json:"h"`
}

// Frame defines a single named sprite in an atlas.
type Frame struct {
	Frame            Rect `json:"frame"`            // Sprite rectangle in the atlas image.
	SourceSize       Size `json:"sourceSize"`       // Logical, untrimmed sprite size.
	SpriteSourceSize Rect `json:"spriteSourceSize"` // Trimmed region within SourceSize.
}

// NewFrame creates an untrimmed frame for the given rectangle.
func NewFrame(x, y, w, h int) Frame {
	return Frame{
		Frame:            Rect{x, y, w, h},
		SourceSize:       Size{w, h},
		SpriteSourceSize: Rect{0, 0, w, h},
	}
}

// Meta holds atlas wide properties.
type Meta struct {
	Image string `json:"image"` // File name of the companion image.
	Size  Size   `json:"size"`  // Total size of the companion image.
	Scale string `json:"scale"`
}

// Descriptor defines a complete atlas document.
type Descriptor struct {
	Frames Frames `json:"frames"`
	Meta   Meta   `json:"meta"`
}

// New creates an empty descriptor for the given image.
func New(image string, width, height int) *Descriptor {
	return &Descriptor{
		Meta: Meta{
			Image: image,
			Size:  Size{width, height},
			Scale: DefaultScale,
		},
	}
}

// Decode reads a descriptor from the given JSON document.
func Decode(data []byte) (*Descriptor, error) {
	var d Descriptor
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, errors.Wrapf(err, "atlas: invalid descriptor")
	}
	return &d, nil
}

// Encode returns the descriptor as an indented JSON document.
func (d *Descriptor) Encode() ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, errors.Wrapf(err, "atlas: encode descriptor")
	}
	return append(data, '\n'), nil
}

// Validate checks that every frame has a positive size and lies within
// the bounds recorded in Meta.Size. A zero Meta.Size skips the bounds check.
func (d *Descriptor) Validate() error {
	bounds := d.Meta.Size.W > 0 && d.Meta.Size.H > 0

	for _, e := range d.Frames.Entries() {
		r := e.Frame.Frame
		if r.W <= 0 || r.H <= 0 {
			return errors.Errorf("atlas: frame %q has invalid size %dx%d", e.Name, r.W, r.H)
		}
		if !bounds {
			continue
		}
		if r.X < 0 || r.Y < 0 || r.X+r.W > d.Meta.Size.W || r.Y+r.H > d.Meta.Size.H {
			return errors.Errorf("atlas: frame %q (%d,%d %dx%d) exceeds image size %dx%d",
				e.Name, r.X, r.Y, r.W, r.H, d.Meta.Size.W, d.Meta.Size.H)
		}
	}

	return nil
}

// String returns a human-readable dump of the descriptor's contents.
func (d *Descriptor) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Image: %s (%dx%d, scale %s)\n", d.Meta.Image, d.Meta.Size.W, d.Meta.Size.H, d.Meta.Scale)
	fmt.Fprintf(&sb, "Frames (%d):\n", d.Frames.Len())
	for _, e := range d.Frames.Entries() {
		r := e.Frame.Frame
		fmt.Fprintf(&sb, " %s: %d,%d %dx%d\n", e.Name, r.X, r.Y, r.W, r.H)
	}
	return sb.String()
}

// Entry is a single named frame.
type Entry struct {
	Name  string
	Frame Frame
}

// Frames is a name to frame mapping which remembers insertion order.
//
// JSON documents are decoded in document order and encoded in insertion
// order. Setting an existing name replaces its frame but keeps its position.
// The zero value is an empty set, ready for use.
type Frames struct {
	entries []Entry
	index   map[string]int
}

// Len returns the number of frames.
func (f *Frames) Len() int {
	return len(f.entries)
}

// Set assigns frame to name. It returns true if an earlier frame with the
// same name was replaced.
func (f *Frames) Set(name string, frame Frame) bool {
	if f.index == nil {
		f.index = make(map[string]int)
	}

	if i, ok := f.index[name]; ok {
		f.entries[i].Frame = frame
		return true
	}

	f.index[name] = len(f.entries)
	f.entries = append(f.entries, Entry{name, frame})
	return false
}

// Get returns the frame for the given name, if it exists.
func (f *Frames) Get(name string) (Frame, bool) {
	i, ok := f.index[name]
	if !ok {
		return Frame{}, false
	}
	return f.entries[i].Frame, true
}

// Names returns all frame names in order.
func (f *Frames) Names() []string {
	out := make([]string, len(f.entries))
	for i, e := range f.entries {
		out[i] = e.Name
	}
	return out
}

// Entries returns a copy of all frames in order.
func (f *Frames) Entries() []Entry {
	out := make([]Entry, len(f.entries))
	copy(out, f.entries)
	return out
}

// MarshalJSON implements json.Marshaler.
func (f Frames) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	for i, e := range f.entries {
		if i > 0 {
			buf.WriteByte(',')
		}

		key, err := json.Marshal(e.Name)
		if err != nil {
			return nil, err
		}

		value, err := json.Marshal(e.Frame)
		if err != nil {
			return nil, err
		}

		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *Frames) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}

	if tok == nil {
		*f = Frames{}
		return nil
	}

	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.Errorf("frames: expected object, found %v", tok)
	}

	var out Frames
	for dec.More() {
		tok, err = dec.Token()
		if err != nil {
			return err
		}

		name := tok.(string)

		var frame Frame
		if err = dec.Decode(&frame); err != nil {
			return errors.Wrapf(err, "frames: %q", name)
		}

		out.Set(name, frame)
	}

	*f = out
	return nil
}
