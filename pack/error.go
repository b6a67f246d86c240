package pack

import "fmt"

// EmptyInputError is returned when there are no sprites to pack.
type EmptyInputError struct{}

func (e *EmptyInputError) Error() string {
	return "pack: no sprites to pack"
}

// InvalidDimensionError is returned when a sprite has a non-positive
// width or height, or when its pixel data does not match its size.
type InvalidDimensionError struct {
	Name string
	W, H int
	Msg  string
}

// newDimensionError creates a new, formatted error for the given sprite.
func newDimensionError(s *Sprite, f string, argv ...interface{}) *InvalidDimensionError {
	return &InvalidDimensionError{
		Name: s.Name,
		W:    s.W,
		H:    s.H,
		Msg:  fmt.Sprintf(f, argv...),
	}
}

func (e *InvalidDimensionError) Error() string {
	return fmt.Sprintf("pack: sprite %q (%dx%d): %s", e.Name, e.W, e.H, e.Msg)
}

// DuplicateNameWarning reports two input sprites sharing a name.
//
// Both sprites are placed on the canvas, but the descriptor entry written
// last wins: only the sprite at input index Kept can be looked up by name.
type DuplicateNameWarning struct {
	Name    string
	Dropped int // Input index of the sprite which lost its descriptor entry.
	Kept    int // Input index of the sprite which replaced it.
}

func (w DuplicateNameWarning) String() string {
	return fmt.Sprintf("duplicate sprite name %q: input %d replaces input %d in the descriptor",
		w.Name, w.Kept, w.Dropped)
}
