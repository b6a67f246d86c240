// Package view renders a packed atlas with OpenGL and outlines a single
// selected frame.
package view

import (
	"image"

	"github.com/go-gl/gl/v4.2-core/gl"
	"github.com/pkg/errors"

	"github.com/hexaflex/atlas/atlas"
)

// Renderer draws an atlas image to the current OpenGL context.
//
// All methods must be called from the thread owning the context.
type Renderer struct {
	img         *image.NRGBA
	highlight   [4]float32
	shader      uint32
	vao         uint32
	vbo         uint32
	texture     uint32
	texDirty    bool
	selDirty    bool
	initialized bool
}

// New creates a renderer for the given image. The image's pixel rows
// must be tightly packed, as returned by image.NewNRGBA.
func New(img *image.NRGBA) *Renderer {
	return &Renderer{img: img}
}

// Startup creates the GL resources. The OpenGL context must be current.
func (r *Renderer) Startup() error {
	var err error

	r.shader, err = compileProgram(vertex, fragment)
	if err != nil {
		return errors.Wrapf(err, "failed to compile shaders")
	}

	gl.UseProgram(r.shader)

	gl.GenVertexArrays(1, &r.vao)
	gl.BindVertexArray(r.vao)

	gl.GenBuffers(1, &r.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(quadVertices)*4, gl.Ptr(quadVertices), gl.STATIC_DRAW)

	vertAttrib := uint32(gl.GetAttribLocation(r.shader, glStr("vertPos")))
	texCoordAttrib := uint32(gl.GetAttribLocation(r.shader, glStr("vertTexCoord")))

	gl.EnableVertexAttribArray(vertAttrib)
	gl.VertexAttribPointer(vertAttrib, 3, gl.FLOAT, false, 5*4, gl.PtrOffset(0))

	gl.EnableVertexAttribArray(texCoordAttrib)
	gl.VertexAttribPointer(texCoordAttrib, 2, gl.FLOAT, false, 5*4, gl.PtrOffset(3*4))

	r.texture = makeTexture()

	b := r.img.Bounds()
	texel := gl.GetUniformLocation(r.shader, glStr("texelSize"))
	gl.Uniform2f(texel, 1/float32(b.Dx()), 1/float32(b.Dy()))

	r.texDirty = true
	r.selDirty = true
	r.initialized = true
	r.upload()
	return nil
}

// Shutdown releases all GL resources.
func (r *Renderer) Shutdown() {
	if !r.initialized {
		return
	}

	r.initialized = false
	gl.DeleteTextures(1, &r.texture)
	gl.DeleteBuffers(1, &r.vbo)
	gl.DeleteVertexArrays(1, &r.vao)
	gl.DeleteProgram(r.shader)
}

// Select outlines the given frame. A zero rectangle clears the selection.
func (r *Renderer) Select(f atlas.Rect) {
	b := r.img.Bounds()
	r.highlight = TexRect(f, b.Dx(), b.Dy())
	r.selDirty = true
}

// Draw renders the atlas.
func (r *Renderer) Draw() {
	if !r.initialized {
		return
	}

	r.upload()

	gl.UseProgram(r.shader)
	gl.BindVertexArray(r.vao)

	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, r.texture)

	gl.DrawArrays(gl.TRIANGLES, 0, 6)
}

// upload pushes pending state to the GPU.
func (r *Renderer) upload() {
	if r.selDirty {
		gl.UseProgram(r.shader)
		loc := gl.GetUniformLocation(r.shader, glStr("highlight"))
		gl.Uniform4fv(loc, 1, &r.highlight[0])
		r.selDirty = false
	}

	if r.texDirty {
		b := r.img.Bounds()
		uploadTexture(r.texture, int32(b.Dx()), int32(b.Dy()), r.img.Pix)
		r.texDirty = false
	}
}

// TexRect converts a pixel rectangle in an image of the given size to
// texture coordinates: x0, y0, x1, y1.
func TexRect(f atlas.Rect, width, height int) [4]float32 {
	if width <= 0 || height <= 0 || f.W <= 0 || f.H <= 0 {
		return [4]float32{}
	}

	w, h := float32(width), float32(height)
	return [4]float32{
		float32(f.X) / w,
		float32(f.Y) / h,
		float32(f.X+f.W) / w,
		float32(f.Y+f.H) / h,
	}
}

// Cursor walks the frames of a descriptor in order.
type Cursor struct {
	entries []atlas.Entry
	index   int
}

// NewCursor creates a cursor positioned at the first frame of d.
func NewCursor(d *atlas.Descriptor) *Cursor {
	return &Cursor{entries: d.Frames.Entries()}
}

// Len returns the number of frames.
func (c *Cursor) Len() int {
	return len(c.entries)
}

// Current returns the selected frame. It returns false if there are no frames.
func (c *Cursor) Current() (atlas.Entry, bool) {
	if len(c.entries) == 0 {
		return atlas.Entry{}, false
	}
	return c.entries[c.index], true
}

// Next moves to the next frame, wrapping around at the end.
func (c *Cursor) Next() {
	if len(c.entries) > 0 {
		c.index = (c.index + 1) % len(c.entries)
	}
}

// Prev moves to the previous frame, wrapping around at the start.
func (c *Cursor) Prev() {
	if len(c.entries) > 0 {
		c.index = (c.index + len(c.entries) - 1) % len(c.entries)
	}
}

var quadVertices = []float32{
	//  X, Y, Z, U, V
	-1.0, -1.0, 0.0, 0.0, 1.0,
	1.0, -1.0, 0.0, 1.0, 1.0,
	-1.0, 1.0, 0.0, 0.0, 0.0,
	1.0, -1.0, 0.0, 1.0, 1.0,
	1.0, 1.0, 0.0, 1.0, 0.0,
	-1.0, 1.0, 0.0, 0.0, 0.0,
}
