package main

import (
	"fmt"
	"image"
	"log"
	"os"
	"strings"
	"time"

	"github.com/go-gl/gl/v4.2-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/pkg/errors"

	"github.com/hexaflex/atlas/atlas"
	"github.com/hexaflex/atlas/imgio"
	"github.com/hexaflex/atlas/view"
)

// App defines application context.
type App struct {
	config       *Config           // Application configuration.
	window       *glfw.Window      // OpenGL/GLFW context.
	canvas       *image.NRGBA      // Atlas pixels.
	desc         *atlas.Descriptor // Atlas frames.
	cursor       *view.Cursor      // Selected frame.
	renderer     *view.Renderer    // Atlas display.
	lastRendered time.Time         // Last time a frame was rendered.
}

// NewApp creates a new application instance using the given configuration.
func NewApp(config *Config) *App {
	return &App{config: config}
}

// Run runs the application and does not return until it is finished
// or an error occured during initialization.
func (a *App) Run() error {
	if err := a.load(); err != nil {
		return err
	}

	if err := a.initGL(); err != nil {
		return err
	}

	defer a.dispose()

	a.renderer = view.New(a.canvas)
	if err := a.renderer.Startup(); err != nil {
		return err
	}

	log.Println(Version())
	log.Println(strings.TrimSpace(a.desc.String()))
	printHelp()
	a.selectFrame()

	for !a.window.ShouldClose() {
		a.mainLoop()
	}

	return nil
}

// load reads the atlas image and descriptor from disk.
func (a *App) load() error {
	img, err := imgio.Load(a.config.Image)
	if err != nil {
		return err
	}

	b := img.Bounds()
	a.canvas, err = imgio.Crop(img, atlas.Rect{X: 0, Y: 0, W: b.Dx(), H: b.Dy()})
	if err != nil {
		return errors.Wrapf(err, "%s", a.config.Image)
	}

	data, err := os.ReadFile(a.config.Descriptor)
	if err != nil {
		return err
	}

	a.desc, err = atlas.Decode(data)
	if err != nil {
		return errors.Wrapf(err, "%s", a.config.Descriptor)
	}

	if err = a.desc.Validate(); err != nil {
		log.Println("warning:", err)
	}

	a.cursor = view.NewCursor(a.desc)
	return nil
}

// mainLoop performs all main loop operations.
func (a *App) mainLoop() {
	if time.Since(a.lastRendered) >= time.Second/60 {
		a.lastRendered = time.Now()
		gl.Clear(gl.COLOR_BUFFER_BIT)
		a.renderer.Draw()
		a.window.SwapBuffers()
	}

	glfw.WaitEventsTimeout(1.0 / 60)
}

// dispose ensures openGL/GLFW and other resources are cleaned up.
func (a *App) dispose() {
	if a.renderer != nil {
		a.renderer.Shutdown()
		a.renderer = nil
	}

	if a.window != nil {
		a.window.Destroy()
		a.window = nil
	}

	glfw.Terminate()
}

func (a *App) keyCallback(_ *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if action != glfw.Press && action != glfw.Repeat {
		return
	}

	switch key {
	case glfw.KeyEscape:
		a.window.SetShouldClose(true)
	case glfw.KeyF1:
		printHelp()
	case glfw.KeyRight, glfw.KeyDown:
		a.cursor.Next()
		a.selectFrame()
	case glfw.KeyLeft, glfw.KeyUp:
		a.cursor.Prev()
		a.selectFrame()
	}
}

// selectFrame highlights the cursor's current frame and shows its
// properties in the window title.
func (a *App) selectFrame() {
	e, ok := a.cursor.Current()
	if !ok {
		a.window.SetTitle(fmt.Sprintf("%s - %s (no frames)", AppName, a.desc.Meta.Image))
		return
	}

	r := e.Frame.Frame
	a.renderer.Select(r)
	a.window.SetTitle(fmt.Sprintf("%s - %s: %d,%d %dx%d", AppName, e.Name, r.X, r.Y, r.W, r.H))
}

// initGL initializes GLFW and openGL.
func (a *App) initGL() error {
	err := glfw.Init()
	if err != nil {
		return errors.Wrapf(err, "glfw.Init failed")
	}

	glfw.WindowHint(glfw.Resizable, glfw.False)
	glfw.WindowHint(glfw.Visible, glfw.True)
	glfw.WindowHint(glfw.Focused, glfw.True)
	glfw.WindowHint(glfw.Decorated, glfw.True)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 2)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	b := a.canvas.Bounds()
	width := b.Dx() * a.config.ScaleFactor
	height := b.Dy() * a.config.ScaleFactor

	a.window, err = glfw.CreateWindow(width, height, AppName, nil, nil)
	if err != nil {
		a.dispose()
		return errors.Wrapf(err, "glfw.CreateWindow failed")
	}

	a.window.MakeContextCurrent()
	a.window.SetKeyCallback(a.keyCallback)

	glfw.SwapInterval(1)

	err = gl.Init()
	if err != nil {
		a.dispose()
		return errors.Wrapf(err, "gl.Init failed")
	}

	gl.ClearColor(0, 0, 0, 1.0)
	return nil
}

// printHelp writes a short overview of supported shortcut keys to the log.
func printHelp() {
	var sb strings.Builder
	sb.WriteString("shortcut keys:\n")
	sb.WriteString(" ESC          Close the viewer.\n")
	sb.WriteString(" F1           Display this help.\n")
	sb.WriteString(" Right, Down  Select the next frame.\n")
	sb.WriteString(" Left, Up     Select the previous frame.")
	log.Println(sb.String())
}
