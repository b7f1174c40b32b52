// Package window opens the GLFW window the engine renders into and turns its
// callbacks into engine input events.
package window

import (
	"github.com/pkg/errors"
	"github.com/vulkan-go/glfw/v3.3/glfw"

	"github.com/perlw/myrcube/myr"
)

type Window struct {
	window *glfw.Window
	events []myr.Event

	cursorSeen bool
	cursorX    float64
	cursorY    float64
}

// New initializes GLFW and opens a fixed size window without a client API.
// It has to run on the main thread.
func New(title string, width, height int) (*Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, errors.Wrap(err, "could not initialize glfw")
	}
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.False)

	w := Window{}
	var err error
	w.window, err = glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, errors.Wrap(err, "could not create window")
	}

	w.window.SetKeyCallback(w.onKey)
	w.window.SetMouseButtonCallback(w.onMouseButton)
	w.window.SetCursorPosCallback(w.onCursorPos)

	return &w, nil
}

func (w *Window) Handle() uintptr {
	return w.window.GLFWWindow()
}

func (w *Window) FramebufferSize() (int, int) {
	return w.window.GetFramebufferSize()
}

func (w *Window) ShouldClose() bool {
	return w.window.ShouldClose()
}

// PollEvents pumps the window system and returns the events received since
// the previous call.
func (w *Window) PollEvents() []myr.Event {
	w.events = w.events[:0]
	glfw.PollEvents()
	return w.events
}

func (w *Window) Destroy() {
	w.window.Destroy()
	glfw.Terminate()
}

func (w *Window) onKey(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
	if key == glfw.KeyEscape && action == glfw.Press {
		w.window.SetShouldClose(true)
		return
	}
	if ev, ok := keyEvent(key, action); ok {
		w.events = append(w.events, ev)
	}
}

func (w *Window) onMouseButton(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
	if ev, ok := mouseButtonEvent(button, action); ok {
		w.events = append(w.events, ev)
	}
}

// onCursorPos reports motion relative to the previous position. The first
// position only sets the origin.
func (w *Window) onCursorPos(_ *glfw.Window, x, y float64) {
	if w.cursorSeen {
		w.events = append(w.events, myr.Event{
			Type: myr.MouseMotion,
			XRel: int(x - w.cursorX),
			YRel: int(y - w.cursorY),
		})
	}
	w.cursorSeen = true
	w.cursorX, w.cursorY = x, y
}

var keys = map[glfw.Key]myr.Key{
	glfw.KeyW: myr.KeyW,
	glfw.KeyA: myr.KeyA,
	glfw.KeyS: myr.KeyS,
	glfw.KeyD: myr.KeyD,
}

// keyEvent drops repeats and keys the camera does not use.
func keyEvent(key glfw.Key, action glfw.Action) (myr.Event, bool) {
	k, ok := keys[key]
	if !ok {
		return myr.Event{}, false
	}
	switch action {
	case glfw.Press:
		return myr.Event{Type: myr.KeyDown, Key: k}, true
	case glfw.Release:
		return myr.Event{Type: myr.KeyUp, Key: k}, true
	}
	return myr.Event{}, false
}

var buttons = map[glfw.MouseButton]myr.MouseButton{
	glfw.MouseButtonLeft:   myr.MouseLeft,
	glfw.MouseButtonRight:  myr.MouseRight,
	glfw.MouseButtonMiddle: myr.MouseMiddle,
}

func mouseButtonEvent(button glfw.MouseButton, action glfw.Action) (myr.Event, bool) {
	b, ok := buttons[button]
	if !ok {
		return myr.Event{}, false
	}
	switch action {
	case glfw.Press:
		return myr.Event{Type: myr.MouseButtonDown, Button: b}, true
	case glfw.Release:
		return myr.Event{Type: myr.MouseButtonUp, Button: b}, true
	}
	return myr.Event{}, false
}
