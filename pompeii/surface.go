package pompeii

import (
	vk "github.com/vulkan-go/vulkan"
)

type WindowSurface struct {
	instance *Instance
	surface  vk.Surface
}

func newWindowSurface(instance *Instance, windowHandle uintptr) (*WindowSurface, error) {
	w := WindowSurface{
		instance: instance,
		surface:  vk.NullSurface,
	}

	if err := check(vk.CreateWindowSurface(w.instance.Handle(), windowHandle, nil, &w.surface), "create window surface"); err != nil {
		return nil, err
	}

	return &w, nil
}

func (w *WindowSurface) Destroy() {
	if w.surface != vk.NullSurface {
		vk.DestroySurface(w.instance.Handle(), w.surface, nil)
		w.surface = vk.NullSurface
	}
}

func (w *WindowSurface) Handle() vk.Surface {
	return w.surface
}
