package myr

import (
	"github.com/pkg/errors"

	"github.com/perlw/myrcube/driver"
	"github.com/perlw/myrcube/logger"
)

type Window interface {
	Handle() uintptr
	FramebufferSize() (int, int)
}

func CreateSurface(instance driver.Instance, window Window) (driver.Surface, error) {
	surface, err := instance.CreateWindowSurface(window.Handle())
	if err != nil {
		return nil, fail("create surface", CreationFailed, err)
	}
	return surface, nil
}

// GraphicsContext owns the logical device and its queues. Everything else
// holds a non-owning pointer to it and must be released before it.
type GraphicsContext struct {
	GPU            driver.GPU
	Device         driver.Device
	GraphicsFamily int
	PresentFamily  int
	GraphicsQueue  driver.Queue
	PresentQueue   driver.Queue
	MemoryTypes    []driver.MemoryType

	log logger.Logger
}

// NewGraphicsContext picks the first discrete GPU able to present to the
// surface and creates a device with a graphics and a present queue.
func NewGraphicsContext(instance driver.Instance, surface driver.Surface, log logger.Logger) (*GraphicsContext, error) {
	gpus, err := instance.EnumerateGPUs()
	if err != nil {
		return nil, fail("enumerate gpus", CreationFailed, err)
	}

	c := GraphicsContext{log: log}
	for t, gpu := range gpus {
		log.Log("GPU %d: %s (%s)", t, gpu.Name(), gpu.Type())
		if c.GPU != nil {
			continue
		}
		graphics, present, ok := suitable(gpu, surface)
		if !ok {
			continue
		}
		c.GPU = gpu
		c.GraphicsFamily = graphics
		c.PresentFamily = present
	}
	if c.GPU == nil {
		return nil, fail("pick gpu", NoDiscreteGPU, nil)
	}
	log.Log("Picked: %s, graphics family %d, present family %d", c.GPU.Name(), c.GraphicsFamily, c.PresentFamily)

	c.Device, err = c.GPU.CreateDevice(c.GraphicsFamily, c.PresentFamily)
	if err != nil {
		return nil, fail("create device", CreationFailed, err)
	}
	c.GraphicsQueue = c.Device.GraphicsQueue()
	c.PresentQueue = c.Device.PresentQueue()
	c.MemoryTypes = c.GPU.MemoryTypes()

	return &c, nil
}

// suitable reports the queue families to use on gpu, preferring a graphics
// family that can also present.
func suitable(gpu driver.GPU, surface driver.Surface) (int, int, bool) {
	if gpu.Type() != driver.GPUTypeDiscrete || !gpu.SupportsExtension(driver.SwapchainExtensionName) {
		return 0, 0, false
	}
	support, err := gpu.SurfaceSupport(surface)
	if err != nil || len(support.Formats) == 0 || len(support.PresentModes) == 0 {
		return 0, 0, false
	}
	families, err := gpu.QueueFamilies(surface)
	if err != nil {
		return 0, 0, false
	}

	graphics, present := -1, -1
	for _, family := range families {
		if family.Graphics && graphics < 0 {
			graphics = family.Index
		}
		if family.Present && present < 0 {
			present = family.Index
		}
		if family.Graphics && family.Present {
			graphics, present = family.Index, family.Index
			break
		}
	}
	return graphics, present, graphics >= 0 && present >= 0
}

func (c *GraphicsContext) Families() []int {
	if c.GraphicsFamily == c.PresentFamily {
		return []int{c.GraphicsFamily}
	}
	return []int{c.GraphicsFamily, c.PresentFamily}
}

func (c *GraphicsContext) WaitIdle() error {
	return errors.Wrap(c.Device.WaitIdle(), "device wait idle")
}

func (c *GraphicsContext) Destroy() {
	c.Device.Destroy()
}
