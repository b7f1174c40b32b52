package drivertest

import (
	"github.com/pkg/errors"

	"github.com/perlw/myrcube/driver"
)

// GPUConfig describes one fake physical device.
type GPUConfig struct {
	Name          string
	Type          driver.GPUType
	Extensions    []string
	QueueFamilies []driver.QueueFamily
	Surface       driver.SurfaceSupport
	MemoryTypes   []driver.MemoryType
	DepthFormats  []driver.Format
	// BufferTypeBits is reported as the memory type mask of every buffer.
	BufferTypeBits uint32
	// ImageTypeBits is reported as the memory type mask of every image.
	ImageTypeBits uint32
}

// DefaultGPU is a discrete GPU with a single graphics and present family,
// three memory types (device local, host visible|coherent, all three) and a
// surface allowing 2 to 3 images at 800x600.
func DefaultGPU() GPUConfig {
	return GPUConfig{
		Name:       "Fake Discrete",
		Type:       driver.GPUTypeDiscrete,
		Extensions: []string{driver.SwapchainExtensionName},
		QueueFamilies: []driver.QueueFamily{
			{Index: 0, Graphics: true, Compute: true, Transfer: true, Present: true},
		},
		Surface: driver.SurfaceSupport{
			Capabilities: driver.SurfaceCapabilities{
				MinImageCount:  2,
				MaxImageCount:  3,
				CurrentExtent:  driver.Extent{Width: 800, Height: 600},
				MinImageExtent: driver.Extent{Width: 1, Height: 1},
				MaxImageExtent: driver.Extent{Width: 4096, Height: 4096},
			},
			Formats: []driver.SurfaceFormat{
				{Format: driver.FormatB8G8R8A8Unorm, ColorSpace: driver.ColorSpaceSrgbNonlinear},
			},
			PresentModes: []driver.PresentMode{driver.PresentModeFifo, driver.PresentModeMailbox},
		},
		MemoryTypes: []driver.MemoryType{
			{Properties: driver.MemoryPropertyDeviceLocal},
			{Properties: driver.MemoryPropertyHostVisible | driver.MemoryPropertyHostCoherent},
			{Properties: driver.MemoryPropertyDeviceLocal | driver.MemoryPropertyHostVisible | driver.MemoryPropertyHostCoherent},
		},
		DepthFormats:   []driver.Format{driver.FormatD32Sfloat, driver.FormatD24UnormS8Uint},
		BufferTypeBits: 0x7,
		ImageTypeBits:  0x7,
	}
}

// Instance is the fake entry point. Besides driver.Instance it exposes the
// recorded events, violations and failure injection.
type Instance struct {
	*handle
	gpus []*GPU
}

// NewInstance creates an instance reporting the given GPUs, or a single
// DefaultGPU when none are given.
func NewInstance(gpus ...GPUConfig) *Instance {
	s := newSim()
	i := &Instance{
		handle: s.newHandle("instance", nil),
	}
	if len(gpus) == 0 {
		gpus = []GPUConfig{DefaultGPU()}
	}
	for _, cfg := range gpus {
		i.gpus = append(i.gpus, &GPU{config: cfg, instance: i})
	}
	return i
}

func (i *Instance) EnumerateGPUs() ([]driver.GPU, error) {
	if !i.use("enumerate gpus") {
		return nil, errors.New("instance destroyed")
	}
	if err := i.sim.fail("EnumerateGPUs"); err != nil {
		return nil, err
	}
	if len(i.gpus) == 0 {
		return nil, errors.New("no valid gpus")
	}
	gpus := make([]driver.GPU, len(i.gpus))
	for t, g := range i.gpus {
		gpus[t] = g
	}
	return gpus, nil
}

func (i *Instance) CreateWindowSurface(windowHandle uintptr) (driver.Surface, error) {
	if !i.use("create surface") {
		return nil, errors.New("instance destroyed")
	}
	if err := i.sim.fail("CreateWindowSurface"); err != nil {
		return nil, err
	}
	return &Surface{handle: i.sim.newHandle("surface", i.handle), window: windowHandle}, nil
}

func (i *Instance) Destroy() {
	i.destroy()
}

// Events returns a copy of the event log.
func (i *Instance) Events() []Event {
	return append([]Event(nil), i.sim.events...)
}

// Violations returns every usage error seen so far.
func (i *Instance) Violations() []string {
	return append([]string(nil), i.sim.violations...)
}

// FailNext makes the next call of op return err. Calls queue up in order.
// Ops are named after the driver methods: "CreateBuffer",
// "AllocateMemory", "AcquireNextImage", "Submit", "Present", "Wait", ...
func (i *Instance) FailNext(op string, err error) {
	i.sim.failures[op] = append(i.sim.failures[op], err)
}

// ScriptAcquire fixes the image indices returned by the next acquires.
// Once the script runs out images are handed out round robin.
func (i *Instance) ScriptAcquire(indices ...uint32) {
	i.sim.acquire = append(i.sim.acquire, indices...)
}

// Contents returns a copy of the device memory bound to a fake buffer.
func Contents(b driver.Buffer) []byte {
	buf, ok := b.(*Buffer)
	if !ok || buf.memory == nil {
		return nil
	}
	out := make([]byte, buf.size)
	copy(out, buf.memory.data)
	return out
}

type Surface struct {
	*handle
	window uintptr
}

func (s *Surface) Destroy() {
	s.destroy()
}

type GPU struct {
	config   GPUConfig
	instance *Instance
}

func (g *GPU) Name() string {
	return g.config.Name
}

func (g *GPU) Type() driver.GPUType {
	return g.config.Type
}

func (g *GPU) SupportsExtension(name string) bool {
	for _, ext := range g.config.Extensions {
		if ext == name {
			return true
		}
	}
	return false
}

func (g *GPU) QueueFamilies(surface driver.Surface) ([]driver.QueueFamily, error) {
	if s, ok := surface.(*Surface); !ok || !s.use("query queue families") {
		return nil, errors.New("invalid surface")
	}
	return append([]driver.QueueFamily(nil), g.config.QueueFamilies...), nil
}

func (g *GPU) SurfaceSupport(surface driver.Surface) (driver.SurfaceSupport, error) {
	if s, ok := surface.(*Surface); !ok || !s.use("query surface support") {
		return driver.SurfaceSupport{}, errors.New("invalid surface")
	}
	return g.config.Surface, nil
}

func (g *GPU) MemoryTypes() []driver.MemoryType {
	return append([]driver.MemoryType(nil), g.config.MemoryTypes...)
}

func (g *GPU) SupportsDepthAttachment(format driver.Format) bool {
	for _, f := range g.config.DepthFormats {
		if f == format {
			return true
		}
	}
	return false
}

func (g *GPU) CreateDevice(graphicsFamily, presentFamily int) (driver.Device, error) {
	if !g.instance.use("create device") {
		return nil, errors.New("instance destroyed")
	}
	if err := g.instance.sim.fail("CreateDevice"); err != nil {
		return nil, err
	}
	if !g.hasFamily(graphicsFamily) || !g.hasFamily(presentFamily) {
		return nil, errors.Errorf("unknown queue family %d/%d", graphicsFamily, presentFamily)
	}
	d := &Device{
		handle: g.instance.sim.newHandle("device", g.instance.handle),
		gpu:    g,
	}
	d.graphics = &Queue{device: d, family: graphicsFamily, name: "queue/graphics"}
	d.present = d.graphics
	if presentFamily != graphicsFamily {
		d.present = &Queue{device: d, family: presentFamily, name: "queue/present"}
	}
	return d, nil
}

func (g *GPU) hasFamily(index int) bool {
	for _, f := range g.config.QueueFamilies {
		if f.Index == index {
			return true
		}
	}
	return false
}
