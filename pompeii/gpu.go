package pompeii

import (
	"bytes"
	"fmt"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"

	"github.com/perlw/myrcube/driver"
	"github.com/perlw/myrcube/logger"
)

type GPU struct {
	name string

	physicalDevice vk.PhysicalDevice
	props          vk.PhysicalDeviceProperties
	memProps       vk.PhysicalDeviceMemoryProperties
	extensions     []string
	log            logger.Logger
}

func newGPU(physicalDevice vk.PhysicalDevice, log logger.Logger) *GPU {
	g := GPU{
		physicalDevice: physicalDevice,
		log:            log,
	}

	vk.GetPhysicalDeviceProperties(g.physicalDevice, &g.props)
	g.props.Deref()
	g.props.Limits.Deref()

	vk.GetPhysicalDeviceMemoryProperties(g.physicalDevice, &g.memProps)
	g.memProps.Deref()

	g.name = vk.ToString(g.props.DeviceName[:])

	var err error
	if g.extensions, err = getAvailableDeviceExtensions(physicalDevice); err != nil {
		log.Err(err, "extensions of %s", g.name)
	}

	return &g
}

func (g *GPU) Name() string {
	return g.name
}

func (g *GPU) Type() driver.GPUType {
	return gpuType(g.props.DeviceType)
}

func (g *GPU) Debug() string {
	buffer := bytes.Buffer{}

	buffer.WriteString(fmt.Sprintln("Device Name:", g.name))
	buffer.WriteString(fmt.Sprintln("Device Type:", g.Type()))
	buffer.WriteString("## Backend\n")
	buffer.WriteString(fmt.Sprintf("Vulkan v%d.%d.%d\n",
		(g.props.ApiVersion>>22)&0x3ff,
		(g.props.ApiVersion>>12)&0x3ff,
		g.props.ApiVersion&0xfff,
	))
	buffer.WriteString(fmt.Sprintf("Driver v%d.%d.%d\n",
		(g.props.DriverVersion>>22)&0x3ff,
		(g.props.DriverVersion>>12)&0x3ff,
		g.props.DriverVersion&0xfff,
	))
	buffer.WriteString(fmt.Sprintln("Max Image Dimension:", g.props.Limits.MaxImageDimension2D))
	buffer.WriteString(fmt.Sprintln("Memory Types:", g.memProps.MemoryTypeCount))

	return buffer.String()
}

func (g *GPU) SupportsExtension(name string) bool {
	return inStringSlice(g.extensions, name)
}

func (g *GPU) QueueFamilies(surface driver.Surface) ([]driver.QueueFamily, error) {
	var queueFamilyCount uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(g.physicalDevice, &queueFamilyCount, nil)
	if queueFamilyCount == 0 {
		return nil, errors.New("no queue families")
	}
	handle := surface.(*WindowSurface).Handle()

	families := []driver.QueueFamily{}

	queueFamilies := make([]vk.QueueFamilyProperties, queueFamilyCount)
	vk.GetPhysicalDeviceQueueFamilyProperties(g.physicalDevice, &queueFamilyCount, queueFamilies)
	for i, family := range queueFamilies {
		family.Deref()

		var presentSupport vk.Bool32
		vk.GetPhysicalDeviceSurfaceSupport(g.physicalDevice, uint32(i), handle, &presentSupport)

		families = append(families, driver.QueueFamily{
			Index:    i,
			Graphics: (family.QueueFlags&vk.QueueFlags(vk.QueueGraphicsBit) != 0),
			Compute:  (family.QueueFlags&vk.QueueFlags(vk.QueueComputeBit) != 0),
			Transfer: (family.QueueFlags&vk.QueueFlags(vk.QueueTransferBit) != 0),
			Present:  presentSupport == vk.True,
		})
	}

	return families, nil
}

// SurfaceSupport lists capabilities, formats and present modes. Formats and
// modes the renderer cannot name are left out.
func (g *GPU) SurfaceSupport(surface driver.Surface) (driver.SurfaceSupport, error) {
	handle := surface.(*WindowSurface).Handle()
	support := driver.SurfaceSupport{}

	var caps vk.SurfaceCapabilities
	if err := check(vk.GetPhysicalDeviceSurfaceCapabilities(g.physicalDevice, handle, &caps), "surface capabilities"); err != nil {
		return support, err
	}
	caps.Deref()
	support.Capabilities = driver.SurfaceCapabilities{
		MinImageCount:  caps.MinImageCount,
		MaxImageCount:  caps.MaxImageCount,
		CurrentExtent:  driverExtent(caps.CurrentExtent),
		MinImageExtent: driverExtent(caps.MinImageExtent),
		MaxImageExtent: driverExtent(caps.MaxImageExtent),
	}

	var formatCount uint32
	if err := check(vk.GetPhysicalDeviceSurfaceFormats(g.physicalDevice, handle, &formatCount, nil), "count surface formats"); err != nil {
		return support, err
	}
	vkFormats := make([]vk.SurfaceFormat, formatCount)
	if err := check(vk.GetPhysicalDeviceSurfaceFormats(g.physicalDevice, handle, &formatCount, vkFormats), "surface formats"); err != nil {
		return support, err
	}
	for _, f := range vkFormats {
		f.Deref()
		format, ok := driverFormat(f.Format)
		if !ok {
			g.log.Trace("skipping surface format %d", f.Format)
			continue
		}
		support.Formats = append(support.Formats, driver.SurfaceFormat{
			Format:     format,
			ColorSpace: driver.ColorSpace(f.ColorSpace),
		})
	}

	var modeCount uint32
	if err := check(vk.GetPhysicalDeviceSurfacePresentModes(g.physicalDevice, handle, &modeCount, nil), "count present modes"); err != nil {
		return support, err
	}
	vkModes := make([]vk.PresentMode, modeCount)
	if err := check(vk.GetPhysicalDeviceSurfacePresentModes(g.physicalDevice, handle, &modeCount, vkModes), "present modes"); err != nil {
		return support, err
	}
	for _, m := range vkModes {
		if mode, ok := driverPresentMode(m); ok {
			support.PresentModes = append(support.PresentModes, mode)
		}
	}

	return support, nil
}

func (g *GPU) MemoryTypes() []driver.MemoryType {
	types := make([]driver.MemoryType, g.memProps.MemoryTypeCount)
	for t := range types {
		mt := g.memProps.MemoryTypes[t]
		mt.Deref()
		types[t] = driver.MemoryType{
			Properties: memoryProperties(mt.PropertyFlags),
			HeapIndex:  mt.HeapIndex,
		}
	}
	return types
}

func (g *GPU) SupportsDepthAttachment(format driver.Format) bool {
	var props vk.FormatProperties
	vk.GetPhysicalDeviceFormatProperties(g.physicalDevice, vkFormat(format), &props)
	props.Deref()
	return props.OptimalTilingFeatures&vk.FormatFeatureFlags(vk.FormatFeatureDepthStencilAttachmentBit) != 0
}

func (g *GPU) CreateDevice(graphicsFamily, presentFamily int) (driver.Device, error) {
	d, err := newDevice(g, graphicsFamily, presentFamily)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (g *GPU) Handle() vk.PhysicalDevice {
	return g.physicalDevice
}
