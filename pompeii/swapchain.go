package pompeii

import (
	vk "github.com/vulkan-go/vulkan"

	"github.com/perlw/myrcube/driver"
)

type Swapchain struct {
	logicalDevice vk.Device
	swapchain     vk.Swapchain
}

// CreateSwapchain shares images concurrently when more than one queue
// family uses them, exclusively otherwise.
func (d *Device) CreateSwapchain(config driver.SwapchainConfig) (driver.Swapchain, error) {
	s := Swapchain{
		logicalDevice: d.Handle(),
	}

	var caps vk.SurfaceCapabilities
	surface := config.Surface.(*WindowSurface).Handle()
	if err := check(vk.GetPhysicalDeviceSurfaceCapabilities(d.gpu.Handle(), surface, &caps), "surface capabilities"); err != nil {
		return nil, err
	}
	caps.Deref()

	createInfo := vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          surface,
		MinImageCount:    config.MinImageCount,
		ImageFormat:      vkFormat(config.Format.Format),
		ImageColorSpace:  vk.ColorSpace(config.Format.ColorSpace),
		ImageExtent:      extent2D(config.Extent),
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		PreTransform:     caps.CurrentTransform,
		CompositeAlpha:   vk.CompositeAlphaOpaqueBit,
		PresentMode:      presentModes[config.PresentMode],
		Clipped:          vk.True,
		OldSwapchain:     vk.NullSwapchain,
	}

	if len(config.QueueFamilies) > 1 {
		families := make([]uint32, len(config.QueueFamilies))
		for t, f := range config.QueueFamilies {
			families[t] = uint32(f)
		}
		createInfo.ImageSharingMode = vk.SharingModeConcurrent
		createInfo.QueueFamilyIndexCount = uint32(len(families))
		createInfo.PQueueFamilyIndices = families
	} else {
		createInfo.ImageSharingMode = vk.SharingModeExclusive
	}

	if err := check(vk.CreateSwapchain(d.Handle(), &createInfo, nil, &s.swapchain), "create swapchain"); err != nil {
		return nil, err
	}

	return &s, nil
}

func (s *Swapchain) Images() ([]driver.Image, error) {
	var count uint32
	if err := check(vk.GetSwapchainImages(s.logicalDevice, s.swapchain, &count, nil), "count swapchain images"); err != nil {
		return nil, err
	}
	vkImages := make([]vk.Image, count)
	if err := check(vk.GetSwapchainImages(s.logicalDevice, s.swapchain, &count, vkImages), "get swapchain images"); err != nil {
		return nil, err
	}

	images := make([]driver.Image, count)
	for t, img := range vkImages {
		images[t] = &Image{logicalDevice: s.logicalDevice, image: img}
	}
	return images, nil
}

// AcquireNextImage treats a suboptimal swapchain as success.
func (s *Swapchain) AcquireNextImage(timeout uint64, signal driver.Semaphore) (uint32, error) {
	var index uint32
	result := vk.AcquireNextImage(s.logicalDevice, s.swapchain, timeout, signal.(*Semaphore).semaphore, vk.Fence(vk.NullHandle), &index)
	if result == vk.Suboptimal {
		return index, nil
	}
	if err := check(result, "acquire next image"); err != nil {
		return 0, err
	}
	return index, nil
}

func (s *Swapchain) Destroy() {
	if s.swapchain != vk.NullSwapchain {
		vk.DestroySwapchain(s.logicalDevice, s.swapchain, nil)
		s.swapchain = vk.NullSwapchain
	}
}
