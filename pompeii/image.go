package pompeii

import (
	vk "github.com/vulkan-go/vulkan"

	"github.com/perlw/myrcube/driver"
)

// Image is either created here or owned by a swapchain. Swapchain images
// are never destroyed directly.
type Image struct {
	logicalDevice vk.Device
	image         vk.Image
	owned         bool
}

func (d *Device) CreateImage(config driver.ImageConfig) (driver.Image, error) {
	i := Image{
		logicalDevice: d.Handle(),
		owned:         true,
	}

	usage := vk.ImageUsageColorAttachmentBit
	if config.DepthAttachment {
		usage = vk.ImageUsageDepthStencilAttachmentBit
	}
	imageInfo := vk.ImageCreateInfo{
		SType:     vk.StructureTypeImageCreateInfo,
		ImageType: vk.ImageType2d,
		Format:    vkFormat(config.Format),
		Extent: vk.Extent3D{
			Width:  config.Extent.Width,
			Height: config.Extent.Height,
			Depth:  1,
		},
		MipLevels:     1,
		ArrayLayers:   1,
		Samples:       vk.SampleCount1Bit,
		Tiling:        vk.ImageTilingOptimal,
		Usage:         vk.ImageUsageFlags(usage),
		SharingMode:   vk.SharingModeExclusive,
		InitialLayout: vk.ImageLayoutUndefined,
	}
	if err := check(vk.CreateImage(d.Handle(), &imageInfo, nil, &i.image), "create image"); err != nil {
		return nil, err
	}

	return &i, nil
}

func (i *Image) MemoryRequirements() driver.MemoryRequirements {
	var req vk.MemoryRequirements
	vk.GetImageMemoryRequirements(i.logicalDevice, i.image, &req)
	req.Deref()
	return driver.MemoryRequirements{Size: uint64(req.Size), TypeBits: req.MemoryTypeBits}
}

func (i *Image) BindMemory(memory driver.Memory) error {
	return check(vk.BindImageMemory(i.logicalDevice, i.image, memory.(*Memory).memory, 0), "bind image memory")
}

func (i *Image) Destroy() {
	if i.owned && i.image != vk.NullImage {
		vk.DestroyImage(i.logicalDevice, i.image, nil)
		i.image = vk.NullImage
	}
}

type ImageView struct {
	logicalDevice vk.Device
	view          vk.ImageView
}

func (d *Device) CreateImageView(image driver.Image, format driver.Format, aspect driver.ImageAspect) (driver.ImageView, error) {
	v := ImageView{
		logicalDevice: d.Handle(),
	}

	aspectMask := vk.ImageAspectColorBit
	if aspect == driver.ImageAspectDepth {
		aspectMask = vk.ImageAspectDepthBit
	}
	viewInfo := vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    image.(*Image).image,
		ViewType: vk.ImageViewType2d,
		Format:   vkFormat(format),
		Components: vk.ComponentMapping{
			R: vk.ComponentSwizzleIdentity,
			G: vk.ComponentSwizzleIdentity,
			B: vk.ComponentSwizzleIdentity,
			A: vk.ComponentSwizzleIdentity,
		},
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask:     vk.ImageAspectFlags(aspectMask),
			BaseMipLevel:   0,
			LevelCount:     1,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
	}
	if err := check(vk.CreateImageView(d.Handle(), &viewInfo, nil, &v.view), "create image view"); err != nil {
		return nil, err
	}

	return &v, nil
}

func (v *ImageView) Destroy() {
	if v.view != vk.NullImageView {
		vk.DestroyImageView(v.logicalDevice, v.view, nil)
		v.view = vk.NullImageView
	}
}
