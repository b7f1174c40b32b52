package pompeii

import (
	vk "github.com/vulkan-go/vulkan"

	"github.com/perlw/myrcube/driver"
)

type RenderPass struct {
	logicalDevice vk.Device
	renderPass    vk.RenderPass
}

// CreateRenderPass builds a single subpass pass with one color attachment
// that ends up presentable and one depth attachment.
func (d *Device) CreateRenderPass(colorFormat, depthFormat driver.Format) (driver.RenderPass, error) {
	r := RenderPass{
		logicalDevice: d.Handle(),
	}

	attachments := []vk.AttachmentDescription{
		{
			Format:         vkFormat(colorFormat),
			Samples:        vk.SampleCount1Bit,
			LoadOp:         vk.AttachmentLoadOpClear,
			StoreOp:        vk.AttachmentStoreOpStore,
			StencilLoadOp:  vk.AttachmentLoadOpDontCare,
			StencilStoreOp: vk.AttachmentStoreOpDontCare,
			InitialLayout:  vk.ImageLayoutUndefined,
			FinalLayout:    vk.ImageLayoutPresentSrc,
		},
		{
			Format:         vkFormat(depthFormat),
			Samples:        vk.SampleCount1Bit,
			LoadOp:         vk.AttachmentLoadOpClear,
			StoreOp:        vk.AttachmentStoreOpDontCare,
			StencilLoadOp:  vk.AttachmentLoadOpDontCare,
			StencilStoreOp: vk.AttachmentStoreOpDontCare,
			InitialLayout:  vk.ImageLayoutUndefined,
			FinalLayout:    vk.ImageLayoutDepthStencilAttachmentOptimal,
		},
	}
	colorRef := vk.AttachmentReference{
		Attachment: 0,
		Layout:     vk.ImageLayoutColorAttachmentOptimal,
	}
	depthRef := vk.AttachmentReference{
		Attachment: 1,
		Layout:     vk.ImageLayoutDepthStencilAttachmentOptimal,
	}

	subpass := vk.SubpassDescription{
		PipelineBindPoint:       vk.PipelineBindPointGraphics,
		ColorAttachmentCount:    1,
		PColorAttachments:       []vk.AttachmentReference{colorRef},
		PDepthStencilAttachment: &depthRef,
	}
	dependency := vk.SubpassDependency{
		SrcSubpass:    vk.SubpassExternal,
		DstSubpass:    0,
		SrcStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit | vk.PipelineStageEarlyFragmentTestsBit),
		DstStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit | vk.PipelineStageEarlyFragmentTestsBit),
		DstAccessMask: vk.AccessFlags(vk.AccessColorAttachmentWriteBit | vk.AccessDepthStencilAttachmentWriteBit),
	}

	renderPassInfo := vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: uint32(len(attachments)),
		PAttachments:    attachments,
		SubpassCount:    1,
		PSubpasses:      []vk.SubpassDescription{subpass},
		DependencyCount: 1,
		PDependencies:   []vk.SubpassDependency{dependency},
	}
	if err := check(vk.CreateRenderPass(d.Handle(), &renderPassInfo, nil, &r.renderPass), "create render pass"); err != nil {
		return nil, err
	}

	return &r, nil
}

func (r *RenderPass) Destroy() {
	if r.renderPass != vk.NullRenderPass {
		vk.DestroyRenderPass(r.logicalDevice, r.renderPass, nil)
		r.renderPass = vk.NullRenderPass
	}
}

type Framebuffer struct {
	logicalDevice vk.Device
	framebuffer   vk.Framebuffer
}

func (d *Device) CreateFramebuffer(pass driver.RenderPass, attachments []driver.ImageView, extent driver.Extent) (driver.Framebuffer, error) {
	f := Framebuffer{
		logicalDevice: d.Handle(),
	}

	views := make([]vk.ImageView, len(attachments))
	for t, a := range attachments {
		views[t] = a.(*ImageView).view
	}
	framebufferInfo := vk.FramebufferCreateInfo{
		SType:           vk.StructureTypeFramebufferCreateInfo,
		RenderPass:      pass.(*RenderPass).renderPass,
		AttachmentCount: uint32(len(views)),
		PAttachments:    views,
		Width:           extent.Width,
		Height:          extent.Height,
		Layers:          1,
	}
	if err := check(vk.CreateFramebuffer(d.Handle(), &framebufferInfo, nil, &f.framebuffer), "create framebuffer"); err != nil {
		return nil, err
	}

	return &f, nil
}

func (f *Framebuffer) Destroy() {
	if f.framebuffer != vk.NullFramebuffer {
		vk.DestroyFramebuffer(f.logicalDevice, f.framebuffer, nil)
		f.framebuffer = vk.NullFramebuffer
	}
}
