package myr

import (
	"github.com/pkg/errors"

	"github.com/perlw/myrcube/driver"
	"github.com/perlw/myrcube/logger"
)

var depthCandidates = []driver.Format{
	driver.FormatD32Sfloat,
	driver.FormatD32SfloatS8Uint,
	driver.FormatD24UnormS8Uint,
}

// FindDepthFormat picks the first depth format usable as an optimally
// tiled depth attachment.
func FindDepthFormat(gpu driver.GPU) (driver.Format, error) {
	for _, format := range depthCandidates {
		if gpu.SupportsDepthAttachment(format) {
			return format, nil
		}
	}
	return driver.FormatUndefined, fail("find depth format", NoDepthFormat, nil)
}

// RenderTargetSet is the render pass plus everything drawn into: the depth
// image and one framebuffer per swapchain view. It is built from the
// swapchain's format and extent and must be rebuilt with it.
type RenderTargetSet struct {
	DepthFormat  driver.Format
	RenderPass   driver.RenderPass
	Framebuffers []driver.Framebuffer

	depthImage  driver.Image
	depthMemory driver.Memory
	depthView   driver.ImageView

	ctx *GraphicsContext
	log logger.Logger
}

// NewRenderTargetSet creates the render pass; depth and framebuffers come
// later once the swapchain views exist.
func NewRenderTargetSet(ctx *GraphicsContext, colorFormat driver.Format, log logger.Logger) (*RenderTargetSet, error) {
	depthFormat, err := FindDepthFormat(ctx.GPU)
	if err != nil {
		return nil, err
	}
	log.Log("Depth format: %d", depthFormat)

	pass, err := ctx.Device.CreateRenderPass(colorFormat, depthFormat)
	if err != nil {
		return nil, fail("create render pass", CreationFailed, err)
	}
	return &RenderTargetSet{
		DepthFormat: depthFormat,
		RenderPass:  pass,
		ctx:         ctx,
		log:         log,
	}, nil
}

func (r *RenderTargetSet) CreateDepth(extent driver.Extent) error {
	img, err := r.ctx.Device.CreateImage(driver.ImageConfig{
		Extent:          extent,
		Format:          r.DepthFormat,
		DepthAttachment: true,
	})
	if err != nil {
		return fail("create depth image", CreationFailed, err)
	}
	r.depthImage = img

	req := img.MemoryRequirements()
	typeIndex, err := FindMemoryType(r.ctx.MemoryTypes, req.TypeBits, deviceMemory)
	if err != nil {
		r.DestroyDepth()
		return err
	}
	r.depthMemory, err = r.ctx.Device.AllocateMemory(req.Size, typeIndex)
	if err != nil {
		r.DestroyDepth()
		return fail("allocate depth memory", AllocationFailed, err)
	}
	if err := img.BindMemory(r.depthMemory); err != nil {
		r.DestroyDepth()
		return fail("bind depth memory", AllocationFailed, err)
	}

	r.depthView, err = r.ctx.Device.CreateImageView(img, r.DepthFormat, driver.ImageAspectDepth)
	if err != nil {
		r.DestroyDepth()
		return fail("create depth view", CreationFailed, err)
	}
	return nil
}

func (r *RenderTargetSet) CreateFramebuffers(views []driver.ImageView, extent driver.Extent) error {
	if r.depthView == nil {
		return fail("create framebuffers", CreationFailed, errors.New("depth target missing"))
	}
	for t, view := range views {
		fb, err := r.ctx.Device.CreateFramebuffer(r.RenderPass, []driver.ImageView{view, r.depthView}, extent)
		if err != nil {
			r.destroyFramebuffers()
			return fail("create framebuffer", CreationFailed, errors.Wrapf(err, "image %d", t))
		}
		r.Framebuffers = append(r.Framebuffers, fb)
	}
	return nil
}

// Rebuild recreates depth and framebuffers for a new swapchain. The render
// pass is kept since the color format does not change. The device must be
// idle.
func (r *RenderTargetSet) Rebuild(swapchain *Swapchain) error {
	r.destroyFramebuffers()
	r.DestroyDepth()
	if err := r.CreateDepth(swapchain.Extent); err != nil {
		return err
	}
	return r.CreateFramebuffers(swapchain.Views, swapchain.Extent)
}

func (r *RenderTargetSet) DestroyDepth() {
	if r.depthView != nil {
		r.depthView.Destroy()
		r.depthView = nil
	}
	if r.depthImage != nil {
		r.depthImage.Destroy()
		r.depthImage = nil
	}
	if r.depthMemory != nil {
		r.depthMemory.Free()
		r.depthMemory = nil
	}
}

func (r *RenderTargetSet) destroyFramebuffers() {
	for t := len(r.Framebuffers) - 1; t >= 0; t-- {
		r.Framebuffers[t].Destroy()
	}
	r.Framebuffers = nil
}

func (r *RenderTargetSet) DestroyFramebuffers() {
	r.destroyFramebuffers()
	if r.RenderPass != nil {
		r.RenderPass.Destroy()
		r.RenderPass = nil
	}
}
