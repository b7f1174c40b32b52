package myr

import (
	"github.com/pkg/errors"

	"github.com/perlw/myrcube/driver"
	"github.com/perlw/myrcube/logger"
)

type Swapchain struct {
	Format      driver.SurfaceFormat
	PresentMode driver.PresentMode
	Extent      driver.Extent
	Images      []driver.Image
	Views       []driver.ImageView

	ctx    *GraphicsContext
	handle driver.Swapchain
	log    logger.Logger
}

// ChooseExtent uses the surface's current extent when the window system
// defines one, else the drawable size clamped to the surface bounds.
func ChooseExtent(caps driver.SurfaceCapabilities, width, height int) driver.Extent {
	if caps.CurrentExtent.Width != driver.UndefinedExtent {
		return caps.CurrentExtent
	}
	return driver.Extent{
		Width:  clamp(uint32(max(width, 0)), caps.MinImageExtent.Width, caps.MaxImageExtent.Width),
		Height: clamp(uint32(max(height, 0)), caps.MinImageExtent.Height, caps.MaxImageExtent.Height),
	}
}

func clamp(v, lo, hi uint32) uint32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ChooseImageCount asks for one image above the minimum, capped at the
// maximum when the surface has one.
func ChooseImageCount(caps driver.SurfaceCapabilities) uint32 {
	count := caps.MinImageCount + 1
	if caps.MaxImageCount > 0 && count > caps.MaxImageCount {
		count = caps.MaxImageCount
	}
	return count
}

// NewSwapchain takes the first reported surface format and FIFO
// presentation, which never tears and bounds the present queue.
func NewSwapchain(ctx *GraphicsContext, surface driver.Surface, window Window, log logger.Logger) (*Swapchain, error) {
	support, err := ctx.GPU.SurfaceSupport(surface)
	if err != nil {
		return nil, fail("query surface support", CreationFailed, err)
	}
	if len(support.Formats) == 0 {
		return nil, fail("create swapchain", SurfaceIncompatible, errors.New("no surface formats"))
	}
	if len(support.PresentModes) == 0 {
		return nil, fail("create swapchain", SurfaceIncompatible, errors.New("no present modes"))
	}

	width, height := window.FramebufferSize()
	s := Swapchain{
		Format:      support.Formats[0],
		PresentMode: driver.PresentModeFifo,
		Extent:      ChooseExtent(support.Capabilities, width, height),
		ctx:         ctx,
		log:         log,
	}
	count := ChooseImageCount(support.Capabilities)

	s.handle, err = ctx.Device.CreateSwapchain(driver.SwapchainConfig{
		Surface:       surface,
		MinImageCount: count,
		Format:        s.Format,
		Extent:        s.Extent,
		PresentMode:   s.PresentMode,
		QueueFamilies: ctx.Families(),
	})
	if err != nil {
		return nil, fail("create swapchain", CreationFailed, err)
	}

	s.Images, err = s.handle.Images()
	if err != nil {
		s.Destroy()
		return nil, fail("get swapchain images", CreationFailed, err)
	}
	for t, img := range s.Images {
		view, err := ctx.Device.CreateImageView(img, s.Format.Format, driver.ImageAspectColor)
		if err != nil {
			s.Destroy()
			return nil, fail("create swapchain image view", CreationFailed, errors.Wrapf(err, "image %d", t))
		}
		s.Views = append(s.Views, view)
	}

	log.Log("Swapchain: %d images, %dx%d, format %d", len(s.Images), s.Extent.Width, s.Extent.Height, s.Format.Format)
	return &s, nil
}

func (s *Swapchain) ImageCount() int {
	return len(s.Images)
}

func (s *Swapchain) AcquireNextImage(timeout uint64, imageAvailable driver.Semaphore) (uint32, error) {
	index, err := s.handle.AcquireNextImage(timeout, imageAvailable)
	switch {
	case err == nil:
		return index, nil
	case errors.Is(err, driver.ErrOutOfDate):
		return 0, fail("acquire image", SwapchainOutOfDate, err)
	default:
		return 0, fail("acquire image", AcquireFailed, err)
	}
}

func (s *Swapchain) Present(imageIndex uint32, wait driver.Semaphore) error {
	err := s.ctx.PresentQueue.Present(driver.PresentInfo{
		WaitSemaphores: []driver.Semaphore{wait},
		Swapchain:      s.handle,
		ImageIndex:     imageIndex,
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, driver.ErrOutOfDate):
		return fail("present", SwapchainOutOfDate, err)
	default:
		return fail("present", PresentFailed, err)
	}
}

func (s *Swapchain) Destroy() {
	for t := len(s.Views) - 1; t >= 0; t-- {
		s.Views[t].Destroy()
	}
	s.Views = nil
	if s.handle != nil {
		s.handle.Destroy()
		s.handle = nil
	}
}
