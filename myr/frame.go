package myr

import (
	"github.com/pkg/errors"

	"github.com/perlw/myrcube/driver"
	"github.com/perlw/myrcube/logger"
)

// frameSlot is one set of synchronization primitives. A slot is idle while
// its fence is signaled and submitted otherwise.
type frameSlot struct {
	imageAvailable driver.Semaphore
	renderFinished driver.Semaphore
	inFlight       driver.Fence
}

type Stats struct {
	Frames uint64
	Slot  int
	Image uint32
	// AliasWaits counts waits on a fence from another slot that still
	// owned the acquired image.
	AliasWaits uint64
}

// FrameScheduler drives acquire, submit and present with up to len(slots)
// frames queued on the GPU.
type FrameScheduler struct {
	ctx       *GraphicsContext
	swapchain *Swapchain
	commands  []driver.CommandBuffer

	slots []frameSlot
	// imagesInFlight[i] is the fence of the slot that last rendered image
	// i, nil if never rendered.
	imagesInFlight []driver.Fence
	frame          int

	stats Stats
	log   logger.Logger
}

// There may not be more slots than swapchain images.
func NewFrameScheduler(ctx *GraphicsContext, swapchain *Swapchain, commands []driver.CommandBuffer, framesInFlight int, log logger.Logger) (*FrameScheduler, error) {
	images := swapchain.ImageCount()
	if framesInFlight < 1 || framesInFlight > images {
		return nil, fail("create frame scheduler", CreationFailed,
			errors.Errorf("%d frames in flight with %d swapchain images", framesInFlight, images))
	}
	if len(commands) != images {
		return nil, fail("create frame scheduler", CreationFailed,
			errors.Errorf("%d command buffers for %d swapchain images", len(commands), images))
	}

	f := FrameScheduler{
		ctx:            ctx,
		swapchain:      swapchain,
		commands:       commands,
		imagesInFlight: make([]driver.Fence, images),
		log:            log,
	}
	for t := 0; t < framesInFlight; t++ {
		slot, err := newFrameSlot(ctx.Device)
		if err != nil {
			f.Destroy()
			return nil, fail("create frame sync", CreationFailed, errors.Wrapf(err, "slot %d", t))
		}
		f.slots = append(f.slots, slot)
	}

	log.Log("Frame scheduler: %d frames in flight over %d images", framesInFlight, images)
	return &f, nil
}

func newFrameSlot(device driver.Device) (frameSlot, error) {
	var s frameSlot
	var err error
	if s.imageAvailable, err = device.CreateSemaphore(); err != nil {
		return s, err
	}
	if s.renderFinished, err = device.CreateSemaphore(); err != nil {
		s.destroy()
		return s, err
	}
	if s.inFlight, err = device.CreateFence(true); err != nil {
		s.destroy()
		return s, err
	}
	return s, nil
}

func (s *frameSlot) destroy() {
	if s.inFlight != nil {
		s.inFlight.Destroy()
	}
	if s.renderFinished != nil {
		s.renderFinished.Destroy()
	}
	if s.imageAvailable != nil {
		s.imageAvailable.Destroy()
	}
}

// RenderFrame renders one frame. write is called with the acquired image
// index once the GPU is done with everything that image's uniforms feed.
// Failures are returned as is and never retried, but leave the scheduler
// able to render the next frame.
func (f *FrameScheduler) RenderFrame(write func(imageIndex uint32) error) error {
	slotIndex := f.frame
	slot := &f.slots[slotIndex]

	if err := slot.inFlight.Wait(driver.Forever); err != nil {
		return fail("wait for frame slot", WaitFailed, err)
	}
	f.frame = (f.frame + 1) % len(f.slots)

	image, err := f.swapchain.AcquireNextImage(driver.Forever, slot.imageAvailable)
	if err != nil {
		return err
	}

	// Image index and slot cycle independently, so the image may still be
	// owned by another slot's submission.
	if owner := f.imagesInFlight[image]; owner != nil && owner != slot.inFlight {
		if err := owner.Wait(driver.Forever); err != nil {
			f.giveBack(image, slot)
			return fail("wait for image", WaitFailed, err)
		}
		f.stats.AliasWaits++
	}

	if write != nil {
		if err := write(image); err != nil {
			f.giveBack(image, slot)
			return err
		}
	}

	if err := slot.inFlight.Reset(); err != nil {
		f.giveBack(image, slot)
		f.replaceFence(slot)
		return fail("reset frame fence", SubmitFailed, err)
	}
	err = f.ctx.GraphicsQueue.Submit(driver.SubmitInfo{
		WaitSemaphores:   []driver.Semaphore{slot.imageAvailable},
		WaitStages:       []driver.PipelineStage{driver.PipelineStageColorAttachmentOutput},
		CommandBuffers:   []driver.CommandBuffer{f.commands[image]},
		SignalSemaphores: []driver.Semaphore{slot.renderFinished},
		Fence:            slot.inFlight,
	})
	if err != nil {
		f.giveBack(image, slot)
		f.replaceFence(slot)
		return fail("submit frame", SubmitFailed, err)
	}

	f.imagesInFlight[image] = slot.inFlight
	f.stats.Frames++
	f.stats.Slot = slotIndex
	f.stats.Image = image

	return f.swapchain.Present(image, slot.renderFinished)
}

// giveBack presents an acquired image nothing was submitted for. Waiting on
// the acquire semaphore unsignals it for the slot's next frame.
func (f *FrameScheduler) giveBack(image uint32, slot *frameSlot) {
	if err := f.swapchain.Present(image, slot.imageAvailable); err != nil {
		f.log.Warn("give back image %d: %s", image, err)
	}
}

// replaceFence swaps a reset fence that no submission will signal for a
// signaled one.
func (f *FrameScheduler) replaceFence(slot *frameSlot) {
	fence, err := f.ctx.Device.CreateFence(true)
	if err != nil {
		f.log.Err(err, "replace frame fence")
		return
	}
	for t, owner := range f.imagesInFlight {
		if owner == slot.inFlight {
			f.imagesInFlight[t] = nil
		}
	}
	slot.inFlight.Destroy()
	slot.inFlight = fence
}

func (f *FrameScheduler) Stats() Stats {
	return f.stats
}

func (f *FrameScheduler) FramesInFlight() int {
	return len(f.slots)
}

// Destroy releases the slots. Only the slot fences are destroyed; the
// per-image entries alias them.
func (f *FrameScheduler) Destroy() {
	for t := len(f.slots) - 1; t >= 0; t-- {
		f.slots[t].destroy()
	}
	f.slots = nil
	for t := range f.imagesInFlight {
		f.imagesInFlight[t] = nil
	}
}
