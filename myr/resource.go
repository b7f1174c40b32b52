package myr

import (
	"github.com/pkg/errors"

	"github.com/perlw/myrcube/driver"
	"github.com/perlw/myrcube/logger"
)

const (
	hostMemory   = driver.MemoryPropertyHostVisible | driver.MemoryPropertyHostCoherent
	deviceMemory = driver.MemoryPropertyDeviceLocal
)

// FindMemoryType returns the first memory type allowed by typeBits that has
// every flag in props. There is no closest match.
func FindMemoryType(types []driver.MemoryType, typeBits uint32, props driver.MemoryProperty) (uint32, error) {
	for t, mt := range types {
		if t >= 32 {
			break
		}
		if typeBits&(1<<uint(t)) != 0 && mt.Properties&props == props {
			return uint32(t), nil
		}
	}
	return 0, fail("find memory type", NoSuitableMemoryType,
		errors.Errorf("type bits %#x, properties %#x", typeBits, uint32(props)))
}

type Buffer struct {
	Handle driver.Buffer
	Memory driver.Memory
	Size   uint64
	Usage  driver.BufferUsage
}

// Write copies data into host visible memory. The memory is mapped for the
// duration of the call only.
func (b *Buffer) Write(data []byte) error {
	if uint64(len(data)) > b.Size {
		return fail("write buffer", MapFailed, errors.Errorf("%d bytes into %d byte buffer", len(data), b.Size))
	}
	dst, err := b.Memory.Map(0, uint64(len(data)))
	if err != nil {
		return fail("map buffer memory", MapFailed, err)
	}
	copy(dst, data)
	b.Memory.Unmap()
	return nil
}

func (b *Buffer) Release() {
	if b.Handle != nil {
		b.Handle.Destroy()
		b.Handle = nil
	}
	if b.Memory != nil {
		b.Memory.Free()
		b.Memory = nil
	}
}

type ResourcePool struct {
	ctx      *GraphicsContext
	commands driver.CommandPool
	log      logger.Logger
}

func NewResourcePool(ctx *GraphicsContext, commands driver.CommandPool, log logger.Logger) *ResourcePool {
	return &ResourcePool{
		ctx:      ctx,
		commands: commands,
		log:      log,
	}
}

// CreateBuffer creates a buffer, picks a memory type for it, allocates and
// binds. Nothing is left behind on failure.
func (p *ResourcePool) CreateBuffer(size uint64, usage driver.BufferUsage, props driver.MemoryProperty) (*Buffer, error) {
	handle, err := p.ctx.Device.CreateBuffer(size, usage)
	if err != nil {
		return nil, fail("create buffer", CreationFailed, err)
	}
	b := Buffer{Handle: handle, Size: size, Usage: usage}

	req := handle.MemoryRequirements()
	typeIndex, err := FindMemoryType(p.ctx.MemoryTypes, req.TypeBits, props)
	if err != nil {
		b.Release()
		return nil, err
	}

	b.Memory, err = p.ctx.Device.AllocateMemory(req.Size, typeIndex)
	if err != nil {
		b.Release()
		return nil, fail("allocate buffer memory", AllocationFailed, err)
	}
	if err := handle.BindMemory(b.Memory); err != nil {
		b.Release()
		return nil, fail("bind buffer memory", AllocationFailed, err)
	}

	p.log.Trace("buffer of %d bytes, usage %#x, memory type %d", size, uint32(usage), typeIndex)
	return &b, nil
}

// UploadViaStaging puts data in a new device local buffer. The copy runs
// on the graphics queue and is waited on before the staging buffer is
// released. Uploads happen during setup, so map and queue failures are
// reported as CreationFailed with the runtime code as cause.
func (p *ResourcePool) UploadViaStaging(data []byte, finalUsage driver.BufferUsage) (*Buffer, error) {
	size := uint64(len(data))
	staging, err := p.CreateBuffer(size, driver.BufferUsageTransferSrc, hostMemory)
	if err != nil {
		return nil, err
	}
	defer staging.Release()

	if err := staging.Write(data); err != nil {
		return nil, fail("fill staging buffer", CreationFailed, err)
	}

	dst, err := p.CreateBuffer(size, finalUsage|driver.BufferUsageTransferDst, deviceMemory)
	if err != nil {
		return nil, err
	}
	if err := p.copyBuffer(staging, dst, size); err != nil {
		dst.Release()
		return nil, fail("copy staging buffer", CreationFailed, err)
	}
	return dst, nil
}

func (p *ResourcePool) copyBuffer(src, dst *Buffer, size uint64) error {
	cbs, err := p.commands.Allocate(1)
	if err != nil {
		return fail("allocate copy command buffer", AllocationFailed, err)
	}
	defer p.commands.Free(cbs)

	cb := cbs[0]
	if err := cb.Begin(driver.CommandBufferUsageOneTimeSubmit); err != nil {
		return fail("begin copy commands", CreationFailed, err)
	}
	cb.CopyBuffer(src.Handle, dst.Handle, size)
	if err := cb.End(); err != nil {
		return fail("end copy commands", CreationFailed, err)
	}

	if err := p.ctx.GraphicsQueue.Submit(driver.SubmitInfo{CommandBuffers: cbs}); err != nil {
		return fail("submit copy", SubmitFailed, err)
	}
	if err := p.ctx.GraphicsQueue.WaitIdle(); err != nil {
		return fail("wait for copy", WaitFailed, err)
	}
	return nil
}
