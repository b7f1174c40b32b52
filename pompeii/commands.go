package pompeii

import (
	vk "github.com/vulkan-go/vulkan"

	"github.com/perlw/myrcube/driver"
)

type CommandPool struct {
	logicalDevice vk.Device
	pool          vk.CommandPool
}

// CreateCommandPool creates a pool whose buffers can be reset one by one.
func (d *Device) CreateCommandPool(queueFamily int) (driver.CommandPool, error) {
	p := CommandPool{
		logicalDevice: d.Handle(),
	}

	poolInfo := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
		QueueFamilyIndex: uint32(queueFamily),
	}
	if err := check(vk.CreateCommandPool(d.Handle(), &poolInfo, nil, &p.pool), "create command pool"); err != nil {
		return nil, err
	}

	return &p, nil
}

func (p *CommandPool) Allocate(count int) ([]driver.CommandBuffer, error) {
	vkBuffers := make([]vk.CommandBuffer, count)
	allocInfo := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        p.pool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: uint32(count),
	}
	if err := check(vk.AllocateCommandBuffers(p.logicalDevice, &allocInfo, vkBuffers), "allocate command buffers"); err != nil {
		return nil, err
	}

	buffers := make([]driver.CommandBuffer, count)
	for t, b := range vkBuffers {
		buffers[t] = &CommandBuffer{buffer: b}
	}
	return buffers, nil
}

func (p *CommandPool) Free(buffers []driver.CommandBuffer) {
	if len(buffers) == 0 {
		return
	}
	vkBuffers := make([]vk.CommandBuffer, len(buffers))
	for t, b := range buffers {
		vkBuffers[t] = b.(*CommandBuffer).buffer
	}
	vk.FreeCommandBuffers(p.logicalDevice, p.pool, uint32(len(vkBuffers)), vkBuffers)
}

// Destroy also frees every buffer still allocated from the pool.
func (p *CommandPool) Destroy() {
	if p.pool != vk.NullCommandPool {
		vk.DestroyCommandPool(p.logicalDevice, p.pool, nil)
		p.pool = vk.NullCommandPool
	}
}

type CommandBuffer struct {
	buffer vk.CommandBuffer
}

func (c *CommandBuffer) Begin(usage driver.CommandBufferUsage) error {
	beginInfo := vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
	}
	if usage == driver.CommandBufferUsageOneTimeSubmit {
		beginInfo.Flags = vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit)
	}
	return check(vk.BeginCommandBuffer(c.buffer, &beginInfo), "begin command buffer")
}

func (c *CommandBuffer) End() error {
	return check(vk.EndCommandBuffer(c.buffer), "end command buffer")
}

func (c *CommandBuffer) CopyBuffer(src, dst driver.Buffer, size uint64) {
	vk.CmdCopyBuffer(c.buffer, src.(*Buffer).buffer, dst.(*Buffer).buffer, 1, []vk.BufferCopy{
		{SrcOffset: 0, DstOffset: 0, Size: vk.DeviceSize(size)},
	})
}

func (c *CommandBuffer) BeginRenderPass(begin driver.RenderPassBegin) {
	clearValues := []vk.ClearValue{
		vk.NewClearValue(begin.ClearColor[:]),
		vk.NewClearDepthStencil(begin.ClearDepth, 0),
	}
	beginInfo := vk.RenderPassBeginInfo{
		SType:       vk.StructureTypeRenderPassBeginInfo,
		RenderPass:  begin.RenderPass.(*RenderPass).renderPass,
		Framebuffer: begin.Framebuffer.(*Framebuffer).framebuffer,
		RenderArea: vk.Rect2D{
			Offset: vk.Offset2D{X: 0, Y: 0},
			Extent: extent2D(begin.Extent),
		},
		ClearValueCount: uint32(len(clearValues)),
		PClearValues:    clearValues,
	}
	vk.CmdBeginRenderPass(c.buffer, &beginInfo, vk.SubpassContentsInline)
}

func (c *CommandBuffer) BindPipeline(pipeline driver.Pipeline) {
	vk.CmdBindPipeline(c.buffer, vk.PipelineBindPointGraphics, pipeline.(*Pipeline).pipeline)
}

func (c *CommandBuffer) BindVertexBuffer(buffer driver.Buffer) {
	vk.CmdBindVertexBuffers(c.buffer, 0, 1, []vk.Buffer{buffer.(*Buffer).buffer}, []vk.DeviceSize{0})
}

func (c *CommandBuffer) BindIndexBuffer(buffer driver.Buffer) {
	vk.CmdBindIndexBuffer(c.buffer, buffer.(*Buffer).buffer, 0, vk.IndexTypeUint32)
}

func (c *CommandBuffer) BindDescriptorSet(layout driver.PipelineLayout, set driver.DescriptorSet) {
	vk.CmdBindDescriptorSets(c.buffer, vk.PipelineBindPointGraphics, layout.(*PipelineLayout).layout,
		0, 1, []vk.DescriptorSet{set.(*DescriptorSet).set}, 0, nil)
}

func (c *CommandBuffer) DrawIndexed(indexCount uint32) {
	vk.CmdDrawIndexed(c.buffer, indexCount, 1, 0, 0, 0)
}

func (c *CommandBuffer) EndRenderPass() {
	vk.CmdEndRenderPass(c.buffer)
}
