package drivertest

import (
	"github.com/perlw/myrcube/driver"
)

func (d *Device) CreateCommandPool(queueFamily int) (driver.CommandPool, error) {
	if err := d.create("CreateCommandPool"); err != nil {
		return nil, err
	}
	return &CommandPool{handle: d.sim.newHandle("cmdpool", d.handle), device: d, family: queueFamily}, nil
}

type CommandPool struct {
	*handle
	device  *Device
	family  int
	buffers []*CommandBuffer
}

func (p *CommandPool) Allocate(count int) ([]driver.CommandBuffer, error) {
	if !p.use("allocate command buffers") {
		return nil, errDestroyed
	}
	if err := p.sim.fail("AllocateCommandBuffers"); err != nil {
		return nil, err
	}
	buffers := make([]driver.CommandBuffer, count)
	for t := range buffers {
		cb := &CommandBuffer{handle: p.sim.newHandle("cmdbuf", p.handle), pool: p}
		p.buffers = append(p.buffers, cb)
		buffers[t] = cb
	}
	return buffers, nil
}

func (p *CommandPool) Free(buffers []driver.CommandBuffer) {
	for _, b := range buffers {
		cb := b.(*CommandBuffer)
		if cb.pending {
			p.sim.violate("free of %s while pending", cb)
		}
		cb.destroy()
	}
}

// Destroy implicitly frees the buffers still allocated from the pool.
func (p *CommandPool) Destroy() {
	for _, cb := range p.buffers {
		if cb.destroyed {
			continue
		}
		if cb.pending {
			p.sim.violate("destroy of %s while %s is pending", p, cb)
		}
		cb.release()
	}
	p.destroy()
}

type cbState int

const (
	stateInitial cbState = iota
	stateRecording
	stateExecutable
)

type command struct {
	name string
	// run executes the command when its batch completes.
	run func()
}

type CommandBuffer struct {
	*handle
	pool     *CommandPool
	state    cbState
	usage    driver.CommandBufferUsage
	pending  bool
	commands []command
	buffers  []*Buffer
	sets     []*DescriptorSet
}

// Commands lists the names of the recorded commands in order.
func (c *CommandBuffer) Commands() []string {
	names := make([]string, len(c.commands))
	for t, cmd := range c.commands {
		names[t] = cmd.name
	}
	return names
}

func (c *CommandBuffer) Begin(usage driver.CommandBufferUsage) error {
	if !c.use("begin command buffer") {
		return errDestroyed
	}
	if c.pending {
		c.sim.violate("begin of %s while pending", c)
	}
	c.state = stateRecording
	c.usage = usage
	c.commands = nil
	c.buffers = nil
	c.sets = nil
	return nil
}

func (c *CommandBuffer) End() error {
	if !c.use("end command buffer") {
		return errDestroyed
	}
	if c.state != stateRecording {
		c.sim.violate("end of %s which is not recording", c)
	}
	c.state = stateExecutable
	return nil
}

func (c *CommandBuffer) add(name string, run func()) {
	c.use(name)
	if c.state != stateRecording {
		c.sim.violate("%s recorded into %s outside begin/end", name, c)
	}
	c.commands = append(c.commands, command{name: name, run: run})
}

func (c *CommandBuffer) CopyBuffer(src, dst driver.Buffer, size uint64) {
	s, d := src.(*Buffer), dst.(*Buffer)
	if s.usage&driver.BufferUsageTransferSrc == 0 {
		c.sim.violate("copy from %s without transfer source usage", s)
	}
	if d.usage&driver.BufferUsageTransferDst == 0 {
		c.sim.violate("copy to %s without transfer destination usage", d)
	}
	c.buffers = append(c.buffers, s, d)
	c.add("copy", func() {
		if !s.use("execute copy") || !d.use("execute copy") || s.memory == nil || d.memory == nil {
			return
		}
		if !s.memory.use("execute copy") || !d.memory.use("execute copy") {
			return
		}
		copy(d.memory.data[:size], s.memory.data[:size])
	})
}

func (c *CommandBuffer) BeginRenderPass(begin driver.RenderPassBegin) {
	begin.RenderPass.(*RenderPass).use("begin render pass")
	begin.Framebuffer.(*Framebuffer).use("begin render pass")
	c.add("beginrenderpass", nil)
}

func (c *CommandBuffer) BindPipeline(pipeline driver.Pipeline) {
	pipeline.(*Pipeline).use("bind pipeline")
	c.add("bindpipeline", nil)
}

func (c *CommandBuffer) BindVertexBuffer(buffer driver.Buffer) {
	b := buffer.(*Buffer)
	if b.usage&driver.BufferUsageVertex == 0 {
		c.sim.violate("%s bound as vertex buffer without vertex usage", b)
	}
	c.buffers = append(c.buffers, b)
	c.add("bindvertexbuffer", nil)
}

func (c *CommandBuffer) BindIndexBuffer(buffer driver.Buffer) {
	b := buffer.(*Buffer)
	if b.usage&driver.BufferUsageIndex == 0 {
		c.sim.violate("%s bound as index buffer without index usage", b)
	}
	c.buffers = append(c.buffers, b)
	c.add("bindindexbuffer", nil)
}

func (c *CommandBuffer) BindDescriptorSet(layout driver.PipelineLayout, set driver.DescriptorSet) {
	layout.(*PipelineLayout).use("bind descriptor set")
	c.sets = append(c.sets, set.(*DescriptorSet))
	c.add("binddescriptorset", nil)
}

func (c *CommandBuffer) DrawIndexed(indexCount uint32) {
	if indexCount == 0 {
		c.sim.violate("draw of zero indices in %s", c)
	}
	c.add("drawindexed", nil)
}

func (c *CommandBuffer) EndRenderPass() {
	c.add("endrenderpass", nil)
}

func (c *CommandBuffer) execute() {
	if !c.use("execute") {
		return
	}
	for _, cmd := range c.commands {
		if cmd.run != nil {
			cmd.run()
		}
	}
	if c.usage == driver.CommandBufferUsageOneTimeSubmit {
		c.state = stateInitial
	}
}

func (c *CommandBuffer) references(m *Memory) bool {
	for _, b := range c.buffers {
		if b.memory == m {
			return true
		}
	}
	for _, s := range c.sets {
		for _, b := range s.buffers {
			if b.memory == m {
				return true
			}
		}
	}
	return false
}

func (c *CommandBuffer) usesBuffer(b *Buffer) bool {
	for _, used := range c.buffers {
		if used == b {
			return true
		}
	}
	for _, s := range c.sets {
		for _, used := range s.buffers {
			if used == b {
				return true
			}
		}
	}
	return false
}

func (q *Queue) usesBuffer(b *Buffer) bool {
	for _, pending := range q.pending {
		for _, cb := range pending.commands {
			if cb.usesBuffer(b) {
				return true
			}
		}
	}
	return false
}
