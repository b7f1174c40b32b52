package myr

import (
	"github.com/pkg/errors"

	"github.com/perlw/myrcube/driver"
)

func NewCommandPool(ctx *GraphicsContext) (driver.CommandPool, error) {
	pool, err := ctx.Device.CreateCommandPool(ctx.GraphicsFamily)
	if err != nil {
		return nil, fail("create command pool", CreationFailed, err)
	}
	return pool, nil
}

type DrawInputs struct {
	Targets    *RenderTargetSet
	Pipeline   *PipelineState
	Vertices   *Buffer
	Indices    *Buffer
	IndexCount uint32
	Uniforms   *UniformBuffers
	Extent     driver.Extent
}

// CommandRecorder holds one pre-recorded command buffer per swapchain
// image. Buffer i draws into framebuffer i with descriptor set i.
type CommandRecorder struct {
	Buffers []driver.CommandBuffer

	pool driver.CommandPool
}

func NewCommandRecorder(pool driver.CommandPool, in DrawInputs) (*CommandRecorder, error) {
	count := len(in.Targets.Framebuffers)
	if len(in.Uniforms.Sets) != count {
		return nil, fail("record commands", CreationFailed,
			errors.Errorf("%d descriptor sets for %d framebuffers", len(in.Uniforms.Sets), count))
	}

	buffers, err := pool.Allocate(count)
	if err != nil {
		return nil, fail("allocate command buffers", AllocationFailed, err)
	}
	r := CommandRecorder{Buffers: buffers, pool: pool}
	for t, cb := range buffers {
		if err := record(cb, t, in); err != nil {
			r.Free()
			return nil, fail("record commands", CreationFailed, errors.Wrapf(err, "image %d", t))
		}
	}
	return &r, nil
}

func record(cb driver.CommandBuffer, image int, in DrawInputs) error {
	if err := cb.Begin(driver.CommandBufferUsageReusable); err != nil {
		return err
	}
	cb.BeginRenderPass(driver.RenderPassBegin{
		RenderPass:  in.Targets.RenderPass,
		Framebuffer: in.Targets.Framebuffers[image],
		Extent:      in.Extent,
		ClearColor:  [4]float32{0, 0, 0, 1},
		ClearDepth:  1,
	})
	cb.BindPipeline(in.Pipeline.Pipeline)
	cb.BindVertexBuffer(in.Vertices.Handle)
	cb.BindIndexBuffer(in.Indices.Handle)
	cb.BindDescriptorSet(in.Pipeline.Layout, in.Uniforms.Sets[image])
	cb.DrawIndexed(in.IndexCount)
	cb.EndRenderPass()
	return cb.End()
}

func (r *CommandRecorder) Free() {
	if len(r.Buffers) > 0 {
		r.pool.Free(r.Buffers)
		r.Buffers = nil
	}
}
