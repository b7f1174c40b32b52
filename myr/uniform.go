package myr

import (
	"github.com/pkg/errors"

	"github.com/perlw/myrcube/driver"
)

// UniformBuffers holds one host visible uniform buffer per swapchain image
// and the descriptor set pointing at it. Buffer i is only written while
// image i is not in use by the GPU.
type UniformBuffers struct {
	Buffers []*Buffer
	Sets    []driver.DescriptorSet

	descriptors driver.DescriptorPool
}

// NewUniformBuffers creates the buffers. Descriptors are set up separately
// so the pool can be torn down with the descriptor layout.
func NewUniformBuffers(pool *ResourcePool, count int, size uint64) (*UniformBuffers, error) {
	u := UniformBuffers{}
	for t := 0; t < count; t++ {
		b, err := pool.CreateBuffer(size, driver.BufferUsageUniform, hostMemory)
		if err != nil {
			u.ReleaseBuffers()
			return nil, errors.Wrapf(err, "uniform buffer %d", t)
		}
		u.Buffers = append(u.Buffers, b)
	}
	return &u, nil
}

func (u *UniformBuffers) CreateDescriptors(ctx *GraphicsContext, layout driver.DescriptorSetLayout) error {
	pool, err := ctx.Device.CreateDescriptorPool(len(u.Buffers))
	if err != nil {
		return fail("create descriptor pool", CreationFailed, err)
	}
	sets, err := pool.Allocate(layout, len(u.Buffers))
	if err != nil {
		pool.Destroy()
		return fail("allocate descriptor sets", AllocationFailed, err)
	}
	for t, set := range sets {
		set.BindUniformBuffer(0, u.Buffers[t].Handle, u.Buffers[t].Size)
	}
	u.descriptors = pool
	u.Sets = sets
	return nil
}

func (u *UniformBuffers) Write(imageIndex uint32, data []byte) error {
	if int(imageIndex) >= len(u.Buffers) {
		return fail("write uniforms", MapFailed, errors.Errorf("image %d of %d", imageIndex, len(u.Buffers)))
	}
	return u.Buffers[imageIndex].Write(data)
}

func (u *UniformBuffers) ReleaseBuffers() {
	for t := len(u.Buffers) - 1; t >= 0; t-- {
		u.Buffers[t].Release()
	}
	u.Buffers = nil
}

func (u *UniformBuffers) DestroyDescriptors() {
	if u.descriptors != nil {
		u.descriptors.Destroy()
		u.descriptors = nil
	}
	u.Sets = nil
}
