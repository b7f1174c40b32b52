package pompeii

import (
	vk "github.com/vulkan-go/vulkan"

	"github.com/perlw/myrcube/driver"
)

type DescriptorSetLayout struct {
	logicalDevice vk.Device
	layout        vk.DescriptorSetLayout
}

// CreateDescriptorSetLayout describes a single uniform buffer at binding 0
// read by the vertex stage.
func (d *Device) CreateDescriptorSetLayout() (driver.DescriptorSetLayout, error) {
	l := DescriptorSetLayout{
		logicalDevice: d.Handle(),
	}

	layoutInfo := vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: 1,
		PBindings: []vk.DescriptorSetLayoutBinding{
			{
				Binding:         0,
				DescriptorType:  vk.DescriptorTypeUniformBuffer,
				DescriptorCount: 1,
				StageFlags:      vk.ShaderStageFlags(vk.ShaderStageVertexBit),
			},
		},
	}
	if err := check(vk.CreateDescriptorSetLayout(d.Handle(), &layoutInfo, nil, &l.layout), "create descriptor set layout"); err != nil {
		return nil, err
	}

	return &l, nil
}

func (l *DescriptorSetLayout) Destroy() {
	vk.DestroyDescriptorSetLayout(l.logicalDevice, l.layout, nil)
}

type DescriptorPool struct {
	logicalDevice vk.Device
	pool          vk.DescriptorPool
}

func (d *Device) CreateDescriptorPool(maxSets int) (driver.DescriptorPool, error) {
	p := DescriptorPool{
		logicalDevice: d.Handle(),
	}

	poolInfo := vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		MaxSets:       uint32(maxSets),
		PoolSizeCount: 1,
		PPoolSizes: []vk.DescriptorPoolSize{
			{
				Type:            vk.DescriptorTypeUniformBuffer,
				DescriptorCount: uint32(maxSets),
			},
		},
	}
	if err := check(vk.CreateDescriptorPool(d.Handle(), &poolInfo, nil, &p.pool), "create descriptor pool"); err != nil {
		return nil, err
	}

	return &p, nil
}

func (p *DescriptorPool) Allocate(layout driver.DescriptorSetLayout, count int) ([]driver.DescriptorSet, error) {
	setLayout := layout.(*DescriptorSetLayout).layout

	sets := make([]driver.DescriptorSet, count)
	for t := range sets {
		var set vk.DescriptorSet
		allocInfo := vk.DescriptorSetAllocateInfo{
			SType:              vk.StructureTypeDescriptorSetAllocateInfo,
			DescriptorPool:     p.pool,
			DescriptorSetCount: 1,
			PSetLayouts:        []vk.DescriptorSetLayout{setLayout},
		}
		if err := check(vk.AllocateDescriptorSets(p.logicalDevice, &allocInfo, &set), "allocate descriptor set"); err != nil {
			return nil, err
		}
		sets[t] = &DescriptorSet{logicalDevice: p.logicalDevice, set: set}
	}

	return sets, nil
}

// Destroy frees every set allocated from the pool.
func (p *DescriptorPool) Destroy() {
	vk.DestroyDescriptorPool(p.logicalDevice, p.pool, nil)
}

type DescriptorSet struct {
	logicalDevice vk.Device
	set           vk.DescriptorSet
}

func (s *DescriptorSet) BindUniformBuffer(binding uint32, buffer driver.Buffer, size uint64) {
	write := vk.WriteDescriptorSet{
		SType:           vk.StructureTypeWriteDescriptorSet,
		DstSet:          s.set,
		DstBinding:      binding,
		DstArrayElement: 0,
		DescriptorCount: 1,
		DescriptorType:  vk.DescriptorTypeUniformBuffer,
		PBufferInfo: []vk.DescriptorBufferInfo{
			{
				Buffer: buffer.(*Buffer).buffer,
				Offset: 0,
				Range:  vk.DeviceSize(size),
			},
		},
	}
	vk.UpdateDescriptorSets(s.logicalDevice, 1, []vk.WriteDescriptorSet{write}, 0, nil)
}
