package pompeii

import (
	"unsafe"

	vk "github.com/vulkan-go/vulkan"

	"github.com/perlw/myrcube/driver"
)

type Buffer struct {
	logicalDevice vk.Device
	buffer        vk.Buffer
	size          uint64
}

func (d *Device) CreateBuffer(size uint64, usage driver.BufferUsage) (driver.Buffer, error) {
	b := Buffer{
		logicalDevice: d.Handle(),
		size:          size,
	}

	bufferInfo := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        vk.DeviceSize(size),
		Usage:       bufferUsage(usage),
		SharingMode: vk.SharingModeExclusive,
	}
	if err := check(vk.CreateBuffer(d.Handle(), &bufferInfo, nil, &b.buffer), "create buffer"); err != nil {
		return nil, err
	}

	return &b, nil
}

func (b *Buffer) Size() uint64 {
	return b.size
}

func (b *Buffer) MemoryRequirements() driver.MemoryRequirements {
	var req vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(b.logicalDevice, b.buffer, &req)
	req.Deref()
	return driver.MemoryRequirements{Size: uint64(req.Size), TypeBits: req.MemoryTypeBits}
}

func (b *Buffer) BindMemory(memory driver.Memory) error {
	return check(vk.BindBufferMemory(b.logicalDevice, b.buffer, memory.(*Memory).memory, 0), "bind buffer memory")
}

func (b *Buffer) Destroy() {
	if b.buffer != vk.NullBuffer {
		vk.DestroyBuffer(b.logicalDevice, b.buffer, nil)
		b.buffer = vk.NullBuffer
	}
}

type Memory struct {
	logicalDevice vk.Device
	memory        vk.DeviceMemory
}

func (d *Device) AllocateMemory(size uint64, memoryTypeIndex uint32) (driver.Memory, error) {
	m := Memory{
		logicalDevice: d.Handle(),
	}

	allocInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  vk.DeviceSize(size),
		MemoryTypeIndex: memoryTypeIndex,
	}
	if err := check(vk.AllocateMemory(d.Handle(), &allocInfo, nil, &m.memory), "allocate memory"); err != nil {
		return nil, err
	}

	return &m, nil
}

// Map returns the mapped range as a byte slice aliasing device memory. It is
// invalid after Unmap.
func (m *Memory) Map(offset, size uint64) ([]byte, error) {
	var data unsafe.Pointer
	if err := check(vk.MapMemory(m.logicalDevice, m.memory, vk.DeviceSize(offset), vk.DeviceSize(size), 0, &data), "map memory"); err != nil {
		return nil, err
	}
	return unsafe.Slice((*byte)(data), size), nil
}

func (m *Memory) Unmap() {
	vk.UnmapMemory(m.logicalDevice, m.memory)
}

func (m *Memory) Free() {
	if m.memory != vk.NullDeviceMemory {
		vk.FreeMemory(m.logicalDevice, m.memory, nil)
		m.memory = vk.NullDeviceMemory
	}
}
