package pompeii

import (
	vk "github.com/vulkan-go/vulkan"

	"github.com/perlw/myrcube/driver"
)

var formats = map[driver.Format]vk.Format{
	driver.FormatUndefined:       vk.FormatUndefined,
	driver.FormatB8G8R8A8Unorm:   vk.FormatB8g8r8a8Unorm,
	driver.FormatB8G8R8A8Srgb:    vk.FormatB8g8r8a8Srgb,
	driver.FormatR8G8B8A8Unorm:   vk.FormatR8g8b8a8Unorm,
	driver.FormatR8G8B8A8Srgb:    vk.FormatR8g8b8a8Srgb,
	driver.FormatD32Sfloat:       vk.FormatD32Sfloat,
	driver.FormatD32SfloatS8Uint: vk.FormatD32SfloatS8Uint,
	driver.FormatD24UnormS8Uint:  vk.FormatD24UnormS8Uint,
	driver.FormatR32G32B32Sfloat: vk.FormatR32g32b32Sfloat,
}

func vkFormat(f driver.Format) vk.Format {
	return formats[f]
}

// driverFormat reports false for formats the renderer has no name for.
func driverFormat(f vk.Format) (driver.Format, bool) {
	for d, v := range formats {
		if v == f && d != driver.FormatUndefined {
			return d, true
		}
	}
	return driver.FormatUndefined, false
}

var presentModes = map[driver.PresentMode]vk.PresentMode{
	driver.PresentModeImmediate:   vk.PresentModeImmediate,
	driver.PresentModeMailbox:     vk.PresentModeMailbox,
	driver.PresentModeFifo:        vk.PresentModeFifo,
	driver.PresentModeFifoRelaxed: vk.PresentModeFifoRelaxed,
}

func driverPresentMode(m vk.PresentMode) (driver.PresentMode, bool) {
	for d, v := range presentModes {
		if v == m {
			return d, true
		}
	}
	return 0, false
}

func gpuType(t vk.PhysicalDeviceType) driver.GPUType {
	switch t {
	case vk.PhysicalDeviceTypeIntegratedGpu:
		return driver.GPUTypeIntegrated
	case vk.PhysicalDeviceTypeDiscreteGpu:
		return driver.GPUTypeDiscrete
	case vk.PhysicalDeviceTypeVirtualGpu:
		return driver.GPUTypeVirtual
	case vk.PhysicalDeviceTypeCpu:
		return driver.GPUTypeCPU
	default:
		return driver.GPUTypeOther
	}
}

func extent2D(e driver.Extent) vk.Extent2D {
	return vk.Extent2D{Width: e.Width, Height: e.Height}
}

func driverExtent(e vk.Extent2D) driver.Extent {
	e.Deref()
	return driver.Extent{Width: e.Width, Height: e.Height}
}

func bufferUsage(u driver.BufferUsage) vk.BufferUsageFlags {
	var flags vk.BufferUsageFlagBits
	if u&driver.BufferUsageTransferSrc != 0 {
		flags |= vk.BufferUsageTransferSrcBit
	}
	if u&driver.BufferUsageTransferDst != 0 {
		flags |= vk.BufferUsageTransferDstBit
	}
	if u&driver.BufferUsageUniform != 0 {
		flags |= vk.BufferUsageUniformBufferBit
	}
	if u&driver.BufferUsageIndex != 0 {
		flags |= vk.BufferUsageIndexBufferBit
	}
	if u&driver.BufferUsageVertex != 0 {
		flags |= vk.BufferUsageVertexBufferBit
	}
	return vk.BufferUsageFlags(flags)
}

func memoryProperties(flags vk.MemoryPropertyFlags) driver.MemoryProperty {
	var p driver.MemoryProperty
	if flags&vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit) != 0 {
		p |= driver.MemoryPropertyDeviceLocal
	}
	if flags&vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit) != 0 {
		p |= driver.MemoryPropertyHostVisible
	}
	if flags&vk.MemoryPropertyFlags(vk.MemoryPropertyHostCoherentBit) != 0 {
		p |= driver.MemoryPropertyHostCoherent
	}
	if flags&vk.MemoryPropertyFlags(vk.MemoryPropertyHostCachedBit) != 0 {
		p |= driver.MemoryPropertyHostCached
	}
	return p
}

func pipelineStages(stages []driver.PipelineStage) []vk.PipelineStageFlags {
	out := make([]vk.PipelineStageFlags, len(stages))
	for t, s := range stages {
		var flags vk.PipelineStageFlagBits
		if s&driver.PipelineStageTopOfPipe != 0 {
			flags |= vk.PipelineStageTopOfPipeBit
		}
		if s&driver.PipelineStageColorAttachmentOutput != 0 {
			flags |= vk.PipelineStageColorAttachmentOutputBit
		}
		if s&driver.PipelineStageTransfer != 0 {
			flags |= vk.PipelineStageTransferBit
		}
		out[t] = vk.PipelineStageFlags(flags)
	}
	return out
}

func semaphores(in []driver.Semaphore) []vk.Semaphore {
	out := make([]vk.Semaphore, len(in))
	for t, s := range in {
		out[t] = s.(*Semaphore).semaphore
	}
	return out
}
