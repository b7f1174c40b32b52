// Package driver describes the native GPU objects the renderer core works
// with. The pompeii package implements it on Vulkan; drivertest implements
// it in memory.
package driver

import (
	"math"

	"github.com/pkg/errors"
)

const Forever uint64 = math.MaxUint64

// UndefinedExtent marks a surface whose current extent is decided by the
// swapchain rather than by the window system.
const UndefinedExtent uint32 = math.MaxUint32

const SwapchainExtensionName = "VK_KHR_swapchain"

var (
	ErrOutOfDate  = errors.New("surface out of date")
	ErrDeviceLost = errors.New("device lost")
	ErrTimeout    = errors.New("timeout")
)

type Extent struct {
	Width  uint32
	Height uint32
}

type Format int

const (
	FormatUndefined Format = iota
	FormatB8G8R8A8Unorm
	FormatB8G8R8A8Srgb
	FormatR8G8B8A8Unorm
	FormatR8G8B8A8Srgb
	FormatD32Sfloat
	FormatD32SfloatS8Uint
	FormatD24UnormS8Uint
	FormatR32G32B32Sfloat
)

type ColorSpace int

const ColorSpaceSrgbNonlinear ColorSpace = 0

type SurfaceFormat struct {
	Format     Format
	ColorSpace ColorSpace
}

type PresentMode int

const (
	PresentModeImmediate PresentMode = iota
	PresentModeMailbox
	PresentModeFifo
	PresentModeFifoRelaxed
)

type GPUType int

const (
	GPUTypeOther GPUType = iota
	GPUTypeIntegrated
	GPUTypeDiscrete
	GPUTypeVirtual
	GPUTypeCPU
)

func (g GPUType) String() string {
	switch g {
	case GPUTypeOther:
		return "Other"
	case GPUTypeIntegrated:
		return "Integrated"
	case GPUTypeDiscrete:
		return "Discrete"
	case GPUTypeVirtual:
		return "Virtual"
	case GPUTypeCPU:
		return "CPU"
	default:
		return "Unknown"
	}
}

type QueueFamily struct {
	Index    int
	Graphics bool
	Compute  bool
	Transfer bool
	// Present reports whether the family can present to the surface the
	// families were queried against.
	Present bool
}

type SurfaceCapabilities struct {
	MinImageCount  uint32
	MaxImageCount  uint32
	CurrentExtent  Extent
	MinImageExtent Extent
	MaxImageExtent Extent
}

type SurfaceSupport struct {
	Capabilities SurfaceCapabilities
	Formats      []SurfaceFormat
	PresentModes []PresentMode
}

type BufferUsage uint32

const (
	BufferUsageTransferSrc BufferUsage = 1 << iota
	BufferUsageTransferDst
	BufferUsageUniform
	BufferUsageIndex
	BufferUsageVertex
)

type MemoryProperty uint32

const (
	MemoryPropertyDeviceLocal MemoryProperty = 1 << iota
	MemoryPropertyHostVisible
	MemoryPropertyHostCoherent
	MemoryPropertyHostCached
)

type MemoryType struct {
	Properties MemoryProperty
	HeapIndex  uint32
}

type MemoryRequirements struct {
	Size uint64
	// TypeBits has bit i set when memory type i can back the resource.
	TypeBits uint32
}

type ImageAspect int

const (
	ImageAspectColor ImageAspect = iota
	ImageAspectDepth
)

type PipelineStage uint32

const (
	PipelineStageTopOfPipe PipelineStage = 1 << iota
	PipelineStageColorAttachmentOutput
	PipelineStageTransfer
)

type CommandBufferUsage int

const (
	CommandBufferUsageReusable CommandBufferUsage = iota
	CommandBufferUsageOneTimeSubmit
)

type SwapchainConfig struct {
	Surface       Surface
	MinImageCount uint32
	Format        SurfaceFormat
	Extent        Extent
	PresentMode   PresentMode
	// QueueFamilies lists the families sharing the images; more than one
	// distinct family selects concurrent sharing.
	QueueFamilies []int
}

type ImageConfig struct {
	Extent Extent
	Format Format
	// DepthAttachment selects depth-stencil attachment usage instead of
	// color attachment usage.
	DepthAttachment bool
}

type VertexAttribute struct {
	Location uint32
	Format   Format
	Offset   uint32
}

type GraphicsPipelineConfig struct {
	VertexShader   ShaderModule
	FragmentShader ShaderModule
	Layout         PipelineLayout
	RenderPass     RenderPass
	Extent         Extent
	VertexStride   uint32
	Attributes     []VertexAttribute
}

type RenderPassBegin struct {
	RenderPass  RenderPass
	Framebuffer Framebuffer
	Extent      Extent
	ClearColor  [4]float32
	ClearDepth  float32
}

type SubmitInfo struct {
	WaitSemaphores   []Semaphore
	WaitStages       []PipelineStage
	CommandBuffers   []CommandBuffer
	SignalSemaphores []Semaphore
	// Fence is signaled once every command buffer has completed. May be nil.
	Fence Fence
}

type PresentInfo struct {
	WaitSemaphores []Semaphore
	Swapchain      Swapchain
	ImageIndex     uint32
}
