package driver

type Instance interface {
	EnumerateGPUs() ([]GPU, error)
	CreateWindowSurface(windowHandle uintptr) (Surface, error)
	Destroy()
}

type GPU interface {
	Name() string
	Type() GPUType
	SupportsExtension(name string) bool
	QueueFamilies(surface Surface) ([]QueueFamily, error)
	SurfaceSupport(surface Surface) (SurfaceSupport, error)
	MemoryTypes() []MemoryType
	// SupportsDepthAttachment reports optimal-tiling depth attachment
	// support for the format.
	SupportsDepthAttachment(format Format) bool
	CreateDevice(graphicsFamily, presentFamily int) (Device, error)
}

type Surface interface {
	Destroy()
}

// Device is a logical device. Every object below is created from it and
// must be destroyed before it.
type Device interface {
	GraphicsQueue() Queue
	PresentQueue() Queue
	WaitIdle() error

	CreateSemaphore() (Semaphore, error)
	CreateFence(signaled bool) (Fence, error)
	CreateBuffer(size uint64, usage BufferUsage) (Buffer, error)
	AllocateMemory(size uint64, memoryTypeIndex uint32) (Memory, error)
	CreateImage(config ImageConfig) (Image, error)
	CreateImageView(image Image, format Format, aspect ImageAspect) (ImageView, error)
	CreateSwapchain(config SwapchainConfig) (Swapchain, error)
	CreateRenderPass(colorFormat, depthFormat Format) (RenderPass, error)
	CreateFramebuffer(pass RenderPass, attachments []ImageView, extent Extent) (Framebuffer, error)
	CreateDescriptorSetLayout() (DescriptorSetLayout, error)
	CreateDescriptorPool(maxSets int) (DescriptorPool, error)
	CreateShaderModule(code []byte) (ShaderModule, error)
	CreatePipelineLayout(setLayout DescriptorSetLayout) (PipelineLayout, error)
	CreateGraphicsPipeline(config GraphicsPipelineConfig) (Pipeline, error)
	CreateCommandPool(queueFamily int) (CommandPool, error)

	Destroy()
}

type Queue interface {
	Submit(info SubmitInfo) error
	Present(info PresentInfo) error
	WaitIdle() error
}

type Semaphore interface {
	Destroy()
}

type Fence interface {
	Wait(timeout uint64) error
	Reset() error
	Destroy()
}

type Buffer interface {
	Size() uint64
	MemoryRequirements() MemoryRequirements
	BindMemory(memory Memory) error
	Destroy()
}

type Memory interface {
	Map(offset, size uint64) ([]byte, error)
	Unmap()
	Free()
}

type Image interface {
	MemoryRequirements() MemoryRequirements
	BindMemory(memory Memory) error
	Destroy()
}

type ImageView interface {
	Destroy()
}

type Swapchain interface {
	Images() ([]Image, error)
	AcquireNextImage(timeout uint64, signal Semaphore) (uint32, error)
	Destroy()
}

type RenderPass interface {
	Destroy()
}

type Framebuffer interface {
	Destroy()
}

type DescriptorSetLayout interface {
	Destroy()
}

type DescriptorPool interface {
	Allocate(layout DescriptorSetLayout, count int) ([]DescriptorSet, error)
	Destroy()
}

type DescriptorSet interface {
	BindUniformBuffer(binding uint32, buffer Buffer, size uint64)
}

type ShaderModule interface {
	Destroy()
}

type PipelineLayout interface {
	Destroy()
}

type Pipeline interface {
	Destroy()
}

type CommandPool interface {
	Allocate(count int) ([]CommandBuffer, error)
	Free(buffers []CommandBuffer)
	Destroy()
}

type CommandBuffer interface {
	Begin(usage CommandBufferUsage) error
	End() error
	CopyBuffer(src, dst Buffer, size uint64)
	BeginRenderPass(begin RenderPassBegin)
	BindPipeline(pipeline Pipeline)
	BindVertexBuffer(buffer Buffer)
	BindIndexBuffer(buffer Buffer)
	BindDescriptorSet(layout PipelineLayout, set DescriptorSet)
	DrawIndexed(indexCount uint32)
	EndRenderPass()
}
