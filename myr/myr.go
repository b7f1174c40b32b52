package myr

import (
	"time"

	"github.com/loov/hrtime"
	"github.com/pkg/errors"

	"github.com/perlw/myrcube/driver"
	"github.com/perlw/myrcube/logger"
)

const EngineName = "MYR"

type Options struct {
	FramesInFlight int
	ShaderDir      string
	CameraSpeed    float32
	AngleSpeed     float32
}

type FrameStats struct {
	Stats
	FrameTime time.Duration
}

// Myr owns every GPU resource of the renderer. Components get a pointer to
// the shared GraphicsContext; only Myr releases anything.
type Myr struct {
	opts Options
	log  logger.Logger

	instance  driver.Instance
	lifecycle *Lifecycle

	surface   driver.Surface
	ctx       *GraphicsContext
	swapchain *Swapchain
	targets   *RenderTargetSet
	setLayout driver.DescriptorSetLayout
	pipeline  *PipelineState
	commands  driver.CommandPool
	resources *ResourcePool
	vertices  *Buffer
	indices   *Buffer
	uniforms  *UniformBuffers
	recorder  *CommandRecorder
	scheduler *FrameScheduler

	camera *Camera
	input  InputState

	now       func() time.Duration
	prevTime  time.Duration
	frameTime time.Duration
}

// New takes ownership of instance; it is destroyed by CleanUp.
func New(opts Options, instance driver.Instance, log logger.Logger) *Myr {
	m := Myr{
		opts:      opts,
		log:       log,
		instance:  instance,
		lifecycle: NewLifecycle(log),
		now:       hrtime.Now,
	}
	m.lifecycle.Own(StageInstance, "instance", instance.Destroy)
	return &m
}

// Init creates every resource in dependency order. On failure whatever was
// created is still released by CleanUp.
func (m *Myr) Init(window Window) error {
	var err error
	lc := m.lifecycle

	if m.surface, err = CreateSurface(m.instance, window); err != nil {
		return err
	}
	lc.Own(StageSurface, "surface", m.surface.Destroy)

	if m.ctx, err = NewGraphicsContext(m.instance, m.surface, m.log); err != nil {
		return err
	}
	lc.Own(StageDevice, "device", m.ctx.Destroy)

	if m.swapchain, err = NewSwapchain(m.ctx, m.surface, window, m.log); err != nil {
		return err
	}
	lc.Own(StageSwapchain, "swapchain", m.swapchain.Destroy)

	if m.targets, err = NewRenderTargetSet(m.ctx, m.swapchain.Format.Format, m.log); err != nil {
		return err
	}
	lc.Own(StageFramebuffers, "render targets", m.targets.DestroyFramebuffers)

	if m.setLayout, err = NewDescriptorSetLayout(m.ctx); err != nil {
		return err
	}
	lc.Own(StageDescriptors, "descriptor set layout", m.setLayout.Destroy)

	if m.pipeline, err = NewPipelineState(m.ctx, m.opts.ShaderDir, m.setLayout, m.targets.RenderPass, m.swapchain.Extent, m.log); err != nil {
		return err
	}
	lc.Own(StagePipeline, "pipeline", m.pipeline.Destroy)

	if m.commands, err = NewCommandPool(m.ctx); err != nil {
		return err
	}
	lc.Own(StageCommandPool, "command pool", m.commands.Destroy)
	m.resources = NewResourcePool(m.ctx, m.commands, m.log)

	if err := m.initBuffers(); err != nil {
		return err
	}

	if err := m.targets.CreateDepth(m.swapchain.Extent); err != nil {
		return err
	}
	lc.Own(StageDepth, "depth target", m.targets.DestroyDepth)
	if err := m.targets.CreateFramebuffers(m.swapchain.Views, m.swapchain.Extent); err != nil {
		return err
	}

	m.recorder, err = NewCommandRecorder(m.commands, DrawInputs{
		Targets:    m.targets,
		Pipeline:   m.pipeline,
		Vertices:   m.vertices,
		Indices:    m.indices,
		IndexCount: uint32(len(CubeIndices)),
		Uniforms:   m.uniforms,
		Extent:     m.swapchain.Extent,
	})
	if err != nil {
		return err
	}
	lc.Own(StageCommandPool, "draw commands", m.recorder.Free)

	if m.scheduler, err = NewFrameScheduler(m.ctx, m.swapchain, m.recorder.Buffers, m.opts.FramesInFlight, m.log); err != nil {
		return err
	}
	lc.Own(StageSync, "frame sync", m.scheduler.Destroy)

	extent := m.swapchain.Extent
	m.camera = NewCamera(float32(extent.Width)/float32(extent.Height), m.opts.CameraSpeed, m.opts.AngleSpeed)
	m.prevTime = m.now()
	return nil
}

func (m *Myr) initBuffers() error {
	var err error
	lc := m.lifecycle

	if m.vertices, err = m.resources.UploadViaStaging(VertexBytes(CubeVertices), driver.BufferUsageVertex); err != nil {
		return errors.Wrap(err, "vertex buffer")
	}
	lc.Own(StageBuffers, "vertex buffer", m.vertices.Release)

	if m.indices, err = m.resources.UploadViaStaging(IndexBytes(CubeIndices), driver.BufferUsageIndex); err != nil {
		return errors.Wrap(err, "index buffer")
	}
	lc.Own(StageBuffers, "index buffer", m.indices.Release)

	if m.uniforms, err = NewUniformBuffers(m.resources, m.swapchain.ImageCount(), UniformSize); err != nil {
		return err
	}
	lc.Own(StageBuffers, "uniform buffers", m.uniforms.ReleaseBuffers)

	if err := m.uniforms.CreateDescriptors(m.ctx, m.setLayout); err != nil {
		return err
	}
	lc.Own(StageDescriptors, "descriptor pool", m.uniforms.DestroyDescriptors)
	return nil
}

func (m *Myr) ReadInput(ev Event) {
	m.input.Apply(ev)
}

// Update advances the camera by the wall time since the last update and
// consumes the mouse motion.
func (m *Myr) Update() {
	now := m.now()
	m.frameTime = now - m.prevTime
	m.prevTime = now
	if m.camera != nil {
		m.camera.Update(m.input, float32(m.frameTime.Seconds()))
	}
	m.input.ConsumeMotion()
}

func (m *Myr) Render() error {
	if m.scheduler == nil {
		return fail("render", CreationFailed, errors.New("not initialized"))
	}
	ubo := m.camera.Uniforms()
	data := ubo.Bytes()
	return m.scheduler.RenderFrame(func(image uint32) error {
		return m.uniforms.Write(image, data)
	})
}

func (m *Myr) Stats() FrameStats {
	s := FrameStats{FrameTime: m.frameTime}
	if m.scheduler != nil {
		s.Stats = m.scheduler.Stats()
	}
	return s
}

// CleanUp waits for the device to go idle and releases everything in
// reverse dependency order.
func (m *Myr) CleanUp() error {
	ctx := m.ctx
	err := m.lifecycle.Teardown(func() error {
		if ctx == nil {
			return nil
		}
		return ctx.WaitIdle()
	})
	m.log.Log("Cleaned up")
	return err
}
