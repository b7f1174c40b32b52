package drivertest

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/perlw/myrcube/driver"
)

func imageDetail(index uint32) string {
	return fmt.Sprintf("image %d", index)
}

func (d *Device) CreateBuffer(size uint64, usage driver.BufferUsage) (driver.Buffer, error) {
	if err := d.create("CreateBuffer"); err != nil {
		return nil, err
	}
	if size == 0 {
		return nil, errors.New("zero sized buffer")
	}
	return &Buffer{handle: d.sim.newHandle("buffer", d.handle), device: d, size: size, usage: usage}, nil
}

func (d *Device) AllocateMemory(size uint64, memoryTypeIndex uint32) (driver.Memory, error) {
	if err := d.create("AllocateMemory"); err != nil {
		return nil, err
	}
	if int(memoryTypeIndex) >= len(d.gpu.config.MemoryTypes) {
		return nil, errors.Errorf("memory type %d out of range", memoryTypeIndex)
	}
	return &Memory{
		handle:    d.sim.newHandle("memory", d.handle),
		device:    d,
		typeIndex: memoryTypeIndex,
		data:      make([]byte, size),
	}, nil
}

type Buffer struct {
	*handle
	device *Device
	size   uint64
	usage  driver.BufferUsage
	memory *Memory
}

func (b *Buffer) Size() uint64 {
	return b.size
}

func (b *Buffer) Usage() driver.BufferUsage {
	return b.usage
}

func (b *Buffer) MemoryRequirements() driver.MemoryRequirements {
	b.use("buffer memory requirements")
	return driver.MemoryRequirements{Size: b.size, TypeBits: b.device.gpu.config.BufferTypeBits}
}

func (b *Buffer) BindMemory(memory driver.Memory) error {
	if !b.use("bind buffer memory") {
		return errDestroyed
	}
	if err := b.sim.fail("BindBufferMemory"); err != nil {
		return err
	}
	m := memory.(*Memory)
	m.use("bind buffer memory")
	if b.memory != nil {
		b.sim.violate("%s bound twice", b)
	}
	checkBinding(b.handle, m, b.MemoryRequirements())
	b.memory = m
	m.bound = append(m.bound, b)
	return nil
}

func checkBinding(h *handle, m *Memory, req driver.MemoryRequirements) {
	if req.TypeBits&(1<<m.typeIndex) == 0 {
		h.sim.violate("%s bound to %s of disallowed type %d", h, m, m.typeIndex)
	}
	if uint64(len(m.data)) < req.Size {
		h.sim.violate("%s needs %d bytes, %s has %d", h, req.Size, m, len(m.data))
	}
}

func (b *Buffer) Destroy() {
	if b.device.graphics.usesBuffer(b) || b.device.present.usesBuffer(b) {
		b.sim.violate("destroy of %s in use by pending work", b)
	}
	b.destroy()
}

type Memory struct {
	*handle
	device    *Device
	typeIndex uint32
	data      []byte
	mapped    bool
	bound     []*Buffer
}

func (m *Memory) Map(offset, size uint64) ([]byte, error) {
	if !m.use("map") {
		return nil, errDestroyed
	}
	if err := m.sim.fail("Map"); err != nil {
		return nil, err
	}
	props := m.device.gpu.config.MemoryTypes[m.typeIndex].Properties
	if props&driver.MemoryPropertyHostVisible == 0 {
		m.sim.violate("map of %s which is not host visible", m)
	}
	if m.mapped {
		m.sim.violate("%s mapped twice", m)
	}
	if offset+size > uint64(len(m.data)) {
		return nil, errors.Errorf("map range %d+%d exceeds %d bytes", offset, size, len(m.data))
	}
	if m.device.graphics.inFlight(m) || m.device.present.inFlight(m) {
		m.sim.violate("host access to %s while pending work uses it", m)
	}
	m.mapped = true
	m.sim.record(Event{Op: "map", Object: m.String()})
	return m.data[offset : offset+size : offset+size], nil
}

func (m *Memory) Unmap() {
	m.use("unmap")
	if !m.mapped {
		m.sim.violate("unmap of %s which is not mapped", m)
	}
	m.mapped = false
	m.sim.record(Event{Op: "unmap", Object: m.String()})
}

func (m *Memory) Free() {
	if m.mapped {
		m.sim.violate("free of mapped %s", m)
	}
	for _, b := range m.bound {
		if !b.destroyed {
			m.sim.violate("free of %s while %s is still bound", m, b)
		}
	}
	m.destroy()
}

func (d *Device) CreateImage(config driver.ImageConfig) (driver.Image, error) {
	if err := d.create("CreateImage"); err != nil {
		return nil, err
	}
	if config.Extent.Width == 0 || config.Extent.Height == 0 {
		return nil, errors.New("zero sized image")
	}
	return &Image{handle: d.sim.newHandle("image", d.handle), device: d, config: config}, nil
}

type Image struct {
	*handle
	device    *Device
	config    driver.ImageConfig
	swapchain *Swapchain
	memory    *Memory
}

func (i *Image) MemoryRequirements() driver.MemoryRequirements {
	i.use("image memory requirements")
	size := uint64(i.config.Extent.Width) * uint64(i.config.Extent.Height) * 4
	return driver.MemoryRequirements{Size: size, TypeBits: i.device.gpu.config.ImageTypeBits}
}

func (i *Image) BindMemory(memory driver.Memory) error {
	if !i.use("bind image memory") {
		return errDestroyed
	}
	m := memory.(*Memory)
	m.use("bind image memory")
	if i.swapchain != nil {
		i.sim.violate("bind memory to swapchain owned %s", i)
	}
	checkBinding(i.handle, m, i.MemoryRequirements())
	i.memory = m
	return nil
}

func (i *Image) Destroy() {
	if i.swapchain != nil {
		i.sim.violate("destroy of swapchain owned %s", i)
		return
	}
	i.destroy()
}

func (d *Device) CreateImageView(image driver.Image, format driver.Format, aspect driver.ImageAspect) (driver.ImageView, error) {
	if err := d.create("CreateImageView"); err != nil {
		return nil, err
	}
	img := image.(*Image)
	if !img.use("create image view") {
		return nil, errDestroyed
	}
	if img.swapchain == nil && img.memory == nil {
		d.sim.violate("view of %s without memory", img)
	}
	return &ImageView{handle: d.sim.newHandle("view", d.handle), image: img, format: format, aspect: aspect}, nil
}

type ImageView struct {
	*handle
	image  *Image
	format driver.Format
	aspect driver.ImageAspect
}

func (v *ImageView) Destroy() {
	v.destroy()
}

func (d *Device) CreateSwapchain(config driver.SwapchainConfig) (driver.Swapchain, error) {
	if err := d.create("CreateSwapchain"); err != nil {
		return nil, err
	}
	surface := config.Surface.(*Surface)
	if !surface.use("create swapchain") {
		return nil, errDestroyed
	}
	caps := d.gpu.config.Surface.Capabilities
	count := config.MinImageCount
	if count < caps.MinImageCount {
		d.sim.violate("swapchain with %d images below minimum %d", count, caps.MinImageCount)
	}
	if caps.MaxImageCount > 0 && count > caps.MaxImageCount {
		d.sim.violate("swapchain with %d images above maximum %d", count, caps.MaxImageCount)
	}
	sc := &Swapchain{
		handle:  d.sim.newHandle("swapchain", d.handle),
		device:  d,
		config:  config,
		surface: surface,
	}
	sc.images = make([]*Image, count)
	sc.acquired = make([]bool, count)
	for t := range sc.images {
		sc.images[t] = &Image{
			handle:    &handle{sim: d.sim, kind: "swapimage", id: t},
			device:    d,
			config:    driver.ImageConfig{Extent: config.Extent, Format: config.Format.Format},
			swapchain: sc,
		}
	}
	return sc, nil
}

type Swapchain struct {
	*handle
	device   *Device
	config   driver.SwapchainConfig
	surface  *Surface
	images   []*Image
	acquired []bool
	next     int
}

// Config returns the configuration the swapchain was created with.
func (s *Swapchain) Config() driver.SwapchainConfig {
	return s.config
}

func (s *Swapchain) Images() ([]driver.Image, error) {
	if !s.use("get swapchain images") {
		return nil, errDestroyed
	}
	images := make([]driver.Image, len(s.images))
	for t, img := range s.images {
		images[t] = img
	}
	return images, nil
}

func (s *Swapchain) AcquireNextImage(timeout uint64, signal driver.Semaphore) (uint32, error) {
	if !s.use("acquire") {
		return 0, errDestroyed
	}
	if err := s.sim.fail("AcquireNextImage"); err != nil {
		return 0, err
	}

	index := -1
	if len(s.sim.acquire) > 0 {
		index = int(s.sim.acquire[0])
		s.sim.acquire = s.sim.acquire[1:]
		if index >= len(s.images) {
			return 0, errors.Errorf("scripted image %d out of range", index)
		}
		if s.acquired[index] {
			s.sim.violate("scripted image %d is still acquired", index)
		}
	} else {
		for t := 0; t < len(s.images); t++ {
			candidate := (s.next + t) % len(s.images)
			if !s.acquired[candidate] {
				index = candidate
				break
			}
		}
		if index < 0 {
			return 0, driver.ErrTimeout
		}
		s.next = (index + 1) % len(s.images)
	}

	signal.(*Semaphore).signal("acquire")
	s.acquired[index] = true
	s.sim.record(Event{Op: "acquire", Object: s.String(), Detail: imageDetail(uint32(index))})
	return uint32(index), nil
}

func (s *Swapchain) Destroy() {
	for _, img := range s.images {
		img.release()
	}
	s.destroy()
}

func (d *Device) CreateRenderPass(colorFormat, depthFormat driver.Format) (driver.RenderPass, error) {
	if err := d.create("CreateRenderPass"); err != nil {
		return nil, err
	}
	return &RenderPass{handle: d.sim.newHandle("renderpass", d.handle), color: colorFormat, depth: depthFormat}, nil
}

type RenderPass struct {
	*handle
	color driver.Format
	depth driver.Format
}

func (r *RenderPass) Destroy() {
	r.destroy()
}

func (d *Device) CreateFramebuffer(pass driver.RenderPass, attachments []driver.ImageView, extent driver.Extent) (driver.Framebuffer, error) {
	if err := d.create("CreateFramebuffer"); err != nil {
		return nil, err
	}
	pass.(*RenderPass).use("create framebuffer")
	for _, a := range attachments {
		a.(*ImageView).use("create framebuffer")
	}
	return &Framebuffer{handle: d.sim.newHandle("framebuffer", d.handle), extent: extent}, nil
}

type Framebuffer struct {
	*handle
	extent driver.Extent
}

func (f *Framebuffer) Destroy() {
	f.destroy()
}

func (d *Device) CreateDescriptorSetLayout() (driver.DescriptorSetLayout, error) {
	if err := d.create("CreateDescriptorSetLayout"); err != nil {
		return nil, err
	}
	return &DescriptorSetLayout{handle: d.sim.newHandle("setlayout", d.handle)}, nil
}

type DescriptorSetLayout struct {
	*handle
}

func (l *DescriptorSetLayout) Destroy() {
	l.destroy()
}

func (d *Device) CreateDescriptorPool(maxSets int) (driver.DescriptorPool, error) {
	if err := d.create("CreateDescriptorPool"); err != nil {
		return nil, err
	}
	return &DescriptorPool{handle: d.sim.newHandle("descpool", d.handle), maxSets: maxSets}, nil
}

type DescriptorPool struct {
	*handle
	maxSets int
	sets    []*DescriptorSet
}

func (p *DescriptorPool) Allocate(layout driver.DescriptorSetLayout, count int) ([]driver.DescriptorSet, error) {
	if !p.use("allocate descriptor sets") {
		return nil, errDestroyed
	}
	layout.(*DescriptorSetLayout).use("allocate descriptor sets")
	if len(p.sets)+count > p.maxSets {
		return nil, errOutOfPoolMemory
	}
	sets := make([]driver.DescriptorSet, count)
	for t := range sets {
		set := &DescriptorSet{pool: p, buffers: map[uint32]*Buffer{}}
		p.sets = append(p.sets, set)
		sets[t] = set
	}
	return sets, nil
}

func (p *DescriptorPool) Destroy() {
	p.destroy()
}

type DescriptorSet struct {
	pool    *DescriptorPool
	buffers map[uint32]*Buffer
}

func (s *DescriptorSet) BindUniformBuffer(binding uint32, buffer driver.Buffer, size uint64) {
	s.pool.use("update descriptor set")
	b := buffer.(*Buffer)
	b.use("update descriptor set")
	if b.usage&driver.BufferUsageUniform == 0 {
		s.pool.sim.violate("%s bound as uniform buffer without uniform usage", b)
	}
	if size > b.size {
		s.pool.sim.violate("descriptor range %d exceeds %s size %d", size, b, b.size)
	}
	s.buffers[binding] = b
}

// Buffer returns the buffer bound at binding, for assertions.
func (s *DescriptorSet) Buffer(binding uint32) driver.Buffer {
	if b, ok := s.buffers[binding]; ok {
		return b
	}
	return nil
}

func (d *Device) CreateShaderModule(code []byte) (driver.ShaderModule, error) {
	if err := d.create("CreateShaderModule"); err != nil {
		return nil, err
	}
	if len(code) == 0 || len(code)%4 != 0 {
		return nil, errors.Errorf("invalid shader code size %d", len(code))
	}
	return &ShaderModule{handle: d.sim.newHandle("shader", d.handle)}, nil
}

type ShaderModule struct {
	*handle
}

func (s *ShaderModule) Destroy() {
	s.destroy()
}

func (d *Device) CreatePipelineLayout(setLayout driver.DescriptorSetLayout) (driver.PipelineLayout, error) {
	if err := d.create("CreatePipelineLayout"); err != nil {
		return nil, err
	}
	setLayout.(*DescriptorSetLayout).use("create pipeline layout")
	return &PipelineLayout{handle: d.sim.newHandle("pipelinelayout", d.handle)}, nil
}

type PipelineLayout struct {
	*handle
}

func (l *PipelineLayout) Destroy() {
	l.destroy()
}

func (d *Device) CreateGraphicsPipeline(config driver.GraphicsPipelineConfig) (driver.Pipeline, error) {
	if err := d.create("CreateGraphicsPipeline"); err != nil {
		return nil, err
	}
	config.VertexShader.(*ShaderModule).use("create pipeline")
	config.FragmentShader.(*ShaderModule).use("create pipeline")
	config.Layout.(*PipelineLayout).use("create pipeline")
	config.RenderPass.(*RenderPass).use("create pipeline")
	return &Pipeline{handle: d.sim.newHandle("pipeline", d.handle), config: config}, nil
}

type Pipeline struct {
	*handle
	config driver.GraphicsPipelineConfig
}

func (p *Pipeline) Destroy() {
	p.destroy()
}
