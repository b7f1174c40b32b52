package myr

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/perlw/myrcube/driver"
	"github.com/perlw/myrcube/logger"
)

const (
	vertexShaderFile   = "vertex.spv"
	fragmentShaderFile = "fragment.spv"
)

func LoadShader(path string) ([]byte, error) {
	code, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, fail("load shader", FileNotFound, err)
	case err != nil:
		return nil, fail("load shader", ReadError, err)
	}
	return code, nil
}

// NewDescriptorSetLayout describes the single uniform buffer at binding 0
// read by the vertex stage.
func NewDescriptorSetLayout(ctx *GraphicsContext) (driver.DescriptorSetLayout, error) {
	layout, err := ctx.Device.CreateDescriptorSetLayout()
	if err != nil {
		return nil, fail("create descriptor set layout", CreationFailed, err)
	}
	return layout, nil
}

// PipelineState is the one graphics pipeline and its layout. It is bound to
// the render pass and swapchain extent it was built with.
type PipelineState struct {
	Layout   driver.PipelineLayout
	Pipeline driver.Pipeline

	ctx       *GraphicsContext
	shaderDir string
	setLayout driver.DescriptorSetLayout
	log       logger.Logger
}

func NewPipelineState(ctx *GraphicsContext, shaderDir string, setLayout driver.DescriptorSetLayout, pass driver.RenderPass, extent driver.Extent, log logger.Logger) (*PipelineState, error) {
	p := PipelineState{
		ctx:       ctx,
		shaderDir: shaderDir,
		setLayout: setLayout,
		log:       log,
	}

	var err error
	p.Layout, err = ctx.Device.CreatePipelineLayout(setLayout)
	if err != nil {
		return nil, fail("create pipeline layout", CreationFailed, err)
	}
	if err := p.build(pass, extent); err != nil {
		p.Destroy()
		return nil, err
	}
	return &p, nil
}

func (p *PipelineState) build(pass driver.RenderPass, extent driver.Extent) error {
	vertex, err := p.shaderModule(vertexShaderFile)
	if err != nil {
		return err
	}
	defer vertex.Destroy()
	fragment, err := p.shaderModule(fragmentShaderFile)
	if err != nil {
		return err
	}
	defer fragment.Destroy()

	p.Pipeline, err = p.ctx.Device.CreateGraphicsPipeline(driver.GraphicsPipelineConfig{
		VertexShader:   vertex,
		FragmentShader: fragment,
		Layout:         p.Layout,
		RenderPass:     pass,
		Extent:         extent,
		VertexStride:   VertexStride,
		Attributes:     VertexAttributes(),
	})
	if err != nil {
		return fail("create graphics pipeline", CreationFailed, err)
	}
	return nil
}

func (p *PipelineState) shaderModule(name string) (driver.ShaderModule, error) {
	code, err := LoadShader(filepath.Join(p.shaderDir, name))
	if err != nil {
		return nil, err
	}
	module, err := p.ctx.Device.CreateShaderModule(code)
	if err != nil {
		return nil, fail("create shader module", CreationFailed, errors.Wrap(err, name))
	}
	return module, nil
}

// Rebuild replaces the pipeline for a new render pass or extent. The device
// must be idle and command buffers recorded against the old pipeline must
// be re-recorded.
func (p *PipelineState) Rebuild(pass driver.RenderPass, extent driver.Extent) error {
	if p.Pipeline != nil {
		p.Pipeline.Destroy()
		p.Pipeline = nil
	}
	return p.build(pass, extent)
}

func (p *PipelineState) Destroy() {
	if p.Pipeline != nil {
		p.Pipeline.Destroy()
		p.Pipeline = nil
	}
	if p.Layout != nil {
		p.Layout.Destroy()
		p.Layout = nil
	}
}
