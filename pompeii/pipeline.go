package pompeii

import (
	"unsafe"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"

	"github.com/perlw/myrcube/driver"
)

type ShaderModule struct {
	logicalDevice vk.Device
	module        vk.ShaderModule
}

// CreateShaderModule wraps SPIR-V code, which has to be a whole number of
// 32-bit words.
func (d *Device) CreateShaderModule(code []byte) (driver.ShaderModule, error) {
	if len(code) == 0 || len(code)%4 != 0 {
		return nil, errors.Errorf("create shader module: code size %d is not a multiple of 4", len(code))
	}

	s := ShaderModule{
		logicalDevice: d.Handle(),
	}

	words := make([]uint32, len(code)/4)
	copy(unsafe.Slice((*byte)(unsafe.Pointer(&words[0])), len(code)), code)
	moduleInfo := vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(code)),
		PCode:    words,
	}
	if err := check(vk.CreateShaderModule(d.Handle(), &moduleInfo, nil, &s.module), "create shader module"); err != nil {
		return nil, err
	}

	return &s, nil
}

func (s *ShaderModule) Destroy() {
	if s.module != vk.NullShaderModule {
		vk.DestroyShaderModule(s.logicalDevice, s.module, nil)
		s.module = vk.NullShaderModule
	}
}

type PipelineLayout struct {
	logicalDevice vk.Device
	layout        vk.PipelineLayout
}

func (d *Device) CreatePipelineLayout(setLayout driver.DescriptorSetLayout) (driver.PipelineLayout, error) {
	l := PipelineLayout{
		logicalDevice: d.Handle(),
	}

	layoutInfo := vk.PipelineLayoutCreateInfo{
		SType:          vk.StructureTypePipelineLayoutCreateInfo,
		SetLayoutCount: 1,
		PSetLayouts:    []vk.DescriptorSetLayout{setLayout.(*DescriptorSetLayout).layout},
	}
	if err := check(vk.CreatePipelineLayout(d.Handle(), &layoutInfo, nil, &l.layout), "create pipeline layout"); err != nil {
		return nil, err
	}

	return &l, nil
}

func (l *PipelineLayout) Destroy() {
	if l.layout != vk.NullPipelineLayout {
		vk.DestroyPipelineLayout(l.logicalDevice, l.layout, nil)
		l.layout = vk.NullPipelineLayout
	}
}

type Pipeline struct {
	logicalDevice vk.Device
	pipeline      vk.Pipeline
}

// CreateGraphicsPipeline bakes the viewport and scissor for config.Extent,
// so the pipeline is rebuilt whenever the swapchain extent changes.
func (d *Device) CreateGraphicsPipeline(config driver.GraphicsPipelineConfig) (driver.Pipeline, error) {
	p := Pipeline{
		logicalDevice: d.Handle(),
	}

	stages := []vk.PipelineShaderStageCreateInfo{
		{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vk.ShaderStageVertexBit,
			Module: config.VertexShader.(*ShaderModule).module,
			PName:  vkString("main"),
		},
		{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vk.ShaderStageFragmentBit,
			Module: config.FragmentShader.(*ShaderModule).module,
			PName:  vkString("main"),
		},
	}

	attributes := make([]vk.VertexInputAttributeDescription, len(config.Attributes))
	for t, a := range config.Attributes {
		attributes[t] = vk.VertexInputAttributeDescription{
			Location: a.Location,
			Binding:  0,
			Format:   vkFormat(a.Format),
			Offset:   a.Offset,
		}
	}
	vertexInput := vk.PipelineVertexInputStateCreateInfo{
		SType:                         vk.StructureTypePipelineVertexInputStateCreateInfo,
		VertexBindingDescriptionCount: 1,
		PVertexBindingDescriptions: []vk.VertexInputBindingDescription{
			{
				Binding:   0,
				Stride:    config.VertexStride,
				InputRate: vk.VertexInputRateVertex,
			},
		},
		VertexAttributeDescriptionCount: uint32(len(attributes)),
		PVertexAttributeDescriptions:    attributes,
	}

	inputAssembly := vk.PipelineInputAssemblyStateCreateInfo{
		SType:                  vk.StructureTypePipelineInputAssemblyStateCreateInfo,
		Topology:               vk.PrimitiveTopologyTriangleList,
		PrimitiveRestartEnable: vk.False,
	}

	viewportState := vk.PipelineViewportStateCreateInfo{
		SType:         vk.StructureTypePipelineViewportStateCreateInfo,
		ViewportCount: 1,
		PViewports: []vk.Viewport{
			{
				Width:    float32(config.Extent.Width),
				Height:   float32(config.Extent.Height),
				MinDepth: 0,
				MaxDepth: 1,
			},
		},
		ScissorCount: 1,
		PScissors: []vk.Rect2D{
			{
				Offset: vk.Offset2D{X: 0, Y: 0},
				Extent: extent2D(config.Extent),
			},
		},
	}

	rasterizer := vk.PipelineRasterizationStateCreateInfo{
		SType:                   vk.StructureTypePipelineRasterizationStateCreateInfo,
		DepthClampEnable:        vk.False,
		RasterizerDiscardEnable: vk.False,
		PolygonMode:             vk.PolygonModeFill,
		CullMode:                vk.CullModeFlags(vk.CullModeBackBit),
		FrontFace:               vk.FrontFaceCounterClockwise,
		DepthBiasEnable:         vk.False,
		LineWidth:               1,
	}

	multisampling := vk.PipelineMultisampleStateCreateInfo{
		SType:                vk.StructureTypePipelineMultisampleStateCreateInfo,
		RasterizationSamples: vk.SampleCount1Bit,
		SampleShadingEnable:  vk.False,
		MinSampleShading:     1,
	}

	depthStencil := vk.PipelineDepthStencilStateCreateInfo{
		SType:                 vk.StructureTypePipelineDepthStencilStateCreateInfo,
		DepthTestEnable:       vk.True,
		DepthWriteEnable:      vk.True,
		DepthCompareOp:        vk.CompareOpLess,
		DepthBoundsTestEnable: vk.False,
		StencilTestEnable:     vk.False,
		MinDepthBounds:        0,
		MaxDepthBounds:        1,
	}

	colorBlending := vk.PipelineColorBlendStateCreateInfo{
		SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
		LogicOpEnable:   vk.False,
		LogicOp:         vk.LogicOpCopy,
		AttachmentCount: 1,
		PAttachments: []vk.PipelineColorBlendAttachmentState{
			{
				ColorWriteMask: vk.ColorComponentFlags(
					vk.ColorComponentRBit |
						vk.ColorComponentGBit |
						vk.ColorComponentBBit |
						vk.ColorComponentABit,
				),
				BlendEnable: vk.False,
			},
		},
	}

	pipelineInfo := vk.GraphicsPipelineCreateInfo{
		SType:               vk.StructureTypeGraphicsPipelineCreateInfo,
		StageCount:          uint32(len(stages)),
		PStages:             stages,
		PVertexInputState:   &vertexInput,
		PInputAssemblyState: &inputAssembly,
		PViewportState:      &viewportState,
		PRasterizationState: &rasterizer,
		PMultisampleState:   &multisampling,
		PDepthStencilState:  &depthStencil,
		PColorBlendState:    &colorBlending,
		Layout:              config.Layout.(*PipelineLayout).layout,
		RenderPass:          config.RenderPass.(*RenderPass).renderPass,
		Subpass:             0,
		BasePipelineHandle:  vk.Pipeline(vk.NullHandle),
		BasePipelineIndex:   -1,
	}

	pipelines := make([]vk.Pipeline, 1)
	if err := check(vk.CreateGraphicsPipelines(d.Handle(), vk.PipelineCache(vk.NullHandle), 1, []vk.GraphicsPipelineCreateInfo{pipelineInfo}, nil, pipelines), "create graphics pipeline"); err != nil {
		return nil, err
	}
	p.pipeline = pipelines[0]

	return &p, nil
}

func (p *Pipeline) Destroy() {
	if p.pipeline != vk.NullPipeline {
		vk.DestroyPipeline(p.logicalDevice, p.pipeline, nil)
		p.pipeline = vk.NullPipeline
	}
}
