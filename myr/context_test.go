package myr

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perlw/myrcube/driver"
	"github.com/perlw/myrcube/driver/drivertest"
	"github.com/perlw/myrcube/logger"
)

func TestPickGPU(t *testing.T) {
	integrated := drivertest.DefaultGPU()
	integrated.Name = "Fake Integrated"
	integrated.Type = driver.GPUTypeIntegrated

	noSwapchain := drivertest.DefaultGPU()
	noSwapchain.Name = "Fake Headless"
	noSwapchain.Extensions = nil

	split := drivertest.DefaultGPU()
	split.Name = "Fake Split"
	split.QueueFamilies = []driver.QueueFamily{
		{Index: 0, Graphics: true},
		{Index: 1, Present: true},
		{Index: 2, Graphics: true, Present: true},
	}

	instance := drivertest.NewInstance(integrated, noSwapchain, split)
	surface, err := CreateSurface(instance, testWindow{800, 600})
	require.NoError(t, err)

	ctx, err := NewGraphicsContext(instance, surface, logger.Discard())
	require.NoError(t, err)
	assert.Equal(t, "Fake Split", ctx.GPU.Name())
	// A family doing both wins over a split pair.
	assert.Equal(t, 2, ctx.GraphicsFamily)
	assert.Equal(t, 2, ctx.PresentFamily)
	assert.Equal(t, []int{2}, ctx.Families())
	assert.Len(t, ctx.MemoryTypes, 3)

	require.NoError(t, ctx.WaitIdle())
	ctx.Destroy()
	surface.Destroy()
	instance.Destroy()
	assert.Empty(t, instance.Violations())
}

func TestNoDiscreteGPU(t *testing.T) {
	integrated := drivertest.DefaultGPU()
	integrated.Type = driver.GPUTypeIntegrated
	instance := drivertest.NewInstance(integrated)
	surface, err := CreateSurface(instance, testWindow{800, 600})
	require.NoError(t, err)

	_, err = NewGraphicsContext(instance, surface, logger.Discard())
	assert.True(t, errors.Is(err, NoDiscreteGPU))
	code, ok := CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, ResourceExhaustion, code.Kind())
}

func TestCreateSurfaceFailure(t *testing.T) {
	instance := drivertest.NewInstance()
	instance.FailNext("CreateWindowSurface", errors.New("no display"))

	_, err := CreateSurface(instance, testWindow{800, 600})
	assert.True(t, errors.Is(err, CreationFailed))
	assert.Contains(t, err.Error(), "no display")
}

func TestFindDepthFormat(t *testing.T) {
	gpu := drivertest.DefaultGPU()
	instance := drivertest.NewInstance(gpu)
	gpus, err := instance.EnumerateGPUs()
	require.NoError(t, err)

	format, err := FindDepthFormat(gpus[0])
	require.NoError(t, err)
	assert.Equal(t, driver.FormatD32Sfloat, format)

	gpu.DepthFormats = []driver.Format{driver.FormatD24UnormS8Uint}
	gpus, err = drivertest.NewInstance(gpu).EnumerateGPUs()
	require.NoError(t, err)
	format, err = FindDepthFormat(gpus[0])
	require.NoError(t, err)
	assert.Equal(t, driver.FormatD24UnormS8Uint, format)

	gpu.DepthFormats = nil
	gpus, err = drivertest.NewInstance(gpu).EnumerateGPUs()
	require.NoError(t, err)
	_, err = FindDepthFormat(gpus[0])
	assert.True(t, errors.Is(err, NoDepthFormat))
}

func TestRenderTargetsRebuild(t *testing.T) {
	ctx, instance := newTestContext(t)
	surface, err := CreateSurface(instance, testWindow{800, 600})
	require.NoError(t, err)
	s, err := NewSwapchain(ctx, surface, testWindow{800, 600}, logger.Discard())
	require.NoError(t, err)

	targets, err := NewRenderTargetSet(ctx, s.Format.Format, logger.Discard())
	require.NoError(t, err)
	err = targets.CreateFramebuffers(s.Views, s.Extent)
	assert.True(t, errors.Is(err, CreationFailed))

	require.NoError(t, targets.CreateDepth(s.Extent))
	require.NoError(t, targets.CreateFramebuffers(s.Views, s.Extent))
	assert.Len(t, targets.Framebuffers, 3)
	first := targets.Framebuffers[0]

	require.NoError(t, targets.Rebuild(s))
	assert.Len(t, targets.Framebuffers, 3)
	assert.NotSame(t, first, targets.Framebuffers[0])

	targets.DestroyDepth()
	targets.DestroyFramebuffers()
	assert.Nil(t, targets.RenderPass)
	s.Destroy()
	assert.Empty(t, instance.Violations())
}

func TestLoadShader(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadShader(filepath.Join(dir, "missing.spv"))
	assert.True(t, errors.Is(err, FileNotFound))

	// A directory reads as an error other than not found.
	_, err = LoadShader(dir)
	assert.True(t, errors.Is(err, ReadError))

	path := filepath.Join(dir, "vertex.spv")
	require.NoError(t, os.WriteFile(path, []byte{1, 2, 3, 4}, 0o644))
	code, err := LoadShader(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4}, code)
}

func TestPipelineRebuild(t *testing.T) {
	ctx, instance := newTestContext(t)
	layout, err := NewDescriptorSetLayout(ctx)
	require.NoError(t, err)
	pass, err := ctx.Device.CreateRenderPass(driver.FormatB8G8R8A8Unorm, driver.FormatD32Sfloat)
	require.NoError(t, err)

	p, err := NewPipelineState(ctx, writeShaders(t), layout, pass, driver.Extent{Width: 800, Height: 600}, logger.Discard())
	require.NoError(t, err)
	first := p.Pipeline

	require.NoError(t, p.Rebuild(pass, driver.Extent{Width: 1024, Height: 768}))
	assert.NotSame(t, first, p.Pipeline)

	shaders := 0
	for _, e := range instance.Events() {
		if hasKind(e.Object, "shader") {
			shaders++
		}
	}
	// Two modules created and destroyed per build.
	assert.Equal(t, 8, shaders)

	p.Destroy()
	pass.Destroy()
	layout.Destroy()
	assert.Empty(t, instance.Violations())
}

func TestPipelineBadShader(t *testing.T) {
	ctx, instance := newTestContext(t)
	layout, err := NewDescriptorSetLayout(ctx)
	require.NoError(t, err)
	pass, err := ctx.Device.CreateRenderPass(driver.FormatB8G8R8A8Unorm, driver.FormatD32Sfloat)
	require.NoError(t, err)

	dir := writeShaders(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, fragmentShaderFile), []byte{1, 2, 3}, 0o644))

	_, err = NewPipelineState(ctx, dir, layout, pass, driver.Extent{Width: 800, Height: 600}, logger.Discard())
	assert.True(t, errors.Is(err, CreationFailed))

	pass.Destroy()
	layout.Destroy()
	assert.Empty(t, instance.Violations())
}
