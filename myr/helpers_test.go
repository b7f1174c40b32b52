package myr

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/perlw/myrcube/driver/drivertest"
	"github.com/perlw/myrcube/logger"
)

type testWindow struct {
	width, height int
}

func (w testWindow) Handle() uintptr {
	return 1
}

func (w testWindow) FramebufferSize() (int, int) {
	return w.width, w.height
}

// writeShaders puts placeholder SPIR-V in a temporary directory.
func writeShaders(t *testing.T) string {
	dir := t.TempDir()
	code := []byte{0x03, 0x02, 0x23, 0x07, 0, 0, 1, 0}
	for _, name := range []string{vertexShaderFile, fragmentShaderFile} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), code, 0o644))
	}
	return dir
}

func testOptions(t *testing.T, framesInFlight int) Options {
	return Options{
		FramesInFlight: framesInFlight,
		ShaderDir:      writeShaders(t),
		CameraSpeed:    1,
		AngleSpeed:     0.01,
	}
}

// newTestEngine initializes an engine on a fake instance with a manual
// clock advancing 16ms per Update.
func newTestEngine(t *testing.T, framesInFlight int) (*Myr, *drivertest.Instance) {
	return newTestEngineOn(t, framesInFlight, drivertest.NewInstance())
}

func newTestEngineOn(t *testing.T, framesInFlight int, instance *drivertest.Instance) (*Myr, *drivertest.Instance) {
	m := New(testOptions(t, framesInFlight), instance, logger.Discard())
	var clock time.Duration
	m.now = func() time.Duration {
		clock += 16 * time.Millisecond
		return clock
	}
	require.NoError(t, m.Init(testWindow{800, 600}))
	return m, instance
}

// gpuWithImages is the default fake GPU with a surface that yields exactly
// images swapchain images.
func gpuWithImages(images uint32) drivertest.GPUConfig {
	gpu := drivertest.DefaultGPU()
	gpu.Surface.Capabilities.MinImageCount = images - 1
	gpu.Surface.Capabilities.MaxImageCount = images
	return gpu
}

// newTestContext creates a device on the default fake GPU.
func newTestContext(t *testing.T) (*GraphicsContext, *drivertest.Instance) {
	instance := drivertest.NewInstance()
	surface, err := CreateSurface(instance, testWindow{800, 600})
	require.NoError(t, err)
	ctx, err := NewGraphicsContext(instance, surface, logger.Discard())
	require.NoError(t, err)
	return ctx, instance
}
