package pompeii

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	vk "github.com/vulkan-go/vulkan"

	"github.com/perlw/myrcube/driver"
)

func TestFormatRoundTrip(t *testing.T) {
	for f := range formats {
		if f == driver.FormatUndefined {
			continue
		}
		got, ok := driverFormat(vkFormat(f))
		assert.True(t, ok)
		assert.Equal(t, f, got)
	}

	_, ok := driverFormat(vk.FormatUndefined)
	assert.False(t, ok)
	_, ok = driverFormat(vk.FormatR8Unorm)
	assert.False(t, ok)
}

func TestPresentModes(t *testing.T) {
	mode, ok := driverPresentMode(vk.PresentModeMailbox)
	assert.True(t, ok)
	assert.Equal(t, driver.PresentModeMailbox, mode)
}

func TestBufferUsage(t *testing.T) {
	got := bufferUsage(driver.BufferUsageTransferDst | driver.BufferUsageVertex)
	assert.Equal(t, vk.BufferUsageFlags(vk.BufferUsageTransferDstBit|vk.BufferUsageVertexBufferBit), got)
	assert.Equal(t, vk.BufferUsageFlags(0), bufferUsage(0))
}

func TestMemoryProperties(t *testing.T) {
	flags := vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit)
	assert.Equal(t, driver.MemoryPropertyHostVisible|driver.MemoryPropertyHostCoherent, memoryProperties(flags))
}

func TestPipelineStages(t *testing.T) {
	stages := pipelineStages([]driver.PipelineStage{driver.PipelineStageColorAttachmentOutput})
	assert.Equal(t, []vk.PipelineStageFlags{vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)}, stages)
}

func TestCheck(t *testing.T) {
	assert.NoError(t, check(vk.Success, "noop"))
	assert.True(t, errors.Is(check(vk.ErrorOutOfDate, "acquire"), driver.ErrOutOfDate))
	assert.True(t, errors.Is(check(vk.ErrorDeviceLost, "submit"), driver.ErrDeviceLost))
	assert.True(t, errors.Is(check(vk.Timeout, "wait"), driver.ErrTimeout))

	err := check(vk.ErrorOutOfDeviceMemory, "allocate memory")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "allocate memory")
}

func TestVkString(t *testing.T) {
	assert.Equal(t, "\x00", vkString(""))
	assert.Equal(t, "main\x00", vkString("main"))
	assert.Equal(t, "main\x00", vkString("main\x00"))
}
