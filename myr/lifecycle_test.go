package myr

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/perlw/myrcube/logger"
)

func TestTeardownOrder(t *testing.T) {
	lc := NewLifecycle(logger.Discard())
	var order []string
	own := func(stage Stage, name string) {
		lc.Own(stage, name, func() { order = append(order, name) })
	}

	// Registered in creation order, which is not teardown order.
	own(StageInstance, "instance")
	own(StageSurface, "surface")
	own(StageDevice, "device")
	own(StageSwapchain, "swapchain")
	own(StageFramebuffers, "render pass")
	own(StageDescriptors, "set layout")
	own(StagePipeline, "pipeline")
	own(StageCommandPool, "command pool")
	own(StageBuffers, "vertex")
	own(StageBuffers, "index")
	own(StageBuffers, "uniform")
	own(StageDescriptors, "descriptor pool")
	own(StageDepth, "depth")
	own(StageCommandPool, "command buffers")
	own(StageSync, "sync")
	assert.Equal(t, 15, lc.Pending())

	idled := false
	err := lc.Teardown(func() error {
		assert.Empty(t, order)
		idled = true
		return nil
	})
	assert.NoError(t, err)
	assert.True(t, idled)
	assert.Equal(t, []string{
		"sync",
		"uniform", "index", "vertex",
		"depth",
		"command buffers", "command pool",
		"pipeline",
		"render pass",
		"swapchain",
		"descriptor pool", "set layout",
		"surface",
		"device",
		"instance",
	}, order)
	assert.Zero(t, lc.Pending())

	// Nothing runs twice.
	assert.NoError(t, lc.Teardown(nil))
	assert.Len(t, order, 15)
}

func TestTeardownAfterFailedIdle(t *testing.T) {
	lc := NewLifecycle(logger.Discard())
	released := 0
	lc.Own(StageDevice, "device", func() { released++ })
	lc.Own(StageInstance, "instance", func() { released++ })

	err := lc.Teardown(func() error { return errors.New("device lost") })
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "device lost")
	assert.Equal(t, 2, released)
}

func TestStageString(t *testing.T) {
	assert.Equal(t, "command pool", StageCommandPool.String())
	assert.Equal(t, "instance", StageInstance.String())
	assert.Equal(t, "unknown", Stage(-1).String())
}

func TestErrorCodes(t *testing.T) {
	kinds := map[Code]Kind{
		SwapchainOutOfDate:   RuntimeFailure,
		AcquireFailed:        RuntimeFailure,
		SubmitFailed:         RuntimeFailure,
		PresentFailed:        RuntimeFailure,
		WaitFailed:           RuntimeFailure,
		MapFailed:            RuntimeFailure,
		SurfaceIncompatible:  ResourceExhaustion,
		NoSuitableMemoryType: ResourceExhaustion,
		NoDiscreteGPU:        ResourceExhaustion,
		NoDepthFormat:        ResourceExhaustion,
		AllocationFailed:     CreationFailure,
		CreationFailed:       CreationFailure,
		FileNotFound:         CreationFailure,
		ReadError:            CreationFailure,
	}
	for code, kind := range kinds {
		assert.Equal(t, kind, code.Kind(), code.Error())
	}

	cause := errors.New("timeout")
	err := errors.Wrap(fail("wait for frame slot", WaitFailed, cause), "render")
	assert.True(t, errors.Is(err, WaitFailed))
	assert.False(t, errors.Is(err, SubmitFailed))
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "render: wait for frame slot: wait failed: timeout", err.Error())

	code, ok := CodeOf(err)
	assert.True(t, ok)
	assert.Equal(t, WaitFailed, code)
	_, ok = CodeOf(cause)
	assert.False(t, ok)

	assert.Equal(t, "pick gpu: no discrete gpu", fail("pick gpu", NoDiscreteGPU, nil).Error())
	assert.Equal(t, "runtime failure", RuntimeFailure.String())
}
