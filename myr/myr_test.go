package myr

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perlw/myrcube/driver"
	"github.com/perlw/myrcube/driver/drivertest"
	"github.com/perlw/myrcube/logger"
)

func TestRenderCyclesSlots(t *testing.T) {
	m, instance := newTestEngine(t, 2)

	var slots []int
	for i := 0; i < 5; i++ {
		m.Update()
		require.NoError(t, m.Render())
		slots = append(slots, m.Stats().Slot)
	}
	assert.Equal(t, []int{0, 1, 0, 1, 0}, slots)
	assert.EqualValues(t, 5, m.Stats().Frames)

	require.NoError(t, m.CleanUp())
	assert.Empty(t, instance.Violations())
}

func TestRenderResetsOncePerFrame(t *testing.T) {
	m, instance := newTestEngine(t, 2)
	mark := len(instance.Events())

	for i := 0; i < 4; i++ {
		require.NoError(t, m.Render())
	}

	resets, submits, presents := 0, 0, 0
	for _, e := range instance.Events()[mark:] {
		switch e.Op {
		case "reset":
			resets++
		case "submit":
			submits++
		case "present":
			presents++
		}
	}
	assert.Equal(t, 4, resets)
	assert.Equal(t, 4, submits)
	assert.Equal(t, 4, presents)

	require.NoError(t, m.CleanUp())
	assert.Empty(t, instance.Violations())
}

func TestRenderSlotGrid(t *testing.T) {
	for images := 2; images <= 6; images++ {
		for framesInFlight := 1; framesInFlight <= images; framesInFlight++ {
			t.Run(fmt.Sprintf("N%d/F%d", images, framesInFlight), func(t *testing.T) {
				m, instance := newTestEngineOn(t, framesInFlight, drivertest.NewInstance(gpuWithImages(uint32(images))))
				require.Equal(t, images, m.swapchain.ImageCount())

				frames := 3*images + framesInFlight
				rng := rand.New(rand.NewSource(int64(images*10 + framesInFlight)))
				order := make([]uint32, frames)
				for i := range order {
					order[i] = uint32(rng.Intn(images))
				}
				instance.ScriptAcquire(order...)

				for i := 0; i < frames; i++ {
					slot := i % framesInFlight
					fence := fmt.Sprint(m.scheduler.slots[slot].inFlight)
					mark := len(instance.Events())
					require.NoError(t, m.Render(), "frame %d", i)

					waits, resets := 0, 0
					for _, e := range instance.Events()[mark:] {
						switch {
						case e.Op == "wait" && e.Object == fence:
							waits++
						case e.Op == "reset":
							resets++
							assert.Equal(t, fence, e.Object, "frame %d", i)
						}
					}
					assert.Equal(t, 1, waits, "frame %d", i)
					assert.Equal(t, 1, resets, "frame %d", i)
					assert.Equal(t, slot, m.Stats().Slot, "frame %d", i)
					assert.Equal(t, order[i], m.Stats().Image, "frame %d", i)
				}
				assert.EqualValues(t, frames, m.Stats().Frames)

				require.NoError(t, m.CleanUp())
				assert.Empty(t, instance.Violations())
			})
		}
	}
}

func TestRenderWaitsForImageOwner(t *testing.T) {
	m, instance := newTestEngine(t, 2)
	// Both slots get the same image: the second frame must wait on the
	// first slot's fence before touching the image's uniforms.
	instance.ScriptAcquire(2, 2)

	require.NoError(t, m.Render())
	mark := len(instance.Events())
	require.NoError(t, m.Render())

	var ops []string
	for _, e := range instance.Events()[mark:] {
		if e.Op == "wait" && e.Blocked {
			ops = append(ops, "blocked wait")
			continue
		}
		ops = append(ops, e.Op)
	}
	blocked := indexOf(ops, "blocked wait")
	require.GreaterOrEqual(t, blocked, 0, "events: %v", ops)
	assert.Less(t, indexOf(ops, "acquire"), blocked)
	assert.Less(t, blocked, indexOf(ops, "map"))
	assert.EqualValues(t, 1, m.Stats().AliasWaits)
	assert.EqualValues(t, 2, m.Stats().Image)

	require.NoError(t, m.CleanUp())
	assert.Empty(t, instance.Violations())
}

func indexOf(ops []string, op string) int {
	for i, o := range ops {
		if o == op {
			return i
		}
	}
	return -1
}

func TestRenderWritesUniforms(t *testing.T) {
	m, instance := newTestEngine(t, 1)
	instance.ScriptAcquire(1)

	require.NoError(t, m.Render())

	ubo := m.camera.Uniforms()
	assert.Equal(t, ubo.Bytes(), drivertest.Contents(m.uniforms.Buffers[1].Handle))
	assert.NotEqual(t, ubo.Bytes(), drivertest.Contents(m.uniforms.Buffers[0].Handle))

	require.NoError(t, m.CleanUp())
	assert.Empty(t, instance.Violations())
}

func TestRenderErrors(t *testing.T) {
	m, instance := newTestEngine(t, 2)

	// The frame is submitted before the present fails, so rendering can
	// go on.
	instance.FailNext("Present", errors.New("surface lost"))
	assert.True(t, errors.Is(m.Render(), PresentFailed))
	assert.EqualValues(t, 1, m.Stats().Frames)

	instance.FailNext("AcquireNextImage", driver.ErrOutOfDate)
	err := m.Render()
	assert.True(t, errors.Is(err, SwapchainOutOfDate))
	assert.Equal(t, RuntimeFailure, SwapchainOutOfDate.Kind())

	require.NoError(t, m.Render())
	assert.EqualValues(t, 2, m.Stats().Frames)

	instance.FailNext("Submit", errors.New("device lost"))
	assert.True(t, errors.Is(m.Render(), SubmitFailed))
	assert.EqualValues(t, 2, m.Stats().Frames)

	require.NoError(t, m.Render())
	assert.EqualValues(t, 3, m.Stats().Frames)

	require.NoError(t, m.CleanUp())
	assert.Empty(t, instance.Violations())
}

func TestRenderRecoversAfterSubmitFailure(t *testing.T) {
	m, instance := newTestEngine(t, 2)
	require.NoError(t, m.Render())

	instance.FailNext("Submit", errors.New("queue full"))
	assert.True(t, errors.Is(m.Render(), SubmitFailed))
	assert.EqualValues(t, 1, m.Stats().Frames)

	var slots []int
	for i := 0; i < 4; i++ {
		require.NoError(t, m.Render(), "frame %d", i)
		slots = append(slots, m.Stats().Slot)
	}
	assert.Equal(t, []int{0, 1, 0, 1}, slots)
	assert.EqualValues(t, 5, m.Stats().Frames)

	require.NoError(t, m.CleanUp())
	assert.Empty(t, instance.Violations())
}

func TestRenderRecoversAfterUniformFailure(t *testing.T) {
	m, instance := newTestEngine(t, 1)

	instance.FailNext("Map", errors.New("no memory"))
	err := m.Render()
	code, ok := CodeOf(err)
	require.True(t, ok, "%v", err)
	assert.Equal(t, MapFailed, code)
	assert.Zero(t, m.Stats().Frames)

	for i := 0; i < 3; i++ {
		require.NoError(t, m.Render(), "frame %d", i)
	}
	assert.EqualValues(t, 3, m.Stats().Frames)

	require.NoError(t, m.CleanUp())
	assert.Empty(t, instance.Violations())
}

func TestCleanUpOrder(t *testing.T) {
	m, instance := newTestEngine(t, 2)
	for i := 0; i < 3; i++ {
		require.NoError(t, m.Render())
	}

	mark := len(instance.Events())
	require.NoError(t, m.CleanUp())
	events := instance.Events()[mark:]
	require.NotEmpty(t, events)

	assert.Equal(t, "waitidle", events[0].Op)
	assert.True(t, strings.HasPrefix(events[0].Object, "device#"), events[0].Object)

	last := events[len(events)-1]
	assert.Equal(t, "destroy", last.Op)
	assert.True(t, strings.HasPrefix(last.Object, "instance#"), last.Object)

	device := -1
	for i, e := range events {
		if e.Op == "destroy" && strings.HasPrefix(e.Object, "device#") {
			device = i
		}
	}
	require.GreaterOrEqual(t, device, 0)
	for i, e := range events {
		if e.Op != "destroy" || i == device || i == len(events)-1 {
			continue
		}
		assert.Less(t, i, device, "%s destroyed after the device", e.Object)
	}

	assert.Empty(t, instance.Violations())
	assert.Zero(t, m.lifecycle.Pending())
}

func TestCleanUpAfterFailedInit(t *testing.T) {
	instance := drivertest.NewInstance()
	m := New(testOptions(t, 2), instance, logger.Discard())
	instance.FailNext("CreateGraphicsPipeline", errors.New("compile error"))

	err := m.Init(testWindow{800, 600})
	assert.True(t, errors.Is(err, CreationFailed))
	assert.Error(t, m.Render())

	require.NoError(t, m.CleanUp())
	assert.Empty(t, instance.Violations())
	events := instance.Events()
	assert.Equal(t, "destroy", events[len(events)-1].Op)
}

func TestInitTooManyFramesInFlight(t *testing.T) {
	instance := drivertest.NewInstance()
	m := New(testOptions(t, 4), instance, logger.Discard())

	err := m.Init(testWindow{800, 600})
	require.Error(t, err)
	code, ok := CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, CreationFailed, code)

	require.NoError(t, m.CleanUp())
	assert.Empty(t, instance.Violations())
}

func TestInitMissingShaders(t *testing.T) {
	instance := drivertest.NewInstance()
	opts := testOptions(t, 2)
	opts.ShaderDir = t.TempDir()
	m := New(opts, instance, logger.Discard())

	err := m.Init(testWindow{800, 600})
	assert.True(t, errors.Is(err, FileNotFound))

	require.NoError(t, m.CleanUp())
	assert.Empty(t, instance.Violations())
}

func TestUpdateMovesCamera(t *testing.T) {
	m, _ := newTestEngine(t, 2)
	start := m.camera.Position

	m.ReadInput(Event{Type: KeyDown, Key: KeyW})
	m.ReadInput(Event{Type: MouseMotion, XRel: 10})
	m.Update()

	assert.Less(t, m.camera.Position[2], start[2])
	// Rotation needs the right button held.
	assert.Zero(t, m.camera.Yaw)
	assert.Zero(t, m.input.MouseXRel)
	assert.Equal(t, "16ms", m.Stats().FrameTime.String())

	require.NoError(t, m.CleanUp())
}
