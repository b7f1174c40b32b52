package myr

import (
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perlw/myrcube/driver"
	"github.com/perlw/myrcube/driver/drivertest"
	"github.com/perlw/myrcube/logger"
)

func TestFindMemoryType(t *testing.T) {
	types := drivertest.DefaultGPU().MemoryTypes

	index, err := FindMemoryType(types, 0x7, driver.MemoryPropertyDeviceLocal)
	require.NoError(t, err)
	assert.EqualValues(t, 0, index)

	index, err = FindMemoryType(types, 0x7, hostMemory)
	require.NoError(t, err)
	assert.EqualValues(t, 1, index)

	// Type 1 is excluded by the mask, 2 has the flags too.
	index, err = FindMemoryType(types, 0x5, hostMemory)
	require.NoError(t, err)
	assert.EqualValues(t, 2, index)

	_, err = FindMemoryType(types, 0x1, hostMemory)
	assert.True(t, errors.Is(err, NoSuitableMemoryType))
	_, err = FindMemoryType(types, 0x7, driver.MemoryPropertyHostCached)
	assert.True(t, errors.Is(err, NoSuitableMemoryType))
}

func newTestPool(t *testing.T) (*ResourcePool, *drivertest.Instance) {
	ctx, instance := newTestContext(t)
	commands, err := NewCommandPool(ctx)
	require.NoError(t, err)
	return NewResourcePool(ctx, commands, logger.Discard()), instance
}

func TestUploadViaStaging(t *testing.T) {
	pool, instance := newTestPool(t)
	rng := rand.New(rand.NewSource(1))

	for _, size := range []int{1, 4, 192, 1000, 4096, 65537} {
		data := make([]byte, size)
		rng.Read(data)

		mark := len(instance.Events())
		b, err := pool.UploadViaStaging(data, driver.BufferUsageVertex)
		require.NoError(t, err)

		assert.Equal(t, data, drivertest.Contents(b.Handle), "size %d", size)
		assert.EqualValues(t, size, b.Size)
		assert.Equal(t, driver.BufferUsageVertex|driver.BufferUsageTransferDst, b.Usage)

		// The staging buffer is gone once the upload returns.
		created, destroyed := 0, 0
		for _, e := range instance.Events()[mark:] {
			switch {
			case e.Op == "create" && (hasKind(e.Object, "buffer") || hasKind(e.Object, "memory")):
				created++
			case e.Op == "destroy" && (hasKind(e.Object, "buffer") || hasKind(e.Object, "memory")):
				destroyed++
			}
		}
		assert.Equal(t, 4, created)
		assert.Equal(t, 2, destroyed)
		b.Release()
	}
	assert.Empty(t, instance.Violations())
}

func hasKind(object, kind string) bool {
	return len(object) > len(kind) && object[:len(kind)+1] == kind+"#"
}

func TestUploadViaStagingFailures(t *testing.T) {
	pool, instance := newTestPool(t)
	data := []byte{1, 2, 3, 4}

	instance.FailNext("AllocateMemory", errors.New("out of device memory"))
	_, err := pool.UploadViaStaging(data, driver.BufferUsageIndex)
	assert.True(t, errors.Is(err, AllocationFailed))

	instance.FailNext("Map", errors.New("memory map failed"))
	_, err = pool.UploadViaStaging(data, driver.BufferUsageIndex)
	code, ok := CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, CreationFailed, code)
	assert.Equal(t, CreationFailure, code.Kind())
	assert.True(t, errors.Is(err, MapFailed))

	instance.FailNext("Submit", errors.New("device lost"))
	_, err = pool.UploadViaStaging(data, driver.BufferUsageIndex)
	code, _ = CodeOf(err)
	assert.Equal(t, CreationFailed, code)
	assert.True(t, errors.Is(err, SubmitFailed))

	_, err = pool.UploadViaStaging(nil, driver.BufferUsageIndex)
	assert.True(t, errors.Is(err, CreationFailed))

	assert.Empty(t, instance.Violations())
}

func TestCreateBufferNoMemoryType(t *testing.T) {
	gpu := drivertest.DefaultGPU()
	gpu.BufferTypeBits = 0x1
	instance := drivertest.NewInstance(gpu)
	surface, err := CreateSurface(instance, testWindow{800, 600})
	require.NoError(t, err)
	ctx, err := NewGraphicsContext(instance, surface, logger.Discard())
	require.NoError(t, err)
	commands, err := NewCommandPool(ctx)
	require.NoError(t, err)
	pool := NewResourcePool(ctx, commands, logger.Discard())

	_, err = pool.CreateBuffer(64, driver.BufferUsageUniform, hostMemory)
	assert.True(t, errors.Is(err, NoSuitableMemoryType))
	assert.Equal(t, ResourceExhaustion, NoSuitableMemoryType.Kind())

	var destroyed int
	for _, e := range instance.Events() {
		if e.Op == "destroy" && hasKind(e.Object, "buffer") {
			destroyed++
		}
	}
	assert.Equal(t, 1, destroyed)
	assert.Empty(t, instance.Violations())
}

func TestBufferWrite(t *testing.T) {
	pool, instance := newTestPool(t)
	b, err := pool.CreateBuffer(8, driver.BufferUsageUniform, hostMemory)
	require.NoError(t, err)

	require.NoError(t, b.Write([]byte{1, 2, 3}))
	assert.Equal(t, []byte{1, 2, 3, 0, 0, 0, 0, 0}, drivertest.Contents(b.Handle))

	err = b.Write(make([]byte, 9))
	assert.True(t, errors.Is(err, MapFailed))

	b.Release()
	assert.Nil(t, b.Handle)
	assert.Empty(t, instance.Violations())
}

func TestUniformBuffers(t *testing.T) {
	pool, instance := newTestPool(t)
	layout, err := NewDescriptorSetLayout(pool.ctx)
	require.NoError(t, err)

	u, err := NewUniformBuffers(pool, 3, UniformSize)
	require.NoError(t, err)
	require.NoError(t, u.CreateDescriptors(pool.ctx, layout))
	require.Len(t, u.Sets, 3)
	for i, set := range u.Sets {
		assert.Equal(t, u.Buffers[i].Handle, set.(*drivertest.DescriptorSet).Buffer(0))
	}

	err = u.Write(3, []byte{1})
	assert.True(t, errors.Is(err, MapFailed))

	u.DestroyDescriptors()
	u.ReleaseBuffers()
	layout.Destroy()
	assert.Empty(t, instance.Violations())
}
