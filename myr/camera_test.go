package myr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	lin "github.com/xlab/linmath"
)

func TestInputState(t *testing.T) {
	var s InputState

	s.Apply(Event{Type: KeyDown, Key: KeyW})
	s.Apply(Event{Type: KeyDown, Key: KeyD})
	s.Apply(Event{Type: KeyDown, Key: KeyUnknown})
	assert.True(t, s.Forward)
	assert.True(t, s.Right)
	assert.False(t, s.Left)

	s.Apply(Event{Type: KeyUp, Key: KeyW})
	assert.False(t, s.Forward)

	s.Apply(Event{Type: MouseButtonDown, Button: MouseLeft})
	assert.False(t, s.MouseRight)
	s.Apply(Event{Type: MouseButtonDown, Button: MouseRight})
	assert.True(t, s.MouseRight)

	s.Apply(Event{Type: MouseMotion, XRel: 3, YRel: -1})
	s.Apply(Event{Type: MouseMotion, XRel: 2, YRel: -1})
	assert.Equal(t, 5, s.MouseXRel)
	assert.Equal(t, -2, s.MouseYRel)

	s.ConsumeMotion()
	assert.Zero(t, s.MouseXRel)
	assert.Zero(t, s.MouseYRel)
	assert.True(t, s.MouseRight)
}

func TestCameraMovement(t *testing.T) {
	c := NewCamera(4.0/3.0, 1, 0.01)
	assert.Equal(t, lin.Vec3{0, 0, 2}, c.Position)

	c.Update(InputState{Forward: true}, 0.5)
	assert.InDelta(t, 1.5, c.Position[2], 1e-6)

	c.Update(InputState{Right: true}, 1)
	assert.InDelta(t, 1, c.Position[0], 1e-6)

	c.Update(InputState{Left: true, Backward: true}, 1)
	assert.InDelta(t, 0, c.Position[0], 1e-6)
	assert.InDelta(t, 2.5, c.Position[2], 1e-6)
}

func TestCameraLook(t *testing.T) {
	c := NewCamera(1, 1, 0.01)

	// Motion only turns while the right button is held.
	c.Update(InputState{MouseXRel: 10, MouseYRel: 5}, 0.016)
	assert.Zero(t, c.Yaw)
	assert.Zero(t, c.Pitch)

	c.Update(InputState{MouseXRel: 10, MouseYRel: 5, MouseRight: true}, 0.016)
	assert.InDelta(t, -0.1, c.Yaw, 1e-6)
	assert.InDelta(t, -0.05, c.Pitch, 1e-6)

	f := c.Forward()
	length := f[0]*f[0] + f[1]*f[1] + f[2]*f[2]
	assert.InDelta(t, 1, length, 1e-5)
}

func TestUniforms(t *testing.T) {
	c := NewCamera(1, 1, 0.01)
	u := c.Uniforms()

	var identity lin.Mat4x4
	identity.Identity()
	assert.Equal(t, identity, u.Model)
	// Vulkan's Y axis points down.
	assert.Less(t, u.Projection[1][1], float32(0))

	data := u.Bytes()
	assert.Len(t, data, UniformSize)
	assert.Equal(t, identity.Data(), data[:64])
}

func TestVertexBytes(t *testing.T) {
	data := VertexBytes(CubeVertices)
	assert.Len(t, data, len(CubeVertices)*VertexStride)
	// -0.5 little endian.
	assert.Equal(t, []byte{0x00, 0x00, 0x00, 0xbf}, data[:4])

	indices := IndexBytes([]uint32{1, 258})
	assert.Equal(t, []byte{1, 0, 0, 0, 2, 1, 0, 0}, indices)
	assert.Len(t, CubeIndices, 36)
	for _, i := range CubeIndices {
		assert.Less(t, i, uint32(len(CubeVertices)))
	}
}
