package myr

import (
	"github.com/chewxy/math32"
	lin "github.com/xlab/linmath"
)

const (
	fieldOfView = 45.0
	nearPlane   = 0.1
	farPlane    = 100.0
)

type UniformBufferObject struct {
	Model      lin.Mat4x4
	View       lin.Mat4x4
	Projection lin.Mat4x4
}

const UniformSize = 3 * 16 * 4

func (u *UniformBufferObject) Bytes() []byte {
	out := make([]byte, 0, UniformSize)
	out = append(out, u.Model.Data()...)
	out = append(out, u.View.Data()...)
	return append(out, u.Projection.Data()...)
}

// Camera is a free-look camera. Yaw turns around the world Y axis, pitch
// around the camera's X axis.
type Camera struct {
	Position   lin.Vec3
	Yaw, Pitch float32
	// Speed is in units per second, AngleSpeed in radians per mouse unit.
	Speed      float32
	AngleSpeed float32

	projection lin.Mat4x4
}

func NewCamera(aspect, speed, angleSpeed float32) *Camera {
	c := Camera{
		Position:   lin.Vec3{0, 0, 2},
		Speed:      speed,
		AngleSpeed: angleSpeed,
	}
	c.projection.Perspective(lin.DegreesToRadians(fieldOfView), aspect, nearPlane, farPlane)
	// Vulkan clip space has Y pointing down.
	c.projection[1][1] *= -1
	return &c
}

func (c *Camera) Forward() lin.Vec3 {
	sy, cy := math32.Sin(c.Yaw), math32.Cos(c.Yaw)
	sp, cp := math32.Sin(c.Pitch), math32.Cos(c.Pitch)
	return lin.Vec3{-sy * cp, sp, -cy * cp}
}

func (c *Camera) Right() lin.Vec3 {
	return lin.Vec3{math32.Cos(c.Yaw), 0, -math32.Sin(c.Yaw)}
}

func (c *Camera) Up() lin.Vec3 {
	sy, cy := math32.Sin(c.Yaw), math32.Cos(c.Yaw)
	sp, cp := math32.Sin(c.Pitch), math32.Cos(c.Pitch)
	return lin.Vec3{sp * sy, cp, sp * cy}
}

func (c *Camera) Update(in InputState, dt float32) {
	if in.MouseRight {
		c.Pitch -= float32(in.MouseYRel) * c.AngleSpeed
		c.Yaw -= float32(in.MouseXRel) * c.AngleSpeed
	}

	step := c.Speed * dt
	forward, right := c.Forward(), c.Right()
	if in.Forward {
		c.move(&forward, step)
	}
	if in.Backward {
		c.move(&forward, -step)
	}
	if in.Right {
		c.move(&right, step)
	}
	if in.Left {
		c.move(&right, -step)
	}
}

func (c *Camera) move(dir *lin.Vec3, amount float32) {
	for t := range c.Position {
		c.Position[t] += dir[t] * amount
	}
}

func (c *Camera) View() lin.Mat4x4 {
	forward, up := c.Forward(), c.Up()
	var center lin.Vec3
	for t := range center {
		center[t] = c.Position[t] + forward[t]
	}
	var view lin.Mat4x4
	view.LookAt(&c.Position, &center, &up)
	return view
}

func (c *Camera) Uniforms() UniformBufferObject {
	u := UniformBufferObject{
		View:       c.View(),
		Projection: c.projection,
	}
	u.Model.Identity()
	return u
}
