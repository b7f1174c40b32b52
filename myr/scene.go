package myr

import (
	"encoding/binary"
	"math"

	"github.com/perlw/myrcube/driver"
)

type Vertex struct {
	Position [3]float32
	Color    [3]float32
}

const VertexStride = 6 * 4

func VertexAttributes() []driver.VertexAttribute {
	return []driver.VertexAttribute{
		{Location: 0, Format: driver.FormatR32G32B32Sfloat, Offset: 0},
		{Location: 1, Format: driver.FormatR32G32B32Sfloat, Offset: 3 * 4},
	}
}

// CubeVertices is a unit cube centered on the origin.
var CubeVertices = []Vertex{
	{Position: [3]float32{-0.5, -0.5, 0.5}, Color: [3]float32{1, 0, 0}},
	{Position: [3]float32{0.5, -0.5, 0.5}, Color: [3]float32{0, 1, 0}},
	{Position: [3]float32{0.5, 0.5, 0.5}, Color: [3]float32{0, 0, 1}},
	{Position: [3]float32{-0.5, 0.5, 0.5}, Color: [3]float32{1, 0, 1}},
	{Position: [3]float32{-0.5, -0.5, -0.5}, Color: [3]float32{1, 0, 0}},
	{Position: [3]float32{0.5, -0.5, -0.5}, Color: [3]float32{0, 1, 0}},
	{Position: [3]float32{0.5, 0.5, -0.5}, Color: [3]float32{0, 0, 1}},
	{Position: [3]float32{-0.5, 0.5, -0.5}, Color: [3]float32{1, 0, 1}},
}

var CubeIndices = []uint32{
	0, 1, 2, 0, 2, 3, // front
	7, 6, 4, 6, 5, 4, // back
	1, 5, 6, 1, 6, 2, // right
	4, 0, 3, 4, 3, 7, // left
	4, 5, 1, 4, 1, 0, // top
	2, 6, 7, 2, 7, 3, // bottom
}

func VertexBytes(vertices []Vertex) []byte {
	out := make([]byte, 0, len(vertices)*VertexStride)
	for _, v := range vertices {
		for _, f := range v.Position {
			out = binary.LittleEndian.AppendUint32(out, math.Float32bits(f))
		}
		for _, f := range v.Color {
			out = binary.LittleEndian.AppendUint32(out, math.Float32bits(f))
		}
	}
	return out
}

func IndexBytes(indices []uint32) []byte {
	out := make([]byte, 0, len(indices)*4)
	for _, i := range indices {
		out = binary.LittleEndian.AppendUint32(out, i)
	}
	return out
}
