package mesh

// NewCube creates a unit-style cube mesh of the given edge length, centered
// on the origin, with per-face normals and texture coordinates.
//
// Parameters:
//   - size: the edge length
//   - options: additional mesh options (material, transform, ...)
//
// Returns:
//   - Mesh: the cube mesh
func NewCube(size float32, options ...MeshBuilderOption) Mesh {
	h := size / 2

	positions := []float32{
		// front (+z)
		-h, -h, h, h, -h, h, h, h, h, -h, h, h,
		// back (-z)
		h, -h, -h, -h, -h, -h, -h, h, -h, h, h, -h,
		// left (-x)
		-h, -h, -h, -h, -h, h, -h, h, h, -h, h, -h,
		// right (+x)
		h, -h, h, h, -h, -h, h, h, -h, h, h, h,
		// top (+y)
		-h, h, h, h, h, h, h, h, -h, -h, h, -h,
		// bottom (-y)
		-h, -h, -h, h, -h, -h, h, -h, h, -h, -h, h,
	}

	normals := []float32{
		0, 0, 1, 0, 0, 1, 0, 0, 1, 0, 0, 1,
		0, 0, -1, 0, 0, -1, 0, 0, -1, 0, 0, -1,
		-1, 0, 0, -1, 0, 0, -1, 0, 0, -1, 0, 0,
		1, 0, 0, 1, 0, 0, 1, 0, 0, 1, 0, 0,
		0, 1, 0, 0, 1, 0, 0, 1, 0, 0, 1, 0,
		0, -1, 0, 0, -1, 0, 0, -1, 0, 0, -1, 0,
	}

	uvs := make([]float32, 0, 48)
	for face := 0; face < 6; face++ {
		uvs = append(uvs, 0, 0, 1, 0, 1, 1, 0, 1)
	}

	indices := make([]uint32, 0, 36)
	for face := uint32(0); face < 6; face++ {
		base := face * 4
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}

	opts := append([]MeshBuilderOption{WithGeometry(positions, normals, uvs, indices)}, options...)
	return NewMesh(opts...)
}

// NewPlane creates a flat plane mesh in the XZ plane, centered on the origin,
// facing +Y.
//
// Parameters:
//   - width: the extent along X
//   - depth: the extent along Z
//   - options: additional mesh options (material, transform, ...)
//
// Returns:
//   - Mesh: the plane mesh
func NewPlane(width, depth float32, options ...MeshBuilderOption) Mesh {
	hw := width / 2
	hd := depth / 2

	positions := []float32{
		-hw, 0, -hd,
		hw, 0, -hd,
		hw, 0, hd,
		-hw, 0, hd,
	}
	normals := []float32{
		0, 1, 0, 0, 1, 0, 0, 1, 0, 0, 1, 0,
	}
	uvs := []float32{
		0, 0, 1, 0, 1, 1, 0, 1,
	}
	indices := []uint32{0, 2, 1, 0, 3, 2}

	opts := append([]MeshBuilderOption{WithGeometry(positions, normals, uvs, indices)}, options...)
	return NewMesh(opts...)
}
