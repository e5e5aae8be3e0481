package mesh

import "math"

// GenerateTangents computes per-vertex tangents and bitangents with the
// UV-derivative method: for each triangle, solve the 2x2 system relating the
// edge vectors to the UV deltas, accumulate the solution per vertex, then
// Gram-Schmidt-orthogonalize each accumulated tangent against the vertex
// normal. The bitangent is cross(normal, tangent).
//
// Triangles with a degenerate UV mapping (zero determinant) are skipped so
// they cannot propagate NaN into the accumulation.
func (m *meshImpl) GenerateTangents() {
	if !m.NeedsTangents() {
		return
	}

	vertexCount := len(m.positions) / 3
	accTangents := make([]float32, vertexCount*3)
	accBitangents := make([]float32, vertexCount*3)

	for i := 0; i+2 < len(m.indices); i += 3 {
		i0 := m.indices[i]
		i1 := m.indices[i+1]
		i2 := m.indices[i+2]

		p0x, p0y, p0z := m.positions[i0*3], m.positions[i0*3+1], m.positions[i0*3+2]
		p1x, p1y, p1z := m.positions[i1*3], m.positions[i1*3+1], m.positions[i1*3+2]
		p2x, p2y, p2z := m.positions[i2*3], m.positions[i2*3+1], m.positions[i2*3+2]

		u0, v0 := m.uvs[i0*2], m.uvs[i0*2+1]
		u1, v1 := m.uvs[i1*2], m.uvs[i1*2+1]
		u2, v2 := m.uvs[i2*2], m.uvs[i2*2+1]

		e1x, e1y, e1z := p1x-p0x, p1y-p0y, p1z-p0z
		e2x, e2y, e2z := p2x-p0x, p2y-p0y, p2z-p0z

		du1, dv1 := u1-u0, v1-v0
		du2, dv2 := u2-u0, v2-v0

		det := du1*dv2 - du2*dv1
		if det > -1e-8 && det < 1e-8 {
			// Degenerate UV triangle: no stable tangent frame.
			continue
		}
		r := 1.0 / det

		tx := r * (dv2*e1x - dv1*e2x)
		ty := r * (dv2*e1y - dv1*e2y)
		tz := r * (dv2*e1z - dv1*e2z)

		bx := r * (du1*e2x - du2*e1x)
		by := r * (du1*e2y - du2*e1y)
		bz := r * (du1*e2z - du2*e1z)

		for _, idx := range [3]uint32{i0, i1, i2} {
			accTangents[idx*3] += tx
			accTangents[idx*3+1] += ty
			accTangents[idx*3+2] += tz
			accBitangents[idx*3] += bx
			accBitangents[idx*3+1] += by
			accBitangents[idx*3+2] += bz
		}
	}

	tangents := make([]float32, vertexCount*3)
	bitangents := make([]float32, vertexCount*3)

	for v := 0; v < vertexCount; v++ {
		nx, ny, nz := m.normals[v*3], m.normals[v*3+1], m.normals[v*3+2]
		tx, ty, tz := accTangents[v*3], accTangents[v*3+1], accTangents[v*3+2]

		// Gram-Schmidt: remove the normal component, then normalize.
		nDotT := nx*tx + ny*ty + nz*tz
		tx -= nx * nDotT
		ty -= ny * nDotT
		tz -= nz * nDotT

		length := float32(math.Sqrt(float64(tx*tx + ty*ty + tz*tz)))
		if length < 1e-8 {
			// No accumulated tangent (unreferenced vertex or all-degenerate
			// triangles): fall back to any axis orthogonal to the normal.
			tx, ty, tz = fallbackTangent(nx, ny, nz)
		} else {
			tx /= length
			ty /= length
			tz /= length
		}

		tangents[v*3] = tx
		tangents[v*3+1] = ty
		tangents[v*3+2] = tz

		// bitangent = cross(normal, tangent), normalized
		bx := ny*tz - nz*ty
		by := nz*tx - nx*tz
		bz := nx*ty - ny*tx
		bLength := float32(math.Sqrt(float64(bx*bx + by*by + bz*bz)))
		if bLength > 1e-8 {
			bx /= bLength
			by /= bLength
			bz /= bLength
		}

		bitangents[v*3] = bx
		bitangents[v*3+1] = by
		bitangents[v*3+2] = bz
	}

	m.tangents = tangents
	m.bitangents = bitangents
}

// fallbackTangent returns a unit vector orthogonal to the given normal.
func fallbackTangent(nx, ny, nz float32) (float32, float32, float32) {
	// Cross with whichever world axis is least aligned with the normal.
	ax, ay, az := float32(1), float32(0), float32(0)
	if nx > 0.9 || nx < -0.9 {
		ax, ay, az = 0, 1, 0
	}
	tx := ny*az - nz*ay
	ty := nz*ax - nx*az
	tz := nx*ay - ny*ax
	length := float32(math.Sqrt(float64(tx*tx + ty*ty + tz*tz)))
	return tx / length, ty / length, tz / length
}
