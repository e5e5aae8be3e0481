package mesh

import (
	"math"
	"testing"
)

func isFinite(v float32) bool {
	return !math.IsNaN(float64(v)) && !math.IsInf(float64(v), 0)
}

func TestGenerateTangentsOrthonormal(t *testing.T) {
	m := NewCube(1)
	if !m.NeedsTangents() {
		t.Fatal("cube with UVs should need tangents")
	}

	m.GenerateTangents()

	tangents := m.Tangents()
	bitangents := m.Bitangents()
	normals := m.Normals()
	if len(tangents) != len(normals) || len(bitangents) != len(normals) {
		t.Fatalf("tangent array sizes: %d tangents, %d bitangents, %d normals",
			len(tangents), len(bitangents), len(normals))
	}

	for v := 0; v < len(tangents)/3; v++ {
		tx, ty, tz := tangents[v*3], tangents[v*3+1], tangents[v*3+2]
		nx, ny, nz := normals[v*3], normals[v*3+1], normals[v*3+2]
		bx, by, bz := bitangents[v*3], bitangents[v*3+1], bitangents[v*3+2]

		length := float32(math.Sqrt(float64(tx*tx + ty*ty + tz*tz)))
		if absDiff(length, 1) > 1e-5 {
			t.Errorf("vertex %d: tangent length %v, want 1", v, length)
		}

		dot := tx*nx + ty*ny + tz*nz
		if dot > 1e-5 || dot < -1e-5 {
			t.Errorf("vertex %d: tangent·normal = %v, want ~0", v, dot)
		}

		bLength := float32(math.Sqrt(float64(bx*bx + by*by + bz*bz)))
		if absDiff(bLength, 1) > 1e-5 {
			t.Errorf("vertex %d: bitangent length %v, want 1", v, bLength)
		}
	}
}

func TestGenerateTangentsDegenerateUVsNoNaN(t *testing.T) {
	// Every vertex maps to the same UV point, so every triangle has a zero
	// UV determinant.
	positions := []float32{
		0, 0, 0,
		1, 0, 0,
		0, 1, 0,
	}
	normals := []float32{
		0, 0, 1,
		0, 0, 1,
		0, 0, 1,
	}
	uvs := []float32{
		0.5, 0.5,
		0.5, 0.5,
		0.5, 0.5,
	}
	indices := []uint32{0, 1, 2}

	m := NewMesh(WithGeometry(positions, normals, uvs, indices))
	m.GenerateTangents()

	for i, v := range m.Tangents() {
		if !isFinite(v) {
			t.Fatalf("tangent component %d is not finite: %v", i, v)
		}
	}
	for i, v := range m.Bitangents() {
		if !isFinite(v) {
			t.Fatalf("bitangent component %d is not finite: %v", i, v)
		}
	}

	// The fallback frame must still be orthogonal to the normal.
	tangents := m.Tangents()
	for v := 0; v < 3; v++ {
		dot := tangents[v*3]*normals[v*3] + tangents[v*3+1]*normals[v*3+1] + tangents[v*3+2]*normals[v*3+2]
		if dot > 1e-5 || dot < -1e-5 {
			t.Errorf("vertex %d: fallback tangent not orthogonal to normal (dot %v)", v, dot)
		}
	}
}

func TestGenerateTangentsSkipsWhenNotNeeded(t *testing.T) {
	positions := []float32{0, 0, 0, 1, 0, 0, 0, 1, 0}
	normals := []float32{0, 0, 1, 0, 0, 1, 0, 0, 1}
	indices := []uint32{0, 1, 2}

	// No UVs: nothing to derive tangents from.
	m := NewMesh(WithGeometry(positions, normals, nil, indices))
	if m.NeedsTangents() {
		t.Error("mesh without UVs reported needing tangents")
	}
	m.GenerateTangents()
	if len(m.Tangents()) != 0 {
		t.Error("tangents generated for a mesh without UVs")
	}
}

func TestUpdateVertexDataInvalidatesTangents(t *testing.T) {
	m := NewCube(1)
	m.GenerateTangents()
	if len(m.Tangents()) == 0 {
		t.Fatal("no tangents generated")
	}

	m.UpdateVertexData(m.Positions(), nil, nil)
	if !m.NeedsTangents() {
		t.Error("position update kept stale tangents")
	}
}
