package loader

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"math"
	"strings"
	"testing"
)

// buildTriangleBuffer returns the binary buffer for a single XY-plane
// triangle: three vec3 positions followed by three uint16 indices.
func buildTriangleBuffer(t *testing.T) []byte {
	t.Helper()

	var buf bytes.Buffer
	positions := []float32{
		0, 0, 0,
		1, 0, 0,
		0, 1, 0,
	}
	for _, v := range positions {
		if err := binary.Write(&buf, binary.LittleEndian, v); err != nil {
			t.Fatalf("failed to write position: %v", err)
		}
	}
	for _, idx := range []uint16{0, 1, 2} {
		if err := binary.Write(&buf, binary.LittleEndian, idx); err != nil {
			t.Fatalf("failed to write index: %v", err)
		}
	}
	return buf.Bytes()
}

// buildTriangleGLTF returns a minimal glTF JSON document embedding the
// triangle buffer as a base64 data URI. The triangle has no normals, so the
// loader must generate them.
func buildTriangleGLTF(t *testing.T) string {
	t.Helper()

	data := buildTriangleBuffer(t)
	uri := "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(data)

	return fmt.Sprintf(`{
		"asset": {"version": "2.0"},
		"buffers": [{"uri": %q, "byteLength": %d}],
		"bufferViews": [
			{"buffer": 0, "byteOffset": 0, "byteLength": 36},
			{"buffer": 0, "byteOffset": 36, "byteLength": 6}
		],
		"accessors": [
			{"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3"},
			{"bufferView": 1, "componentType": 5123, "count": 3, "type": "SCALAR"}
		],
		"materials": [{
			"name": "red",
			"pbrMetallicRoughness": {
				"baseColorFactor": [1, 0, 0, 1],
				"roughnessFactor": 1
			}
		}],
		"meshes": [{
			"name": "triangle",
			"primitives": [{
				"attributes": {"POSITION": 0},
				"indices": 1,
				"material": 0
			}]
		}]
	}`, uri, len(data))
}

// buildTriangleGLB wraps the triangle document in a GLB container, moving
// the buffer into the binary chunk.
func buildTriangleGLB(t *testing.T) []byte {
	t.Helper()

	binData := buildTriangleBuffer(t)
	for len(binData)%4 != 0 {
		binData = append(binData, 0)
	}

	jsonData := []byte(fmt.Sprintf(`{
		"asset": {"version": "2.0"},
		"buffers": [{"byteLength": %d}],
		"bufferViews": [
			{"buffer": 0, "byteOffset": 0, "byteLength": 36},
			{"buffer": 0, "byteOffset": 36, "byteLength": 6}
		],
		"accessors": [
			{"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3"},
			{"bufferView": 1, "componentType": 5123, "count": 3, "type": "SCALAR"}
		],
		"meshes": [{
			"primitives": [{"attributes": {"POSITION": 0}, "indices": 1}]
		}]
	}`, len(binData)))
	for len(jsonData)%4 != 0 {
		jsonData = append(jsonData, ' ')
	}

	var out bytes.Buffer
	write := func(v any) {
		if err := binary.Write(&out, binary.LittleEndian, v); err != nil {
			t.Fatalf("failed to write GLB: %v", err)
		}
	}

	totalLength := 12 + 8 + len(jsonData) + 8 + len(binData)
	write(uint32(gltfGLBMagic))
	write(uint32(gltfGLBVersion))
	write(uint32(totalLength))
	write(uint32(len(jsonData)))
	write(uint32(gltfGLBChunkJSON))
	out.Write(jsonData)
	write(uint32(len(binData)))
	write(uint32(gltfGLBChunkBIN))
	out.Write(binData)

	return out.Bytes()
}

func newTestLoader(t *testing.T) Loader {
	t.Helper()

	l, err := NewLoader(BackendTypeGLTF)
	if err != nil {
		t.Fatalf("failed to create loader: %v", err)
	}
	return l
}

func TestLoadReaderImportsTriangle(t *testing.T) {
	l := newTestLoader(t)

	meshes, err := l.LoadReader("tri", strings.NewReader(buildTriangleGLTF(t)), false)
	if err != nil {
		t.Fatalf("LoadReader failed: %v", err)
	}
	if len(meshes) != 1 {
		t.Fatalf("expected 1 mesh, got %d", len(meshes))
	}

	m := meshes[0]
	positions := m.Positions()
	if len(positions) != 9 {
		t.Fatalf("expected 9 position floats, got %d", len(positions))
	}
	want := []float32{0, 0, 0, 1, 0, 0, 0, 1, 0}
	for i, v := range want {
		if positions[i] != v {
			t.Errorf("position[%d]: expected %v, got %v", i, v, positions[i])
		}
	}

	indices := m.Indices()
	if len(indices) != 3 || indices[0] != 0 || indices[1] != 1 || indices[2] != 2 {
		t.Errorf("unexpected indices: %v", indices)
	}
}

func TestLoadReaderGeneratesNormals(t *testing.T) {
	l := newTestLoader(t)

	meshes, err := l.LoadReader("tri", strings.NewReader(buildTriangleGLTF(t)), false)
	if err != nil {
		t.Fatalf("LoadReader failed: %v", err)
	}

	// The triangle lies in the XY plane with counter-clockwise winding, so
	// every generated normal points along +Z.
	normals := meshes[0].Normals()
	if len(normals) != 9 {
		t.Fatalf("expected 9 normal floats, got %d", len(normals))
	}
	for v := 0; v < 3; v++ {
		nx, ny, nz := normals[v*3], normals[v*3+1], normals[v*3+2]
		if math.Abs(float64(nx)) > 1e-5 || math.Abs(float64(ny)) > 1e-5 || math.Abs(float64(nz-1)) > 1e-5 {
			t.Errorf("vertex %d: expected normal (0,0,1), got (%v,%v,%v)", v, nx, ny, nz)
		}
	}
}

func TestLoadReaderMapsMaterial(t *testing.T) {
	l := newTestLoader(t)

	meshes, err := l.LoadReader("tri", strings.NewReader(buildTriangleGLTF(t)), false)
	if err != nil {
		t.Fatalf("LoadReader failed: %v", err)
	}

	mat := meshes[0].Material()
	if mat == nil {
		t.Fatal("expected mesh to carry a material")
	}
	if mat.Name() != "red" {
		t.Errorf("expected material name %q, got %q", "red", mat.Name())
	}
	if color := mat.DiffuseColor(); color != [4]float32{1, 0, 0, 1} {
		t.Errorf("unexpected diffuse color: %v", color)
	}
	// Roughness 1 maps to the minimum specular exponent.
	if s := mat.Shininess(); s != 2 {
		t.Errorf("expected shininess 2 for fully rough material, got %v", s)
	}
	if mat.HasTexture() {
		t.Error("expected material without texture")
	}
}

func TestLoadReaderParsesGLB(t *testing.T) {
	l := newTestLoader(t)

	meshes, err := l.LoadReader("tri", bytes.NewReader(buildTriangleGLB(t)), true)
	if err != nil {
		t.Fatalf("LoadReader failed: %v", err)
	}
	if len(meshes) != 1 {
		t.Fatalf("expected 1 mesh, got %d", len(meshes))
	}
	if got := len(meshes[0].Positions()); got != 9 {
		t.Errorf("expected 9 position floats, got %d", got)
	}
}

func TestLoadReaderRejectsBadGLBMagic(t *testing.T) {
	l := newTestLoader(t)

	data := buildTriangleGLB(t)
	data[0] ^= 0xFF

	if _, err := l.LoadReader("bad", bytes.NewReader(data), true); err == nil {
		t.Fatal("expected error for corrupted GLB magic")
	}
}

func TestLoadReaderCachesByName(t *testing.T) {
	l := newTestLoader(t)

	first, err := l.LoadReader("tri", strings.NewReader(buildTriangleGLTF(t)), false)
	if err != nil {
		t.Fatalf("first LoadReader failed: %v", err)
	}

	// The second load must hit the cache: an empty reader would fail to
	// parse if the loader touched it.
	second, err := l.LoadReader("tri", strings.NewReader(""), false)
	if err != nil {
		t.Fatalf("second LoadReader failed: %v", err)
	}
	if len(first) != len(second) || first[0] != second[0] {
		t.Error("expected cached meshes on second load")
	}

	got, ok := l.Get("tri")
	if !ok || len(got) != 1 {
		t.Errorf("Get: expected cached model, got ok=%v len=%d", ok, len(got))
	}

	models := l.Models()
	if len(models) != 1 || models[0] != "tri" {
		t.Errorf("unexpected model list: %v", models)
	}
}

func TestLoadReaderRejectsMissingPositions(t *testing.T) {
	l := newTestLoader(t)

	doc := `{
		"asset": {"version": "2.0"},
		"meshes": [{"primitives": [{"attributes": {}}]}]
	}`

	if _, err := l.LoadReader("bad", strings.NewReader(doc), false); err == nil {
		t.Fatal("expected error for primitive without POSITION attribute")
	}
}

func TestLoadReaderRejectsUnsupportedVersion(t *testing.T) {
	l := newTestLoader(t)

	doc := `{"asset": {"version": "1.0"}}`
	if _, err := l.LoadReader("old", strings.NewReader(doc), false); err == nil {
		t.Fatal("expected error for glTF 1.0 document")
	}
}

func TestStridedAccessorRead(t *testing.T) {
	// Positions interleaved with a vec3 of padding per vertex: the
	// byteStride walk must skip the padding.
	var buf bytes.Buffer
	for v := 0; v < 3; v++ {
		pos := []float32{float32(v), float32(v * 2), float32(v * 3)}
		pad := []float32{99, 99, 99}
		if err := binary.Write(&buf, binary.LittleEndian, pos); err != nil {
			t.Fatalf("failed to write: %v", err)
		}
		if err := binary.Write(&buf, binary.LittleEndian, pad); err != nil {
			t.Fatalf("failed to write: %v", err)
		}
	}
	data := buf.Bytes()
	uri := "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(data)

	doc := fmt.Sprintf(`{
		"asset": {"version": "2.0"},
		"buffers": [{"uri": %q, "byteLength": %d}],
		"bufferViews": [{"buffer": 0, "byteOffset": 0, "byteLength": %d, "byteStride": 24}],
		"accessors": [{"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3"}]
	}`, uri, len(data), len(data))

	parser := newGLTFParser()
	if err := parser.ParseReader(strings.NewReader(doc), false); err != nil {
		t.Fatalf("ParseReader failed: %v", err)
	}

	positions, err := parser.ReadVec3Accessor(0)
	if err != nil {
		t.Fatalf("ReadVec3Accessor failed: %v", err)
	}
	if len(positions) != 3 {
		t.Fatalf("expected 3 positions, got %d", len(positions))
	}
	for v := 0; v < 3; v++ {
		want := [3]float32{float32(v), float32(v * 2), float32(v * 3)}
		if positions[v] != want {
			t.Errorf("position %d: expected %v, got %v", v, want, positions[v])
		}
	}
}
