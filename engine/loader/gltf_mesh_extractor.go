package loader

import (
	"fmt"
	"math"

	"github.com/DarioCorno/skengio/common"
)

// gltfMeshExtractorImpl is the implementation of the gltfMeshExtractor
// interface.
type gltfMeshExtractorImpl struct {
	parser gltfParser
}

// gltfMeshExtractor extracts mesh geometry from a parsed glTF document.
// Each glTF primitive becomes one importedMesh; primitives without normals
// get smooth normals generated from their triangles.
type gltfMeshExtractor interface {
	// ExtractMeshes extracts all mesh primitives from the document.
	//
	// Returns:
	//   - []importedMesh: the extracted meshes, one per primitive
	//   - error: error if extraction fails
	ExtractMeshes() ([]importedMesh, error)
}

var _ gltfMeshExtractor = &gltfMeshExtractorImpl{}

// newGLTFMeshExtractor creates a mesh extractor bound to a parser.
//
// Parameters:
//   - parser: the parser holding the parsed document
//
// Returns:
//   - gltfMeshExtractor: a new extractor instance
func newGLTFMeshExtractor(parser gltfParser) gltfMeshExtractor {
	return &gltfMeshExtractorImpl{parser: parser}
}

func (e *gltfMeshExtractorImpl) ExtractMeshes() ([]importedMesh, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, fmt.Errorf("no document loaded")
	}

	var meshes []importedMesh
	for meshIdx, gm := range doc.Meshes {
		name := common.Coalesce(gm.Name, fmt.Sprintf("mesh_%d", meshIdx))

		for primIdx, prim := range gm.Primitives {
			primName := name
			if len(gm.Primitives) > 1 {
				primName = fmt.Sprintf("%s_%d", name, primIdx)
			}

			m, err := e.extractPrimitive(primName, &prim)
			if err != nil {
				return nil, fmt.Errorf("mesh %q primitive %d: %w", name, primIdx, err)
			}
			meshes = append(meshes, m)
		}
	}

	return meshes, nil
}

// extractPrimitive extracts a single primitive into an importedMesh.
func (e *gltfMeshExtractorImpl) extractPrimitive(name string, prim *gltfPrimitive) (importedMesh, error) {
	m := importedMesh{Name: name, MaterialIndex: -1}

	if prim.Mode != nil && *prim.Mode != gltfPrimitiveModeTriangles {
		return m, fmt.Errorf("unsupported primitive mode %d: only TRIANGLES is supported", *prim.Mode)
	}

	posIdx, ok := prim.Attributes["POSITION"]
	if !ok {
		return m, fmt.Errorf("primitive has no POSITION attribute")
	}

	positions, err := e.parser.ReadVec3Accessor(posIdx)
	if err != nil {
		return m, fmt.Errorf("failed to read positions: %w", err)
	}
	m.Positions = positions

	if normIdx, ok := prim.Attributes["NORMAL"]; ok {
		normals, err := e.parser.ReadVec3Accessor(normIdx)
		if err != nil {
			return m, fmt.Errorf("failed to read normals: %w", err)
		}
		m.Normals = normals
	}

	if uvIdx, ok := prim.Attributes["TEXCOORD_0"]; ok {
		uvs, err := e.parser.ReadVec2Accessor(uvIdx)
		if err != nil {
			return m, fmt.Errorf("failed to read texture coordinates: %w", err)
		}
		m.UVs = uvs
	}

	if prim.Indices != nil {
		indices, err := e.parser.ReadIndicesAccessor(*prim.Indices)
		if err != nil {
			return m, fmt.Errorf("failed to read indices: %w", err)
		}
		m.Indices = indices
	} else {
		// Non-indexed geometry: generate sequential indices.
		m.Indices = make([]uint32, len(m.Positions))
		for i := range m.Indices {
			m.Indices[i] = uint32(i)
		}
	}

	if m.Normals == nil {
		m.Normals = generateNormals(m.Positions, m.Indices)
	}
	if len(m.Normals) != len(m.Positions) {
		return m, fmt.Errorf("normal count %d does not match position count %d", len(m.Normals), len(m.Positions))
	}
	if m.UVs != nil && len(m.UVs) != len(m.Positions) {
		return m, fmt.Errorf("uv count %d does not match position count %d", len(m.UVs), len(m.Positions))
	}

	if prim.Material != nil {
		m.MaterialIndex = *prim.Material
	}

	return m, nil
}

// generateNormals computes smooth per-vertex normals by accumulating
// area-weighted triangle normals. Cross products are not normalized before
// accumulation so larger triangles contribute more.
func generateNormals(positions [][3]float32, indices []uint32) [][3]float32 {
	normals := make([][3]float32, len(positions))

	for i := 0; i+2 < len(indices); i += 3 {
		i0, i1, i2 := indices[i], indices[i+1], indices[i+2]
		if int(i0) >= len(positions) || int(i1) >= len(positions) || int(i2) >= len(positions) {
			continue
		}

		p0, p1, p2 := positions[i0], positions[i1], positions[i2]

		e1 := [3]float32{p1[0] - p0[0], p1[1] - p0[1], p1[2] - p0[2]}
		e2 := [3]float32{p2[0] - p0[0], p2[1] - p0[1], p2[2] - p0[2]}

		n := [3]float32{
			e1[1]*e2[2] - e1[2]*e2[1],
			e1[2]*e2[0] - e1[0]*e2[2],
			e1[0]*e2[1] - e1[1]*e2[0],
		}

		for _, idx := range []uint32{i0, i1, i2} {
			normals[idx][0] += n[0]
			normals[idx][1] += n[1]
			normals[idx][2] += n[2]
		}
	}

	for i := range normals {
		n := normals[i]
		lenSq := n[0]*n[0] + n[1]*n[1] + n[2]*n[2]
		if lenSq > 1e-12 {
			invLen := 1.0 / float32(math.Sqrt(float64(lenSq)))
			normals[i] = [3]float32{n[0] * invLen, n[1] * invLen, n[2] * invLen}
		} else {
			// Degenerate vertex (no non-zero triangle touches it).
			normals[i] = [3]float32{0, 1, 0}
		}
	}

	return normals
}
