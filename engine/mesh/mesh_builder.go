package mesh

import (
	"github.com/DarioCorno/skengio/engine/renderer/material"
	"github.com/DarioCorno/skengio/engine/transform"
)

// MeshBuilderOption is a function that configures a mesh instance during construction.
type MeshBuilderOption func(*meshImpl)

// WithGeometry is an option builder that supplies the mesh's vertex arrays
// and triangle indices. Normals and texture coordinates may be nil.
//
// Parameters:
//   - positions: vertex positions, 3 floats per vertex
//   - normals: vertex normals, 3 floats per vertex, or nil
//   - uvs: texture coordinates, 2 floats per vertex, or nil
//   - indices: triangle indices
//
// Returns:
//   - MeshBuilderOption: a function that applies the geometry to a mesh
func WithGeometry(positions, normals, uvs []float32, indices []uint32) MeshBuilderOption {
	return func(m *meshImpl) {
		m.positions = positions
		m.normals = normals
		m.uvs = uvs
		m.indices = indices
	}
}

// WithMaterial is an option builder that sets the mesh's material reference.
//
// Parameters:
//   - mat: the material applied by the geometry pass
//
// Returns:
//   - MeshBuilderOption: a function that applies the material to a mesh
func WithMaterial(mat material.Material) MeshBuilderOption {
	return func(m *meshImpl) {
		m.material = mat
	}
}

// WithTransform is an option builder that replaces the mesh's transform.
//
// Parameters:
//   - t: the transform to attach
//
// Returns:
//   - MeshBuilderOption: a function that applies the transform to a mesh
func WithTransform(t transform.Transform) MeshBuilderOption {
	return func(m *meshImpl) {
		m.transform = t
	}
}

// WithDebugProxy is an option builder that marks the mesh as a
// debug-visualization proxy. Proxy object ids are negated in the G-buffer.
//
// Returns:
//   - MeshBuilderOption: a function that marks a mesh as a debug proxy
func WithDebugProxy() MeshBuilderOption {
	return func(m *meshImpl) {
		m.debugProxy = true
	}
}
