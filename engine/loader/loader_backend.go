package loader

import (
	"io"

	"github.com/DarioCorno/skengio/common"
)

// importedMesh is the CPU-side geometry of a single primitive, ready to become
// a mesh.Mesh. Normals are always populated; generated from the triangle
// topology when the source file omits them.
type importedMesh struct {
	Name          string
	Positions     [][3]float32
	Normals       [][3]float32
	UVs           [][2]float32
	Indices       []uint32
	MaterialIndex int
}

// importedMaterial is the CPU-side surface description extracted from the
// source file, before conversion into a material.Material.
type importedMaterial struct {
	Name           string
	BaseColor      [4]float32
	Roughness      float32
	DiffuseTexture *common.ImportedTexture
}

// importedScene is everything a loader backend pulls out of one asset file.
type importedScene struct {
	Name      string
	Meshes    []importedMesh
	Materials []importedMaterial
}

// loaderBackend abstracts the model file format behind a format-specific
// implementation. Internal to the loader package.
type loaderBackend interface {
	// Load imports an asset file from disk.
	//
	// Parameters:
	//   - path: the file path to the asset
	//
	// Returns:
	//   - *importedScene: the CPU-side scene data
	//   - error: error if loading fails
	Load(path string) (*importedScene, error)

	// LoadReader imports an asset from a reader stream.
	//
	// Parameters:
	//   - r: the reader providing asset data
	//   - isGLB: true if the reader provides GLB binary data
	//
	// Returns:
	//   - *importedScene: the CPU-side scene data
	//   - error: error if loading fails
	LoadReader(r io.Reader, isGLB bool) (*importedScene, error)
}
