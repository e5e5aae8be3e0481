package loader

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// gltfLoaderBackend is the glTF 2.0 implementation of loaderBackend. It
// handles both .gltf (JSON) and .glb (binary) files.
type gltfLoaderBackend struct{}

var _ loaderBackend = &gltfLoaderBackend{}

// newGLTFLoaderBackend creates a new glTF loader backend.
//
// Returns:
//   - loaderBackend: a new backend instance
func newGLTFLoaderBackend() loaderBackend {
	return &gltfLoaderBackend{}
}

func (b *gltfLoaderBackend) Load(path string) (*importedScene, error) {
	parser := newGLTFParser()
	if err := parser.Parse(path); err != nil {
		return nil, fmt.Errorf("failed to parse %q: %w", path, err)
	}

	scn, err := b.extract(parser)
	if err != nil {
		return nil, fmt.Errorf("failed to extract %q: %w", path, err)
	}

	base := filepath.Base(path)
	scn.Name = strings.TrimSuffix(base, filepath.Ext(base))
	return scn, nil
}

func (b *gltfLoaderBackend) LoadReader(r io.Reader, isGLB bool) (*importedScene, error) {
	parser := newGLTFParser()
	if err := parser.ParseReader(r, isGLB); err != nil {
		return nil, fmt.Errorf("failed to parse stream: %w", err)
	}

	return b.extract(parser)
}

// extract runs the mesh and material extractors over a parsed document.
func (b *gltfLoaderBackend) extract(parser gltfParser) (*importedScene, error) {
	meshes, err := newGLTFMeshExtractor(parser).ExtractMeshes()
	if err != nil {
		return nil, err
	}

	materials, err := newGLTFMaterialExtractor(parser).ExtractMaterials()
	if err != nil {
		return nil, err
	}

	for _, m := range meshes {
		if m.MaterialIndex >= len(materials) {
			return nil, fmt.Errorf("mesh %q references material %d, document has %d", m.Name, m.MaterialIndex, len(materials))
		}
	}

	return &importedScene{Meshes: meshes, Materials: materials}, nil
}
