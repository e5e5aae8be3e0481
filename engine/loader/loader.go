// Package loader imports 3D model files into engine meshes. glTF 2.0 is the
// supported format, in both its JSON (.gltf) and binary (.glb) flavors.
// Loaded models are cached by name so repeated loads of the same asset are
// free.
package loader

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/DarioCorno/skengio/engine/mesh"
	"github.com/DarioCorno/skengio/engine/renderer/material"
)

// BackendType identifies a model file format.
type BackendType string

const (
	// BackendTypeGLTF handles glTF 2.0 files (.gltf and .glb).
	BackendTypeGLTF BackendType = "gltf"
)

// loaderImpl is the implementation of the Loader interface.
type loaderImpl struct {
	mu      sync.RWMutex
	backend loaderBackend
	cache   map[string][]mesh.Mesh
}

// Loader imports model files and converts them into renderable meshes.
// Safe for concurrent use.
type Loader interface {
	// Load imports a model file from disk. The result is cached under the
	// file's base name, so a second Load of the same path returns the cached
	// meshes.
	//
	// Parameters:
	//   - path: path to the model file
	//
	// Returns:
	//   - []mesh.Mesh: the imported meshes, one per primitive
	//   - error: error if loading fails
	Load(path string) ([]mesh.Mesh, error)

	// LoadReader imports a model from a reader stream and caches it under
	// the given name. Use this for embedded or downloaded assets.
	//
	// Parameters:
	//   - name: cache key for the imported model
	//   - r: reader providing the model data
	//   - isGLB: true if the reader provides GLB binary data
	//
	// Returns:
	//   - []mesh.Mesh: the imported meshes, one per primitive
	//   - error: error if loading fails
	LoadReader(name string, r io.Reader, isGLB bool) ([]mesh.Mesh, error)

	// Get returns a previously loaded model by name.
	//
	// Parameters:
	//   - name: the model name
	//
	// Returns:
	//   - []mesh.Mesh: the cached meshes
	//   - bool: true if the model was found
	Get(name string) ([]mesh.Mesh, bool)

	// Models returns the names of all loaded models.
	//
	// Returns:
	//   - []string: the model names
	Models() []string
}

var _ Loader = &loaderImpl{}

func (l *loaderImpl) Load(path string) ([]mesh.Mesh, error) {
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))

	l.mu.RLock()
	if meshes, ok := l.cache[name]; ok {
		l.mu.RUnlock()
		return meshes, nil
	}
	l.mu.RUnlock()

	scn, err := l.backend.Load(path)
	if err != nil {
		return nil, err
	}

	meshes, err := convertScene(scn)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.cache[name] = meshes
	l.mu.Unlock()

	return meshes, nil
}

func (l *loaderImpl) LoadReader(name string, r io.Reader, isGLB bool) ([]mesh.Mesh, error) {
	l.mu.RLock()
	if meshes, ok := l.cache[name]; ok {
		l.mu.RUnlock()
		return meshes, nil
	}
	l.mu.RUnlock()

	scn, err := l.backend.LoadReader(r, isGLB)
	if err != nil {
		return nil, err
	}
	scn.Name = name

	meshes, err := convertScene(scn)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.cache[name] = meshes
	l.mu.Unlock()

	return meshes, nil
}

func (l *loaderImpl) Get(name string) ([]mesh.Mesh, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	meshes, ok := l.cache[name]
	return meshes, ok
}

func (l *loaderImpl) Models() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	names := make([]string, 0, len(l.cache))
	for name := range l.cache {
		names = append(names, name)
	}
	return names
}

// convertScene turns an importedScene into engine meshes, building one
// material per imported material and sharing it across the primitives that
// reference it.
func convertScene(scn *importedScene) ([]mesh.Mesh, error) {
	materials := make([]material.Material, len(scn.Materials))
	for i, im := range scn.Materials {
		options := []material.MaterialBuilderOption{
			material.WithName(im.Name),
			material.WithDiffuseColor(im.BaseColor),
			material.WithShininess(roughnessToShininess(im.Roughness)),
		}
		if im.DiffuseTexture != nil {
			options = append(options, material.WithDiffuseTexture(im.DiffuseTexture))
		}
		materials[i] = material.NewMaterial(options...)
	}

	meshes := make([]mesh.Mesh, 0, len(scn.Meshes))
	for _, im := range scn.Meshes {
		options := []mesh.MeshBuilderOption{
			mesh.WithGeometry(flatten3(im.Positions), flatten3(im.Normals), flatten2(im.UVs), im.Indices),
		}
		if im.MaterialIndex >= 0 {
			options = append(options, mesh.WithMaterial(materials[im.MaterialIndex]))
		}
		meshes = append(meshes, mesh.NewMesh(options...))
	}

	if len(meshes) == 0 {
		return nil, fmt.Errorf("model %q contains no meshes", scn.Name)
	}

	return meshes, nil
}

// roughnessToShininess maps a PBR roughness factor to a Blinn-Phong specular
// exponent. Rough surfaces get a wide, dim highlight; smooth surfaces a
// tight, bright one.
func roughnessToShininess(roughness float32) float32 {
	smooth := 1 - clamp01(roughness)
	return 2 + smooth*smooth*126
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func flatten3(vs [][3]float32) []float32 {
	out := make([]float32, 0, len(vs)*3)
	for _, v := range vs {
		out = append(out, v[0], v[1], v[2])
	}
	return out
}

func flatten2(vs [][2]float32) []float32 {
	if vs == nil {
		return nil
	}
	out := make([]float32, 0, len(vs)*2)
	for _, v := range vs {
		out = append(out, v[0], v[1])
	}
	return out
}
