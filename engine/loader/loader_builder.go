package loader

import (
	"fmt"

	"github.com/DarioCorno/skengio/engine/mesh"
)

// LoaderBuilderOption is a functional option for configuring a Loader on
// creation.
type LoaderBuilderOption func(*loaderImpl)

// NewLoader creates a model loader for the given file format.
//
// Parameters:
//   - backendType: the model file format to handle
//   - options: optional configuration options
//
// Returns:
//   - Loader: the new loader
//   - error: error if the backend type is unknown
func NewLoader(backendType BackendType, options ...LoaderBuilderOption) (Loader, error) {
	var backend loaderBackend
	switch backendType {
	case BackendTypeGLTF:
		backend = newGLTFLoaderBackend()
	default:
		return nil, fmt.Errorf("unknown loader backend type: %s", backendType)
	}

	l := &loaderImpl{
		backend: backend,
		cache:   make(map[string][]mesh.Mesh),
	}

	for _, opt := range options {
		opt(l)
	}

	return l, nil
}

// WithModel pre-populates the cache with an already built model, keyed by
// name. Useful for procedurally generated assets that should be reachable
// through the same lookup as file-loaded ones.
//
// Parameters:
//   - name: the cache key
//   - meshes: the model's meshes
//
// Returns:
//   - LoaderBuilderOption: the builder option
func WithModel(name string, meshes []mesh.Mesh) LoaderBuilderOption {
	return func(l *loaderImpl) {
		l.cache[name] = meshes
	}
}
