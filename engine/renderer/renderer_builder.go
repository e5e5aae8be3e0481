package renderer

import "github.com/DarioCorno/skengio/engine/renderer/backend"

// RendererBuilderOption is a function that modifies the rendererImpl.
//
// Parameters:
//   - r: the rendererImpl to modify
type RendererBuilderOption func(r *rendererImpl)

// WithBackend sets the rendering backend by registry name, for example
// backend.BackendOpenGL or backend.BackendRecording. Unknown names leave the
// default backend in place.
//
// Parameters:
//   - name: the registered backend name
//
// Returns:
//   - RendererBuilderOption: the option function
func WithBackend(name string) RendererBuilderOption {
	return func(r *rendererImpl) {
		if b := backend.Get(name); b != nil {
			r.b = b
		}
	}
}

// WithBackendInstance sets a specific backend instance, bypassing the
// registry. Useful for tests that need to inspect the backend afterwards.
//
// Parameters:
//   - b: the backend instance
//
// Returns:
//   - RendererBuilderOption: the option function
func WithBackendInstance(b backend.RendererBackend) RendererBuilderOption {
	return func(r *rendererImpl) {
		if b != nil {
			r.b = b
		}
	}
}

// WithSize sets the initial drawable size in pixels.
//
// Parameters:
//   - width: the drawable width
//   - height: the drawable height
//
// Returns:
//   - RendererBuilderOption: the option function
func WithSize(width, height int) RendererBuilderOption {
	return func(r *rendererImpl) {
		if width > 0 && height > 0 {
			r.width = width
			r.height = height
		}
	}
}
