package scene

import (
	"github.com/DarioCorno/skengio/engine/camera"
)

// SceneBuilderOption is a function that configures a scene instance during construction.
type SceneBuilderOption func(*scene)

// WithCamera is an option builder that attaches the scene camera.
//
// Parameters:
//   - cam: the camera to attach
//
// Returns:
//   - SceneBuilderOption: a function that applies the camera option to a scene
func WithCamera(cam camera.Camera) SceneBuilderOption {
	return func(s *scene) {
		s.cam = cam
	}
}

// WithZIndex is an option builder that sets the scene's draw ordering index.
//
// Parameters:
//   - zIndex: the z-index
//
// Returns:
//   - SceneBuilderOption: a function that applies the z-index option to a scene
func WithZIndex(zIndex int) SceneBuilderOption {
	return func(s *scene) {
		s.zIndex = zIndex
	}
}

// WithActive is an option builder that sets whether the scene starts active.
//
// Parameters:
//   - active: true to render the scene
//
// Returns:
//   - SceneBuilderOption: a function that applies the active option to a scene
func WithActive(active bool) SceneBuilderOption {
	return func(s *scene) {
		s.active = active
	}
}

// WithComputeWorkers is an option builder that overrides the worker count of
// the tangent generation pool.
//
// Parameters:
//   - workers: the number of pool workers, minimum 1
//
// Returns:
//   - SceneBuilderOption: a function that applies the worker count option to a scene
func WithComputeWorkers(workers int) SceneBuilderOption {
	return func(s *scene) {
		s.computeWorkers = max(workers, 1)
	}
}
