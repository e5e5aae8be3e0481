package transform

type TransformBuilderOption func(*transformImpl)

// WithPosition sets the initial world-space position.
//
// Parameters:
//   - x, y, z: position components
//
// Returns:
//   - TransformBuilderOption: a function that sets the position
func WithPosition(x, y, z float32) TransformBuilderOption {
	return func(t *transformImpl) {
		t.SetPosition(x, y, z)
	}
}

// WithRotation sets the initial Euler rotation in radians.
//
// Parameters:
//   - x, y, z: rotation angles around each axis
//
// Returns:
//   - TransformBuilderOption: a function that sets the rotation
func WithRotation(x, y, z float32) TransformBuilderOption {
	return func(t *transformImpl) {
		t.SetRotation(x, y, z)
	}
}

// WithScale sets the initial per-axis scale factors.
//
// Parameters:
//   - x, y, z: scale factors
//
// Returns:
//   - TransformBuilderOption: a function that sets the scale
func WithScale(x, y, z float32) TransformBuilderOption {
	return func(t *transformImpl) {
		t.SetScale(x, y, z)
	}
}

// WithStatic enables lock-after-first-placement mode. Apply this option
// before position/rotation/scale options to lock on the first of them, or
// after to lock with the configured placement.
//
// Returns:
//   - TransformBuilderOption: a function that marks the transform static
func WithStatic() TransformBuilderOption {
	return func(t *transformImpl) {
		t.SetStatic(true)
	}
}
