package transform

import (
	"github.com/DarioCorno/skengio/common"
)

// transformImpl is the implementation of the Transform interface.
type transformImpl struct {
	position [3]float32
	rotation [3]float32 // Euler angles in radians
	scale    [3]float32

	modelMatrix [16]float32
	dirty       bool

	static bool
	locked bool

	version uint64
}

// Transform defines the interface for the spatial component shared by every
// scene entity (meshes, lights, cameras, debug proxies).
//
// A Transform owns position, Euler rotation, and scale, and lazily composes
// them into a cached 4x4 model matrix. The cached matrix is valid exactly
// when the transform is not dirty; any effective mutation marks it dirty and
// the matrix is recomposed on the next ModelMatrix call.
//
// Static transforms lock after their first placement: the first mutation of a
// static transform composes and freezes the matrix, and every later mutation
// is a no-op. This lets the renderer skip matrix recomposition for immovable
// geometry without checking per-frame.
type Transform interface {
	// Position returns the world-space position.
	//
	// Returns:
	//   - [3]float32: position as (x, y, z)
	Position() [3]float32

	// Rotation returns the Euler rotation in radians.
	//
	// Returns:
	//   - [3]float32: rotation around the x, y, and z axes
	Rotation() [3]float32

	// Scale returns the per-axis scale factors.
	//
	// Returns:
	//   - [3]float32: scale as (x, y, z)
	Scale() [3]float32

	// SetPosition sets the world-space position. No-op once a static
	// transform has locked.
	//
	// Parameters:
	//   - x, y, z: position components
	SetPosition(x, y, z float32)

	// SetRotation sets the Euler rotation in radians. No-op once a static
	// transform has locked.
	//
	// Parameters:
	//   - x, y, z: rotation angles around each axis
	SetRotation(x, y, z float32)

	// SetScale sets the per-axis scale factors. No-op once a static
	// transform has locked.
	//
	// Parameters:
	//   - x, y, z: scale factors
	SetScale(x, y, z float32)

	// Translate offsets the position by the given delta.
	//
	// Parameters:
	//   - dx, dy, dz: translation delta
	Translate(dx, dy, dz float32)

	// Rotate offsets the Euler rotation by the given delta in radians.
	//
	// Parameters:
	//   - dx, dy, dz: rotation delta around each axis
	Rotate(dx, dy, dz float32)

	// ScaleBy multiplies the scale component-wise by the given factors.
	//
	// Parameters:
	//   - sx, sy, sz: scale multipliers
	ScaleBy(sx, sy, sz float32)

	// ModelMatrix returns the composed model matrix
	// (Translate * RotX * RotY * RotZ * Scale, column-major).
	// Recomposes only when the transform is dirty; otherwise returns the
	// cached matrix.
	//
	// Returns:
	//   - [16]float32: the model matrix
	ModelMatrix() [16]float32

	// Dirty reports whether the cached model matrix is stale.
	//
	// Returns:
	//   - bool: true if the next ModelMatrix call will recompose
	Dirty() bool

	// ForceDirty marks the cached matrix stale regardless of the static
	// lock, forcing a recomposition on the next ModelMatrix call.
	ForceDirty()

	// Static reports whether this transform locks after first placement.
	//
	// Returns:
	//   - bool: true if static
	Static() bool

	// SetStatic toggles the lock-after-first-placement mode. Enabling it on
	// a transform that has already been placed locks immediately.
	//
	// Parameters:
	//   - static: true to enable static mode
	SetStatic(static bool)

	// Version returns a generation counter incremented on every effective
	// mutation. Consumers snapshot it to detect changes without sharing
	// dirty flags.
	//
	// Returns:
	//   - uint64: the current generation
	Version() uint64
}

var _ Transform = &transformImpl{}

// NewTransform creates a Transform with identity position, rotation, and unit
// scale, then applies the provided options.
//
// Parameters:
//   - options: functional options to configure the transform
//
// Returns:
//   - Transform: the newly created transform
func NewTransform(options ...TransformBuilderOption) Transform {
	t := &transformImpl{
		scale: [3]float32{1, 1, 1},
	}
	common.Identity(t.modelMatrix[:])
	for _, option := range options {
		option(t)
	}
	return t
}

func (t *transformImpl) Position() [3]float32 {
	return t.position
}

func (t *transformImpl) Rotation() [3]float32 {
	return t.rotation
}

func (t *transformImpl) Scale() [3]float32 {
	return t.scale
}

func (t *transformImpl) SetPosition(x, y, z float32) {
	if t.locked {
		return
	}
	t.position = [3]float32{x, y, z}
	t.mutated()
}

func (t *transformImpl) SetRotation(x, y, z float32) {
	if t.locked {
		return
	}
	t.rotation = [3]float32{x, y, z}
	t.mutated()
}

func (t *transformImpl) SetScale(x, y, z float32) {
	if t.locked {
		return
	}
	t.scale = [3]float32{x, y, z}
	t.mutated()
}

func (t *transformImpl) Translate(dx, dy, dz float32) {
	if t.locked {
		return
	}
	t.position[0] += dx
	t.position[1] += dy
	t.position[2] += dz
	t.mutated()
}

func (t *transformImpl) Rotate(dx, dy, dz float32) {
	if t.locked {
		return
	}
	t.rotation[0] += dx
	t.rotation[1] += dy
	t.rotation[2] += dz
	t.mutated()
}

func (t *transformImpl) ScaleBy(sx, sy, sz float32) {
	if t.locked {
		return
	}
	t.scale[0] *= sx
	t.scale[1] *= sy
	t.scale[2] *= sz
	t.mutated()
}

func (t *transformImpl) ModelMatrix() [16]float32 {
	if t.dirty {
		t.compose()
	}
	return t.modelMatrix
}

func (t *transformImpl) Dirty() bool {
	return t.dirty
}

func (t *transformImpl) ForceDirty() {
	t.dirty = true
	t.version++
}

func (t *transformImpl) Static() bool {
	return t.static
}

func (t *transformImpl) SetStatic(static bool) {
	t.static = static
	if !static {
		t.locked = false
		return
	}
	// A static transform that has already been placed locks immediately.
	if t.version > 0 {
		if t.dirty {
			t.compose()
		}
		t.locked = true
	}
}

func (t *transformImpl) Version() uint64 {
	return t.version
}

// mutated records an effective mutation. Static transforms compose and lock
// on their first placement instead of deferring to the next read.
func (t *transformImpl) mutated() {
	t.dirty = true
	t.version++
	if t.static {
		t.compose()
		t.locked = true
	}
}

// compose rebuilds the cached model matrix and clears the dirty flag.
func (t *transformImpl) compose() {
	common.ComposeTRS(t.modelMatrix[:],
		t.position[0], t.position[1], t.position[2],
		t.rotation[0], t.rotation[1], t.rotation[2],
		t.scale[0], t.scale[1], t.scale[2],
	)
	t.dirty = false
}
