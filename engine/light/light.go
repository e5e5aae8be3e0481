package light

import (
	"github.com/DarioCorno/skengio/engine/transform"
)

// lightImpl is the implementation of the Light interface.
type lightImpl struct {
	transform transform.Transform
	color     [3]float32
	intensity float32

	colorDirty     bool
	intensityDirty bool

	// seenTransformVersion is the transform generation last acknowledged by
	// ClearAllDirty; the position is dirty whenever the transform has moved
	// past it.
	seenTransformVersion uint64
}

// Light defines the interface for a point light source in the scene.
//
// Lights carry a Transform for their world-space position plus color and
// intensity. Every property tracks its own dirty state so the lighting pass
// can upload only what changed since the previous frame: setters compare the
// new value against the current one by exact equality and raise no dirty flag
// when the value is unchanged. Setting the same color twice never triggers a
// re-upload.
type Light interface {
	// Transform returns the spatial component carrying the light's position.
	//
	// Returns:
	//   - transform.Transform: the light's transform
	Transform() transform.Transform

	// Position returns the world-space position of the light.
	//
	// Returns:
	//   - [3]float32: position as (x, y, z)
	Position() [3]float32

	// Color returns the RGB color of the light.
	//
	// Returns:
	//   - [3]float32: color as (r, g, b)
	Color() [3]float32

	// Intensity returns the scalar intensity multiplier for the light.
	//
	// Returns:
	//   - float32: the intensity value
	Intensity() float32

	// SetPosition sets the world-space position. A no-op (no dirty flag)
	// when the new position equals the current one exactly.
	//
	// Parameters:
	//   - x, y, z: position components
	SetPosition(x, y, z float32)

	// SetColor sets the RGB color. A no-op (no dirty flag) when the new
	// color equals the current one exactly.
	//
	// Parameters:
	//   - r, g, b: color components
	SetColor(r, g, b float32)

	// SetIntensity sets the scalar intensity multiplier. A no-op (no dirty
	// flag) when the new intensity equals the current one exactly.
	//
	// Parameters:
	//   - intensity: the intensity value
	SetIntensity(intensity float32)

	// IsPositionDirty reports whether the position changed since the last
	// ClearAllDirty.
	//
	// Returns:
	//   - bool: true if the position needs re-uploading
	IsPositionDirty() bool

	// IsColorDirty reports whether the color changed since the last
	// ClearAllDirty.
	//
	// Returns:
	//   - bool: true if the color needs re-uploading
	IsColorDirty() bool

	// IsIntensityDirty reports whether the intensity changed since the last
	// ClearAllDirty.
	//
	// Returns:
	//   - bool: true if the intensity needs re-uploading
	IsIntensityDirty() bool

	// IsAnyPropertyDirty reports whether any property changed since the
	// last ClearAllDirty.
	//
	// Returns:
	//   - bool: true if any property needs re-uploading
	IsAnyPropertyDirty() bool

	// ClearAllDirty acknowledges all pending changes. Called by the
	// lighting pass after its upload loop.
	ClearAllDirty()

	// ForceAllDirty marks every property dirty, forcing a full re-upload on
	// the next frame. Used after a context rebuild.
	ForceAllDirty()
}

var _ Light = &lightImpl{}

// NewLight creates a new white point light at the origin with intensity 1 and
// any provided options applied. The light starts with every property dirty so
// its first frame uploads everything.
//
// Parameters:
//   - opts: variadic list of LightBuilderOption functions to configure the light
//
// Returns:
//   - Light: a new Light instance
func NewLight(opts ...LightBuilderOption) Light {
	l := &lightImpl{
		transform:      transform.NewTransform(),
		color:          [3]float32{1, 1, 1},
		intensity:      1.0,
		colorDirty:     true,
		intensityDirty: true,
	}
	for _, opt := range opts {
		opt(l)
	}
	// First frame uploads the position regardless of options.
	l.transform.ForceDirty()
	return l
}

func (l *lightImpl) Transform() transform.Transform {
	return l.transform
}

func (l *lightImpl) Position() [3]float32 {
	return l.transform.Position()
}

func (l *lightImpl) Color() [3]float32 {
	return l.color
}

func (l *lightImpl) Intensity() float32 {
	return l.intensity
}

func (l *lightImpl) SetPosition(x, y, z float32) {
	if p := l.transform.Position(); p[0] == x && p[1] == y && p[2] == z {
		return
	}
	l.transform.SetPosition(x, y, z)
}

func (l *lightImpl) SetColor(r, g, b float32) {
	if l.color[0] == r && l.color[1] == g && l.color[2] == b {
		return
	}
	l.color = [3]float32{r, g, b}
	l.colorDirty = true
}

func (l *lightImpl) SetIntensity(intensity float32) {
	if l.intensity == intensity {
		return
	}
	l.intensity = intensity
	l.intensityDirty = true
}

func (l *lightImpl) IsPositionDirty() bool {
	return l.transform.Version() != l.seenTransformVersion
}

func (l *lightImpl) IsColorDirty() bool {
	return l.colorDirty
}

func (l *lightImpl) IsIntensityDirty() bool {
	return l.intensityDirty
}

func (l *lightImpl) IsAnyPropertyDirty() bool {
	return l.IsPositionDirty() || l.colorDirty || l.intensityDirty
}

func (l *lightImpl) ClearAllDirty() {
	l.seenTransformVersion = l.transform.Version()
	l.colorDirty = false
	l.intensityDirty = false
}

func (l *lightImpl) ForceAllDirty() {
	l.transform.ForceDirty()
	l.colorDirty = true
	l.intensityDirty = true
}
