package material

import (
	"fmt"

	"github.com/DarioCorno/skengio/common"
	"github.com/DarioCorno/skengio/engine/renderer/backend"
)

// material is the implementation of the Material interface.
type material struct {
	name           string
	diffuseColor   [4]float32
	shininess      float32
	diffuseTexture *common.ImportedTexture

	textureHandle backend.Texture
	hasTexture    bool
}

// Material defines the interface for a render material consumed by the
// geometry pass: a diffuse RGBA color, a shininess exponent, and an optional
// diffuse texture.
//
// Surface properties (name, color, shininess, texture reference) are set at
// construction and are read-only through this interface. The GPU texture
// handle is created in Init and released in Dispose; ownership of the
// material stays with whoever created it — the scene and meshes only hold
// references, and sharing one material across meshes is expected.
type Material interface {
	// Name retrieves the material identifier.
	//
	// Returns:
	//   - string: the name of the material
	Name() string

	// DiffuseColor retrieves the diffuse RGBA color of the material.
	//
	// Returns:
	//   - [4]float32: the diffuse color as RGBA values
	DiffuseColor() [4]float32

	// Shininess retrieves the specular exponent of the material.
	//
	// Returns:
	//   - float32: the shininess value
	Shininess() float32

	// DiffuseTexture retrieves the diffuse texture data reference, or nil
	// if the material is untextured.
	//
	// Returns:
	//   - *common.ImportedTexture: the diffuse texture, or nil
	DiffuseTexture() *common.ImportedTexture

	// HasTexture reports whether a GPU texture is ready for sampling.
	// False until Init succeeds on a textured material.
	//
	// Returns:
	//   - bool: true if TextureHandle is valid
	HasTexture() bool

	// TextureHandle retrieves the GPU texture handle created by Init.
	//
	// Returns:
	//   - backend.Texture: the texture handle, zero when untextured
	TextureHandle() backend.Texture

	// Init decodes the diffuse texture (when present) and uploads it to the
	// GPU. Calling Init on an untextured or already initialized material is
	// a no-op.
	//
	// Parameters:
	//   - b: the rendering backend
	//
	// Returns:
	//   - error: an error if decoding or upload fails
	Init(b backend.RendererBackend) error

	// Dispose releases the GPU texture, if any.
	//
	// Parameters:
	//   - b: the rendering backend
	Dispose(b backend.RendererBackend)

	// Invalidate drops the GPU texture handle without issuing a delete,
	// after the environment reported a context loss. The texture data
	// reference stays; Init re-uploads it on the rebuilt context.
	Invalidate()
}

var _ Material = &material{}

// NewMaterial creates a new Material instance configured with the provided
// options. Defaults to an untextured white material with a modest specular
// exponent.
//
// Parameters:
//   - options: variadic list of MaterialBuilderOption functions to configure the material
//
// Returns:
//   - Material: a new Material instance
func NewMaterial(options ...MaterialBuilderOption) Material {
	m := &material{
		diffuseColor: [4]float32{1, 1, 1, 1},
		shininess:    32.0,
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *material) Name() string {
	return m.name
}

func (m *material) DiffuseColor() [4]float32 {
	return m.diffuseColor
}

func (m *material) Shininess() float32 {
	return m.shininess
}

func (m *material) DiffuseTexture() *common.ImportedTexture {
	return m.diffuseTexture
}

func (m *material) HasTexture() bool {
	return m.hasTexture
}

func (m *material) TextureHandle() backend.Texture {
	return m.textureHandle
}

func (m *material) Init(b backend.RendererBackend) error {
	if m.diffuseTexture == nil || m.hasTexture {
		return nil
	}

	data, err := m.diffuseTexture.Decode()
	if err != nil {
		return fmt.Errorf("failed to decode diffuse texture for material %q: %w", m.name, err)
	}

	handle, err := b.CreateImageTexture(data)
	if err != nil {
		return fmt.Errorf("failed to upload diffuse texture for material %q: %w", m.name, err)
	}

	m.textureHandle = handle
	m.hasTexture = true
	return nil
}

func (m *material) Invalidate() {
	m.textureHandle = 0
	m.hasTexture = false
}

func (m *material) Dispose(b backend.RendererBackend) {
	if !m.hasTexture {
		return
	}
	b.DeleteTexture(m.textureHandle)
	m.textureHandle = 0
	m.hasTexture = false
}
