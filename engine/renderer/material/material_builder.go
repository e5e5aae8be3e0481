package material

import (
	"github.com/DarioCorno/skengio/common"
)

// MaterialBuilderOption is a function that configures a material instance during construction.
type MaterialBuilderOption func(*material)

// WithName is an option builder that sets the name of the material.
//
// Parameters:
//   - name: the identifier for the material
//
// Returns:
//   - MaterialBuilderOption: a function that applies the name option to a material
func WithName(name string) MaterialBuilderOption {
	return func(m *material) {
		m.name = name
	}
}

// WithDiffuseColor is an option builder that sets the diffuse RGBA color of the material.
//
// Parameters:
//   - color: the diffuse color as RGBA float32 values
//
// Returns:
//   - MaterialBuilderOption: a function that applies the diffuse color option to a material
func WithDiffuseColor(color [4]float32) MaterialBuilderOption {
	return func(m *material) {
		m.diffuseColor = color
	}
}

// WithShininess is an option builder that sets the specular exponent of the material.
//
// Parameters:
//   - shininess: the specular exponent
//
// Returns:
//   - MaterialBuilderOption: a function that applies the shininess option to a material
func WithShininess(shininess float32) MaterialBuilderOption {
	return func(m *material) {
		m.shininess = shininess
	}
}

// WithDiffuseTexture is an option builder that sets the diffuse texture reference.
//
// Parameters:
//   - tex: the imported texture data for the diffuse map
//
// Returns:
//   - MaterialBuilderOption: a function that applies the diffuse texture option to a material
func WithDiffuseTexture(tex *common.ImportedTexture) MaterialBuilderOption {
	return func(m *material) {
		m.diffuseTexture = tex
	}
}
