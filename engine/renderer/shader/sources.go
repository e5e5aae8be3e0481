package shader

import _ "embed"

// MaxLights is the size of the uLights array in the lighting shader. Scenes
// with more lights have the excess ignored by the lighting pass.
const MaxLights = 16

// LightFieldNames are the struct fields of each uLights array element, in
// upload order.
var LightFieldNames = []string{
	"uLightPosition",
	"uModelViewMatrix",
	"uLightColor",
	"uLightIntensity",
}

//go:embed glsl/depth.vert
var DepthVertexSource string

//go:embed glsl/depth.frag
var DepthFragmentSource string

//go:embed glsl/geometry.vert
var GeometryVertexSource string

//go:embed glsl/geometry.frag
var GeometryFragmentSource string

//go:embed glsl/lighting.vert
var LightingVertexSource string

//go:embed glsl/lighting.frag
var LightingFragmentSource string
