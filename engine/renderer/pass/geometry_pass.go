package pass

import (
	"fmt"

	"github.com/DarioCorno/skengio/common"
	"github.com/DarioCorno/skengio/engine/renderer/backend"
	"github.com/DarioCorno/skengio/engine/renderer/material"
	"github.com/DarioCorno/skengio/engine/renderer/shader"
	"github.com/DarioCorno/skengio/engine/scene"
)

// diffuseTextureUnit is the texture unit material diffuse maps bind to during
// the geometry pass.
const diffuseTextureUnit = 0

// GeometryPass fills the G-buffer. It runs with an equal-depth test against
// the prepass depth so only the front-most fragment of each pixel is shaded,
// and writes stencil 1 for every covered pixel, building the mask the
// lighting pass uses to skip background.
type GeometryPass struct {
	program *shader.Program
	cache   *shader.ShaderResourceCache
	gbuffer *GBuffer

	initialized bool
}

// NewGeometryPass creates an uninitialized geometry pass over the given
// G-buffer.
//
// Parameters:
//   - cache: the shared shader resource cache
//   - gbuffer: the G-buffer the pass renders into
//
// Returns:
//   - *GeometryPass: the new pass
func NewGeometryPass(cache *shader.ShaderResourceCache, gbuffer *GBuffer) *GeometryPass {
	return &GeometryPass{cache: cache, gbuffer: gbuffer}
}

// Init compiles the G-buffer program.
//
// Parameters:
//   - b: the rendering backend
//
// Returns:
//   - error: shader failure
func (p *GeometryPass) Init(b backend.RendererBackend) error {
	if p.initialized {
		return nil
	}

	program, err := shader.NewProgram(b, shader.GeometryVertexSource, shader.GeometryFragmentSource)
	if err != nil {
		return fmt.Errorf("geometry pass: %w", err)
	}
	p.program = program
	p.initialized = true
	return nil
}

// Execute draws every visible mesh into the G-buffer. The depth attachment
// already holds the prepass result: color and stencil are cleared, depth is
// preserved and tested for equality.
//
// Parameters:
//   - b: the rendering backend
//   - scn: the scene to draw
func (p *GeometryPass) Execute(b backend.RendererBackend, scn scene.Scene) {
	cam := scn.Camera()
	if cam == nil {
		return
	}

	width, height := p.gbuffer.Size()
	b.BindFramebuffer(p.gbuffer.Framebuffer())
	b.SetViewport(width, height)

	b.SetClearColor(0, 0, 0, 0)
	b.Clear(true, false, true)

	// Only exact depth-prepass winners survive; depth writes stay off since
	// the prepass value is already authoritative.
	b.SetDepthTest(true)
	b.SetDepthFunc(backend.DepthEqual)
	b.SetDepthWrite(false)

	b.SetStencilTest(true)
	b.SetStencilFunc(backend.StencilAlways, 1)
	b.SetStencilOp(backend.StencilReplace)

	p.program.Use(b)
	programHandle := p.program.Handle()

	projection := cam.ProjectionMatrix()
	b.UniformMatrix4(p.cache.UniformLocation(programHandle, "uProjectionMatrix"), projection[:])

	view := cam.ViewMatrix()
	mvLoc := p.cache.UniformLocation(programHandle, "uModelViewMatrix")
	objectDataLoc := p.cache.UniformLocation(programHandle, "uObjectData")
	materialColorLoc := p.cache.UniformLocation(programHandle, "uMaterialColor")
	shininessLoc := p.cache.UniformLocation(programHandle, "uMaterialShininess")
	useTextureLoc := p.cache.UniformLocation(programHandle, "uUseDiffuseTexture")
	textureLoc := p.cache.UniformLocation(programHandle, "uDiffuseTexture")

	var modelView [16]float32
	for _, m := range visibleMeshes(scn) {
		model := m.Transform().ModelMatrix()
		common.Mul4(modelView[:], view[:], model[:])
		b.UniformMatrix4(mvLoc, modelView[:])

		// The sign bit distinguishes debug proxies from primary geometry,
		// which caps usable ids at the float target's integer range.
		objectID := float32(m.ID())
		if m.DebugProxy() {
			objectID = -objectID
		}
		b.Uniform4f(objectDataLoc, objectID, 0, 0, 0)

		p.applyMaterial(b, m.Material(), materialColorLoc, shininessLoc, useTextureLoc, textureLoc)

		m.RetrieveAttribLocations(p.cache, programHandle)
		m.BindVertexAttribBuffers(b)
		m.Draw(b)
	}

	b.BindVertexArray(0)
	b.SetStencilTest(false)
	b.BindFramebuffer(backend.DefaultFramebuffer)
}

// applyMaterial uploads the mesh's material state, falling back to flat white
// for meshes without a material.
func (p *GeometryPass) applyMaterial(
	b backend.RendererBackend,
	mat material.Material,
	colorLoc, shininessLoc, useTextureLoc, textureLoc backend.UniformLocation,
) {
	if mat == nil {
		b.Uniform4f(colorLoc, 1, 1, 1, 1)
		b.Uniform1f(shininessLoc, 32)
		b.Uniform1i(useTextureLoc, 0)
		return
	}

	color := mat.DiffuseColor()
	b.Uniform4f(colorLoc, color[0], color[1], color[2], color[3])
	b.Uniform1f(shininessLoc, mat.Shininess())

	if mat.HasTexture() {
		b.BindTextureUnit(diffuseTextureUnit, mat.TextureHandle())
		b.Uniform1i(textureLoc, diffuseTextureUnit)
		b.Uniform1i(useTextureLoc, 1)
	} else {
		b.Uniform1i(useTextureLoc, 0)
	}
}

// Resize is satisfied by the shared G-buffer's own resize; the pass holds no
// size-dependent state of its own.
func (p *GeometryPass) Resize(b backend.RendererBackend, width, height int) error {
	if !p.initialized {
		return fmt.Errorf("geometry pass: resize before init")
	}
	return nil
}

// Dispose releases the program. Terminal. The G-buffer is owned by the
// renderer and disposed separately.
//
// Parameters:
//   - b: the rendering backend
func (p *GeometryPass) Dispose(b backend.RendererBackend) {
	if !p.initialized {
		return
	}
	p.program.Dispose(b, p.cache)
	p.program = nil
	p.initialized = false
}

// Invalidate drops the program handle without a GPU delete, for context-loss
// recovery.
func (p *GeometryPass) Invalidate() {
	p.program = nil
	p.initialized = false
}
