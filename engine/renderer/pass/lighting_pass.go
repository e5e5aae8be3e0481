package pass

import (
	"fmt"

	"github.com/DarioCorno/skengio/common"
	"github.com/DarioCorno/skengio/engine/renderer/backend"
	"github.com/DarioCorno/skengio/engine/renderer/shader"
	"github.com/DarioCorno/skengio/engine/scene"
)

// G-buffer sampler units consumed by the lighting shader, fixed for the life
// of the program.
const (
	positionUnit   = 0
	albedoUnit     = 1
	normalUnit     = 2
	objectDataUnit = 3
)

// LightingPass shades the frame with a single full-screen quad. A stencil
// test against the geometry pass's mask skips background pixels entirely, and
// every uniform upload is gated: camera uniforms go up only when the camera's
// generation counters moved, light properties only when their dirty flags are
// set.
//
// Light positions are additionally re-uploaded whenever the view matrix
// changed, even for unmoved lights — lighting is computed in view space and
// shader correctness depends on the pair staying coherent.
type LightingPass struct {
	program *shader.Program
	cache   *shader.ShaderResourceCache
	gbuffer *GBuffer

	quadVAO    backend.VertexArray
	quadBuffer backend.Buffer

	width  int
	height int

	debugMode int32

	// Camera generations acknowledged at the end of the previous frame.
	seenViewVersion       uint64
	seenProjectionVersion uint64

	// forceUploads makes the first frame after (re-)init upload every light
	// property regardless of dirty flags; a fresh program has no uniform
	// state to rely on.
	forceUploads bool

	initialized bool
}

// NewLightingPass creates an uninitialized lighting pass reading from the
// given G-buffer.
//
// Parameters:
//   - cache: the shared shader resource cache
//   - gbuffer: the G-buffer the pass samples
//
// Returns:
//   - *LightingPass: the new pass
func NewLightingPass(cache *shader.ShaderResourceCache, gbuffer *GBuffer) *LightingPass {
	return &LightingPass{cache: cache, gbuffer: gbuffer}
}

// Init compiles the lighting program, allocates the full-screen quad, binds
// the G-buffer samplers to their fixed units, and warms the uniform cache for
// the light array.
//
// Parameters:
//   - b: the rendering backend
//   - width, height: output size in pixels
//
// Returns:
//   - error: shader failure
func (p *LightingPass) Init(b backend.RendererBackend, width, height int) error {
	if p.initialized {
		return nil
	}

	program, err := shader.NewProgram(b, shader.LightingVertexSource, shader.LightingFragmentSource)
	if err != nil {
		return fmt.Errorf("lighting pass: %w", err)
	}
	p.program = program
	programHandle := program.Handle()

	// Two triangles covering NDC.
	quad := []float32{
		-1, -1, 1, -1, 1, 1,
		-1, -1, 1, 1, -1, 1,
	}
	p.quadVAO = b.CreateVertexArray()
	b.BindVertexArray(p.quadVAO)
	p.quadBuffer = b.CreateBuffer()
	b.BindArrayBuffer(p.quadBuffer)
	b.ArrayBufferData(quad, false)
	b.EnableVertexAttrib(p.cache.AttribLocation(programHandle, "aPosition"), 2)
	b.BindVertexArray(0)

	// Sampler units never change, upload them once.
	program.Use(b)
	b.Uniform1i(p.cache.UniformLocation(programHandle, "uPosition"), positionUnit)
	b.Uniform1i(p.cache.UniformLocation(programHandle, "uAlbedo"), albedoUnit)
	b.Uniform1i(p.cache.UniformLocation(programHandle, "uNormal"), normalUnit)
	b.Uniform1i(p.cache.UniformLocation(programHandle, "uObjectData"), objectDataUnit)

	p.cache.UniformLocations(programHandle, []string{
		"uNumLights", "uDebugMode", "uViewMatrix", "uNearPlane", "uFarPlane", "uCameraPosition",
	})
	p.cache.CacheStructuredUniforms(programHandle, "uLights", shader.LightFieldNames, shader.MaxLights)

	p.width = width
	p.height = height
	p.seenViewVersion = 0
	p.seenProjectionVersion = 0
	p.forceUploads = true
	p.initialized = true
	return nil
}

// SetDebugMode selects which G-buffer channel the shader outputs instead of
// the shaded result. Zero renders normally.
//
// Parameters:
//   - mode: the debug visualization mode
func (p *LightingPass) SetDebugMode(mode int) {
	p.debugMode = int32(mode)
}

// Execute shades the frame into the default framebuffer and clears every
// light's dirty flags afterwards.
//
// Parameters:
//   - b: the rendering backend
//   - scn: the scene whose camera and lights drive the shading
func (p *LightingPass) Execute(b backend.RendererBackend, scn scene.Scene) {
	cam := scn.Camera()
	if cam == nil {
		return
	}

	b.BindFramebuffer(backend.DefaultFramebuffer)
	b.SetViewport(p.width, p.height)

	b.SetDepthTest(false)
	b.SetDepthWrite(false)

	// Only pixels the geometry pass marked get shaded; background is skipped
	// entirely.
	b.SetStencilTest(true)
	b.SetStencilFunc(backend.StencilEqual, 1)
	b.SetStencilOp(backend.StencilKeep)

	b.SetClearColor(0, 0, 0, 1)
	b.Clear(true, false, false)

	p.program.Use(b)
	programHandle := p.program.Handle()

	b.BindTextureUnit(positionUnit, p.gbuffer.PositionTexture())
	b.BindTextureUnit(albedoUnit, p.gbuffer.AlbedoTexture())
	b.BindTextureUnit(normalUnit, p.gbuffer.NormalTexture())
	b.BindTextureUnit(objectDataUnit, p.gbuffer.ObjectDataTexture())

	viewChanged := cam.ViewVersion() != p.seenViewVersion
	projectionChanged := cam.ProjectionVersion() != p.seenProjectionVersion

	view := cam.ViewMatrix()
	if viewChanged {
		b.UniformMatrix4(p.cache.UniformLocation(programHandle, "uViewMatrix"), view[:])
		pos := cam.Position()
		b.Uniform3f(p.cache.UniformLocation(programHandle, "uCameraPosition"), pos[0], pos[1], pos[2])
	}
	if projectionChanged {
		b.Uniform1f(p.cache.UniformLocation(programHandle, "uNearPlane"), cam.Near())
		b.Uniform1f(p.cache.UniformLocation(programHandle, "uFarPlane"), cam.Far())
	}

	lights := scn.Lights()
	count := len(lights)
	if count > shader.MaxLights {
		count = shader.MaxLights
	}

	for i := 0; i < count; i++ {
		l := lights[i]

		if l.IsPositionDirty() || viewChanged || p.forceUploads {
			pos := l.Position()
			b.Uniform3f(p.cache.StructuredUniform(programHandle, "uLights", i, "uLightPosition"),
				pos[0], pos[1], pos[2])

			model := l.Transform().ModelMatrix()
			var modelView [16]float32
			common.Mul4(modelView[:], view[:], model[:])
			b.UniformMatrix4(p.cache.StructuredUniform(programHandle, "uLights", i, "uModelViewMatrix"),
				modelView[:])
		}
		if l.IsColorDirty() || p.forceUploads {
			col := l.Color()
			b.Uniform3f(p.cache.StructuredUniform(programHandle, "uLights", i, "uLightColor"),
				col[0], col[1], col[2])
		}
		if l.IsIntensityDirty() || p.forceUploads {
			b.Uniform1f(p.cache.StructuredUniform(programHandle, "uLights", i, "uLightIntensity"),
				l.Intensity())
		}
	}

	// Count and debug mode are cheap, always uploaded.
	b.Uniform1i(p.cache.UniformLocation(programHandle, "uNumLights"), int32(count))
	b.Uniform1i(p.cache.UniformLocation(programHandle, "uDebugMode"), p.debugMode)

	b.BindVertexArray(p.quadVAO)
	b.DrawArrays(0, 6)
	b.BindVertexArray(0)

	b.SetStencilTest(false)
	b.SetDepthTest(true)
	b.SetDepthWrite(true)

	for _, l := range lights {
		l.ClearAllDirty()
	}
	p.seenViewVersion = cam.ViewVersion()
	p.seenProjectionVersion = cam.ProjectionVersion()
	p.forceUploads = false
}

// Resize updates the output viewport size; the pass owns no size-dependent
// GPU resources.
//
// Parameters:
//   - b: the rendering backend
//   - width, height: new output size in pixels
//
// Returns:
//   - error: always nil once initialized
func (p *LightingPass) Resize(b backend.RendererBackend, width, height int) error {
	if !p.initialized {
		return fmt.Errorf("lighting pass: resize before init")
	}
	p.width = width
	p.height = height
	return nil
}

// Dispose releases the program and the full-screen quad. Terminal.
//
// Parameters:
//   - b: the rendering backend
func (p *LightingPass) Dispose(b backend.RendererBackend) {
	if !p.initialized {
		return
	}
	p.program.Dispose(b, p.cache)
	p.program = nil
	b.DeleteBuffer(p.quadBuffer)
	b.DeleteVertexArray(p.quadVAO)
	p.quadBuffer = 0
	p.quadVAO = 0
	p.initialized = false
}

// Invalidate drops every handle without issuing GPU deletes, for context-loss
// recovery.
func (p *LightingPass) Invalidate() {
	p.program = nil
	p.quadBuffer = 0
	p.quadVAO = 0
	p.initialized = false
}
