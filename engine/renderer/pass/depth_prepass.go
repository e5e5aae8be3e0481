package pass

import (
	"fmt"

	"github.com/DarioCorno/skengio/common"
	"github.com/DarioCorno/skengio/engine/renderer/backend"
	"github.com/DarioCorno/skengio/engine/renderer/shader"
	"github.com/DarioCorno/skengio/engine/scene"
)

// DepthPrepass draws every opaque mesh with a depth-only shader, color
// writes disabled and only the position attribute bound. It establishes
// authoritative depth before the geometry pass so that pass can run an
// equal-depth test and never shade an occluded fragment.
type DepthPrepass struct {
	program *shader.Program
	cache   *shader.ShaderResourceCache

	// Standalone target, used when the caller does not supply one.
	framebuffer backend.Framebuffer
	depth       backend.Texture

	width  int
	height int

	initialized bool
}

// NewDepthPrepass creates an uninitialized depth prepass.
//
// Returns:
//   - *DepthPrepass: the new pass
func NewDepthPrepass(cache *shader.ShaderResourceCache) *DepthPrepass {
	return &DepthPrepass{cache: cache}
}

// Init compiles the depth program and allocates the pass's own depth target.
//
// Parameters:
//   - b: the rendering backend
//   - width, height: target size in pixels
//
// Returns:
//   - error: shader or target allocation failure
func (p *DepthPrepass) Init(b backend.RendererBackend, width, height int) error {
	if p.initialized {
		return nil
	}

	program, err := shader.NewProgram(b, shader.DepthVertexSource, shader.DepthFragmentSource)
	if err != nil {
		return fmt.Errorf("depth prepass: %w", err)
	}
	p.program = program

	if err := p.createTarget(b, width, height); err != nil {
		p.program.Dispose(b, p.cache)
		p.program = nil
		return err
	}

	p.initialized = true
	return nil
}

// createTarget allocates the standalone depth framebuffer.
func (p *DepthPrepass) createTarget(b backend.RendererBackend, width, height int) error {
	depth, err := b.CreateDepthStencilTexture(width, height)
	if err != nil {
		return fmt.Errorf("depth prepass target: %w", err)
	}

	fb := b.CreateFramebuffer()
	b.BindFramebuffer(fb)
	b.AttachDepthStencilTexture(depth)
	b.SetDrawBuffers(0)
	if err := b.CheckFramebufferComplete(); err != nil {
		b.BindFramebuffer(backend.DefaultFramebuffer)
		return fmt.Errorf("depth prepass framebuffer: %w", err)
	}
	b.BindFramebuffer(backend.DefaultFramebuffer)

	p.framebuffer = fb
	p.depth = depth
	p.width = width
	p.height = height
	return nil
}

// Execute renders depth into the pass's own target.
//
// Parameters:
//   - b: the rendering backend
//   - scn: the scene to draw
func (p *DepthPrepass) Execute(b backend.RendererBackend, scn scene.Scene) {
	p.ExecuteToTarget(b, p.framebuffer, scn)
}

// ExecuteToTarget renders depth into the depth attachment of the supplied
// framebuffer. Color writes stay disabled for the whole pass and are restored
// before returning.
//
// Parameters:
//   - b: the rendering backend
//   - target: the framebuffer whose depth attachment receives the pass
//   - scn: the scene to draw
func (p *DepthPrepass) ExecuteToTarget(b backend.RendererBackend, target backend.Framebuffer, scn scene.Scene) {
	cam := scn.Camera()
	if cam == nil {
		return
	}

	b.BindFramebuffer(target)
	b.SetViewport(p.width, p.height)

	b.SetDepthTest(true)
	b.SetDepthFunc(backend.DepthLess)
	b.SetDepthWrite(true)
	b.SetColorWrite(false)
	b.SetStencilTest(false)

	b.Clear(false, true, false)

	p.program.Use(b)
	programHandle := p.program.Handle()

	projection := cam.ProjectionMatrix()
	b.UniformMatrix4(p.cache.UniformLocation(programHandle, "uProjectionMatrix"), projection[:])

	view := cam.ViewMatrix()
	mvLoc := p.cache.UniformLocation(programHandle, "uModelViewMatrix")
	positionLoc := p.cache.AttribLocation(programHandle, "aPosition")

	var modelView [16]float32
	for _, m := range visibleMeshes(scn) {
		model := m.Transform().ModelMatrix()
		common.Mul4(modelView[:], view[:], model[:])
		b.UniformMatrix4(mvLoc, modelView[:])

		m.BindPositionAttrib(b, positionLoc)
		m.Draw(b)
	}

	b.BindVertexArray(0)
	b.SetColorWrite(true)
	b.BindFramebuffer(backend.DefaultFramebuffer)
}

// Resize recreates the pass's own depth target at the new size.
//
// Parameters:
//   - b: the rendering backend
//   - width, height: new target size in pixels
//
// Returns:
//   - error: target allocation failure
func (p *DepthPrepass) Resize(b backend.RendererBackend, width, height int) error {
	if !p.initialized {
		return fmt.Errorf("depth prepass: resize before init")
	}
	b.DeleteFramebuffer(p.framebuffer)
	b.DeleteTexture(p.depth)
	return p.createTarget(b, width, height)
}

// Dispose releases the program and the standalone target. Terminal.
//
// Parameters:
//   - b: the rendering backend
func (p *DepthPrepass) Dispose(b backend.RendererBackend) {
	if !p.initialized {
		return
	}
	p.program.Dispose(b, p.cache)
	p.program = nil
	b.DeleteFramebuffer(p.framebuffer)
	b.DeleteTexture(p.depth)
	p.framebuffer = 0
	p.depth = 0
	p.initialized = false
}

// Invalidate drops every handle without issuing GPU deletes, for context-loss
// recovery.
func (p *DepthPrepass) Invalidate() {
	p.program = nil
	p.framebuffer = 0
	p.depth = 0
	p.initialized = false
}
