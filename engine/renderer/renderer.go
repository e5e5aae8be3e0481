// Package renderer owns the deferred pipeline: the rendering backend, the
// shared shader resource cache, and the three fixed passes it sequences each
// frame.
package renderer

import (
	"fmt"

	"github.com/DarioCorno/skengio/common"
	"github.com/DarioCorno/skengio/engine/renderer/backend"
	"github.com/DarioCorno/skengio/engine/renderer/pass"
	"github.com/DarioCorno/skengio/engine/renderer/shader"
	"github.com/DarioCorno/skengio/engine/scene"
)

// rendererImpl is the implementation of the Renderer interface.
type rendererImpl struct {
	b     backend.RendererBackend
	cache *shader.ShaderResourceCache

	gbuffer      *pass.GBuffer
	depthPrepass *pass.DepthPrepass
	geometryPass *pass.GeometryPass
	lightingPass *pass.LightingPass

	width  int
	height int

	initialized bool
}

// Renderer defines the interface for the deferred rendering pipeline.
//
// A frame renders in three fixed stages: depth prepass into the G-buffer's
// depth attachment, geometry pass filling the G-buffer under an equal-depth
// test, and a stencil-masked lighting pass shading the screen. The renderer
// owns the passes, the G-buffer, the shader resource cache, and the backend
// handle; scenes own their own GPU state.
//
// All methods must run on the thread holding the graphics context.
type Renderer interface {
	// Backend returns the rendering backend.
	//
	// Returns:
	//   - backend.RendererBackend: the backend
	Backend() backend.RendererBackend

	// Cache returns the shared shader resource cache.
	//
	// Returns:
	//   - *shader.ShaderResourceCache: the cache
	Cache() *shader.ShaderResourceCache

	// Init initializes the backend, compiles the pass programs, and
	// allocates the render targets at the configured size. Must run before
	// the first Render and again after InvalidateContext.
	//
	// Returns:
	//   - error: backend, shader, or target allocation failure
	Init() error

	// Render draws one frame of the scene: pending mesh vertex uploads,
	// then the three passes in order.
	//
	// Parameters:
	//   - scn: the scene to render
	Render(scn scene.Scene)

	// SetSize resizes every size-dependent render target. The previous
	// targets are released; leak-free resizing is part of the contract.
	//
	// Parameters:
	//   - width, height: new drawable size in pixels
	//
	// Returns:
	//   - error: target allocation failure at the new size
	SetSize(width, height int) error

	// SetDebugMode selects a G-buffer channel to display instead of the
	// shaded output. Zero renders normally.
	//
	// Parameters:
	//   - mode: the debug visualization mode
	SetDebugMode(mode int)

	// InvalidateContext drops every GPU handle without issuing deletes,
	// after the environment reported a context loss. The renderer must be
	// re-initialized with Init before the next Render; the first frame
	// after re-init re-uploads all gated uniform state. Scene-owned handles
	// are dropped separately through Scene.InvalidateGPU, followed by
	// InitMeshes on the rebuilt context.
	InvalidateContext()

	// Dispose releases every GPU resource the renderer owns. Terminal.
	Dispose()
}

var _ Renderer = &rendererImpl{}

// NewRenderer creates a Renderer with the given options. The backend defaults
// to the best registered one (OpenGL when available, recording otherwise) and
// the size to 800x600.
//
// Parameters:
//   - options: functional options to configure the renderer
//
// Returns:
//   - Renderer: the newly created renderer
//   - error: no backend available
func NewRenderer(options ...RendererBuilderOption) (Renderer, error) {
	r := &rendererImpl{}
	for _, option := range options {
		option(r)
	}
	r.width = common.Coalesce(r.width, 800)
	r.height = common.Coalesce(r.height, 600)
	if r.b == nil {
		r.b = backend.Default()
	}
	if r.b == nil {
		return nil, fmt.Errorf("renderer: no rendering backend registered")
	}
	return r, nil
}

func (r *rendererImpl) Backend() backend.RendererBackend {
	return r.b
}

func (r *rendererImpl) Cache() *shader.ShaderResourceCache {
	return r.cache
}

func (r *rendererImpl) Init() error {
	if r.initialized {
		return nil
	}

	if err := r.b.Init(); err != nil {
		return fmt.Errorf("renderer: backend init: %w", err)
	}

	// A fresh cache on every init: handles from a lost context must never
	// leak into the new one.
	r.cache = shader.NewShaderResourceCache(r.b)
	r.gbuffer = pass.NewGBuffer()
	r.depthPrepass = pass.NewDepthPrepass(r.cache)
	r.geometryPass = pass.NewGeometryPass(r.cache, r.gbuffer)
	r.lightingPass = pass.NewLightingPass(r.cache, r.gbuffer)

	if err := r.gbuffer.Init(r.b, r.width, r.height); err != nil {
		return err
	}
	if err := r.depthPrepass.Init(r.b, r.width, r.height); err != nil {
		return err
	}
	if err := r.geometryPass.Init(r.b); err != nil {
		return err
	}
	if err := r.lightingPass.Init(r.b, r.width, r.height); err != nil {
		return err
	}

	r.initialized = true
	return nil
}

func (r *rendererImpl) Render(scn scene.Scene) {
	if !r.initialized || scn == nil {
		return
	}

	// Flush any pending CPU-side vertex edits; gated per mesh by its dirty
	// flag.
	for _, m := range scn.Meshes() {
		m.UploadVertexData(r.b)
	}

	r.depthPrepass.ExecuteToTarget(r.b, r.gbuffer.Framebuffer(), scn)
	r.geometryPass.Execute(r.b, scn)
	r.lightingPass.Execute(r.b, scn)
}

func (r *rendererImpl) SetSize(width, height int) error {
	r.width = width
	r.height = height
	if !r.initialized {
		return nil
	}

	if err := r.gbuffer.Resize(r.b, width, height); err != nil {
		return err
	}
	if err := r.depthPrepass.Resize(r.b, width, height); err != nil {
		return err
	}
	if err := r.geometryPass.Resize(r.b, width, height); err != nil {
		return err
	}
	return r.lightingPass.Resize(r.b, width, height)
}

func (r *rendererImpl) SetDebugMode(mode int) {
	if r.lightingPass != nil {
		r.lightingPass.SetDebugMode(mode)
	}
}

func (r *rendererImpl) InvalidateContext() {
	if r.gbuffer != nil {
		r.gbuffer.Invalidate()
	}
	if r.depthPrepass != nil {
		r.depthPrepass.Invalidate()
	}
	if r.geometryPass != nil {
		r.geometryPass.Invalidate()
	}
	if r.lightingPass != nil {
		r.lightingPass.Invalidate()
	}
	r.cache = nil
	r.initialized = false
}

func (r *rendererImpl) Dispose() {
	if !r.initialized {
		return
	}
	r.lightingPass.Dispose(r.b)
	r.geometryPass.Dispose(r.b)
	r.depthPrepass.Dispose(r.b)
	r.gbuffer.Dispose(r.b)
	r.b.Close()
	r.initialized = false
}
