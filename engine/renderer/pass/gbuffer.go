// Package pass implements the three stages of the deferred pipeline: a depth
// prepass, a G-buffer geometry pass, and a stencil-masked lighting pass. The
// pass set is fixed; the renderer owns one of each and sequences them per
// frame.
package pass

import (
	"fmt"

	"github.com/DarioCorno/skengio/engine/renderer/backend"
)

// GBuffer owns the multi-target framebuffer shared by the geometry and
// lighting passes: four high-precision color targets (view-space position,
// albedo+shininess, normal, object data) and a combined depth-stencil target
// the depth prepass writes into.
type GBuffer struct {
	framebuffer backend.Framebuffer

	position     backend.Texture
	albedo       backend.Texture
	normal       backend.Texture
	objectData   backend.Texture
	depthStencil backend.Texture

	width  int
	height int

	initialized bool
}

// NewGBuffer creates an unallocated GBuffer. Init must run before use.
//
// Returns:
//   - *GBuffer: the new G-buffer
func NewGBuffer() *GBuffer {
	return &GBuffer{}
}

// Init allocates the framebuffer and its five targets at the given size and
// validates completeness.
//
// Parameters:
//   - b: the rendering backend
//   - width, height: target size in pixels
//
// Returns:
//   - error: allocation or completeness failure
func (g *GBuffer) Init(b backend.RendererBackend, width, height int) error {
	if g.initialized {
		return nil
	}

	var err error
	if g.position, err = b.CreateColorTexture(width, height); err != nil {
		return fmt.Errorf("gbuffer position target: %w", err)
	}
	if g.albedo, err = b.CreateColorTexture(width, height); err != nil {
		return fmt.Errorf("gbuffer albedo target: %w", err)
	}
	if g.normal, err = b.CreateColorTexture(width, height); err != nil {
		return fmt.Errorf("gbuffer normal target: %w", err)
	}
	if g.objectData, err = b.CreateColorTexture(width, height); err != nil {
		return fmt.Errorf("gbuffer object data target: %w", err)
	}
	if g.depthStencil, err = b.CreateDepthStencilTexture(width, height); err != nil {
		return fmt.Errorf("gbuffer depth-stencil target: %w", err)
	}

	g.framebuffer = b.CreateFramebuffer()
	b.BindFramebuffer(g.framebuffer)
	b.AttachColorTexture(0, g.position)
	b.AttachColorTexture(1, g.albedo)
	b.AttachColorTexture(2, g.normal)
	b.AttachColorTexture(3, g.objectData)
	b.AttachDepthStencilTexture(g.depthStencil)
	b.SetDrawBuffers(4)

	if err := b.CheckFramebufferComplete(); err != nil {
		b.BindFramebuffer(backend.DefaultFramebuffer)
		return fmt.Errorf("gbuffer framebuffer: %w", err)
	}
	b.BindFramebuffer(backend.DefaultFramebuffer)

	g.width = width
	g.height = height
	g.initialized = true
	return nil
}

// Resize releases the targets and reallocates them at the new size.
//
// Parameters:
//   - b: the rendering backend
//   - width, height: new target size in pixels
//
// Returns:
//   - error: allocation or completeness failure
func (g *GBuffer) Resize(b backend.RendererBackend, width, height int) error {
	if !g.initialized {
		return g.Init(b, width, height)
	}
	g.Dispose(b)
	return g.Init(b, width, height)
}

// Dispose releases the framebuffer and every target.
//
// Parameters:
//   - b: the rendering backend
func (g *GBuffer) Dispose(b backend.RendererBackend) {
	if !g.initialized {
		return
	}
	b.DeleteFramebuffer(g.framebuffer)
	b.DeleteTexture(g.position)
	b.DeleteTexture(g.albedo)
	b.DeleteTexture(g.normal)
	b.DeleteTexture(g.objectData)
	b.DeleteTexture(g.depthStencil)
	g.framebuffer = 0
	g.position = 0
	g.albedo = 0
	g.normal = 0
	g.objectData = 0
	g.depthStencil = 0
	g.initialized = false
}

// Invalidate drops every handle without issuing GPU deletes. Used after a
// context loss, when the underlying objects are already gone.
func (g *GBuffer) Invalidate() {
	g.framebuffer = 0
	g.position = 0
	g.albedo = 0
	g.normal = 0
	g.objectData = 0
	g.depthStencil = 0
	g.initialized = false
}

// Framebuffer returns the multi-target framebuffer handle.
//
// Returns:
//   - backend.Framebuffer: the framebuffer handle
func (g *GBuffer) Framebuffer() backend.Framebuffer {
	return g.framebuffer
}

// PositionTexture returns the view-space position target.
func (g *GBuffer) PositionTexture() backend.Texture {
	return g.position
}

// AlbedoTexture returns the albedo+shininess target.
func (g *GBuffer) AlbedoTexture() backend.Texture {
	return g.albedo
}

// NormalTexture returns the view-space normal target.
func (g *GBuffer) NormalTexture() backend.Texture {
	return g.normal
}

// ObjectDataTexture returns the object data target.
func (g *GBuffer) ObjectDataTexture() backend.Texture {
	return g.objectData
}

// Size returns the current target dimensions.
//
// Returns:
//   - width, height: size in pixels
func (g *GBuffer) Size() (width, height int) {
	return g.width, g.height
}
