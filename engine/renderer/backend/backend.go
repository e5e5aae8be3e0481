// Package backend abstracts the GPU API surface used by the deferred
// rendering pipeline. The pipeline, passes, and meshes speak only to the
// RendererBackend interface; concrete implementations (OpenGL, recording)
// register themselves with the package registry.
package backend

import (
	"sync"

	"github.com/DarioCorno/skengio/common"
)

// Program is a handle to a linked shader program.
type Program uint32

// Buffer is a handle to a GPU vertex or index buffer.
type Buffer uint32

// VertexArray is a handle to a vertex array object.
type VertexArray uint32

// Texture is a handle to a GPU texture object.
type Texture uint32

// Framebuffer is a handle to a framebuffer object. The zero value is the
// default (screen) framebuffer.
type Framebuffer uint32

// UniformLocation is a resolved handle to a named uniform. AbsentUniform
// marks a name the program does not use; uploads to it are silently skipped.
type UniformLocation int32

// AttribLocation is a resolved handle to a named vertex attribute.
// AbsentAttrib marks a name the program does not use.
type AttribLocation int32

const (
	// AbsentUniform is the sentinel for a uniform name not present in a program.
	AbsentUniform UniformLocation = -1

	// AbsentAttrib is the sentinel for an attribute name not present in a program.
	AbsentAttrib AttribLocation = -1

	// DefaultFramebuffer is the window-system (screen) framebuffer.
	DefaultFramebuffer Framebuffer = 0
)

// DepthFunc selects the depth comparison used when depth testing is enabled.
type DepthFunc int

const (
	// DepthLess passes fragments strictly closer than the stored depth.
	DepthLess DepthFunc = iota

	// DepthEqual passes only fragments at exactly the stored depth. Used by
	// the geometry pass so only depth-prepass winners are shaded.
	DepthEqual

	// DepthLEqual passes fragments at or closer than the stored depth.
	DepthLEqual
)

// StencilFunc selects the stencil comparison used when stencil testing is enabled.
type StencilFunc int

const (
	// StencilAlways passes every fragment.
	StencilAlways StencilFunc = iota

	// StencilEqual passes fragments whose stored stencil value equals the reference.
	StencilEqual
)

// StencilOp selects the operation applied when a fragment passes both the
// stencil and depth tests.
type StencilOp int

const (
	// StencilKeep leaves the stored stencil value unchanged.
	StencilKeep StencilOp = iota

	// StencilReplace writes the reference value into the stencil buffer.
	StencilReplace
)

// RendererBackend is the GPU API surface consumed by the deferred pipeline.
//
// Fatal resource failures (program compile/link, texture allocation,
// framebuffer completeness) surface as errors; per-frame state and upload
// calls do not fail. Uploads to AbsentUniform are silently skipped so passes
// can share uniform-name sets with programs that use only a subset.
type RendererBackend interface {
	// Name returns the backend identifier used for registry lookup.
	//
	// Returns:
	//   - string: the backend name
	Name() string

	// Init prepares the backend for use. For the OpenGL backend a current
	// context is required on the calling thread.
	//
	// Returns:
	//   - error: an error if initialization fails
	Init() error

	// Close releases backend-level resources. Individual GPU objects are
	// released through their Delete* methods by their owners.
	Close()

	// CreateProgram compiles and links a shader program from GLSL sources.
	//
	// Parameters:
	//   - vertexSrc: the vertex shader source
	//   - fragmentSrc: the fragment shader source
	//
	// Returns:
	//   - Program: the linked program handle
	//   - error: compile or link failure including the driver info log
	CreateProgram(vertexSrc, fragmentSrc string) (Program, error)

	// DeleteProgram releases a shader program.
	//
	// Parameters:
	//   - p: the program to delete
	DeleteProgram(p Program)

	// UseProgram makes a program current for subsequent uniform uploads and draws.
	//
	// Parameters:
	//   - p: the program to bind
	UseProgram(p Program)

	// GetUniformLocation resolves a named uniform in a program.
	// Returns AbsentUniform when the program does not use the name.
	//
	// Parameters:
	//   - p: the program to query
	//   - name: the uniform name
	//
	// Returns:
	//   - UniformLocation: the resolved handle, or AbsentUniform
	GetUniformLocation(p Program, name string) UniformLocation

	// GetAttribLocation resolves a named vertex attribute in a program.
	// Returns AbsentAttrib when the program does not use the name.
	//
	// Parameters:
	//   - p: the program to query
	//   - name: the attribute name
	//
	// Returns:
	//   - AttribLocation: the resolved handle, or AbsentAttrib
	GetAttribLocation(p Program, name string) AttribLocation

	// Uniform1i uploads an int uniform. Skipped for AbsentUniform.
	Uniform1i(loc UniformLocation, v int32)

	// Uniform1f uploads a float uniform. Skipped for AbsentUniform.
	Uniform1f(loc UniformLocation, v float32)

	// Uniform2f uploads a vec2 uniform. Skipped for AbsentUniform.
	Uniform2f(loc UniformLocation, x, y float32)

	// Uniform3f uploads a vec3 uniform. Skipped for AbsentUniform.
	Uniform3f(loc UniformLocation, x, y, z float32)

	// Uniform4f uploads a vec4 uniform. Skipped for AbsentUniform.
	Uniform4f(loc UniformLocation, x, y, z, w float32)

	// UniformMatrix4 uploads a 4x4 column-major matrix uniform.
	// Skipped for AbsentUniform.
	//
	// Parameters:
	//   - loc: the uniform handle
	//   - m: 16 float32 values, column-major
	UniformMatrix4(loc UniformLocation, m []float32)

	// CreateVertexArray allocates a vertex array object.
	CreateVertexArray() VertexArray

	// BindVertexArray makes a vertex array object current.
	BindVertexArray(v VertexArray)

	// DeleteVertexArray releases a vertex array object.
	DeleteVertexArray(v VertexArray)

	// CreateBuffer allocates a GPU buffer.
	CreateBuffer() Buffer

	// DeleteBuffer releases a GPU buffer.
	DeleteBuffer(b Buffer)

	// BindArrayBuffer binds a buffer to the vertex attribute target.
	BindArrayBuffer(b Buffer)

	// BindElementArrayBuffer binds a buffer to the index target.
	BindElementArrayBuffer(b Buffer)

	// ArrayBufferData uploads float data to the bound array buffer,
	// allocating storage.
	//
	// Parameters:
	//   - data: vertex attribute values
	//   - dynamic: true for re-uploadable buffers, false for static geometry
	ArrayBufferData(data []float32, dynamic bool)

	// ArrayBufferSubData re-uploads float data into the bound array buffer
	// without reallocating.
	//
	// Parameters:
	//   - offset: destination offset in elements
	//   - data: vertex attribute values
	ArrayBufferSubData(offset int, data []float32)

	// ElementArrayBufferData uploads index data to the bound element buffer,
	// allocating storage.
	//
	// Parameters:
	//   - data: triangle indices
	//   - dynamic: true for re-uploadable buffers
	ElementArrayBufferData(data []uint32, dynamic bool)

	// EnableVertexAttrib enables an attribute slot sourcing tightly packed
	// float components from the bound array buffer.
	//
	// Parameters:
	//   - loc: the attribute handle
	//   - size: component count per vertex (2 or 3)
	EnableVertexAttrib(loc AttribLocation, size int32)

	// DisableVertexAttrib disables an attribute slot.
	DisableVertexAttrib(loc AttribLocation)

	// CreateColorTexture allocates a high-precision (RGBA16F) render target.
	//
	// Parameters:
	//   - width, height: target size in pixels
	//
	// Returns:
	//   - Texture: the texture handle
	//   - error: an error if allocation fails
	CreateColorTexture(width, height int) (Texture, error)

	// CreateDepthStencilTexture allocates a combined depth-stencil render target.
	//
	// Parameters:
	//   - width, height: target size in pixels
	//
	// Returns:
	//   - Texture: the texture handle
	//   - error: an error if allocation fails
	CreateDepthStencilTexture(width, height int) (Texture, error)

	// CreateImageTexture uploads decoded RGBA pixel data as a sampled texture
	// (linear filtering, repeat wrapping). Used for material diffuse maps.
	//
	// Parameters:
	//   - data: decoded pixels with dimensions
	//
	// Returns:
	//   - Texture: the texture handle
	//   - error: an error if allocation fails
	CreateImageTexture(data common.TextureData) (Texture, error)

	// BindTextureUnit binds a texture to a numbered texture unit.
	//
	// Parameters:
	//   - unit: the texture unit index
	//   - t: the texture to bind
	BindTextureUnit(unit int, t Texture)

	// DeleteTexture releases a texture.
	DeleteTexture(t Texture)

	// CreateFramebuffer allocates a framebuffer object.
	CreateFramebuffer() Framebuffer

	// BindFramebuffer makes a framebuffer current for rendering.
	// Pass DefaultFramebuffer to render to the screen.
	BindFramebuffer(f Framebuffer)

	// AttachColorTexture attaches a texture to a color slot of the bound framebuffer.
	//
	// Parameters:
	//   - index: the color attachment index
	//   - t: the texture to attach
	AttachColorTexture(index int, t Texture)

	// AttachDepthStencilTexture attaches a depth-stencil texture to the bound framebuffer.
	AttachDepthStencilTexture(t Texture)

	// SetDrawBuffers declares how many color attachments the bound
	// framebuffer renders to.
	//
	// Parameters:
	//   - count: number of active color attachments
	SetDrawBuffers(count int)

	// CheckFramebufferComplete validates the bound framebuffer.
	//
	// Returns:
	//   - error: an error if the framebuffer is not complete
	CheckFramebufferComplete() error

	// DeleteFramebuffer releases a framebuffer object.
	DeleteFramebuffer(f Framebuffer)

	// SetViewport sets the rendering viewport to (0, 0, width, height).
	SetViewport(width, height int)

	// SetClearColor sets the color used by Clear for the color buffer.
	SetClearColor(r, g, b, a float32)

	// Clear clears the selected buffers of the bound framebuffer.
	//
	// Parameters:
	//   - color, depth, stencil: which buffers to clear
	Clear(color, depth, stencil bool)

	// SetDepthTest enables or disables depth testing.
	SetDepthTest(enabled bool)

	// SetDepthFunc selects the depth comparison.
	SetDepthFunc(fn DepthFunc)

	// SetDepthWrite enables or disables depth buffer writes.
	SetDepthWrite(enabled bool)

	// SetColorWrite enables or disables color buffer writes on all channels.
	SetColorWrite(enabled bool)

	// SetStencilTest enables or disables stencil testing.
	SetStencilTest(enabled bool)

	// SetStencilFunc selects the stencil comparison and reference value.
	SetStencilFunc(fn StencilFunc, ref int32)

	// SetStencilOp selects the operation applied when a fragment passes
	// both stencil and depth tests. Fail cases always keep.
	SetStencilOp(onPass StencilOp)

	// DrawIndexed draws indexed triangles from the bound vertex array.
	//
	// Parameters:
	//   - count: number of indices to draw
	DrawIndexed(count int32)

	// DrawArrays draws non-indexed triangles from the bound vertex array.
	//
	// Parameters:
	//   - first: index of the first vertex
	//   - count: number of vertices to draw
	DrawArrays(first, count int32)

	// AliveObjects returns the number of GPU objects (buffers, textures,
	// framebuffers, vertex arrays, programs) created and not yet deleted.
	// Used to verify resize and dispose paths do not leak.
	//
	// Returns:
	//   - int: the live object count
	AliveObjects() int
}

// Backend name constants.
const (
	// BackendOpenGL is the name of the OpenGL 3.3 core backend.
	BackendOpenGL = "opengl"

	// BackendRecording is the name of the CPU-only recording backend used by
	// headless runs and tests.
	BackendRecording = "recording"
)

// BackendFactory creates a new backend instance.
type BackendFactory func() RendererBackend

var (
	registryMu sync.RWMutex
	backends   = make(map[string]BackendFactory)
	// Priority order for backend selection (first available wins).
	backendPriority = []string{BackendOpenGL, BackendRecording}
)

// Register registers a backend factory with the given name.
// This is typically called from init() functions in backend implementation files.
// If a backend with the same name is already registered, it is replaced.
func Register(name string, factory BackendFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	backends[name] = factory
}

// Get returns a new backend instance by name, or nil if the name is not registered.
//
// Parameters:
//   - name: the backend name
//
// Returns:
//   - RendererBackend: a new backend instance, or nil
func Get(name string) RendererBackend {
	registryMu.RLock()
	defer registryMu.RUnlock()

	factory, ok := backends[name]
	if !ok {
		return nil
	}
	return factory()
}

// Default returns the best available backend based on priority
// (OpenGL before recording). Returns nil if no backends are registered.
//
// Returns:
//   - RendererBackend: a new backend instance, or nil
func Default() RendererBackend {
	registryMu.RLock()
	defer registryMu.RUnlock()

	for _, name := range backendPriority {
		if factory, ok := backends[name]; ok {
			if b := factory(); b != nil {
				return b
			}
		}
	}
	return nil
}
